package authz

import (
	"strings"

	"inventory-system/internal/entities"
)

type Context struct {
	Actor             *entities.User
	Permissions       map[string]bool
	Target            interface{}
	CurrentPermission string
}

func (c *Context) HasPermission(permission string) bool {
	if c.Permissions == nil {
		return false
	}
	return c.Permissions[permission]
}

func getAction(permission string) string {
	parts := strings.Split(permission, ":")
	if len(parts) > 1 {
		return parts[len(parts)-1]
	}
	return ""
}

func isOwner(actor *entities.User, createdBy *uint64) bool {
	return actor != nil && createdBy != nil && *createdBy == actor.ID
}

// canAccessItem - общие правила для оборудования и лицензий с учётом статуса одобрения.
func canAccessItem(ctx Context, status entities.ApprovalStatus, createdBy *uint64) bool {
	owner := isOwner(ctx.Actor, createdBy)

	switch getAction(ctx.CurrentPermission) {
	case "view":
		// Пока запись не одобрена, её видят только привилегированные роли и автор.
		return status == entities.ApprovalApproved || ctx.HasPermission(ScopeAll) || owner
	case "update":
		if ctx.HasPermission(ScopeAll) {
			return true
		}
		return owner && status == entities.ApprovalPending
	case "delete":
		if ctx.HasPermission(ScopeAll) {
			return true
		}
		return owner && status == entities.ApprovalPending
	case "lifecycle":
		return ctx.HasPermission(ScopeAll) && status == entities.ApprovalApproved
	}
	return ctx.HasPermission(ScopeAll)
}

// canAccessUser - менеджер не может трогать администраторов; себя видит и правит любой.
func canAccessUser(ctx Context, target *entities.User) bool {
	actor := ctx.Actor
	if actor != nil && actor.ID == target.ID && getAction(ctx.CurrentPermission) != "delete" {
		return true
	}
	if actor != nil && actor.Role == entities.RoleAdmin {
		return true
	}
	return target.Role != entities.RoleAdmin
}

func CanDo(permission string, ctx Context) bool {
	// 1. Фиксация права
	ctx.CurrentPermission = permission

	// 2. Есть ли право вообще (RBAC)
	if !ctx.HasPermission(permission) {
		return false
	}

	// 3. Без цели - разрешено (например создание)
	if ctx.Target == nil {
		return true
	}

	// 4. Проверка цели (ABAC)
	switch target := ctx.Target.(type) {
	case *entities.Equipment:
		return canAccessItem(ctx, target.ApprovalStatus, target.CreatedByID)
	case *entities.License:
		return canAccessItem(ctx, target.ApprovalStatus, target.CreatedByID)
	case *entities.User:
		return canAccessUser(ctx, target)
	}

	return true
}
