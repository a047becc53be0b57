package authz

import "inventory-system/internal/entities"

// Can - короткая форма CanDo: права берутся из роли пользователя.
func Can(actor *entities.User, permission string, target interface{}) bool {
	if actor == nil {
		return false
	}
	return CanDo(permission, Context{
		Actor:       actor,
		Permissions: RolePermissions(actor.Role),
		Target:      target,
	})
}

// CanAssignRole - менеджер не может выдавать роль администратора.
func CanAssignRole(actor *entities.User, role entities.UserRole) bool {
	if actor == nil || !role.Valid() {
		return false
	}
	if role == entities.RoleAdmin {
		return actor.Role == entities.RoleAdmin
	}
	return RolePermissions(actor.Role)[UsersCreate]
}
