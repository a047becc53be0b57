// internal/authz/permissions.go
package authz

import "inventory-system/internal/entities"

// --- СПИСОК ВСЕХ ПЕРМИШЕНОВ В СИСТЕМЕ ---

const (
	// Оборудование
	EquipmentView      = "equipment:view"
	EquipmentCreate    = "equipment:create"
	EquipmentUpdate    = "equipment:update"
	EquipmentDelete    = "equipment:delete"
	EquipmentLifecycle = "equipment:lifecycle"
	EquipmentImport    = "equipment:import"
	EquipmentExport    = "equipment:export"

	// Лицензии
	LicensesView   = "licenses:view"
	LicensesCreate = "licenses:create"
	LicensesUpdate = "licenses:update"
	LicensesDelete = "licenses:delete"
	LicensesImport = "licenses:import"
	LicensesTotals = "licenses:totals"

	// Одобрения
	ApprovalsView   = "approvals:view"
	ApprovalsDecide = "approvals:decide"

	// Пользователи
	UsersView      = "users:view"
	UsersCreate    = "users:create"
	UsersUpdate    = "users:update"
	UsersDelete    = "users:delete"
	Users2FAManage = "users:2fa:manage"
	ProfileUpdate  = "profile:update"

	// Система
	SettingsView   = "settings:view"
	SettingsUpdate = "settings:update"
	AuditView      = "audit:view"
	DatabaseClear  = "database:clear"
	DashboardView  = "dashboard:view"

	// Модификаторы Области (Scopes)
	ScopeOwn = "scope:own"
	ScopeAll = "scope:all"
)

var basePermissions = []string{
	EquipmentView, EquipmentCreate, EquipmentUpdate, EquipmentDelete,
	LicensesView, LicensesCreate, LicensesUpdate, LicensesDelete,
	ProfileUpdate, DashboardView, ScopeOwn,
}

var managerPermissions = append([]string{
	EquipmentLifecycle, EquipmentExport,
	UsersView, UsersCreate, UsersUpdate, UsersDelete,
	ScopeAll,
}, basePermissions...)

var adminPermissions = append([]string{
	EquipmentImport, LicensesImport, LicensesTotals,
	ApprovalsView, ApprovalsDecide,
	Users2FAManage, SettingsView, SettingsUpdate, AuditView, DatabaseClear,
}, managerPermissions...)

// RolePermissions возвращает набор прав роли. Неизвестная роль прав не имеет.
func RolePermissions(role entities.UserRole) map[string]bool {
	var list []string
	switch role {
	case entities.RoleAdmin:
		list = adminPermissions
	case entities.RoleUserManager:
		list = managerPermissions
	case entities.RoleUser:
		list = basePermissions
	}
	perms := make(map[string]bool, len(list))
	for _, p := range list {
		perms[p] = true
	}
	return perms
}
