package entities

type EquipmentStatus string

const (
	StatusEmUso      EquipmentStatus = "Em Uso"
	StatusEstoque    EquipmentStatus = "Estoque"
	StatusManutencao EquipmentStatus = "Manutenção"
	StatusDescartado EquipmentStatus = "Descartado"
	StatusPerdido    EquipmentStatus = "Perdido"
	StatusDoado      EquipmentStatus = "Doado"
)

var EquipmentStatuses = []EquipmentStatus{
	StatusEmUso, StatusEstoque, StatusManutencao, StatusDescartado, StatusPerdido, StatusDoado,
}

func (s EquipmentStatus) Valid() bool {
	for _, v := range EquipmentStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type TermCondition string

const (
	TermNA              TermCondition = "N/A"
	TermPendente        TermCondition = "Pendente"
	TermAssinadoEntrega TermCondition = "Assinado - Entrega"
	TermAssinadoDevol   TermCondition = "Assinado - Devolução"
)

var TermConditions = []TermCondition{TermNA, TermPendente, TermAssinadoEntrega, TermAssinadoDevol}

func (c TermCondition) Valid() bool {
	for _, v := range TermConditions {
		if v == c {
			return true
		}
	}
	return false
}

type ApprovalStatus string

const (
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalPending  ApprovalStatus = "pending_approval"
	ApprovalRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) Valid() bool {
	return s == ApprovalApproved || s == ApprovalPending || s == ApprovalRejected
}

type UserRole string

const (
	RoleAdmin       UserRole = "Admin"
	RoleUserManager UserRole = "User Manager"
	RoleUser        UserRole = "User"
)

func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleUserManager || r == RoleUser
}

// Privileged - администратор или менеджер: их записи сразу одобрены.
func (r UserRole) Privileged() bool {
	return r == RoleAdmin || r == RoleUserManager
}

type AuditAction string

const (
	ActionCreate         AuditAction = "CREATE"
	ActionUpdate         AuditAction = "UPDATE"
	ActionDelete         AuditAction = "DELETE"
	ActionLogin          AuditAction = "LOGIN"
	ActionLoginFailed    AuditAction = "LOGIN_FAILED"
	ActionLogout         AuditAction = "LOGOUT"
	Action2FAEnable      AuditAction = "2FA_ENABLE"
	Action2FADisable     AuditAction = "2FA_DISABLE"
	ActionSettingsUpdate AuditAction = "SETTINGS_UPDATE"
	ActionApprove        AuditAction = "APPROVE"
	ActionReject         AuditAction = "REJECT"
	ActionDeliver        AuditAction = "DELIVER"
	ActionReturn         AuditAction = "RETURN"
	ActionImport         AuditAction = "IMPORT"
)

type AuditTarget string

const (
	TargetEquipment AuditTarget = "EQUIPMENT"
	TargetLicense   AuditTarget = "LICENSE"
	TargetUser      AuditTarget = "USER"
	TargetSettings  AuditTarget = "SETTINGS"
	TargetProduct   AuditTarget = "PRODUCT"
	TargetTotals    AuditTarget = "TOTALS"
	TargetDatabase  AuditTarget = "DATABASE"
)

// ItemType различает записи в очереди одобрения.
type ItemType string

const (
	ItemEquipment ItemType = "equipment"
	ItemLicense   ItemType = "license"
)

func (t ItemType) Valid() bool { return t == ItemEquipment || t == ItemLicense }
