package dto

import "inventory-system/internal/entities"

type TermTemplatesDTO struct {
	EntregaTemplate   *string `json:"entregaTemplate"`
	DevolucaoTemplate *string `json:"devolucaoTemplate"`
}

type ConfirmDTO struct {
	Confirm bool `json:"confirm"`
}

type DashboardDTO struct {
	StatusCounts     map[string]uint64  `json:"statusCounts"`
	TotalEquipment   uint64             `json:"totalEquipment"`
	PendingApprovals int                `json:"pendingApprovals"`
	ExpiringLicenses []entities.License `json:"expiringLicenses"`
}
