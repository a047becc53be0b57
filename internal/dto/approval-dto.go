package dto

import "inventory-system/internal/entities"

type PendingItemDTO struct {
	ID   uint64            `json:"id"`
	Name string            `json:"name"`
	Type entities.ItemType `json:"type"`
}

type ApproveDTO struct {
	Type string `json:"type" validate:"required,oneof=equipment license"`
	ID   uint64 `json:"id" validate:"required"`
}

type RejectDTO struct {
	Type   string `json:"type" validate:"required,oneof=equipment license"`
	ID     uint64 `json:"id" validate:"required"`
	Reason string `json:"reason" validate:"required,notblank"`
}
