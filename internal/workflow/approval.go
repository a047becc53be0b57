package workflow

import (
	"fmt"
	"strings"

	"inventory-system/internal/entities"
	apperrors "inventory-system/pkg/errors"
)

// InitialApprovalStatus - администратор и менеджер создают сразу одобренные записи,
// обычный пользователь - ожидающие одобрения.
func InitialApprovalStatus(role entities.UserRole) entities.ApprovalStatus {
	if role.Privileged() {
		return entities.ApprovalApproved
	}
	return entities.ApprovalPending
}

// Approve переводит pending_approval -> approved. Из конечных состояний переход запрещён.
func Approve(current entities.ApprovalStatus) (entities.ApprovalStatus, error) {
	if current != entities.ApprovalPending {
		return current, fmt.Errorf("aprovar item em estado %q: %w", current, apperrors.ErrInvalidTransition)
	}
	return entities.ApprovalApproved, nil
}

// Reject переводит pending_approval -> rejected. Причина обязательна и возвращается очищенной.
func Reject(current entities.ApprovalStatus, reason string) (entities.ApprovalStatus, string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return current, "", apperrors.NewInvalidInputError("O motivo da rejeição é obrigatório")
	}
	if current != entities.ApprovalPending {
		return current, "", fmt.Errorf("rejeitar item em estado %q: %w", current, apperrors.ErrInvalidTransition)
	}
	return entities.ApprovalRejected, reason, nil
}
