package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"inventory-system/internal/authz"
	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/internal/repositories"
	"inventory-system/internal/workflow"
	apperrors "inventory-system/pkg/errors"
)

type ApprovalServiceInterface interface {
	ListPending(ctx context.Context) ([]dto.PendingItemDTO, error)
	Approve(ctx context.Context, itemType entities.ItemType, id uint64) error
	Reject(ctx context.Context, itemType entities.ItemType, id uint64, reason string) error
}

type ApprovalService struct {
	*BaseService
	equipmentRepo repositories.EquipmentRepositoryInterface
	licenseRepo   repositories.LicenseRepositoryInterface
	txManager     repositories.TxManagerInterface
	logger        *zap.Logger
}

func NewApprovalService(
	base *BaseService,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	licenseRepo repositories.LicenseRepositoryInterface,
	txManager repositories.TxManagerInterface,
	logger *zap.Logger,
) ApprovalServiceInterface {
	return &ApprovalService{
		BaseService:   base,
		equipmentRepo: equipmentRepo,
		licenseRepo:   licenseRepo,
		txManager:     txManager,
		logger:        logger,
	}
}

// ListPending - очередь одобрения: сначала оборудование, затем лицензии.
func (s *ApprovalService) ListPending(ctx context.Context) ([]dto.PendingItemDTO, error) {
	if _, err := s.Authorize(ctx, authz.ApprovalsView, nil); err != nil {
		return nil, err
	}

	equipment, err := s.equipmentRepo.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	licenses, err := s.licenseRepo.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]dto.PendingItemDTO, 0, len(equipment)+len(licenses))
	for i := range equipment {
		items = append(items, dto.PendingItemDTO{ID: equipment[i].ID, Name: equipment[i].DisplayName(), Type: entities.ItemEquipment})
	}
	for i := range licenses {
		items = append(items, dto.PendingItemDTO{ID: licenses[i].ID, Name: licenses[i].DisplayName(), Type: entities.ItemLicense})
	}
	return items, nil
}

func (s *ApprovalService) Approve(ctx context.Context, itemType entities.ItemType, id uint64) error {
	return s.decide(ctx, itemType, id, func(current entities.ApprovalStatus) (entities.ApprovalStatus, *string, error) {
		next, err := workflow.Approve(current)
		return next, nil, err
	}, entities.ActionApprove)
}

func (s *ApprovalService) Reject(ctx context.Context, itemType entities.ItemType, id uint64, reason string) error {
	return s.decide(ctx, itemType, id, func(current entities.ApprovalStatus) (entities.ApprovalStatus, *string, error) {
		next, trimmed, err := workflow.Reject(current, reason)
		if err != nil {
			return "", nil, err
		}
		return next, &trimmed, nil
	}, entities.ActionReject)
}

type decision func(current entities.ApprovalStatus) (entities.ApprovalStatus, *string, error)

// decide блокирует строку, проверяет переход и пишет новый статус вместе с аудитом.
func (s *ApprovalService) decide(ctx context.Context, itemType entities.ItemType, id uint64, decideFn decision, action entities.AuditAction) error {
	actor, err := s.Authorize(ctx, authz.ApprovalsDecide, nil)
	if err != nil {
		return err
	}
	if !itemType.Valid() {
		return apperrors.NewInvalidInputError("Tipo de item inválido: %s", itemType)
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var (
			current entities.ApprovalStatus
			name    string
			target  entities.AuditTarget
		)
		switch itemType {
		case entities.ItemEquipment:
			eq, err := s.equipmentRepo.LockByID(ctx, tx, id)
			if err != nil {
				return err
			}
			current, name, target = eq.ApprovalStatus, eq.DisplayName(), entities.TargetEquipment
		case entities.ItemLicense:
			l, err := s.licenseRepo.LockByID(ctx, tx, id)
			if err != nil {
				return err
			}
			current, name, target = l.ApprovalStatus, l.DisplayName(), entities.TargetLicense
		}

		next, reason, err := decideFn(current)
		if err != nil {
			return err
		}

		if itemType == entities.ItemEquipment {
			err = s.equipmentRepo.SetApproval(ctx, tx, id, next, reason)
		} else {
			err = s.licenseRepo.SetApproval(ctx, tx, id, next, reason)
		}
		if err != nil {
			return err
		}

		details := fmt.Sprintf("Approved %s: %s", itemType, name)
		if reason != nil {
			details = fmt.Sprintf("Rejected %s: %s. Reason: %s", itemType, name, *reason)
		}
		return s.Audit(ctx, tx, actor.Username, action, target, id, details)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Решение по одобрению",
		zap.String("type", string(itemType)),
		zap.Uint64("id", id),
		zap.String("action", string(action)),
		zap.String("by", actor.Username),
	)
	return nil
}
