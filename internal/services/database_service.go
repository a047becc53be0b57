package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"inventory-system/internal/authz"
	"inventory-system/internal/entities"
	"inventory-system/internal/repositories"
	apperrors "inventory-system/pkg/errors"
)

type DatabaseServiceInterface interface {
	Clear(ctx context.Context, confirm bool) error
}

type DatabaseService struct {
	*BaseService
	equipmentRepo repositories.EquipmentRepositoryInterface
	historyRepo   repositories.EquipmentHistoryRepositoryInterface
	licenseRepo   repositories.LicenseRepositoryInterface
	auditRepo     repositories.AuditLogRepositoryInterface
	settingsRepo  repositories.SettingsRepositoryInterface
	userRepo      repositories.UserRepositoryInterface
	settings      SettingsServiceInterface
	txManager     repositories.TxManagerInterface
	logger        *zap.Logger
}

func NewDatabaseService(
	base *BaseService,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	historyRepo repositories.EquipmentHistoryRepositoryInterface,
	licenseRepo repositories.LicenseRepositoryInterface,
	auditRepo repositories.AuditLogRepositoryInterface,
	settingsRepo repositories.SettingsRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	settings SettingsServiceInterface,
	txManager repositories.TxManagerInterface,
	logger *zap.Logger,
) DatabaseServiceInterface {
	return &DatabaseService{
		BaseService:   base,
		equipmentRepo: equipmentRepo,
		historyRepo:   historyRepo,
		licenseRepo:   licenseRepo,
		auditRepo:     auditRepo,
		settingsRepo:  settingsRepo,
		userRepo:      userRepo,
		settings:      settings,
		txManager:     txManager,
		logger:        logger,
	}
}

// Clear удаляет все данные, кроме встроенного администратора, и восстанавливает
// настройки по умолчанию. Всё или ничего.
func (s *DatabaseService) Clear(ctx context.Context, confirm bool) error {
	actor, err := s.Authorize(ctx, authz.DatabaseClear, nil)
	if err != nil {
		return err
	}
	if !confirm {
		return apperrors.ErrConfirmationRequired
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		steps := []func(context.Context, pgx.Tx) error{
			s.historyRepo.DeleteAll,
			s.licenseRepo.DeleteAll,
			s.equipmentRepo.DeleteAll,
			s.auditRepo.DeleteAll,
			s.settingsRepo.DeleteAll,
		}
		for _, step := range steps {
			if err := step(ctx, tx); err != nil {
				return err
			}
		}
		if err := s.userRepo.DeleteAllExcept(ctx, tx, entities.AdminUsername); err != nil {
			return err
		}
		if err := s.settingsRepo.Save(ctx, tx, entities.DefaultSettings()); err != nil {
			return err
		}
		return s.Audit(ctx, tx, actor.Username, entities.ActionDelete, entities.TargetDatabase, nil, "Database cleared")
	})
	if err != nil {
		return err
	}

	s.settings.Invalidate(ctx)
	s.logger.Warn("База данных очищена", zap.String("by", actor.Username))
	return nil
}
