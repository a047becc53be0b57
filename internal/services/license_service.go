package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"inventory-system/internal/authz"
	"inventory-system/internal/consolidation"
	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/internal/repositories"
	"inventory-system/internal/workflow"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/types"
)

type LicenseServiceInterface interface {
	GetLicenses(ctx context.Context, filter types.Filter) ([]entities.License, uint64, error)
	CreateLicense(ctx context.Context, payload dto.LicenseDTO) (*entities.License, error)
	UpdateLicense(ctx context.Context, id uint64, payload dto.LicenseDTO) (*entities.License, error)
	DeleteLicense(ctx context.Context, id uint64) error
	Import(ctx context.Context, product string, csvText string, confirm bool) (*dto.LicenseImportResultDTO, error)
	Totals(ctx context.Context) (entities.ProductTotals, error)
	SaveTotals(ctx context.Context, totals entities.ProductTotals) (entities.ProductTotals, error)
	SaveProducts(ctx context.Context, payload dto.SaveProductsDTO) (entities.ProductTotals, error)
	RenameProduct(ctx context.Context, oldName, newName string) (entities.ProductTotals, error)
	Seats(ctx context.Context) ([]workflow.SeatUsage, error)
	Export(ctx context.Context) ([]byte, error)
}

type LicenseService struct {
	*BaseService
	licenseRepo  repositories.LicenseRepositoryInterface
	settingsRepo repositories.SettingsRepositoryInterface
	settings     SettingsServiceInterface
	txManager    repositories.TxManagerInterface
	logger       *zap.Logger
}

func NewLicenseService(
	base *BaseService,
	licenseRepo repositories.LicenseRepositoryInterface,
	settingsRepo repositories.SettingsRepositoryInterface,
	settings SettingsServiceInterface,
	txManager repositories.TxManagerInterface,
	logger *zap.Logger,
) LicenseServiceInterface {
	return &LicenseService{
		BaseService:  base,
		licenseRepo:  licenseRepo,
		settingsRepo: settingsRepo,
		settings:     settings,
		txManager:    txManager,
		logger:       logger,
	}
}

func (s *LicenseService) GetLicenses(ctx context.Context, filter types.Filter) ([]entities.License, uint64, error) {
	actor, err := s.Authorize(ctx, authz.LicensesView, nil)
	if err != nil {
		return nil, 0, err
	}
	return s.licenseRepo.GetAll(ctx, filter, visibilityFor(actor))
}

func (s *LicenseService) CreateLicense(ctx context.Context, payload dto.LicenseDTO) (*entities.License, error) {
	actor, err := s.Authorize(ctx, authz.LicensesCreate, nil)
	if err != nil {
		return nil, err
	}

	license := payload.License()
	license.ApprovalStatus = workflow.InitialApprovalStatus(actor.Role)
	license.CreatedByID = &actor.ID

	var created *entities.License
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.ensureManagedProduct(ctx, tx, license.Produto); err != nil {
			return err
		}
		id, err := s.licenseRepo.Create(ctx, tx, license)
		if err != nil {
			return err
		}
		if err := s.Audit(ctx, tx, actor.Username, entities.ActionCreate, entities.TargetLicense, id,
			fmt.Sprintf("Created license for %s: %s", license.Produto, license.Usuario)); err != nil {
			return err
		}
		created, err = s.licenseRepo.FindByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *LicenseService) UpdateLicense(ctx context.Context, id uint64, payload dto.LicenseDTO) (*entities.License, error) {
	actor, err := s.Actor(ctx)
	if err != nil {
		return nil, err
	}

	var updated *entities.License
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.licenseRepo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if !authz.Can(actor, authz.LicensesUpdate, current) {
			return apperrors.ErrForbidden
		}

		next := payload.License()
		next.ID = id
		if next.Produto != current.Produto {
			if err := s.ensureManagedProduct(ctx, tx, next.Produto); err != nil {
				return err
			}
		}
		if err := s.licenseRepo.Update(ctx, tx, next); err != nil {
			return err
		}
		if err := s.Audit(ctx, tx, actor.Username, entities.ActionUpdate, entities.TargetLicense, id,
			fmt.Sprintf("Updated license for %s: %s", next.Produto, next.Usuario)); err != nil {
			return err
		}
		updated, err = s.licenseRepo.FindByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *LicenseService) DeleteLicense(ctx context.Context, id uint64) error {
	actor, err := s.Actor(ctx)
	if err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.licenseRepo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if !authz.Can(actor, authz.LicensesDelete, current) {
			return apperrors.ErrForbidden
		}
		if err := s.licenseRepo.Delete(ctx, tx, id); err != nil {
			return err
		}
		return s.Audit(ctx, tx, actor.Username, entities.ActionDelete, entities.TargetLicense, id,
			fmt.Sprintf("Deleted license for %s: %s", current.Produto, current.Usuario))
	})
}

// Import заменяет все лицензии продукта содержимым CSV. Файл с любой ошибкой
// отклоняется целиком, база не меняется.
func (s *LicenseService) Import(ctx context.Context, product string, csvText string, confirm bool) (*dto.LicenseImportResultDTO, error) {
	actor, err := s.Authorize(ctx, authz.LicensesImport, nil)
	if err != nil {
		return nil, err
	}
	product = strings.TrimSpace(product)
	if product == "" {
		return nil, apperrors.NewInvalidInputError("Selecione o produto da importação")
	}

	licenses, err := consolidation.ParseLicenses(csvText, product)
	if err != nil {
		return nil, apperrors.NewInvalidInputError("%s", err.Error())
	}
	if !confirm {
		return nil, apperrors.ErrConfirmationRequired
	}

	result := &dto.LicenseImportResultDTO{Product: product, Imported: len(licenses)}
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		removed, err := s.licenseRepo.DeleteByProduct(ctx, tx, product)
		if err != nil {
			return err
		}
		result.Removed = removed

		for _, l := range licenses {
			l.ApprovalStatus = entities.ApprovalApproved
			l.CreatedByID = &actor.ID
			if _, err := s.licenseRepo.Create(ctx, tx, l); err != nil {
				return err
			}
		}

		settings, err := s.settingsRepo.Load(ctx, tx)
		if err != nil {
			return err
		}
		if _, ok := settings.LicenseTotals[product]; !ok {
			settings.LicenseTotals = settings.LicenseTotals.Clone()
			settings.LicenseTotals[product] = 0
			if err := s.settingsRepo.Save(ctx, tx, settings); err != nil {
				return err
			}
		}

		return s.Audit(ctx, tx, actor.Username, entities.ActionImport, entities.TargetLicense, product,
			fmt.Sprintf("Replaced all licenses for product %s with %d new items via CSV import.", product, len(licenses)))
	})
	if err != nil {
		return nil, err
	}

	s.settings.Invalidate(ctx)
	s.logger.Info("Лицензии импортированы",
		zap.String("product", product),
		zap.Int("imported", result.Imported),
		zap.Int64("removed", result.Removed),
	)
	return result, nil
}

func (s *LicenseService) Totals(ctx context.Context) (entities.ProductTotals, error) {
	if _, err := s.Authorize(ctx, authz.LicensesView, nil); err != nil {
		return nil, err
	}
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	return settings.LicenseTotals, nil
}

func (s *LicenseService) SaveTotals(ctx context.Context, totals entities.ProductTotals) (entities.ProductTotals, error) {
	actor, err := s.Authorize(ctx, authz.LicensesTotals, nil)
	if err != nil {
		return nil, err
	}
	if err := totals.Validate(); err != nil {
		return nil, apperrors.NewInvalidInputError("%s", err.Error())
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		settings, err := s.settingsRepo.Load(ctx, tx)
		if err != nil {
			return err
		}
		settings.LicenseTotals = totals.Clone()
		if err := s.settingsRepo.Save(ctx, tx, settings); err != nil {
			return err
		}
		return s.Audit(ctx, tx, actor.Username, entities.ActionUpdate, entities.TargetTotals, nil, "Updated license totals")
	})
	if err != nil {
		return nil, err
	}
	s.settings.Invalidate(ctx)
	return totals, nil
}

// SaveProducts применяет итоговый список продуктов: переименования, удаления
// без ссылок и пересборку итогов, всё в одной транзакции.
func (s *LicenseService) SaveProducts(ctx context.Context, payload dto.SaveProductsDTO) (entities.ProductTotals, error) {
	actor, err := s.Authorize(ctx, authz.LicensesTotals, nil)
	if err != nil {
		return nil, err
	}

	var next entities.ProductTotals
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		settings, err := s.settingsRepo.Load(ctx, tx)
		if err != nil {
			return err
		}
		licenseProducts, err := s.licenseRepo.ListProducts(ctx, tx)
		if err != nil {
			return err
		}
		usage, err := s.licenseRepo.UsageByProduct(ctx, tx)
		if err != nil {
			return err
		}
		current := workflow.ManagedProducts(settings.LicenseTotals, licenseProducts)

		next, err = workflow.PlanProducts(current, settings.LicenseTotals, payload.Products, payload.Renames, usage)
		if err != nil {
			return err
		}

		oldNames := make([]string, 0, len(payload.Renames))
		for oldName := range payload.Renames {
			oldNames = append(oldNames, oldName)
		}
		sort.Strings(oldNames)
		for _, oldName := range oldNames {
			newName := payload.Renames[oldName]
			if oldName == newName {
				continue
			}
			if _, err := s.licenseRepo.RenameProduct(ctx, tx, oldName, newName); err != nil {
				return err
			}
			if err := s.Audit(ctx, tx, actor.Username, entities.ActionUpdate, entities.TargetProduct, oldName,
				fmt.Sprintf("Renamed product %s to %s", oldName, newName)); err != nil {
				return err
			}
		}

		settings.LicenseTotals = next
		if err := s.settingsRepo.Save(ctx, tx, settings); err != nil {
			return err
		}
		return s.Audit(ctx, tx, actor.Username, entities.ActionUpdate, entities.TargetTotals, nil,
			fmt.Sprintf("Product list saved: %s", strings.Join(next.Products(), ", ")))
	})
	if err != nil {
		return nil, err
	}
	s.settings.Invalidate(ctx)
	return next, nil
}

// RenameProduct - одно переименование с сохранением остальных продуктов.
func (s *LicenseService) RenameProduct(ctx context.Context, oldName, newName string) (entities.ProductTotals, error) {
	if _, err := s.Authorize(ctx, authz.LicensesTotals, nil); err != nil {
		return nil, err
	}
	oldName, newName = strings.TrimSpace(oldName), strings.TrimSpace(newName)

	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	licenseProducts, err := s.licenseRepo.ListProducts(ctx, nil)
	if err != nil {
		return nil, err
	}

	final := make([]string, 0)
	for _, p := range workflow.ManagedProducts(settings.LicenseTotals, licenseProducts) {
		if p == oldName {
			p = newName
		}
		final = append(final, p)
	}
	return s.SaveProducts(ctx, dto.SaveProductsDTO{Products: final, Renames: map[string]string{oldName: newName}})
}

func (s *LicenseService) Seats(ctx context.Context) ([]workflow.SeatUsage, error) {
	if _, err := s.Authorize(ctx, authz.LicensesView, nil); err != nil {
		return nil, err
	}
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	licenses, err := s.licenseRepo.ListAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	return workflow.ComputeSeats(licenses, settings.LicenseTotals), nil
}

func (s *LicenseService) Export(ctx context.Context) ([]byte, error) {
	actor, err := s.Authorize(ctx, authz.EquipmentExport, nil)
	if err != nil {
		return nil, err
	}
	list, _, err := s.licenseRepo.GetAll(ctx, types.Filter{}, visibilityFor(actor))
	if err != nil {
		return nil, err
	}
	return licenseWorkbook(list)
}

func (s *LicenseService) ensureManagedProduct(ctx context.Context, tx pgx.Tx, product string) error {
	settings, err := s.settingsRepo.Load(ctx, tx)
	if err != nil {
		return err
	}
	licenseProducts, err := s.licenseRepo.ListProducts(ctx, tx)
	if err != nil {
		return err
	}
	for _, p := range workflow.ManagedProducts(settings.LicenseTotals, licenseProducts) {
		if p == product {
			return nil
		}
	}
	return apperrors.NewInvalidInputError("Produto %q não está cadastrado", product)
}
