package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"inventory-system/internal/authz"
	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/internal/repositories"
)

// expiringWindow - горизонт «скоро истекает» для лицензий.
const expiringWindow = 30 * 24 * time.Hour

type DashboardServiceInterface interface {
	GetDashboard(ctx context.Context) (*dto.DashboardDTO, error)
}

type DashboardService struct {
	*BaseService
	equipmentRepo repositories.EquipmentRepositoryInterface
	licenseRepo   repositories.LicenseRepositoryInterface
	logger        *zap.Logger
}

func NewDashboardService(
	base *BaseService,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	licenseRepo repositories.LicenseRepositoryInterface,
	logger *zap.Logger,
) DashboardServiceInterface {
	return &DashboardService{
		BaseService:   base,
		equipmentRepo: equipmentRepo,
		licenseRepo:   licenseRepo,
		logger:        logger,
	}
}

func (s *DashboardService) GetDashboard(ctx context.Context) (*dto.DashboardDTO, error) {
	actor, err := s.Authorize(ctx, authz.DashboardView, nil)
	if err != nil {
		return nil, err
	}
	seesApprovals := authz.Can(actor, authz.ApprovalsView, nil)

	var (
		wg           sync.WaitGroup
		counts       map[string]uint64
		expiring     []entities.License
		pendingEquip []entities.Equipment
		pendingLic   []entities.License

		errs []error
		mu   sync.Mutex
	)

	addTask := func(fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}

	addTask(func() (err error) { counts, err = s.equipmentRepo.CountByStatus(ctx); return })
	addTask(func() (err error) { expiring, err = s.licenseRepo.ListExpiring(ctx); return })
	if seesApprovals {
		addTask(func() (err error) { pendingEquip, err = s.equipmentRepo.ListPending(ctx); return })
		addTask(func() (err error) { pendingLic, err = s.licenseRepo.ListPending(ctx); return })
	}

	wg.Wait()

	if len(errs) > 0 {
		s.logger.Error("Ошибка загрузки дашборда", zap.Error(errs[0]))
		return nil, errs[0]
	}

	return buildDashboard(counts, expiring, len(pendingEquip)+len(pendingLic), timeNow()), nil
}

func buildDashboard(counts map[string]uint64, licenses []entities.License, pending int, now time.Time) *dto.DashboardDTO {
	var total uint64
	for _, n := range counts {
		total += n
	}

	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := from.Add(expiringWindow)
	soon := make([]entities.License, 0)
	for _, l := range licenses {
		if l.ExpiresBetween(from, to) {
			soon = append(soon, l)
		}
	}

	if counts == nil {
		counts = map[string]uint64{}
	}
	return &dto.DashboardDTO{
		StatusCounts:     counts,
		TotalEquipment:   total,
		PendingApprovals: pending,
		ExpiringLicenses: soon,
	}
}
