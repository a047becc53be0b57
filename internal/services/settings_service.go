package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"inventory-system/internal/authz"
	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/internal/repositories"
	apperrors "inventory-system/pkg/errors"
)

const (
	settingsCacheKey = "settings:app"
	settingsCacheTTL = 10 * time.Minute
)

type SettingsServiceInterface interface {
	Current(ctx context.Context) (entities.AppSettings, error)
	Get(ctx context.Context) (*entities.AppSettings, error)
	Save(ctx context.Context, incoming entities.AppSettings) (*entities.AppSettings, error)
	TermTemplates(ctx context.Context) (*dto.TermTemplatesDTO, error)
	Invalidate(ctx context.Context)
}

type SettingsService struct {
	*BaseService
	settingsRepo repositories.SettingsRepositoryInterface
	txManager    repositories.TxManagerInterface
	logger       *zap.Logger
}

func NewSettingsService(
	base *BaseService,
	settingsRepo repositories.SettingsRepositoryInterface,
	txManager repositories.TxManagerInterface,
	logger *zap.Logger,
) SettingsServiceInterface {
	return &SettingsService{
		BaseService:  base,
		settingsRepo: settingsRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// Current - настройки без проверки прав, для внутренних нужд (вход, SSO, термо).
func (s *SettingsService) Current(ctx context.Context) (entities.AppSettings, error) {
	var cached entities.AppSettings
	if s.CacheGet(ctx, settingsCacheKey, &cached) {
		if cached.LicenseTotals == nil {
			cached.LicenseTotals = entities.ProductTotals{}
		}
		return cached, nil
	}

	settings, err := s.settingsRepo.Load(ctx, nil)
	if err != nil {
		return entities.AppSettings{}, err
	}
	s.CacheSet(ctx, settingsCacheKey, settings, settingsCacheTTL)
	return settings, nil
}

func (s *SettingsService) Invalidate(ctx context.Context) {
	s.CacheDel(ctx, settingsCacheKey)
}

func (s *SettingsService) Get(ctx context.Context) (*entities.AppSettings, error) {
	if _, err := s.Authorize(ctx, authz.SettingsView, nil); err != nil {
		return nil, err
	}
	settings, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	settings.SMTP.Password = ""
	return &settings, nil
}

// Save обновляет редактируемые настройки. Флаги консолидации и итоги лицензий
// ведёт система, из запроса они не берутся. Пустой пароль SMTP сохраняет прежний.
func (s *SettingsService) Save(ctx context.Context, incoming entities.AppSettings) (*entities.AppSettings, error) {
	actor, err := s.Authorize(ctx, authz.SettingsUpdate, nil)
	if err != nil {
		return nil, err
	}

	if err := incoming.Validate(); err != nil {
		return nil, apperrors.NewInvalidInputError("%s", err.Error())
	}

	var saved entities.AppSettings
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.settingsRepo.Load(ctx, tx)
		if err != nil {
			return err
		}

		next := incoming
		next.HasInitialConsolidationRun = current.HasInitialConsolidationRun
		next.LastAbsoluteUpdateTimestamp = current.LastAbsoluteUpdateTimestamp
		next.LicenseTotals = current.LicenseTotals
		if next.SMTP.Password == "" {
			next.SMTP.Password = current.SMTP.Password
		}

		if err := s.settingsRepo.Save(ctx, tx, next); err != nil {
			return err
		}
		saved = next
		return s.Audit(ctx, tx, actor.Username, entities.ActionSettingsUpdate, entities.TargetSettings, nil, "Configurações atualizadas")
	})
	if err != nil {
		return nil, err
	}

	s.Invalidate(ctx)
	s.logger.Info("Настройки обновлены", zap.String("username", actor.Username))
	saved.SMTP.Password = ""
	return &saved, nil
}

// TermTemplates - действующие шаблоны термо; пустой шаблон заменяется встроенным.
func (s *SettingsService) TermTemplates(ctx context.Context) (*dto.TermTemplatesDTO, error) {
	if _, err := s.Actor(ctx); err != nil {
		return nil, err
	}
	settings, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	entrega := templateFor(settings, TermEntrega)
	devolucao := templateFor(settings, TermDevolucao)
	return &dto.TermTemplatesDTO{EntregaTemplate: &entrega, DevolucaoTemplate: &devolucao}, nil
}
