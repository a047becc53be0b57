package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"

	"inventory-system/internal/authz"
	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/internal/repositories"
	apperrors "inventory-system/pkg/errors"
)

type TwoFAServiceInterface interface {
	Generate(ctx context.Context) (*dto.TwoFASetupDTO, error)
	Enable(ctx context.Context, token string) error
	Disable(ctx context.Context) error
	DisableForUser(ctx context.Context, userID uint64) error
}

type TwoFAService struct {
	*BaseService
	userRepo  repositories.UserRepositoryInterface
	txManager repositories.TxManagerInterface
	issuer    string
	logger    *zap.Logger
}

func NewTwoFAService(
	base *BaseService,
	userRepo repositories.UserRepositoryInterface,
	txManager repositories.TxManagerInterface,
	issuer string,
	logger *zap.Logger,
) TwoFAServiceInterface {
	return &TwoFAService{
		BaseService: base,
		userRepo:    userRepo,
		txManager:   txManager,
		issuer:      issuer,
		logger:      logger,
	}
}

// Generate создаёт новый секрет. До Enable с верным кодом 2FA остаётся выключенной.
func (s *TwoFAService) Generate(ctx context.Context) (*dto.TwoFASetupDTO, error) {
	actor, err := s.Actor(ctx)
	if err != nil {
		return nil, err
	}

	account := actor.Email
	if account == "" {
		account = actor.Username
	}
	key, err := totp.Generate(totp.GenerateOpts{Issuer: s.issuer, AccountName: account})
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации секрета 2FA: %w", err)
	}

	secret := key.Secret()
	if err := s.userRepo.Set2FA(ctx, nil, actor.ID, false, &secret); err != nil {
		return nil, err
	}
	return &dto.TwoFASetupDTO{Secret: secret, OtpauthURL: key.URL()}, nil
}

func (s *TwoFAService) Enable(ctx context.Context, token string) error {
	actor, err := s.Actor(ctx)
	if err != nil {
		return err
	}
	if actor.TwoFASecret == nil || *actor.TwoFASecret == "" {
		return apperrors.NewInvalidInputError("Gere um segredo 2FA antes de ativar")
	}
	if !totp.Validate(token, *actor.TwoFASecret) {
		return apperrors.NewInvalidInputError("Token inválido")
	}

	return s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.userRepo.Set2FA(ctx, tx, actor.ID, true, actor.TwoFASecret); err != nil {
			return err
		}
		return s.Audit(ctx, tx, actor.Username, entities.Action2FAEnable, entities.TargetUser, actor.ID, "2FA enabled")
	})
}

func (s *TwoFAService) Disable(ctx context.Context) error {
	actor, err := s.Actor(ctx)
	if err != nil {
		return err
	}
	return s.disable(ctx, actor, actor.ID)
}

// DisableForUser - сброс 2FA администратором, например при потере устройства.
func (s *TwoFAService) DisableForUser(ctx context.Context, userID uint64) error {
	actor, err := s.Authorize(ctx, authz.Users2FAManage, nil)
	if err != nil {
		return err
	}
	if _, err := s.userRepo.FindUserByID(ctx, nil, userID); err != nil {
		return err
	}
	return s.disable(ctx, actor, userID)
}

func (s *TwoFAService) disable(ctx context.Context, actor *entities.User, userID uint64) error {
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.userRepo.Set2FA(ctx, tx, userID, false, nil); err != nil {
			return err
		}
		return s.Audit(ctx, tx, actor.Username, entities.Action2FADisable, entities.TargetUser, userID, "2FA disabled")
	})
	if err != nil {
		return err
	}
	s.logger.Info("2FA отключена", zap.Uint64("userID", userID), zap.String("by", actor.Username))
	return nil
}
