// Файл: internal/services/auth.go
package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/internal/repositories"
	"inventory-system/pkg/config"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/service"
	"inventory-system/pkg/utils"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error)
	Verify2FA(ctx context.Context, payload dto.Verify2FADTO) (*dto.AuthResponseDTO, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*dto.AuthResponseDTO, error)
	Logout(ctx context.Context) error
	GetUserByID(ctx context.Context, userID uint64) (*entities.User, error)
}

type AuthService struct {
	*BaseService
	userRepo  repositories.UserRepositoryInterface
	cacheRepo repositories.CacheRepositoryInterface
	settings  SettingsServiceInterface
	jwtSvc    service.JWTService
	logger    *zap.Logger
	cfg       *config.AuthConfig
}

func NewAuthService(
	base *BaseService,
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	settings SettingsServiceInterface,
	jwtSvc service.JWTService,
	logger *zap.Logger,
	cfg *config.AuthConfig,
) AuthServiceInterface {
	return &AuthService{
		BaseService: base,
		userRepo:    userRepo,
		cacheRepo:   cacheRepo,
		settings:    settings,
		jwtSvc:      jwtSvc,
		logger:      logger,
		cfg:         cfg,
	}
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error) {
	username := strings.TrimSpace(payload.Username)
	logger := s.logger.With(zap.String("username", username))

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		s.AuditAsync(ctx, username, entities.ActionLoginFailed, entities.TargetUser, nil, "Usuário não encontrado")
		return nil, apperrors.ErrInvalidCredentials
	}
	if err := s.checkLockout(ctx, user.ID); err != nil {
		logger.Warn("Попытка входа в заблокированный аккаунт")
		return nil, err
	}
	if err := utils.ComparePasswords(user.Password, payload.Password); err != nil {
		s.handleFailedLoginAttempt(ctx, user.ID)
		s.AuditAsync(ctx, user.Username, entities.ActionLoginFailed, entities.TargetUser, user.ID, "Senha inválida")
		return nil, apperrors.ErrInvalidCredentials
	}

	// Второй фактор: токены выдаются только после проверки кода.
	if user.Is2FAEnabled && user.TwoFASecret != nil && *user.TwoFASecret != "" {
		challengeID := uuid.New().String()
		if err := s.cacheRepo.Set(ctx, challengeKey(challengeID), user.ID, s.cfg.ChallengeTTL); err != nil {
			return nil, fmt.Errorf("не удалось сохранить 2FA-сессию: %w", err)
		}
		logger.Info("Требуется код 2FA")
		return &dto.AuthResponseDTO{Requires2FA: true, ChallengeID: challengeID}, nil
	}

	s.resetLoginAttempts(ctx, user.ID)

	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	if needs2FASetup(settings, user) {
		s.AuditAsync(ctx, user.Username, entities.ActionLogin, entities.TargetUser, user.ID, "User requires 2FA setup.")
		resp, err := s.issueTokens(ctx, user, false)
		if err != nil {
			return nil, err
		}
		resp.Requires2FASetup = true
		return resp, nil
	}

	return s.issueTokens(ctx, user, true)
}

func (s *AuthService) Verify2FA(ctx context.Context, payload dto.Verify2FADTO) (*dto.AuthResponseDTO, error) {
	key := challengeKey(payload.ChallengeID)
	stored, err := s.cacheRepo.Get(ctx, key)
	if err != nil {
		return nil, apperrors.ErrChallengeNotFound
	}
	userID, err := strconv.ParseUint(stored, 10, 64)
	if err != nil {
		return nil, apperrors.ErrChallengeNotFound
	}

	user, err := s.userRepo.FindUserByID(ctx, nil, userID)
	if err != nil {
		return nil, apperrors.ErrChallengeNotFound
	}
	if err := s.checkLockout(ctx, user.ID); err != nil {
		return nil, err
	}
	if user.TwoFASecret == nil || !totp.Validate(payload.Token, *user.TwoFASecret) {
		s.handleFailedLoginAttempt(ctx, user.ID)
		s.AuditAsync(ctx, user.Username, entities.ActionLoginFailed, entities.TargetUser, user.ID, "Código 2FA inválido")
		return nil, apperrors.ErrInvalid2FAToken
	}

	s.CacheDel(ctx, key)
	s.resetLoginAttempts(ctx, user.ID)
	return s.issueTokens(ctx, user, true)
}

func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*dto.AuthResponseDTO, error) {
	claims, err := s.jwtSvc.ValidateToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefreshToken {
		return nil, apperrors.ErrTokenIsNotRefresh
	}
	// Роль перечитывается из БД: токен мог пережить её смену.
	user, err := s.userRepo.FindUserByID(ctx, nil, claims.UserID)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	access, refresh, err := s.jwtSvc.GenerateTokens(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации токенов: %w", err)
	}
	return &dto.AuthResponseDTO{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	actor, err := s.Actor(ctx)
	if err != nil {
		return err
	}
	s.AuditAsync(ctx, actor.Username, entities.ActionLogout, entities.TargetUser, actor.ID, "User logged out")
	return nil
}

func (s *AuthService) GetUserByID(ctx context.Context, userID uint64) (*entities.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, nil, userID)
	if err != nil {
		s.logger.Warn("GetUserByID: не удалось найти пользователя", zap.Uint64("userID", userID), zap.Error(err))
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

// issueTokens выдаёт пару токенов. recordLogin - обычный вход: last_login и аудит LOGIN.
func (s *AuthService) issueTokens(ctx context.Context, user *entities.User, recordLogin bool) (*dto.AuthResponseDTO, error) {
	access, refresh, err := s.jwtSvc.GenerateTokens(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации токенов: %w", err)
	}

	if recordLogin {
		now := timeNow()
		if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
			s.logger.Warn("Не удалось обновить last_login", zap.Uint64("userID", user.ID), zap.Error(err))
		} else {
			user.LastLogin = &now
		}
		s.AuditAsync(ctx, user.Username, entities.ActionLogin, entities.TargetUser, user.ID, "User logged in successfully")
	}

	s.logger.Info("Пользователь вошёл в систему", zap.Uint64("userID", user.ID), zap.String("role", string(user.Role)))
	return &dto.AuthResponseDTO{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

// needs2FASetup - 2FA обязательна глобально, а у пользователя не настроена.
// Встроенный администратор и SSO-пользователи освобождены.
func needs2FASetup(settings entities.AppSettings, user *entities.User) bool {
	if !settings.Is2FAEnabled || !settings.Require2FA || user.Is2FAEnabled {
		return false
	}
	if user.Username == entities.AdminUsername {
		return false
	}
	return user.SSOProvider == nil || *user.SSOProvider == ""
}

func challengeKey(id string) string {
	return fmt.Sprintf("2fa_challenge:%s", id)
}

func (s *AuthService) checkLockout(ctx context.Context, userID uint64) error {
	lockoutKey := fmt.Sprintf("lockout:%d", userID)

	// Если ключ существует - аккаунт заблокирован
	if _, err := s.cacheRepo.Get(ctx, lockoutKey); err == nil {
		return apperrors.ErrAccountLocked
	}
	return nil
}

func (s *AuthService) handleFailedLoginAttempt(ctx context.Context, userID uint64) {
	attemptsKey := fmt.Sprintf("login_attempts:%d", userID)
	attempts, err := s.cacheRepo.Incr(ctx, attemptsKey)
	if err != nil {
		s.logger.Warn("Не удалось учесть неудачную попытку входа", zap.Uint64("userID", userID), zap.Error(err))
		return
	}
	if attempts == 1 {
		_, _ = s.cacheRepo.Expire(ctx, attemptsKey, s.cfg.LockoutDuration)
	}
	if attempts >= int64(s.cfg.MaxLoginAttempts) {
		lockoutKey := fmt.Sprintf("lockout:%d", userID)
		_ = s.cacheRepo.Set(ctx, lockoutKey, "locked", s.cfg.LockoutDuration)
		_ = s.cacheRepo.Del(ctx, attemptsKey)
		s.logger.Warn("Аккаунт временно заблокирован", zap.Uint64("userID", userID), zap.Duration("duration", s.cfg.LockoutDuration))
	}
}

func (s *AuthService) resetLoginAttempts(ctx context.Context, userID uint64) {
	attemptsKey := fmt.Sprintf("login_attempts:%d", userID)
	lockoutKey := fmt.Sprintf("lockout:%d", userID)
	_ = s.cacheRepo.Del(ctx, attemptsKey, lockoutKey)
}
