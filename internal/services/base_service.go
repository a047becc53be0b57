package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"inventory-system/internal/authz"
	"inventory-system/internal/entities"
	"inventory-system/internal/repositories"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/eventbus"
	"inventory-system/pkg/utils"
)

// timeNow подменяется в тестах.
var timeNow = time.Now

// EventPublisher - то, что сервисам нужно от шины событий.
type EventPublisher interface {
	Publish(ctx context.Context, event eventbus.Event)
}

// BaseService - общее для сервисов: текущий пользователь, проверка прав, аудит, кеш.
type BaseService struct {
	userRepo  repositories.UserRepositoryInterface
	auditRepo repositories.AuditLogRepositoryInterface
	cache     repositories.CacheRepositoryInterface
	logger    *zap.Logger
}

func NewBaseService(
	userRepo repositories.UserRepositoryInterface,
	auditRepo repositories.AuditLogRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	logger *zap.Logger,
) *BaseService {
	return &BaseService{userRepo: userRepo, auditRepo: auditRepo, cache: cache, logger: logger}
}

// Actor загружает пользователя запроса. Роль берётся из БД, а не из токена.
func (s *BaseService) Actor(ctx context.Context) (*entities.User, error) {
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	actor, err := s.userRepo.FindUserByID(ctx, nil, userID)
	if err != nil {
		s.logger.Warn("Пользователь из токена не найден", zap.Uint64("userID", userID), zap.Error(err))
		return nil, apperrors.ErrUnauthorized
	}
	return actor, nil
}

// Authorize возвращает текущего пользователя, если ему разрешено действие над target.
func (s *BaseService) Authorize(ctx context.Context, permission string, target interface{}) (*entities.User, error) {
	actor, err := s.Actor(ctx)
	if err != nil {
		return nil, err
	}
	if !authz.Can(actor, permission, target) {
		s.logger.Warn("Отказано в доступе",
			zap.Uint64("userID", actor.ID),
			zap.String("role", string(actor.Role)),
			zap.String("permission", permission),
		)
		return nil, apperrors.ErrForbidden
	}
	return actor, nil
}

// visibilityFor - какие записи видит пользователь в списках.
func visibilityFor(actor *entities.User) repositories.Visibility {
	return repositories.Visibility{
		UserID: actor.ID,
		SeeAll: authz.RolePermissions(actor.Role)[authz.ScopeAll],
	}
}

// Audit пишет запись журнала в той же транзакции, что и само действие.
func (s *BaseService) Audit(ctx context.Context, tx pgx.Tx, username string, action entities.AuditAction, target entities.AuditTarget, targetID interface{}, details string) error {
	entry := entities.AuditLog{
		Username:   username,
		ActionType: action,
		TargetType: target,
		Details:    details,
		Timestamp:  timeNow(),
	}
	if targetID != nil {
		id := fmt.Sprint(targetID)
		entry.TargetID = &id
	}
	return s.auditRepo.Append(ctx, tx, entry)
}

// AuditAsync - аудит вне транзакции; ошибка только логируется.
func (s *BaseService) AuditAsync(ctx context.Context, username string, action entities.AuditAction, target entities.AuditTarget, targetID interface{}, details string) {
	if err := s.Audit(ctx, nil, username, action, target, targetID, details); err != nil {
		s.logger.Error("Ошибка записи в аудит", zap.String("action", string(action)), zap.Error(err))
	}
}

// CacheGet читает JSON из кеша. false - промах или ошибка.
func (s *BaseService) CacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(cached), dest) == nil
}

func (s *BaseService) CacheSet(ctx context.Context, key string, data interface{}, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	serialized, err := json.Marshal(data)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, serialized, ttl); err != nil {
		s.logger.Warn("Не удалось записать в кеш", zap.String("key", key), zap.Error(err))
	}
}

func (s *BaseService) CacheDel(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.logger.Warn("Не удалось очистить кеш", zap.Strings("keys", keys), zap.Error(err))
	}
}
