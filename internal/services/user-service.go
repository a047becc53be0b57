package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"inventory-system/internal/authz"
	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/internal/repositories"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/filestorage"
	"inventory-system/pkg/types"
	"inventory-system/pkg/utils"
)

type UserServiceInterface interface {
	GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error)
	FindUser(ctx context.Context, id uint64) (*entities.User, error)
	CreateUser(ctx context.Context, payload dto.CreateUserDTO) (*entities.User, error)
	UpdateUser(ctx context.Context, id uint64, payload dto.UpdateUserDTO) (*entities.User, error)
	DeleteUser(ctx context.Context, id uint64) error
	UpdateProfile(ctx context.Context, id uint64, payload dto.UpdateProfileDTO) (*entities.User, error)
	UploadAvatar(ctx context.Context, id uint64, file io.Reader, fileName string) (*entities.User, error)
}

type UserService struct {
	*BaseService
	txManager      repositories.TxManagerInterface
	userRepository repositories.UserRepositoryInterface
	fileStorage    filestorage.FileStorageInterface
	bcryptCost     int
	logger         *zap.Logger
}

func NewUserService(
	base *BaseService,
	txManager repositories.TxManagerInterface,
	userRepository repositories.UserRepositoryInterface,
	fileStorage filestorage.FileStorageInterface,
	bcryptCost int,
	logger *zap.Logger,
) UserServiceInterface {
	return &UserService{
		BaseService:    base,
		txManager:      txManager,
		userRepository: userRepository,
		fileStorage:    fileStorage,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

func (s *UserService) GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error) {
	if _, err := s.Authorize(ctx, authz.UsersView, nil); err != nil {
		return nil, 0, err
	}
	return s.userRepository.GetUsers(ctx, filter)
}

func (s *UserService) FindUser(ctx context.Context, id uint64) (*entities.User, error) {
	actor, err := s.Actor(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepository.FindUserByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if actor.ID != user.ID && !authz.Can(actor, authz.UsersView, user) {
		return nil, apperrors.ErrForbidden
	}
	return user, nil
}

func (s *UserService) CreateUser(ctx context.Context, payload dto.CreateUserDTO) (*entities.User, error) {
	actor, err := s.Authorize(ctx, authz.UsersCreate, nil)
	if err != nil {
		return nil, err
	}
	role := entities.UserRole(payload.Role)
	if !authz.CanAssignRole(actor, role) {
		return nil, apperrors.ErrForbidden
	}

	hashed, err := utils.HashPassword(payload.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("ошибка хэширования пароля: %w", err)
	}

	user := entities.User{
		Username: strings.TrimSpace(payload.Username),
		RealName: strings.TrimSpace(payload.RealName),
		Email:    strings.TrimSpace(payload.Email),
		Password: hashed,
		Role:     role,
	}

	var created *entities.User
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		id, err := s.userRepository.CreateUser(ctx, tx, user)
		if err != nil {
			return err
		}
		if err := s.Audit(ctx, tx, actor.Username, entities.ActionCreate, entities.TargetUser, id,
			fmt.Sprintf("Created user: %s (%s)", user.Username, user.Role)); err != nil {
			return err
		}
		created, err = s.userRepository.FindUserByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Пользователь создан", zap.Uint64("id", created.ID), zap.String("username", created.Username))
	return created, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id uint64, payload dto.UpdateUserDTO) (*entities.User, error) {
	actor, err := s.Actor(ctx)
	if err != nil {
		return nil, err
	}

	var updated *entities.User
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.userRepository.FindUserByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if !authz.Can(actor, authz.UsersUpdate, current) {
			return apperrors.ErrForbidden
		}

		next := *current
		if payload.Username.Valid {
			next.Username = strings.TrimSpace(payload.Username.String)
		}
		if payload.RealName.Valid {
			next.RealName = strings.TrimSpace(payload.RealName.String)
		}
		if payload.Email.Valid {
			next.Email = strings.TrimSpace(payload.Email.String)
		}
		if payload.Role.Valid && entities.UserRole(payload.Role.String) != current.Role {
			if !authz.CanAssignRole(actor, entities.UserRole(payload.Role.String)) {
				return apperrors.ErrForbidden
			}
			next.Role = entities.UserRole(payload.Role.String)
		}

		if err := s.userRepository.UpdateUser(ctx, tx, next); err != nil {
			return err
		}
		if payload.Password.Valid && payload.Password.String != "" {
			if err := s.setPassword(ctx, tx, id, payload.Password.String); err != nil {
				return err
			}
		}
		if err := s.Audit(ctx, tx, actor.Username, entities.ActionUpdate, entities.TargetUser, id,
			fmt.Sprintf("Updated user: %s", next.Username)); err != nil {
			return err
		}
		updated, err = s.userRepository.FindUserByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uint64) error {
	actor, err := s.Actor(ctx)
	if err != nil {
		return err
	}
	if actor.ID == id {
		return apperrors.NewInvalidInputError("Não é possível excluir o próprio usuário")
	}

	return s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.userRepository.FindUserByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if current.Username == entities.AdminUsername {
			return apperrors.NewInvalidInputError("O usuário administrador padrão não pode ser excluído")
		}
		if !authz.Can(actor, authz.UsersDelete, current) {
			return apperrors.ErrForbidden
		}
		if err := s.userRepository.DeleteUser(ctx, tx, id); err != nil {
			return err
		}
		return s.Audit(ctx, tx, actor.Username, entities.ActionDelete, entities.TargetUser, id,
			fmt.Sprintf("Deleted user: %s", current.Username))
	})
}

// UpdateProfile - пользователь меняет свои данные. Роль здесь не меняется.
func (s *UserService) UpdateProfile(ctx context.Context, id uint64, payload dto.UpdateProfileDTO) (*entities.User, error) {
	actor, err := s.Authorize(ctx, authz.ProfileUpdate, nil)
	if err != nil {
		return nil, err
	}
	if actor.ID != id {
		return nil, apperrors.ErrForbidden
	}

	next := *actor
	if payload.RealName.Valid {
		next.RealName = strings.TrimSpace(payload.RealName.String)
	}
	if payload.Email.Valid {
		next.Email = strings.TrimSpace(payload.Email.String)
	}
	if payload.AvatarURL.Valid {
		avatar := strings.TrimSpace(payload.AvatarURL.String)
		next.AvatarURL = &avatar
		if avatar == "" {
			next.AvatarURL = nil
		}
	}

	var updated *entities.User
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.userRepository.UpdateUser(ctx, tx, next); err != nil {
			return err
		}
		if payload.Password.Valid && payload.Password.String != "" {
			if err := s.setPassword(ctx, tx, id, payload.Password.String); err != nil {
				return err
			}
		}
		if err := s.Audit(ctx, tx, actor.Username, entities.ActionUpdate, entities.TargetUser, id, "Profile updated"); err != nil {
			return err
		}
		updated, err = s.userRepository.FindUserByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UploadAvatar сохраняет фото профиля и записывает его путь в avatar_url.
func (s *UserService) UploadAvatar(ctx context.Context, id uint64, file io.Reader, fileName string) (*entities.User, error) {
	actor, err := s.Authorize(ctx, authz.ProfileUpdate, nil)
	if err != nil {
		return nil, err
	}
	if actor.ID != id {
		return nil, apperrors.ErrForbidden
	}
	if s.fileStorage == nil {
		return nil, apperrors.ErrFeatureNotConfigured
	}

	path, err := s.fileStorage.Save(file, fileName, "avatars")
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения аватара: %w", err)
	}
	avatar := "/uploads/" + path

	next := *actor
	previous := actor.AvatarURL
	next.AvatarURL = &avatar
	if err := s.userRepository.UpdateUser(ctx, nil, next); err != nil {
		_ = s.fileStorage.Delete(path)
		return nil, err
	}
	if previous != nil && strings.HasPrefix(*previous, "/uploads/") {
		if err := s.fileStorage.Delete(strings.TrimPrefix(*previous, "/uploads/")); err != nil {
			s.logger.Warn("Не удалось удалить старый аватар", zap.String("path", *previous), zap.Error(err))
		}
	}
	return s.userRepository.FindUserByID(ctx, nil, id)
}

func (s *UserService) setPassword(ctx context.Context, tx pgx.Tx, id uint64, password string) error {
	hashed, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("ошибка хэширования пароля: %w", err)
	}
	return s.userRepository.UpdatePassword(ctx, tx, id, hashed)
}
