package seeders

import (
	"context"
	"errors"
	"fmt"
	"log"

	"inventory-system/internal/entities"
	"inventory-system/internal/repositories"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/utils"

	"github.com/jackc/pgx/v5"
)

const (
	defaultAdminEmail    = "admin@inventario.local"
	defaultAdminRealName = "Administrador"
)

// SeedAdmin создаёт встроенного администратора, если его ещё нет.
// С resetPassword существующему администратору выставляется новый пароль.
func SeedAdmin(
	ctx context.Context,
	users repositories.UserRepositoryInterface,
	txManager repositories.TxManagerInterface,
	password string,
	bcryptCost int,
	resetPassword bool,
) error {
	log.Println("  - Проверка пользователя 'admin'...")
	if password == "" {
		return fmt.Errorf("пароль администратора не задан")
	}

	hash, err := utils.HashPassword(password, bcryptCost)
	if err != nil {
		return fmt.Errorf("не удалось захешировать пароль: %w", err)
	}

	existing, err := users.FindByUsername(ctx, entities.AdminUsername)
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return fmt.Errorf("ошибка при проверке существования администратора: %w", err)
	}

	return txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if existing != nil {
			if !resetPassword {
				log.Println("    - Администратор уже существует. Пропускаем.")
				return nil
			}
			log.Println("    - Администратор существует, пароль сброшен.")
			return users.UpdatePassword(ctx, tx, existing.ID, hash)
		}

		id, err := users.CreateUser(ctx, tx, entities.User{
			Username: entities.AdminUsername,
			RealName: defaultAdminRealName,
			Email:    defaultAdminEmail,
			Password: hash,
			Role:     entities.RoleAdmin,
		})
		if err != nil {
			return fmt.Errorf("не удалось создать администратора: %w", err)
		}
		log.Printf("    - Администратор создан (id=%d)", id)
		return nil
	})
}

// SeedSettings дописывает недостающие ключи app_config значениями по умолчанию.
// С reset все настройки возвращаются к значениям по умолчанию.
func SeedSettings(
	ctx context.Context,
	settings repositories.SettingsRepositoryInterface,
	txManager repositories.TxManagerInterface,
	reset bool,
) error {
	log.Println("  - Наполнение app_config...")
	return txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if reset {
			return settings.Save(ctx, tx, entities.DefaultSettings())
		}
		current, err := settings.Load(ctx, tx)
		if err != nil {
			return err
		}
		return settings.Save(ctx, tx, current)
	})
}
