package repositories

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"inventory-system/internal/entities"
	db "inventory-system/internal/infrastructure/bd"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/types"
)

const userTable = "users"

var userColumns = []string{
	"id", "username", "real_name", "email", "password_hash", "role",
	"last_login", "is_2fa_enabled", "twofa_secret", "sso_provider", "avatar_url",
	"created_at", "updated_at",
}

var allowedUserFilters = map[string]string{
	"id":        "id",
	"username":  "username",
	"realName":  "real_name",
	"email":     "email",
	"role":      "role",
	"createdAt": "created_at",
}

type UserRepositoryInterface interface {
	GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error)
	FindUserByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.User, error)
	FindByUsername(ctx context.Context, username string) (*entities.User, error)
	CreateUser(ctx context.Context, tx pgx.Tx, user entities.User) (uint64, error)
	UpdateUser(ctx context.Context, tx pgx.Tx, user entities.User) error
	UpdatePassword(ctx context.Context, tx pgx.Tx, userID uint64, passwordHash string) error
	UpdateLastLogin(ctx context.Context, userID uint64, at time.Time) error
	Set2FA(ctx context.Context, tx pgx.Tx, userID uint64, enabled bool, secret *string) error
	DeleteUser(ctx context.Context, tx pgx.Tx, id uint64) error
	DeleteAllExcept(ctx context.Context, tx pgx.Tx, username string) error
}

type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

func (r *UserRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	err := row.Scan(
		&u.ID, &u.Username, &u.RealName, &u.Email, &u.Password, &u.Role,
		&u.LastLogin, &u.Is2FAEnabled, &u.TwoFASecret, &u.SSOProvider, &u.AvatarURL,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования users: %w", err)
	}
	return &u, nil
}

// userConflict переводит нарушение уникальности в понятное клиенту сообщение.
func userConflict(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "users_username_key"):
		return apperrors.NewHttpError(http.StatusConflict, "Nome de usuário já está em uso", apperrors.ErrConflict, nil)
	case strings.Contains(pgErr.ConstraintName, "users_email_key"):
		return apperrors.NewHttpError(http.StatusConflict, "E-mail já está em uso", apperrors.ErrConflict, nil)
	}
	return apperrors.ErrConflict
}

func (r *UserRepository) findOne(ctx context.Context, querier Querier, where sq.Eq) (*entities.User, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(userColumns...).From(userTable).Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL users: %w", err)
	}
	return scanUser(querier.QueryRow(ctx, query, args...))
}

func (r *UserRepository) GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	query, args, err := db.ApplyFilters(psql.Select("COUNT(*)").From(userTable), filter, allowedUserFilters, "username", "real_name", "email").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SQL подсчёта users: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта users: %w", err)
	}
	if total == 0 {
		return []entities.User{}, 0, nil
	}

	builder := db.ApplyListParams(psql.Select(userColumns...).From(userTable), filter, allowedUserFilters, "username", "real_name", "email")
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("username ASC")
	}
	query, args, err = builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SQL списка users: %w", err)
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения users: %w", err)
	}
	defer rows.Close()

	users := make([]entities.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

func (r *UserRepository) FindUserByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.User, error) {
	return r.findOne(ctx, r.getQuerier(tx), sq.Eq{"id": id})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.findOne(ctx, r.storage, sq.Eq{"username": username})
}

func (r *UserRepository) CreateUser(ctx context.Context, tx pgx.Tx, user entities.User) (uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Insert(userTable).SetMap(map[string]interface{}{
		"username":       user.Username,
		"real_name":      user.RealName,
		"email":          user.Email,
		"password_hash":  user.Password,
		"role":           user.Role,
		"is_2fa_enabled": user.Is2FAEnabled,
		"twofa_secret":   user.TwoFASecret,
		"sso_provider":   user.SSOProvider,
		"avatar_url":     user.AvatarURL,
	}).Suffix("RETURNING id").ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки SQL создания user: %w", err)
	}

	var id uint64
	if err := r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if conflict := userConflict(err); conflict != nil {
			return 0, conflict
		}
		return 0, fmt.Errorf("ошибка создания user: %w", err)
	}
	return id, nil
}

// UpdateUser обновляет профиль и роль. Пароль и 2FA меняются отдельными методами.
func (r *UserRepository) UpdateUser(ctx context.Context, tx pgx.Tx, user entities.User) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Update(userTable).SetMap(map[string]interface{}{
		"username":   user.Username,
		"real_name":  user.RealName,
		"email":      user.Email,
		"role":       user.Role,
		"avatar_url": user.AvatarURL,
		"updated_at": time.Now(),
	}).Where(sq.Eq{"id": user.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки SQL обновления user: %w", err)
	}
	tag, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		if conflict := userConflict(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("ошибка обновления user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) exec(ctx context.Context, querier Querier, builder sq.UpdateBuilder) error {
	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки SQL users: %w", err)
	}
	tag, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления users: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, tx pgx.Tx, userID uint64, passwordHash string) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	return r.exec(ctx, r.getQuerier(tx), psql.Update(userTable).
		Set("password_hash", passwordHash).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": userID}))
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID uint64, at time.Time) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	return r.exec(ctx, r.storage, psql.Update(userTable).Set("last_login", at).Where(sq.Eq{"id": userID}))
}

func (r *UserRepository) Set2FA(ctx context.Context, tx pgx.Tx, userID uint64, enabled bool, secret *string) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	return r.exec(ctx, r.getQuerier(tx), psql.Update(userTable).
		Set("is_2fa_enabled", enabled).
		Set("twofa_secret", secret).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": userID}))
}

func (r *UserRepository) DeleteUser(ctx context.Context, tx pgx.Tx, id uint64) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Delete(userTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки SQL удаления user: %w", err)
	}
	tag, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка удаления user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) DeleteAllExcept(ctx context.Context, tx pgx.Tx, username string) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Delete(userTable).Where(sq.NotEq{"username": username}).ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки SQL DeleteAllExcept: %w", err)
	}
	if _, err := r.getQuerier(tx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("ошибка очистки users: %w", err)
	}
	return nil
}
