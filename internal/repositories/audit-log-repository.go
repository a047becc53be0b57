package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"inventory-system/internal/entities"
)

const (
	auditTable  = "audit_log"
	auditFields = "id, username, action_type, target_type, target_id, details, timestamp"

	// AuditListLimit - сколько последних записей отдаёт журнал.
	AuditListLimit = 500
)

type AuditLogRepositoryInterface interface {
	Append(ctx context.Context, tx pgx.Tx, entry entities.AuditLog) error
	ListLatest(ctx context.Context, limit uint64) ([]entities.AuditLog, error)
	DeleteAll(ctx context.Context, tx pgx.Tx) error
}

type auditLogRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewAuditLogRepository(storage *pgxpool.Pool, logger *zap.Logger) AuditLogRepositoryInterface {
	return &auditLogRepository{storage: storage, logger: logger}
}

func (r *auditLogRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func (r *auditLogRepository) Append(ctx context.Context, tx pgx.Tx, entry entities.AuditLog) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Insert(auditTable).
		Columns("username", "action_type", "target_type", "target_id", "details", "timestamp").
		Values(entry.Username, entry.ActionType, entry.TargetType, entry.TargetID, entry.Details, entry.Timestamp).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки SQL аудита: %w", err)
	}
	if _, err := r.getQuerier(tx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("ошибка записи аудита: %w", err)
	}
	return nil
}

func (r *auditLogRepository) ListLatest(ctx context.Context, limit uint64) ([]entities.AuditLog, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(auditFields).From(auditTable).
		OrderBy("timestamp DESC", "id DESC").Limit(limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL ListLatest: %w", err)
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения журнала аудита: %w", err)
	}
	defer rows.Close()

	list := make([]entities.AuditLog, 0)
	for rows.Next() {
		var a entities.AuditLog
		if err := rows.Scan(&a.ID, &a.Username, &a.ActionType, &a.TargetType, &a.TargetID, &a.Details, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("ошибка сканирования аудита: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func (r *auditLogRepository) DeleteAll(ctx context.Context, tx pgx.Tx) error {
	if _, err := r.getQuerier(tx).Exec(ctx, "DELETE FROM "+auditTable); err != nil {
		return fmt.Errorf("ошибка очистки аудита: %w", err)
	}
	return nil
}
