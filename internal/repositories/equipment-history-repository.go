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
	historyTable  = "equipment_history"
	historyFields = "id, equipment_id, changed_by, change_type, from_value, to_value, timestamp"
)

type EquipmentHistoryRepositoryInterface interface {
	Append(ctx context.Context, tx pgx.Tx, items []entities.EquipmentHistory) error
	ListByEquipment(ctx context.Context, equipmentID uint64) ([]entities.EquipmentHistory, error)
	DeleteAll(ctx context.Context, tx pgx.Tx) error
}

type equipmentHistoryRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewEquipmentHistoryRepository(storage *pgxpool.Pool, logger *zap.Logger) EquipmentHistoryRepositoryInterface {
	return &equipmentHistoryRepository{storage: storage, logger: logger}
}

func (r *equipmentHistoryRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

// Append пишет все записи одним INSERT. Пустой список - no-op.
func (r *equipmentHistoryRepository) Append(ctx context.Context, tx pgx.Tx, items []entities.EquipmentHistory) error {
	if len(items) == 0 {
		return nil
	}
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	builder := psql.Insert(historyTable).Columns("equipment_id", "changed_by", "change_type", "from_value", "to_value", "timestamp")
	for _, h := range items {
		builder = builder.Values(h.EquipmentID, h.ChangedBy, h.ChangeType, h.FromValue, h.ToValue, h.Timestamp)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки SQL истории: %w", err)
	}
	if _, err := r.getQuerier(tx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("ошибка записи истории: %w", err)
	}
	return nil
}

// ListByEquipment - история оборудования, новые записи первыми.
func (r *equipmentHistoryRepository) ListByEquipment(ctx context.Context, equipmentID uint64) ([]entities.EquipmentHistory, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(historyFields).From(historyTable).
		Where(sq.Eq{"equipment_id": equipmentID}).
		OrderBy("timestamp DESC", "id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL ListByEquipment: %w", err)
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истории: %w", err)
	}
	defer rows.Close()

	list := make([]entities.EquipmentHistory, 0)
	for rows.Next() {
		var h entities.EquipmentHistory
		if err := rows.Scan(&h.ID, &h.EquipmentID, &h.ChangedBy, &h.ChangeType, &h.FromValue, &h.ToValue, &h.Timestamp); err != nil {
			return nil, fmt.Errorf("ошибка сканирования истории: %w", err)
		}
		list = append(list, h)
	}
	return list, rows.Err()
}

func (r *equipmentHistoryRepository) DeleteAll(ctx context.Context, tx pgx.Tx) error {
	if _, err := r.getQuerier(tx).Exec(ctx, "DELETE FROM "+historyTable); err != nil {
		return fmt.Errorf("ошибка очистки истории: %w", err)
	}
	return nil
}
