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
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"inventory-system/internal/entities"
	db "inventory-system/internal/infrastructure/bd"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/types"
)

const equipmentTable = "equipment"

var equipmentMetaColumns = []string{"approval_status", "rejection_reason", "created_by_id", "created_at", "updated_at"}

// equipmentColumns - id, затем поля в порядке entities.EquipmentFieldNames, затем служебные.
var equipmentColumns = func() []string {
	cols := []string{"id"}
	for _, f := range entities.EquipmentFieldNames() {
		col, _ := entities.EquipmentColumn(f)
		cols = append(cols, col)
	}
	return append(cols, equipmentMetaColumns...)
}()

// allowedEquipmentFilters - БЕЛЫЙ СПИСОК для фильтров и сортировки
var allowedEquipmentFilters = func() map[string]string {
	m := map[string]string{
		"id":              "id",
		"approval_status": "approval_status",
		"created_by_id":   "created_by_id",
		"createdAt":       "created_at",
		"updatedAt":       "updated_at",
	}
	for _, f := range entities.EquipmentFieldNames() {
		col, _ := entities.EquipmentColumn(f)
		m[f] = col
	}
	return m
}()

var equipmentSearchColumns = []string{"equipamento", "serial", "patrimonio", "usuario_atual", "setor", "local", "brand", "model"}

type EquipmentRepositoryInterface interface {
	GetAll(ctx context.Context, filter types.Filter, vis Visibility) ([]entities.Equipment, uint64, error)
	FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error)
	LockByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error)
	FindBySerial(ctx context.Context, tx pgx.Tx, serial string) (*entities.Equipment, error)
	ListPending(ctx context.Context) ([]entities.Equipment, error)
	CountByStatus(ctx context.Context) (map[string]uint64, error)

	Create(ctx context.Context, tx pgx.Tx, e entities.Equipment) (uint64, error)
	UpdateFields(ctx context.Context, tx pgx.Tx, id uint64, changes map[string]string) error
	SetApproval(ctx context.Context, tx pgx.Tx, id uint64, status entities.ApprovalStatus, reason *string) error
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error
	DeleteAll(ctx context.Context, tx pgx.Tx) error
}

type equipmentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewEquipmentRepository(storage *pgxpool.Pool, logger *zap.Logger) EquipmentRepositoryInterface {
	return &equipmentRepository{storage: storage, logger: logger}
}

func (r *equipmentRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func visibilityCond(vis Visibility) sq.Sqlizer {
	if vis.SeeAll {
		return nil
	}
	return sq.Or{
		sq.Eq{"approval_status": entities.ApprovalApproved},
		sq.Eq{"created_by_id": vis.UserID},
	}
}

// scanRow сканирует строку в порядке equipmentColumns.
func (r *equipmentRepository) scanRow(row pgx.Row) (*entities.Equipment, error) {
	var e entities.Equipment
	names := entities.EquipmentFieldNames()
	values := make([]string, len(names))

	dest := make([]interface{}, 0, len(equipmentColumns))
	dest = append(dest, &e.ID)
	for i := range values {
		dest = append(dest, &values[i])
	}
	dest = append(dest, &e.ApprovalStatus, &e.RejectionReason, &e.CreatedByID, &e.CreatedAt, &e.UpdatedAt)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования equipment: %w", err)
	}
	for i, name := range names {
		e.Set(name, values[i])
	}
	return &e, nil
}

func (r *equipmentRepository) findOne(ctx context.Context, querier Querier, where sq.Sqlizer, forUpdate bool) (*entities.Equipment, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	builder := psql.Select(equipmentColumns...).From(equipmentTable).Where(where)
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL equipment: %w", err)
	}
	return r.scanRow(querier.QueryRow(ctx, query, args...))
}

func (r *equipmentRepository) collect(rows pgx.Rows) ([]entities.Equipment, error) {
	defer rows.Close()
	list := make([]entities.Equipment, 0)
	for rows.Next() {
		e, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

func (r *equipmentRepository) GetAll(ctx context.Context, filter types.Filter, vis Visibility) ([]entities.Equipment, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countBuilder := db.ApplyFilters(psql.Select("COUNT(*)").From(equipmentTable), filter, allowedEquipmentFilters, equipmentSearchColumns...)
	selectBuilder := db.ApplyListParams(psql.Select(equipmentColumns...).From(equipmentTable), filter, allowedEquipmentFilters, equipmentSearchColumns...)
	if cond := visibilityCond(vis); cond != nil {
		countBuilder = countBuilder.Where(cond)
		selectBuilder = selectBuilder.Where(cond)
	}
	if len(filter.Sort) == 0 {
		selectBuilder = selectBuilder.OrderBy("id ASC")
	}

	query, args, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SQL подсчёта equipment: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта equipment: %w", err)
	}
	if total == 0 {
		return []entities.Equipment{}, 0, nil
	}

	query, args, err = selectBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SQL списка equipment: %w", err)
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка equipment: %w", err)
	}
	list, err := r.collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *equipmentRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error) {
	return r.findOne(ctx, r.getQuerier(tx), sq.Eq{"id": id}, false)
}

// LockByID читает запись с блокировкой строки до конца транзакции.
func (r *equipmentRepository) LockByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error) {
	return r.findOne(ctx, r.getQuerier(tx), sq.Eq{"id": id}, tx != nil)
}

func (r *equipmentRepository) FindBySerial(ctx context.Context, tx pgx.Tx, serial string) (*entities.Equipment, error) {
	return r.findOne(ctx, r.getQuerier(tx), sq.Eq{"serial": serial}, tx != nil)
}

func (r *equipmentRepository) ListPending(ctx context.Context) ([]entities.Equipment, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(equipmentColumns...).From(equipmentTable).
		Where(sq.Eq{"approval_status": entities.ApprovalPending}).
		OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL ListPending: %w", err)
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения ожидающих equipment: %w", err)
	}
	return r.collect(rows)
}

func (r *equipmentRepository) CountByStatus(ctx context.Context) (map[string]uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select("status", "COUNT(*)").From(equipmentTable).
		Where(sq.NotEq{"approval_status": entities.ApprovalRejected}).
		GroupBy("status").ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL CountByStatus: %w", err)
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчёта по статусам: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]uint64)
	for rows.Next() {
		var status string
		var n uint64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("ошибка сканирования CountByStatus: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *equipmentRepository) Create(ctx context.Context, tx pgx.Tx, e entities.Equipment) (uint64, error) {
	set := map[string]interface{}{
		"approval_status":  e.ApprovalStatus,
		"rejection_reason": e.RejectionReason,
		"created_by_id":    e.CreatedByID,
	}
	for field, value := range e.Values() {
		col, _ := entities.EquipmentColumn(field)
		set[col] = value
	}

	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Insert(equipmentTable).SetMap(set).Suffix("RETURNING id").ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки SQL создания equipment: %w", err)
	}

	var id uint64
	if err := r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, apperrors.NewHttpError(http.StatusConflict, fmt.Sprintf("Já existe um equipamento com o serial %s", e.Serial), apperrors.ErrConflict, nil)
		}
		return 0, fmt.Errorf("ошибка создания equipment: %w", err)
	}
	return id, nil
}

// UpdateFields обновляет перечисленные поля (ключи - имена полей API) одним UPDATE.
func (r *equipmentRepository) UpdateFields(ctx context.Context, tx pgx.Tx, id uint64, changes map[string]string) error {
	if len(changes) == 0 {
		return nil
	}
	set := make(map[string]interface{}, len(changes)+1)
	for field, value := range changes {
		col, ok := entities.EquipmentColumn(field)
		if !ok {
			return apperrors.NewInvalidInputError("Campo desconhecido: %s", field)
		}
		set[col] = value
	}
	set["updated_at"] = time.Now()

	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Update(equipmentTable).SetMap(set).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки SQL обновления equipment: %w", err)
	}
	tag, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewHttpError(http.StatusConflict, fmt.Sprintf("Já existe um equipamento com o serial %s", strings.TrimSpace(changes["serial"])), apperrors.ErrConflict, nil)
		}
		return fmt.Errorf("ошибка обновления equipment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *equipmentRepository) SetApproval(ctx context.Context, tx pgx.Tx, id uint64, status entities.ApprovalStatus, reason *string) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Update(equipmentTable).
		Set("approval_status", status).
		Set("rejection_reason", reason).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки SQL SetApproval: %w", err)
	}
	tag, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка изменения статуса одобрения: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *equipmentRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Delete(equipmentTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки SQL удаления equipment: %w", err)
	}
	tag, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка удаления equipment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *equipmentRepository) DeleteAll(ctx context.Context, tx pgx.Tx) error {
	if _, err := r.getQuerier(tx).Exec(ctx, "DELETE FROM "+equipmentTable); err != nil {
		return fmt.Errorf("ошибка очистки equipment: %w", err)
	}
	return nil
}
