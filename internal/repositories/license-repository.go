package repositories

import (
	"context"
	"errors"
	"fmt"
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

const licenseTable = "licenses"

var licenseColumns = []string{
	"id", "produto", "tipo_licenca", "chave_serial", "data_expiracao", "usuario", "cargo", "setor", "gestor",
	"centro_custo", "conta_razao", "nome_computador", "numero_chamado", "observacoes",
	"approval_status", "rejection_reason", "created_by_id", "created_at", "updated_at",
}

var allowedLicenseFilters = map[string]string{
	"id":              "id",
	"produto":         "produto",
	"tipoLicenca":     "tipo_licenca",
	"usuario":         "usuario",
	"setor":           "setor",
	"gestor":          "gestor",
	"dataExpiracao":   "data_expiracao",
	"approval_status": "approval_status",
	"createdAt":       "created_at",
}

var licenseSearchColumns = []string{"produto", "usuario", "chave_serial", "setor", "gestor", "nome_computador"}

type LicenseRepositoryInterface interface {
	GetAll(ctx context.Context, filter types.Filter, vis Visibility) ([]entities.License, uint64, error)
	ListAll(ctx context.Context, tx pgx.Tx) ([]entities.License, error)
	FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.License, error)
	LockByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.License, error)
	ListPending(ctx context.Context) ([]entities.License, error)
	ListExpiring(ctx context.Context) ([]entities.License, error)
	ListProducts(ctx context.Context, tx pgx.Tx) ([]string, error)
	UsageByProduct(ctx context.Context, tx pgx.Tx) (map[string]int, error)

	Create(ctx context.Context, tx pgx.Tx, l entities.License) (uint64, error)
	Update(ctx context.Context, tx pgx.Tx, l entities.License) error
	SetApproval(ctx context.Context, tx pgx.Tx, id uint64, status entities.ApprovalStatus, reason *string) error
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error
	DeleteByProduct(ctx context.Context, tx pgx.Tx, product string) (int64, error)
	RenameProduct(ctx context.Context, tx pgx.Tx, oldName, newName string) (int64, error)
	DeleteAll(ctx context.Context, tx pgx.Tx) error
}

type licenseRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewLicenseRepository(storage *pgxpool.Pool, logger *zap.Logger) LicenseRepositoryInterface {
	return &licenseRepository{storage: storage, logger: logger}
}

func (r *licenseRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func (r *licenseRepository) scanRow(row pgx.Row) (*entities.License, error) {
	var l entities.License
	err := row.Scan(
		&l.ID, &l.Produto, &l.TipoLicenca, &l.ChaveSerial, &l.DataExpiracao, &l.Usuario, &l.Cargo, &l.Setor, &l.Gestor,
		&l.CentroCusto, &l.ContaRazao, &l.NomeComputador, &l.NumeroChamado, &l.Observacoes,
		&l.ApprovalStatus, &l.RejectionReason, &l.CreatedByID, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования licenses: %w", err)
	}
	return &l, nil
}

func (r *licenseRepository) collect(rows pgx.Rows) ([]entities.License, error) {
	defer rows.Close()
	list := make([]entities.License, 0)
	for rows.Next() {
		l, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *l)
	}
	return list, rows.Err()
}

func (r *licenseRepository) query(ctx context.Context, querier Querier, builder sq.SelectBuilder) ([]entities.License, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL licenses: %w", err)
	}
	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения licenses: %w", err)
	}
	return r.collect(rows)
}

func (r *licenseRepository) GetAll(ctx context.Context, filter types.Filter, vis Visibility) ([]entities.License, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countBuilder := db.ApplyFilters(psql.Select("COUNT(*)").From(licenseTable), filter, allowedLicenseFilters, licenseSearchColumns...)
	selectBuilder := db.ApplyListParams(psql.Select(licenseColumns...).From(licenseTable), filter, allowedLicenseFilters, licenseSearchColumns...)
	if cond := visibilityCond(vis); cond != nil {
		countBuilder = countBuilder.Where(cond)
		selectBuilder = selectBuilder.Where(cond)
	}
	if len(filter.Sort) == 0 {
		selectBuilder = selectBuilder.OrderBy("produto ASC", "usuario ASC")
	}

	query, args, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SQL подсчёта licenses: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта licenses: %w", err)
	}
	if total == 0 {
		return []entities.License{}, 0, nil
	}

	list, err := r.query(ctx, r.storage, selectBuilder)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *licenseRepository) ListAll(ctx context.Context, tx pgx.Tx) ([]entities.License, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	return r.query(ctx, r.getQuerier(tx), psql.Select(licenseColumns...).From(licenseTable).OrderBy("produto ASC", "usuario ASC"))
}

func (r *licenseRepository) findOne(ctx context.Context, querier Querier, id uint64, forUpdate bool) (*entities.License, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	builder := psql.Select(licenseColumns...).From(licenseTable).Where(sq.Eq{"id": id})
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL license: %w", err)
	}
	return r.scanRow(querier.QueryRow(ctx, query, args...))
}

func (r *licenseRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.License, error) {
	return r.findOne(ctx, r.getQuerier(tx), id, false)
}

func (r *licenseRepository) LockByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.License, error) {
	return r.findOne(ctx, r.getQuerier(tx), id, tx != nil)
}

func (r *licenseRepository) ListPending(ctx context.Context) ([]entities.License, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	return r.query(ctx, r.storage, psql.Select(licenseColumns...).From(licenseTable).
		Where(sq.Eq{"approval_status": entities.ApprovalPending}).OrderBy("id ASC"))
}

// ListExpiring - лицензии с датой окончания; точное окно считает сервис.
func (r *licenseRepository) ListExpiring(ctx context.Context) ([]entities.License, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	return r.query(ctx, r.storage, psql.Select(licenseColumns...).From(licenseTable).
		Where(sq.And{
			sq.NotEq{"data_expiracao": nil},
			sq.NotEq{"data_expiracao": ""},
			sq.NotEq{"approval_status": entities.ApprovalRejected},
		}).OrderBy("data_expiracao ASC"))
}

func (r *licenseRepository) ListProducts(ctx context.Context, tx pgx.Tx) ([]string, error) {
	rows, err := r.getQuerier(tx).Query(ctx, "SELECT DISTINCT produto FROM "+licenseTable+" ORDER BY produto")
	if err != nil {
		return nil, fmt.Errorf("ошибка получения продуктов: %w", err)
	}
	defer rows.Close()
	products := make([]string, 0)
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("ошибка сканирования продукта: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// UsageByProduct - число лицензий по продукту без учёта отклонённых.
func (r *licenseRepository) UsageByProduct(ctx context.Context, tx pgx.Tx) (map[string]int, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select("produto", "COUNT(*)").From(licenseTable).
		Where(sq.NotEq{"approval_status": entities.ApprovalRejected}).
		GroupBy("produto").ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL UsageByProduct: %w", err)
	}
	rows, err := r.getQuerier(tx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчёта лицензий: %w", err)
	}
	defer rows.Close()
	usage := make(map[string]int)
	for rows.Next() {
		var p string
		var n int
		if err := rows.Scan(&p, &n); err != nil {
			return nil, fmt.Errorf("ошибка сканирования UsageByProduct: %w", err)
		}
		usage[p] = n
	}
	return usage, rows.Err()
}

func licenseSetMap(l entities.License) map[string]interface{} {
	return map[string]interface{}{
		"produto":         l.Produto,
		"tipo_licenca":    l.TipoLicenca,
		"chave_serial":    l.ChaveSerial,
		"data_expiracao":  l.DataExpiracao,
		"usuario":         l.Usuario,
		"cargo":           l.Cargo,
		"setor":           l.Setor,
		"gestor":          l.Gestor,
		"centro_custo":    l.CentroCusto,
		"conta_razao":     l.ContaRazao,
		"nome_computador": l.NomeComputador,
		"numero_chamado":  l.NumeroChamado,
		"observacoes":     l.Observacoes,
	}
}

func (r *licenseRepository) Create(ctx context.Context, tx pgx.Tx, l entities.License) (uint64, error) {
	set := licenseSetMap(l)
	set["approval_status"] = l.ApprovalStatus
	set["rejection_reason"] = l.RejectionReason
	set["created_by_id"] = l.CreatedByID

	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Insert(licenseTable).SetMap(set).Suffix("RETURNING id").ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки SQL создания license: %w", err)
	}
	var id uint64
	if err := r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("ошибка создания license: %w", err)
	}
	return id, nil
}

func (r *licenseRepository) Update(ctx context.Context, tx pgx.Tx, l entities.License) error {
	set := licenseSetMap(l)
	set["updated_at"] = time.Now()

	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Update(licenseTable).SetMap(set).Where(sq.Eq{"id": l.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки SQL обновления license: %w", err)
	}
	tag, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления license: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *licenseRepository) SetApproval(ctx context.Context, tx pgx.Tx, id uint64, status entities.ApprovalStatus, reason *string) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Update(licenseTable).
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

func (r *licenseRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Delete(licenseTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки SQL удаления license: %w", err)
	}
	tag, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка удаления license: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *licenseRepository) DeleteByProduct(ctx context.Context, tx pgx.Tx, product string) (int64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Delete(licenseTable).Where(sq.Eq{"produto": product}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки SQL DeleteByProduct: %w", err)
	}
	tag, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("ошибка удаления лицензий продукта: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *licenseRepository) RenameProduct(ctx context.Context, tx pgx.Tx, oldName, newName string) (int64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Update(licenseTable).
		Set("produto", newName).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"produto": oldName}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки SQL RenameProduct: %w", err)
	}
	tag, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("ошибка переименования продукта: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *licenseRepository) DeleteAll(ctx context.Context, tx pgx.Tx) error {
	if _, err := r.getQuerier(tx).Exec(ctx, "DELETE FROM "+licenseTable); err != nil {
		return fmt.Errorf("ошибка очистки licenses: %w", err)
	}
	return nil
}
