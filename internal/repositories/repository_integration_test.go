package repositories

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inventory-system/internal/entities"
	"inventory-system/internal/infrastructure/migrations"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/types"
)

var testPool *pgxpool.Pool

// TestMain подключается к тестовой БД из TEST_DATABASE_URL и применяет миграции.
// Без переменной интеграционные тесты пропускаются.
func TestMain(m *testing.M) {
	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		ctx := context.Background()
		var err error
		testPool, err = pgxpool.New(ctx, dsn)
		if err != nil {
			log.Fatalf("Не удалось подключиться к тестовой БД: %v", err)
		}
		if err := migrations.Up(ctx, testPool); err != nil {
			log.Fatalf("Не удалось применить миграции: %v", err)
		}
	}

	code := m.Run()
	if testPool != nil {
		testPool.Close()
	}
	os.Exit(code)
}

func requireDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testPool == nil {
		t.Skip("TEST_DATABASE_URL не задан")
	}
	_, err := testPool.Exec(context.Background(),
		`TRUNCATE TABLE equipment_history, equipment, licenses, audit_log, app_config, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err, "Не удалось очистить таблицы")
	return testPool
}

func seedUser(t *testing.T, repo UserRepositoryInterface, username string, role entities.UserRole) uint64 {
	t.Helper()
	id, err := repo.CreateUser(context.Background(), nil, entities.User{
		Username: username, RealName: username, Email: username + "@example.com", Password: "hash", Role: role,
	})
	require.NoError(t, err)
	return id
}

func TestEquipmentRepository_CRUDAndVisibility(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	logger := zap.NewNop()
	users := NewUserRepository(pool, logger)
	repo := NewEquipmentRepository(pool, logger)

	ownerID := seedUser(t, users, "ana", entities.RoleUser)
	otherID := seedUser(t, users, "bia", entities.RoleUser)

	approvedID, err := repo.Create(ctx, nil, entities.Equipment{Serial: "S-1", Equipamento: "Notebook", Status: entities.StatusEstoque, ApprovalStatus: entities.ApprovalApproved})
	require.NoError(t, err)
	pendingID, err := repo.Create(ctx, nil, entities.Equipment{Serial: "S-2", Status: entities.StatusEstoque, ApprovalStatus: entities.ApprovalPending, CreatedByID: &ownerID})
	require.NoError(t, err)

	_, err = repo.Create(ctx, nil, entities.Equipment{Serial: "S-1", ApprovalStatus: entities.ApprovalApproved})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	list, total, err := repo.GetAll(ctx, types.Filter{}, Visibility{UserID: otherID})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)
	assert.Equal(t, approvedID, list[0].ID)

	_, total, err = repo.GetAll(ctx, types.Filter{}, Visibility{UserID: ownerID})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), total)

	require.NoError(t, repo.UpdateFields(ctx, nil, approvedID, map[string]string{"usuarioAtual": "Carlos", "status": "Em Uso"}))
	got, err := repo.FindByID(ctx, nil, approvedID)
	require.NoError(t, err)
	assert.Equal(t, "Carlos", got.UsuarioAtual)
	assert.Equal(t, entities.StatusEmUso, got.Status)

	pending, err := repo.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, pendingID, pending[0].ID)

	reason := "duplicado"
	require.NoError(t, repo.SetApproval(ctx, nil, pendingID, entities.ApprovalRejected, &reason))
	got, err = repo.FindBySerial(ctx, nil, "S-2")
	require.NoError(t, err)
	assert.Equal(t, entities.ApprovalRejected, got.ApprovalStatus)
	require.NotNil(t, got.RejectionReason)
	assert.Equal(t, "duplicado", *got.RejectionReason)

	require.NoError(t, repo.Delete(ctx, nil, pendingID))
	assert.ErrorIs(t, repo.Delete(ctx, nil, pendingID), apperrors.ErrNotFound)
}

func TestTxManager_RollbackOnError(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	repo := NewEquipmentRepository(pool, zap.NewNop())
	history := NewEquipmentHistoryRepository(pool, zap.NewNop())
	txManager := NewTxManager(pool)

	err := txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		id, err := repo.Create(ctx, tx, entities.Equipment{Serial: "TX-1", ApprovalStatus: entities.ApprovalApproved})
		if err != nil {
			return err
		}
		to := "Em Uso"
		if err := history.Append(ctx, tx, []entities.EquipmentHistory{{EquipmentID: id, ChangedBy: "admin", ChangeType: "status", ToValue: &to, Timestamp: time.Now()}}); err != nil {
			return err
		}
		return apperrors.ErrValidation
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = repo.FindBySerial(ctx, nil, "TX-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLicenseRepository_ProductsAndUsage(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	repo := NewLicenseRepository(pool, zap.NewNop())

	for _, l := range []entities.License{
		{Produto: "Office 365", ChaveSerial: "K1", Usuario: "ana", ApprovalStatus: entities.ApprovalApproved},
		{Produto: "Office 365", ChaveSerial: "K2", Usuario: "bia", ApprovalStatus: entities.ApprovalRejected},
		{Produto: "Adobe", ChaveSerial: "K3", Usuario: "caio", ApprovalStatus: entities.ApprovalPending},
	} {
		_, err := repo.Create(ctx, nil, l)
		require.NoError(t, err)
	}

	usage, err := repo.UsageByProduct(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Office 365": 1, "Adobe": 1}, usage)

	n, err := repo.RenameProduct(ctx, nil, "Office 365", "Microsoft 365")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	products, err := repo.ListProducts(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Adobe", "Microsoft 365"}, products)

	n, err = repo.DeleteByProduct(ctx, nil, "Microsoft 365")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestSettingsAndAuditRepositories(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	settings := NewSettingsRepository(pool, zap.NewNop())
	audit := NewAuditLogRepository(pool, zap.NewNop())

	s := entities.DefaultSettings()
	s.CompanyName = "ACME"
	s.LicenseTotals = entities.ProductTotals{"Adobe": 3}
	require.NoError(t, settings.Save(ctx, nil, s))

	loaded, err := settings.Load(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "ACME", loaded.CompanyName)
	assert.Equal(t, 3, loaded.LicenseTotals["Adobe"])

	for i, action := range []entities.AuditAction{entities.ActionLogin, entities.ActionCreate} {
		require.NoError(t, audit.Append(ctx, nil, entities.AuditLog{
			Username: "admin", ActionType: action, TargetType: entities.TargetUser,
			Timestamp: time.Now().Add(time.Duration(i) * time.Second),
		}))
	}
	entries, err := audit.ListLatest(ctx, AuditListLimit)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, entities.ActionCreate, entries[0].ActionType)
}
