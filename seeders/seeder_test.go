package seeders

import (
	"context"
	"testing"

	"inventory-system/internal/entities"
	"inventory-system/internal/repositories"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/utils"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct{}

func (fakeTx) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error { return fn(nil) }

// fakeUsers реализует только то, что трогает сидер.
type fakeUsers struct {
	repositories.UserRepositoryInterface
	byName  map[string]*entities.User
	created []entities.User
	newHash map[uint64]string
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byName: map[string]*entities.User{}, newHash: map[uint64]string{}}
}

func (f *fakeUsers) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	if u, ok := f.byName[username]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUsers) CreateUser(ctx context.Context, tx pgx.Tx, user entities.User) (uint64, error) {
	user.ID = uint64(len(f.created) + 1)
	f.created = append(f.created, user)
	f.byName[user.Username] = &user
	return user.ID, nil
}

func (f *fakeUsers) UpdatePassword(ctx context.Context, tx pgx.Tx, userID uint64, passwordHash string) error {
	f.newHash[userID] = passwordHash
	return nil
}

type fakeSettings struct {
	stored entities.AppSettings
	saves  int
}

func (f *fakeSettings) Load(ctx context.Context, tx pgx.Tx) (entities.AppSettings, error) {
	return f.stored, nil
}

func (f *fakeSettings) Save(ctx context.Context, tx pgx.Tx, s entities.AppSettings) error {
	f.stored = s
	f.saves++
	return nil
}

func (f *fakeSettings) DeleteAll(ctx context.Context, tx pgx.Tx) error {
	f.stored = entities.AppSettings{}
	return nil
}

func TestSeedAdmin_CreatesOnce(t *testing.T) {
	users := newFakeUsers()
	ctx := context.Background()

	require.NoError(t, SeedAdmin(ctx, users, fakeTx{}, "S3nha!", 4, false))
	require.Len(t, users.created, 1)
	admin := users.created[0]
	assert.Equal(t, entities.AdminUsername, admin.Username)
	assert.Equal(t, entities.RoleAdmin, admin.Role)
	assert.NoError(t, utils.ComparePasswords(admin.Password, "S3nha!"))

	require.NoError(t, SeedAdmin(ctx, users, fakeTx{}, "outra", 4, false))
	assert.Len(t, users.created, 1)
	assert.Empty(t, users.newHash)
}

func TestSeedAdmin_ResetPassword(t *testing.T) {
	users := newFakeUsers()
	users.byName[entities.AdminUsername] = &entities.User{ID: 7, Username: entities.AdminUsername}

	require.NoError(t, SeedAdmin(context.Background(), users, fakeTx{}, "nova", 4, true))
	assert.Empty(t, users.created)
	require.Contains(t, users.newHash, uint64(7))
	assert.NoError(t, utils.ComparePasswords(users.newHash[7], "nova"))
}

func TestSeedAdmin_RequiresPassword(t *testing.T) {
	assert.Error(t, SeedAdmin(context.Background(), newFakeUsers(), fakeTx{}, "", 4, false))
}

func TestSeedSettings(t *testing.T) {
	ctx := context.Background()
	settings := &fakeSettings{stored: entities.AppSettings{CompanyName: "ACME"}}

	require.NoError(t, SeedSettings(ctx, settings, fakeTx{}, false))
	assert.Equal(t, "ACME", settings.stored.CompanyName)

	require.NoError(t, SeedSettings(ctx, settings, fakeTx{}, true))
	assert.Equal(t, entities.DefaultSettings().CompanyName, settings.stored.CompanyName)
	assert.Equal(t, 2, settings.saves)
}
