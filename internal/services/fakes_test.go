package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"inventory-system/internal/entities"
	"inventory-system/internal/repositories"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/eventbus"
	"inventory-system/pkg/types"
	"inventory-system/pkg/utils"
)

// Заглушки репозиториев в памяти. Транзакция - просто вызов fn(nil).

type fakeTx struct{ calls int }

func (f *fakeTx) RunInTransaction(_ context.Context, fn func(tx pgx.Tx) error) error {
	f.calls++
	return fn(nil)
}

type fakeUsers struct {
	mu     sync.Mutex
	byID   map[uint64]*entities.User
	nextID uint64
	logins map[uint64]time.Time
}

func newFakeUsers(users ...entities.User) *fakeUsers {
	f := &fakeUsers{byID: map[uint64]*entities.User{}, logins: map[uint64]time.Time{}}
	for i := range users {
		u := users[i]
		f.byID[u.ID] = &u
		if u.ID > f.nextID {
			f.nextID = u.ID
		}
	}
	return f
}

func (f *fakeUsers) GetUsers(context.Context, types.Filter) ([]entities.User, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entities.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, uint64(len(out)), nil
}

func (f *fakeUsers) FindUserByID(_ context.Context, _ pgx.Tx, id uint64) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUsers) CreateUser(_ context.Context, _ pgx.Tx, user entities.User) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Username == user.Username {
			return 0, apperrors.ErrConflict
		}
	}
	f.nextID++
	user.ID = f.nextID
	f.byID[user.ID] = &user
	return user.ID, nil
}

func (f *fakeUsers) UpdateUser(_ context.Context, _ pgx.Tx, user entities.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.byID[user.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	user.Password = current.Password
	user.TwoFASecret = current.TwoFASecret
	user.Is2FAEnabled = current.Is2FAEnabled
	f.byID[user.ID] = &user
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, _ pgx.Tx, id uint64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.Password = hash
	return nil
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, id uint64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins[id] = at
	if u, ok := f.byID[id]; ok {
		u.LastLogin = &at
	}
	return nil
}

func (f *fakeUsers) Set2FA(_ context.Context, _ pgx.Tx, id uint64, enabled bool, secret *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.Is2FAEnabled = enabled
	u.TwoFASecret = secret
	return nil
}

func (f *fakeUsers) DeleteUser(_ context.Context, _ pgx.Tx, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUsers) DeleteAllExcept(_ context.Context, _ pgx.Tx, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, u := range f.byID {
		if u.Username != username {
			delete(f.byID, id)
		}
	}
	return nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []entities.AuditLog
}

func (f *fakeAudit) Append(_ context.Context, _ pgx.Tx, entry entities.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAudit) ListLatest(_ context.Context, limit uint64) ([]entities.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entities.AuditLog, 0, len(f.entries))
	for i := len(f.entries) - 1; i >= 0 && uint64(len(out)) < limit; i-- {
		out = append(out, f.entries[i])
	}
	return out, nil
}

func (f *fakeAudit) DeleteAll(context.Context, pgx.Tx) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = nil
	return nil
}

func (f *fakeAudit) actions() []entities.AuditAction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entities.AuditAction, len(f.entries))
	for i, e := range f.entries {
		out[i] = e.ActionType
	}
	return out
}

func (f *fakeAudit) last() entities.AuditLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[len(f.entries)-1]
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
	ttl  map[string]time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	default:
		f.data[key] = fmt.Sprint(v)
	}
	f.ttl[key] = expiration
	return nil
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return "", repositories.ErrCacheMiss
	}
	return v, nil
}

func (f *fakeCache) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
		delete(f.ttl, k)
	}
	return nil
}

func (f *fakeCache) Incr(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, _ := strconv.ParseInt(f.data[key], 10, 64)
	n++
	f.data[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (f *fakeCache) Expire(_ context.Context, key string, expiration time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; !ok {
		return false, nil
	}
	f.ttl[key] = expiration
	return true, nil
}

func (f *fakeCache) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok
}

type fakeEquipment struct {
	mu     sync.Mutex
	byID   map[uint64]*entities.Equipment
	nextID uint64
}

func newFakeEquipment(items ...entities.Equipment) *fakeEquipment {
	f := &fakeEquipment{byID: map[uint64]*entities.Equipment{}}
	for i := range items {
		e := items[i]
		if e.ID == 0 {
			f.nextID++
			e.ID = f.nextID
		} else if e.ID > f.nextID {
			f.nextID = e.ID
		}
		f.byID[e.ID] = &e
	}
	return f
}

func (f *fakeEquipment) sorted() []entities.Equipment {
	out := make([]entities.Equipment, 0, len(f.byID))
	for _, e := range f.byID {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeEquipment) GetAll(_ context.Context, _ types.Filter, vis repositories.Visibility) ([]entities.Equipment, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entities.Equipment
	for _, e := range f.sorted() {
		own := e.CreatedByID != nil && *e.CreatedByID == vis.UserID
		if vis.SeeAll || e.ApprovalStatus == entities.ApprovalApproved || own {
			out = append(out, e)
		}
	}
	return out, uint64(len(out)), nil
}

func (f *fakeEquipment) FindByID(_ context.Context, _ pgx.Tx, id uint64) (*entities.Equipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	c := *e
	return &c, nil
}

func (f *fakeEquipment) LockByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error) {
	return f.FindByID(ctx, tx, id)
}

func (f *fakeEquipment) FindBySerial(_ context.Context, _ pgx.Tx, serial string) (*entities.Equipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.byID {
		if e.Serial == serial {
			c := *e
			return &c, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeEquipment) ListPending(context.Context) ([]entities.Equipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entities.Equipment
	for _, e := range f.sorted() {
		if e.ApprovalStatus == entities.ApprovalPending {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEquipment) CountByStatus(context.Context) (map[string]uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]uint64{}
	for _, e := range f.byID {
		if e.ApprovalStatus == entities.ApprovalApproved {
			out[string(e.Status)]++
		}
	}
	return out, nil
}

func (f *fakeEquipment) Create(_ context.Context, _ pgx.Tx, e entities.Equipment) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Serial == e.Serial {
			return 0, apperrors.ErrConflict
		}
	}
	f.nextID++
	e.ID = f.nextID
	f.byID[e.ID] = &e
	return e.ID, nil
}

func (f *fakeEquipment) UpdateFields(_ context.Context, _ pgx.Tx, id uint64, changes map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	for field, value := range changes {
		e.Set(field, value)
	}
	return nil
}

func (f *fakeEquipment) SetApproval(_ context.Context, _ pgx.Tx, id uint64, status entities.ApprovalStatus, reason *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	e.ApprovalStatus = status
	e.RejectionReason = reason
	return nil
}

func (f *fakeEquipment) Delete(_ context.Context, _ pgx.Tx, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeEquipment) DeleteAll(context.Context, pgx.Tx) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID = map[uint64]*entities.Equipment{}
	return nil
}

func (f *fakeEquipment) get(id uint64) entities.Equipment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.byID[id]
}

type fakeHistory struct {
	mu   sync.Mutex
	rows []entities.EquipmentHistory
}

func (f *fakeHistory) Append(_ context.Context, _ pgx.Tx, items []entities.EquipmentHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, items...)
	return nil
}

func (f *fakeHistory) ListByEquipment(_ context.Context, id uint64) ([]entities.EquipmentHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entities.EquipmentHistory
	for _, r := range f.rows {
		if r.EquipmentID == id {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeHistory) DeleteAll(context.Context, pgx.Tx) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = nil
	return nil
}

type fakeLicenses struct {
	mu     sync.Mutex
	byID   map[uint64]*entities.License
	nextID uint64
}

func newFakeLicenses(items ...entities.License) *fakeLicenses {
	f := &fakeLicenses{byID: map[uint64]*entities.License{}}
	for i := range items {
		l := items[i]
		f.nextID++
		if l.ID == 0 {
			l.ID = f.nextID
		}
		f.byID[l.ID] = &l
	}
	return f
}

func (f *fakeLicenses) sorted() []entities.License {
	out := make([]entities.License, 0, len(f.byID))
	for _, l := range f.byID {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeLicenses) GetAll(_ context.Context, _ types.Filter, vis repositories.Visibility) ([]entities.License, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entities.License
	for _, l := range f.sorted() {
		own := l.CreatedByID != nil && *l.CreatedByID == vis.UserID
		if vis.SeeAll || l.ApprovalStatus == entities.ApprovalApproved || own {
			out = append(out, l)
		}
	}
	return out, uint64(len(out)), nil
}

func (f *fakeLicenses) ListAll(context.Context, pgx.Tx) ([]entities.License, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(), nil
}

func (f *fakeLicenses) FindByID(_ context.Context, _ pgx.Tx, id uint64) (*entities.License, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	c := *l
	return &c, nil
}

func (f *fakeLicenses) LockByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.License, error) {
	return f.FindByID(ctx, tx, id)
}

func (f *fakeLicenses) ListPending(context.Context) ([]entities.License, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entities.License
	for _, l := range f.sorted() {
		if l.ApprovalStatus == entities.ApprovalPending {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLicenses) ListExpiring(context.Context) ([]entities.License, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entities.License
	for _, l := range f.sorted() {
		if l.ApprovalStatus == entities.ApprovalApproved && l.DataExpiracao != nil {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLicenses) ListProducts(context.Context, pgx.Tx) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, l := range f.byID {
		if !seen[l.Produto] {
			seen[l.Produto] = true
			out = append(out, l.Produto)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeLicenses) UsageByProduct(context.Context, pgx.Tx) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]int{}
	for _, l := range f.byID {
		out[l.Produto]++
	}
	return out, nil
}

func (f *fakeLicenses) Create(_ context.Context, _ pgx.Tx, l entities.License) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	l.ID = f.nextID
	f.byID[l.ID] = &l
	return l.ID, nil
}

func (f *fakeLicenses) Update(_ context.Context, _ pgx.Tx, l entities.License) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.byID[l.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	l.ApprovalStatus = current.ApprovalStatus
	l.RejectionReason = current.RejectionReason
	l.CreatedByID = current.CreatedByID
	f.byID[l.ID] = &l
	return nil
}

func (f *fakeLicenses) SetApproval(_ context.Context, _ pgx.Tx, id uint64, status entities.ApprovalStatus, reason *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.byID[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	l.ApprovalStatus = status
	l.RejectionReason = reason
	return nil
}

func (f *fakeLicenses) Delete(_ context.Context, _ pgx.Tx, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeLicenses) DeleteByProduct(_ context.Context, _ pgx.Tx, product string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, l := range f.byID {
		if l.Produto == product {
			delete(f.byID, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeLicenses) RenameProduct(_ context.Context, _ pgx.Tx, oldName, newName string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, l := range f.byID {
		if l.Produto == oldName {
			l.Produto = newName
			n++
		}
	}
	return n, nil
}

func (f *fakeLicenses) DeleteAll(context.Context, pgx.Tx) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID = map[uint64]*entities.License{}
	return nil
}

type fakeSettingsRepo struct {
	mu       sync.Mutex
	settings entities.AppSettings
	saves    int
}

func newFakeSettingsRepo(s entities.AppSettings) *fakeSettingsRepo {
	if s.LicenseTotals == nil {
		s.LicenseTotals = entities.ProductTotals{}
	}
	return &fakeSettingsRepo{settings: s}
}

func (f *fakeSettingsRepo) Load(context.Context, pgx.Tx) (entities.AppSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.settings
	s.LicenseTotals = f.settings.LicenseTotals.Clone()
	return s, nil
}

func (f *fakeSettingsRepo) Save(_ context.Context, _ pgx.Tx, s entities.AppSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings = s
	f.saves++
	return nil
}

func (f *fakeSettingsRepo) DeleteAll(context.Context, pgx.Tx) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings = entities.AppSettings{LicenseTotals: entities.ProductTotals{}}
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (f *fakePublisher) Publish(_ context.Context, e eventbus.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
}

// env - собранный набор заглушек с тремя пользователями разных ролей.
type env struct {
	users     *fakeUsers
	audit     *fakeAudit
	cache     *fakeCache
	equipment *fakeEquipment
	history   *fakeHistory
	licenses  *fakeLicenses
	settings  *fakeSettingsRepo
	tx        *fakeTx
	publisher *fakePublisher
	base      *BaseService
	logger    *zap.Logger
}

const (
	adminID   uint64 = 1
	managerID uint64 = 2
	userID    uint64 = 3
)

func newEnv() *env {
	logger := zap.NewNop()
	e := &env{
		users: newFakeUsers(
			entities.User{ID: adminID, Username: entities.AdminUsername, RealName: "Administrador", Role: entities.RoleAdmin},
			entities.User{ID: managerID, Username: "gestor", RealName: "Gestor TI", Role: entities.RoleUserManager},
			entities.User{ID: userID, Username: "joao", RealName: "João Silva", Role: entities.RoleUser},
		),
		audit:     &fakeAudit{},
		cache:     newFakeCache(),
		equipment: newFakeEquipment(),
		history:   &fakeHistory{},
		licenses:  newFakeLicenses(),
		settings:  newFakeSettingsRepo(entities.DefaultSettings()),
		tx:        &fakeTx{},
		publisher: &fakePublisher{},
		logger:    logger,
	}
	e.base = NewBaseService(e.users, e.audit, e.cache, logger)
	return e
}

func (e *env) settingsService() SettingsServiceInterface {
	return NewSettingsService(e.base, e.settings, e.tx, e.logger)
}

func asActor(id uint64, role entities.UserRole) context.Context {
	return utils.WithActor(context.Background(), id, string(role))
}

func asAdmin() context.Context   { return asActor(adminID, entities.RoleAdmin) }
func asManager() context.Context { return asActor(managerID, entities.RoleUserManager) }
func asUser() context.Context    { return asActor(userID, entities.RoleUser) }

// fixedNow фиксирует timeNow на время теста.
func fixedNow(t interface{ Cleanup(func()) }, at time.Time) {
	prev := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = prev })
}
