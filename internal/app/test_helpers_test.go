package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/example/finq/internal/adapters/persistence"
	"github.com/example/finq/internal/core/mutation"
	"github.com/example/finq/internal/core/replay"
	"github.com/example/finq/internal/models"
	"github.com/example/finq/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockIdentityProvider implements secondary.IdentityProvider for testing.
type mockIdentityProvider struct {
	userID string
}

func (m *mockIdentityProvider) GetCurrentIdentity(ctx context.Context) (*secondary.Identity, error) {
	if m.userID == "" {
		return nil, secondary.ErrAuthRequired
	}
	return &secondary.Identity{UserID: m.userID}, nil
}

// mockMonitor implements secondary.ConnectivityMonitor for testing.
type mockMonitor struct {
	mu      sync.Mutex
	offline bool
	subs    []func(bool)
}

func (m *mockMonitor) Offline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offline
}

func (m *mockMonitor) Subscribe(fn func(offline bool)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
	return func() {}
}

func (m *mockMonitor) set(offline bool) {
	m.mu.Lock()
	m.offline = offline
	subs := append([]func(bool){}, m.subs...)
	m.mu.Unlock()
	for _, fn := range subs {
		fn(offline)
	}
}

// mockGateway implements secondary.RemoteGateway for testing. Every call is
// recorded in order; fail maps a call name to the error it returns.
type mockGateway struct {
	mu     sync.Mutex
	calls  []string
	fail   map[string]error
	nextID int

	// When set, the first call signals entered and waits for release.
	entered chan struct{}
	release chan struct{}

	createdDebts  []models.NewDebt
	createdAssets []models.NewAsset
}

func newMockGateway() *mockGateway {
	return &mockGateway{fail: make(map[string]error)}
}

func (m *mockGateway) record(ctx context.Context, call string) error {
	m.mu.Lock()
	entered, release := m.entered, m.release
	m.entered = nil
	m.mu.Unlock()

	if entered != nil {
		close(entered)
		select {
		case <-release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
	return m.fail[call]
}

func (m *mockGateway) recorded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.calls...)
}

func (m *mockGateway) serverID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	return fmt.Sprintf("srv-%d", m.nextID)
}

func (m *mockGateway) ListDebts(ctx context.Context, ownerID string) ([]models.Debt, error) {
	return nil, m.record(ctx, "ListDebts "+ownerID)
}

func (m *mockGateway) CreateDebt(ctx context.Context, debt models.NewDebt, ownerID string) (*models.Debt, error) {
	if err := m.record(ctx, "CreateDebt "+debt.Title); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.createdDebts = append(m.createdDebts, debt)
	m.mu.Unlock()
	return &models.Debt{ID: m.serverID(), UserID: ownerID, Title: debt.Title, Amount: debt.Amount}, nil
}

func (m *mockGateway) UpdateDebt(ctx context.Context, id string, fields map[string]any) (*models.Debt, error) {
	if err := m.record(ctx, "UpdateDebt "+id); err != nil {
		return nil, err
	}
	return &models.Debt{ID: id}, nil
}

func (m *mockGateway) DeleteDebt(ctx context.Context, id string) (string, error) {
	if err := m.record(ctx, "DeleteDebt "+id); err != nil {
		return "", err
	}
	return id, nil
}

func (m *mockGateway) UpdateDebtAmount(ctx context.Context, id string, amount decimal.Decimal, note string) error {
	return m.record(ctx, fmt.Sprintf("UpdateDebtAmount %s %s %s", id, amount, note))
}

func (m *mockGateway) ListAssets(ctx context.Context, ownerID string) ([]models.Asset, error) {
	return nil, m.record(ctx, "ListAssets "+ownerID)
}

func (m *mockGateway) CreateAsset(ctx context.Context, asset models.NewAsset, ownerID string) (*models.Asset, error) {
	if err := m.record(ctx, "CreateAsset "+asset.Name); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.createdAssets = append(m.createdAssets, asset)
	m.mu.Unlock()
	return &models.Asset{ID: m.serverID(), UserID: ownerID, Name: asset.Name}, nil
}

func (m *mockGateway) UpdateAsset(ctx context.Context, id string, fields map[string]any) (*models.Asset, error) {
	if err := m.record(ctx, "UpdateAsset "+id); err != nil {
		return nil, err
	}
	return &models.Asset{ID: id}, nil
}

func (m *mockGateway) DeleteAsset(ctx context.Context, id string) (string, error) {
	if err := m.record(ctx, "DeleteAsset "+id); err != nil {
		return "", err
	}
	return id, nil
}

func (m *mockGateway) UpdateAssetAmount(ctx context.Context, id string, amount decimal.Decimal, note string) error {
	return m.record(ctx, fmt.Sprintf("UpdateAssetAmount %s %s %s", id, amount, note))
}

// mockKeyValueStore implements secondary.KeyValueStore for testing.
type mockKeyValueStore struct {
	mu       sync.Mutex
	items    map[string]string
	failWith error
}

func newMockKeyValueStore() *mockKeyValueStore {
	return &mockKeyValueStore{items: make(map[string]string)}
}

func (m *mockKeyValueStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *mockKeyValueStore) SetItem(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *mockKeyValueStore) RemoveItem(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *mockKeyValueStore) Update(ctx context.Context, key string, fn func(string, bool) (string, bool, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return &secondary.StorageError{Op: "update", Key: key, Err: m.failWith}
	}
	cur, ok := m.items[key]
	next, remove, err := fn(cur, ok)
	if err != nil {
		return err
	}
	if remove {
		delete(m.items, key)
	} else {
		m.items[key] = next
	}
	return nil
}

// mockCache implements secondary.CollectionCache for testing.
type mockCache[T any] struct {
	mu          sync.Mutex
	items       map[secondary.CollectionKey][]T
	invalidated map[secondary.CollectionKey]int
}

func newMockCache[T any]() *mockCache[T] {
	return &mockCache[T]{
		items:       make(map[secondary.CollectionKey][]T),
		invalidated: make(map[secondary.CollectionKey]int),
	}
}

func (m *mockCache[T]) Get(ctx context.Context, key secondary.CollectionKey) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[key], nil
}

func (m *mockCache[T]) Peek(key secondary.CollectionKey) ([]T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items, ok := m.items[key]
	return items, ok
}

func (m *mockCache[T]) Patch(key secondary.CollectionKey, fn mutation.Patch[T]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = fn(m.items[key])
}

func (m *mockCache[T]) Invalidate(key secondary.CollectionKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated[key]++
}

func (m *mockCache[T]) IsStale(key secondary.CollectionKey) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.invalidated[key] > 0
}

// mockNotifier implements secondary.SyncNotifier for testing.
type mockNotifier struct {
	mu        sync.Mutex
	started   []int
	failed    []mutation.Kind
	completed []replay.Summary
}

func (m *mockNotifier) SyncStarted(ctx context.Context, ownerID string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = append(m.started, count)
}

func (m *mockNotifier) MutationFailed(ctx context.Context, kind mutation.Kind, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed = append(m.failed, kind)
}

func (m *mockNotifier) SyncCompleted(ctx context.Context, s replay.Summary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed = append(m.completed, s)
}

// ============================================================================
// Test Fixture
// ============================================================================

// fixture wires both services over shared mocks and a real mutation log.
type fixture struct {
	identity *mockIdentityProvider
	monitor  *mockMonitor
	gateway  *mockGateway
	kv       *mockKeyValueStore
	log      *persistence.MutationLog
	debts    *mockCache[models.Debt]
	assets   *mockCache[models.Asset]
	notifier *mockNotifier
	dispatch *DispatchServiceImpl
	replay   *ReplayServiceImpl
}

func newFixture(opts ReplayOptions) *fixture {
	f := &fixture{
		identity: &mockIdentityProvider{userID: "user-1"},
		monitor:  &mockMonitor{},
		gateway:  newMockGateway(),
		kv:       newMockKeyValueStore(),
		debts:    newMockCache[models.Debt](),
		assets:   newMockCache[models.Asset](),
		notifier: &mockNotifier{},
	}
	f.log = persistence.NewMutationLog(f.kv, nil)
	f.dispatch = NewDispatchService(f.identity, f.monitor, f.gateway, f.log, f.debts, f.assets, nil)
	f.replay = NewReplayService(f.identity, f.monitor, f.gateway, f.log, f.debts, f.assets, f.notifier, opts, nil)
	return f
}

func (f *fixture) pending() []mutation.Entry {
	entries, err := f.log.ReadAll(context.Background())
	if err != nil {
		panic(err)
	}
	return entries
}

var (
	userDebts  = secondary.CollectionKey{Entity: mutation.EntityDebts, OwnerID: "user-1"}
	userAssets = secondary.CollectionKey{Entity: mutation.EntityAssets, OwnerID: "user-1"}
)

func loanDebt() models.NewDebt {
	return models.NewDebt{Title: "Loan", Creditor: "Bank", Amount: decimal.NewFromInt(500)}
}

func equalCalls(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
