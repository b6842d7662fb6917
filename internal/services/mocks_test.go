package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/riverqueue/river"

	"github.com/guildhq/backend/internal/models"
	"github.com/guildhq/backend/internal/repository"
)

// ---------------------------------------------------------------------------
// In-memory mocks for the service repo interfaces. These let us test the
// real service logic without a database. Mock methods ignore the DBTX
// argument; transaction scoping is exercised against Postgres, not here.
// ---------------------------------------------------------------------------

// fakeTx satisfies pgx.Tx for the services' Begin/Commit/Rollback calls.
// Every other method is inherited from the nil embedded interface and
// must never be reached by a mock-backed test.
type fakeTx struct {
	pgx.Tx
}

func (fakeTx) Commit(context.Context) error   { return nil }
func (fakeTx) Rollback(context.Context) error { return nil }

// fakeDB satisfies the services' DB interface. Direct statement execution
// never happens in mock-backed tests, so those methods are left inert.
type fakeDB struct{}

func (fakeDB) Begin(context.Context) (pgx.Tx, error) { return fakeTx{}, nil }

func (fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }

func (fakeDB) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

// ---

type mockAccounts struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
}

func newMockAccounts() *mockAccounts {
	return &mockAccounts{accounts: make(map[string]*models.Account)}
}

func (m *mockAccounts) seed(userID string, balance int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[userID] = &models.Account{ID: userID, Balance: balance}
}

func (m *mockAccounts) balance(userID string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.accounts[userID]; ok {
		return a.Balance
	}
	return 0
}

func (m *mockAccounts) exists(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.accounts[userID]
	return ok
}

func (m *mockAccounts) GetOrCreate(_ context.Context, _ repository.DBTX, userID string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[userID]
	if !ok {
		a = &models.Account{ID: userID}
		m.accounts[userID] = a
	}
	cp := *a
	return &cp, nil
}

func (m *mockAccounts) Get(_ context.Context, _ repository.DBTX, userID string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

// UpdateBalance mirrors the repo contract: pgx.ErrNoRows when the guard
// would drive the balance negative or the account is missing.
func (m *mockAccounts) UpdateBalance(_ context.Context, _ repository.DBTX, userID string, delta int64) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[userID]
	if !ok || a.Balance+delta < 0 {
		return nil, pgx.ErrNoRows
	}
	a.Balance += delta
	cp := *a
	return &cp, nil
}

// ---

type mockLedger struct {
	mu       sync.Mutex
	accounts *mockAccounts
	entries  []*models.Transaction
}

func newMockLedger(accounts *mockAccounts) *mockLedger {
	return &mockLedger{accounts: accounts}
}

func (m *mockLedger) Append(_ context.Context, _ repository.DBTX, userID, txType string, amount int64, description string, metadata map[string]any) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &models.Transaction{
		ID:           uuid.New(),
		UserID:       userID,
		Type:         txType,
		Amount:       amount,
		BalanceAfter: m.accounts.balance(userID),
		Description:  description,
		Metadata:     metadata,
		CreatedAt:    time.Now(),
	}
	m.entries = append(m.entries, t)
	return t, nil
}

func (m *mockLedger) History(_ context.Context, _ repository.DBTX, userID string, limit, offset int) ([]*models.Transaction, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*models.Transaction
	for _, e := range m.entries {
		if e.UserID == userID {
			all = append(all, e)
		}
	}
	// newest first
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (m *mockLedger) byType(txType string) []*models.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Transaction
	for _, e := range m.entries {
		if e.Type == txType {
			out = append(out, e)
		}
	}
	return out
}

func (m *mockLedger) forUser(userID string) []*models.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Transaction
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

func (m *mockLedger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// ---

type mockBounties struct {
	mu       sync.Mutex
	bounties map[uuid.UUID]*models.Bounty
}

func newMockBounties() *mockBounties {
	return &mockBounties{bounties: make(map[uuid.UUID]*models.Bounty)}
}

func (m *mockBounties) Create(_ context.Context, _ repository.DBTX, b *models.Bounty) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	m.bounties[b.ID] = &cp
	return nil
}

func (m *mockBounties) Get(_ context.Context, _ repository.DBTX, id uuid.UUID) (*models.Bounty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bounties[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *b
	return &cp, nil
}

func (m *mockBounties) MarkClaimed(_ context.Context, _ repository.DBTX, id uuid.UUID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bounties[id]
	if !ok || b.Status != models.BountyStatusOpen {
		return false, nil
	}
	b.Status = models.BountyStatusClaimed
	b.ClaimedBy = &userID
	return true, nil
}

func (m *mockBounties) MarkOpen(_ context.Context, _ repository.DBTX, id uuid.UUID, claimer string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bounties[id]
	if !ok || b.Status != models.BountyStatusClaimed || b.ClaimedBy == nil || *b.ClaimedBy != claimer {
		return false, nil
	}
	b.Status = models.BountyStatusOpen
	b.ClaimedBy = nil
	return true, nil
}

func (m *mockBounties) MarkCompleted(_ context.Context, _ repository.DBTX, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bounties[id]
	if !ok || b.Status != models.BountyStatusClaimed {
		return false, nil
	}
	b.Status = models.BountyStatusCompleted
	return true, nil
}

func (m *mockBounties) MarkCancelled(_ context.Context, _ repository.DBTX, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bounties[id]
	if !ok || (b.Status != models.BountyStatusOpen && b.Status != models.BountyStatusClaimed) {
		return false, nil
	}
	b.Status = models.BountyStatusCancelled
	return true, nil
}

func (m *mockBounties) list(filter func(*models.Bounty) bool) []*models.Bounty {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Bounty
	for _, b := range m.bounties {
		if filter(b) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out
}

func (m *mockBounties) ListOpen(_ context.Context, _ repository.DBTX) ([]*models.Bounty, error) {
	return m.list(func(b *models.Bounty) bool { return b.Status == models.BountyStatusOpen }), nil
}

func (m *mockBounties) ListByCreator(_ context.Context, _ repository.DBTX, userID string) ([]*models.Bounty, error) {
	return m.list(func(b *models.Bounty) bool { return b.CreatedBy == userID }), nil
}

func (m *mockBounties) ListClaimedBy(_ context.Context, _ repository.DBTX, userID string) ([]*models.Bounty, error) {
	return m.list(func(b *models.Bounty) bool {
		return b.Status == models.BountyStatusClaimed && b.ClaimedBy != nil && *b.ClaimedBy == userID
	}), nil
}

func (m *mockBounties) ListAll(_ context.Context, _ repository.DBTX) ([]*models.Bounty, error) {
	return m.list(func(*models.Bounty) bool { return true }), nil
}

// ---

type mockNotifications struct {
	mu   sync.Mutex
	args []river.JobArgs
}

func (m *mockNotifications) enqueue(_ context.Context, _ pgx.Tx, args river.JobArgs) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.args = append(m.args, args)
	return nil
}

func (m *mockNotifications) kinds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, a := range m.args {
		out = append(out, a.Kind())
	}
	return out
}

// ---

type mockShop struct {
	mu        sync.Mutex
	items     map[uuid.UUID]*models.ShopItem
	inventory map[string]map[uuid.UUID]int64
}

func newMockShop(items ...*models.ShopItem) *mockShop {
	m := &mockShop{
		items:     make(map[uuid.UUID]*models.ShopItem),
		inventory: make(map[string]map[uuid.UUID]int64),
	}
	for _, it := range items {
		cp := *it
		m.items[it.ID] = &cp
	}
	return m
}

func (m *mockShop) stock(id uuid.UUID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id].Stock
}

func (m *mockShop) held(userID string, itemID uuid.UUID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inventory[userID][itemID]
}

func (m *mockShop) List(_ context.Context, _ repository.DBTX) ([]*models.ShopItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.ShopItem
	for _, it := range m.items {
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockShop) Get(_ context.Context, _ repository.DBTX, id uuid.UUID) (*models.ShopItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *it
	return &cp, nil
}

func (m *mockShop) GetByName(_ context.Context, _ repository.DBTX, name string) (*models.ShopItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.Name == name {
			cp := *it
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockShop) DecrementStock(_ context.Context, _ repository.DBTX, id uuid.UUID, quantity int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok || it.Stock == models.UnlimitedStock || it.Stock < quantity {
		return false, nil
	}
	it.Stock -= quantity
	return true, nil
}

func (m *mockShop) AddToInventory(_ context.Context, _ repository.DBTX, userID string, itemID uuid.UUID, quantity int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inventory[userID] == nil {
		m.inventory[userID] = make(map[uuid.UUID]int64)
	}
	m.inventory[userID][itemID] += quantity
	return nil
}

func (m *mockShop) QuantityForUpdate(_ context.Context, _ repository.DBTX, userID string, itemID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.inventory[userID][itemID]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	return q, nil
}

func (m *mockShop) SetInventoryQuantity(_ context.Context, _ repository.DBTX, userID string, itemID uuid.UUID, quantity int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inventory[userID][itemID] = quantity
	return nil
}

func (m *mockShop) DeleteInventory(_ context.Context, _ repository.DBTX, userID string, itemID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inventory[userID], itemID)
	return nil
}

func (m *mockShop) GetInventoryQuantity(_ context.Context, _ repository.DBTX, userID string, itemID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inventory[userID][itemID], nil
}

func (m *mockShop) ListInventory(_ context.Context, _ repository.DBTX, userID string) ([]*models.InventoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.InventoryEntry
	for itemID, q := range m.inventory[userID] {
		out = append(out, &models.InventoryEntry{
			UserID:   userID,
			ItemID:   itemID,
			ItemName: m.items[itemID].Name,
			Quantity: q,
		})
	}
	return out, nil
}

// ---

type mockJobs struct {
	mu          sync.Mutex
	jobs        []*models.Job
	assignments map[string]*models.JobAssignment
	cycleIndex  int
}

func newMockJobs(jobs ...*models.Job) *mockJobs {
	m := &mockJobs{assignments: make(map[string]*models.JobAssignment)}
	for _, j := range jobs {
		cp := *j
		m.jobs = append(m.jobs, &cp)
	}
	return m
}

func (m *mockJobs) List(_ context.Context, _ repository.DBTX) ([]*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Job, len(m.jobs))
	copy(out, m.jobs)
	return out, nil
}

func (m *mockJobs) ListActive(_ context.Context, _ repository.DBTX) ([]*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Job
	for _, j := range m.jobs {
		if j.Active {
			out = append(out, j)
		}
	}
	return out, nil
}

func (m *mockJobs) Get(_ context.Context, _ repository.DBTX, id uuid.UUID) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.jobs {
		if j.ID == id {
			cp := *j
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockJobs) GetAssignment(_ context.Context, _ repository.DBTX, userID string) (*models.JobAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assignments[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (m *mockJobs) CreateAssignment(_ context.Context, _ repository.DBTX, a *models.JobAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assignments[a.UserID]; ok {
		return &pgconn.PgError{Code: "23505"}
	}
	a.AssignedAt = time.Now()
	cp := *a
	m.assignments[a.UserID] = &cp
	return nil
}

func (m *mockJobs) DeleteAssignment(_ context.Context, _ repository.DBTX, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assignments[userID]; !ok {
		return false, nil
	}
	delete(m.assignments, userID)
	return true, nil
}

func (m *mockJobs) AdvanceCycle(_ context.Context, _ repository.DBTX, jobCount int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.cycleIndex % jobCount
	m.cycleIndex = (m.cycleIndex + 1) % jobCount
	return prev, nil
}
