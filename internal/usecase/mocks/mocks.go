package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/billwatch/internal/domain"
	"github.com/iho/billwatch/internal/usecase"
)

// MockServiceRepository is a mock implementation of ServiceRepository backed
// by an in-memory map.
type MockServiceRepository struct {
	mu      sync.RWMutex
	records map[domain.ServiceName]*domain.ServiceRecord

	GetByNameFunc          func(ctx context.Context, name domain.ServiceName) (*domain.ServiceRecord, error)
	GetByNameForUpdateFunc func(ctx context.Context, tx usecase.Transaction, name domain.ServiceName) (*domain.ServiceRecord, error)
	UpdateFunc             func(ctx context.Context, tx usecase.Transaction, rec *domain.ServiceRecord) error
	ListFunc               func(ctx context.Context) ([]*domain.ServiceRecord, error)
	SeedFunc               func(ctx context.Context, rec *domain.ServiceRecord) error
}

func NewMockServiceRepository() *MockServiceRepository {
	return &MockServiceRepository{
		records: make(map[domain.ServiceName]*domain.ServiceRecord),
	}
}

// Put stores a record directly, bypassing the mock hooks.
func (m *MockServiceRepository) Put(rec *domain.ServiceRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.Name] = rec
}

func (m *MockServiceRepository) GetByName(ctx context.Context, name domain.ServiceName) (*domain.ServiceRecord, error) {
	if m.GetByNameFunc != nil {
		return m.GetByNameFunc(ctx, name)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rec, ok := m.records[name]; ok {
		return rec, nil
	}
	return nil, domain.ErrServiceNotFound
}

func (m *MockServiceRepository) GetByNameForUpdate(ctx context.Context, tx usecase.Transaction, name domain.ServiceName) (*domain.ServiceRecord, error) {
	if m.GetByNameForUpdateFunc != nil {
		return m.GetByNameForUpdateFunc(ctx, tx, name)
	}
	return m.GetByName(ctx, name)
}

func (m *MockServiceRepository) Update(ctx context.Context, tx usecase.Transaction, rec *domain.ServiceRecord) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, rec)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.Name] = rec
	return nil
}

func (m *MockServiceRepository) List(ctx context.Context) ([]*domain.ServiceRecord, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	records := make([]*domain.ServiceRecord, 0, len(m.records))
	for _, name := range domain.AllServices {
		if rec, ok := m.records[name]; ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (m *MockServiceRepository) Seed(ctx context.Context, rec *domain.ServiceRecord) error {
	if m.SeedFunc != nil {
		return m.SeedFunc(ctx, rec)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.Name]; !ok {
		m.records[rec.Name] = rec
	}
	return nil
}

// MockAlertLogRepository records alert entries in memory.
type MockAlertLogRepository struct {
	mu      sync.Mutex
	Entries []*domain.AlertEntry

	CreateFunc func(ctx context.Context, entry *domain.AlertEntry) error
}

func NewMockAlertLogRepository() *MockAlertLogRepository {
	return &MockAlertLogRepository{}
}

func (m *MockAlertLogRepository) Create(ctx context.Context, entry *domain.AlertEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, entry)
	return nil
}

func (m *MockAlertLogRepository) ListRecent(ctx context.Context, limit int) ([]*domain.AlertEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > len(m.Entries) {
		limit = len(m.Entries)
	}
	return m.Entries[len(m.Entries)-limit:], nil
}

// MockTransaction tracks commit/rollback calls.
type MockTransaction struct {
	Committed  bool
	RolledBack bool

	CommitFunc func(ctx context.Context) error
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	if t.CommitFunc != nil {
		return t.CommitFunc(ctx)
	}
	t.Committed = true
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// MockTransactionManager hands out MockTransactions.
type MockTransactionManager struct {
	mu           sync.Mutex
	Transactions []*MockTransaction

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &MockTransaction{}
	m.Transactions = append(m.Transactions, tx)
	return tx, nil
}

// SentMessage is one message captured by MockNotifier.
type SentMessage struct {
	Text        string
	Action      string
	ActionLabel string
}

// MockNotifier captures outbound operator messages.
type MockNotifier struct {
	mu   sync.Mutex
	Sent []SentMessage

	SendFunc func(ctx context.Context, text string) error
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Send(ctx context.Context, text string) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, text)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentMessage{Text: text})
	return nil
}

func (m *MockNotifier) SendWithAction(ctx context.Context, text, actionToken, actionLabel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentMessage{Text: text, Action: actionToken, ActionLabel: actionLabel})
	return nil
}

// MockConversationStore keeps conversations in a map; TTL is ignored.
type MockConversationStore struct {
	mu            sync.Mutex
	conversations map[int64]domain.ServiceName

	SetFunc   func(ctx context.Context, chatID int64, service domain.ServiceName, ttl time.Duration) error
	ClearFunc func(ctx context.Context, chatID int64) error
}

func NewMockConversationStore() *MockConversationStore {
	return &MockConversationStore{
		conversations: make(map[int64]domain.ServiceName),
	}
}

func (m *MockConversationStore) Set(ctx context.Context, chatID int64, service domain.ServiceName, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, chatID, service, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversations[chatID] = service
	return nil
}

func (m *MockConversationStore) Get(ctx context.Context, chatID int64) (domain.ServiceName, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name, ok := m.conversations[chatID]
	return name, ok, nil
}

func (m *MockConversationStore) Clear(ctx context.Context, chatID int64) error {
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx, chatID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conversations, chatID)
	return nil
}

// MockIDGenerator returns sequential IDs.
type MockIDGenerator struct {
	mu sync.Mutex
	n  int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	return "id-" + string(rune('0'+m.n%10))
}

// MockBalanceProvider returns a scripted balance for one service.
type MockBalanceProvider struct {
	Name    domain.ServiceName
	Balance decimal.Decimal
	OK      bool

	FetchFunc func(ctx context.Context) (decimal.Decimal, bool)
}

func (m *MockBalanceProvider) Service() domain.ServiceName {
	return m.Name
}

func (m *MockBalanceProvider) FetchBalance(ctx context.Context) (decimal.Decimal, bool) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx)
	}
	return m.Balance, m.OK
}
