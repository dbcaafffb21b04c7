package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/billwatch/internal/domain"
)

// ServiceRepository defines data access for service records.
type ServiceRepository interface {
	GetByName(ctx context.Context, name domain.ServiceName) (*domain.ServiceRecord, error)
	// GetByNameForUpdate locks the record for the duration of the transaction
	// so concurrent classifier and capture writes serialize per service.
	GetByNameForUpdate(ctx context.Context, tx Transaction, name domain.ServiceName) (*domain.ServiceRecord, error)
	Update(ctx context.Context, tx Transaction, rec *domain.ServiceRecord) error
	List(ctx context.Context) ([]*domain.ServiceRecord, error)
	// Seed inserts the record if it does not exist yet. Existing records are
	// left untouched: the catalog never overwrites live state.
	Seed(ctx context.Context, rec *domain.ServiceRecord) error
}

// AlertLogRepository defines data access for the outbound notification log.
type AlertLogRepository interface {
	Create(ctx context.Context, entry *domain.AlertEntry) error
	ListRecent(ctx context.Context, limit int) ([]*domain.AlertEntry, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// BalanceProvider fetches the live balance of one API-backed service.
// Unavailability is a normal return, never an error: the adapter owns its own
// timeout and swallows transport and parse failures.
type BalanceProvider interface {
	Service() domain.ServiceName
	FetchBalance(ctx context.Context) (decimal.Decimal, bool)
}

// Notifier delivers messages to the operator channel.
type Notifier interface {
	Send(ctx context.Context, text string) error
	// SendWithAction attaches an actionable control; activating it is
	// delivered back as an acknowledgement event carrying the token.
	SendWithAction(ctx context.Context, text, actionToken, actionLabel string) error
}

// ConversationStore holds pending payment-capture conversations, keyed by
// operator chat. Entries expire so a stale capture cannot wedge the flow.
type ConversationStore interface {
	Set(ctx context.Context, chatID int64, service domain.ServiceName, ttl time.Duration) error
	Get(ctx context.Context, chatID int64) (domain.ServiceName, bool, error)
	Clear(ctx context.Context, chatID int64) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}
