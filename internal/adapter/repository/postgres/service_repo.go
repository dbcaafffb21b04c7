package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/billwatch/internal/domain"
	"github.com/iho/billwatch/internal/usecase"
)

const serviceColumns = `name, currency, last_balance, low_balance_alert_sent,
	       daily_cost, monthly_fee, next_alert_date, next_monthly_alert, updated_at`

// ServiceRepository implements usecase.ServiceRepository.
type ServiceRepository struct {
	pool *pgxpool.Pool
}

// NewServiceRepository creates a new ServiceRepository.
func NewServiceRepository(pool *pgxpool.Pool) *ServiceRepository {
	return &ServiceRepository{pool: pool}
}

// GetByName retrieves a service record by name.
func (r *ServiceRepository) GetByName(ctx context.Context, name domain.ServiceName) (*domain.ServiceRecord, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE name = $1`

	rec, err := scanService(r.pool.QueryRow(ctx, query, string(name)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrServiceNotFound
		}
		return nil, err
	}

	return rec, nil
}

// GetByNameForUpdate retrieves a service record with a FOR UPDATE lock.
func (r *ServiceRepository) GetByNameForUpdate(ctx context.Context, tx usecase.Transaction, name domain.ServiceName) (*domain.ServiceRecord, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `SELECT ` + serviceColumns + ` FROM services WHERE name = $1 FOR UPDATE`

	rec, err := scanService(pgxTx.QueryRow(ctx, query, string(name)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrServiceNotFound
		}
		return nil, err
	}

	return rec, nil
}

// Update persists a service record inside the given transaction.
func (r *ServiceRepository) Update(ctx context.Context, tx usecase.Transaction, rec *domain.ServiceRecord) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE services SET
			currency = $2,
			last_balance = $3,
			low_balance_alert_sent = $4,
			daily_cost = $5,
			monthly_fee = $6,
			next_alert_date = $7,
			next_monthly_alert = $8,
			updated_at = $9
		WHERE name = $1
	`

	tag, err := pgxTx.Exec(ctx, query,
		string(rec.Name),
		string(rec.Currency),
		decimalToNumeric(rec.LastBalance),
		rec.LowBalanceAlertSent,
		decimalToNumeric(rec.DailyCost),
		decimalToNumeric(rec.MonthlyFee),
		ptrToPgTimestamptz(rec.NextAlertDate),
		ptrToPgTimestamptz(rec.NextMonthlyAlert),
		timeToPgTimestamptz(rec.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrServiceNotFound
	}

	return nil
}

// List returns all service records.
func (r *ServiceRepository) List(ctx context.Context) ([]*domain.ServiceRecord, error) {
	query := `SELECT ` + serviceColumns + ` FROM services ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.ServiceRecord
	for rows.Next() {
		rec, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Seed inserts a service record if it does not exist yet. Existing rows are
// left untouched so live state survives restarts.
func (r *ServiceRepository) Seed(ctx context.Context, rec *domain.ServiceRecord) error {
	query := `
		INSERT INTO services (` + serviceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (name) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		string(rec.Name),
		string(rec.Currency),
		decimalToNumeric(rec.LastBalance),
		rec.LowBalanceAlertSent,
		decimalToNumeric(rec.DailyCost),
		decimalToNumeric(rec.MonthlyFee),
		ptrToPgTimestamptz(rec.NextAlertDate),
		ptrToPgTimestamptz(rec.NextMonthlyAlert),
		timeToPgTimestamptz(rec.UpdatedAt),
	)

	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanService(row rowScanner) (*domain.ServiceRecord, error) {
	var (
		rec              domain.ServiceRecord
		name, currency   string
		balance          pgtype.Numeric
		dailyCost        pgtype.Numeric
		monthlyFee       pgtype.Numeric
		nextAlertDate    pgtype.Timestamptz
		nextMonthlyAlert pgtype.Timestamptz
		updatedAt        pgtype.Timestamptz
	)

	err := row.Scan(
		&name,
		&currency,
		&balance,
		&rec.LowBalanceAlertSent,
		&dailyCost,
		&monthlyFee,
		&nextAlertDate,
		&nextMonthlyAlert,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Name = domain.ServiceName(name)
	rec.Currency = domain.Currency(currency)
	rec.LastBalance = numericToDecimal(balance)
	rec.DailyCost = numericToDecimal(dailyCost)
	rec.MonthlyFee = numericToDecimal(monthlyFee)
	rec.NextAlertDate = pgToTimePtr(nextAlertDate)
	rec.NextMonthlyAlert = pgToTimePtr(nextMonthlyAlert)
	rec.UpdatedAt = updatedAt.Time

	return &rec, nil
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func ptrToPgTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func pgToTimePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
