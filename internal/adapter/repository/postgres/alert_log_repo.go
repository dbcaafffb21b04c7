package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/billwatch/internal/domain"
)

// AlertLogRepository implements alert history persistence.
type AlertLogRepository struct {
	pool *pgxpool.Pool
}

// NewAlertLogRepository creates a new AlertLogRepository.
func NewAlertLogRepository(pool *pgxpool.Pool) *AlertLogRepository {
	return &AlertLogRepository{pool: pool}
}

// Create inserts a new alert log entry.
func (r *AlertLogRepository) Create(ctx context.Context, entry *domain.AlertEntry) error {
	query := `
		INSERT INTO alert_log (id, service, kind, text, sent_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		string(entry.Service),
		string(entry.Kind),
		entry.Text,
		entry.SentAt,
	)

	return err
}

// ListRecent returns the newest alert entries, newest first.
func (r *AlertLogRepository) ListRecent(ctx context.Context, limit int) ([]*domain.AlertEntry, error) {
	query := `
		SELECT id, service, kind, text, sent_at
		FROM alert_log
		ORDER BY sent_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.AlertEntry
	for rows.Next() {
		var (
			entry         domain.AlertEntry
			service, kind string
		)
		if err := rows.Scan(&entry.ID, &service, &kind, &entry.Text, &entry.SentAt); err != nil {
			return nil, err
		}
		entry.Service = domain.ServiceName(service)
		entry.Kind = domain.AlertKind(kind)
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
