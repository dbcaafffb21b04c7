package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/billwatch/internal/domain"
)

// ServiceStatus is one line of the balance summary: the stored record plus,
// for API-backed services, the result of a live refresh.
type ServiceStatus struct {
	Record *domain.ServiceRecord
	// Live is true when Amount comes from a fresh provider fetch.
	Live bool
	// Stale is true when a provider exists but was unavailable, so Amount
	// falls back to the stored balance.
	Stale  bool
	Amount decimal.Decimal
	// NextPayment is the due date to display, from either schedule field.
	NextPayment *time.Time
}

// SummaryUseCase assembles the per-service balance overview used by the
// /balance command, the ops HTTP endpoint and the CLI.
type SummaryUseCase struct {
	txManager TransactionManager
	services  ServiceRepository
	providers map[domain.ServiceName]BalanceProvider
	logger    zerolog.Logger

	now func() time.Time
}

// NewSummaryUseCase creates a new SummaryUseCase.
func NewSummaryUseCase(
	txManager TransactionManager,
	services ServiceRepository,
	providers []BalanceProvider,
	logger zerolog.Logger,
) *SummaryUseCase {
	byName := make(map[domain.ServiceName]BalanceProvider, len(providers))
	for _, p := range providers {
		byName[p.Service()] = p
	}
	return &SummaryUseCase{
		txManager: txManager,
		services:  services,
		providers: byName,
		logger:    logger,
		now:       time.Now,
	}
}

// Statuses returns one status per catalog service, in display order. For
// API-backed services the balance is refreshed live and the fresh value
// replaces the stored one. Classification stays with the polling loop: the
// refresh must not touch the low-balance latch, or an excursion first seen
// here would never alert.
func (uc *SummaryUseCase) Statuses(ctx context.Context) ([]ServiceStatus, error) {
	records, err := uc.services.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}

	byName := make(map[domain.ServiceName]*domain.ServiceRecord, len(records))
	for _, rec := range records {
		byName[rec.Name] = rec
	}

	statuses := make([]ServiceStatus, 0, len(domain.AllServices))
	for _, name := range domain.AllServices {
		rec, ok := byName[name]
		if !ok {
			continue
		}
		statuses = append(statuses, uc.statusFor(ctx, rec))
	}
	return statuses, nil
}

func (uc *SummaryUseCase) statusFor(ctx context.Context, rec *domain.ServiceRecord) ServiceStatus {
	status := ServiceStatus{Record: rec, Amount: rec.LastBalance}
	if rec.NextAlertDate != nil {
		status.NextPayment = rec.NextAlertDate
	} else if rec.NextMonthlyAlert != nil {
		status.NextPayment = rec.NextMonthlyAlert
	}

	provider, ok := uc.providers[rec.Name]
	if !ok {
		return status
	}

	current, fetched := provider.FetchBalance(ctx)
	if !fetched {
		status.Stale = true
		return status
	}

	status.Live = true
	status.Amount = current

	if err := uc.refreshRecord(ctx, rec, current); err != nil {
		uc.logger.Error().Err(err).Str("service", string(rec.Name)).Msg("refresh stored balance")
	}
	return status
}

// refreshRecord stores the freshly fetched balance. Only LastBalance moves:
// latch transitions and their alerts belong to the polling loop.
func (uc *SummaryUseCase) refreshRecord(ctx context.Context, rec *domain.ServiceRecord, current decimal.Decimal) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	locked, err := uc.services.GetByNameForUpdate(ctx, tx, rec.Name)
	if err != nil {
		return err
	}

	locked.LastBalance = current
	locked.UpdatedAt = uc.now().UTC()

	if err := uc.services.Update(ctx, tx, locked); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
