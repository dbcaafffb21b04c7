package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/billwatch/internal/domain"
	"github.com/iho/billwatch/internal/infrastructure/metrics"
)

// BalanceUseCase polls balance providers and applies the transition
// classifier to each API-backed service.
type BalanceUseCase struct {
	txManager TransactionManager
	services  ServiceRepository
	alerts    AlertLogRepository
	providers []BalanceProvider
	notifier  Notifier
	idGen     IDGenerator
	cfg       domain.ClassifierConfig
	logger    zerolog.Logger
	metrics   *metrics.Metrics

	now func() time.Time
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(
	txManager TransactionManager,
	services ServiceRepository,
	alerts AlertLogRepository,
	providers []BalanceProvider,
	notifier Notifier,
	idGen IDGenerator,
	cfg domain.ClassifierConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *BalanceUseCase {
	return &BalanceUseCase{
		txManager: txManager,
		services:  services,
		alerts:    alerts,
		providers: providers,
		notifier:  notifier,
		idGen:     idGen,
		cfg:       cfg,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
}

// CheckBalances runs one polling cycle over all providers. A failed fetch or
// a failed commit skips that service for the cycle; the rest still run. The
// returned error reports only cycle-level faults the scheduler should back
// off on.
func (uc *BalanceUseCase) CheckBalances(ctx context.Context) error {
	var cycleErr error

	for _, provider := range uc.providers {
		name := provider.Service()

		current, ok := provider.FetchBalance(ctx)
		if !ok {
			uc.logger.Info().Str("service", string(name)).Msg("balance unavailable, skipping")
			continue
		}

		notifications, err := uc.applyBalance(ctx, name, current)
		if err != nil {
			uc.logger.Error().Err(err).Str("service", string(name)).Msg("balance check failed")
			cycleErr = err
			continue
		}

		uc.deliver(ctx, notifications)
	}

	return cycleErr
}

// applyBalance classifies one fetched balance inside a per-service
// transaction and returns the notifications to deliver after commit.
func (uc *BalanceUseCase) applyBalance(ctx context.Context, name domain.ServiceName, current decimal.Decimal) ([]domain.Notification, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rec, err := uc.services.GetByNameForUpdate(ctx, tx, name)
	if err != nil {
		return nil, fmt.Errorf("load record: %w", err)
	}

	notifications := domain.Classify(rec.Spec(), rec, current, uc.cfg)
	rec.UpdatedAt = uc.now().UTC()

	if err := uc.services.Update(ctx, tx, rec); err != nil {
		return nil, fmt.Errorf("persist record: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return notifications, nil
}

// deliver sends notifications and records them in the alert log. Delivery
// failures are logged, never propagated: the classifier state is already
// committed and the latch prevents repeats.
func (uc *BalanceUseCase) deliver(ctx context.Context, notifications []domain.Notification) {
	for _, n := range notifications {
		if err := uc.notifier.Send(ctx, n.Text); err != nil {
			uc.logger.Error().Err(err).Str("service", string(n.Service)).Msg("send notification")
			continue
		}
		uc.metrics.ObserveAlert(string(n.Service), string(n.Kind))
		uc.logAlert(ctx, n)
	}
}

func (uc *BalanceUseCase) logAlert(ctx context.Context, n domain.Notification) {
	entry := &domain.AlertEntry{
		ID:      uc.idGen.Generate(),
		Service: n.Service,
		Kind:    n.Kind,
		Text:    n.Text,
		SentAt:  uc.now().UTC(),
	}
	if err := uc.alerts.Create(ctx, entry); err != nil {
		uc.logger.Error().Err(err).Str("service", string(n.Service)).Msg("record alert entry")
	}
}
