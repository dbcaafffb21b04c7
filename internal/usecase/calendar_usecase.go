package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/billwatch/internal/domain"
	"github.com/iho/billwatch/internal/infrastructure/metrics"
)

// CalendarUseCase evaluates per-service due dates on each scheduling tick.
//
// Daily-cycle services re-fire every tick until the operator acknowledges and
// captures a payment; their due date is never advanced here. Monthly-cycle
// services advance to the next clamped occurrence the moment they fire, so
// they alert at most once per cycle and never skip a month.
type CalendarUseCase struct {
	txManager TransactionManager
	services  ServiceRepository
	alerts    AlertLogRepository
	notifier  Notifier
	idGen     IDGenerator
	reminder  domain.ReminderTime
	phone     string
	logger    zerolog.Logger
	metrics   *metrics.Metrics

	now func() time.Time
}

// NewCalendarUseCase creates a new CalendarUseCase. phone is the number
// referenced in Wazzup reminders; may be empty.
func NewCalendarUseCase(
	txManager TransactionManager,
	services ServiceRepository,
	alerts AlertLogRepository,
	notifier Notifier,
	idGen IDGenerator,
	reminder domain.ReminderTime,
	phone string,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *CalendarUseCase {
	return &CalendarUseCase{
		txManager: txManager,
		services:  services,
		alerts:    alerts,
		notifier:  notifier,
		idGen:     idGen,
		reminder:  reminder,
		phone:     phone,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
}

// EvaluateDue runs one due-date evaluation across all services. A failure on
// one service never aborts the rest; the returned error reports the last
// per-service fault so the scheduler can back off.
func (uc *CalendarUseCase) EvaluateDue(ctx context.Context) error {
	records, err := uc.services.List(ctx)
	if err != nil {
		return fmt.Errorf("list services: %w", err)
	}

	now := uc.now()
	var tickErr error

	for _, rec := range records {
		if err := uc.evaluateService(ctx, rec, now); err != nil {
			uc.logger.Error().Err(err).Str("service", string(rec.Name)).Msg("due evaluation failed")
			tickErr = err
		}
	}

	return tickErr
}

func (uc *CalendarUseCase) evaluateService(ctx context.Context, rec *domain.ServiceRecord, now time.Time) error {
	switch {
	case rec.NextAlertDate != nil:
		if !domain.DailyDue(*rec.NextAlertDate, now, uc.reminder.Loc) {
			return nil
		}
		return uc.fireDaily(ctx, rec)
	case rec.NextMonthlyAlert != nil:
		if !domain.MonthlyDue(*rec.NextMonthlyAlert, now) {
			return nil
		}
		return uc.fireMonthly(ctx, rec)
	default:
		return nil
	}
}

// fireDaily sends the nag without touching the record: only the payment
// capture flow moves a daily due date forward.
func (uc *CalendarUseCase) fireDaily(ctx context.Context, rec *domain.ServiceRecord) error {
	spec := rec.Spec()
	n := domain.DailyReminder(spec, rec, uc.phoneFor(spec))

	if err := uc.notifier.SendWithAction(ctx, n.Text, n.Action, n.ActionLabel); err != nil {
		return fmt.Errorf("send daily reminder: %w", err)
	}
	uc.metrics.ObserveAlert(string(n.Service), string(n.Kind))
	uc.logAlert(ctx, n)
	return nil
}

// fireMonthly sends the reminder, then advances the due date inside the same
// per-service transaction. Send comes first: a failed delivery rolls the
// advance back so the next tick re-fires, while a failed commit at worst
// repeats a delivered reminder.
func (uc *CalendarUseCase) fireMonthly(ctx context.Context, rec *domain.ServiceRecord) error {
	spec := rec.Spec()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	locked, err := uc.services.GetByNameForUpdate(ctx, tx, rec.Name)
	if err != nil {
		return fmt.Errorf("load record: %w", err)
	}

	// Re-check under the lock; a concurrent tick may have advanced it.
	if locked.NextMonthlyAlert == nil || !domain.MonthlyDue(*locked.NextMonthlyAlert, uc.now()) {
		return nil
	}

	n := domain.MonthlyReminder(spec, locked, uc.phoneFor(spec))
	if err := uc.notifier.Send(ctx, n.Text); err != nil {
		return fmt.Errorf("send monthly reminder: %w", err)
	}

	next := domain.NextMonthlyOccurrence(*locked.NextMonthlyAlert, spec.TargetDay, uc.reminder)
	locked.NextMonthlyAlert = &next
	locked.UpdatedAt = uc.now().UTC()

	if err := uc.services.Update(ctx, tx, locked); err != nil {
		return fmt.Errorf("persist record: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	uc.logger.Info().
		Str("service", string(rec.Name)).
		Time("next_monthly_alert", next).
		Msg("monthly alert advanced")

	uc.metrics.ObserveAlert(string(n.Service), string(n.Kind))
	uc.logAlert(ctx, n)
	return nil
}

func (uc *CalendarUseCase) phoneFor(spec domain.ServiceSpec) string {
	switch spec.Name {
	case domain.WazzupBalance, domain.WazzupSubscription:
		return uc.phone
	default:
		return ""
	}
}

func (uc *CalendarUseCase) logAlert(ctx context.Context, n domain.Notification) {
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
