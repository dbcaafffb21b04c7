package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/billwatch/internal/domain"
)

// CaptureUseCase drives the two-state payment capture conversation: an
// acknowledged daily reminder opens AwaitingAmount, the next numeric message
// converts into a new due date.
type CaptureUseCase struct {
	txManager     TransactionManager
	services      ServiceRepository
	conversations ConversationStore
	reminder      domain.ReminderTime
	phone         string
	ttl           time.Duration
	logger        zerolog.Logger

	now func() time.Time
}

// NewCaptureUseCase creates a new CaptureUseCase.
func NewCaptureUseCase(
	txManager TransactionManager,
	services ServiceRepository,
	conversations ConversationStore,
	reminder domain.ReminderTime,
	phone string,
	ttl time.Duration,
	logger zerolog.Logger,
) *CaptureUseCase {
	if ttl <= 0 {
		ttl = DefaultConversationTTL
	}
	return &CaptureUseCase{
		txManager:     txManager,
		services:      services,
		conversations: conversations,
		reminder:      reminder,
		phone:         phone,
		ttl:           ttl,
		logger:        logger,
		now:           time.Now,
	}
}

// Acknowledge handles an acknowledgement event carrying an ack token. It
// opens the AwaitingAmount state for the chat and returns the amount prompt.
func (uc *CaptureUseCase) Acknowledge(ctx context.Context, chatID int64, token string) (string, error) {
	spec, ok := domain.SpecByAckToken(token)
	if !ok {
		return "", domain.ErrServiceNotFound
	}
	if spec.Billing != domain.BillingDaily {
		return "", domain.ErrNotDailyCycle
	}

	if err := uc.conversations.Set(ctx, chatID, spec.Name, uc.ttl); err != nil {
		return "", fmt.Errorf("open conversation: %w", err)
	}

	uc.logger.Info().
		Int64("chat_id", chatID).
		Str("service", string(spec.Name)).
		Msg("payment capture opened")

	phone := ""
	if spec.Name == domain.WazzupBalance {
		phone = uc.phone
	}
	return domain.CapturePrompt(spec, phone), nil
}

// CaptureResult is the outcome of one operator message in AwaitingAmount.
type CaptureResult struct {
	// Reply is the text to send back to the operator.
	Reply string
	// Done is true when the conversation returned to Idle.
	Done bool
}

// HandleMessage consumes one operator message. It returns
// domain.ErrNoPendingCapture when no conversation is open, so the caller can
// route the message elsewhere. Recoverable input problems keep the
// conversation open; a persistence failure reports to the operator and
// force-closes the conversation to avoid a stuck state.
func (uc *CaptureUseCase) HandleMessage(ctx context.Context, chatID int64, text string) (CaptureResult, error) {
	name, pending, err := uc.conversations.Get(ctx, chatID)
	if err != nil {
		return CaptureResult{}, fmt.Errorf("read conversation: %w", err)
	}
	if !pending {
		return CaptureResult{}, domain.ErrNoPendingCapture
	}

	spec, ok := domain.Catalog[name]
	if !ok {
		// A stale conversation referencing an unknown service; drop it.
		_ = uc.conversations.Clear(ctx, chatID)
		return CaptureResult{}, domain.ErrServiceNotFound
	}

	amount, err := domain.ParseTopUpAmount(text)
	if errors.Is(err, domain.ErrMalformedAmount) {
		return CaptureResult{Reply: domain.CaptureFormatError()}, nil
	}

	// The burn rate lives on the record: the seeded value may carry a
	// configured override of the catalog default.
	rec, err := uc.services.GetByName(ctx, name)
	if err != nil {
		uc.logger.Error().Err(err).Str("service", string(name)).Msg("load record for capture")
		_ = uc.conversations.Clear(ctx, chatID)
		return CaptureResult{
			Reply: fmt.Sprintf("An error occurred while saving: %v. The reminder stays active.", err),
			Done:  true,
		}, nil
	}

	days := domain.CoverageDays(amount, rec.DailyCost)
	if days < 1 {
		return CaptureResult{Reply: domain.CaptureRejection(spec, rec.DailyCost)}, nil
	}

	next := domain.NextDailyAlert(uc.now(), days, uc.reminder)

	if err := uc.persistDueDate(ctx, name, next); err != nil {
		uc.logger.Error().Err(err).Str("service", string(name)).Msg("persist capture")
		// Force back to Idle so the conversation cannot wedge; the daily nag
		// will re-fire on the next tick.
		_ = uc.conversations.Clear(ctx, chatID)
		return CaptureResult{
			Reply: fmt.Sprintf("An error occurred while saving: %v. The reminder stays active.", err),
			Done:  true,
		}, nil
	}

	if err := uc.conversations.Clear(ctx, chatID); err != nil {
		uc.logger.Error().Err(err).Int64("chat_id", chatID).Msg("clear conversation")
	}

	uc.logger.Info().
		Str("service", string(name)).
		Int64("coverage_days", days).
		Time("next_alert_date", next).
		Msg("payment captured")

	return CaptureResult{
		Reply: domain.CaptureConfirmation(spec, amount, rec.DailyCost, days, next),
		Done:  true,
	}, nil
}

func (uc *CaptureUseCase) persistDueDate(ctx context.Context, name domain.ServiceName, next time.Time) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rec, err := uc.services.GetByNameForUpdate(ctx, tx, name)
	if err != nil {
		return fmt.Errorf("load record: %w", err)
	}

	rec.NextAlertDate = &next
	rec.UpdatedAt = uc.now().UTC()

	if err := uc.services.Update(ctx, tx, rec); err != nil {
		return fmt.Errorf("persist record: %w", err)
	}
	return tx.Commit(ctx)
}
