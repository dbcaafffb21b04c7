package telegram

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/billwatch/internal/domain"
	"github.com/iho/billwatch/internal/infrastructure/metrics"
	"github.com/iho/billwatch/internal/usecase"
)

const (
	pollTimeout   = 30 * time.Second
	pollRetryWait = 5 * time.Second
)

// paymentCapturer handles ack buttons and amount replies.
type paymentCapturer interface {
	Acknowledge(ctx context.Context, chatID int64, token string) (string, error)
	HandleMessage(ctx context.Context, chatID int64, text string) (usecase.CaptureResult, error)
}

// balanceSummarizer produces the /balance overview.
type balanceSummarizer interface {
	Statuses(ctx context.Context) ([]usecase.ServiceStatus, error)
}

// Poller long-polls the Bot API and routes operator input. Only the
// configured target chat may interact with the bot: foreign messages get a
// short refusal, foreign button presses are ignored.
type Poller struct {
	client  *Client
	capture paymentCapturer
	summary balanceSummarizer
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewPoller creates a new Poller.
func NewPoller(client *Client, capture paymentCapturer, summary balanceSummarizer, logger zerolog.Logger, m *metrics.Metrics) *Poller {
	return &Poller{
		client:  client,
		capture: capture,
		summary: summary,
		logger:  logger,
		metrics: m,
	}
}

// Run polls for updates until the context is cancelled.
func (p *Poller) Run(ctx context.Context) {
	var offset int64

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("telegram polling stopped")
			return
		default:
		}

		updates, err := p.client.GetUpdates(ctx, offset, pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn().Err(err).Msg("poll updates")
			select {
			case <-ctx.Done():
				return
			case <-time.After(pollRetryWait):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			p.handleUpdate(ctx, update)
		}
	}
}

func (p *Poller) handleUpdate(ctx context.Context, update Update) {
	switch {
	case update.CallbackQuery != nil:
		p.metrics.ObserveUpdate("callback")
		p.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.Text != "":
		p.metrics.ObserveUpdate("message")
		p.handleMessage(ctx, update.Message)
	}
}

func (p *Poller) handleCallback(ctx context.Context, cq *CallbackQuery) {
	// Always answer, otherwise the button spins forever.
	defer func() {
		if err := p.client.AnswerCallbackQuery(ctx, cq.ID); err != nil {
			p.logger.Warn().Err(err).Msg("answer callback query")
		}
	}()

	if cq.Message == nil || cq.Message.Chat.ID != p.client.ChatID() {
		return
	}
	chatID := cq.Message.Chat.ID

	reply, err := p.capture.Acknowledge(ctx, chatID, cq.Data)
	if err != nil {
		if errors.Is(err, domain.ErrServiceNotFound) || errors.Is(err, domain.ErrNotDailyCycle) {
			p.logger.Warn().Str("token", cq.Data).Msg("unknown ack token")
			return
		}
		p.logger.Error().Err(err).Msg("acknowledge payment")
		return
	}

	// Strip the button from the reminder so a settled payment can't be
	// acknowledged twice from the same message.
	edited := cq.Message.Text + "\n\n✅ Acknowledged."
	if err := p.client.EditMessageText(ctx, chatID, cq.Message.MessageID, edited); err != nil {
		p.logger.Warn().Err(err).Msg("edit reminder message")
	}

	if err := p.client.SendTo(ctx, chatID, reply); err != nil {
		p.logger.Error().Err(err).Msg("send capture prompt")
	}
}

func (p *Poller) handleMessage(ctx context.Context, msg *Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	if chatID != p.client.ChatID() {
		p.logger.Warn().Int64("chat_id", chatID).Msg("message from unauthorized chat")
		if err := p.client.SendTo(ctx, chatID, Unauthorized()); err != nil {
			p.logger.Warn().Err(err).Msg("send refusal")
		}
		return
	}

	switch {
	case strings.HasPrefix(text, "/start"):
		p.reply(ctx, chatID, Welcome())
	case strings.HasPrefix(text, "/balance"):
		p.replyBalance(ctx, chatID)
	default:
		p.replyCapture(ctx, chatID, text)
	}
}

func (p *Poller) replyBalance(ctx context.Context, chatID int64) {
	statuses, err := p.summary.Statuses(ctx)
	if err != nil {
		p.logger.Error().Err(err).Msg("build balance summary")
		p.reply(ctx, chatID, "Failed to build the summary, try again later.")
		return
	}

	p.reply(ctx, chatID, FormatSummary(statuses))
}

func (p *Poller) replyCapture(ctx context.Context, chatID int64, text string) {
	result, err := p.capture.HandleMessage(ctx, chatID, text)
	if err != nil {
		if errors.Is(err, domain.ErrNoPendingCapture) {
			// Free-form chatter outside a capture, nothing to do.
			return
		}
		p.logger.Error().Err(err).Msg("handle capture message")
		return
	}

	p.reply(ctx, chatID, result.Reply)
}

func (p *Poller) reply(ctx context.Context, chatID int64, text string) {
	if err := p.client.SendTo(ctx, chatID, text); err != nil {
		p.logger.Error().Err(err).Msg("send reply")
	}
}
