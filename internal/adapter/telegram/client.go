package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/iho/billwatch/internal/infrastructure/metrics"
)

const (
	defaultBaseURL = "https://api.telegram.org"
	defaultTimeout = 35 * time.Second

	sendMaxRetries = 3
)

// Chat identifies a Telegram chat.
type Chat struct {
	ID int64 `json:"id"`
}

// Message is an incoming or sent Telegram message.
type Message struct {
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
	Chat      Chat   `json:"chat"`
}

// CallbackQuery is a button press on an inline keyboard.
type CallbackQuery struct {
	ID      string   `json:"id"`
	Data    string   `json:"data"`
	Message *Message `json:"message"`
}

// Update is one item from getUpdates.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message"`
	CallbackQuery *CallbackQuery `json:"callback_query"`
}

type inlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type inlineKeyboardMarkup struct {
	InlineKeyboard [][]inlineKeyboardButton `json:"inline_keyboard"`
}

// Config configures the Bot API client.
type Config struct {
	Token   string
	ChatID  int64
	BaseURL string
	Timeout time.Duration
}

// Client is a minimal Telegram Bot API client. It implements
// usecase.Notifier against the configured target chat.
type Client struct {
	token   string
	chatID  int64
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewClient creates a new Client.
func NewClient(cfg Config, logger zerolog.Logger, m *metrics.Metrics) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		token:   cfg.Token,
		chatID:  cfg.ChatID,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
		metrics: m,
	}
}

// ChatID returns the configured target chat.
func (c *Client) ChatID() int64 {
	return c.chatID
}

// Send delivers a message to the target chat.
func (c *Client) Send(ctx context.Context, text string) error {
	return c.SendTo(ctx, c.chatID, text)
}

// SendWithAction delivers a message to the target chat with a single inline
// button that reports actionToken back as callback data.
func (c *Client) SendWithAction(ctx context.Context, text, actionToken, actionLabel string) error {
	payload := map[string]any{
		"chat_id":    c.chatID,
		"text":       text,
		"parse_mode": "HTML",
		"reply_markup": inlineKeyboardMarkup{
			InlineKeyboard: [][]inlineKeyboardButton{
				{{Text: actionLabel, CallbackData: actionToken}},
			},
		},
	}

	return c.sendWithRetry(ctx, payload)
}

// SendTo delivers a message to an arbitrary chat, used for replies in the
// operator conversation.
func (c *Client) SendTo(ctx context.Context, chatID int64, text string) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}

	return c.sendWithRetry(ctx, payload)
}

func (c *Client) sendWithRetry(ctx context.Context, payload map[string]any) error {
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), sendMaxRetries), ctx)

	return backoff.Retry(func() error {
		_, err := c.call(ctx, "sendMessage", payload)
		return err
	}, b)
}

// EditMessageText rewrites a previously sent message. Passing no
// reply_markup drops any inline keyboard the message carried.
func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string) error {
	_, err := c.call(ctx, "editMessageText", map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
		"parse_mode": "HTML",
	})
	return err
}

// AnswerCallbackQuery acknowledges a button press so the client stops
// showing a progress indicator.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	_, err := c.call(ctx, "answerCallbackQuery", map[string]any{
		"callback_query_id": callbackID,
	})
	return err
}

// GetUpdates long-polls for updates past the given offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	result, err := c.call(ctx, "getUpdates", map[string]any{
		"offset":          offset,
		"timeout":         int(timeout.Seconds()),
		"allowed_updates": []string{"message", "callback_query"},
	})
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}

	return updates, nil
}

func (c *Client) call(ctx context.Context, method string, payload map[string]any) (json.RawMessage, error) {
	start := time.Now()

	result, err := c.doCall(ctx, method, payload)

	status := "ok"
	if err != nil {
		status = "error"
	}
	c.metrics.ObserveTelegramRequest(method, status, time.Since(start))

	return result, err
}

func (c *Client) doCall(ctx context.Context, method string, payload map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", method, err)
	}

	var apiResp struct {
		OK          bool            `json:"ok"`
		Description string          `json:"description"`
		Result      json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("%s: status %d, unparsable body", method, resp.StatusCode)
	}

	if !apiResp.OK {
		return nil, fmt.Errorf("%s: api error: %s", method, apiResp.Description)
	}

	return apiResp.Result, nil
}
