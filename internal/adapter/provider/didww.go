package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/billwatch/internal/domain"
	"github.com/iho/billwatch/internal/infrastructure/metrics"
)

const didwwDefaultBaseURL = "https://api.didww.com/v3"

// DIDWWConfig configures the DIDWW API client.
type DIDWWConfig struct {
	Key     string
	BaseURL string
	Timeout time.Duration
}

// DIDWWProvider fetches the DIDWW account balance from the v3 JSON:API.
// The total balance (available plus credit) is preferred over the plain
// balance attribute when both are present.
type DIDWWProvider struct {
	key     string
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewDIDWWProvider creates a new DIDWWProvider.
func NewDIDWWProvider(cfg DIDWWConfig, logger zerolog.Logger, m *metrics.Metrics) *DIDWWProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = didwwDefaultBaseURL
	}

	return &DIDWWProvider{
		key:     cfg.Key,
		baseURL: baseURL,
		client:  newHTTPClient(cfg.Timeout),
		logger:  logger.With().Str("provider", string(domain.DIDWW)).Logger(),
		metrics: m,
	}
}

// Service reports which catalog service this provider backs.
func (p *DIDWWProvider) Service() domain.ServiceName {
	return domain.DIDWW
}

// FetchBalance returns the current balance, or false when the provider is
// unavailable or answers with an unusable payload.
func (p *DIDWWProvider) FetchBalance(ctx context.Context) (decimal.Decimal, bool) {
	start := time.Now()

	balance, err := p.fetch(ctx)
	if err != nil {
		p.metrics.ObserveProviderFetch(string(domain.DIDWW), outcomeError, time.Since(start))
		p.logger.Warn().Err(err).Msg("balance fetch failed")
		return decimal.Zero, false
	}

	p.metrics.ObserveProviderFetch(string(domain.DIDWW), outcomeOK, time.Since(start))
	p.metrics.SetProviderBalance(string(domain.DIDWW), string(domain.USD), balance.InexactFloat64())

	return balance, true
}

func (p *DIDWWProvider) fetch(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/balance", nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Api-Key", p.key)
	req.Header.Set("Accept", "application/vnd.api+json")

	resp, err := p.client.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("decode response: %w", err)
	}

	attrs, err := didwwAttributes(body.Data)
	if err != nil {
		return decimal.Zero, err
	}

	if value, ok := anyToDecimal(attrs["total_balance"]); ok {
		return value, nil
	}
	if value, ok := anyToDecimal(attrs["balance"]); ok {
		return value, nil
	}

	return decimal.Zero, fmt.Errorf("no balance attribute in response")
}

// didwwAttributes extracts the attributes object from the JSON:API data
// block, which may be a single resource or a one-element list.
func didwwAttributes(data json.RawMessage) (map[string]any, error) {
	type resource struct {
		Attributes map[string]any `json:"attributes"`
	}

	var single resource
	if err := json.Unmarshal(data, &single); err == nil && single.Attributes != nil {
		return single.Attributes, nil
	}

	var list []resource
	if err := json.Unmarshal(data, &list); err == nil && len(list) > 0 && list[0].Attributes != nil {
		return list[0].Attributes, nil
	}

	return nil, fmt.Errorf("unexpected response structure")
}
