package provider

import (
	"context"
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/billwatch/internal/domain"
	"github.com/iho/billwatch/internal/infrastructure/metrics"
)

const (
	zadarmaDefaultBaseURL = "https://api.zadarma.com"
	zadarmaBalancePath    = "/v1/info/balance/"
)

// ZadarmaConfig configures the Zadarma API client.
type ZadarmaConfig struct {
	Key     string
	Secret  string
	BaseURL string
	Timeout time.Duration
}

// ZadarmaProvider fetches the Zadarma account balance. Requests are signed
// per the Zadarma API scheme: an MD5 of the sorted query string is appended
// to the sign payload, HMAC-SHA1 of the payload is hex-encoded and then
// base64-encoded.
type ZadarmaProvider struct {
	key     string
	secret  string
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewZadarmaProvider creates a new ZadarmaProvider.
func NewZadarmaProvider(cfg ZadarmaConfig, logger zerolog.Logger, m *metrics.Metrics) *ZadarmaProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = zadarmaDefaultBaseURL
	}

	return &ZadarmaProvider{
		key:     cfg.Key,
		secret:  cfg.Secret,
		baseURL: baseURL,
		client:  newHTTPClient(cfg.Timeout),
		logger:  logger.With().Str("provider", string(domain.Zadarma)).Logger(),
		metrics: m,
	}
}

// Service reports which catalog service this provider backs.
func (p *ZadarmaProvider) Service() domain.ServiceName {
	return domain.Zadarma
}

// FetchBalance returns the current balance. A false result means the
// provider could not be reached or answered with an error; callers skip the
// service for this cycle.
func (p *ZadarmaProvider) FetchBalance(ctx context.Context) (decimal.Decimal, bool) {
	start := time.Now()

	balance, err := p.fetch(ctx)
	if err != nil {
		p.metrics.ObserveProviderFetch(string(domain.Zadarma), outcomeError, time.Since(start))
		p.logger.Warn().Err(err).Msg("balance fetch failed")
		return decimal.Zero, false
	}

	p.metrics.ObserveProviderFetch(string(domain.Zadarma), outcomeOK, time.Since(start))
	p.metrics.SetProviderBalance(string(domain.Zadarma), string(domain.USD), balance.InexactFloat64())

	return balance, true
}

func (p *ZadarmaProvider) fetch(ctx context.Context) (decimal.Decimal, error) {
	params := map[string]string{"format": "json"}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+zadarmaBalancePath+"?"+paramsString(params), nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Authorization", p.authHeader(zadarmaBalancePath, params))

	resp, err := p.client.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Status  string      `json:"status"`
		Balance json.Number `json:"balance"`
		Info    struct {
			Balance json.Number `json:"balance"`
		} `json:"info"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("decode response: %w", err)
	}

	if body.Status != "success" {
		return decimal.Zero, fmt.Errorf("api status %q", body.Status)
	}

	raw := body.Balance
	if raw == "" {
		raw = body.Info.Balance
	}
	if raw == "" {
		return decimal.Zero, fmt.Errorf("no balance in response")
	}

	balance, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse balance %q: %w", raw, err)
	}

	return balance, nil
}

// authHeader builds the Authorization value for a signed request.
func (p *ZadarmaProvider) authHeader(method string, params map[string]string) string {
	paramsStr := paramsString(params)

	md5Sum := md5.Sum([]byte(paramsStr))
	md5Hex := hex.EncodeToString(md5Sum[:])

	mac := hmac.New(sha1.New, []byte(p.secret))
	mac.Write([]byte(method + paramsStr + md5Hex))
	hmacHex := hex.EncodeToString(mac.Sum(nil))

	signature := base64.StdEncoding.EncodeToString([]byte(hmacHex))

	return p.key + ":" + signature
}

// paramsString joins parameters sorted by key, the order the signature is
// computed over.
func paramsString(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	return strings.Join(pairs, "&")
}
