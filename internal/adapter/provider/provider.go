package provider

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

const defaultTimeout = 10 * time.Second

// Fetch outcomes reported to metrics.
const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// anyToDecimal converts a decoded JSON value to a decimal. Provider APIs are
// inconsistent here: some return amounts as numbers, some as strings.
func anyToDecimal(v any) (decimal.Decimal, bool) {
	switch value := v.(type) {
	case string:
		d, err := decimal.NewFromString(value)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case json.Number:
		d, err := decimal.NewFromString(value.String())
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case float64:
		return decimal.NewFromFloat(value), true
	default:
		return decimal.Zero, false
	}
}
