package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	// Replace global default registry to allow test inspection.
	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry

	m := New()

	if m.ProviderFetches == nil || m.AlertsSent == nil || m.TicksTotal == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.ObserveProviderFetch("zadarma", "ok", 50*time.Millisecond)
	m.ObserveTick("poll", time.Second, true)
	m.ObserveAlert("callii", "daily_due")

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics

	m.ObserveProviderFetch("zadarma", "error", time.Second)
	m.SetProviderBalance("zadarma", "USD", 12.5)
	m.ObserveAlert("didww", "low_balance")
	m.ObserveTick("due", time.Second, false)
	m.ObserveTelegramRequest("sendMessage", "ok", time.Second)
	m.ObserveUpdate("callback")
}
