package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Provider metrics
	ProviderFetches  *prometheus.CounterVec
	ProviderDuration *prometheus.HistogramVec
	ProviderBalance  *prometheus.GaugeVec

	// Alert metrics
	AlertsSent *prometheus.CounterVec

	// Scheduler metrics
	TicksTotal   *prometheus.CounterVec
	TickDuration *prometheus.HistogramVec
	TickFailures *prometheus.CounterVec

	// Telegram metrics
	TelegramRequests *prometheus.CounterVec
	TelegramDuration *prometheus.HistogramVec
	UpdatesHandled   *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Provider metrics
		ProviderFetches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billwatch_provider_fetches_total",
				Help: "Total balance fetches by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		ProviderDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "billwatch_provider_fetch_duration_seconds",
				Help:    "Duration of provider balance fetches",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		ProviderBalance: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "billwatch_provider_balance",
				Help: "Last fetched balance by provider",
			},
			[]string{"provider", "currency"},
		),

		// Alert metrics
		AlertsSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billwatch_alerts_sent_total",
				Help: "Total alerts sent by service and kind",
			},
			[]string{"service", "kind"},
		),

		// Scheduler metrics
		TicksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billwatch_scheduler_ticks_total",
				Help: "Total scheduler ticks by loop",
			},
			[]string{"loop"},
		),
		TickDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "billwatch_scheduler_tick_duration_seconds",
				Help:    "Duration of scheduler ticks",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"loop"},
		),
		TickFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billwatch_scheduler_tick_failures_total",
				Help: "Total failed scheduler ticks by loop",
			},
			[]string{"loop"},
		),

		// Telegram metrics
		TelegramRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billwatch_telegram_requests_total",
				Help: "Total Telegram API calls by method and status",
			},
			[]string{"method", "status"},
		),
		TelegramDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "billwatch_telegram_request_duration_seconds",
				Help:    "Telegram API call duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		UpdatesHandled: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billwatch_telegram_updates_total",
				Help: "Total Telegram updates handled by kind",
			},
			[]string{"kind"},
		),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billwatch_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "billwatch_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

// The observe helpers below are nil-safe so components can run without a
// registered metrics set, as tests do.

// ObserveProviderFetch records one balance fetch attempt.
func (m *Metrics) ObserveProviderFetch(provider, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ProviderFetches.WithLabelValues(provider, outcome).Inc()
	m.ProviderDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// SetProviderBalance records the last fetched balance.
func (m *Metrics) SetProviderBalance(provider, currency string, balance float64) {
	if m == nil {
		return
	}
	m.ProviderBalance.WithLabelValues(provider, currency).Set(balance)
}

// ObserveAlert counts one delivered alert.
func (m *Metrics) ObserveAlert(service, kind string) {
	if m == nil {
		return
	}
	m.AlertsSent.WithLabelValues(service, kind).Inc()
}

// ObserveTick records one scheduler tick.
func (m *Metrics) ObserveTick(loop string, elapsed time.Duration, failed bool) {
	if m == nil {
		return
	}
	m.TicksTotal.WithLabelValues(loop).Inc()
	m.TickDuration.WithLabelValues(loop).Observe(elapsed.Seconds())
	if failed {
		m.TickFailures.WithLabelValues(loop).Inc()
	}
}

// ObserveTelegramRequest records one Bot API call.
func (m *Metrics) ObserveTelegramRequest(method, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.TelegramRequests.WithLabelValues(method, status).Inc()
	m.TelegramDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveUpdate counts one handled Telegram update.
func (m *Metrics) ObserveUpdate(kind string) {
	if m == nil {
		return
	}
	m.UpdatesHandled.WithLabelValues(kind).Inc()
}
