package domain

import "github.com/shopspring/decimal"

// ClassifierConfig holds the process-wide balance thresholds.
type ClassifierConfig struct {
	// LowBalanceThreshold is the balance below which a low-balance alert
	// fires once per excursion.
	LowBalanceThreshold decimal.Decimal
	// MinTopUpAmount is the minimum positive delta treated as a top-up.
	// The comparison is strictly greater-than.
	MinTopUpAmount decimal.Decimal
}

// Classify applies one successfully fetched balance to a record and returns
// the notifications that fire. Both checks run every time, in order: top-up
// detection first, then the low-balance hysteresis latch. LastBalance is
// updated unconditionally.
//
// Must only be called after a successful fetch; a failed fetch skips the
// service entirely for the cycle.
func Classify(spec ServiceSpec, rec *ServiceRecord, current decimal.Decimal, cfg ClassifierConfig) []Notification {
	var notifications []Notification

	// Top-up: strict inequality, so delta == MinTopUpAmount does not fire.
	if current.GreaterThan(rec.LastBalance.Add(cfg.MinTopUpAmount)) {
		delta := current.Sub(rec.LastBalance)
		notifications = append(notifications, TopUpNotice(spec, delta, current))
		rec.LowBalanceAlertSent = false
	}

	if current.LessThan(cfg.LowBalanceThreshold) {
		if !rec.LowBalanceAlertSent {
			notifications = append(notifications, LowBalanceNotice(spec, current))
			rec.LowBalanceAlertSent = true
		}
	} else {
		// Balance recovered; re-arm the latch so a future excursion alerts.
		rec.LowBalanceAlertSent = false
	}

	rec.LastBalance = current
	return notifications
}
