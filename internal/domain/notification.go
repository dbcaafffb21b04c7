package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AlertKind classifies an outbound operator notification.
type AlertKind string

const (
	AlertTopUp      AlertKind = "top_up"
	AlertLowBalance AlertKind = "low_balance"
	AlertDailyDue   AlertKind = "daily_due"
	AlertMonthlyDue AlertKind = "monthly_due"
)

// Notification is one message for the operator channel. Action, when set, is
// an ack token to attach as an actionable control; pressing it is delivered
// back as an acknowledgement event carrying the same token.
type Notification struct {
	Service ServiceName
	Kind    AlertKind
	Text    string
	Action  string
	// ActionLabel is the visible caption of the actionable control.
	ActionLabel string
}

// TopUpNotice reports a detected balance top-up.
func TopUpNotice(spec ServiceSpec, delta, balance decimal.Decimal) Notification {
	sign := spec.Currency.Sign()
	return Notification{
		Service: spec.Name,
		Kind:    AlertTopUp,
		Text: fmt.Sprintf(
			"✅ <b>%s account topped up!</b>\nTop-up amount: <b>%s%s</b>.\nCurrent balance: <b>%s%s</b>.",
			spec.DisplayName, sign, delta.StringFixed(2), sign, balance.StringFixed(2)),
	}
}

// LowBalanceNotice warns that a balance dropped below the threshold.
func LowBalanceNotice(spec ServiceSpec, balance decimal.Decimal) Notification {
	sign := spec.Currency.Sign()
	return Notification{
		Service: spec.Name,
		Kind:    AlertLowBalance,
		Text: fmt.Sprintf(
			"⚠️ <b>Low balance on %s!</b>\nCurrent balance: <b>%s%s</b>.\nPlease top up the account.",
			spec.DisplayName, sign, balance.StringFixed(2)),
	}
}

// DailyReminder nags about an expired daily-cycle prepayment. The burn rate
// comes from the record, which may carry a configured override of the catalog
// cost. It carries the service's ack token so the operator can open the
// payment capture flow. Phone is included for services tied to a phone
// number; may be empty.
func DailyReminder(spec ServiceSpec, rec *ServiceRecord, phone string) Notification {
	sign := spec.Currency.Sign()
	text := fmt.Sprintf(
		"⏰ <b>%s:</b> prepaid period is over (burns %s%s/day).",
		spec.DisplayName, sign, rec.DailyCost.StringFixed(2))
	if phone != "" {
		text += fmt.Sprintf("\nNumber %s.", phone)
	}
	text += " Pay and press the button to enter the amount."
	return Notification{
		Service:     spec.Name,
		Kind:        AlertDailyDue,
		Text:        text,
		Action:      spec.AckToken,
		ActionLabel: spec.AckLabel,
	}
}

// MonthlyReminder announces an upcoming fixed monthly fee. For API-backed
// services the projected remainder after the fee is included.
func MonthlyReminder(spec ServiceSpec, rec *ServiceRecord, phone string) Notification {
	sign := spec.Currency.Sign()
	fee := rec.MonthlyFee
	var text string
	switch {
	case spec.HasAPI:
		projected := rec.LastBalance.Sub(fee)
		text = fmt.Sprintf(
			"📡 <b>%s:</b> the monthly fee is due (day %d).\nCurrent balance: <b>%s%s</b>.\nAfter the charge (%s%s) roughly %s%s remains.",
			spec.DisplayName, spec.TargetDay,
			sign, rec.LastBalance.StringFixed(2),
			sign, fee.StringFixed(2),
			sign, projected.StringFixed(2))
	case phone != "":
		text = fmt.Sprintf(
			"🗓️ <b>%s:</b>\nNumber %s must be paid by day %d.\nSubscription fee: %s%s.",
			spec.DisplayName, phone, spec.TargetDay, sign, fee.StringFixed(2))
	default:
		text = fmt.Sprintf(
			"🗓️ <b>%s:</b> monthly check.\nSubscription fee: %s%s. Review billing and pay if needed.",
			spec.DisplayName, sign, fee.StringFixed(2))
	}
	return Notification{Service: spec.Name, Kind: AlertMonthlyDue, Text: text}
}

// CapturePrompt asks the operator for the top-up amount after an ack.
func CapturePrompt(spec ServiceSpec, phone string) string {
	if phone != "" {
		return fmt.Sprintf("Enter the top-up amount in %s for number %s:", spec.Currency, phone)
	}
	return fmt.Sprintf("Thanks. <b>Enter the top-up amount (a number, in %s):</b>", spec.Currency)
}

// CaptureConfirmation summarizes a processed payment. dailyCost is the
// record's burn rate, the same value the coverage was computed from.
func CaptureConfirmation(spec ServiceSpec, amount, dailyCost decimal.Decimal, days int64, next time.Time) string {
	sign := spec.Currency.Sign()
	return fmt.Sprintf(
		"💰 <b>%s payment recorded!</b>\nAmount: <b>%s%s</b>\nDays covered (%s%s/day): <b>%d</b>.\nNext balance check scheduled for <b>%s</b>.",
		spec.DisplayName,
		sign, amount.StringFixed(2),
		sign, dailyCost.StringFixed(2),
		days,
		next.Format("2006-01-02 at 15:04"))
}

// CaptureRejection explains why an amount was not accepted; conversation
// state is preserved so the operator can retry.
func CaptureRejection(spec ServiceSpec, dailyCost decimal.Decimal) string {
	sign := spec.Currency.Sign()
	return fmt.Sprintf(
		"The amount does not cover even one day of usage (%s%s/day). Please enter a larger amount.",
		sign, dailyCost.StringFixed(2))
}

// CaptureFormatError asks the operator to re-enter a malformed amount.
func CaptureFormatError() string {
	return "Wrong format. Enter the amount as a number, e.g. 50 or 50.50."
}
