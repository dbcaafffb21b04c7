package telegram

import (
	"strings"

	"github.com/iho/billwatch/internal/usecase"
)

// Welcome is the /start reply.
func Welcome() string {
	return strings.Join([]string{
		"👋 <b>Balance watcher</b>",
		"",
		"I poll service balances, remind about upcoming payments and track top-ups.",
		"",
		"/balance — current balances and next payments",
	}, "\n")
}

// Unauthorized is sent to chats outside the allow-list.
func Unauthorized() string {
	return "This bot serves a private operations chat."
}

// FormatSummary renders the per-service balance overview.
func FormatSummary(statuses []usecase.ServiceStatus) string {
	parts := []string{"💰 <b>Current service balances:</b>"}

	for _, status := range statuses {
		spec := status.Record.Spec()
		sign := spec.Currency.Sign()

		var line string
		switch {
		case spec.MonthlyFee.IsPositive() && !spec.HasAPI:
			line = "• <b>" + spec.DisplayName + ":</b> subscription " + sign + status.Record.MonthlyFee.StringFixed(2)
		case status.Live:
			line = "• <b>" + spec.DisplayName + ":</b> " + sign + status.Amount.StringFixed(2) + " (API)"
		case status.Stale:
			line = "• <b>" + spec.DisplayName + ":</b> " + sign + status.Amount.StringFixed(2) + " (API unavailable)"
		default:
			line = "• <b>" + spec.DisplayName + ":</b> " + sign + status.Amount.StringFixed(2) + " (approximate)"
		}
		parts = append(parts, line)

		if status.NextPayment != nil {
			parts = append(parts, "  <i>Next payment:</i> "+status.NextPayment.Format("2006-01-02"))
		}
	}

	return strings.Join(parts, "\n")
}
