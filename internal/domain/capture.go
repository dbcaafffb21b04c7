package domain

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// CaptureState is the conversation state of the payment capture flow.
// The zero value is Idle; a conversation exists only while awaiting an amount.
type CaptureState string

const (
	CaptureIdle           CaptureState = ""
	CaptureAwaitingAmount CaptureState = "awaiting_amount"
)

// Operator-entered amounts must be an integer or carry at most two decimal
// places. Signs, spaces and currency symbols are rejected.
var amountPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// ParseTopUpAmount validates and parses an operator-entered top-up amount.
func ParseTopUpAmount(text string) (decimal.Decimal, error) {
	if !amountPattern.MatchString(text) {
		return decimal.Zero, ErrMalformedAmount
	}
	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, ErrMalformedAmount
	}
	return amount, nil
}

// CoverageDays returns how many full days the amount sustains a daily-cost
// service: floor(amount / dailyCost).
func CoverageDays(amount, dailyCost decimal.Decimal) int64 {
	if !dailyCost.IsPositive() {
		return 0
	}
	return amount.Div(dailyCost).Floor().IntPart()
}
