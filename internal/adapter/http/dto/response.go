package dto

import "time"

// ErrorResponse is the error envelope for API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ServiceResponse is one service line in the status API.
type ServiceResponse struct {
	Name                string     `json:"name"`
	DisplayName         string     `json:"display_name"`
	Currency            string     `json:"currency"`
	Balance             string     `json:"balance"`
	Live                bool       `json:"live"`
	Stale               bool       `json:"stale"`
	LowBalanceAlertSent bool       `json:"low_balance_alert_sent"`
	DailyCost           string     `json:"daily_cost,omitempty"`
	MonthlyFee          string     `json:"monthly_fee,omitempty"`
	NextPayment         *time.Time `json:"next_payment,omitempty"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// AlertResponse is one alert history entry.
type AlertResponse struct {
	ID      string    `json:"id"`
	Service string    `json:"service"`
	Kind    string    `json:"kind"`
	Text    string    `json:"text"`
	SentAt  time.Time `json:"sent_at"`
}
