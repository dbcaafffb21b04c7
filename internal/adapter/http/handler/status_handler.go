package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iho/billwatch/internal/adapter/http/dto"
	"github.com/iho/billwatch/internal/usecase"
)

type balanceSummarizer interface {
	Statuses(ctx context.Context) ([]usecase.ServiceStatus, error)
}

// StatusHandler exposes the service overview and alert history.
type StatusHandler struct {
	summary balanceSummarizer
	alerts  usecase.AlertLogRepository
	logger  zerolog.Logger
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(summary balanceSummarizer, alerts usecase.AlertLogRepository, logger zerolog.Logger) *StatusHandler {
	return &StatusHandler{
		summary: summary,
		alerts:  alerts,
		logger:  logger,
	}
}

// ListServices returns the per-service status overview.
func (h *StatusHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.summary.Statuses(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list services")
		writeError(w, http.StatusInternalServerError, "failed to collect statuses", err.Error())
		return
	}

	out := make([]dto.ServiceResponse, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, serviceResponse(status))
	}

	writeJSON(w, http.StatusOK, out)
}

// ListAlerts returns the most recent alert history entries.
func (h *StatusHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", usecase.AlertLogLimit)
	if limit <= 0 || limit > 500 {
		limit = usecase.AlertLogLimit
	}

	entries, err := h.alerts.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("list alerts")
		writeError(w, http.StatusInternalServerError, "failed to read alert history", err.Error())
		return
	}

	out := make([]dto.AlertResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, dto.AlertResponse{
			ID:      entry.ID,
			Service: string(entry.Service),
			Kind:    string(entry.Kind),
			Text:    entry.Text,
			SentAt:  entry.SentAt,
		})
	}

	writeJSON(w, http.StatusOK, out)
}

func serviceResponse(status usecase.ServiceStatus) dto.ServiceResponse {
	rec := status.Record
	spec := rec.Spec()

	resp := dto.ServiceResponse{
		Name:                string(rec.Name),
		DisplayName:         spec.DisplayName,
		Currency:            string(rec.Currency),
		Balance:             status.Amount.String(),
		Live:                status.Live,
		Stale:               status.Stale,
		LowBalanceAlertSent: rec.LowBalanceAlertSent,
		NextPayment:         status.NextPayment,
		UpdatedAt:           rec.UpdatedAt,
	}

	if rec.DailyCost.IsPositive() {
		resp.DailyCost = rec.DailyCost.String()
	}
	if rec.MonthlyFee.IsPositive() {
		resp.MonthlyFee = rec.MonthlyFee.String()
	}

	return resp
}
