package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/billwatch/internal/domain"
)

// CostOverrides carries configured per-service money constants that replace
// the catalog defaults at seed time. A zero value keeps the default.
type CostOverrides struct {
	DailyCosts  map[domain.ServiceName]decimal.Decimal
	MonthlyFees map[domain.ServiceName]decimal.Decimal
}

// SeedUseCase populates the record store with the fixed service catalog.
// Existing records are left untouched; the catalog never shrinks.
type SeedUseCase struct {
	services  ServiceRepository
	reminder  domain.ReminderTime
	overrides CostOverrides
	logger    zerolog.Logger

	now func() time.Time
}

// NewSeedUseCase creates a new SeedUseCase.
func NewSeedUseCase(services ServiceRepository, reminder domain.ReminderTime, overrides CostOverrides, logger zerolog.Logger) *SeedUseCase {
	return &SeedUseCase{
		services:  services,
		reminder:  reminder,
		overrides: overrides,
		logger:    logger,
		now:       time.Now,
	}
}

// Seed inserts any catalog service missing from the store. Daily-cycle
// services start due today so the reminder fires until the operator records
// the real prepaid horizon; monthly-cycle services start at the upcoming
// target day.
func (uc *SeedUseCase) Seed(ctx context.Context) error {
	now := uc.now()

	for _, name := range domain.AllServices {
		spec := domain.Catalog[name]
		rec := &domain.ServiceRecord{
			Name:        name,
			Currency:    spec.Currency,
			LastBalance: decimal.Zero,
			DailyCost:   uc.dailyCost(spec),
			MonthlyFee:  uc.monthlyFee(spec),
			UpdatedAt:   now.UTC(),
		}

		switch spec.Billing {
		case domain.BillingDaily:
			due := uc.reminder.On(now)
			rec.NextAlertDate = &due
		case domain.BillingMonthly:
			due := domain.UpcomingMonthlyOccurrence(now, spec.TargetDay, uc.reminder)
			rec.NextMonthlyAlert = &due
		}

		if err := rec.Validate(); err != nil {
			return fmt.Errorf("seed %s: %w", name, err)
		}
		if err := uc.services.Seed(ctx, rec); err != nil {
			return fmt.Errorf("seed %s: %w", name, err)
		}
	}

	uc.logger.Info().Int("services", len(domain.AllServices)).Msg("service catalog seeded")
	return nil
}

func (uc *SeedUseCase) dailyCost(spec domain.ServiceSpec) decimal.Decimal {
	if v, ok := uc.overrides.DailyCosts[spec.Name]; ok && v.IsPositive() {
		return v
	}
	return spec.DailyCost
}

func (uc *SeedUseCase) monthlyFee(spec domain.ServiceSpec) decimal.Decimal {
	if v, ok := uc.overrides.MonthlyFees[spec.Name]; ok && v.IsPositive() {
		return v
	}
	return spec.MonthlyFee
}
