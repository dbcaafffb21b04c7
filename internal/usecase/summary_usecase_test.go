package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/billwatch/internal/domain"
	"github.com/iho/billwatch/internal/usecase"
	"github.com/iho/billwatch/internal/usecase/mocks"
)

func TestSummaryUseCase_Statuses(t *testing.T) {
	rt := reminderTime(t)
	next := time.Date(2026, 1, 11, 10, 0, 0, 0, rt.Loc)

	repo := mocks.NewMockServiceRepository()
	repo.Put(&domain.ServiceRecord{Name: domain.Zadarma, Currency: domain.USD, LastBalance: decimal.NewFromInt(5)})
	repo.Put(&domain.ServiceRecord{Name: domain.DIDWW, Currency: domain.USD, LastBalance: decimal.NewFromInt(50), NextMonthlyAlert: &next})
	repo.Put(&domain.ServiceRecord{Name: domain.Streamtele, Currency: domain.UAH, MonthlyFee: decimal.NewFromInt(1500), NextMonthlyAlert: &next})

	providers := []usecase.BalanceProvider{
		// Zadarma answers live, DIDWW is down.
		&mocks.MockBalanceProvider{Name: domain.Zadarma, Balance: decimal.NewFromInt(42), OK: true},
		&mocks.MockBalanceProvider{Name: domain.DIDWW, OK: false},
	}

	uc := usecase.NewSummaryUseCase(
		mocks.NewMockTransactionManager(), repo, providers,
		zerolog.Nop(),
	)

	statuses, err := uc.Statuses(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}

	// Display order is fixed: Zadarma, DIDWW, Streamtele.
	zadarma, didww, streamtele := statuses[0], statuses[1], statuses[2]

	if !zadarma.Live || !zadarma.Amount.Equal(decimal.NewFromInt(42)) {
		t.Errorf("zadarma: want live 42, got live=%v amount=%s", zadarma.Live, zadarma.Amount)
	}
	if !didww.Stale || !didww.Amount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("didww: want stale fallback 50, got stale=%v amount=%s", didww.Stale, didww.Amount)
	}
	if streamtele.Live || streamtele.Stale {
		t.Error("streamtele has no provider and must be neither live nor stale")
	}
	if didww.NextPayment == nil || !didww.NextPayment.Equal(next) {
		t.Errorf("didww next payment = %v, want %v", didww.NextPayment, next)
	}

	// The live fetch must refresh the stored balance.
	rec, _ := repo.GetByName(context.Background(), domain.Zadarma)
	if !rec.LastBalance.Equal(decimal.NewFromInt(42)) {
		t.Errorf("stored zadarma balance = %s, want refreshed 42", rec.LastBalance)
	}
}

func TestSummaryUseCase_RefreshLeavesLatchToThePollLoop(t *testing.T) {
	repo := mocks.NewMockServiceRepository()
	repo.Put(&domain.ServiceRecord{
		Name:        domain.Zadarma,
		Currency:    domain.USD,
		LastBalance: decimal.NewFromInt(12),
	})

	// Balance dips below the threshold (10) and is first observed on demand.
	provider := &mocks.MockBalanceProvider{Name: domain.Zadarma, Balance: decimal.NewFromInt(8), OK: true}

	summary := usecase.NewSummaryUseCase(
		mocks.NewMockTransactionManager(), repo,
		[]usecase.BalanceProvider{provider},
		zerolog.Nop(),
	)

	if _, err := summary.Statuses(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec, _ := repo.GetByName(context.Background(), domain.Zadarma)
	if !rec.LastBalance.Equal(decimal.NewFromInt(8)) {
		t.Fatalf("stored balance = %s, want refreshed 8", rec.LastBalance)
	}
	if rec.LowBalanceAlertSent {
		t.Fatal("the on-demand refresh must not set the low-balance latch")
	}

	// The next poll still owns the alert for the ongoing excursion.
	notifier := mocks.NewMockNotifier()
	poll := usecase.NewBalanceUseCase(
		mocks.NewMockTransactionManager(), repo, mocks.NewMockAlertLogRepository(),
		[]usecase.BalanceProvider{provider},
		notifier, mocks.NewMockIDGenerator(),
		classifierConfig(), zerolog.Nop(), nil,
	)
	if err := poll.CheckBalances(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(notifier.Sent) != 1 {
		t.Fatalf("expected the low-balance alert from the poll, got %d messages", len(notifier.Sent))
	}
	rec, _ = repo.GetByName(context.Background(), domain.Zadarma)
	if !rec.LowBalanceAlertSent {
		t.Error("the poll must set the latch after alerting")
	}
}
