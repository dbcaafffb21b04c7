package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/billwatch/internal/domain"
	"github.com/iho/billwatch/internal/usecase"
	"github.com/iho/billwatch/internal/usecase/mocks"
)

func reminderTime(t *testing.T) domain.ReminderTime {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Makassar")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return domain.ReminderTime{Hour: 10, Minute: 0, Loc: loc}
}

func newCalendarUseCase(t *testing.T, repo *mocks.MockServiceRepository, notifier *mocks.MockNotifier, alerts *mocks.MockAlertLogRepository) *usecase.CalendarUseCase {
	t.Helper()
	return usecase.NewCalendarUseCase(
		mocks.NewMockTransactionManager(), repo, alerts, notifier,
		mocks.NewMockIDGenerator(), reminderTime(t), "+6281239838440", zerolog.Nop(), nil,
	)
}

func TestCalendarUseCase_DailyDueFiresWithoutAdvancing(t *testing.T) {
	rt := reminderTime(t)
	overdue := time.Now().In(rt.Loc).AddDate(0, 0, -2)

	repo := mocks.NewMockServiceRepository()
	repo.Put(&domain.ServiceRecord{
		Name:          domain.Callii,
		Currency:      domain.USD,
		DailyCost:     decimal.NewFromFloat(2.2),
		NextAlertDate: &overdue,
	})

	notifier := mocks.NewMockNotifier()
	alerts := mocks.NewMockAlertLogRepository()
	uc := newCalendarUseCase(t, repo, notifier, alerts)

	if err := uc.EvaluateDue(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(notifier.Sent) != 1 {
		t.Fatalf("expected 1 reminder, got %d", len(notifier.Sent))
	}
	if notifier.Sent[0].Action != "callii_paid" {
		t.Errorf("reminder must carry the ack token, got %q", notifier.Sent[0].Action)
	}

	// The nag is persistent: the due date must not move.
	rec, _ := repo.GetByName(context.Background(), domain.Callii)
	if !rec.NextAlertDate.Equal(overdue) {
		t.Errorf("daily due date advanced to %v, must stay %v", rec.NextAlertDate, overdue)
	}

	// And a second evaluation fires again.
	if err := uc.EvaluateDue(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.Sent) != 2 {
		t.Errorf("expected the nag to re-fire, got %d messages", len(notifier.Sent))
	}
}

func TestCalendarUseCase_DailyReminderUsesRecordCost(t *testing.T) {
	rt := reminderTime(t)
	overdue := time.Now().In(rt.Loc).AddDate(0, 0, -1)

	repo := mocks.NewMockServiceRepository()
	// Configured burn rate differs from the catalog default.
	repo.Put(&domain.ServiceRecord{
		Name:          domain.Callii,
		Currency:      domain.USD,
		DailyCost:     decimal.NewFromInt(5),
		NextAlertDate: &overdue,
	})

	notifier := mocks.NewMockNotifier()
	uc := newCalendarUseCase(t, repo, notifier, mocks.NewMockAlertLogRepository())

	if err := uc.EvaluateDue(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(notifier.Sent) != 1 {
		t.Fatalf("expected 1 reminder, got %d", len(notifier.Sent))
	}
	if text := notifier.Sent[0].Text; !strings.Contains(text, "5.00/day") {
		t.Errorf("reminder must quote the record's burn rate, got %q", text)
	}
}

func TestCalendarUseCase_MonthlyDueAdvances(t *testing.T) {
	rt := reminderTime(t)
	due := time.Date(2025, 12, 11, 10, 0, 0, 0, rt.Loc)

	repo := mocks.NewMockServiceRepository()
	repo.Put(&domain.ServiceRecord{
		Name:             domain.Streamtele,
		Currency:         domain.UAH,
		MonthlyFee:       decimal.NewFromInt(1500),
		NextMonthlyAlert: &due,
	})

	notifier := mocks.NewMockNotifier()
	alerts := mocks.NewMockAlertLogRepository()
	uc := newCalendarUseCase(t, repo, notifier, alerts)

	if err := uc.EvaluateDue(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(notifier.Sent) != 1 {
		t.Fatalf("expected 1 reminder, got %d", len(notifier.Sent))
	}
	if notifier.Sent[0].Action != "" {
		t.Error("monthly reminders carry no ack control")
	}

	rec, _ := repo.GetByName(context.Background(), domain.Streamtele)
	want := time.Date(2026, 1, 11, 10, 0, 0, 0, rt.Loc)
	if rec.NextMonthlyAlert == nil || !rec.NextMonthlyAlert.Equal(want) {
		t.Errorf("monthly alert advanced to %v, want %v", rec.NextMonthlyAlert, want)
	}

	if len(alerts.Entries) != 1 || alerts.Entries[0].Kind != domain.AlertMonthlyDue {
		t.Errorf("expected one monthly alert entry, got %+v", alerts.Entries)
	}
}

func TestCalendarUseCase_FutureDatesProduceNothing(t *testing.T) {
	rt := reminderTime(t)
	future := time.Now().In(rt.Loc).AddDate(0, 0, 5)

	repo := mocks.NewMockServiceRepository()
	repo.Put(&domain.ServiceRecord{
		Name:          domain.Callii,
		Currency:      domain.USD,
		NextAlertDate: &future,
	})
	repo.Put(&domain.ServiceRecord{
		Name:             domain.Streamtele,
		Currency:         domain.UAH,
		NextMonthlyAlert: &future,
	})
	// Purely API-polled service carries no schedule at all.
	repo.Put(&domain.ServiceRecord{Name: domain.Zadarma, Currency: domain.USD})

	notifier := mocks.NewMockNotifier()
	uc := newCalendarUseCase(t, repo, notifier, mocks.NewMockAlertLogRepository())

	if err := uc.EvaluateDue(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.Sent) != 0 {
		t.Errorf("expected no notifications, got %d", len(notifier.Sent))
	}

	rec, _ := repo.GetByName(context.Background(), domain.Streamtele)
	if !rec.NextMonthlyAlert.Equal(future) {
		t.Error("future monthly date must not mutate")
	}
}

func TestCalendarUseCase_MonthlySendFailureKeepsDueDate(t *testing.T) {
	rt := reminderTime(t)
	due := time.Now().In(rt.Loc).AddDate(0, 0, -1)

	repo := mocks.NewMockServiceRepository()
	repo.Put(&domain.ServiceRecord{
		Name:             domain.Streamtele,
		Currency:         domain.UAH,
		MonthlyFee:       decimal.NewFromInt(1500),
		NextMonthlyAlert: &due,
	})

	notifier := mocks.NewMockNotifier()
	notifier.SendFunc = func(ctx context.Context, text string) error {
		return context.DeadlineExceeded
	}
	alerts := mocks.NewMockAlertLogRepository()
	uc := newCalendarUseCase(t, repo, notifier, alerts)

	if err := uc.EvaluateDue(context.Background()); err == nil {
		t.Fatal("a failed send must be reported")
	}

	// The date must not move: the reminder was never delivered, so the next
	// tick has to fire it again.
	rec, _ := repo.GetByName(context.Background(), domain.Streamtele)
	if !rec.NextMonthlyAlert.Equal(due) {
		t.Errorf("due date advanced to %v despite failed send, want %v", rec.NextMonthlyAlert, due)
	}
	if len(alerts.Entries) != 0 {
		t.Errorf("nothing was delivered, no alert entry expected, got %+v", alerts.Entries)
	}

	// Delivery restored: the same due date fires and only then advances.
	notifier.SendFunc = nil
	if err := uc.EvaluateDue(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.Sent) != 1 {
		t.Fatalf("expected the reminder after recovery, got %d", len(notifier.Sent))
	}
	rec, _ = repo.GetByName(context.Background(), domain.Streamtele)
	if rec.NextMonthlyAlert.Equal(due) {
		t.Error("due date must advance once the reminder is delivered")
	}
}

func TestCalendarUseCase_MonthlyFiresOncePerTick(t *testing.T) {
	rt := reminderTime(t)
	// Several months overdue; must advance one month per fire, not loop.
	due := time.Now().In(rt.Loc).AddDate(0, -3, 0)

	repo := mocks.NewMockServiceRepository()
	repo.Put(&domain.ServiceRecord{
		Name:             domain.WazzupSubscription,
		Currency:         domain.RUB,
		MonthlyFee:       decimal.NewFromInt(6000),
		NextMonthlyAlert: &due,
	})

	notifier := mocks.NewMockNotifier()
	uc := newCalendarUseCase(t, repo, notifier, mocks.NewMockAlertLogRepository())

	if err := uc.EvaluateDue(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(notifier.Sent) != 1 {
		t.Fatalf("a missed cycle must fire once per tick, got %d", len(notifier.Sent))
	}
	rec, _ := repo.GetByName(context.Background(), domain.WazzupSubscription)
	want := domain.NextMonthlyOccurrence(due, 11, rt)
	if !rec.NextMonthlyAlert.Equal(want) {
		t.Errorf("advanced to %v, want %v", rec.NextMonthlyAlert, want)
	}
}
