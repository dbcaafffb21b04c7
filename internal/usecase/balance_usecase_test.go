package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/billwatch/internal/domain"
	"github.com/iho/billwatch/internal/usecase"
	"github.com/iho/billwatch/internal/usecase/mocks"
)

func classifierConfig() domain.ClassifierConfig {
	return domain.ClassifierConfig{
		LowBalanceThreshold: decimal.NewFromInt(10),
		MinTopUpAmount:      decimal.NewFromInt(5),
	}
}

func TestBalanceUseCase_CheckBalances(t *testing.T) {
	repo := mocks.NewMockServiceRepository()
	repo.Put(&domain.ServiceRecord{
		Name:        domain.Zadarma,
		Currency:    domain.USD,
		LastBalance: decimal.NewFromInt(3),
	})

	txManager := mocks.NewMockTransactionManager()
	alerts := mocks.NewMockAlertLogRepository()
	notifier := mocks.NewMockNotifier()
	provider := &mocks.MockBalanceProvider{Name: domain.Zadarma, Balance: decimal.NewFromInt(20), OK: true}

	uc := usecase.NewBalanceUseCase(
		txManager, repo, alerts,
		[]usecase.BalanceProvider{provider},
		notifier, mocks.NewMockIDGenerator(),
		classifierConfig(), zerolog.Nop(), nil,
	)

	if err := uc.CheckBalances(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec, err := repo.GetByName(context.Background(), domain.Zadarma)
	if err != nil {
		t.Fatalf("record lookup: %v", err)
	}
	if !rec.LastBalance.Equal(decimal.NewFromInt(20)) {
		t.Errorf("last balance = %s, want 20", rec.LastBalance)
	}

	if len(notifier.Sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.Sent))
	}
	if len(alerts.Entries) != 1 || alerts.Entries[0].Kind != domain.AlertTopUp {
		t.Fatalf("expected one top-up alert entry, got %+v", alerts.Entries)
	}

	if len(txManager.Transactions) != 1 || !txManager.Transactions[0].Committed {
		t.Error("expected a committed per-service transaction")
	}
}

func TestBalanceUseCase_ProviderUnavailableSkipsService(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	provider := mocks.NewMockGomockBalanceProvider(ctrl)
	provider.EXPECT().Service().Return(domain.Zadarma).AnyTimes()
	provider.EXPECT().FetchBalance(gomock.Any()).Return(decimal.Zero, false)

	repo := mocks.NewMockServiceRepository()
	repo.Put(&domain.ServiceRecord{
		Name:        domain.Zadarma,
		Currency:    domain.USD,
		LastBalance: decimal.NewFromInt(3),
	})

	txManager := mocks.NewMockTransactionManager()
	notifier := mocks.NewMockNotifier()

	uc := usecase.NewBalanceUseCase(
		txManager, repo, mocks.NewMockAlertLogRepository(),
		[]usecase.BalanceProvider{provider},
		notifier, mocks.NewMockIDGenerator(),
		classifierConfig(), zerolog.Nop(), nil,
	)

	if err := uc.CheckBalances(context.Background()); err != nil {
		t.Fatalf("unavailability must not surface as an error, got %v", err)
	}

	rec, _ := repo.GetByName(context.Background(), domain.Zadarma)
	if !rec.LastBalance.Equal(decimal.NewFromInt(3)) {
		t.Errorf("record must stay untouched on failed fetch, got %s", rec.LastBalance)
	}
	if len(notifier.Sent) != 0 {
		t.Errorf("no notifications expected, got %d", len(notifier.Sent))
	}
	if len(txManager.Transactions) != 0 {
		t.Error("no transaction should be opened for a failed fetch")
	}
}

func TestBalanceUseCase_OneFailureDoesNotAbortOthers(t *testing.T) {
	repo := mocks.NewMockServiceRepository()
	// Zadarma missing from the store; DIDWW present.
	repo.Put(&domain.ServiceRecord{
		Name:        domain.DIDWW,
		Currency:    domain.USD,
		LastBalance: decimal.NewFromInt(50),
	})

	notifier := mocks.NewMockNotifier()
	providers := []usecase.BalanceProvider{
		&mocks.MockBalanceProvider{Name: domain.Zadarma, Balance: decimal.NewFromInt(9), OK: true},
		&mocks.MockBalanceProvider{Name: domain.DIDWW, Balance: decimal.NewFromInt(2), OK: true},
	}

	uc := usecase.NewBalanceUseCase(
		mocks.NewMockTransactionManager(), repo, mocks.NewMockAlertLogRepository(),
		providers, notifier, mocks.NewMockIDGenerator(),
		classifierConfig(), zerolog.Nop(), nil,
	)

	err := uc.CheckBalances(context.Background())
	if !errors.Is(err, domain.ErrServiceNotFound) {
		t.Fatalf("expected the per-service failure to be reported, got %v", err)
	}

	// DIDWW still got processed: 2 < 10 fires a low-balance alert.
	rec, _ := repo.GetByName(context.Background(), domain.DIDWW)
	if !rec.LastBalance.Equal(decimal.NewFromInt(2)) {
		t.Errorf("second service must still be processed, balance = %s", rec.LastBalance)
	}
	if len(notifier.Sent) != 1 {
		t.Fatalf("expected the DIDWW low-balance notification, got %d messages", len(notifier.Sent))
	}
}

func TestBalanceUseCase_CommitFailureDiscardsChange(t *testing.T) {
	repo := mocks.NewMockServiceRepository()
	stored := &domain.ServiceRecord{
		Name:        domain.Zadarma,
		Currency:    domain.USD,
		LastBalance: decimal.NewFromInt(3),
	}
	repo.Put(stored)
	// Hand out copies so an uncommitted mutation cannot leak into the store.
	repo.GetByNameForUpdateFunc = func(ctx context.Context, tx usecase.Transaction, name domain.ServiceName) (*domain.ServiceRecord, error) {
		copy := *stored
		return &copy, nil
	}
	repo.UpdateFunc = func(ctx context.Context, tx usecase.Transaction, rec *domain.ServiceRecord) error {
		return nil
	}

	txManager := mocks.NewMockTransactionManager()
	txManager.BeginFunc = func(ctx context.Context) (usecase.Transaction, error) {
		return &mocks.MockTransaction{CommitFunc: func(ctx context.Context) error {
			return errors.New("connection lost")
		}}, nil
	}

	notifier := mocks.NewMockNotifier()
	provider := &mocks.MockBalanceProvider{Name: domain.Zadarma, Balance: decimal.NewFromInt(20), OK: true}

	uc := usecase.NewBalanceUseCase(
		txManager, repo, mocks.NewMockAlertLogRepository(),
		[]usecase.BalanceProvider{provider},
		notifier, mocks.NewMockIDGenerator(),
		classifierConfig(), zerolog.Nop(), nil,
	)

	if err := uc.CheckBalances(context.Background()); err == nil {
		t.Fatal("expected commit failure to be reported")
	}
	if len(notifier.Sent) != 0 {
		t.Error("nothing may be sent when the commit failed")
	}
	if !stored.LastBalance.Equal(decimal.NewFromInt(3)) {
		t.Errorf("stored record must keep its old balance, got %s", stored.LastBalance)
	}
}
