package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	httpAdapter "github.com/iho/billwatch/internal/adapter/http"
	"github.com/iho/billwatch/internal/adapter/http/handler"
	"github.com/iho/billwatch/internal/adapter/provider"
	postgresRepo "github.com/iho/billwatch/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/billwatch/internal/adapter/repository/redis"
	"github.com/iho/billwatch/internal/adapter/telegram"
	"github.com/iho/billwatch/internal/domain"
	"github.com/iho/billwatch/internal/infrastructure/config"
	"github.com/iho/billwatch/internal/infrastructure/logger"
	"github.com/iho/billwatch/internal/infrastructure/metrics"
	"github.com/iho/billwatch/internal/infrastructure/postgres"
	"github.com/iho/billwatch/internal/infrastructure/redis"
	"github.com/iho/billwatch/internal/scheduler"
	"github.com/iho/billwatch/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("service failed")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("resolve timezone: %w", err)
	}
	reminder := domain.ReminderTime{Hour: cfg.ReminderHour, Minute: cfg.ReminderMinute, Loc: loc}

	m := metrics.New()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	serviceRepo := postgresRepo.NewServiceRepository(pool)
	alertRepo := postgresRepo.NewAlertLogRepository(pool)
	conversations := redisRepo.NewConversationStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log)

	// Balance providers
	providers := buildProviders(cfg, log, m)
	for _, p := range providers {
		log.Info().Str("provider", string(p.Service())).Msg("provider enabled")
	}

	// Telegram
	botClient := telegram.NewClient(telegram.Config{
		Token:  cfg.BotToken,
		ChatID: cfg.TargetChatID,
	}, log, m)

	classifierCfg := domain.ClassifierConfig{
		LowBalanceThreshold: cfg.LowBalanceThreshold,
		MinTopUpAmount:      cfg.MinTopUpAmount,
	}

	// Use cases
	balanceUC := usecase.NewBalanceUseCase(txManager, serviceRepo, alertRepo, providers, botClient, idGen, classifierCfg, log, m)
	calendarUC := usecase.NewCalendarUseCase(txManager, serviceRepo, alertRepo, botClient, idGen, reminder, cfg.WazzupPhone, log, m)
	captureUC := usecase.NewCaptureUseCase(txManager, serviceRepo, conversations, reminder, cfg.WazzupPhone, cfg.ConversationTTL, log)
	summaryUC := usecase.NewSummaryUseCase(txManager, serviceRepo, providers, log)
	seedUC := usecase.NewSeedUseCase(serviceRepo, reminder, costOverrides(cfg), log)

	// Ensure the service catalog exists before any loop runs.
	if err := seedUC.Seed(ctx); err != nil {
		return fmt.Errorf("seed services: %w", err)
	}

	// Scheduler: the balance poll and the due-date check run on independent
	// timers. Lock races inside a tick are retried at the database level.
	sched := scheduler.New(log, m)
	sched.Add("poll", cfg.PollInterval, func(ctx context.Context) error {
		return retrier.Retry(ctx, func() error { return balanceUC.CheckBalances(ctx) })
	})
	sched.Add("due", cfg.DueCheckInterval, func(ctx context.Context) error {
		return retrier.Retry(ctx, func() error { return calendarUC.EvaluateDue(ctx) })
	})

	poller := telegram.NewPoller(botClient, captureUC, summaryUC, log, m)

	// Ops HTTP server
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		StatusHandler: handler.NewStatusHandler(summaryUC, alertRepo, log),
		HealthHandler: handler.NewHealthHandler(pool, redisClient),
		Logger:        log,
		Metrics:       m,
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		sched.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Run(ctx)
	}()

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting ops server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		stop()
		wg.Wait()
		return fmt.Errorf("ops server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("ops server forced to shutdown")
	}

	wg.Wait()
	log.Info().Msg("service stopped")

	return nil
}

// buildProviders wires a client for every service with configured
// credentials. A service without credentials simply keeps its stored
// balance.
func buildProviders(cfg *config.Config, log zerolog.Logger, m *metrics.Metrics) []usecase.BalanceProvider {
	var providers []usecase.BalanceProvider

	if cfg.ZadarmaKey != "" && cfg.ZadarmaSecret != "" {
		providers = append(providers, provider.NewZadarmaProvider(provider.ZadarmaConfig{
			Key:    cfg.ZadarmaKey,
			Secret: cfg.ZadarmaSecret,
		}, log, m))
	}

	if cfg.DIDWWKey != "" {
		providers = append(providers, provider.NewDIDWWProvider(provider.DIDWWConfig{
			Key: cfg.DIDWWKey,
		}, log, m))
	}

	return providers
}

func costOverrides(cfg *config.Config) usecase.CostOverrides {
	return usecase.CostOverrides{
		DailyCosts: map[domain.ServiceName]decimal.Decimal{
			domain.Callii:        cfg.CalliiDailyCost,
			domain.WazzupBalance: cfg.WazzupDailyCost,
		},
		MonthlyFees: map[domain.ServiceName]decimal.Decimal{
			domain.Streamtele:         cfg.StreamteleMonthlyFee,
			domain.WazzupSubscription: cfg.WazzupMonthlyFee,
			domain.DIDWW:              cfg.DIDWWMonthlyFee,
		},
	}
}
