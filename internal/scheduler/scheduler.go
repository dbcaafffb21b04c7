package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/iho/billwatch/internal/infrastructure/metrics"
)

// Task is one unit of periodic work.
type Task func(ctx context.Context) error

type loop struct {
	name     string
	interval time.Duration
	task     Task
}

// Scheduler runs independent periodic loops. Each loop fires immediately on
// start, then at its own interval; a failed tick is retried with exponential
// backoff instead of waiting out the full interval.
type Scheduler struct {
	loops   []loop
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// New creates a new Scheduler.
func New(logger zerolog.Logger, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		logger:  logger,
		metrics: m,
	}
}

// Add registers a named loop.
func (s *Scheduler) Add(name string, interval time.Duration, task Task) {
	s.loops = append(s.loops, loop{name: name, interval: interval, task: task})
}

// Run blocks until the context is cancelled and every loop has stopped.
func (s *Scheduler) Run(ctx context.Context) {
	var wg sync.WaitGroup

	for _, l := range s.loops {
		wg.Add(1)
		go func(l loop) {
			defer wg.Done()
			s.runLoop(ctx, l)
		}(l)
	}

	wg.Wait()
	s.logger.Info().Msg("scheduler stopped")
}

func (s *Scheduler) runLoop(ctx context.Context, l loop) {
	s.logger.Info().
		Str("loop", l.name).
		Dur("interval", l.interval).
		Msg("loop started")

	b := backoff.NewExponentialBackOff()
	b.MaxInterval = l.interval
	b.MaxElapsedTime = 0

	for {
		start := time.Now()
		err := l.task(ctx)
		s.metrics.ObserveTick(l.name, time.Since(start), err != nil)

		wait := l.interval
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			wait = b.NextBackOff()
			s.logger.Error().
				Err(err).
				Str("loop", l.name).
				Dur("retry_in", wait).
				Msg("tick failed")
		} else {
			b.Reset()
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}
