package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"

	"github.com/MrSnakeDoc/skyroute/internal/domain"
	"github.com/MrSnakeDoc/skyroute/internal/logger"
	"github.com/MrSnakeDoc/skyroute/internal/metrics"
	"github.com/MrSnakeDoc/skyroute/internal/stats"
)

const (
	// DefaultBreakerFailures is the number of consecutive failed flushes
	// that opens the breaker
	DefaultBreakerFailures = 3
	// DefaultBreakerTimeout is how long the breaker stays open
	DefaultBreakerTimeout = time.Minute
)

// ErrFlushRejected is returned while the breaker is open.
var ErrFlushRejected = errors.New("stats flush rejected: circuit open")

// StatsWriter persists resolution stats.
type StatsWriter interface {
	IncrementStats(ctx context.Context, delta domain.Stats) error
	PushUnknown(ctx context.Context, reqs []domain.UnknownRequest, keep int64) error
}

// StatsFlusher periodically moves the recorder counters to redis.
// Failed flushes are put back into the recorder; after a few consecutive
// failures the breaker opens and flushes are skipped until it half-opens.
type StatsFlusher struct {
	recorder  *stats.Recorder
	writer    StatsWriter
	breaker   *gobreaker.TwoStepCircuitBreaker
	logger    logger.Logger
	interval  time.Duration
	stopCh    chan struct{}
	doneCh    chan struct{}
	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewStatsFlusher creates a new stats flusher
func NewStatsFlusher(
	recorder *stats.Recorder,
	writer StatsWriter,
	log logger.Logger,
	interval time.Duration,
	breakerTimeout time.Duration,
) *StatsFlusher {
	if breakerTimeout == 0 {
		breakerTimeout = DefaultBreakerTimeout
	}

	sf := &StatsFlusher{
		recorder: recorder,
		writer:   writer,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	sf.breaker = gobreaker.NewTwoStepCircuitBreaker(gobreaker.Settings{
		Name:        "stats-flush",
		MaxRequests: 1,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= DefaultBreakerFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			sf.logger.Warn("circuit breaker changed state",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()))
		},
	})
	return sf
}

// Start begins the periodic flush process. Only the first call starts it.
func (sf *StatsFlusher) Start(ctx context.Context) {
	sf.startOnce.Do(func() {
		sf.started.Store(true)
		go sf.run(ctx)
	})
}

func (sf *StatsFlusher) run(ctx context.Context) {
	ticker := time.NewTicker(sf.interval)
	defer close(sf.doneCh)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := sf.Flush(ctx); err != nil && !errors.Is(err, ErrFlushRejected) {
				sf.logger.Warn("stats flush failed",
					logger.Error(err))
			}
		case <-sf.stopCh:
			sf.final()
			return
		case <-ctx.Done():
			sf.final()
			return
		}
	}
}

// Stop stops the flusher after a last flush attempt. It is safe to call
// more than once, and returns at once when the flusher never started.
func (sf *StatsFlusher) Stop() {
	sf.stopOnce.Do(func() { close(sf.stopCh) })
	if sf.started.Load() {
		<-sf.doneCh
	}
}

func (sf *StatsFlusher) final() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := sf.Flush(ctx); err != nil {
		sf.logger.Warn("final stats flush failed", logger.Error(err))
	}
}

// Flush pushes everything recorded since the last successful flush.
func (sf *StatsFlusher) Flush(ctx context.Context) error {
	delta, unknown := sf.recorder.Drain()
	if delta.Empty() && len(unknown) == 0 {
		return nil
	}

	done, err := sf.breaker.Allow()
	if err != nil {
		sf.recorder.Restore(delta, unknown)
		metrics.RecordStatsFlush("rejected")
		return ErrFlushRejected
	}

	if !delta.Empty() {
		if err := sf.writer.IncrementStats(ctx, delta); err != nil {
			done(false)
			sf.recorder.Restore(delta, unknown)
			metrics.RecordStatsFlush("error")
			return fmt.Errorf("failed to increment stats: %w", err)
		}
	}

	if len(unknown) > 0 {
		// LPUSH leaves the last element on top, so oldest first is right here.
		// 0 keeps the store default length.
		if err := sf.writer.PushUnknown(ctx, unknown, 0); err != nil {
			done(false)
			// counters are already written, only the requests go back
			sf.recorder.Restore(domain.NewStats(), unknown)
			metrics.RecordStatsFlush("error")
			return fmt.Errorf("failed to push unknown requests: %w", err)
		}
	}

	done(true)
	metrics.RecordStatsFlush("ok")
	sf.logger.Debug("stats flushed",
		logger.Int("services", len(delta.Services)),
		logger.Int("unknown", len(unknown)))
	return nil
}

// State returns the breaker state ("closed", "half-open", "open").
func (sf *StatsFlusher) State() string {
	return sf.breaker.State().String()
}
