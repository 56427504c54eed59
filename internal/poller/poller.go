// Package poller drives the detection pipeline: it fetches the position
// feed on a fixed cadence, hands each snapshot to the tracker, and publishes
// whatever the tracker promotes.
package poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/unklstewy/ads-flyby/internal/display"
	"github.com/unklstewy/ads-flyby/pkg/adsb"
)

const (
	// DefaultInterval is the time between successful polls
	DefaultInterval = 5 * time.Second

	// DefaultBackoff is the wait after a failed poll
	DefaultBackoff = 10 * time.Second
)

// Processor consumes one snapshot per cycle.
type Processor interface {
	Process(ctx context.Context, reports []adsb.Aircraft) (display.Event, bool)
}

// Publisher receives display events. Publish must not block.
type Publisher interface {
	Publish(ev display.Event)
}

// Stats counts what the loop has done so far.
type Stats struct {
	Cycles     int
	Failures   int
	Promotions int
	LastPoll   time.Time
}

// Loop is the polling driver.
type Loop struct {
	source    adsb.DataSource
	processor Processor
	publisher Publisher
	interval  time.Duration
	backoff   time.Duration
	logger    *slog.Logger
	stats     Stats
}

// New creates a loop. Zero durations select the defaults.
func New(source adsb.DataSource, processor Processor, publisher Publisher, interval, backoff time.Duration, logger *slog.Logger) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		source:    source,
		processor: processor,
		publisher: publisher,
		interval:  interval,
		backoff:   backoff,
		logger:    logger,
	}
}

// Run polls until ctx is cancelled. Feed errors never end the loop; they
// only stretch the wait before the next attempt to the backoff interval.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("poll loop started", slog.Duration("interval", l.interval), slog.Duration("backoff", l.backoff))

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("poll loop stopped",
				slog.Int("cycles", l.stats.Cycles),
				slog.Int("failures", l.stats.Failures),
				slog.Int("promotions", l.stats.Promotions))
			return nil
		case <-timer.C:
			timer.Reset(l.Cycle(ctx))
		}
	}
}

// Cycle runs one poll and returns how long to wait before the next one.
func (l *Loop) Cycle(ctx context.Context) (wait time.Duration) {
	l.stats.Cycles++
	l.stats.LastPoll = time.Now()

	defer func() {
		if r := recover(); r != nil {
			l.stats.Failures++
			l.logger.Error("panic in poll cycle", slog.Any("panic", r))
			wait = l.backoff
		}
	}()

	reports, err := l.source.GetAircraft(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return l.interval
		}
		l.stats.Failures++
		wait = l.backoff
		if rle, ok := adsb.IsRateLimitError(err); ok {
			if rle.RetryAfter > wait {
				wait = rle.RetryAfter
			}
			l.logger.Warn("feed rate limited",
				slog.Int("limit", rle.Headers.Limit),
				slog.Int("remaining", rle.Headers.Remaining),
				slog.Time("reset", rle.Headers.Reset),
				slog.Duration("retry_in", wait))
			return wait
		}
		l.logger.Error("failed to fetch aircraft data", slog.Any("error", err), slog.Duration("retry_in", wait))
		return wait
	}

	l.logger.Debug("poll", slog.Int("aircraft", len(reports)))

	if ev, ok := l.processor.Process(ctx, reports); ok {
		l.stats.Promotions++
		l.publisher.Publish(ev)
	}

	return l.interval
}

// Stats returns a copy of the counters. Only call it from the goroutine
// running the loop, or after Run has returned.
func (l *Loop) Stats() Stats {
	return l.stats
}

// ReadyConfig controls WaitForFeed.
type ReadyConfig struct {
	// Timeout is the total time allowed for the feed to come up
	Timeout time.Duration

	// Interval is the pause between attempts
	Interval time.Duration

	// AttemptTimeout bounds a single probe
	AttemptTimeout time.Duration
}

// DefaultReadyConfig waits up to a minute, probing every two seconds.
func DefaultReadyConfig() ReadyConfig {
	return ReadyConfig{
		Timeout:        60 * time.Second,
		Interval:       2 * time.Second,
		AttemptTimeout: 2 * time.Second,
	}
}

// WaitForFeed blocks until source answers a ping or cfg.Timeout elapses.
func WaitForFeed(ctx context.Context, source adsb.DataSource, cfg ReadyConfig, logger *slog.Logger) error {
	def := DefaultReadyConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = def.AttemptTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	// Fixed spacing between attempts, bounded by the context deadline
	retry := adsb.DefaultRetryConfig()
	retry.MaxRetries = int(cfg.Timeout/cfg.Interval) + 1
	retry.InitialDelay = cfg.Interval
	retry.MaxDelay = cfg.Interval
	retry.Multiplier = 1.0
	retry.OnRetry = func(attempt int, err error, delay time.Duration) {
		logger.Debug("feed not reachable yet", slog.Int("attempt", attempt), slog.Any("error", err))
	}

	err := adsb.RetryWithBackoff(ctx, retry, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, cfg.AttemptTimeout)
		defer cancel()
		return source.Ping(attemptCtx)
	})
	if err != nil {
		logger.Error("feed not reachable within timeout", slog.Duration("timeout", cfg.Timeout), slog.Any("error", err))
		return fmt.Errorf("feed not reachable within %v: %w", cfg.Timeout, err)
	}

	logger.Info("feed reachable")
	return nil
}
