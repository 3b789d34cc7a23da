// Package retry runs fallible operations against a fixed attempt budget.
//
// The delay between attempts is constant: attempt k+1 starts no earlier than
// Delay after attempt k failed. There is no exponential growth and no jitter.
package retry

import (
	"context"
	"fmt"
	"time"
)

const (
	// DefaultMaxAttempts is used when Config.MaxAttempts is zero.
	DefaultMaxAttempts = 3
	// DefaultDelay is used when Config.Delay is zero.
	DefaultDelay = 1000 * time.Millisecond
	// NoDelay requests back-to-back attempts. A zero Delay means DefaultDelay.
	NoDelay time.Duration = -1
)

// Config configures fixed-delay retry behavior.
type Config struct {
	MaxAttempts int           // total attempts including the first (default 3)
	Delay       time.Duration // wait between attempts (default 1000ms)

	// OnRetry is called after a failed attempt, before the wait.
	OnRetry func(attempt int, delay time.Duration, err error)
	// OnExhausted is called once when the final attempt fails.
	OnExhausted func(attempts int, err error)
	// Sleep waits for d or until ctx is done. Defaults to Sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (c Config) normalize() (Config, error) {
	if c.MaxAttempts < 0 {
		return c, fmt.Errorf("%w: max attempts must be >= 1, got %d", ErrInvalidConfig, c.MaxAttempts)
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	switch {
	case c.Delay == NoDelay:
		c.Delay = 0
	case c.Delay == 0:
		c.Delay = DefaultDelay
	case c.Delay < 0:
		return c, fmt.Errorf("%w: delay must be >= 0, got %s", ErrInvalidConfig, c.Delay)
	}
	if c.Sleep == nil {
		c.Sleep = Sleep
	}
	return c, nil
}

// Do invokes op until it succeeds or cfg.MaxAttempts attempts have failed.
// A success returns immediately. When every attempt fails, Do returns a
// *RetriesExhaustedError wrapping the last failure. If ctx is cancelled
// during a wait, ctx.Err() is returned.
func Do[T any](ctx context.Context, cfg Config, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	cfg, err := cfg.normalize()
	if err != nil {
		return zero, err
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == cfg.MaxAttempts {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, cfg.Delay, err)
		}
		if err := cfg.Sleep(ctx, cfg.Delay); err != nil {
			return zero, err
		}
	}

	if cfg.OnExhausted != nil {
		cfg.OnExhausted(cfg.MaxAttempts, lastErr)
	}
	return zero, &RetriesExhaustedError{Attempts: cfg.MaxAttempts, Last: lastErr}
}

// Run is Do for operations that produce no result.
func Run(ctx context.Context, cfg Config, op func(ctx context.Context) error) error {
	_, err := Do(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Sleep waits for d, returning early with ctx.Err() if ctx is done first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
