package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances virtual time instead of sleeping.
type fakeClock struct {
	now    time.Duration
	sleeps []time.Duration
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	c.now += d
	return nil
}

// failUntil returns an op that fails on attempts before n and succeeds on attempt n.
func failUntil(n int, calls *int, starts *[]time.Duration, clock *fakeClock) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		*calls++
		if starts != nil {
			*starts = append(*starts, clock.now)
		}
		if *calls < n {
			return "", fmt.Errorf("attempt %d failed", *calls)
		}
		return fmt.Sprintf("result-%d", *calls), nil
	}
}

func TestDo_SucceedsOnAttemptK(t *testing.T) {
	tests := []struct {
		name        string
		maxAttempts int
		succeedOn   int
	}{
		{"first attempt", 3, 1},
		{"second attempt", 3, 2},
		{"last attempt", 3, 3},
		{"single attempt budget", 1, 1},
		{"large budget", 10, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{}
			calls := 0
			cfg := Config{MaxAttempts: tt.maxAttempts, Delay: 10 * time.Millisecond, Sleep: clock.Sleep}

			got, err := Do(context.Background(), cfg, failUntil(tt.succeedOn, &calls, nil, nil))

			require.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("result-%d", tt.succeedOn), got)
			assert.Equal(t, tt.succeedOn, calls, "no attempts after success")
			assert.Len(t, clock.sleeps, tt.succeedOn-1, "no delay after success")
		})
	}
}

func TestDo_AlwaysFails(t *testing.T) {
	for _, maxAttempts := range []int{1, 2, 3, 5} {
		t.Run(fmt.Sprintf("max %d", maxAttempts), func(t *testing.T) {
			clock := &fakeClock{}
			calls := 0
			cfg := Config{MaxAttempts: maxAttempts, Delay: time.Second, Sleep: clock.Sleep}

			_, err := Do(context.Background(), cfg, func(ctx context.Context) (int, error) {
				calls++
				return 0, errors.New("nope")
			})

			var exhausted *RetriesExhaustedError
			require.ErrorAs(t, err, &exhausted)
			assert.Equal(t, maxAttempts, exhausted.Attempts)
			assert.Equal(t, maxAttempts, calls)
			assert.Len(t, clock.sleeps, maxAttempts-1)
		})
	}
}

func TestDo_SingleAttemptReportsImmediately(t *testing.T) {
	clock := &fakeClock{}
	cause := errors.New("bad gateway")

	_, err := Do(context.Background(), Config{MaxAttempts: 1, Sleep: clock.Sleep}, func(ctx context.Context) (int, error) {
		return 0, cause
	})

	var exhausted *RetriesExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 1, exhausted.Attempts)
	assert.ErrorIs(t, err, cause)
	assert.Empty(t, clock.sleeps)
}

func TestDo_DelayBetweenAttemptStarts(t *testing.T) {
	clock := &fakeClock{}
	calls := 0
	var starts []time.Duration
	delay := 250 * time.Millisecond

	_, err := Do(context.Background(), Config{MaxAttempts: 4, Delay: delay, Sleep: clock.Sleep},
		failUntil(99, &calls, &starts, clock))
	require.Error(t, err)

	require.Len(t, starts, 4)
	for i := 1; i < len(starts); i++ {
		assert.GreaterOrEqual(t, starts[i]-starts[i-1], delay, "gap before attempt %d", i+1)
	}
}

func TestDo_FixedDelayIsNotExponential(t *testing.T) {
	clock := &fakeClock{}
	_, _ = Do(context.Background(), Config{MaxAttempts: 5, Delay: 40 * time.Millisecond, Sleep: clock.Sleep},
		func(ctx context.Context) (int, error) { return 0, errors.New("x") })

	assert.Equal(t, []time.Duration{40 * time.Millisecond, 40 * time.Millisecond, 40 * time.Millisecond, 40 * time.Millisecond}, clock.sleeps)
}

func TestDo_RetrySuccessScenario(t *testing.T) {
	clock := &fakeClock{}
	calls := 0

	got, err := Do(context.Background(), Config{MaxAttempts: 5, Delay: 100 * time.Millisecond, Sleep: clock.Sleep},
		failUntil(4, &calls, nil, nil))

	require.NoError(t, err)
	assert.Equal(t, "result-4", got)
	assert.Equal(t, 4, calls)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 100 * time.Millisecond, 100 * time.Millisecond}, clock.sleeps)
}

func TestDo_RetryExhaustionScenario(t *testing.T) {
	clock := &fakeClock{}

	_, err := Do(context.Background(), Config{MaxAttempts: 3, Delay: 50 * time.Millisecond, Sleep: clock.Sleep},
		func(ctx context.Context) (int, error) { return 0, errors.New("boom") })

	var exhausted *RetriesExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.Equal(t, "boom", exhausted.LastMessage())
	assert.Equal(t, "failed after 3 attempts: boom", err.Error())
	assert.Equal(t, []time.Duration{50 * time.Millisecond, 50 * time.Millisecond}, clock.sleeps)
}

func TestDo_Defaults(t *testing.T) {
	clock := &fakeClock{}
	calls := 0

	_, err := Do(context.Background(), Config{Sleep: clock.Sleep}, func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("fail")
	})

	require.Error(t, err)
	assert.Equal(t, DefaultMaxAttempts, calls)
	assert.Equal(t, []time.Duration{DefaultDelay, DefaultDelay}, clock.sleeps)
}

func TestDo_NoDelay(t *testing.T) {
	clock := &fakeClock{}
	_, _ = Do(context.Background(), Config{MaxAttempts: 3, Delay: NoDelay, Sleep: clock.Sleep},
		func(ctx context.Context) (int, error) { return 0, errors.New("fail") })

	assert.Equal(t, []time.Duration{0, 0}, clock.sleeps)
}

func TestDo_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative attempts", Config{MaxAttempts: -1}},
		{"negative delay", Config{Delay: -5 * time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			_, err := Do(context.Background(), tt.cfg, func(ctx context.Context) (int, error) {
				called = true
				return 1, nil
			})

			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.False(t, called, "op must not run with an invalid config")
		})
	}
}

func TestDo_Callbacks(t *testing.T) {
	clock := &fakeClock{}
	var retried []int
	exhaustedWith := 0

	cfg := Config{
		MaxAttempts: 3,
		Delay:       5 * time.Millisecond,
		Sleep:       clock.Sleep,
		OnRetry: func(attempt int, delay time.Duration, err error) {
			assert.Equal(t, 5*time.Millisecond, delay)
			assert.EqualError(t, err, "fail")
			retried = append(retried, attempt)
		},
		OnExhausted: func(attempts int, err error) {
			exhaustedWith = attempts
		},
	}

	_ = Run(context.Background(), cfg, func(ctx context.Context) error { return errors.New("fail") })

	assert.Equal(t, []int{1, 2}, retried)
	assert.Equal(t, 3, exhaustedWith)
}

func TestDo_ContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := Do(ctx, Config{MaxAttempts: 5, Delay: 10 * time.Second}, func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("fail")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), 2*time.Second, "should return quickly after cancellation")
}

func TestSleep(t *testing.T) {
	t.Run("waits for the duration", func(t *testing.T) {
		start := time.Now()
		require.NoError(t, Sleep(context.Background(), 20*time.Millisecond))
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("returns early on cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
	})
}

func TestRetriesExhaustedError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &RetriesExhaustedError{Attempts: 2, Last: cause}

	assert.Equal(t, "failed after 2 attempts: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "", (&RetriesExhaustedError{Attempts: 1}).LastMessage())
}
