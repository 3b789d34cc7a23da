package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func double(ctx context.Context, n int) (int, error) {
	return n * 2, nil
}

func TestProcess_PreservesOrder(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	got, err := Process(context.Background(), items, func(ctx context.Context, n int) (int, error) {
		// Later items finish first inside a chunk.
		time.Sleep(time.Duration(10-n) * time.Millisecond)
		return n * 2, nil
	}, 3)

	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 6, 8, 10, 12, 14}, got)
}

func TestProcess_ChunksRunSequentially(t *testing.T) {
	var inFlight, peak atomic.Int32
	var mu sync.Mutex
	var order []int

	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	_, err := Process(context.Background(), items, func(ctx context.Context, n int) (int, error) {
		cur := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		order = append(order, n/4)
		mu.Unlock()
		return n, nil
	}, 4)

	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(4), "never more than one chunk in flight")
	for i := 1; i < len(order); i++ {
		assert.LessOrEqual(t, order[i-1], order[i], "chunk %d finished before an earlier chunk", order[i])
	}
}

func TestProcess_DefaultSize(t *testing.T) {
	var peak, inFlight atomic.Int32
	items := make([]int, 12)

	_, err := Process(context.Background(), items, func(ctx context.Context, n int) (int, error) {
		cur := inFlight.Add(1)
		defer inFlight.Add(-1)
		if cur > peak.Load() {
			peak.Store(cur)
		}
		time.Sleep(5 * time.Millisecond)
		return n, nil
	}, 0)

	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(DefaultSize))
}

func TestProcess_Empty(t *testing.T) {
	got, err := Process(context.Background(), nil, double, 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestProcess_FailureStopsLaterChunks(t *testing.T) {
	var calls atomic.Int32
	boom := errors.New("boom")

	_, err := Process(context.Background(), []int{0, 1, 2, 3, 4, 5}, func(ctx context.Context, n int) (int, error) {
		calls.Add(1)
		if n == 1 {
			return 0, boom
		}
		return n, nil
	}, 2)

	var itemErr *ItemError
	require.ErrorAs(t, err, &itemErr)
	assert.Equal(t, 1, itemErr.Index)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(2), calls.Load(), "only the first chunk runs")
}

func TestProcess_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Process(ctx, []int{1, 2, 3}, double, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcess_FailureCancelsSiblings(t *testing.T) {
	boom := errors.New("boom")
	var sawCancel atomic.Bool

	start := time.Now()
	_, err := Process(context.Background(), []int{0, 1}, func(ctx context.Context, n int) (int, error) {
		if n == 0 {
			return 0, boom
		}
		select {
		case <-ctx.Done():
			sawCancel.Store(true)
			return 0, ctx.Err()
		case <-time.After(2 * time.Second):
			return n, nil
		}
	}, 2)

	var itemErr *ItemError
	require.ErrorAs(t, err, &itemErr)
	assert.Equal(t, 0, itemErr.Index)
	assert.ErrorIs(t, err, boom)
	assert.True(t, sawCancel.Load(), "sibling context was not cancelled")
	assert.Less(t, time.Since(start), time.Second)
}

func TestProcess_LowestIndexFailureWins(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")

	_, err := Process(context.Background(), []int{0, 1, 2}, func(ctx context.Context, n int) (int, error) {
		switch n {
		case 0:
			time.Sleep(20 * time.Millisecond)
			return 0, first
		case 1:
			return 0, second
		}
		return n, nil
	}, 3)

	var itemErr *ItemError
	require.ErrorAs(t, err, &itemErr)
	assert.Equal(t, 0, itemErr.Index)
	assert.ErrorIs(t, err, first)
}
