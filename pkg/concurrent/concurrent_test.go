package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEachVisitsAll(t *testing.T) {
	var sum atomic.Int64
	err := ForEach(context.Background(), []int{1, 2, 3, 4, 5}, 2, func(_ context.Context, v int) error {
		sum.Add(int64(v))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), sum.Load())
}

func TestForEachRespectsLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	items := make([]int, 64)
	err := ForEach(context.Background(), items, 3, func(_ context.Context, _ int) error {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		inFlight.Add(-1)
		return nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestForEachReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	err := ForEach(context.Background(), []int{1, 2, 3}, 1, func(_ context.Context, v int) error {
		if v == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestForEachCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := ForEach(ctx, []int{1}, 0, func(context.Context, int) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestParallelMapPreservesOrder(t *testing.T) {
	out, err := ParallelMap(context.Background(), []int{1, 2, 3, 4}, 2, func(v int) int { return v * v })
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 9, 16}, out)
}
