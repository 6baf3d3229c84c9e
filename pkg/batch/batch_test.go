package batch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRun_KeepsOrderAndFailures(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	out := Run(context.Background(), items, 2, func(ctx context.Context, i int) (int, error) {
		if i == 3 {
			return 0, errors.New("boom")
		}
		return i * 10, nil
	})

	require.Len(t, out, 5)
	require.Equal(t, 10, out[0].Value)
	require.Error(t, out[2].Err)
	require.Equal(t, 50, out[4].Value)
	require.Equal(t, []int{10, 20, 40, 50}, Values(out))
}

func TestRun_LimitsConcurrencyToBatchSize(t *testing.T) {
	var running, peak int32
	items := make([]int, 25)
	Run(context.Background(), items, 10, func(ctx context.Context, _ int) (struct{}, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return struct{}{}, nil
	})
	require.LessOrEqual(t, atomic.LoadInt32(&peak), int32(10))
}

func TestRun_PanicIsAnOutcome(t *testing.T) {
	out := Run(context.Background(), []string{"a", "b"}, 10, func(ctx context.Context, s string) (string, error) {
		if s == "a" {
			panic("bad probe")
		}
		return s, nil
	})
	require.Error(t, out[0].Err)
	require.NoError(t, out[1].Err)
	require.Equal(t, "b", out[1].Value)
}

func TestRun_ExpiredContextSkipsRemainingBatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	out := Run(ctx, []int{1, 2, 3}, 1, func(ctx context.Context, i int) (int, error) {
		called = true
		return i, nil
	})
	require.False(t, called)
	for _, o := range out {
		require.ErrorIs(t, o.Err, context.Canceled)
	}
}
