package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func fastConfig(n int) Config {
	return Config{MaxRetries: n, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
}

func TestWithBackoffSucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), fastConfig(3), zaptest.NewLogger(t), "flaky", func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestWithBackoffGivesUp(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), fastConfig(2), zaptest.NewLogger(t), "down", func() error {
		calls++
		return errors.New("boom")
	})
	require.ErrorContains(t, err, "down failed after 2 attempts: boom")
	require.Equal(t, 2, calls)
}

func TestWithBackoffRunsAtLeastOnce(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), Config{}, zaptest.NewLogger(t), "once", func() error {
		calls++
		return errors.New("boom")
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestWithBackoffStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WithBackoff(ctx, fastConfig(3), zaptest.NewLogger(t), "cancelled", func() error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}

func TestWithBackoffStopsOnPermanentError(t *testing.T) {
	calls := 0
	bad := errors.New("bad vote_number")
	err := WithBackoff(context.Background(), fastConfig(5), zaptest.NewLogger(t), "menu", func() error {
		calls++
		return Permanent(bad)
	})
	require.ErrorIs(t, err, bad)
	require.False(t, IsPermanent(err))
	require.Equal(t, 1, calls)
}

func TestPermanentNil(t *testing.T) {
	require.NoError(t, Permanent(nil))
}

func TestBackoffGrowsToCap(t *testing.T) {
	cfg := Config{InitialDelay: time.Second, MaxDelay: 5 * time.Second, Multiplier: 2}
	d := cfg.InitialDelay
	var got []time.Duration
	for range 4 {
		got = append(got, cfg.jitter(d))
		d = cfg.next(d)
	}
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second}, got)
}

func TestJitterStaysInBand(t *testing.T) {
	cfg := Config{MaxDelay: time.Minute, JitterEnabled: true}
	for range 100 {
		d := cfg.jitter(time.Second)
		require.GreaterOrEqual(t, d, 850*time.Millisecond)
		require.Less(t, d, 1150*time.Millisecond)
	}
}
