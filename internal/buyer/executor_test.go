package buyer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testExecutor(t *testing.T) (*Executor, *[]time.Duration) {
	e := NewExecutor(nil, nil, Config{
		MaxAttempts:  3,
		DelaySeconds: 2,
		ArtifactsDir: t.TempDir(),
	})
	var sleeps []time.Duration
	e.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	return e, &sleeps
}

func TestAcquireWithRetryExhaustion(t *testing.T) {
	e, sleeps := testExecutor(t)

	stageErr := errors.New("buy_dialog: buy control: not found")
	attempts := 0
	e.run = func(ctx context.Context, candidate string) error {
		attempts++
		return stageErr
	}

	err := e.AcquireWithRetry(context.Background(), "alice")
	require.Error(t, err)
	require.ErrorIs(t, err, stageErr)
	require.Equal(t, 3, attempts)

	// backoff after attempts 1 and 2, none after the terminal attempt
	require.Equal(t, []time.Duration{4 * time.Second, 4 * time.Second}, *sleeps)
}

func TestAcquireWithRetryFirstAttemptSucceeds(t *testing.T) {
	e, sleeps := testExecutor(t)

	attempts := 0
	e.run = func(ctx context.Context, candidate string) error {
		attempts++
		return nil
	}

	require.NoError(t, e.AcquireWithRetry(context.Background(), "alice"))
	require.Equal(t, 1, attempts)
	require.Empty(t, *sleeps)
}

func TestAcquireWithRetryRecovers(t *testing.T) {
	e, sleeps := testExecutor(t)

	attempts := 0
	e.run = func(ctx context.Context, candidate string) error {
		attempts++
		if attempts < 3 {
			return errors.New("offer: offer control: not found")
		}
		return nil
	}

	require.NoError(t, e.AcquireWithRetry(context.Background(), "alice"))
	require.Equal(t, 3, attempts)
	require.Len(t, *sleeps, 2)
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.applyDefaults()
	require.Equal(t, "https://time.fun", cfg.PlatformURL)
	require.Equal(t, float64(10), cfg.Amount)
	require.Equal(t, 3, cfg.MaxAttempts)
	require.Equal(t, 2, cfg.DelaySeconds)
}
