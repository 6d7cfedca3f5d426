package scrape

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecentAbsolute(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.True(t, recentAbsolute(now, now.Add(-59*time.Second)))
	require.True(t, recentAbsolute(now, now.Add(-60*time.Second)))
	require.False(t, recentAbsolute(now, now.Add(-61*time.Second)))
	// a timestamp from the future means clock skew, not a recent post
	require.False(t, recentAbsolute(now, now.Add(5*time.Second)))
}

func TestRecentRelative(t *testing.T) {
	recent := []string{
		"30s", "59s", "1s", "45 seconds", "now", "just now", "10s ago",
		"1m", "1 min", "1分钟", "30秒", "刚刚",
	}
	for _, label := range recent {
		require.True(t, recentRelative(label), "label %q should be recent", label)
	}

	stale := []string{
		"5m", "2m", "61 minutes", "1h", "yesterday", "3分钟", "",
	}
	for _, label := range stale {
		require.False(t, recentRelative(label), "label %q should be stale", label)
	}
}

func TestParseStamp(t *testing.T) {
	stamp, err := parseStamp("2024-05-01T12:00:00.000Z", 0)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), stamp)

	// zoneless attributes resolve through the configured offset
	stamp, err = parseStamp("2024-05-01 20:00:00", 8)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), stamp)

	_, err = parseStamp("not a time", 0)
	require.Error(t, err)
}
