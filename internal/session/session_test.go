package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLooksLikeLoginRoute(t *testing.T) {
	require.True(t, looksLikeLoginRoute("https://time.fun/login"))
	require.True(t, looksLikeLoginRoute("https://time.fun/LOGIN?next=/home"))
	require.False(t, looksLikeLoginRoute("https://time.fun/home"))
	require.False(t, looksLikeLoginRoute("https://time.fun/alice"))
}

func TestNewManagerDefaults(t *testing.T) {
	m := NewManager(nil, Config{})
	require.Equal(t, "https://time.fun", m.cfg.PlatformURL)
	require.Equal(t, "https://x.com", m.cfg.FeedURL)
	require.Equal(t, 300, m.cfg.LoginTimeoutSeconds)
}

func TestEnsureAuthenticatedAssume(t *testing.T) {
	// the escape hatch must not touch the browser at all
	m := NewManager(nil, Config{AssumeAuthenticated: true})

	ok, err := m.EnsureAuthenticated(context.Background(), Platform)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, m.State().PlatformAuthenticated)

	ok, err = m.EnsureAuthenticated(context.Background(), Feed)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, m.State().FeedAuthenticated)
}
