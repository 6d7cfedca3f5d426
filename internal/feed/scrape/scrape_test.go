package scrape

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSynthesizeID(t *testing.T) {
	a := synthesizeID("alice", "just set up my profile")
	b := synthesizeID("alice", "just set up my profile")
	require.Equal(t, a, b)

	require.NotEqual(t, a, synthesizeID("bob", "just set up my profile"))
	require.NotEqual(t, a, synthesizeID("alice", "another post"))
}

func TestNewSourceValidation(t *testing.T) {
	_, err := NewSource(nil, Config{})
	require.Error(t, err)

	src, err := NewSource(nil, Config{Account: "timedotfun"})
	require.NoError(t, err)
	require.Equal(t, 10, src.cfg.MaxPosts)
	require.Equal(t, defaultBaseURL, src.cfg.BaseURL)
}
