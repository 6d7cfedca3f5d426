package dedup

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	s := NewStore()

	require.False(t, s.SeenEvent("1"))
	s.MarkEvent("1")
	require.True(t, s.SeenEvent("1"))
	require.False(t, s.SeenEvent("2"))

	require.False(t, s.SeenCandidate("alice"))
	s.MarkCandidate("alice")
	require.True(t, s.SeenCandidate("alice"))

	// event and candidate namespaces are independent
	require.False(t, s.SeenCandidate("1"))
	require.False(t, s.SeenEvent("alice"))
}
