package buyer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyProfile(t *testing.T) {
	// redirect to a generic discovery location means no profile
	require.False(t, ClassifyProfile("alice", "https://time.fun/home", ""))
	require.False(t, ClassifyProfile("alice", "https://time.fun/discover", ""))
	require.False(t, ClassifyProfile("alice", "https://time.fun/", ""))
	require.False(t, ClassifyProfile("alice", "https://time.fun/login?next=alice", ""))

	// location scoped to the candidate's own identifier
	require.True(t, ClassifyProfile("alice", "https://time.fun/alice", ""))
	require.True(t, ClassifyProfile("Alice", "https://time.fun/alice?tab=market", ""))

	// structural profile markers rescue an ambiguous location
	marked := `<html><body><a href="/somebody?tab=market">Market</a></body></html>`
	require.True(t, ClassifyProfile("alice", "https://time.fun/u/12345", marked))

	// unknown classifies as does-not-exist
	require.False(t, ClassifyProfile("alice", "https://time.fun/u/12345", "<html><body></body></html>"))
	require.False(t, ClassifyProfile("", "https://time.fun/alice", ""))
}
