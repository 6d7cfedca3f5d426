package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestHandles(t *testing.T) {
	e := Extractor{Exclude: []string{"timedotfun"}}

	testCases := []struct {
		text     string
		expected []Candidate
	}{
		{
			text:     "Just set up my profile on @timedotfun! @Zagabond",
			expected: []Candidate{{Identifier: "zagabond"}},
		},
		{
			// order preserved, duplicates collapsed
			text:     "@bob and @alice and @bob again",
			expected: []Candidate{{Identifier: "bob"}, {Identifier: "alice"}},
		},
		{
			// exclusion is case-insensitive
			text:     "@TimeDotFun retweeted @Alice",
			expected: []Candidate{{Identifier: "alice"}},
		},
		{
			text:     "no mentions here",
			expected: nil,
		},
	}

	for _, tc := range testCases {
		got := e.Handles(tc.text)
		if diff := cmp.Diff(tc.expected, got); diff != "" {
			t.Fatalf("Handles(%q) mismatch (-want +got):\n%s", tc.text, diff)
		}
	}
}

func TestHandlesIsPure(t *testing.T) {
	e := Extractor{Exclude: []string{"timedotfun"}}
	text := "welcome @Alice and @Bob to @timedotfun"

	first := e.Handles(text)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, e.Handles(text))
	}
}
