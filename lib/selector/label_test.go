package selector

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLabelPatternMatches(t *testing.T) {
	buy := LabelPattern{Contains: []string{"Buy", "mins for $"}}
	confirm := LabelPattern{Contains: []string{"Confirm", "Buy", "mins for $"}}

	require.True(t, buy.Matches("Buy 12 mins for $10.00"))
	require.False(t, buy.Matches("Buy"))
	require.False(t, buy.Matches("Sell 12 mins for $10.00"))

	require.True(t, confirm.Matches("Confirm & Buy 12 mins for $10.00"))
	require.False(t, confirm.Matches("Buy 12 mins for $10.00"))

	require.False(t, LabelPattern{}.Matches("anything"))
}
