package risk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMax(t *testing.T) {
	require.Equal(t, Low, Max())
	require.Equal(t, Low, Max(Low, Low))
	require.Equal(t, High, Max(Low, High, Medium))
	require.Equal(t, Critical, Max(Critical, High, Medium, Low))
	require.Equal(t, Medium, Max(Risk("bogus"), Medium))
}

func TestAtLeast(t *testing.T) {
	require.Equal(t, Medium, Low.AtLeast(Medium))
	require.Equal(t, Critical, Critical.AtLeast(Medium))
	require.Equal(t, High, High.AtLeast(High))
}

func TestSeverityOrder(t *testing.T) {
	require.Less(t, Low.Severity(), Medium.Severity())
	require.Less(t, Medium.Severity(), High.Severity())
	require.Less(t, High.Severity(), Critical.Severity())
}
