package miner

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatOre(t *testing.T) {
	require.Equal(t, "1.23456789012", FormatOre(123_456_789_012))
	require.Equal(t, "0.00000000000", FormatOre(0))
	require.Equal(t, "0.00000000001", FormatOre(1))
}

func TestFormatSol(t *testing.T) {
	require.Equal(t, "1.500000000", FormatSol(1_500_000_000))
	require.Equal(t, "0.000000001", FormatSol(1))
}
