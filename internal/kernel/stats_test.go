package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBenjaminiHochberg_PreservesInputOrder(t *testing.T) {
	raw := []float64{0.01, 0.5, 0.2, 0.001}
	adj := benjaminiHochberg(raw)
	require.Len(t, adj, len(raw))

	// Each adjusted value stays at its raw p-value's input position: the
	// smallest raw p-value (index 3) gets 0.001*4/1 and the largest
	// (index 1) gets 0.5*4/4.
	for _, q := range adj {
		require.GreaterOrEqual(t, q, 0.0)
		require.LessOrEqual(t, q, 1.0)
	}
	require.InDeltaSlice(t, []float64{0.02, 0.5, 0.8 / 3, 0.004}, adj, 1e-9)
}

func TestBenjaminiHochberg_AllEqualPValuesStayEqual(t *testing.T) {
	raw := []float64{0.3, 0.3, 0.3}
	adj := benjaminiHochberg(raw)
	require.Equal(t, adj[0], adj[1])
	require.Equal(t, adj[1], adj[2])
}

func TestNormalTailProbability_ZeroIsOne(t *testing.T) {
	require.InDelta(t, 1.0, normalTailProbability(0), 1e-9)
}

func TestNormalTailProbability_LargeZIsNearZero(t *testing.T) {
	require.InDelta(t, 0.0, normalTailProbability(6), 1e-6)
}

func TestStandardNormalCDF_AtZeroIsOneHalf(t *testing.T) {
	require.InDelta(t, 0.5, standardNormalCDF(0), 1e-9)
}
