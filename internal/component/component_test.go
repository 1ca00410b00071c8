package component

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetBlackboard_UnknownTypeIsError(t *testing.T) {
	_, err := GetBlackboard("not-a-real-backend")
	require.Error(t, err)
}

func TestGetBroker_UnknownTypeIsError(t *testing.T) {
	_, err := GetBroker("not-a-real-backend")
	require.Error(t, err)
}

func TestGetStorage_UnknownTypeIsError(t *testing.T) {
	_, err := GetStorage("not-a-real-backend")
	require.Error(t, err)
}

func TestGetBlackboard_Freecache_UsesEnvOrDefaults(t *testing.T) {
	t.Setenv("FREECACHE_SIZE", "1048576")
	t.Setenv("FREECACHE_TTL", "60")

	bb, err := GetBlackboard("freecache")
	require.NoError(t, err)
	require.NotNil(t, bb)
}
