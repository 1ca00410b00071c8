package freecache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reactome/gsa-orchestrator/internal/blackboard"
	"github.com/reactome/gsa-orchestrator/internal/config"
)

func newTestClient() *Client {
	return New(&config.FreeCacheConfig{SIZE_BYTES: 1024 * 1024, TTL: 5})
}

func TestClient_PutGet(t *testing.T) {
	c := newTestClient()
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	require.ErrorIs(t, err, blackboard.ErrNotFound)

	require.NoError(t, c.Put(ctx, "key", []byte("value"), time.Minute))
	got, err := c.Get(ctx, "key")
	require.NoError(t, err)
	require.Equal(t, []byte("value"), got)
}

func TestClient_TTL(t *testing.T) {
	c := newTestClient()
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "short", []byte("temp"), time.Second))
	time.Sleep(1500 * time.Millisecond)

	_, err := c.Get(ctx, "short")
	require.ErrorIs(t, err, blackboard.ErrNotFound)
}

func TestClient_AtomicIncrement(t *testing.T) {
	c := newTestClient()
	ctx := context.Background()

	n, err := c.AtomicIncrement(ctx, "counter:dataset")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	for i := 0; i < 5; i++ {
		_, err := c.AtomicIncrement(ctx, "counter:dataset")
		require.NoError(t, err)
	}

	n, err = c.AtomicIncrement(ctx, "counter:dataset")
	require.NoError(t, err)
	require.Equal(t, int64(7), n)
}

func TestClient_CompareAndSet(t *testing.T) {
	c := newTestClient()
	ctx := context.Background()

	require.NoError(t, c.CompareAndSet(ctx, "status:a1", nil, []byte("v1"), time.Minute))
	require.ErrorIs(t, c.CompareAndSet(ctx, "status:a1", nil, []byte("v2"), time.Minute), blackboard.ErrConflict)

	require.NoError(t, c.CompareAndSet(ctx, "status:a1", []byte("v1"), []byte("v2"), time.Minute))
	got, err := c.Get(ctx, "status:a1")
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), got)

	require.ErrorIs(t, c.CompareAndSet(ctx, "status:a1", []byte("v1"), []byte("v3"), time.Minute), blackboard.ErrConflict)
}

func TestClient_Delete(t *testing.T) {
	c := newTestClient()
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "key", []byte("value"), time.Minute))
	require.NoError(t, c.Delete(ctx, "key"))

	_, err := c.Get(ctx, "key")
	require.ErrorIs(t, err, blackboard.ErrNotFound)
	require.NoError(t, c.Delete(ctx, "never-existed"))
}

func TestEncodeDecodeCounter(t *testing.T) {
	for _, n := range []int64{0, 1, 255, 1 << 40} {
		require.Equal(t, n, decodeCounter(encodeCounter(n)))
	}
}
