// Package freecache adapts coocood/freecache to the blackboard.Blackboard
// capability, grounded on the teacher's internal/cache/freecache client.
// freecache gives native TTL+LRU eviction, matching spec.md §2's
// description of the Blackboard more literally than Redis's plain TTL —
// this backend is the one used by tests and single-process demos.
package freecache

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/coocood/freecache"

	"github.com/reactome/gsa-orchestrator/internal/blackboard"
	"github.com/reactome/gsa-orchestrator/internal/config"
)

// Client wraps a *freecache.Cache to satisfy blackboard.Blackboard.
// freecache has no native WATCH/CAS primitive, so compare-and-set and
// atomic-increment are guarded by a process-local mutex; this is correct
// only within a single process, which is exactly this backend's scope.
type Client struct {
	mu         sync.Mutex
	cache      *freecache.Cache
	defaultTTL int
}

// New allocates a freecache instance sized per cfg.
func New(cfg *config.FreeCacheConfig) *Client {
	return &Client{
		cache:      freecache.NewCache(cfg.SIZE_BYTES),
		defaultTTL: cfg.TTL,
	}
}

func (c *Client) ttlSeconds(ttl time.Duration) int {
	if ttl <= 0 {
		return c.defaultTTL
	}
	return int(ttl.Seconds())
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, err := c.cache.Get([]byte(key))
	if err == freecache.ErrNotFound {
		return nil, blackboard.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (c *Client) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Set([]byte(key), value, c.ttlSeconds(ttl))
}

func (c *Client) AtomicIncrement(ctx context.Context, counter string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, err := c.cache.Get([]byte(counter))
	var current int64
	if err == nil {
		current = decodeCounter(n)
	} else if err != freecache.ErrNotFound {
		return 0, err
	}
	current++
	if err := c.cache.Set([]byte(counter), encodeCounter(current), 0); err != nil {
		return 0, err
	}
	return current, nil
}

func (c *Client) CompareAndSet(ctx context.Context, key string, expected, newValue []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, err := c.cache.Get([]byte(key))
	if err == freecache.ErrNotFound {
		current = nil
	} else if err != nil {
		return err
	}

	if expected == nil {
		if current != nil {
			return blackboard.ErrConflict
		}
	} else if !bytes.Equal(current, expected) {
		return blackboard.ErrConflict
	}

	return c.cache.Set([]byte(key), newValue, c.ttlSeconds(ttl))
}

func (c *Client) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Del([]byte(key))
	return nil
}

func (c *Client) Close() error {
	return nil
}

func encodeCounter(n int64) []byte {
	buf := make([]byte, 8)
	for i := 0; i < 8; i++ {
		buf[i] = byte(n >> (8 * i))
	}
	return buf
}

func decodeCounter(buf []byte) int64 {
	var n int64
	for i := 0; i < 8 && i < len(buf); i++ {
		n |= int64(buf[i]) << (8 * i)
	}
	return n
}
