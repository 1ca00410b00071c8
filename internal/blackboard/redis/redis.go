// Package redis adapts go-redis/v9 to the blackboard.Blackboard
// capability, grounded on the teacher's internal/cache/redis client:
// same tracing-span-per-call convention, same "does this deployment need
// a password" config shape. Compare-and-set is implemented with
// WATCH/MULTI rather than a Lua script, since the teacher's codebase
// never reaches for eval.
package redis

import (
	"bytes"
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/reactome/gsa-orchestrator/internal/blackboard"
	"github.com/reactome/gsa-orchestrator/internal/config"
	"github.com/reactome/gsa-orchestrator/internal/tracing"
	"github.com/reactome/gsa-orchestrator/internal/util"
)

// Client wraps a *redis.Client to satisfy blackboard.Blackboard.
type Client struct {
	rdb *redis.Client
}

// New dials the Redis endpoint described by cfg.
func New(cfg *config.RedisConfig) *Client {
	return &Client{
		rdb: redis.NewClient(&redis.Options{
			Addr:     cfg.URL,
			Password: cfg.ClientPassword,
		}),
	}
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "Blackboard/Get")
	defer span.End()

	v, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, blackboard.ErrNotFound
	}
	if err != nil {
		util.RecordSpanError(span, err)
		return nil, err
	}
	return v, nil
}

func (c *Client) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, span := tracing.GetTracer().Start(ctx, "Blackboard/Put")
	defer span.End()

	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		util.RecordSpanError(span, err)
		return err
	}
	return nil
}

func (c *Client) AtomicIncrement(ctx context.Context, counter string) (int64, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "Blackboard/AtomicIncrement")
	defer span.End()

	n, err := c.rdb.Incr(ctx, counter).Result()
	if err != nil {
		util.RecordSpanError(span, err)
		return 0, err
	}
	return n, nil
}

func (c *Client) CompareAndSet(ctx context.Context, key string, expected, newValue []byte, ttl time.Duration) error {
	ctx, span := tracing.GetTracer().Start(ctx, "Blackboard/CompareAndSet")
	defer span.End()

	err := c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
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

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, newValue, ttl)
			return nil
		})
		return err
	}, key)

	// A WATCH transaction aborted because the key changed between WATCH
	// and EXEC is exactly the optimistic-lock conflict callers retry on,
	// not an infrastructure failure.
	if err == redis.TxFailedErr {
		err = blackboard.ErrConflict
	}

	if err != nil {
		if err != blackboard.ErrConflict {
			util.RecordSpanError(span, err)
		}
		return err
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	ctx, span := tracing.GetTracer().Start(ctx, "Blackboard/Delete")
	defer span.End()

	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		util.RecordSpanError(span, err)
		return err
	}
	return nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
