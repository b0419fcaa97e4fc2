package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"userhub/pkg/logger"
)

var errStaleFill = errors.New("cache entry invalidated during fill")

// ViewCache is a JSON-backed Redis cache for read views of type T. Keys are
// namespaced with prefix; a zero ttl stores keys without expiry.
//
// Each key has a companion version counter bumped by Delete. SetAt writes
// only while the counter still holds the version the reader started from.
type ViewCache[T any] struct {
	client goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewViewCache[T any](client goredis.UniversalClient, prefix string, ttl time.Duration) *ViewCache[T] {
	return &ViewCache[T]{client: client, prefix: prefix, ttl: ttl}
}

func (c *ViewCache[T]) valueKey(key string) string   { return c.prefix + key }
func (c *ViewCache[T]) versionKey(key string) string { return c.prefix + key + ":version" }

// Get returns (nil, false) on any miss or decode error.
func (c *ViewCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	data, err := c.client.Get(ctx, c.valueKey(key)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			logger.Warn("ViewCache: read error for key %s: %v", c.valueKey(key), err)
		}
		return nil, false
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		logger.Warn("ViewCache: decode error for key %s: %v", c.valueKey(key), err)
		return nil, false
	}
	return &v, true
}

func (c *ViewCache[T]) Version(ctx context.Context, key string) (int64, bool) {
	version, err := readVersion(ctx, c.client, c.versionKey(key))
	if err != nil {
		logger.Warn("ViewCache: version read error for key %s: %v", c.versionKey(key), err)
		return 0, false
	}
	return version, true
}

func (c *ViewCache[T]) SetAt(ctx context.Context, key string, version int64, value *T) {
	data, err := json.Marshal(value)
	if err != nil {
		logger.Warn("ViewCache: marshal error for key %s: %v", c.valueKey(key), err)
		return
	}

	versionKey := c.versionKey(key)
	err = c.client.Watch(ctx, func(tx *goredis.Tx) error {
		current, err := readVersion(ctx, tx, versionKey)
		if err != nil {
			return err
		}
		if current != version {
			return errStaleFill
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, c.valueKey(key), data, c.ttl)
			return nil
		})
		return err
	}, versionKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, goredis.TxFailedErr):
		logger.Debug("ViewCache: skipped stale fill for key %s", c.valueKey(key))
	default:
		logger.Warn("ViewCache: write error for key %s: %v", c.valueKey(key), err)
	}
}

// Delete drops the value and advances the version so in-flight fills lose.
func (c *ViewCache[T]) Delete(ctx context.Context, key string) {
	versionKey := c.versionKey(key)
	_, err := c.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, c.valueKey(key))
		pipe.Incr(ctx, versionKey)
		if c.ttl > 0 {
			// The counter only has to outlive fills that started before it.
			pipe.Expire(ctx, versionKey, 2*c.ttl)
		}
		return nil
	})
	if err != nil {
		logger.Warn("ViewCache: delete error for key %s: %v", c.valueKey(key), err)
	}
}

type stringGetter interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
}

func readVersion(ctx context.Context, client stringGetter, key string) (int64, error) {
	raw, err := client.Get(ctx, key).Result()
	if err == goredis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}
