package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// *redis.Client satisfies this.
type cacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// TaggedCache stores JSON values and indexes their keys in one set per tag.
type TaggedCache struct {
	rdb cacheClient
}

func NewTaggedCache(rdb cacheClient) *TaggedCache {
	return &TaggedCache{rdb: rdb}
}

func (c *TaggedCache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, err := c.rdb.Get(ctx, fmt.Sprintf(KeyCache, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *TaggedCache) Set(ctx context.Context, key string, v interface{}, ttl time.Duration, tags ...string) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	k := fmt.Sprintf(KeyCache, key)
	if err := c.rdb.Set(ctx, k, b, ttl).Err(); err != nil {
		return err
	}

	// the tag set always outlives its members because every Set refreshes it
	for _, tag := range tags {
		tk := fmt.Sprintf(KeyCacheTag, tag)
		if err := c.rdb.SAdd(ctx, tk, k).Err(); err != nil {
			return err
		}
		if err := c.rdb.Expire(ctx, tk, ttl).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (c *TaggedCache) InvalidateTags(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		tk := fmt.Sprintf(KeyCacheTag, tag)
		keys, err := c.rdb.SMembers(ctx, tk).Result()
		if err != nil {
			return err
		}
		if err := c.rdb.Del(ctx, append(keys, tk)...).Err(); err != nil {
			return err
		}
	}
	return nil
}
