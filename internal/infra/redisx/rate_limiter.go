package redisx

import (
	"context"
	"fmt"
	"math"
	"time"

	repo "storefront/internal/repository"

	"github.com/redis/go-redis/v9"
)

// *redis.Client satisfies this.
type counterClient interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
}

// RateLimiter counts calls per key in a fixed window shared by every API instance.
type RateLimiter struct {
	rdb counterClient
}

func NewRateLimiter(rdb counterClient) *RateLimiter {
	return &RateLimiter{rdb: rdb}
}

func (l *RateLimiter) Check(ctx context.Context, key string, window time.Duration, maxCalls int) (repo.RateDecision, error) {
	k := fmt.Sprintf(KeyRateLimit, key)

	n, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return repo.RateDecision{}, fmt.Errorf("incr %s: %w", k, err)
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, k, window).Err(); err != nil {
			return repo.RateDecision{}, fmt.Errorf("expire %s: %w", k, err)
		}
	}
	if n <= int64(maxCalls) {
		return repo.RateDecision{Allowed: true}, nil
	}

	ttl, err := l.rdb.TTL(ctx, k).Result()
	if err != nil {
		return repo.RateDecision{}, fmt.Errorf("ttl %s: %w", k, err)
	}
	if ttl < 0 {
		// key lost its expiry; start a fresh window
		if err := l.rdb.Expire(ctx, k, window).Err(); err != nil {
			return repo.RateDecision{}, fmt.Errorf("expire %s: %w", k, err)
		}
		ttl = window
	}

	return repo.RateDecision{
		Allowed:      false,
		RetryAfter:   ttl,
		RetryMessage: RetryMessage(ttl),
	}, nil
}

func RetryMessage(wait time.Duration) string {
	secs := int(math.Ceil(wait.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return fmt.Sprintf("Too many requests. Please try again in %d seconds.", secs)
}
