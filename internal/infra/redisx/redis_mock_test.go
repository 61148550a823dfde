package redisx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

type RedisMock struct{ mock.Mock }

func (m *RedisMock) Incr(ctx context.Context, key string) *redis.IntCmd {
	return m.Called(ctx, key).Get(0).(*redis.IntCmd)
}

func (m *RedisMock) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	return m.Called(ctx, key, expiration).Get(0).(*redis.BoolCmd)
}

func (m *RedisMock) TTL(ctx context.Context, key string) *redis.DurationCmd {
	return m.Called(ctx, key).Get(0).(*redis.DurationCmd)
}

func (m *RedisMock) Get(ctx context.Context, key string) *redis.StringCmd {
	return m.Called(ctx, key).Get(0).(*redis.StringCmd)
}

func (m *RedisMock) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	return m.Called(ctx, key, value, expiration).Get(0).(*redis.StatusCmd)
}

func (m *RedisMock) SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd {
	return m.Called(ctx, key, members).Get(0).(*redis.IntCmd)
}

func (m *RedisMock) SMembers(ctx context.Context, key string) *redis.StringSliceCmd {
	return m.Called(ctx, key).Get(0).(*redis.StringSliceCmd)
}

func (m *RedisMock) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	return m.Called(ctx, keys).Get(0).(*redis.IntCmd)
}
