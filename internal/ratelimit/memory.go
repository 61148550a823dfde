package ratelimit

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	repo "storefront/internal/repository"

	"golang.org/x/time/rate"
)

// 保持するキーの上限。超えたら全部捨てて作り直す。
const maxKeys = 10000

// Redisが無いとき用の、プロセス内トークンバケット。
// windowの間にmaxCalls回まで（バースト込み）。
type MemoryLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	now      func() time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		limiters: make(map[string]*rate.Limiter),
		now:      time.Now,
	}
}

func (l *MemoryLimiter) Check(_ context.Context, key string, window time.Duration, maxCalls int) (repo.RateDecision, error) {
	if maxCalls <= 0 || window <= 0 {
		return repo.RateDecision{}, fmt.Errorf("invalid rate limit: window=%s max=%d", window, maxCalls)
	}

	lim := l.limiter(key, window, maxCalls)
	now := l.now()

	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return denied(window), nil
	}
	if wait := r.DelayFrom(now); wait > 0 {
		//予約は取り消して、待ち時間だけ返す
		r.CancelAt(now)
		return denied(wait), nil
	}
	return repo.RateDecision{Allowed: true}, nil
}

func (l *MemoryLimiter) limiter(key string, window time.Duration, maxCalls int) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, ok := l.limiters[key]; ok {
		return lim
	}
	if len(l.limiters) >= maxKeys {
		l.limiters = make(map[string]*rate.Limiter)
	}
	lim := rate.NewLimiter(rate.Every(window/time.Duration(maxCalls)), maxCalls)
	l.limiters[key] = lim
	return lim
}

func denied(wait time.Duration) repo.RateDecision {
	secs := int(math.Ceil(wait.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return repo.RateDecision{
		Allowed:      false,
		RetryAfter:   wait,
		RetryMessage: fmt.Sprintf("Too many requests. Please try again in %d seconds.", secs),
	}
}
