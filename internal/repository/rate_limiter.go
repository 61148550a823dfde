package repository

import (
	"context"
	"time"
)

// 呼び出し回数制限の判定結果
type RateDecision struct {
	Allowed      bool
	RetryAfter   time.Duration
	RetryMessage string
}

// windowの間にmaxCalls回まで許可する。
type RateLimiter interface {
	Check(ctx context.Context, key string, window time.Duration, maxCalls int) (RateDecision, error)
}
