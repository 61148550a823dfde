package redisx

const (
	// Fixed window counter: ratelimit:{key} -> calls in current window
	KeyRateLimit = "ratelimit:%s"

	// Cached JSON value: cache:{key}
	KeyCache = "cache:%s"

	// Tag index set: cachetag:{tag} -> members are cache keys
	KeyCacheTag = "cachetag:%s"
)
