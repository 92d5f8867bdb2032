// internal/webhook/ratelimit.go
package webhook

import (
	"context"
	"fmt"
	"time"

	"hiring-pipeline/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

// rateLimitScript atomically increments the window counter, arms its expiry
// on first hit, and returns the current count plus the remaining TTL.
const rateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`

// Decision is the outcome of a rate-limit check, carrying everything the
// standard X-RateLimit response headers need.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter is a fixed-window request limiter backed by Redis. Counters are
// the only shared mutable state between requests; the increment-and-check
// runs as one Lua script so concurrent requests cannot race past the limit.
type Limiter struct {
	client *redis.Client
	script *redis.Script
	limit  int
	window time.Duration
	logger logger.Logger
}

func NewLimiter(client *redis.Client, limit int, window time.Duration, log logger.Logger) *Limiter {
	return &Limiter{
		client: client,
		script: redis.NewScript(rateLimitScript),
		limit:  limit,
		window: window,
		logger: log,
	}
}

// Allow records one request for the key and reports whether it is within
// quota. Redis outages fail open: limiting is protective, not load-bearing.
func (l *Limiter) Allow(ctx context.Context, key string) Decision {
	if l == nil {
		return Decision{Allowed: true}
	}
	open := Decision{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: l.limit,
		ResetAt:   time.Now().Add(l.window),
	}
	if l.client == nil {
		return open
	}

	ctx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()

	res, err := l.script.Run(ctx, l.client, []string{l.redisKey(key)}, l.window.Milliseconds(), l.limit).Int64Slice()
	if err != nil || len(res) != 2 {
		l.logger.Warn("rate limiter unavailable, failing open", map[string]interface{}{
			"key":   key,
			"error": err,
		})
		return open
	}

	count, ttlMS := res[0], res[1]
	if ttlMS < 0 {
		ttlMS = l.window.Milliseconds()
	}

	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   count <= int64(l.limit),
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   time.Now().Add(time.Duration(ttlMS) * time.Millisecond),
	}
}

func (l *Limiter) redisKey(key string) string {
	return fmt.Sprintf("ratelimit:%s", key)
}
