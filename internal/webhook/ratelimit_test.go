// internal/webhook/ratelimit_test.go
package webhook

import (
	"context"
	"testing"
	"time"

	"hiring-pipeline/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLimiter(client, limit, window, logger.NewNoOpLogger()), mr
}

func TestLimiterCountsPerKey(t *testing.T) {
	l, _ := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d := l.Allow(ctx, "webhook:application:203.0.113.9")
		assert.True(t, d.Allowed, "request %d within quota", i+1)
		assert.Equal(t, 3, d.Limit)
		assert.Equal(t, 3-(i+1), d.Remaining)
	}

	d := l.Allow(ctx, "webhook:application:203.0.113.9")
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	// Other keys are unaffected.
	d = l.Allow(ctx, "webhook:application:198.51.100.7")
	assert.True(t, d.Allowed)
}

func TestLimiterWindowExpiry(t *testing.T) {
	l, mr := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	require.True(t, l.Allow(ctx, "k").Allowed)
	require.False(t, l.Allow(ctx, "k").Allowed)

	mr.FastForward(61 * time.Second)
	assert.True(t, l.Allow(ctx, "k").Allowed, "new window after expiry")
}

func TestLimiterFailsOpen(t *testing.T) {
	l, mr := newTestLimiter(t, 1, time.Minute)
	mr.Close()

	d := l.Allow(context.Background(), "k")
	assert.True(t, d.Allowed, "redis outage must not block webhooks")
	assert.Equal(t, 1, d.Remaining)
}

func TestLimiterDisabledIsOpen(t *testing.T) {
	var l *Limiter
	assert.True(t, l.Allow(context.Background(), "k").Allowed)

	l = NewLimiter(nil, 5, time.Minute, logger.NewNoOpLogger())
	d := l.Allow(context.Background(), "k")
	assert.True(t, d.Allowed)
	assert.Equal(t, 5, d.Remaining)
}
