package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var takeScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

// RedisLimiter shares fixed-window counters across instances through Redis.
// When Redis is unreachable it counts in process with Fallback.
type RedisLimiter struct {
	Client   redis.Cmdable
	Limit    int
	Window   time.Duration
	Prefix   string
	Timeout  time.Duration
	Fallback *Limiter
	Log      *zap.Logger
}

// NewRedis builds a limiter allowing limit requests per window.
// A nil client makes every call use the in-memory fallback.
func NewRedis(client redis.Cmdable, limit int, window time.Duration, logger *zap.Logger) *RedisLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLimiter{
		Client:   client,
		Limit:    limit,
		Window:   window,
		Prefix:   "campaignhub:rl:",
		Timeout:  2 * time.Second,
		Fallback: New(limit, window),
		Log:      logger,
	}
}

// Take counts one request against key.
func (l *RedisLimiter) Take(ctx context.Context, key string) Decision {
	if l.Client == nil {
		return l.Fallback.Take(ctx, key)
	}

	ctx, cancel := context.WithTimeout(ctx, l.Timeout)
	defer cancel()

	res, err := takeScript.Run(ctx, l.Client, []string{l.Prefix + key}, l.Window.Milliseconds()).Int64Slice()
	if err != nil || len(res) < 2 {
		l.Log.Warn("rate limit: redis unavailable, using in-memory counter",
			zap.String("key", key), zap.Error(err))
		return l.Fallback.Take(ctx, key)
	}

	count, ttl := int(res[0]), res[1]
	if ttl < 0 {
		ttl = l.Window.Milliseconds()
	}
	d := Decision{
		Allowed: count <= l.Limit,
		Count:   count,
		Limit:   l.Limit,
		ResetAt: time.Now().UTC().Add(time.Duration(ttl) * time.Millisecond),
	}
	if d.Allowed {
		d.Remaining = l.Limit - count
	}
	return d
}

// Reset clears key in Redis and in the fallback.
func (l *RedisLimiter) Reset(ctx context.Context, key string) {
	l.Fallback.Reset(ctx, key)
	if l.Client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, l.Timeout)
	defer cancel()
	if err := l.Client.Del(ctx, l.Prefix+key).Err(); err != nil {
		l.Log.Warn("rate limit: reset failed", zap.String("key", key), zap.Error(err))
	}
}

// Stop releases the fallback's cleanup goroutine.
func (l *RedisLimiter) Stop() {
	l.Fallback.Stop()
}
