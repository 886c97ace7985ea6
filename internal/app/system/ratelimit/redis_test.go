package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dalemusser/campaignhub/internal/app/system/ratelimit"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestNewRedisDefaults(t *testing.T) {
	lim := ratelimit.NewRedis(nil, 0, 0, nil)
	defer lim.Stop()
	if lim.Window != time.Minute {
		t.Errorf("Window = %v, want 1m", lim.Window)
	}
	if lim.Limit != 1 {
		t.Errorf("Limit = %d, want 1", lim.Limit)
	}
	if lim.Fallback == nil {
		t.Fatal("expected in-memory fallback")
	}
}

func TestRedisLimiter_CountsInRedis(t *testing.T) {
	mr, client := newRedis(t)
	lim := ratelimit.NewRedis(client, 2, time.Minute, zap.NewNop())
	defer lim.Stop()
	ctx := context.Background()

	d1 := lim.Take(ctx, "submit:1.2.3.4")
	d2 := lim.Take(ctx, "submit:1.2.3.4")
	d3 := lim.Take(ctx, "submit:1.2.3.4")

	if !d1.Allowed || !d2.Allowed || d3.Allowed {
		t.Fatalf("decisions = %+v %+v %+v", d1, d2, d3)
	}
	if d1.Remaining != 1 || d3.Count != 3 {
		t.Errorf("counts: d1=%+v d3=%+v", d1, d3)
	}

	got, err := mr.Get("campaignhub:rl:submit:1.2.3.4")
	if err != nil || got != "3" {
		t.Errorf("redis counter = %q, %v", got, err)
	}
	if ttl := mr.TTL("campaignhub:rl:submit:1.2.3.4"); ttl <= 0 || ttl > time.Minute {
		t.Errorf("ttl = %v", ttl)
	}
}

func TestRedisLimiter_WindowExpires(t *testing.T) {
	mr, client := newRedis(t)
	lim := ratelimit.NewRedis(client, 1, time.Minute, zap.NewNop())
	defer lim.Stop()
	ctx := context.Background()

	lim.Take(ctx, "k")
	if lim.Take(ctx, "k").Allowed {
		t.Fatal("second request should be limited")
	}
	mr.FastForward(time.Minute + time.Second)
	if !lim.Take(ctx, "k").Allowed {
		t.Error("expected a fresh window after expiry")
	}
}

func TestRedisLimiter_Reset(t *testing.T) {
	mr, client := newRedis(t)
	lim := ratelimit.NewRedis(client, 1, time.Minute, zap.NewNop())
	defer lim.Stop()
	ctx := context.Background()

	lim.Take(ctx, "login:email:a@example.com")
	lim.Reset(ctx, "login:email:a@example.com")

	if mr.Exists("campaignhub:rl:login:email:a@example.com") {
		t.Error("expected key deleted")
	}
	if !lim.Take(ctx, "login:email:a@example.com").Allowed {
		t.Error("expected allowed after reset")
	}
}

func TestRedisLimiter_FallsBackWhenRedisDown(t *testing.T) {
	mr, client := newRedis(t)
	lim := ratelimit.NewRedis(client, 1, time.Minute, zap.NewNop())
	defer lim.Stop()
	lim.Timeout = 200 * time.Millisecond
	ctx := context.Background()

	mr.Close()

	if !lim.Take(ctx, "k").Allowed {
		t.Fatal("first request should be allowed by the fallback")
	}
	if lim.Take(ctx, "k").Allowed {
		t.Error("fallback should still enforce the limit")
	}
}

func TestRedisLimiter_SharedAcrossInstances(t *testing.T) {
	_, client := newRedis(t)
	a := ratelimit.NewRedis(client, 2, time.Minute, nil)
	b := ratelimit.NewRedis(client, 2, time.Minute, nil)
	defer a.Stop()
	defer b.Stop()
	ctx := context.Background()

	a.Take(ctx, "k")
	b.Take(ctx, "k")
	if a.Take(ctx, "k").Allowed {
		t.Error("limit should be shared through redis")
	}
}
