package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newLimiter(t *testing.T, limit int) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	l, err := New(client, "test:ratelimit", limit, time.Minute)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	fixed := time.Date(2026, 5, 4, 10, 0, 30, 0, time.UTC)
	l.now = func() time.Time { return fixed }
	return l, mr
}

func TestLimiterBlocksAfterLimit(t *testing.T) {
	l, _ := newLimiter(t, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, err := l.Allow(ctx, "login:203.0.113.5")
		if err != nil || !d.Allowed {
			t.Fatalf("request %d should pass: %+v %v", i+1, d, err)
		}
	}
	d, err := l.Allow(ctx, "login:203.0.113.5")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if d.Allowed || d.Remaining != 0 || d.RetryAfter <= 0 {
		t.Fatalf("third request should be blocked with retry hint, got %+v", d)
	}

	if d, _ := l.Allow(ctx, "login:198.51.100.1"); !d.Allowed || d.Remaining != 1 {
		t.Fatalf("other keys must have their own budget, got %+v", d)
	}
}

func TestLimiterNewWindowResets(t *testing.T) {
	l, _ := newLimiter(t, 1)
	ctx := context.Background()
	if d, _ := l.Allow(ctx, "k"); !d.Allowed {
		t.Fatalf("first request should pass")
	}
	if d, _ := l.Allow(ctx, "k"); d.Allowed {
		t.Fatalf("second request should be blocked")
	}
	later := l.now().Add(time.Minute)
	l.now = func() time.Time { return later }
	if d, _ := l.Allow(ctx, "k"); !d.Allowed {
		t.Fatalf("next window should reset the budget")
	}
}

func TestLimiterFailsClosed(t *testing.T) {
	l, mr := newLimiter(t, 5)
	mr.Close()
	d, err := l.Allow(context.Background(), "k")
	if err == nil || d.Allowed {
		t.Fatalf("expected denial with error on redis failure, got %+v %v", d, err)
	}
}

func TestNewValidates(t *testing.T) {
	if _, err := New(nil, "", 1, time.Second); err == nil {
		t.Fatalf("expected error for nil client")
	}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()
	if _, err := New(client, "", 0, time.Second); err == nil {
		t.Fatalf("expected error for zero limit")
	}
}
