package redis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestThrottle(t *testing.T, max int, window time.Duration) (*LoginThrottle, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLoginThrottle(client, max, window), mr
}

func TestLoginThrottle_BlocksAfterMaxAttempts(t *testing.T) {
	throttle, _ := newTestThrottle(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := throttle.Allow(ctx, "ada@example.com")
		if err != nil || !ok {
			t.Fatalf("attempt %d: Allow = %v, %v", i, ok, err)
		}
	}

	ok, err := throttle.Allow(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ok {
		t.Fatalf("expected attempt to be blocked")
	}

	if ok, _ := throttle.Allow(ctx, "other@example.com"); !ok {
		t.Fatalf("other keys must not be affected")
	}
}

func TestLoginThrottle_ConcurrentAttemptsNeverExceedMax(t *testing.T) {
	const max, callers = 3, 20
	throttle, _ := newTestThrottle(t, max, time.Minute)
	ctx := context.Background()

	var allowed atomic.Int64
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ok, err := throttle.Allow(ctx, "ada@example.com")
			if err != nil {
				t.Errorf("Allow: %v", err)
				return
			}
			if ok {
				allowed.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := allowed.Load(); got != max {
		t.Fatalf("expected exactly %d attempts allowed, got %d", max, got)
	}
}

func TestLoginThrottle_WindowExpires(t *testing.T) {
	throttle, mr := newTestThrottle(t, 1, time.Minute)
	ctx := context.Background()

	if ok, _ := throttle.Allow(ctx, "ada@example.com"); !ok {
		t.Fatalf("expected first attempt to be allowed")
	}
	if ok, _ := throttle.Allow(ctx, "ada@example.com"); ok {
		t.Fatalf("expected block inside the window")
	}
	if ttl := mr.TTL("login_fail:ada@example.com"); ttl != time.Minute {
		t.Fatalf("expected ttl of one minute, got %v", ttl)
	}

	mr.FastForward(time.Minute + time.Second)
	if ok, _ := throttle.Allow(ctx, "ada@example.com"); !ok {
		t.Fatalf("expected window to reset")
	}
}

func TestLoginThrottle_Reset(t *testing.T) {
	throttle, _ := newTestThrottle(t, 1, time.Minute)
	ctx := context.Background()

	_, _ = throttle.Allow(ctx, "ada@example.com")
	if err := throttle.Reset(ctx, "ada@example.com"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if ok, _ := throttle.Allow(ctx, "ada@example.com"); !ok {
		t.Fatalf("expected reset to clear the counter")
	}
}

func TestLoginThrottle_BackendDown(t *testing.T) {
	throttle, mr := newTestThrottle(t, 1, time.Minute)
	mr.Close()

	if _, err := throttle.Allow(context.Background(), "ada@example.com"); err == nil {
		t.Fatalf("expected error when redis is unreachable")
	}
}
