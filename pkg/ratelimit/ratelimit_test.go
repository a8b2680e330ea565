package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bellman/pkg/config"
)

// fakeClock управляемое время для MemoryLimiter
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(t *testing.T, requests int, window time.Duration) (*MemoryLimiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := NewMemoryLimiter(&Config{Requests: requests, Window: window})
	l.now = clock.Now
	t.Cleanup(func() { _ = l.Close() })
	return l, clock
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Requests <= 0 {
		t.Error("Requests should be positive")
	}
	if cfg.Window <= 0 {
		t.Error("Window should be positive")
	}
	if cfg.Backend != BackendMemory {
		t.Errorf("Backend = %q, want memory", cfg.Backend)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(&config.RateLimitConfig{
		Requests:  10,
		Window:    30 * time.Second,
		Backend:   BackendRedis,
		RedisAddr: "redis:6379",
	})

	if cfg.Requests != 10 || cfg.Window != 30*time.Second {
		t.Errorf("limits = %d/%v", cfg.Requests, cfg.Window)
	}
	if cfg.Backend != BackendRedis || cfg.RedisAddr != "redis:6379" {
		t.Errorf("backend = %q at %q", cfg.Backend, cfg.RedisAddr)
	}
	if cfg.CleanupInterval != DefaultConfig().CleanupInterval {
		t.Error("zero cleanup interval must fall back to default")
	}

	if got := FromConfig(nil); got.Requests != DefaultConfig().Requests {
		t.Error("nil config must give defaults")
	}
}

func TestNew(t *testing.T) {
	l, err := New(&Config{Requests: 1, Window: time.Second, Backend: BackendMemory})
	if err != nil {
		t.Fatalf("New(memory) error = %v", err)
	}
	_ = l.Close()

	if _, err := New(&Config{Backend: "etcd"}); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("New(etcd) error = %v, want ErrUnknownBackend", err)
	}
}

func TestMemoryLimiter_Allow(t *testing.T) {
	l, _ := newTestLimiter(t, 5, time.Second)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		d, err := l.Allow(ctx, "client", 1)
		if err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
		if !d.Allowed {
			t.Errorf("request %d should be allowed", i+1)
		}
		if d.Remaining != 4-i {
			t.Errorf("request %d: Remaining = %d, want %d", i+1, d.Remaining, 4-i)
		}
	}

	d, err := l.Allow(ctx, "client", 1)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if d.Allowed {
		t.Error("6th request should be denied")
	}
	if d.RetryAfter != time.Second {
		t.Errorf("RetryAfter = %v, want 1s", d.RetryAfter)
	}
}

func TestMemoryLimiter_Cost(t *testing.T) {
	tests := []struct {
		name     string
		costs    []int
		want     []bool
		lastLeft int
	}{
		{"compare costs two", []int{2, 2, 1}, []bool{true, true, true}, 0},
		{"does not fit", []int{2, 2, 2}, []bool{true, true, false}, 1},
		{"cost above limit is clamped", []int{9}, []bool{true}, 0},
		{"zero cost counts as one", []int{0, 4}, []bool{true, true}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newTestLimiter(t, 5, time.Minute)
			var d *Decision
			for i, cost := range tt.costs {
				var err error
				d, err = l.Allow(context.Background(), "k", cost)
				if err != nil {
					t.Fatalf("Allow() error = %v", err)
				}
				if d.Allowed != tt.want[i] {
					t.Errorf("call %d (cost %d): Allowed = %v, want %v", i, cost, d.Allowed, tt.want[i])
				}
			}
			if d.Remaining != tt.lastLeft {
				t.Errorf("Remaining = %d, want %d", d.Remaining, tt.lastLeft)
			}
		})
	}
}

func TestMemoryLimiter_SlidingWindow(t *testing.T) {
	l, clock := newTestLimiter(t, 3, 10*time.Second)
	ctx := context.Background()

	// t=0: 1 единица, t=4s: 2 единицы, окно заполнено
	mustAllow(t, l, 1)
	clock.Advance(4 * time.Second)
	mustAllow(t, l, 2)

	clock.Advance(time.Second)
	d, _ := l.Allow(ctx, "k", 2)
	if d.Allowed {
		t.Fatal("window is full")
	}
	// Двум единицам нужно, чтобы ушли оба списания: t=4s+10s, сейчас t=5s
	if d.RetryAfter != 9*time.Second {
		t.Errorf("RetryAfter = %v, want 9s", d.RetryAfter)
	}

	// t=10s: первое списание вышло из окна, одна единица свободна
	clock.Advance(5 * time.Second)
	mustAllow(t, l, 1)
	if d, _ := l.Allow(ctx, "k", 1); d.Allowed {
		t.Error("window should be full again")
	}
}

func mustAllow(t *testing.T, l *MemoryLimiter, cost int) {
	t.Helper()
	d, err := l.Allow(context.Background(), "k", cost)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !d.Allowed {
		t.Fatalf("cost %d should be allowed, remaining %d", cost, d.Remaining)
	}
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	for _, key := range []string{"10.0.0.1", "10.0.0.2"} {
		d, _ := l.Allow(ctx, key, 1)
		if !d.Allowed {
			t.Errorf("first request for %s should be allowed", key)
		}
	}
}

func TestMemoryLimiter_Reset(t *testing.T) {
	l, _ := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	mustAllow(t, l, 1)
	if err := l.Reset(ctx, "k"); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	mustAllow(t, l, 1)
}

func TestMemoryLimiter_Cleanup(t *testing.T) {
	l, clock := newTestLimiter(t, 2, time.Second)

	mustAllow(t, l, 1)
	clock.Advance(2 * time.Second)
	l.doCleanup()

	l.mu.Lock()
	n := len(l.windows)
	l.mu.Unlock()
	if n != 0 {
		t.Errorf("windows after cleanup = %d, want 0", n)
	}
}

func TestMemoryLimiter_Close(t *testing.T) {
	l := NewMemoryLimiter(&Config{Requests: 1, Window: time.Second, CleanupInterval: time.Minute})

	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := l.Allow(context.Background(), "k", 1); !errors.Is(err, ErrLimiterClosed) {
		t.Errorf("Allow() after Close error = %v, want ErrLimiterClosed", err)
	}
}

func TestMemoryLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(t, 50, time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := l.Allow(ctx, "shared", 1)
			if err != nil {
				t.Errorf("Allow() error = %v", err)
				return
			}
			if d.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Errorf("allowed = %d, want 50", allowed)
	}
}
