package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter in-memory реализация со скользящим окном
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string][]spend
	config  *Config
	now     func() time.Time
	stopCh  chan struct{}
	closed  bool
}

// spend одно списание: когда и сколько единиц
type spend struct {
	at   time.Time
	cost int
}

// NewMemoryLimiter создаёт in-memory лимитер и запускает фоновую очистку
func NewMemoryLimiter(cfg *Config) *MemoryLimiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	l := &MemoryLimiter{
		windows: make(map[string][]spend),
		config:  cfg,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}

	if cfg.CleanupInterval > 0 {
		go l.cleanup()
	}

	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, cost int) (*Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrLimiterClosed
	}

	limit := l.config.Requests
	cost = clampCost(cost, limit)
	now := l.now()

	spends := prune(l.windows[key], now.Add(-l.config.Window))
	used := 0
	for _, s := range spends {
		used += s.cost
	}

	if used+cost <= limit {
		l.windows[key] = append(spends, spend{at: now, cost: cost})
		return &Decision{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit - used - cost,
		}, nil
	}
	l.windows[key] = spends

	// Ждать, пока из окна выйдет достаточно старых списаний
	freed := 0
	retryAfter := l.config.Window
	for _, s := range spends {
		freed += s.cost
		if used-freed+cost <= limit {
			retryAfter = s.at.Add(l.config.Window).Sub(now)
			break
		}
	}

	return &Decision{
		Allowed:    false,
		Limit:      limit,
		Remaining:  max(limit-used, 0),
		RetryAfter: retryAfter,
	}, nil
}

func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.windows, key)
	return nil
}

func (l *MemoryLimiter) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true
	close(l.stopCh)
	l.windows = nil

	return nil
}

// prune отбрасывает списания не позже границы окна (слайс упорядочен по времени)
func prune(spends []spend, windowStart time.Time) []spend {
	i := 0
	for i < len(spends) && !spends[i].at.After(windowStart) {
		i++
	}
	return spends[i:]
}

func (l *MemoryLimiter) cleanup() {
	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.doCleanup()
		}
	}
}

func (l *MemoryLimiter) doCleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	windowStart := l.now().Add(-l.config.Window)
	for key, spends := range l.windows {
		spends = prune(spends, windowStart)
		if len(spends) == 0 {
			delete(l.windows, key)
			continue
		}
		l.windows[key] = spends
	}
}
