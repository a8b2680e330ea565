// Package ratelimit ограничивает число решений на клиента в скользящем окне.
//
// Лимит считается в единицах стоимости: вызывающий сам решает, сколько стоит
// запрос (Compare прогоняет оба метода и стоит вдвое дороже Solve).
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bellman/pkg/config"
)

// Стандартные ошибки
var (
	ErrLimiterClosed  = errors.New("limiter is closed")
	ErrUnknownBackend = errors.New("unknown rate limit backend")
)

// Бэкенды
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Limiter интерфейс ограничителя
type Limiter interface {
	// Allow списывает cost единиц с ключа, если они помещаются в окно
	Allow(ctx context.Context, key string, cost int) (*Decision, error)

	// Reset сбрасывает историю ключа
	Reset(ctx context.Context, key string) error

	// Close закрывает лимитер
	Close() error
}

// Decision результат проверки
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// RetryAfter > 0 только для отказа
	RetryAfter time.Duration
}

// Config конфигурация лимитера
type Config struct {
	// Requests единиц стоимости на окно
	Requests int

	// Window длина скользящего окна
	Window time.Duration

	// Backend хранилище (memory, redis)
	Backend string

	// CleanupInterval интервал очистки для in-memory
	CleanupInterval time.Duration

	// Redis настройки Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		Requests:        120,
		Window:          time.Minute,
		Backend:         BackendMemory,
		CleanupInterval: 5 * time.Minute,
		KeyPrefix:       "bellman:ratelimit:",
	}
}

// FromConfig строит Config из секции rate_limit
func FromConfig(cfg *config.RateLimitConfig) *Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if cfg.Requests > 0 {
		c.Requests = cfg.Requests
	}
	if cfg.Window > 0 {
		c.Window = cfg.Window
	}
	if cfg.Backend != "" {
		c.Backend = cfg.Backend
	}
	if cfg.CleanupInterval > 0 {
		c.CleanupInterval = cfg.CleanupInterval
	}
	c.RedisAddr = cfg.RedisAddr
	return c
}

// New создаёт лимитер на основе конфигурации
func New(cfg *Config) (Limiter, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	switch cfg.Backend {
	case BackendRedis:
		return NewRedisLimiter(cfg)
	case BackendMemory, "":
		return NewMemoryLimiter(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// clampCost приводит стоимость к [1, limit]: запрос дороже всего окна
// иначе не прошёл бы никогда
func clampCost(cost, limit int) int {
	if cost < 1 {
		return 1
	}
	if cost > limit {
		return limit
	}
	return cost
}
