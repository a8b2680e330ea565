package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Скользящее окно в sorted set: score - время в мс, одна запись на единицу
// стоимости. Возвращает {allowed, remaining, retry_after_ms}.
var allowScript = redis.NewScript(`
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local cost = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
	local used = redis.call('ZCARD', key)

	if used + cost <= limit then
		for i = 1, cost do
			redis.call('ZADD', key, now, now .. ':' .. i .. ':' .. math.random())
		end
		redis.call('PEXPIRE', key, window)
		return {1, limit - used - cost, 0}
	end

	local need = used + cost - limit
	local oldest = redis.call('ZRANGE', key, need - 1, need - 1, 'WITHSCORES')
	local retry = window
	if oldest[2] then
		retry = tonumber(oldest[2]) + window - now
	end
	return {0, limit - used, retry}
`)

// RedisLimiter распределённый лимитер: общий бюджет для всех реплик gateway
type RedisLimiter struct {
	client redis.UniversalClient
	config *Config
}

// NewRedisLimiter подключается к Redis и проверяет соединение
func NewRedisLimiter(cfg *Config) (*RedisLimiter, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisLimiterWithClient(client, cfg), nil
}

// NewRedisLimiterWithClient оборачивает готовый клиент
func NewRedisLimiterWithClient(client redis.UniversalClient, cfg *Config) *RedisLimiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &RedisLimiter{client: client, config: cfg}
}

func (l *RedisLimiter) key(k string) string {
	return l.config.KeyPrefix + k
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, cost int) (*Decision, error) {
	limit := l.config.Requests
	cost = clampCost(cost, limit)

	result, err := allowScript.Run(ctx, l.client, []string{l.key(key)},
		limit, l.config.Window.Milliseconds(), time.Now().UnixMilli(), cost).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("redis script error: %w", err)
	}
	if len(result) != 3 {
		return nil, fmt.Errorf("unexpected redis script result: %v", result)
	}

	d := &Decision{
		Allowed:   result[0] == 1,
		Limit:     limit,
		Remaining: int(max(result[1], 0)),
	}
	if !d.Allowed {
		d.RetryAfter = time.Duration(result[2]) * time.Millisecond
	}
	return d, nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.key(key)).Err()
}

func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
