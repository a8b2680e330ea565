package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache Redis реализация кэша. Все ключи хранятся с префиксом.
type RedisCache struct {
	client     redis.UniversalClient
	defaultTTL time.Duration
	prefix     string
}

// NewRedisCache создаёт новый Redis кэш и проверяет соединение
func NewRedisCache(opts *Options) (*RedisCache, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	poolSize := opts.RedisPoolSize
	if poolSize <= 0 {
		poolSize = 10
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.RedisAddr,
		Password: opts.RedisPassword,
		DB:       opts.RedisDB,
		PoolSize: poolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisCacheWithClient(client, opts.DefaultTTL, opts.KeyPrefix), nil
}

// NewRedisCacheWithClient оборачивает готовый клиент
func NewRedisCacheWithClient(client redis.UniversalClient, defaultTTL time.Duration, prefix string) *RedisCache {
	return &RedisCache{
		client:     client,
		defaultTTL: defaultTTL,
		prefix:     prefix,
	}
}

func (c *RedisCache) key(k string) string {
	return c.prefix + k
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return val, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	return c.client.Set(ctx, c.key(key), value, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}

func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteByPattern проходит по ключам через SCAN, чтобы не блокировать Redis
func (c *RedisCache) DeleteByPattern(ctx context.Context, pattern string) (int64, error) {
	var (
		deleted int64
		batch   []string
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := c.client.Del(ctx, batch...).Result()
		deleted += n
		batch = batch[:0]
		return err
	}

	iter := c.client.Scan(ctx, 0, c.key(pattern), 256).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= 256 {
			if err := flush(); err != nil {
				return deleted, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, err
	}

	return deleted, flush()
}

func (c *RedisCache) Stats(ctx context.Context) (*Stats, error) {
	info, err := c.client.Info(ctx, "stats", "memory").Result()
	if err != nil {
		return nil, err
	}

	stats := parseInfo(info)

	var count int64
	iter := c.client.Scan(ctx, 0, c.key("*"), 512).Iterator()
	for iter.Next(ctx) {
		count++
		stats.KeysByPrefix[extractPrefix(strings.TrimPrefix(iter.Val(), c.prefix))]++
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	stats.TotalKeys = count

	return stats, nil
}

// parseInfo разбирает вывод INFO (best-effort)
func parseInfo(info string) *Stats {
	stats := &Stats{
		KeysByPrefix: make(map[string]int64),
		Backend:      BackendRedis,
	}

	for _, line := range strings.Split(info, "\n") {
		name, value, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}
		var target *int64
		switch name {
		case "keyspace_hits":
			target = &stats.Hits
		case "keyspace_misses":
			target = &stats.Misses
		case "evicted_keys":
			target = &stats.Evictions
		case "used_memory":
			target = &stats.MemoryBytes
		default:
			continue
		}
		_, _ = fmt.Sscan(value, target) //nolint:errcheck // статистика не критична
	}

	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}

	return stats
}

// Clear удаляет только ключи с нашим префиксом
func (c *RedisCache) Clear(ctx context.Context) error {
	_, err := c.DeleteByPattern(ctx, "*")
	return err
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
