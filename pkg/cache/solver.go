package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"bellman/pkg/api/solverv1"
	"bellman/pkg/domain"
)

// SolverCache кэширует полные ответы Solve (трасса + путь)
type SolverCache struct {
	cache      Cache
	defaultTTL time.Duration
}

// SolveKey идентифицирует решение: граф, метод, исток и сток
type SolveKey struct {
	GraphHash string
	Method    string
	SourceID  string
	TargetID  string
}

// NewSolveKey строит ключ по доменному графу
func NewSolveKey(g *domain.Graph, method, sourceID, targetID string) SolveKey {
	return SolveKey{
		GraphHash: GraphHash(g),
		Method:    method,
		SourceID:  sourceID,
		TargetID:  targetID,
	}
}

// String возвращает строковый ключ кэша
func (k SolveKey) String() string {
	return BuildSolveKey(k.GraphHash, k.Method, k.SourceID, k.TargetID)
}

// cachedSolve - то, что лежит в кэше
type cachedSolve struct {
	Response   *solverv1.SolveResponse `json:"response"`
	ComputedAt time.Time               `json:"computedAt"`
}

// NewSolverCache создаёт кэш для результатов решателя
func NewSolverCache(cache Cache, defaultTTL time.Duration) *SolverCache {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	return &SolverCache{
		cache:      cache,
		defaultTTL: defaultTTL,
	}
}

// Get получает закэшированный ответ. Промах - (nil, false, nil).
func (sc *SolverCache) Get(ctx context.Context, key SolveKey) (*solverv1.SolveResponse, bool, error) {
	k := key.String()

	data, err := sc.cache.Get(ctx, k)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var entry cachedSolve
	if err := json.Unmarshal(data, &entry); err != nil || entry.Response == nil {
		// Повреждённая запись - удаляем
		_ = sc.cache.Delete(ctx, k) //nolint:errcheck // best effort cleanup
		return nil, false, nil
	}

	return entry.Response, true, nil
}

// Set сохраняет ответ. Идентификатор трассы и флаг попадания не кэшируются.
func (sc *SolverCache) Set(ctx context.Context, key SolveKey, resp *solverv1.SolveResponse, ttl time.Duration) error {
	if resp == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = sc.defaultTTL
	}

	stored := *resp
	stored.TraceId = ""
	stored.CacheHit = false

	data, err := json.Marshal(cachedSolve{Response: &stored, ComputedAt: time.Now().UTC()})
	if err != nil {
		return err
	}

	return sc.cache.Set(ctx, key.String(), data, ttl)
}

// Invalidate удаляет все решения для графа
func (sc *SolverCache) Invalidate(ctx context.Context, g *domain.Graph) (int64, error) {
	return sc.cache.DeleteByPattern(ctx, GraphPattern(GraphHash(g)))
}

// InvalidateAll удаляет весь кэш решений
func (sc *SolverCache) InvalidateAll(ctx context.Context) (int64, error) {
	return sc.cache.DeleteByPattern(ctx, "solve:*")
}

// Stats проксирует статистику нижележащего кэша
func (sc *SolverCache) Stats(ctx context.Context) (*Stats, error) {
	return sc.cache.Stats(ctx)
}
