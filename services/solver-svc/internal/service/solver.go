package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"bellman/pkg/api/solverv1"
	"bellman/pkg/apperror"
	"bellman/pkg/cache"
	"bellman/pkg/config"
	"bellman/pkg/domain"
	"bellman/pkg/logger"
	"bellman/pkg/metrics"
	"bellman/pkg/telemetry"
	"bellman/services/solver-svc/internal/algorithms"
	"bellman/services/solver-svc/internal/converter"
	"bellman/services/solver-svc/internal/repository"
)

// Options настройки сервиса решателя
type Options struct {
	Version       string
	DefaultMethod algorithms.Method
	// Лимиты размера графа, 0 - без ограничения
	MaxNodes int
	MaxEdges int
	// Timeout ограничивает одно решение, 0 - только дедлайн запроса
	Timeout       time.Duration
	PersistTraces bool
	CacheTTL      time.Duration
}

// OptionsFromConfig собирает Options из секции solver
func OptionsFromConfig(cfg *config.Config) Options {
	method := algorithms.Method(cfg.Solver.DefaultMethod)
	if method == "" {
		method = algorithms.MethodGaussSeidel
	}
	return Options{
		Version:       cfg.App.Version,
		DefaultMethod: method,
		MaxNodes:      cfg.Solver.MaxNodes,
		MaxEdges:      cfg.Solver.MaxEdges,
		Timeout:       cfg.Solver.Timeout,
		PersistTraces: cfg.Solver.PersistTraces,
		CacheTTL:      cfg.Solver.CacheTTL,
	}
}

// SolverService реализует solverv1.SolverServiceServer поверх алгоритмов
// Беллмана-Калабы: кэш, хранилище трасс, метрики и трейсинг вокруг решателей
type SolverService struct {
	solverv1.UnimplementedSolverServiceServer
	opts        Options
	metrics     *metrics.Metrics
	solverCache *cache.SolverCache
	traces      repository.TraceRepository
}

// NewSolverService создаёт сервис. solverCache и traces могут быть nil.
func NewSolverService(opts Options, traces repository.TraceRepository, solverCache *cache.SolverCache, m *metrics.Metrics) *SolverService {
	if opts.DefaultMethod == "" {
		opts.DefaultMethod = algorithms.MethodGaussSeidel
	}
	if m == nil {
		m = metrics.Get()
	}
	return &SolverService{
		opts:        opts,
		metrics:     m,
		solverCache: solverCache,
		traces:      traces,
	}
}

// Solve решает задачу одним методом и возвращает полную трассу
func (s *SolverService) Solve(ctx context.Context, req *solverv1.SolveRequest) (*solverv1.SolveResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "SolverService.Solve",
		trace.WithAttributes(telemetry.SolveAttributes(req.Method, req.SourceId, req.TargetId)...),
	)
	defer span.End()

	if err := req.Validate(); err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}

	method, err := algorithms.ParseMethod(req.Method, s.opts.DefaultMethod)
	if err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}

	g, err := s.prepareGraph(req.Graph)
	if err != nil {
		s.metrics.RecordSolveError(method.String(), string(apperror.Code(err)))
		telemetry.SetError(ctx, err)
		return nil, err
	}

	key := cache.NewSolveKey(g, method.String(), req.SourceId, req.TargetId)
	span.SetAttributes(telemetry.GraphAttributes(g.NodeCount(), g.EdgeCount(), key.GraphHash)...)

	log := logger.WithContext(ctx).With("method", method.String(), "graph_hash", key.GraphHash)

	resp, hit := s.lookupCache(ctx, key, req.SkipCache)
	if !hit {
		result, err := s.run(ctx, g, req.SourceId, req.TargetId, method)
		if err != nil {
			telemetry.SetError(ctx, err)
			log.Warn("Solve failed", "error", err)
			return nil, err
		}

		resp = buildSolveResponse(g, result)
		s.storeCache(ctx, key, resp)
	}

	if req.Persist || s.opts.PersistTraces {
		id, err := s.persist(ctx, g, key.GraphHash, resp)
		switch {
		case err == nil:
			resp.TraceId = id
		case req.Persist:
			telemetry.SetError(ctx, err)
			return nil, err
		default:
			log.Warn("Failed to persist trace", "error", err)
		}
	}

	span.SetAttributes(
		attribute.Bool(telemetry.AttrCacheHit, hit),
		attribute.Bool(telemetry.AttrSolvePathFound, resp.PathFound),
	)
	if resp.TraceId != "" {
		span.SetAttributes(attribute.String(telemetry.AttrTraceID, resp.TraceId))
	}

	log.Debug("Solve completed",
		"cache_hit", hit,
		"steps", len(resp.Result.Steps),
		"path_found", resp.PathFound,
	)

	return resp, nil
}

// Compare решает обоими методами параллельно и сравнивает итоговые состояния
func (s *SolverService) Compare(ctx context.Context, req *solverv1.CompareRequest) (*solverv1.CompareResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "SolverService.Compare",
		trace.WithAttributes(telemetry.SolveAttributes("compare", req.SourceId, req.TargetId)...),
	)
	defer span.End()

	if err := req.Validate(); err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}

	g, err := s.prepareGraph(req.Graph)
	if err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}

	var gs, jac *algorithms.Result
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		gs, err = s.run(egCtx, g, req.SourceId, req.TargetId, algorithms.MethodGaussSeidel)
		return err
	})
	eg.Go(func() error {
		var err error
		jac, err = s.run(egCtx, g, req.SourceId, req.TargetId, algorithms.MethodJacobi)
		return err
	})
	if err := eg.Wait(); err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}

	cmp := algorithms.Compare(gs, jac)
	s.metrics.RecordComparison(cmp.Agree())
	span.SetAttributes(attribute.Bool(telemetry.AttrSolveAgree, cmp.Agree()))

	if !cmp.Agree() {
		logger.WithContext(ctx).Warn("Methods disagree",
			"mismatched_nodes", cmp.MismatchedNodes,
			"negative_weights", g.HasNegativeWeights(),
		)
	}

	mismatched := cmp.MismatchedNodes
	if mismatched == nil {
		mismatched = []string{}
	}

	return &solverv1.CompareResponse{
		GaussSeidel:       converter.ToSolveResult(gs),
		Jacobi:            converter.ToSolveResult(jac),
		ValuesAgree:       cmp.ValuesAgree,
		PredecessorsAgree: cmp.PredecessorsAgree,
		MismatchedNodes:   mismatched,
		Path:              gs.Path(),
	}, nil
}

// ReconstructPath восстанавливает маршрут по карте предшественников.
// С графом в запросе дополнительно считает вес и рёбра маршрута.
func (s *SolverService) ReconstructPath(ctx context.Context, req *solverv1.PathRequest) (*solverv1.PathResponse, error) {
	_, span := telemetry.StartSpan(ctx, "SolverService.ReconstructPath")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	path := domain.ReconstructPath(req.Predecessors, req.SourceId, req.TargetId)
	resp := &solverv1.PathResponse{
		Path:  path,
		Found: len(path) > 0,
	}

	if req.Graph != nil && resp.Found {
		g, err := converter.ToDomainGraph(req.Graph)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInvalidGraph, err.Error())
		}
		resp.Weight = converter.ToWireValue(domain.PathWeight(g, path))
		resp.EdgeIds = domain.PathEdges(g, path)
	}

	span.SetAttributes(attribute.Bool(telemetry.AttrSolvePathFound, resp.Found))
	return resp, nil
}

// GetTrace воспроизводит сохранённую трассу
func (s *SolverService) GetTrace(ctx context.Context, req *solverv1.GetTraceRequest) (*solverv1.SolveResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "SolverService.GetTrace",
		trace.WithAttributes(attribute.String(telemetry.AttrTraceID, req.Id)),
	)
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireTraces(); err != nil {
		return nil, err
	}

	tr, err := s.traces.GetByID(ctx, req.Id)
	if err != nil {
		telemetry.SetError(ctx, err)
		return nil, mapRepoError(err, req.Id)
	}

	resp, err := replay(tr)
	if err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}
	return resp, nil
}

// ListTraces возвращает страницу сохранённых трасс, новые первыми
func (s *SolverService) ListTraces(ctx context.Context, req *solverv1.ListTracesRequest) (*solverv1.ListTracesResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "SolverService.ListTraces")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireTraces(); err != nil {
		return nil, err
	}

	var methodFilter string
	if req.Method != "" {
		m, err := algorithms.ParseMethod(req.Method, "")
		if err != nil {
			return nil, err
		}
		methodFilter = m.String()
	}

	opts := &repository.ListOptions{
		Limit:  int(req.Limit),
		Offset: int(req.Offset),
		Method: methodFilter,
	}

	list, total, err := s.traces.List(ctx, opts)
	if err != nil {
		telemetry.SetError(ctx, err)
		return nil, apperror.Wrap(err, apperror.CodeUnavailable, "failed to list traces")
	}

	out := make([]*solverv1.TraceSummary, len(list))
	for i, t := range list {
		out[i] = toWireSummary(t)
	}

	span.SetAttributes(attribute.Int("traces.count", len(out)))

	return &solverv1.ListTracesResponse{
		Traces:     out,
		TotalCount: total,
		HasMore:    int64(req.Offset)+int64(len(out)) < total,
	}, nil
}

// DeleteTrace удаляет сохранённую трассу
func (s *SolverService) DeleteTrace(ctx context.Context, req *solverv1.DeleteTraceRequest) (*solverv1.DeleteTraceResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "SolverService.DeleteTrace",
		trace.WithAttributes(attribute.String(telemetry.AttrTraceID, req.Id)),
	)
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireTraces(); err != nil {
		return nil, err
	}

	if err := s.traces.Delete(ctx, req.Id); err != nil {
		telemetry.SetError(ctx, err)
		return nil, mapRepoError(err, req.Id)
	}

	logger.WithContext(ctx).Info("Trace deleted", "trace_id", req.Id)
	return &solverv1.DeleteTraceResponse{Deleted: true}, nil
}

// GetMethods возвращает каталог методов
func (s *SolverService) GetMethods(ctx context.Context, _ *solverv1.GetMethodsRequest) (*solverv1.GetMethodsResponse, error) {
	_, span := telemetry.StartSpan(ctx, "SolverService.GetMethods")
	defer span.End()

	methods := converter.ToWireMethods(algorithms.Methods())
	span.SetAttributes(attribute.Int("methods.count", len(methods)))

	return &solverv1.GetMethodsResponse{
		Methods:       methods,
		DefaultMethod: s.opts.DefaultMethod.String(),
	}, nil
}

// =============================================================================
// Helpers
// =============================================================================

// prepareGraph конвертирует граф и проверяет лимиты размера
func (s *SolverService) prepareGraph(wire *solverv1.Graph) (*domain.Graph, error) {
	g, err := converter.ToDomainGraph(wire)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidGraph, err.Error()).WithField("graph")
	}

	if s.opts.MaxNodes > 0 && g.NodeCount() > s.opts.MaxNodes {
		return nil, apperror.Newf(apperror.CodeGraphTooLarge,
			"graph has %d nodes, limit is %d", g.NodeCount(), s.opts.MaxNodes).WithField("graph.nodes")
	}
	if s.opts.MaxEdges > 0 && g.EdgeCount() > s.opts.MaxEdges {
		return nil, apperror.Newf(apperror.CodeGraphTooLarge,
			"graph has %d edges, limit is %d", g.EdgeCount(), s.opts.MaxEdges).WithField("graph.edges")
	}

	s.metrics.RecordGraphSize("solve", g.NodeCount(), g.EdgeCount())
	return g, nil
}

// run запускает решатель с таймаутом и пишет метрики
func (s *SolverService) run(ctx context.Context, g *domain.Graph, sourceID, targetID string, method algorithms.Method) (*algorithms.Result, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	ctx, span := telemetry.StartSpan(ctx, "algorithms."+method.String())
	defer span.End()

	result, err := algorithms.Solve(ctx, g, sourceID, targetID, method)
	if err != nil {
		s.metrics.RecordSolveError(method.String(), string(apperror.Code(err)))
		telemetry.SetError(ctx, err)
		return nil, err
	}

	s.metrics.RecordSolve(method.String(), result.Duration, result.Sweeps, len(result.Steps))
	span.SetAttributes(telemetry.ResultAttributes(result.Sweeps, len(result.Steps), result.SourceValue().IsFinite())...)

	return result, nil
}

func (s *SolverService) lookupCache(ctx context.Context, key cache.SolveKey, skip bool) (*solverv1.SolveResponse, bool) {
	if s.solverCache == nil || skip {
		return nil, false
	}

	cached, found, err := s.solverCache.Get(ctx, key)
	if err != nil {
		logger.WithContext(ctx).Warn("Cache lookup failed", "error", err)
		return nil, false
	}
	s.metrics.RecordCacheLookup(found)
	if !found {
		return nil, false
	}

	telemetry.AddEvent(ctx, "cache_hit", attribute.String(telemetry.AttrGraphHash, key.GraphHash))
	cached.CacheHit = true
	cached.TraceId = ""
	return cached, true
}

func (s *SolverService) storeCache(ctx context.Context, key cache.SolveKey, resp *solverv1.SolveResponse) {
	if s.solverCache == nil {
		return
	}
	if err := s.solverCache.Set(ctx, key, resp, s.opts.CacheTTL); err != nil {
		logger.WithContext(ctx).Warn("Failed to cache solve result", "error", err)
	}
}

// persist сохраняет граф и трассу, возвращает ID записи
func (s *SolverService) persist(ctx context.Context, g *domain.Graph, graphHash string, resp *solverv1.SolveResponse) (string, error) {
	if s.traces == nil {
		return "", apperror.New(apperror.CodeUnavailable, "trace storage is disabled")
	}

	graphJSON, err := json.Marshal(converter.ToWireGraph(g))
	if err != nil {
		return "", apperror.Wrap(err, apperror.CodeInternal, "failed to encode graph")
	}
	resultJSON, err := json.Marshal(resp.Result)
	if err != nil {
		return "", apperror.Wrap(err, apperror.CodeInternal, "failed to encode trace")
	}

	tr := &repository.Trace{
		Method:      resp.Result.Method,
		SourceID:    resp.Result.SourceId,
		TargetID:    resp.Result.TargetId,
		GraphHash:   graphHash,
		NodeCount:   g.NodeCount(),
		EdgeCount:   g.EdgeCount(),
		StepCount:   len(resp.Result.Steps),
		SourceValue: resp.Result.FinalValues[resp.Result.SourceId],
		PathFound:   resp.PathFound,
		Path:        resp.Path,
		Graph:       graphJSON,
		Result:      resultJSON,
	}

	if err := s.traces.Save(ctx, tr); err != nil {
		return "", apperror.Wrap(err, apperror.CodeUnavailable, "failed to persist trace")
	}

	s.metrics.RecordTraceStored(tr.Method)
	return tr.ID, nil
}

func (s *SolverService) requireTraces() error {
	if s.traces == nil {
		return apperror.New(apperror.CodeUnavailable, "trace storage is disabled")
	}
	return nil
}

// buildSolveResponse собирает ответ: трасса, маршрут, его вес и рёбра
func buildSolveResponse(g *domain.Graph, result *algorithms.Result) *solverv1.SolveResponse {
	path := domain.BuildPath(g, result.FinalPredecessors, result.SourceID, result.TargetID)

	edges := domain.PathEdges(g, path.Nodes)
	if edges == nil {
		edges = []string{}
	}

	return &solverv1.SolveResponse{
		Result:     converter.ToSolveResult(result),
		Path:       path.Nodes,
		PathEdges:  edges,
		PathWeight: converter.ToWireValue(path.Weight),
		PathFound:  path.Found(),
		Metrics: &solverv1.SolveMetrics{
			ComputeTimeMs: float64(result.Duration.Microseconds()) / 1000,
			Sweeps:        int32(result.Sweeps),
			Steps:         int32(len(result.Steps)),
			NodeCount:     int32(g.NodeCount()),
			EdgeCount:     int32(g.EdgeCount()),
		},
	}
}

// replay восстанавливает ответ Solve из сохранённой записи
func replay(tr *repository.Trace) (*solverv1.SolveResponse, error) {
	var wireResult solverv1.SolveResult
	if err := json.Unmarshal(tr.Result, &wireResult); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeTraceCorrupted, "stored trace is not valid JSON")
	}
	result, err := converter.FromSolveResult(&wireResult)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeTraceCorrupted, fmt.Sprintf("stored trace %s is corrupted: %v", tr.ID, err))
	}

	var wireGraph solverv1.Graph
	if err := json.Unmarshal(tr.Graph, &wireGraph); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeTraceCorrupted, "stored graph is not valid JSON")
	}
	g, err := converter.ToDomainGraph(&wireGraph)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeTraceCorrupted, "stored graph is corrupted")
	}

	resp := buildSolveResponse(g, result)
	resp.Result = &wireResult
	resp.TraceId = tr.ID
	resp.Metrics.ComputeTimeMs = 0
	return resp, nil
}

func toWireSummary(t *repository.TraceSummary) *solverv1.TraceSummary {
	return &solverv1.TraceSummary{
		Id:          t.ID,
		Method:      t.Method,
		SourceId:    t.SourceID,
		TargetId:    t.TargetID,
		GraphHash:   t.GraphHash,
		NodeCount:   int32(t.NodeCount),
		EdgeCount:   int32(t.EdgeCount),
		StepCount:   int32(t.StepCount),
		SourceValue: t.SourceValue,
		PathFound:   t.PathFound,
		CreatedAt:   t.CreatedAt,
	}
}

func mapRepoError(err error, id string) error {
	if errors.Is(err, repository.ErrTraceNotFound) {
		return apperror.NewWithField(apperror.CodeNotFound, fmt.Sprintf("trace %s not found", id), "id")
	}
	return apperror.Wrap(err, apperror.CodeUnavailable, "trace storage error")
}
