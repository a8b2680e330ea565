// services/solver-svc/factory.go
package solversvc

import (
	"bellman/pkg/api/solverv1"
	"bellman/pkg/metrics"
	"bellman/services/solver-svc/internal/repository"
	"bellman/services/solver-svc/internal/service"
)

// NewLocalServer создаёт сервис решателя без внешних зависимостей:
// трассы в памяти, без кэша. Для CLI, тестов других сервисов и бенчмарков.
func NewLocalServer(version string, m *metrics.Metrics) solverv1.SolverServiceServer {
	opts := service.Options{Version: version}
	return service.NewSolverService(opts, repository.NewMemoryTraceRepository(), nil, m)
}
