package repository

import (
	"context"
	"fmt"

	"bellman/pkg/config"
	"bellman/pkg/database"
	"bellman/pkg/logger"
	"bellman/pkg/metrics"
	"bellman/services/solver-svc/migrations"
)

// Repositories контейнер репозиториев
type Repositories struct {
	Traces TraceRepository
	db     *database.PostgresDB // Для закрытия при shutdown
}

// Close закрывает соединения
func (r *Repositories) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// Ping проверяет доступность хранилища; in-memory всегда доступно
func (r *Repositories) Ping(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	return r.db.HealthCheck(ctx)
}

// Persistent сообщает, переживут ли трассы рестарт
func (r *Repositories) Persistent() bool {
	return r.db != nil
}

// PoolStats снимок пула PostgreSQL; для in-memory нули
func (r *Repositories) PoolStats() metrics.PoolStats {
	if r.db == nil {
		return metrics.PoolStats{}
	}
	st := r.db.Pool().Stat()
	return metrics.PoolStats{
		Total:        st.TotalConns(),
		Idle:         st.IdleConns(),
		Acquired:     st.AcquiredConns(),
		AcquireCount: st.AcquireCount(),
		EmptyWaits:   st.EmptyAcquireCount(),
	}
}

// NewRepositories выбирает PostgreSQL при database.enabled, иначе память
func NewRepositories(ctx context.Context, cfg *config.DatabaseConfig) (*Repositories, error) {
	if !cfg.Enabled {
		logger.Log.Info("Trace repository: in-memory")
		return &Repositories{Traces: NewMemoryTraceRepository()}, nil
	}

	db, err := database.NewPostgresDB(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := database.RunMigrations(ctx, db.Pool(), cfg, migrations.FS); err != nil {
		db.Close()
		return nil, err
	}

	logger.Log.Info("Trace repository: postgres", "database", cfg.Database)
	return &Repositories{
		Traces: NewPostgresTraceRepository(db),
		db:     db,
	}, nil
}
