package database

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"bellman/pkg/config"
	"bellman/pkg/logger"
)

// Migrator применяет goose миграции из fs.FS
type Migrator struct {
	pool       *pgxpool.Pool
	migrations fs.FS
}

// NewMigrator создаёт мигратор; migrations - корень с *.sql файлами
func NewMigrator(pool *pgxpool.Pool, migrations fs.FS) *Migrator {
	return &Migrator{
		pool:       pool,
		migrations: migrations,
	}
}

func (m *Migrator) provider() (*goose.Provider, func() error, error) {
	db := stdlib.OpenDBFromPool(m.pool)

	p, err := goose.NewProvider(goose.DialectPostgres, db, m.migrations)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return p, db.Close, nil
}

// Up применяет все миграции
func (m *Migrator) Up(ctx context.Context) error {
	p, closeDB, err := m.provider()
	if err != nil {
		return err
	}
	defer closeDB() //nolint:errcheck // закрытие обёртки над пулом

	results, err := p.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	for _, r := range results {
		logger.Log.Info("Migration applied",
			"version", r.Source.Version,
			"path", r.Source.Path,
			"duration", r.Duration,
		)
	}
	return nil
}

// Down откатывает последнюю миграцию
func (m *Migrator) Down(ctx context.Context) error {
	p, closeDB, err := m.provider()
	if err != nil {
		return err
	}
	defer closeDB() //nolint:errcheck // закрытие обёртки над пулом

	r, err := p.Down(ctx)
	if err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	logger.Log.Info("Migration rolled back", "version", r.Source.Version)
	return nil
}

// Version возвращает текущую версию схемы
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	p, closeDB, err := m.provider()
	if err != nil {
		return 0, err
	}
	defer closeDB() //nolint:errcheck // закрытие обёртки над пулом

	return p.GetDBVersion(ctx)
}

// RunMigrations запускает миграции если включено в конфигурации
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, cfg *config.DatabaseConfig, migrations fs.FS) error {
	if !cfg.AutoMigrate {
		logger.Log.Info("Auto-migration is disabled")
		return nil
	}

	return NewMigrator(pool, migrations).Up(ctx)
}
