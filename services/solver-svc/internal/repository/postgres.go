package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"bellman/pkg/database"
	"bellman/pkg/telemetry"
)

// PostgresTraceRepository PostgreSQL реализация.
// Графы дедуплицируются по хэшу в solve_graphs, трассы ссылаются на них.
type PostgresTraceRepository struct {
	db database.DB
}

// NewPostgresTraceRepository создаёт новый репозиторий
func NewPostgresTraceRepository(db database.DB) *PostgresTraceRepository {
	return &PostgresTraceRepository{db: db}
}

const (
	insertGraphQuery = `
		INSERT INTO solve_graphs (graph_hash, graph, node_count, edge_count)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (graph_hash) DO NOTHING
	`

	insertTraceQuery = `
		INSERT INTO solve_traces (
			id, method, source_id, target_id, graph_hash,
			step_count, source_value, path_found, path, result
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	selectTraceQuery = `
		SELECT
			t.id, t.method, t.source_id, t.target_id, t.graph_hash,
			g.node_count, g.edge_count, t.step_count, t.source_value,
			t.path_found, t.path, g.graph, t.result, t.created_at
		FROM solve_traces t
		JOIN solve_graphs g ON g.graph_hash = t.graph_hash
		WHERE t.id = $1
	`

	deleteTraceQuery = `DELETE FROM solve_traces WHERE id = $1 RETURNING graph_hash`

	// Граф удаляется вместе с последней ссылающейся на него трассой
	deleteOrphanGraphQuery = `
		DELETE FROM solve_graphs g
		WHERE g.graph_hash = $1
			AND NOT EXISTS (SELECT 1 FROM solve_traces t WHERE t.graph_hash = g.graph_hash)
	`
)

func (r *PostgresTraceRepository) Save(ctx context.Context, trace *Trace) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresTraceRepository.Save")
	defer span.End()

	if err := trace.validate(); err != nil {
		return err
	}
	if trace.ID == "" {
		trace.ID = uuid.New().String()
	} else if _, err := uuid.Parse(trace.ID); err != nil {
		return fmt.Errorf("%w: id %q is not a uuid", ErrInvalidTrace, trace.ID)
	}

	path := trace.Path
	if path == nil {
		path = []string{}
	}

	err := database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertGraphQuery,
			trace.GraphHash, trace.Graph, trace.NodeCount, trace.EdgeCount,
		); err != nil {
			return fmt.Errorf("insert graph: %w", err)
		}

		return tx.QueryRow(ctx, insertTraceQuery,
			trace.ID,
			trace.Method,
			trace.SourceID,
			trace.TargetID,
			trace.GraphHash,
			trace.StepCount,
			trace.SourceValue,
			trace.PathFound,
			path,
			trace.Result,
		).Scan(&trace.CreatedAt)
	})
	if err != nil {
		telemetry.SetError(ctx, err)
		return fmt.Errorf("failed to save trace: %w", err)
	}

	return nil
}

func (r *PostgresTraceRepository) GetByID(ctx context.Context, id string) (*Trace, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresTraceRepository.GetByID")
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrTraceNotFound
	}

	t := &Trace{}
	err := r.db.QueryRow(ctx, selectTraceQuery, id).Scan(
		&t.ID,
		&t.Method,
		&t.SourceID,
		&t.TargetID,
		&t.GraphHash,
		&t.NodeCount,
		&t.EdgeCount,
		&t.StepCount,
		&t.SourceValue,
		&t.PathFound,
		&t.Path,
		&t.Graph,
		&t.Result,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTraceNotFound
		}
		return nil, fmt.Errorf("failed to get trace: %w", err)
	}

	return t, nil
}

func (r *PostgresTraceRepository) List(ctx context.Context, opts *ListOptions) ([]*TraceSummary, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresTraceRepository.List")
	defer span.End()

	o := opts.normalize()
	where, args := buildWhereClause(o)

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM solve_traces t WHERE %s`, where)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count traces: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT
			t.id, t.method, t.source_id, t.target_id, t.graph_hash,
			g.node_count, g.edge_count, t.step_count, t.source_value,
			t.path_found, t.created_at
		FROM solve_traces t
		JOIN solve_graphs g ON g.graph_hash = t.graph_hash
		WHERE %s
		ORDER BY t.created_at DESC, t.id
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, o.Limit, o.Offset)

	rows, err := r.db.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list traces: %w", err)
	}
	defer rows.Close()

	results := []*TraceSummary{}
	for rows.Next() {
		s := &TraceSummary{}
		if err := rows.Scan(
			&s.ID,
			&s.Method,
			&s.SourceID,
			&s.TargetID,
			&s.GraphHash,
			&s.NodeCount,
			&s.EdgeCount,
			&s.StepCount,
			&s.SourceValue,
			&s.PathFound,
			&s.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan trace: %w", err)
		}
		results = append(results, s)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	return results, total, nil
}

func buildWhereClause(o ListOptions) (string, []any) {
	conditions := []string{"TRUE"}
	var args []any

	if o.Method != "" {
		args = append(args, o.Method)
		conditions = append(conditions, fmt.Sprintf("t.method = $%d", len(args)))
	}

	return strings.Join(conditions, " AND "), args
}

func (r *PostgresTraceRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresTraceRepository.Delete")
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		return ErrTraceNotFound
	}

	return database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		var graphHash string
		if err := tx.QueryRow(ctx, deleteTraceQuery, id).Scan(&graphHash); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrTraceNotFound
			}
			return fmt.Errorf("failed to delete trace: %w", err)
		}

		if _, err := tx.Exec(ctx, deleteOrphanGraphQuery, graphHash); err != nil {
			return fmt.Errorf("failed to delete orphan graph: %w", err)
		}
		return nil
	})
}
