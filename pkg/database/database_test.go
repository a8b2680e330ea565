package database

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bellman/pkg/config"
	"bellman/pkg/logger"
)

func init() {
	logger.Init("error")
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestWithTransaction_Commit(t *testing.T) {
	mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO solve_graphs").
		WithArgs("abc").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := WithTransaction(ctx, mock, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, "INSERT INTO solve_graphs (graph_hash) VALUES ($1)", "abc")
		return err
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransaction_RollbackOnError(t *testing.T) {
	mock := newMock(t)
	expectedErr := errors.New("db error")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := WithTransaction(context.Background(), mock, func(pgx.Tx) error {
		return expectedErr
	})

	assert.ErrorIs(t, err, expectedErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransaction_RollbackFailure(t *testing.T) {
	mock := newMock(t)
	expectedErr := errors.New("db error")

	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(errors.New("conn lost"))

	err := WithTransaction(context.Background(), mock, func(pgx.Tx) error {
		return expectedErr
	})

	assert.ErrorIs(t, err, expectedErr)
	assert.Contains(t, err.Error(), "conn lost")
}

func TestWithTransaction_RollbackOnPanic(t *testing.T) {
	mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = WithTransaction(context.Background(), mock, func(pgx.Tx) error {
			panic("unexpected")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransaction_BeginFails(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	err := WithTransaction(context.Background(), mock, func(pgx.Tx) error {
		t.Fatal("fn must not run")
		return nil
	})
	assert.ErrorContains(t, err, "begin transaction")
}

func TestWithTransactionResult(t *testing.T) {
	mock := newMock(t)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mock.ExpectCommit()

	got, err := WithTransactionResult(context.Background(), mock, pgx.TxOptions{IsoLevel: pgx.Serializable},
		func(pgx.Tx) (int64, error) { return 42, nil })

	require.NoError(t, err)
	assert.Equal(t, int64(42), got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheck(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery("SELECT 1").WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(1))

	assert.NoError(t, HealthCheck(context.Background(), mock))

	mock.ExpectQuery("SELECT 1").WillReturnError(errors.New("down"))
	assert.ErrorContains(t, HealthCheck(context.Background(), mock), "health check failed")
}

func TestConnectionString(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:     "db",
		Port:     5432,
		Database: "bellman",
		Username: "solver",
		Password: "p@ss/word",
		SSLMode:  "disable",
	}

	assert.Equal(t, "postgres://solver:p%40ss%2Fword@db:5432/bellman?sslmode=disable", ConnectionString(cfg))

	cfg.Username, cfg.SSLMode = "", ""
	assert.Equal(t, "postgres://db:5432/bellman", ConnectionString(cfg))
}
