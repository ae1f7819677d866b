package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_Get_Missing(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT value FROM optimizer_kv WHERE key = \$1`).
		WithArgs("optimizer/state").
		WillReturnError(pgx.ErrNoRows)

	data, err := s.Get(context.Background(), "optimizer/state")
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Get_Found(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT value FROM optimizer_kv WHERE key = \$1`).
		WithArgs("optimizer/state").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow([]byte(`{"saved_at":"2026-01-01T00:00:00Z"}`)))

	data, err := s.Get(context.Background(), "optimizer/state")
	require.NoError(t, err)
	assert.JSONEq(t, `{"saved_at":"2026-01-01T00:00:00Z"}`, string(data))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Set_Upsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO optimizer_kv`).
		WithArgs("optimizer/state", []byte(`{}`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.Set(context.Background(), "optimizer/state", []byte(`{}`))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Set_Error(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO optimizer_kv`).
		WithArgs("optimizer/state", []byte(`{}`)).
		WillReturnError(assert.AnError)

	err := s.Set(context.Background(), "optimizer/state", []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: set")
	assert.NoError(t, mock.ExpectationsWereMet())
}
