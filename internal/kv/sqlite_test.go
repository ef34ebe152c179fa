package kv

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	s := NewSQLiteStore(db)
	require.NoError(t, s.Init(context.Background()))
	return s
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	s := setupSQLiteStore(t)

	v, err := s.Get(context.Background(), "absent")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, v)
}

func TestSQLiteStore_SetUpserts(t *testing.T) {
	s := setupSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "medexa:currentUser", []byte(`{"uid":"a"}`)))
	require.NoError(t, s.Set(ctx, "medexa:currentUser", []byte(`{"uid":"b"}`)))

	v, err := s.Get(ctx, "medexa:currentUser")
	require.NoError(t, err)
	assert.JSONEq(t, `{"uid":"b"}`, string(v))
}

func TestSQLiteStore_RemoveIsIdempotent(t *testing.T) {
	s := setupSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	require.NoError(t, s.Remove(ctx, "k"))
	require.NoError(t, s.Remove(ctx, "k"))

	_, err := s.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_DriverErrorsAreWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("disk I/O error")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv WHERE key = ?`)).
		WithArgs("k").
		WillReturnError(boom)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv`)).
		WillReturnError(boom)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM kv WHERE key = ?`)).
		WithArgs("k").
		WillReturnError(boom)

	s := NewSQLiteStore(db)
	ctx := context.Background()

	_, err = s.Get(ctx, "k")
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, s.Set(ctx, "k", []byte("v")), boom)
	require.ErrorIs(t, s.Remove(ctx, "k"), boom)

	require.NoError(t, mock.ExpectationsWereMet())
}
