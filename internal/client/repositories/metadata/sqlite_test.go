package metadata

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE metadata (
  scope      TEXT NOT NULL,
  key        TEXT NOT NULL,
  value      BLOB NOT NULL,
  updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (scope, key)
);`

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(schema)
	require.NoError(t, err)
	return db
}

func TestSet_InsertThenList(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t), "tty1")
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "access_token", []byte("tok-1")))

	m, err := r.List(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string][]byte{"access_token": []byte("tok-1")}, m)
}

func TestList_EmptyScope(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t), "tty1")

	m, err := r.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, m)
}

func TestSet_UpsertOverwritesValue(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t), "tty1")
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("old")))
	require.NoError(t, r.Set(ctx, "k", []byte("new")))

	m, err := r.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte("new"), m["k"])
}

func TestScopesAreIsolated(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	a := NewSQLiteRepository(db, "a")
	b := NewSQLiteRepository(db, "b")

	require.NoError(t, a.Set(ctx, "access_token", []byte("tok-a")))
	require.NoError(t, b.Set(ctx, "access_token", []byte("tok-b")))

	require.NoError(t, a.Clear(ctx))

	m, err := a.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)

	m, err = b.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("tok-b"), m["access_token"], "clearing one scope must not touch another")
}

func TestList_ReturnsScopePairs(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	r := NewSQLiteRepository(db, "s")

	require.NoError(t, r.Set(ctx, "a", []byte{0xAA}))
	require.NoError(t, r.Set(ctx, "b", []byte{0xBB, 0xCC}))
	require.NoError(t, NewSQLiteRepository(db, "other").Set(ctx, "c", []byte{1}))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, m, 2)
	assert.Equal(t, []byte{0xAA}, m["a"])
	assert.Equal(t, []byte{0xBB, 0xCC}, m["b"])
}

func TestClear_IsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t), "s")
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "x", []byte{0x01}))
	require.NoError(t, r.Clear(ctx))
	require.NoError(t, r.Clear(ctx))

	m, err := r.List(ctx)
	require.NoError(t, err)
	require.Empty(t, m)
}

func TestErrorsAreWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db, "s")
	ctx := context.Background()
	require.NoError(t, db.Close())

	require.ErrorContains(t, r.Set(ctx, "k", []byte("v")), "failed to set metadata[s/k]")
	require.ErrorContains(t, r.Clear(ctx), "failed to clear metadata[s]")

	_, err := r.List(ctx)
	require.ErrorContains(t, err, "failed to list metadata[s]")
}
