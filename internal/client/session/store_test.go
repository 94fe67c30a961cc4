package session

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/videotec/internal/client/models"
	"github.com/dmitrijs2005/videotec/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/videotec/internal/client/storage"
	"github.com/dmitrijs2005/videotec/internal/logging"
)

func strPtr(s string) *string { return &s }

func sampleRecord() models.PersistedRecord {
	return models.PersistedRecord{
		Credential: "tok-1",
		ProfileSnapshot: models.UserProfile{
			Email:       "a@x.com",
			FullName:    "A One",
			DateOfBirth: strPtr("1990-01-01"),
		},
	}
}

func newSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.OpenDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// backends returns every store that can run without external services.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": NewSQLiteStore(newSQLiteDB(t), "tty1", logging.NewNop()),
	}
}

func TestStore_RoundTrip(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := sampleRecord()

			s.Save(ctx, rec)
			got := s.Load(ctx)
			require.NotNil(t, got)
			if diff := cmp.Diff(rec, *got); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStore_RoundTripNilDateOfBirth(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := models.PersistedRecord{Credential: "tok-2", ProfileSnapshot: models.UserProfile{Email: "b@x.com"}}

			s.Save(ctx, rec)
			got := s.Load(ctx)
			require.NotNil(t, got)
			assert.Equal(t, rec, *got)
		})
	}
}

func TestStore_SaveOverwrites(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s.Save(ctx, sampleRecord())

			next := models.PersistedRecord{Credential: "tok-9", ProfileSnapshot: models.UserProfile{Email: "z@x.com", FullName: "Z"}}
			s.Save(ctx, next)

			got := s.Load(ctx)
			require.NotNil(t, got)
			assert.Equal(t, next, *got)
		})
	}
}

func TestStore_LoadEmptyAndClearIdempotent(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			assert.Nil(t, s.Load(ctx))

			s.Save(ctx, sampleRecord())
			s.Clear(ctx)
			assert.Nil(t, s.Load(ctx))

			s.Clear(ctx)
			assert.Nil(t, s.Load(ctx))
		})
	}
}

func TestMemoryStore_LoadReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.Save(ctx, sampleRecord())

	got := s.Load(ctx)
	*got.ProfileSnapshot.DateOfBirth = "changed"

	assert.Equal(t, "1990-01-01", *s.Load(ctx).ProfileSnapshot.DateOfBirth)
}

func TestSQLiteStore_PartialOrCorruptRecordIsAbsent(t *testing.T) {
	tests := []struct {
		name   string
		values map[string][]byte
	}{
		{"token only", map[string][]byte{KeyAccessToken: []byte("tok-1")}},
		{"profile only", map[string][]byte{KeyUserData: []byte(`{"email":"a@x.com"}`)}},
		{"corrupt profile", map[string][]byte{KeyAccessToken: []byte("tok-1"), KeyUserData: []byte("{not json")}},
		{"empty token", map[string][]byte{KeyAccessToken: {}, KeyUserData: []byte(`{"email":"a@x.com"}`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			db := newSQLiteDB(t)
			repo := metadata.NewSQLiteRepository(db, "tty1")
			for k, v := range tt.values {
				require.NoError(t, repo.Set(ctx, k, v))
			}

			assert.Nil(t, NewSQLiteStore(db, "tty1", logging.NewNop()).Load(ctx))
		})
	}
}

func TestSQLiteStore_ScopesAreIndependent(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	a := NewSQLiteStore(db, "a", logging.NewNop())
	b := NewSQLiteStore(db, "b", logging.NewNop())

	a.Save(ctx, sampleRecord())
	assert.Nil(t, b.Load(ctx))

	b.Save(ctx, models.PersistedRecord{Credential: "tok-b", ProfileSnapshot: models.UserProfile{Email: "b@x.com"}})
	a.Clear(ctx)

	assert.Nil(t, a.Load(ctx))
	require.NotNil(t, b.Load(ctx))
	assert.Equal(t, "tok-b", b.Load(ctx).Credential)
}

func TestSQLiteStore_FailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	s := NewSQLiteStore(db, "tty1", logging.NewNop())
	require.NoError(t, db.Close())

	assert.NotPanics(t, func() {
		s.Save(ctx, sampleRecord())
		s.Clear(ctx)
	})
	assert.Nil(t, s.Load(ctx))
}

func TestOpen_Backends(t *testing.T) {
	ctx := context.Background()

	s, closer, err := Open(ctx, Config{}, logging.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
	require.NoError(t, closer())

	s, closer, err = Open(ctx, Config{Backend: BackendSQLite, DSN: ":memory:", Scope: "x"}, logging.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, closer())

	_, _, err = Open(ctx, Config{Backend: "etcd"}, logging.NewNop())
	require.ErrorIs(t, err, ErrUnknownBackend)

	_, _, err = Open(ctx, Config{Backend: BackendRedis, RedisURL: "::not a url"}, logging.NewNop())
	require.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	ctx := context.Background()
	rdb, err := ConnectRedis(ctx, url, 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	scope := "test-" + t.Name()
	s := NewRedisStore(rdb, scope, time.Minute, logging.NewNop())
	t.Cleanup(func() { s.Clear(ctx) })

	assert.Nil(t, s.Load(ctx))

	rec := sampleRecord()
	s.Save(ctx, rec)
	got := s.Load(ctx)
	require.NotNil(t, got)
	assert.Equal(t, rec, *got)

	ttl, err := rdb.TTL(ctx, redisKeyPrefix+scope).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, rdb.HDel(ctx, redisKeyPrefix+scope, KeyUserData).Err())
	assert.Nil(t, s.Load(ctx), "partial hash must read as absent")

	s.Clear(ctx)
	assert.Nil(t, s.Load(ctx))
}

func TestOpen_SQLiteFileCreatesDirectory(t *testing.T) {
	ctx := context.Background()
	dsn := t.TempDir() + "/nested/dir/session.db"

	s, closer, err := Open(ctx, Config{Backend: BackendSQLite, DSN: dsn, Scope: "tty1"}, logging.NewNop())
	require.NoError(t, err)
	s.Save(ctx, sampleRecord())
	require.NoError(t, closer())

	s, closer, err = Open(ctx, Config{Backend: BackendSQLite, DSN: dsn, Scope: "tty1"}, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = closer() })

	got := s.Load(ctx)
	require.NotNil(t, got, "record must survive reopening the database")
	assert.Equal(t, sampleRecord(), *got)
}
