package session

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/videotec/internal/client/models"
	"github.com/dmitrijs2005/videotec/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/videotec/internal/dbx"
	"github.com/dmitrijs2005/videotec/internal/logging"
)

// SQLiteStore keeps the record in the metadata table of the local database,
// one scope per session.
type SQLiteStore struct {
	db    *sql.DB
	scope string
	log   logging.Logger
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore expects db to be migrated already (see storage.OpenDatabase).
func NewSQLiteStore(db *sql.DB, scope string, log logging.Logger) *SQLiteStore {
	return &SQLiteStore{db: db, scope: scope, log: log.With("store", "sqlite", "scope", scope)}
}

func (s *SQLiteStore) Save(ctx context.Context, rec models.PersistedRecord) {
	data, err := encodeProfile(rec.ProfileSnapshot)
	if err != nil {
		s.log.Warn(ctx, "encode session profile", "error", err)
		return
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx, s.scope)
		if err := repo.Set(ctx, KeyAccessToken, []byte(rec.Credential)); err != nil {
			return err
		}
		return repo.Set(ctx, KeyUserData, data)
	})
	if err != nil {
		s.log.Warn(ctx, "save session record", "error", err)
	}
}

func (s *SQLiteStore) Load(ctx context.Context) *models.PersistedRecord {
	values, err := metadata.NewSQLiteRepository(s.db, s.scope).List(ctx)
	if err != nil {
		s.log.Warn(ctx, "load session record", "error", err)
		return nil
	}
	return decodeRecord(ctx, s.log, values[KeyAccessToken], values[KeyUserData])
}

func (s *SQLiteStore) Clear(ctx context.Context) {
	if err := metadata.NewSQLiteRepository(s.db, s.scope).Clear(ctx); err != nil {
		s.log.Warn(ctx, "clear session record", "error", err)
	}
}
