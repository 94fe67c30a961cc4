// Package repomanager vends the identity service's repositories for a
// storage backend, so services can bind them to a *sql.DB or a transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/videotec/internal/dbx"
	"github.com/dmitrijs2005/videotec/internal/identityd/repositories/resettokens"
	"github.com/dmitrijs2005/videotec/internal/identityd/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	ResetTokens(db dbx.DBTX) resettokens.Repository
}
