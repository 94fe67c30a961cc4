package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/videotec/internal/dbx"
	"github.com/dmitrijs2005/videotec/internal/identityd/repositories/resettokens"
	"github.com/dmitrijs2005/videotec/internal/identityd/repositories/users"
)

// MemoryRepositoryManager hands out the same in-memory repositories
// regardless of the DBTX it is given. Data lives as long as the manager.
type MemoryRepositoryManager struct {
	users  *users.MemoryRepository
	resets *resettokens.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:  users.NewMemoryRepository(),
		resets: resettokens.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.users }

func (m *MemoryRepositoryManager) ResetTokens(dbx.DBTX) resettokens.Repository { return m.resets }
