package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/videotec/internal/client/models"
)

// MemoryStore keeps the record for the lifetime of the process.
type MemoryStore struct {
	mu  sync.RWMutex
	rec *models.PersistedRecord
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(_ context.Context, rec models.PersistedRecord) {
	if !rec.Valid() {
		m.Clear(context.Background())
		return
	}
	cp := models.PersistedRecord{Credential: rec.Credential, ProfileSnapshot: rec.ProfileSnapshot.Clone()}

	m.mu.Lock()
	m.rec = &cp
	m.mu.Unlock()
}

func (m *MemoryStore) Load(_ context.Context) *models.PersistedRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.rec == nil {
		return nil
	}
	cp := models.PersistedRecord{Credential: m.rec.Credential, ProfileSnapshot: m.rec.ProfileSnapshot.Clone()}
	return &cp
}

func (m *MemoryStore) Clear(_ context.Context) {
	m.mu.Lock()
	m.rec = nil
	m.mu.Unlock()
}
