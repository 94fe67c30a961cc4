package resettokens

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/videotec/internal/identityd/models"
)

type MemoryRepository struct {
	mu     sync.Mutex
	tokens map[string]models.ResetToken
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tokens: make(map[string]models.ResetToken)}
}

func (r *MemoryRepository) Create(_ context.Context, userID, token string, validity time.Duration) error {
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = models.ResetToken{Token: token, UserID: userID, ExpiresAt: now.Add(validity), CreatedAt: now}
	return nil
}

func (r *MemoryRepository) Consume(_ context.Context, token string) (*models.ResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return nil, models.ErrNotFound
	}
	delete(r.tokens, token)
	return &t, nil
}
