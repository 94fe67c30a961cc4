package services

import (
	"sync"
	"time"
)

// revocations remembers revoked token IDs until the token would have
// expired anyway.
type revocations struct {
	mu  sync.Mutex
	ids map[string]time.Time
	now func() time.Time
}

func newRevocations() *revocations {
	return &revocations{ids: make(map[string]time.Time), now: time.Now}
}

func (r *revocations) revoke(id string, expires time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for k, exp := range r.ids {
		if !exp.After(now) {
			delete(r.ids, k)
		}
	}
	r.ids[id] = expires
}

func (r *revocations) revoked(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.ids[id]
	return ok
}
