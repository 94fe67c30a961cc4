// Package resettokens stores one-time password reset tokens.
package resettokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/videotec/internal/identityd/models"
)

// Repository defines operations for issuing and redeeming reset tokens.
type Repository interface {
	// Create stores token for userID with an expiry of now+validity.
	Create(ctx context.Context, userID, token string, validity time.Duration) error

	// Consume deletes token and returns it. Unknown or already consumed
	// tokens yield models.ErrNotFound; expiry is left to the caller.
	Consume(ctx context.Context, token string) (*models.ResetToken, error)
}
