// Package users declares the identity service's user repository and its
// PostgreSQL and in-memory implementations.
package users

import (
	"context"

	"github.com/dmitrijs2005/videotec/internal/identityd/models"
)

// Repository stores user accounts keyed by a unique email.
type Repository interface {
	// Create inserts user and fills its ID and CreatedAt. A taken email
	// yields models.ErrDuplicate.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail returns models.ErrNotFound when no user has email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	GetByID(ctx context.Context, id string) (*models.User, error)

	UpdatePassword(ctx context.Context, id string, hash []byte) error
}
