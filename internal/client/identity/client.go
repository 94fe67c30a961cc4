// Package identity talks to the remote identity service: it exchanges
// credentials for an access token, fetches the profile behind a token and
// invalidates tokens on logout. Every failure is reported as a
// *models.AuthError.
package identity

import (
	"context"

	"github.com/dmitrijs2005/videotec/internal/client/models"
)

type Client interface {
	Authenticate(ctx context.Context, email, password string) (string, error)
	FetchProfile(ctx context.Context, credential string) (models.UserProfile, error)
	// Invalidate never fails; the result is for logging only.
	Invalidate(ctx context.Context, credential string) models.InvalidateResult
}

// AccountClient covers the account flows that do not produce a session.
type AccountClient interface {
	Register(ctx context.Context, req RegisterRequest) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

type RegisterRequest struct {
	FullName    string  `json:"full_name"`
	DateOfBirth *string `json:"date_of_birth"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
}
