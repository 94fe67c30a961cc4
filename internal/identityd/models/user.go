// Package models holds the identity service's persisted types.
package models

import "time"

type User struct {
	ID           string
	Email        string
	FullName     string
	DateOfBirth  *string
	PasswordHash []byte
	CreatedAt    time.Time
}

// ResetToken is a one-time password reset token issued for a user.
type ResetToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
