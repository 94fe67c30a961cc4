package models

import (
	"errors"
	"strings"
)

// ErrorKind classifies every failure surfaced by the identity layer.
type ErrorKind string

const (
	KindInvalidCredentials  ErrorKind = "invalid_credentials"
	KindValidation          ErrorKind = "validation_error"
	KindNetwork             ErrorKind = "network_error"
	KindOperationInProgress ErrorKind = "operation_in_progress"
	KindTimeout             ErrorKind = "timeout"
)

// Sentinels for errors.Is matching against an *AuthError of the same kind.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrValidation          = errors.New("validation error")
	ErrNetwork             = errors.New("network error")
	ErrOperationInProgress = errors.New("operation in progress")
	ErrTimeout             = errors.New("timeout")
)

var kindSentinels = map[ErrorKind]error{
	KindInvalidCredentials:  ErrInvalidCredentials,
	KindValidation:          ErrValidation,
	KindNetwork:             ErrNetwork,
	KindOperationInProgress: ErrOperationInProgress,
	KindTimeout:             ErrTimeout,
}

// AuthError is the single error type propagated to the presentation layer.
// Error returns a human-readable message that can be shown as is.
type AuthError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// NewAuthError builds an AuthError. cause may be nil.
func NewAuthError(kind ErrorKind, message string, cause error) *AuthError {
	return &AuthError{Kind: kind, Message: message, Err: cause}
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if s, ok := kindSentinels[e.Kind]; ok {
		return s.Error()
	}
	return string(e.Kind)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func (e *AuthError) Is(target error) bool {
	s, ok := kindSentinels[e.Kind]
	return ok && s == target
}

// KindOf returns the kind of the first AuthError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return "", false
}

// JoinMessages flattens a validation message list, keeping its order.
func JoinMessages(msgs []string) string {
	return strings.Join(msgs, ", ")
}
