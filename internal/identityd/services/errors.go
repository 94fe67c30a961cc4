package services

import (
	"errors"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("Incorrect email or password")
	ErrUnauthorized       = errors.New("Could not validate credentials")
	ErrEmailTaken         = errors.New("Email already registered")
	ErrInvalidResetToken  = errors.New("Invalid or expired token")
	ErrInternal           = errors.New("internal error")
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field string
	Msg   string
}

// ValidationError lists every invalid field of a request, in input order.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Msg
	}
	return strings.Join(msgs, ", ")
}

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Msg: msg})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
