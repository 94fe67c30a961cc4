// Package services contains application services for the console.
// This file defines the account service: registration and the
// forgot/reset password flow. None of them touch the session.
package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/videotec/internal/client/identity"
	"github.com/dmitrijs2005/videotec/internal/client/models"
)

// Messages shown for forms rejected before any request is sent.
const (
	MsgPasswordsDoNotMatch = "Passwords do not match"
	MsgAllFieldsRequired   = "All fields are required"
	MsgEmailRequired       = "Email is required"
	MsgBothFieldsRequired  = "Both fields are required"
	MsgMissingResetToken   = "Invalid or missing reset token"
)

// AccountService defines the account operations of the console.
//
// Every method validates its input locally first and reports a rejected
// form as a models.ErrValidation error without contacting the server.
type AccountService interface {
	Register(ctx context.Context, form RegisterForm) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password, confirm string) error
}

type RegisterForm struct {
	FullName        string
	DateOfBirth     string
	Email           string
	Password        string
	ConfirmPassword string
}

type accountService struct {
	client identity.AccountClient
}

// NewAccountService constructs an AccountService bound to the given client.
func NewAccountService(client identity.AccountClient) AccountService {
	return &accountService{client: client}
}

func invalid(msg string) error {
	return models.NewAuthError(models.KindValidation, msg, nil)
}

func (a *accountService) Register(ctx context.Context, f RegisterForm) error {
	if f.Password != f.ConfirmPassword {
		return invalid(MsgPasswordsDoNotMatch)
	}
	if f.FullName == "" || f.DateOfBirth == "" || strings.TrimSpace(f.Email) == "" || f.Password == "" {
		return invalid(MsgAllFieldsRequired)
	}

	dob := f.DateOfBirth
	return a.client.Register(ctx, identity.RegisterRequest{
		FullName:    f.FullName,
		DateOfBirth: &dob,
		Email:       strings.TrimSpace(f.Email),
		Password:    f.Password,
	})
}

func (a *accountService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return invalid(MsgEmailRequired)
	}
	return a.client.ForgotPassword(ctx, email)
}

func (a *accountService) ResetPassword(ctx context.Context, token, password, confirm string) error {
	if password == "" || confirm == "" {
		return invalid(MsgBothFieldsRequired)
	}
	if password != confirm {
		return invalid(MsgPasswordsDoNotMatch)
	}
	if token == "" {
		return invalid(MsgMissingResetToken)
	}
	return a.client.ResetPassword(ctx, token, password)
}
