package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/videotec/internal/client/identity"
	"github.com/dmitrijs2005/videotec/internal/client/models"
)

// ---- fake client ----

type fakeAccountClient struct {
	RegisterErr error
	ForgotErr   error
	ResetErr    error

	LastRegister identity.RegisterRequest
	LastForgot   string
	LastToken    string
	LastPassword string
	Calls        int
}

func (f *fakeAccountClient) Register(_ context.Context, req identity.RegisterRequest) error {
	f.Calls++
	f.LastRegister = req
	return f.RegisterErr
}

func (f *fakeAccountClient) ForgotPassword(_ context.Context, email string) error {
	f.Calls++
	f.LastForgot = email
	return f.ForgotErr
}

func (f *fakeAccountClient) ResetPassword(_ context.Context, token, password string) error {
	f.Calls++
	f.LastToken, f.LastPassword = token, password
	return f.ResetErr
}

// ---- tests ----

func validForm() RegisterForm {
	return RegisterForm{
		FullName:        "A One",
		DateOfBirth:     "1990-01-01",
		Email:           " a@x.com ",
		Password:        "pw1",
		ConfirmPassword: "pw1",
	}
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RegisterForm)
		wantMsg string
	}{
		{"password mismatch", func(f *RegisterForm) { f.ConfirmPassword = "other" }, MsgPasswordsDoNotMatch},
		{"missing name", func(f *RegisterForm) { f.FullName = "" }, MsgAllFieldsRequired},
		{"missing dob", func(f *RegisterForm) { f.DateOfBirth = "" }, MsgAllFieldsRequired},
		{"blank email", func(f *RegisterForm) { f.Email = "  " }, MsgAllFieldsRequired},
		{"missing both passwords", func(f *RegisterForm) { f.Password, f.ConfirmPassword = "", "" }, MsgAllFieldsRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeAccountClient{}
			svc := NewAccountService(fc)

			form := validForm()
			tt.mutate(&form)

			err := svc.Register(context.Background(), form)
			require.ErrorIs(t, err, models.ErrValidation)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Zero(t, fc.Calls)
		})
	}
}

func TestRegister_Sends(t *testing.T) {
	fc := &fakeAccountClient{}
	require.NoError(t, NewAccountService(fc).Register(context.Background(), validForm()))

	require.NotNil(t, fc.LastRegister.DateOfBirth)
	assert.Equal(t, "1990-01-01", *fc.LastRegister.DateOfBirth)
	assert.Equal(t, "a@x.com", fc.LastRegister.Email)
	assert.Equal(t, "A One", fc.LastRegister.FullName)
}

func TestRegister_PropagatesServerError(t *testing.T) {
	serverErr := models.NewAuthError(models.KindValidation, "Email already registered", nil)
	fc := &fakeAccountClient{RegisterErr: serverErr}

	err := NewAccountService(fc).Register(context.Background(), validForm())
	require.True(t, errors.Is(err, serverErr))
}

func TestForgotPassword(t *testing.T) {
	fc := &fakeAccountClient{}
	svc := NewAccountService(fc)

	err := svc.ForgotPassword(context.Background(), "   ")
	require.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, MsgEmailRequired, err.Error())
	assert.Zero(t, fc.Calls)

	require.NoError(t, svc.ForgotPassword(context.Background(), "a@x.com"))
	assert.Equal(t, "a@x.com", fc.LastForgot)
}

func TestResetPassword(t *testing.T) {
	tests := []struct {
		name                     string
		token, password, confirm string
		wantMsg                  string
	}{
		{"missing confirm", "t", "pw", "", MsgBothFieldsRequired},
		{"mismatch", "t", "pw", "px", MsgPasswordsDoNotMatch},
		{"missing token", "", "pw", "pw", MsgMissingResetToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeAccountClient{}
			err := NewAccountService(fc).ResetPassword(context.Background(), tt.token, tt.password, tt.confirm)
			require.ErrorIs(t, err, models.ErrValidation)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Zero(t, fc.Calls)
		})
	}

	fc := &fakeAccountClient{}
	require.NoError(t, NewAccountService(fc).ResetPassword(context.Background(), "tok", "pw", "pw"))
	assert.Equal(t, "tok", fc.LastToken)
	assert.Equal(t, "pw", fc.LastPassword)
}
