// Package services contains the identity service's business logic. This
// file implements UserService: registration, password login with JWT access
// tokens, token revocation and the password reset flow.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/videotec/internal/common"
	"github.com/dmitrijs2005/videotec/internal/dbx"
	"github.com/dmitrijs2005/videotec/internal/identityd/auth"
	"github.com/dmitrijs2005/videotec/internal/identityd/models"
	"github.com/dmitrijs2005/videotec/internal/identityd/repositories/repomanager"
	"github.com/dmitrijs2005/videotec/internal/logging"
)

const dateLayout = "2006-01-02"

// Options configure a UserService.
type Options struct {
	SecretKey      []byte
	AccessTokenTTL time.Duration
	ResetTokenTTL  time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

type RegisterInput struct {
	FullName    string
	DateOfBirth *string
	Email       string
	Password    string
}

// Token is an issued access token.
type Token struct {
	AccessToken string
	ExpiresIn   time.Duration
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	opts        Options
	revoked     *revocations
	dummyHash   []byte
}

// NewUserService constructs a UserService. db may be nil for repository
// managers that do not use it; operations then run without a transaction.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, opts Options, log logging.Logger) (*UserService, error) {
	if len(opts.SecretKey) == 0 {
		return nil, errors.New("secret key is required")
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-password"), opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("init dummy hash: %w", err)
	}

	return &UserService{
		db:          db,
		repomanager: m,
		log:         log.With("component", "users"),
		opts:        opts,
		revoked:     newRevocations(),
		dummyHash:   dummy,
	}, nil
}

// Register validates in and creates the account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)

	verr := &ValidationError{}
	if in.FullName == "" {
		verr.add("full_name", "Full name is required")
	}
	if in.DateOfBirth != nil && *in.DateOfBirth != "" {
		if _, err := time.Parse(dateLayout, *in.DateOfBirth); err != nil {
			verr.add("date_of_birth", "Date of birth must be YYYY-MM-DD")
		}
	} else {
		in.DateOfBirth = nil
	}
	validateEmail(verr, in.Email)
	if in.Password == "" {
		verr.add("password", "Password is required")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:        in.Email,
		FullName:     in.FullName,
		DateOfBirth:  in.DateOfBirth,
		PasswordHash: hash,
	}
	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.log.Info(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// Login verifies the password and issues an access token.
func (s *UserService) Login(ctx context.Context, email, password string) (*Token, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Keep the response time of unknown emails in line with known ones.
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, ErrInternal
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	tok, _, err := auth.GenerateToken(user.ID, user.Email, s.opts.SecretKey, s.opts.AccessTokenTTL)
	if err != nil {
		return nil, ErrInternal
	}
	return &Token{AccessToken: tok, ExpiresIn: s.opts.AccessTokenTTL}, nil
}

// Authorize verifies an access token and rejects revoked ones.
func (s *UserService) Authorize(_ context.Context, token string) (*auth.Claims, error) {
	claims, err := auth.ParseToken(token, s.opts.SecretKey)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if s.revoked.revoked(claims.ID) {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// Profile returns the user the claims were issued for.
func (s *UserService) Profile(ctx context.Context, claims *auth.Claims) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, ErrInternal
	}
	return u, nil
}

// Logout revokes the token the claims came from.
func (s *UserService) Logout(ctx context.Context, claims *auth.Claims) {
	exp := time.Now()
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	s.revoked.revoke(claims.ID, exp)
	s.log.Info(ctx, "token revoked", "user_id", claims.Subject, "jti", claims.ID)
}

// ForgotPassword issues a reset token for email. Unknown emails are not
// reported; the returned token is then empty. The token is logged since
// the service sends no mail.
func (s *UserService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	verr := &ValidationError{}
	validateEmail(verr, email)
	if err := verr.orNil(); err != nil {
		return "", err
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", nil
		}
		return "", ErrInternal
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return "", ErrInternal
	}
	if err := s.repomanager.ResetTokens(s.db).Create(ctx, user.ID, token, s.opts.ResetTokenTTL); err != nil {
		return "", fmt.Errorf("error storing reset token: %w", err)
	}

	s.log.Info(ctx, "password reset token issued", "user_id", user.ID, "token", token)
	return token, nil
}

// ResetPassword redeems token and sets the new password.
func (s *UserService) ResetPassword(ctx context.Context, token, password string) error {
	verr := &ValidationError{}
	if token == "" {
		verr.add("token", "Token is required")
	}
	if password == "" {
		verr.add("password", "Password is required")
	}
	if err := verr.orNil(); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		t, err := s.repomanager.ResetTokens(tx).Consume(ctx, token)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return ErrInvalidResetToken
			}
			return fmt.Errorf("error consuming reset token: %w", err)
		}
		if t.ExpiresAt.Before(time.Now()) {
			return ErrInvalidResetToken
		}
		if err := s.repomanager.Users(tx).UpdatePassword(ctx, t.UserID, hash); err != nil {
			return fmt.Errorf("error updating password: %w", err)
		}
		s.log.Info(ctx, "password reset", "user_id", t.UserID)
		return nil
	})
}

func (s *UserService) withTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	return dbx.WithTx(ctx, s.db, nil, fn)
}

func validateEmail(verr *ValidationError, email string) {
	if email == "" {
		verr.add("email", "Email is required")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		verr.add("email", "Email is invalid")
	}
}
