// Package httpapi exposes the identity service over HTTP: the password
// token endpoint, the current-user profile, logout and the account flows.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/videotec/internal/identityd/auth"
	"github.com/dmitrijs2005/videotec/internal/identityd/models"
	"github.com/dmitrijs2005/videotec/internal/identityd/services"
	"github.com/dmitrijs2005/videotec/internal/logging"
)

// UserService is the business logic the handlers call into.
type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.Token, error)
	Authorize(ctx context.Context, token string) (*auth.Claims, error)
	Profile(ctx context.Context, claims *auth.Claims) (*models.User, error)
	Logout(ctx context.Context, claims *auth.Claims)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, password string) error
}

var _ UserService = (*services.UserService)(nil)

const maxBodyBytes = 1 << 20

type Handler struct {
	users UserService
	log   logging.Logger
}

// NewRouter mounts every endpoint of the identity service.
func NewRouter(users UserService, log logging.Logger) chi.Router {
	h := &Handler{users: users, log: log.With("component", "http")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/token", h.Token)
		r.Post("/register", h.Register)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password", h.ResetPassword)
		r.With(h.bearerAuth).Post("/logout", h.Logout)
	})
	r.With(h.bearerAuth).Get("/users/me", h.Me)

	return r
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
}

type profileResponse struct {
	Email       string  `json:"email"`
	FullName    string  `json:"full_name"`
	DateOfBirth *string `json:"date_of_birth"`
}

type registerRequest struct {
	FullName    string  `json:"full_name"`
	DateOfBirth *string `json:"date_of_birth"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type detailResponse struct {
	Detail any `json:"detail"`
}

type detailItem struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// Token implements the OAuth2 password grant over a form body.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, detailResponse{Detail: "Invalid form body"})
		return
	}

	if gt := r.PostForm.Get("grant_type"); gt != "" && gt != "password" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
		return
	}

	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")

	var missing []detailItem
	if username == "" {
		missing = append(missing, missingField("username", "Email is required"))
	}
	if password == "" {
		missing = append(missing, missingField("password", "Password is required"))
	}
	if len(missing) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, detailResponse{Detail: missing})
		return
	}

	tok, err := h.users.Login(r.Context(), username, password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: tok.AccessToken,
		TokenType:   "bearer",
		ExpiresIn:   int64(tok.ExpiresIn.Seconds()),
	})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Profile(r.Context(), claimsFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Email: u.Email, FullName: u.FullName, DateOfBirth: u.DateOfBirth})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.users.Logout(r.Context(), claimsFrom(r.Context()))
	writeJSON(w, http.StatusOK, messageResponse{Message: "Successfully logged out"})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}

	if _, err := h.users.Register(r.Context(), services.RegisterInput{
		FullName:    req.FullName,
		DateOfBirth: req.DateOfBirth,
		Email:       req.Email,
		Password:    req.Password,
	}); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, messageResponse{Message: "User registered"})
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	if _, err := h.users.ForgotPassword(r.Context(), req.Email); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "If the email is registered, a reset link has been sent"})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.users.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Password has been reset"})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, detailResponse{Detail: "Invalid request body"})
		return false
	}
	return true
}

// writeError maps service errors onto status codes and the detail envelope.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		items := make([]detailItem, len(verr.Fields))
		for i, f := range verr.Fields {
			items[i] = detailItem{Loc: []string{"body", f.Field}, Msg: f.Msg, Type: "value_error"}
		}
		writeJSON(w, http.StatusUnprocessableEntity, detailResponse{Detail: items})
	case errors.Is(err, services.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, detailResponse{Detail: err.Error()})
	case errors.Is(err, services.ErrUnauthorized):
		unauthorized(w)
	case errors.Is(err, services.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, detailResponse{Detail: err.Error()})
	case errors.Is(err, services.ErrInvalidResetToken):
		writeJSON(w, http.StatusBadRequest, detailResponse{Detail: err.Error()})
	default:
		h.log.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, detailResponse{Detail: "Internal server error"})
	}
}

func missingField(field, msg string) detailItem {
	return detailItem{Loc: []string{"body", field}, Msg: msg, Type: "value_error.missing"}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeJSON(w, http.StatusUnauthorized, detailResponse{Detail: services.ErrUnauthorized.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
