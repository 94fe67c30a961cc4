package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"

	"github.com/dmitrijs2005/videotec/internal/client/models"
	"github.com/dmitrijs2005/videotec/internal/common"
	"github.com/dmitrijs2005/videotec/internal/logging"
	"github.com/dmitrijs2005/videotec/internal/telemetry"
	"github.com/dmitrijs2005/videotec/internal/timex"
)

const (
	pathToken          = "/auth/token"
	pathMe             = "/users/me"
	pathLogout         = "/auth/logout"
	pathRegister       = "/auth/register"
	pathForgotPassword = "/auth/forgot-password"
	pathResetPassword  = "/auth/reset-password"

	msgLoginFailed         = "Login failed"
	msgProfileFailed       = "Failed to fetch profile"
	msgRegistrationFailed  = "Registration failed"
	msgForgotFailed        = "Failed to send reset link"
	msgResetPasswordFailed = "Password reset failed"
	msgRequestTimedOut     = "Request timed out"
)

type Config struct {
	BaseURL string `json:"base_url" yaml:"base_url" env:"API_BASE_URL"`
	// RequestTimeout bounds every call. Zero means no bound.
	RequestTimeout timex.Duration `json:"request_timeout" yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
}

// HTTPClient implements Client and AccountClient over the REST contract of
// the identity service.
type HTTPClient struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	log        logging.Logger
}

var (
	_ Client        = (*HTTPClient)(nil)
	_ AccountClient = (*HTTPClient)(nil)
)

// NewHTTPClient creates a client for cfg.BaseURL. If httpClient is nil,
// http.DefaultClient's transport is used.
func NewHTTPClient(cfg Config, httpClient *http.Client, log logging.Logger) *HTTPClient {
	base := http.DefaultTransport
	if httpClient != nil && httpClient.Transport != nil {
		base = httpClient.Transport
	}

	hc := &http.Client{Transport: &requestIDTransport{base: base}}
	if httpClient != nil {
		hc.Timeout = httpClient.Timeout
		hc.Jar = httpClient.Jar
	}

	return &HTTPClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		timeout:    cfg.RequestTimeout.Duration,
		httpClient: hc,
		log:        log.With("component", "identity"),
	}
}

// requestIDTransport stamps every outgoing request with a fresh request ID
// unless the caller already set one.
type requestIDTransport struct {
	base http.RoundTripper
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(common.RequestIDHeader) != "" {
		return t.base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set(common.RequestIDHeader, uuid.NewString())
	return t.base.RoundTrip(r)
}

// begin starts the span of one call and applies the configured timeout.
func (c *HTTPClient) begin(ctx context.Context, name, path string) (context.Context, trace.Span, context.CancelFunc) {
	ctx, span := telemetry.Tracer().Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("url.path", path)),
	)
	if c.timeout <= 0 {
		return ctx, span, func() {}
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	return ctx, span, cancel
}

// end records err on span and ends it.
func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// timedOut reports whether the call failed because its own deadline
// fired, as opposed to the caller cancelling.
func timedOut(callCtx, parent context.Context) bool {
	return errors.Is(callCtx.Err(), context.DeadlineExceeded) && parent.Err() == nil
}

func (c *HTTPClient) transportError(callCtx, parent context.Context, fallback string, err error) *models.AuthError {
	if timedOut(callCtx, parent) {
		return models.NewAuthError(models.KindTimeout, msgRequestTimedOut, err)
	}
	return models.NewAuthError(models.KindNetwork, fallback, err)
}

func (c *HTTPClient) Authenticate(ctx context.Context, email, password string) (token string, err error) {
	callCtx, span, cancel := c.begin(ctx, "identity.authenticate", pathToken)
	defer cancel()
	defer func() { end(span, err) }()

	conf := &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.baseURL + pathToken,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	callCtx = context.WithValue(callCtx, oauth2.HTTPClient, c.httpClient)

	tok, err := conf.PasswordCredentialsToken(callCtx, email, password)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			span.SetAttributes(attribute.Int("http.response.status_code", re.Response.StatusCode))
			return "", mapTokenError(re.Response.StatusCode, re.Body, err)
		}
		return "", c.transportError(callCtx, ctx, msgLoginFailed, err)
	}

	if tok.AccessToken == "" {
		return "", models.NewAuthError(models.KindNetwork, msgLoginFailed, nil)
	}
	return tok.AccessToken, nil
}

func (c *HTTPClient) FetchProfile(ctx context.Context, credential string) (profile models.UserProfile, err error) {
	callCtx, span, cancel := c.begin(ctx, "identity.fetch_profile", pathMe)
	defer cancel()
	defer func() { end(span, err) }()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, c.baseURL+pathMe, nil)
	if err != nil {
		return profile, models.NewAuthError(models.KindNetwork, msgProfileFailed, fmt.Errorf("new request: %w", err))
	}
	req.Header.Set(common.AuthorizationHeader, common.BearerValue(credential))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return profile, c.transportError(callCtx, ctx, msgProfileFailed, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return profile, mapStatusError(resp.StatusCode, msgProfileFailed)
	}

	// The status alone validates the credential; a body that does not
	// decode leaves every field absent.
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		c.log.Warn(ctx, "undecodable profile body", "error", err)
		return models.UserProfile{}, nil
	}
	return profile, nil
}

func (c *HTTPClient) Invalidate(ctx context.Context, credential string) (res models.InvalidateResult) {
	callCtx, span, cancel := c.begin(ctx, "identity.invalidate", pathLogout)
	defer cancel()
	defer func() { end(span, res.Err) }()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+pathLogout, nil)
	if err != nil {
		return models.InvalidateResult{Err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set(common.AuthorizationHeader, common.BearerValue(credential))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.InvalidateResult{Err: c.transportError(callCtx, ctx, "Logout failed", err)}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	return models.InvalidateResult{StatusCode: resp.StatusCode}
}

func (c *HTTPClient) Register(ctx context.Context, in RegisterRequest) error {
	return c.postJSON(ctx, "identity.register", pathRegister, in, msgRegistrationFailed)
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) error {
	return c.postJSON(ctx, "identity.forgot_password", pathForgotPassword,
		map[string]string{"email": email}, msgForgotFailed)
}

func (c *HTTPClient) ResetPassword(ctx context.Context, token, password string) error {
	return c.postJSON(ctx, "identity.reset_password", pathResetPassword,
		map[string]string{"token": token, "password": password}, msgResetPasswordFailed)
}

func (c *HTTPClient) postJSON(ctx context.Context, name, path string, in any, fallback string) (err error) {
	callCtx, span, cancel := c.begin(ctx, name, path)
	defer cancel()
	defer func() { end(span, err) }()

	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return models.NewAuthError(models.KindNetwork, fallback, fmt.Errorf("new request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportError(callCtx, ctx, fallback, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapAccountError(resp.StatusCode, raw, fallback)
	}
	return nil
}
