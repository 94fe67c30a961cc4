package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/videotec/internal/client/identity"
	"github.com/dmitrijs2005/videotec/internal/client/models"
	"github.com/dmitrijs2005/videotec/internal/client/session"
	"github.com/dmitrijs2005/videotec/internal/logging"
)

// fakeIdentity implements identity.Client and identity.AccountClient.
type fakeIdentity struct {
	mu sync.Mutex

	passwords map[string]string // email -> password
	profiles  map[string]models.UserProfile
	authErr   error

	invalidated []string
	registered  []identity.RegisterRequest
	forgot      []string
	resets      map[string]string // token -> new password
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{
		passwords: map[string]string{"a@x.com": "pw1"},
		profiles:  map[string]models.UserProfile{"a@x.com": {Email: "a@x.com", FullName: "A One"}},
		resets:    map[string]string{},
	}
}

func (f *fakeIdentity) Authenticate(_ context.Context, email, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.authErr != nil {
		return "", f.authErr
	}
	if pw, ok := f.passwords[email]; !ok || pw != password {
		return "", models.NewAuthError(models.KindInvalidCredentials, "Incorrect email or password", nil)
	}
	return "tok-" + email, nil
}

func (f *fakeIdentity) FetchProfile(_ context.Context, credential string) (models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.invalidated {
		if inv == credential {
			return models.UserProfile{}, models.NewAuthError(models.KindInvalidCredentials, "revoked", nil)
		}
	}
	email := strings.TrimPrefix(credential, "tok-")
	p, ok := f.profiles[email]
	if !ok {
		return models.UserProfile{}, models.NewAuthError(models.KindInvalidCredentials, "unknown", nil)
	}
	return p, nil
}

func (f *fakeIdentity) Invalidate(_ context.Context, credential string) models.InvalidateResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, credential)
	return models.InvalidateResult{StatusCode: 200}
}

func (f *fakeIdentity) Register(_ context.Context, req identity.RegisterRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, req)
	return nil
}

func (f *fakeIdentity) ForgotPassword(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forgot = append(f.forgot, email)
	return nil
}

func (f *fakeIdentity) ResetPassword(_ context.Context, token, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token != "good" {
		return models.NewAuthError(models.KindValidation, "Invalid or expired token", nil)
	}
	f.resets[token] = password
	return nil
}

// pipedInput makes password prompts read from the app's input.
func pipedInput(t *testing.T) {
	t.Helper()
	orig := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = orig })
}

func silencePrintln(t *testing.T) {
	t.Helper()
	orig := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = orig })
}

// newTestApp builds a restored App over store and idp reading input.
func newTestApp(t *testing.T, store session.Store, idp *fakeIdentity, input string) (*App, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	a := newApp(store, idp, idp, logging.NewNop(), strings.NewReader(input), &out)
	t.Cleanup(func() { _ = a.Close() })
	if err := a.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	return a, &out
}
