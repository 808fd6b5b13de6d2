package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/mealhub-dev/mealhub/internal/cli/config"
	"github.com/mealhub-dev/mealhub/internal/identity"
	"github.com/mealhub-dev/mealhub/internal/models"
	"github.com/mealhub-dev/mealhub/internal/session"
)

// mockTokenStore is a simple in-memory token store for testing.
type mockTokenStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMockTokenStore() *mockTokenStore {
	return &mockTokenStore{tokens: make(map[string]string)}
}

func (m *mockTokenStore) SaveRefreshToken(host, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[host] = token
	return nil
}

func (m *mockTokenStore) LoadRefreshToken(host string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[host], nil
}

func (m *mockTokenStore) DeleteRefreshToken(host string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, host)
	return nil
}

// stubProvider is a scripted identity provider for command tests. restored is
// the user Start publishes; loginErr fails password sign-ins.
type stubProvider struct {
	mu        sync.Mutex
	restored  *identity.User
	user      *identity.User
	loginErr  error
	listeners []identity.Listener
}

func stubFactory(p *stubProvider) providerFactory {
	return func(cfg *config.Config, store identity.TokenStore) session.IdentityProvider {
		return p
	}
}

func (p *stubProvider) Start(ctx context.Context) {
	p.mu.Lock()
	p.user = p.restored
	p.mu.Unlock()
	p.notify()
}

func (p *stubProvider) OnAuthStateChanged(fn identity.Listener) func() {
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	p.mu.Unlock()
	return func() {}
}

func (p *stubProvider) CurrentUser() *identity.User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.user
}

func (p *stubProvider) RegisterWithPassword(ctx context.Context, email, password string) (*identity.User, error) {
	return p.signIn(email)
}

func (p *stubProvider) LoginWithPassword(ctx context.Context, email, password string) (*identity.User, error) {
	if p.loginErr != nil {
		return nil, p.loginErr
	}
	return p.signIn(email)
}

func (p *stubProvider) ExchangeSocialToken(ctx context.Context, socialProvider, accessToken string) (*identity.User, error) {
	return p.signIn(accessToken + "@example.com")
}

func (p *stubProvider) SignOut(ctx context.Context) {
	p.mu.Lock()
	p.user = nil
	p.mu.Unlock()
	p.notify()
}

func (p *stubProvider) UpdateProfile(ctx context.Context, displayName, photoURL *string) (*identity.User, error) {
	p.mu.Lock()
	if displayName != nil {
		p.user.DisplayName = *displayName
	}
	if photoURL != nil {
		p.user.PhotoURL = *photoURL
	}
	p.mu.Unlock()
	p.notify()
	return p.CurrentUser(), nil
}

func (p *stubProvider) AccessToken(ctx context.Context, force bool) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.user == nil {
		return "", nil
	}
	return "stub-token-" + p.user.Email, nil
}

func (p *stubProvider) signIn(email string) (*identity.User, error) {
	p.mu.Lock()
	p.user = &identity.User{UID: "uid-" + email, Email: email}
	p.mu.Unlock()
	p.notify()
	return p.CurrentUser(), nil
}

func (p *stubProvider) notify() {
	p.mu.Lock()
	user := p.user
	listeners := append([]identity.Listener(nil), p.listeners...)
	p.mu.Unlock()
	for _, fn := range listeners {
		fn(user)
	}
}

// setupTestEnvironment creates a temp directory with a mealhub.json pointing
// at apiURL, makes it the working directory and isolates HOME so userconfig
// writes stay inside the test.
func setupTestEnvironment(t *testing.T, apiURL string) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "mealhub-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	cfg := config.Config{
		APIURL:      apiURL,
		IdentityURL: "http://identity.invalid",
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, config.ConfigFileName), data, 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}

	t.Setenv("HOME", tempDir)
	t.Cleanup(func() {
		os.Chdir(originalDir)
		os.RemoveAll(tempDir)
	})
}

// testBackend serves the profile endpoint the resolver hits, requiring a
// bearer token like the real backend.
func testBackend(t *testing.T, profiles map[string]*models.Profile) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"missing bearer token"}`))
			return
		}
		if email, ok := strings.CutPrefix(r.URL.Path, "/users/"); ok {
			if profile, found := profiles[email]; found {
				json.NewEncoder(w).Encode(profile)
				return
			}
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"user not found"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func chefProfile(email string) *models.Profile {
	return &models.Profile{Email: email, Name: "Chef", Role: models.RoleChef, Status: models.StatusActive, ChefID: "chef-1"}
}

func userProfile(email string) *models.Profile {
	return &models.Profile{Email: email, Name: "User", Role: models.RoleUser, Status: models.StatusActive}
}

func runAndCapture(t *testing.T, fn func(out *bytes.Buffer) error) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := fn(&out)
	return out.String(), err
}
