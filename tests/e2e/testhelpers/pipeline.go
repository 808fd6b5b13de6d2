// Package testhelpers assembles a full client pipeline against an in-process
// mock backend for end-to-end tests.
package testhelpers

import (
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mealhub-dev/mealhub/internal/app"
	"github.com/mealhub-dev/mealhub/internal/identity"
	"github.com/mealhub-dev/mealhub/internal/mockapi"
)

// MemStore is a shared in-memory refresh-token store, standing in for the OS
// keyring so session restore can be exercised across pipelines.
type MemStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{tokens: make(map[string]string)}
}

func (m *MemStore) SaveRefreshToken(host, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[host] = token
	return nil
}

func (m *MemStore) LoadRefreshToken(host string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[host], nil
}

func (m *MemStore) DeleteRefreshToken(host string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, host)
	return nil
}

// RecordingNav records redirects issued by guards and the API interceptor.
type RecordingNav struct {
	mu       sync.Mutex
	Paths    []string
	ReturnTo []string
}

func (n *RecordingNav) Navigate(path, returnTo string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Paths = append(n.Paths, path)
	n.ReturnTo = append(n.ReturnTo, returnTo)
}

func (n *RecordingNav) Last() (path, returnTo string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Paths) == 0 {
		return "", ""
	}
	return n.Paths[len(n.Paths)-1], n.ReturnTo[len(n.ReturnTo)-1]
}

// Pipeline is one assembled client stack over a shared mock backend.
type Pipeline struct {
	App   *app.App
	Nav   *RecordingNav
	Store *MemStore
}

// Backend starts the mock server (backend plus identity provider on one
// address) and registers its shutdown with the test.
func Backend(t *testing.T) (*mockapi.Server, *httptest.Server) {
	t.Helper()
	mock := mockapi.New()
	srv := httptest.NewServer(mock.Handler())
	t.Cleanup(srv.Close)
	return mock, srv
}

// NewPipeline wires a real identity client and the full app pipeline against
// the given mock server. Store may be shared between pipelines to simulate
// separate CLI invocations on one machine.
func NewPipeline(t *testing.T, srv *httptest.Server, store *MemStore) *Pipeline {
	t.Helper()

	nav := &RecordingNav{}
	provider := identity.New(srv.URL, "", "mock-backend", store)
	a := app.New(provider, srv.URL, nav, zerolog.Nop())
	t.Cleanup(a.Close)

	return &Pipeline{App: a, Nav: nav, Store: store}
}
