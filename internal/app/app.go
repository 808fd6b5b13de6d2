// Package app assembles the auth pipeline: identity provider -> session
// observer -> role resolver -> guards, with the authenticated API client
// bound to the session. Wiring lives here so both the CLI and the test
// harnesses construct (and reset) the exact same pipeline.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mealhub-dev/mealhub/internal/api"
	"github.com/mealhub-dev/mealhub/internal/guard"
	"github.com/mealhub-dev/mealhub/internal/models"
	"github.com/mealhub-dev/mealhub/internal/resolver"
	"github.com/mealhub-dev/mealhub/internal/session"
)

// clientRef routes resolver fetches to the currently bound API client, so a
// Rebind is picked up without re-wiring the resolver subscription.
type clientRef struct {
	mu sync.Mutex
	c  *api.Client
}

func (r *clientRef) set(c *api.Client) {
	r.mu.Lock()
	r.c = c
	r.mu.Unlock()
}

func (r *clientRef) GetUser(ctx context.Context, email string) (*models.Profile, error) {
	r.mu.Lock()
	c := r.c
	r.mu.Unlock()
	return c.GetUser(ctx, email)
}

// App is one assembled auth pipeline plus its API client.
type App struct {
	Session  *session.Manager
	API      *api.Client
	Resolver *resolver.Resolver
	Watcher  *guard.Watcher
	Nav      api.Navigator

	ref    *clientRef
	unbind func()
	log    zerolog.Logger
}

// New wires the pipeline. The API client is bound to the session's
// {tokens, logout, navigate} triple; Rebind replaces it when the triple
// changes. The resolver is bound to the observer before the watcher is
// created so the guard Pending window covers the role fetch.
func New(provider session.IdentityProvider, apiBaseURL string, nav api.Navigator, log zerolog.Logger) *App {
	sess := session.NewManager(provider, log)

	client := api.New(apiBaseURL, sess, func(ctx context.Context) {
		sess.Logout(ctx)
	}, nav, log)
	sess.SetBackendNotifier(client)

	ref := &clientRef{c: client}
	res := resolver.New(ref, log)
	unbind := res.Bind(sess.Observer())
	watcher := guard.NewWatcher(sess.Observer(), res)

	return &App{
		Session:  sess,
		API:      client,
		Resolver: res,
		Watcher:  watcher,
		Nav:      nav,
		ref:      ref,
		unbind:   unbind,
		log:      log,
	}
}

// Start begins session restore. Guards stay Pending until the provider
// delivers its first auth-state notification.
func (a *App) Start(ctx context.Context) {
	a.Session.Start(ctx)
}

// Rebind replaces the API client after the {tokens, logout, navigate} triple
// changes. The old client, and the interceptors bound into it, are dropped;
// the resolver picks up the new client through the shared reference.
func (a *App) Rebind(apiBaseURL string, nav api.Navigator) {
	client := api.New(apiBaseURL, a.Session, func(ctx context.Context) {
		a.Session.Logout(ctx)
	}, nav, a.log)
	a.Session.SetBackendNotifier(client)
	a.ref.set(client)
	a.API = client
	a.Nav = nav
}

// Close tears the pipeline down in reverse order.
func (a *App) Close() {
	a.Watcher.Close()
	a.unbind()
	a.Session.Close()
}
