package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mealhub-dev/mealhub/internal/identity"
)

// IdentityProvider is the slice of the identity client the session layer
// depends on. identity.Provider satisfies it; tests inject fakes.
type IdentityProvider interface {
	Start(ctx context.Context)
	OnAuthStateChanged(fn identity.Listener) func()
	CurrentUser() *identity.User
	RegisterWithPassword(ctx context.Context, email, password string) (*identity.User, error)
	LoginWithPassword(ctx context.Context, email, password string) (*identity.User, error)
	ExchangeSocialToken(ctx context.Context, socialProvider, accessToken string) (*identity.User, error)
	SignOut(ctx context.Context)
	UpdateProfile(ctx context.Context, displayName, photoURL *string) (*identity.User, error)
	AccessToken(ctx context.Context, force bool) (string, error)
}

// BackendNotifier tells the backend that the session is ending so any
// server-side session state is cleared. Implemented by the API client; wired
// after construction because the API client itself needs the session for
// tokens.
type BackendNotifier interface {
	NotifyLogout(ctx context.Context) error
}

// Manager is the injectable auth session: it owns the provider handle, feeds
// the observer, and is the only component that initiates sign-in/sign-out.
// Construct one per process (or per test) and thread it explicitly; there is
// no package-level session.
type Manager struct {
	provider IdentityProvider
	observer *Observer
	log      zerolog.Logger

	mu       sync.Mutex
	notifier BackendNotifier
	unsub    func()
}

// NewManager creates a session manager over the given provider.
func NewManager(provider IdentityProvider, log zerolog.Logger) *Manager {
	return &Manager{
		provider: provider,
		observer: NewObserver(),
		log:      log,
	}
}

// Observer exposes the session state stream.
func (m *Manager) Observer() *Observer {
	return m.observer
}

// Current returns the current session state.
func (m *Manager) Current() State {
	return m.observer.Current()
}

// SetBackendNotifier wires the backend logout notification. Safe to call
// after Start; a nil notifier means logout skips the backend call.
func (m *Manager) SetBackendNotifier(n BackendNotifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifier = n
}

// Start subscribes the observer to provider auth-state changes and kicks off
// session restore. The observer stays in its loading state until the provider
// delivers the first notification.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.unsub == nil {
		m.unsub = m.provider.OnAuthStateChanged(func(user *identity.User) {
			m.observer.Publish(user)
		})
	}
	m.mu.Unlock()

	m.provider.Start(ctx)
}

// Close detaches the manager from the provider stream.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unsub != nil {
		m.unsub()
		m.unsub = nil
	}
}

// Register creates a provider account after local validation.
func (m *Manager) Register(ctx context.Context, email, password string) (*identity.User, error) {
	if err := ValidateCredentials(email, password); err != nil {
		return nil, err
	}
	return m.provider.RegisterWithPassword(ctx, email, password)
}

// Login signs in with email and password after local validation.
func (m *Manager) Login(ctx context.Context, email, password string) (*identity.User, error) {
	if err := ValidateCredentials(email, password); err != nil {
		return nil, err
	}
	return m.provider.LoginWithPassword(ctx, email, password)
}

// LoginWithSocial runs the social authorization flow and exchanges its result
// for a provider session.
func (m *Manager) LoginWithSocial(ctx context.Context, flow *identity.SocialFlow, socialProvider string) (*identity.User, error) {
	accessToken, err := flow.Authorize(ctx)
	if err != nil {
		return nil, err
	}
	return m.provider.ExchangeSocialToken(ctx, socialProvider, accessToken)
}

// Logout notifies the backend first so server-side session state is cleared,
// then terminates the provider session. A failed backend call is logged and
// ignored: logout must not get stuck.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	notifier := m.notifier
	m.mu.Unlock()

	if notifier != nil {
		if err := notifier.NotifyLogout(ctx); err != nil {
			m.log.Warn().Err(err).Msg("Backend logout notification failed")
		}
	}
	m.provider.SignOut(ctx)
}

// UpdateProfile changes the provider-held display name and/or photo URL.
func (m *Manager) UpdateProfile(ctx context.Context, displayName, photoURL *string) (*identity.User, error) {
	return m.provider.UpdateProfile(ctx, displayName, photoURL)
}

// AccessToken returns a valid bearer token for the current session, or an
// empty string when signed out.
func (m *Manager) AccessToken(ctx context.Context, force bool) (string, error) {
	return m.provider.AccessToken(ctx, force)
}
