package session

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mealhub-dev/mealhub/internal/identity"
)

// fakeProvider is an in-memory identity provider for session tests.
type fakeProvider struct {
	user      *identity.User
	listeners []identity.Listener
	loginErr  error
	signOuts  int
}

func (f *fakeProvider) Start(ctx context.Context) {
	f.notify()
}

func (f *fakeProvider) OnAuthStateChanged(fn identity.Listener) func() {
	f.listeners = append(f.listeners, fn)
	return func() {}
}

func (f *fakeProvider) CurrentUser() *identity.User { return f.user }

func (f *fakeProvider) RegisterWithPassword(ctx context.Context, email, password string) (*identity.User, error) {
	return f.signIn(email)
}

func (f *fakeProvider) LoginWithPassword(ctx context.Context, email, password string) (*identity.User, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.signIn(email)
}

func (f *fakeProvider) ExchangeSocialToken(ctx context.Context, socialProvider, accessToken string) (*identity.User, error) {
	return f.signIn(accessToken + "@example.com")
}

func (f *fakeProvider) SignOut(ctx context.Context) {
	f.signOuts++
	f.user = nil
	f.notify()
}

func (f *fakeProvider) UpdateProfile(ctx context.Context, displayName, photoURL *string) (*identity.User, error) {
	if displayName != nil {
		f.user.DisplayName = *displayName
	}
	if photoURL != nil {
		f.user.PhotoURL = *photoURL
	}
	f.notify()
	return f.user, nil
}

func (f *fakeProvider) AccessToken(ctx context.Context, force bool) (string, error) {
	if f.user == nil {
		return "", nil
	}
	return "token-" + f.user.Email, nil
}

func (f *fakeProvider) signIn(email string) (*identity.User, error) {
	f.user = &identity.User{UID: "uid-" + email, Email: email}
	f.notify()
	return f.user, nil
}

func (f *fakeProvider) notify() {
	for _, fn := range f.listeners {
		fn(f.user)
	}
}

type fakeNotifier struct {
	calls int
	err   error
}

func (f *fakeNotifier) NotifyLogout(ctx context.Context) error {
	f.calls++
	return f.err
}

func newTestManager(provider *fakeProvider) *Manager {
	return NewManager(provider, zerolog.Nop())
}

func TestManagerStartPublishesRestoredSession(t *testing.T) {
	provider := &fakeProvider{user: &identity.User{Email: "restored@example.com"}}
	m := newTestManager(provider)
	defer m.Close()

	m.Start(context.Background())

	state := m.Current()
	if state.Loading {
		t.Error("expected loading cleared after start")
	}
	if state.User == nil || state.User.Email != "restored@example.com" {
		t.Errorf("expected restored user, got %v", state.User)
	}
}

func TestManagerLoginValidatesFirst(t *testing.T) {
	provider := &fakeProvider{}
	m := newTestManager(provider)
	defer m.Close()
	m.Start(context.Background())

	if _, err := m.Login(context.Background(), "not-an-email", "secret1"); err == nil {
		t.Error("expected validation error for bad email")
	}
	if _, err := m.Login(context.Background(), "a@example.com", "short"); err == nil {
		t.Error("expected validation error for short password")
	}
	if provider.user != nil {
		t.Error("provider must not be called when validation fails")
	}

	user, err := m.Login(context.Background(), "a@example.com", "secret1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.Email != "a@example.com" {
		t.Errorf("unexpected user %v", user)
	}
}

func TestManagerLogoutNotifiesBackendFirst(t *testing.T) {
	provider := &fakeProvider{}
	m := newTestManager(provider)
	defer m.Close()
	m.Start(context.Background())
	m.Login(context.Background(), "a@example.com", "secret1")

	notifier := &fakeNotifier{}
	m.SetBackendNotifier(notifier)

	m.Logout(context.Background())

	if notifier.calls != 1 {
		t.Errorf("expected 1 backend logout notification, got %d", notifier.calls)
	}
	if provider.signOuts != 1 {
		t.Errorf("expected 1 provider sign-out, got %d", provider.signOuts)
	}
	if state := m.Current(); state.User != nil {
		t.Errorf("expected signed-out state, got %v", state.User)
	}
}

func TestManagerLogoutIgnoresBackendFailure(t *testing.T) {
	provider := &fakeProvider{}
	m := newTestManager(provider)
	defer m.Close()
	m.Start(context.Background())
	m.Login(context.Background(), "a@example.com", "secret1")

	m.SetBackendNotifier(&fakeNotifier{err: errors.New("backend down")})

	m.Logout(context.Background())

	if provider.signOuts != 1 {
		t.Error("expected sign-out despite backend failure")
	}
	if state := m.Current(); state.User != nil {
		t.Error("expected signed-out state despite backend failure")
	}
}

func TestManagerLogoutWithoutNotifier(t *testing.T) {
	provider := &fakeProvider{}
	m := newTestManager(provider)
	defer m.Close()
	m.Start(context.Background())
	m.Login(context.Background(), "a@example.com", "secret1")

	// No notifier wired; logout must still terminate the session.
	m.Logout(context.Background())

	if state := m.Current(); state.User != nil {
		t.Error("expected signed-out state")
	}
}
