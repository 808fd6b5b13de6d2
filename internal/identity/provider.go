package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenStore persists the provider refresh token between CLI invocations.
// The default implementation lives in internal/cli/auth and uses the OS
// keyring; tests inject an in-memory store.
type TokenStore interface {
	SaveRefreshToken(host, token string) error
	LoadRefreshToken(host string) (string, error)
	DeleteRefreshToken(host string) error
}

// Listener receives the current principal (or nil) on every auth-state change.
type Listener func(*User)

// Provider is the client for the external identity provider. It owns the
// session tokens and is the single writer of the current principal; everything
// else observes it through OnAuthStateChanged.
type Provider struct {
	baseURL    string
	apiKey     string
	host       string
	httpClient *http.Client
	store      TokenStore

	mu           sync.Mutex
	user         *User
	accessToken  string
	refreshToken string
	expiresAt    time.Time
	listeners    []registration
	nextID       int
}

type registration struct {
	id int
	fn Listener
}

// New creates a provider client. host keys the refresh token in the store so
// sessions against different deployments do not collide.
func New(baseURL, apiKey, host string, store TokenStore) *Provider {
	return &Provider{
		baseURL: baseURL,
		apiKey:  apiKey,
		host:    host,
		store:   store,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient sets a custom HTTP client.
func (p *Provider) SetHTTPClient(httpClient *http.Client) {
	p.httpClient = httpClient
}

// OnAuthStateChanged registers a listener and returns its unsubscribe
// function. Listeners are invoked in registration order.
func (p *Provider) OnAuthStateChanged(fn Listener) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners = append(p.listeners, registration{id: id, fn: fn})
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		for i, reg := range p.listeners {
			if reg.id == id {
				p.listeners = append(p.listeners[:i], p.listeners[i+1:]...)
				return
			}
		}
	}
}

// CurrentUser returns the current principal, or nil when signed out.
func (p *Provider) CurrentUser() *User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.user
}

// Start restores a previous session from the stored refresh token, then fires
// the first auth-state notification (with the restored user or nil). Always
// notifies exactly once, so observers can clear their initial loading state.
func (p *Provider) Start(ctx context.Context) {
	refresh, err := p.store.LoadRefreshToken(p.host)
	if err != nil || refresh == "" {
		p.setSession(nil, "", "", time.Time{})
		return
	}

	creds, err := p.exchangeRefreshToken(ctx, refresh)
	if err != nil {
		// Stored token is stale or revoked; forget it.
		_ = p.store.DeleteRefreshToken(p.host)
		p.setSession(nil, "", "", time.Time{})
		return
	}

	p.setSession(creds.user(), creds.AccessToken, creds.RefreshToken, creds.expiry())
}

type credentialsResponse struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	DisplayName  string `json:"display_name"`
	PhotoURL     string `json:"photo_url"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (c *credentialsResponse) user() *User {
	return &User{
		UID:         c.UID,
		Email:       c.Email,
		DisplayName: c.DisplayName,
		PhotoURL:    c.PhotoURL,
	}
}

// expiry derives the access-token deadline, preferring the provider's
// expires_in and falling back to the token's own exp claim.
func (c *credentialsResponse) expiry() time.Time {
	if c.ExpiresIn > 0 {
		return time.Now().Add(time.Duration(c.ExpiresIn) * time.Second)
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.AccessToken, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	// Unknown expiry: force a refresh on next use.
	return time.Now()
}

// RegisterWithPassword creates a provider account and signs it in.
func (p *Provider) RegisterWithPassword(ctx context.Context, email, password string) (*User, error) {
	creds, err := p.credentialCall(ctx, "/v1/accounts/register", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	p.persistAndSet(creds)
	return creds.user(), nil
}

// LoginWithPassword signs in with email and password.
func (p *Provider) LoginWithPassword(ctx context.Context, email, password string) (*User, error) {
	creds, err := p.credentialCall(ctx, "/v1/accounts/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	p.persistAndSet(creds)
	return creds.user(), nil
}

// ExchangeSocialToken completes a social sign-in: the OAuth access token
// obtained from the social provider is exchanged for a provider session.
func (p *Provider) ExchangeSocialToken(ctx context.Context, socialProvider, accessToken string) (*User, error) {
	creds, err := p.credentialCall(ctx, "/v1/accounts/social", map[string]string{
		"provider":     socialProvider,
		"access_token": accessToken,
	})
	if err != nil {
		return nil, err
	}
	p.persistAndSet(creds)
	return creds.user(), nil
}

// SignOut revokes the refresh token (best effort) and clears the session.
// It never fails: the local session is terminated regardless.
func (p *Provider) SignOut(ctx context.Context) {
	p.mu.Lock()
	refresh := p.refreshToken
	p.mu.Unlock()

	if refresh != "" {
		// Best effort; a failed revoke must not keep the user signed in.
		_ = p.post(ctx, "/v1/accounts/revoke", map[string]string{"refresh_token": refresh}, nil)
	}
	_ = p.store.DeleteRefreshToken(p.host)
	p.setSession(nil, "", "", time.Time{})
}

// UpdateProfile mutates the provider-held display name and photo URL. Nil
// fields are left unchanged. The backend profile is not touched.
func (p *Provider) UpdateProfile(ctx context.Context, displayName, photoURL *string) (*User, error) {
	token, err := p.AccessToken(ctx, false)
	if err != nil {
		return nil, err
	}

	body := map[string]any{"access_token": token}
	if displayName != nil {
		body["display_name"] = *displayName
	}
	if photoURL != nil {
		body["photo_url"] = *photoURL
	}

	var resp credentialsResponse
	if err := p.post(ctx, "/v1/accounts/update", body, &resp); err != nil {
		return nil, err
	}

	p.mu.Lock()
	user := resp.user()
	p.user = user
	listeners := append([]registration(nil), p.listeners...)
	p.mu.Unlock()

	for _, reg := range listeners {
		reg.fn(user)
	}
	return user, nil
}

// AccessToken returns a valid access token for the current session,
// refreshing it first when expired or when force is set. Returns an empty
// token without error when no user is signed in.
func (p *Provider) AccessToken(ctx context.Context, force bool) (string, error) {
	p.mu.Lock()
	if p.user == nil {
		p.mu.Unlock()
		return "", nil
	}
	token := p.accessToken
	refresh := p.refreshToken
	fresh := time.Now().Add(30 * time.Second).Before(p.expiresAt)
	p.mu.Unlock()

	if fresh && !force {
		return token, nil
	}

	creds, err := p.exchangeRefreshToken(ctx, refresh)
	if err != nil {
		return "", fmt.Errorf("failed to refresh access token: %w", err)
	}

	p.mu.Lock()
	p.accessToken = creds.AccessToken
	if creds.RefreshToken != "" {
		p.refreshToken = creds.RefreshToken
	}
	p.expiresAt = creds.expiry()
	token = p.accessToken
	p.mu.Unlock()

	if creds.RefreshToken != "" {
		_ = p.store.SaveRefreshToken(p.host, creds.RefreshToken)
	}
	return token, nil
}

func (p *Provider) exchangeRefreshToken(ctx context.Context, refresh string) (*credentialsResponse, error) {
	var resp credentialsResponse
	if err := p.post(ctx, "/v1/token", map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": refresh,
	}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (p *Provider) credentialCall(ctx context.Context, path string, body any) (*credentialsResponse, error) {
	var resp credentialsResponse
	if err := p.post(ctx, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (p *Provider) persistAndSet(creds *credentialsResponse) {
	if creds.RefreshToken != "" {
		_ = p.store.SaveRefreshToken(p.host, creds.RefreshToken)
	}
	p.setSession(creds.user(), creds.AccessToken, creds.RefreshToken, creds.expiry())
}

// setSession replaces the current session and notifies listeners outside the
// lock, in registration order.
func (p *Provider) setSession(user *User, access, refresh string, expiresAt time.Time) {
	p.mu.Lock()
	p.user = user
	p.accessToken = access
	p.refreshToken = refresh
	p.expiresAt = expiresAt
	listeners := append([]registration(nil), p.listeners...)
	p.mu.Unlock()

	for _, reg := range listeners {
		reg.fn(user)
	}
}

type providerError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *Provider) post(ctx context.Context, path string, body, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return &AuthError{Code: CodeNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		var perr providerError
		if err := json.Unmarshal(data, &perr); err == nil && perr.Error.Message != "" {
			return classify(perr.Error.Message, perr.Error.Message)
		}
		return &AuthError{Code: CodeNetwork, Message: fmt.Sprintf("provider returned status %d", resp.StatusCode)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
