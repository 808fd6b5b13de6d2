// Package api is the authenticated client for the MealHub backend REST API.
// A single Client instance is shared by every call site that needs identity:
// it injects the bearer token per request (tokens rotate, so the token is
// looked up on every call, never baked in) and reacts to 401/403 responses by
// tearing the session down and redirecting to the login route. The failing
// call still returns its error so caller-local handling runs.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrNoToken is returned when an endpoint requires identity but no access
// token is available yet. Callers treat this as "not signed in yet", not as a
// backend failure.
var ErrNoToken = errors.New("no access token available")

// APIError is a non-2xx backend response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// AsAPIError unwraps err into an *APIError if it is one.
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// TokenSource supplies the current bearer token. An empty token with a nil
// error means "signed out".
type TokenSource interface {
	AccessToken(ctx context.Context, force bool) (string, error)
}

// Navigator performs the session-expiry redirect. It matches the guard
// package's navigator so one implementation serves both.
type Navigator interface {
	Navigate(path, returnTo string)
}

// LogoutFunc tears the session down.
type LogoutFunc func(ctx context.Context)

// Client is the shared authenticated HTTP client. Construct a new one
// whenever the {token source, logout, navigator} triple changes; the old
// client's interceptor is abandoned with it, so no stale closure can handle a
// later response.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	log        zerolog.Logger
}

// New creates a client bound to one {tokens, logout, navigate} triple.
func New(baseURL string, tokens TokenSource, logout LogoutFunc, nav Navigator, log zerolog.Logger) *Client {
	c := &Client{
		baseURL: baseURL,
		tokens:  tokens,
		log:     log,
	}
	c.httpClient = &http.Client{
		Timeout: 30 * time.Second,
		Transport: &authTransport{
			base:   http.DefaultTransport,
			tokens: tokens,
			logout: logout,
			nav:    nav,
			log:    log,
		},
	}
	return c
}

// SetHTTPClient replaces the underlying HTTP client, keeping the interceptor.
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	transport := c.httpClient.Transport
	c.httpClient = httpClient
	if c.httpClient.Transport == nil || c.httpClient.Transport == http.DefaultTransport {
		c.httpClient.Transport = transport
	} else {
		if at, ok := transport.(*authTransport); ok {
			at.base = c.httpClient.Transport
			c.httpClient.Transport = at
		}
	}
}

type skipTeardownKey struct{}

// withoutTeardown marks a request whose 401/403 must not re-trigger logout.
// Used by the logout notification itself to avoid recursing.
func withoutTeardown(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipTeardownKey{}, true)
}

// authTransport is the request/response interceptor pair.
type authTransport struct {
	base   http.RoundTripper
	tokens TokenSource
	logout LogoutFunc
	nav    Navigator
	log    zerolog.Logger

	mu      sync.Mutex
	tearing bool
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Request interceptor: attach the current token, looked up per request.
	token, err := t.tokens.AccessToken(req.Context(), false)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain access token: %w", err)
	}
	if token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	// Response interceptor: an expired or revoked session forces exactly one
	// logout + redirect, while the response still flows back to the caller.
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		if skip, _ := req.Context().Value(skipTeardownKey{}).(bool); !skip {
			t.teardown(req)
		}
	}
	return resp, nil
}

// teardown runs the session-expiry handling once, even if several in-flight
// requests fail at the same moment.
func (t *authTransport) teardown(req *http.Request) {
	t.mu.Lock()
	if t.tearing {
		t.mu.Unlock()
		return
	}
	t.tearing = true
	t.mu.Unlock()

	t.log.Info().Str("path", req.URL.Path).Msg("Session rejected by backend, signing out")
	if t.logout != nil {
		t.logout(withoutTeardown(context.Background()))
	}
	if t.nav != nil {
		t.nav.Navigate("/login", "")
	}

	t.mu.Lock()
	t.tearing = false
	t.mu.Unlock()
}

// authRequired marks endpoints that need identity; calling one without a
// token short-circuits to ErrNoToken before any network traffic.
const (
	authRequired = true
	authOptional = false
)

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, needAuth bool) error {
	if needAuth {
		token, err := c.tokens.AccessToken(ctx, false)
		if err != nil {
			return fmt.Errorf("failed to obtain access token: %w", err)
		}
		if token == "" {
			return ErrNoToken
		}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		return &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func errorMessage(data []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return string(data)
}

// NotifyLogout tells the backend the session is ending. Its own 401 must not
// re-enter the teardown path.
func (c *Client) NotifyLogout(ctx context.Context) error {
	return c.do(withoutTeardown(ctx), http.MethodPost, "/logout", nil, nil, nil, authOptional)
}
