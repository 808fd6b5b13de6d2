package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	googleOAuth "golang.org/x/oauth2/google"
)

// SocialFlow runs the authorization-code flow against a social provider using
// a loopback redirect: the CLI analogue of the browser popup. The user opens
// the printed URL, grants access, and the provider redirects back to a
// short-lived local listener that captures the code.
type SocialFlow struct {
	config *oauth2.Config
	out    io.Writer
}

// NewGoogleFlow builds a flow against Google's OAuth endpoints.
func NewGoogleFlow(clientID, clientSecret string, out io.Writer) *SocialFlow {
	return &SocialFlow{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     googleOAuth.Endpoint,
			Scopes:       []string{"openid", "profile", "email"},
		},
		out: out,
	}
}

// Authorize runs the flow and returns the social provider's access token.
// Canceling ctx (or closing the browser without granting) yields an AuthError
// with CodeFlowCanceled.
func (f *SocialFlow) Authorize(ctx context.Context) (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to start redirect listener: %w", err)
	}
	defer listener.Close()

	cfg := *f.config
	cfg.RedirectURL = fmt.Sprintf("http://%s/callback", listener.Addr().String())

	state, err := randomState()
	if err != nil {
		return "", err
	}

	type result struct {
		code string
		err  error
	}
	results := make(chan result, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			results <- result{err: &AuthError{Code: CodeFlowCanceled, Message: "state mismatch"}}
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "authorization denied", http.StatusBadRequest)
			results <- result{err: &AuthError{Code: CodeFlowCanceled, Message: "authorization denied"}}
			return
		}
		fmt.Fprintln(w, "Signed in. You can close this tab and return to the terminal.")
		results <- result{code: code}
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = server.Serve(listener) }()
	defer server.Close()

	fmt.Fprintf(f.out, "Open the following URL in your browser to sign in:\n\n  %s\n\n", cfg.AuthCodeURL(state))

	var res result
	select {
	case res = <-results:
	case <-ctx.Done():
		return "", &AuthError{Code: CodeFlowCanceled, Message: "sign-in flow canceled"}
	}
	if res.err != nil {
		return "", res.err
	}

	token, err := cfg.Exchange(ctx, res.code)
	if err != nil {
		return "", &AuthError{Code: CodeNetwork, Message: fmt.Sprintf("token exchange failed: %v", err)}
	}
	return token.AccessToken, nil
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
