package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mealhub-dev/mealhub/internal/cli/userconfig"
	"github.com/mealhub-dev/mealhub/internal/identity"
	"github.com/mealhub-dev/mealhub/internal/models"
)

func TestWhoamiSignedOutRedirectsToLogin(t *testing.T) {
	backend := testBackend(t, nil)
	setupTestEnvironment(t, backend.URL)

	// Start restores no session.
	output, err := runAndCapture(t, func(out *bytes.Buffer) error {
		return runWhoami(out, newMockTokenStore(), stubFactory(&stubProvider{}))
	})
	if err != nil {
		t.Fatalf("whoami errored: %v", err)
	}
	if !strings.Contains(output, "Please sign in first") {
		t.Errorf("expected sign-in redirect, got:\n%s", output)
	}

	// The attempted location is preserved for after the next login.
	returnTo, err := userconfig.GetReturnTo()
	if err != nil {
		t.Fatalf("GetReturnTo: %v", err)
	}
	if returnTo != "whoami" {
		t.Errorf("expected attempted location preserved, got %q", returnTo)
	}
}

func TestWhoamiShowsResolvedRole(t *testing.T) {
	backend := testBackend(t, map[string]*models.Profile{
		"chef@example.com": chefProfile("chef@example.com"),
	})
	setupTestEnvironment(t, backend.URL)

	provider := &stubProvider{restored: &identity.User{Email: "chef@example.com", DisplayName: "Chef Dana"}}
	output, err := runAndCapture(t, func(out *bytes.Buffer) error {
		return runWhoami(out, newMockTokenStore(), stubFactory(provider))
	})
	if err != nil {
		t.Fatalf("whoami failed: %v", err)
	}
	if !strings.Contains(output, "chef@example.com") {
		t.Errorf("expected email in output, got:\n%s", output)
	}
	if !strings.Contains(output, "Role: chef") {
		t.Errorf("expected resolved role, got:\n%s", output)
	}
}

func TestWhoamiFailsOpenWhenBackendDown(t *testing.T) {
	// Backend knows no one; profile fetches 404 and the resolver assumes the
	// base role rather than locking the user out.
	backend := testBackend(t, nil)
	setupTestEnvironment(t, backend.URL)

	provider := &stubProvider{restored: &identity.User{Email: "a@example.com"}}
	output, err := runAndCapture(t, func(out *bytes.Buffer) error {
		return runWhoami(out, newMockTokenStore(), stubFactory(provider))
	})
	if err != nil {
		t.Fatalf("whoami failed: %v", err)
	}
	if !strings.Contains(output, "Role: user") {
		t.Errorf("expected fail-open base role, got:\n%s", output)
	}
}
