package guard

import (
	"testing"

	"github.com/mealhub-dev/mealhub/internal/identity"
	"github.com/mealhub-dev/mealhub/internal/models"
)

type fakeNav struct {
	paths    []string
	returnTo []string
}

func (n *fakeNav) Navigate(path, returnTo string) {
	n.paths = append(n.paths, path)
	n.returnTo = append(n.returnTo, returnTo)
}

func signedIn(role models.Role) AuthSnapshot {
	return AuthSnapshot{
		User:         &identity.User{Email: "a@example.com"},
		Role:         role,
		RoleResolved: true,
	}
}

func TestPresencePendingWhileLoading(t *testing.T) {
	cases := []AuthSnapshot{
		{SessionLoading: true},
		{RoleLoading: true, User: &identity.User{Email: "a@example.com"}},
		{SessionLoading: true, RoleLoading: true},
	}
	for _, snap := range cases {
		if st := (Presence{}).Evaluate(snap); st != Pending {
			t.Errorf("snapshot %+v: expected pending, got %s", snap, st)
		}
	}
}

func TestPresenceDeniesSignedOut(t *testing.T) {
	snap := AuthSnapshot{}
	if st := (Presence{}).Evaluate(snap); st != Denied {
		t.Fatalf("expected denied, got %s", st)
	}

	nav := &fakeNav{}
	(Presence{}).Deny(nav, "dashboard chef")
	if len(nav.paths) != 1 || nav.paths[0] != "/login" {
		t.Errorf("expected redirect to /login, got %v", nav.paths)
	}
	if nav.returnTo[0] != "dashboard chef" {
		t.Errorf("expected attempted location preserved, got %q", nav.returnTo[0])
	}
}

func TestPresenceAllowsSignedIn(t *testing.T) {
	if st := (Presence{}).Evaluate(signedIn(models.RoleUser)); st != Allowed {
		t.Errorf("expected allowed, got %s", st)
	}
}

func TestRoleIsMatchesExactRole(t *testing.T) {
	g := RoleIs{Target: models.RoleChef}

	if st := g.Evaluate(signedIn(models.RoleChef)); st != Allowed {
		t.Errorf("chef on chef gate: expected allowed, got %s", st)
	}
	// An admin is not a chef; role gates are exact, not hierarchical.
	if st := g.Evaluate(signedIn(models.RoleAdmin)); st != Denied {
		t.Errorf("admin on chef gate: expected denied, got %s", st)
	}
	if st := g.Evaluate(signedIn(models.RoleUser)); st != Denied {
		t.Errorf("user on chef gate: expected denied, got %s", st)
	}
}

func TestRoleIsDeniesUnresolvedRole(t *testing.T) {
	snap := AuthSnapshot{User: &identity.User{Email: "a@example.com"}}
	if st := (RoleIs{Target: models.RoleChef}).Evaluate(snap); st != Denied {
		t.Errorf("expected denied for unresolved role, got %s", st)
	}
}

func TestRoleIsDenyRedirectsHomeWithoutReturnTo(t *testing.T) {
	nav := &fakeNav{}
	(RoleIs{Target: models.RoleAdmin}).Deny(nav, "dashboard admin")
	if len(nav.paths) != 1 || nav.paths[0] != "/" {
		t.Errorf("expected redirect home, got %v", nav.paths)
	}
	if nav.returnTo[0] != "" {
		t.Errorf("role deny must not preserve the location, got %q", nav.returnTo[0])
	}
}

func TestChainPresenceRunsBeforeRole(t *testing.T) {
	// Signed out on a role-gated surface: the presence guard must win, so
	// the redirect goes to /login, not silently home.
	snap := AuthSnapshot{}
	state, g := Chain(snap, Presence{}, RoleIs{Target: models.RoleAdmin})
	if state != Denied {
		t.Fatalf("expected denied, got %s", state)
	}
	nav := &fakeNav{}
	g.Deny(nav, "dashboard admin")
	if nav.paths[0] != "/login" {
		t.Errorf("expected /login from the presence guard, got %s", nav.paths[0])
	}
}

func TestChainWrongRoleRedirectsHome(t *testing.T) {
	state, g := Chain(signedIn(models.RoleUser), Presence{}, RoleIs{Target: models.RoleChef})
	if state != Denied {
		t.Fatalf("expected denied, got %s", state)
	}
	nav := &fakeNav{}
	g.Deny(nav, "meal add")
	if nav.paths[0] != "/" {
		t.Errorf("expected redirect home for wrong role, got %s", nav.paths[0])
	}
}

func TestChainPendingShortCircuits(t *testing.T) {
	snap := AuthSnapshot{SessionLoading: true}
	state, _ := Chain(snap, Presence{}, RoleIs{Target: models.RoleChef})
	if state != Pending {
		t.Errorf("expected pending while loading, got %s", state)
	}
}

func TestChainAllAllowed(t *testing.T) {
	state, g := Chain(signedIn(models.RoleAdmin), Presence{}, RoleIs{Target: models.RoleAdmin})
	if state != Allowed || g != nil {
		t.Errorf("expected allowed with no guard, got %s %v", state, g)
	}
}
