// Package guard gates protected surfaces on the resolved auth state. Every
// guard runs the same three-state machine; variants differ only in their
// predicate. While either underlying loading flag is true the state is
// Pending: callers must show a loading indicator and may neither render the
// protected surface nor redirect away.
package guard

import (
	"github.com/mealhub-dev/mealhub/internal/identity"
	"github.com/mealhub-dev/mealhub/internal/models"
)

// State is the guard decision.
type State int

const (
	Pending State = iota
	Denied
	Allowed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Denied:
		return "denied"
	case Allowed:
		return "allowed"
	}
	return "unknown"
}

// AuthSnapshot is the combined auth state a guard evaluates: the session
// stream and the resolver stream with their independent loading flags.
type AuthSnapshot struct {
	SessionLoading bool
	User           *identity.User
	RoleLoading    bool
	Role           models.Role
	RoleResolved   bool
}

// Unknown reports whether the snapshot is still loading from either source.
func (s AuthSnapshot) Unknown() bool {
	return s.SessionLoading || s.RoleLoading
}

// Navigator performs guard redirects. returnTo carries the attempted
// location for post-login return; empty when no return is wanted.
type Navigator interface {
	Navigate(path, returnTo string)
}

// Guard is one gate: a predicate plus its deny redirect.
type Guard interface {
	// Evaluate runs the state machine over the snapshot.
	Evaluate(snap AuthSnapshot) State
	// Deny performs the redirect for a Denied evaluation. attempted is the
	// location the caller was trying to reach.
	Deny(nav Navigator, attempted string)
}

// Presence requires a signed-in user. On deny it redirects to /login and
// preserves the attempted location.
type Presence struct{}

func (Presence) Evaluate(snap AuthSnapshot) State {
	if snap.Unknown() {
		return Pending
	}
	if snap.User == nil {
		return Denied
	}
	return Allowed
}

func (Presence) Deny(nav Navigator, attempted string) {
	nav.Navigate("/login", attempted)
}

// RoleIs requires the resolved backend role to equal the target role. On
// deny it redirects home without preserving the location.
type RoleIs struct {
	Target models.Role
}

func (g RoleIs) Evaluate(snap AuthSnapshot) State {
	if snap.Unknown() {
		return Pending
	}
	if !snap.RoleResolved || snap.Role != g.Target {
		return Denied
	}
	return Allowed
}

func (RoleIs) Deny(nav Navigator, attempted string) {
	nav.Navigate("/", "")
}

// Chain evaluates guards in order and returns the first non-Allowed result
// with the guard that produced it. Presence always runs before role checks,
// so an unauthenticated visitor is sent to /login, never silently home.
func Chain(snap AuthSnapshot, guards ...Guard) (State, Guard) {
	for _, g := range guards {
		switch st := g.Evaluate(snap); st {
		case Pending:
			return Pending, g
		case Denied:
			return Denied, g
		}
	}
	return Allowed, nil
}
