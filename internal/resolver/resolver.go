// Package resolver derives the backend-assigned role for the current session
// user. It reacts to identity changes from the session observer, fetches the
// backend profile keyed by email, and publishes {data, loading} to its own
// subscribers. A backend failure fails open to the base role so a transient
// outage never locks a user out; this is deliberate and load-bearing.
package resolver

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mealhub-dev/mealhub/internal/api"
	"github.com/mealhub-dev/mealhub/internal/models"
	"github.com/mealhub-dev/mealhub/internal/session"
)

// ProfileFetcher is the slice of the API client the resolver needs.
type ProfileFetcher interface {
	GetUser(ctx context.Context, email string) (*models.Profile, error)
}

// Resolved is the role data extracted from the backend profile.
type Resolved struct {
	Role   models.Role
	Status models.AccountStatus
	ChefID string
}

// State is the published resolver output. Data is nil while no user is signed
// in or no resolution has completed; Loading is true while a fetch is in
// flight.
type State struct {
	Data    *Resolved
	Loading bool
}

// failOpen is the profile assumed when the backend cannot answer.
func failOpen() *Resolved {
	return &Resolved{Role: models.RoleUser, Status: models.StatusActive}
}

// Resolver watches the session stream and resolves each identity to its
// backend role. One writer (the session subscription), many readers.
type Resolver struct {
	fetch ProfileFetcher
	log   zerolog.Logger

	mu        sync.Mutex
	state     State
	subs      []subscriber
	nextID    int
	gen       int
	cancel    context.CancelFunc
	lastEmail string
	hasUser   bool
}

type subscriber struct {
	id int
	fn func(State)
}

// New creates a resolver over the given profile fetcher.
func New(fetch ProfileFetcher, log zerolog.Logger) *Resolver {
	return &Resolver{fetch: fetch, log: log}
}

// Bind subscribes the resolver to the session observer and returns the
// unsubscribe function. In-flight fetches are abandoned on unbind.
func (r *Resolver) Bind(obs *session.Observer) func() {
	unsub := obs.Subscribe(r.onSession)
	return func() {
		unsub()
		r.mu.Lock()
		if r.cancel != nil {
			r.cancel()
			r.cancel = nil
		}
		r.gen++
		r.mu.Unlock()
	}
}

// Current returns the latest resolver state.
func (r *Resolver) Current() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Subscribe registers fn for state updates, replaying the current state.
func (r *Resolver) Subscribe(fn func(State)) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.subs = append(r.subs, subscriber{id: id, fn: fn})
	current := r.state
	r.mu.Unlock()

	fn(current)

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, sub := range r.subs {
			if sub.id == id {
				r.subs = append(r.subs[:i], r.subs[i+1:]...)
				return
			}
		}
	}
}

func (r *Resolver) onSession(st session.State) {
	if st.Loading {
		// Session still unknown; nothing to resolve yet.
		return
	}

	r.mu.Lock()
	if st.User == nil {
		r.lastEmail = ""
		r.hasUser = false
		if r.cancel != nil {
			r.cancel()
			r.cancel = nil
		}
		r.gen++
		r.setStateLocked(State{Data: nil, Loading: false})
		return
	}

	// Same identity (profile-field updates republish the same principal):
	// keep the existing resolution.
	if r.hasUser && st.User.Email == r.lastEmail {
		r.mu.Unlock()
		return
	}

	r.lastEmail = st.User.Email
	r.hasUser = true
	if r.cancel != nil {
		r.cancel()
	}
	r.gen++
	gen := r.gen
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	email := st.User.Email
	r.setStateLocked(State{Data: nil, Loading: true})

	go r.resolve(ctx, gen, email)
}

// resolve fetches the backend profile for one identity generation. A result
// arriving after the generation has moved on is discarded.
func (r *Resolver) resolve(ctx context.Context, gen int, email string) {
	profile, err := r.fetch.GetUser(ctx, email)

	r.mu.Lock()
	if gen != r.gen {
		// Identity changed while the fetch was in flight.
		r.mu.Unlock()
		return
	}

	switch {
	case err == nil:
		r.setStateLocked(State{
			Data: &Resolved{
				Role:   profile.Role,
				Status: profile.Status,
				ChefID: profile.ChefID,
			},
			Loading: false,
		})
	case errors.Is(err, context.Canceled):
		r.mu.Unlock()
	case errors.Is(err, api.ErrNoToken):
		// Token not available yet: still unresolved, not an error. The next
		// auth-state notification restarts the fetch.
		r.hasUser = false
		r.setStateLocked(State{Data: nil, Loading: true})
	default:
		r.log.Warn().Err(err).Str("email", email).Msg("Profile fetch failed, assuming base role")
		r.setStateLocked(State{Data: failOpen(), Loading: false})
	}
}

// setStateLocked stores the state and notifies subscribers. Callers hold
// r.mu; the lock is released before callbacks run.
func (r *Resolver) setStateLocked(st State) {
	r.state = st
	subs := append([]subscriber(nil), r.subs...)
	r.mu.Unlock()

	for _, sub := range subs {
		sub.fn(st)
	}
}
