package session

import (
	"sync"

	"github.com/mealhub-dev/mealhub/internal/identity"
)

// State is the observed identity session: the current principal plus a
// loading flag that stays true until the provider has delivered its first
// auth-state notification. While Loading is true the session is unknown, not
// unauthenticated; consumers must not treat a nil User as "signed out" yet.
type State struct {
	User    *identity.User
	Loading bool
}

// Observer republishes provider auth-state changes as an ordered stream.
// Subscribers are notified in subscription order, and each new subscriber
// immediately receives the current state.
type Observer struct {
	mu       sync.Mutex
	dispatch sync.Mutex
	state    State
	subs     []subscriber
	nextID   int
}

type subscriber struct {
	id int
	fn func(State)
}

// NewObserver returns an observer in the initial loading state.
func NewObserver() *Observer {
	return &Observer{state: State{Loading: true}}
}

// Current returns the most recently published state.
func (o *Observer) Current() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Subscribe registers fn, replays the current state to it, and returns the
// unsubscribe function. After unsubscribe returns, fn is never called again.
func (o *Observer) Subscribe(fn func(State)) func() {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subs = append(o.subs, subscriber{id: id, fn: fn})
	current := o.state
	o.mu.Unlock()

	// Replay under the dispatch lock so the snapshot cannot interleave with
	// an in-flight Publish.
	o.dispatch.Lock()
	fn(current)
	o.dispatch.Unlock()

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		for i, sub := range o.subs {
			if sub.id == id {
				o.subs = append(o.subs[:i], o.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish records a new session state and notifies all subscribers in
// subscription order. Publishes are serialized, so every subscriber sees the
// same sequence of states.
func (o *Observer) Publish(user *identity.User) {
	o.dispatch.Lock()
	defer o.dispatch.Unlock()

	o.mu.Lock()
	o.state = State{User: user, Loading: false}
	subs := append([]subscriber(nil), o.subs...)
	state := o.state
	o.mu.Unlock()

	for _, sub := range subs {
		sub.fn(state)
	}
}
