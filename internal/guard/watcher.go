package guard

import (
	"context"
	"sync"

	"github.com/mealhub-dev/mealhub/internal/resolver"
	"github.com/mealhub-dev/mealhub/internal/session"
)

// Watcher combines the session and resolver streams into one AuthSnapshot
// and lets callers wait for the Pending window to close. It is the reader
// side of the pipeline: it never writes auth state.
type Watcher struct {
	mu      sync.Mutex
	snap    AuthSnapshot
	changed chan struct{}
	unsubs  []func()
}

// NewWatcher binds a watcher to the two auth streams. The resolver must be
// bound to the observer before any watcher is created: subscription order is
// delivery order, so the resolver marks its loading flag before the watcher
// sees the session settle and the Pending window covers the role fetch.
func NewWatcher(obs *session.Observer, res *resolver.Resolver) *Watcher {
	w := &Watcher{
		snap:    AuthSnapshot{SessionLoading: true},
		changed: make(chan struct{}),
	}
	w.unsubs = append(w.unsubs, obs.Subscribe(func(st session.State) {
		w.update(func(snap *AuthSnapshot) {
			snap.SessionLoading = st.Loading
			snap.User = st.User
		})
	}))
	w.unsubs = append(w.unsubs, res.Subscribe(func(st resolver.State) {
		w.update(func(snap *AuthSnapshot) {
			snap.RoleLoading = st.Loading
			if st.Data != nil {
				snap.Role = st.Data.Role
				snap.RoleResolved = true
			} else {
				snap.Role = ""
				snap.RoleResolved = false
			}
		})
	}))
	return w
}

// Close detaches the watcher from both streams.
func (w *Watcher) Close() {
	for _, unsub := range w.unsubs {
		unsub()
	}
	w.unsubs = nil
}

func (w *Watcher) update(apply func(*AuthSnapshot)) {
	w.mu.Lock()
	apply(&w.snap)
	close(w.changed)
	w.changed = make(chan struct{})
	w.mu.Unlock()
}

// Snapshot returns the current combined auth state.
func (w *Watcher) Snapshot() AuthSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snap
}

// WaitSettled blocks until the snapshot leaves the Pending window (both
// loading flags false) or ctx expires, and returns the settled snapshot.
func (w *Watcher) WaitSettled(ctx context.Context) (AuthSnapshot, error) {
	for {
		w.mu.Lock()
		snap := w.snap
		changed := w.changed
		w.mu.Unlock()

		if !snap.Unknown() {
			return snap, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return snap, ctx.Err()
		}
	}
}
