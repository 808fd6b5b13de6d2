package session

import (
	"sync"
	"testing"

	"github.com/mealhub-dev/mealhub/internal/identity"
)

func TestObserverStartsLoading(t *testing.T) {
	obs := NewObserver()

	state := obs.Current()
	if !state.Loading {
		t.Error("expected initial state to be loading")
	}
	if state.User != nil {
		t.Errorf("expected no user in initial state, got %v", state.User)
	}
}

func TestObserverReplaysCurrentStateOnSubscribe(t *testing.T) {
	obs := NewObserver()

	var got []State
	obs.Subscribe(func(s State) { got = append(got, s) })

	if len(got) != 1 {
		t.Fatalf("expected 1 replayed state, got %d", len(got))
	}
	if !got[0].Loading {
		t.Error("expected replayed initial state to be loading")
	}

	// A later subscriber sees the already-published state, not the initial one.
	obs.Publish(&identity.User{Email: "a@example.com"})

	var late []State
	obs.Subscribe(func(s State) { late = append(late, s) })
	if len(late) != 1 {
		t.Fatalf("expected 1 replayed state, got %d", len(late))
	}
	if late[0].Loading {
		t.Error("expected replay after publish to not be loading")
	}
	if late[0].User == nil || late[0].User.Email != "a@example.com" {
		t.Errorf("expected replayed user a@example.com, got %v", late[0].User)
	}
}

func TestObserverFirstPublishClearsLoading(t *testing.T) {
	obs := NewObserver()

	var got []State
	obs.Subscribe(func(s State) { got = append(got, s) })

	// First notification with no user: signed out, not unknown.
	obs.Publish(nil)

	last := got[len(got)-1]
	if last.Loading {
		t.Error("expected loading cleared after first publish")
	}
	if last.User != nil {
		t.Errorf("expected nil user, got %v", last.User)
	}
}

func TestObserverNotifiesInSubscriptionOrder(t *testing.T) {
	obs := NewObserver()

	var mu sync.Mutex
	var order []string
	obs.Subscribe(func(s State) {
		if !s.Loading {
			mu.Lock()
			order = append(order, "first")
			mu.Unlock()
		}
	})
	obs.Subscribe(func(s State) {
		if !s.Loading {
			mu.Lock()
			order = append(order, "second")
			mu.Unlock()
		}
	})

	obs.Publish(&identity.User{Email: "a@example.com"})
	obs.Publish(nil)

	want := []string{"first", "second", "first", "second"}
	if len(order) != len(want) {
		t.Fatalf("expected %d notifications, got %d: %v", len(want), len(order), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("notification %d: expected %s, got %s (full order %v)", i, want[i], order[i], order)
		}
	}
}

func TestObserverUnsubscribeStopsNotifications(t *testing.T) {
	obs := NewObserver()

	calls := 0
	unsub := obs.Subscribe(func(s State) { calls++ })
	obs.Publish(&identity.User{Email: "a@example.com"})

	before := calls
	unsub()
	obs.Publish(nil)

	if calls != before {
		t.Errorf("expected no notifications after unsubscribe, got %d extra", calls-before)
	}
}
