package main

import (
	"reflect"
	"testing"
)

func testManager(t *testing.T) (*SessionManager, *SessionStore) {
	t.Helper()
	cfg := &Config{maxSessions: 10}
	store := newSessionStore(cfg, newMemoryKV())
	return newSessionManager(cfg, store), store
}

func TestManagerStartPersists(t *testing.T) {
	manager, store := testManager(t)
	deck := charadesDeck("c1", "c2", "c3")

	session := manager.Start(deck, false)

	if session.Current != "c1" {
		t.Errorf("current = %q, want c1", session.Current)
	}

	stored := store.Load(deck.DeckID)
	if stored == nil {
		t.Fatal("start did not persist the session")
	}
	if !reflect.DeepEqual(*stored, session) {
		t.Error("persisted session differs from the returned one")
	}
}

func TestManagerResumeValidSession(t *testing.T) {
	manager, _ := testManager(t)
	deck := charadesDeck("c1", "c2", "c3")

	started := manager.Start(deck, false)
	started, _ = manager.Apply(started, deck, "pass")

	resumed, invalid := manager.Resume(deck)
	if invalid != nil {
		t.Fatalf("valid session rejected: %+v", invalid)
	}
	if resumed == nil {
		t.Fatal("no session resumed")
	}
	if !reflect.DeepEqual(*resumed, started) {
		t.Errorf("resumed session differs:\nwant %+v\ngot  %+v", started, *resumed)
	}
}

func TestManagerResumeNothingStored(t *testing.T) {
	manager, _ := testManager(t)
	deck := charadesDeck("c1")

	session, invalid := manager.Resume(deck)
	if session != nil || invalid != nil {
		t.Errorf("resume of nothing returned %+v / %+v", session, invalid)
	}
}

// A deck update invalidates the stored session but leaves its bytes in
// place until the player explicitly discards them.
func TestManagerResumeStaleDeckVersion(t *testing.T) {
	manager, store := testManager(t)
	deck := charadesDeck("c1", "c2")

	manager.Start(deck, false)

	updated := charadesDeck("c1", "c2")
	updated.Version = "v2"

	session, invalid := manager.Resume(updated)
	if session != nil {
		t.Fatal("stale session was resumed")
	}
	if invalid == nil || invalid.Reason != ReasonVersionMismatch {
		t.Fatalf("invalid = %+v, want version_mismatch", invalid)
	}

	if !store.Has(deck.DeckID) {
		t.Error("invalid session bytes were auto-deleted")
	}

	manager.Clear(deck.DeckID)
	if store.Has(deck.DeckID) {
		t.Error("explicit clear left the session behind")
	}
}

func TestManagerResumeCorruptIntegrity(t *testing.T) {
	manager, store := testManager(t)
	deck := charadesDeck("c1", "c2", "c3")

	session := newSession(deck, false)
	session.Passed = []string{"c2"} // duplicate of a remaining card
	store.Save(session)

	resumed, invalid := manager.Resume(deck)
	if resumed != nil {
		t.Fatal("session with duplicate cards was resumed")
	}
	if invalid == nil || invalid.Reason != ReasonCardsChanged {
		t.Errorf("invalid = %+v, want cards_changed", invalid)
	}
}

func TestManagerApplyActions(t *testing.T) {
	manager, store := testManager(t)
	deck := monikersDeck("m1", "m2", "m3")

	session := manager.Start(deck, false)

	tests := []struct {
		action  string
		current string
	}{
		{action: "pass", current: "m2"},
		{action: "correct", current: "m3"},
		{action: "end_turn", current: "m3"},
		{action: "next", current: "m1"},
	}

	for _, tt := range tests {
		var ok bool
		session, ok = manager.Apply(session, deck, tt.action)
		if !ok {
			t.Fatalf("action %q not recognized", tt.action)
		}
		if session.Current != tt.current {
			t.Fatalf("after %q: current = %q, want %q", tt.action, session.Current, tt.current)
		}

		stored := store.Load(deck.DeckID)
		if stored == nil || !reflect.DeepEqual(*stored, session) {
			t.Fatalf("after %q: store out of sync", tt.action)
		}
	}
}

func TestManagerApplyUnknownAction(t *testing.T) {
	manager, _ := testManager(t)
	deck := charadesDeck("c1", "c2")

	session := manager.Start(deck, false)

	after, ok := manager.Apply(session, deck, "frobnicate")
	if ok {
		t.Error("unknown action reported as applied")
	}
	if !reflect.DeepEqual(after, session) {
		t.Error("unknown action changed the session")
	}
}

func TestManagerRestart(t *testing.T) {
	manager, _ := testManager(t)
	deck := charadesDeck("c1", "c2", "c3")

	session := manager.Start(deck, false)
	session, _ = manager.Apply(session, deck, "next")
	session, _ = manager.Apply(session, deck, "pass")

	restarted := manager.Restart(session, deck)
	if !reflect.DeepEqual(restarted, newSession(deck, false)) {
		t.Errorf("restart did not reset the session: %+v", restarted)
	}

	resumed, invalid := manager.Resume(deck)
	if invalid != nil || resumed == nil || resumed.Current != "c1" {
		t.Errorf("restarted session not persisted: %+v / %+v", resumed, invalid)
	}
}
