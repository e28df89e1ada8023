package main

import (
	"reflect"
	"testing"
)

func TestNewSessionMonikers(t *testing.T) {
	deck := monikersDeck("m1", "m2", "m3")
	session := newSession(deck, false)

	if session.Monikers == nil {
		t.Fatal("monikers session missing round state")
	}
	if session.Monikers.Round != 1 {
		t.Errorf("round = %d, want 1", session.Monikers.Round)
	}
	if session.Current != "m1" {
		t.Errorf("current = %q, want m1", session.Current)
	}
	if !reflect.DeepEqual(session.Monikers.Remaining, []string{"m2", "m3"}) {
		t.Errorf("round remaining = %v, want [m2 m3]", session.Monikers.Remaining)
	}
	if !reflect.DeepEqual(session.Remaining, session.Monikers.Remaining) {
		t.Errorf("base remaining %v does not mirror round remaining %v", session.Remaining, session.Monikers.Remaining)
	}
}

func TestMonikersPassAlwaysRecycles(t *testing.T) {
	deck := monikersDeck("m1", "m2", "m3")
	session := newSession(deck, false)

	session = passCard(session)
	if session.Current != "m2" || !reflect.DeepEqual(session.Monikers.Passed, []string{"m1"}) {
		t.Fatalf("after pass: current=%q passed=%v", session.Current, session.Monikers.Passed)
	}

	session = passCard(session)
	session = passCard(session)

	// The wrap lap puts m1 back in front.
	if session.Current != "m1" {
		t.Errorf("current = %q after wrapping, want m1", session.Current)
	}
	if len(session.Monikers.Passed) != 0 {
		t.Errorf("round passed = %v, want empty after wrap", session.Monikers.Passed)
	}
}

func TestMonikersPassLastCardIsNoOp(t *testing.T) {
	deck := monikersDeck("m1")
	session := newSession(deck, false)

	passed := passCard(session)
	if !reflect.DeepEqual(passed, session) {
		t.Error("passing the sole monikers card changed the session")
	}
}

func TestMonikersCorrectRemovesFromPlay(t *testing.T) {
	deck := monikersDeck("m1", "m2", "m3")
	session := newSession(deck, false)

	session = monikersCorrect(session)

	if session.Current != "m2" {
		t.Errorf("current = %q, want m2", session.Current)
	}
	for _, id := range liveIDs(session) {
		if id == "m1" {
			t.Error("solved card m1 still in play")
		}
	}
}

func TestMonikersCorrectDrainsPassedQueue(t *testing.T) {
	deck := monikersDeck("m1", "m2")
	session := newSession(deck, false)

	session = passCard(session)            // m1 deferred, m2 current
	session = monikersCorrect(session)     // m2 solved, m1 promoted from passed

	if session.Current != "m1" {
		t.Errorf("current = %q, want m1", session.Current)
	}
	if len(session.Monikers.Passed) != 0 {
		t.Errorf("round passed = %v, want empty", session.Monikers.Passed)
	}
}

func TestMonikersEndTurnMergeOrder(t *testing.T) {
	deck := monikersDeck("m1", "m2", "m3", "m4", "m5")
	session := newSession(deck, false)

	session = passCard(session) // passed=[m1], current=m2
	session = passCard(session) // passed=[m1 m2], current=m3

	session = monikersEndTurn(session)

	// Merge order is current, then remaining, then passed.
	if session.Current != "m3" {
		t.Errorf("current = %q, want m3", session.Current)
	}
	if !reflect.DeepEqual(session.Monikers.Remaining, []string{"m4", "m5", "m1", "m2"}) {
		t.Errorf("round remaining = %v, want [m4 m5 m1 m2]", session.Monikers.Remaining)
	}
	if len(session.Monikers.Passed) != 0 {
		t.Errorf("round passed = %v, want empty", session.Monikers.Passed)
	}
}

func TestMonikersEndTurnWithoutCurrent(t *testing.T) {
	deck := monikersDeck("m1", "m2")
	session := newSession(deck, false)

	session = monikersCorrect(session)
	session = monikersCorrect(session)

	ended := monikersEndTurn(session)
	if ended.Current != "" || len(ended.Monikers.Remaining) != 0 || len(ended.Monikers.Passed) != 0 {
		t.Errorf("end turn on an empty round produced cards: %+v", ended.Monikers)
	}
}

func TestMonikersRoundLifecycle(t *testing.T) {
	deck := monikersDeck("m1", "m2", "m3")
	session := newSession(deck, false)

	for round := 1; round <= 3; round++ {
		if session.Monikers.Round != round {
			t.Fatalf("round = %d, want %d", session.Monikers.Round, round)
		}

		// Solve every card in the round.
		for session.Current != "" {
			session = monikersCorrect(session)
		}

		if !isRoundComplete(session) {
			t.Fatalf("round %d should be complete", round)
		}

		if round < 3 {
			if isSessionComplete(session) {
				t.Fatalf("session complete after round %d", round)
			}

			session = monikersStartNextRound(session, deck)

			if got := len(liveIDs(session)); got != len(deck.Cards) {
				t.Fatalf("round %d started with %d cards, want %d", round+1, got, len(deck.Cards))
			}
			assertNoDuplicates(t, session, deck)
		}
	}

	if !isSessionComplete(session) {
		t.Error("session should be complete after round 3")
	}

	// Starting another round after the third is a no-op.
	after := monikersStartNextRound(session, deck)
	if !reflect.DeepEqual(after, session) {
		t.Error("starting a round past 3 changed the session")
	}
}

func TestMonikersRoundsShuffleIndependently(t *testing.T) {
	deck := monikersDeck("m1", "m2", "m3", "m4", "m5", "m6", "m7", "m8")

	session := newSession(deck, true)
	round1 := append([]string{session.Current}, session.Monikers.Remaining...)

	for session.Current != "" {
		session = monikersCorrect(session)
	}
	session = monikersStartNextRound(session, deck)
	round2 := append([]string{session.Current}, session.Monikers.Remaining...)

	for session.Current != "" {
		session = monikersCorrect(session)
	}
	session = monikersStartNextRound(session, deck)
	round3 := append([]string{session.Current}, session.Monikers.Remaining...)

	if reflect.DeepEqual(round1, round2) || reflect.DeepEqual(round2, round3) || reflect.DeepEqual(round1, round3) {
		t.Errorf("round orderings not independent:\n1: %v\n2: %v\n3: %v", round1, round2, round3)
	}
}

func TestMonikersIsRoundCompleteFalseForStandardGames(t *testing.T) {
	deck := triviaDeck("t1")
	session := newSession(deck, false)
	session = nextCard(session)

	if isRoundComplete(session) {
		t.Error("standard games have no rounds to complete")
	}
}

func TestSessionProgress(t *testing.T) {
	deck := charadesDeck("c1", "c2", "c3", "c4")
	session := newSession(deck, false)

	progress := sessionProgress(session)
	if progress.Remaining != 4 || progress.Passed != 0 || progress.Total != 4 {
		t.Errorf("initial progress = %+v", progress)
	}

	session = passCard(session)
	session = nextCard(session)

	progress = sessionProgress(session)
	if progress.Remaining != 2 || progress.Passed != 1 || progress.Total != 3 {
		t.Errorf("progress after pass+next = %+v", progress)
	}
}
