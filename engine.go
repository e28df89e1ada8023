/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

// The game engine. Every transition is a pure function taking a session
// (and sometimes its deck) and returning a replacement session; nothing
// here mutates state in place or performs I/O. Queue semantics per game:
//
//   - recycle games (charades, taboo, monikers): passed cards come back
//     around once remaining runs dry, as a whole-lap rotation
//   - discard games (trivia, justone): passed cards are gone for good
//
// Monikers layers three rounds on top, each played over its own pair of
// queues with recycle-within-turn semantics regardless of the nominal
// pass behavior.

func cloneIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// newSession builds the initial session for a deck, optionally permuting
// the card order with a deck-seeded shuffle.
func newSession(deck *Deck, shuffleEnabled bool) Session {
	cardIDs := deck.CardIDs()
	if shuffleEnabled {
		cardIDs = shuffleCardIDs(cardIDs, deck.DeckID)
	}

	var current string
	var remaining []string
	if len(cardIDs) > 0 {
		current, remaining = cardIDs[0], cardIDs[1:]
	}

	session := Session{
		SchemaVersion:  currentSchemaVersion,
		DeckID:         deck.DeckID,
		DeckVersion:    deck.Version,
		GameType:       deck.GameType,
		ShuffleEnabled: shuffleEnabled,
		Remaining:      cloneIDs(remaining),
		Passed:         []string{},
		Current:        current,
	}

	if deck.GameType == GameMonikers {
		session.Monikers = &MonikersState{
			Round:     1,
			Remaining: cloneIDs(remaining),
			Passed:    []string{},
		}
	}

	return session
}

// getCurrentCard resolves the session's current card against the deck.
func getCurrentCard(session Session, deck *Deck) Card {
	if session.Current == "" {
		return nil
	}
	return deck.CardByID(session.Current)
}

// nextCard advances past the current card without keeping it anywhere: the
// card is considered handled. Recycle games rotate the passed queue back in
// as a whole lap once remaining is empty.
func nextCard(session Session) Session {
	if session.isMonikers() {
		return nextCardMonikers(session)
	}

	session.IsRevealed = false

	if len(session.Remaining) > 0 {
		session.Current = session.Remaining[0]
		session.Remaining = cloneIDs(session.Remaining[1:])
		return session
	}

	if Games[session.GameType].PassBehavior == PassRecycle && len(session.Passed) > 0 {
		session.Current = session.Passed[0]
		session.Remaining = cloneIDs(session.Passed[1:])
		session.Passed = []string{}
		return session
	}

	session.Current = ""
	return session
}

func nextCardMonikers(session Session) Session {
	round := *session.Monikers
	session.Monikers = &round
	session.IsRevealed = false

	if len(round.Remaining) > 0 {
		session.Current = round.Remaining[0]
		round.Remaining = cloneIDs(round.Remaining[1:])
		return session
	}

	if len(round.Passed) > 0 {
		session.Current = round.Passed[0]
		round.Remaining = cloneIDs(round.Passed[1:])
		round.Passed = []string{}
		return session
	}

	session.Current = ""
	return session
}

// passCard defers the current card. Recycle games append it to the passed
// queue; when remaining is empty the combined passed queue plus the card
// being passed wraps around to become the new remaining lap. Passing the
// sole card in play is a no-op. Discard games treat pass as next.
func passCard(session Session) Session {
	if session.Current == "" {
		return session
	}

	if session.isMonikers() {
		return passCardMonikers(session)
	}

	if Games[session.GameType].PassBehavior == PassDiscard {
		return nextCard(session)
	}

	current := session.Current
	session.IsRevealed = false

	if len(session.Remaining) > 0 {
		session.Passed = append(cloneIDs(session.Passed), current)
		session.Current = session.Remaining[0]
		session.Remaining = cloneIDs(session.Remaining[1:])
		return session
	}

	if len(session.Passed) > 0 {
		wrapped := append(cloneIDs(session.Passed), current)
		session.Current = wrapped[0]
		session.Remaining = wrapped[1:]
		session.Passed = []string{}
		return session
	}

	// Only one card left in play; nowhere to pass it to.
	return session
}

func passCardMonikers(session Session) Session {
	round := *session.Monikers
	session.Monikers = &round

	current := session.Current
	session.IsRevealed = false

	if len(round.Remaining) > 0 {
		round.Passed = append(cloneIDs(round.Passed), current)
		session.Current = round.Remaining[0]
		round.Remaining = cloneIDs(round.Remaining[1:])
		return session
	}

	if len(round.Passed) > 0 {
		wrapped := append(cloneIDs(round.Passed), current)
		session.Current = wrapped[0]
		round.Remaining = wrapped[1:]
		round.Passed = []string{}
		return session
	}

	return session
}

// revealCard flips the reveal flag. Only trivia renders it, but setting it
// elsewhere is harmless.
func revealCard(session Session) Session {
	session.IsRevealed = true
	return session
}

// restartSession discards all progress and starts fresh with the same
// shuffle setting.
func restartSession(session Session, deck *Deck) Session {
	return newSession(deck, session.ShuffleEnabled)
}

// monikersCorrect removes the current card from play for the rest of the
// round: unlike next or pass it is re-queued nowhere.
func monikersCorrect(session Session) Session {
	if !session.isMonikers() || session.Current == "" {
		return session
	}

	round := *session.Monikers
	session.Monikers = &round
	session.IsRevealed = false

	if len(round.Remaining) > 0 {
		session.Current = round.Remaining[0]
		round.Remaining = cloneIDs(round.Remaining[1:])
		return session
	}

	if len(round.Passed) > 0 {
		session.Current = round.Passed[0]
		round.Remaining = cloneIDs(round.Passed[1:])
		round.Passed = []string{}
		return session
	}

	session.Current = ""
	return session
}

// monikersEndTurn hands the deck to the next team: the current card, the
// remaining queue, and the passed queue merge into a single queue in that
// order, and its head becomes current. Nothing is lost.
func monikersEndTurn(session Session) Session {
	if !session.isMonikers() {
		return session
	}

	round := *session.Monikers
	session.Monikers = &round

	merged := make([]string, 0, 1+len(round.Remaining)+len(round.Passed))
	if session.Current != "" {
		merged = append(merged, session.Current)
	}
	merged = append(merged, round.Remaining...)
	merged = append(merged, round.Passed...)

	if len(merged) == 0 {
		session.Current = ""
		round.Remaining = []string{}
		round.Passed = []string{}
		return session
	}

	session.Current = merged[0]
	round.Remaining = merged[1:]
	round.Passed = []string{}
	session.IsRevealed = false
	return session
}

// monikersStartNextRound advances to the next of the three rounds,
// repopulating the round queues from the full deck, reshuffled with a
// round-specific seed when shuffle is enabled. No-op after round 3.
func monikersStartNextRound(session Session, deck *Deck) Session {
	if !session.isMonikers() {
		return session
	}

	next := session.Monikers.Round + 1
	if next > 3 {
		return session
	}

	cardIDs := deck.CardIDs()
	if session.ShuffleEnabled {
		cardIDs = shuffleForRound(cardIDs, deck.DeckID, next)
	}

	var current string
	var remaining []string
	if len(cardIDs) > 0 {
		current, remaining = cardIDs[0], cardIDs[1:]
	}

	session.Monikers = &MonikersState{
		Round:     next,
		Remaining: cloneIDs(remaining),
		Passed:    []string{},
	}
	session.Current = current
	session.IsRevealed = false
	return session
}

// isSessionComplete reports whether there is nothing left to play. For
// Monikers this requires round 3: finishing rounds 1 or 2 is only round
// completion.
func isSessionComplete(session Session) bool {
	if session.isMonikers() {
		return session.Monikers.Round == 3 &&
			session.Current == "" &&
			len(session.Monikers.Remaining) == 0 &&
			len(session.Monikers.Passed) == 0
	}

	return session.Current == "" &&
		len(session.Remaining) == 0 &&
		len(session.Passed) == 0
}

// isRoundComplete reports whether the active Monikers round has no cards
// left, regardless of which round it is.
func isRoundComplete(session Session) bool {
	if !session.isMonikers() {
		return false
	}
	return session.Current == "" &&
		len(session.Monikers.Remaining) == 0 &&
		len(session.Monikers.Passed) == 0
}

// Progress summarizes queue counts for display.
type Progress struct {
	Remaining int `json:"remaining"`
	Passed    int `json:"passed"`
	Total     int `json:"total"`
}

// sessionProgress reports how many cards are still in play. For Monikers
// the total is the current round's live card count, since solved cards
// leave play entirely.
func sessionProgress(session Session) Progress {
	inPlay := 0
	if session.Current != "" {
		inPlay = 1
	}

	if session.isMonikers() {
		remaining := inPlay + len(session.Monikers.Remaining) + len(session.Monikers.Passed)
		return Progress{
			Remaining: remaining,
			Passed:    len(session.Monikers.Passed),
			Total:     remaining,
		}
	}

	remaining := inPlay + len(session.Remaining)
	return Progress{
		Remaining: remaining,
		Passed:    len(session.Passed),
		Total:     remaining + len(session.Passed),
	}
}
