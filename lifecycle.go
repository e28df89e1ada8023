package main

// SessionManager orchestrates the session store, the validator, and the
// engine for one consumer. It owns no game logic of its own: it loads and
// validates stored sessions, routes every engine transition through a
// single commit path that triggers a best-effort save, and surfaces
// invalid sessions to the caller instead of silently playing them.
type SessionManager struct {
	cfg   *Config
	store *SessionStore
}

func newSessionManager(cfg *Config, store *SessionStore) *SessionManager {
	return &SessionManager{
		cfg:   cfg,
		store: store,
	}
}

// Resume loads and validates the stored session for a deck. It returns the
// session when one exists and is still playable, or the validation failure
// when one exists but cannot be resumed. An invalid session's stored bytes
// are left in place; only an explicit Clear removes them.
func (m *SessionManager) Resume(deck *Deck) (*Session, *ValidationResult) {
	session := m.store.Load(deck.DeckID)
	if session == nil {
		return nil, nil
	}

	if result := validateIntegrity(*session); !result.Valid {
		logf(m.cfg, "PLAY: Stored session for %s failed integrity check: %s", deck.DeckID, result.Message)
		return nil, &result
	}

	if result := validateSession(*session, deck); !result.Valid {
		logf(m.cfg, "PLAY: Stored session for %s is invalid (%s)", deck.DeckID, result.Reason)
		return nil, &result
	}

	return session, nil
}

// Start begins a fresh session for a deck, replacing any stored one.
func (m *SessionManager) Start(deck *Deck, shuffleEnabled bool) Session {
	return m.commit(newSession(deck, shuffleEnabled))
}

// Restart throws away all progress and begins again with the same shuffle
// setting.
func (m *SessionManager) Restart(session Session, deck *Deck) Session {
	return m.commit(restartSession(session, deck))
}

// Clear removes the stored session for a deck.
func (m *SessionManager) Clear(deckID string) {
	m.store.Clear(deckID)
}

// commit is the single path every new session state flows through. The
// save is best-effort: a failing store never blocks play.
func (m *SessionManager) commit(session Session) Session {
	m.store.Save(session)
	return session
}

// Apply runs one named engine transition and commits the result. The
// returned bool is false for unrecognized actions, which leave the session
// untouched.
func (m *SessionManager) Apply(session Session, deck *Deck, action string) (Session, bool) {
	switch action {
	case "next":
		session = nextCard(session)
	case "pass":
		session = passCard(session)
	case "reveal":
		session = revealCard(session)
	case "correct":
		session = monikersCorrect(session)
	case "end_turn":
		session = monikersEndTurn(session)
	case "next_round":
		session = monikersStartNextRound(session, deck)
	case "restart":
		session = restartSession(session, deck)
	default:
		return session, false
	}

	return m.commit(session), true
}
