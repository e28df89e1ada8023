package main

// currentSchemaVersion gates persisted sessions: a session written under a
// different schema is discarded, since no migration path exists yet.
const currentSchemaVersion = 1

// sessionKeyPrefix namespaces session keys in the store.
const sessionKeyPrefix = "cg.session."

func sessionKey(deckID string) string {
	return sessionKeyPrefix + deckID
}

// MonikersState is the Monikers-only session extension: the active round
// plus an independent pair of queues tracking progress within that round.
// For Monikers sessions the base Remaining/Passed queues are unused
// placeholders.
type MonikersState struct {
	Round     int      `json:"round"`
	Remaining []string `json:"remainingCardIds"`
	Passed    []string `json:"passedCardIds"`
}

// Session is the mutable play-progress record for one deck. Transitions
// never mutate a Session; they return a replacement value (engine.go).
type Session struct {
	SchemaVersion  int      `json:"schemaVersion"`
	DeckID         string   `json:"deckId"`
	DeckVersion    string   `json:"deckVersion"`
	GameType       GameType `json:"gameType"`
	ShuffleEnabled bool     `json:"shuffleEnabled"`

	Remaining  []string `json:"remainingCardIds"`
	Passed     []string `json:"passedCardIds"`
	Current    string   `json:"currentCardId,omitempty"`
	IsRevealed bool     `json:"isRevealed"`

	Monikers *MonikersState `json:"monikers,omitempty"`
}

func (s *Session) isMonikers() bool {
	return s.GameType == GameMonikers && s.Monikers != nil
}

// allCardIDs returns every card id the session references, across the base
// queues, the current card, and the Monikers round queues.
func (s *Session) allCardIDs() []string {
	ids := make([]string, 0, len(s.Remaining)+len(s.Passed)+1)
	ids = append(ids, s.Remaining...)
	ids = append(ids, s.Passed...)
	if s.Current != "" {
		ids = append(ids, s.Current)
	}
	if s.isMonikers() {
		ids = append(ids, s.Monikers.Remaining...)
		ids = append(ids, s.Monikers.Passed...)
	}
	return ids
}
