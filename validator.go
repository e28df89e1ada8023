package main

import "fmt"

// ValidationReason classifies why a stored session cannot be resumed.
type ValidationReason string

const (
	ReasonSchemaOutdated   ValidationReason = "schema_outdated"
	ReasonVersionMismatch  ValidationReason = "version_mismatch"
	ReasonGameTypeMismatch ValidationReason = "game_type_mismatch"
	ReasonCardsChanged     ValidationReason = "cards_changed"
)

// ValidationResult reports whether a session is safe to resume, and if not,
// why.
type ValidationResult struct {
	Valid   bool             `json:"valid"`
	Reason  ValidationReason `json:"reason,omitempty"`
	Message string           `json:"message,omitempty"`
}

func invalid(reason ValidationReason, format string, args ...any) ValidationResult {
	return ValidationResult{
		Valid:   false,
		Reason:  reason,
		Message: fmt.Sprintf(format, args...),
	}
}

// validateSession checks a persisted session against the deck it claims to
// belong to. Checks run in order and stop at the first failure: schema
// version, deck version, game type, then card membership.
func validateSession(session Session, deck *Deck) ValidationResult {
	if session.SchemaVersion != currentSchemaVersion {
		return invalid(ReasonSchemaOutdated,
			"session schema version %d does not match current version %d",
			session.SchemaVersion, currentSchemaVersion)
	}

	if session.DeckVersion != deck.Version {
		return invalid(ReasonVersionMismatch,
			"the deck has been updated since this session was saved")
	}

	if session.GameType != deck.GameType {
		return invalid(ReasonGameTypeMismatch,
			"session game type %s does not match deck game type %s",
			session.GameType, deck.GameType)
	}

	deckCardIDs := make(map[string]bool, len(deck.Cards))
	for _, card := range deck.Cards {
		deckCardIDs[card.ID()] = true
	}

	for _, cardID := range session.allCardIDs() {
		if !deckCardIDs[cardID] {
			return invalid(ReasonCardsChanged,
				"card %s from session no longer exists in deck", cardID)
		}
	}

	return ValidationResult{Valid: true}
}

// canMigrateSession reports whether a session can be brought to the current
// schema. No migrations exist yet, so only an exact match qualifies.
func canMigrateSession(session Session) bool {
	return session.SchemaVersion == currentSchemaVersion
}

// validateIntegrity checks a session for internal consistency, independent
// of any deck: no card id may appear in more than one queue position. Used
// as a defensive check after deserialization. Monikers sessions are judged
// on their round queues, since the base queues are inert placeholders.
func validateIntegrity(session Session) ValidationResult {
	var cardIDs []string
	if session.isMonikers() {
		cardIDs = append(cardIDs, session.Monikers.Remaining...)
		cardIDs = append(cardIDs, session.Monikers.Passed...)
		if session.Current != "" {
			cardIDs = append(cardIDs, session.Current)
		}
	} else {
		cardIDs = session.allCardIDs()
	}

	seen := make(map[string]bool, len(cardIDs))
	for _, cardID := range cardIDs {
		if seen[cardID] {
			return invalid(ReasonCardsChanged, "duplicate card id found: %s", cardID)
		}
		seen[cardID] = true
	}

	return ValidationResult{Valid: true}
}
