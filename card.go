package main

import (
	"encoding/json"
	"fmt"
)

// Card is the union of all per-game card shapes. Each variant carries a
// "type" tag on the wire matching its game type.
type Card interface {
	ID() string
	Game() GameType
}

type CharadesCard struct {
	Type   GameType `json:"type"`
	CardID string   `json:"cardId"`
	Prompt string   `json:"prompt"`
}

func (c CharadesCard) ID() string     { return c.CardID }
func (c CharadesCard) Game() GameType { return GameCharades }

// TriviaFormat distinguishes multiple-choice from open-ended questions.
type TriviaFormat string

const (
	TriviaMCQ  TriviaFormat = "mcq"
	TriviaOpen TriviaFormat = "open"
)

type TriviaCard struct {
	Type     GameType     `json:"type"`
	CardID   string       `json:"cardId"`
	Format   TriviaFormat `json:"format"`
	Question string       `json:"question"`

	// Choices and AnswerIndex are only present for mcq cards.
	Choices     []string `json:"choices,omitempty"`
	AnswerIndex int      `json:"answerIndex,omitempty"`
	AnswerText  string   `json:"answerText"`
}

func (c TriviaCard) ID() string     { return c.CardID }
func (c TriviaCard) Game() GameType { return GameTrivia }

type TabooCard struct {
	Type      GameType `json:"type"`
	CardID    string   `json:"cardId"`
	Target    string   `json:"target"`
	Forbidden []string `json:"forbidden"`
}

func (c TabooCard) ID() string     { return c.CardID }
func (c TabooCard) Game() GameType { return GameTaboo }

type JustOneCard struct {
	Type   GameType `json:"type"`
	CardID string   `json:"cardId"`
	Target string   `json:"target"`
}

func (c JustOneCard) ID() string     { return c.CardID }
func (c JustOneCard) Game() GameType { return GameJustOne }

type MonikersCard struct {
	Type   GameType `json:"type"`
	CardID string   `json:"cardId"`
	Phrase string   `json:"phrase"`
}

func (c MonikersCard) ID() string     { return c.CardID }
func (c MonikersCard) Game() GameType { return GameMonikers }

// cardList decodes a JSON array of cards, dispatching each element on its
// "type" tag.
type cardList []Card

func (l *cardList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	cards := make([]Card, 0, len(raw))
	for i, entry := range raw {
		card, err := decodeCard(entry)
		if err != nil {
			return fmt.Errorf("card %d: %w", i, err)
		}
		cards = append(cards, card)
	}

	*l = cards
	return nil
}

func decodeCard(data []byte) (Card, error) {
	var probe struct {
		Type GameType `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	switch probe.Type {
	case GameCharades:
		var c CharadesCard
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return c, nil
	case GameTrivia:
		var c TriviaCard
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		if c.Format != TriviaMCQ && c.Format != TriviaOpen {
			return nil, fmt.Errorf("unknown trivia format %q", c.Format)
		}
		return c, nil
	case GameTaboo:
		var c TabooCard
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return c, nil
	case GameJustOne:
		var c JustOneCard
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return c, nil
	case GameMonikers:
		var c MonikersCard
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown card type %q", probe.Type)
	}
}
