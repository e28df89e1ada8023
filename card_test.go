package main

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCardListDecodesMixedTypes(t *testing.T) {
	input := `[
		{"type":"charades","cardId":"c-001","prompt":"Skiing"},
		{"type":"trivia","cardId":"t-001","format":"mcq","question":"Largest planet?","choices":["Mars","Jupiter","Venus","Saturn"],"answerIndex":1,"answerText":"Jupiter"},
		{"type":"trivia","cardId":"t-002","format":"open","question":"Capital of Peru?","answerText":"Lima"},
		{"type":"taboo","cardId":"tb-001","target":"beach","forbidden":["sand","ocean","sun"]},
		{"type":"justone","cardId":"j-001","target":"piano"},
		{"type":"monikers","cardId":"m-001","phrase":"Sherlock Holmes"}
	]`

	var cards cardList
	if err := json.Unmarshal([]byte(input), &cards); err != nil {
		t.Fatal(err)
	}
	if len(cards) != 6 {
		t.Fatalf("decoded %d cards, want 6", len(cards))
	}

	wantGames := []GameType{GameCharades, GameTrivia, GameTrivia, GameTaboo, GameJustOne, GameMonikers}
	for i, card := range cards {
		if card.Game() != wantGames[i] {
			t.Errorf("card %d: game %q, want %q", i, card.Game(), wantGames[i])
		}
	}

	mcq, ok := cards[1].(TriviaCard)
	if !ok {
		t.Fatalf("card 1 decoded as %T", cards[1])
	}
	if mcq.Format != TriviaMCQ || mcq.AnswerIndex != 1 || len(mcq.Choices) != 4 {
		t.Errorf("mcq card decoded as %+v", mcq)
	}

	open, ok := cards[2].(TriviaCard)
	if !ok {
		t.Fatalf("card 2 decoded as %T", cards[2])
	}
	if open.Format != TriviaOpen || open.AnswerText != "Lima" || open.Choices != nil {
		t.Errorf("open card decoded as %+v", open)
	}
}

func TestCardListRejectsBadCards(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "unknown type",
			input: `[{"type":"pictionary","cardId":"p-001"}]`,
			want:  "unknown card type",
		},
		{
			name:  "missing type",
			input: `[{"cardId":"x-001","prompt":"Skiing"}]`,
			want:  "unknown card type",
		},
		{
			name:  "unknown trivia format",
			input: `[{"type":"trivia","cardId":"t-001","format":"essay","question":"?","answerText":"!"}]`,
			want:  "unknown trivia format",
		},
		{
			name:  "not an object",
			input: `["charades"]`,
			want:  "card 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cards cardList
			err := json.Unmarshal([]byte(tt.input), &cards)
			if err == nil {
				t.Fatal("expected a decode error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestCardRoundTripKeepsTypeTag(t *testing.T) {
	original := cardList{
		MonikersCard{Type: GameMonikers, CardID: "m-001", Phrase: "Sherlock Holmes"},
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatal(err)
	}

	var decoded cardList
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 1 || decoded[0].ID() != "m-001" || decoded[0].Game() != GameMonikers {
		t.Errorf("round trip produced %+v", decoded)
	}
}
