package main

// GameType identifies one of the playable party games.
type GameType string

const (
	GameCharades GameType = "charades"
	GameTrivia   GameType = "trivia"
	GameTaboo    GameType = "taboo"
	GameJustOne  GameType = "justone"
	GameMonikers GameType = "monikers"
)

// PassBehavior determines what happens to a card the player passes on:
// recycled cards come back around later in the same run, discarded cards
// are gone for good.
type PassBehavior string

const (
	PassRecycle PassBehavior = "recycle"
	PassDiscard PassBehavior = "discard"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// GameInfo describes one game's display metadata and turn behavior.
type GameInfo struct {
	Type         GameType     `json:"type"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Icon         string       `json:"icon"`
	PassBehavior PassBehavior `json:"passBehavior"`
	HasReveal    bool         `json:"hasReveal"`
}

// Games holds the configuration for every supported game type.
var Games = map[GameType]GameInfo{
	GameCharades: {
		Type:         GameCharades,
		Name:         "Charades",
		Description:  "Act it out without words",
		Icon:         "drama",
		PassBehavior: PassRecycle,
		HasReveal:    false,
	},
	GameTrivia: {
		Type:         GameTrivia,
		Name:         "Trivia",
		Description:  "Test your knowledge",
		Icon:         "brain",
		PassBehavior: PassDiscard,
		HasReveal:    true,
	},
	GameTaboo: {
		Type:         GameTaboo,
		Name:         "Taboo",
		Description:  "Describe without forbidden words",
		Icon:         "ban",
		PassBehavior: PassRecycle,
		HasReveal:    false,
	},
	GameJustOne: {
		Type:         GameJustOne,
		Name:         "Just One",
		Description:  "Give unique one-word clues",
		Icon:         "lightbulb",
		PassBehavior: PassDiscard,
		HasReveal:    false,
	},
	GameMonikers: {
		Type:         GameMonikers,
		Name:         "Monikers",
		Description:  "Three rounds of guessing",
		Icon:         "users",
		PassBehavior: PassRecycle,
		HasReveal:    false,
	},
}

// GameTypes lists all game types in display order.
var GameTypes = []GameType{
	GameCharades,
	GameTrivia,
	GameTaboo,
	GameJustOne,
	GameMonikers,
}

func isGameType(value string) bool {
	_, ok := Games[GameType(value)]
	return ok
}
