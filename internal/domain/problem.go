package domain

import "time"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

type Outcome string

const (
	OutcomeSolved Outcome = "solved"
	OutcomeHints  Outcome = "hints"
	OutcomeFailed Outcome = "failed"
)

func (o Outcome) Valid() bool {
	switch o {
	case OutcomeSolved, OutcomeHints, OutcomeFailed:
		return true
	}
	return false
}

// Problem represents one logged practice attempt owned by a user.
type Problem struct {
	ID         int64
	UserID     int64
	Title      string
	Platform   string
	Difficulty Difficulty
	Topic      string
	TimeSpent  int // minutes
	Outcome    Outcome
	Date       time.Time
	Link       string
	Tags       string
	Notes      string
	IsRevision bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
