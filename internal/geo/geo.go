// internal/geo/geo.go
//
// Domain types shared by the selector, the session engine, the oracle and the stores.
// Defines:
//   - Mode:             which kind of location a game is about (country/city).
//   - Location:         one guessable catalog entry.
//   - PlayedRecord:     a (user, location) play marker used to avoid repeats.
//   - GameRecord:       a won game, written once and never updated.
//   - LeaderboardEntry: a ranked row derived from GameRecord + username.
//   - Answer:           the closed Yes/No/Maybe vocabulary of the oracle.
//
// This package has no dependencies beyond the standard library.
package geo

import (
	"strings"
	"time"
)

// Mode is the game variant.
type Mode string

const (
	ModeCountry Mode = "country"
	ModeCity    Mode = "city"
)

// Modes lists every supported mode in display order.
var Modes = []Mode{ModeCountry, ModeCity}

// ParseMode normalizes s and reports whether it names a supported mode.
func ParseMode(s string) (Mode, bool) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeCountry, ModeCity:
		return m, true
	default:
		return "", false
	}
}

// Location is immutable reference data. Name is the secret answer of a game.
type Location struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       Mode   `json:"type"`
	Continent  string `json:"continent,omitempty"`
	Country    string `json:"country,omitempty"`
	Difficulty int    `json:"difficultyLevel"`
}

// PlayedRecord marks that a user was given a location. One per (UserID, LocationID).
type PlayedRecord struct {
	UserID     string
	LocationID string
	PlayedAt   time.Time
}

// GameRecord is persisted for won games only.
type GameRecord struct {
	ID                    string    `json:"id"`
	UserID                string    `json:"userId"`
	Mode                  Mode      `json:"mode"`
	LocationName          string    `json:"locationName"`
	QuestionsAsked        int       `json:"questionsAsked"`
	CompletionTimeSeconds int       `json:"completionTimeSeconds"`
	Won                   bool      `json:"won"`
	CompletedAt           time.Time `json:"completedAt"`
}

// LeaderboardEntry is a read-only projection of a GameRecord.
type LeaderboardEntry struct {
	Username              string    `json:"username"`
	Mode                  Mode      `json:"mode"`
	QuestionsAsked        int       `json:"questionsAsked"`
	CompletionTimeSeconds int       `json:"completionTimeSeconds"`
	CompletedAt           time.Time `json:"completedAt"`
}

// User is a player identity. The game trusts whatever ID the caller supplies.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Answer is one of the three oracle tokens.
type Answer string

const (
	AnswerYes   Answer = "Yes"
	AnswerNo    Answer = "No"
	AnswerMaybe Answer = "Maybe"
)

// Answers is the closed answer set.
var Answers = []Answer{AnswerYes, AnswerNo, AnswerMaybe}
