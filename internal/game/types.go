// internal/game/types.go
//
// Core type definitions for the twenty-questions engine.
// Defines:
//   - Status:  coarse session state (active / questions_exhausted / won).
//   - Entry:   one transcript line.
//   - View:    a copy of session state safe to hand to the presentation layer.

package game

import (
	"errors"
	"time"

	"github.com/robalobadob/geoquest/internal/geo"
)

// MaxQuestions is the per-session question budget.
const MaxQuestions = 20

// Status is the session state. There is no lost state: guessing is always allowed until a win.
type Status string

const (
	StatusActive             Status = "active"
	StatusQuestionsExhausted Status = "questions_exhausted"
	StatusWon                Status = "won"
)

// EntryKind tags a transcript line.
type EntryKind string

const (
	EntryQuestion EntryKind = "question"
	EntryAnswer   EntryKind = "answer"
	EntryGuess    EntryKind = "guess"
	EntryVerdict  EntryKind = "verdict"
)

// Transcript texts for guesses.
const (
	verdictCorrect   = "Correct!"
	verdictIncorrect = "Incorrect, keep trying!"
)

// Entry is one line of the transcript.
// Late marks an answer that arrived after the session was already won.
type Entry struct {
	Kind EntryKind `json:"kind"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
	Late bool      `json:"late,omitempty"`
}

// View is a point-in-time copy of a session.
// Location is only set once the session is won.
type View struct {
	ID             string        `json:"gameId"`
	Mode           geo.Mode      `json:"mode"`
	Status         Status        `json:"status"`
	QuestionsAsked int           `json:"questionsAsked"`
	QuestionsLeft  int           `json:"questionsLeft"`
	Pending        bool          `json:"questionPending"`
	StartedAt      time.Time     `json:"startedAt"`
	ElapsedSeconds int           `json:"elapsedSeconds"`
	Transcript     []Entry       `json:"transcript"`
	Location       *geo.Location `json:"location,omitempty"`
}

var (
	ErrGameOver        = errors.New("game already won")
	ErrNoQuestionsLeft = errors.New("no questions left")
	ErrQuestionPending = errors.New("a question is already awaiting its answer")
	ErrEmptyInput      = errors.New("input is empty")
	ErrInvalidMode     = errors.New("invalid mode")
	ErrNoUser          = errors.New("user id required")
)
