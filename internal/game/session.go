// internal/game/session.go
//
// The session state machine for one player and one hidden location.
//
// Transitions:
//   - Ask:   active → active, or active → questions_exhausted when the 20th question is taken.
//   - Guess: active | questions_exhausted → won on a case-insensitive exact match.
//   - won is terminal: Ask and Guess return ErrGameOver and leave the transcript alone.
//
// Concurrency:
//   - At most one question is in flight. The budget is reserved under the lock before the
//     oracle is called, so overlapping submissions can never push the count past 20.
//   - A guess may run while a question is in flight. If it wins, the late answer is still
//     written to the transcript (flagged) but the session stays won.
package game

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/robalobadob/geoquest/internal/geo"
)

// Asker answers a question about a location. *oracle.Oracle implements it.
type Asker interface {
	Ask(ctx context.Context, question string, loc geo.Location) geo.Answer
}

// Session is owned by the caller; all methods are safe for concurrent use.
type Session struct {
	ID        string
	UserID    string
	Mode      geo.Mode
	StartedAt time.Time

	clock func() time.Time

	mu         sync.Mutex
	target     geo.Location
	asked      int
	status     Status
	pending    bool
	transcript []Entry
	elapsed    int
	lastActive time.Time
}

// NewSession starts the clock on a new session for target. A nil clock means time.Now.
func NewSession(id, userID string, target geo.Location, clock func() time.Time) *Session {
	if clock == nil {
		clock = time.Now
	}
	now := clock()
	return &Session{
		ID:         id,
		UserID:     userID,
		Mode:       target.Type,
		StartedAt:  now,
		clock:      clock,
		target:     target,
		status:     StatusActive,
		transcript: []Entry{},
		lastActive: now,
	}
}

// Ask spends one question and returns the oracle's answer.
//
// Errors: ErrEmptyInput, ErrGameOver, ErrQuestionPending, ErrNoQuestionsLeft.
// ErrGameOver is also returned if the session was won while the oracle was answering.
func (s *Session) Ask(ctx context.Context, question string, o Asker) (geo.Answer, error) {
	question = strings.TrimSpace(question)
	target, err := s.reserveQuestion(question)
	if err != nil {
		return "", err
	}

	answer := o.Ask(ctx, question, target)

	if won := s.completeQuestion(question, answer); won {
		return "", ErrGameOver
	}
	return answer, nil
}

// reserveQuestion validates state and takes one unit of the budget.
func (s *Session) reserveQuestion(question string) (geo.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.status == StatusWon:
		return geo.Location{}, ErrGameOver
	case question == "":
		return geo.Location{}, ErrEmptyInput
	case s.pending:
		return geo.Location{}, ErrQuestionPending
	case s.asked >= MaxQuestions:
		return geo.Location{}, ErrNoQuestionsLeft
	}

	s.asked++
	if s.asked >= MaxQuestions {
		s.status = StatusQuestionsExhausted
	}
	s.pending = true
	s.lastActive = s.clock()
	return s.target, nil
}

// completeQuestion appends the question and its answer together and reports
// whether the session had been won in the meantime.
func (s *Session) completeQuestion(question string, answer geo.Answer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	late := s.status == StatusWon
	s.pending = false
	s.transcript = append(s.transcript,
		Entry{Kind: EntryQuestion, Text: question, At: now, Late: late},
		Entry{Kind: EntryAnswer, Text: string(answer), At: now, Late: late},
	)
	s.lastActive = now
	return late
}

// GuessResult is the outcome of Guess. Record is set only on a win.
type GuessResult struct {
	Correct bool
	Record  *geo.GameRecord
}

// Guess compares text with the hidden name, ignoring case and surrounding whitespace.
// A wrong guess costs nothing and leaves the state unchanged.
//
// Errors: ErrEmptyInput, ErrGameOver.
func (s *Session) Guess(text string) (GuessResult, error) {
	text = strings.TrimSpace(text)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusWon {
		return GuessResult{}, ErrGameOver
	}
	if text == "" {
		return GuessResult{}, ErrEmptyInput
	}

	now := s.clock()
	s.lastActive = now
	s.transcript = append(s.transcript, Entry{Kind: EntryGuess, Text: "My guess: " + text, At: now})

	if !strings.EqualFold(text, strings.TrimSpace(s.target.Name)) {
		s.transcript = append(s.transcript, Entry{Kind: EntryVerdict, Text: verdictIncorrect, At: now})
		return GuessResult{}, nil
	}

	s.status = StatusWon
	s.elapsed = floorSeconds(now.Sub(s.StartedAt))
	s.transcript = append(s.transcript, Entry{Kind: EntryVerdict, Text: verdictCorrect, At: now})

	return GuessResult{
		Correct: true,
		Record: &geo.GameRecord{
			UserID:                s.UserID,
			Mode:                  s.Mode,
			LocationName:          s.target.Name,
			QuestionsAsked:        s.asked,
			CompletionTimeSeconds: s.elapsed,
			Won:                   true,
			CompletedAt:           now,
		},
	}, nil
}

// View returns a copy of the session. The location is revealed only after a win.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:             s.ID,
		Mode:           s.Mode,
		Status:         s.status,
		QuestionsAsked: s.asked,
		QuestionsLeft:  MaxQuestions - s.asked,
		Pending:        s.pending,
		StartedAt:      s.StartedAt,
		Transcript:     append([]Entry(nil), s.transcript...),
	}
	if s.status == StatusWon {
		v.ElapsedSeconds = s.elapsed
		loc := s.target
		v.Location = &loc
	} else {
		v.ElapsedSeconds = floorSeconds(s.clock().Sub(s.StartedAt))
	}
	return v
}

// Status reports the current state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// LastActive is the time of the latest accepted question or guess.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// floorSeconds truncates d to whole seconds, never negative.
func floorSeconds(d time.Duration) int {
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}
