// internal/game/service.go
//
// Service wires a session to its collaborators:
//   - a LocationSelector to pick the hidden location,
//   - a PlayRecorder to note that the user has now seen it,
//   - an Asker (the oracle) to answer questions,
//   - a RecordStore to persist wins and serve the daily board.
//
// Sessions are not stored here; the caller keeps them (see store.Sessions).
package game

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/geoquest/internal/geo"
	"github.com/robalobadob/geoquest/internal/leaderboard"
	"github.com/robalobadob/geoquest/internal/metrics"
	"github.com/robalobadob/geoquest/internal/selection"
)

type LocationSelector interface {
	Select(ctx context.Context, userID string, mode geo.Mode) (geo.Location, error)
}

type PlayRecorder interface {
	RecordPlayed(ctx context.Context, userID, locationID string, at time.Time) error
}

type RecordStore interface {
	InsertGame(ctx context.Context, rec geo.GameRecord) error
	Leaderboard(ctx context.Context, mode geo.Mode, since time.Time, limit int) ([]geo.LeaderboardEntry, error)
}

type Service struct {
	selector LocationSelector
	plays    PlayRecorder
	records  RecordStore
	oracle   Asker
	metrics  *metrics.Metrics
	clock    func() time.Time
}

func NewService(sel LocationSelector, plays PlayRecorder, records RecordStore, oracle Asker, m *metrics.Metrics) *Service {
	return &Service{
		selector: sel,
		plays:    plays,
		records:  records,
		oracle:   oracle,
		metrics:  m,
		clock:    time.Now,
	}
}

// WithClock replaces the time source for sessions, records and the board window.
func (s *Service) WithClock(clock func() time.Time) *Service {
	if clock != nil {
		s.clock = clock
	}
	return s
}

// Start picks a location for userID and opens a session on it.
// Failing to record the play is logged and does not prevent the session.
func (s *Service) Start(ctx context.Context, userID string, mode geo.Mode) (*Session, error) {
	if userID == "" {
		return nil, ErrNoUser
	}
	if _, ok := geo.ParseMode(string(mode)); !ok {
		return nil, ErrInvalidMode
	}

	loc, err := s.selector.Select(ctx, userID, mode)
	if err != nil {
		switch {
		case errors.Is(err, selection.ErrCatalogEmpty):
			s.metrics.SelectionFailed("catalog_empty")
		default:
			s.metrics.SelectionFailed("unavailable")
		}
		return nil, err
	}

	sess := NewSession(uuid.NewString(), userID, loc, s.clock)

	if err := s.plays.RecordPlayed(ctx, userID, loc.ID, sess.StartedAt); err != nil {
		log.Warn().Err(err).Str("user", userID).Str("location", loc.ID).Msg("record played location")
		s.metrics.PersistenceError("played")
	}

	s.metrics.SessionStarted(string(mode))
	log.Debug().Str("game", sess.ID).Str("user", userID).Str("mode", string(mode)).Msg("session started")
	return sess, nil
}

// Ask forwards question to the oracle through sess.
func (s *Service) Ask(ctx context.Context, sess *Session, question string) (geo.Answer, error) {
	answer, err := sess.Ask(ctx, question, s.oracle)
	if err != nil {
		return "", err
	}
	s.metrics.QuestionAnswered(string(answer))
	return answer, nil
}

// GuessOutcome reports a guess. Recorded is false when a win could not be persisted;
// the session stays won either way.
type GuessOutcome struct {
	Correct  bool
	Recorded bool
}

// Guess submits text against sess and persists the record on a win.
func (s *Service) Guess(ctx context.Context, sess *Session, text string) (GuessOutcome, error) {
	res, err := sess.Guess(text)
	if err != nil {
		return GuessOutcome{}, err
	}
	s.metrics.GuessSubmitted(res.Correct)
	if !res.Correct {
		return GuessOutcome{}, nil
	}

	rec := *res.Record
	rec.ID = uuid.NewString()
	s.metrics.GameWon(string(rec.Mode), rec.CompletionTimeSeconds)

	if err := s.records.InsertGame(ctx, rec); err != nil {
		log.Error().Err(err).Str("game", sess.ID).Str("user", rec.UserID).Msg("persist game record")
		s.metrics.PersistenceError("game")
		return GuessOutcome{Correct: true}, nil
	}
	log.Info().
		Str("game", sess.ID).
		Str("user", rec.UserID).
		Int("questions", rec.QuestionsAsked).
		Int("seconds", rec.CompletionTimeSeconds).
		Msg("game won")
	return GuessOutcome{Correct: true, Recorded: true}, nil
}

// Board is the daily leaderboard for one mode.
type Board struct {
	Mode    geo.Mode               `json:"mode"`
	Since   time.Time              `json:"since"`
	Date    string                 `json:"date"`
	Entries []geo.LeaderboardEntry `json:"entries"`
}

// Leaderboard returns today's (UTC) top entries for mode. It is recomputed on every call.
// Store results are re-ranked so every RecordStore yields the same order and cap.
func (s *Service) Leaderboard(ctx context.Context, mode geo.Mode) (Board, error) {
	if _, ok := geo.ParseMode(string(mode)); !ok {
		return Board{}, ErrInvalidMode
	}
	since := leaderboard.WindowStart(s.clock())
	entries, err := s.records.Leaderboard(ctx, mode, since, leaderboard.Limit)
	if err != nil {
		return Board{}, err
	}
	entries = leaderboard.Rank(entries, leaderboard.Limit)
	if entries == nil {
		entries = []geo.LeaderboardEntry{}
	}
	return Board{Mode: mode, Since: since, Date: leaderboard.DateKey(since), Entries: entries}, nil
}
