// internal/store/sqlite.go
//
// SQLite persistence for users, the location catalog, play history and game records.
// Serves selection.Catalog, selection.History, game.PlayRecorder and game.RecordStore.
//
// Notes:
//   - All timestamps are written in UTC so string comparison in SQL matches time order.
//   - RecordPlayed is an upsert on (user_id, location_id): replaying moves the row to the front.
//   - Leaderboard ranks in SQL; leaderboard.Less states the same order in Go.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/geoquest/internal/geo"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Locations lists locations of mode ordered by name, skipping ids in exclude.
func (s *SQLite) Locations(ctx context.Context, mode geo.Mode, exclude []string) ([]geo.Location, error) {
	q := `SELECT id, name, type, continent, country, difficulty_level FROM locations WHERE type = ?`
	args := []any{string(mode)}
	if len(exclude) > 0 {
		q += ` AND id NOT IN (?` + strings.Repeat(`,?`, len(exclude)-1) + `)`
		for _, id := range exclude {
			args = append(args, id)
		}
	}
	q += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	var out []geo.Location
	for rows.Next() {
		var l geo.Location
		var typ string
		if err := rows.Scan(&l.ID, &l.Name, &typ, &l.Continent, &l.Country, &l.Difficulty); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		l.Type = geo.Mode(typ)
		out = append(out, l)
	}
	return out, rows.Err()
}

// CountByMode returns the number of catalog entries per mode.
func (s *SQLite) CountByMode(ctx context.Context) (map[geo.Mode]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT type, COUNT(*) FROM locations GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("count locations: %w", err)
	}
	defer rows.Close()

	out := make(map[geo.Mode]int, len(geo.Modes))
	for _, m := range geo.Modes {
		out[m] = 0
	}
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		out[geo.Mode(typ)] = n
	}
	return out, rows.Err()
}

// SeedLocations inserts locs. An existing (type, name) keeps its id and takes the new
// continent, country and difficulty. Entries without an ID get a fresh UUID.
// Returns the number of rows inserted or changed.
func (s *SQLite) SeedLocations(ctx context.Context, locs []geo.Location) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO locations (id, name, type, continent, country, difficulty_level)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(type, name) DO UPDATE SET
			continent = excluded.continent,
			country = excluded.country,
			difficulty_level = excluded.difficulty_level
		WHERE locations.continent <> excluded.continent
			OR locations.country <> excluded.country
			OR locations.difficulty_level <> excluded.difficulty_level`)
	if err != nil {
		return 0, fmt.Errorf("prepare seed: %w", err)
	}
	defer stmt.Close()

	changed := 0
	for _, l := range locs {
		id := l.ID
		if id == "" {
			id = uuid.NewString()
		}
		res, err := stmt.ExecContext(ctx, id, l.Name, string(l.Type), l.Continent, l.Country, l.Difficulty)
		if err != nil {
			return 0, fmt.Errorf("seed %q: %w", l.Name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			changed++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return changed, nil
}

// RecentlyPlayed returns up to limit location ids, most recently played first.
func (s *SQLite) RecentlyPlayed(ctx context.Context, userID string, limit int) ([]string, error) {
	recs, err := s.RecentPlays(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	return playedIDs(recs), nil
}

// RecentPlays returns up to limit play records for userID, most recent first.
func (s *SQLite) RecentPlays(ctx context.Context, userID string, limit int) ([]geo.PlayedRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, location_id, played_at FROM user_played_locations
		WHERE user_id = ?
		ORDER BY played_at DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query played: %w", err)
	}
	defer rows.Close()

	var out []geo.PlayedRecord
	for rows.Next() {
		var r geo.PlayedRecord
		if err := rows.Scan(&r.UserID, &r.LocationID, &r.PlayedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func playedIDs(recs []geo.PlayedRecord) []string {
	if len(recs) == 0 {
		return nil
	}
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.LocationID
	}
	return ids
}

// RecordPlayed upserts the (user, location) pair with played_at = at.
func (s *SQLite) RecordPlayed(ctx context.Context, userID, locationID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_played_locations (user_id, location_id, played_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, location_id) DO UPDATE SET played_at = excluded.played_at`,
		userID, locationID, at.UTC())
	if err != nil {
		return fmt.Errorf("record played: %w", err)
	}
	return nil
}

// InsertGame appends a finished game. Records are never updated.
func (s *SQLite) InsertGame(ctx context.Context, rec geo.GameRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO games (id, user_id, mode, location_name, questions_asked, completion_time_seconds, won, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, string(rec.Mode), rec.LocationName, rec.QuestionsAsked,
		rec.CompletionTimeSeconds, rec.Won, rec.CompletedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

// Leaderboard returns won games of mode completed at or after since, best first.
func (s *SQLite) Leaderboard(ctx context.Context, mode geo.Mode, since time.Time, limit int) ([]geo.LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.username, g.mode, g.questions_asked, g.completion_time_seconds, g.completed_at
		FROM games g
		JOIN users u ON u.id = g.user_id
		WHERE g.mode = ? AND g.won = 1 AND g.completed_at >= ?
		ORDER BY g.completion_time_seconds ASC, g.questions_asked ASC, g.completed_at ASC
		LIMIT ?`, string(mode), since.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var out []geo.LeaderboardEntry
	for rows.Next() {
		var e geo.LeaderboardEntry
		var m string
		if err := rows.Scan(&e.Username, &m, &e.QuestionsAsked, &e.CompletionTimeSeconds, &e.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan leaderboard: %w", err)
		}
		e.Mode = geo.Mode(m)
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpsertUser returns the user named username, creating it if needed.
// A non-empty email replaces the stored one.
func (s *SQLite) UpsertUser(ctx context.Context, username, email string) (geo.User, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			email = CASE WHEN excluded.email <> '' THEN excluded.email ELSE users.email END`,
		uuid.NewString(), username, email, time.Now().UTC())
	if err != nil {
		return geo.User{}, fmt.Errorf("upsert user: %w", err)
	}

	var u geo.User
	err = s.db.QueryRowContext(ctx,
		`SELECT id, username, email, created_at FROM users WHERE username = ?`, username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	if err != nil {
		return geo.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// UserByID returns ErrNotFound for unknown ids.
func (s *SQLite) UserByID(ctx context.Context, id string) (geo.User, error) {
	var u geo.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, created_at FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return geo.User{}, ErrNotFound
	}
	if err != nil {
		return geo.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
