// internal/leaderboard/leaderboard.go
//
// Daily leaderboard rules.
//   - The window opens at midnight UTC of the query day (fixed reset, not rolling 24h).
//   - Ranking: completion time ASC, then questions asked ASC, then completion instant ASC.
//   - Only the top Limit entries are shown.
//
// The SQL store applies the same ORDER BY; game.Service re-ranks store rows with Rank.
package leaderboard

import (
	"slices"
	"time"

	"github.com/robalobadob/geoquest/internal/geo"
)

// Limit is the number of entries on a board.
const Limit = 10

// WindowStart returns midnight UTC of the day containing now.
func WindowStart(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Less reports whether a ranks ahead of b.
func Less(a, b geo.LeaderboardEntry) bool {
	if a.CompletionTimeSeconds != b.CompletionTimeSeconds {
		return a.CompletionTimeSeconds < b.CompletionTimeSeconds
	}
	if a.QuestionsAsked != b.QuestionsAsked {
		return a.QuestionsAsked < b.QuestionsAsked
	}
	return a.CompletedAt.Before(b.CompletedAt)
}

// Rank returns a sorted copy of entries truncated to limit (limit <= 0 means Limit).
func Rank(entries []geo.LeaderboardEntry, limit int) []geo.LeaderboardEntry {
	if limit <= 0 {
		limit = Limit
	}
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b geo.LeaderboardEntry) int {
		switch {
		case Less(a, b):
			return -1
		case Less(b, a):
			return 1
		default:
			return 0
		}
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
