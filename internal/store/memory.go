// internal/store/memory.go
//
// In-memory registry of live game sessions.
//
// Characteristics:
//   - Stores *game.Session values keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts; only finished wins are durable (see SQLite).
//   - Idle sessions are dropped by Prune, which the server runs on a ticker.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/geoquest/internal/game"
)

// ErrNotFound is returned when a session ID is unknown.
var ErrNotFound = errors.New("not found")

// Sessions holds the sessions currently being played.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*game.Session
}

func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[string]*game.Session)}
}

// Save adds or replaces the session.
func (m *Sessions) Save(_ context.Context, s *game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

// Get looks up a session by ID.
func (m *Sessions) Get(_ context.Context, id string) (*game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

func (m *Sessions) Delete(_ context.Context, id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

func (m *Sessions) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Prune removes sessions whose last activity is before cutoff and returns how many were removed.
func (m *Sessions) Prune(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Janitor prunes sessions idle for longer than ttl every interval until ctx is done.
// after, if set, is called with the number removed and remaining after each pass.
func (m *Sessions) Janitor(ctx context.Context, ttl, interval time.Duration, after func(removed, remaining int)) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-t.C:
			n := m.Prune(now.Add(-ttl))
			if after != nil {
				after(n, m.Len())
			}
		}
	}
}
