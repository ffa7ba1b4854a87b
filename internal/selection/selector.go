// internal/selection/selector.go
//
// Location selection for a new game.
// Responsibilities:
//   - Exclude the locations a user was given in their most recent games.
//   - Fall back to the full catalog of the mode when the exclusion empties it,
//     so a small catalog never becomes unplayable.
//   - Pick uniformly at random among the remaining candidates.
//
// Recording the chosen location as played is the caller's job (see game.Service).
// Store errors are reported once, never retried.
package selection

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/robalobadob/geoquest/internal/geo"
)

// RecentLimit is how many of a user's latest plays are excluded.
const RecentLimit = 10

var (
	// ErrSelectionUnavailable wraps a store failure during selection.
	ErrSelectionUnavailable = errors.New("selection unavailable")
	// ErrCatalogEmpty means the catalog has no location of the requested mode.
	ErrCatalogEmpty = errors.New("no locations configured for mode")
)

// Catalog lists locations of a mode, skipping any id in exclude.
type Catalog interface {
	Locations(ctx context.Context, mode geo.Mode, exclude []string) ([]geo.Location, error)
}

// History returns up to limit location ids the user played, most recent first.
type History interface {
	RecentlyPlayed(ctx context.Context, userID string, limit int) ([]string, error)
}

// Selector picks the hidden location of a new game.
type Selector struct {
	catalog Catalog
	history History
	intn    func(n int) int
}

// New builds a Selector using math/rand/v2 for the random pick.
func New(catalog Catalog, history History) *Selector {
	return &Selector{catalog: catalog, history: history, intn: rand.IntN}
}

// WithRand replaces the random source; intn must return a value in [0, n).
func (s *Selector) WithRand(intn func(n int) int) *Selector {
	s.intn = intn
	return s
}

// Select returns a random location of mode the user has not played recently.
//
// Errors:
//   - ErrSelectionUnavailable (wrapping the cause) if a store call fails.
//   - ErrCatalogEmpty if the mode has no locations at all.
func (s *Selector) Select(ctx context.Context, userID string, mode geo.Mode) (geo.Location, error) {
	recent, err := s.history.RecentlyPlayed(ctx, userID, RecentLimit)
	if err != nil {
		return geo.Location{}, fmt.Errorf("%w: recent plays: %w", ErrSelectionUnavailable, err)
	}

	candidates, err := s.catalog.Locations(ctx, mode, recent)
	if err != nil {
		return geo.Location{}, fmt.Errorf("%w: locations: %w", ErrSelectionUnavailable, err)
	}

	// Every location was played recently: ignore the exclusion.
	if len(candidates) == 0 && len(recent) > 0 {
		candidates, err = s.catalog.Locations(ctx, mode, nil)
		if err != nil {
			return geo.Location{}, fmt.Errorf("%w: locations: %w", ErrSelectionUnavailable, err)
		}
	}
	if len(candidates) == 0 {
		return geo.Location{}, fmt.Errorf("%w %q", ErrCatalogEmpty, mode)
	}
	return candidates[s.intn(len(candidates))], nil
}
