// internal/catalog/catalog.go
//
// The location catalog that seeds the locations table.
//
// Sources:
//   1. LOCATIONS_FILE, if set: a JSON array of locations.
//   2. Otherwise the embedded locations.json.
//
// Constraints:
//   - name is required and (type, name) is unique.
//   - type is "country" or "city".
//   - difficultyLevel is 1..5.
//
// IDs are derived from (type, name) so the same entry keeps its id across restarts
// and play history stays valid when the catalog file is edited. Seeding runs on
// every start: new entries are inserted and edited metadata is applied in place.
// Entries removed from the file stay in the table.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/geoquest/internal/geo"
)

//go:embed locations.json
var embedded []byte

var idSpace = uuid.MustParse("6f1c1d8e-3b0a-4c59-9a53-2f6e0d7a4c11")

var ErrInvalidEntry = errors.New("invalid catalog entry")

type entry struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Continent  string `json:"continent"`
	Country    string `json:"country"`
	Difficulty int    `json:"difficultyLevel"`
}

// Load reads the catalog from path, or the embedded default when path is empty.
func Load(path string) ([]geo.Location, error) {
	data := embedded
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		data = b
	}
	return Parse(data)
}

// Parse decodes and validates a JSON catalog.
func Parse(data []byte) ([]geo.Location, error) {
	var raw []entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]geo.Location, 0, len(raw))
	for i, e := range raw {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", ErrInvalidEntry, i)
		}
		mode, ok := geo.ParseMode(e.Type)
		if !ok {
			return nil, fmt.Errorf("%w: %q has type %q", ErrInvalidEntry, name, e.Type)
		}
		if e.Difficulty < 1 || e.Difficulty > 5 {
			return nil, fmt.Errorf("%w: %q has difficulty %d", ErrInvalidEntry, name, e.Difficulty)
		}
		key := string(mode) + ":" + strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate %s %q", ErrInvalidEntry, mode, name)
		}
		seen[key] = struct{}{}

		out = append(out, geo.Location{
			ID:         LocationID(mode, name),
			Name:       name,
			Type:       mode,
			Continent:  strings.TrimSpace(e.Continent),
			Country:    strings.TrimSpace(e.Country),
			Difficulty: e.Difficulty,
		})
	}
	return out, nil
}

// LocationID is the stable id of a catalog entry.
func LocationID(mode geo.Mode, name string) string {
	return uuid.NewSHA1(idSpace, []byte(string(mode)+":"+strings.ToLower(name))).String()
}

// Seeder inserts new locations and updates changed ones. *store.SQLite implements it.
type Seeder interface {
	SeedLocations(ctx context.Context, locs []geo.Location) (int, error)
}

// Seed loads the catalog from path and inserts it into s.
func Seed(ctx context.Context, s Seeder, path string) (int, error) {
	locs, err := Load(path)
	if err != nil {
		return 0, err
	}
	n, err := s.SeedLocations(ctx, locs)
	if err != nil {
		return 0, fmt.Errorf("seed catalog: %w", err)
	}
	src := path
	if src == "" {
		src = "embedded"
	}
	log.Info().Str("source", src).Int("entries", len(locs)).Int("changed", n).Msg("catalog seeded")
	return n, nil
}
