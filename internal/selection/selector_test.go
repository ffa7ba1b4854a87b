package selection

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/robalobadob/geoquest/internal/geo"
)

// fakeCatalog filters an in-memory slice the way the SQL store does.
type fakeCatalog struct {
	locs  []geo.Location
	err   error
	calls int
}

func (f *fakeCatalog) Locations(_ context.Context, mode geo.Mode, exclude []string) ([]geo.Location, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []geo.Location
	for _, l := range f.locs {
		if l.Type == mode && !slices.Contains(exclude, l.ID) {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeHistory struct {
	ids       []string
	err       error
	lastLimit int
}

func (f *fakeHistory) RecentlyPlayed(_ context.Context, _ string, limit int) ([]string, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	if len(f.ids) > limit {
		return f.ids[:limit], nil
	}
	return f.ids, nil
}

func cities(ids ...string) []geo.Location {
	out := make([]geo.Location, 0, len(ids))
	for _, id := range ids {
		out = append(out, geo.Location{ID: id, Name: "city-" + id, Type: geo.ModeCity, Difficulty: 1})
	}
	return out
}

func TestSelectExcludesRecent(t *testing.T) {
	cat := &fakeCatalog{locs: cities("a", "b", "c", "d")}
	hist := &fakeHistory{ids: []string{"a", "c"}}

	// Walk every index the random source can produce.
	for i := 0; i < 2; i++ {
		sel := New(cat, hist).WithRand(func(n int) int {
			if n != 2 {
				t.Fatalf("expected 2 candidates, got %d", n)
			}
			return i
		})
		loc, err := sel.Select(context.Background(), "u1", geo.ModeCity)
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
		if loc.ID == "a" || loc.ID == "c" {
			t.Fatalf("Select returned excluded location %q", loc.ID)
		}
	}
	if hist.lastLimit != RecentLimit {
		t.Errorf("history limit = %d, want %d", hist.lastLimit, RecentLimit)
	}
}

func TestSelectFallsBackWhenAllPlayed(t *testing.T) {
	cat := &fakeCatalog{locs: cities("a", "b", "c")}
	hist := &fakeHistory{ids: []string{"c", "b", "a"}}

	loc, err := New(cat, hist).Select(context.Background(), "u1", geo.ModeCity)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !slices.Contains([]string{"a", "b", "c"}, loc.ID) {
		t.Fatalf("Select returned unknown location %q", loc.ID)
	}
	if cat.calls != 2 {
		t.Errorf("catalog calls = %d, want 2 (filtered + unfiltered)", cat.calls)
	}
}

func TestSelectCatalogEmpty(t *testing.T) {
	cat := &fakeCatalog{locs: cities("a")}
	hist := &fakeHistory{ids: []string{"a"}}

	_, err := New(cat, hist).Select(context.Background(), "u1", geo.ModeCountry)
	if !errors.Is(err, ErrCatalogEmpty) {
		t.Fatalf("expected ErrCatalogEmpty, got %v", err)
	}
	if errors.Is(err, ErrSelectionUnavailable) {
		t.Fatal("catalog misconfiguration must not look like unavailability")
	}
}

func TestSelectStoreFailures(t *testing.T) {
	boom := errors.New("connection refused")

	t.Run("history", func(t *testing.T) {
		sel := New(&fakeCatalog{locs: cities("a")}, &fakeHistory{err: boom})
		_, err := sel.Select(context.Background(), "u1", geo.ModeCity)
		if !errors.Is(err, ErrSelectionUnavailable) {
			t.Fatalf("expected ErrSelectionUnavailable, got %v", err)
		}
	})

	t.Run("catalog", func(t *testing.T) {
		cat := &fakeCatalog{err: boom}
		sel := New(cat, &fakeHistory{})
		_, err := sel.Select(context.Background(), "u1", geo.ModeCity)
		if !errors.Is(err, ErrSelectionUnavailable) {
			t.Fatalf("expected ErrSelectionUnavailable, got %v", err)
		}
		if cat.calls != 1 {
			t.Errorf("catalog calls = %d, want 1 (no retry)", cat.calls)
		}
	})
}

func TestSelectKeepsStoreCause(t *testing.T) {
	sel := New(&fakeCatalog{err: context.DeadlineExceeded}, &fakeHistory{})
	_, err := sel.Select(context.Background(), "u1", geo.ModeCity)
	if !errors.Is(err, ErrSelectionUnavailable) {
		t.Fatalf("expected ErrSelectionUnavailable, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("cause lost: %v", err)
	}

	sel = New(&fakeCatalog{locs: cities("a")}, &fakeHistory{err: context.Canceled})
	if _, err := sel.Select(context.Background(), "u1", geo.ModeCity); !errors.Is(err, context.Canceled) {
		t.Errorf("history cause lost: %v", err)
	}
}
