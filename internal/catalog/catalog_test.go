package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/robalobadob/geoquest/internal/geo"
)

func TestEmbeddedCatalog(t *testing.T) {
	locs, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	counts := map[geo.Mode]int{}
	for _, l := range locs {
		counts[l.Type]++
		if l.ID == "" {
			t.Errorf("%s has no id", l.Name)
		}
	}
	for _, m := range geo.Modes {
		if counts[m] < 20 {
			t.Errorf("%s entries = %d, want a playable catalog", m, counts[m])
		}
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"missing name", `[{"name":" ","type":"city","difficultyLevel":1}]`},
		{"bad type", `[{"name":"Mars","type":"planet","difficultyLevel":1}]`},
		{"difficulty too high", `[{"name":"Paris","type":"city","difficultyLevel":6}]`},
		{"difficulty zero", `[{"name":"Paris","type":"city"}]`},
		{"duplicate", `[{"name":"Paris","type":"city","difficultyLevel":1},{"name":"paris","type":"city","difficultyLevel":2}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.json)); !errors.Is(err, ErrInvalidEntry) {
				t.Errorf("err = %v, want ErrInvalidEntry", err)
			}
		})
	}

	if _, err := Parse([]byte(`{not json`)); err == nil {
		t.Error("malformed json should fail")
	}
}

func TestSameNameDifferentTypeAllowed(t *testing.T) {
	locs, err := Parse([]byte(`[
		{"name":"Singapore","type":"country","difficultyLevel":2},
		{"name":"Singapore","type":"city","country":"Singapore","difficultyLevel":2}
	]`))
	if err != nil {
		t.Fatal(err)
	}
	if locs[0].ID == locs[1].ID {
		t.Error("country and city with the same name must have different ids")
	}
}

func TestLocationIDStable(t *testing.T) {
	if LocationID(geo.ModeCity, "Paris") != LocationID(geo.ModeCity, "paris") {
		t.Error("id should not depend on name case")
	}
}

type recordingSeeder struct{ got []geo.Location }

func (r *recordingSeeder) SeedLocations(_ context.Context, locs []geo.Location) (int, error) {
	r.got = locs
	return len(locs), nil
}

func TestSeedFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locations.json")
	data := `[{"name":"Lima","type":"city","continent":"South America","country":"Peru","difficultyLevel":3}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	s := &recordingSeeder{}
	n, err := Seed(context.Background(), s, path)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if n != 1 || len(s.got) != 1 || s.got[0].Country != "Peru" {
		t.Errorf("seeded %d: %+v", n, s.got)
	}

	if _, err := Seed(context.Background(), s, filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file should fail")
	}
}
