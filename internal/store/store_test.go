package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/robalobadob/geoquest/internal/database"
	"github.com/robalobadob/geoquest/internal/game"
	"github.com/robalobadob/geoquest/internal/geo"
)

func newSQLite(t *testing.T) *SQLite {
	t.Helper()
	db, err := database.Open(context.Background(), database.Memory)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewSQLite(db)
}

var seed = []geo.Location{
	{ID: "fr", Name: "France", Type: geo.ModeCountry, Continent: "Europe", Difficulty: 1},
	{ID: "jp", Name: "Japan", Type: geo.ModeCountry, Continent: "Asia", Difficulty: 1},
	{ID: "par", Name: "Paris", Type: geo.ModeCity, Continent: "Europe", Country: "France", Difficulty: 1},
	{ID: "osa", Name: "Osaka", Type: geo.ModeCity, Continent: "Asia", Country: "Japan", Difficulty: 3},
	{ID: "lim", Name: "Lima", Type: geo.ModeCity, Continent: "South America", Country: "Peru", Difficulty: 2},
}

func seeded(t *testing.T) *SQLite {
	t.Helper()
	s := newSQLite(t)
	if _, err := s.SeedLocations(context.Background(), seed); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return s
}

func TestSeedLocationsIdempotent(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()

	n, err := s.SeedLocations(ctx, seed)
	if err != nil || n != len(seed) {
		t.Fatalf("first seed = %d, %v", n, err)
	}
	n, err = s.SeedLocations(ctx, seed)
	if err != nil || n != 0 {
		t.Fatalf("second seed = %d, %v; want 0 inserted", n, err)
	}

	counts, err := s.CountByMode(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[geo.ModeCountry] != 2 || counts[geo.ModeCity] != 3 {
		t.Errorf("counts = %v", counts)
	}
}

func TestSeedLocationsUpdatesMetadata(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	edited := []geo.Location{
		{ID: "osa", Name: "Osaka", Type: geo.ModeCity, Continent: "Asia", Country: "Japan", Difficulty: 4},
		{ID: "lim", Name: "Lima", Type: geo.ModeCity, Continent: "South America", Country: "Peru", Difficulty: 2},
	}
	n, err := s.SeedLocations(ctx, edited)
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if n != 1 {
		t.Errorf("changed = %d, want 1 (only Osaka differs)", n)
	}

	cities, err := s.Locations(ctx, geo.ModeCity, []string{"par", "lim"})
	if err != nil {
		t.Fatal(err)
	}
	if len(cities) != 1 || cities[0].ID != "osa" || cities[0].Difficulty != 4 {
		t.Errorf("osaka after reseed = %+v", cities)
	}

	counts, err := s.CountByMode(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[geo.ModeCity] != 3 {
		t.Errorf("cities = %d, want 3 (missing entries are kept)", counts[geo.ModeCity])
	}
}

func TestLocationsExclude(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	all, err := s.Locations(ctx, geo.ModeCity, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("cities = %d, want 3", len(all))
	}
	for _, l := range all {
		if l.Type != geo.ModeCity {
			t.Errorf("got %s of type %s", l.Name, l.Type)
		}
	}

	rest, err := s.Locations(ctx, geo.ModeCity, []string{"par", "lim"})
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 1 || rest[0].ID != "osa" {
		t.Errorf("after exclusion = %+v", rest)
	}
	if rest[0].Difficulty != 3 || rest[0].Country != "Japan" {
		t.Errorf("fields not round-tripped: %+v", rest[0])
	}
}

func TestRecordPlayedUpsertAndOrder(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	u, err := s.UpsertUser(ctx, "ana", "")
	if err != nil {
		t.Fatal(err)
	}

	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"par", "osa", "lim"} {
		if err := s.RecordPlayed(ctx, u.ID, id, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatal(err)
		}
	}
	// Replaying Paris moves it to the front instead of adding a row.
	if err := s.RecordPlayed(ctx, u.ID, "par", base.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	ids, err := s.RecentlyPlayed(ctx, u.ID, 10)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"par", "lim", "osa"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}

	ids, _ = s.RecentlyPlayed(ctx, u.ID, 2)
	if len(ids) != 2 {
		t.Errorf("limit 2 returned %d", len(ids))
	}

	recs, err := s.RecentPlays(ctx, u.ID, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].LocationID != "par" || recs[0].UserID != u.ID || !recs[0].PlayedAt.Equal(base.Add(time.Hour)) {
		t.Errorf("recent plays = %+v", recs)
	}
}

func TestLeaderboardQuery(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	ana, _ := s.UpsertUser(ctx, "ana", "")
	bo, _ := s.UpsertUser(ctx, "bo", "")

	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	recs := []geo.GameRecord{
		{UserID: ana.ID, Mode: geo.ModeCountry, LocationName: "France", QuestionsAsked: 10, CompletionTimeSeconds: 200, Won: true, CompletedAt: day.Add(2 * time.Hour)},
		{UserID: bo.ID, Mode: geo.ModeCountry, LocationName: "Japan", QuestionsAsked: 5, CompletionTimeSeconds: 150, Won: true, CompletedAt: day.Add(3 * time.Hour)},
		{UserID: ana.ID, Mode: geo.ModeCountry, LocationName: "Japan", QuestionsAsked: 3, CompletionTimeSeconds: 150, Won: true, CompletedAt: day.Add(4 * time.Hour)},
		// yesterday
		{UserID: bo.ID, Mode: geo.ModeCountry, LocationName: "France", QuestionsAsked: 1, CompletionTimeSeconds: 5, Won: true, CompletedAt: day.Add(-time.Minute)},
		// other mode
		{UserID: bo.ID, Mode: geo.ModeCity, LocationName: "Paris", QuestionsAsked: 1, CompletionTimeSeconds: 5, Won: true, CompletedAt: day.Add(time.Hour)},
	}
	for _, r := range recs {
		if err := s.InsertGame(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.Leaderboard(ctx, geo.ModeCountry, day, 10)
	if err != nil {
		t.Fatal(err)
	}
	want := []struct {
		user    string
		seconds int
		q       int
	}{{"ana", 150, 3}, {"bo", 150, 5}, {"ana", 200, 10}}
	if len(got) != len(want) {
		t.Fatalf("entries = %+v", got)
	}
	for i, w := range want {
		if got[i].Username != w.user || got[i].CompletionTimeSeconds != w.seconds || got[i].QuestionsAsked != w.q {
			t.Errorf("rank %d = %+v, want %+v", i, got[i], w)
		}
	}

	top1, _ := s.Leaderboard(ctx, geo.ModeCountry, day, 1)
	if len(top1) != 1 {
		t.Errorf("limit 1 returned %d", len(top1))
	}
}

func TestUpsertUser(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()

	a, err := s.UpsertUser(ctx, "ana", "ana@example.com")
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.UpsertUser(ctx, "ana", "")
	if err != nil {
		t.Fatal(err)
	}
	if a.ID != b.ID || b.Email != "ana@example.com" {
		t.Errorf("second upsert = %+v, first = %+v", b, a)
	}

	got, err := s.UserByID(ctx, a.ID)
	if err != nil || got.Username != "ana" {
		t.Errorf("UserByID = %+v, %v", got, err)
	}
	if _, err := s.UserByID(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id err = %v", err)
	}
}

func TestSessionsPrune(t *testing.T) {
	reg := NewSessions()
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	old := game.NewSession("old", "u", seed[2], func() time.Time { return now.Add(-2 * time.Hour) })
	fresh := game.NewSession("fresh", "u", seed[3], func() time.Time { return now })
	_ = reg.Save(ctx, old)
	_ = reg.Save(ctx, fresh)

	if n := reg.Prune(now.Add(-time.Hour)); n != 1 {
		t.Fatalf("pruned %d, want 1", n)
	}
	if _, err := reg.Get(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("old session still present: %v", err)
	}
	if _, err := reg.Get(ctx, "fresh"); err != nil {
		t.Errorf("fresh session: %v", err)
	}
	if reg.Len() != 1 {
		t.Errorf("len = %d", reg.Len())
	}
}

func deadRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         "localhost:1",
		DialTimeout:  10 * time.Millisecond,
		ReadTimeout:  10 * time.Millisecond,
		WriteTimeout: 10 * time.Millisecond,
		MaxRetries:   0,
	})
}

func TestRedisHistoryFallsBackToDatabase(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	u, _ := s.UpsertUser(ctx, "ana", "")

	h := NewRedisHistory(deadRedis(), s)
	if err := h.RecordPlayed(ctx, u.ID, "par", time.Now()); err != nil {
		t.Fatalf("RecordPlayed with redis down should still succeed: %v", err)
	}
	ids, err := h.RecentlyPlayed(ctx, u.ID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != "par" {
		t.Errorf("ids = %v, want [par]", ids)
	}
	if err := h.Ping(ctx); err == nil {
		t.Error("ping against dead redis should fail")
	}
}

func TestJanitorStopsOnCancel(t *testing.T) {
	reg := NewSessions()
	stale := game.NewSession("stale", "u", seed[2], func() time.Time { return time.Now().Add(-time.Hour) })
	_ = reg.Save(context.Background(), stale)

	ctx, cancel := context.WithCancel(context.Background())
	passes := make(chan int, 8)
	done := make(chan error, 1)
	go func() {
		done <- reg.Janitor(ctx, time.Minute, 5*time.Millisecond, func(removed, _ int) {
			select {
			case passes <- removed:
			default:
			}
		})
	}()

	select {
	case n := <-passes:
		if n != 1 {
			t.Errorf("first pass removed %d, want 1", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("janitor never ran")
	}
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Janitor returned %v", err)
	}
	if reg.Len() != 0 {
		t.Errorf("len = %d, want 0", reg.Len())
	}
}
