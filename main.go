// main.go
//
// Entry point for the GeoQuest server.
//   - Loads .env (godotenv) and the typed config (caarlos0/env).
//   - Opens SQLite, applies migrations, seeds the location catalog.
//   - Optionally puts Redis in front of play history (REDIS_URL).
//   - Runs the HTTP server and the session janitor until SIGINT/SIGTERM.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/geoquest/internal/catalog"
	"github.com/robalobadob/geoquest/internal/config"
	"github.com/robalobadob/geoquest/internal/database"
	"github.com/robalobadob/geoquest/internal/game"
	"github.com/robalobadob/geoquest/internal/httpserver"
	"github.com/robalobadob/geoquest/internal/metrics"
	"github.com/robalobadob/geoquest/internal/oracle"
	"github.com/robalobadob/geoquest/internal/selection"
	"github.com/robalobadob/geoquest/internal/store"
)

func main() {
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	zerolog.SetGlobalLevel(cfg.Level())
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}
	log.Info().Str("path", cfg.DBPath).Msg("connected to sqlite")

	sq := store.NewSQLite(db)
	if _, err := catalog.Seed(ctx, sq, cfg.LocationsFile); err != nil {
		return err
	}

	checks := map[string]httpserver.Checker{"sqlite": sq}

	// --- play history (Redis optional) ---
	var history store.History = sq
	if cfg.RedisURL != "" {
		rdb, err := store.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		rh := store.NewRedisHistory(rdb, sq)
		history = rh
		checks["redis"] = rh
		log.Info().Msg("connected to redis")
	}

	// --- metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// --- oracle ---
	if cfg.OracleAPIKey == "" {
		log.Warn().Msg("ORACLE_API_KEY not set; every answer will be a random fallback")
	}
	model := oracle.NewClient(cfg.OracleBaseURL, cfg.OracleAPIKey, cfg.OracleModel, cfg.OracleTimeout)
	orc := oracle.New(model, m)

	// --- game ---
	svc := game.NewService(selection.New(sq, history), history, sq, orc, m)
	sessions := store.NewSessions()

	srv := httpserver.New(*cfg, httpserver.Deps{
		Service:  svc,
		Sessions: sessions,
		Users:    sq,
		Catalog:  sq,
		Checks:   checks,
		Metrics:  m,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Run(gctx)
	})

	g.Go(func() error {
		return sessions.Janitor(gctx, cfg.SessionTTL, time.Minute, func(removed, remaining int) {
			m.SetActiveSessions(remaining)
			if removed > 0 {
				log.Debug().Int("removed", removed).Int("remaining", remaining).Msg("pruned idle sessions")
			}
		})
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}
