// internal/httpserver/server.go
//
// HTTP server wiring for the geography guessing game.
// Responsibilities:
//   - Router + middleware (request IDs, request log, panic recovery, timeouts, CORS).
//   - Public endpoints: "/", "/health", "/metrics", "/openapi.json", "/docs", "/leaderboard".
//   - Identity: POST /users issues a JWT (see identity.go).
//   - Game endpoints (require a user): /game/new, /game/{id}, /game/question, /game/guess.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Live sessions are held in store.Sessions; finished wins go to SQLite through game.Service.

package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/swaggest/swgui/v5emb"

	"github.com/robalobadob/geoquest/internal/config"
	"github.com/robalobadob/geoquest/internal/game"
	"github.com/robalobadob/geoquest/internal/geo"
	"github.com/robalobadob/geoquest/internal/metrics"
	"github.com/robalobadob/geoquest/internal/store"
)

// Checker is a dependency probed by /health.
type Checker interface {
	Ping(ctx context.Context) error
}

// CatalogCounter reports catalog size for /debug/catalog.
type CatalogCounter interface {
	CountByMode(ctx context.Context) (map[geo.Mode]int, error)
}

// Deps are the collaborators the server needs.
type Deps struct {
	Service  *game.Service
	Sessions *store.Sessions
	Users    UserStore
	Catalog  CatalogCounter
	Checks   map[string]Checker
	Metrics  *metrics.Metrics
}

// Server bundles the router and its dependencies.
type Server struct {
	r   *chi.Mux
	srv *http.Server
	cfg config.Config

	svc      *game.Service
	sessions *store.Sessions
	users    UserStore
	catalog  CatalogCounter
	checks   map[string]Checker
	metrics  *metrics.Metrics
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, d Deps) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		cfg:      cfg,
		svc:      d.Service,
		sessions: d.Sessions,
		users:    d.Users,
		catalog:  d.Catalog,
		checks:   d.Checks,
		metrics:  d.Metrics,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	if cfg.RequestTimeout > 0 {
		s.r.Use(chimw.Timeout(cfg.RequestTimeout))
	}
	s.r.Use(cors(cfg.ClientOrigin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service": "geoquest",
			"endpoints": []string{
				"/health", "/leaderboard", "POST /users",
				"POST /game/new", "GET /game/{id}", "POST /game/question", "POST /game/guess",
			},
		})
	})
	s.r.Get("/health", s.handleHealth)
	s.r.Handle("/metrics", s.metrics.Handler())
	s.r.Get("/openapi.json", handleOpenAPI())
	s.r.Mount("/docs", v5emb.New("GeoQuest API", "/openapi.json", "/docs"))
	s.r.Get("/debug/catalog", s.handleDebugCatalog)

	s.r.Post("/users", s.handleRegister)
	s.r.Get("/leaderboard", s.handleLeaderboard)
	s.mountGame(s.r.With(s.requireUser()))

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	s.srv = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Run serves until Shutdown is called.
func (s *Server) Run(_ context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}
	log.Info().Str("addr", s.srv.Addr).Msg("http server listening")

	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

// ----------------------------- middleware ----------------------------------

// requestLogger writes one zerolog line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Str("request_id", chimw.GetReqID(r.Context())).
				Msg("http request")
		}()

		next.ServeHTTP(ww, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ------------------------------ health -------------------------------------

type checkResult struct {
	Status string `json:"status"`
}

// handleHealth pings every configured dependency; any failure is a 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]checkResult, len(s.checks))
	status := http.StatusOK
	for name, c := range s.checks {
		if err := c.Ping(ctx); err != nil {
			log.Error().Err(err).Str("name", name).Msg("health check failed")
			checks[name] = checkResult{Status: "error"}
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = checkResult{Status: "ok"}
	}
	writeJSON(w, status, checks)
}

func (s *Server) handleDebugCatalog(w http.ResponseWriter, r *http.Request) {
	counts, err := s.catalog.CountByMode(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}
