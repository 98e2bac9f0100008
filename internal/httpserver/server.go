// internal/httpserver/server.go
//
// HTTP server wiring for the round server.
// Responsibilities:
//   - Router + middleware (request IDs, access logs, CORS, timeouts, panic recovery).
//   - Public endpoints: "/", "/health", "/metrics", "/debug/words".
//   - Round endpoints (optional auth): /rounds/*, including the WebSocket keyboard channel.
//   - Daily round endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: /auth/*, /stats/me, /games/mine.
//
// Notes:
//   - CORS is origin‑aware and credentials‑enabled (so cookies work).
//   - Optional auth decorates requests with the user when a valid token is present;
//     guests get a stable anonymous cookie instead.
//   - The WebSocket route sits outside the request timeout.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/round-server/internal/auth"
	"github.com/robalobadob/wordle/apps/round-server/internal/config"
	"github.com/robalobadob/wordle/apps/round-server/internal/daily"
	"github.com/robalobadob/wordle/apps/round-server/internal/game"
	"github.com/robalobadob/wordle/apps/round-server/internal/history"
	"github.com/robalobadob/wordle/apps/round-server/internal/metrics"
	"github.com/robalobadob/wordle/apps/round-server/internal/store"
	"github.com/robalobadob/wordle/apps/round-server/internal/words"
)

// Deps are the collaborators a Server is built from.
type Deps struct {
	Config  *config.Config
	Engine  *game.Engine
	Words   *words.List
	Store   store.Store
	DB      *sql.DB
	Metrics *metrics.Metrics
}

// Server bundles the router and everything the handlers touch.
type Server struct {
	r       *chi.Mux
	cfg     *config.Config
	engine  *game.Engine
	words   *words.List
	store   store.Store
	metrics *metrics.Metrics
	users   *auth.Users
	tokens  *auth.Tokens
	history *history.Recorder
	daily   *dailyServer
	http    *http.Server

	sweepCtx  context.Context
	stopSweep context.CancelFunc
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		cfg:     d.Config,
		engine:  d.Engine,
		words:   d.Words,
		store:   d.Store,
		metrics: d.Metrics,
		users:   auth.NewUsers(d.DB, 0),
		tokens:  auth.NewTokens(d.Config.JWTSecret, d.Config.TokenTTL()),
		history: history.NewRecorder(d.DB),
	}
	s.daily = newDailyServer(s, daily.NewStore(d.DB))
	s.sweepCtx, s.stopSweep = context.WithCancel(context.Background())
	s.http = &http.Server{
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(hlog.NewHandler(log.Logger))
	s.r.Use(hlog.AccessHandler(accessLog))
	s.r.Use(chimw.Recoverer)
	s.r.Use(s.cors)
	s.r.Use(s.withOptionalAuth)

	// --- diagnostics ---
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	// Keyboard channel: long-lived, no request timeout.
	s.r.Get("/rounds/{id}/ws", s.handleWS)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(d.Config.RequestTimeout))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"service":   "wordle-rounds",
				"endpoints": []string{"/health", "/metrics", "POST /rounds", "POST /rounds/{id}/guess", "GET /rounds/{id}/ws", "/daily/*", "/auth/*"},
			})
		})
		r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"words": s.words.Len(), "playable": s.engine.WordCount(), "scoring": s.engine.Scoring()})
		})

		s.mountRounds(r)
		s.mountDaily(r)
		s.mountAuth(r)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", r.URL.Path)
	})
	return s
}

// Start launches the idle round sweeper, then serves HTTP on addr and blocks
// until the server stops.
func (s *Server) Start(addr string) error {
	if s.cfg.SweepInterval > 0 && s.cfg.RoundTTL > 0 {
		go s.runSweeper(s.sweepCtx, s.cfg.SweepInterval)
	}
	s.http.Addr = addr
	return s.http.ListenAndServe()
}

// Shutdown stops the sweeper and the listener, then waits for in-flight
// requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopSweep()
	return s.http.Shutdown(ctx)
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

func accessLog(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("req_id", chimw.GetReqID(r.Context())).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ responses ----------------------------------

type errorRes struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorRes{Error: code, Message: msg})
}

// moveError maps engine/store errors onto an HTTP status and error body.
func moveError(err error) (int, errorRes) {
	switch {
	case errors.Is(err, game.ErrInvalidSubmission):
		return http.StatusUnprocessableEntity, errorRes{"invalid_submission", err.Error()}
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, errorRes{"not_found", "round not found"}
	case errors.Is(err, errDailyReset):
		return http.StatusConflict, errorRes{"daily_round", err.Error()}
	default:
		return http.StatusInternalServerError, errorRes{Error: "internal"}
	}
}

func writeMoveError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := moveError(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("round move failed")
	}
	writeJSON(w, status, body)
}

// decode reads a JSON body into v, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return false
	}
	return true
}
