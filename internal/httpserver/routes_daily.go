// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start a daily round (creates or reuses session)
//   - POST /daily/guess       → submit a word for today's daily round
//   - GET  /daily/leaderboard → fetch top 20 results for today (or a given date)
//
// Each owner can play once per day: a stored result reports played=true, and
// an in-progress or lost round is handed back instead of a fresh one.
// Daily rounds are ordinary sessions in the round store, so they can also be
// driven through /rounds/{id}/keys and the WebSocket channel.

package httpserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/robalobadob/wordle/apps/round-server/internal/daily"
	"github.com/robalobadob/wordle/apps/round-server/internal/store"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv    *Server
	store  *daily.Store
	picker daily.Picker
	now    func() time.Time

	mu       sync.Mutex
	day      string            // date the sessions below belong to
	sessions map[string]string // owner key|date → session id
}

func newDailyServer(s *Server, st *daily.Store) *dailyServer {
	return &dailyServer{
		srv:   s,
		store: st,
		picker: daily.Picker{
			Salt:  s.cfg.DailySalt,
			Words: s.words.At,
			Len:   s.words.Len(),
		},
		now:      time.Now,
		sessions: make(map[string]string),
	}
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	d := s.daily
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", d.handleNew)
		r.Post("/guess", d.handleGuess)
		r.Get("/leaderboard", d.handleLeaderboard)
	})
}

// -----------------------------------------------------------------------------
// /daily/new

type newRes struct {
	GameID string     `json:"gameId,omitempty"`
	Date   string     `json:"date"`
	Played bool       `json:"played"`
	Round  *roundView `json:"round,omitempty"`
}

func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := d.srv.owner(w, r)
	date, idx, word := d.picker.Pick(d.now())

	played, err := d.store.AlreadyPlayed(ctx, owner.Key(), date)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("check daily result")
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return
	}
	if played {
		writeJSON(w, http.StatusOK, newRes{Date: date, Played: true})
		return
	}

	// One session per owner and day; creation happens under the lock so two
	// concurrent calls agree on it.
	key := owner.Key() + "|" + date
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rollOverLocked(ctx, date)
	if id, ok := d.sessions[key]; ok {
		if sess, err := d.srv.store.Get(ctx, id); err == nil {
			v := viewOf(sess)
			writeJSON(w, http.StatusOK, newRes{GameID: id, Date: date, Round: &v})
			return
		}
	}

	round, err := d.srv.engine.NewRoundWithSecret(word)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int("index", idx).Msg("daily word")
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}
	sess, err := d.srv.startSession(ctx, owner, store.ModeDaily, round, func(s *store.Session) {
		s.Date = date
		s.WordIndex = idx
	})
	if err != nil {
		writeMoveError(w, r, err)
		return
	}
	d.sessions[key] = sess.ID
	v := viewOf(sess)
	writeJSON(w, http.StatusCreated, newRes{GameID: sess.ID, Date: date, Round: &v})
}

// rollOverLocked drops the previous day's daily sessions once a later date
// is seen. Dates only move forward: a request that picked its date before a
// concurrent rollover keeps the newer day's sessions intact.
func (d *dailyServer) rollOverLocked(ctx context.Context, date string) {
	if date <= d.day {
		return
	}
	ids := make(map[string]bool, len(d.sessions))
	for key, id := range d.sessions {
		ids[id] = true
		delete(d.sessions, key)
	}
	dropped := d.srv.store.DeleteIf(ctx, func(sess *store.Session) bool { return ids[sess.ID] })
	for _, sess := range dropped {
		if sess.Round.Outcome().Finished() {
			continue
		}
		if err := d.srv.history.Abandoned(ctx, sess.RecordID, d.now()); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("round", sess.ID).Msg("record round abandoned")
		}
	}
	if d.day != "" {
		zerolog.Ctx(ctx).Info().Str("from", d.day).Str("to", date).Int("dropped", len(dropped)).Msg("daily rollover")
		d.srv.refreshActive(ctx)
	}
	d.day = date
}

// claim hands daily session id from one owner to another. It is skipped when
// the new owner already has a round or a result for that date.
func (d *dailyServer) claim(ctx context.Context, id string, from, to store.Owner) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cur, err := d.srv.store.Get(ctx, id)
	if err != nil {
		return false, err
	}
	toKey := to.Key() + "|" + cur.Date
	if _, taken := d.sessions[toKey]; taken {
		return false, nil
	}
	played, err := d.store.AlreadyPlayed(ctx, to.Key(), cur.Date)
	if err != nil || played {
		return false, err
	}
	_, err = d.srv.store.Update(ctx, id, func(sess *store.Session) error {
		if sess.Owner.Key() != from.Key() {
			return store.ErrNotFound
		}
		sess.Owner = to
		return nil
	})
	if err != nil {
		return false, err
	}
	if d.sessions[from.Key()+"|"+cur.Date] == id {
		delete(d.sessions, from.Key()+"|"+cur.Date)
		d.sessions[toKey] = id
	}
	return true, nil
}

// -----------------------------------------------------------------------------
// /daily/guess

type dailyGuessReq struct {
	GameID string `json:"gameId"`
	Word   string `json:"word"`
}

func (d *dailyServer) handleGuess(w http.ResponseWriter, r *http.Request) {
	var p dailyGuessReq
	if !decode(w, r, &p) {
		return
	}
	if p.GameID == "" {
		writeError(w, http.StatusBadRequest, "invalid", "gameId is required")
		return
	}
	ctx := r.Context()
	owner := d.srv.owner(w, r)

	cur, err := d.srv.store.Get(ctx, p.GameID)
	if err == nil && (cur.Mode != store.ModeDaily || cur.Owner.Key() != owner.Key()) {
		err = store.ErrNotFound
	}
	if err != nil {
		writeMoveError(w, r, err)
		return
	}

	sess, sub, err := d.srv.apply(ctx, p.GameID, owner, true, d.srv.wordMove(cur.Round.ActiveRow(), p.Word))
	if err != nil {
		writeMoveError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, guessRes{Round: viewOf(sess), Submission: sub})
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(d.now())
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
