// internal/httpserver/routes_rounds.go
//
// REST routes for normal rounds:
//   - POST /rounds                              → start a round
//   - GET  /rounds/{id}                         → snapshot
//   - POST /rounds/{id}/new                     → start a new round in place
//   - PUT  /rounds/{id}/rows/{row}/cells/{col}  → per-cell update
//   - POST /rounds/{id}/guess                   → submit a row
//   - POST /rounds/{id}/keys                    → one keystroke
//
// Rounds are visible only to the owner (user or anonymous cookie) that started them.

package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/wordle/apps/round-server/internal/game"
	"github.com/robalobadob/wordle/apps/round-server/internal/store"
)

func (s *Server) mountRounds(r chi.Router) {
	r.Route("/rounds", func(r chi.Router) {
		r.Post("/", s.handleNewRound)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetRound)
			r.Post("/new", s.handleRestartRound)
			r.Put("/rows/{row}/cells/{col}", s.handleSetCell)
			r.Post("/guess", s.handleGuess)
			r.Post("/keys", s.handleKey)
		})
	})
}

func (s *Server) handleNewRound(w http.ResponseWriter, r *http.Request) {
	owner := s.owner(w, r)
	sess, err := s.startSession(r.Context(), owner, store.ModeNormal, s.engine.NewRound())
	if err != nil {
		writeMoveError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(sess))
}

func (s *Server) handleGetRound(w http.ResponseWriter, r *http.Request) {
	owner := s.owner(w, r)
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err == nil && sess.Owner.Key() != owner.Key() {
		err = store.ErrNotFound
	}
	if err != nil {
		writeMoveError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

func (s *Server) handleRestartRound(w http.ResponseWriter, r *http.Request) {
	sess, err := s.restart(r.Context(), chi.URLParam(r, "id"), s.owner(w, r))
	if err != nil {
		writeMoveError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

type cellReq struct {
	Value string `json:"value"`
}

func (s *Server) handleSetCell(w http.ResponseWriter, r *http.Request) {
	row, err1 := strconv.Atoi(chi.URLParam(r, "row"))
	col, err2 := strconv.Atoi(chi.URLParam(r, "col"))
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "bad_cell", "row and col must be integers")
		return
	}
	var req cellReq
	if !decode(w, r, &req) {
		return
	}
	sess, _, err := s.apply(r.Context(), chi.URLParam(r, "id"), s.owner(w, r), false, s.cellMove(row, col, req.Value))
	if err != nil {
		writeMoveError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

// guessReq carries either the cells of a row or a whole word.
type guessReq struct {
	Row     *int     `json:"row"`
	Letters []string `json:"letters"`
	Word    string   `json:"word"`
}

type guessRes struct {
	Round      roundView        `json:"round"`
	Submission *game.Submission `json:"submission"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if !decode(w, r, &req) {
		return
	}
	id, owner := chi.URLParam(r, "id"), s.owner(w, r)

	row := -1
	if req.Row != nil {
		row = *req.Row
	} else if cur, err := s.store.Get(r.Context(), id); err == nil {
		row = cur.Round.ActiveRow()
	}
	m := s.submitMove(row, req.Letters)
	if req.Letters == nil && req.Word != "" {
		m = s.wordMove(row, req.Word)
	}

	sess, sub, err := s.apply(r.Context(), id, owner, true, m)
	if err != nil {
		writeMoveError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, guessRes{Round: viewOf(sess), Submission: sub})
}

type keyReq struct {
	Key string `json:"key"`
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	var req keyReq
	if !decode(w, r, &req) {
		return
	}
	sess, sub, err := s.apply(r.Context(), chi.URLParam(r, "id"), s.owner(w, r), isEnter(req.Key), s.keyMove(req.Key))
	if err != nil {
		writeMoveError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, guessRes{Round: viewOf(sess), Submission: sub})
}
