package httpserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/robalobadob/wordle/apps/round-server/internal/daily"
	"github.com/robalobadob/wordle/apps/round-server/internal/game"
	"github.com/robalobadob/wordle/apps/round-server/internal/store"
)

var errDailyReset = errors.New("daily rounds cannot be restarted")

// roundView is the wire shape of a session. The secret only appears inside
// Result once the round is over.
type roundView struct {
	ID        string       `json:"id"`
	Mode      string       `json:"mode"`
	Date      string       `json:"date,omitempty"`
	Rows      []game.Row   `json:"rows"`
	ActiveRow int          `json:"activeRow"`
	Outcome   game.Outcome `json:"outcome"`
	Result    *game.Result `json:"result,omitempty"`
	StartedAt time.Time    `json:"startedAt"`
}

func viewOf(s *store.Session) roundView {
	return roundView{
		ID:        s.ID,
		Mode:      s.Mode,
		Date:      s.Date,
		Rows:      s.Round.Rows[:],
		ActiveRow: s.Round.ActiveRow(),
		Outcome:   s.Round.Outcome(),
		Result:    s.Round.Result(),
		StartedAt: s.Round.StartedAt,
	}
}

// startSession stores a new session around r and records it. opts adjust the
// session before it is saved.
func (s *Server) startSession(ctx context.Context, owner store.Owner, mode string, r *game.Round, opts ...func(*store.Session)) (*store.Session, error) {
	sess := &store.Session{
		ID:       uuid.NewString(),
		Mode:     mode,
		Owner:    owner,
		RecordID: uuid.NewString(),
		Round:    *r,
	}
	for _, o := range opts {
		o(sess)
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	s.roundStarted(ctx, sess)
	return sess, nil
}

// restart runs startNewRound on an existing normal session. A round that
// was still in progress is recorded as abandoned.
func (s *Server) restart(ctx context.Context, id string, owner store.Owner) (*store.Session, error) {
	var prev string
	var wasPlaying bool
	sess, err := s.store.Update(ctx, id, func(sess *store.Session) error {
		if sess.Owner.Key() != owner.Key() {
			return store.ErrNotFound
		}
		if sess.Mode == store.ModeDaily {
			return errDailyReset
		}
		prev, wasPlaying = sess.RecordID, !sess.Round.Outcome().Finished()
		s.engine.StartNewRound(&sess.Round)
		sess.RecordID = uuid.NewString()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if wasPlaying {
		if err := s.history.Abandoned(ctx, prev, sess.Round.StartedAt); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("round", sess.ID).Msg("record round abandoned")
		}
	}
	s.roundStarted(ctx, sess)
	return sess, nil
}

func (s *Server) roundStarted(ctx context.Context, sess *store.Session) {
	s.metrics.RoundStarted(sess.Mode)
	s.refreshActive(ctx)
	if err := s.history.Started(ctx, sess.RecordID, sess.Owner, sess.Mode, sess.Round.StartedAt); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("round", sess.ID).Msg("record round start")
	}
	zerolog.Ctx(ctx).Debug().Str("round", sess.ID).Str("mode", sess.Mode).Msg("round started")
}

// move mutates the round of one session. It returns the submission made by
// the move, if any.
type move func(r *game.Round) (*game.Submission, error)

func (s *Server) submitMove(row int, letters []string) move {
	return func(r *game.Round) (*game.Submission, error) {
		sub, err := s.engine.SubmitGuess(r, row, letters)
		if err != nil {
			return nil, err
		}
		return &sub, nil
	}
}

func (s *Server) wordMove(row int, word string) move {
	return func(r *game.Round) (*game.Submission, error) {
		sub, err := s.engine.SubmitWord(r, row, word)
		if err != nil {
			return nil, err
		}
		return &sub, nil
	}
}

func (s *Server) cellMove(row, col int, value string) move {
	return func(r *game.Round) (*game.Submission, error) {
		return nil, s.engine.SetCell(r, row, col, value)
	}
}

func (s *Server) keyMove(key string) move {
	return func(r *game.Round) (*game.Submission, error) {
		return s.engine.Key(r, key)
	}
}

// apply runs m against session id under the store's lock, then records the
// side effects of an accepted submission. Persistence failures are logged
// and never undo the move.
func (s *Server) apply(ctx context.Context, id string, owner store.Owner, submit bool, m move) (*store.Session, *game.Submission, error) {
	var sub *game.Submission
	sess, err := s.store.Update(ctx, id, func(sess *store.Session) error {
		if sess.Owner.Key() != owner.Key() {
			return store.ErrNotFound
		}
		var err error
		sub, err = m(&sess.Round)
		return err
	})
	if err != nil {
		if submit && errors.Is(err, game.ErrInvalidSubmission) {
			s.metrics.GuessRejected()
		}
		return nil, nil, err
	}
	if sub != nil {
		s.submitted(ctx, sess, sub)
	}
	return sess, sub, nil
}

func (s *Server) submitted(ctx context.Context, sess *store.Session, sub *game.Submission) {
	logger := zerolog.Ctx(ctx)
	s.metrics.GuessAccepted()
	if err := s.history.Guessed(ctx, sess.RecordID); err != nil {
		logger.Warn().Err(err).Str("round", sess.ID).Msg("record guess")
	}
	if !sub.Outcome.Finished() {
		return
	}

	res := sub.Result
	won := sub.Outcome == game.OutcomeWon
	s.metrics.RoundFinished(string(sub.Outcome), res.AttemptsUsed)
	s.refreshActive(ctx)
	logger.Info().
		Str("round", sess.ID).
		Str("mode", sess.Mode).
		Str("outcome", string(sub.Outcome)).
		Int("attempts", res.AttemptsUsed).
		Msg("round finished")

	if err := s.history.Finished(ctx, sess.RecordID, string(sub.Outcome), res.SecretWord, sess.Round.EndedAt); err != nil {
		logger.Warn().Err(err).Str("round", sess.ID).Msg("record round finish")
	}
	if sess.Owner.UserID != "" {
		if err := s.users.RecordResult(ctx, sess.Owner.UserID, won); err != nil {
			logger.Warn().Err(err).Str("user", sess.Owner.UserID).Msg("bump stats")
		}
	}
	if sess.Mode == store.ModeDaily && won {
		err := s.daily.store.InsertResult(ctx, daily.Result{
			UserID:    sess.Owner.Key(),
			Player:    s.playerName(ctx, sess.Owner),
			Date:      sess.Date,
			WordIndex: sess.WordIndex,
			Guesses:   res.AttemptsUsed,
			ElapsedMs: int(sess.Round.EndedAt.Sub(sess.Round.StartedAt).Milliseconds()),
		})
		if err != nil {
			logger.Warn().Err(err).Str("round", sess.ID).Msg("record daily result")
		}
	}
}

// refreshActive sets the active rounds gauge to the number of stored rounds
// still in progress.
func (s *Server) refreshActive(ctx context.Context) {
	n := 0
	s.store.Range(ctx, func(sess store.Session) bool {
		if !sess.Round.Outcome().Finished() {
			n++
		}
		return true
	})
	s.metrics.SetActiveRounds(n)
}

// playerName is how an owner appears on public boards: the username when
// signed in, else a digest of the anonymous cookie, which is never shown.
func (s *Server) playerName(ctx context.Context, o store.Owner) string {
	if o.UserID != "" {
		if u, err := s.users.FindByID(ctx, o.UserID); err == nil {
			return u.Username
		}
		return "player"
	}
	sum := sha256.Sum256([]byte(o.AnonID))
	return "guest-" + hex.EncodeToString(sum[:4])
}

func isEnter(key string) bool {
	return strings.EqualFold(strings.TrimSpace(key), game.KeyEnter)
}
