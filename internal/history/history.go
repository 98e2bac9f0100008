// Package history records rounds in the games table: who played, in which
// mode, how many guesses, and how it ended. The secret is written only once
// a round is finished.
package history

import (
	"context"
	"database/sql"
	"time"

	"github.com/robalobadob/wordle/apps/round-server/internal/store"
)

// Game is one row of a player's history.
type Game struct {
	ID         string `json:"id"`
	Mode       string `json:"mode"`
	Status     string `json:"status"`
	Answer     string `json:"answer,omitempty"`
	Guesses    int    `json:"guesses"`
	StartedAt  string `json:"startedAt"`
	FinishedAt string `json:"finishedAt,omitempty"`
}

// Recorder writes and reads the games table.
type Recorder struct{ db *sql.DB }

func NewRecorder(db *sql.DB) *Recorder { return &Recorder{db: db} }

// Started inserts a "playing" row for a new round.
func (r *Recorder) Started(ctx context.Context, id string, owner store.Owner, mode string, at time.Time) error {
	var userID, anonID any
	if owner.UserID != "" {
		userID = owner.UserID
	} else {
		anonID = owner.AnonID
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO games (id, user_id, anonymous_id, mode, answer, status, guesses, started_at)
		VALUES (?, ?, ?, ?, '', 'playing', 0, ?)`,
		id, userID, anonID, mode, at.UTC().Format(time.RFC3339))
	return err
}

// Guessed bumps the guess counter of a round.
func (r *Recorder) Guessed(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE games SET guesses = guesses + 1 WHERE id=?`, id)
	return err
}

// Finished stores the terminal status and reveals the answer.
func (r *Recorder) Finished(ctx context.Context, id, status, answer string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE games SET status=?, answer=?, finished_at=? WHERE id=?`,
		status, answer, at.UTC().Format(time.RFC3339), id)
	return err
}

// Abandoned closes a round that was still playing when it was replaced or
// evicted. Finished rounds are left alone. The answer stays hidden.
func (r *Recorder) Abandoned(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE games SET status='abandoned', finished_at=? WHERE id=? AND status='playing'`,
		at.UTC().Format(time.RFC3339), id)
	return err
}

// ClaimAnonymous transfers anonymous rounds to a user after sign-in.
func (r *Recorder) ClaimAnonymous(ctx context.Context, anonID, userID string) error {
	if anonID == "" || userID == "" {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `UPDATE games SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID)
	return err
}

// ListByUser returns a user's rounds, newest first.
func (r *Recorder) ListByUser(ctx context.Context, userID string, limit int) ([]Game, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, mode, status, answer, guesses, started_at, COALESCE(finished_at, '')
		FROM games WHERE user_id=? ORDER BY started_at DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Game{}
	for rows.Next() {
		var g Game
		if err := rows.Scan(&g.ID, &g.Mode, &g.Status, &g.Answer, &g.Guesses, &g.StartedAt, &g.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
