package daily

import (
	"context"
	"database/sql"
	"errors"
)

// ErrAlreadyPlayed is returned when an owner already has a result for the date.
var ErrAlreadyPlayed = errors.New("daily round already played")

// Result is one owner's won daily round. UserID is the owner key and never
// leaves the server; Player is the name shown on the leaderboard.
type Result struct {
	UserID    string
	Player    string
	Date      string
	WordIndex int
	Guesses   int
	ElapsedMs int
}

// Store keeps daily results in the daily_results table.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether ownerKey has a stored result for date.
func (s *Store) AlreadyPlayed(ctx context.Context, ownerKey, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?`, ownerKey, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult stores r. A second result for the same owner and date is
// rejected with ErrAlreadyPlayed.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO daily_results (user_id, player, date, word_index, guesses, elapsed_ms)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.UserID, r.Player, r.Date, r.WordIndex, r.Guesses, r.ElapsedMs,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAlreadyPlayed
	}
	return nil
}

// LBRow is one public leaderboard entry.
type LBRow struct {
	Player    string `json:"player"`
	Guesses   int    `json:"guesses"`
	ElapsedMs int    `json:"elapsedMs"`
}

// Leaderboard returns the fastest wins of a date, then fewest guesses, then
// earliest. limit <= 0 means 20.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT player, guesses, elapsed_ms
		FROM daily_results
		WHERE date=?
		ORDER BY elapsed_ms ASC, guesses ASC, created_at ASC
		LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []LBRow{}
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.Player, &r.Guesses, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
