package game

import "strings"

// Special keys accepted by Engine.Key. Any other key must be a single letter.
const (
	KeyEnter     = "ENTER"
	KeyBackspace = "BACKSPACE"
)

// Key feeds one keystroke from an alternative input (on-screen keyboard,
// terminal) into the round. Letters fill the first empty cell of the active
// row and are dropped when the row is full; BACKSPACE clears the last filled
// cell; ENTER submits the active row through SubmitGuess.
//
// The returned submission is non-nil only for an accepted ENTER.
func (e *Engine) Key(r *Round, key string) (*Submission, error) {
	active := r.ActiveRow()
	if active < 0 {
		return nil, ErrRoundOver
	}
	row := &r.Rows[active]

	switch k := strings.ToUpper(strings.TrimSpace(key)); k {
	case KeyEnter:
		sub, err := e.SubmitGuess(r, active, row.Letters[:])
		if err != nil {
			return nil, err
		}
		return &sub, nil
	case KeyBackspace, "DELETE":
		for i := WordLength - 1; i >= 0; i-- {
			if row.Letters[i] != "" {
				return nil, e.SetCell(r, active, i, "")
			}
		}
		return nil, nil
	default:
		if _, err := normalizeCell(k); err != nil || k == "" {
			return nil, ErrUnknownKey
		}
		for i, l := range row.Letters {
			if l == "" {
				return nil, e.SetCell(r, active, i, k)
			}
		}
		return nil, nil
	}
}
