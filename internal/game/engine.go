// internal/game/engine.go
//
// Round engine.
// Responsibilities:
//   - Draw secret words uniformly from a fixed word list.
//   - Validate and apply guesses against the active row.
//   - Score guesses (simple multi-match by default, strict two-pass on request).
//   - Derive state transitions: in progress → won/lost.
//
// Notes:
//   - The engine holds no round state. A *Round is owned by the caller and
//     passed into every operation; the caller serializes calls per round.
//   - Every operation is all-or-nothing: a rejected call leaves the round untouched.
package game

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"
)

// Picker returns an index in [0, n). n is always > 0.
type Picker func(n int) int

// Engine applies the rules to rounds. It is safe for concurrent use as long
// as each *Round is only touched by one goroutine at a time.
type Engine struct {
	words   []string
	pick    Picker
	scoring Scoring
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithPicker replaces the crypto/rand picker, mostly for tests.
func WithPicker(p Picker) Option { return func(e *Engine) { e.pick = p } }

// WithScoring selects the scoring algorithm.
func WithScoring(s Scoring) Option { return func(e *Engine) { e.scoring = s } }

// WithClock overrides time.Now for StartedAt/EndedAt.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// NewEngine builds an engine over words. Entries are upper-cased and anything
// that is not WordLength letters is skipped. An empty list is refused here so
// that StartNewRound can never fail later.
func NewEngine(words []string, opts ...Option) (*Engine, error) {
	list := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToUpper(strings.TrimSpace(w))
		if len(w) == WordLength && isAlpha(w) {
			list = append(list, w)
		}
	}
	if len(list) == 0 {
		return nil, ErrEmptyWordList
	}
	e := &Engine{
		words:   list,
		pick:    cryptoPick,
		scoring: ScoringSimple,
		now:     time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Scoring reports the engine's scoring algorithm.
func (e *Engine) Scoring() Scoring { return e.scoring }

// WordCount reports the size of the word list.
func (e *Engine) WordCount() int { return len(e.words) }

// SelectSecretWord picks one entry uniformly at random using crypto/rand.
func SelectSecretWord(words []string) (string, error) {
	return SelectSecretWordWith(words, cryptoPick)
}

// SelectSecretWordWith is SelectSecretWord with an explicit picker.
func SelectSecretWordWith(words []string, pick Picker) (string, error) {
	if len(words) == 0 {
		return "", ErrEmptyWordList
	}
	return words[pick(len(words))], nil
}

// NewRound draws a secret and returns a fresh round in InProgress(0).
func (e *Engine) NewRound() *Round {
	r := &Round{}
	e.StartNewRound(r)
	return r
}

// NewRoundWithSecret starts a round on a fixed secret (daily rounds, tests).
func (e *Engine) NewRoundWithSecret(secret string) (*Round, error) {
	secret = strings.ToUpper(strings.TrimSpace(secret))
	if !validWord(secret) {
		return nil, ErrInvalidSecret
	}
	return &Round{Secret: secret, StartedAt: e.now()}, nil
}

// StartNewRound draws a new secret and clears every row. It may be called on
// a round in any state.
func (e *Engine) StartNewRound(r *Round) {
	secret, _ := SelectSecretWordWith(e.words, e.pick)
	*r = Round{Secret: secret, StartedAt: e.now()}
}

// SubmitGuess validates letters against the active row, scores them, and
// writes the marks. Rejections wrap ErrInvalidSubmission.
//
// Validation rules:
//   - Round must carry a WordLength A–Z secret (ErrInvalidSecret otherwise).
//   - Round must not be finished.
//   - rowIndex must be the active row.
//   - Exactly WordLength cells, each one letter A–Z after upper-casing.
func (e *Engine) SubmitGuess(r *Round, rowIndex int, letters []string) (Submission, error) {
	if !validWord(r.Secret) {
		return Submission{}, ErrInvalidSecret
	}
	active := r.ActiveRow()
	if active < 0 {
		return Submission{}, ErrRoundOver
	}
	if rowIndex != active {
		return Submission{}, ErrNotActiveRow
	}
	if len(letters) != WordLength {
		return Submission{}, ErrIncompleteGuess
	}
	var cells [WordLength]string
	for i, l := range letters {
		c, err := normalizeCell(l)
		if err != nil {
			return Submission{}, err
		}
		if c == "" {
			return Submission{}, ErrIncompleteGuess
		}
		cells[i] = c
	}

	marks := e.score(r.Secret, strings.Join(cells[:], ""))
	r.Rows[rowIndex] = Row{Letters: cells, Marks: marks}

	out := r.Outcome()
	if out.Finished() {
		r.EndedAt = e.now()
	}
	return Submission{Row: rowIndex, Marks: marks, Outcome: out, Result: r.Result()}, nil
}

// SubmitWord is SubmitGuess for a whole word, e.g. "crane".
func (e *Engine) SubmitWord(r *Round, rowIndex int, word string) (Submission, error) {
	word = strings.TrimSpace(word)
	if len(word) != WordLength {
		return Submission{}, ErrIncompleteGuess
	}
	return e.SubmitGuess(r, rowIndex, strings.Split(word, ""))
}

// SetCell writes one letter into a cell of the active row, or clears it when
// value is empty.
func (e *Engine) SetCell(r *Round, rowIndex, col int, value string) error {
	active := r.ActiveRow()
	if active < 0 {
		return ErrRoundOver
	}
	if rowIndex != active {
		return ErrNotActiveRow
	}
	if col < 0 || col >= WordLength {
		return ErrCellOutOfRange
	}
	c, err := normalizeCell(value)
	if err != nil {
		return err
	}
	r.Rows[rowIndex].Letters[col] = c
	return nil
}

// normalizeCell upper-cases and checks a single cell. "" is allowed.
func normalizeCell(v string) (string, error) {
	v = strings.ToUpper(strings.TrimSpace(v))
	if v == "" {
		return "", nil
	}
	if len(v) != 1 || !isAlpha(v) {
		return "", ErrInvalidLetter
	}
	return v, nil
}

// validWord reports whether w is exactly WordLength letters A–Z.
func validWord(w string) bool { return len(w) == WordLength && isAlpha(w) }

// isAlpha checks that a string consists only of uppercase A–Z.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// cryptoPick returns a uniform index from crypto/rand.
func cryptoPick(n int) int {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(nBig.Int64())
}
