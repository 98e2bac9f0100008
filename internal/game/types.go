// internal/game/types.go
//
// Core type definitions for the round engine.
// Defines:
//   - Mark: per-letter feedback for a scored cell.
//   - Row: five letter cells plus their marks.
//   - Round: the owned state of one round (secret + five rows).
//   - Outcome / Result: derived round status and the end-of-round payload.

package game

import (
	"fmt"
	"strings"
	"time"
)

const (
	// WordLength is the number of letters in the secret and in every row.
	WordLength = 5
	// MaxRows is the number of attempts a round allows.
	MaxRows = 5
)

// Mark represents the evaluation result for a single letter in a row.
// Possible values:
//   - "":        not scored yet.
//   - "correct": right letter, right position.
//   - "present": letter is in the secret at another position.
//   - "absent":  letter is not in the secret.
type Mark string

const (
	MarkUnset   Mark = ""
	MarkCorrect Mark = "correct"
	MarkPresent Mark = "present"
	MarkAbsent  Mark = "absent"
)

// Outcome is the derived status of a round.
type Outcome string

const (
	OutcomeInProgress Outcome = "in_progress"
	OutcomeWon        Outcome = "won"
	OutcomeLost       Outcome = "lost"
)

// Finished reports whether o is terminal.
func (o Outcome) Finished() bool { return o == OutcomeWon || o == OutcomeLost }

// Row is one guess line: letters typed into cells and the feedback they earned.
// Marks are either all unset or all set.
type Row struct {
	Letters [WordLength]string `json:"letters"`
	Marks   [WordLength]Mark   `json:"marks"`
}

// Scored reports whether feedback has been written to the row.
func (r Row) Scored() bool {
	for _, m := range r.Marks {
		if m != MarkUnset {
			return true
		}
	}
	return false
}

// Filled reports whether every cell holds a letter.
func (r Row) Filled() bool {
	for _, l := range r.Letters {
		if l == "" {
			return false
		}
	}
	return true
}

// Word joins the row's letters.
func (r Row) Word() string { return strings.Join(r.Letters[:], "") }

// Round holds the state of a single round. It carries no behaviour beyond
// derived accessors; transitions go through Engine.
type Round struct {
	Secret    string       `json:"-"`
	Rows      [MaxRows]Row `json:"rows"`
	StartedAt time.Time    `json:"startedAt"`
	EndedAt   time.Time    `json:"endedAt"`
}

// ActiveRow returns the index of the first row with no feedback,
// or -1 once the round is finished.
func (r *Round) ActiveRow() int {
	if r.Outcome().Finished() {
		return -1
	}
	for i, row := range r.Rows {
		if !row.Scored() {
			return i
		}
	}
	return -1
}

// Outcome derives the round status from its rows.
func (r *Round) Outcome() Outcome {
	scored := 0
	for _, row := range r.Rows {
		if !row.Scored() {
			break
		}
		scored++
		if row.Word() == r.Secret {
			return OutcomeWon
		}
	}
	if scored == MaxRows {
		return OutcomeLost
	}
	return OutcomeInProgress
}

// AttemptsUsed counts scored rows.
func (r *Round) AttemptsUsed() int {
	n := 0
	for _, row := range r.Rows {
		if row.Scored() {
			n++
		}
	}
	return n
}

// Result returns the end-of-round payload, or nil while the round is in progress.
func (r *Round) Result() *Result {
	switch r.Outcome() {
	case OutcomeWon:
		n := r.AttemptsUsed()
		return &Result{
			Outcome:      OutcomeWon,
			SecretWord:   r.Secret,
			AttemptsUsed: n,
			Title:        "Congratulations!",
			Message:      fmt.Sprintf("You guessed the word: %s in %d tries.", r.Secret, n),
		}
	case OutcomeLost:
		return &Result{
			Outcome:      OutcomeLost,
			SecretWord:   r.Secret,
			AttemptsUsed: MaxRows,
			Title:        "Game Over!",
			Message:      fmt.Sprintf("The word was: %s.", r.Secret),
		}
	}
	return nil
}

// Result is what a presentation layer shows once a round ends.
type Result struct {
	Outcome      Outcome `json:"outcome"`
	SecretWord   string  `json:"secretWord"`
	AttemptsUsed int     `json:"attemptsUsed"`
	Title        string  `json:"title"`
	Message      string  `json:"message"`
}

// Submission is returned by Engine.SubmitGuess for an accepted guess.
type Submission struct {
	Row     int              `json:"row"`
	Marks   [WordLength]Mark `json:"marks"`
	Outcome Outcome          `json:"outcome"`
	Result  *Result          `json:"result,omitempty"`
}
