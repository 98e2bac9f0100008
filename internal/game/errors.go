package game

import (
	"errors"
	"fmt"
)

// Engine errors. Every rejection of a move wraps ErrInvalidSubmission, so
// callers can test errors.Is(err, ErrInvalidSubmission) and leave the
// specific cause for messages.
var (
	ErrEmptyWordList     = errors.New("word list is empty")
	ErrInvalidSecret     = errors.New("secret must be 5 letters A-Z")
	ErrInvalidSubmission = errors.New("invalid submission")

	ErrRoundOver       = fmt.Errorf("%w: round is over", ErrInvalidSubmission)
	ErrNotActiveRow    = fmt.Errorf("%w: row is not active", ErrInvalidSubmission)
	ErrCellOutOfRange  = fmt.Errorf("%w: cell out of range", ErrInvalidSubmission)
	ErrIncompleteGuess = fmt.Errorf("%w: guess must fill all %d cells", ErrInvalidSubmission, WordLength)
	ErrInvalidLetter   = fmt.Errorf("%w: cells take a single letter A-Z", ErrInvalidSubmission)
	ErrUnknownKey      = fmt.Errorf("%w: unknown key", ErrInvalidSubmission)
)
