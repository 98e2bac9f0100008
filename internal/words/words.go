// internal/words/words.go
//
// Word list source for the round engine.
//
// Responsibilities:
//   - Load the secret word list from a configured file or the embedded default.
//   - Normalize entries (trim, upper-case, 5 letters A–Z, de-duplicated).
//   - Answer simple questions about the list (Len, Contains, Words).
//
// File formats (chosen by extension):
//   - .json: {"words": ["CRANE", ...]}
//   - anything else: one word per line, blank lines and "#" comments skipped.
//
// Not a dictionary: guesses are never checked against this list.

package words

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/round-server/assets"
)

// Length is the only word length the list keeps.
const Length = 5

// ErrEmpty is returned when no valid word survives normalization.
var ErrEmpty = errors.New("words: list is empty")

// List is an immutable, normalized word list.
type List struct {
	words []string
	set   map[string]struct{}
}

// Load reads the list at path, or the embedded default when path is empty.
func Load(path string) (*List, error) {
	var raw []string
	var err error
	if path == "" {
		raw, err = assets.DefaultWords()
	} else {
		raw, err = readWordFile(path)
	}
	if err != nil {
		return nil, err
	}
	l := New(raw)
	if l.Len() == 0 {
		return nil, ErrEmpty
	}
	src := path
	if src == "" {
		src = "embedded"
	}
	log.Debug().Str("source", src).Int("raw", len(raw)).Int("kept", l.Len()).Msg("word list loaded")
	return l, nil
}

// New normalizes raw entries into a List. Invalid entries are dropped.
func New(raw []string) *List {
	l := &List{set: make(map[string]struct{}, len(raw))}
	for _, w := range raw {
		w = normalize(w)
		if w == "" {
			continue
		}
		if _, dup := l.set[w]; dup {
			continue
		}
		l.set[w] = struct{}{}
		l.words = append(l.words, w)
	}
	return l
}

// Words returns a copy of the list.
func (l *List) Words() []string { return append([]string(nil), l.words...) }

// Len reports the number of words.
func (l *List) Len() int { return len(l.words) }

// At returns the i-th word.
func (l *List) At(i int) string { return l.words[i] }

// Contains reports whether w (any case) is on the list.
func (l *List) Contains(w string) bool {
	_, ok := l.set[strings.ToUpper(strings.TrimSpace(w))]
	return ok
}

// readWordFile loads a JSON or line-based word file.
func readWordFile(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read word list %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return assets.ParseWordFile(b)
	}
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// normalize trims and upper-cases w, returning "" unless it is Length letters A–Z.
func normalize(w string) string {
	w = strings.ToUpper(strings.TrimSpace(w))
	if len(w) != Length {
		return ""
	}
	for _, r := range w {
		if r < 'A' || r > 'Z' {
			return ""
		}
	}
	return w
}
