package game

import "fmt"

// Scoring selects how repeated letters are marked.
type Scoring string

const (
	// ScoringSimple marks a non-correct letter present whenever the secret
	// contains it anywhere. A repeated guess letter may be marked present
	// more times than the secret holds it.
	ScoringSimple Scoring = "simple"
	// ScoringStrict is the two-pass algorithm: correct letters first, then
	// presents consume the remaining secret letters.
	ScoringStrict Scoring = "strict"
)

// ParseScoring maps a config value to a Scoring.
func ParseScoring(s string) (Scoring, error) {
	switch Scoring(s) {
	case ScoringSimple, "":
		return ScoringSimple, nil
	case ScoringStrict:
		return ScoringStrict, nil
	}
	return "", fmt.Errorf("unknown scoring %q", s)
}

// Score evaluates guess against secret with the given algorithm. Both
// strings must be WordLength uppercase letters.
func Score(s Scoring, secret, guess string) [WordLength]Mark {
	if s == ScoringStrict {
		return scoreStrict(secret, guess)
	}
	return scoreSimple(secret, guess)
}

func (e *Engine) score(secret, guess string) [WordLength]Mark {
	return Score(e.scoring, secret, guess)
}

// scoreSimple checks each position on its own, left to right.
func scoreSimple(secret, guess string) [WordLength]Mark {
	var res [WordLength]Mark
	var inSecret [26]bool
	for i := 0; i < len(secret); i++ {
		inSecret[idx(secret[i])] = true
	}
	for i := 0; i < WordLength; i++ {
		switch {
		case guess[i] == secret[i]:
			res[i] = MarkCorrect
		case inSecret[idx(guess[i])]:
			res[i] = MarkPresent
		default:
			res[i] = MarkAbsent
		}
	}
	return res
}

// scoreStrict implements the standard Wordle two‑pass scoring.
//
// Pass 1:
//   - Mark exact matches as correct.
//   - Count remaining (non‑correct) secret letters.
//
// Pass 2:
//   - For each remaining guess letter: if a count is left, mark present and
//     decrement; otherwise absent.
func scoreStrict(secret, guess string) [WordLength]Mark {
	var res [WordLength]Mark
	var counts [26]int

	for i := 0; i < WordLength; i++ {
		if guess[i] == secret[i] {
			res[i] = MarkCorrect
		} else {
			counts[idx(secret[i])]++
		}
	}

	for i := 0; i < WordLength; i++ {
		if res[i] == MarkCorrect {
			continue
		}
		j := idx(guess[i])
		if counts[j] > 0 {
			res[i] = MarkPresent
			counts[j]--
		} else {
			res[i] = MarkAbsent
		}
	}
	return res
}

// idx maps an uppercase ASCII letter to 0..25.
// Inputs are validated to A–Z before scoring.
func idx(b byte) int { return int(b - 'A') }
