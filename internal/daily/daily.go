// Package daily picks one deterministic word per UTC day and keeps the
// results of the day's round for a leaderboard.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WordIndex returns a deterministic index for a date using HMAC(salt, YYYY-MM-DD) % n.
func WordIndex(date time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for the modulus
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// Picker resolves the day's word from a list.
type Picker struct {
	Salt  string
	Words func(i int) string
	Len   int
}

// Pick returns the date key, word index and word for t.
func (p Picker) Pick(t time.Time) (date string, idx int, word string) {
	date = DateKey(t)
	if p.Len == 0 {
		return date, 0, ""
	}
	idx = WordIndex(t, p.Salt, p.Len)
	return date, idx, p.Words(idx)
}
