// Package assets holds files compiled into the binary.
package assets

import (
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed words.json
var FS embed.FS

// WordFile is the on-disk shape of a word list: {"words": [...]}.
type WordFile struct {
	Words []string `json:"words"`
}

// ParseWordFile decodes a JSON word list.
func ParseWordFile(b []byte) ([]string, error) {
	var wf WordFile
	if err := json.Unmarshal(b, &wf); err != nil {
		return nil, fmt.Errorf("decode word list: %w", err)
	}
	return wf.Words, nil
}

// DefaultWords returns the embedded word list as stored (not normalized).
func DefaultWords() ([]string, error) {
	b, err := FS.ReadFile("words.json")
	if err != nil {
		return nil, err
	}
	return ParseWordFile(b)
}
