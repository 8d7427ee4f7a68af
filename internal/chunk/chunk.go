// Package chunk splits raw text into overlapping fixed-size fragments
// suitable for embedding.
package chunk

import (
	"fmt"
	"strings"
)

const (
	// DefaultSize is the window width in characters.
	DefaultSize = 800
	// DefaultOverlap is the fraction of each window shared with the next.
	DefaultOverlap = 0.15
)

// Chunk is one trimmed window of the source text. Position is the pre-trim
// start offset of the window, so retrieved fragments can be traced back to
// an approximate source location even though the stored text is trimmed.
type Chunk struct {
	Text     string
	Position int
}

// Splitter produces deterministic overlapping windows over input text.
type Splitter struct {
	size int
	step int
}

// New validates the window configuration. A size of zero or an overlap at or
// above 1 would make the window step non-positive and the split loop would
// never advance, so both are rejected up front.
func New(size int, overlap float64) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= 1 {
		return nil, fmt.Errorf("chunk overlap must be in [0, 1), got %v", overlap)
	}
	step := int(float64(size) * (1 - overlap))
	if step < 1 {
		step = 1
	}
	return &Splitter{size: size, step: step}, nil
}

// Step reports how far each window advances.
func (s *Splitter) Step() int { return s.step }

// Split cuts text into trimmed windows advancing by the configured step.
// Whitespace-only windows are dropped. The same input always yields the
// same chunk list; Split has no side effects.
func (s *Splitter) Split(text string) []Chunk {
	runes := []rune(text)
	var chunks []Chunk
	for i := 0; i < len(runes); i += s.step {
		end := i + s.size
		if end > len(runes) {
			end = len(runes)
		}
		window := strings.TrimSpace(string(runes[i:end]))
		if window == "" {
			continue
		}
		chunks = append(chunks, Chunk{Text: window, Position: i})
	}
	return chunks
}
