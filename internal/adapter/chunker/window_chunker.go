// Package chunker splits normalized document text into overlapping
// fixed-width passages for embedding and retrieval.
package chunker

import (
	"strings"

	"github.com/thebraudalf/fnb-docbot/internal/domain"
)

// WindowChunker produces fixed-width sliding windows over normalized
// text. Whitespace runs (including newlines) are collapsed to single
// spaces before windowing, so original line structure is not preserved.
type WindowChunker struct {
	size    int
	overlap int
}

// NewWindowChunker validates the window parameters. size must be
// positive and strictly greater than overlap; overlap must not be
// negative.
func NewWindowChunker(size, overlap int) (*WindowChunker, error) {
	if size <= 0 {
		return nil, domain.E(domain.KindInvalidConfiguration, "chunk size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, domain.E(domain.KindInvalidConfiguration, "chunk overlap must not be negative, got %d", overlap)
	}
	if overlap >= size {
		return nil, domain.E(domain.KindInvalidConfiguration, "chunk overlap %d must be smaller than chunk size %d", overlap, size)
	}
	return &WindowChunker{size: size, overlap: overlap}, nil
}

// Size returns the configured window width in characters.
func (c *WindowChunker) Size() int { return c.size }

// Overlap returns the number of characters shared by consecutive windows.
func (c *WindowChunker) Overlap() int { return c.overlap }

// Split returns the ordered windows covering text. Consecutive windows
// share exactly the configured overlap, except possibly the final one,
// which may be shorter. Empty or whitespace-only input yields nil.
func (c *WindowChunker) Split(text string) []string {
	text = Normalize(text)
	if text == "" {
		return nil
	}

	var chunks []string
	n := len(text)
	start := 0
	for start < n {
		end := start + c.size
		if end > n {
			end = n
		}
		chunks = append(chunks, text[start:end])
		if end == n {
			break
		}
		start = end - c.overlap
	}
	return chunks
}

// Normalize collapses every whitespace run into a single space and
// trims the ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
