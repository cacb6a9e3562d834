// Package chunker splits long documents into overlapping windows sized for
// embedding input and retrieval granularity.
package chunker

import (
	"iter"
	"strings"
	"unicode/utf8"
)

const (
	DefaultSize    = 512
	DefaultOverlap = 100
)

// Chunker carries the size/overlap policy. The zero value is not useful;
// construct with New or Default.
type Chunker struct {
	size    int
	overlap int
}

func New(size, overlap int) Chunker {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultOverlap
		if overlap >= size {
			overlap = size / 4
		}
	}
	return Chunker{size: size, overlap: overlap}
}

func Default() Chunker {
	return New(DefaultSize, DefaultOverlap)
}

// Chunks returns a lazy, restartable sequence of chunks in source order.
// Consecutive chunks overlap by the configured amount; together they cover
// the whole document with duplication only inside the overlap regions. The
// cut point prefers a paragraph break, then a sentence end, then a word
// break within the target window, falling back to a hard cut when the
// window contains no usable boundary. Empty input yields no chunks, and a
// window that is pure whitespace is dropped rather than emitted empty.
func (c Chunker) Chunks(document string) iter.Seq[string] {
	return func(yield func(string) bool) {
		doc := strings.TrimSpace(document)
		if doc == "" {
			return
		}

		pos := 0
		for pos < len(doc) {
			remaining := len(doc) - pos
			if remaining <= c.size {
				if chunk := strings.TrimSpace(doc[pos:]); chunk != "" {
					yield(chunk)
				}
				return
			}

			cut := c.cutPoint(doc, pos)
			if chunk := strings.TrimSpace(doc[pos : pos+cut]); chunk != "" {
				if !yield(chunk) {
					return
				}
			}

			advance := cut - c.overlap
			if advance <= 0 {
				advance = cut
			}
			pos += advance
		}
	}
}

// Split eagerly collects Chunks into a slice.
func (c Chunker) Split(document string) []string {
	var chunks []string
	for chunk := range c.Chunks(document) {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// cutPoint picks where to end the chunk starting at pos. A boundary is only
// used when it falls in the second half of the window, so a break near the
// start cannot produce a degenerate sliver chunk.
func (c Chunker) cutPoint(doc string, pos int) int {
	window := doc[pos : pos+c.size]
	minCut := c.size / 2

	if idx := strings.LastIndex(window, "\n\n"); idx >= minCut {
		return idx + 2
	}

	if idx := lastSentenceEnd(window); idx >= minCut {
		return idx
	}

	if idx := strings.LastIndexAny(window, " \t\n"); idx >= minCut {
		return idx + 1
	}

	// Hard cut; back off so a multi-byte rune is never split across chunks.
	cut := len(window)
	for cut > 1 && !utf8.RuneStart(doc[pos+cut]) {
		cut--
	}
	return cut
}

// lastSentenceEnd returns the index just past the last sentence terminator
// that is followed by whitespace, or -1 when the window has none.
func lastSentenceEnd(window string) int {
	for i := len(window) - 1; i > 0; i-- {
		switch window[i-1] {
		case '.', '!', '?':
			if window[i] == ' ' || window[i] == '\n' || window[i] == '\t' {
				return i + 1
			}
		}
	}
	return -1
}
