package diff

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultChunkSize is the maximum chunk length in bytes when no override
// is configured.
const DefaultChunkSize = 2000

// ErrInvalidChunkSize indicates a non-positive chunk size.
var ErrInvalidChunkSize = errors.New("chunk size must be positive")

// ChunkParams configures the chunking algorithm.
type ChunkParams struct {
	Size int
}

// DefaultChunkParams returns the default chunking parameters.
func DefaultChunkParams() ChunkParams {
	return ChunkParams{Size: DefaultChunkSize}
}

// Chunk is an ordered, bounded-size segment of diff text. When a diff
// produces more than one chunk, Part and Total identify the chunk's
// position in the sequence (1-based).
type Chunk struct {
	content string
	path    string
	changed int
	part    int
	total   int
}

// Content returns the chunk text.
func (c Chunk) Content() string { return c.content }

// Path returns the file path of the first section in the chunk.
func (c Chunk) Path() string { return c.path }

// Changed returns the number of added and removed lines in the chunk.
func (c Chunk) Changed() int { return c.changed }

// Part returns the 1-based index of this chunk in the emitted sequence.
func (c Chunk) Part() int { return c.part }

// Total returns the number of chunks emitted for the diff.
func (c Chunk) Total() int { return c.total }

// Chunks splits raw diff text into bounded-size chunks. Whole file
// sections are accumulated greedily: a section is appended to the current
// chunk while the chunk stays within params.Size bytes, otherwise the
// chunk is closed and the section starts a new one. A section larger than
// params.Size is subdivided at line boundaries; a single line longer than
// the bound is emitted whole rather than split mid-line.
//
// Concatenating the returned chunks in order reproduces raw exactly.
// Empty input yields zero chunks.
func Chunks(raw string, params ChunkParams) ([]Chunk, error) {
	if params.Size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChunkSize, params.Size)
	}
	if raw == "" {
		return nil, nil
	}

	var chunks []Chunk
	var acc []FileSection
	accLen := 0

	flush := func() {
		if len(acc) == 0 {
			return
		}
		var b strings.Builder
		b.Grow(accLen)
		path := ""
		for _, s := range acc {
			b.WriteString(s.Content())
			// A leading preamble section has no path; label the chunk
			// with the first real file in it.
			if path == "" {
				path = s.Path()
			}
		}
		chunks = append(chunks, newChunk(b.String(), path))
		acc = nil
		accLen = 0
	}

	for _, section := range Sections(raw) {
		n := section.Len()

		if n > params.Size {
			// Oversized section: flush the accumulator, then subdivide
			// the section on its own at line boundaries.
			flush()
			for _, piece := range splitSection(section.Content(), params.Size) {
				chunks = append(chunks, newChunk(piece, section.Path()))
			}
			continue
		}

		if accLen+n > params.Size && accLen > 0 {
			flush()
		}

		acc = append(acc, section)
		accLen += n
	}
	flush()

	for i := range chunks {
		chunks[i].part = i + 1
		chunks[i].total = len(chunks)
	}
	return chunks, nil
}

// newChunk builds a chunk and counts its changed lines.
func newChunk(content, path string) Chunk {
	return Chunk{content: content, path: path, changed: countChanged(content)}
}

// countChanged counts added and removed lines, excluding the +++/--- file
// header lines.
func countChanged(content string) int {
	count := 0
	for _, line := range splitLines(content) {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"), strings.HasPrefix(line, "-"):
			count++
		}
	}
	return count
}

// splitSection subdivides a section that exceeds size into pieces of at
// most size bytes, breaking only at line boundaries. A single line longer
// than size becomes its own piece, kept whole.
func splitSection(content string, size int) []string {
	var pieces []string
	var acc strings.Builder

	for _, line := range splitLines(content) {
		if len(line) > size {
			if acc.Len() > 0 {
				pieces = append(pieces, acc.String())
				acc.Reset()
			}
			pieces = append(pieces, line)
			continue
		}
		if acc.Len()+len(line) > size && acc.Len() > 0 {
			pieces = append(pieces, acc.String())
			acc.Reset()
		}
		acc.WriteString(line)
	}
	if acc.Len() > 0 {
		pieces = append(pieces, acc.String())
	}
	return pieces
}
