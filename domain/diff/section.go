// Package diff provides partitioning and chunking of raw git diff text.
package diff

import "strings"

// fileMarker introduces a new file's changes in git diff output.
const fileMarker = "diff --git "

// FileSection is a contiguous span of diff text belonging to one changed
// file, from its marker line up to the next marker or end of input.
type FileSection struct {
	path    string
	content string
}

// Path returns the file path extracted from the section's marker line, or
// an empty string for a leading section with no marker.
func (s FileSection) Path() string { return s.path }

// Content returns the section text, including the marker line.
func (s FileSection) Content() string { return s.content }

// Len returns the section length in bytes.
func (s FileSection) Len() int { return len(s.content) }

// Sections partitions raw diff text into file sections at "diff --git"
// marker lines. Lines before the first marker form an implicit leading
// section with an empty path. Concatenating the returned sections in order
// reproduces raw exactly; empty input yields no sections.
func Sections(raw string) []FileSection {
	if raw == "" {
		return nil
	}

	var sections []FileSection
	var buf strings.Builder
	path := ""

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		sections = append(sections, FileSection{path: path, content: buf.String()})
		buf.Reset()
	}

	for _, line := range splitLines(raw) {
		if strings.HasPrefix(line, fileMarker) {
			flush()
			path = markerPath(line)
		}
		buf.WriteString(line)
	}
	flush()

	return sections
}

// markerPath extracts the post-image path from a "diff --git a/x b/x"
// marker line, stripping the "b/" prefix.
func markerPath(line string) string {
	fields := strings.Fields(strings.TrimRight(line, "\n"))
	if len(fields) < 4 {
		return "unknown"
	}
	return strings.TrimPrefix(fields[3], "b/")
}

// splitLines splits content into lines, preserving the trailing \n on each
// line. The last segment is included even if it doesn't end with \n.
func splitLines(content string) []string {
	var lines []string
	for len(content) > 0 {
		idx := strings.IndexByte(content, '\n')
		if idx < 0 {
			lines = append(lines, content)
			break
		}
		lines = append(lines, content[:idx+1])
		content = content[idx+1:]
	}
	return lines
}
