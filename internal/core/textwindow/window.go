// Package textwindow locates and rewrites the text enclosed by a pair of
// literal markers.
package textwindow

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMarkerNotFound is returned when either marker cannot be located.
var ErrMarkerNotFound = errors.New("marker not found")

var (
	// ErrStartNotFound means the start marker does not occur in the source.
	ErrStartNotFound = fmt.Errorf("start %w", ErrMarkerNotFound)
	// ErrEndNotFound means the end marker does not follow the start marker.
	ErrEndNotFound = fmt.Errorf("end %w", ErrMarkerNotFound)
)

// Window is the half-open byte range [Start, End) strictly between the
// first start marker and the first end marker after it.
type Window struct {
	Start int
	End   int
}

// Content returns the text enclosed by the window.
func (w Window) Content(source string) string {
	return source[w.Start:w.End]
}

// Len returns the number of bytes enclosed by the window.
func (w Window) Len() int {
	return w.End - w.Start
}

// Find locates the window delimited by start and end. Matching is literal
// and case-sensitive.
func Find(source, start, end string) (Window, error) {
	i := strings.Index(source, start)
	if i < 0 {
		return Window{}, ErrStartNotFound
	}
	from := i + len(start)
	j := strings.Index(source[from:], end)
	if j < 0 {
		return Window{}, ErrEndNotFound
	}
	return Window{Start: from, End: from + j}, nil
}

// ExtractBetween returns the text between the first start marker and the
// first end marker that follows it. The bool is false when either marker is
// missing.
func ExtractBetween(source, start, end string) (string, bool) {
	w, err := Find(source, start, end)
	if err != nil {
		return "", false
	}
	return w.Content(source), true
}

// ReplaceBetween returns a copy of source where the window between start
// and end holds replacement. Both markers are kept. The bool is false when
// either marker is missing.
func ReplaceBetween(source, start, end, replacement string) (string, bool) {
	w, err := Find(source, start, end)
	if err != nil {
		return "", false
	}
	return Splice(source, w, replacement), true
}

// Splice replaces the bytes covered by w with replacement.
func Splice(source string, w Window, replacement string) string {
	var b strings.Builder
	b.Grow(len(source) - w.Len() + len(replacement))
	b.WriteString(source[:w.Start])
	b.WriteString(replacement)
	b.WriteString(source[w.End:])
	return b.String()
}
