// Package highlight renders match capture spans as styled terminal text.
//
// Span geometry is computed by Segments, a pure function, so the
// interesting part is testable without a terminal. Styling itself is a
// thin lipgloss layer cycling a palette by nesting depth.
package highlight

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/bnfkit/internal/engine"
)

// Segment is a maximal run of text covered by the same number of spans.
// Depth 0 means uncovered text.
type Segment struct {
	Start int
	End   int
	Depth int
}

// Segments splits [0, textLen) into depth-annotated runs. Spans may
// nest and overlap; depth at a byte is the number of spans covering it.
// Empty spans contribute nothing. Adjacent runs of equal depth are
// merged, and the result covers the whole text without gaps.
func Segments(textLen int, spans []engine.Span) []Segment {
	if textLen == 0 {
		return nil
	}

	delta := make([]int, textLen+1)
	for _, s := range spans {
		start, end := s.Start, s.End
		if start < 0 {
			start = 0
		}
		if end > textLen {
			end = textLen
		}
		if start >= end {
			continue
		}
		delta[start]++
		delta[end]--
	}

	var out []Segment
	depth := 0
	runStart := 0
	for i := 0; i < textLen; i++ {
		d := depth + delta[i]
		if i == 0 {
			depth = d
			continue
		}
		if d != depth {
			out = append(out, Segment{Start: runStart, End: i, Depth: depth})
			runStart = i
			depth = d
		} else {
			depth = d
		}
	}
	out = append(out, Segment{Start: runStart, End: textLen, Depth: depth})
	return out
}

// Renderer styles text runs by nesting depth.
type Renderer struct {
	// Styles is the palette; depth d uses Styles[(d-1) % len(Styles)],
	// depth 0 renders unstyled.
	Styles []lipgloss.Style
}

// NewRenderer returns a renderer with the default six-color palette.
func NewRenderer() *Renderer {
	colors := []string{"1", "2", "3", "4", "5", "6"}
	styles := make([]lipgloss.Style, len(colors))
	for i, c := range colors {
		styles[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(c))
	}
	return &Renderer{Styles: styles}
}

// Render returns text with every covered run styled by its depth.
func (r *Renderer) Render(text string, spans []engine.Span) string {
	var b strings.Builder
	for _, seg := range Segments(len(text), spans) {
		chunk := text[seg.Start:seg.End]
		if seg.Depth == 0 || len(r.Styles) == 0 {
			b.WriteString(chunk)
			continue
		}
		style := r.Styles[(seg.Depth-1)%len(r.Styles)]
		b.WriteString(style.Render(chunk))
	}
	return b.String()
}
