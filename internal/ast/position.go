package ast

import "fmt"

// Position is a location in SQL source text.
type Position struct {
	Line   int `json:"line" yaml:"line"`     // 1-based
	Column int `json:"column" yaml:"column"` // 1-based, counted in runes
	Offset int `json:"offset" yaml:"offset"` // 0-based byte offset
}

// IsValid reports whether the position points into a source text.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Before reports whether p comes strictly before q in the source.
func (p Position) Before(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Column < q.Column
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is the source range of a statement. End is the position of the
// last byte belonging to the range, so a one-character span has Start == End.
type Span struct {
	Start Position `json:"start" yaml:"start"`
	End   Position `json:"end" yaml:"end"`
}

// IsValid reports whether both ends of the span are valid.
func (s Span) IsValid() bool {
	return s.Start.IsValid() && s.End.IsValid()
}

// Len returns the number of source bytes covered by the span.
func (s Span) Len() int {
	if !s.IsValid() {
		return 0
	}
	return s.End.Offset - s.Start.Offset + 1
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%s", s.Start, s.End)
}
