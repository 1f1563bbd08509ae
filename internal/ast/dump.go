package ast

import "fmt"

// ParseDiagnostic reports source text the parser could not classify.
// It never stops parsing; the affected statement becomes Unparsed.
type ParseDiagnostic struct {
	Span   Span   `json:"span" yaml:"span"`
	Reason string `json:"reason" yaml:"reason"`
}

func (d ParseDiagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Span.Start, d.Reason)
}

// Node is the self-describing tree form of a statement or alter action,
// used by the AST dump output.
type Node struct {
	Type   string         `json:"type" yaml:"type"`
	Span   *Span          `json:"span,omitempty" yaml:"span,omitempty"`
	Fields map[string]any `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Dump converts parsed statements into dump nodes, one per statement.
func Dump(stmts []Statement) []Node {
	nodes := make([]Node, 0, len(stmts))
	for _, stmt := range stmts {
		span := stmt.Span
		nodes = append(nodes, Node{
			Type:   stmt.Kind.Tag(),
			Span:   &span,
			Fields: stmt.Kind.dumpFields(),
		})
	}
	return nodes
}
