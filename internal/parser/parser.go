// Package parser turns migration SQL into an ordered list of statements.
//
// It is not a full SQL grammar. Each statement is matched against a small
// table of shape recognizers keyed on its leading keywords, and only the
// fields migration rules need are extracted. Anything unrecognized
// becomes an ast.Unparsed statement plus a diagnostic; parsing never
// stops early.
package parser

import (
	"slices"

	"squawk/internal/ast"
)

// SQLParser parses migration SQL. It holds no state and is safe for
// concurrent use.
type SQLParser struct{}

func NewSQLParser() *SQLParser {
	return &SQLParser{}
}

// Parse splits src into statements in source order. Diagnostics describe
// unterminated literals and statements that could not be classified.
func (sp *SQLParser) Parse(src string) ([]ast.Statement, []ast.ParseDiagnostic) {
	return Parse(src)
}

// Parse is SQLParser.Parse on the package level.
func Parse(src string) ([]ast.Statement, []ast.ParseDiagnostic) {
	toks, diags := Tokenize(src)

	chunks := split(toks)
	stmts := make([]ast.Statement, 0, len(chunks))
	for _, ch := range chunks {
		kind, reason := classify(src, ch.tokens)
		if reason != "" {
			diags = append(diags, ast.ParseDiagnostic{Span: ch.span, Reason: reason})
		}
		stmts = append(stmts, ast.Statement{
			Kind: kind,
			Span: ch.span,
			Text: src[ch.span.Start.Offset : ch.span.End.Offset+1],
		})
	}
	sortDiagnostics(diags)
	return stmts, diags
}

// sortDiagnostics orders lexer and classifier diagnostics by position.
func sortDiagnostics(diags []ast.ParseDiagnostic) {
	slices.SortStableFunc(diags, func(a, b ast.ParseDiagnostic) int {
		switch {
		case a.Span.Start.Before(b.Span.Start):
			return -1
		case b.Span.Start.Before(a.Span.Start):
			return 1
		}
		return 0
	})
}
