package model

import (
	"fmt"

	"squawk/internal/ast"
)

// StdinLabel identifies SQL read from standard input.
const StdinLabel = "stdin"

// SourceFile is one migration script, already read into memory.
type SourceFile struct {
	Path string // file path, or StdinLabel
	SQL  string
}

// Severity defines how dangerous a violation is.
type Severity string

const (
	SeverityFatal      Severity = "FATAL"
	SeverityWarning    Severity = "WARNING"
	SeveritySuggestion Severity = "SUGGESTION"
)

// Violation is one instance of a rule's unsafe pattern.
// Rules fill Message and Span; the evaluation driver stamps the rest.
type Violation struct {
	RuleID   string
	Severity Severity
	Message  string
	Help     string
	Span     ast.Span
	File     string
}

// Location renders the violation position as file:line:column.
func (v Violation) Location() string {
	return fmt.Sprintf("%s:%d:%d", v.File, v.Span.Start.Line, v.Span.Start.Column)
}

// FileResult is everything the core produced for one file.
type FileResult struct {
	File        SourceFile
	Statements  []ast.Statement
	Violations  []Violation
	Diagnostics []ast.ParseDiagnostic
}

// CountViolations sums violations across results.
func CountViolations(results []FileResult) int {
	n := 0
	for _, r := range results {
		n += len(r.Violations)
	}
	return n
}
