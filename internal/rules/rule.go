// Package rules holds the migration safety rules and the registry that
// catalogs them.
//
// A rule is plain data plus a pure check function over the statements of
// one file. Rules never keep state between calls and never fail: a rule
// that cannot decide reports nothing.
package rules

import (
	"fmt"
	"strings"

	"squawk/internal/ast"
	"squawk/internal/model"
)

// CheckFunc inspects every statement of a file. It returns violations with
// Message and Span set; rule id, severity, help and file are stamped by
// the caller.
type CheckFunc func(stmts []ast.Statement, scan *Scan) []model.Violation

// Rule describes one safety check.
type Rule struct {
	ID             string
	Title          string
	Explanation    string // why the pattern is unsafe
	Help           string // one-line fix shown next to each violation
	BadExample     string
	GoodExample    string
	Severity       model.Severity
	DefaultEnabled bool
	Check          CheckFunc
}

// Info is the short form of a rule used for listings.
type Info struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Severity       model.Severity `json:"severity"`
	DefaultEnabled bool           `json:"default_enabled"`
}

func (r Rule) Info() Info {
	return Info{ID: r.ID, Title: r.Title, Severity: r.Severity, DefaultEnabled: r.DefaultEnabled}
}

func violation(stmt ast.Statement, format string, args ...any) model.Violation {
	return model.Violation{
		Message: fmt.Sprintf(format, args...),
		Span:    stmt.Span,
	}
}

// forEachAction calls fn for every ALTER TABLE action in source order.
func forEachAction(stmts []ast.Statement, fn func(i int, stmt ast.Statement, table ast.ObjectName, action ast.AlterAction)) {
	for i, stmt := range stmts {
		alter, ok := stmt.Kind.(ast.AlterTable)
		if !ok {
			continue
		}
		for _, action := range alter.Actions {
			fn(i, stmt, alter.Table, action)
		}
	}
}

func joinNames(list []ast.ObjectName) string {
	parts := make([]string, len(list))
	for i, n := range list {
		parts[i] = n.String()
	}
	return strings.Join(parts, ", ")
}
