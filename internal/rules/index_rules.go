package rules

import (
	"slices"

	"squawk/internal/ast"
	"squawk/internal/model"
)

var requireConcurrentIndexCreation = Rule{
	ID:    "require-concurrent-index-creation",
	Title: "Create indexes concurrently",
	Explanation: "CREATE INDEX takes a SHARE lock on the table and blocks writes until the index is built. " +
		"CREATE INDEX CONCURRENTLY builds the index without blocking writes, but it cannot run inside a transaction block.",
	Help:           "Use CREATE INDEX CONCURRENTLY outside of an explicit transaction.",
	BadExample:     "CREATE INDEX email_idx ON users (email);",
	GoodExample:    "CREATE INDEX CONCURRENTLY email_idx ON users (email);",
	Severity:       model.SeverityWarning,
	DefaultEnabled: true,
	Check:          checkConcurrentIndexCreation,
}

func checkConcurrentIndexCreation(stmts []ast.Statement, scan *Scan) []model.Violation {
	var out []model.Violation
	for i, stmt := range stmts {
		idx, ok := stmt.Kind.(ast.CreateIndex)
		if !ok {
			continue
		}
		switch {
		case !idx.Concurrently:
			if scan.CreatedBefore(i, idx.Table) {
				continue
			}
			out = append(out, violation(stmt, "index %s on %s is built without CONCURRENTLY and blocks writes", indexLabel(idx), idx.Table))
		case scan.At(i).InTransaction:
			// The blocking build right before it is already reported.
			if i > 0 && duplicatesBlockingIndex(stmts[i-1], idx) {
				continue
			}
			out = append(out, violation(stmt, "index %s on %s is built CONCURRENTLY inside a transaction, which fails at run time", indexLabel(idx), idx.Table))
		}
	}
	return out
}

// duplicatesBlockingIndex reports whether prev is a non-concurrent build of
// the same index as idx.
func duplicatesBlockingIndex(prev ast.Statement, idx ast.CreateIndex) bool {
	p, ok := prev.Kind.(ast.CreateIndex)
	if !ok || p.Concurrently || p.Table.Key() != idx.Table.Key() {
		return false
	}
	if !p.Name.IsZero() && p.Name.Normalized() == idx.Name.Normalized() {
		return true
	}
	return len(p.Columns) > 0 && slices.Equal(p.Columns, idx.Columns)
}

func indexLabel(idx ast.CreateIndex) string {
	if idx.Name.IsZero() {
		return "(unnamed)"
	}
	return idx.Name.String()
}

var requireConcurrentIndexDeletion = Rule{
	ID:    "require-concurrent-index-deletion",
	Title: "Drop indexes concurrently",
	Explanation: "DROP INDEX takes an ACCESS EXCLUSIVE lock on the parent table, blocking reads and writes. " +
		"DROP INDEX CONCURRENTLY waits for in-flight transactions instead.",
	Help:           "Use DROP INDEX CONCURRENTLY outside of an explicit transaction.",
	BadExample:     "DROP INDEX email_idx;",
	GoodExample:    "DROP INDEX CONCURRENTLY email_idx;",
	Severity:       model.SeverityWarning,
	DefaultEnabled: true,
	Check:          checkConcurrentIndexDeletion,
}

func checkConcurrentIndexDeletion(stmts []ast.Statement, scan *Scan) []model.Violation {
	var out []model.Violation
	for i, stmt := range stmts {
		drop, ok := stmt.Kind.(ast.DropIndex)
		if !ok {
			continue
		}
		switch {
		case !drop.Concurrently:
			out = append(out, violation(stmt, "dropping index %s without CONCURRENTLY locks its table", joinNames(drop.Names)))
		case scan.At(i).InTransaction:
			out = append(out, violation(stmt, "index %s is dropped CONCURRENTLY inside a transaction, which fails at run time", joinNames(drop.Names)))
		}
	}
	return out
}
