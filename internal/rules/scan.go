package rules

import "squawk/internal/ast"

// ScanContext is the evaluation state seen just before a statement runs.
type ScanContext struct {
	// Index is the zero-based position of the statement in its file.
	Index int
	// InTransaction is true while an explicit BEGIN has not been closed
	// by COMMIT or ROLLBACK. AND CHAIN keeps it open.
	InTransaction bool
}

// Scan is the per-file walk of statements in order. It is rebuilt for
// every file and read-only once built.
type Scan struct {
	contexts []ScanContext
	// created[i] holds the tables created by statements before i.
	created []map[string]bool
}

// NewScan walks stmts once and records the context of each statement.
func NewScan(stmts []ast.Statement) *Scan {
	s := &Scan{
		contexts: make([]ScanContext, len(stmts)),
		created:  make([]map[string]bool, len(stmts)),
	}
	inTx := false
	tables := map[string]bool{}
	for i, stmt := range stmts {
		s.contexts[i] = ScanContext{Index: i, InTransaction: inTx}
		s.created[i] = tables
		switch k := stmt.Kind.(type) {
		case ast.Begin:
			inTx = true
		case ast.Commit:
			inTx = k.Chain
		case ast.Rollback:
			inTx = k.Chain
		case ast.CreateTable:
			// IF NOT EXISTS may be a no-op against a live table.
			if k.IfNotExists {
				continue
			}
			next := make(map[string]bool, len(tables)+1)
			for t := range tables {
				next[t] = true
			}
			next[k.Table.Key()] = true
			tables = next
		}
	}
	return s
}

// At returns the context of statement i.
func (s *Scan) At(i int) ScanContext {
	if s == nil || i < 0 || i >= len(s.contexts) {
		return ScanContext{Index: i}
	}
	return s.contexts[i]
}

// CreatedBefore reports whether table was created by an earlier
// statement of the same file. Such a table has no readers yet, so
// locking it is harmless.
func (s *Scan) CreatedBefore(i int, table ast.ObjectName) bool {
	if s == nil || i < 0 || i >= len(s.created) {
		return false
	}
	return s.created[i][table.Key()]
}

// Len is the number of statements scanned.
func (s *Scan) Len() int {
	if s == nil {
		return 0
	}
	return len(s.contexts)
}
