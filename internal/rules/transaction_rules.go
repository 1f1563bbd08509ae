package rules

import (
	"strings"

	"squawk/internal/ast"
	"squawk/internal/model"
)

var banUnmatchedTransactionEnd = Rule{
	ID:    "ban-unmatched-transaction-end",
	Title: "COMMIT or ROLLBACK without BEGIN",
	Explanation: "Ending a transaction that was never started only emits a warning in PostgreSQL, " +
		"but it usually means the migration's transaction structure is not what the author expects.",
	Help:           "Remove the stray COMMIT/ROLLBACK or add the missing BEGIN.",
	BadExample:     "CREATE TABLE t (id int);\nCOMMIT;",
	GoodExample:    "BEGIN;\nCREATE TABLE t (id int);\nCOMMIT;",
	Severity:       model.SeverityWarning,
	DefaultEnabled: true,
	Check: func(stmts []ast.Statement, scan *Scan) []model.Violation {
		var out []model.Violation
		for i, stmt := range stmts {
			switch stmt.Kind.(type) {
			case ast.Commit, ast.Rollback:
				if !scan.At(i).InTransaction {
					out = append(out, violation(stmt, "%s outside of a transaction block", strings.ToUpper(stmt.Kind.Tag())))
				}
			}
		}
		return out
	},
}

var banNestedTransaction = Rule{
	ID:    "ban-nested-transaction",
	Title: "BEGIN inside a transaction",
	Explanation: "PostgreSQL ignores a BEGIN issued inside an open transaction, so the following COMMIT " +
		"ends the outer transaction early.",
	Help:           "Remove the inner BEGIN or commit the outer transaction first.",
	BadExample:     "BEGIN;\nBEGIN;\nCOMMIT;\nCOMMIT;",
	Severity:       model.SeverityWarning,
	DefaultEnabled: true,
	Check: func(stmts []ast.Statement, scan *Scan) []model.Violation {
		var out []model.Violation
		for i, stmt := range stmts {
			if _, ok := stmt.Kind.(ast.Begin); ok && scan.At(i).InTransaction {
				out = append(out, violation(stmt, "BEGIN inside an already open transaction is ignored"))
			}
		}
		return out
	},
}
