package rules

import (
	"squawk/internal/ast"
	"squawk/internal/model"
)

var banDropDatabase = Rule{
	ID:             "ban-drop-database",
	Title:          "Never drop a database in a migration",
	Explanation:    "Dropping a database destroys every table in it and cannot be undone.",
	Help:           "Drop databases by hand, never from a migration.",
	BadExample:     "DROP DATABASE prod;",
	Severity:       model.SeverityFatal,
	DefaultEnabled: true,
	Check: func(stmts []ast.Statement, scan *Scan) []model.Violation {
		var out []model.Violation
		for _, stmt := range stmts {
			if d, ok := stmt.Kind.(ast.DropDatabase); ok {
				out = append(out, violation(stmt, "dropping database %s destroys all of its data", d.Name))
			}
		}
		return out
	},
}

var banDropTable = Rule{
	ID:             "ban-drop-table",
	Title:          "Do not drop tables",
	Explanation:    "Dropping a table breaks every client that still uses it, and the data is gone.",
	Help:           "Remove all usages of the table first, then drop it in a later release.",
	BadExample:     "DROP TABLE users;",
	Severity:       model.SeverityWarning,
	DefaultEnabled: true,
	Check: func(stmts []ast.Statement, scan *Scan) []model.Violation {
		var out []model.Violation
		for _, stmt := range stmts {
			if d, ok := stmt.Kind.(ast.DropTable); ok {
				out = append(out, violation(stmt, "dropping table %s breaks existing clients", joinNames(d.Tables)))
			}
		}
		return out
	},
}

var banTruncate = Rule{
	ID:             "ban-truncate",
	Title:          "Do not truncate tables",
	Explanation:    "TRUNCATE removes every row under an ACCESS EXCLUSIVE lock and skips row-level triggers.",
	Help:           "Delete rows in batches with a bounded DELETE instead.",
	BadExample:     "TRUNCATE users;",
	Severity:       model.SeverityWarning,
	DefaultEnabled: true,
	Check: func(stmts []ast.Statement, scan *Scan) []model.Violation {
		var out []model.Violation
		for _, stmt := range stmts {
			if t, ok := stmt.Kind.(ast.Truncate); ok {
				out = append(out, violation(stmt, "truncating %s removes all rows under an exclusive lock", joinNames(t.Tables)))
			}
		}
		return out
	},
}
