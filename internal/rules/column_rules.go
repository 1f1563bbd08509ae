package rules

import (
	"squawk/internal/ast"
	"squawk/internal/model"
)

var disallowRenameColumn = Rule{
	ID:    "disallow-rename-column",
	Title: "Do not rename columns",
	Explanation: "Renaming a column breaks every client still reading the old name. " +
		"Deployed application code keeps using the old name until it is redeployed.",
	Help:           "Add a new column, backfill it, and drop the old one once no client reads it.",
	BadExample:     "ALTER TABLE users RENAME COLUMN name TO full_name;",
	GoodExample:    "ALTER TABLE users ADD COLUMN full_name text;",
	Severity:       model.SeverityWarning,
	DefaultEnabled: true,
	Check: func(stmts []ast.Statement, scan *Scan) []model.Violation {
		var out []model.Violation
		forEachAction(stmts, func(i int, stmt ast.Statement, table ast.ObjectName, action ast.AlterAction) {
			if r, ok := action.(ast.RenameColumn); ok {
				out = append(out, violation(stmt, "renaming column %s to %s on %s breaks existing clients", r.From, r.To, table))
			}
		})
		return out
	},
}

var addingFieldWithDefault = Rule{
	ID:    "adding-field-with-default",
	Title: "Avoid adding a NOT NULL column with a default",
	Explanation: "On PostgreSQL before 11, adding a column with a default rewrites the whole table " +
		"under an ACCESS EXCLUSIVE lock. Volatile defaults still force a rewrite on newer versions.",
	Help:           "Add the column without a default, backfill in batches, then set the default.",
	BadExample:     "ALTER TABLE users ADD COLUMN active boolean NOT NULL DEFAULT true;",
	GoodExample:    "ALTER TABLE users ADD COLUMN active boolean;\nALTER TABLE users ALTER COLUMN active SET DEFAULT true;",
	Severity:       model.SeverityWarning,
	DefaultEnabled: true,
	Check: func(stmts []ast.Statement, scan *Scan) []model.Violation {
		var out []model.Violation
		forEachAction(stmts, func(i int, stmt ast.Statement, table ast.ObjectName, action ast.AlterAction) {
			add, ok := action.(ast.AddColumn)
			if !ok || add.Default == nil || add.Nullable || scan.CreatedBefore(i, table) {
				return
			}
			out = append(out, violation(stmt, "adding column %s to %s with default %s may rewrite the table", add.Name, table, *add.Default))
		})
		return out
	},
}

var addingNotNullableField = Rule{
	ID:    "adding-not-nullable-field",
	Title: "Avoid adding NOT NULL columns without a default",
	Explanation: "Adding a NOT NULL column without a default fails on any table that already has rows. " +
		"Setting NOT NULL on an existing column scans the whole table under an ACCESS EXCLUSIVE lock.",
	Help:           "Add a nullable column, backfill it, then add a CHECK (col IS NOT NULL) NOT VALID constraint and validate it.",
	BadExample:     "ALTER TABLE users ALTER COLUMN email SET NOT NULL;",
	GoodExample:    "ALTER TABLE users ADD CONSTRAINT email_not_null CHECK (email IS NOT NULL) NOT VALID;",
	Severity:       model.SeverityWarning,
	DefaultEnabled: true,
	Check: func(stmts []ast.Statement, scan *Scan) []model.Violation {
		var out []model.Violation
		forEachAction(stmts, func(i int, stmt ast.Statement, table ast.ObjectName, action ast.AlterAction) {
			if scan.CreatedBefore(i, table) {
				return
			}
			switch a := action.(type) {
			case ast.AddColumn:
				if !a.Nullable && a.Default == nil && !a.Generated {
					out = append(out, violation(stmt, "adding NOT NULL column %s to %s without a default fails on existing rows", a.Name, table))
				}
			case ast.AddConstraint:
				if a.Kind == ast.ConstraintNotNull {
					out = append(out, violation(stmt, "setting NOT NULL on %s.%s scans the table under an exclusive lock", table, a.Column))
				}
			}
		})
		return out
	},
}

var changingColumnType = Rule{
	ID:    "changing-column-type",
	Title: "Avoid changing column types",
	Explanation: "Most type changes rewrite the table and its indexes under an ACCESS EXCLUSIVE lock. " +
		"Clients may also break on the new type.",
	Help:           "Add a column with the new type, backfill it, and switch readers over.",
	BadExample:     "ALTER TABLE users ALTER COLUMN id TYPE bigint;",
	GoodExample:    "ALTER TABLE users ADD COLUMN id_new bigint;",
	Severity:       model.SeverityWarning,
	DefaultEnabled: true,
	Check: func(stmts []ast.Statement, scan *Scan) []model.Violation {
		var out []model.Violation
		forEachAction(stmts, func(i int, stmt ast.Statement, table ast.ObjectName, action ast.AlterAction) {
			if a, ok := action.(ast.AlterColumnType); ok && !scan.CreatedBefore(i, table) {
				out = append(out, violation(stmt, "changing type of %s.%s to %s may rewrite the table", table, a.Name, a.NewType))
			}
		})
		return out
	},
}

var banDropColumn = Rule{
	ID:             "ban-drop-column",
	Title:          "Do not drop columns",
	Explanation:    "Dropping a column breaks clients that still select or write it, and the data is gone.",
	Help:           "Stop reading and writing the column in application code first, then drop it in a later release.",
	BadExample:     "ALTER TABLE users DROP COLUMN email;",
	Severity:       model.SeverityWarning,
	DefaultEnabled: true,
	Check: func(stmts []ast.Statement, scan *Scan) []model.Violation {
		var out []model.Violation
		forEachAction(stmts, func(i int, stmt ast.Statement, table ast.ObjectName, action ast.AlterAction) {
			if d, ok := action.(ast.DropColumn); ok {
				out = append(out, violation(stmt, "dropping column %s from %s breaks existing clients", d.Name, table))
			}
		})
		return out
	},
}
