package rules

import (
	"squawk/internal/ast"
	"squawk/internal/model"
)

var requireNotValidForNewConstraint = Rule{
	ID:    "require-not-valid-for-new-constraint",
	Title: "Add foreign key and check constraints NOT VALID",
	Explanation: "Adding a validated constraint scans every row while holding a lock that blocks writes. " +
		"Adding it NOT VALID is instant; VALIDATE CONSTRAINT afterwards only takes a SHARE UPDATE EXCLUSIVE lock.",
	Help: "Add the constraint NOT VALID, then VALIDATE CONSTRAINT in a separate transaction.",
	BadExample: "ALTER TABLE orders ADD CONSTRAINT orders_user_fk\n" +
		"    FOREIGN KEY (user_id) REFERENCES users (id);",
	GoodExample: "ALTER TABLE orders ADD CONSTRAINT orders_user_fk\n" +
		"    FOREIGN KEY (user_id) REFERENCES users (id) NOT VALID;\n" +
		"ALTER TABLE orders VALIDATE CONSTRAINT orders_user_fk;",
	Severity:       model.SeverityWarning,
	DefaultEnabled: true,
	Check: func(stmts []ast.Statement, scan *Scan) []model.Violation {
		var out []model.Violation
		forEachAction(stmts, func(i int, stmt ast.Statement, table ast.ObjectName, action ast.AlterAction) {
			c, ok := action.(ast.AddConstraint)
			if !ok || !c.Validated || scan.CreatedBefore(i, table) {
				return
			}
			if c.Kind != ast.ConstraintForeignKey && c.Kind != ast.ConstraintCheck {
				return
			}
			out = append(out, violation(stmt, "%s constraint %s on %s is validated while holding a lock; add it NOT VALID", c.Kind, constraintLabel(c), table))
		})
		return out
	},
}

var disallowUniqueConstraint = Rule{
	ID:    "disallow-unique-constraint",
	Title: "Build unique constraints from an existing index",
	Explanation: "ADD CONSTRAINT ... UNIQUE builds its index while blocking reads and writes. " +
		"Building the unique index concurrently first and attaching it with USING INDEX avoids the long lock.",
	Help: "CREATE UNIQUE INDEX CONCURRENTLY, then ADD CONSTRAINT ... UNIQUE USING INDEX.",
	BadExample: "ALTER TABLE users ADD CONSTRAINT users_email_key UNIQUE (email);",
	GoodExample: "CREATE UNIQUE INDEX CONCURRENTLY users_email_idx ON users (email);\n" +
		"ALTER TABLE users ADD CONSTRAINT users_email_key UNIQUE USING INDEX users_email_idx;",
	Severity:       model.SeverityWarning,
	DefaultEnabled: true,
	Check: func(stmts []ast.Statement, scan *Scan) []model.Violation {
		var out []model.Violation
		forEachAction(stmts, func(i int, stmt ast.Statement, table ast.ObjectName, action ast.AlterAction) {
			c, ok := action.(ast.AddConstraint)
			if !ok || c.Kind != ast.ConstraintUnique || c.UsingIndex || scan.CreatedBefore(i, table) {
				return
			}
			out = append(out, violation(stmt, "unique constraint %s on %s builds its index under an exclusive lock", constraintLabel(c), table))
		})
		return out
	},
}

func constraintLabel(c ast.AddConstraint) string {
	if c.Name.IsZero() {
		return "(unnamed)"
	}
	return c.Name.String()
}
