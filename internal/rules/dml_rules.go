package rules

import (
	"squawk/internal/ast"
	"squawk/internal/model"
)

// banUnboundedDML is off by default: data migrations often rewrite whole
// tables on purpose.
var banUnboundedDML = Rule{
	ID:    "ban-unbounded-dml",
	Title: "UPDATE or DELETE without WHERE",
	Explanation: "An UPDATE or DELETE without a WHERE clause touches every row in one transaction, " +
		"holding row locks on all of them and generating a large amount of WAL.",
	Help:           "Add a WHERE clause and process the table in batches.",
	BadExample:     "UPDATE users SET active = true;",
	GoodExample:    "UPDATE users SET active = true WHERE id BETWEEN 1 AND 10000;",
	Severity:       model.SeverityWarning,
	DefaultEnabled: false,
	Check: func(stmts []ast.Statement, scan *Scan) []model.Violation {
		var out []model.Violation
		for _, stmt := range stmts {
			switch k := stmt.Kind.(type) {
			case ast.Update:
				if !k.HasWhere {
					out = append(out, violation(stmt, "UPDATE of %s without WHERE touches every row", tableLabel(k.Table)))
				}
			case ast.Delete:
				if !k.HasWhere {
					out = append(out, violation(stmt, "DELETE from %s without WHERE removes every row", tableLabel(k.Table)))
				}
			}
		}
		return out
	},
}

func tableLabel(n ast.ObjectName) string {
	if n.IsZero() {
		return "(unknown table)"
	}
	return n.String()
}
