// Package ast defines the statement tree produced by the migration parser.
//
// Statement kinds and ALTER TABLE actions are closed sets: each variant
// implements an unexported method, so only this package can add new ones
// and rules switch over the concrete types.
package ast

// Statement is one top-level SQL statement of a migration file.
type Statement struct {
	Kind StatementKind
	Span Span
	// Text is the statement source exactly as it appears in the file.
	Text string
}

// StatementKind is the tagged variant carried by a Statement.
type StatementKind interface {
	// Tag is the stable variant name used in AST dumps.
	Tag() string
	dumpFields() map[string]any
}

// CreateIndex is CREATE [UNIQUE] INDEX [CONCURRENTLY] ... ON table (...).
type CreateIndex struct {
	Name         Ident // zero when the index is unnamed
	Table        ObjectName
	Columns      []string
	Unique       bool
	Concurrently bool
	IfNotExists  bool
}

// CreateTable is CREATE [TEMP|UNLOGGED] TABLE name ....
type CreateTable struct {
	Table       ObjectName
	IfNotExists bool
}

// AlterTable is ALTER TABLE name followed by one or more actions in source order.
type AlterTable struct {
	Table    ObjectName
	IfExists bool
	Actions  []AlterAction
}

// DropTable is DROP TABLE t1 [, t2 ...].
type DropTable struct {
	Tables   []ObjectName
	IfExists bool
}

// DropDatabase is DROP DATABASE name.
type DropDatabase struct {
	Name     Ident
	IfExists bool
}

// DropIndex is DROP INDEX [CONCURRENTLY] i1 [, i2 ...].
type DropIndex struct {
	Names        []ObjectName
	Concurrently bool
	IfExists     bool
}

// Truncate is TRUNCATE [TABLE] t1 [, t2 ...].
type Truncate struct {
	Tables []ObjectName
}

// Begin opens an explicit transaction block (BEGIN, START TRANSACTION).
type Begin struct{}

// Commit closes a transaction block (COMMIT, END). With Chain set
// (AND CHAIN) a new block opens immediately.
type Commit struct {
	Chain bool
}

// Rollback aborts a transaction block (ROLLBACK, ABORT), optionally
// chaining a new one like Commit.
type Rollback struct {
	Chain bool
}

// Insert is INSERT INTO table ....
type Insert struct {
	Table ObjectName
}

// Update is UPDATE table SET ....
type Update struct {
	Table    ObjectName
	HasWhere bool
}

// Delete is DELETE FROM table ....
type Delete struct {
	Table    ObjectName
	HasWhere bool
}

// Other is a recognized statement that no rule inspects, such as SET or
// COMMENT ON. It is kept so statement order and transaction state stay intact.
type Other struct {
	Keyword string // leading keyword, upper case
	Raw     string
}

// Unparsed is a statement the parser could not classify.
type Unparsed struct {
	Raw    string
	Reason string
}

func (CreateIndex) Tag() string  { return "CreateIndex" }
func (CreateTable) Tag() string  { return "CreateTable" }
func (AlterTable) Tag() string   { return "AlterTable" }
func (DropTable) Tag() string    { return "DropTable" }
func (DropDatabase) Tag() string { return "DropDatabase" }
func (DropIndex) Tag() string    { return "DropIndex" }
func (Truncate) Tag() string     { return "Truncate" }
func (Begin) Tag() string        { return "Begin" }
func (Commit) Tag() string       { return "Commit" }
func (Rollback) Tag() string     { return "Rollback" }
func (Insert) Tag() string       { return "Insert" }
func (Update) Tag() string       { return "Update" }
func (Delete) Tag() string       { return "Delete" }
func (Other) Tag() string        { return "Other" }
func (Unparsed) Tag() string     { return "Unparsed" }

func (s CreateIndex) dumpFields() map[string]any {
	f := map[string]any{
		"table":         s.Table.String(),
		"columns":       s.Columns,
		"unique":        s.Unique,
		"concurrently":  s.Concurrently,
		"if_not_exists": s.IfNotExists,
	}
	if !s.Name.IsZero() {
		f["name"] = s.Name.String()
	}
	return f
}

func (s CreateTable) dumpFields() map[string]any {
	return map[string]any{"table": s.Table.String(), "if_not_exists": s.IfNotExists}
}

func (s AlterTable) dumpFields() map[string]any {
	actions := make([]Node, len(s.Actions))
	for i, a := range s.Actions {
		actions[i] = Node{Type: a.Tag(), Fields: a.dumpFields()}
	}
	return map[string]any{"table": s.Table.String(), "if_exists": s.IfExists, "actions": actions}
}

func (s DropTable) dumpFields() map[string]any {
	return map[string]any{"tables": names(s.Tables), "if_exists": s.IfExists}
}

func (s DropDatabase) dumpFields() map[string]any {
	return map[string]any{"name": s.Name.String(), "if_exists": s.IfExists}
}

func (s DropIndex) dumpFields() map[string]any {
	return map[string]any{"names": names(s.Names), "concurrently": s.Concurrently, "if_exists": s.IfExists}
}

func (s Truncate) dumpFields() map[string]any {
	return map[string]any{"tables": names(s.Tables)}
}

func (Begin) dumpFields() map[string]any       { return nil }
func (s Commit) dumpFields() map[string]any   { return chainFields(s.Chain) }
func (s Rollback) dumpFields() map[string]any { return chainFields(s.Chain) }

func chainFields(chain bool) map[string]any {
	if !chain {
		return nil
	}
	return map[string]any{"chain": true}
}

func (s Insert) dumpFields() map[string]any {
	return map[string]any{"table": s.Table.String()}
}

func (s Update) dumpFields() map[string]any {
	return map[string]any{"table": s.Table.String(), "has_where": s.HasWhere}
}

func (s Delete) dumpFields() map[string]any {
	return map[string]any{"table": s.Table.String(), "has_where": s.HasWhere}
}

func (s Other) dumpFields() map[string]any {
	return map[string]any{"keyword": s.Keyword, "raw": s.Raw}
}

func (s Unparsed) dumpFields() map[string]any {
	return map[string]any{"raw": s.Raw, "reason": s.Reason}
}
