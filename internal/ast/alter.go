package ast

// AlterAction is one action of an ALTER TABLE statement.
type AlterAction interface {
	Tag() string
	dumpFields() map[string]any
}

// ConstraintKind classifies an added constraint.
type ConstraintKind string

const (
	ConstraintCheck      ConstraintKind = "check"
	ConstraintForeignKey ConstraintKind = "foreign_key"
	ConstraintUnique     ConstraintKind = "unique"
	ConstraintPrimaryKey ConstraintKind = "primary_key"
	ConstraintNotNull    ConstraintKind = "not_null"
	ConstraintExclude    ConstraintKind = "exclude"
)

// AddColumn is ADD [COLUMN] name type [constraints].
type AddColumn struct {
	Name        Ident
	Type        string
	Default     *string // nil when no DEFAULT clause, or DEFAULT NULL
	Nullable    bool
	// Generated is set for serial types, identity columns and generated
	// columns, which fill existing rows without a DEFAULT clause.
	Generated   bool
	IfNotExists bool
}

// DropColumn is DROP [COLUMN] name.
type DropColumn struct {
	Name     Ident
	IfExists bool
}

// RenameColumn is RENAME [COLUMN] from TO to.
type RenameColumn struct {
	From Ident
	To   Ident
}

// RenameTable is RENAME TO name.
type RenameTable struct {
	To Ident
}

// AlterColumnType is ALTER [COLUMN] name [SET DATA] TYPE new_type.
type AlterColumnType struct {
	Name    Ident
	NewType string
}

// AddConstraint is ADD [CONSTRAINT name] ... and ALTER COLUMN c SET NOT NULL,
// which is recorded with Kind == ConstraintNotNull and Column set.
type AddConstraint struct {
	Name       Ident
	Kind       ConstraintKind
	Column     Ident
	Validated  bool // false when the constraint is added NOT VALID
	UsingIndex bool // UNIQUE/PRIMARY KEY USING INDEX existing_index
}

// DropConstraint is DROP CONSTRAINT name.
type DropConstraint struct {
	Name     Ident
	IfExists bool
}

// ValidateConstraint is VALIDATE CONSTRAINT name.
type ValidateConstraint struct {
	Name Ident
}

// OtherAction is an ALTER TABLE action no rule inspects.
type OtherAction struct {
	Raw string
}

func (AddColumn) Tag() string          { return "AddColumn" }
func (DropColumn) Tag() string         { return "DropColumn" }
func (RenameColumn) Tag() string       { return "RenameColumn" }
func (RenameTable) Tag() string        { return "RenameTable" }
func (AlterColumnType) Tag() string    { return "AlterColumnType" }
func (AddConstraint) Tag() string      { return "AddConstraint" }
func (DropConstraint) Tag() string     { return "DropConstraint" }
func (ValidateConstraint) Tag() string { return "ValidateConstraint" }
func (OtherAction) Tag() string        { return "OtherAction" }

func (a AddColumn) dumpFields() map[string]any {
	f := map[string]any{
		"name":          a.Name.String(),
		"type":          a.Type,
		"nullable":      a.Nullable,
		"generated":     a.Generated,
		"if_not_exists": a.IfNotExists,
	}
	if a.Default != nil {
		f["default"] = *a.Default
	}
	return f
}

func (a DropColumn) dumpFields() map[string]any {
	return map[string]any{"name": a.Name.String(), "if_exists": a.IfExists}
}

func (a RenameColumn) dumpFields() map[string]any {
	return map[string]any{"from": a.From.String(), "to": a.To.String()}
}

func (a RenameTable) dumpFields() map[string]any {
	return map[string]any{"to": a.To.String()}
}

func (a AlterColumnType) dumpFields() map[string]any {
	return map[string]any{"name": a.Name.String(), "new_type": a.NewType}
}

func (a AddConstraint) dumpFields() map[string]any {
	f := map[string]any{
		"kind":        string(a.Kind),
		"validated":   a.Validated,
		"using_index": a.UsingIndex,
	}
	if !a.Name.IsZero() {
		f["name"] = a.Name.String()
	}
	if !a.Column.IsZero() {
		f["column"] = a.Column.String()
	}
	return f
}

func (a DropConstraint) dumpFields() map[string]any {
	return map[string]any{"name": a.Name.String(), "if_exists": a.IfExists}
}

func (a ValidateConstraint) dumpFields() map[string]any {
	return map[string]any{"name": a.Name.String()}
}

func (a OtherAction) dumpFields() map[string]any {
	return map[string]any{"raw": a.Raw}
}
