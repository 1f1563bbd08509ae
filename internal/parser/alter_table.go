package parser

import (
	"strings"

	"squawk/internal/ast"
)

// ALTER TABLE [IF EXISTS] [ONLY] name [*] action [, ...]
func parseAlterTable(c *cursor) (ast.StatementKind, error) {
	var s ast.AlterTable
	c.acceptKeyword("ALTER", "TABLE")
	s.IfExists = c.acceptKeyword("IF", "EXISTS")
	c.acceptKeyword("ONLY")
	table, err := c.objectName()
	if err != nil {
		return nil, err
	}
	s.Table = table
	if c.peek().Type == TokenSymbol && c.peek().Literal == "*" {
		c.next()
	}
	if c.done() {
		return nil, malformed("missing action")
	}
	for _, part := range splitTopLevel(c.rest(), TokenComma) {
		if len(part) == 0 {
			return nil, malformed("empty action")
		}
		s.Actions = append(s.Actions, parseAlterAction(newCursor(c.src, part)))
	}
	return s, nil
}

// parseAlterAction never fails: actions it cannot read become OtherAction.
func parseAlterAction(c *cursor) ast.AlterAction {
	raw := c.text(c.toks)
	var (
		action ast.AlterAction
		err    error
	)
	switch {
	case c.acceptKeyword("ADD"):
		action, err = parseAdd(c)
	case c.acceptKeyword("DROP"):
		action, err = parseDrop(c)
	case c.acceptKeyword("RENAME"):
		action, err = parseRename(c)
	case c.acceptKeyword("ALTER"):
		action, err = parseAlterColumn(c)
	case c.acceptKeyword("VALIDATE", "CONSTRAINT"):
		var name ast.Ident
		name, err = c.ident()
		action = ast.ValidateConstraint{Name: name}
	}
	if action == nil || err != nil {
		return ast.OtherAction{Raw: raw}
	}
	return action
}

var tableConstraintStarts = []string{"CONSTRAINT", "CHECK", "FOREIGN", "UNIQUE", "PRIMARY", "EXCLUDE"}

func parseAdd(c *cursor) (ast.AlterAction, error) {
	for _, kw := range tableConstraintStarts {
		if c.isKeyword(kw) {
			return parseTableConstraint(c)
		}
	}
	// MySQL-style ADD INDEX/KEY is not a column.
	if c.isKeyword("INDEX") || c.isKeyword("KEY") || c.isKeyword("FULLTEXT") || c.isKeyword("SPATIAL") {
		return nil, nil
	}
	c.acceptKeyword("COLUMN")
	col := ast.AddColumn{Nullable: true}
	col.IfNotExists = c.acceptKeyword("IF", "NOT", "EXISTS")
	name, err := c.ident()
	if err != nil {
		return nil, err
	}
	col.Name = name
	typ := c.until(atColumnConstraint)
	if len(typ) == 0 {
		return nil, malformed("missing type for column %s", name)
	}
	col.Type = c.text(typ)
	col.Generated = serialTypes[strings.ToLower(col.Type)]
	for !c.done() {
		switch {
		case c.acceptKeyword("CONSTRAINT"):
			c.next()
		case c.acceptKeyword("NOT", "NULL"):
			col.Nullable = false
		case c.acceptKeyword("NULL"):
			col.Nullable = true
		case c.acceptKeyword("PRIMARY", "KEY"):
			col.Nullable = false
		case c.acceptKeyword("GENERATED"):
			// GENERATED {ALWAYS | BY DEFAULT} AS {IDENTITY [(...)] | (expr) STORED}
			col.Generated = true
			if !c.acceptKeyword("ALWAYS") {
				c.acceptKeyword("BY", "DEFAULT")
			}
			c.acceptKeyword("AS")
		case c.acceptKeyword("DEFAULT"):
			// The first term is always part of the expression, so DEFAULT NULL
			// is read as a default rather than a NULL constraint.
			start := c.pos
			c.group()
			c.until(atColumnConstraint)
			expr := c.toks[start:c.pos]
			if len(expr) == 0 || (len(expr) == 1 && expr[0].IsKeyword("NULL")) {
				col.Default = nil
				continue
			}
			text := c.text(expr)
			col.Default = &text
		default:
			c.group()
		}
	}
	return col, nil
}

var serialTypes = map[string]bool{
	"smallserial": true, "serial": true, "bigserial": true,
	"serial2": true, "serial4": true, "serial8": true,
}

var columnConstraintStarts = map[string]bool{
	"CONSTRAINT": true, "NOT": true, "NULL": true, "DEFAULT": true, "PRIMARY": true,
	"UNIQUE": true, "CHECK": true, "REFERENCES": true, "GENERATED": true,
	"COLLATE": true, "DEFERRABLE": true, "INITIALLY": true,
}

func atColumnConstraint(c *cursor) bool {
	tok := c.peek()
	return tok.Type == TokenWord && columnConstraintStarts[strings.ToUpper(tok.Literal)]
}

// [CONSTRAINT name] CHECK (...) | FOREIGN KEY (...) REFERENCES ... |
// UNIQUE (...) | UNIQUE USING INDEX idx | PRIMARY KEY ... | EXCLUDE ...
// followed by options and an optional NOT VALID.
func parseTableConstraint(c *cursor) (ast.AlterAction, error) {
	var con ast.AddConstraint
	if c.acceptKeyword("CONSTRAINT") {
		name, err := c.ident()
		if err != nil {
			return nil, err
		}
		con.Name = name
	}
	switch {
	case c.acceptKeyword("CHECK"):
		con.Kind = ast.ConstraintCheck
	case c.acceptKeyword("FOREIGN", "KEY"):
		con.Kind = ast.ConstraintForeignKey
	case c.acceptKeyword("UNIQUE"):
		con.Kind = ast.ConstraintUnique
	case c.acceptKeyword("PRIMARY", "KEY"):
		con.Kind = ast.ConstraintPrimaryKey
	case c.acceptKeyword("EXCLUDE"):
		con.Kind = ast.ConstraintExclude
	default:
		return nil, malformed("unknown constraint type %s", describe(c.peek()))
	}
	rest := c.rest()
	con.UsingIndex = hasKeywordPair(rest, "USING", "INDEX")
	con.Validated = !hasKeywordPair(rest, "NOT", "VALID")
	return con, nil
}

func parseDrop(c *cursor) (ast.AlterAction, error) {
	if c.acceptKeyword("CONSTRAINT") || c.acceptKeyword("FOREIGN", "KEY") {
		var d ast.DropConstraint
		d.IfExists = c.acceptKeyword("IF", "EXISTS")
		name, err := c.ident()
		if err != nil {
			return nil, err
		}
		d.Name = name
		return d, nil
	}
	if c.isKeyword("INDEX") || c.isKeyword("KEY") || c.isKeyword("PRIMARY") {
		return nil, nil
	}
	c.acceptKeyword("COLUMN")
	var d ast.DropColumn
	d.IfExists = c.acceptKeyword("IF", "EXISTS")
	name, err := c.ident()
	if err != nil {
		return nil, err
	}
	d.Name = name
	return d, nil
}

// RENAME TO name | RENAME [COLUMN] a TO b. RENAME CONSTRAINT and the
// MySQL RENAME INDEX/KEY forms are left to OtherAction.
func parseRename(c *cursor) (ast.AlterAction, error) {
	if c.acceptKeyword("TO") || c.acceptKeyword("AS") {
		to, err := c.ident()
		if err != nil {
			return nil, err
		}
		return ast.RenameTable{To: to}, nil
	}
	if c.isKeyword("CONSTRAINT") || c.isKeyword("INDEX") || c.isKeyword("KEY") {
		return nil, nil
	}
	c.acceptKeyword("COLUMN")
	from, err := c.ident()
	if err != nil {
		return nil, err
	}
	if err := c.expectKeyword("TO"); err != nil {
		return nil, err
	}
	to, err := c.ident()
	if err != nil {
		return nil, err
	}
	return ast.RenameColumn{From: from, To: to}, nil
}

// ALTER [COLUMN] name [SET DATA] TYPE t [COLLATE c] [USING expr]
// ALTER [COLUMN] name SET NOT NULL
func parseAlterColumn(c *cursor) (ast.AlterAction, error) {
	if c.isKeyword("CONSTRAINT") {
		return nil, nil
	}
	c.acceptKeyword("COLUMN")
	name, err := c.ident()
	if err != nil {
		return nil, err
	}
	switch {
	case c.acceptKeyword("SET", "DATA", "TYPE"), c.acceptKeyword("TYPE"):
		typ := c.until(func(c *cursor) bool { return c.isKeyword("USING") || c.isKeyword("COLLATE") })
		if len(typ) == 0 {
			return nil, malformed("missing type for column %s", name)
		}
		return ast.AlterColumnType{Name: name, NewType: c.text(typ)}, nil
	case c.acceptKeyword("SET", "NOT", "NULL"):
		return ast.AddConstraint{Kind: ast.ConstraintNotNull, Column: name, Validated: true}, nil
	}
	return nil, nil
}
