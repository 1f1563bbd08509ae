package parser

import (
	"strings"

	"squawk/internal/ast"
)

// recognizer classifies one statement shape. match looks only at the
// leading keywords; parse extracts the fields rules need and fails when
// the statement does not have the promised shape.
type recognizer struct {
	name  string
	match func(c *cursor) bool
	parse func(c *cursor) (ast.StatementKind, error)
}

// recognizers is tried in order; the first match wins.
var recognizers = []recognizer{
	{"CREATE INDEX", matchCreateIndex, parseCreateIndex},
	{"CREATE TABLE", matchCreateTable, parseCreateTable},
	{"ALTER TABLE", keywords("ALTER", "TABLE"), parseAlterTable},
	{"DROP TABLE", keywords("DROP", "TABLE"), parseDropTable},
	{"DROP DATABASE", keywords("DROP", "DATABASE"), parseDropDatabase},
	{"DROP INDEX", keywords("DROP", "INDEX"), parseDropIndex},
	{"TRUNCATE", keywords("TRUNCATE"), parseTruncate},
	{"BEGIN", matchBegin, parseBegin},
	{"COMMIT", matchCommit, parseCommit},
	{"ROLLBACK", matchRollback, parseRollback},
	{"INSERT", keywords("INSERT"), parseInsert},
	{"UPDATE", keywords("UPDATE"), parseUpdate},
	{"DELETE", keywords("DELETE"), parseDelete},
}

// commands lists statement-leading keywords that are valid SQL but carry
// nothing any rule inspects. They classify as ast.Other.
var commands = map[string]bool{
	"ABORT": true, "ALTER": true, "ANALYZE": true, "BEGIN": true, "CALL": true,
	"CHECKPOINT": true, "CLOSE": true, "CLUSTER": true, "COMMENT": true, "COMMIT": true,
	"COPY": true, "CREATE": true, "DEALLOCATE": true, "DECLARE": true, "DELETE": true,
	"DISCARD": true, "DO": true, "DROP": true, "END": true, "EXECUTE": true,
	"EXPLAIN": true, "FETCH": true, "GRANT": true, "IMPORT": true, "INSERT": true,
	"LISTEN": true, "LOAD": true, "LOCK": true, "MERGE": true, "MOVE": true,
	"NOTIFY": true, "PREPARE": true, "REASSIGN": true, "REFRESH": true, "REINDEX": true,
	"RELEASE": true, "RENAME": true, "REPLACE": true, "RESET": true, "REVOKE": true,
	"ROLLBACK": true, "SAVEPOINT": true, "SECURITY": true, "SELECT": true, "SET": true,
	"SHOW": true, "START": true, "TABLE": true, "TRUNCATE": true, "UNLISTEN": true,
	"UPDATE": true, "USE": true, "VACUUM": true, "VALUES": true, "WITH": true,
}

func startsCommand(tok Token) bool {
	return tok.Type == TokenWord && commands[strings.ToUpper(tok.Literal)]
}

// classify turns the tokens of one statement into a StatementKind.
// It returns a non-empty reason when the statement is Unparsed.
func classify(src string, toks []Token) (ast.StatementKind, string) {
	raw := ""
	if len(toks) > 0 {
		raw = src[toks[0].Start.Offset : toks[len(toks)-1].End.Offset+1]
	}
	for _, tok := range toks {
		if tok.Unterminated {
			return ast.Unparsed{Raw: raw, Reason: "unterminated " + tok.Type.String()}, "statement contains an unterminated " + tok.Type.String()
		}
	}

	for _, r := range recognizers {
		c := newCursor(src, toks)
		if !r.match(c) {
			continue
		}
		kind, err := r.parse(newCursor(src, toks))
		if err != nil {
			reason := "malformed " + r.name + " statement: " + err.Error()
			return ast.Unparsed{Raw: raw, Reason: reason}, reason
		}
		return kind, ""
	}

	if startsCommand(toks[0]) {
		return ast.Other{Keyword: strings.ToUpper(toks[0].Literal), Raw: raw}, ""
	}
	reason := "unrecognized statement starting with " + describe(toks[0])
	return ast.Unparsed{Raw: raw, Reason: reason}, reason
}

func keywords(kws ...string) func(c *cursor) bool {
	return func(c *cursor) bool { return c.isKeyword(kws...) }
}

func matchCreateIndex(c *cursor) bool {
	return c.isKeyword("CREATE", "INDEX") || c.isKeyword("CREATE", "UNIQUE", "INDEX")
}

// CREATE [UNIQUE] INDEX [CONCURRENTLY] [[IF NOT EXISTS] name] ON [ONLY] table
// [USING method] ( column [, ...] ) ...
func parseCreateIndex(c *cursor) (ast.StatementKind, error) {
	var s ast.CreateIndex
	c.acceptKeyword("CREATE")
	s.Unique = c.acceptKeyword("UNIQUE")
	c.acceptKeyword("INDEX")
	s.Concurrently = c.acceptKeyword("CONCURRENTLY")
	s.IfNotExists = c.acceptKeyword("IF", "NOT", "EXISTS")
	if !c.isKeyword("ON") || s.IfNotExists {
		name, err := c.ident()
		if err != nil {
			return nil, err
		}
		s.Name = name
	}
	if err := c.expectKeyword("ON"); err != nil {
		return nil, err
	}
	c.acceptKeyword("ONLY")
	table, err := c.objectName()
	if err != nil {
		return nil, err
	}
	s.Table = table
	if c.acceptKeyword("USING") {
		if _, err := c.ident(); err != nil {
			return nil, err
		}
	}
	cols, err := c.parenList()
	if err != nil {
		return nil, err
	}
	s.Columns = cols
	return s, nil
}

// matchCreateTable accepts CREATE [OR REPLACE] [GLOBAL|LOCAL]
// [TEMP|TEMPORARY|UNLOGGED] TABLE.
func matchCreateTable(c *cursor) bool {
	return c.acceptKeyword("CREATE") && skipTableModifiers(c) && c.isKeyword("TABLE")
}

func skipTableModifiers(c *cursor) bool {
	c.acceptKeyword("OR", "REPLACE")
	for c.acceptAny("GLOBAL", "LOCAL", "TEMP", "TEMPORARY", "UNLOGGED") {
	}
	return true
}

func parseCreateTable(c *cursor) (ast.StatementKind, error) {
	var s ast.CreateTable
	c.acceptKeyword("CREATE")
	skipTableModifiers(c)
	c.acceptKeyword("TABLE")
	s.IfNotExists = c.acceptKeyword("IF", "NOT", "EXISTS")
	table, err := c.objectName()
	if err != nil {
		return nil, err
	}
	s.Table = table
	return s, nil
}

// DROP TABLE [IF EXISTS] name [, ...] [CASCADE | RESTRICT]
func parseDropTable(c *cursor) (ast.StatementKind, error) {
	var s ast.DropTable
	c.acceptKeyword("DROP", "TABLE")
	s.IfExists = c.acceptKeyword("IF", "EXISTS")
	tables, err := c.objectNameList()
	if err != nil {
		return nil, err
	}
	s.Tables = tables
	return s, nil
}

// DROP DATABASE [IF EXISTS] name [[WITH] (option [, ...])]
func parseDropDatabase(c *cursor) (ast.StatementKind, error) {
	var s ast.DropDatabase
	c.acceptKeyword("DROP", "DATABASE")
	s.IfExists = c.acceptKeyword("IF", "EXISTS")
	name, err := c.ident()
	if err != nil {
		return nil, err
	}
	s.Name = name
	return s, nil
}

// DROP INDEX [CONCURRENTLY] [IF EXISTS] name [, ...] [CASCADE | RESTRICT]
func parseDropIndex(c *cursor) (ast.StatementKind, error) {
	var s ast.DropIndex
	c.acceptKeyword("DROP", "INDEX")
	s.Concurrently = c.acceptKeyword("CONCURRENTLY")
	s.IfExists = c.acceptKeyword("IF", "EXISTS")
	idx, err := c.objectNameList()
	if err != nil {
		return nil, err
	}
	s.Names = idx
	return s, nil
}

// TRUNCATE [TABLE] [ONLY] name [*] [, ...] ...
func parseTruncate(c *cursor) (ast.StatementKind, error) {
	var s ast.Truncate
	c.acceptKeyword("TRUNCATE")
	c.acceptKeyword("TABLE")
	tables, err := c.objectNameList()
	if err != nil {
		return nil, err
	}
	s.Tables = tables
	return s, nil
}

func matchBegin(c *cursor) bool {
	return c.isKeyword("BEGIN") || c.isKeyword("START", "TRANSACTION")
}

func parseBegin(*cursor) (ast.StatementKind, error) {
	return ast.Begin{}, nil
}

// matchCommit accepts COMMIT and END but not COMMIT PREPARED, which
// finishes a two-phase transaction rather than the current block.
func matchCommit(c *cursor) bool {
	return (c.isKeyword("COMMIT") && !c.isKeyword("COMMIT", "PREPARED")) || c.isKeyword("END")
}

func parseCommit(c *cursor) (ast.StatementKind, error) {
	return ast.Commit{Chain: chains(c)}, nil
}

// chains reports a trailing AND CHAIN. AND NO CHAIN is the default.
func chains(c *cursor) bool {
	return hasKeywordPair(c.toks, "AND", "CHAIN")
}

// matchRollback accepts ROLLBACK and ABORT, but not ROLLBACK PREPARED or
// ROLLBACK TO SAVEPOINT, which leave the current block open.
func matchRollback(c *cursor) bool {
	if c.isKeyword("ABORT") {
		return true
	}
	if !c.isKeyword("ROLLBACK") || c.isKeyword("ROLLBACK", "PREPARED") {
		return false
	}
	return !hasKeywordPair(c.toks, "TO", "")
}

func parseRollback(c *cursor) (ast.StatementKind, error) {
	return ast.Rollback{Chain: chains(c)}, nil
}
