package parser

import (
	"sync"

	tidb "github.com/pingcap/tidb/parser"
	tidbast "github.com/pingcap/tidb/parser/ast"
	_ "github.com/pingcap/tidb/parser/test_driver"

	"squawk/internal/ast"
)

// tidb parsers are not safe for concurrent use; files are parsed in parallel.
var tidbParsers = sync.Pool{
	New: func() any { return tidb.New() },
}

// parseDML runs the statement through the tidb grammar. Portable DML
// parses fine; dialect-specific forms (RETURNING, UPDATE ... FROM, ONLY)
// do not, and callers fall back to the token stream. The grammar is MySQL's,
// where # opens a line comment, so its tree is only trusted for the target
// table and never for clause detection.
func parseDML(sql string) (tidbast.StmtNode, bool) {
	p := tidbParsers.Get().(*tidb.Parser)
	defer tidbParsers.Put(p)

	stmts, _, err := p.Parse(sql, "", "")
	if err != nil || len(stmts) != 1 {
		return nil, false
	}
	return stmts[0], true
}

// INSERT [IGNORE] [INTO] name ...
func parseInsert(c *cursor) (ast.StatementKind, error) {
	c.acceptKeyword("INSERT")
	for c.acceptAny("IGNORE", "LOW_PRIORITY", "DELAYED", "HIGH_PRIORITY") {
	}
	c.acceptKeyword("INTO")
	table, err := c.objectName()
	if err != nil {
		if name, ok := tidbTarget(c); ok {
			return ast.Insert{Table: name}, nil
		}
		return nil, err
	}
	return ast.Insert{Table: table}, nil
}

// UPDATE [ONLY] name [*] [[AS] alias] SET ... [WHERE ...]
func parseUpdate(c *cursor) (ast.StatementKind, error) {
	c.acceptKeyword("UPDATE")
	c.acceptKeyword("ONLY")
	table, err := c.objectName()
	if err != nil {
		name, ok := tidbTarget(c)
		if !ok {
			return nil, err
		}
		table = name
	}
	return ast.Update{Table: table, HasWhere: hasWhere(c)}, nil
}

// DELETE FROM [ONLY] name [*] ... [WHERE ...]
func parseDelete(c *cursor) (ast.StatementKind, error) {
	c.acceptKeyword("DELETE")
	table, err := func() (ast.ObjectName, error) {
		if err := c.expectKeyword("FROM"); err != nil {
			return ast.ObjectName{}, err
		}
		c.acceptKeyword("ONLY")
		return c.objectName()
	}()
	if err != nil {
		// MySQL multi-table form: DELETE t1 FROM t1 JOIN t2 ...
		name, ok := tidbTarget(c)
		if !ok {
			return nil, err
		}
		table = name
	}
	return ast.Delete{Table: table, HasWhere: hasWhere(c)}, nil
}

// hasWhere reports whether an UPDATE or DELETE filters its rows. A WHERE
// inside a subquery does not count.
func hasWhere(c *cursor) bool {
	return hasKeywordPair(c.toks, "WHERE", "")
}

// tidbTarget returns the first table the statement writes to, as seen by
// the tidb grammar.
func tidbTarget(c *cursor) (ast.ObjectName, bool) {
	node, ok := parseDML(c.text(c.toks))
	if !ok {
		return ast.ObjectName{}, false
	}
	tables := extractTableNames(node)
	if len(tables) == 0 {
		return ast.ObjectName{}, false
	}
	return tables[0], true
}

// extractTableNames lists the tables referenced by the target clause of an
// INSERT, UPDATE or DELETE, in source order.
func extractTableNames(node tidbast.StmtNode) []ast.ObjectName {
	var tables []ast.ObjectName

	switch stmt := node.(type) {
	case *tidbast.UpdateStmt:
		if stmt.TableRefs != nil {
			extractTableRefs(stmt.TableRefs.TableRefs, &tables)
		}
	case *tidbast.DeleteStmt:
		if stmt.Tables != nil && len(stmt.Tables.Tables) > 0 {
			for _, tn := range stmt.Tables.Tables {
				tables = append(tables, tableName(tn))
			}
		} else if stmt.TableRefs != nil {
			extractTableRefs(stmt.TableRefs.TableRefs, &tables)
		}
	case *tidbast.InsertStmt:
		if stmt.Table != nil {
			extractTableRefs(stmt.Table.TableRefs, &tables)
		}
	}

	return tables
}

func extractTableRefs(join *tidbast.Join, tables *[]ast.ObjectName) {
	if join == nil {
		return
	}
	if join.Left != nil {
		extractTableSource(join.Left, tables)
	}
	if join.Right != nil {
		extractTableSource(join.Right, tables)
	}
}

func extractTableSource(r tidbast.ResultSetNode, tables *[]ast.ObjectName) {
	if ts, ok := r.(*tidbast.TableSource); ok {
		if tn, ok := ts.Source.(*tidbast.TableName); ok {
			*tables = append(*tables, tableName(tn))
		}
	} else if join, ok := r.(*tidbast.Join); ok {
		extractTableRefs(join, tables)
	}
}

func tableName(tn *tidbast.TableName) ast.ObjectName {
	var name ast.ObjectName
	if tn.Schema.O != "" {
		name.Parts = append(name.Parts, ast.Ident{Value: tn.Schema.O})
	}
	name.Parts = append(name.Parts, ast.Ident{Value: tn.Name.O})
	return name
}
