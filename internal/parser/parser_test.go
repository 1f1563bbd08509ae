package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"squawk/internal/ast"
)

func TestParse_Kinds(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want ast.StatementKind
	}{
		{
			name: "create index",
			sql:  "CREATE INDEX idx ON users (email);",
			want: ast.CreateIndex{Name: ast.Ident{Value: "idx"}, Table: ast.NewObjectName("users"), Columns: []string{"email"}},
		},
		{
			name: "create unique index concurrently if not exists",
			sql:  `create unique index concurrently if not exists "Idx" on public.users using btree (lower(email), id);`,
			want: ast.CreateIndex{
				Name:         ast.Ident{Value: "Idx", Quoted: true},
				Table:        ast.NewObjectName("public", "users"),
				Columns:      []string{"lower(email)", "id"},
				Unique:       true,
				Concurrently: true,
				IfNotExists:  true,
			},
		},
		{
			name: "unnamed index",
			sql:  "CREATE INDEX ON users (email)",
			want: ast.CreateIndex{Table: ast.NewObjectName("users"), Columns: []string{"email"}},
		},
		{
			name: "create table",
			sql:  "CREATE UNLOGGED TABLE IF NOT EXISTS events (id bigint);",
			want: ast.CreateTable{Table: ast.NewObjectName("events"), IfNotExists: true},
		},
		{
			name: "drop table list",
			sql:  "DROP TABLE IF EXISTS a, b CASCADE;",
			want: ast.DropTable{Tables: []ast.ObjectName{ast.NewObjectName("a"), ast.NewObjectName("b")}, IfExists: true},
		},
		{
			name: "drop database",
			sql:  "DROP DATABASE prod;",
			want: ast.DropDatabase{Name: ast.Ident{Value: "prod"}},
		},
		{
			name: "drop index concurrently",
			sql:  "DROP INDEX CONCURRENTLY IF EXISTS idx;",
			want: ast.DropIndex{Names: []ast.ObjectName{ast.NewObjectName("idx")}, Concurrently: true, IfExists: true},
		},
		{
			name: "truncate",
			sql:  "TRUNCATE TABLE ONLY a, b RESTART IDENTITY;",
			want: ast.Truncate{Tables: []ast.ObjectName{ast.NewObjectName("a"), ast.NewObjectName("b")}},
		},
		{name: "begin", sql: "BEGIN;", want: ast.Begin{}},
		{name: "begin isolation", sql: "BEGIN ISOLATION LEVEL SERIALIZABLE;", want: ast.Begin{}},
		{name: "start transaction", sql: "START TRANSACTION;", want: ast.Begin{}},
		{name: "commit", sql: "COMMIT WORK;", want: ast.Commit{}},
		{name: "end", sql: "END;", want: ast.Commit{}},
		{name: "rollback", sql: "ROLLBACK;", want: ast.Rollback{}},
		{name: "abort", sql: "ABORT;", want: ast.Rollback{}},
		{name: "commit and chain", sql: "COMMIT AND CHAIN;", want: ast.Commit{Chain: true}},
		{name: "commit and no chain", sql: "COMMIT AND NO CHAIN;", want: ast.Commit{}},
		{name: "rollback and chain", sql: "ROLLBACK WORK AND CHAIN;", want: ast.Rollback{Chain: true}},
		{
			name: "rollback to savepoint",
			sql:  "ROLLBACK TO SAVEPOINT sp;",
			want: ast.Other{Keyword: "ROLLBACK", Raw: "ROLLBACK TO SAVEPOINT sp"},
		},
		{
			name: "insert",
			sql:  "INSERT INTO audit (a) VALUES (1);",
			want: ast.Insert{Table: ast.NewObjectName("audit")},
		},
		{
			name: "update with where",
			sql:  "UPDATE users SET name = 'x' WHERE id = 1;",
			want: ast.Update{Table: ast.NewObjectName("users"), HasWhere: true},
		},
		{
			name: "update without where",
			sql:  "UPDATE users SET name = 'x';",
			want: ast.Update{Table: ast.NewObjectName("users")},
		},
		{
			name: "update postgres returning",
			sql:  "UPDATE ONLY users SET active = false WHERE id = 1 RETURNING id;",
			want: ast.Update{Table: ast.NewObjectName("users"), HasWhere: true},
		},
		{
			name: "update with jsonb delete path operator",
			sql:  "UPDATE users SET data = data #- '{a}' WHERE id = 1;",
			want: ast.Update{Table: ast.NewObjectName("users"), HasWhere: true},
		},
		{
			name: "delete with jsonb text path operator",
			sql:  "DELETE FROM users WHERE data #>> '{a,b}' = 'x';",
			want: ast.Delete{Table: ast.NewObjectName("users"), HasWhere: true},
		},
		{
			name: "update where only in subquery",
			sql:  "UPDATE users SET n = (SELECT count(*) FROM s WHERE s.u = users.id);",
			want: ast.Update{Table: ast.NewObjectName("users")},
		},
		{
			name: "delete without where",
			sql:  "DELETE FROM sessions;",
			want: ast.Delete{Table: ast.NewObjectName("sessions")},
		},
		{
			name: "delete where in subquery only",
			sql:  "DELETE FROM sessions USING (SELECT 1 WHERE true) s;",
			want: ast.Delete{Table: ast.NewObjectName("sessions")},
		},
		{
			name: "set",
			sql:  "SET lock_timeout = '2s';",
			want: ast.Other{Keyword: "SET", Raw: "SET lock_timeout = '2s'"},
		},
		{
			name: "comment on",
			sql:  "COMMENT ON TABLE users IS 'people';",
			want: ast.Other{Keyword: "COMMENT", Raw: "COMMENT ON TABLE users IS 'people'"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts, diags := Parse(tt.sql)
			require.Empty(t, diags)
			require.Len(t, stmts, 1)
			assert.Equal(t, tt.want, stmts[0].Kind)
		})
	}
}

func TestParse_AlterTableActions(t *testing.T) {
	def := func(s string) *string { return &s }

	tests := []struct {
		name string
		sql  string
		want []ast.AlterAction
	}{
		{
			name: "add column with default not null",
			sql:  "ALTER TABLE t ADD COLUMN c integer NOT NULL DEFAULT 10;",
			want: []ast.AlterAction{ast.AddColumn{Name: ast.Ident{Value: "c"}, Type: "integer", Default: def("10"), Nullable: false}},
		},
		{
			name: "add column default expression",
			sql:  "ALTER TABLE t ADD c timestamp with time zone DEFAULT now() NULL;",
			want: []ast.AlterAction{ast.AddColumn{Name: ast.Ident{Value: "c"}, Type: "timestamp with time zone", Default: def("now()"), Nullable: true}},
		},
		{
			name: "add column default null",
			sql:  "ALTER TABLE t ADD COLUMN IF NOT EXISTS c varchar(20) DEFAULT NULL;",
			want: []ast.AlterAction{ast.AddColumn{Name: ast.Ident{Value: "c"}, Type: "varchar(20)", Nullable: true, IfNotExists: true}},
		},
		{
			name: "serial primary key",
			sql:  "ALTER TABLE t ADD COLUMN id serial PRIMARY KEY;",
			want: []ast.AlterAction{ast.AddColumn{Name: ast.Ident{Value: "id"}, Type: "serial", Generated: true}},
		},
		{
			name: "identity by default",
			sql:  "ALTER TABLE t ADD COLUMN id bigint NOT NULL GENERATED BY DEFAULT AS IDENTITY (START WITH 10);",
			want: []ast.AlterAction{ast.AddColumn{Name: ast.Ident{Value: "id"}, Type: "bigint", Generated: true}},
		},
		{
			name: "generated stored",
			sql:  "ALTER TABLE t ADD COLUMN total numeric GENERATED ALWAYS AS (a + b) STORED NOT NULL;",
			want: []ast.AlterAction{ast.AddColumn{Name: ast.Ident{Value: "total"}, Type: "numeric", Generated: true}},
		},
		{
			name: "drop column",
			sql:  "ALTER TABLE t DROP COLUMN IF EXISTS c CASCADE;",
			want: []ast.AlterAction{ast.DropColumn{Name: ast.Ident{Value: "c"}, IfExists: true}},
		},
		{
			name: "rename column",
			sql:  "ALTER TABLE t RENAME COLUMN a TO b;",
			want: []ast.AlterAction{ast.RenameColumn{From: ast.Ident{Value: "a"}, To: ast.Ident{Value: "b"}}},
		},
		{
			name: "rename table",
			sql:  "ALTER TABLE t RENAME TO u;",
			want: []ast.AlterAction{ast.RenameTable{To: ast.Ident{Value: "u"}}},
		},
		{
			name: "change type",
			sql:  "ALTER TABLE t ALTER COLUMN c SET DATA TYPE bigint USING c::bigint;",
			want: []ast.AlterAction{ast.AlterColumnType{Name: ast.Ident{Value: "c"}, NewType: "bigint"}},
		},
		{
			name: "set not null",
			sql:  "ALTER TABLE t ALTER c SET NOT NULL;",
			want: []ast.AlterAction{ast.AddConstraint{Kind: ast.ConstraintNotNull, Column: ast.Ident{Value: "c"}, Validated: true}},
		},
		{
			name: "foreign key not valid",
			sql:  "ALTER TABLE t ADD CONSTRAINT fk FOREIGN KEY (u) REFERENCES users (id) NOT VALID;",
			want: []ast.AlterAction{ast.AddConstraint{Name: ast.Ident{Value: "fk"}, Kind: ast.ConstraintForeignKey, Validated: false}},
		},
		{
			name: "check validated",
			sql:  "ALTER TABLE t ADD CHECK (c > 0);",
			want: []ast.AlterAction{ast.AddConstraint{Kind: ast.ConstraintCheck, Validated: true}},
		},
		{
			name: "unique using index",
			sql:  "ALTER TABLE t ADD CONSTRAINT u UNIQUE USING INDEX idx;",
			want: []ast.AlterAction{ast.AddConstraint{Name: ast.Ident{Value: "u"}, Kind: ast.ConstraintUnique, Validated: true, UsingIndex: true}},
		},
		{
			name: "validate and drop constraint",
			sql:  "ALTER TABLE t VALIDATE CONSTRAINT fk, DROP CONSTRAINT IF EXISTS old;",
			want: []ast.AlterAction{
				ast.ValidateConstraint{Name: ast.Ident{Value: "fk"}},
				ast.DropConstraint{Name: ast.Ident{Value: "old"}, IfExists: true},
			},
		},
		{
			name: "multiple actions keep order",
			sql:  "ALTER TABLE t ADD COLUMN a int, ALTER COLUMN b SET DEFAULT 1, DROP b;",
			want: []ast.AlterAction{
				ast.AddColumn{Name: ast.Ident{Value: "a"}, Type: "int", Nullable: true},
				ast.OtherAction{Raw: "ALTER COLUMN b SET DEFAULT 1"},
				ast.DropColumn{Name: ast.Ident{Value: "b"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts, diags := Parse(tt.sql)
			require.Empty(t, diags)
			require.Len(t, stmts, 1)
			alter, ok := stmts[0].Kind.(ast.AlterTable)
			require.True(t, ok, "got %T", stmts[0].Kind)
			assert.Equal(t, tt.want, alter.Actions)
		})
	}
}

func TestParse_Spans(t *testing.T) {
	stmts, diags := Parse("CREATE INDEX idx ON users (email);")
	require.Empty(t, diags)
	require.Len(t, stmts, 1)
	assert.Equal(t, ast.Span{
		Start: ast.Position{Line: 1, Column: 1, Offset: 0},
		End:   ast.Position{Line: 1, Column: 34, Offset: 33},
	}, stmts[0].Span)
	assert.Equal(t, "CREATE INDEX idx ON users (email);", stmts[0].Text)
}

func TestParse_MultiLineAndSameLine(t *testing.T) {
	sql := "-- header\nBEGIN; CREATE INDEX CONCURRENTLY idx\n  ON users (email);\nCOMMIT;\n"
	stmts, diags := Parse(sql)
	require.Empty(t, diags)
	require.Len(t, stmts, 3)

	assert.IsType(t, ast.Begin{}, stmts[0].Kind)
	assert.IsType(t, ast.CreateIndex{}, stmts[1].Kind)
	assert.IsType(t, ast.Commit{}, stmts[2].Kind)

	assert.Equal(t, ast.Position{Line: 2, Column: 1, Offset: 10}, stmts[0].Span.Start)
	assert.Equal(t, ast.Position{Line: 2, Column: 8, Offset: 17}, stmts[1].Span.Start)
	assert.Equal(t, 3, stmts[1].Span.End.Line)
	assert.Equal(t, 4, stmts[2].Span.Start.Line)
}

func TestParse_SpansIncreaseAndNeverOverlap(t *testing.T) {
	sql := `
SET statement_timeout = 0; SELECT 1;
CREATE TABLE a (id int, note text DEFAULT 'x;y');
/* block ; comment */ ALTER TABLE a ADD COLUMN b int;
CREATE FUNCTION f() RETURNS int AS $$ SELECT 1; $$ LANGUAGE sql;
INSERT INTO "weird;name" VALUES (1)`

	stmts, diags := Parse(sql)
	require.Empty(t, diags)
	require.Len(t, stmts, 6)
	for i := 1; i < len(stmts); i++ {
		prev, cur := stmts[i-1].Span, stmts[i].Span
		assert.True(t, prev.Start.Before(cur.Start), "statement %d starts before %d", i-1, i)
		assert.Less(t, prev.End.Offset, cur.Start.Offset, "statement %d overlaps %d", i-1, i)
	}
	assert.Equal(t, ast.Insert{Table: ast.ObjectName{Parts: []ast.Ident{{Value: "weird;name", Quoted: true}}}}, stmts[5].Kind)
}

func TestParse_EmptyAndCommentOnly(t *testing.T) {
	tests := []struct {
		name string
		sql  string
	}{
		{name: "empty", sql: ""},
		{name: "line comment", sql: "-- comment\n"},
		{name: "block comment", sql: "/* outer /* nested */ still */"},
		{name: "only terminators", sql: " ;;\n;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts, diags := Parse(tt.sql)
			assert.Empty(t, stmts)
			assert.Empty(t, diags)
		})
	}
}

func TestParse_DropsEmptyStatements(t *testing.T) {
	stmts, diags := Parse("BEGIN;;; COMMIT")
	require.Empty(t, diags)
	require.Len(t, stmts, 2)
	assert.Equal(t, "COMMIT", stmts[1].Text)
}

func TestParse_UnrecognizedDoesNotStopParsing(t *testing.T) {
	sql := "CREATE INDEX a ON t (x);\nFROBNICATE everything;\nDROP DATABASE prod;\nCREATE INDEX broken t;\nCOMMIT;"
	stmts, diags := Parse(sql)
	require.Len(t, stmts, 5)

	var unparsed int
	for _, s := range stmts {
		if _, ok := s.Kind.(ast.Unparsed); ok {
			unparsed++
		}
	}
	assert.Equal(t, 2, unparsed)
	require.Len(t, diags, 2)
	assert.Equal(t, 2, diags[0].Span.Start.Line)
	assert.Contains(t, diags[0].Reason, "unrecognized statement")
	assert.Equal(t, 4, diags[1].Span.Start.Line)
	assert.Contains(t, diags[1].Reason, "malformed CREATE INDEX")

	assert.IsType(t, ast.DropDatabase{}, stmts[2].Kind)
	assert.IsType(t, ast.Commit{}, stmts[4].Kind)
}

func TestParse_UnbalancedParenRecovers(t *testing.T) {
	sql := "CREATE INDEX a ON t (x;\nDROP DATABASE prod;"
	stmts, diags := Parse(sql)
	require.Len(t, stmts, 2)
	assert.IsType(t, ast.Unparsed{}, stmts[0].Kind)
	assert.IsType(t, ast.DropDatabase{}, stmts[1].Kind)
	assert.Len(t, diags, 1)
}

func TestParse_UnterminatedString(t *testing.T) {
	stmts, diags := Parse("DROP TABLE a;\nUPDATE t SET x = 'oops;")
	require.Len(t, stmts, 2)
	assert.IsType(t, ast.DropTable{}, stmts[0].Kind)
	assert.IsType(t, ast.Unparsed{}, stmts[1].Kind)
	require.NotEmpty(t, diags)
	for _, d := range diags {
		assert.Equal(t, 2, d.Span.Start.Line)
	}
}

func TestParse_Deterministic(t *testing.T) {
	sql := strings.Repeat("ALTER TABLE t ADD COLUMN c int DEFAULT 0 NOT NULL; BOGUS; ", 20)
	first, firstDiags := Parse(sql)
	for range 5 {
		again, againDiags := Parse(sql)
		assert.Equal(t, first, again)
		assert.Equal(t, firstDiags, againDiags)
	}
}

func TestSQLParser_Parse(t *testing.T) {
	p := NewSQLParser()
	stmts, diags := p.Parse("DROP DATABASE prod")
	require.Empty(t, diags)
	require.Len(t, stmts, 1)
	assert.Equal(t, ast.DropDatabase{Name: ast.Ident{Value: "prod"}}, stmts[0].Kind)
}
