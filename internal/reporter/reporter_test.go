package reporter

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"squawk/internal/ast"
	"squawk/internal/model"
	"squawk/internal/rules"
)

func init() {
	color.NoColor = true
}

func span(line, col, endCol int) ast.Span {
	return ast.Span{
		Start: ast.Position{Line: line, Column: col, Offset: col - 1},
		End:   ast.Position{Line: line, Column: endCol, Offset: endCol - 1},
	}
}

func sampleResults() []model.FileResult {
	stmt := ast.Statement{
		Kind: ast.DropDatabase{Name: ast.Ident{Value: "prod"}},
		Span: span(2, 1, 19),
		Text: "DROP DATABASE prod;",
	}
	return []model.FileResult{
		{
			File:       model.SourceFile{Path: "a.sql"},
			Statements: []ast.Statement{stmt},
			Violations: []model.Violation{{
				RuleID:   "ban-drop-database",
				Severity: model.SeverityFatal,
				Message:  "dropping database prod destroys all of its data",
				Help:     "Drop databases by hand, never from a migration.",
				Span:     stmt.Span,
				File:     "a.sql",
			}},
			Diagnostics: []ast.ParseDiagnostic{{Span: span(1, 1, 10), Reason: "unrecognized statement starting with FROBNICATE"}},
		},
		{File: model.SourceFile{Path: "b.sql"}},
	}
}

func TestConsoleReporter_Report(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewConsoleReporter(&buf).Report(sampleResults()))

	out := buf.String()
	assert.Contains(t, out, "a.sql:1:1: [PARSE] unrecognized statement starting with FROBNICATE\n")
	assert.Contains(t, out, "a.sql:2:1: [FATAL] ban-drop-database: dropping database prod destroys all of its data\n")
	assert.Contains(t, out, "\tDROP DATABASE prod;\n")
	assert.Contains(t, out, "\thelp: Drop databases by hand")
	assert.Contains(t, out, "found 1 violation in 1 file.")
}

func TestConsoleReporter_Clean(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewConsoleReporter(&buf).Report([]model.FileResult{{File: model.SourceFile{Path: "a.sql"}}}))
	assert.Equal(t, "✔ No violations found in 1 file.\n", buf.String())
}

func TestJSONReporter_Report(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONReporter(&buf).Report(sampleResults()))

	var got jsonReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got.Violations, 1)
	assert.Equal(t, jsonViolation{
		File:      "a.sql",
		Line:      2,
		Column:    1,
		EndLine:   2,
		EndColumn: 19,
		Level:     "FATAL",
		RuleName:  "ban-drop-database",
		Message:   "dropping database prod destroys all of its data",
		Help:      "Drop databases by hand, never from a migration.",
	}, got.Violations[0])
	require.Len(t, got.Diagnostics, 1)
	assert.Equal(t, "a.sql", got.Diagnostics[0].File)
}

func TestJSONReporter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONReporter(&buf).Report(nil))
	assert.JSONEq(t, `{"violations": [], "diagnostics": []}`, buf.String())
}

func TestRenderRules(t *testing.T) {
	var buf bytes.Buffer
	RenderRules(&buf, rules.List())

	out := buf.String()
	assert.Contains(t, out, "require-concurrent-index-creation")
	assert.Contains(t, out, "ban-unbounded-dml")
	assert.Contains(t, out, "off")
	assert.Contains(t, out, "rules)\n")
}

func TestRenderExplain(t *testing.T) {
	text, err := rules.Explain("ban-drop-database")
	require.NoError(t, err)

	var buf bytes.Buffer
	RenderExplain(&buf, text)
	assert.Equal(t, text, buf.String())
}

func TestWriteDump(t *testing.T) {
	stmts := []ast.Statement{{
		Kind: ast.AlterTable{
			Table:   ast.NewObjectName("t"),
			Actions: []ast.AlterAction{ast.RenameColumn{From: ast.Ident{Value: "a"}, To: ast.Ident{Value: "b"}}},
		},
		Span: span(1, 1, 35),
	}}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteDump(&buf, DumpJSON, "m.sql", stmts, nil))

		var got map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "m.sql", got["file"])
		statements := got["statements"].([]any)
		require.Len(t, statements, 1)
		node := statements[0].(map[string]any)
		assert.Equal(t, "AlterTable", node["type"])
		assert.NotContains(t, got, "diagnostics")
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteDump(&buf, DumpYAML, "m.sql", stmts, nil))

		var got fileDump
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got.Statements, 1)
		assert.Equal(t, "AlterTable", got.Statements[0].Type)
		assert.Equal(t, span(1, 1, 35), *got.Statements[0].Span)
	})

	t.Run("unknown format", func(t *testing.T) {
		assert.Error(t, WriteDump(&bytes.Buffer{}, "xml", "m.sql", stmts, nil))
	})
}
