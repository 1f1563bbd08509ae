package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"squawk/internal/ast"
	"squawk/internal/model"
)

// ConsoleReporter prints violations for a terminal reader.
type ConsoleReporter struct {
	out io.Writer
}

func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleReporter{out: out}
}

func (r *ConsoleReporter) Report(results []model.FileResult) error {
	files := 0
	for _, res := range results {
		for _, d := range res.Diagnostics {
			fmt.Fprintf(r.out, "%s:%d:%d: %s %s\n",
				res.File.Path, d.Span.Start.Line, d.Span.Start.Column,
				color.New(color.FgMagenta, color.Bold).Sprint("[PARSE]"), d.Reason)
		}
		if len(res.Violations) > 0 {
			files++
		}
		for _, v := range res.Violations {
			// Format: file:line:col: [LEVEL] rule-id: message
			fmt.Fprintf(r.out, "%s: [%s] %s: %s\n", v.Location(), levelColor(v.Severity).Sprint(v.Severity), v.RuleID, v.Message)
			if text := statementText(res.Statements, v.Span); text != "" {
				for _, line := range strings.Split(truncate(text, 400), "\n") {
					fmt.Fprintf(r.out, "\t%s\n", color.New(color.FgCyan).Sprint(line))
				}
			}
			if v.Help != "" {
				fmt.Fprintf(r.out, "\thelp: %s\n", v.Help)
			}
			fmt.Fprintln(r.out)
		}
	}

	total := model.CountViolations(results)
	if total == 0 {
		fmt.Fprintln(r.out, color.GreenString("✔ No violations found in %d %s.", len(results), plural(len(results), "file")))
		return nil
	}
	fmt.Fprintf(r.out, "%s found %d %s in %d %s.\n", color.RedString("✘"), total, plural(total, "violation"), files, plural(files, "file"))
	return nil
}

func levelColor(s model.Severity) *color.Color {
	switch s {
	case model.SeverityFatal:
		return color.New(color.FgRed, color.Bold)
	case model.SeverityWarning:
		return color.New(color.FgYellow, color.Bold)
	case model.SeveritySuggestion:
		return color.New(color.FgBlue, color.Bold)
	default:
		return color.New(color.FgWhite)
	}
}

func statementText(stmts []ast.Statement, span ast.Span) string {
	for _, s := range stmts {
		if s.Span == span {
			return s.Text
		}
	}
	return ""
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
