package reporter

import (
	"encoding/json"
	"io"
	"os"

	"squawk/internal/model"
)

type jsonViolation struct {
	File      string `json:"file"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	EndLine   int    `json:"end_line"`
	EndColumn int    `json:"end_column"`
	Level     string `json:"level"`
	RuleName  string `json:"rule_name"`
	Message   string `json:"message"`
	Help      string `json:"help,omitempty"`
}

type jsonDiagnostic struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Reason string `json:"reason"`
}

type jsonReport struct {
	Violations  []jsonViolation  `json:"violations"`
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
}

// JSONReporter writes one JSON document with every violation and parse
// diagnostic, ordered by file and then by position.
type JSONReporter struct {
	out io.Writer
}

func NewJSONReporter(out io.Writer) *JSONReporter {
	if out == nil {
		out = os.Stdout
	}
	return &JSONReporter{out: out}
}

func (r *JSONReporter) Report(results []model.FileResult) error {
	report := jsonReport{
		Violations:  []jsonViolation{},
		Diagnostics: []jsonDiagnostic{},
	}
	for _, res := range results {
		for _, v := range res.Violations {
			report.Violations = append(report.Violations, jsonViolation{
				File:      v.File,
				Line:      v.Span.Start.Line,
				Column:    v.Span.Start.Column,
				EndLine:   v.Span.End.Line,
				EndColumn: v.Span.End.Column,
				Level:     string(v.Severity),
				RuleName:  v.RuleID,
				Message:   v.Message,
				Help:      v.Help,
			})
		}
		for _, d := range res.Diagnostics {
			report.Diagnostics = append(report.Diagnostics, jsonDiagnostic{
				File:   res.File.Path,
				Line:   d.Span.Start.Line,
				Column: d.Span.Start.Column,
				Reason: d.Reason,
			})
		}
	}

	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
