// Package auditor is the evaluation driver: it runs the active rules over
// parsed statements and merges their violations into one ordered list.
package auditor

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"

	"squawk/internal/ast"
	"squawk/internal/model"
	"squawk/internal/parser"
	"squawk/internal/rules"
	"squawk/internal/scanner"
)

// ErrViolationsFound signals a completed run that reported at least one
// violation. It is a result, not a failure of the tool.
var ErrViolationsFound = errors.New("violations found")

// Options configures an Auditor.
type Options struct {
	Exclude     []string        // rule ids to disable
	Include     []string        // default-disabled rule ids to enable
	Registry    *rules.Registry // defaults to rules.Default()
	Logger      *slog.Logger    // defaults to slog.Default()
	Concurrency int             // files checked in parallel; 0 means one per CPU
}

type Auditor struct {
	rules  []rules.Rule
	logger *slog.Logger
	pool   *scanner.WorkerPool
}

// New resolves the active rule set. Every excluded or included id must
// exist in the registry, otherwise an *rules.UnknownRuleError is returned
// and nothing is evaluated. Exclusion wins over inclusion.
func New(opts Options) (*Auditor, error) {
	reg := opts.Registry
	if reg == nil {
		reg = rules.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	excluded, err := resolve(reg, opts.Exclude)
	if err != nil {
		return nil, err
	}
	included, err := resolve(reg, opts.Include)
	if err != nil {
		return nil, err
	}

	a := &Auditor{logger: logger, pool: scanner.NewWorkerPool(opts.Concurrency)}
	for _, r := range reg.Rules() {
		if excluded[r.ID] || !(r.DefaultEnabled || included[r.ID]) {
			continue
		}
		a.rules = append(a.rules, r)
	}
	logger.Debug("rule set resolved", "active", len(a.rules), "excluded", len(excluded), "included", len(included))
	return a, nil
}

func resolve(reg *rules.Registry, ids []string) (map[string]bool, error) {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, err := reg.Get(id); err != nil {
			return nil, err
		}
		set[id] = true
	}
	return set, nil
}

// Rules returns the active rules sorted by id.
func (a *Auditor) Rules() []rules.Rule {
	return slices.Clone(a.rules)
}

// Evaluate runs every active rule over stmts. Violations are ordered by
// span start (line, then column) and then by rule id.
func (a *Auditor) Evaluate(stmts []ast.Statement) []model.Violation {
	return a.evaluate(stmts, "")
}

func (a *Auditor) evaluate(stmts []ast.Statement, file string) []model.Violation {
	scan := rules.NewScan(stmts)

	var out []model.Violation
	for _, r := range a.rules {
		for _, v := range r.Check(stmts, scan) {
			v.RuleID = r.ID
			v.Severity = r.Severity
			v.Help = r.Help
			v.File = file
			out = append(out, v)
		}
	}

	slices.SortStableFunc(out, func(x, y model.Violation) int {
		return cmp.Or(
			cmp.Compare(x.Span.Start.Line, y.Span.Start.Line),
			cmp.Compare(x.Span.Start.Column, y.Span.Start.Column),
			cmp.Compare(x.RuleID, y.RuleID),
		)
	})
	return out
}

// Check parses and evaluates one file. Parse diagnostics never stop
// evaluation of the statements that were classified.
func (a *Auditor) Check(file model.SourceFile) model.FileResult {
	stmts, diags := parser.Parse(file.SQL)
	res := model.FileResult{
		File:        file,
		Statements:  stmts,
		Violations:  a.evaluate(stmts, file.Path),
		Diagnostics: diags,
	}
	a.logger.Debug("checked file",
		"file", file.Path,
		"statements", len(stmts),
		"violations", len(res.Violations),
		"diagnostics", len(diags))
	return res
}

// Audit checks files in parallel. Results keep the order of files.
func (a *Auditor) Audit(ctx context.Context, files []model.SourceFile) ([]model.FileResult, error) {
	results := make([]model.FileResult, len(files))
	err := a.pool.Run(ctx, len(files), func(_ context.Context, i int) error {
		results[i] = a.Check(files[i])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Evaluate runs the built-in rules minus excluded over stmts.
func Evaluate(stmts []ast.Statement, excluded []string) ([]model.Violation, error) {
	a, err := New(Options{Exclude: excluded})
	if err != nil {
		return nil, err
	}
	return a.Evaluate(stmts), nil
}
