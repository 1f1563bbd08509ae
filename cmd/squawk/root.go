package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"squawk/internal/auditor"
	"squawk/internal/config"
	"squawk/internal/model"
	"squawk/internal/parser"
	"squawk/internal/reporter"
	"squawk/internal/rules"
	"squawk/internal/source"
)

// Exit codes.
const (
	exitOK         = 0
	exitViolations = 1
	exitError      = 2
)

// streams are the process I/O handles, swapped out in tests.
type streams struct {
	stdin       io.Reader
	interactive bool // stdin is a terminal, so it is never read implicitly
	stdout      io.Writer
	stderr      io.Writer
}

// execute runs the CLI and maps its outcome to an exit code.
func execute(ctx context.Context, args []string, s streams) int {
	cmd := newRootCmd(s)
	cmd.SetArgs(args)
	cmd.SetOut(s.stdout)
	cmd.SetErr(s.stderr)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, auditor.ErrViolationsFound):
		return exitViolations
	default:
		fmt.Fprintf(s.stderr, "Error: %v\n", err)
		return exitError
	}
}

type rootOptions struct {
	configFile string
	listRules  bool
	explain    string
	dumpAST    string
}

func newRootCmd(s streams) *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:   "squawk [paths...]",
		Short: "Find unsafe PostgreSQL migrations",
		Long: `squawk parses SQL migration files and reports statements that take
long-held locks, rewrite tables, or break clients that are still running.

Paths may be files or directories; directories are searched for *.sql files.
With no paths, SQL is read from stdin when it is piped.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, s, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default: .squawk.yaml, searched upward)")
	flags.StringSliceP("exclude", "e", nil, "rule ids to disable (comma separated)")
	flags.StringSlice("include", nil, "default-disabled rule ids to enable")
	flags.String("reporter", config.DefaultReporter, "output format (tty|json)")
	flags.Int("concurrency", 0, "files checked in parallel (0: one per CPU)")
	flags.StringSlice("ignore", nil, "patterns skipped while walking directories")
	flags.BoolP("verbose", "v", false, "verbose logging to stderr")
	flags.BoolVar(&opts.listRules, "list-rules", false, "list all rules and exit")
	flags.StringVar(&opts.explain, "explain", "", "describe a rule and exit")
	flags.StringVar(&opts.dumpAST, "dump-ast", "", "print the parsed statements (json|yaml) instead of linting")

	_ = cmd.RegisterFlagCompletionFunc("reporter", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.ReporterTTY, config.ReporterJSON}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("dump-ast", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{reporter.DumpJSON, reporter.DumpYAML}, cobra.ShellCompDirectiveNoFileComp
	})
	completeRules := func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return rules.Default().IDs(), cobra.ShellCompDirectiveNoFileComp
	}
	_ = cmd.RegisterFlagCompletionFunc("exclude", completeRules)
	_ = cmd.RegisterFlagCompletionFunc("include", completeRules)
	_ = cmd.RegisterFlagCompletionFunc("explain", completeRules)

	return cmd
}

func run(cmd *cobra.Command, args []string, s streams, opts rootOptions) error {
	cfg, err := config.Load(opts.configFile, cmd.Flags())
	if err != nil {
		return err
	}
	logger := newLogger(s.stderr, cfg.Verbose)
	if cfg.File != "" {
		logger.Debug("using config file", "path", cfg.File)
	}

	out := cmd.OutOrStdout()
	switch {
	case opts.listRules:
		reporter.RenderRules(out, rules.List())
		return nil
	case opts.explain != "":
		text, err := rules.Explain(opts.explain)
		if err != nil {
			return err
		}
		reporter.RenderExplain(out, text)
		return nil
	}

	switch opts.dumpAST {
	case "", reporter.DumpJSON, reporter.DumpYAML:
	default:
		return fmt.Errorf("invalid --dump-ast format %q (want %s or %s)", opts.dumpAST, reporter.DumpJSON, reporter.DumpYAML)
	}

	// Rule ids are checked before any input is read.
	a, err := auditor.New(auditor.Options{
		Exclude:     cfg.Exclude,
		Include:     cfg.Include,
		Logger:      logger,
		Concurrency: cfg.Concurrency,
	})
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		paths = cfg.Paths
	}
	var stdin io.Reader
	if !s.interactive {
		stdin = s.stdin
	}
	files, err := source.NewLoader(cfg.Ignore, cfg.Concurrency, stdin, logger).Load(cmd.Context(), paths)
	if err != nil {
		return err
	}
	if len(files) == 0 && len(paths) == 0 {
		return cmd.Help()
	}
	logger.Debug("files discovered", "count", len(files))

	if opts.dumpAST != "" {
		for _, f := range files {
			stmts, diags := parser.Parse(f.SQL)
			if err := reporter.WriteDump(out, opts.dumpAST, f.Path, stmts, diags); err != nil {
				return fmt.Errorf("dump %s: %w", f.Path, err)
			}
		}
		return nil
	}

	results, err := a.Audit(cmd.Context(), files)
	if err != nil {
		return err
	}

	var rpt model.Reporter
	switch cfg.Reporter {
	case config.ReporterJSON:
		rpt = reporter.NewJSONReporter(out)
	default:
		rpt = reporter.NewConsoleReporter(out)
	}
	if err := rpt.Report(results); err != nil {
		return fmt.Errorf("reporting failed: %w", err)
	}

	if model.CountViolations(results) > 0 {
		return auditor.ErrViolationsFound
	}
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
