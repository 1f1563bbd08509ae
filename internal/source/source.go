// Package source materializes migration files into memory before parsing.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"squawk/internal/model"
	"squawk/internal/scanner"
)

// StdinArg is the path argument that stands for standard input.
const StdinArg = "-"

// Loader turns path arguments into source files. Directories are expanded
// to the *.sql files below them; explicit file arguments are read whatever
// their extension.
type Loader struct {
	Walker *scanner.FileWalker
	Pool   *scanner.WorkerPool
	Stdin  io.Reader // read when no paths are given, or for StdinArg; nil disables
	Logger *slog.Logger
}

// NewLoader returns a loader walking *.sql files and skipping ignore patterns.
func NewLoader(ignore []string, concurrency int, stdin io.Reader, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		Walker: scanner.NewFileWalker([]string{"sql"}, ignore),
		Pool:   scanner.NewWorkerPool(concurrency),
		Stdin:  stdin,
		Logger: logger,
	}
}

// Load returns the files named by paths in argument order, each read fully.
// With no paths it reads Stdin; with no paths and no Stdin it returns nothing.
func (l *Loader) Load(ctx context.Context, paths []string) ([]model.SourceFile, error) {
	if len(paths) == 0 {
		if l.Stdin == nil {
			return nil, nil
		}
		paths = []string{StdinArg}
	}

	entries, err := l.expand(ctx, paths)
	if err != nil {
		return nil, err
	}

	files := make([]model.SourceFile, len(entries))
	err = l.Pool.Run(ctx, len(entries), func(_ context.Context, i int) error {
		files[i] = entries[i].file
		if entries[i].stdin {
			return nil
		}
		data, err := os.ReadFile(files[i].Path)
		if err != nil {
			return fmt.Errorf("read %s: %w", files[i].Path, err)
		}
		files[i].SQL = string(data)
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.Logger.Debug("loaded sources", "files", len(files))
	return files, nil
}

// entry is a source to load. stdin entries arrive already read and are
// labelled model.StdinLabel, which a real file may also be called.
type entry struct {
	file  model.SourceFile
	stdin bool
}

// expand resolves directories and stdin, dropping repeated paths.
func (l *Loader) expand(ctx context.Context, paths []string) ([]entry, error) {
	var (
		entries   []entry
		seen      = make(map[string]bool)
		stdinRead bool
	)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			entries = append(entries, entry{file: model.SourceFile{Path: path}})
		}
	}

	for _, p := range paths {
		if p == StdinArg {
			if l.Stdin == nil {
				return nil, fmt.Errorf("stdin is not available")
			}
			if stdinRead {
				continue
			}
			stdinRead = true
			data, err := io.ReadAll(l.Stdin)
			if err != nil {
				return nil, fmt.Errorf("read stdin: %w", err)
			}
			entries = append(entries, entry{
				file:  model.SourceFile{Path: model.StdinLabel, SQL: string(data)},
				stdin: true,
			})
			continue
		}

		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("source path %s: %w", p, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}

		found, err := l.Walker.Collect(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
		if len(found) == 0 {
			l.Logger.Warn("no sql files found", "dir", p)
		}
		for _, f := range found {
			add(f)
		}
	}
	return entries, nil
}
