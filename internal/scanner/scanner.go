package scanner

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// FileWalker traverses directories looking for migration files.
type FileWalker struct {
	Extensions map[string]struct{}
	Excludes   []string // glob patterns matched against names, or path fragments
}

func NewFileWalker(exts []string, excludes []string) *FileWalker {
	e := make(map[string]struct{})
	for _, ext := range exts {
		e[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return &FileWalker{
		Extensions: e,
		Excludes:   excludes,
	}
}

// Walk starts the traversal and returns a channel of file paths in lexical
// order. It runs in a separate goroutine and closes both channels when done.
func (fw *FileWalker) Walk(ctx context.Context, root string) (<-chan string, <-chan error) {
	paths := make(chan string, 100)
	errs := make(chan error, 1)

	go func() {
		defer close(paths)
		defer close(errs)

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if d.IsDir() {
				if path == root {
					return nil
				}
				if fw.excluded(root, path, d.Name()) {
					return filepath.SkipDir
				}
				if strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir // hidden directories like .git
				}
				return nil
			}

			if fw.excluded(root, path, d.Name()) || !fw.matchesExt(path) {
				return nil
			}
			select {
			case paths <- path:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})

		if err != nil {
			errs <- err
		}
	}()

	return paths, errs
}

// Collect walks root and returns every matching path in lexical order.
func (fw *FileWalker) Collect(ctx context.Context, root string) ([]string, error) {
	paths, errs := fw.Walk(ctx, root)

	var out []string
	for p := range paths {
		out = append(out, p)
	}
	if err := <-errs; err != nil {
		return nil, err
	}
	return out, nil
}

// excluded matches patterns against the entry name and its path below root.
func (fw *FileWalker) excluded(root, path, name string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	for _, exclude := range fw.Excludes {
		if matched, _ := filepath.Match(exclude, name); matched {
			return true
		}
		if strings.Contains(rel, exclude) {
			return true
		}
	}
	return false
}

func (fw *FileWalker) matchesExt(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	_, ok := fw.Extensions[ext]
	return ok
}

// Task processes the i-th item of a batch.
type Task func(ctx context.Context, i int) error

// WorkerPool runs independent tasks with bounded concurrency.
type WorkerPool struct {
	Concurrency int
}

// NewWorkerPool returns a pool running at most concurrency tasks at once.
// Zero or less means one worker per CPU.
func NewWorkerPool(concurrency int) *WorkerPool {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	return &WorkerPool{Concurrency: concurrency}
}

// Run calls task for every index in [0, n). Cancellation is observed
// between tasks, never inside one. The first task error cancels the rest.
func (wp *WorkerPool) Run(ctx context.Context, n int, task Task) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(wp.Concurrency, 1))

	for i := range n {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return task(gctx, i)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
