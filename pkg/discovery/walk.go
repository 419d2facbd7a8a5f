package discovery

import (
	"context"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
)

// candidate is a regular file found during the walk. root is the directory
// it was found in, as reached from the search root (symlinks unresolved).
type candidate struct {
	root string
	name string
}

// candidates walks every search root. Directories are walked recursively and
// symbolic links are followed; a directory already visited through another
// link is not walked again, so link cycles terminate. Within a directory,
// files are yielded before descending into subdirectories.
func (e *Engine) candidates(ctx context.Context) iter.Seq[candidate] {
	return func(yield func(candidate) bool) {
		for _, root := range e.opts.Roots {
			info, err := os.Stat(root)
			if err != nil {
				e.logger.DebugContext(ctx, "Skipping unreadable search root",
					slog.String("root", root), slog.String("error", err.Error()))

				continue
			}

			if !info.IsDir() {
				if !info.Mode().IsRegular() {
					continue
				}

				if !yield(candidate{root: filepath.Dir(root), name: filepath.Base(root)}) {
					return
				}

				continue
			}

			visited := make(map[string]struct{})

			if !e.walkDir(ctx, filepath.Clean(root), visited, yield) {
				return
			}
		}
	}
}

// walkDir returns false once the consumer stops or ctx is done.
func (e *Engine) walkDir(ctx context.Context, dir string, visited map[string]struct{}, yield func(candidate) bool) bool {
	if ctx.Err() != nil {
		return false
	}

	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		e.logger.DebugContext(ctx, "Couldn't resolve directory", slog.String("dir", dir), slog.String("error", err.Error()))

		return true
	}

	if _, seen := visited[resolved]; seen {
		return true
	}

	visited[resolved] = struct{}{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		e.logger.DebugContext(ctx, "Couldn't list directory", slog.String("dir", dir), slog.String("error", err.Error()))

		return true
	}

	var subdirs []string

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		// Stat follows links, so a link to a directory is walked as one.
		info, statErr := os.Stat(path)
		if statErr != nil {
			e.logger.DebugContext(ctx, "Couldn't stat path", slog.String("path", path), slog.String("error", statErr.Error()))

			continue
		}

		switch {
		case info.IsDir():
			subdirs = append(subdirs, path)
		case info.Mode().IsRegular():
			if !yield(candidate{root: dir, name: entry.Name()}) {
				return false
			}
		}
	}

	for _, sub := range subdirs {
		if !e.walkDir(ctx, sub, visited, yield) {
			return false
		}
	}

	return true
}
