// Package batch walks a project tree for minified bundles and
// extracts scope indexes for each one concurrently. The directory
// walk, symlink-cycle guard, and gitignore/glob filtering follow the
// same shape the teacher codebase's file scanner uses for its own
// indexing walk; the worker pool is errgroup instead of the teacher's
// hand-rolled channel fan-out.
package batch

import (
	"context"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/jsscopes/internal/config"
	jsscopeserrors "github.com/standardbeagle/jsscopes/internal/errors"
	"github.com/standardbeagle/jsscopes/internal/fileio"
	"github.com/standardbeagle/jsscopes/internal/jsast"
	"github.com/standardbeagle/jsscopes/internal/resolver"
	"github.com/standardbeagle/jsscopes/internal/scopecache"
	"github.com/standardbeagle/jsscopes/internal/scopecollect"
	"github.com/standardbeagle/jsscopes/internal/scopeindex"
	"github.com/standardbeagle/jsscopes/internal/scopename"
	"github.com/standardbeagle/jsscopes/internal/sourcectx"
	"github.com/standardbeagle/jsscopes/internal/sourcemap"
)

// Result is one file's extraction outcome.
type Result struct {
	Path  string
	Index *scopeindex.ScopeIndex
	Err   error
}

// Run walks cfg.Project.Root, extracts a ScopeIndex for every file
// matching cfg's include/exclude patterns, and returns one Result per
// file. Extraction runs with cfg.Extract.ParallelWorkers goroutines;
// a value of 0 or less runs one file at a time. cache may be nil to
// skip memoization.
func Run(ctx context.Context, cfg *config.Config, cache *scopecache.Cache) ([]Result, error) {
	gi := config.NewGitignoreParser()
	if cfg.Extract.RespectGitignore {
		_ = gi.LoadGitignore(cfg.Project.Root)
	}

	paths, err := discover(cfg, gi)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(cfg))

	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = extractOne(p, cfg, cache)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func workerCount(cfg *config.Config) int {
	if cfg.Extract.ParallelWorkers > 0 {
		return cfg.Extract.ParallelWorkers
	}
	return 1
}

func extractOne(path string, cfg *config.Config, cache *scopecache.Cache) Result {
	src, err := fileio.Load(path)
	if err != nil {
		return Result{Path: path, Err: err}
	}
	defer src.Close()

	if src.Text == "" {
		return Result{Path: path}
	}
	if int64(len(src.Text)) > cfg.Extract.MaxFileSize {
		return Result{Path: path, Err: jsscopeserrors.NewFileError("size-check", path, errFileTooLarge)}
	}

	if cache != nil {
		if idx, ok := cache.Get(src.Fingerprint); ok {
			return Result{Path: path, Index: idx}
		}
	}

	prog, err := jsast.Parse(src.Text)
	if err != nil {
		return Result{Path: path, Err: err}
	}
	entries := scopecollect.Extract(prog)

	if resolved, ok := resolveAgainstSourceMap(path, src.Text, entries); ok {
		entries = resolved
	}

	idx, err := scopeindex.New(entries)
	if err != nil {
		return Result{Path: path, Err: err}
	}

	if cache != nil {
		cache.Put(src.Fingerprint, idx)
	}
	return Result{Path: path, Index: idx}
}

// resolveAgainstSourceMap loads path+".map" if present and resolves
// entries' names through it. A missing or undecodable source map is
// not an error: the caller falls back to the minified names as-is.
func resolveAgainstSourceMap(path, source string, entries []scopename.Entry) ([]scopename.Entry, bool) {
	mapData, err := os.ReadFile(path + ".map")
	if err != nil {
		return nil, false
	}
	dm, err := sourcemap.Decode(mapData)
	if err != nil {
		return nil, false
	}
	ctx, err := sourcectx.New(source)
	if err != nil {
		return nil, false
	}
	return resolver.New(ctx, dm).ResolveEntries(entries), true
}

type batchError string

func (e batchError) Error() string { return string(e) }

const errFileTooLarge = batchError("file exceeds configured max-file-size")

// discover walks cfg.Project.Root, returning every file path that
// survives gitignore and the config's include/exclude glob patterns.
func discover(cfg *config.Config, gi *config.GitignoreParser) ([]string, error) {
	root := cfg.Project.Root
	visitedDirs := make(map[string]bool)
	var out []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return nil
		}

		if info.IsDir() {
			if path == root {
				return nil
			}
			real, err := filepath.EvalSymlinks(path)
			if err == nil {
				if visitedDirs[real] {
					return filepath.SkipDir
				}
				visitedDirs[real] = true
			}
			rel, _ := filepath.Rel(root, path)
			rel = filepath.ToSlash(rel)
			if cfg.Extract.RespectGitignore && gi.ShouldIgnore(rel, true) {
				return filepath.SkipDir
			}
			if matchesAny(cfg.Exclude, rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		rel, _ := filepath.Rel(root, path)
		rel = filepath.ToSlash(rel)
		if cfg.Extract.RespectGitignore && gi.ShouldIgnore(rel, false) {
			return nil
		}
		if matchesAny(cfg.Exclude, rel) {
			return nil
		}
		if len(cfg.Include) > 0 && !matchesAny(cfg.Include, rel) {
			return nil
		}
		out = append(out, path)
		return nil
	})
	return out, err
}

func matchesAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}
