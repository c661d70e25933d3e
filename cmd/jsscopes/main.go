// Command jsscopes is the CLI entry point: extract scope names from
// minified JS bundles, resolve a single stack-trace location, watch a
// tree for changes, or run the MCP server. Flag and subcommand layout
// follows the same urfave/cli/v2 structure the teacher's own CLI
// (cmd/lci) uses: a root set of global flags plus one Command per
// mode of operation.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/jsscopes/internal/batch"
	"github.com/standardbeagle/jsscopes/internal/config"
	"github.com/standardbeagle/jsscopes/internal/fileio"
	"github.com/standardbeagle/jsscopes/internal/fuzzyname"
	"github.com/standardbeagle/jsscopes/internal/jsast"
	"github.com/standardbeagle/jsscopes/internal/logging"
	"github.com/standardbeagle/jsscopes/internal/mcpserver"
	"github.com/standardbeagle/jsscopes/internal/resolver"
	"github.com/standardbeagle/jsscopes/internal/scopecache"
	"github.com/standardbeagle/jsscopes/internal/scopecollect"
	"github.com/standardbeagle/jsscopes/internal/scopeindex"
	"github.com/standardbeagle/jsscopes/internal/sourcectx"
	"github.com/standardbeagle/jsscopes/internal/sourcemap"
	"github.com/standardbeagle/jsscopes/internal/watch"
)

func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	configPath := c.String("config")
	if rootFlag := c.String("root"); rootFlag != "" && configPath == ".jsscopes.kdl" {
		configPath = filepath.Join(rootFlag, ".jsscopes.kdl")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = append(cfg.Exclude, excludeFlags...)
	}
	if rootFlag := c.String("root"); rootFlag != "" {
		absRoot, err := filepath.Abs(rootFlag)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", rootFlag, err)
		}
		cfg.Project.Root = absRoot
	}
	return cfg, nil
}

func main() {
	app := &cli.App{
		Name:                   "jsscopes",
		Usage:                  "Recover original scope names from minified JavaScript stack traces",
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Config file path", Value: ".jsscopes.kdl"},
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "Project root directory (overrides config)"},
			&cli.StringSliceFlag{Name: "include", Usage: "Include files matching glob patterns"},
			&cli.StringSliceFlag{Name: "exclude", Usage: "Exclude files matching glob patterns"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Show debug logging"},
		},
		Before: func(c *cli.Context) error {
			logging.SetVerbose(c.Bool("verbose"))
			return nil
		},
		Commands: []*cli.Command{
			extractCommand(),
			resolveCommand(),
			searchCommand(),
			watchCommand(),
			serveCommand(),
			cacheClearCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logging.Errorf("%v", err)
		os.Exit(1)
	}
}

func extractCommand() *cli.Command {
	return &cli.Command{
		Name:  "extract",
		Usage: "Extract scope indexes for every matching bundle under root",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Print per-file results as JSON"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}
			cache, err := scopecache.New(cfg.Cache.MaxEntries)
			if err != nil {
				return err
			}
			results, err := batch.Run(c.Context, cfg, cache)
			if err != nil {
				return err
			}

			type fileReport struct {
				Path  string `json:"path"`
				Count int    `json:"scope_count,omitempty"`
				Error string `json:"error,omitempty"`
			}
			reports := make([]fileReport, 0, len(results))
			for _, r := range results {
				fr := fileReport{Path: r.Path}
				if r.Err != nil {
					fr.Error = r.Err.Error()
				} else if r.Index != nil {
					fr.Count = r.Index.Len()
				}
				reports = append(reports, fr)
			}

			if c.Bool("json") {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(reports)
			}
			for _, fr := range reports {
				if fr.Error != "" {
					fmt.Printf("%s: error: %s\n", fr.Path, fr.Error)
					continue
				}
				fmt.Printf("%s: %d scopes\n", fr.Path, fr.Count)
			}
			return nil
		},
	}
}

func resolveCommand() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Resolve a single (line, column) in a minified bundle to its original scope name",
		ArgsUsage: "<bundle.js> <line> <column>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 3 {
				return fmt.Errorf("usage: jsscopes resolve <bundle.js> <line> <column>")
			}
			path := c.Args().Get(0)
			var line, column int
			if _, err := fmt.Sscanf(c.Args().Get(1), "%d", &line); err != nil {
				return fmt.Errorf("invalid line %q: %w", c.Args().Get(1), err)
			}
			if _, err := fmt.Sscanf(c.Args().Get(2), "%d", &column); err != nil {
				return fmt.Errorf("invalid column %q: %w", c.Args().Get(2), err)
			}

			src, err := fileio.Load(path)
			if err != nil {
				return err
			}
			defer src.Close()

			prog, err := jsast.Parse(src.Text)
			if err != nil {
				return err
			}
			entries := scopecollect.Extract(prog)

			ctx, err := sourcectx.New(src.Text)
			if err != nil {
				return err
			}

			if mapData, err := os.ReadFile(path + ".map"); err == nil {
				if dm, err := sourcemap.Decode(mapData); err == nil {
					entries = resolver.New(ctx, dm).ResolveEntries(entries)
				}
			}

			idx, err := scopeindex.New(entries)
			if err != nil {
				return err
			}

			offset, ok := ctx.PositionToOffset(line, column)
			if !ok {
				return fmt.Errorf("position %d:%d is outside %s", line, column, path)
			}
			result := idx.Lookup(offset)

			switch result.Kind() {
			case scopeindex.NamedScope:
				fmt.Println(result.Text())
			case scopeindex.AnonymousScope:
				fmt.Println("(anonymous)")
			default:
				fmt.Println("(global)")
			}
			return nil
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Fuzzy-search a bundle's recovered scope names for a remembered term",
		ArgsUsage: "<bundle.js> <query>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: 10, Usage: "Maximum number of matches to print"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return fmt.Errorf("usage: jsscopes search <bundle.js> <query>")
			}
			path := c.Args().Get(0)
			query := c.Args().Get(1)

			src, err := fileio.Load(path)
			if err != nil {
				return err
			}
			defer src.Close()

			prog, err := jsast.Parse(src.Text)
			if err != nil {
				return err
			}
			entries := scopecollect.Extract(prog)

			if mapData, err := os.ReadFile(path + ".map"); err == nil {
				if dm, err := sourcemap.Decode(mapData); err == nil {
					if ctx, err := sourcectx.New(src.Text); err == nil {
						entries = resolver.New(ctx, dm).ResolveEntries(entries)
					}
				}
			}

			idx, err := scopeindex.New(entries)
			if err != nil {
				return err
			}

			matches := fuzzyname.Search(idx.Names(), query, c.Int("limit"))
			if len(matches) == 0 {
				fmt.Printf("no scope names in %s matched %q\n", path, query)
				return nil
			}
			for _, m := range matches {
				fmt.Printf("%s (%.2f)\n", m.Name, m.Score)
			}
			return nil
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Watch root for changes and re-extract affected bundles",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}
			cache, err := scopecache.New(cfg.Cache.MaxEntries)
			if err != nil {
				return err
			}

			w, err := watch.New(cfg, func(path string, event watch.EventType) {
				if event == watch.EventRemove {
					logging.Infof("removed: %s", path)
					return
				}
				src, err := fileio.Load(path)
				if err != nil {
					logging.Errorf("%s: %v", path, err)
					return
				}
				defer src.Close()
				prog, err := jsast.Parse(src.Text)
				if err != nil {
					logging.Errorf("%s: %v", path, err)
					return
				}
				idx, err := scopeindex.New(scopecollect.Extract(prog))
				if err != nil {
					logging.Errorf("%s: %v", path, err)
					return
				}
				cache.Put(src.Fingerprint, idx)
				logging.Infof("%s: re-extracted %d scopes", path, idx.Len())
			})
			if err != nil {
				return err
			}
			if err := w.Start(cfg.Project.Root); err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer cancel()
			<-ctx.Done()
			return w.Stop()
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the MCP server exposing scope-name resolution as a tool",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}
			cache, err := scopecache.New(cfg.Cache.MaxEntries)
			if err != nil {
				return err
			}
			br := &batchResolver{cfg: cfg, cache: cache}
			srv := mcpserver.New(br)
			srv.EnableSearch(br)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return srv.Run(ctx)
		},
	}
}

func cacheClearCommand() *cli.Command {
	return &cli.Command{
		Name:  "cache-clear",
		Usage: "Purge an in-memory scope-index cache built for this run; no on-disk cache is read or removed",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}
			cache, err := scopecache.New(cfg.Cache.MaxEntries)
			if err != nil {
				return err
			}
			cache.Purge()
			logging.Infof("cache cleared")
			return nil
		},
	}
}

// batchResolver implements mcpserver.Resolver on top of a plain
// extract-on-demand path, caching by content fingerprint the same way
// the extract and watch commands do.
type batchResolver struct {
	cfg   *config.Config
	cache *scopecache.Cache
}

// indexFor resolves path against the project root, loads it, and
// returns its (cached or freshly built) ScopeIndex alongside the
// loaded source. Callers must Close the returned source.
func (r *batchResolver) indexFor(path string) (*scopeindex.ScopeIndex, *fileio.Source, error) {
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(r.cfg.Project.Root, path)
	}

	src, err := fileio.Load(full)
	if err != nil {
		return nil, nil, err
	}

	idx, ok := r.cache.Get(src.Fingerprint)
	if !ok {
		prog, err := jsast.Parse(src.Text)
		if err != nil {
			src.Close()
			return nil, nil, err
		}
		entries := scopecollect.Extract(prog)
		if mapData, mapErr := os.ReadFile(full + ".map"); mapErr == nil {
			if dm, decErr := sourcemap.Decode(mapData); decErr == nil {
				if smCtx, ctxErr := sourcectx.New(src.Text); ctxErr == nil {
					entries = resolver.New(smCtx, dm).ResolveEntries(entries)
				}
			}
		}
		idx, err = scopeindex.New(entries)
		if err != nil {
			src.Close()
			return nil, nil, err
		}
		r.cache.Put(src.Fingerprint, idx)
	}
	return idx, src, nil
}

func (r *batchResolver) Resolve(path string, line, column int) (scopeindex.Result, error) {
	idx, src, err := r.indexFor(path)
	if err != nil {
		return scopeindex.Result{}, err
	}
	defer src.Close()

	ctx, err := sourcectx.New(src.Text)
	if err != nil {
		return scopeindex.Result{}, err
	}
	offset, ok := ctx.PositionToOffset(line, column)
	if !ok {
		return scopeindex.Result{}, fmt.Errorf("position %d:%d is outside %s", line, column, path)
	}
	return idx.Lookup(offset), nil
}

// Search fuzzy-matches query against path's recovered scope names,
// implementing mcpserver.NameSearcher.
func (r *batchResolver) Search(path, query string, limit int) ([]fuzzyname.Match, error) {
	idx, src, err := r.indexFor(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return fuzzyname.Search(idx.Names(), query, limit), nil
}
