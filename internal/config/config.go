// Package config loads jsscopes' project configuration from a ".jsscopes.kdl"
// file, following the same KDL-backed, section-by-section parsing style the
// wider code-intelligence tooling in this codebase uses for its own config.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Config controls how the batch extractor and CLI discover and process
// minified sources.
type Config struct {
	Version int
	Project Project
	Extract Extract
	Cache   Cache
	Include []string
	Exclude []string
}

// Project describes the root of the tree being scanned for minified bundles.
type Project struct {
	Root string
	Name string
}

// Extract controls batch-extraction behavior.
type Extract struct {
	MaxFileSize      int64 // bytes; bundles larger than this are skipped
	ParallelWorkers  int   // 0: ValidateAndSetDefaults sets max(1, NumCPU-1); batch.Run treats 0 as 1
	RespectGitignore bool
	WatchMode        bool
	WatchDebounceMs  int
}

// Cache configures the scope-index cache. MaxEntries sizes the in-memory
// LRU; Dir and TTLSeconds are loaded and validated but not read by the
// cache itself.
type Cache struct {
	Dir          string
	MaxEntries   int
	TTLSeconds   int
}

// Default returns a Config populated with the same defaults the CLI falls
// back to when no ".jsscopes.kdl" file is present.
func Default() *Config {
	root, err := os.Getwd()
	if err != nil || root == "" {
		root = "."
	}
	return &Config{
		Version: 1,
		Project: Project{Root: root},
		Extract: Extract{
			MaxFileSize:      32 * 1024 * 1024,
			ParallelWorkers:  runtime.NumCPU(),
			RespectGitignore: true,
			WatchDebounceMs:  200,
		},
		Cache: Cache{
			Dir:        ".jsscopes-cache",
			MaxEntries: 512,
			TTLSeconds: 3600,
		},
		Exclude: getDefaultExclusions(),
	}
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Extract.MaxFileSize <= 0 {
		return fmt.Errorf("extract.max_file_size must be positive, got %d", c.Extract.MaxFileSize)
	}
	if c.Extract.ParallelWorkers < 0 {
		return fmt.Errorf("extract.parallel_workers must be >= 0, got %d", c.Extract.ParallelWorkers)
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must be >= 0, got %d", c.Cache.MaxEntries)
	}
	return nil
}

// Load reads configuration from the ".jsscopes.kdl" file in the directory
// named by path, or in the directory containing path when path itself ends
// in ".kdl", falling back to Default() when none is found. Only a file
// named ".jsscopes.kdl" is read, whatever base name path gives.
func Load(path string) (*Config, error) {
	dir := path
	if filepath.Ext(path) == ".kdl" {
		dir = filepath.Dir(path)
	}
	return LoadWithRoot(path, dir)
}

// LoadWithRoot merges a user-global "~/.jsscopes.kdl" with a project-local
// one found under rootDir, project settings taking precedence but global
// exclusions always preserved. Falls back to Default() if neither exists.
func LoadWithRoot(path string, rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}

	var baseConfig *Config
	if homeDir, err := os.UserHomeDir(); err == nil {
		if globalCfg, err := LoadKDL(homeDir); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	var projectConfig *Config
	if kdlCfg, err := LoadKDL(searchDir); err != nil {
		return nil, err
	} else if kdlCfg != nil {
		projectConfig = kdlCfg
	}

	switch {
	case baseConfig != nil && projectConfig != nil:
		return mergeConfigs(baseConfig, projectConfig), nil
	case projectConfig != nil:
		return projectConfig, nil
	case baseConfig != nil:
		baseConfig.Project.Root = searchDir
		return baseConfig, nil
	}

	cfg := Default()
	cfg.EnrichExclusionsWithBuildArtifacts()
	return cfg, nil
}

// mergeConfigs merges a base config with a project config. The project
// config takes precedence for everything except exclusions, which are
// unioned so a project's ".jsscopes.kdl" can only add exclusions, never
// silently drop the built-in ones.
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	if len(base.Exclude) > 0 {
		excludeMap := make(map[string]bool, len(base.Exclude)+len(project.Exclude))
		for _, pattern := range base.Exclude {
			excludeMap[pattern] = true
		}
		for _, pattern := range project.Exclude {
			excludeMap[pattern] = true
		}
		merged.Exclude = make([]string, 0, len(excludeMap))
		for pattern := range excludeMap {
			merged.Exclude = append(merged.Exclude, pattern)
		}
	}

	if len(project.Include) == 0 && len(base.Include) > 0 {
		merged.Include = base.Include
	}

	return &merged
}

// EnrichExclusionsWithBuildArtifacts detects build output directories under
// the project root and folds them into the exclusion list.
func (c *Config) EnrichExclusionsWithBuildArtifacts() {
	if c.Project.Root == "" {
		return
	}

	detector := NewBuildArtifactDetector(c.Project.Root)
	detected := detector.DetectOutputDirectories()
	if len(detected) > 0 {
		c.Exclude = append(c.Exclude, detected...)
		c.Exclude = DeduplicatePatterns(c.Exclude)
	}
}

func getDefaultExclusions() []string {
	return []string{
		"**/.*/**",
		"**/node_modules/**",
		"**/vendor/**",
		"**/dist/**",
		"**/build/**",
		"**/*.min.js.map",
	}
}
