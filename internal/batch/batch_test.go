package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/jsscopes/internal/config"
	"github.com/standardbeagle/jsscopes/internal/scopecache"
)

func testConfig(t *testing.T, root string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Project.Root = root
	cfg.Extract.ParallelWorkers = 2
	cfg.Extract.MaxFileSize = 1024 * 1024
	cfg.Extract.RespectGitignore = false
	cfg.Include = []string{"**/*.js"}
	cfg.Exclude = nil
	return cfg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRun_ExtractsScopeIndexForMatchingFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.js"), "function named() { return 1; }")

	results, err := Run(context.Background(), testConfig(t, dir), nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, filepath.Join(dir, "app.js"), results[0].Path)
	require.NoError(t, results[0].Err)
	require.NotNil(t, results[0].Index)
}

func TestRun_IncludeExcludeGlobsFilterWalkedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.js"), "function f() {}")
	writeFile(t, filepath.Join(dir, "app.css"), "body{}")
	writeFile(t, filepath.Join(dir, "vendor", "lib.js"), "function g() {}")

	cfg := testConfig(t, dir)
	cfg.Exclude = []string{"vendor/**"}

	results, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, filepath.Join(dir, "app.js"), results[0].Path)
}

func TestRun_SkipsEmptyFileWithoutError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "empty.js"), "")

	results, err := Run(context.Background(), testConfig(t, dir), nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	require.Nil(t, results[0].Index)
}

func TestRun_FileOverMaxSizeReportsError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "big.js"), "function f() { return 1; }")

	cfg := testConfig(t, dir)
	cfg.Extract.MaxFileSize = 4

	results, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Error(t, results[0].Err)
}

func TestRun_UsesCacheOnSecondRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.js"), "function named() { return 1; }")

	cache, err := scopecache.New(16)
	require.NoError(t, err)

	cfg := testConfig(t, dir)
	results, err := Run(context.Background(), cfg, cache)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, 1, cache.Len())

	firstIdx := results[0].Index

	results, err = Run(context.Background(), cfg, cache)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Same(t, firstIdx, results[0].Index)
}

func TestRun_NoMatchingFilesReturnsEmptyResults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "readme.txt"), "hello")

	results, err := Run(context.Background(), testConfig(t, dir), nil)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestRun_ResolvesNamesAgainstAdjacentSourceMap(t *testing.T) {
	dir := t.TempDir()
	// "a" maps to original name "named" at generated column 9 (0-indexed),
	// the start of the identifier in "function a(){...}".
	writeFile(t, filepath.Join(dir, "app.js"), "function a(){return 1}")
	writeFile(t, filepath.Join(dir, "app.js.map"), `{
		"version": 3,
		"sources": ["app.js"],
		"names": ["named"],
		"mappings": "SAASA"
	}`)

	results, err := Run(context.Background(), testConfig(t, dir), nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	require.NotNil(t, results[0].Index)
	require.Equal(t, []string{"named"}, results[0].Index.Names())
}
