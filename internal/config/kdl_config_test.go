package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKDL_Defaults(t *testing.T) {
	cfg, err := parseKDL("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.True(t, cfg.Extract.RespectGitignore)
	assert.Equal(t, int64(32*1024*1024), cfg.Extract.MaxFileSize)
	assert.Equal(t, ".jsscopes-cache", cfg.Cache.Dir)
}

func TestParseKDL_ExtractSection(t *testing.T) {
	kdlContent := `
extract {
    max_file_size "10MB"
    parallel_workers 8
    respect_gitignore false
    watch_mode true
    watch_debounce_ms 500
}
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, int64(10*1024*1024), cfg.Extract.MaxFileSize)
	assert.Equal(t, 8, cfg.Extract.ParallelWorkers)
	assert.False(t, cfg.Extract.RespectGitignore)
	assert.True(t, cfg.Extract.WatchMode)
	assert.Equal(t, 500, cfg.Extract.WatchDebounceMs)
}

func TestParseKDL_CacheSection(t *testing.T) {
	kdlContent := `
cache {
    dir ".cache/jsscopes"
    max_entries 1024
    ttl_seconds 7200
}
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)

	assert.Equal(t, ".cache/jsscopes", cfg.Cache.Dir)
	assert.Equal(t, 1024, cfg.Cache.MaxEntries)
	assert.Equal(t, 7200, cfg.Cache.TTLSeconds)
}

func TestParseKDL_IncludeExclude(t *testing.T) {
	kdlContent := `
include "dist/**/*.js"
exclude "**/*.test.js" "**/*.spec.js"
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)

	assert.Equal(t, []string{"dist/**/*.js"}, cfg.Include)
	assert.Contains(t, cfg.Exclude, "**/*.test.js")
	assert.Contains(t, cfg.Exclude, "**/*.spec.js")
}

func TestParseKDL_InvalidDocument(t *testing.T) {
	_, err := parseKDL("extract {")
	assert.Error(t, err)
}

func TestParseSize(t *testing.T) {
	cases := map[string]int64{
		"10B":  10,
		"1KB":  1024,
		"5MB":  5 * 1024 * 1024,
		"2GB":  2 * 1024 * 1024 * 1024,
		"1024": 1024,
	}
	for in, want := range cases {
		got, err := parseSize(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
