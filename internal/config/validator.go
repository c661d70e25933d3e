package config

import (
	"errors"
	"fmt"
	"runtime"

	jsserrors "github.com/standardbeagle/jsscopes/internal/errors"
)

// Validator validates configuration and sets smart defaults.
type Validator struct{}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateProjectConfig(&cfg.Project); err != nil {
		return jsserrors.NewConfigError("project", "", err)
	}
	if err := v.validateExtractConfig(&cfg.Extract); err != nil {
		return jsserrors.NewConfigError("extract", "", err)
	}
	if err := v.validateCacheConfig(&cfg.Cache); err != nil {
		return jsserrors.NewConfigError("cache", "", err)
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateProjectConfig(project *Project) error {
	if project.Root == "" {
		return errors.New("project root cannot be empty")
	}
	return nil
}

func (v *Validator) validateExtractConfig(ex *Extract) error {
	if ex.MaxFileSize <= 0 {
		return fmt.Errorf("MaxFileSize must be positive, got %d", ex.MaxFileSize)
	}
	if ex.MaxFileSize > 256*1024*1024 {
		return fmt.Errorf("MaxFileSize should not exceed 256MB, got %d", ex.MaxFileSize)
	}
	if ex.ParallelWorkers < 0 {
		return fmt.Errorf("ParallelWorkers cannot be negative, got %d", ex.ParallelWorkers)
	}
	if ex.WatchDebounceMs < 0 {
		return fmt.Errorf("WatchDebounceMs cannot be negative, got %d", ex.WatchDebounceMs)
	}
	return nil
}

func (v *Validator) validateCacheConfig(c *Cache) error {
	if c.MaxEntries < 0 {
		return fmt.Errorf("MaxEntries cannot be negative, got %d", c.MaxEntries)
	}
	if c.TTLSeconds < 0 {
		return fmt.Errorf("TTLSeconds cannot be negative, got %d", c.TTLSeconds)
	}
	return nil
}

// setSmartDefaults fills in zero-valued fields with values derived from the
// running system, leaving explicit user configuration untouched.
func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.Extract.ParallelWorkers == 0 {
		numCPU := runtime.NumCPU()
		cfg.Extract.ParallelWorkers = max(1, numCPU-1)
	}
	if cfg.Extract.WatchDebounceMs == 0 {
		cfg.Extract.WatchDebounceMs = 200
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = ".jsscopes-cache"
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = 512
	}
}

// ValidateConfig is a convenience function for quick validation.
func ValidateConfig(cfg *Config) error {
	validator := NewValidator()
	return validator.ValidateAndSetDefaults(cfg)
}
