package config

import (
	"errors"
	"fmt"
	"os"
)

// Loaded is the outcome of one config load: the resolved path, the
// effective values, and any non-fatal warnings collected on the way.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool
}

// Load resolves the hark config path, reads the file, and parses it on
// top of the built-in defaults. A missing file is not an error: the
// defaults apply and a warning records the path that was tried.
func Load(explicitPath string) (Loaded, error) {
	resolvedPath, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	content, err := os.ReadFile(resolvedPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultsFor(resolvedPath), nil
		}
		return Loaded{}, fmt.Errorf("read config %q: %w", resolvedPath, err)
	}

	cfg, warnings, err := Parse(string(content), Default())
	if err != nil {
		return Loaded{}, fmt.Errorf("parse config %q: %w", resolvedPath, err)
	}

	return Loaded{
		Path:     resolvedPath,
		Config:   cfg,
		Warnings: warnings,
		Exists:   true,
	}, nil
}

// defaultsFor is the missing-file outcome: built-in values plus a
// warning naming the path that was not found.
func defaultsFor(path string) Loaded {
	return Loaded{
		Path:   path,
		Config: Default(),
		Warnings: []Warning{{
			Message: fmt.Sprintf("config file %q not found; using defaults", path),
		}},
		Exists: false,
	}
}
