package main

import (
	"fmt"
	"os"
	"path/filepath"

	"docwatch/internal/config"
	"docwatch/internal/logging"
)

// mustLoadConfig loads the repo config or exits.
func mustLoadConfig(repoRoot string) *config.Config {
	cfg, err := config.LoadConfig(repoRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// newLogger builds a logger from config with an optional level override.
func newLogger(cfg *config.Config, levelOverride string) *logging.Logger {
	level := cfg.Logging.Level
	if levelOverride != "" {
		level = levelOverride
	}
	return logging.NewLogger(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  logging.ParseLevel(level),
	})
}

// stateDir returns the per-repo state directory, .docwatch by default.
func stateDir(repoRoot string) string {
	return filepath.Join(repoRoot, ".docwatch")
}
