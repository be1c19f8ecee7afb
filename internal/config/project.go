package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/rshade/pagerkit/internal/logging"
)

const projectDirName = ".pagerkit"

//nolint:gochecknoglobals // Set once per CLI invocation by the root command.
var (
	resolvedProjectDir   string
	resolvedProjectDirMu sync.RWMutex
)

// SetResolvedProjectDir records the project directory chosen for this run.
func SetResolvedProjectDir(dir string) {
	resolvedProjectDirMu.Lock()
	defer resolvedProjectDirMu.Unlock()
	resolvedProjectDir = dir
}

// GetResolvedProjectDir returns the directory recorded by SetResolvedProjectDir.
func GetResolvedProjectDir() string {
	resolvedProjectDirMu.RLock()
	defer resolvedProjectDirMu.RUnlock()
	return resolvedProjectDir
}

// ResolveProjectDir determines the project-local .pagerkit directory path.
// It checks (in order):
//  1. flagValue (--project-dir CLI flag)
//  2. PAGERKIT_PROJECT_DIR env var
//  3. the nearest ancestor of startDir containing a .pagerkit directory
//
// Returns the absolute path to the .pagerkit directory, or "" when none is
// found. Nothing is created.
func ResolveProjectDir(ctx context.Context, flagValue, startDir string) string {
	if flagValue != "" {
		return toAbsProjectDir(ctx, flagValue)
	}

	if envDir := os.Getenv("PAGERKIT_PROJECT_DIR"); envDir != "" {
		return toAbsProjectDir(ctx, envDir)
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, projectDirName)
		if info, statErr := os.Stat(candidate); statErr == nil && info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// NewWithProjectDir returns New() with projectDir/config.yaml layered on
// top, section by section. Environment overrides win over both. A missing
// overlay is ignored and a broken one is logged and skipped.
func NewWithProjectDir(ctx context.Context, projectDir string) *Config {
	base := New()
	if projectDir == "" {
		return base
	}

	overlayPath := filepath.Join(projectDir, configFileName)
	if _, err := os.Stat(overlayPath); err != nil {
		return base
	}

	// Sections are replaced, never mutated, so a shallow copy keeps base intact.
	merged := *base
	if err := ShallowMergeYAML(&merged, overlayPath); err != nil {
		logging.FromContext(ctx).Warn().
			Str("component", "config").
			Err(err).
			Str("overlay_path", overlayPath).
			Msg("ignoring broken project config")
		return base
	}
	merged.applyEnv()
	return &merged
}

// toAbsProjectDir converts dir to an absolute path and appends ".pagerkit"
// unless it already ends with it.
func toAbsProjectDir(ctx context.Context, dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		logger := logging.FromContext(ctx)
		logger.Warn().
			Str("component", "config").
			Err(err).
			Str("dir", dir).
			Msg("failed to resolve absolute path for project directory")
		abs = dir
	}

	if filepath.Base(abs) == projectDirName {
		return abs
	}

	return filepath.Join(abs, projectDirName)
}
