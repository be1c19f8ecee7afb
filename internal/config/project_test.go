package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/pagerkit/internal/config"
)

func TestResolveProjectDir_FlagOverride(t *testing.T) {
	t.Setenv("PAGERKIT_PROJECT_DIR", "")

	flagDir := t.TempDir()

	got := config.ResolveProjectDir(context.Background(), flagDir, "/does/not/matter")

	assert.Equal(t, filepath.Join(flagDir, ".pagerkit"), got)
	assert.True(t, filepath.IsAbs(got), "returned path must be absolute")
}

func TestResolveProjectDir_FlagOverridesEnv(t *testing.T) {
	envDir := t.TempDir()
	flagDir := t.TempDir()
	t.Setenv("PAGERKIT_PROJECT_DIR", envDir)

	got := config.ResolveProjectDir(context.Background(), flagDir, "/does/not/matter")

	assert.Equal(t, filepath.Join(flagDir, ".pagerkit"), got)
}

func TestResolveProjectDir_EnvVarOverride(t *testing.T) {
	envDir := t.TempDir()
	t.Setenv("PAGERKIT_PROJECT_DIR", envDir)

	got := config.ResolveProjectDir(context.Background(), "", "/does/not/matter")

	assert.Equal(t, filepath.Join(envDir, ".pagerkit"), got)
}

func TestResolveProjectDir_NoDoubleAppend(t *testing.T) {
	t.Setenv("PAGERKIT_PROJECT_DIR", "")
	dir := filepath.Join(t.TempDir(), ".pagerkit")

	got := config.ResolveProjectDir(context.Background(), dir, "")

	assert.Equal(t, dir, got)
}

func TestResolveProjectDir_WalkUp(t *testing.T) {
	t.Setenv("PAGERKIT_PROJECT_DIR", "")

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".pagerkit"), 0o750))
	subDir := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(subDir, 0o750))

	got := config.ResolveProjectDir(context.Background(), "", subDir)

	assert.Equal(t, filepath.Join(root, ".pagerkit"), got)
}

func TestResolveProjectDir_NoProject(t *testing.T) {
	t.Setenv("PAGERKIT_PROJECT_DIR", "")

	got := config.ResolveProjectDir(context.Background(), "", t.TempDir())

	assert.Empty(t, got, "should return empty string when no project found")
}

func TestNewWithProjectDir(t *testing.T) {
	t.Setenv("PAGERKIT_HOME", t.TempDir())
	t.Setenv("PAGERKIT_LOG_LEVEL", "")
	t.Setenv("PAGERKIT_LOG_FORMAT", "")
	t.Setenv("PAGERKIT_OUTPUT_FORMAT", "")

	t.Run("empty dir gives global config", func(t *testing.T) {
		cfg := config.NewWithProjectDir(context.Background(), "")
		assert.Equal(t, config.Default().Paginator, cfg.Paginator)
	})

	t.Run("missing overlay gives global config", func(t *testing.T) {
		cfg := config.NewWithProjectDir(context.Background(), t.TempDir())
		assert.Equal(t, config.FormatTable, cfg.Output.DefaultFormat)
	})

	t.Run("overlay applied", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
			[]byte("paginator:\n  merge_policy: distinct\n  max_pages: 4\n"), 0o600))

		cfg := config.NewWithProjectDir(context.Background(), dir)
		assert.Equal(t, "distinct", cfg.Paginator.MergePolicy)
		assert.Equal(t, 4, cfg.Paginator.MaxPages)
		assert.Contains(t, cfg.Sources, config.DefaultSourceName)
	})

	t.Run("broken overlay falls back", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("{{{"), 0o600))

		cfg := config.NewWithProjectDir(context.Background(), dir)
		assert.Equal(t, config.Default().Paginator, cfg.Paginator)
	})
}

func TestResolvedProjectDir(t *testing.T) {
	t.Cleanup(func() { config.SetResolvedProjectDir("") })

	assert.Empty(t, config.GetResolvedProjectDir())
	config.SetResolvedProjectDir("/work/.pagerkit")
	assert.Equal(t, "/work/.pagerkit", config.GetResolvedProjectDir())
}
