package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/pagerkit/internal/config"
)

// newDefaultTarget returns a Config with known non-zero values so tests can
// verify that absent overlay keys leave the original values intact.
func newDefaultTarget() *config.Config {
	return &config.Config{
		Paginator: config.PaginatorConfig{
			MergePolicy: "concat",
			MaxPages:    3,
		},
		Sources: map[string]config.SourceConfig{
			"existing": {Transport: "rest", Endpoint: "http://localhost/v1/items"},
		},
		Logging: config.LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Output: config.OutputConfig{
			DefaultFormat: "table",
		},
		Serve: config.ServeConfig{
			HTTPAddr: "127.0.0.1:8080",
		},
	}
}

// writeOverlay is a test helper that writes YAML content to a temp file
// and returns its path.
func writeOverlay(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestShallowMergeYAML_SingleKeyOverride(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
output:
  default_format: json
`)

	err := config.ShallowMergeYAML(target, overlay)
	require.NoError(t, err)

	assert.Equal(t, "json", target.Output.DefaultFormat)

	// Other sections should be unchanged.
	assert.Equal(t, "info", target.Logging.Level)
	assert.Equal(t, "concat", target.Paginator.MergePolicy)
	assert.Equal(t, 3, target.Paginator.MaxPages)
	require.Contains(t, target.Sources, "existing")
}

func TestShallowMergeYAML_SectionsReplacedWhole(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
paginator:
  merge_policy: distinct
sources:
  feed:
    transport: graphql
    endpoint: https://api.example.com/graphql
    page_size: 50
    timeout_seconds: 5
    headers:
      Authorization: Bearer xyz
`)

	err := config.ShallowMergeYAML(target, overlay)
	require.NoError(t, err)

	assert.Equal(t, "distinct", target.Paginator.MergePolicy)
	assert.Zero(t, target.Paginator.MaxPages, "absent fields of a replaced section reset")
	assert.NotContains(t, target.Sources, "existing", "sources map is replaced, not merged")

	require.Contains(t, target.Sources, "feed")
	feed := target.Sources["feed"]
	assert.Equal(t, "graphql", feed.Transport)
	assert.Equal(t, 50, feed.PageSize)
	assert.Equal(t, 5, feed.TimeoutSeconds)
	assert.Equal(t, "Bearer xyz", feed.Headers["Authorization"])
}

func TestShallowMergeYAML_UnknownKeysIgnored(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
plugins:
  aws: {}
serve:
  http_addr: 0.0.0.0:9000
  overlap: true
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))
	assert.Equal(t, "0.0.0.0:9000", target.Serve.HTTPAddr)
	assert.True(t, target.Serve.Overlap)
}

func TestShallowMergeYAML_NoChange(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty", content: ""},
		{name: "comment only", content: "# this file is intentionally empty\n# just comments\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := newDefaultTarget()
			want := newDefaultTarget()

			require.NoError(t, config.ShallowMergeYAML(target, writeOverlay(t, tt.content)))
			assert.Equal(t, want, target)
		})
	}
}

func TestShallowMergeYAML_Errors(t *testing.T) {
	t.Run("corrupted yaml", func(t *testing.T) {
		err := config.ShallowMergeYAML(newDefaultTarget(), writeOverlay(t, "{{{{not valid yaml at all"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing overlay YAML")
	})

	t.Run("missing file", func(t *testing.T) {
		err := config.ShallowMergeYAML(newDefaultTarget(), "/nonexistent/path/overlay.yaml")
		require.ErrorIs(t, err, os.ErrNotExist)
		assert.Contains(t, err.Error(), "reading overlay file")
	})

	t.Run("wrong section type", func(t *testing.T) {
		err := config.ShallowMergeYAML(newDefaultTarget(), writeOverlay(t, "paginator: [1, 2]\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `applying overlay section "paginator"`)
	})

	t.Run("top level is a list", func(t *testing.T) {
		err := config.ShallowMergeYAML(newDefaultTarget(), writeOverlay(t, "- paginator\n- sources\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "top level must be a mapping")
	})

	t.Run("nil target", func(t *testing.T) {
		require.Error(t, config.ShallowMergeYAML(nil, "x"))
	})
}
