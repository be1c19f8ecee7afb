package cli_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/rshade/pagerkit/internal/cli"
	"github.com/rshade/pagerkit/internal/config"
	"github.com/rshade/pagerkit/internal/demo"
)

// setupCLITest isolates configuration and global state for one test.
func setupCLITest(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("PAGERKIT_HOME", home)
	t.Setenv("PAGERKIT_PROJECT_DIR", "")
	t.Setenv("PAGERKIT_LOG_LEVEL", "error")
	t.Setenv("PAGERKIT_LOG_FORMAT", "")
	t.Setenv("PAGERKIT_OUTPUT_FORMAT", "")
	t.Cleanup(func() {
		config.ResetGlobalConfigForTest()
		config.SetResolvedProjectDir("")
	})
	return home
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func startDemo(t *testing.T, size int, opts demo.Options) string {
	t.Helper()
	srv := httptest.NewServer(demo.NewServer(demo.NewCatalog(size), opts, zerolog.Nop()).Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

type jsonResult struct {
	Query      string      `json:"query"`
	Items      []demo.Item `json:"items"`
	Partial    bool        `json:"partial"`
	Pagination struct {
		TotalItems  int  `json:"total_items"`
		PagesLoaded int  `json:"pages_loaded"`
		Exhausted   bool `json:"exhausted"`
	} `json:"pagination"`
	Stats struct {
		Dispatched int `json:"dispatched"`
		Degraded   int `json:"degraded"`
	} `json:"stats"`
}

func fetchJSON(t *testing.T, args ...string) []jsonResult {
	t.Helper()
	out, err := execute(t, append([]string{"fetch", "-o", "json"}, args...)...)
	require.NoError(t, err, out)

	var results []jsonResult
	require.NoError(t, json.Unmarshal([]byte(out), &results), out)
	return results
}

func ids(items []demo.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestFetch_TableWalksAllPages(t *testing.T) {
	setupCLITest(t)
	base := startDemo(t, 23, demo.Options{})

	out, err := execute(t, "fetch", "--endpoint", base+demo.PathItems, "--page-size", "10")
	require.NoError(t, err, out)

	assert.Contains(t, out, "All items")
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "item-0001")
	assert.Contains(t, out, "item-0023")
	assert.Contains(t, out, "Showing 23 of 23 items, 3 pages loaded, end of results")
}

func TestFetch_ConcurrentQueries(t *testing.T) {
	setupCLITest(t)
	base := startDemo(t, 50, demo.Options{})

	results := fetchJSON(t, "--endpoint", base+demo.PathItems, "--page-size", "4",
		"-q", "message", "-q", "LAUNCH")
	require.Len(t, results, 2)

	assert.Equal(t, "message", results[0].Query)
	assert.Len(t, results[0].Items, 10)
	assert.Equal(t, 3, results[0].Pagination.PagesLoaded)
	assert.True(t, results[0].Pagination.Exhausted)
	for _, it := range results[0].Items {
		assert.Equal(t, "message", it.Kind)
	}

	assert.Equal(t, "LAUNCH", results[1].Query)
	assert.Len(t, results[1].Items, 5)
	assert.Equal(t, 2, results[1].Pagination.PagesLoaded)
}

func TestFetch_MaxPagesYAML(t *testing.T) {
	setupCLITest(t)
	base := startDemo(t, 50, demo.Options{})

	out, err := execute(t, "fetch", "--endpoint", base+demo.PathItems,
		"--page-size", "5", "--max-pages", "2", "-o", "yaml")
	require.NoError(t, err, out)

	var results []struct {
		Items      []demo.Item `yaml:"items"`
		Pagination struct {
			PagesLoaded int  `yaml:"pages_loaded"`
			Exhausted   bool `yaml:"exhausted"`
		} `yaml:"pagination"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &results), out)
	require.Len(t, results, 1)
	assert.Len(t, results[0].Items, 10)
	assert.Equal(t, 2, results[0].Pagination.PagesLoaded)
	assert.False(t, results[0].Pagination.Exhausted)
}

func TestFetch_MergePolicies(t *testing.T) {
	setupCLITest(t)
	base := startDemo(t, 20, demo.Options{Overlap: true})

	want := ids(demo.NewCatalog(20).Filter(""))

	distinct := fetchJSON(t, "--endpoint", base+demo.PathItems, "--page-size", "5", "--merge", "distinct")
	require.Len(t, distinct, 1)
	if diff := cmp.Diff(want, ids(distinct[0].Items)); diff != "" {
		t.Errorf("distinct merge mismatch (-want +got):\n%s", diff)
	}

	concat := fetchJSON(t, "--endpoint", base+demo.PathItems, "--page-size", "5", "--merge", "concat")
	require.Len(t, concat, 1)
	assert.Greater(t, len(concat[0].Items), 20, "overlapping pages repeat items under concat")
}

func TestFetch_StopsAfterFailedPage(t *testing.T) {
	setupCLITest(t)
	base := startDemo(t, 30, demo.Options{FailEvery: 2})

	results := fetchJSON(t, "--endpoint", base+demo.PathItems, "--page-size", "10")
	require.Len(t, results, 1)

	r := results[0]
	assert.True(t, r.Partial)
	assert.Len(t, r.Items, 10)
	assert.Equal(t, 1, r.Pagination.PagesLoaded)
	assert.False(t, r.Pagination.Exhausted)
	assert.Equal(t, 1, r.Stats.Degraded)
	assert.Equal(t, 2, r.Stats.Dispatched)

	out, err := execute(t, "fetch", "--endpoint", base+demo.PathItems, "--page-size", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "stopped after a failed page")
}

func TestFetch_WindowAndSort(t *testing.T) {
	setupCLITest(t)
	base := startDemo(t, 23, demo.Options{})

	results := fetchJSON(t, "--endpoint", base+demo.PathItems,
		"--sort", "created_at:desc", "--limit", "3")
	require.Len(t, results, 1)
	assert.Equal(t, []string{"item-0023", "item-0022", "item-0021"}, ids(results[0].Items))
	assert.Equal(t, 23, results[0].Pagination.TotalItems)

	results = fetchJSON(t, "--endpoint", base+demo.PathItems, "--page", "3", "--per-page", "10")
	assert.Equal(t, []string{"item-0021", "item-0022", "item-0023"}, ids(results[0].Items))
}

func TestFetch_Transports(t *testing.T) {
	setupCLITest(t)
	base := startDemo(t, 12, demo.Options{})
	wsBase := "ws" + strings.TrimPrefix(base, "http")

	tests := []struct {
		name      string
		transport string
		endpoint  string
	}{
		{name: "rest", transport: "rest", endpoint: base + demo.PathItems},
		{name: "graphql", transport: "graphql", endpoint: base + demo.PathGraphQL},
		{name: "ws", transport: "ws", endpoint: wsBase + demo.PathWS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := fetchJSON(t, "--transport", tt.transport, "--endpoint", tt.endpoint,
				"--page-size", "5", "-q", "project")
			require.Len(t, results, 1)
			assert.Equal(t, []string{"item-0003", "item-0008"}, ids(results[0].Items))
			assert.True(t, results[0].Pagination.Exhausted)
		})
	}
}

func TestFetch_NamedSourceFromConfigFile(t *testing.T) {
	setupCLITest(t)
	base := startDemo(t, 8, demo.Options{})

	path := t.TempDir() + "/pagerkit.yaml"
	cfg := config.Default()
	cfg.Sources["local"] = config.SourceConfig{Transport: "graphql", Endpoint: base + demo.PathGraphQL, PageSize: 3}
	require.NoError(t, cfg.Save(path))

	out, err := execute(t, "--config", path, "fetch", "--source", "local", "-o", "json")
	require.NoError(t, err, out)

	var results []jsonResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Len(t, results[0].Items, 8)
	assert.Equal(t, 3, results[0].Pagination.PagesLoaded)
}

func TestFetch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "unknown source", args: []string{"--source", "nope"}, wantMsg: `unknown source "nope"`},
		{name: "bad output", args: []string{"-o", "xml"}, wantMsg: "output must be table, json or yaml"},
		{name: "bad sort field", args: []string{"--sort", "price"}, wantMsg: "invalid sort field"},
		{name: "bad sort order", args: []string{"--sort", "id:up"}, wantMsg: "sort order must be"},
		{name: "negative max pages", args: []string{"--max-pages", "-1"}, wantMsg: "max-pages must not be negative"},
		{name: "page and offset", args: []string{"--page", "2", "--per-page", "5", "--offset", "3"}, wantMsg: "mutually exclusive"},
		{name: "bad header", args: []string{"-H", "novalue"}, wantMsg: "invalid header"},
		{name: "bad merge", args: []string{"--merge", "zip"}, wantMsg: "zip"},
		{name: "bad transport", args: []string{"--transport", "ftp"}, wantMsg: "unknown transport kind"},
		{name: "page size too big", args: []string{"--page-size", "1000"}, wantMsg: "page size must be between"},
		{name: "positional args", args: []string{"extra"}, wantMsg: "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupCLITest(t)
			out, err := execute(t, append([]string{"fetch"}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error()+out, tt.wantMsg)
		})
	}
}

func TestBrowse_PlainFallsBackToFetch(t *testing.T) {
	setupCLITest(t)
	base := startDemo(t, 30, demo.Options{})

	out, err := execute(t, "browse", "--plain", "--endpoint", base+demo.PathItems, "-q", "message")
	require.NoError(t, err, out)
	assert.Contains(t, out, `Query "message"`)
	assert.Contains(t, out, "Showing 6 of 6 items")
}
