package cli

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/pagerkit/internal/config"
	"github.com/rshade/pagerkit/internal/demo"
	"github.com/rshade/pagerkit/internal/source"
	"github.com/rshade/pagerkit/internal/transport"
)

func TestBackend_ServesUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(zerolog.Nop().WithContext(context.Background()))
	defer cancel()

	b := newBackend(ctx, serveOptions{httpAddr: "127.0.0.1:0", grpcAddr: "127.0.0.1:0", size: 9})
	require.NoError(t, b.listen())

	var out bytes.Buffer
	b.printEndpoints(&out)
	assert.Contains(t, out.String(), "Serving 9 demo items")
	assert.Contains(t, out.String(), "http://"+b.httpAddr()+demo.PathItems)
	assert.Contains(t, out.String(), "grpc     "+b.grpcAddr())

	done := make(chan error, 1)
	go func() { done <- b.run(ctx) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+b.httpAddr()+demo.PathHealth, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	t.Run("grpc", func(t *testing.T) {
		loader, err := source.Open[demo.Item](ctx, transport.Source{
			Name:     "grpc",
			Kind:     transport.KindGRPC,
			Endpoint: b.grpcAddr(),
			PageSize: 4,
		})
		require.NoError(t, err)
		defer func() { _ = loader.Close() }()

		page, err := loader.FetchFirst(ctx, "")
		require.NoError(t, err)
		assert.Len(t, page.Items, 4)
		assert.True(t, page.HasNext())

		next, err := loader.FetchNext(ctx, page.NextCursor)
		require.NoError(t, err)
		assert.Equal(t, "item-0005", next.Items[0].ID)
	})

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("backend did not shut down")
	}
}

func TestServeOptions_Merge(t *testing.T) {
	cmd := NewServeCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--size", "12", "--latency", "50ms"}))

	opts := &serveOptions{size: 12, latency: 50 * time.Millisecond}
	got := opts.merge(cmd, config.ServeConfig{
		HTTPAddr:  "127.0.0.1:1",
		Size:      100,
		FailEvery: 3,
		LatencyMS: 10,
	})

	assert.Equal(t, 12, got.size)
	assert.Equal(t, 50*time.Millisecond, got.latency)
	assert.Equal(t, "127.0.0.1:1", got.httpAddr)
	assert.Equal(t, 3, got.failEvery)
}
