package transport_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/pagerkit/internal/paginator"
	"github.com/rshade/pagerkit/internal/transport"
)

func TestSource_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		src      transport.Source
		wantSize int
		wantErr  error
	}{
		{
			name:     "defaults",
			src:      transport.Source{Endpoint: "http://localhost"},
			wantSize: transport.DefaultPageSize,
		},
		{
			name:     "explicit size",
			src:      transport.Source{Endpoint: "http://localhost", PageSize: 10},
			wantSize: 10,
		},
		{
			name:    "missing endpoint",
			src:     transport.Source{Name: "feed"},
			wantErr: transport.ErrInvalidEndpoint,
		},
		{
			name:    "page size too large",
			src:     transport.Source{Endpoint: "http://localhost", PageSize: 501},
			wantErr: transport.ErrInvalidPageSize,
		},
		{
			name:    "negative page size",
			src:     transport.Source{Endpoint: "http://localhost", PageSize: -1},
			wantErr: transport.ErrInvalidPageSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.src.Normalize()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSize, got.PageSize)
			assert.Equal(t, transport.DefaultTimeout, got.Timeout)
		})
	}

	got, err := transport.Source{Endpoint: "x", Timeout: time.Second}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, time.Second, got.Timeout)
}

func TestCursorCodec(t *testing.T) {
	type state struct {
		Query string `json:"q"`
		After string `json:"after"`
	}

	c, err := transport.EncodeCursor(state{Query: "go lang", After: "abc=="})
	require.NoError(t, err)
	assert.False(t, c.IsNone())
	assert.NotContains(t, string(c), "/")
	assert.NotContains(t, string(c), "+")

	var got state
	require.NoError(t, transport.DecodeCursor(c, &got))
	assert.Equal(t, state{Query: "go lang", After: "abc=="}, got)

	require.ErrorIs(t, transport.DecodeCursor(paginator.NoCursor, &got), transport.ErrInvalidCursor)
	require.ErrorIs(t, transport.DecodeCursor("%%%", &got), transport.ErrInvalidCursor)
	require.ErrorIs(t, transport.DecodeCursor("bm90LWpzb24", &got), transport.ErrInvalidCursor)
}
