// Package source turns a configured transport.Source into a loader.
package source

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rshade/pagerkit/internal/logging"
	"github.com/rshade/pagerkit/internal/transport"
	"github.com/rshade/pagerkit/internal/transport/graphql"
	"github.com/rshade/pagerkit/internal/transport/rest"
	"github.com/rshade/pagerkit/internal/transport/rpc"
	"github.com/rshade/pagerkit/internal/transport/ws"
)

// Open returns the loader for src.Kind. The caller must Close it.
func Open[T any](ctx context.Context, src transport.Source) (transport.Loader[T], error) {
	log := logging.FromContext(ctx)

	norm, err := src.Normalize()
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("component", "source").
		Str("source", norm.Name).
		Str("kind", norm.Kind).
		Str("endpoint", norm.Endpoint).
		Int("page_size", norm.PageSize).
		Msg("opening source")

	client := &http.Client{Timeout: norm.Timeout}
	switch norm.Kind {
	case transport.KindREST, "":
		l, err := rest.New[T](norm, client)
		if err != nil {
			return nil, openErr(norm, err)
		}
		return l, nil
	case transport.KindGraphQL:
		l, err := graphql.New[T](norm, client, graphql.Options{})
		if err != nil {
			return nil, openErr(norm, err)
		}
		return l, nil
	case transport.KindGRPC:
		l, err := rpc.Dial[T](norm)
		if err != nil {
			return nil, openErr(norm, err)
		}
		return l, nil
	case transport.KindWebSocket:
		l, err := ws.New[T](norm)
		if err != nil {
			return nil, openErr(norm, err)
		}
		return l, nil
	default:
		return nil, openErr(norm, fmt.Errorf("%w: %q", transport.ErrUnknownKind, norm.Kind))
	}
}

func openErr(src transport.Source, err error) error {
	return fmt.Errorf("opening source %q: %w", src.Name, err)
}
