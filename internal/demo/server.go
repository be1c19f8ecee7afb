package demo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/rshade/pagerkit/internal/paginator"
	"github.com/rshade/pagerkit/internal/transport"
	"github.com/rshade/pagerkit/internal/transport/graphql"
	"github.com/rshade/pagerkit/internal/transport/rest"
	"github.com/rshade/pagerkit/internal/transport/rpc"
	"github.com/rshade/pagerkit/internal/transport/ws"
)

// HTTP routes served by Handler.
const (
	PathItems   = "/v1/items"
	PathGraphQL = "/graphql"
	PathWS      = "/ws"
	PathHealth  = "/healthz"
)

// ErrInjected is returned for requests failed on purpose by Options.FailEvery.
var ErrInjected = errors.New("demo: injected failure")

// Options tune the demo backend.
type Options struct {
	// Overlap makes consecutive pages share one item.
	Overlap bool
	// FailEvery fails every n-th request when > 0.
	FailEvery int
	// Latency delays every response.
	Latency time.Duration
}

// Server answers page requests from a Catalog over REST, GraphQL, WebSocket
// and gRPC.
type Server struct {
	catalog  *Catalog
	opts     Options
	logger   zerolog.Logger
	requests atomic.Int64
	upgrader websocket.Upgrader
}

// NewServer returns a server for catalog. A nil catalog gets the default one.
func NewServer(catalog *Catalog, opts Options, logger zerolog.Logger) *Server {
	if catalog == nil {
		catalog = NewCatalog(0)
	}
	return &Server{
		catalog: catalog,
		opts:    opts,
		logger:  logger.With().Str("component", "demo").Logger(),
		upgrader: websocket.Upgrader{
			// The demo is meant for local use only.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Requests reports how many page requests the server has answered.
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+PathItems, s.serveREST)
	mux.HandleFunc("POST "+PathGraphQL, s.serveGraphQL)
	mux.HandleFunc("GET "+PathWS, s.serveWS)
	mux.HandleFunc("GET "+PathHealth, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

// RegisterGRPC registers the page service on g.
func (s *Server) RegisterGRPC(g grpc.ServiceRegistrar) {
	rpc.RegisterPageServer(g, s)
}

// lookup is shared by all transports.
func (s *Server) lookup(ctx context.Context, query string, cursor paginator.Cursor, limit int) ([]Item, paginator.Cursor, error) {
	n := s.requests.Add(1)

	if s.opts.Latency > 0 {
		t := time.NewTimer(s.opts.Latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, paginator.NoCursor, ctx.Err()
		case <-t.C:
		}
	}
	if s.opts.FailEvery > 0 && n%int64(s.opts.FailEvery) == 0 {
		s.logger.Debug().Int64("request", n).Msg("injecting failure")
		return nil, paginator.NoCursor, fmt.Errorf("%w: request %d", ErrInjected, n)
	}
	if limit <= 0 {
		limit = transport.DefaultPageSize
	}
	limit = min(limit, transport.MaxPageSize)

	items, next, err := s.catalog.Lookup(query, cursor, limit, PageOptions{Overlap: s.opts.Overlap})
	if err != nil {
		return nil, paginator.NoCursor, err
	}
	s.logger.Debug().
		Int64("request", n).
		Str("query", query).
		Bool("continuation", !cursor.IsNone()).
		Int("items", len(items)).
		Bool("has_next", !next.IsNone()).
		Msg("page served")
	return items, next, nil
}

func (s *Server) serveREST(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	limit, _ := strconv.Atoi(params.Get(rest.ParamLimit))
	cursor := paginator.Cursor(params.Get(rest.ParamCursor))

	items, next, err := s.lookup(r.Context(), params.Get(rest.ParamQuery), cursor, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := rest.Response[Item]{Items: items}
	if !next.IsNone() {
		more := url.Values{}
		more.Set(rest.ParamCursor, string(next))
		if limit > 0 {
			more.Set(rest.ParamLimit, strconv.Itoa(limit))
		}
		resp.More = r.URL.Path + "?" + more.Encode()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) serveGraphQL(w http.ResponseWriter, r *http.Request) {
	var req graphql.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	query, _ := req.Variables["query"].(string)
	after, _ := req.Variables["after"].(string)
	first := 0
	if f, ok := req.Variables["first"].(float64); ok {
		first = int(f)
	}

	items, next, err := s.lookup(r.Context(), query, paginator.Cursor(after), first)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"errors": []graphql.Error{{Message: err.Error()}},
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			graphql.DefaultField: graphql.Connection[Item]{
				Nodes: items,
				PageInfo: graphql.PageInfo{
					EndCursor:   string(next),
					HasNextPage: !next.IsNone(),
				},
			},
		},
	})
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer func() { _ = conn.Close() }()

	ctx := r.Context()
	for {
		var req ws.Request
		if err = conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug().Err(err).Msg("websocket read ended")
			}
			return
		}

		resp := ws.Response[Item]{ID: req.ID}
		items, next, lookupErr := s.lookup(ctx, req.Query, paginator.Cursor(req.Cursor), req.Limit)
		if lookupErr != nil {
			resp.Error = lookupErr.Error()
		} else {
			resp.Items = items
			resp.NextCursor = string(next)
		}
		if err = conn.WriteJSON(resp); err != nil {
			s.logger.Debug().Err(err).Msg("websocket write failed")
			return
		}
	}
}

// List implements rpc.PageServer.
func (s *Server) List(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	items, next, err := s.lookup(ctx,
		fields[rpc.FieldQuery].GetStringValue(),
		paginator.Cursor(fields[rpc.FieldCursor].GetStringValue()),
		int(fields[rpc.FieldLimit].GetNumberValue()),
	)
	switch {
	case errors.Is(err, ErrBadCursor):
		return nil, status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrInjected):
		return nil, status.Error(codes.Unavailable, err.Error())
	case err != nil:
		return nil, status.FromContextError(err).Err()
	}
	return rpc.EncodePage(items, next)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrBadCursor):
		code = http.StatusBadRequest
	case errors.Is(err, ErrInjected):
		code = http.StatusServiceUnavailable
	}
	http.Error(w, err.Error(), code)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
