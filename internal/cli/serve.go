package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/rshade/pagerkit/internal/config"
	"github.com/rshade/pagerkit/internal/demo"
	"github.com/rshade/pagerkit/internal/logging"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// serveOptions hold the flags of the serve command.
type serveOptions struct {
	httpAddr  string
	grpcAddr  string
	size      int
	overlap   bool
	failEvery int
	latency   time.Duration
}

// NewServeCmd creates the serve command running the demo backend.
func NewServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo catalog over REST, GraphQL, WebSocket and gRPC",
		Long: `Serves a deterministic in-memory catalog so every transport can be tried
locally. HTTP carries REST (/v1/items), GraphQL (/graphql) and WebSocket (/ws);
gRPC listens on its own address.

--overlap repeats one item across page boundaries so the distinct merge
policy has something to remove, and --fail-every injects failures to show
how failed pages degrade.`,
		Example: `  # Serve on the default addresses
  pagerkit serve

  # Flaky, slow backend
  pagerkit serve --fail-every 4 --latency 300ms`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", "", "HTTP listen address (default from config)")
	cmd.Flags().StringVar(&opts.grpcAddr, "grpc-addr", "", "gRPC listen address (default from config)")
	cmd.Flags().IntVar(&opts.size, "size", 0, "number of catalog items (default from config)")
	cmd.Flags().BoolVar(&opts.overlap, "overlap", false, "repeat the last item of each page on the next one")
	cmd.Flags().IntVar(&opts.failEvery, "fail-every", 0, "fail every n-th request (0 = never)")
	cmd.Flags().DurationVar(&opts.latency, "latency", 0, "delay added to every response")

	return cmd
}

// merge overlays explicitly set flags on the serve section of the config.
func (o *serveOptions) merge(cmd *cobra.Command, sc config.ServeConfig) serveOptions {
	out := serveOptions{
		httpAddr:  sc.HTTPAddr,
		grpcAddr:  sc.GRPCAddr,
		size:      sc.Size,
		overlap:   sc.Overlap,
		failEvery: sc.FailEvery,
		latency:   time.Duration(sc.LatencyMS) * time.Millisecond,
	}
	if cmd.Flags().Changed("http-addr") {
		out.httpAddr = o.httpAddr
	}
	if cmd.Flags().Changed("grpc-addr") {
		out.grpcAddr = o.grpcAddr
	}
	if cmd.Flags().Changed("size") {
		out.size = o.size
	}
	if cmd.Flags().Changed("overlap") {
		out.overlap = o.overlap
	}
	if cmd.Flags().Changed("fail-every") {
		out.failEvery = o.failEvery
	}
	if cmd.Flags().Changed("latency") {
		out.latency = o.latency
	}
	return out
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	ctx := cmd.Context()
	o := opts.merge(cmd, config.GetGlobalConfig().Serve)
	if o.failEvery < 0 || o.latency < 0 {
		return errors.New("fail-every and latency must not be negative")
	}

	b := newBackend(ctx, o)
	if err := b.listen(); err != nil {
		return err
	}
	b.printEndpoints(cmd.OutOrStdout())
	return b.run(ctx)
}

// backend is the demo server bound to its listeners.
type backend struct {
	opts    serveOptions
	catalog *demo.Catalog
	server  *demo.Server

	httpLn net.Listener
	grpcLn net.Listener
}

func newBackend(ctx context.Context, opts serveOptions) *backend {
	log := logging.ComponentLogger(*logging.FromContext(ctx), "demo")
	catalog := demo.NewCatalog(opts.size)
	srv := demo.NewServer(catalog, demo.Options{
		Overlap:   opts.overlap,
		FailEvery: opts.failEvery,
		Latency:   opts.latency,
	}, log)
	return &backend{opts: opts, catalog: catalog, server: srv}
}

// listen binds both addresses so that ":0" resolves before serving starts.
func (b *backend) listen() error {
	var lc net.ListenConfig
	httpLn, err := lc.Listen(context.Background(), "tcp", b.opts.httpAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", b.opts.httpAddr, err)
	}
	grpcLn, err := lc.Listen(context.Background(), "tcp", b.opts.grpcAddr)
	if err != nil {
		_ = httpLn.Close()
		return fmt.Errorf("listening on %s: %w", b.opts.grpcAddr, err)
	}
	b.httpLn, b.grpcLn = httpLn, grpcLn
	return nil
}

func (b *backend) httpAddr() string { return b.httpLn.Addr().String() }
func (b *backend) grpcAddr() string { return b.grpcLn.Addr().String() }

func (b *backend) printEndpoints(w io.Writer) {
	base := "http://" + b.httpAddr()
	fmt.Fprintf(w, "Serving %d demo items\n", b.catalog.Len())
	fmt.Fprintf(w, "  rest     %s%s\n", base, demo.PathItems)
	fmt.Fprintf(w, "  graphql  %s%s\n", base, demo.PathGraphQL)
	fmt.Fprintf(w, "  ws       ws://%s%s\n", b.httpAddr(), demo.PathWS)
	fmt.Fprintf(w, "  grpc     %s\n", b.grpcAddr())
}

// run serves until ctx is done, then shuts both servers down gracefully.
func (b *backend) run(ctx context.Context) error {
	log := logging.FromContext(ctx)

	httpSrv := &http.Server{
		Handler:           b.server.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	grpcSrv := grpc.NewServer()
	b.server.RegisterGRPC(grpcSrv)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpSrv.Serve(b.httpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := grpcSrv.Serve(b.grpcLn); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Info().Msg("shutting down demo backend")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		grpcSrv.GracefulStop()
		return httpSrv.Shutdown(shutdownCtx)
	})

	log.Info().Str("http_addr", b.httpAddr()).Str("grpc_addr", b.grpcAddr()).Msg("demo backend started")
	return g.Wait()
}
