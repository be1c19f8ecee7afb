package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/pagerkit/internal/config"
	"github.com/rshade/pagerkit/internal/demo"
	"github.com/rshade/pagerkit/internal/paginator"
	"github.com/rshade/pagerkit/internal/transport"
)

// sourceFlags select the source a command pages through and the paginator
// options applied to it. Flags that are not set fall back to configuration.
type sourceFlags struct {
	source    string
	transport string
	endpoint  string
	pageSize  int
	timeout   time.Duration
	headers   []string
	merge     string
	clear     bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.source, "source", "s", config.DefaultSourceName, "named source from the config file")
	cmd.Flags().StringVar(&f.transport, "transport", "",
		"transport to use: rest, graphql, grpc or ws (overrides the source)")
	cmd.Flags().StringVar(&f.endpoint, "endpoint", "", "endpoint URL or address (overrides the source)")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "items requested per page (overrides the source)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "per-request timeout (overrides the source)")
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil, "extra request header as 'Name: value' (repeatable)")
	cmd.Flags().StringVar(&f.merge, "merge", "", "merge policy: concat or distinct (default from config)")
	cmd.Flags().BoolVar(&f.clear, "clear-on-start-over", false, "clear the list as soon as a new query starts")
}

// resolve builds the transport.Source for this invocation.
func (f *sourceFlags) resolve(cmd *cobra.Command, cfg *config.Config) (transport.Source, error) {
	var src transport.Source
	if cmd.Flags().Changed("endpoint") && !cmd.Flags().Changed("source") {
		src = transport.Source{Name: "adhoc"}
	} else {
		var err error
		if src, err = cfg.Source(f.source); err != nil {
			return transport.Source{}, err
		}
	}

	if cmd.Flags().Changed("transport") {
		src.Kind = strings.ToLower(f.transport)
	}
	if cmd.Flags().Changed("endpoint") {
		src.Endpoint = f.endpoint
	}
	if cmd.Flags().Changed("page-size") {
		src.PageSize = f.pageSize
	}
	if cmd.Flags().Changed("timeout") {
		src.Timeout = f.timeout
	}
	if len(f.headers) > 0 {
		headers := make(map[string]string, len(src.Headers)+len(f.headers))
		for k, v := range src.Headers {
			headers[k] = v
		}
		for _, h := range f.headers {
			name, value, ok := strings.Cut(h, ":")
			if !ok || strings.TrimSpace(name) == "" {
				return transport.Source{}, fmt.Errorf("invalid header %q: want 'Name: value'", h)
			}
			headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
		}
		src.Headers = headers
	}

	return src.Normalize()
}

// paginatorConfig returns the paginator options for demo items.
func (f *sourceFlags) paginatorConfig(cmd *cobra.Command, cfg *config.Config) (paginator.Config[string, demo.Item], error) {
	policy := cfg.MergePolicy()
	if cmd.Flags().Changed("merge") {
		p, err := paginator.ParseMergePolicy(f.merge)
		if err != nil {
			return paginator.Config[string, demo.Item]{}, err
		}
		policy = p
	}

	merge, err := paginator.Resolve(policy, demo.ItemKey)
	if err != nil {
		return paginator.Config[string, demo.Item]{}, err
	}

	clearOnStart := cfg.Paginator.ClearOnStartOver
	if cmd.Flags().Changed("clear-on-start-over") {
		clearOnStart = f.clear
	}
	return paginator.Config[string, demo.Item]{Merge: merge, ClearOnStartOver: clearOnStart}, nil
}
