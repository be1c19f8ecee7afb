package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/pagerkit/internal/cli/pagination"
	"github.com/rshade/pagerkit/internal/config"
)

// fetchOptions hold the flags of the fetch command.
type fetchOptions struct {
	sourceFlags

	queries  []string
	maxPages int
	output   string
	sort     string
	window   pagination.Window
}

// NewFetchCmd creates the fetch command, which drives paginators headlessly
// and prints what they accumulated.
func NewFetchCmd() *cobra.Command {
	opts := &fetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch pages from a source and print the accumulated items",
		Long: `Fetches pages from a source until it is exhausted, --max-pages pages were
loaded, or a page fails, then prints the accumulated items.

Each --query runs its own paginator; several queries run concurrently. The
--limit/--offset and --page/--per-page flags select a window of the
accumulated list for printing and never change what is requested.`,
		Example: `  # Fetch everything from the default source
  pagerkit fetch

  # Two concurrent queries, de-duplicated, as JSON
  pagerkit fetch -q message -q launch --merge distinct -o json

  # First two pages only, sorted by newest first
  pagerkit fetch --max-pages 2 --sort created_at:desc

  # Ad-hoc gRPC endpoint
  pagerkit fetch --transport grpc --endpoint 127.0.0.1:7070`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFetch(cmd, opts)
		},
	}

	opts.sourceFlags.register(cmd)
	cmd.Flags().StringArrayVarP(&opts.queries, "query", "q", nil, "query to page through (repeatable)")
	cmd.Flags().IntVar(&opts.maxPages, "max-pages", config.DefaultMaxPages,
		"stop after this many pages per query (0 = until exhausted)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output format: table, json or yaml (default from config)")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "sort printed items by field[:asc|desc] ("+
		strings.Join(itemSorter.Fields(), ", ")+")")
	opts.window.AddFlags(cmd.Flags())

	return cmd
}

func runFetch(cmd *cobra.Command, opts *fetchOptions) error {
	ctx := cmd.Context()
	cfg := config.GetGlobalConfig()

	src, err := opts.resolve(cmd, cfg)
	if err != nil {
		return err
	}
	pcfg, err := opts.paginatorConfig(cmd, cfg)
	if err != nil {
		return err
	}

	maxPages := cfg.Paginator.MaxPages
	if cmd.Flags().Changed("max-pages") {
		maxPages = opts.maxPages
	}
	if maxPages < 0 {
		return fmt.Errorf("max-pages must not be negative, got %d", maxPages)
	}

	format := cfg.Output.DefaultFormat
	if cmd.Flags().Changed("output") {
		format = strings.ToLower(opts.output)
	}
	switch format {
	case config.FormatTable, config.FormatJSON, config.FormatYAML:
	default:
		return fmt.Errorf("output must be table, json or yaml, got %q", format)
	}

	if err = opts.window.Validate(); err != nil {
		return err
	}
	sortSpec, err := pagination.ParseSort(opts.sort)
	if err != nil {
		return err
	}
	if err = itemSorter.Validate(sortSpec); err != nil {
		return err
	}

	queries := opts.queries
	if len(queries) == 0 {
		queries = []string{""}
	}

	logger.Debug().Ctx(ctx).
		Str("source", src.Name).
		Str("transport", src.Kind).
		Strs("queries", queries).
		Int("max_pages", maxPages).
		Msg("fetching")

	runs, err := collectAll(ctx, src, pcfg, queries, maxPages)
	if err != nil {
		return err
	}

	results := make([]queryResult, len(runs))
	for i, run := range runs {
		items := itemSorter.Sort(run.snapshot.Items, sortSpec)
		results[i] = queryResult{
			Query: run.query,
			Items: pagination.Apply(opts.window, items),
			Pagination: pagination.NewMeta(opts.window, len(items)).
				WithFetch(run.pagesLoaded, run.snapshot.Exhausted),
			Stats:   run.snapshot.Stats,
			Partial: run.partial,
		}
	}

	return renderResults(cmd.OutOrStdout(), format, results)
}
