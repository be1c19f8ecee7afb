package cli

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/rshade/pagerkit/internal/cli/pagination"
	"github.com/rshade/pagerkit/internal/demo"
	"github.com/rshade/pagerkit/internal/logging"
	"github.com/rshade/pagerkit/internal/paginator"
	"github.com/rshade/pagerkit/internal/source"
	"github.com/rshade/pagerkit/internal/transport"
)

// queryResult is what one query accumulated.
type queryResult struct {
	Query      string          `json:"query"             yaml:"query"`
	Items      []demo.Item     `json:"items"             yaml:"items"`
	Pagination pagination.Meta `json:"pagination"        yaml:"pagination"`
	Stats      paginator.Stats `json:"stats"             yaml:"stats"`
	Partial    bool            `json:"partial,omitempty" yaml:"partial,omitempty"`
}

// collected is the raw outcome of driving one paginator to completion.
type collected struct {
	query       string
	snapshot    paginator.Snapshot[string, demo.Item]
	pagesLoaded int
	partial     bool
}

// collect drives a fresh paginator for query until the source is exhausted,
// maxPages pages were loaded (0 means no limit), or a page fails. A failed
// page ends the run instead of being retried.
func collect(
	ctx context.Context,
	src transport.Source,
	cfg paginator.Config[string, demo.Item],
	query string,
	maxPages int,
) (collected, error) {
	log := logging.FromContext(ctx).With().Str("source", src.Name).Str("query", query).Logger()

	loader, err := source.Open[demo.Item](ctx, src)
	if err != nil {
		return collected{}, err
	}
	defer func() { _ = loader.Close() }()

	pager, err := paginator.New(ctx, paginator.Loader[string, demo.Item](loader), cfg)
	if err != nil {
		return collected{}, err
	}
	defer func() { _ = pager.Close() }()

	pager.StartOverWith(query)
	for {
		if err = pager.WaitIdle(ctx); err != nil {
			return collected{}, err
		}
		snap := pager.Snapshot()
		out := collected{query: query, snapshot: snap, pagesLoaded: snap.PageIndex}

		switch {
		case snap.Stats.Degraded > 0:
			out.pagesLoaded--
			out.partial = true
			log.Warn().Int("page_index", snap.PageIndex).Msg("page failed, stopping with the pages loaded so far")
			return out, nil
		case snap.Exhausted:
			log.Debug().Int("pages", out.pagesLoaded).Int("items", len(snap.Items)).Msg("source exhausted")
			return out, nil
		case maxPages > 0 && snap.PageIndex >= maxPages:
			log.Debug().Int("pages", out.pagesLoaded).Msg("page limit reached")
			return out, nil
		}
		pager.NextPage()
	}
}

// collectAll runs every query concurrently, each with its own loader and
// paginator. Results keep the order of queries.
func collectAll(
	ctx context.Context,
	src transport.Source,
	cfg paginator.Config[string, demo.Item],
	queries []string,
	maxPages int,
) ([]collected, error) {
	results := make([]collected, len(queries))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, q := range queries {
		g.Go(func() error {
			res, err := collect(gCtx, src, cfg, q, maxPages)
			if err != nil {
				return fmt.Errorf("query %q: %w", q, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
