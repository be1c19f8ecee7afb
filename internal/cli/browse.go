package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/pagerkit/internal/config"
	"github.com/rshade/pagerkit/internal/demo"
	"github.com/rshade/pagerkit/internal/logging"
	"github.com/rshade/pagerkit/internal/paginator"
	"github.com/rshade/pagerkit/internal/source"
	"github.com/rshade/pagerkit/internal/tui"
)

type browseOptions struct {
	sourceFlags

	query string
	plain bool
}

// NewBrowseCmd creates the interactive browse command.
func NewBrowseCmd() *cobra.Command {
	opts := &browseOptions{}

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse a source interactively",
		Long: `Opens an infinitely scrolling list over a source. Moving close to the bottom
loads the next page, "/" starts a new query and "r" refreshes the current one.

When stdout is not a terminal, or with --plain, browse prints the accumulated
items like fetch instead.`,
		Example: `  # Browse the demo catalog
  pagerkit browse

  # Start with a query, de-duplicating overlapping pages
  pagerkit browse -q project --merge distinct`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.plain || !isTerminal(os.Stdout) {
				return runFetch(cmd, &fetchOptions{
					sourceFlags: opts.sourceFlags,
					queries:     []string{opts.query},
				})
			}
			return runBrowse(cmd, opts)
		},
	}

	opts.sourceFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "initial query")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "print items instead of opening the interactive screen")

	return cmd
}

func runBrowse(cmd *cobra.Command, opts *browseOptions) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg := config.GetGlobalConfig()
	src, err := opts.resolve(cmd, cfg)
	if err != nil {
		return err
	}
	pcfg, err := opts.paginatorConfig(cmd, cfg)
	if err != nil {
		return err
	}

	// Console logs would draw over the screen; keep only errors unless they
	// go to a file.
	if cfg.Logging.File == "" {
		quiet := logging.FromContext(ctx).Level(zerolog.ErrorLevel)
		ctx = quiet.WithContext(ctx)
	}

	loader, err := source.Open[demo.Item](ctx, src)
	if err != nil {
		return err
	}
	defer func() { _ = loader.Close() }()

	pager, err := paginator.New(ctx, paginator.Loader[string, demo.Item](loader), pcfg)
	if err != nil {
		return err
	}
	defer func() { _ = pager.Close() }()

	model := tui.NewBrowseModel(ctx, pager, tui.BrowseOptions[demo.Item]{
		Title:  fmt.Sprintf("pagerkit · %s (%s)", src.Name, src.Kind),
		Query:  opts.query,
		Header: tui.ItemHeader(),
		Row:    tui.RenderItem,
		Detail: tui.RenderItemDetail,
	})

	prog := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err = prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running browse screen: %w", err)
	}
	return nil
}
