package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/pagerkit/internal/config"
	"github.com/rshade/pagerkit/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the pagerkit CLI. It loads
// configuration, wires logging and registers the fetch, browse, serve and
// config subcommands.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.LogPathResult

	cmd := &cobra.Command{
		Use:     "pagerkit",
		Short:   "Page through remote collections",
		Long:    "pagerkit: accumulate paginated results from REST, GraphQL, gRPC and WebSocket sources",
		Version: ver,
		Example: rootCmdExample,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Context() == nil {
				cmd.SetContext(context.Background())
			}
			if err := loadConfig(cmd); err != nil {
				return err
			}

			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return cleanupLogging(logResult)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "path to a config file (default $PAGERKIT_HOME/config.yaml)")
	cmd.PersistentFlags().String("project-dir", "", "project directory holding a .pagerkit/ overlay")
	cmd.AddCommand(NewFetchCmd(), NewBrowseCmd(), NewServeCmd(), newConfigCmd())

	return cmd
}

const rootCmdExample = `  # Serve the demo catalog on every transport
  pagerkit serve

  # Fetch every page of the default source
  pagerkit fetch

  # Run two queries concurrently over GraphQL and print JSON
  pagerkit fetch --transport graphql --endpoint http://127.0.0.1:8080/graphql \
    --query message --query launch --output json

  # Browse a source interactively
  pagerkit browse --source demo --query project

  # Initialize configuration
  pagerkit config init`

// loadConfig resolves the configuration for this invocation and installs it
// as the global config. An explicit --config file wins over the global file
// and any project overlay.
func loadConfig(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		config.SetResolvedProjectDir("")
		config.SetGlobalConfig(cfg)
		return nil
	}

	flagDir, _ := cmd.Flags().GetString("project-dir")
	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	}
	projectDir := config.ResolveProjectDir(cmd.Context(), flagDir, cwd)
	config.SetResolvedProjectDir(projectDir)
	config.SetGlobalConfig(config.NewWithProjectDir(cmd.Context(), projectDir))
	return nil
}

// newConfigCmd creates the config command group.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigShowCmd(), NewConfigValidateCmd())
	return cmd
}
