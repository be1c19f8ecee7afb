package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/pagerkit/internal/config"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the effective configuration for semantic correctness.

This includes:
- The merge policy and page limit of the paginator section
- Every named source: transport, endpoint, page size and timeout
- Output and logging formats
- The demo backend settings`,
		Example: `  # Validate current configuration
  pagerkit config validate

  # Validate and show detailed information
  pagerkit config validate --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	cfg := config.GetGlobalConfig()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cmd.Printf("Configuration is valid\n")

	if verbose {
		printVerboseDetails(cmd, cfg)
	}

	return nil
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Merge policy: %s\n", cfg.MergePolicy())
	cmd.Printf("  Max pages: %d\n", cfg.Paginator.MaxPages)
	cmd.Printf("  Output format: %s\n", cfg.Output.DefaultFormat)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	cmd.Printf("  Log file: %s\n", cfg.Logging.File)

	printSourceDetails(cmd, cfg)
}

// printSourceDetails prints the configured sources.
func printSourceDetails(cmd *cobra.Command, cfg *config.Config) {
	names := cfg.SourceNames()
	if len(names) == 0 {
		cmd.Println("  No sources configured")
		return
	}

	cmd.Printf("  Sources: %d\n", len(names))
	for _, name := range names {
		src, err := cfg.Source(name)
		if err != nil {
			continue
		}
		cmd.Printf("    - %s (%s, page size %d): %s\n", name, src.Kind, src.PageSize, src.Endpoint)
	}
}
