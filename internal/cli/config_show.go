package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/pagerkit/internal/config"
)

// NewConfigShowCmd creates the config show command, which prints the
// effective configuration after file, project overlay and environment.
func NewConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetGlobalConfig()

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			if path := cfg.Path(); path != "" {
				cmd.Printf("# %s\n", path)
			}
			if dir := config.GetResolvedProjectDir(); dir != "" {
				cmd.Printf("# project overlay: %s\n", dir)
			}
			cmd.Print(strings.TrimRight(string(data), "\n") + "\n")
			return nil
		},
	}
}
