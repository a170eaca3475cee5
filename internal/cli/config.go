package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/macropower/netswitch/api"
	"github.com/macropower/netswitch/pkg/config"
)

func NewConfigCmd(ra *RootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool

	write := &cobra.Command{
		Use:   "write",
		Short: "Write the default configuration and its JSON schema",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return config.WriteDefault(ra.configPath(), force)
		},
	}
	write.Flags().BoolVar(&force, "force", false, "Back up and replace an existing configuration file")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := api.ReadFile(ra.configPath())
			if err != nil {
				return err //nolint:wrapcheck // Already describes the path.
			}

			return writeYAML(cmd.OutOrStdout(), data)
		},
	}

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := ra.configPath()

			cfg, err := config.Load(path, config.WithColoredErrors(isTerminal(cmd.ErrOrStderr())))
			if err != nil {
				return err //nolint:wrapcheck // Positioned YAML error.
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s is valid: %d profile(s), %d schedule(s)\n",
				path, len(cfg.Profiles), len(cfg.Schedules))
			if err != nil {
				return fmt.Errorf("write output: %w", err)
			}

			return nil
		},
	}

	schema := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := config.Schema()
			if err != nil {
				return err //nolint:wrapcheck // Already wrapped.
			}

			w := cmd.OutOrStdout()
			if isTerminal(w) {
				return highlight(w, data, "json")
			}

			_, err = w.Write(append(data, '\n'))
			if err != nil {
				return fmt.Errorf("write schema: %w", err)
			}

			return nil
		},
	}

	cmd.AddCommand(write, show, validate, schema)

	return cmd
}
