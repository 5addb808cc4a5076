package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	configdomain "showip.dev/cli/internal/core/domain/config"
	configinfra "showip.dev/cli/internal/infrastructure/config"
)

// NewConfigCommand creates the config command
func NewConfigCommand(container *CLIContainer) *cobra.Command {
	var configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration settings",
		Long: `Inspect the resolved configuration.

Values come from built-in defaults, the config file, SHOWIP_* environment
variables and command line flags, the later ones winning.`,
	}

	configCmd.AddCommand(NewConfigShowCommand(container))
	configCmd.AddCommand(NewConfigPathCommand())

	return configCmd
}

// NewConfigShowCommand creates the show subcommand
func NewConfigShowCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration and where each value came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := resolveConfig(cmd, container, nil)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			printSnapshot(cmd.OutOrStdout(), resolved.Snapshot)
			return nil
		},
	}
}

func printSnapshot(w io.Writer, snap configdomain.Snapshot) {
	fmt.Fprintln(w, titleStyle.Render("Current Configuration:"))
	for _, key := range snap.Keys() {
		entry := snap[key]
		source := entry.Source
		if entry.SourcePath != "" {
			source += " " + entry.SourcePath
		}
		fmt.Fprintf(w, "%-16s %-40s %s\n", key, formatValue(entry.Value), dimStyle.Render("("+source+")"))
	}
}

func formatValue(v interface{}) string {
	switch v := v.(type) {
	case string:
		if v == "" {
			return "(not set)"
		}
		return v
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprint(v)
	}
}

// NewConfigPathCommand creates the path subcommand
func NewConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			if path == "" {
				path = configinfra.DefaultConfigPath()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file path: %s\n", path)
			return nil
		},
	}
}
