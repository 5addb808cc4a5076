package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	configdomain "showip.dev/cli/internal/core/domain/config"
)

// NewStatusCommand creates the status command
func NewStatusCommand(container *CLIContainer) *cobra.Command {
	var pluginsDir, panelConfig string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether the plugin is installed and configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := make(map[string]interface{})
			if cmd.Flags().Changed("plugins-dir") {
				overrides[configdomain.KeyPluginsDir] = pluginsDir
			}
			if cmd.Flags().Changed("panel-config") {
				overrides[configdomain.KeyPanelConfig] = panelConfig
			}

			resolved, err := resolveConfig(cmd, container, overrides)
			if err != nil {
				return err
			}

			status, err := container.NewInstaller(resolved.Config).Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read status: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), renderStatus(status))
			return nil
		},
	}

	cmd.Flags().StringVar(&pluginsDir, "plugins-dir", "", "lxpanel plugin directory (searched when empty)")
	cmd.Flags().StringVar(&panelConfig, "panel-config", "", "Panel layout file (searched when empty)")

	return cmd
}
