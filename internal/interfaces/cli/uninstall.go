package cli

import "github.com/spf13/cobra"

// NewUninstallCommand creates the uninstall command
func NewUninstallCommand(container *CLIContainer) *cobra.Command {
	flags := &InstallFlags{}

	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the plugin from the panel and the plugin directory",
		Long: `Delete the installed plugin library, remove the plugin block from the panel
layout and restart lxpanel when anything changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, container, flags, "uninstall")
		},
	}

	flags.register(cmd.Flags())
	return cmd
}
