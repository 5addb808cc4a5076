package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"showip.dev/cli/internal/application/services"
	configdomain "showip.dev/cli/internal/core/domain/config"
)

// InstallFlags holds the flags shared by install and uninstall
type InstallFlags struct {
	Library     string
	PluginsDir  string
	PanelConfig string
	Anchors     []string
	DryRun      bool
	NoRestart   bool
	NoBackup    bool
	Interactive bool
}

func (f *InstallFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.Library, "library", "", "Path to the plugin library (default showip.so in the working directory)")
	flags.StringVar(&f.PluginsDir, "plugins-dir", "", "lxpanel plugin directory (searched when empty)")
	flags.StringVar(&f.PanelConfig, "panel-config", "", "Panel layout file (searched when empty)")
	flags.StringArrayVar(&f.Anchors, "anchor", nil, "Plugin type to insert after, in order of preference (repeatable)")
	flags.BoolVar(&f.DryRun, "dry-run", false, "Show what would change without changing anything")
	flags.BoolVar(&f.NoRestart, "no-restart", false, "Do not restart lxpanel")
	flags.BoolVar(&f.NoBackup, "no-backup", false, "Do not keep a .bak copy of the panel config")
	flags.BoolVar(&f.Interactive, "interactive", false, "Show live step progress")
}

// overrides returns the configuration set explicitly on the command line.
func (f *InstallFlags) overrides(flags *pflag.FlagSet) map[string]interface{} {
	out := make(map[string]interface{})
	if flags.Changed("library") {
		out[configdomain.KeyPluginLibrary] = f.Library
	}
	if flags.Changed("plugins-dir") {
		out[configdomain.KeyPluginsDir] = f.PluginsDir
	}
	if flags.Changed("panel-config") {
		out[configdomain.KeyPanelConfig] = f.PanelConfig
	}
	if flags.Changed("anchor") {
		out[configdomain.KeyAnchors] = append([]string(nil), f.Anchors...)
	}
	if flags.Changed("dry-run") {
		out[configdomain.KeyDryRun] = f.DryRun
	}
	if flags.Changed("no-restart") {
		out[configdomain.KeyNoRestart] = f.NoRestart
	}
	if flags.Changed("no-backup") {
		out[configdomain.KeyBackup] = !f.NoBackup
	}
	return out
}

// NewInstallCommand creates the install command
func NewInstallCommand(container *CLIContainer) *cobra.Command {
	flags := &InstallFlags{}

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the plugin and add it to the panel",
		Long: `Copy the plugin library into the lxpanel plugin directory, add the plugin
block to the panel layout after the first anchor that is found, and restart
lxpanel.

Running install again when the panel already lists the plugin changes nothing.

Examples:
  showip install
  showip install --library ./build/showip.so --dry-run
  showip install --anchor volumealsa --anchor dclock`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, container, flags, "install")
		},
	}

	flags.register(cmd.Flags())
	return cmd
}

func runOperation(cmd *cobra.Command, container *CLIContainer, flags *InstallFlags, operation string) error {
	resolved, err := resolveConfig(cmd, container, flags.overrides(cmd.Flags()))
	if err != nil {
		return err
	}
	installer := container.NewInstaller(resolved.Config)

	var report *services.Report
	if flags.Interactive {
		run := installer.PlanInstall()
		if operation == "uninstall" {
			run = installer.PlanUninstall()
		}
		report, err = runInteractive(cmd, run)
	} else {
		report, err = execute(cmd.Context(), installer, operation)
		if report != nil {
			fmt.Fprint(cmd.OutOrStdout(), renderReport(report))
		}
	}
	if err != nil {
		return fmt.Errorf("%s failed: %w", operation, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderSummary(report, resolved.Config.PluginName))
	return nil
}

func execute(ctx context.Context, installer Installer, operation string) (*services.Report, error) {
	if operation == "uninstall" {
		return installer.Uninstall(ctx)
	}
	return installer.Install(ctx)
}
