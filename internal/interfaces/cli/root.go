package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"showip.dev/cli/internal/application/ports"
	"showip.dev/cli/internal/application/services"
	configdomain "showip.dev/cli/internal/core/domain/config"
	configinfra "showip.dev/cli/internal/infrastructure/config"
)

var (
	Version   = "dev"     // Overridden by ldflags
	BuildTime = "unknown" // Overridden by ldflags
)

// Installer is what the commands need from the installer service
type Installer interface {
	Install(ctx context.Context) (*services.Report, error)
	Uninstall(ctx context.Context) (*services.Report, error)
	Status(ctx context.Context) (*services.Status, error)
	PlanInstall() *services.Run
	PlanUninstall() *services.Run
}

// ConfigLoader resolves the layered configuration
type ConfigLoader interface {
	Load(ctx context.Context, overrides map[string]interface{}) (*configinfra.Resolved, error)
}

// CLIContainer holds all the dependencies for CLI commands
type CLIContainer struct {
	Logger       ports.LoggingGateway
	LoaderFor    func(configPath string) ConfigLoader
	NewInstaller func(cfg configdomain.InstallConfig) Installer
}

// NewRootCommand creates the showip command tree
func NewRootCommand(container *CLIContainer) *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "showip",
		Short: "Install the showip lxpanel plugin",
		Long: `showip installs the showip plugin into lxpanel.

It copies the plugin library into the lxpanel plugin directory, registers
the plugin in the panel layout right after an anchor plugin (volumealsa by
default) and restarts the panel.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debugMode, _ := cmd.Flags().GetBool("debug"); debugMode {
				container.Logger.SetLogLevel(ports.LogLevelDebug)
			}
			return nil
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} version {{.Version}}\nBuild time: %s\nGo version: %s\nPlatform: %s/%s\n",
		BuildTime, goVersion(), runtime.GOOS, runtime.GOARCH))

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "Config file path (default is $HOME/.config/showip/config.json)")

	rootCmd.AddCommand(NewInstallCommand(container))
	rootCmd.AddCommand(NewUninstallCommand(container))
	rootCmd.AddCommand(NewStatusCommand(container))
	rootCmd.AddCommand(NewConfigCommand(container))

	return rootCmd
}

// goVersion returns the Go version used to build the binary
func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}

// resolveConfig loads the configuration for cmd, applying overrides on top of
// every other source, and aligns the logger with it.
func resolveConfig(cmd *cobra.Command, container *CLIContainer, overrides map[string]interface{}) (*configinfra.Resolved, error) {
	if overrides == nil {
		overrides = make(map[string]interface{})
	}
	if cmd.Flags().Changed("debug") {
		debugMode, _ := cmd.Flags().GetBool("debug")
		overrides[configdomain.KeyDebug] = debugMode
	}

	configPath, _ := cmd.Flags().GetString("config")
	resolved, err := container.LoaderFor(configPath).Load(cmd.Context(), overrides)
	if err != nil {
		return nil, err
	}

	level := ports.ParseLogLevel(resolved.Config.LogLevel)
	if resolved.Config.Debug {
		level = ports.LogLevelDebug
	}
	container.Logger.SetLogLevel(level)
	container.Logger.Log(ports.LogLevelDebug, "Configuration resolved", map[string]interface{}{
		"plugin": resolved.Config.PluginName,
		"config": configPath,
	})

	return resolved, nil
}

// ExecuteContext runs the root command with ctx and returns the exit code.
func ExecuteContext(ctx context.Context, container *CLIContainer) int {
	rootCmd := NewRootCommand(container)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
