package di

import (
	"fmt"
	"io"
	"os"
	"time"

	"showip.dev/cli/internal/application/ports"
	"showip.dev/cli/internal/application/services"
	configdomain "showip.dev/cli/internal/core/domain/config"
	configinfra "showip.dev/cli/internal/infrastructure/config"
	"showip.dev/cli/internal/infrastructure/logging"
	"showip.dev/cli/internal/infrastructure/process"
	"showip.dev/cli/internal/infrastructure/storage"
	"showip.dev/cli/internal/interfaces/cli"
)

// Container holds all application dependencies
type Container struct {
	// Infrastructure
	Logger  *logging.StdLogger
	Storage ports.Storage
	Runner  ports.CommandRunner

	// Process facts used to locate default paths
	Env services.Environment

	// CLI
	CLIContainer *cli.CLIContainer
}

// RestartTimeout bounds the panel restart command. lxpanelctl returns as
// soon as the panel is signalled.
const RestartTimeout = 15 * time.Second

// NewContainer creates and configures the dependency injection container
func NewContainer() (*Container, error) {
	runner := process.NewExecutor(process.WithTimeout(RestartTimeout))
	return NewContainerWith(os.Stderr, storage.NewAFSStore(), runner, services.CurrentEnvironment())
}

// NewContainerWith builds a container over explicit infrastructure
func NewContainerWith(logOutput io.Writer, store ports.Storage, runner ports.CommandRunner, env services.Environment) (*Container, error) {
	if store == nil || runner == nil {
		return nil, fmt.Errorf("storage and command runner are required")
	}

	c := &Container{
		Logger:  logging.NewStdLogger(logOutput, ports.LogLevelInfo),
		Storage: store,
		Runner:  runner,
		Env:     env,
	}

	c.CLIContainer = &cli.CLIContainer{
		Logger:       c.Logger,
		LoaderFor:    c.loaderFor,
		NewInstaller: c.newInstaller,
	}

	c.Logger.Log(ports.LogLevelDebug, "Dependency injection container initialized", nil)
	return c, nil
}

// GetCLIContainer returns the CLI container for command execution
func (c *Container) GetCLIContainer() *cli.CLIContainer {
	return c.CLIContainer
}

// NewInstaller creates an installer service for cfg
func (c *Container) NewInstaller(cfg configdomain.InstallConfig) *services.InstallerService {
	return services.NewInstallerService(cfg, c.Storage, c.Runner, c.Logger, c.Env)
}

func (c *Container) loaderFor(configPath string) cli.ConfigLoader {
	return configinfra.NewUnifiedLoader(configPath)
}

func (c *Container) newInstaller(cfg configdomain.InstallConfig) cli.Installer {
	return c.NewInstaller(cfg)
}
