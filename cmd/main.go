package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"showip.dev/cli/internal/application/ports"
	"showip.dev/cli/internal/interfaces/cli"
	"showip.dev/cli/internal/interfaces/di"
)

func main() {
	container, err := di.NewContainer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		container.Logger.Log(ports.LogLevelWarn, "Received shutdown signal, stopping after the current step", nil)
		cancel()
	}()

	code := cli.ExecuteContext(ctx, container.GetCLIContainer())
	cancel()
	os.Exit(code)
}
