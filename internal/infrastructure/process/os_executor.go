package process

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"showip.dev/cli/internal/application/ports"
)

// DefaultTimeout bounds a single command when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Executor runs panel commands such as the lxpanel restart with os/exec.
type Executor struct {
	timeout time.Duration
	workDir string
	env     []string
}

// Option configures an Executor.
type Option func(*Executor)

// WithTimeout bounds every command. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.timeout = d
	}
}

// WithWorkDir runs commands from dir.
func WithWorkDir(dir string) Option {
	return func(e *Executor) {
		e.workDir = dir
	}
}

// WithEnv replaces the inherited environment.
func WithEnv(env []string) Option {
	return func(e *Executor) {
		e.env = env
	}
}

// NewExecutor returns an Executor using the process environment and
// DefaultTimeout unless opts say otherwise.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{timeout: DefaultTimeout, env: os.Environ()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Timeout reports the per-command bound.
func (e *Executor) Timeout() time.Duration {
	return e.timeout
}

// Run executes the command and waits for it. Combined output is attached
// to the error when the command fails.
func (e *Executor) Run(ctx context.Context, name string, args ...string) error {
	if name == "" {
		return fmt.Errorf("executable cannot be empty")
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	execCmd := exec.CommandContext(ctx, name, args...)
	execCmd.Dir = e.workDir
	execCmd.Env = e.env
	execCmd.WaitDelay = time.Second

	var output bytes.Buffer
	execCmd.Stdout = &output
	execCmd.Stderr = &output

	if err := execCmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s interrupted: %w", name, ctxErr)
		}
		if out := strings.TrimSpace(output.String()); out != "" {
			return fmt.Errorf("%s failed: %w: %s", name, err, out)
		}
		return fmt.Errorf("%s failed: %w", name, err)
	}

	return nil
}

var _ ports.CommandRunner = (*Executor)(nil)
