package configinfra

import (
	"context"
	"fmt"

	configdomain "showip.dev/cli/internal/core/domain/config"
	configports "showip.dev/cli/internal/core/ports/config"
)

// Resolved is the outcome of a load: the decoded configuration and the
// merged snapshot it came from.
type Resolved struct {
	Config   configdomain.InstallConfig
	Snapshot configdomain.Snapshot
}

// UnifiedLoader layers defaults, the config file, the environment and
// command line overrides.
type UnifiedLoader struct {
	loaders   []configports.Loader
	validator configports.Validator
}

// NewUnifiedLoader creates a loader reading configPath (or the default
// location when empty).
func NewUnifiedLoader(configPath string) *UnifiedLoader {
	return NewUnifiedLoaderWith(NewConfigValidator(),
		NewDefaultLoader(),
		NewFileLoader(configPath),
		NewEnvLoader(),
	)
}

// NewUnifiedLoaderWith creates a loader over explicit sources.
func NewUnifiedLoaderWith(validator configports.Validator, loaders ...configports.Loader) *UnifiedLoader {
	return &UnifiedLoader{loaders: loaders, validator: validator}
}

// Load merges every source, applies overrides (priority 1) and validates
// the result.
func (l *UnifiedLoader) Load(ctx context.Context, overrides map[string]interface{}) (*Resolved, error) {
	snap := make(configdomain.Snapshot)

	for _, loader := range l.loaders {
		part, err := loader.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s configuration: %w", loader.Name(), err)
		}
		snap.Merge(part)
	}

	flags := make(configdomain.Snapshot)
	for field, value := range overrides {
		flags.Set(field, value, "cli", "command_line_flag", configdomain.PriorityFlag)
	}
	snap.Merge(flags)

	cfg := configdomain.FromSnapshot(snap)
	if l.validator != nil {
		if err := l.validator.Validate(cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return &Resolved{Config: cfg, Snapshot: snap}, nil
}
