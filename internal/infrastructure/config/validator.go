package configinfra

import (
	"errors"
	"fmt"
	"strings"

	configdomain "showip.dev/cli/internal/core/domain/config"
	configports "showip.dev/cli/internal/core/ports/config"
)

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// ConfigValidator validates configuration values
type ConfigValidator struct{}

// NewConfigValidator creates a new configuration validator
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// Validate checks every field and reports all problems at once.
func (v *ConfigValidator) Validate(cfg configdomain.InstallConfig) error {
	var errs []error

	if err := v.ValidatePluginName(cfg.PluginName); err != nil {
		errs = append(errs, err)
	}
	if cfg.PluginLibrary == "" {
		errs = append(errs, fmt.Errorf("plugin library cannot be empty"))
	}
	if len(cfg.Anchors) == 0 {
		errs = append(errs, fmt.Errorf("at least one anchor plugin type is required"))
	}
	for _, a := range cfg.Anchors {
		if err := v.ValidatePluginName(a); err != nil {
			errs = append(errs, fmt.Errorf("invalid anchor: %w", err))
		}
	}
	if !cfg.NoRestart && strings.TrimSpace(cfg.RestartCommand) == "" {
		errs = append(errs, fmt.Errorf("restart command cannot be empty unless restart is disabled"))
	}
	if cfg.LogLevel != "" && !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		errs = append(errs, fmt.Errorf("invalid log level: %s (must be debug, info, warn or error)", cfg.LogLevel))
	}

	return errors.Join(errs...)
}

// ValidatePluginName checks that a plugin type can be written on a single
// "type=" line of the panel file.
func (v *ConfigValidator) ValidatePluginName(name string) error {
	if name == "" {
		return fmt.Errorf("plugin name cannot be empty")
	}
	if strings.ContainsAny(name, " \t\r\n{}=") {
		return fmt.Errorf("plugin name %q contains whitespace, braces or '='", name)
	}
	return nil
}

var _ configports.Validator = (*ConfigValidator)(nil)
