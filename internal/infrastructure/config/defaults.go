package configinfra

import (
	"context"

	configdomain "showip.dev/cli/internal/core/domain/config"
	"showip.dev/cli/internal/core/domain/platform"
	configports "showip.dev/cli/internal/core/ports/config"
)

// Default values applied before any other source.
const (
	DefaultPluginName     = "showip"
	DefaultPluginLibrary  = "showip.so"
	DefaultRestartCommand = "lxpanelctl restart"
	DefaultLogLevel       = "info"
	DefaultAnchor         = "volumealsa"
)

type DefaultLoader struct{}

func NewDefaultLoader() *DefaultLoader { return &DefaultLoader{} }

func (l *DefaultLoader) Name() string { return "default" }

// Load returns the built-in defaults (priority 4).
func (l *DefaultLoader) Load(ctx context.Context) (configdomain.Snapshot, error) {
	snap := make(configdomain.Snapshot)
	set := func(key string, value interface{}) {
		snap.Set(key, value, "default", "", configdomain.PriorityDefault)
	}

	set(configdomain.KeyPluginName, DefaultPluginName)
	set(configdomain.KeyPluginLibrary, DefaultPluginLibrary)
	set(configdomain.KeyLibRoot, platform.DefaultLibRoot)
	set(configdomain.KeyPanelProfile, platform.DefaultProfile)
	set(configdomain.KeyAnchors, []string{DefaultAnchor})
	set(configdomain.KeyRestartCommand, DefaultRestartCommand)
	set(configdomain.KeyNoRestart, false)
	set(configdomain.KeyBackup, true)
	set(configdomain.KeyDryRun, false)
	set(configdomain.KeyLogLevel, DefaultLogLevel)
	set(configdomain.KeyDebug, false)

	return snap, nil
}

var _ configports.Loader = (*DefaultLoader)(nil)
