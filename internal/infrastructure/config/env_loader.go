package configinfra

import (
	"context"
	"os"
	"strconv"

	configdomain "showip.dev/cli/internal/core/domain/config"
	configports "showip.dev/cli/internal/core/ports/config"
)

type EnvLoader struct {
	lookup func(string) string
}

func NewEnvLoader() *EnvLoader { return &EnvLoader{lookup: os.Getenv} }

// NewEnvLoaderWithLookup reads variables through lookup instead of the process environment.
func NewEnvLoaderWithLookup(lookup func(string) string) *EnvLoader {
	return &EnvLoader{lookup: lookup}
}

func (l *EnvLoader) Name() string { return "env" }

// Load implements Loader by returning the environment snapshot.
func (l *EnvLoader) Load(ctx context.Context) (configdomain.Snapshot, error) {
	return l.LoadEnv(), nil
}

// LoadEnv builds a snapshot from SHOWIP_* environment variables (priority 2).
// Unparseable booleans are ignored.
func (l *EnvLoader) LoadEnv() configdomain.Snapshot {
	snap := make(configdomain.Snapshot)
	add := func(key, field string, convert func(string) (interface{}, bool)) {
		v := l.lookup(key)
		if v == "" {
			return
		}
		val := interface{}(v)
		if convert != nil {
			converted, ok := convert(v)
			if !ok {
				return
			}
			val = converted
		}
		snap.Set(field, val, "env", key, configdomain.PriorityEnv)
	}
	toBool := func(s string) (interface{}, bool) {
		b, err := strconv.ParseBool(s)
		return b, err == nil
	}
	toList := func(s string) (interface{}, bool) {
		list := splitList(s)
		return list, len(list) > 0
	}

	add("SHOWIP_PLUGIN_NAME", configdomain.KeyPluginName, nil)
	add("SHOWIP_PLUGIN_LIBRARY", configdomain.KeyPluginLibrary, nil)
	add("SHOWIP_PLUGINS_DIR", configdomain.KeyPluginsDir, nil)
	add("SHOWIP_LIB_ROOT", configdomain.KeyLibRoot, nil)
	add("SHOWIP_PANEL_CONFIG", configdomain.KeyPanelConfig, nil)
	add("SHOWIP_PANEL_PROFILE", configdomain.KeyPanelProfile, nil)
	add("SHOWIP_ANCHORS", configdomain.KeyAnchors, toList)
	add("SHOWIP_RESTART_COMMAND", configdomain.KeyRestartCommand, nil)
	add("SHOWIP_NO_RESTART", configdomain.KeyNoRestart, toBool)
	add("SHOWIP_BACKUP", configdomain.KeyBackup, toBool)
	add("SHOWIP_LOG_LEVEL", configdomain.KeyLogLevel, nil)
	add("SHOWIP_DEBUG", configdomain.KeyDebug, toBool)

	return snap
}

var _ configports.Loader = (*EnvLoader)(nil)
