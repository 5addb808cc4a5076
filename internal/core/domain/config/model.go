package configdomain

import "sort"

// Source priorities; a lower number wins when snapshots are merged.
const (
	PriorityFlag    = 1
	PriorityEnv     = 2
	PriorityFile    = 3
	PriorityDefault = 4
)

// Configuration keys shared by every loader.
const (
	KeyPluginName     = "plugin_name"
	KeyPluginLibrary  = "plugin_library"
	KeyPluginsDir     = "plugins_dir"
	KeyLibRoot        = "lib_root"
	KeyPanelConfig    = "panel_config"
	KeyPanelProfile   = "panel_profile"
	KeyAnchors        = "anchors"
	KeyRestartCommand = "restart_command"
	KeyNoRestart      = "no_restart"
	KeyBackup         = "backup"
	KeyDryRun         = "dry_run"
	KeyLogLevel       = "log_level"
	KeyDebug          = "debug"
)

// Entry represents a single configuration value with provenance and priority.
type Entry struct {
	Key        string
	Value      interface{}
	Source     string
	SourcePath string
	Priority   int
}

// Snapshot is a collection of config entries keyed by field name.
type Snapshot map[string]Entry

// Merge merges another snapshot into this one respecting priority
// (lower number indicates higher priority).
func (s Snapshot) Merge(other Snapshot) {
	for k, e := range other {
		if existing, ok := s[k]; !ok || e.Priority <= existing.Priority {
			s[k] = e
		}
	}
}

// Set records a value for key.
func (s Snapshot) Set(key string, value interface{}, source, sourcePath string, priority int) {
	s[key] = Entry{Key: key, Value: value, Source: source, SourcePath: sourcePath, Priority: priority}
}

// Keys returns the snapshot keys in lexical order.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns the string value of key, or "" when absent or mistyped.
func (s Snapshot) String(key string) string {
	v, _ := s[key].Value.(string)
	return v
}

// Bool returns the bool value of key, or false when absent or mistyped.
func (s Snapshot) Bool(key string) bool {
	v, _ := s[key].Value.(bool)
	return v
}

// Strings returns the string list value of key.
func (s Snapshot) Strings(key string) []string {
	v, _ := s[key].Value.([]string)
	return append([]string(nil), v...)
}

// InstallConfig is the resolved configuration handed to the installer.
type InstallConfig struct {
	PluginName     string
	PluginLibrary  string
	PluginsDir     string
	LibRoot        string
	PanelConfig    string
	PanelProfile   string
	Anchors        []string
	RestartCommand string
	NoRestart      bool
	Backup         bool
	DryRun         bool
	LogLevel       string
	Debug          bool
}

// FromSnapshot decodes a merged snapshot.
func FromSnapshot(s Snapshot) InstallConfig {
	return InstallConfig{
		PluginName:     s.String(KeyPluginName),
		PluginLibrary:  s.String(KeyPluginLibrary),
		PluginsDir:     s.String(KeyPluginsDir),
		LibRoot:        s.String(KeyLibRoot),
		PanelConfig:    s.String(KeyPanelConfig),
		PanelProfile:   s.String(KeyPanelProfile),
		Anchors:        s.Strings(KeyAnchors),
		RestartCommand: s.String(KeyRestartCommand),
		NoRestart:      s.Bool(KeyNoRestart),
		Backup:         s.Bool(KeyBackup),
		DryRun:         s.Bool(KeyDryRun),
		LogLevel:       s.String(KeyLogLevel),
		Debug:          s.Bool(KeyDebug),
	}
}
