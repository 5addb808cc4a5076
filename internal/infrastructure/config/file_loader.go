package configinfra

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	configdomain "showip.dev/cli/internal/core/domain/config"
	configports "showip.dev/cli/internal/core/ports/config"
	"showip.dev/cli/internal/infrastructure/storage"
)

// FileLoader reads the saved JSON configuration (priority 3). Keys with an
// unexpected type are ignored; a file that is not valid JSON is an error.
// The path may be an afs URL (file://, mem://).
type FileLoader struct {
	path  string
	files fileSource
}

type fileSource interface {
	Exists(ctx context.Context, path string) (bool, error)
	Read(ctx context.Context, path string) ([]byte, error)
}

// NewFileLoader creates a loader for path, or for DefaultConfigPath when
// path is empty.
func NewFileLoader(path string) *FileLoader {
	if path == "" {
		path = DefaultConfigPath()
	}
	return &FileLoader{path: path, files: storage.NewAFSStore()}
}

// DefaultConfigPath returns ~/.config/showip/config.json.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "showip", "config.json")
}

func (l *FileLoader) Name() string { return "file" }

// Path returns the file the loader reads.
func (l *FileLoader) Path() string { return l.path }

func (l *FileLoader) Load(ctx context.Context) (configdomain.Snapshot, error) {
	snap := make(configdomain.Snapshot)

	ok, err := l.files.Exists(ctx, l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", l.path, err)
	}
	if !ok {
		return snap, nil
	}
	data, err := l.files.Read(ctx, l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", l.path, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("config file %s is not valid JSON", l.path)
	}

	toEntry := func(field string, v interface{}) {
		snap.Set(field, v, "file", l.path, configdomain.PriorityFile)
	}
	stringField := func(field string) {
		if r := gjson.GetBytes(data, field); r.Type == gjson.String && r.String() != "" {
			toEntry(field, r.String())
		}
	}
	boolField := func(field string) {
		if r := gjson.GetBytes(data, field); r.IsBool() {
			toEntry(field, r.Bool())
		}
	}

	stringField(configdomain.KeyPluginName)
	stringField(configdomain.KeyPluginLibrary)
	stringField(configdomain.KeyPluginsDir)
	stringField(configdomain.KeyLibRoot)
	stringField(configdomain.KeyPanelConfig)
	stringField(configdomain.KeyPanelProfile)
	stringField(configdomain.KeyRestartCommand)
	stringField(configdomain.KeyLogLevel)
	boolField(configdomain.KeyNoRestart)
	boolField(configdomain.KeyBackup)
	boolField(configdomain.KeyDebug)

	// anchors accepts a JSON array or a comma separated string
	switch r := gjson.GetBytes(data, configdomain.KeyAnchors); {
	case r.IsArray():
		var anchors []string
		for _, item := range r.Array() {
			if item.Type == gjson.String && strings.TrimSpace(item.String()) != "" {
				anchors = append(anchors, strings.TrimSpace(item.String()))
			}
		}
		if len(anchors) > 0 {
			toEntry(configdomain.KeyAnchors, anchors)
		}
	case r.Type == gjson.String:
		if anchors := splitList(r.String()); len(anchors) > 0 {
			toEntry(configdomain.KeyAnchors, anchors)
		}
	}

	return snap, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var _ configports.Loader = (*FileLoader)(nil)
