package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"showip.dev/cli/internal/application/ports"
	configdomain "showip.dev/cli/internal/core/domain/config"
	"showip.dev/cli/internal/core/domain/panel"
	"showip.dev/cli/internal/core/domain/platform"
)

var (
	ErrLibraryNotFound     = errors.New("plugin library not found")
	ErrPluginDirNotFound   = errors.New("lxpanel plugin directory not found")
	ErrPanelConfigNotFound = errors.New("lxpanel panel config not found")
)

const fileMode = 0o644

// Environment carries the process facts used to locate default paths
type Environment struct {
	Home          string
	XDGConfigHome string
	WorkDir       string
	GOARCH        string
}

// CurrentEnvironment reads the environment of the running process
func CurrentEnvironment() Environment {
	home, _ := os.UserHomeDir()
	wd, _ := os.Getwd()
	return Environment{
		Home:          home,
		XDGConfigHome: os.Getenv("XDG_CONFIG_HOME"),
		WorkDir:       wd,
		GOARCH:        runtime.GOARCH,
	}
}

// InstallerService installs, removes and inspects the panel plugin
type InstallerService struct {
	cfg     configdomain.InstallConfig
	storage ports.Storage
	runner  ports.CommandRunner
	logger  ports.LoggingGateway
	env     Environment
}

// NewInstallerService creates a new installer service
func NewInstallerService(cfg configdomain.InstallConfig, storage ports.Storage, runner ports.CommandRunner, logger ports.LoggingGateway, env Environment) *InstallerService {
	return &InstallerService{
		cfg:     cfg,
		storage: storage,
		runner:  runner,
		logger:  logger,
		env:     env,
	}
}

// Install copies the plugin library and registers the plugin in the panel
func (s *InstallerService) Install(ctx context.Context) (*Report, error) {
	report, err := s.PlanInstall().Execute(ctx)
	s.logFinish(report, err)
	return report, err
}

// Uninstall removes the plugin library and its panel block
func (s *InstallerService) Uninstall(ctx context.Context) (*Report, error) {
	report, err := s.PlanUninstall().Execute(ctx)
	s.logFinish(report, err)
	return report, err
}

// PlanInstall returns the install run without executing it
func (s *InstallerService) PlanInstall() *Run {
	r := newRun("install", s.cfg.DryRun)

	r.add(StepLocateLibrary, func(ctx context.Context) (StepStatus, string, error) {
		lib := s.resolve(s.cfg.PluginLibrary)
		ok, err := s.storage.Exists(ctx, lib)
		if err != nil {
			return "", "", err
		}
		if !ok {
			return "", "", fmt.Errorf("%w: %s", ErrLibraryNotFound, lib)
		}
		r.report.LibraryPath = lib
		return StepDone, lib, nil
	})

	r.add(StepLocatePluginDir, func(ctx context.Context) (StepStatus, string, error) {
		return s.locatePluginDir(ctx, r.report)
	})

	r.add(StepCopyLibrary, func(ctx context.Context) (StepStatus, string, error) {
		dst := filepath.Join(r.report.PluginDir, filepath.Base(r.report.LibraryPath))
		r.report.InstalledLibrary = dst
		detail := fmt.Sprintf("%s -> %s", r.report.LibraryPath, dst)
		if s.cfg.DryRun {
			return StepPlanned, detail, nil
		}
		if err := s.storage.Copy(ctx, r.report.LibraryPath, dst); err != nil {
			return "", "", err
		}
		r.report.Changed = true
		return StepDone, detail, nil
	})

	r.add(StepLocatePanelConfig, func(ctx context.Context) (StepStatus, string, error) {
		return s.locatePanelConfig(ctx, r.report)
	})

	r.add(StepEditPanelConfig, func(ctx context.Context) (StepStatus, string, error) {
		data, err := s.storage.Read(ctx, r.report.PanelConfig)
		if err != nil {
			return "", "", err
		}
		doc := string(data)

		if panel.HasPlugin(doc, s.cfg.PluginName) {
			r.report.AlreadyConfigured = true
			r.stop()
			return StepSkipped, "already configured", nil
		}

		edited, anchor, err := panel.InsertAfter(doc, s.cfg.PluginName, panel.Anchors(s.cfg.Anchors...))
		if err != nil {
			return "", "", err
		}
		r.report.Anchor = anchor.Type
		detail := fmt.Sprintf("insert %s after %s", s.cfg.PluginName, anchor.Type)
		if s.cfg.DryRun {
			return StepPlanned, detail, nil
		}
		if err := s.writePanelConfig(ctx, r.report.PanelConfig, doc, edited); err != nil {
			return "", "", err
		}
		r.report.Changed = true
		return StepDone, detail, nil
	})

	r.add(StepRestartPanel, func(ctx context.Context) (StepStatus, string, error) {
		return s.restartPanel(ctx)
	})

	return r
}

// PlanUninstall returns the uninstall run without executing it
func (s *InstallerService) PlanUninstall() *Run {
	r := newRun("uninstall", s.cfg.DryRun)
	var touched bool

	r.add(StepLocatePluginDir, func(ctx context.Context) (StepStatus, string, error) {
		return s.locatePluginDir(ctx, r.report)
	})

	r.add(StepRemoveLibrary, func(ctx context.Context) (StepStatus, string, error) {
		target := filepath.Join(r.report.PluginDir, filepath.Base(s.cfg.PluginLibrary))
		ok, err := s.storage.Exists(ctx, target)
		if err != nil {
			return "", "", err
		}
		if !ok {
			return StepSkipped, "not installed", nil
		}
		r.report.InstalledLibrary = target
		touched = true
		if s.cfg.DryRun {
			return StepPlanned, "remove " + target, nil
		}
		if err := s.storage.Delete(ctx, target); err != nil {
			return "", "", err
		}
		r.report.Changed = true
		return StepDone, "removed " + target, nil
	})

	r.add(StepLocatePanelConfig, func(ctx context.Context) (StepStatus, string, error) {
		return s.locatePanelConfig(ctx, r.report)
	})

	r.add(StepEditPanelConfig, func(ctx context.Context) (StepStatus, string, error) {
		data, err := s.storage.Read(ctx, r.report.PanelConfig)
		if err != nil {
			return "", "", err
		}
		doc := string(data)

		edited, ok := panel.Remove(doc, s.cfg.PluginName)
		if !ok {
			return StepSkipped, "not configured", nil
		}
		detail := "remove " + s.cfg.PluginName + " block"
		touched = true
		if s.cfg.DryRun {
			return StepPlanned, detail, nil
		}
		if err := s.writePanelConfig(ctx, r.report.PanelConfig, doc, edited); err != nil {
			return "", "", err
		}
		r.report.Changed = true
		return StepDone, detail, nil
	})

	r.add(StepRestartPanel, func(ctx context.Context) (StepStatus, string, error) {
		if !touched {
			return StepSkipped, "nothing changed", nil
		}
		return s.restartPanel(ctx)
	})

	return r
}

// Status describes what is currently installed
type Status struct {
	PluginName       string `json:"plugin_name"`
	PluginDir        string `json:"plugin_dir,omitempty"`
	LibraryPath      string `json:"library_path,omitempty"`
	LibraryInstalled bool   `json:"library_installed"`
	PanelConfig      string `json:"panel_config,omitempty"`
	PanelConfigured  bool   `json:"panel_configured"`
	PluginConfig     string `json:"plugin_config,omitempty"`
}

// Status inspects the plugin directory and panel config without changing them
func (s *InstallerService) Status(ctx context.Context) (*Status, error) {
	st := &Status{PluginName: s.cfg.PluginName}
	found := &Report{}

	if _, _, err := s.locatePluginDir(ctx, found); err != nil && !errors.Is(err, ErrPluginDirNotFound) {
		return nil, err
	}
	if found.PluginDir != "" {
		st.PluginDir = found.PluginDir
		st.LibraryPath = filepath.Join(found.PluginDir, filepath.Base(s.cfg.PluginLibrary))
		ok, err := s.storage.Exists(ctx, st.LibraryPath)
		if err != nil {
			return nil, err
		}
		st.LibraryInstalled = ok
	}

	if _, _, err := s.locatePanelConfig(ctx, found); err != nil {
		if errors.Is(err, ErrPanelConfigNotFound) {
			return st, nil
		}
		return nil, err
	}
	st.PanelConfig = found.PanelConfig

	data, err := s.storage.Read(ctx, st.PanelConfig)
	if err != nil {
		return nil, err
	}
	doc := string(data)
	st.PanelConfigured = panel.HasPlugin(doc, s.cfg.PluginName)
	st.PluginConfig, _ = panel.PluginConfig(doc, s.cfg.PluginName)

	return st, nil
}

func (s *InstallerService) locatePluginDir(ctx context.Context, report *Report) (StepStatus, string, error) {
	if s.cfg.PluginsDir != "" {
		report.PluginDir = s.resolve(s.cfg.PluginsDir)
		return StepDone, report.PluginDir, nil
	}

	candidates := platform.PluginDirCandidates(s.cfg.LibRoot, s.env.GOARCH)
	dir, ok, err := s.storage.FirstExisting(ctx, candidates)
	if err != nil {
		return "", "", err
	}
	if !ok {
		return "", "", fmt.Errorf("%w (tried %s)", ErrPluginDirNotFound, strings.Join(candidates, ", "))
	}
	s.logger.Log(ports.LogLevelDebug, "Found plugin directory", map[string]interface{}{"path": dir})
	report.PluginDir = dir
	return StepDone, dir, nil
}

func (s *InstallerService) locatePanelConfig(ctx context.Context, report *Report) (StepStatus, string, error) {
	candidates := platform.PanelConfigCandidates(s.env.Home, s.env.XDGConfigHome, s.env.WorkDir, s.cfg.PanelProfile)
	if s.cfg.PanelConfig != "" {
		candidates = []string{s.resolve(s.cfg.PanelConfig)}
	}

	path, ok, err := s.storage.FirstExisting(ctx, candidates)
	if err != nil {
		return "", "", err
	}
	if !ok {
		return "", "", fmt.Errorf("%w (tried %s)", ErrPanelConfigNotFound, strings.Join(candidates, ", "))
	}
	s.logger.Log(ports.LogLevelDebug, "Found panel config", map[string]interface{}{"path": path})
	report.PanelConfig = path
	return StepDone, path, nil
}

func (s *InstallerService) writePanelConfig(ctx context.Context, path, original, edited string) error {
	if s.cfg.Backup {
		backup := path + ".bak"
		if err := s.storage.Write(ctx, backup, []byte(original), fileMode); err != nil {
			return fmt.Errorf("failed to back up panel config: %w", err)
		}
		s.logger.Log(ports.LogLevelDebug, "Backed up panel config", map[string]interface{}{"path": backup})
	}
	return s.storage.Write(ctx, path, []byte(edited), fileMode)
}

func (s *InstallerService) restartPanel(ctx context.Context) (StepStatus, string, error) {
	if s.cfg.NoRestart {
		return StepSkipped, "restart disabled", nil
	}
	name, args := splitCommand(s.cfg.RestartCommand)
	if name == "" {
		return "", "", fmt.Errorf("restart command is empty")
	}
	if s.cfg.DryRun {
		return StepPlanned, s.cfg.RestartCommand, nil
	}
	if err := s.runner.Run(ctx, name, args...); err != nil {
		return "", "", err
	}
	return StepDone, s.cfg.RestartCommand, nil
}

// resolve expands "~/" and anchors relative paths at the working directory.
func (s *InstallerService) resolve(path string) string {
	path = platform.ExpandPath(path, s.env.Home)
	if strings.Contains(path, "://") || filepath.IsAbs(path) || s.env.WorkDir == "" {
		return path
	}
	return filepath.Join(s.env.WorkDir, path)
}

func (s *InstallerService) logFinish(report *Report, err error) {
	fields := map[string]interface{}{
		"id":      report.ID,
		"elapsed": report.Elapsed.String(),
	}
	if err != nil {
		s.logger.LogError(err, "Failed to "+report.Operation+" "+s.cfg.PluginName, fields)
		return
	}
	s.logger.Log(ports.LogLevelInfo, "Finished "+report.Operation+" of "+s.cfg.PluginName, fields)
}

// splitCommand splits a command line on whitespace. Quoting is not interpreted.
func splitCommand(line string) (string, []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}
