package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"showip.dev/cli/internal/application/ports"
	configdomain "showip.dev/cli/internal/core/domain/config"
	"showip.dev/cli/internal/core/domain/panel"
	"showip.dev/cli/internal/core/testfixtures"
	"showip.dev/cli/internal/core/textwindow"
)

// Test doubles

type memStore struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  map[string]bool
	fail  map[string]error
}

func newMemStore() *memStore {
	return &memStore{files: map[string][]byte{}, dirs: map[string]bool{}, fail: map[string]error{}}
}

func (m *memStore) Exists(_ context.Context, path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok || m.dirs[path], nil
}

func (m *memStore) Read(_ context.Context, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return append([]byte(nil), data...), nil
}

func (m *memStore) Write(_ context.Context, path string, data []byte, _ os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail[path]; err != nil {
		return err
	}
	m.files[path] = append([]byte(nil), data...)
	return nil
}

func (m *memStore) Copy(ctx context.Context, src, dst string) error {
	data, err := m.Read(ctx, src)
	if err != nil {
		return err
	}
	return m.Write(ctx, dst, data, 0o644)
}

func (m *memStore) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[path]; !ok {
		return os.ErrNotExist
	}
	delete(m.files, path)
	return nil
}

func (m *memStore) FirstExisting(ctx context.Context, candidates []string) (string, bool, error) {
	for _, c := range candidates {
		if ok, _ := m.Exists(ctx, c); ok {
			return c, true, nil
		}
	}
	return "", false, nil
}

func (m *memStore) paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, name string, args ...string) error {
	call := m.Called(ctx, name, args)
	return call.Error(0)
}

type nopLogger struct{}

func (nopLogger) Log(ports.LogLevel, string, map[string]interface{}) {}
func (nopLogger) LogError(error, string, map[string]interface{}) {}
func (nopLogger) SetLogLevel(ports.LogLevel) {}
func (nopLogger) GetLogLevel() ports.LogLevel { return ports.LogLevelInfo }

// Fixtures

const (
	testHome      = "/home/pi"
	testWorkDir   = "/home/pi/src/showip"
	testPluginDir = "/usr/lib/arm-linux-gnueabihf/lxpanel/plugins"
	testPanel     = "/home/pi/.config/lxpanel/LXDE-pi/panels/panel"
	testLibrary   = "/home/pi/src/showip/showip.so"
)

var testPanelDoc = testfixtures.NewPanelBuilder().
	WithPlugin("volumealsa").
	WithPlugin("dclock", "ClockFmt=%R").
	Build()

func testConfig() configdomain.InstallConfig {
	return configdomain.InstallConfig{
		PluginName:     "showip",
		PluginLibrary:  "showip.so",
		LibRoot:        "/usr/lib",
		PanelProfile:   "LXDE-pi",
		Anchors:        []string{"volumealsa"},
		RestartCommand: "lxpanelctl restart",
		Backup:         true,
		LogLevel:       "info",
	}
}

func testEnv() Environment {
	return Environment{Home: testHome, WorkDir: testWorkDir, GOARCH: "arm"}
}

func seededStore() *memStore {
	store := newMemStore()
	store.files[testLibrary] = []byte("ELF")
	store.files[testPanel] = []byte(testPanelDoc)
	store.dirs[testPluginDir] = true
	return store
}

func expectRestart(runner *MockRunner, err error) {
	runner.On("Run", mock.Anything, "lxpanelctl", []string{"restart"}).Return(err).Once()
}

func stepStatuses(report *Report) map[string]StepStatus {
	out := make(map[string]StepStatus, len(report.Steps))
	for _, s := range report.Steps {
		out[s.Name] = s.Status
	}
	return out
}

// Install

func TestInstall_Success(t *testing.T) {
	store := seededStore()
	runner := &MockRunner{}
	expectRestart(runner, nil)

	svc := NewInstallerService(testConfig(), store, runner, nopLogger{}, testEnv())
	report, err := svc.Install(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "install", report.Operation)
	assert.Equal(t, testLibrary, report.LibraryPath)
	assert.Equal(t, testPluginDir, report.PluginDir)
	assert.Equal(t, testPanel, report.PanelConfig)
	assert.Equal(t, "volumealsa", report.Anchor)
	assert.True(t, report.Changed)
	assert.False(t, report.AlreadyConfigured)

	assert.Equal(t, []byte("ELF"), store.files[testPluginDir+"/showip.so"])
	edited := string(store.files[testPanel])
	assert.True(t, panel.HasPlugin(edited, "showip"))
	assert.Less(t, strings.Index(edited, "type=volumealsa"), strings.Index(edited, "type=showip"))
	assert.Less(t, strings.Index(edited, "type=showip"), strings.Index(edited, "type=dclock"))
	assert.Equal(t, testPanelDoc, string(store.files[testPanel+".bak"]))

	for _, s := range report.Steps {
		assert.Equal(t, StepDone, s.Status, s.Name)
	}
	runner.AssertExpectations(t)
}

func TestInstall_AlreadyConfigured(t *testing.T) {
	store := seededStore()
	store.files[testPanel] = []byte(testPanelDoc + panel.Block("showip") + "\n")
	runner := &MockRunner{}

	svc := NewInstallerService(testConfig(), store, runner, nopLogger{}, testEnv())
	report, err := svc.Install(context.Background())
	require.NoError(t, err)

	assert.True(t, report.AlreadyConfigured)
	statuses := stepStatuses(report)
	assert.Equal(t, StepSkipped, statuses[StepEditPanelConfig])
	_, restarted := statuses[StepRestartPanel]
	assert.False(t, restarted)
	_, backedUp := store.files[testPanel+".bak"]
	assert.False(t, backedUp)
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
}

func TestInstall_Failures(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(store *memStore, cfg *configdomain.InstallConfig)
		wantErr  error
		wantStep string
	}{
		{
			name:     "MissingLibrary",
			mutate:   func(store *memStore, _ *configdomain.InstallConfig) { delete(store.files, testLibrary) },
			wantErr:  ErrLibraryNotFound,
			wantStep: StepLocateLibrary,
		},
		{
			name:     "MissingPluginDir",
			mutate:   func(store *memStore, _ *configdomain.InstallConfig) { delete(store.dirs, testPluginDir) },
			wantErr:  ErrPluginDirNotFound,
			wantStep: StepLocatePluginDir,
		},
		{
			name:     "MissingPanelConfig",
			mutate:   func(store *memStore, _ *configdomain.InstallConfig) { delete(store.files, testPanel) },
			wantErr:  ErrPanelConfigNotFound,
			wantStep: StepLocatePanelConfig,
		},
		{
			name:     "MissingAnchor",
			mutate:   func(_ *memStore, cfg *configdomain.InstallConfig) { cfg.Anchors = []string{"cpu"} },
			wantErr:  panel.ErrAnchorNotFound,
			wantStep: StepEditPanelConfig,
		},
		{
			name:     "AnchorIsLastBlock",
			mutate:   func(_ *memStore, cfg *configdomain.InstallConfig) { cfg.Anchors = []string{"dclock"} },
			wantErr:  textwindow.ErrEndNotFound,
			wantStep: StepEditPanelConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seededStore()
			cfg := testConfig()
			tt.mutate(store, &cfg)
			runner := &MockRunner{}

			report, err := NewInstallerService(cfg, store, runner, nopLogger{}, testEnv()).Install(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), err.Error())
			assert.True(t, strings.HasPrefix(err.Error(), tt.wantStep+": "), err.Error())

			last := report.Steps[len(report.Steps)-1]
			assert.Equal(t, tt.wantStep, last.Name)
			assert.Equal(t, StepFailed, last.Status)
			runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestInstall_FallbackAnchor(t *testing.T) {
	store := seededStore()
	cfg := testConfig()
	cfg.Anchors = []string{"cpu", "dclock"}
	runner := &MockRunner{}
	expectRestart(runner, nil)

	store.files[testPanel] = []byte(testfixtures.NewPanelBuilder().
		WithPlugin("volumealsa").
		WithPlugin("dclock", "ClockFmt=%R").
		WithBarePlugin("space").
		Build())

	report, err := NewInstallerService(cfg, store, runner, nopLogger{}, testEnv()).Install(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dclock", report.Anchor)

	want := testfixtures.NewPanelBuilder().
		WithPlugin("volumealsa").
		WithPlugin("dclock", "ClockFmt=%R").
		WithPlugin("showip").
		WithBarePlugin("space").
		Build()
	assert.Equal(t, want, string(store.files[testPanel]))
}

func TestInstall_DryRunChangesNothing(t *testing.T) {
	store := seededStore()
	before := store.paths()
	cfg := testConfig()
	cfg.DryRun = true
	runner := &MockRunner{}

	report, err := NewInstallerService(cfg, store, runner, nopLogger{}, testEnv()).Install(context.Background())
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.False(t, report.Changed)
	assert.Equal(t, before, store.paths())
	assert.Equal(t, testPanelDoc, string(store.files[testPanel]))

	statuses := stepStatuses(report)
	assert.Equal(t, StepDone, statuses[StepLocateLibrary])
	assert.Equal(t, StepPlanned, statuses[StepCopyLibrary])
	assert.Equal(t, StepPlanned, statuses[StepEditPanelConfig])
	assert.Equal(t, StepPlanned, statuses[StepRestartPanel])
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
}

func TestInstall_NoRestartNoBackup(t *testing.T) {
	store := seededStore()
	cfg := testConfig()
	cfg.NoRestart = true
	cfg.Backup = false
	runner := &MockRunner{}

	report, err := NewInstallerService(cfg, store, runner, nopLogger{}, testEnv()).Install(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StepSkipped, stepStatuses(report)[StepRestartPanel])
	_, backedUp := store.files[testPanel+".bak"]
	assert.False(t, backedUp)
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
}

func TestInstall_BackupFailureLeavesPanelUntouched(t *testing.T) {
	store := seededStore()
	store.fail[testPanel+".bak"] = errors.New("read-only")
	runner := &MockRunner{}

	_, err := NewInstallerService(testConfig(), store, runner, nopLogger{}, testEnv()).Install(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to back up panel config")
	assert.Equal(t, testPanelDoc, string(store.files[testPanel]))
}

func TestInstall_RestartFailure(t *testing.T) {
	store := seededStore()
	runner := &MockRunner{}
	expectRestart(runner, errors.New("lxpanelctl failed"))

	report, err := NewInstallerService(testConfig(), store, runner, nopLogger{}, testEnv()).Install(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), StepRestartPanel)
	assert.True(t, report.Changed, "earlier steps keep their effect")
	runner.AssertExpectations(t)
}

func TestInstall_ExplicitPaths(t *testing.T) {
	store := newMemStore()
	store.files["/opt/build/netmon.so"] = []byte("ELF")
	store.files["/tmp/panel"] = []byte(testPanelDoc)
	store.dirs["/opt/plugins"] = true

	cfg := testConfig()
	cfg.PluginName = "netmon"
	cfg.PluginLibrary = "../../../../opt/build/netmon.so"
	cfg.PluginsDir = "/opt/plugins"
	cfg.PanelConfig = "/tmp/panel"
	cfg.NoRestart = true

	report, err := NewInstallerService(cfg, store, &MockRunner{}, nopLogger{}, testEnv()).Install(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/opt/build/netmon.so", report.LibraryPath)
	assert.Equal(t, "/opt/plugins/netmon.so", report.InstalledLibrary)
	assert.True(t, panel.HasPlugin(string(store.files["/tmp/panel"]), "netmon"))
}

func TestInstall_CancelledBeforeStart(t *testing.T) {
	store := seededStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewInstallerService(testConfig(), store, &MockRunner{}, nopLogger{}, testEnv()).Install(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, report.Steps)
	assert.Equal(t, testPanelDoc, string(store.files[testPanel]))
}

func TestPlanInstall_StepByStep(t *testing.T) {
	store := seededStore()
	runner := &MockRunner{}
	run := NewInstallerService(testConfig(), store, runner, nopLogger{}, testEnv()).PlanInstall()

	assert.Equal(t, []string{
		StepLocateLibrary, StepLocatePluginDir, StepCopyLibrary,
		StepLocatePanelConfig, StepEditPanelConfig, StepRestartPanel,
	}, run.StepNames())

	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < 3; i++ {
		_, err := run.Next(ctx)
		require.NoError(t, err)
	}
	cancel()

	_, err := run.Next(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, run.Done())
	assert.Len(t, run.Report().Steps, 3)
	assert.Equal(t, testPanelDoc, string(store.files[testPanel]))

	_, err = run.Next(context.Background())
	assert.Error(t, err)
}

// Uninstall

func installedStore() *memStore {
	store := seededStore()
	store.files[testPluginDir+"/showip.so"] = []byte("ELF")
	doc, _, _ := panel.InsertAfter(testPanelDoc, "showip", panel.Anchors("volumealsa"))
	store.files[testPanel] = []byte(doc)
	return store
}

func TestUninstall_Success(t *testing.T) {
	store := installedStore()
	runner := &MockRunner{}
	expectRestart(runner, nil)

	report, err := NewInstallerService(testConfig(), store, runner, nopLogger{}, testEnv()).Uninstall(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Changed)
	_, ok := store.files[testPluginDir+"/showip.so"]
	assert.False(t, ok)
	assert.Equal(t, testPanelDoc, string(store.files[testPanel]))
	runner.AssertExpectations(t)
}

func TestUninstall_NothingInstalled(t *testing.T) {
	store := seededStore()
	runner := &MockRunner{}

	report, err := NewInstallerService(testConfig(), store, runner, nopLogger{}, testEnv()).Uninstall(context.Background())
	require.NoError(t, err)

	assert.False(t, report.Changed)
	statuses := stepStatuses(report)
	assert.Equal(t, StepSkipped, statuses[StepRemoveLibrary])
	assert.Equal(t, StepSkipped, statuses[StepEditPanelConfig])
	assert.Equal(t, StepSkipped, statuses[StepRestartPanel])
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
}

func TestUninstall_DryRun(t *testing.T) {
	store := installedStore()
	before := string(store.files[testPanel])
	cfg := testConfig()
	cfg.DryRun = true

	report, err := NewInstallerService(cfg, store, &MockRunner{}, nopLogger{}, testEnv()).Uninstall(context.Background())
	require.NoError(t, err)

	statuses := stepStatuses(report)
	assert.Equal(t, StepPlanned, statuses[StepRemoveLibrary])
	assert.Equal(t, StepPlanned, statuses[StepEditPanelConfig])
	assert.Equal(t, StepPlanned, statuses[StepRestartPanel])
	assert.Equal(t, before, string(store.files[testPanel]))
	_, ok := store.files[testPluginDir+"/showip.so"]
	assert.True(t, ok)
}

// Status

func TestStatus(t *testing.T) {
	t.Run("Installed", func(t *testing.T) {
		st, err := NewInstallerService(testConfig(), installedStore(), &MockRunner{}, nopLogger{}, testEnv()).Status(context.Background())
		require.NoError(t, err)

		assert.Equal(t, testPluginDir, st.PluginDir)
		assert.Equal(t, filepath.Join(testPluginDir, "showip.so"), st.LibraryPath)
		assert.True(t, st.LibraryInstalled)
		assert.Equal(t, testPanel, st.PanelConfig)
		assert.True(t, st.PanelConfigured)
		assert.Empty(t, st.PluginConfig)
	})

	t.Run("NotInstalled", func(t *testing.T) {
		st, err := NewInstallerService(testConfig(), seededStore(), &MockRunner{}, nopLogger{}, testEnv()).Status(context.Background())
		require.NoError(t, err)

		assert.False(t, st.LibraryInstalled)
		assert.False(t, st.PanelConfigured)
	})

	t.Run("NothingFound", func(t *testing.T) {
		st, err := NewInstallerService(testConfig(), newMemStore(), &MockRunner{}, nopLogger{}, testEnv()).Status(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "showip", st.PluginName)
		assert.Empty(t, st.PluginDir)
		assert.Empty(t, st.PanelConfig)
	})
}

func TestSplitCommand(t *testing.T) {
	name, args := splitCommand("  lxpanelctl   restart ")
	assert.Equal(t, "lxpanelctl", name)
	assert.Equal(t, []string{"restart"}, args)

	name, args = splitCommand("")
	assert.Empty(t, name)
	assert.Empty(t, args)
}
