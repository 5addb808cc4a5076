package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StepStatus is the outcome of a single step
type StepStatus string

const (
	StepDone    StepStatus = "done"
	StepSkipped StepStatus = "skipped"
	StepPlanned StepStatus = "planned"
	StepFailed  StepStatus = "failed"
)

// Step names
const (
	StepLocateLibrary     = "locate-library"
	StepLocatePluginDir   = "locate-plugin-dir"
	StepCopyLibrary       = "copy-library"
	StepRemoveLibrary     = "remove-library"
	StepLocatePanelConfig = "locate-panel-config"
	StepEditPanelConfig   = "edit-panel-config"
	StepRestartPanel      = "restart-panel"
)

// StepResult records what a step did
type StepResult struct {
	Name   string     `json:"name"`
	Status StepStatus `json:"status"`
	Detail string     `json:"detail,omitempty"`
}

// Report summarizes one install or uninstall run
type Report struct {
	ID                string        `json:"id"`
	Operation         string        `json:"operation"`
	DryRun            bool          `json:"dry_run"`
	Steps             []StepResult  `json:"steps"`
	LibraryPath       string        `json:"library_path,omitempty"`
	PluginDir         string        `json:"plugin_dir,omitempty"`
	InstalledLibrary  string        `json:"installed_library,omitempty"`
	PanelConfig       string        `json:"panel_config,omitempty"`
	Anchor            string        `json:"anchor,omitempty"`
	AlreadyConfigured bool          `json:"already_configured"`
	Changed           bool          `json:"changed"`
	Elapsed           time.Duration `json:"elapsed"`
}

// Step is one named unit of work in a run
type Step struct {
	Name string
	run  func(ctx context.Context) (StepStatus, string, error)
}

// Run executes the steps of one operation in order. A cancelled context is
// observed before each step starts.
type Run struct {
	report  *Report
	steps   []Step
	next    int
	stopped bool
	started time.Time
}

func newRun(operation string, dryRun bool) *Run {
	return &Run{
		report: &Report{
			ID:        uuid.NewString(),
			Operation: operation,
			DryRun:    dryRun,
		},
		started: time.Now(),
	}
}

func (r *Run) add(name string, fn func(ctx context.Context) (StepStatus, string, error)) {
	r.steps = append(r.steps, Step{Name: name, run: fn})
}

// stop ends the run successfully after the current step.
func (r *Run) stop() {
	r.stopped = true
}

// StepNames returns the names of all steps in execution order
func (r *Run) StepNames() []string {
	names := make([]string, 0, len(r.steps))
	for _, s := range r.steps {
		names = append(names, s.Name)
	}
	return names
}

// Done reports whether no step is left to run
func (r *Run) Done() bool {
	return r.stopped || r.next >= len(r.steps)
}

// Next runs the next step
func (r *Run) Next(ctx context.Context) (StepResult, error) {
	if r.Done() {
		return StepResult{}, fmt.Errorf("run already finished")
	}
	step := r.steps[r.next]

	if err := ctx.Err(); err != nil {
		r.stopped = true
		return StepResult{Name: step.Name}, fmt.Errorf("%s: %w", step.Name, err)
	}

	r.next++
	status, detail, err := step.run(ctx)
	if err != nil {
		r.stopped = true
		result := StepResult{Name: step.Name, Status: StepFailed, Detail: err.Error()}
		r.report.Steps = append(r.report.Steps, result)
		return result, fmt.Errorf("%s: %w", step.Name, err)
	}

	result := StepResult{Name: step.Name, Status: status, Detail: detail}
	r.report.Steps = append(r.report.Steps, result)
	return result, nil
}

// Execute runs every remaining step and returns the report
func (r *Run) Execute(ctx context.Context) (*Report, error) {
	for !r.Done() {
		if _, err := r.Next(ctx); err != nil {
			return r.Report(), err
		}
	}
	return r.Report(), nil
}

// Report returns the report with the elapsed time so far
func (r *Run) Report() *Report {
	r.report.Elapsed = time.Since(r.started)
	return r.report
}
