package lexicon

import (
	"context"
	"time"
)

// Mode selects the maintenance step list.
type Mode string

// Mode constants. Each mode runs a superset of the previous one.
const (
	ModeDaily  Mode = "daily"
	ModeWeekly Mode = "weekly"
	ModeFull   Mode = "full"
)

// Maintenance step names.
const (
	StepHealthCheckPre  = "health_check_pre"
	StepLogAnalysis     = "log_analysis"
	StepEnrichment      = "enrichment"
	StepTagHygiene      = "tag_hygiene"
	StepContentAudit    = "content_audit"
	StepContentGaps     = "content_gaps"
	StepImportAll       = "import_all"
	StepHealthCheckPost = "health_check_post"
)

// RunVerdict is the overall outcome of a maintenance run.
type RunVerdict string

// RunVerdict constants.
const (
	RunCompleted           RunVerdict = "completed"
	RunCompletedWithErrors RunVerdict = "completed_with_errors"
	RunHalted              RunVerdict = "halted"
)

// StepResult records one executed maintenance step.
type StepResult struct {
	Name     string         `json:"name"`
	Status   Status         `json:"status"`
	Duration time.Duration  `json:"duration"`
	Issues   []string       `json:"issues"`
	Details  map[string]any `json:"details,omitempty"`
}

// HealthDelta is the change between the pre and post health checks.
// A nil field means one of the snapshots was unavailable.
type HealthDelta struct {
	ZeroResultRateChange *float64 `json:"zeroResultRateChange,omitempty"`
	NeverEnrichedChange  *int     `json:"neverEnrichedChange,omitempty"`
}

// MaintenanceRun is the report of one orchestrated run.
type MaintenanceRun struct {
	Mode      Mode          `json:"mode"`
	DryRun    bool          `json:"dryRun"`
	Steps     []StepResult  `json:"steps"`
	StoppedAt string        `json:"stoppedAt,omitempty"`
	Verdict   RunVerdict    `json:"verdict"`
	Delta     *HealthDelta  `json:"delta,omitempty"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
}

// Step returns the result for the named step, or nil if it did not run.
func (r *MaintenanceRun) Step(name string) *StepResult {
	for i := range r.Steps {
		if r.Steps[i].Name == name {
			return &r.Steps[i]
		}
	}
	return nil
}

// StepNames returns the executed step names in order.
func (r *MaintenanceRun) StepNames() []string {
	names := make([]string, len(r.Steps))
	for i, s := range r.Steps {
		names[i] = s.Name
	}
	return names
}

// RunOptions configures a maintenance run.
type RunOptions struct {
	Mode        Mode     `json:"mode"`
	Skip        []string `json:"skip"`
	StopOnError bool     `json:"stopOnError"`
	DryRun      bool     `json:"dryRun"`
	EnrichLimit int      `json:"enrichLimit"`
}

// Importer pulls content from upstream sources. Connectors live outside
// this module.
type Importer interface {
	Import(ctx context.Context, dryRun bool) error
}

// StepObserver is notified as each maintenance step finishes.
type StepObserver interface {
	ObserveStep(ctx context.Context, step StepResult)
}

// Maintainer runs an ordered maintenance cycle.
type Maintainer interface {
	Run(ctx context.Context, opts RunOptions) (*MaintenanceRun, error)
}
