package pipeline

import (
	"time"

	godiff "github.com/sourcegraph/go-diff/diff"

	"swagfill/internal/dtograph"
	"swagfill/internal/synth"
)

// ServiceReport is the outcome of one service unit.
type ServiceReport struct {
	Path           string                  `json:"path" yaml:"path"`
	Name           string                  `json:"name" yaml:"name"`
	Operations     []synth.OperationResult `json:"operations,omitempty" yaml:"operations,omitempty"`
	Updated        int                     `json:"operationsUpdated" yaml:"operationsUpdated"`
	ImportsRemoved int                     `json:"importsRemoved,omitempty" yaml:"importsRemoved,omitempty"`
}

// FileFailure is a file that could not be processed. Other files are
// unaffected.
type FileFailure struct {
	Path  string `json:"path" yaml:"path"`
	Code  string `json:"code" yaml:"code"`
	Error string `json:"error" yaml:"error"`
}

// Report summarizes a run.
type Report struct {
	RunID      string    `json:"runId" yaml:"runId"`
	StartedAt  time.Time `json:"startedAt" yaml:"startedAt"`
	FinishedAt time.Time `json:"finishedAt" yaml:"finishedAt"`
	DryRun     bool      `json:"dryRun" yaml:"dryRun"`

	Services  []ServiceReport       `json:"services" yaml:"services"`
	DataTypes []dtograph.UnitResult `json:"dataTypes" yaml:"dataTypes"`

	OperationsUpdated int      `json:"operationsUpdated" yaml:"operationsUpdated"`
	DTOsUpdated       int      `json:"dtosUpdated" yaml:"dtosUpdated"`
	FilesWritten      int      `json:"filesWritten" yaml:"filesWritten"`
	FilesFailed       int      `json:"filesFailed" yaml:"filesFailed"`
	Unresolved        []string `json:"unresolved" yaml:"unresolved"`

	Failures []FileFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
	// Backup is the archive of overwritten originals, if one was made.
	Backup string `json:"backup,omitempty" yaml:"backup,omitempty"`

	// Diffs holds the previews of a dry run.
	Diffs []*godiff.FileDiff `json:"-" yaml:"-"`
}

// Changed reports whether the run wrote, or in a dry run would write, any
// file.
func (r *Report) Changed() bool {
	return r.FilesWritten > 0
}
