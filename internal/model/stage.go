package model

import (
	"fmt"
	"time"
)

// Stage names one of the three pipeline stages.
type Stage string

const (
	// StageFetch downloads the input URLs into raw page artifacts.
	StageFetch Stage = "fetch"
	// StageProcess extracts documents from raw page artifacts.
	StageProcess Stage = "process"
	// StageAnalyze computes the corpus report from extracted documents.
	StageAnalyze Stage = "analyze"
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{StageFetch, StageProcess, StageAnalyze}

// ParseStage converts a stage name into a Stage.
func ParseStage(name string) (Stage, error) {
	for _, s := range Stages {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStage, name)
}

// String returns the stage name.
func (s Stage) String() string {
	return string(s)
}

// MarkerFile returns the base name of the stage's completion marker.
func (s Stage) MarkerFile() string {
	return string(s) + "_complete.json"
}

// StateFile returns the base name of the stage's persisted state record.
func (s Stage) StateFile() string {
	return string(s) + ".state.json"
}

// Upstream returns the stage whose marker this stage waits for.
// The fetch stage has no upstream stage and returns false.
func (s Stage) Upstream() (Stage, bool) {
	switch s {
	case StageProcess:
		return StageFetch, true
	case StageAnalyze:
		return StageProcess, true
	default:
		return "", false
	}
}

// State is the lifecycle state of a stage, persisted next to its marker.
type State string

const (
	// StatePending means the stage has never run or is waiting for its input.
	StatePending State = "pending"
	// StateRunning means the stage observed its input and is doing work.
	StateRunning State = "running"
	// StateDone means the stage wrote its outputs and its marker.
	StateDone State = "done"
	// StateStalled means the upstream marker did not appear within the wait timeout.
	StateStalled State = "stalled"
	// StateFailed means the stage could not write its outputs.
	StateFailed State = "failed"
)

// Terminal reports whether no further transition is expected without a rerun.
func (s State) Terminal() bool {
	return s == StateDone || s == StateStalled || s == StateFailed
}

// StageState is the persisted state record of one stage.
type StageState struct {
	Stage     Stage     `json:"stage"`
	State     State     `json:"state"`
	UpdatedAt time.Time `json:"updated_at"`

	// Detail carries a short human-readable note (e.g. the error of a failed run).
	Detail string `json:"detail,omitempty"`
}

// StageRun is one completed invocation of a stage, kept in the run history.
type StageRun struct {
	ID         int64     `json:"id"`
	Stage      Stage     `json:"stage"`
	State      State     `json:"state"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Detail     string    `json:"detail,omitempty"`
}

// Duration returns how long the run took, including the upstream wait.
func (r StageRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
