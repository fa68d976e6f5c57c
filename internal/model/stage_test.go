package model

import (
	"errors"
	"testing"
)

// TestParseStage tests stage name parsing.
func TestParseStage(t *testing.T) {
	t.Parallel()

	for _, s := range Stages {
		got, err := ParseStage(string(s))
		if err != nil {
			t.Errorf("ParseStage(%q) returned error: %v", s, err)
		}
		if got != s {
			t.Errorf("ParseStage(%q) = %q", s, got)
		}
	}

	if _, err := ParseStage("publish"); !errors.Is(err, ErrUnknownStage) {
		t.Errorf("expected ErrUnknownStage, got %v", err)
	}
}

// TestStageFiles tests the marker and state file names.
func TestStageFiles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		stage  Stage
		marker string
		state  string
	}{
		{stage: StageFetch, marker: "fetch_complete.json", state: "fetch.state.json"},
		{stage: StageProcess, marker: "process_complete.json", state: "process.state.json"},
		{stage: StageAnalyze, marker: "analyze_complete.json", state: "analyze.state.json"},
	}
	for _, tt := range tests {
		if got := tt.stage.MarkerFile(); got != tt.marker {
			t.Errorf("%s marker: got %q, want %q", tt.stage, got, tt.marker)
		}
		if got := tt.stage.StateFile(); got != tt.state {
			t.Errorf("%s state: got %q, want %q", tt.stage, got, tt.state)
		}
	}
}

// TestStageUpstream tests the linear stage ordering.
func TestStageUpstream(t *testing.T) {
	t.Parallel()

	if _, ok := StageFetch.Upstream(); ok {
		t.Error("fetch should have no upstream stage")
	}
	if up, ok := StageProcess.Upstream(); !ok || up != StageFetch {
		t.Errorf("process upstream: got %q, %v", up, ok)
	}
	if up, ok := StageAnalyze.Upstream(); !ok || up != StageProcess {
		t.Errorf("analyze upstream: got %q, %v", up, ok)
	}
}

// TestStateTerminal tests which states end a run.
func TestStateTerminal(t *testing.T) {
	t.Parallel()

	terminal := map[State]bool{
		StatePending: false,
		StateRunning: false,
		StateDone:    true,
		StateStalled: true,
		StateFailed:  true,
	}
	for state, want := range terminal {
		if got := state.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", state, got, want)
		}
	}
}
