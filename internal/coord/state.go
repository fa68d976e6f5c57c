package coord

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/iidollbunny/docpipe/internal/model"
	"github.com/iidollbunny/docpipe/internal/storage"
)

// StateStore persists stage lifecycle states under the status directory.
type StateStore struct {
	layout *storage.Layout
	now    func() time.Time
}

// NewStateStore creates a StateStore for the given layout.
func NewStateStore(layout *storage.Layout) *StateStore {
	return &StateStore{layout: layout, now: time.Now}
}

// Set records the state of a stage, replacing any previous record.
func (s *StateStore) Set(stage model.Stage, state model.State, detail string) error {
	rec := model.StageState{
		Stage:     stage,
		State:     state,
		UpdatedAt: s.now().UTC(),
		Detail:    detail,
	}
	if err := storage.WriteJSON(s.layout.StatePath(stage), rec); err != nil {
		return fmt.Errorf("failed to record %s state %s: %w", stage, state, err)
	}
	return nil
}

// Get returns the recorded state of a stage. A stage without a record is pending.
func (s *StateStore) Get(stage model.Stage) (model.StageState, error) {
	var rec model.StageState
	if err := storage.ReadJSON(s.layout.StatePath(stage), &rec); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.StageState{Stage: stage, State: model.StatePending}, nil
		}
		return model.StageState{}, fmt.Errorf("failed to read %s state: %w", stage, err)
	}
	return rec, nil
}

// StageStatus is a stage's recorded state together with marker presence.
type StageStatus struct {
	model.StageState
	MarkerPresent bool `json:"marker_present"`
}

// Snapshot returns the status of every stage in pipeline order.
func (s *StateStore) Snapshot() ([]StageStatus, error) {
	out := make([]StageStatus, 0, len(model.Stages))
	for _, stage := range model.Stages {
		st, err := s.Get(stage)
		if err != nil {
			return nil, err
		}
		out = append(out, StageStatus{
			StageState:    st,
			MarkerPresent: storage.Exists(s.layout.MarkerPath(stage)),
		})
	}
	return out, nil
}
