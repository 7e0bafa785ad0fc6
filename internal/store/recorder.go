package store

import (
	"context"

	"github.com/roach88/turing/internal/ir"
)

// RunRecorder appends the steps of one run to the store. It satisfies the
// engine's Recorder interface.
type RunRecorder struct {
	store *Store
	runID string
}

// NewRunRecorder creates a recorder for the run with the given id. The run
// record must already have been written.
func NewRunRecorder(s *Store, runID string) *RunRecorder {
	return &RunRecorder{store: s, runID: runID}
}

// RecordStep writes step under the recorder's run id.
func (r *RunRecorder) RecordStep(ctx context.Context, step ir.Step) error {
	return r.store.WriteStep(ctx, r.runID, step)
}
