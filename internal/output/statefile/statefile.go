// Package statefile mirrors build progress into the shared state file.
// Editors and the `docsift status` command read the file; this output
// keeps it current as cycles open and close.
package statefile

import (
	"context"
	"time"

	"github.com/nkoval/docsift/internal/model"
	"github.com/nkoval/docsift/internal/state"
)

// Output writes cycle transitions to a state.Store. Issues are not
// written individually; the closed cycle carries them.
type Output struct {
	store *state.Store
}

// New creates a state file output backed by the given store.
func New(store *state.Store) *Output {
	return &Output{store: store}
}

// Issue is a no-op.
func (o *Output) Issue(context.Context, model.Issue) error { return nil }

// Cycle records the closed cycle with an ok/failed status.
func (o *Output) Cycle(_ context.Context, cyc model.BuildCycle) error {
	summary := cyc.Summary()
	status := state.StatusOK
	if summary.Errors > 0 {
		status = state.StatusFailed
	}
	return o.store.Write(state.File{
		Status:  status,
		Summary: summary,
		Cycle:   &cyc,
		Info:    cyc.Info,
	})
}

// BuildStarted marks the project as building so readers can show a
// spinner while the rebuild runs.
func (o *Output) BuildStarted(_ context.Context, _ time.Time) error {
	return o.store.Write(state.File{Status: state.StatusBuilding})
}

// Close removes the state file so stale status is not shown after the
// session ends.
func (o *Output) Close() error {
	return o.store.Remove()
}
