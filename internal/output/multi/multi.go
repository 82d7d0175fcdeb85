package multi

import (
	"context"
	"errors"
	"time"

	"github.com/nkoval/docsift/internal/model"
	"github.com/nkoval/docsift/internal/output"
)

// Multi fans out to several output.Output implementations. Each delivery
// reaches every wrapped output; one output failing does not stop the rest.
type Multi struct {
	outputs []output.Output
}

// New creates a Multi over the given outputs.
func New(outputs ...output.Output) *Multi {
	return &Multi{outputs: outputs}
}

// Issue delivers the issue to every wrapped output, collecting errors.
func (m *Multi) Issue(ctx context.Context, iss model.Issue) error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Issue(ctx, iss); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Cycle delivers the cycle to every wrapped output, collecting errors.
func (m *Multi) Cycle(ctx context.Context, cyc model.BuildCycle) error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Cycle(ctx, cyc); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BuildStarted forwards the rebuild signal to wrapped outputs that care.
func (m *Multi) BuildStarted(ctx context.Context, at time.Time) error {
	var errs []error
	for _, o := range m.outputs {
		if bs, ok := o.(output.BuildStarter); ok {
			if err := bs.BuildStarted(ctx, at); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes every wrapped output, collecting errors.
func (m *Multi) Close() error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
