// Package output defines where parsed results go. Issues are delivered as
// they are detected; closed build cycles follow with the cycle summary.
// Values handed to an Output are immutable snapshots — implementations
// must never mutate them.
package output

import (
	"context"
	"time"

	"github.com/nkoval/docsift/internal/model"
)

// Output is a destination for filter results.
type Output interface {
	// Issue delivers one newly detected, deduplicated issue.
	Issue(ctx context.Context, iss model.Issue) error

	// Cycle delivers a closed build cycle, issues and summary included.
	Cycle(ctx context.Context, cyc model.BuildCycle) error

	Close() error
}

// BuildStarter is implemented by outputs that want to know when a rebuild
// begins, before any of its issues arrive (banner rendering, "building"
// status in the shared state file).
type BuildStarter interface {
	BuildStarted(ctx context.Context, at time.Time) error
}
