// Package session runs the filter over a live line stream and tracks
// build cycles. A dev server interleaves many rebuilds into one stream;
// the manager cuts it at rebuild markers, deduplicates issues across the
// whole session, and delivers both individual issues and closed cycles
// to the configured output.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nkoval/docsift/internal/engine/assemble"
	"github.com/nkoval/docsift/internal/engine/buildinfo"
	"github.com/nkoval/docsift/internal/engine/classify"
	"github.com/nkoval/docsift/internal/engine/dedup"
	"github.com/nkoval/docsift/internal/engine/notice"
	"github.com/nkoval/docsift/internal/model"
	"github.com/nkoval/docsift/internal/output"
)

const defaultIdleFlush = 2 * time.Second

// Option configures a Manager.
type Option func(*Manager)

// WithTool restricts parsing to one producer's vocabulary.
func WithTool(tool string) Option {
	return func(m *Manager) { m.tool = tool }
}

// WithErrorsOnly suppresses warning-severity issues.
func WithErrorsOnly() Option {
	return func(m *Manager) { m.errorsOnly = true }
}

// WithIdleFlush sets how long the stream may stay quiet before a pending
// partial issue is forced out. Zero disables the timeout. Default: 2s.
func WithIdleFlush(d time.Duration) Option {
	return func(m *Manager) { m.idle = d }
}

// Snapshot is a serializable view of session progress, safe to hand to
// other goroutines or encode as JSON.
type Snapshot struct {
	Status         string           `json:"status"`
	CyclesComplete int              `json:"cycles_complete"`
	LastCycle      *model.BuildCycle `json:"last_cycle,omitempty"`
	Unique         model.Summary    `json:"unique"`
	Info           model.BuildInfo  `json:"build_info"`
}

// Manager owns the per-session parsing state. Feed lines via Run or Line;
// mixing the two is not supported.
type Manager struct {
	out        output.Output
	tool       string
	errorsOnly bool
	idle       time.Duration

	mu         sync.Mutex
	asm        *assemble.Assembler
	notices    *notice.Collector
	cache      *dedup.Cache
	cycle      *model.BuildCycle // open cycle, nil between builds
	lastClosed *model.BuildCycle
	info       model.BuildInfo // session-wide, survives cycle boundaries
	completed  int
	closeOnce  sync.Once
	closeErr   error
}

// New creates a Manager delivering to out.
func New(out output.Output, opts ...Option) *Manager {
	m := &Manager{out: out, idle: defaultIdleFlush}
	for _, opt := range opts {
		opt(m)
	}
	m.notices = &notice.Collector{}
	m.asm = assemble.New(assemble.WithTool(m.tool), assemble.WithNotices(m.notices))
	m.cache = dedup.NewCache()
	return m
}

// Run consumes lines until the channel closes or ctx is cancelled, then
// closes the manager. When the stream goes quiet for the idle window, any
// pending partial issue is flushed so a hung build still reports what it
// printed.
func (m *Manager) Run(ctx context.Context, lines <-chan string) error {
	var timer *time.Timer
	var idleC <-chan time.Time
	if m.idle > 0 {
		timer = time.NewTimer(m.idle)
		defer timer.Stop()
		idleC = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			m.Close()
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				return m.Close()
			}
			m.Line(ctx, line)
			if timer != nil {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(m.idle)
			}

		case <-idleC:
			m.idleFlush(ctx)
			timer.Reset(m.idle)
		}
	}
}

// Line feeds one raw line through the pipeline.
func (m *Manager) Line(ctx context.Context, raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ev := m.asm.Feed(raw)

	// Boundary lines never open a cycle by themselves. A "Serving on"
	// line trailing an already-closed build would otherwise produce an
	// empty extra cycle.
	if m.cycle == nil && raw != "" && ev.Boundary == classify.None {
		m.openCycle()
	}
	m.emit(ctx, ev.Issues)

	if m.cycle != nil {
		buildinfo.Apply(raw, &m.cycle.Info)
	}
	buildinfo.Apply(raw, &m.info)

	switch ev.Boundary {
	case classify.RebuildStart:
		m.closeCycle(ctx)
		if bs, ok := m.out.(output.BuildStarter); ok {
			bs.BuildStarted(ctx, time.Now())
		}
		m.openCycle()
	case classify.BuildSummary, classify.RebuildEnd:
		if m.cycle != nil {
			m.closeCycle(ctx)
		} else if m.lastClosed != nil {
			// "Serving on ..." trails the summary that already closed the
			// cycle; fold the address back into the reported cycle.
			m.lastClosed.Info.Merge(m.info)
		}
	}
}

// idleFlush forces out whatever the assembler is still holding.
func (m *Manager) idleFlush(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emit(ctx, m.asm.Flush())
}

// Snapshot reports current progress.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	status := "idle"
	if m.cycle != nil {
		status = "building"
	} else if m.lastClosed != nil {
		if m.lastClosed.Summary().Errors > 0 {
			status = "failed"
		} else {
			status = "ok"
		}
	}

	snap := Snapshot{
		Status:         status,
		CyclesComplete: m.completed,
		Unique:         m.cache.Unique(),
		Info:           m.info,
	}
	if m.lastClosed != nil {
		cp := *m.lastClosed
		snap.LastCycle = &cp
	}
	return snap
}

// Close flushes pending state, closes any open cycle, and closes the
// output. Safe to call more than once.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		ctx := context.Background()
		m.emit(ctx, m.asm.Flush())
		if m.cycle != nil {
			m.closeCycle(ctx)
		}
		m.mu.Unlock()
		m.closeErr = m.out.Close()
	})
	return m.closeErr
}

// openCycle starts a fresh cycle. Caller holds m.mu.
func (m *Manager) openCycle() {
	m.cycle = &model.BuildCycle{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	m.cycle.Info.Merge(model.BuildInfo{ServerAddress: m.info.ServerAddress})
}

// closeCycle finalizes the open cycle and delivers it. Caller holds m.mu.
func (m *Manager) closeCycle(ctx context.Context) {
	if m.cycle == nil {
		return
	}
	m.emit(ctx, m.asm.Flush())
	m.cycle.Notices = m.notices.Drain()

	cyc := *m.cycle
	m.cycle = nil
	m.lastClosed = &cyc
	m.completed++
	m.out.Cycle(ctx, cyc)
}

// emit runs issues through dedup and severity filtering, records the
// survivors on the open cycle, and delivers them. Caller holds m.mu.
func (m *Manager) emit(ctx context.Context, issues []model.Issue) {
	for _, iss := range issues {
		if !m.cache.Admit(iss) {
			continue
		}
		if m.errorsOnly && iss.Severity != model.Error {
			continue
		}
		if m.cycle != nil {
			m.cycle.Issues = append(m.cycle.Issues, iss)
		}
		m.out.Issue(ctx, iss)
	}
}
