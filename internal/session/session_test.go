package session

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nkoval/docsift/internal/model"
)

type capture struct {
	mu      sync.Mutex
	issues  []model.Issue
	cycles  []model.BuildCycle
	started int
	closed  bool
}

func (c *capture) Issue(_ context.Context, iss model.Issue) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issues = append(c.issues, iss)
	return nil
}

func (c *capture) Cycle(_ context.Context, cyc model.BuildCycle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cycles = append(c.cycles, cyc)
	return nil
}

func (c *capture) BuildStarted(context.Context, time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started++
	return nil
}

func (c *capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func feed(t *testing.T, m *Manager, text string) {
	t.Helper()
	for _, line := range strings.Split(text, "\n") {
		m.Line(context.Background(), line)
	}
}

const serveSession = `INFO    -  Building documentation...
WARNING -  Doc file 'index.md' contains a link 'missing.md', but the target is not found among documentation files.
INFO    -  Documentation built in 0.31 seconds
INFO    -  [12:00:00] Serving on http://127.0.0.1:8000/
INFO    -  [12:00:05] Detected file changes
INFO    -  Building documentation...
WARNING -  Doc file 'index.md' contains a link 'missing.md', but the target is not found among documentation files.
ERROR   -  Error reading page 'bad.md'
INFO    -  Documentation built in 0.28 seconds`

func TestCyclesCutAtRebuildMarkers(t *testing.T) {
	out := &capture{}
	m := New(out, WithIdleFlush(0))
	feed(t, m, serveSession)
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if len(out.cycles) != 2 {
		t.Fatalf("got %d cycles, want 2: %+v", len(out.cycles), out.cycles)
	}
	first, second := out.cycles[0], out.cycles[1]
	if s := first.Summary(); s.Warnings != 1 || s.Errors != 0 {
		t.Errorf("first cycle summary = %+v", s)
	}
	// The repeated warning is dropped session-wide; only the new error
	// survives in the rebuild.
	if s := second.Summary(); s.Warnings != 0 || s.Errors != 1 {
		t.Errorf("second cycle summary = %+v", s)
	}
	if first.ID == second.ID || first.ID == "" {
		t.Errorf("cycle IDs not distinct: %q %q", first.ID, second.ID)
	}
}

func TestRepeatSuppressedAcrossRebuild(t *testing.T) {
	out := &capture{}
	m := New(out, WithIdleFlush(0))
	feed(t, m, serveSession)
	m.Close()

	warnings := 0
	for _, iss := range out.issues {
		if iss.Severity == model.Warning {
			warnings++
		}
	}
	if warnings != 1 {
		t.Errorf("warning delivered %d times, want 1", warnings)
	}
}

func TestBuildStartedFiresOnRebuild(t *testing.T) {
	out := &capture{}
	m := New(out, WithIdleFlush(0))
	feed(t, m, serveSession)
	m.Close()

	if out.started != 1 {
		t.Errorf("BuildStarted fired %d times, want 1", out.started)
	}
}

func TestServerAddressReachesClosedCycle(t *testing.T) {
	out := &capture{}
	m := New(out, WithIdleFlush(0))
	feed(t, m, serveSession)

	snap := m.Snapshot()
	if snap.Info.ServerAddress != "http://127.0.0.1:8000/" {
		t.Errorf("server address = %q", snap.Info.ServerAddress)
	}
	m.Close()
}

func TestSnapshot(t *testing.T) {
	out := &capture{}
	m := New(out, WithIdleFlush(0))

	snap := m.Snapshot()
	if snap.Status != "idle" || snap.CyclesComplete != 0 {
		t.Fatalf("initial snapshot = %+v", snap)
	}

	feed(t, m, serveSession)
	snap = m.Snapshot()
	if snap.CyclesComplete != 2 {
		t.Errorf("cycles complete = %d, want 2", snap.CyclesComplete)
	}
	if snap.Status != "failed" {
		t.Errorf("status = %q, want failed", snap.Status)
	}
	if snap.Unique.Warnings != 1 || snap.Unique.Errors != 1 {
		t.Errorf("unique = %+v", snap.Unique)
	}
	if snap.LastCycle == nil {
		t.Fatal("no last cycle in snapshot")
	}
	m.Close()
}

func TestErrorsOnly(t *testing.T) {
	out := &capture{}
	m := New(out, WithIdleFlush(0), WithErrorsOnly())
	feed(t, m, serveSession)
	m.Close()

	for _, iss := range out.issues {
		if iss.Severity != model.Error {
			t.Errorf("warning leaked through errors-only filter: %+v", iss)
		}
	}
	if len(out.issues) != 1 {
		t.Errorf("delivered %d issues, want 1", len(out.issues))
	}
}

func TestRunConsumesChannel(t *testing.T) {
	out := &capture{}
	m := New(out, WithIdleFlush(0))

	lines := make(chan string)
	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background(), lines) }()

	for _, line := range strings.Split(serveSession, "\n") {
		lines <- line
	}
	close(lines)

	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !out.closed {
		t.Error("output not closed after Run")
	}
	if len(out.cycles) != 2 {
		t.Errorf("got %d cycles, want 2", len(out.cycles))
	}
}

func TestRunCancelled(t *testing.T) {
	out := &capture{}
	m := New(out, WithIdleFlush(0))

	ctx, cancel := context.WithCancel(context.Background())
	lines := make(chan string)
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, lines) }()

	lines <- "WARNING -  something"
	cancel()

	if err := <-done; err != context.Canceled {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
	if !out.closed {
		t.Error("output not closed after cancel")
	}
}

func TestIdleFlushForcesPendingIssue(t *testing.T) {
	out := &capture{}
	m := New(out, WithIdleFlush(20*time.Millisecond))

	lines := make(chan string)
	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background(), lines) }()

	// A header with no terminator: only the idle timer can finalize it.
	lines <- "WARNING -  markdown_exec: Execution of python code block exited with errors"

	deadline := time.After(2 * time.Second)
	for {
		out.mu.Lock()
		n := len(out.issues)
		out.mu.Unlock()
		if n == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("pending issue never flushed on idle")
		case <-time.After(5 * time.Millisecond):
		}
	}

	close(lines)
	<-done
}

func TestCloseIdempotent(t *testing.T) {
	out := &capture{}
	m := New(out, WithIdleFlush(0))
	m.Line(context.Background(), "ERROR -  boom")
	if err := m.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if len(out.cycles) != 1 {
		t.Errorf("got %d cycles after Close, want 1", len(out.cycles))
	}
}
