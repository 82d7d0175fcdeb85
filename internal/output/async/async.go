// Package async decouples result delivery from stream processing via a
// buffered channel. The session writes into the channel; a background
// goroutine drains it to the wrapped output. Use it around slow sinks
// (webhooks) so a stalled consumer cannot back up the parser.
package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nkoval/docsift/internal/model"
	"github.com/nkoval/docsift/internal/output"
)

const (
	defaultBufferSize   = 256
	defaultDrainTimeout = 5 * time.Second
)

// Option configures an Async wrapper.
type Option func(*Async)

// WithBufferSize sets the channel buffer capacity. Default: 256.
func WithBufferSize(n int) Option {
	return func(a *Async) { a.bufSize = n }
}

// WithOnError sets the callback invoked when the inner output fails.
// Default: logs a warning via slog.
func WithOnError(f func(error)) Option {
	return func(a *Async) { a.errFunc = f }
}

// WithDropOnFull makes deliveries return immediately (dropping the event)
// when the buffer is full, instead of blocking.
func WithDropOnFull() Option {
	return func(a *Async) { a.dropOnFull = true }
}

// event is the channel element: exactly one field is set.
type event struct {
	issue *model.Issue
	cycle *model.BuildCycle
}

// Async wraps an output.Output in a channel-based writer.
type Async struct {
	inner      output.Output
	ch         chan event
	done       chan struct{}
	errFunc    func(error)
	bufSize    int
	dropOnFull bool
	closeOnce  sync.Once
}

// New wraps inner; the drain goroutine starts immediately.
func New(inner output.Output, opts ...Option) *Async {
	a := &Async{
		inner:   inner,
		bufSize: defaultBufferSize,
		errFunc: func(err error) { slog.Warn("async output write error", "error", err) },
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ch = make(chan event, a.bufSize)
	a.done = make(chan struct{})
	go a.drain()
	return a
}

func (a *Async) Issue(_ context.Context, iss model.Issue) error {
	a.send(event{issue: &iss})
	return nil
}

func (a *Async) Cycle(_ context.Context, cyc model.BuildCycle) error {
	a.send(event{cycle: &cyc})
	return nil
}

func (a *Async) send(ev event) {
	if a.dropOnFull {
		select {
		case a.ch <- ev:
		default:
			slog.Warn("async output buffer full, dropping event")
		}
		return
	}
	a.ch <- ev
}

// Close closes the channel, waits for the drain goroutine (with a
// timeout), then closes the inner output. Safe to call twice.
func (a *Async) Close() error {
	var err error
	a.closeOnce.Do(func() {
		close(a.ch)
		select {
		case <-a.done:
		case <-time.After(defaultDrainTimeout):
			slog.Warn("async output drain timed out")
		}
		err = a.inner.Close()
	})
	return err
}

func (a *Async) drain() {
	defer close(a.done)
	for ev := range a.ch {
		var err error
		switch {
		case ev.issue != nil:
			err = a.inner.Issue(context.Background(), *ev.issue)
		case ev.cycle != nil:
			err = a.inner.Cycle(context.Background(), *ev.cycle)
		}
		if err != nil {
			a.errFunc(err)
		}
	}
}
