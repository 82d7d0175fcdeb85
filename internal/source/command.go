package source

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Command wraps a build command (`mkdocs serve`, `sphinx-build ...`) and
// streams its combined stdout and stderr. Both pipes feed one channel;
// MkDocs logs to stderr and markdown_exec output can land on either.
type Command struct {
	name string
	args []string

	mu   sync.Mutex
	err  error
	cmd  *exec.Cmd
	eg   *errgroup.Group
}

// NewCommand creates a source that will run name with args.
func NewCommand(name string, args ...string) *Command {
	return &Command{name: name, args: args}
}

func (c *Command) Lines(ctx context.Context) (<-chan string, error) {
	cmd := exec.CommandContext(ctx, c.name, c.args...)
	// Python tools block-buffer when not attached to a TTY; without this
	// the live stream arrives in multi-second bursts.
	cmd.Env = append(os.Environ(), "PYTHONUNBUFFERED=1")

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("source: start %s: %w", c.name, err)
	}
	c.cmd = cmd

	ch := make(chan string, 64)
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return scanLines(ctx, stdout, ch) })
	eg.Go(func() error { return scanLines(ctx, stderr, ch) })
	c.eg = eg

	go func() {
		defer close(ch)
		scanErr := eg.Wait()
		waitErr := cmd.Wait()
		c.mu.Lock()
		if scanErr != nil {
			c.err = scanErr
		} else {
			c.err = waitErr
		}
		c.mu.Unlock()
	}()

	return ch, nil
}

func (c *Command) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// ExitCode returns the wrapped command's exit code, or -1 before it has
// exited.
func (c *Command) ExitCode() int {
	if c.cmd == nil || c.cmd.ProcessState == nil {
		return -1
	}
	return c.cmd.ProcessState.ExitCode()
}
