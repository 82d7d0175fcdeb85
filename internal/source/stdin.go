package source

import (
	"context"
	"io"
	"os"
)

// Stdin streams lines from a reader, normally the process's standard
// input when the build is piped in.
type Stdin struct {
	r   io.Reader
	err error
}

// NewStdin creates a source over os.Stdin.
func NewStdin() *Stdin { return &Stdin{r: os.Stdin} }

// NewReader creates a source over an arbitrary reader.
func NewReader(r io.Reader) *Stdin { return &Stdin{r: r} }

func (s *Stdin) Lines(ctx context.Context) (<-chan string, error) {
	ch := make(chan string, 64)
	go func() {
		defer close(ch)
		s.err = scanLines(ctx, s.r, ch)
	}()
	return ch, nil
}

func (s *Stdin) Err() error { return s.err }
