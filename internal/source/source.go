// Package source produces the raw line stream the filter consumes: a
// pipe on stdin, a wrapped build command, or a remote build log fetched
// over HTTP.
package source

import (
	"bufio"
	"context"
	"io"
)

const maxLineBytes = 1024 * 1024

// Source yields lines of build output. The channel closes when the
// underlying stream ends; Err reports what ended it.
type Source interface {
	// Lines starts the stream. The returned channel is closed on EOF or
	// cancellation.
	Lines(ctx context.Context) (<-chan string, error)

	// Err returns the terminal error after the channel closes, nil for a
	// clean end of stream.
	Err() error
}

// scanLines pumps r into ch line by line, honoring ctx. Carriage returns
// are stripped so Windows-produced logs parse the same.
func scanLines(ctx context.Context, r io.Reader, ch chan<- string) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	for sc.Scan() {
		line := sc.Text()
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
		select {
		case ch <- line:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return sc.Err()
}
