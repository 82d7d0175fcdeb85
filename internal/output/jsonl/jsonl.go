// Package jsonl writes results as NDJSON, one envelope per line, for
// machine consumers downstream of the filter.
package jsonl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/nkoval/docsift/internal/model"
)

type envelope struct {
	Kind  string            `json:"kind"` // "issue" or "cycle"
	Issue *model.Issue      `json:"issue,omitempty"`
	Cycle *model.BuildCycle `json:"cycle,omitempty"`
}

// Output encodes envelopes to a writer.
type Output struct {
	enc *json.Encoder
}

// New creates a jsonl Output writing to w. With pretty set, entries are
// indented (no longer strictly one line each; useful interactively).
func New(w io.Writer, pretty bool) *Output {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return &Output{enc: enc}
}

func (o *Output) Issue(_ context.Context, iss model.Issue) error {
	if err := o.enc.Encode(envelope{Kind: "issue", Issue: &iss}); err != nil {
		return fmt.Errorf("jsonl output: %w", err)
	}
	return nil
}

func (o *Output) Cycle(_ context.Context, cyc model.BuildCycle) error {
	if err := o.enc.Encode(envelope{Kind: "cycle", Cycle: &cyc}); err != nil {
		return fmt.Errorf("jsonl output: %w", err)
	}
	return nil
}

func (o *Output) Close() error { return nil }
