// Package engine is the batch facade over the parsing pipeline: feed a
// finite stream, get back deduplicated issues, notices, build info, and a
// summary count. Streaming mode lives in internal/session.
package engine

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/nkoval/docsift/internal/engine/assemble"
	"github.com/nkoval/docsift/internal/engine/buildinfo"
	"github.com/nkoval/docsift/internal/engine/dedup"
	"github.com/nkoval/docsift/internal/engine/notice"
	"github.com/nkoval/docsift/internal/model"
)

// maxLineBytes bounds a single input line; build tools occasionally emit
// very long minified content in tracebacks.
const maxLineBytes = 1024 * 1024

// Config controls one batch parse.
type Config struct {
	Tool       string // "mkdocs", "sphinx", or "" for auto
	ErrorsOnly bool
}

// Report is the outcome of a batch parse.
type Report struct {
	Issues  []model.Issue
	Notices []model.Notice
	Info    model.BuildInfo
	Summary model.Summary
}

// Cycle packages the report as a single build cycle, for outputs that
// consume cycles.
func (r Report) Cycle() model.BuildCycle {
	return model.BuildCycle{
		Issues:  r.Issues,
		Notices: r.Notices,
		Info:    r.Info,
	}
}

// Engine runs batch parses. Each parse uses fresh per-pass state, so one
// Engine can serve many inputs.
type Engine struct {
	cfg Config
}

// New creates an Engine.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Parse consumes the reader to end-of-input and reports.
func (e *Engine) Parse(r io.Reader) (Report, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	var lines []string
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return Report{}, fmt.Errorf("engine: read input: %w", err)
	}
	return e.ParseLines(lines), nil
}

// ParseLines runs one pass over an already-split line slice. Re-running on
// the same input yields an identical Report.
func (e *Engine) ParseLines(lines []string) Report {
	var col notice.Collector
	asm := assemble.New(assemble.WithTool(e.cfg.Tool), assemble.WithNotices(&col))
	cache := dedup.NewCache()

	var rep Report
	admit := func(issues []model.Issue) {
		for _, iss := range issues {
			if e.cfg.ErrorsOnly && iss.Severity != model.Error {
				continue
			}
			if cache.Admit(iss) {
				rep.Issues = append(rep.Issues, iss)
				rep.Summary.Add(iss)
			}
		}
	}

	for _, ln := range lines {
		admit(asm.Feed(ln).Issues)
		buildinfo.Apply(ln, &rep.Info)
	}
	admit(asm.Flush())
	rep.Notices = col.Drain()
	return rep
}
