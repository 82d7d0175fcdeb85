// Package assemble drives the classifier and block extractor over a line
// stream, producing completed Issues. A pending issue is opened by a
// header line, accumulates blocks, and is finalized when another header
// begins, a cycle marker appears, or the stream ends. Header dialects are
// a closed ordered list; a header no dialect claims still yields a minimal
// Issue — loss of structure is not loss of the diagnostic.
package assemble

import (
	"github.com/nkoval/docsift/internal/engine/block"
	"github.com/nkoval/docsift/internal/engine/classify"
	"github.com/nkoval/docsift/internal/engine/notice"
	"github.com/nkoval/docsift/internal/engine/resolve"
	"github.com/nkoval/docsift/internal/model"
)

// Event is what one fed line produced: zero or more finalized Issues, and
// the cycle boundary the line marks, if any.
type Event struct {
	Issues   []model.Issue
	Boundary classify.Tag // classify.None when the line is not a boundary
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithTool restricts the dialect list to one producer's vocabulary
// ("mkdocs" or "sphinx"). The default covers both.
func WithTool(tool string) Option {
	return func(a *Assembler) { a.tool = tool }
}

// WithNotices attaches a notice collector, fed from INFO lines and from
// lines no other component claims.
func WithNotices(c *notice.Collector) Option {
	return func(a *Assembler) { a.notices = c }
}

// Assembler performs one single pass over classified lines. Not safe for
// concurrent use; create one per stream.
type Assembler struct {
	res      resolve.Resolver
	ext      block.Extractor
	dialects []dialect
	notices  *notice.Collector
	tool     string
	pending  *pendingIssue
}

type pendingIssue struct {
	d      dialect
	issue  model.Issue
	blocks []block.Block
}

// New creates an Assembler.
func New(opts ...Option) *Assembler {
	a := &Assembler{}
	for _, opt := range opts {
		opt(a)
	}
	a.dialects = dialectsFor(a.tool)
	return a
}

// Feed processes one raw line and returns whatever it completed.
func (a *Assembler) Feed(raw string) Event {
	c := classify.Line(raw)

	if a.ext.Active() {
		// A block label inside an open block starts the next block: the
		// producer emits "Code block is:" and "Output is:" back to back
		// without a dedent between them.
		if c.Tag == classify.BlockLabel {
			a.attach(a.ext.Flush())
			a.ext.Open(c.Kind)
			return Event{}
		}
		blk, consumed := a.ext.Offer(raw)
		a.attach(blk)
		if consumed {
			return Event{}
		}
		// Line was pushed back; classify it like any other.
	}

	switch c.Tag {
	case classify.BlockLabel:
		if a.pending != nil {
			a.ext.Open(c.Kind)
		}
		return Event{}

	case classify.WarningHeader, classify.ErrorHeader, classify.PluginWarning:
		ev := Event{Issues: a.finalize()}
		a.open(c)
		return ev

	case classify.RebuildStart, classify.RebuildEnd, classify.BuildSummary:
		return Event{Issues: a.finalize(), Boundary: c.Tag}

	case classify.Info:
		ev := Event{Issues: a.finalize()}
		a.res.ObserveInfo(c.Message)
		if a.notices != nil {
			a.notices.ObserveInfo(c.Message)
		}
		return ev

	case classify.Blank:
		return Event{}

	default:
		if a.notices != nil {
			a.notices.ObserveRaw(raw)
		}
		return Event{}
	}
}

// Flush finalizes any pending issue at end of stream. A block still open
// at that point never closed legally, so its content is dropped while the
// issue's header-derived fields are kept.
func (a *Assembler) Flush() []model.Issue {
	a.ext.Flush() // partial block: discard
	return a.finalize()
}

func (a *Assembler) open(c classify.Class) {
	for _, d := range a.dialects {
		if d.match(c) {
			a.pending = &pendingIssue{d: d, issue: d.open(c, &a.res)}
			return
		}
	}
	// Unreachable while a catch-all dialect is registered, but a minimal
	// issue is still the right degradation.
	a.pending = &pendingIssue{d: genericDialect{}, issue: model.Issue{Severity: c.Severity, Message: c.Message}}
}

func (a *Assembler) finalize() []model.Issue {
	a.ext.Flush() // a block cut short by a conflicting line: discard
	if a.pending == nil {
		return nil
	}
	p := a.pending
	a.pending = nil
	iss, ok := p.d.finalize(p.issue, p.blocks)
	if !ok || iss.Message == "" {
		return nil
	}
	return []model.Issue{iss}
}

func (a *Assembler) attach(blk *block.Block) {
	if blk == nil || a.pending == nil || len(blk.Lines) == 0 {
		return
	}
	a.pending.blocks = append(a.pending.blocks, *blk)
}
