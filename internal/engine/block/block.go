// Package block accumulates the multi-line indented regions that follow a
// "Code block is:" / "Output is:" label. The producer emits no terminator,
// so boundaries are inferred from indentation: a block ends only when a
// blank line is followed by a dedented line, or at end of stream. A single
// blank inside the block (separating statements, say) is preserved.
package block

import (
	"strings"

	"github.com/nkoval/docsift/internal/engine/classify"
)

// Block is a closed multi-line region, indentation stripped to the minimum
// established by its first line.
type Block struct {
	Kind  classify.BlockKind
	Lines []string
}

type state int

const (
	idle state = iota
	awaiting
	inBlock
)

// Extractor is the block accumulation state machine. Zero value is ready.
type Extractor struct {
	state    state
	kind     classify.BlockKind
	lines    []string
	indent   int
	blankRun int
}

// Active reports whether a block label has been seen and not yet closed.
func (e *Extractor) Active() bool { return e.state != idle }

// Open arms the extractor after a block label line. Any block still being
// accumulated is discarded.
func (e *Extractor) Open(kind classify.BlockKind) {
	e.state = awaiting
	e.kind = kind
	e.lines = nil
	e.indent = 0
	e.blankRun = 0
}

// Offer feeds one raw line. When the line closes the block, the closed
// block is returned; consumed reports whether the line itself belongs to
// the block. A dedent-closing line is NOT consumed and must be re-offered
// to whatever processes the stream next (one line of pushback).
func (e *Extractor) Offer(raw string) (closed *Block, consumed bool) {
	switch e.state {
	case idle:
		return nil, false

	case awaiting:
		if strings.TrimSpace(raw) == "" {
			// Tolerate separating blanks before content starts.
			return nil, true
		}
		if !classify.IsIndented(raw) {
			// Label with no indented content: close empty.
			blk := &Block{Kind: e.kind}
			e.reset()
			return blk, false
		}
		e.indent = classify.Indent(raw)
		e.lines = append(e.lines, raw[e.indent:])
		e.state = inBlock
		return nil, true

	case inBlock:
		if strings.TrimSpace(raw) == "" {
			// Terminator only if the NEXT line dedents; defer the decision.
			e.blankRun++
			return nil, true
		}
		if classify.Indent(raw) >= e.indent {
			for ; e.blankRun > 0; e.blankRun-- {
				e.lines = append(e.lines, "")
			}
			e.lines = append(e.lines, raw[e.indent:])
			return nil, true
		}
		// Blank (or not) followed by a dedented line: the block is over.
		// Trailing blanks are not part of the block.
		blk := &Block{Kind: e.kind, Lines: e.lines}
		e.reset()
		return blk, false
	}
	return nil, false
}

// Flush closes any open block at end of stream. The caller decides whether
// a partial block is kept or discarded.
func (e *Extractor) Flush() *Block {
	if e.state == idle {
		return nil
	}
	blk := &Block{Kind: e.kind, Lines: e.lines}
	e.reset()
	return blk
}

func (e *Extractor) reset() {
	*e = Extractor{}
}
