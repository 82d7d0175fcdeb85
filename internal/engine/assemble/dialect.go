package assemble

import (
	"github.com/nkoval/docsift/internal/engine/block"
	"github.com/nkoval/docsift/internal/engine/classify"
	"github.com/nkoval/docsift/internal/engine/resolve"
	"github.com/nkoval/docsift/internal/model"
)

// dialect is one diagnostic vocabulary. Matching runs in registration
// order against the header's classification; the generic dialect matches
// everything and closes the list.
type dialect interface {
	match(c classify.Class) bool
	open(c classify.Class, res *resolve.Resolver) model.Issue
	finalize(iss model.Issue, blocks []block.Block) (model.Issue, bool)
}

func dialectsFor(tool string) []dialect {
	switch tool {
	case "mkdocs":
		return []dialect{execDialect{}, pluginDialect{}, genericDialect{}}
	case "sphinx":
		return []dialect{sphinxDialect{}, genericDialect{source: "sphinx"}}
	default:
		return []dialect{execDialect{}, sphinxDialect{}, pluginDialect{}, genericDialect{}}
	}
}

// execDialect handles code-execution failures reported by markdown_exec:
// a plugin header followed by a code listing and a captured traceback.
type execDialect struct{}

func (execDialect) match(c classify.Class) bool {
	return c.Tag == classify.PluginWarning && c.Source == "markdown_exec"
}

func (execDialect) open(c classify.Class, res *resolve.Resolver) model.Issue {
	return model.Issue{
		Severity: c.Severity,
		Source:   c.Source,
		Message:  c.Message,
		File:     res.CurrentFile(),
	}
}

func (execDialect) finalize(iss model.Issue, blocks []block.Block) (model.Issue, bool) {
	attachBlocks(&iss, blocks)
	if len(iss.OutputBlock) > 0 {
		if msg := resolve.ErrorLine(iss.OutputBlock); msg != "" {
			iss.Message = msg
		}
		if session, line, ok := resolve.ExecContext(iss.OutputBlock); ok {
			if iss.Session == "" {
				iss.Session = session
			}
			if iss.LineNumber == 0 {
				iss.LineNumber = line
			}
		}
	}
	return iss, true
}

// sphinxDialect handles Sphinx's located diagnostics: file and line come
// from the header itself, with an optional trailing warning code.
type sphinxDialect struct{}

func (sphinxDialect) match(c classify.Class) bool {
	return c.File != "" || c.WarningCode != ""
}

func (sphinxDialect) open(c classify.Class, _ *resolve.Resolver) model.Issue {
	return model.Issue{
		Severity:    c.Severity,
		Source:      "sphinx",
		Message:     c.Message,
		File:        c.File,
		LineNumber:  c.LineNumber,
		WarningCode: c.WarningCode,
	}
}

func (sphinxDialect) finalize(iss model.Issue, blocks []block.Block) (model.Issue, bool) {
	attachBlocks(&iss, blocks)
	return iss, true
}

// pluginDialect handles headers tagged by a plugin the exec dialect does
// not claim; the tag becomes the issue's source.
type pluginDialect struct{}

func (pluginDialect) match(c classify.Class) bool {
	return c.Tag == classify.PluginWarning
}

func (pluginDialect) open(c classify.Class, _ *resolve.Resolver) model.Issue {
	return model.Issue{
		Severity: c.Severity,
		Source:   c.Source,
		Message:  c.Message,
		File:     resolve.QuotedDoc(c.Message),
	}
}

func (pluginDialect) finalize(iss model.Issue, blocks []block.Block) (model.Issue, bool) {
	attachBlocks(&iss, blocks)
	return iss, true
}

// genericDialect is the catch-all: severity and message straight from the
// header, file from a quoted document path when the message names one.
type genericDialect struct {
	source string
}

func (genericDialect) match(classify.Class) bool { return true }

func (d genericDialect) open(c classify.Class, _ *resolve.Resolver) model.Issue {
	source := d.source
	if source == "" {
		source = "mkdocs"
	}
	return model.Issue{
		Severity:    c.Severity,
		Source:      source,
		Message:     c.Message,
		File:        resolve.QuotedDoc(c.Message),
		WarningCode: c.WarningCode,
	}
}

func (genericDialect) finalize(iss model.Issue, blocks []block.Block) (model.Issue, bool) {
	attachBlocks(&iss, blocks)
	return iss, true
}

// attachBlocks files closed blocks onto the issue by kind. Code lines are
// numbered from 1 so execution-context line numbers can point into them.
func attachBlocks(iss *model.Issue, blocks []block.Block) {
	for _, blk := range blocks {
		switch blk.Kind {
		case classify.KindCode:
			if iss.CodeBlock != nil {
				continue // first code block wins
			}
			iss.CodeBlock = make([]model.CodeLine, len(blk.Lines))
			for i, ln := range blk.Lines {
				iss.CodeBlock[i] = model.CodeLine{Number: i + 1, Text: ln}
			}
		case classify.KindOutput:
			if iss.OutputBlock == nil {
				iss.OutputBlock = append([]string(nil), blk.Lines...)
			}
		}
	}
}
