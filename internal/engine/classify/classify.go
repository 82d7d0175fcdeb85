// Package classify tags single lines of documentation-build output.
//
// Classification is stateless: one line in, one Class out. Patterns are
// tried in a fixed order and the first match wins, so callers (and tests)
// can rely on deterministic tagging. Both the MkDocs line vocabulary
// ("WARNING -  msg") and the Sphinx one ("path:12: WARNING: msg [code]")
// are covered, including their timestamped and live-reload variants.
package classify

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nkoval/docsift/internal/model"
)

// Tag is the classification of a single line.
type Tag int

const (
	None Tag = iota // internal sentinel, never returned by Line
	Unrecognized
	Blank
	Info
	WarningHeader
	ErrorHeader
	PluginWarning
	BlockLabel
	RebuildStart
	RebuildEnd
	BuildSummary
)

// BlockKind distinguishes the two multi-line block types.
type BlockKind int

const (
	KindNone BlockKind = iota
	KindCode
	KindOutput
)

// Class is the result of classifying one line.
type Class struct {
	Tag      Tag
	Severity model.Severity // WarningHeader, ErrorHeader, PluginWarning
	Source   string         // plugin tag for PluginWarning
	Message  string         // remainder after the level marker, or INFO body
	Kind     BlockKind      // BlockLabel

	// Sphinx-located headers only.
	File        string
	LineNumber  int
	WarningCode string
}

var (
	stderrPrefix = regexp.MustCompile(`^\[stderr\]\s*`)
	timestamped  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[\dT:.,+-]*\s+(?:[\d:.,]+\s+)?`)

	rebuildDetect  = regexp.MustCompile(`Detected file changes|Reloading docs`)
	autobuildStart = regexp.MustCompile(`\[sphinx-autobuild\].*(Detected change|Rebuilding)`)
	tsBuilding     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}.*Building documentation`)

	builtIn      = regexp.MustCompile(`Documentation built in [\d.]+ seconds`)
	sphinxDone   = regexp.MustCompile(`^build (succeeded|finished)`)
	sphinxPages  = regexp.MustCompile(`^The HTML pages are in `)
	sphinxExited = regexp.MustCompile(`Sphinx exited with exit code:`)
	servingOn    = regexp.MustCompile(`Serving on https?://`)

	levelHeader = regexp.MustCompile(`^(INFO|DEBUG|WARNING|ERROR)\s*-\s*(.*)$`)
	pluginTag   = regexp.MustCompile(`^([a-z][a-z0-9_.-]*):\s+(.+)$`)

	sphinxLocated   = regexp.MustCompile(`^(.+?):(\d+): (WARNING|ERROR): (.+)$`)
	sphinxFileOnly  = regexp.MustCompile(`^(.+?): (WARNING|ERROR): (.+)$`)
	sphinxBare      = regexp.MustCompile(`^(WARNING|ERROR): (.+)$`)
	warningCodeTail = regexp.MustCompile(`\s*\[([a-z][a-z0-9_.]+)\]\s*$`)
)

// Line classifies one line of build output. Safe to call speculatively;
// it never consumes state.
func Line(raw string) Class {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Class{Tag: Blank}
	}

	switch s {
	case "Code block is:":
		return Class{Tag: BlockLabel, Kind: KindCode}
	case "Output is:":
		return Class{Tag: BlockLabel, Kind: KindOutput}
	}

	if rebuildDetect.MatchString(s) || autobuildStart.MatchString(s) || tsBuilding.MatchString(s) {
		return Class{Tag: RebuildStart}
	}
	if builtIn.MatchString(s) || sphinxDone.MatchString(s) || sphinxPages.MatchString(s) || sphinxExited.MatchString(s) {
		return Class{Tag: BuildSummary, Message: s}
	}
	if servingOn.MatchString(s) {
		return Class{Tag: RebuildEnd, Message: s}
	}

	// MkDocs-style "LEVEL -  message", with optional [stderr] and timestamp
	// prefixes. The producer pads the level label to a fixed column but the
	// match must not depend on it.
	stripped := stderrPrefix.ReplaceAllString(s, "")
	stripped = timestamped.ReplaceAllString(stripped, "")
	if m := levelHeader.FindStringSubmatch(stripped); m != nil {
		msg := strings.TrimSpace(m[2])
		switch m[1] {
		case "INFO", "DEBUG":
			return Class{Tag: Info, Message: msg}
		}
		c := Class{Severity: severityOf(m[1]), Message: msg}
		if pm := pluginTag.FindStringSubmatch(msg); pm != nil {
			c.Tag = PluginWarning
			c.Source = pm[1]
			c.Message = strings.TrimSpace(pm[2])
			return c
		}
		c.Tag = headerTag(m[1])
		return c
	}

	// Sphinx-style "path:line: LEVEL: message [code]".
	if m := sphinxLocated.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[2])
		c := Class{
			Tag:        headerTag(m[3]),
			Severity:   severityOf(m[3]),
			File:       m[1],
			LineNumber: n,
		}
		c.Message, c.WarningCode = splitWarningCode(m[4])
		return c
	}
	if m := sphinxFileOnly.FindStringSubmatch(s); m != nil {
		c := Class{Tag: headerTag(m[2]), Severity: severityOf(m[2]), File: m[1]}
		c.Message, c.WarningCode = splitWarningCode(m[3])
		return c
	}
	if m := sphinxBare.FindStringSubmatch(s); m != nil {
		c := Class{Tag: headerTag(m[1]), Severity: severityOf(m[1])}
		c.Message, c.WarningCode = splitWarningCode(m[2])
		return c
	}

	return Class{Tag: Unrecognized}
}

// Indent reports the leading-whitespace width of a raw line, with tabs
// counted as single columns.
func Indent(raw string) int {
	return len(raw) - len(strings.TrimLeft(raw, " \t"))
}

// IsIndented reports whether the raw line starts with whitespace.
func IsIndented(raw string) bool {
	return raw != "" && (raw[0] == ' ' || raw[0] == '\t')
}

func severityOf(label string) model.Severity {
	if label == "ERROR" {
		return model.Error
	}
	return model.Warning
}

func headerTag(label string) Tag {
	if label == "ERROR" {
		return ErrorHeader
	}
	return WarningHeader
}

func splitWarningCode(msg string) (string, string) {
	if m := warningCodeTail.FindStringSubmatch(msg); m != nil {
		return strings.TrimSpace(warningCodeTail.ReplaceAllString(msg, "")), m[1]
	}
	return strings.TrimSpace(msg), ""
}
