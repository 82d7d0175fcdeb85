// Package buildinfo extracts summary fields from the terminal lines of a
// build cycle: serve address, output directory, duration, and the warning
// count the tool itself reports. Purely extractive, no state.
package buildinfo

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nkoval/docsift/internal/model"
)

var (
	serving     = regexp.MustCompile(`Serving on (https?://[^\s\x1b]+)`)
	mkdocsBuilt = regexp.MustCompile(`Documentation built in ([\d.]+) seconds`)
	mkdocsDir   = regexp.MustCompile(`Building documentation to directory: (.+)`)

	sphinxPages    = regexp.MustCompile(`The HTML pages are in (.+)\.`)
	sphinxWarnings = regexp.MustCompile(`build (?:succeeded|finished),?\s*(\d+)\s+warnings?`)
	sphinxDuration = regexp.MustCompile(`build (?:succeeded|finished).*?in\s+([\d.]+)\s*s`)
	sphinxFinished = regexp.MustCompile(`The build finished in ([\d.]+) sec`)
)

// Apply scans one line and merges anything it captures into info.
// Returns true when a field was captured.
func Apply(line string, info *model.BuildInfo) bool {
	captured := false
	if m := serving.FindStringSubmatch(line); m != nil {
		info.ServerAddress = m[1]
		captured = true
	}
	if m := mkdocsBuilt.FindStringSubmatch(line); m != nil {
		info.Duration = m[1]
		captured = true
	}
	if m := mkdocsDir.FindStringSubmatch(line); m != nil {
		info.OutputDir = strings.TrimSpace(m[1])
		captured = true
	}
	if m := sphinxPages.FindStringSubmatch(line); m != nil {
		info.OutputDir = strings.TrimSpace(m[1])
		captured = true
	}
	if m := sphinxWarnings.FindStringSubmatch(line); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			info.ReportedWarnings = n
			captured = true
		}
	}
	if m := sphinxDuration.FindStringSubmatch(line); m != nil {
		info.Duration = m[1]
		captured = true
	}
	if m := sphinxFinished.FindStringSubmatch(line); m != nil {
		info.Duration = m[1]
		captured = true
	}
	return captured
}

// FromLines extracts build info from a finished buffer.
func FromLines(lines []string) model.BuildInfo {
	var info model.BuildInfo
	for _, ln := range lines {
		Apply(ln, &info)
	}
	return info
}
