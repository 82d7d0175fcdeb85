// Package resolve locates contextual metadata for diagnostics: the
// originating document, the named execution session, and the source line
// number. File resolution is a documented heuristic — it relies on the
// most recent "reading this document" breadcrumb emitted before the
// diagnostic, and stays empty when no breadcrumb preceded it.
package resolve

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	readingCrumb    = regexp.MustCompile(`Reading:\s*(\S+\.md)`)
	docFileCrumb    = regexp.MustCompile(`Doc file '([^']+\.md)'`)
	breadcrumbCrumb = regexp.MustCompile(`Generated breadcrumb string:.*\[[^\]]+\]\(/([^)]+)\)`)

	execContext = regexp.MustCompile(`File "<code block: session ([^;]+); n\d+>", line (\d+)`)
	errorLine   = regexp.MustCompile(`(Error|Exception):`)

	quotedDoc = regexp.MustCompile(`['"]([^'"]+\.md)['"]`)
)

// Resolver tracks the most-recent-document pointer for one parsing pass.
// It is owned by the assembler driving that pass, never shared, so
// concurrent parses cannot interfere.
type Resolver struct {
	lastFile string
}

// ObserveInfo updates the breadcrumb pointer from an INFO/DEBUG line body.
func (r *Resolver) ObserveInfo(message string) {
	if m := readingCrumb.FindStringSubmatch(message); m != nil {
		r.lastFile = m[1]
		return
	}
	if m := docFileCrumb.FindStringSubmatch(message); m != nil {
		r.lastFile = m[1]
		return
	}
	if m := breadcrumbCrumb.FindStringSubmatch(message); m != nil {
		r.lastFile = m[1] + ".md"
	}
}

// CurrentFile returns the most recent breadcrumb, or "" when none was seen.
func (r *Resolver) CurrentFile() string { return r.lastFile }

// ExecContext extracts the session name and 1-based line number from a
// captured-output block, when the traceback references a code-block frame.
func ExecContext(lines []string) (session string, lineNumber int, ok bool) {
	for _, ln := range lines {
		if m := execContext.FindStringSubmatch(ln); m != nil {
			n, _ := strconv.Atoi(m[2])
			return strings.TrimSpace(m[1]), n, true
		}
	}
	return "", 0, false
}

// ErrorLine returns the last line of a captured-output block that names an
// error or exception, skipping traceback frame lines. Empty when none.
func ErrorLine(lines []string) string {
	for i := len(lines) - 1; i >= 0; i-- {
		ln := strings.TrimSpace(lines[i])
		if ln == "" || strings.HasPrefix(ln, "File ") {
			continue
		}
		if errorLine.MatchString(ln) {
			return ln
		}
	}
	return ""
}

// QuotedDoc extracts the first quoted document path from a message, used
// when a diagnostic names its file inline.
func QuotedDoc(message string) string {
	if m := quotedDoc.FindStringSubmatch(message); m != nil {
		return m[1]
	}
	return ""
}
