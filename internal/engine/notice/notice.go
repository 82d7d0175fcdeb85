// Package notice collects INFO-level findings that are neither warnings
// nor errors but still worth showing: broken links, absolute links left
// as-is, unrecognized relative links, pages missing from the nav, and
// deprecation warnings surfacing from the build environment.
package notice

import (
	"regexp"
	"strings"

	"github.com/nkoval/docsift/internal/model"
)

var (
	brokenLink   = regexp.MustCompile(`Doc file ['"]([^'"]+)['"] contains a link ['"]([^'"]+)['"].*not found`)
	absoluteLink = regexp.MustCompile(`Doc file ['"]([^'"]+)['"] contains an absolute link ['"]([^'"]+)['"].*left as is`)
	relativeLink = regexp.MustCompile(`Doc file ['"]([^'"]+)['"] contains an unrecognized relative link ['"]([^'"]+)['"]`)
	didYouMean   = regexp.MustCompile(`Did you mean ['"]([^'"]+)['"]`)
	noGitLogs    = regexp.MustCompile(`\[git-revision-date-localized-plugin\].*['"]([^'"]+)['"].*has no git logs`)

	deprecation  = regexp.MustCompile(`^(.+?):\d+: ([A-Z][a-zA-Z0-9]*Warning): (.+)$`)
	sitePackages = regexp.MustCompile(`site-packages/([^/]+)`)
	distInfo     = regexp.MustCompile(`[-.]dist-info$`)
)

const navListMarker = "pages exist in the docs directory, but are not included"

// Collector accumulates notices across a parsing pass, deduplicating by
// (category, file, target). The nav-gap listing spans multiple lines, so
// the collector carries a small amount of state between lines.
type Collector struct {
	notices   []model.Notice
	seen      map[string]struct{}
	inNavList bool
}

// ObserveInfo inspects the body of an INFO/DEBUG line.
func (c *Collector) ObserveInfo(message string) {
	c.inNavList = false

	if m := brokenLink.FindStringSubmatch(message); m != nil {
		c.add(model.Notice{Category: model.BrokenLink, File: m[1], Target: m[2]})
		return
	}
	if m := absoluteLink.FindStringSubmatch(message); m != nil {
		c.add(model.Notice{Category: model.AbsoluteLink, File: m[1], Target: m[2], Suggestion: suggestion(message)})
		return
	}
	if m := relativeLink.FindStringSubmatch(message); m != nil {
		c.add(model.Notice{Category: model.UnrecognizedLink, File: m[1], Target: m[2], Suggestion: suggestion(message)})
		return
	}
	if m := noGitLogs.FindStringSubmatch(message); m != nil {
		c.add(model.Notice{Category: model.NoGitLogs, File: m[1]})
		return
	}
	if strings.Contains(message, navListMarker) {
		c.inNavList = true
	}
}

// ObserveRaw inspects lines not claimed by any other component: the
// indented "- page.md" entries of a nav-gap listing and Python
// deprecation warnings from the interpreter's warning machinery.
func (c *Collector) ObserveRaw(raw string) {
	s := strings.TrimSpace(raw)

	if c.inNavList {
		if target, found := strings.CutPrefix(s, "- "); found {
			c.add(model.Notice{Category: model.MissingNav, File: strings.TrimSpace(target)})
			return
		}
		if s != "" {
			c.inNavList = false
		}
	}

	if m := deprecation.FindStringSubmatch(s); m != nil {
		class := m[2]
		if strings.Contains(class, "Deprecat") || strings.Contains(class, "Removed") || strings.Contains(class, "Pending") {
			c.add(model.Notice{
				Category:   model.DeprecationWarning,
				File:       packageFromPath(m[1]),
				Target:     class,
				Suggestion: m[3],
			})
		}
	}
}

// Drain returns the notices collected since the last drain. The dedup set
// persists across drains, so a repeated notice in a later cycle stays
// suppressed.
func (c *Collector) Drain() []model.Notice {
	out := c.notices
	c.notices = nil
	return out
}

func (c *Collector) add(n model.Notice) {
	if c.seen == nil {
		c.seen = make(map[string]struct{})
	}
	if _, dup := c.seen[n.Key()]; dup {
		return
	}
	c.seen[n.Key()] = struct{}{}
	c.notices = append(c.notices, n)
}

func suggestion(message string) string {
	if m := didYouMean.FindStringSubmatch(message); m != nil {
		return m[1]
	}
	return ""
}

// packageFromPath reduces an interpreter path to the package it names,
// e.g. ".../site-packages/somepkg/mod.py" → "somepkg".
func packageFromPath(path string) string {
	if m := sitePackages.FindStringSubmatch(path); m != nil {
		return distInfo.ReplaceAllString(m[1], "")
	}
	parts := strings.Split(strings.ReplaceAll(path, `\`, "/"), "/")
	if len(parts) >= 2 {
		return parts[len(parts)-2]
	}
	return path
}
