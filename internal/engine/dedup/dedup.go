// Package dedup suppresses repeats of logically identical diagnostics.
// The cache is keyed by Issue fingerprint and lives for the whole
// streaming session — a diagnostic that recurs verbatim across rebuild
// cycles is reported once, though every raw occurrence is still counted.
package dedup

import "github.com/nkoval/docsift/internal/model"

// Cache is a session-lifetime fingerprint set with occurrence counters.
// Owned by exactly one consumer; not safe for concurrent use.
type Cache struct {
	counts map[model.Fingerprint]int
	unique model.Summary
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{counts: make(map[model.Fingerprint]int)}
}

// Admit records one occurrence of the issue and reports whether it is the
// first — only first occurrences should be emitted downstream.
func (c *Cache) Admit(iss model.Issue) bool {
	fp := iss.Fingerprint()
	c.counts[fp]++
	if c.counts[fp] > 1 {
		return false
	}
	c.unique.Add(iss)
	return true
}

// Occurrences returns the raw number of times the issue has been admitted,
// including suppressed repeats.
func (c *Cache) Occurrences(iss model.Issue) int {
	return c.counts[iss.Fingerprint()]
}

// Unique returns the count of distinct diagnostics by severity.
func (c *Cache) Unique() model.Summary { return c.unique }

// Size returns the number of distinct fingerprints seen.
func (c *Cache) Size() int { return len(c.counts) }
