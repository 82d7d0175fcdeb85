package model

import "time"

// BuildInfo holds summary fields extracted from the terminal lines of a build.
type BuildInfo struct {
	ServerAddress    string `json:"server_address,omitempty"`
	OutputDir        string `json:"output_dir,omitempty"`
	Duration         string `json:"duration,omitempty"` // seconds, as reported by the tool
	ReportedWarnings int    `json:"reported_warnings,omitempty"`
}

// Merge copies non-empty fields of other into info.
func (b *BuildInfo) Merge(other BuildInfo) {
	if other.ServerAddress != "" {
		b.ServerAddress = other.ServerAddress
	}
	if other.OutputDir != "" {
		b.OutputDir = other.OutputDir
	}
	if other.Duration != "" {
		b.Duration = other.Duration
	}
	if other.ReportedWarnings != 0 {
		b.ReportedWarnings = other.ReportedWarnings
	}
}

// Summary is the count of emitted issues by severity.
type Summary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
}

// Add tallies one issue.
func (s *Summary) Add(iss Issue) {
	if iss.Severity == Error {
		s.Errors++
	} else {
		s.Warnings++
	}
}

// Total returns the combined count.
func (s Summary) Total() int { return s.Errors + s.Warnings }

// BuildCycle is one build or rebuild pass in streaming mode.
// Issues appear in detection order. Immutable once emitted.
type BuildCycle struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Issues    []Issue   `json:"issues"`
	Notices   []Notice  `json:"notices,omitempty"`
	Info      BuildInfo `json:"build_info"`
}

// Summary counts the cycle's issues by severity.
func (c BuildCycle) Summary() Summary {
	var s Summary
	for _, iss := range c.Issues {
		s.Add(iss)
	}
	return s
}
