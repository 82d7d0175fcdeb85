package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Severity is the level of a diagnostic. Error outranks Warning.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "ERROR"
	}
	return "WARNING"
}

// MarshalJSON encodes the severity as its label ("WARNING"/"ERROR").
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON decodes a severity label.
func (s *Severity) UnmarshalJSON(b []byte) error {
	switch strings.Trim(string(b), `"`) {
	case "ERROR":
		*s = Error
	case "WARNING":
		*s = Warning
	default:
		return fmt.Errorf("model: unknown severity %s", b)
	}
	return nil
}

// CodeLine is one line of an offending source snippet.
type CodeLine struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Issue is one structured diagnostic extracted from build output.
// Treated as immutable once emitted by the engine.
type Issue struct {
	Severity    Severity   `json:"severity"`
	Source      string     `json:"source,omitempty"`
	Message     string     `json:"message"`
	File        string     `json:"file,omitempty"`
	Session     string     `json:"session,omitempty"`
	LineNumber  int        `json:"line_number,omitempty"`
	WarningCode string     `json:"warning_code,omitempty"`
	CodeBlock   []CodeLine `json:"code_block,omitempty"`
	OutputBlock []string   `json:"output_block,omitempty"`
}

// Fingerprint identifies a logical diagnostic for deduplication.
type Fingerprint string

// Fingerprint derives the dedup key from (severity, source, message, file).
// Incidental formatting differences (blocks, session tags) do not affect it.
func (i Issue) Fingerprint() Fingerprint {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s", i.Severity, i.Source, i.Message, i.File)
	return Fingerprint(hex.EncodeToString(h.Sum(nil))[:16])
}

// Location renders the file/session/line context as a single string,
// e.g. "docs/guide.md → session 'default' → line 3".
func (i Issue) Location() string {
	var parts []string
	if i.File != "" {
		parts = append(parts, i.File)
	}
	if i.Session != "" {
		parts = append(parts, fmt.Sprintf("session '%s'", i.Session))
	}
	if i.LineNumber > 0 {
		parts = append(parts, fmt.Sprintf("line %d", i.LineNumber))
	}
	return strings.Join(parts, " → ")
}
