package docsift

import (
	"io"

	"github.com/nkoval/docsift/internal/engine"
	"github.com/nkoval/docsift/internal/model"
)

// Severity of an issue.
type Severity string

const (
	Warning Severity = "WARNING"
	Error   Severity = "ERROR"
)

// CodeLine is one line of an attached code listing, numbered from 1.
type CodeLine struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Issue is one extracted diagnostic.
// This is the stable public type; internal representations may evolve
// independently without breaking consumers.
type Issue struct {
	Severity    Severity   `json:"severity"`
	Source      string     `json:"source"`                 // mkdocs, sphinx, or plugin name
	Message     string     `json:"message"`                // resolved one-line description
	File        string     `json:"file,omitempty"`         // document the issue belongs to
	Session     string     `json:"session,omitempty"`      // markdown_exec session name
	Line        int        `json:"line,omitempty"`         // line number in file or code block
	WarningCode string     `json:"warning_code,omitempty"` // Sphinx warning code
	CodeBlock   []CodeLine `json:"code_block,omitempty"`
	OutputBlock []string   `json:"output_block,omitempty"`
}

// Notice is a low-priority observation (broken links, nav gaps).
type Notice struct {
	Category   string `json:"category"`
	File       string `json:"file,omitempty"`
	Target     string `json:"target,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// BuildInfo holds summary facts reported by the build itself.
type BuildInfo struct {
	ServerAddress string `json:"server_address,omitempty"`
	OutputDir     string `json:"output_dir,omitempty"`
	Duration      string `json:"duration,omitempty"`
}

// Report is the outcome of parsing one build log.
type Report struct {
	Issues    []Issue   `json:"issues"`
	Notices   []Notice  `json:"notices,omitempty"`
	Errors    int       `json:"errors"`
	Warnings  int       `json:"warnings"`
	BuildInfo BuildInfo `json:"build_info"`
}

type options struct {
	tool       string
	errorsOnly bool
}

// Option configures a parse.
type Option func(*options)

// WithTool restricts parsing to one producer's vocabulary, "mkdocs" or
// "sphinx". The default recognizes both.
func WithTool(tool string) Option {
	return func(o *options) { o.tool = tool }
}

// WithErrorsOnly drops warning-severity issues from the report.
func WithErrorsOnly() Option {
	return func(o *options) { o.errorsOnly = true }
}

// Parse consumes r to end of input and reports what the build complained
// about. Parsing the same input twice yields identical reports.
func Parse(r io.Reader, opts ...Option) (Report, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	eng := engine.New(engine.Config{Tool: o.tool, ErrorsOnly: o.errorsOnly})
	rep, err := eng.Parse(r)
	if err != nil {
		return Report{}, err
	}
	return fromInternal(rep), nil
}

// ParseLines parses an already-split line slice.
func ParseLines(lines []string, opts ...Option) Report {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	eng := engine.New(engine.Config{Tool: o.tool, ErrorsOnly: o.errorsOnly})
	return fromInternal(eng.ParseLines(lines))
}

func fromInternal(rep engine.Report) Report {
	out := Report{
		Errors:   rep.Summary.Errors,
		Warnings: rep.Summary.Warnings,
		BuildInfo: BuildInfo{
			ServerAddress: rep.Info.ServerAddress,
			OutputDir:     rep.Info.OutputDir,
			Duration:      rep.Info.Duration,
		},
	}
	for _, iss := range rep.Issues {
		out.Issues = append(out.Issues, issueFromInternal(iss))
	}
	for _, n := range rep.Notices {
		out.Notices = append(out.Notices, Notice{
			Category:   string(n.Category),
			File:       n.File,
			Target:     n.Target,
			Suggestion: n.Suggestion,
		})
	}
	return out
}

func issueFromInternal(iss model.Issue) Issue {
	pub := Issue{
		Severity:    Severity(iss.Severity.String()),
		Source:      iss.Source,
		Message:     iss.Message,
		File:        iss.File,
		Session:     iss.Session,
		Line:        iss.LineNumber,
		WarningCode: iss.WarningCode,
		OutputBlock: iss.OutputBlock,
	}
	for _, ln := range iss.CodeBlock {
		pub.CodeBlock = append(pub.CodeBlock, CodeLine{Number: ln.Number, Text: ln.Text})
	}
	return pub
}
