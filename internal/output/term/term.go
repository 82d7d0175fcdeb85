// Package term renders results for humans on a terminal.
package term

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/nkoval/docsift/internal/model"
)

var (
	warnLabel  = color.New(color.FgYellow, color.Bold)
	errLabel   = color.New(color.FgRed, color.Bold)
	dimText    = color.New(color.Faint)
	cyanText   = color.New(color.FgCyan)
	boldCyan   = color.New(color.FgCyan, color.Bold)
	greenLabel = color.New(color.FgGreen, color.Bold)
)

// Option configures the renderer.
type Option func(*Output)

// WithVerbose enables code listings and full captured output.
func WithVerbose() Option {
	return func(o *Output) { o.verbose = true }
}

// WithNoColor disables ANSI colors regardless of terminal detection.
func WithNoColor() Option {
	return func(o *Output) { o.noColor = true }
}

// Output renders issues and cycle summaries as they arrive.
type Output struct {
	mu      sync.Mutex
	w       io.Writer
	verbose bool
	noColor bool
	enabled bool
}

// New creates a terminal renderer writing to w.
func New(w io.Writer, opts ...Option) *Output {
	o := &Output{w: w, enabled: true}
	for _, opt := range opts {
		opt(o)
	}
	if o.noColor {
		color.NoColor = true
	}
	return o
}

// SetEnabled toggles rendering; used by the interactive raw/filtered
// switch. Disabled output drops deliveries silently.
func (o *Output) SetEnabled(on bool) {
	o.mu.Lock()
	o.enabled = on
	o.mu.Unlock()
}

func (o *Output) Issue(_ context.Context, iss model.Issue) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.enabled {
		return nil
	}

	label := warnLabel
	if iss.Severity == model.Error {
		label = errLabel
	}
	fmt.Fprintf(o.w, "%s %s%s\n", label.Sprint(iss.Severity.String()), sourceTag(iss), iss.Message)

	if loc := iss.Location(); loc != "" {
		fmt.Fprintf(o.w, "  %s %s\n", dimText.Sprint("at"), cyanText.Sprint(loc))
	}
	if iss.WarningCode != "" {
		fmt.Fprintf(o.w, "  %s\n", dimText.Sprintf("[%s]", iss.WarningCode))
	}

	if o.verbose {
		o.printBlocks(iss)
	} else if n := len(iss.OutputBlock); n > 0 {
		// Non-verbose: just the failing tail of the captured output.
		fmt.Fprintf(o.w, "  %s\n", dimText.Sprint(iss.OutputBlock[n-1]))
	}
	return nil
}

func (o *Output) printBlocks(iss model.Issue) {
	if len(iss.CodeBlock) > 0 {
		fmt.Fprintf(o.w, "  %s\n", dimText.Sprint("code:"))
		for _, cl := range iss.CodeBlock {
			fmt.Fprintf(o.w, "    %s %s\n", dimText.Sprintf("%3d", cl.Number), cl.Text)
		}
	}
	if len(iss.OutputBlock) > 0 {
		fmt.Fprintf(o.w, "  %s\n", dimText.Sprint("output:"))
		for _, ln := range iss.OutputBlock {
			fmt.Fprintf(o.w, "    %s\n", ln)
		}
	}
}

func (o *Output) Cycle(_ context.Context, cyc model.BuildCycle) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.enabled {
		return nil
	}

	s := cyc.Summary()
	switch {
	case s.Total() == 0:
		fmt.Fprintf(o.w, "%s clean build", greenLabel.Sprint("✓"))
	default:
		parts := make([]string, 0, 2)
		if s.Errors > 0 {
			parts = append(parts, errLabel.Sprintf("%d error(s)", s.Errors))
		}
		if s.Warnings > 0 {
			parts = append(parts, warnLabel.Sprintf("%d warning(s)", s.Warnings))
		}
		fmt.Fprint(o.w, strings.Join(parts, ", "))
	}
	if cyc.Info.Duration != "" {
		fmt.Fprintf(o.w, " %s", dimText.Sprintf("in %ss", cyc.Info.Duration))
	}
	if cyc.Info.ServerAddress != "" {
		fmt.Fprintf(o.w, " %s", dimText.Sprintf("— serving on %s", cyc.Info.ServerAddress))
	}
	fmt.Fprintln(o.w)

	o.printNotices(cyc.Notices)
	return nil
}

func (o *Output) printNotices(notices []model.Notice) {
	if len(notices) == 0 {
		return
	}
	for cat, group := range model.GroupNotices(notices) {
		fmt.Fprintf(o.w, "%s %s\n", cyanText.Sprint("note"), noticeHeading(cat, len(group)))
		for _, n := range group {
			line := "  " + n.File
			if n.Target != "" {
				line += " → " + n.Target
			}
			if n.Suggestion != "" {
				line += dimText.Sprintf(" (did you mean %q?)", n.Suggestion)
			}
			fmt.Fprintln(o.w, line)
		}
	}
}

// BuildStarted renders the rebuild banner.
func (o *Output) BuildStarted(_ context.Context, _ time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.enabled {
		return nil
	}
	fmt.Fprintf(o.w, "\n%s\n%s\n%s\n",
		boldCyan.Sprint(strings.Repeat("═", 60)),
		boldCyan.Sprint("🔄 File change detected — rebuilding..."),
		boldCyan.Sprint(strings.Repeat("═", 60)))
	return nil
}

func (o *Output) Close() error { return nil }

func sourceTag(iss model.Issue) string {
	if iss.Source == "" {
		return ""
	}
	return dimText.Sprintf("[%s] ", iss.Source)
}

func noticeHeading(cat model.NoticeCategory, n int) string {
	switch cat {
	case model.BrokenLink:
		return fmt.Sprintf("%d broken link(s)", n)
	case model.AbsoluteLink:
		return fmt.Sprintf("%d absolute link(s) left as-is", n)
	case model.UnrecognizedLink:
		return fmt.Sprintf("%d unrecognized relative link(s)", n)
	case model.MissingNav:
		return fmt.Sprintf("%d page(s) not in nav", n)
	case model.NoGitLogs:
		return fmt.Sprintf("%d page(s) without git history", n)
	case model.DeprecationWarning:
		return fmt.Sprintf("%d deprecation warning(s)", n)
	default:
		return fmt.Sprintf("%d notice(s)", n)
	}
}
