package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nkoval/docsift/internal/config"
	"github.com/nkoval/docsift/internal/console"
	"github.com/nkoval/docsift/internal/engine"
	"github.com/nkoval/docsift/internal/logging"
	"github.com/nkoval/docsift/internal/output"
	"github.com/nkoval/docsift/internal/output/async"
	"github.com/nkoval/docsift/internal/output/jsonl"
	"github.com/nkoval/docsift/internal/output/multi"
	"github.com/nkoval/docsift/internal/output/statefile"
	"github.com/nkoval/docsift/internal/output/term"
	"github.com/nkoval/docsift/internal/output/webhook"
	"github.com/nkoval/docsift/internal/session"
	"github.com/nkoval/docsift/internal/source"
	"github.com/nkoval/docsift/internal/state"
)

var flags struct {
	tool       string
	errorsOnly bool
	verbose    bool
	noColor    bool
	format     string
	url        string
	follow     bool
	shareState bool
	stateDir   string
	webhookURL string
	idleFlush  time.Duration
	logLevel   string
}

func run() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		var ec exitCodeError
		if errors.As(err, &ec) {
			return int(ec)
		}
		fmt.Fprintf(os.Stderr, "docsift: %v\n", err)
		return 2
	}
	return 0
}

// exitCodeError carries an exit code through cobra without a message.
type exitCodeError int

func (e exitCodeError) Error() string { return fmt.Sprintf("exit code %d", int(e)) }

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docsift [flags] [-- build-command args...]",
		Short: "Filter documentation build output down to what matters",
		Long: `docsift reads MkDocs or Sphinx build output and reports only the
warnings and errors, with code blocks and traceback context attached.

Input comes from a pipe, a wrapped build command, or a remote build log:

  mkdocs build 2>&1 | docsift
  docsift -- mkdocs serve
  docsift --url https://readthedocs.org/projects/myproj/builds/12345/`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(cmd.Context(), args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.tool, "tool", "t", "", "restrict parsing to one tool (mkdocs, sphinx)")
	f.BoolVarP(&flags.errorsOnly, "errors-only", "e", false, "suppress warnings, report errors only")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "show code and output blocks with each issue")
	f.BoolVar(&flags.noColor, "no-color", false, "disable colored output")
	f.StringVarP(&flags.format, "format", "f", "", "output format (term, jsonl)")
	f.StringVarP(&flags.url, "url", "u", "", "fetch a remote build log instead of reading stdin")
	f.BoolVar(&flags.follow, "follow", false, "treat stdin as a live stream with rebuild tracking")
	f.BoolVar(&flags.shareState, "share-state", false, "write build status to the shared state file")
	f.StringVar(&flags.stateDir, "state-dir", "", "directory for the shared state file")
	f.StringVar(&flags.webhookURL, "webhook-url", "", "POST each completed build cycle to this URL")
	f.DurationVar(&flags.idleFlush, "idle-flush", 0, "force out a pending issue after this quiet period")
	f.StringVar(&flags.logLevel, "log-level", "", "diagnostic log level (debug, info, warn, error)")

	cmd.AddCommand(newStatusCmd())
	return cmd
}

// loadConfig layers flag values over file and environment configuration.
func loadConfig() (config.Config, string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return config.Config{}, "", err
	}
	project := state.FindProjectRoot(wd)

	cfg, err := config.Load(project)
	if err != nil {
		return cfg, project, err
	}

	if flags.tool != "" {
		cfg.Filter.Tool = flags.tool
	}
	if flags.errorsOnly {
		cfg.Filter.ErrorsOnly = true
	}
	if flags.idleFlush > 0 {
		cfg.Filter.IdleFlush = config.Duration(flags.idleFlush)
	}
	if flags.format != "" {
		cfg.Output.Format = flags.format
	}
	if flags.verbose {
		cfg.Output.Verbose = true
	}
	if flags.noColor {
		cfg.Output.NoColor = true
	}
	if flags.shareState {
		cfg.State.Share = true
	}
	if flags.stateDir != "" {
		cfg.State.Dir = flags.stateDir
	}
	if flags.webhookURL != "" {
		cfg.Webhook.URL = flags.webhookURL
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}

	switch cfg.Output.Format {
	case "term", "jsonl":
	default:
		return cfg, project, fmt.Errorf("unknown format %q", cfg.Output.Format)
	}
	return cfg, project, nil
}

func runFilter(ctx context.Context, args []string) error {
	cfg, project, err := loadConfig()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Output.Format == "jsonl", cfg.Logging.Level)

	ctx, cancel := signalContext(ctx)
	defer cancel()

	switch {
	case len(args) > 0:
		return runWrap(ctx, cfg, project, args)
	case flags.url != "":
		return runBatch(ctx, cfg, source.NewRemote(flags.url))
	case flags.follow:
		return runStream(ctx, cfg, project, source.NewStdin())
	default:
		return runBatch(ctx, cfg, source.NewStdin())
	}
}

// runBatch parses a complete log in one pass and exits nonzero when
// errors were found.
func runBatch(ctx context.Context, cfg config.Config, src source.Source) error {
	lines, err := src.Lines(ctx)
	if err != nil {
		return err
	}

	eng := engine.New(engine.Config{
		Tool:       cfg.Filter.Tool,
		ErrorsOnly: cfg.Filter.ErrorsOnly,
	})
	var all []string
	for line := range lines {
		all = append(all, line)
	}
	if err := src.Err(); err != nil && err != context.Canceled {
		return err
	}
	report := eng.ParseLines(all)

	out := newRenderer(cfg)
	defer out.Close()
	for _, iss := range report.Issues {
		if err := out.Issue(ctx, iss); err != nil {
			return err
		}
	}
	cyc := report.Cycle()
	if err := out.Cycle(ctx, cyc); err != nil {
		return err
	}

	if report.Summary.Errors > 0 {
		return exitCodeError(1)
	}
	return nil
}

// runWrap launches the build command and streams its output through a
// session. The build's exit code is propagated.
func runWrap(ctx context.Context, cfg config.Config, project string, args []string) error {
	src := source.NewCommand(args[0], args[1:]...)
	if err := runStream(ctx, cfg, project, src); err != nil {
		return err
	}
	if code := src.ExitCode(); code > 0 {
		return exitCodeError(code)
	}
	return nil
}

// runStream runs a streaming session over the source, with interactive
// raw/filtered toggling when a terminal is available.
func runStream(ctx context.Context, cfg config.Config, project string, src source.Source) error {
	out, renderer := newStreamOutputs(cfg, project)
	opts := []session.Option{
		session.WithTool(cfg.Filter.Tool),
		session.WithIdleFlush(cfg.Filter.IdleFlush.Std()),
	}
	if cfg.Filter.ErrorsOnly {
		opts = append(opts, session.WithErrorsOnly())
	}
	mgr := session.New(out, opts...)

	lines, err := src.Lines(ctx)
	if err != nil {
		out.Close()
		return err
	}

	var showRaw atomic.Bool
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stopKeys := startKeyToggle(cancel, &showRaw, renderer)
	defer stopKeys()

	// Tee raw lines to stdout while the raw view is toggled on.
	filtered := make(chan string, 64)
	go func() {
		defer close(filtered)
		for line := range lines {
			if showRaw.Load() {
				fmt.Println(line)
			}
			select {
			case filtered <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := mgr.Run(ctx, filtered); err != nil && err != context.Canceled {
		return err
	}
	if err := src.Err(); err != nil && err != context.Canceled {
		// A failing wrapped build already reports through its issues and
		// exit code; only transport-level errors surface here.
		var execErr *exec.ExitError
		if !errors.As(err, &execErr) {
			return err
		}
	}
	return nil
}

// newRenderer builds the primary result renderer for the configured
// format.
func newRenderer(cfg config.Config) output.Output {
	if cfg.Output.Format == "jsonl" {
		return jsonl.New(os.Stdout, false)
	}
	var opts []term.Option
	if cfg.Output.Verbose {
		opts = append(opts, term.WithVerbose())
	}
	if cfg.Output.NoColor {
		opts = append(opts, term.WithNoColor())
	}
	return term.New(os.Stdout, opts...)
}

// newStreamOutputs assembles the streaming output stack: renderer, plus
// the optional state file and webhook sinks.
func newStreamOutputs(cfg config.Config, project string) (output.Output, *term.Output) {
	renderer := newRenderer(cfg)
	outs := []output.Output{renderer}

	if cfg.State.Share {
		store := state.NewStore(project, cfg.State.Dir)
		outs = append(outs, statefile.New(store))
	}
	if cfg.Webhook.URL != "" {
		outs = append(outs, async.New(webhook.New(cfg.Webhook.URL)))
	}

	t, _ := renderer.(*term.Output)
	if len(outs) == 1 {
		return renderer, t
	}
	return multi.New(outs...), t
}

// startKeyToggle wires the interactive keys: r shows raw output, f goes
// back to filtered, q quits. No-op without a terminal.
func startKeyToggle(cancel context.CancelFunc, showRaw *atomic.Bool, renderer *term.Output) func() {
	tty, err := os.Open("/dev/tty")
	if err != nil {
		return func() {}
	}
	keys, restore, ok := console.Keys(tty)
	if !ok {
		tty.Close()
		return func() {}
	}

	go func() {
		for key := range keys {
			switch key {
			case 'r':
				showRaw.Store(true)
				if renderer != nil {
					renderer.SetEnabled(false)
				}
			case 'f':
				showRaw.Store(false)
				if renderer != nil {
					renderer.SetEnabled(true)
				}
			case 'q', 3: // q or ctrl-c
				cancel()
				return
			}
		}
	}()

	return func() {
		restore()
		tty.Close()
	}
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			fmt.Fprintf(os.Stderr, "\nreceived %v, shutting down...\n", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

