package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/time/rate"

	"github.com/bamsammich/dupes/internal/config"
	"github.com/bamsammich/dupes/internal/engine"
	"github.com/bamsammich/dupes/internal/event"
	"github.com/bamsammich/dupes/internal/filter"
	"github.com/bamsammich/dupes/internal/history"
	"github.com/bamsammich/dupes/internal/report"
	"github.com/bamsammich/dupes/internal/stats"
	"github.com/bamsammich/dupes/internal/ui"
	"github.com/bamsammich/dupes/internal/ui/tui"
)

var version = "dev"

// Process exit codes.
const (
	exitOK        = 0
	exitPartial   = 1 // some removals or verifications failed
	exitFailed    = 2
	exitCancelled = 130
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailed
	}
	return exitOK
}

// filterFlag is a pflag.Value that preserves CLI ordering of --exclude and
// --include rules by appending to a shared filter.Chain.
type filterFlag struct {
	chain   *filter.Chain
	include bool
}

func (*filterFlag) String() string { return "" }
func (*filterFlag) Type() string   { return "string" }

func (f *filterFlag) Set(val string) error {
	if f.include {
		return f.chain.AddInclude(val)
	}
	return f.chain.AddExclude(val)
}

// scanOptions holds the root command's flags.
type scanOptions struct {
	workers     int
	bwLimit     string
	filterFile  string
	minSize     string
	maxSize     string
	jsonOut     bool
	output      string
	historyPath string
	tui         bool
	quiet       bool
	verbose     bool
	noProgress  bool
	logFile     string
	showVersion bool

	chain *filter.Chain
}

func newRootCmd() *cobra.Command {
	opts := &scanOptions{chain: filter.NewChain()}

	rootCmd := &cobra.Command{
		Use:   "dupes [flags] ROOT...",
		Short: "Find duplicate files by size, partial hash and full BLAKE3 hash",
		Long: `Find duplicate files under one or more directory trees.

Files are grouped by size first. Same-size files are compared by a hash of
their first and last 16 KiB, and only the survivors are hashed in full.
Results list each group of identical files with the space that removing all
but one copy would reclaim.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				return nil
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				fmt.Fprintf(cmd.OutOrStdout(), "dupes %s\n", version)
				return nil
			}
			return runScan(cmd, opts, args)
		},
	}

	f := rootCmd.Flags()
	f.BoolVar(&opts.showVersion, "version", false, "print version and exit")
	f.IntVarP(&opts.workers, "workers", "n", 0, "number of hashing workers (default: NumCPU)")
	f.StringVar(&opts.bwLimit, "bwlimit", "", "limit full-hash read rate (e.g. 100M, 1G)")
	f.Var(&filterFlag{chain: opts.chain}, "exclude", "exclude files matching PATTERN (repeatable)")
	f.Var(&filterFlag{chain: opts.chain, include: true}, "include", "include files matching PATTERN (repeatable)")
	f.StringVar(&opts.filterFile, "filter", "", "read filter rules from FILE")
	f.StringVar(&opts.minSize, "min-size", "", "skip files smaller than SIZE (e.g. 1M, 100K)")
	f.StringVar(&opts.maxSize, "max-size", "", "skip files larger than SIZE (e.g. 1G, 500M)")
	f.BoolVar(&opts.jsonOut, "json", false, "print the result as a JSON report")
	f.StringVarP(&opts.output, "output", "o", "", "also write the JSON report to FILE (.zst compresses)")
	f.StringVar(&opts.historyPath, "history", "", "record the run in the history database at PATH")
	f.BoolVar(&opts.tui, "tui", false, "full-screen TUI (Bubble Tea)")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress progress and summary")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose logging")
	f.BoolVar(&opts.noProgress, "no-progress", false, "disable the in-place progress line")
	f.StringVar(&opts.logFile, "log", "", "write structured JSON log to FILE")

	f.VisitAll(func(fl *pflag.Flag) {
		if fl.Name == "exclude" || fl.Name == "include" {
			fl.NoOptDefVal = ""
		}
	})

	rootCmd.AddCommand(newRmCmd())
	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newScheduleCmd())
	rootCmd.AddCommand(newDocsCmd())

	return rootCmd
}

// applyConfigDefaults applies config file defaults for flags not explicitly
// set on the CLI.
func applyConfigDefaults(cmd *cobra.Command, d config.DefaultsConfig, opts *scanOptions) error {
	changed := cmd.Flags().Changed
	if !changed("workers") && d.Workers != nil {
		opts.workers = *d.Workers
	}
	if !changed("bwlimit") && d.BWLimit != nil {
		opts.bwLimit = *d.BWLimit
	}
	if !changed("min-size") && d.MinSize != nil {
		opts.minSize = *d.MinSize
	}
	if !changed("max-size") && d.MaxSize != nil {
		opts.maxSize = *d.MaxSize
	}
	if !changed("tui") && d.TUI != nil {
		opts.tui = *d.TUI
	}
	if !changed("history") && d.History != nil {
		opts.historyPath = config.ExpandHome(*d.History)
	}
	if !changed("exclude") && !changed("include") && len(d.Exclude) > 0 {
		if err := opts.chain.AddExcludes(d.Exclude...); err != nil {
			return fmt.Errorf("config exclude: %w", err)
		}
	}
	return nil
}

// setupLogging installs the default logger: text on stderr at a level
// chosen by --quiet/--verbose, plus JSON at Debug to logFile when set.
// The returned func closes the log file.
func setupLogging(stderr io.Writer, quiet, verbose bool, logFile string) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelWarn
	}
	var handler slog.Handler = slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})

	closeFn := func() {}
	if logFile != "" {
		lf, err := os.Create(logFile)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		closeFn = func() { lf.Close() } //nolint:errcheck,gosec // log file close on exit
		jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{Level: slog.LevelDebug})
		handler = ui.NewMultiHandler(handler, jsonHandler)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, closeFn, nil
}

// buildFilter finishes the filter chain from --filter and the size bounds.
// Returns nil when no rules were given.
func buildFilter(opts *scanOptions) (*filter.Chain, error) {
	if opts.filterFile != "" {
		if err := opts.chain.LoadFile(opts.filterFile); err != nil {
			return nil, fmt.Errorf("load filter file: %w", err)
		}
	}
	if opts.minSize != "" {
		n, err := filter.ParseSize(opts.minSize)
		if err != nil {
			return nil, fmt.Errorf("invalid --min-size: %w", err)
		}
		opts.chain.SetMinSize(n)
	}
	if opts.maxSize != "" {
		n, err := filter.ParseSize(opts.maxSize)
		if err != nil {
			return nil, fmt.Errorf("invalid --max-size: %w", err)
		}
		opts.chain.SetMaxSize(n)
	}
	if opts.chain.Empty() {
		return nil, nil
	}
	return opts.chain, nil
}

func parseBWLimit(s string) (*rate.Limiter, error) {
	if s == "" {
		return nil, nil
	}
	n, err := filter.ParseSize(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --bwlimit: %w", err)
	}
	if n <= 0 {
		return nil, fmt.Errorf("invalid --bwlimit %q: must be positive", s)
	}
	return engine.NewBWLimiter(n), nil
}

//nolint:gocyclo,revive // cyclomatic: CLI entry point wires config, logging, history, presenters and output
func runScan(cmd *cobra.Command, opts *scanOptions, roots []string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	cfg, cfgErr := config.Load()
	if err := applyConfigDefaults(cmd, cfg.Defaults, opts); err != nil {
		return err
	}

	logger, closeLog, err := setupLogging(stderr, opts.quiet, opts.verbose, opts.logFile)
	if err != nil {
		return err
	}
	defer closeLog()
	if cfgErr != nil {
		logger.Warn("failed to load config", "error", cfgErr)
	}

	chain, err := buildFilter(opts)
	if err != nil {
		return err
	}
	limiter, err := parseBWLimit(opts.bwLimit)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store *history.Store
	var run *history.Run
	if opts.historyPath != "" {
		store, err = history.Open(opts.historyPath)
		if err != nil {
			return err
		}
		defer store.Close()
		run, err = store.CreateRun(roots)
		if err != nil {
			return err
		}
		logger.Debug("recording run", "id", run.ID, "history", store.Path())
	}

	collector := stats.NewCollector()
	events := make(chan event.Progress, 256)
	sink := event.Sink(event.ChannelSink(events))
	if opts.logFile != "" {
		sink = event.Tee(sink, ui.LogSink(logger))
	}

	scan := engine.NewScan(engine.Config{
		Roots:   roots,
		Sink:    sink,
		Workers: opts.workers,
		Filter:  chain,
		Limiter: limiter,
		Stats:   collector,
		Logger:  logger,
	})

	logger.Debug("starting scan", "roots", roots, "workers", opts.workers, "filter", chain != nil)

	isTTY := isTerminal(stderr)
	useTUI := opts.tui && isTTY && !opts.quiet
	if opts.tui && !isTTY {
		logger.Warn("--tui requires a terminal, falling back to inline output")
	}

	var result engine.Result
	var presenter ui.Presenter

	if useTUI {
		presenter = tui.NewPresenter(tui.Config{
			Stats:   collector,
			Workers: opts.workers,
			Theme:   cfg.Theme,
			Hooks: tui.Hooks{
				Cancel: scan.Cancel,
				Result: func() engine.Result { return result },
				Save: func(path string) error {
					return report.New(roots, result).WriteFile(path)
				},
			},
		})

		// Bubble Tea needs the foreground to capture stdin.
		var engineWg sync.WaitGroup
		engineWg.Add(1)
		go func() {
			defer engineWg.Done()
			result = scan.Run(ctx)
			close(events)
		}()

		if err := presenter.Run(events); err != nil {
			logger.Warn("tui", "error", err)
		}

		// The user quit; stop the scan if it is still going.
		scan.Cancel()
		engineWg.Wait()
	} else {
		presenter = ui.NewPresenter(ui.Config{
			ErrWriter:  stderr,
			Stats:      collector,
			IsTTY:      isTTY,
			Quiet:      opts.quiet,
			NoProgress: opts.noProgress,
			Width:      termWidth(stderr),
		})

		var presenterErr error
		var presenterWg sync.WaitGroup
		presenterWg.Add(1)
		go func() {
			defer presenterWg.Done()
			presenterErr = presenter.Run(events)
		}()

		result = scan.Run(ctx)
		close(events)
		presenterWg.Wait()
		if presenterErr != nil {
			logger.Warn("presenter", "error", presenterErr)
		}
	}
	stop()

	if store != nil {
		recordRun(logger, store, run, result)
	}

	if !opts.quiet {
		if summary := presenter.Summary(); summary != "" {
			fmt.Fprintln(stderr, summary)
		}
	}

	rep := report.New(roots, result)
	if result.Status == engine.Completed {
		if opts.output != "" {
			if err := rep.WriteFile(opts.output); err != nil {
				return err
			}
			logger.Info("report written", "path", opts.output, "groups", len(rep.Groups))
		}
		switch {
		case opts.jsonOut:
			if err := rep.Write(stdout); err != nil {
				return err
			}
		case !useTUI:
			if err := ui.PrintGroups(stdout, rep.Groups, isTerminal(stdout)); err != nil {
				return err
			}
		}
	}

	return exitFor(result)
}

// recordRun stores the outcome in history and compares it with the previous
// completed run over the same roots. Failures are logged, not returned: the
// scan itself already finished.
func recordRun(logger *slog.Logger, store *history.Store, run *history.Run, result engine.Result) {
	status := history.StatusFor(result.Status)
	if err := store.FinishRun(run.ID, status, result.Stats, result.Err); err != nil {
		logger.Warn("failed to record run", "id", run.ID, "error", err)
		return
	}
	if result.Status != engine.Completed {
		return
	}
	if err := store.SaveGroups(run.ID, result.Groups); err != nil {
		logger.Warn("failed to record groups", "id", run.ID, "error", err)
		return
	}

	prev, err := store.PreviousRun(run)
	switch {
	case errors.Is(err, history.ErrNotFound):
		return
	case err != nil:
		logger.Warn("failed to read previous run", "error", err)
		return
	}
	logger.Info("compared with previous run",
		"previous", prev.ID,
		"groups", result.Stats.Groups,
		"groups_delta", result.Stats.Groups-prev.Groups,
		"wasted", ui.FormatBytes(result.Stats.WastedBytes),
		"wasted_delta", ui.FormatBytes(result.Stats.WastedBytes-prev.WastedBytes),
	)
}

// exitFor maps a scan outcome to the process exit code.
func exitFor(result engine.Result) error {
	switch result.Status {
	case engine.Completed:
		return nil
	case engine.Cancelled:
		return &exitError{code: exitCancelled}
	default:
		return &exitError{code: exitFailed}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && ui.IsTTY(f.Fd())
}

// termWidth returns the column count of w, or 0 when w is not a terminal.
func termWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !ui.IsTTY(f.Fd()) {
		return 0
	}
	return ui.TermWidth(f.Fd())
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
