package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"log/slog"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bamsammich/dupes/internal/config"
	"github.com/bamsammich/dupes/internal/engine"
	"github.com/bamsammich/dupes/internal/event"
	"github.com/bamsammich/dupes/internal/remove"
	"github.com/bamsammich/dupes/internal/report"
	"github.com/bamsammich/dupes/internal/stats"
	"github.com/bamsammich/dupes/internal/ui"
)

type rmOptions struct {
	permanent bool
	keep      string
	keepBy    string
	report    string
	verify    bool
	auditLog  string
	trashDir  string
	workers   int
	jsonOut   bool
	quiet     bool
}

func newRmCmd() *cobra.Command {
	opts := &rmOptions{}
	cmd := &cobra.Command{
		Use:   "rm [flags] PATH... | rm --keep-by STRATEGY --report REPORT",
		Short: "Move files to the trash or delete them",
		Long: `Move files to the freedesktop.org trash, or delete them with --permanent.

Every successful removal is appended to an audit log. With --keep, each PATH
is first re-hashed and only removed if its content still matches KEEP.

With --keep-by, the files to remove come from a saved report instead: in each
group the newest, oldest or shortest-path copy is kept and the rest removed.
Unless --verify=false, a group whose kept copy changed since the report is
skipped, and members that changed are not removed.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.keepBy != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRm(cmd, opts, args)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.permanent, "permanent", false, "delete instead of moving to the trash")
	f.StringVar(&opts.keep, "keep", "", "copy being kept; PATHs must match its content")
	f.StringVar(&opts.keepBy, "keep-by", "", "keep one copy per report group: newest, oldest or shortest")
	f.StringVar(&opts.report, "report", "", "report written by --output or --json (with --keep-by)")
	f.BoolVar(&opts.verify, "verify", true, "with --keep or --keep-by, re-hash before removing")
	f.StringVar(&opts.auditLog, "audit-log", "", "audit log file (default "+remove.DefaultAuditLog+")")
	f.StringVar(&opts.trashDir, "trash-dir", "", "trash directory (default $XDG_DATA_HOME/Trash)")
	f.IntVarP(&opts.workers, "workers", "n", 0, "hashing workers for --verify (default: NumCPU)")
	f.BoolVar(&opts.jsonOut, "json", false, `print the result as {"success":...,"error":...}`)
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress progress")
	return cmd
}

func runRm(cmd *cobra.Command, opts *rmOptions, paths []string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	cfg, cfgErr := config.Load()
	if !cmd.Flags().Changed("audit-log") && cfg.Defaults.AuditLog != nil {
		opts.auditLog = config.ExpandHome(*cfg.Defaults.AuditLog)
	}
	if !cmd.Flags().Changed("trash-dir") && cfg.Defaults.Trash != nil {
		opts.trashDir = config.ExpandHome(*cfg.Defaults.Trash)
	}
	if !cmd.Flags().Changed("workers") && cfg.Defaults.Workers != nil {
		opts.workers = *cfg.Defaults.Workers
	}

	logger, closeLog, err := setupLogging(stderr, opts.quiet, false, "")
	if err != nil {
		return err
	}
	defer closeLog()
	if cfgErr != nil {
		logger.Warn("failed to load config", "error", cfgErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var refused int
	if opts.keepBy != "" {
		if opts.keep != "" {
			return fmt.Errorf("--keep and --keep-by are mutually exclusive")
		}
		paths, refused, err = planFromReport(ctx, opts, logger)
		if err != nil {
			return err
		}
	}
	if opts.keep != "" {
		if err := checkNotKept(opts.keep, paths); err != nil {
			return err
		}
		if opts.verify {
			vr, err := engine.MatchReference(ctx, opts.keep, paths, opts.workers)
			if err != nil {
				return fmt.Errorf("hash --keep file: %w", err)
			}
			for _, m := range vr.Mismatched {
				logger.Warn("content differs from --keep, not removing", "path", m.Path, "error", m.Err)
			}
			refused = len(vr.Mismatched)
			matched := make([]string, 0, len(vr.Matched))
			for _, rec := range vr.Matched {
				matched = append(matched, rec.Path)
			}
			paths = matched
		}
	}

	remover := remove.NewRemover(
		remove.NewFreedesktopTrash(opts.trashDir),
		remove.NewAuditLog(opts.auditLog),
		logger,
	)

	events := make(chan event.Progress, 64)
	presenter := ui.NewPresenter(ui.Config{
		ErrWriter: stderr,
		Stats:     stats.NewCollector(),
		IsTTY:     isTerminal(stderr),
		Quiet:     opts.quiet || opts.jsonOut,
		Width:     termWidth(stderr),
	})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = presenter.Run(events) //nolint:errcheck // progress display only
	}()

	var res remove.Result
	verb := "trashed"
	if opts.permanent {
		verb = "deleted"
		res = remover.DeleteAll(paths, event.ChannelSink(events))
	} else {
		res = remover.TrashAll(paths, event.ChannelSink(events))
	}
	close(events)
	wg.Wait()

	if opts.jsonOut {
		if err := json.NewEncoder(stdout).Encode(res); err != nil {
			return err
		}
	} else if res.Success {
		logger.Info(verb, "files", len(paths), "refused", refused)
	} else {
		logger.Error("removal incomplete", "error", res.Err())
	}

	if !res.Success || refused > 0 {
		return &exitError{code: exitPartial}
	}
	return nil
}

// checkNotKept rejects a removal list that names the kept file itself.
func checkNotKept(keep string, paths []string) error {
	keepAbs, err := filepath.Abs(keep)
	if err != nil {
		return err
	}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		if abs == keepAbs {
			return fmt.Errorf("refusing to remove %s: it is the --keep file", p)
		}
	}
	return nil
}

// planFromReport picks the paths to remove from a saved report, keeping one
// member of each group by opts.keepBy. It also returns how many members were
// held back because their content changed.
func planFromReport(ctx context.Context, opts *rmOptions, logger *slog.Logger) ([]string, int, error) {
	strategy, err := remove.ParseKeepStrategy(opts.keepBy)
	if err != nil {
		return nil, 0, err
	}
	if opts.report == "" {
		return nil, 0, fmt.Errorf("--keep-by requires --report")
	}
	rep, err := report.ReadFile(opts.report)
	if err != nil {
		return nil, 0, err
	}

	var paths []string
	var refused int
	for _, g := range rep.Groups {
		keep, rest := remove.SplitGroup(g, strategy)
		if !opts.verify {
			paths = append(paths, rest...)
			continue
		}

		vr, err := engine.VerifyGroup(ctx, g, opts.workers)
		if err != nil {
			return nil, 0, fmt.Errorf("verify group %s: %w", ui.ShortHash(g.Hash), err)
		}
		unchanged := make(map[string]bool, len(vr.Matched))
		for _, rec := range vr.Matched {
			unchanged[rec.Path] = true
		}
		if !unchanged[keep] {
			logger.Warn("kept copy changed since the report, skipping group", "keep", keep, "hash", ui.ShortHash(g.Hash))
			refused += len(rest)
			continue
		}
		for _, p := range rest {
			if !unchanged[p] {
				logger.Warn("content changed since the report, not removing", "path", p)
				refused++
				continue
			}
			paths = append(paths, p)
		}
	}
	logger.Debug("removal plan", "strategy", string(strategy), "groups", len(rep.Groups), "remove", len(paths), "refused", refused)
	return paths, refused, nil
}
