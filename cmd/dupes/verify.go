package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bamsammich/dupes/internal/engine"
	"github.com/bamsammich/dupes/internal/report"
	"github.com/bamsammich/dupes/internal/ui"
)

func newVerifyCmd() *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "verify REPORT",
		Short: "Re-hash the groups of a saved report",
		Long: `Re-hash every file listed in a report written with --output or --json and
report the files whose content no longer matches their group.

Exits 0 when every file still matches and 1 otherwise.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, args[0], workers)
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "n", 0, "hashing workers (default: NumCPU)")
	return cmd
}

func runVerify(cmd *cobra.Command, path string, workers int) error {
	stdout := cmd.OutOrStdout()

	rep, err := report.ReadFile(path)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var matched, mismatched int
	for _, g := range rep.Groups {
		res, err := engine.VerifyGroup(ctx, g, workers)
		if err != nil {
			if ctx.Err() != nil {
				return &exitError{code: exitCancelled}
			}
			return fmt.Errorf("verify group %s: %w", ui.ShortHash(g.Hash), err)
		}
		matched += len(res.Matched)
		for _, m := range res.Mismatched {
			mismatched++
			if m.Err != nil {
				fmt.Fprintf(stdout, "✗  %s  %s  %v\n", ui.ShortHash(g.Hash), m.Path, m.Err)
			} else {
				fmt.Fprintf(stdout, "✗  %s  %s  now %s\n", ui.ShortHash(g.Hash), m.Path, ui.ShortHash(m.Actual))
			}
		}
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "verified %s groups  %s files ok  %s changed\n",
		ui.FormatCount(int64(len(rep.Groups))),
		ui.FormatCount(int64(matched)),
		ui.FormatCount(int64(mismatched)))

	if mismatched > 0 {
		return &exitError{code: exitPartial}
	}
	return nil
}
