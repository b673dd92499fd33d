package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bamsammich/dupes/internal/config"
	"github.com/bamsammich/dupes/internal/engine"
	"github.com/bamsammich/dupes/internal/history"
	"github.com/bamsammich/dupes/internal/scheduler"
	"github.com/bamsammich/dupes/internal/stats"
)

func newScheduleCmd() *cobra.Command {
	var (
		expr    string
		dbPath  string
		workers int
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "schedule --cron EXPR [flags] ROOT...",
		Short: "Scan on a cron schedule, recording each run in history",
		Long: `Run a scan of ROOT... at every tick of a cron schedule and record each run in
the history database. EXPR is a five-field cron expression ("0 3 * * *") or a
descriptor such as "@daily" or "@every 6h". A tick that arrives while the
previous scan is still running is skipped.

Runs in the foreground until interrupted. "dupes schedule status" reports on
a running scheduler.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, roots []string) error {
			logger, closeLog, err := setupLogging(cmd.ErrOrStderr(), false, verbose, "")
			if err != nil {
				return err
			}
			defer closeLog()

			if !cmd.Flags().Changed("db") {
				if cfg, err := config.Load(); err == nil && cfg.Defaults.History != nil {
					dbPath = config.ExpandHome(*cfg.Defaults.History)
				}
			}
			if dbPath == "" {
				dbPath = history.DefaultPath()
			}
			store, err := history.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			state := config.ScheduleState{
				PID:     os.Getpid(),
				Cron:    expr,
				Roots:   roots,
				History: store.Path(),
				Started: time.Now().Truncate(time.Second),
			}

			var sched *scheduler.Scheduler
			scan := scheduledScan(logger, store, roots, workers)
			job := func(ctx context.Context) error {
				err := scan(ctx)
				state.NextRun = sched.Next(time.Now())
				if werr := config.WriteScheduleState(state); werr != nil {
					logger.Warn("failed to write schedule state", "error", werr)
				}
				return err
			}
			sched, err = scheduler.New(expr, job, logger)
			if err != nil {
				return err
			}

			state.NextRun = sched.Next(time.Now())
			if err := config.WriteScheduleState(state); err != nil {
				logger.Warn("failed to write schedule state", "error", err)
			}
			defer config.RemoveScheduleState()

			logger.Info("scheduler started", "cron", expr, "roots", roots, "next", state.NextRun)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err = sched.Run(ctx)
			logger.Info("scheduler stopped", "runs", sched.Runs(), "skipped", sched.Skipped())
			return err
		},
	}
	cmd.Flags().StringVar(&expr, "cron", "", "cron expression or descriptor (required)")
	cmd.Flags().StringVar(&dbPath, "db", "", "history database (default $XDG_DATA_HOME/dupes/history.db)")
	cmd.Flags().IntVarP(&workers, "workers", "n", 0, "hashing workers (default: NumCPU)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	_ = cmd.MarkFlagRequired("cron") //nolint:errcheck // flag is registered above

	cmd.AddCommand(&cobra.Command{
		Use:           "status",
		Short:         "Show the running scheduler, if any",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := config.ReadScheduleState()
			if errors.Is(err, os.ErrNotExist) {
				fmt.Fprintln(cmd.OutOrStdout(), "no scheduler running")
				return nil
			}
			if err != nil {
				return fmt.Errorf("read schedule state: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pid:      %d\n", state.PID)
			fmt.Fprintf(out, "cron:     %s\n", state.Cron)
			fmt.Fprintf(out, "roots:    %v\n", state.Roots)
			fmt.Fprintf(out, "history:  %s\n", state.History)
			fmt.Fprintf(out, "started:  %s\n", state.Started.Local().Format(time.DateTime))
			fmt.Fprintf(out, "next run: %s\n", state.NextRun.Local().Format(time.DateTime))
			return nil
		},
	})

	return cmd
}

// scheduledScan returns the job run at each tick: a full scan recorded in
// store. A failed or cancelled scan is recorded and returned as an error so
// the scheduler logs it; the schedule keeps going.
func scheduledScan(logger *slog.Logger, store *history.Store, roots []string, workers int) scheduler.Job {
	return func(ctx context.Context) error {
		run, err := store.CreateRun(roots)
		if err != nil {
			return err
		}
		log := logger.With("run", run.ID)
		log.Info("scheduled scan starting", "roots", roots)

		result := engine.Run(ctx, engine.Config{
			Roots:   roots,
			Workers: workers,
			Stats:   stats.NewCollector(),
			Logger:  log,
		})
		recordRun(log, store, run, result)

		if result.Err != nil {
			return fmt.Errorf("scan %s: %w", run.ID, result.Err)
		}
		log.Info("scheduled scan finished",
			"groups", result.Stats.Groups,
			"wasted", result.Stats.WastedBytes,
			"elapsed", result.Stats.Elapsed.Round(time.Millisecond))
		return nil
	}
}
