package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bamsammich/dupes/internal/config"
	"github.com/bamsammich/dupes/internal/history"
	"github.com/bamsammich/dupes/internal/report"
	"github.com/bamsammich/dupes/internal/ui"
)

const shortIDLen = 8

func newHistoryCmd() *cobra.Command {
	var (
		dbPath string
		limit  int
	)

	open := func(cmd *cobra.Command) (*history.Store, error) {
		if !cmd.Flags().Changed("db") {
			if cfg, err := config.Load(); err == nil && cfg.Defaults.History != nil {
				dbPath = config.ExpandHome(*cfg.Defaults.History)
			}
		}
		if dbPath == "" {
			dbPath = history.DefaultPath()
		}
		return history.Open(dbPath)
	}

	cmd := &cobra.Command{
		Use:           "history",
		Short:         "List recorded scans",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := open(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(limit)
			if err != nil {
				return err
			}
			return printRuns(cmd.OutOrStdout(), runs)
		},
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "history database (default $XDG_DATA_HOME/dupes/history.db)")
	cmd.Flags().IntVar(&limit, "limit", 20, "show at most N runs (0 for all)")

	var jsonOut bool
	showCmd := &cobra.Command{
		Use:           "show ID",
		Short:         "Print the duplicate groups of a recorded scan",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetRun(args[0])
			if err != nil {
				return err
			}
			groups, err := store.Groups(run.ID)
			if err != nil {
				return err
			}
			report.SortGroups(groups)

			out := cmd.OutOrStdout()
			if jsonOut {
				rep := &report.Report{
					Version:     report.Version,
					GeneratedAt: run.StartedAt.UTC(),
					Roots:       run.Roots,
					Groups:      groups,
				}
				return rep.Write(out)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "run %s  %s  %s  %s\n",
				run.ID, run.Status, run.StartedAt.Format(time.DateTime), strings.Join(run.Roots, " "))
			return ui.PrintGroups(out, groups, isTerminal(out))
		},
	}
	showCmd.Flags().BoolVar(&jsonOut, "json", false, "print as a JSON report")

	rmCmd := &cobra.Command{
		Use:           "rm ID",
		Short:         "Delete a recorded scan",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetRun(args[0])
			if err != nil {
				return err
			}
			if err := store.DeleteRun(run.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted run %s\n", run.ID)
			return nil
		},
	}

	cmd.AddCommand(showCmd, rmCmd)
	return cmd
}

func printRuns(w io.Writer, runs []*history.Run) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSTATUS\tFILES\tGROUPS\tWASTED\tROOTS")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID[:min(shortIDLen, len(r.ID))],
			r.StartedAt.Local().Format(time.DateTime),
			r.Status,
			ui.FormatCount(r.FilesWalked),
			ui.FormatCount(r.Groups),
			ui.FormatBytes(r.WastedBytes),
			strings.Join(r.Roots, " "),
		)
	}
	return tw.Flush()
}
