package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"setprep/internal/history"
)

const historyTimeLayout = "2006-01-02 15:04"

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				flags := make([]string, 0, 2)
				if r.DryRun {
					flags = append(flags, "dry run")
				}
				if r.Cancelled {
					flags = append(flags, "cancelled")
				}
				rows = append(rows, []string{
					r.RunID,
					r.StartedAt.Local().Format(historyTimeLayout),
					filepath.Base(r.Target),
					strconv.Itoa(r.Summary.Complete),
					strconv.Itoa(r.Summary.Partial),
					strconv.Itoa(r.Summary.Failed),
					strconv.Itoa(r.Summary.Unresolved),
					strings.Join(flags, ", "),
				})
			}
			fmt.Fprintln(out, tableSpec{
				headers:      []string{"Run", "Started", "Target", "Complete", "Partial", "Failed", "Unresolved", "Notes"},
				rows:         rows,
				rightAligned: []int{3, 4, 5, 6},
			}.render())
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print the run log of a past run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			runID := strings.TrimSpace(args[0])
			log, err := store.Log(cmd.Context(), runID)
			if err != nil {
				return err
			}
			if log == nil {
				return fmt.Errorf("run %s not found", runID)
			}
			return writeJSON(cmd, log)
		},
	}
}
