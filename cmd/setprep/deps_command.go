package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"setprep/internal/deps"
	"setprep/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	var target string
	var pf pipelineFlags

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Check external tools and folder access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.configCopy()
			if err != nil {
				return err
			}
			if err := applyOverrides(cmd, cfg, pf.apply); err != nil {
				return err
			}
			statuses, verifyErr := deps.Verify(cfg)

			rows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				state := "ok"
				switch {
				case !s.Available && s.Optional:
					state = "missing (stage skipped)"
				case !s.Available:
					state = "missing"
				}
				rows = append(rows, []string{s.Name, s.Stage, s.Command, state, s.Detail})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, tableSpec{
				title:   "External tools",
				headers: []string{"Tool", "Stage", "Command", "Status", "Detail"},
				rows:    rows,
			}.render())

			results := preflight.RunAll(cfg, target)
			checkRows := make([][]string, 0, len(results))
			for _, r := range results {
				checkRows = append(checkRows, []string{r.Name, yesNo(r.Passed), r.Detail})
			}
			fmt.Fprintln(out, tableSpec{
				title:   "Folders",
				headers: []string{"Check", "OK", "Detail"},
				rows:    checkRows,
			}.render())

			printToolHints(cmd.ErrOrStderr(), verifyErr)
			failed := preflight.Failed(results)
			switch {
			case verifyErr != nil && len(failed) > 0:
				return errors.Join(verifyErr, fmt.Errorf("%d folder check(s) failed", len(failed)))
			case verifyErr != nil:
				return verifyErr
			case len(failed) > 0:
				return fmt.Errorf("%d folder check(s) failed", len(failed))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "Also check access to this set folder")
	pf.registerTools(cmd.Flags())
	return cmd
}
