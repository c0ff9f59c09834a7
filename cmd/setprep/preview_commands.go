package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"setprep/internal/logging"
	"setprep/internal/workflow"
)

func newParseCommand(ctx *commandContext) *cobra.Command {
	var target string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Show the entries parsed from a set list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.configCopy()
			if err != nil {
				return err
			}
			manager, err := workflow.NewManager(cfg, logging.NewNop())
			if err != nil {
				return err
			}
			folder, err := manager.SelectTarget(cmd.Context(), target)
			if err != nil {
				return err
			}
			setFile, parsed, err := manager.ParseSetFile(folder)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, parsed)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Set file: %s\n", setFile)
			fmt.Fprintln(out, renderEntries(parsed))
			if table := renderMalformed(parsed.Malformed); table != "" {
				fmt.Fprintln(out, table)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "Set folder (default: pick under paths.set_root)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")
	return cmd
}

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var target string
	var asJSON bool
	var mf matchFlags

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Preview how set-list entries resolve to source files",
		Long:  "Parses the set list and matches every entry against the source library without tagging or processing anything.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.configCopy()
			if err != nil {
				return err
			}
			if err := applyOverrides(cmd, cfg, mf.apply); err != nil {
				return err
			}
			logger, err := ctx.logger(cfg)
			if err != nil {
				return err
			}
			manager, err := newManager(cmd, cfg, logger)
			if err != nil {
				return err
			}
			folder, err := manager.SelectTarget(cmd.Context(), target)
			if err != nil {
				return err
			}
			plan, err := manager.Match(cmd.Context(), folder)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, plan.Decisions)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderDecisions(plan.Decisions))
			fmt.Fprintf(out, "Matched %d of %d entries; %d source files not in the set\n",
				len(plan.Resolved()), len(plan.Decisions), len(plan.Leftovers))
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "Set folder (default: pick under paths.set_root)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print decisions as JSON")
	mf.register(cmd.Flags())
	return cmd
}
