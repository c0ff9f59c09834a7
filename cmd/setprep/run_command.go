package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"setprep/internal/config"
	"setprep/internal/history"
	"setprep/internal/logging"
	"setprep/internal/matcher"
	"setprep/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var target string
	var asJSON bool
	var mf matchFlags
	var pf pipelineFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Match the set list, tag and process every track",
		Long: "Matches each set-list entry in the target folder to a source file, tags it, " +
			"converts it to AIFF, premasters and analyzes it, and writes runlog.json plus an " +
			"iTunes import helper into the target folder.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.configCopy()
			if err != nil {
				return err
			}
			if err := applyOverrides(cmd, cfg, mf.apply, pf.apply); err != nil {
				return err
			}
			logger, err := ctx.logger(cfg)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var opts []workflow.Option
			store, err := history.Open(cfg)
			if err != nil {
				logging.WarnWithContext(logger, "run history unavailable", "history_unavailable",
					logging.Error(err),
					logging.String(logging.FieldImpact, "this run will not appear in setprep history"),
				)
			} else {
				defer store.Close()
				opts = append(opts, workflow.WithHistory(store))
			}

			manager, err := newManager(cmd, cfg, logger, opts...)
			if err != nil {
				return err
			}
			folder, err := manager.SelectTarget(runCtx, target)
			if err != nil {
				return err
			}
			result, err := manager.Run(runCtx, folder)
			if result != nil && result.Log != nil {
				if asJSON {
					if jsonErr := writeJSON(cmd, result.Log); jsonErr != nil && err == nil {
						err = jsonErr
					}
				} else {
					printRunReport(cmd.OutOrStdout(), result)
				}
			}
			printToolHints(cmd.ErrOrStderr(), err)
			return err
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "Set folder to prepare (default: pick under paths.set_root)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run log as JSON")
	mf.register(cmd.Flags())
	pf.register(cmd.Flags())
	return cmd
}

type overrideFunc func(*cobra.Command, *config.Config) error

// applyOverrides applies flag overrides and revalidates the result.
func applyOverrides(cmd *cobra.Command, cfg *config.Config, overrides ...overrideFunc) error {
	for _, apply := range overrides {
		if err := apply(cmd, cfg); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

// newManager wires prompts when matching is interactive and a terminal is
// attached; otherwise the configured non-interactive policy applies.
func newManager(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, opts ...workflow.Option) (*workflow.Manager, error) {
	in, out := cmd.InOrStdin(), cmd.OutOrStdout()
	if promptable(cfg.Matching.Interactive, in, out) {
		opts = append(opts,
			workflow.WithDisambiguator(matcher.NewPrompt(in, out, cfg.Matching.MaxAlternatives)),
			workflow.WithFolderChooser(workflow.NewFolderPrompt(in, out)),
		)
	}
	return workflow.NewManager(cfg, logger, opts...)
}
