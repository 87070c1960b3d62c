package main

import (
	"github.com/spf13/cobra"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <job-id>",
		Short: "Re-attach to a previously submitted job and wait for it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := ctx.newWorkflow(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			term := ctx.terminal(cmd)

			state, err := svc.WatchJob(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if state.ShowSummary {
				term.Summary(state.Summary)
				return nil
			}
			if state.Transcript != "" {
				term.Transcript(state.Transcript, state.ConfidenceMetrics)
				return nil
			}
			term.StatusLine(string(state.Phase), state.Progress, state.StatusMessage)
			return nil
		},
	}
	return cmd
}
