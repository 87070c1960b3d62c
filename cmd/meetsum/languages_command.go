package main

import (
	"github.com/spf13/cobra"
)

func newLanguagesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List supported transcription languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := ctx.newWorkflow(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx.terminal(cmd).Languages(svc.Languages(cmd.Context()))
			return nil
		},
	}
	return cmd
}
