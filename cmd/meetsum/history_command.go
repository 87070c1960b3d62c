package main

import (
	"github.com/spf13/cobra"

	apperrors "github.com/johnquangdev/meeting-summarizer/errors"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previously submitted jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return apperrors.ErrInvalidArgument("Job history is disabled. Set MEETSUM_HISTORY_ENABLED=true to enable it.")
			}

			store := ctx.openHistory()
			if store == nil {
				return apperrors.ErrHistoryFailed("open store", nil)
			}
			defer store.Close()

			jobs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			ctx.terminal(cmd).History(jobs)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of jobs to list")
	return cmd
}
