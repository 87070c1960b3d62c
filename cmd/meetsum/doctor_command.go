package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check backend reachability and local configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			failed := false

			fmt.Fprintf(out, "Backend URL:       %s\n", cfg.API.BaseURL)
			fmt.Fprintf(out, "Poll interval:     %s\n", cfg.Polling.Interval)

			svc, cleanup, err := ctx.newWorkflow(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if healthErr := svc.CheckHealth(cmd.Context()); healthErr != nil {
				failed = true
				fmt.Fprintf(out, "Backend health:    FAIL (%v)\n", healthErr)
			} else {
				fmt.Fprintln(out, "Backend health:    OK")
			}

			if !cfg.History.Enabled {
				fmt.Fprintln(out, "Job history:       disabled")
			} else if store := ctx.openHistory(); store != nil {
				fmt.Fprintf(out, "Job history:       OK (%s)\n", store.Path())
				_ = store.Close()
			} else {
				failed = true
				fmt.Fprintf(out, "Job history:       FAIL (%s)\n", cfg.History.Path)
			}

			if failed {
				return fmt.Errorf("one or more checks failed")
			}
			return nil
		},
	}
	return cmd
}
