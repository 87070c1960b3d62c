package main

import (
	"github.com/spf13/cobra"
)

func newTextCommand(ctx *commandContext) *cobra.Command {
	var summarizeAfter bool
	var participants string
	var language string
	var additionalContext string

	cmd := &cobra.Command{
		Use:   "text <file>",
		Short: "Upload a transcript text file",
		Long: `Uploads a plain-text transcript file. The backend may detect
participants in the file; otherwise they are extracted when a summary is
requested.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := ctx.newWorkflow(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			term := ctx.terminal(cmd)

			if participants != "" {
				svc.SetParticipants(participants)
			}
			if language != "" {
				svc.SetLanguage(language)
			}
			if additionalContext != "" {
				svc.SetAdditionalContext(additionalContext)
			}

			state, err := svc.ProcessTextFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			term.Transcript(state.Transcript, nil)

			if summarizeAfter {
				state, err = svc.GenerateSummary(cmd.Context())
				if err != nil {
					return err
				}
				term.Summary(state.Summary)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&summarizeAfter, "summarize", "s", false, "Generate a summary after the upload")
	cmd.Flags().StringVarP(&participants, "participants", "p", "", "Comma-separated participant names")
	cmd.Flags().StringVarP(&language, "language", "l", "", "Summary language code")
	cmd.Flags().StringVar(&additionalContext, "context", "", "Additional context for the summary")

	return cmd
}
