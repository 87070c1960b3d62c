package main

import (
	"io"

	"github.com/spf13/cobra"

	apperrors "github.com/johnquangdev/meeting-summarizer/errors"
)

func newPasteCommand(ctx *commandContext) *cobra.Command {
	var participants string
	var language string
	var additionalContext string

	cmd := &cobra.Command{
		Use:   "paste",
		Short: "Read a transcript from stdin and generate a summary",
		Example: `  cat transcript.txt | meetsum paste
  meetsum paste -p "Alice, Bob" < transcript.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return apperrors.ErrInvalidArgument("failed to read transcript from stdin")
			}
			if len(raw) == 0 {
				return apperrors.ErrMissingTranscript()
			}

			svc, cleanup, err := ctx.newWorkflow(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			term := ctx.terminal(cmd)

			svc.SetTranscript(string(raw))
			if participants != "" {
				svc.SetParticipants(participants)
			}
			if language != "" {
				svc.SetLanguage(language)
			}
			if additionalContext != "" {
				svc.SetAdditionalContext(additionalContext)
			}

			state, err := svc.GenerateSummary(cmd.Context())
			if err != nil {
				return err
			}
			term.Summary(state.Summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&participants, "participants", "p", "", "Comma-separated participant names")
	cmd.Flags().StringVarP(&language, "language", "l", "", "Summary language code")
	cmd.Flags().StringVar(&additionalContext, "context", "", "Additional context for the summary")

	return cmd
}
