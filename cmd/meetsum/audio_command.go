package main

import (
	"github.com/spf13/cobra"
)

func newAudioCommand(ctx *commandContext) *cobra.Command {
	var language string
	var longRecording bool
	var summarizeAfter bool
	var participants string
	var additionalContext string

	cmd := &cobra.Command{
		Use:   "audio <file>",
		Short: "Upload an audio recording and wait for its transcript",
		Long: `Uploads an audio file for transcription and polls the job until it
finishes. The transcript is printed as a preview; pass --summarize to
continue straight into summary generation.`,
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
			if additionalContext != "" {
				svc.SetAdditionalContext(additionalContext)
			}

			state, err := svc.ProcessAudio(cmd.Context(), args[0], language, longRecording)
			if err != nil {
				return err
			}

			if state.Transcript != "" {
				term.Transcript(state.Transcript, state.ConfidenceMetrics)
			}
			if state.ShowSummary {
				term.Summary(state.Summary)
				return nil
			}

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

	cmd.Flags().StringVarP(&language, "language", "l", "auto", "Transcription language code, or auto to detect")
	cmd.Flags().BoolVar(&longRecording, "long", false, "Treat the recording as a long recording")
	cmd.Flags().BoolVarP(&summarizeAfter, "summarize", "s", false, "Generate a summary after transcription completes")
	cmd.Flags().StringVarP(&participants, "participants", "p", "", "Comma-separated participant names")
	cmd.Flags().StringVar(&additionalContext, "context", "", "Additional context for the summary")

	return cmd
}
