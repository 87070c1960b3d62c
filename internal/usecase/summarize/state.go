package summarize

import (
	"github.com/johnquangdev/meeting-summarizer/internal/domain/entities"
)

// Phase is the workflow phase of the orchestrator.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseUploading Phase = "uploading"
	PhasePolling   Phase = "polling"
	PhaseCompleted Phase = "completed"
	PhaseFailed    Phase = "failed"
)

// State is the single source of truth for the workflow. Transitions happen
// only through the event methods below, which makes the state machine
// testable without any rendering environment.
type State struct {
	Phase         Phase
	JobID         string
	Progress      int
	StatusMessage string
	ErrorMessage  string

	// Input state
	Transcript        string
	Participants      string // comma-separated at the UI boundary
	Language          string
	AdditionalContext string
	IsLongRecording   bool
	InputName         string

	// Result state
	Summary     *entities.Summary
	ShowSummary bool
	// ConfidenceMetrics holds the last metrics seen for the current job.
	// Once set they never regress to nil for the same job.
	ConfidenceMetrics *entities.ConfidenceMetrics
}

// NewState returns the Idle state with the auto-detect language selected.
func NewState() State {
	return State{Phase: PhaseIdle, Language: entities.LanguageAuto}
}

// uploadStarted: Idle -> Uploading. Clears any previous summary and error.
func (s *State) uploadStarted(inputName string) {
	s.Phase = PhaseUploading
	s.Progress = 10
	s.StatusMessage = "Uploading file..."
	s.ErrorMessage = ""
	s.Summary = nil
	s.ShowSummary = false
	s.InputName = inputName
}

// summaryRequested enters the summary sub-flow, reusing the same polling
// mechanism afterwards.
func (s *State) summaryRequested() {
	s.Phase = PhaseUploading
	s.Progress = 5
	s.StatusMessage = "Preparing to generate summary..."
	s.ErrorMessage = ""
	s.Summary = nil
	s.ShowSummary = false
}

// jobIssued: Uploading -> Polling.
func (s *State) jobIssued(jobID string) {
	s.Phase = PhasePolling
	s.JobID = jobID
	s.StatusMessage = "Job started. Please wait while we process your request..."
}

// pollTick applies a non-terminal status update.
func (s *State) pollTick(status *entities.JobStatusResponse) {
	s.Progress = status.Progress
	if status.Message != "" {
		s.StatusMessage = status.Message
	} else {
		s.StatusMessage = "Processing..."
	}
}

// pollTransientError keeps the loop alive with a generic message.
func (s *State) pollTransientError() {
	s.StatusMessage = "Checking status... Please wait."
}

// transcriptReady applies a completed transcription result: the workflow
// stays in a preview-only state until the user requests a summary.
func (s *State) transcriptReady(transcript, participants string, message string, metrics *entities.ConfidenceMetrics, raw *entities.RawResult) {
	s.Phase = PhaseCompleted
	s.Transcript = transcript
	if participants != "" {
		s.Participants = participants
	}
	s.StatusMessage = message
	if metrics != nil {
		s.ConfidenceMetrics = metrics
	}
	s.Summary = &entities.Summary{ConfidenceMetrics: s.ConfidenceMetrics, Raw: raw}
	s.ShowSummary = false
}

// adoptLanguage trusts the backend's detector over any prior user choice.
func (s *State) adoptLanguage(code string) {
	if code != "" {
		s.Language = code
	}
}

// summaryReady applies a completed full summary.
func (s *State) summaryReady(summary *entities.Summary) {
	s.Phase = PhaseCompleted
	s.Progress = 100
	s.Summary = summary
	s.ShowSummary = true
	s.StatusMessage = "Summary generated successfully!"
	if summary.ConfidenceMetrics != nil {
		s.ConfidenceMetrics = summary.ConfidenceMetrics
	}
}

// failed: any phase -> Failed.
func (s *State) failed(message string) {
	s.Phase = PhaseFailed
	s.ErrorMessage = message
}

// reset: any phase -> Idle. Clears everything the workflow accumulated.
// Polling cancellation is handled by the owner of the loop, not here.
func (s *State) reset() {
	*s = NewState()
}
