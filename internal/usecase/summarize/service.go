package summarize

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-summarizer/errors"
	"github.com/johnquangdev/meeting-summarizer/internal/adapter/api"
	"github.com/johnquangdev/meeting-summarizer/internal/domain/entities"
	"github.com/johnquangdev/meeting-summarizer/pkg/config"
	"github.com/johnquangdev/meeting-summarizer/pkg/jobcontext"
	pkgvalidator "github.com/johnquangdev/meeting-summarizer/pkg/validator"
)

// TranscriptLimit is the hard cap on pasted transcript length.
const TranscriptLimit = 100000

// HistoryRecorder persists submitted jobs for the history command. The
// workflow itself never reads it back; it is an audit log, not state.
type HistoryRecorder interface {
	RecordSubmission(ctx context.Context, job *entities.Job) error
	UpdateStatus(ctx context.Context, jobID string, status entities.JobStatusValue, progress int, message string) error
}

// generateRequest is the validated shape of a summary request.
type generateRequest struct {
	Transcript string `validate:"required,max=100000"`
}

// Service is the job orchestrator. It owns all workflow state, calls the
// HTTP client, runs the polling loop, and normalizes backend payloads into
// the view model. The active job id and the polling cancellation are owned
// exclusively here; no other component may start or stop polling.
type Service struct {
	client     *api.Client
	cfg        *config.Config
	logger     *zap.Logger
	validate   *pkgvalidator.CustomValidator
	normalizer *Normalizer
	history    HistoryRecorder
	onUpdate   func(State)

	mu            sync.Mutex
	state         State
	cancelPolling context.CancelFunc
	// pollGen identifies the watch that owns cancelPolling. A superseded
	// watch's unwind must never cancel its successor's loop.
	pollGen   uint64
	languages []entities.Language
}

// NewService constructs the orchestrator. history may be nil; onUpdate, when
// set, receives a snapshot after every state transition.
func NewService(client *api.Client, cfg *config.Config, logger *zap.Logger, history HistoryRecorder, onUpdate func(State)) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:     client,
		cfg:        cfg,
		logger:     logger,
		validate:   pkgvalidator.New(),
		normalizer: NewNormalizer(),
		history:    history,
		onUpdate:   onUpdate,
		state:      NewState(),
	}
}

// State returns a snapshot of the workflow state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Languages returns the supported languages, fetching them once.
func (s *Service) Languages(ctx context.Context) []entities.Language {
	s.mu.Lock()
	cached := s.languages
	s.mu.Unlock()
	if cached != nil {
		return cached
	}

	langs := s.client.GetLanguages(ctx)
	s.mu.Lock()
	s.languages = langs
	s.mu.Unlock()
	return langs
}

// CheckHealth probes the backend. Failure is reported, never blocking.
func (s *Service) CheckHealth(ctx context.Context) error {
	_, err := s.client.CheckHealth(ctx)
	return err
}

// Input setters; the orchestrator owns the input state the same way it owns
// the workflow state.

// SetTranscript stores a pasted transcript, silently clamped to the cap.
func (s *Service) SetTranscript(text string) {
	if len(text) > TranscriptLimit {
		s.logger.Warn("transcript clamped to limit",
			zap.Int("length", len(text)),
			zap.Int("limit", TranscriptLimit))
		text = text[:TranscriptLimit]
	}
	s.applyLocal(func(st *State) { st.Transcript = text })
}

func (s *Service) SetParticipants(participants string) {
	s.applyLocal(func(st *State) { st.Participants = participants })
}

func (s *Service) SetLanguage(code string) {
	s.applyLocal(func(st *State) { st.Language = code })
}

func (s *Service) SetLongRecording(isLong bool) {
	s.applyLocal(func(st *State) { st.IsLongRecording = isLong })
}

func (s *Service) SetAdditionalContext(context string) {
	s.applyLocal(func(st *State) { st.AdditionalContext = context })
}

// Reset returns the workflow to Idle: clears the uploaded input, transcript,
// participants, additional context, error, and processing flags, and cancels
// any active polling loop.
func (s *Service) Reset() {
	s.mu.Lock()
	if s.cancelPolling != nil {
		s.cancelPolling()
		s.cancelPolling = nil
	}
	s.state.reset()
	snapshot := s.state
	s.mu.Unlock()
	s.notify(snapshot)
}

// ProcessAudio uploads an audio file and watches the transcription job to a
// terminal state. On completion the transcript preview is populated; the
// workflow does NOT advance to a full summary unless the backend already
// returned one.
func (s *Service) ProcessAudio(ctx context.Context, path, languageCode string, isLongRecording bool) (State, error) {
	if path == "" {
		return s.fail(apperrors.ErrInvalidArgument("audio file path is required"))
	}

	s.applyLocal(func(st *State) {
		st.Language = languageCode
		st.IsLongRecording = isLongRecording
		st.uploadStarted(filepath.Base(path))
	})

	jobID, err := s.client.UploadAudio(ctx, path, languageCode, isLongRecording)
	if err != nil {
		return s.fail(err)
	}
	if jobID == "" {
		return s.fail(apperrors.ErrNoJobID())
	}

	s.logger.Info("audio uploaded, starting job polling",
		zap.String("job_id", jobID),
		zap.String("file", filepath.Base(path)))

	s.recordSubmission(ctx, entities.NewJob(jobID, entities.JobKindTranscription, filepath.Base(path)))
	s.applyLocal(func(st *State) { st.StatusMessage = "File uploaded. Processing will start soon." })

	return s.watch(ctx, jobID)
}

// ProcessTextFile uploads a transcript text file and stores the extracted
// transcript and any detected participants.
func (s *Service) ProcessTextFile(ctx context.Context, path string) (State, error) {
	if path == "" {
		return s.fail(apperrors.ErrInvalidArgument("text file path is required"))
	}

	s.applyLocal(func(st *State) { st.uploadStarted(filepath.Base(path)) })

	out, err := s.client.UploadText(ctx, path)
	if err != nil {
		return s.fail(err)
	}
	if out.Transcript == "" {
		return s.fail(apperrors.ErrInvalidArgument("No transcript found in the uploaded file."))
	}

	s.applyLocal(func(st *State) {
		st.Phase = PhaseCompleted
		st.Transcript = out.Transcript
		if len(out.Participants) > 0 {
			st.Participants = entities.JoinParticipants(out.Participants)
		}
		st.StatusMessage = "Text file processed successfully!"
		st.Progress = 100
	})
	return s.State(), nil
}

// GenerateSummary requests a summary for the current transcript. When no
// participants were supplied, the backend is asked to extract them first; if
// extraction yields nothing, the flow fails and no summary request is made.
func (s *Service) GenerateSummary(ctx context.Context) (State, error) {
	current := s.State()

	if strings.TrimSpace(current.Transcript) == "" {
		return s.fail(apperrors.ErrMissingTranscript())
	}
	if err := s.validate.Validate(generateRequest{Transcript: current.Transcript}); err != nil {
		return s.fail(apperrors.ErrTranscriptTooLong(len(current.Transcript), TranscriptLimit))
	}

	s.applyLocal(func(st *State) { st.summaryRequested() })

	participants := entities.ParseParticipants(current.Participants)
	if len(participants) == 0 {
		s.applyLocal(func(st *State) {
			st.StatusMessage = "Extracting participants from transcript..."
			st.Progress = 10
		})

		extracted, err := s.client.ExtractParticipants(ctx, current.Transcript, nil, "")
		if err != nil || len(extracted) == 0 {
			s.logger.Warn("participant extraction failed", zap.Error(err))
			return s.fail(apperrors.ErrNoParticipants())
		}
		participants = extracted
		s.applyLocal(func(st *State) {
			st.Participants = entities.JoinParticipants(extracted)
		})
	}

	count := len(participants)
	s.applyLocal(func(st *State) {
		st.StatusMessage = statusGenerating(count)
		st.Progress = 20
	})

	resp, err := s.client.GenerateSummary(ctx,
		current.Transcript,
		participants,
		current.Language,
		current.IsLongRecording,
		strings.TrimSpace(current.AdditionalContext))
	if err != nil {
		return s.fail(err)
	}

	if resp.JobID != "" {
		s.recordSubmission(ctx, entities.NewJob(resp.JobID, entities.JobKindSummary, "transcript"))
		s.applyLocal(func(st *State) {
			st.StatusMessage = "Summary generation started. This may take a few minutes..."
		})
		return s.watch(ctx, resp.JobID)
	}

	// Inline result: normalize through the exact same path as a polled one.
	if resp.Result != nil && resp.Result.MeetingSummary != nil {
		summary := s.normalizer.Normalize(resp.Result, current.ConfidenceMetrics, s.Languages(ctx), current.Language)
		s.applyLocal(func(st *State) { st.summaryReady(summary) })
		return s.State(), nil
	}

	return s.fail(apperrors.ErrNoJobID())
}

// WatchJob re-attaches to a previously submitted job id and polls it to a
// terminal state.
func (s *Service) WatchJob(ctx context.Context, jobID string) (State, error) {
	if jobID == "" {
		return s.fail(apperrors.ErrMissingJobID())
	}
	return s.watch(ctx, jobID)
}

// watch starts the polling loop for jobID. Starting a new loop always
// cancels the previous one: at most one polling loop exists at any time.
func (s *Service) watch(ctx context.Context, jobID string) (State, error) {
	var pollCtx context.Context
	var cancel context.CancelFunc
	if s.cfg.Polling.MaxWait > 0 {
		pollCtx, cancel = context.WithTimeout(ctx, s.cfg.Polling.MaxWait)
	} else {
		pollCtx, cancel = context.WithCancel(ctx)
	}
	pollCtx = jobcontext.WithJob(pollCtx, jobID)

	s.mu.Lock()
	if s.cancelPolling != nil {
		s.cancelPolling()
	}
	s.cancelPolling = cancel
	s.pollGen++
	gen := s.pollGen
	s.state.jobIssued(jobID)
	snapshot := s.state
	s.mu.Unlock()
	s.notify(snapshot)

	defer func() {
		s.mu.Lock()
		// Only release the shared slot if no newer watch has claimed it.
		if s.pollGen == gen {
			s.cancelPolling = nil
		}
		s.mu.Unlock()
		cancel()
	}()

	final, err := s.pollUntilTerminal(pollCtx, jobID)
	if err != nil {
		if pollCtx.Err() != nil {
			// Cancelled or timed out; the reset already reshaped the state.
			return s.State(), err
		}
		s.updateHistory(ctx, jobID, entities.JobStatusFailed, 0, err.Error())
		return s.fail(err)
	}

	return s.handleTerminal(pollCtx, jobID, final)
}

// handleTerminal applies a terminal job status. Executed once per job, at
// the completed or failed transition.
func (s *Service) handleTerminal(ctx context.Context, jobID string, status *entities.JobStatusResponse) (State, error) {
	if status.Status == entities.JobStatusFailed {
		s.updateHistory(ctx, jobID, entities.JobStatusFailed, status.Progress, status.Message)
		return s.fail(apperrors.ErrJobFailed(status.Message))
	}

	languages := s.Languages(ctx)
	result := status.Result
	current := s.State()

	if result != nil && !result.Transcript.IsZero() {
		transcript := s.normalizer.FlattenTranscript(result)
		participants := entities.JoinParticipants(s.normalizer.DeriveParticipants(result))
		message := s.normalizer.CompletionMessage(result, languages)

		s.apply(ctx, func(st *State) {
			st.adoptLanguage(result.Language)
			st.transcriptReady(transcript, participants, message, result.ConfidenceMetrics, result)
		})
	}

	if result != nil && result.MeetingSummary != nil {
		summary := s.normalizer.Normalize(result, current.ConfidenceMetrics, languages, current.Language)
		s.apply(ctx, func(st *State) { st.summaryReady(summary) })
	}

	if result == nil {
		s.apply(ctx, func(st *State) {
			st.Phase = PhaseCompleted
			st.Progress = 100
			if status.Message != "" {
				st.StatusMessage = status.Message
			}
		})
	}

	s.updateHistory(ctx, jobID, entities.JobStatusCompleted, 100, status.Message)
	return s.State(), nil
}

// fail moves the workflow to Failed and returns the error unchanged.
func (s *Service) fail(err error) (State, error) {
	s.applyLocal(func(st *State) { st.failed(err.Error()) })
	return s.State(), err
}

// apply mutates state on behalf of a polling dispatch. The result is
// discarded when the dispatching job id no longer matches the current one,
// so a late response for a superseded job cannot repopulate state.
func (s *Service) apply(ctx context.Context, fn func(*State)) {
	dispatched := jobcontext.JobID(ctx)

	s.mu.Lock()
	if dispatched != "" && dispatched != s.state.JobID {
		current := s.state.JobID
		s.mu.Unlock()
		s.logger.Debug("discarding stale job update",
			zap.String("dispatched_job_id", dispatched),
			zap.String("current_job_id", current))
		return
	}
	fn(&s.state)
	snapshot := s.state
	s.mu.Unlock()
	s.notify(snapshot)
}

// applyLocal mutates state for a synchronous, non-polling event.
func (s *Service) applyLocal(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.state
	s.mu.Unlock()
	s.notify(snapshot)
}

func (s *Service) notify(snapshot State) {
	if s.onUpdate != nil {
		s.onUpdate(snapshot)
	}
}

func (s *Service) recordSubmission(ctx context.Context, job *entities.Job) {
	if s.history == nil {
		return
	}
	if err := s.history.RecordSubmission(ctx, job); err != nil {
		s.logger.Warn("failed to record job in history", zap.String("job_id", job.ID), zap.Error(err))
	}
}

func (s *Service) updateHistory(ctx context.Context, jobID string, status entities.JobStatusValue, progress int, message string) {
	if s.history == nil {
		return
	}
	if err := s.history.UpdateStatus(ctx, jobID, status, progress, message); err != nil {
		s.logger.Warn("failed to update job history", zap.String("job_id", jobID), zap.Error(err))
	}
}

func statusGenerating(count int) string {
	if count == 1 {
		return "Generating summary with 1 participant..."
	}
	return fmt.Sprintf("Generating summary with %d participants...", count)
}
