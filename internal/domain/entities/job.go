package entities

import "time"

// JobStatusValue represents the status of a backend processing job
type JobStatusValue string

const (
	JobStatusPending    JobStatusValue = "pending"
	JobStatusProcessing JobStatusValue = "processing"
	JobStatusCompleted  JobStatusValue = "completed"
	JobStatusFailed     JobStatusValue = "failed"
)

// IsTerminal reports whether polling should stop at this status.
// completed and failed are the only terminal states.
func (s JobStatusValue) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// JobKind represents what the backend job was asked to do
type JobKind string

const (
	JobKindTranscription JobKind = "transcription" // audio upload -> transcript
	JobKindSummary       JobKind = "summary"       // transcript -> summary
)

// Job is the client-side record of a backend job, identified by the opaque
// id the backend issued. At most one job is actively polled at a time.
type Job struct {
	ID          string         `json:"id"`
	Kind        JobKind        `json:"kind"`
	InputName   string         `json:"input_name"`
	Status      JobStatusValue `json:"status"`
	Progress    int            `json:"progress"`
	Message     string         `json:"message"`
	LastError   string         `json:"last_error,omitempty"`
	SubmittedAt time.Time      `json:"submitted_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// NewJob creates a client-side job record for a freshly issued job id.
func NewJob(id string, kind JobKind, inputName string) *Job {
	return &Job{
		ID:          id,
		Kind:        kind,
		InputName:   inputName,
		Status:      JobStatusPending,
		SubmittedAt: time.Now(),
	}
}

// MarkCompleted marks the job as finished successfully.
func (j *Job) MarkCompleted() {
	j.Status = JobStatusCompleted
	j.Progress = 100
	now := time.Now()
	j.CompletedAt = &now
}

// MarkFailed marks the job as failed with the backend's message.
func (j *Job) MarkFailed(errMsg string) {
	j.Status = JobStatusFailed
	j.LastError = errMsg
	now := time.Now()
	j.CompletedAt = &now
}
