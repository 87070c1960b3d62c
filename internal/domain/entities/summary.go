package entities

// Action item defaults applied during normalization.
const (
	DefaultAssignee = "Unassigned"
	DefaultDueDate  = "Not specified"
	DefaultPriority = "Medium"
)

// Summary is the client view model built exclusively from a RawResult.
// Result views render this and nothing else.
type Summary struct {
	MeetingSummary       string                `json:"meeting_summary"`
	KeyPoints            []string              `json:"key_points"`
	Decisions            []string              `json:"decisions"`
	ActionItems          []ActionItem          `json:"action_items"`
	SpeakerContributions []SpeakerContribution `json:"speaker_contributions"`
	Metadata             SummaryMetadata       `json:"metadata"`
	ConfidenceMetrics    *ConfidenceMetrics    `json:"confidence_metrics,omitempty"`
	// Raw keeps the backend result around for the transcript preview.
	Raw *RawResult `json:"raw,omitempty"`
}

// HasMeetingSummary reports whether a full summary is present; without one
// the workflow stays in the transcript-preview state.
func (s *Summary) HasMeetingSummary() bool {
	return s != nil && s.MeetingSummary != ""
}

// ActionItem is a normalized action item. Priority is one of
// High/Medium/Low after default filling; unrecognized backend values are
// preserved and render with the default styling.
type ActionItem struct {
	Title    string `json:"title"`
	Assignee string `json:"assignee"`
	DueDate  string `json:"due_date"`
	Priority string `json:"priority"`
}

// SpeakerContribution is one speaker's normalized breakdown. Confidence is
// nil when no transcript segment for this speaker carried a numeric
// confidence; renderers show no badge in that case, not zero.
type SpeakerContribution struct {
	Name             string   `json:"name"`
	Summary          string   `json:"summary"`
	KeyContributions []string `json:"key_contributions"`
	ActionItems      []string `json:"action_items"`
	QuestionsRaised  []string `json:"questions_raised"`
	Confidence       *float64 `json:"confidence,omitempty"`
}

// SummaryMetadata is the normalized metadata block.
type SummaryMetadata struct {
	Language             string   `json:"language"`
	LanguageName         string   `json:"language_name,omitempty"`
	TotalDurationMinutes *float64 `json:"total_duration_minutes,omitempty"`
	ParticipantCount     *int     `json:"participant_count,omitempty"`
	ChunksAnalyzed       *int     `json:"chunks_analyzed,omitempty"`
}
