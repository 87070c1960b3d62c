package entities

import (
	"encoding/json"
	"fmt"
	"strings"
)

// JobStatusResponse is the poll envelope returned by GET /api/job/{id}.
// Progress is advisory only; nothing waits for it to reach 100.
type JobStatusResponse struct {
	Status   JobStatusValue `json:"status"`
	Progress int            `json:"progress"`
	Message  string         `json:"message"`
	Result   *RawResult     `json:"result,omitempty"`
}

// RawResult is the backend-shaped, heterogeneous job result. Every field is
// optional; a transcription job carries transcript data only, a summary job
// adds meeting_summary and friends. Missing fields are defaulted during
// normalization, never treated as errors.
type RawResult struct {
	Transcript          TranscriptField           `json:"transcript,omitempty"`
	FormattedTranscript []string                  `json:"formatted_transcript,omitempty"`
	Speakers            []string                  `json:"speakers,omitempty"`
	Language            string                    `json:"language,omitempty"`
	LanguageName        string                    `json:"language_name,omitempty"`
	MeetingSummary      *RawMeetingSummary        `json:"meeting_summary,omitempty"`
	ActionItems         []RawActionItem           `json:"action_items,omitempty"`
	SpeakerSummaries    map[string]SpeakerSummary `json:"speaker_summaries,omitempty"`
	ConfidenceMetrics   *ConfidenceMetrics        `json:"confidence_metrics,omitempty"`
	Metadata            *ResultMetadata           `json:"metadata,omitempty"`
}

// TranscriptField absorbs the backend's transcript polymorphism: either a
// plain string or an ordered list of speaker segments.
type TranscriptField struct {
	Text     string
	Segments []TranscriptSegment
}

// IsZero reports whether no transcript of either shape is present.
func (t TranscriptField) IsZero() bool {
	return t.Text == "" && len(t.Segments) == 0
}

// UnmarshalJSON accepts a JSON string or an array of segment objects.
func (t *TranscriptField) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		return nil
	}
	if strings.HasPrefix(trimmed, "\"") {
		return json.Unmarshal(data, &t.Text)
	}
	return json.Unmarshal(data, &t.Segments)
}

// MarshalJSON renders the field back in whichever shape it holds.
func (t TranscriptField) MarshalJSON() ([]byte, error) {
	if len(t.Segments) > 0 {
		return json.Marshal(t.Segments)
	}
	return json.Marshal(t.Text)
}

// TranscriptSegment is one speaker turn in a diarized transcript.
type TranscriptSegment struct {
	Speaker    SpeakerID `json:"speaker"`
	Text       string    `json:"text"`
	Confidence *float64  `json:"confidence,omitempty"`
	StartTime  *float64  `json:"start_time,omitempty"`
}

// SpeakerID tolerates the backend sending speaker labels as numbers ("1")
// or strings ("A").
type SpeakerID string

func (s *SpeakerID) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		return nil
	}
	if strings.HasPrefix(trimmed, "\"") {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = SpeakerID(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = SpeakerID(num.String())
	return nil
}

// Label renders the canonical "Speaker {id}" label used to correlate
// segments with speaker summaries.
func (s SpeakerID) Label() string {
	return fmt.Sprintf("Speaker %s", string(s))
}

// RawMeetingSummary is the backend's meeting_summary object.
type RawMeetingSummary struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"key_points"`
	Decisions []string `json:"decisions"`
}

// RawActionItem is a backend action item before default filling.
type RawActionItem struct {
	Action   string `json:"action"`
	Assignee string `json:"assignee,omitempty"`
	DueDate  string `json:"due_date,omitempty"`
	Priority string `json:"priority,omitempty"`
}

// SpeakerSummary is the backend's per-speaker breakdown.
type SpeakerSummary struct {
	BriefSummary     string   `json:"brief_summary"`
	KeyContributions []string `json:"key_contributions"`
	ActionItems      []string `json:"action_items"`
	QuestionsRaised  []string `json:"questions_raised"`
}

// ConfidenceMetrics are backend-supplied aggregate transcription-quality
// scores on the 0-100 scale.
type ConfidenceMetrics struct {
	Average                 float64 `json:"average"`
	Min                     float64 `json:"min"`
	Max                     float64 `json:"max"`
	LowConfidencePercentage float64 `json:"low_confidence_percentage"`
	TotalSegments           *int    `json:"total_segments,omitempty"`
	LowConfidenceCount      *int    `json:"low_confidence_count,omitempty"`
}

// ResultMetadata is the backend's metadata object.
type ResultMetadata struct {
	Language             string   `json:"language,omitempty"`
	LanguageName         string   `json:"language_name,omitempty"`
	TotalDurationMinutes *float64 `json:"total_duration_minutes,omitempty"`
	ParticipantCount     *int     `json:"participant_count,omitempty"`
	ChunksAnalyzed       *int     `json:"chunks_analyzed,omitempty"`
}

// Language is one entry of the supported-languages list.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
