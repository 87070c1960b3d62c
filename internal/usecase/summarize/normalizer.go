package summarize

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/johnquangdev/meeting-summarizer/internal/domain/entities"
)

// Normalizer converts heterogeneous backend results into the client view
// model. All methods are pure; defaults fill missing fields and nothing here
// ever returns an error, so a partially-populated backend response degrades
// gracefully instead of crashing the view.
type Normalizer struct{}

// NewNormalizer creates a new Normalizer instance
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// FlattenTranscript derives a human-readable transcript string: joined
// formatted_transcript lines when present, otherwise "Speaker {id}: {text}"
// per segment, otherwise the raw string as-is.
func (n *Normalizer) FlattenTranscript(result *entities.RawResult) string {
	if result == nil {
		return ""
	}
	if len(result.FormattedTranscript) > 0 {
		return strings.Join(result.FormattedTranscript, "\n")
	}
	if len(result.Transcript.Segments) > 0 {
		lines := make([]string, 0, len(result.Transcript.Segments))
		for _, seg := range result.Transcript.Segments {
			lines = append(lines, fmt.Sprintf("%s: %s", seg.Speaker.Label(), seg.Text))
		}
		return strings.Join(lines, "\n")
	}
	return result.Transcript.Text
}

// DeriveParticipants prefers the explicit speakers field, otherwise the
// distinct "Speaker {id}" labels observed in segments, in first-seen order.
func (n *Normalizer) DeriveParticipants(result *entities.RawResult) []string {
	if result == nil {
		return nil
	}
	if len(result.Speakers) > 0 {
		return result.Speakers
	}
	seen := make(map[string]bool)
	var names []string
	for _, seg := range result.Transcript.Segments {
		if seg.Speaker == "" {
			continue
		}
		label := seg.Speaker.Label()
		if !seen[label] {
			seen[label] = true
			names = append(names, label)
		}
	}
	return names
}

// Normalize builds the full view model from a RawResult carrying a
// meeting_summary. prior holds confidence metrics already seen for the same
// job; metrics never regress to unavailable once seen. languages resolves
// display names for language codes; fallbackLanguage is the orchestrator's
// current selection, used when the result names no language at all.
func (n *Normalizer) Normalize(result *entities.RawResult, prior *entities.ConfidenceMetrics, languages []entities.Language, fallbackLanguage string) *entities.Summary {
	if result == nil {
		result = &entities.RawResult{}
	}

	metrics := result.ConfidenceMetrics
	if metrics == nil {
		metrics = prior
	}

	summary := &entities.Summary{
		KeyPoints:         []string{},
		Decisions:         []string{},
		ActionItems:       []entities.ActionItem{},
		Metadata:          n.metadata(result, languages, fallbackLanguage),
		ConfidenceMetrics: metrics,
		Raw:               result,
	}

	if result.MeetingSummary != nil {
		summary.MeetingSummary = result.MeetingSummary.Summary
		if result.MeetingSummary.KeyPoints != nil {
			summary.KeyPoints = result.MeetingSummary.KeyPoints
		}
		if result.MeetingSummary.Decisions != nil {
			summary.Decisions = result.MeetingSummary.Decisions
		}
	}

	for _, item := range result.ActionItems {
		summary.ActionItems = append(summary.ActionItems, normalizeActionItem(item))
	}

	summary.SpeakerContributions = n.speakerContributions(result)

	return summary
}

// normalizeActionItem fills the defaults for missing action-item fields.
func normalizeActionItem(item entities.RawActionItem) entities.ActionItem {
	out := entities.ActionItem{
		Title:    item.Action,
		Assignee: item.Assignee,
		DueDate:  item.DueDate,
		Priority: item.Priority,
	}
	if out.Assignee == "" {
		out.Assignee = entities.DefaultAssignee
	}
	if out.DueDate == "" {
		out.DueDate = entities.DefaultDueDate
	}
	if out.Priority == "" {
		out.Priority = entities.DefaultPriority
	}
	return out
}

// speakerContributions maps speaker_summaries entries into the view model,
// attaching each speaker's mean segment confidence when computable. Entries
// are sorted by name so rendering is deterministic.
func (n *Normalizer) speakerContributions(result *entities.RawResult) []entities.SpeakerContribution {
	if len(result.SpeakerSummaries) == 0 {
		return nil
	}

	names := make([]string, 0, len(result.SpeakerSummaries))
	for name := range result.SpeakerSummaries {
		names = append(names, name)
	}
	sort.Strings(names)

	contributions := make([]entities.SpeakerContribution, 0, len(names))
	for _, name := range names {
		data := result.SpeakerSummaries[name]
		contribution := entities.SpeakerContribution{
			Name:             name,
			Summary:          data.BriefSummary,
			KeyContributions: data.KeyContributions,
			ActionItems:      data.ActionItems,
			QuestionsRaised:  data.QuestionsRaised,
			Confidence:       n.SpeakerConfidence(result, name),
		}
		if contribution.KeyContributions == nil {
			contribution.KeyContributions = []string{}
		}
		if contribution.ActionItems == nil {
			contribution.ActionItems = []string{}
		}
		if contribution.QuestionsRaised == nil {
			contribution.QuestionsRaised = []string{}
		}
		contributions = append(contributions, contribution)
	}
	return contributions
}

// SpeakerConfidence averages the confidence of the speaker's segments,
// counting only segments that carry a numeric confidence. Returns nil when
// no segment qualifies; renderers treat that as "no badge", not zero.
func (n *Normalizer) SpeakerConfidence(result *entities.RawResult, speakerName string) *float64 {
	var sum float64
	var count int
	for _, seg := range result.Transcript.Segments {
		if seg.Speaker.Label() != speakerName {
			continue
		}
		if seg.Confidence == nil {
			continue
		}
		sum += *seg.Confidence
		count++
	}
	if count == 0 {
		return nil
	}
	mean := sum / float64(count)
	return &mean
}

// metadata assembles the normalized metadata block.
func (n *Normalizer) metadata(result *entities.RawResult, languages []entities.Language, fallbackLanguage string) entities.SummaryMetadata {
	md := entities.SummaryMetadata{}

	code := ""
	if result.Metadata != nil {
		code = result.Metadata.Language
	}
	if code == "" {
		code = result.Language
	}
	if code == "" {
		code = fallbackLanguage
	}
	if code == "" || code == entities.LanguageAuto {
		md.Language = "auto-detected"
	} else {
		md.Language = code
	}

	if result.Metadata != nil {
		md.LanguageName = result.Metadata.LanguageName
		md.TotalDurationMinutes = result.Metadata.TotalDurationMinutes
		md.ParticipantCount = result.Metadata.ParticipantCount
		md.ChunksAnalyzed = result.Metadata.ChunksAnalyzed
	}
	if md.LanguageName == "" {
		md.LanguageName = LanguageDisplayName(code, languages)
	}

	return md
}

// LanguageDisplayName resolves a language code to its display name: first
// from the supported-languages list, then from the Unicode CLDR data.
func LanguageDisplayName(code string, languages []entities.Language) string {
	if code == "" || code == entities.LanguageAuto {
		return ""
	}
	for _, lang := range languages {
		if lang.Code == code {
			return lang.Name
		}
	}
	tag, err := language.Parse(code)
	if err != nil {
		return ""
	}
	if name := display.English.Languages().Name(tag); name != "und" {
		return name
	}
	return ""
}

// CompletionMessage builds the detailed status message shown when an audio
// job finishes. The low-confidence warning here uses its own threshold,
// distinct from the transcript view's banner.
func (n *Normalizer) CompletionMessage(result *entities.RawResult, languages []entities.Language) string {
	msg := "Audio processed successfully!"
	if result == nil {
		return msg
	}

	if result.Language != "" {
		name := result.LanguageName
		if name == "" {
			name = LanguageDisplayName(result.Language, languages)
		}
		if name == "" {
			name = result.Language
		}
		msg += fmt.Sprintf(" Language: %s (%s)", name, result.Language)
	}

	if m := result.ConfidenceMetrics; m != nil && m.Average != 0 {
		msg += fmt.Sprintf("\nAverage transcription confidence: %.0f%%", m.Average)
		if m.LowConfidencePercentage > entities.LowConfidenceStatusThreshold {
			msg += fmt.Sprintf("\n⚠️ %.0f%% of segments have low confidence", m.LowConfidencePercentage)
		}
	}
	return msg
}
