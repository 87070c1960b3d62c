package presenter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/johnquangdev/meeting-summarizer/internal/domain/entities"
)

func render(fn func(t *Terminal)) string {
	var buf bytes.Buffer
	fn(NewTerminal(&buf, ColorNever))
	return buf.String()
}

func TestTranscriptBannerAboveThreshold(t *testing.T) {
	out := render(func(term *Terminal) {
		term.Transcript("Speaker 1: hello", &entities.ConfidenceMetrics{
			Average:                 80,
			LowConfidencePercentage: 15,
		})
	})
	if !strings.Contains(out, "15% of transcript segments have low confidence") {
		t.Errorf("banner missing above threshold:\n%s", out)
	}
}

func TestTranscriptNoBannerAtThreshold(t *testing.T) {
	out := render(func(term *Terminal) {
		term.Transcript("Speaker 1: hello", &entities.ConfidenceMetrics{
			Average:                 80,
			LowConfidencePercentage: 10,
		})
	})
	if strings.Contains(out, "low confidence") {
		t.Errorf("banner must not show at exactly 10%%:\n%s", out)
	}
	if !strings.Contains(out, "Speaker 1: hello") {
		t.Errorf("transcript body missing:\n%s", out)
	}
}

func TestConfidenceBadgeBuckets(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, ColorNever)

	cases := []struct {
		score float64
		want  string
	}{
		{95, "95% (High)"},
		{90, "90% (High)"},
		{89.4, "89% (Medium)"},
		{70, "70% (Medium)"},
		{69.4, "69% (Low)"},
	}
	for _, tc := range cases {
		if got := term.confidenceBadge(tc.score); got != tc.want {
			t.Errorf("badge(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestConfidenceBadgeColorsByBucket(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, ColorAlways)
	if got := term.confidenceBadge(95); !strings.HasPrefix(got, ansiGreen) {
		t.Errorf("high must be green: %q", got)
	}
	if got := term.confidenceBadge(75); !strings.HasPrefix(got, ansiYellow) {
		t.Errorf("medium must be yellow: %q", got)
	}
	if got := term.confidenceBadge(50); !strings.HasPrefix(got, ansiRed) {
		t.Errorf("low must be red: %q", got)
	}
}

func TestSummaryRendersAllSections(t *testing.T) {
	conf := 88.0
	dur := 42.0
	s := &entities.Summary{
		MeetingSummary: "We agreed to ship.",
		KeyPoints:      []string{"Release is on track"},
		Decisions:      []string{"Ship on Friday"},
		ActionItems: []entities.ActionItem{
			{Title: "Write release notes", Assignee: "Unassigned", DueDate: "Not specified", Priority: "Medium"},
			{Title: "Fix login bug", Assignee: "Alice", DueDate: "2026-09-04", Priority: "High"},
		},
		SpeakerContributions: []entities.SpeakerContribution{
			{Name: "Alice", Summary: "Led the discussion", Confidence: &conf, KeyContributions: []string{"status update"}},
		},
		Metadata: entities.SummaryMetadata{
			Language:             "en",
			LanguageName:         "English",
			TotalDurationMinutes: &dur,
		},
	}

	out := render(func(term *Terminal) { term.Summary(s) })

	for _, want := range []string{
		"We agreed to ship.",
		"Release is on track",
		"Ship on Friday",
		"Write release notes",
		"Unassigned",
		"Not specified",
		"Alice (transcription confidence 88% (Medium))",
		"Language: English (en)",
		"Duration: 42 min",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary output missing %q:\n%s", want, out)
		}
	}
}

func TestSummaryNilIsNoop(t *testing.T) {
	if out := render(func(term *Terminal) { term.Summary(nil) }); out != "" {
		t.Errorf("nil summary must render nothing, got %q", out)
	}
}

func TestSpeakerWithoutConfidenceHasNoBadge(t *testing.T) {
	s := &entities.Summary{
		SpeakerContributions: []entities.SpeakerContribution{{Name: "Bob", Summary: "Listened"}},
	}
	out := render(func(term *Terminal) { term.Summary(s) })
	if strings.Contains(out, "transcription confidence") {
		t.Errorf("no badge expected without a confidence value:\n%s", out)
	}
}

func TestHistoryTable(t *testing.T) {
	jobs := []*entities.Job{
		{
			ID:          "abc-123",
			Kind:        entities.JobKindTranscription,
			InputName:   "standup.mp3",
			Status:      entities.JobStatusCompleted,
			Progress:    100,
			SubmittedAt: time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
		},
	}
	out := render(func(term *Terminal) { term.History(jobs) })
	for _, want := range []string{"abc-123", "transcription", "standup.mp3", "completed", "100%", "2026-08-30 10:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("history output missing %q:\n%s", want, out)
		}
	}
}

func TestHistoryEmpty(t *testing.T) {
	out := render(func(term *Terminal) { term.History(nil) })
	if !strings.Contains(out, "No jobs recorded yet.") {
		t.Errorf("empty history message missing:\n%s", out)
	}
}

func TestLanguagesTable(t *testing.T) {
	out := render(func(term *Terminal) {
		term.Languages([]entities.Language{{Code: "auto", Name: "Auto-detect"}, {Code: "vi", Name: "Vietnamese"}})
	})
	if !strings.Contains(out, "Auto-detect") || !strings.Contains(out, "vi") {
		t.Errorf("language table incomplete:\n%s", out)
	}
}

func TestNonFileWriterNeverColorizes(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, ColorAuto)
	if term.colorize {
		t.Error("a bytes.Buffer is not a terminal")
	}
}
