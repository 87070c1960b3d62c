// Package presenter renders workflow state, summaries, and transcripts for
// the terminal. Color output switches on automatically when the writer is a
// TTY and can be forced either way.
package presenter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/johnquangdev/meeting-summarizer/internal/domain/entities"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiDim    = "\x1b[2m"
)

// ColorMode controls ANSI color usage.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// Terminal writes human-readable renderings to a single writer.
type Terminal struct {
	w        io.Writer
	colorize bool
}

func NewTerminal(w io.Writer, mode ColorMode) *Terminal {
	colorize := false
	switch mode {
	case ColorAlways:
		colorize = true
	case ColorAuto:
		colorize = writerIsTerminal(w)
	}
	return &Terminal{w: w, colorize: colorize}
}

func writerIsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (t *Terminal) paint(color, s string) string {
	if !t.colorize || color == "" {
		return s
	}
	return color + s + ansiReset
}

func (t *Terminal) printf(format string, args ...interface{}) {
	fmt.Fprintf(t.w, format, args...)
}

func (t *Terminal) println(line string) {
	fmt.Fprintln(t.w, line)
}

func (t *Terminal) sectionHeader(title string) {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	t.println(t.paint(ansiBlue, line))
	t.println(t.paint(ansiBlue, strings.Repeat("-", len(line))))
}

func (t *Terminal) confidenceColor(level entities.ConfidenceLevel) string {
	switch level {
	case entities.ConfidenceHigh:
		return ansiGreen
	case entities.ConfidenceMedium:
		return ansiYellow
	default:
		return ansiRed
	}
}

// confidenceBadge renders "95% (High)" with the bucket's color.
func (t *Terminal) confidenceBadge(score float64) string {
	level := entities.BucketConfidence(score)
	return t.paint(t.confidenceColor(level), fmt.Sprintf("%.0f%% (%s)", score, level))
}

// StatusLine prints a one-line progress update, overwriting nothing; each
// update is its own line so the output stays usable when piped.
func (t *Terminal) StatusLine(phase string, progress int, message string) {
	t.printf("%s [%3d%%] %s\n", t.paint(ansiDim, "["+phase+"]"), progress, message)
}

// Error prints a failure message in the standard shape.
func (t *Terminal) Error(message string) {
	t.println(t.paint(ansiRed, "Error: "+message))
}

// Warning prints a warning banner.
func (t *Terminal) Warning(message string) {
	t.println(t.paint(ansiYellow, "⚠️  "+message))
}

// Transcript renders the transcript preview with the confidence banner when
// more than 10% of segments fall below the low-confidence threshold.
func (t *Terminal) Transcript(transcript string, metrics *entities.ConfidenceMetrics) {
	t.sectionHeader("Transcript")
	if metrics != nil {
		t.printf("Confidence: avg %s, min %.0f%%, max %.0f%%\n",
			t.confidenceBadge(metrics.Average), metrics.Min, metrics.Max)
		if metrics.LowConfidencePercentage > entities.LowConfidenceBannerThreshold {
			t.Warning(fmt.Sprintf("%.0f%% of transcript segments have low confidence. Review before relying on the summary.",
				metrics.LowConfidencePercentage))
		}
	}
	t.println("")
	t.println(transcript)
}

// Summary renders the full structured summary view.
func (t *Terminal) Summary(s *entities.Summary) {
	if s == nil {
		return
	}

	if s.HasMeetingSummary() {
		t.sectionHeader("Meeting Summary")
		t.println(s.MeetingSummary)
		t.println("")
	}

	if len(s.KeyPoints) > 0 {
		t.sectionHeader("Key Points")
		for _, p := range s.KeyPoints {
			t.println("  • " + p)
		}
		t.println("")
	}

	if len(s.Decisions) > 0 {
		t.sectionHeader("Decisions")
		for _, d := range s.Decisions {
			t.println("  • " + d)
		}
		t.println("")
	}

	if len(s.ActionItems) > 0 {
		t.sectionHeader("Action Items")
		t.println(t.actionItemsTable(s.ActionItems))
		t.println("")
	}

	if len(s.SpeakerContributions) > 0 {
		t.sectionHeader("Speaker Contributions")
		for _, sp := range s.SpeakerContributions {
			t.speakerContribution(sp)
		}
	}

	t.metadata(s)
}

func (t *Terminal) actionItemsTable(items []entities.ActionItem) string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.Title,
			item.Assignee,
			item.DueDate,
			t.priorityBadge(item.Priority),
		})
	}
	return renderTable([]string{"Task", "Assignee", "Due", "Priority"}, rows)
}

func (t *Terminal) priorityBadge(priority string) string {
	switch priority {
	case "High":
		return t.paint(ansiRed, priority)
	case "Low":
		return t.paint(ansiGreen, priority)
	default:
		return priority
	}
}

func (t *Terminal) speakerContribution(sp entities.SpeakerContribution) {
	name := sp.Name
	if sp.Confidence != nil {
		name = fmt.Sprintf("%s (transcription confidence %s)", name, t.confidenceBadge(*sp.Confidence))
	}
	t.println("  " + name)
	if sp.Summary != "" {
		t.println("    " + sp.Summary)
	}
	for _, c := range sp.KeyContributions {
		t.println("      • " + c)
	}
	for _, a := range sp.ActionItems {
		t.println("      → " + a)
	}
	for _, q := range sp.QuestionsRaised {
		t.println("      ? " + q)
	}
	t.println("")
}

func (t *Terminal) metadata(s *entities.Summary) {
	m := s.Metadata
	parts := make([]string, 0, 4)
	if m.LanguageName != "" {
		parts = append(parts, fmt.Sprintf("Language: %s (%s)", m.LanguageName, m.Language))
	} else if m.Language != "" {
		parts = append(parts, "Language: "+m.Language)
	}
	if m.TotalDurationMinutes != nil {
		parts = append(parts, fmt.Sprintf("Duration: %.0f min", *m.TotalDurationMinutes))
	}
	if m.ParticipantCount != nil {
		parts = append(parts, fmt.Sprintf("Participants: %d", *m.ParticipantCount))
	}
	if s.ConfidenceMetrics != nil {
		parts = append(parts, "Transcription confidence: "+t.confidenceBadge(s.ConfidenceMetrics.Average))
	}
	if len(parts) == 0 {
		return
	}
	t.println(t.paint(ansiDim, strings.Join(parts, " | ")))
}

// Languages renders the supported-language table.
func (t *Terminal) Languages(languages []entities.Language) {
	rows := make([][]string, 0, len(languages))
	for _, l := range languages {
		rows = append(rows, []string{l.Code, l.Name})
	}
	t.println(renderTable([]string{"Code", "Language"}, rows))
}

// History renders past job submissions, newest first as stored.
func (t *Terminal) History(jobs []*entities.Job) {
	if len(jobs) == 0 {
		t.println("No jobs recorded yet.")
		return
	}
	rows := make([][]string, 0, len(jobs))
	for _, j := range jobs {
		status := string(j.Status)
		switch j.Status {
		case entities.JobStatusCompleted:
			status = t.paint(ansiGreen, status)
		case entities.JobStatusFailed:
			status = t.paint(ansiRed, status)
		}
		rows = append(rows, []string{
			j.ID,
			string(j.Kind),
			j.InputName,
			status,
			fmt.Sprintf("%d%%", j.Progress),
			j.SubmittedAt.Format("2006-01-02 15:04"),
		})
	}
	t.println(renderTable(
		[]string{"Job ID", "Kind", "Input", "Status", "Progress", "Submitted"},
		rows, 5))
}
