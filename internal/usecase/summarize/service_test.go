package summarize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/johnquangdev/meeting-summarizer/errors"
	"github.com/johnquangdev/meeting-summarizer/internal/adapter/api"
	"github.com/johnquangdev/meeting-summarizer/internal/domain/entities"
	"github.com/johnquangdev/meeting-summarizer/pkg/config"
	"github.com/johnquangdev/meeting-summarizer/pkg/jobcontext"
)

func newTestService(t *testing.T, handler http.Handler, pollInterval time.Duration) (*Service, *httptest.Server, *stateRecorder) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	cfg := &config.Config{}
	cfg.API.BaseURL = ts.URL
	cfg.API.RequestTimeout = 5 * time.Second
	cfg.API.AudioUploadTimeout = 5 * time.Second
	cfg.Polling.Interval = pollInterval

	rec := &stateRecorder{}
	client := api.NewClient(cfg, nil)
	svc := NewService(client, cfg, nil, nil, rec.record)
	return svc, ts, rec
}

// stateRecorder collects every state snapshot the orchestrator publishes.
type stateRecorder struct {
	mu        sync.Mutex
	snapshots []State
}

func (r *stateRecorder) record(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, s)
}

func (r *stateRecorder) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.snapshots))
	for _, s := range r.snapshots {
		out = append(out, s.StatusMessage)
	}
	return out
}

func tempAudioFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meeting.mp3")
	if err := os.WriteFile(path, []byte("fake-audio"), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// Auto language is omitted from the upload, and the first status
// check fires immediately. The poll interval is set absurdly high so the
// test would hang if the loop waited a full tick before the first check.
func TestProcessAudioAutoLanguageImmediatePoll(t *testing.T) {
	var statusCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/upload-audio", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		if _, ok := r.MultipartForm.Value["language"]; ok {
			t.Error("outgoing request must have no language field for auto")
		}
		writeJSON(w, map[string]string{"job_id": "abc"})
	})
	mux.HandleFunc("/api/job/abc", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&statusCalls, 1)
		writeJSON(w, map[string]interface{}{
			"status": "completed",
			"result": map[string]interface{}{
				"transcript": []map[string]interface{}{
					{"speaker": 1, "text": "hi", "confidence": 95},
				},
			},
		})
	})
	mux.HandleFunc("/api/languages", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []entities.Language{{Code: "auto", Name: "Auto-detect"}})
	})

	svc, _, _ := newTestService(t, mux, time.Hour)
	audioPath := tempAudioFile(t)

	done := make(chan struct{})
	var state State
	var err error
	go func() {
		state, err = svc.ProcessAudio(context.Background(), audioPath, "auto", false)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("first status check must fire without waiting a full interval")
	}
	if err != nil {
		t.Fatalf("ProcessAudio failed: %v", err)
	}
	if atomic.LoadInt32(&statusCalls) != 1 {
		t.Fatalf("expected exactly one status call, got %d", statusCalls)
	}
	if state.JobID != "abc" {
		t.Fatalf("unexpected job id %q", state.JobID)
	}
}

// A completed job without meeting_summary stays preview-only.
func TestCompletedTranscriptOnlyStaysPreview(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/upload-audio", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"job_id": "abc"})
	})
	mux.HandleFunc("/api/job/abc", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"status": "completed",
			"result": map[string]interface{}{
				"transcript": []map[string]interface{}{
					{"speaker": 1, "text": "hi", "confidence": 95},
				},
			},
		})
	})
	mux.HandleFunc("/api/languages", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []entities.Language{{Code: "auto", Name: "Auto-detect"}})
	})

	svc, _, _ := newTestService(t, mux, 10*time.Millisecond)
	state, err := svc.ProcessAudio(context.Background(), tempAudioFile(t), "auto", false)
	if err != nil {
		t.Fatalf("ProcessAudio failed: %v", err)
	}

	if state.Transcript != "Speaker 1: hi" {
		t.Errorf("transcript preview wrong: %q", state.Transcript)
	}
	if state.ShowSummary {
		t.Error("summary must not auto-display without meeting_summary")
	}
	if state.Summary.HasMeetingSummary() {
		t.Error("no meeting summary expected")
	}
	if state.Phase != PhaseCompleted {
		t.Errorf("expected completed phase, got %s", state.Phase)
	}
	if state.Participants != "Speaker 1" {
		t.Errorf("participants not derived: %q", state.Participants)
	}
}

// Empty participant extraction fails the flow before any
// summarize request is made.
func TestGenerateSummaryFailsWhenNoParticipantsIdentified(t *testing.T) {
	var summarizeCalled int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/extract-participants", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []string{})
	})
	mux.HandleFunc("/api/summarize", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&summarizeCalled, 1)
		writeJSON(w, map[string]string{"job_id": "never"})
	})

	svc, _, _ := newTestService(t, mux, 10*time.Millisecond)
	svc.SetTranscript("Alice: we should ship on Friday")

	_, err := svc.GenerateSummary(context.Background())
	if err == nil || !strings.Contains(err.Error(), "Could not identify participants") {
		t.Fatalf("expected participant error, got %v", err)
	}
	if atomic.LoadInt32(&summarizeCalled) != 0 {
		t.Fatal("generateSummary must never be called when extraction is empty")
	}
}

func TestGenerateSummaryExtractsThenSummarizes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/extract-participants", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []string{"Alice", "Bob"})
	})
	mux.HandleFunc("/api/summarize", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		json.NewDecoder(r.Body).Decode(&payload)
		participants, _ := payload["participants"].([]interface{})
		if len(participants) != 2 {
			t.Errorf("expected extracted participants forwarded, got %v", participants)
		}
		writeJSON(w, map[string]string{"job_id": "sum-1"})
	})
	mux.HandleFunc("/api/job/sum-1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"status": "completed",
			"result": map[string]interface{}{
				"meeting_summary": map[string]interface{}{
					"summary":    "Ship on Friday.",
					"key_points": []string{"deadline"},
					"decisions":  []string{"ship Friday"},
				},
				"action_items": []map[string]interface{}{
					{"action": "Prepare release notes"},
				},
			},
		})
	})
	mux.HandleFunc("/api/languages", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []entities.Language{{Code: "auto", Name: "Auto-detect"}})
	})

	svc, _, _ := newTestService(t, mux, 10*time.Millisecond)
	svc.SetTranscript("Alice: we should ship on Friday\nBob: agreed")

	state, err := svc.GenerateSummary(context.Background())
	if err != nil {
		t.Fatalf("GenerateSummary failed: %v", err)
	}
	if !state.ShowSummary || !state.Summary.HasMeetingSummary() {
		t.Fatal("summary must display after completion")
	}
	if state.Participants != "Alice, Bob" {
		t.Errorf("extracted participants not stored: %q", state.Participants)
	}
	item := state.Summary.ActionItems[0]
	if item.Assignee != "Unassigned" || item.DueDate != "Not specified" || item.Priority != "Medium" {
		t.Errorf("action item defaults missing: %+v", item)
	}
}

func TestGenerateSummaryImmediateResult(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/summarize", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"meeting_summary": map[string]interface{}{"summary": "Done inline."},
		})
	})
	mux.HandleFunc("/api/languages", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []entities.Language{})
	})

	svc, _, _ := newTestService(t, mux, 10*time.Millisecond)
	svc.SetTranscript("Alice: hello")
	svc.SetParticipants("Alice")

	state, err := svc.GenerateSummary(context.Background())
	if err != nil {
		t.Fatalf("GenerateSummary failed: %v", err)
	}
	if !state.ShowSummary || state.Summary.MeetingSummary != "Done inline." {
		t.Fatalf("immediate result not applied: %+v", state.Summary)
	}
}

func TestGenerateSummaryMissingTranscript(t *testing.T) {
	svc, _, _ := newTestService(t, http.NewServeMux(), 10*time.Millisecond)
	_, err := svc.GenerateSummary(context.Background())
	if apperrors.CodeOf(err) != apperrors.ErrorCode_INVALID_ARGUMENT {
		t.Fatalf("expected validation error, got %v", err)
	}
}

// Transient (non-network) poll errors keep the loop alive with a generic
// status message; the job still completes on a later tick.
func TestPollingSurvivesTransientError(t *testing.T) {
	var calls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/job/abc", func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			w.WriteHeader(http.StatusInternalServerError)
		case 2:
			writeJSON(w, map[string]interface{}{"status": "processing", "progress": 50, "message": "halfway"})
		default:
			writeJSON(w, map[string]interface{}{"status": "completed"})
		}
	})
	mux.HandleFunc("/api/languages", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []entities.Language{})
	})

	svc, _, rec := newTestService(t, mux, 10*time.Millisecond)
	state, err := svc.WatchJob(context.Background(), "abc")
	if err != nil {
		t.Fatalf("WatchJob failed: %v", err)
	}
	if state.Phase != PhaseCompleted {
		t.Fatalf("expected completed, got %s", state.Phase)
	}

	var sawGeneric, sawProgress bool
	for _, msg := range rec.messages() {
		if msg == "Checking status... Please wait." {
			sawGeneric = true
		}
		if msg == "halfway" {
			sawProgress = true
		}
	}
	if !sawGeneric {
		t.Error("transient error must set the generic checking message")
	}
	if !sawProgress {
		t.Error("subsequent tick must apply the backend message")
	}
}

// A network error is the only client-side condition that terminates polling.
func TestPollingTerminatesOnNetworkError(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/job/abc", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			writeJSON(w, map[string]interface{}{"status": "pending"})
			return
		}
		// Drop the connection to simulate the backend going away.
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Error("hijacking unsupported")
			return
		}
		conn, _, _ := hj.Hijack()
		conn.Close()
	})

	svc, _, _ := newTestService(t, mux, 10*time.Millisecond)
	state, err := svc.WatchJob(context.Background(), "abc")
	if !apperrors.IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
	if state.Phase != PhaseFailed {
		t.Fatalf("expected failed phase, got %s", state.Phase)
	}
}

func TestFailedJobSurfacesBackendMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/job/abc", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"status": "failed", "message": "audio too noisy"})
	})

	svc, _, _ := newTestService(t, mux, 10*time.Millisecond)
	state, err := svc.WatchJob(context.Background(), "abc")
	if err == nil || !strings.Contains(err.Error(), "audio too noisy") {
		t.Fatalf("backend message not surfaced: %v", err)
	}
	if state.Phase != PhaseFailed {
		t.Fatalf("expected failed phase, got %s", state.Phase)
	}
}

// Detected language overrides any prior user choice for audio flows.
func TestCompletedResultAdoptsDetectedLanguage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/job/abc", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"status": "completed",
			"result": map[string]interface{}{
				"transcript": "xin chào",
				"language":   "vi",
			},
		})
	})
	mux.HandleFunc("/api/languages", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []entities.Language{{Code: "vi", Name: "Vietnamese"}})
	})

	svc, _, _ := newTestService(t, mux, 10*time.Millisecond)
	state, err := svc.WatchJob(context.Background(), "abc")
	if err != nil {
		t.Fatalf("WatchJob failed: %v", err)
	}
	if state.Language != "vi" {
		t.Fatalf("detected language not adopted: %q", state.Language)
	}
}

// Resetting while a job is polling cancels the loop, and a late
// response for the old job must not repopulate state.
func TestResetCancelsPollingAndDiscardsLateResponse(t *testing.T) {
	firstPoll := make(chan struct{})
	release := make(chan struct{})

	mux := http.NewServeMux()
	var once sync.Once
	mux.HandleFunc("/api/job/old-1", func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(firstPoll) })
		<-release
		writeJSON(w, map[string]interface{}{
			"status": "completed",
			"result": map[string]interface{}{"transcript": "late words"},
		})
	})
	mux.HandleFunc("/api/languages", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []entities.Language{})
	})

	svc, _, _ := newTestService(t, mux, 10*time.Millisecond)

	done := make(chan error, 1)
	go func() {
		_, err := svc.WatchJob(context.Background(), "old-1")
		done <- err
	}()

	<-firstPoll
	svc.Reset()
	close(release)

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("cancelled watch must return an error")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not terminate after reset")
	}

	state := svc.State()
	if state.Transcript != "" {
		t.Errorf("late response repopulated transcript: %q", state.Transcript)
	}
	if state.Summary != nil {
		t.Error("late response repopulated summary")
	}
	if state.Phase != PhaseIdle {
		t.Errorf("expected idle after reset, got %s", state.Phase)
	}
}

// The stale guard itself: an update dispatched for a superseded job id is
// discarded even if it arrives after a new job has started.
func TestApplyDiscardsStaleJobUpdate(t *testing.T) {
	svc, _, _ := newTestService(t, http.NewServeMux(), 10*time.Millisecond)
	svc.applyLocal(func(st *State) { st.jobIssued("new-2") })

	staleCtx := jobcontext.WithJob(context.Background(), "old-1")
	svc.apply(staleCtx, func(st *State) { st.Transcript = "stale words" })

	if got := svc.State().Transcript; got != "" {
		t.Fatalf("stale update applied: %q", got)
	}

	currentCtx := jobcontext.WithJob(context.Background(), "new-2")
	svc.apply(currentCtx, func(st *State) { st.Transcript = "fresh words" })
	if got := svc.State().Transcript; got != "fresh words" {
		t.Fatalf("current update dropped: %q", got)
	}
}

// Starting a new watch cancels the in-flight one, and the superseded
// watch's unwind must not cancel the new loop. The new job only reports
// completed after the old watch has fully returned, so the test fails if
// the old unwind tears down the new polling context.
func TestNewWatchSupersedesInFlightWatch(t *testing.T) {
	oldPolling := make(chan struct{})
	oldDone := make(chan struct{})
	var once sync.Once

	mux := http.NewServeMux()
	mux.HandleFunc("/api/job/old-job", func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(oldPolling) })
		<-r.Context().Done()
	})
	mux.HandleFunc("/api/job/new-job", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-oldDone:
			writeJSON(w, map[string]interface{}{"status": "completed"})
		default:
			writeJSON(w, map[string]interface{}{"status": "pending"})
		}
	})

	svc, _, _ := newTestService(t, mux, 10*time.Millisecond)

	go func() {
		_, _ = svc.WatchJob(context.Background(), "old-job")
		close(oldDone)
	}()
	<-oldPolling

	done := make(chan struct{})
	var state State
	var err error
	go func() {
		state, err = svc.WatchJob(context.Background(), "new-job")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("superseding watch never completed; its polling loop was cancelled")
	}
	if err != nil {
		t.Fatalf("superseding watch failed: %v", err)
	}
	if state.Phase != PhaseCompleted || state.JobID != "new-job" {
		t.Fatalf("unexpected final state: phase=%s job=%s", state.Phase, state.JobID)
	}
}

func TestTranscriptClampedToLimit(t *testing.T) {
	svc, _, _ := newTestService(t, http.NewServeMux(), 10*time.Millisecond)
	svc.SetTranscript(strings.Repeat("a", TranscriptLimit+500))
	if got := len(svc.State().Transcript); got != TranscriptLimit {
		t.Fatalf("expected clamp to %d, got %d", TranscriptLimit, got)
	}
}
