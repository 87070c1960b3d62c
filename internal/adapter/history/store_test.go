package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/johnquangdev/meeting-summarizer/errors"
	"github.com/johnquangdev/meeting-summarizer/internal/domain/entities"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	job := entities.NewJob("abc-1", entities.JobKindTranscription, "standup.mp3")
	if err := store.RecordSubmission(ctx, job); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := store.Get(ctx, "abc-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Kind != entities.JobKindTranscription || got.InputName != "standup.mp3" {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.Status != entities.JobStatusPending {
		t.Errorf("fresh job must be pending, got %s", got.Status)
	}
	if got.SubmittedAt.IsZero() {
		t.Error("submitted_at not round-tripped")
	}
	if got.CompletedAt != nil {
		t.Error("fresh job must have no completion time")
	}
}

func TestUpdateStatusLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	job := entities.NewJob("abc-2", entities.JobKindSummary, "transcript")
	if err := store.RecordSubmission(ctx, job); err != nil {
		t.Fatalf("record: %v", err)
	}

	if err := store.UpdateStatus(ctx, "abc-2", entities.JobStatusProcessing, 50, "halfway"); err != nil {
		t.Fatalf("update processing: %v", err)
	}
	got, _ := store.Get(ctx, "abc-2")
	if got.Progress != 50 || got.Message != "halfway" || got.CompletedAt != nil {
		t.Errorf("processing state wrong: %+v", got)
	}

	if err := store.UpdateStatus(ctx, "abc-2", entities.JobStatusCompleted, 100, "done"); err != nil {
		t.Fatalf("update completed: %v", err)
	}
	got, _ = store.Get(ctx, "abc-2")
	if got.Status != entities.JobStatusCompleted || got.CompletedAt == nil {
		t.Errorf("terminal status must stamp completed_at: %+v", got)
	}
}

func TestUpdateStatusFailedKeepsError(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.RecordSubmission(ctx, entities.NewJob("abc-3", entities.JobKindTranscription, "a.mp3")); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.UpdateStatus(ctx, "abc-3", entities.JobStatusFailed, 0, "audio too noisy"); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	got, _ := store.Get(ctx, "abc-3")
	if got.LastError != "audio too noisy" {
		t.Errorf("failure message not stored: %+v", got)
	}
}

func TestUpdateUnknownJob(t *testing.T) {
	store := openTestStore(t)
	err := store.UpdateStatus(context.Background(), "nope", entities.JobStatusCompleted, 100, "")
	var app apperrors.AppError
	if !errors.As(err, &app) || app.Code != apperrors.ErrorCode_NOT_FOUND {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestGetUnknownJob(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Get(context.Background(), "nope")
	if apperrors.CodeOf(err) != apperrors.ErrorCode_NOT_FOUND {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		job := entities.NewJob(id, entities.JobKindTranscription, id+".mp3")
		job.SubmittedAt = base.Add(time.Duration(i) * time.Hour)
		if err := store.RecordSubmission(ctx, job); err != nil {
			t.Fatalf("record %s: %v", id, err)
		}
	}

	jobs, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(jobs) != 2 || jobs[0].ID != "new" || jobs[1].ID != "mid" {
		t.Fatalf("unexpected order: %+v", jobs)
	}
}

func TestResubmitReplacesRecord(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.RecordSubmission(ctx, entities.NewJob("abc-4", entities.JobKindTranscription, "first.mp3")); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.RecordSubmission(ctx, entities.NewJob("abc-4", entities.JobKindSummary, "second")); err != nil {
		t.Fatalf("re-record: %v", err)
	}

	got, _ := store.Get(ctx, "abc-4")
	if got.Kind != entities.JobKindSummary || got.InputName != "second" {
		t.Errorf("record not replaced: %+v", got)
	}
	jobs, _ := store.Recent(ctx, 10)
	if len(jobs) != 1 {
		t.Errorf("expected single record, got %d", len(jobs))
	}
}
