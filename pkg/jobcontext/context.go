package jobcontext

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type KeyContext string

var (
	keyJobID         KeyContext = "job_id"
	keyCorrelationID KeyContext = "correlation_id"
	keyStartTime     KeyContext = "start_time"
)

// WithJob tags ctx with the job id active at dispatch time plus a fresh
// correlation id. Results carried back on this context are compared against
// the orchestrator's current job id before they may mutate state.
func WithJob(parent context.Context, jobID string) context.Context {
	ctx := context.WithValue(parent, keyJobID, jobID)
	ctx = context.WithValue(ctx, keyCorrelationID, uuid.New().String())
	return context.WithValue(ctx, keyStartTime, time.Now())
}

// JobID returns the job id the context was dispatched for, or "".
func JobID(ctx context.Context) string {
	if v, ok := ctx.Value(keyJobID).(string); ok {
		return v
	}
	return ""
}

// CorrelationID returns the per-dispatch correlation id, or "".
func CorrelationID(ctx context.Context) string {
	if v, ok := ctx.Value(keyCorrelationID).(string); ok {
		return v
	}
	return ""
}

// Elapsed returns time since the context was tagged.
func Elapsed(ctx context.Context) time.Duration {
	if v, ok := ctx.Value(keyStartTime).(time.Time); ok {
		return time.Since(v)
	}
	return 0
}
