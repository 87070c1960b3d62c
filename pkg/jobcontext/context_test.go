package jobcontext

import (
	"context"
	"testing"
	"time"
)

func TestWithJobCarriesMetadata(t *testing.T) {
	ctx := WithJob(context.Background(), "abc-1")

	if got := JobID(ctx); got != "abc-1" {
		t.Errorf("JobID = %q, want abc-1", got)
	}
	if CorrelationID(ctx) == "" {
		t.Error("correlation id must be set")
	}
	if Elapsed(ctx) < 0 || Elapsed(ctx) > time.Minute {
		t.Errorf("implausible elapsed %v", Elapsed(ctx))
	}
}

func TestCorrelationIDFreshPerDispatch(t *testing.T) {
	a := WithJob(context.Background(), "abc-1")
	b := WithJob(context.Background(), "abc-1")
	if CorrelationID(a) == CorrelationID(b) {
		t.Error("each dispatch must get its own correlation id")
	}
}

func TestUntaggedContext(t *testing.T) {
	ctx := context.Background()
	if JobID(ctx) != "" || CorrelationID(ctx) != "" {
		t.Error("untagged context must yield empty metadata")
	}
	if Elapsed(ctx) != 0 {
		t.Errorf("untagged context must have zero elapsed, got %v", Elapsed(ctx))
	}
}
