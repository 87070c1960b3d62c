package summarize

import (
	"context"
	"errors"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-summarizer/errors"
	"github.com/johnquangdev/meeting-summarizer/internal/domain/entities"
	"github.com/johnquangdev/meeting-summarizer/pkg/jobcontext"
)

// errJobPending signals the ticker that the job has not reached a terminal
// status yet. It is never surfaced to callers.
var errJobPending = errors.New("job still processing")

// pollUntilTerminal checks the job status once immediately, then on a fixed
// interval, until the job completes or fails. Cancellation is checked before
// every iteration via the context. There is no retry cap and no growing
// backoff: a transient poll error keeps the loop alive with a generic status
// message. A network error is the only client-side condition that terminates
// the loop.
func (s *Service) pollUntilTerminal(ctx context.Context, jobID string) (*entities.JobStatusResponse, error) {
	var final *entities.JobStatusResponse

	operation := func() error {
		status, err := s.client.CheckJobStatus(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			if apperrors.IsNetwork(err) {
				s.logger.Warn("network error while polling, terminating loop",
					zap.String("job_id", jobID),
					zap.String("correlation_id", jobcontext.CorrelationID(ctx)),
					zap.Error(err))
				return backoff.Permanent(err)
			}
			s.logger.Debug("transient poll error, continuing",
				zap.String("job_id", jobID),
				zap.Error(err))
			s.apply(ctx, func(st *State) { st.pollTransientError() })
			return errJobPending
		}

		if !status.Status.IsTerminal() {
			s.apply(ctx, func(st *State) { st.pollTick(status) })
			return errJobPending
		}

		final = status
		return nil
	}

	ticker := backoff.WithContext(backoff.NewConstantBackOff(s.cfg.Polling.Interval), ctx)
	if err := backoff.Retry(operation, ticker); err != nil {
		return nil, err
	}

	s.logger.Debug("job reached terminal status",
		zap.String("job_id", jobID),
		zap.String("status", string(final.Status)),
		zap.Duration("poll_duration", jobcontext.Elapsed(ctx)))
	return final, nil
}
