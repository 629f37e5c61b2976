// Package tasksync closes completed tasks on the remote task service.
package tasksync

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DefaultSpacing is the minimum delay between two close requests.
const DefaultSpacing = 200 * time.Millisecond

// Closer closes a single task by ID.
type Closer interface {
	CloseTask(ctx context.Context, taskID string) error
}

// Failure records a task that could not be closed.
type Failure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Result partitions the requested task IDs.
type Result struct {
	Closed []string  `json:"closed"`
	Failed []Failure `json:"failed"`
}

// Syncer closes tasks one at a time with a fixed spacing between requests.
type Syncer struct {
	closer  Closer
	limiter *rate.Limiter
	log     zerolog.Logger
}

// New creates a Syncer. A spacing <= 0 disables the delay.
func New(closer Closer, spacing time.Duration, log zerolog.Logger) *Syncer {
	limit := rate.Inf
	if spacing > 0 {
		limit = rate.Every(spacing)
	}
	return &Syncer{
		closer:  closer,
		limiter: rate.NewLimiter(limit, 1),
		log:     log,
	}
}

// CloseTasks closes every ID in order. Individual failures do not stop the
// run. If ctx is cancelled, the IDs not yet attempted are reported as failed.
func (s *Syncer) CloseTasks(ctx context.Context, ids []string) Result {
	result := Result{
		Closed: []string{},
		Failed: []Failure{},
	}

	for i, id := range ids {
		if err := s.limiter.Wait(ctx); err != nil {
			for _, rest := range ids[i:] {
				result.Failed = append(result.Failed, Failure{ID: rest, Reason: ctxReason(ctx, err)})
			}
			break
		}

		if err := s.closer.CloseTask(ctx, id); err != nil {
			s.log.Warn().Err(err).Str("task", id).Msg("close task failed")
			result.Failed = append(result.Failed, Failure{ID: id, Reason: err.Error()})
			continue
		}
		s.log.Debug().Str("task", id).Msg("task closed")
		result.Closed = append(result.Closed, id)
	}

	s.log.Info().Int("closed", len(result.Closed)).Int("failed", len(result.Failed)).Msg("task sync finished")
	return result
}

func ctxReason(ctx context.Context, err error) string {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr.Error()
	}
	return err.Error()
}
