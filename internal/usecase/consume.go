package usecase

import (
	"commerceq/internal/domain"
	"commerceq/internal/ports"
	"commerceq/internal/tasks"
	"commerceq/pkg/backoff"
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

type HandlerLookup interface {
	Handler(name string) (tasks.Handler, bool)
}

// Consumer pulls one task at a time from a single queue and executes
// it. Acknowledgement happens only after the handler returns, so a
// worker dying mid-task leaves the delivery pending for reclaim.
type Consumer struct {
	Q            ports.Queue
	Queue        string
	ConsumerName string
	Handlers     HandlerLookup
	BaseBackoff  time.Duration
	MaxBackoff   time.Duration
}

func (c Consumer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		t, id, err := c.Q.Claim(ctx, c.Queue, c.ConsumerName, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Ctx(ctx).Err(err).Str("queue", c.Queue).Msg("claim task")
			continue
		}
		if t == nil {
			continue
		}

		c.process(ctx, *t, id)
	}
}

func (c Consumer) process(ctx context.Context, t domain.Task, streamID string) {
	t.Status = domain.StatusStarted
	_ = c.Q.SaveState(ctx, t)

	h, ok := c.Handlers.Handler(t.Name)
	if !ok {
		log.Ctx(ctx).Error().Str("task", t.Name).Msg("no handler registered")
		_ = c.Q.ToDLQ(ctx, c.Queue, streamID, t, "no handler registered for task")
		return
	}

	result, err := h(ctx, t)
	if err == nil {
		_ = c.Q.Ack(ctx, c.Queue, streamID)
		t.Status = domain.StatusSuccess
		_ = c.Q.SaveState(ctx, t)
		if result != nil {
			_ = c.Q.SaveResult(ctx, t.ID, result)
		}
		log.Ctx(ctx).Info().Str("task", t.Name).Str("id", t.ID).Int("attempts", t.Attempts).Msg("task succeeded")
		return
	}

	t.Attempts++
	if t.Attempts >= t.MaxAttempts {
		log.Ctx(ctx).Error().Err(err).Str("task", t.Name).Str("id", t.ID).Msg("retries exhausted, dead-lettering")
		_ = c.Q.ToDLQ(ctx, c.Queue, streamID, t, err.Error())
		return
	}

	delay := backoff.ExponentialJitter(c.BaseBackoff, c.MaxBackoff, t.Attempts, nil)
	t.NextRunAt = time.Now().Add(delay)
	log.Ctx(ctx).Warn().Err(err).Str("task", t.Name).Str("id", t.ID).
		Int("attempts", t.Attempts).Dur("retry_in", delay).Msg("task failed, scheduling retry")

	// ack the failed delivery, then re-insert as delayed
	_ = c.Q.Ack(ctx, c.Queue, streamID)
	if _, err := c.Q.EnqueueDelayed(ctx, t, t.NextRunAt); err != nil {
		log.Ctx(ctx).Err(err).Str("task", t.Name).Str("id", t.ID).Msg("schedule retry")
	}
}
