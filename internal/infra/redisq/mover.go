package redisq

import (
	"commerceq/internal/ports"
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var _ ports.Mover = (*Mover)(nil)

// Mover is the housekeeping loop behind at-least-once delivery: it
// pushes due delayed tasks back onto their streams and re-delivers
// messages whose consumer died without acknowledging.
type Mover struct {
	C        *Client
	Queues   []string
	Interval time.Duration
	// deliveries idle longer than this are treated as abandoned
	VisibilityTimeout time.Duration
}

func NewMover(c *Client, queues []string, interval, visibility time.Duration) *Mover {
	return &Mover{C: c, Queues: queues, Interval: interval, VisibilityTimeout: visibility}
}

func (m *Mover) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.Interval)
	defer ticker.Stop()
	for {
		for _, q := range m.Queues {
			if err := m.moveDue(ctx, q); err != nil {
				log.Ctx(ctx).Err(err).Str("queue", q).Msg("move due tasks")
			}
			if err := m.reclaimStale(ctx, q); err != nil {
				log.Ctx(ctx).Err(err).Str("queue", q).Msg("reclaim stale deliveries")
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (m *Mover) moveDue(ctx context.Context, queue string) error {
	members, err := m.C.Rdb.ZRangeByScore(ctx, m.C.delayKey(queue), &redis.ZRangeBy{
		Min:    "-inf",
		Max:    fmtFloat(nowMs()),
		Offset: 0,
		Count:  128,
	}).Result()
	if err != nil || len(members) == 0 {
		return err
	}

	for _, raw := range members {
		if err := m.C.Rdb.XAdd(ctx, &redis.XAddArgs{
			Stream: m.C.streamKey(queue),
			Values: map[string]interface{}{"task": raw},
		}).Err(); err != nil {
			return err
		}
		_ = m.C.Rdb.ZRem(ctx, m.C.delayKey(queue), raw).Err()
	}
	return nil
}

// reclaimStale redelivers unacknowledged messages whose worker is gone.
// The claimed copy is re-added as a fresh message and the original is
// acked away, so a live consumer picks it up through the normal path.
func (m *Mover) reclaimStale(ctx context.Context, queue string) error {
	msgs, _, err := m.C.Rdb.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   m.C.streamKey(queue),
		Group:    m.C.Cfg.Group,
		Consumer: "mover",
		MinIdle:  m.VisibilityTimeout,
		Start:    "0",
		Count:    64,
	}).Result()
	if err != nil || len(msgs) == 0 {
		return err
	}

	for _, msg := range msgs {
		raw, ok := msg.Values["task"]
		if !ok {
			_ = m.C.Rdb.XAck(ctx, m.C.streamKey(queue), m.C.Cfg.Group, msg.ID).Err()
			continue
		}
		if err := m.C.Rdb.XAdd(ctx, &redis.XAddArgs{
			Stream: m.C.streamKey(queue),
			Values: map[string]interface{}{"task": raw},
		}).Err(); err != nil {
			return err
		}
		_ = m.C.Rdb.XAck(ctx, m.C.streamKey(queue), m.C.Cfg.Group, msg.ID).Err()
		log.Ctx(ctx).Warn().Str("queue", queue).Str("stream_id", msg.ID).Msg("redelivered abandoned task")
	}
	return nil
}

func fmtFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
