package redisq

import (
	"commerceq/internal/domain"
	"commerceq/internal/ports"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var _ ports.Queue = (*Client)(nil)

func (c *Client) Enqueue(ctx context.Context, t domain.Task) (string, error) {
	if t.Queue == "" {
		return "", errors.New("task has no target queue")
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	t.Status = domain.StatusPending
	t.CreatedAt = time.Now()
	b, err := json.Marshal(t)
	if err != nil {
		// non-serializable arguments are rejected here, never delivered
		return "", fmt.Errorf("task arguments not serializable: %w", err)
	}
	if _, err := c.Rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: c.streamKey(t.Queue),
		Values: map[string]interface{}{"task": b},
	}).Result(); err != nil {
		return "", fmt.Errorf("enqueue %s on %s: %w", t.Name, t.Queue, err)
	}
	_ = c.SaveState(ctx, t)
	return t.ID, nil
}

func (c *Client) EnqueueDelayed(ctx context.Context, t domain.Task, runAt time.Time) (string, error) {
	if t.Queue == "" {
		return "", errors.New("task has no target queue")
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.Status = domain.StatusRetry
	t.NextRunAt = runAt
	b, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("task arguments not serializable: %w", err)
	}
	if err := c.SaveState(ctx, t); err != nil {
		return "", err
	}
	// the full task rides in the ZSET member so the mover can XADD it
	// back without a state lookup
	score := float64(runAt.UnixMilli())
	if err := c.Rdb.ZAdd(ctx, c.delayKey(t.Queue), redis.Z{Score: score, Member: b}).Err(); err != nil {
		return "", err
	}
	return t.ID, nil
}

func (c *Client) Claim(ctx context.Context, queue, consumer string, block time.Duration) (*domain.Task, string, error) {
	// Count:1 keeps prefetch at one in-flight task per worker slot
	res, err := c.Rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.Cfg.Group,
		Consumer: consumer,
		Streams:  []string{c.streamKey(queue), ">"},
		Count:    1,
		Block:    block,
	}).Result()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, "", nil
		}
		return nil, "", err
	}

	if len(res) == 0 || len(res[0].Messages) == 0 {
		return nil, "", nil
	}

	msg := res[0].Messages[0]
	raw := msg.Values["task"]
	var t domain.Task
	switch v := raw.(type) {
	case string:
		_ = json.Unmarshal([]byte(v), &t)
	case []byte:
		_ = json.Unmarshal(v, &t)
	default:
		return nil, "", fmt.Errorf("unexpected task type: %T", v)
	}
	return &t, msg.ID, nil
}

func (c *Client) Ack(ctx context.Context, queue, streamID string) error {
	return c.Rdb.XAck(ctx, c.streamKey(queue), c.Cfg.Group, streamID).Err()
}

func (c *Client) ToDLQ(ctx context.Context, queue, streamID string, t domain.Task, reason string) error {
	b, _ := json.Marshal(struct {
		domain.Task
		Reason string `json:"reason"`
	}{t, reason})
	if err := c.Rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: c.dlqKey(queue),
		Values: map[string]interface{}{"task": b},
	}).Err(); err != nil {
		return err
	}

	_ = c.Rdb.XAck(ctx, c.streamKey(queue), c.Cfg.Group, streamID).Err()
	t.Status = domain.StatusFailure
	return c.SaveState(ctx, t)
}

func (c *Client) SaveState(ctx context.Context, t domain.Task) error {
	args, _ := json.Marshal(t.Args)
	m := map[string]any{
		"name":         t.Name,
		"queue":        t.Queue,
		"status":       string(t.Status),
		"attempts":     t.Attempts,
		"max_attempts": t.MaxAttempts,
		"args":         args,
		"created_at":   t.CreatedAt.UnixMilli(),
		"next_run_at":  t.NextRunAt.UnixMilli(),
	}
	return c.Rdb.HSet(ctx, c.stateKey(t.ID), m).Err()
}

func (c *Client) SaveResult(ctx context.Context, id string, result map[string]any) error {
	b, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.Rdb.HSet(ctx, c.stateKey(id), "result", b).Err()
}

func (c *Client) Get(ctx context.Context, id string) (*domain.Task, error) {
	h, err := c.Rdb.HGetAll(ctx, c.stateKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(h) == 0 {
		return nil, nil
	}

	t := &domain.Task{ID: id}
	t.Name = h["name"]
	t.Queue = h["queue"]
	t.Status = domain.TaskStatus(h["status"])
	fmt.Sscanf(h["attempts"], "%d", &t.Attempts)
	fmt.Sscanf(h["max_attempts"], "%d", &t.MaxAttempts)
	if raw := h["args"]; raw != "" {
		_ = json.Unmarshal([]byte(raw), &t.Args)
	}
	if raw := h["result"]; raw != "" {
		_ = json.Unmarshal([]byte(raw), &t.Result)
	}
	var ms int64
	if _, err := fmt.Sscanf(h["created_at"], "%d", &ms); err == nil && ms > 0 {
		t.CreatedAt = time.UnixMilli(ms)
	}
	return t, nil
}
