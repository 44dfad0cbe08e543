package ports

import (
	"commerceq/internal/domain"
	"context"
	"time"
)

type Queue interface {
	Enqueue(ctx context.Context, t domain.Task) (string, error)
	EnqueueDelayed(ctx context.Context, t domain.Task, runAt time.Time) (string, error)
	Claim(ctx context.Context, queue, consumer string, block time.Duration) (*domain.Task, string /*streamID*/, error)
	Ack(ctx context.Context, queue, streamID string) error
	ToDLQ(ctx context.Context, queue, streamID string, t domain.Task, reason string) error
	SaveState(ctx context.Context, t domain.Task) error
	SaveResult(ctx context.Context, id string, result map[string]any) error
	Get(ctx context.Context, id string) (*domain.Task, error)
}

type Mover interface {
	// moves due delayed tasks back onto their streams and reclaims
	// deliveries abandoned by dead workers
	Run(ctx context.Context) error
}
