package usecase

import (
	"commerceq/internal/domain"
	"commerceq/internal/ports"
	"commerceq/internal/routing"
	"context"
	"errors"
	"fmt"
)

// ErrUnknownTask marks enqueue attempts for names that are not in the
// task catalogue or cannot be routed. Callers surface it as a bad
// request rather than a broker failure.
var ErrUnknownTask = errors.New("unknown task")

const defaultMaxAttempts = 3

// Enqueuer validates a task name, routes it to its domain queue and
// pushes it onto the broker.
type Enqueuer struct {
	Q           ports.Queue
	Registered  func(name string) bool
	MaxAttempts int
}

func (e *Enqueuer) Enqueue(ctx context.Context, name string, args map[string]any) (string, error) {
	if e.Registered != nil && !e.Registered(name) {
		return "", fmt.Errorf("%w: %q", ErrUnknownTask, name)
	}
	queue, err := routing.RouteFor(name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknownTask, err)
	}

	max := e.MaxAttempts
	if max == 0 {
		max = defaultMaxAttempts
	}
	return e.Q.Enqueue(ctx, domain.Task{
		Name:        name,
		Args:        args,
		Queue:       queue,
		MaxAttempts: max,
	})
}
