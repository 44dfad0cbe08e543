package usecase

import (
	"commerceq/internal/domain"
	"context"
	"fmt"
	"time"
)

// fakeQueue is a minimal in-memory broker recording every call.
type fakeQueue struct {
	enqueued []domain.Task
	delayed  []delayedTask
	acked    []string
	dead     []deadTask
	states   []domain.Task
	results  map[string]map[string]any
}

type delayedTask struct {
	task  domain.Task
	runAt time.Time
}

type deadTask struct {
	task   domain.Task
	reason string
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{results: map[string]map[string]any{}}
}

func (q *fakeQueue) Enqueue(_ context.Context, t domain.Task) (string, error) {
	if t.ID == "" {
		t.ID = fmt.Sprintf("task-%d", len(q.enqueued)+1)
	}
	q.enqueued = append(q.enqueued, t)
	return t.ID, nil
}

func (q *fakeQueue) EnqueueDelayed(_ context.Context, t domain.Task, runAt time.Time) (string, error) {
	q.delayed = append(q.delayed, delayedTask{task: t, runAt: runAt})
	return t.ID, nil
}

func (q *fakeQueue) Claim(context.Context, string, string, time.Duration) (*domain.Task, string, error) {
	return nil, "", nil
}

func (q *fakeQueue) Ack(_ context.Context, _ string, streamID string) error {
	q.acked = append(q.acked, streamID)
	return nil
}

func (q *fakeQueue) ToDLQ(_ context.Context, _ string, _ string, t domain.Task, reason string) error {
	q.dead = append(q.dead, deadTask{task: t, reason: reason})
	return nil
}

func (q *fakeQueue) SaveState(_ context.Context, t domain.Task) error {
	q.states = append(q.states, t)
	return nil
}

func (q *fakeQueue) SaveResult(_ context.Context, id string, result map[string]any) error {
	q.results[id] = result
	return nil
}

func (q *fakeQueue) Get(_ context.Context, id string) (*domain.Task, error) {
	for i := len(q.states) - 1; i >= 0; i-- {
		if q.states[i].ID == id {
			t := q.states[i]
			return &t, nil
		}
	}
	return nil, nil
}

func (q *fakeQueue) lastState() domain.Task {
	return q.states[len(q.states)-1]
}
