// Package beat fires the periodic batch tasks on fixed wall-clock
// intervals. Ticks missed while the process is down are lost (no
// backfill), and nothing prevents two runs of the same task from
// overlapping once the next interval elapses.
package beat

import (
	"commerceq/internal/config"
	"commerceq/internal/tasks"
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type Entry struct {
	TaskName string
	Interval time.Duration
}

type EnqueueFunc func(ctx context.Context, name string, args map[string]any) (string, error)

// Beat runs one ticker per entry and enqueues exactly one task instance
// per elapsed interval. Ticker is swappable for a synthetic clock in
// tests; leave nil for the real one.
type Beat struct {
	Entries []Entry
	Enqueue EnqueueFunc
	Ticker  func(d time.Duration) (<-chan time.Time, func())
}

// DefaultEntries is the periodic trigger table.
func DefaultEntries(cfg config.Beat) []Entry {
	return []Entry{
		{TaskName: tasks.TaskSyncInventory, Interval: cfg.InventorySyncInterval},
		{TaskName: tasks.TaskUpdateDynamicPricing, Interval: cfg.DynamicPricingInterval},
		{TaskName: tasks.TaskSendWeeklyNewsletter, Interval: cfg.NewsletterInterval},
	}
}

func (b *Beat) Run(ctx context.Context) error {
	newTicker := b.Ticker
	if newTicker == nil {
		newTicker = func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		}
	}

	var wg sync.WaitGroup
	for _, e := range b.Entries {
		wg.Add(1)
		go func(e Entry) {
			defer wg.Done()
			b.runEntry(ctx, e, newTicker)
		}(e)
	}
	wg.Wait()
	return ctx.Err()
}

func (b *Beat) runEntry(ctx context.Context, e Entry, newTicker func(time.Duration) (<-chan time.Time, func())) {
	ch, stop := newTicker(e.Interval)
	defer stop()

	log.Ctx(ctx).Info().Str("task", e.TaskName).Dur("interval", e.Interval).Msg("periodic entry armed")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ch:
			id, err := b.Enqueue(ctx, e.TaskName, nil)
			if err != nil {
				// a lost trigger; the next interval fires regardless
				log.Ctx(ctx).Err(err).Str("task", e.TaskName).Msg("periodic enqueue failed")
				continue
			}
			log.Ctx(ctx).Info().Str("task", e.TaskName).Str("id", id).Msg("periodic task enqueued")
		}
	}
}
