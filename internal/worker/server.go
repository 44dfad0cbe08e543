package worker

import (
	"commerceq/internal/agent"
	"commerceq/internal/config"
	"commerceq/internal/infra/redisq"
	"commerceq/internal/mailer"
	"commerceq/internal/marketplace"
	"commerceq/internal/routing"
	"commerceq/internal/storage"
	"commerceq/internal/tasks"
	"commerceq/internal/usecase"
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Queues       []string
	ConsumerName string
	Concurrency  int
	BaseBackoff  time.Duration
	MaxBackoff   time.Duration
}

func Run(cfg Config) error {
	appCfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(cfg.Queues) == 0 {
		cfg.Queues = routing.Queues()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}

	cli := redisq.New(appCfg.Redis)
	if err := cli.Init(ctx, cfg.Queues); err != nil {
		return err
	}

	pool, err := pgxpool.New(ctx, appCfg.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	enq := &usecase.Enqueuer{Q: cli, Registered: tasks.Registered}

	registry, err := tasks.NewRegistry(tasks.Deps{
		Repo:    storage.New(pool),
		Agent:   agent.New(appCfg.Agent),
		Markets: marketplace.NewRegistry(),
		Mailer:  mailer.NewSMTP(appCfg.SMTP),
		Enqueue: enq.Enqueue,
	})
	if err != nil {
		return err
	}

	// housekeeping: due retries back onto streams, abandoned deliveries
	// reclaimed
	mover := redisq.NewMover(cli, cfg.Queues, time.Second, appCfg.Redis.VisibilityTimeout)
	go func() {
		if err := mover.Run(ctx); err != nil && ctx.Err() == nil {
			log.Ctx(ctx).Error().Err(err).Msg("mover stopped with error")
		}
	}()

	var wg sync.WaitGroup
	for _, q := range cfg.Queues {
		for i := 0; i < cfg.Concurrency; i++ {
			consumer := usecase.Consumer{
				Q:            cli,
				Queue:        q,
				ConsumerName: fmt.Sprintf("%s-%s-%d", cfg.ConsumerName, q, i),
				Handlers:     registry,
				BaseBackoff:  cfg.BaseBackoff,
				MaxBackoff:   cfg.MaxBackoff,
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
					log.Ctx(ctx).Error().Err(err).Str("queue", consumer.Queue).Msg("consumer stopped with error")
				}
			}()
		}
	}

	log.Ctx(ctx).Info().Strs("queues", cfg.Queues).Int("concurrency", cfg.Concurrency).Msg("worker running")
	wg.Wait()
	log.Ctx(ctx).Info().Msg("worker stopped")
	return nil
}
