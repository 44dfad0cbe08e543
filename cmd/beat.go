package cmd

import (
	"commerceq/internal/beat"
	"commerceq/internal/config"
	"commerceq/internal/infra/redisq"
	"commerceq/internal/routing"
	"commerceq/internal/tasks"
	"commerceq/internal/usecase"
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func beatCmd() *cobra.Command {
	var command = &cobra.Command{
		Use:   "beat",
		Short: "Start the periodic task scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			cfg := config.Load()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cli := redisq.New(cfg.Redis)
			if err := cli.Init(ctx, routing.Queues()); err != nil {
				return err
			}

			enq := &usecase.Enqueuer{Q: cli, Registered: tasks.Registered}
			b := &beat.Beat{
				Entries: beat.DefaultEntries(cfg.Beat),
				Enqueue: enq.Enqueue,
			}
			if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	return command
}
