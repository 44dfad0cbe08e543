package cmd

import (
	"commerceq/internal/worker"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func workerCmd() *cobra.Command {
	var (
		queues       []string
		consumerName string
		concurrency  int
		baseBackoff  time.Duration
		maxBackoff   time.Duration
	)

	var command = &cobra.Command{
		Use:   "worker",
		Short: "Start a task worker bound to one or more queues",
		RunE: func(cmd *cobra.Command, args []string) error {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			return worker.Run(worker.Config{
				Queues:       queues,
				ConsumerName: consumerName,
				Concurrency:  concurrency,
				BaseBackoff:  baseBackoff,
				MaxBackoff:   maxBackoff,
			})
		},
	}

	command.Flags().StringSliceVar(&queues, "queues", nil, "Queues to consume (default: all)")
	command.Flags().StringVar(&consumerName, "consumer", "worker-1", "Worker consumer name")
	command.Flags().IntVar(&concurrency, "concurrency", 1, "Consumers per queue")
	command.Flags().DurationVar(&baseBackoff, "base-backoff", 500*time.Millisecond, "Base backoff duration")
	command.Flags().DurationVar(&maxBackoff, "max-backoff", 30*time.Second, "Max backoff duration")

	return command
}
