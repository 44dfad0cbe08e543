package cmd

import (
	"commerceq/internal/agent"
	"commerceq/internal/api"
	"commerceq/internal/config"
	"commerceq/internal/infra/redisq"
	"commerceq/internal/routing"
	"commerceq/internal/tasks"
	"commerceq/internal/usecase"
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func apiCmd() *cobra.Command {
	var port int
	var command = &cobra.Command{
		Use:   "api",
		Short: "Start the task trigger API server",
		Run: func(cmd *cobra.Command, args []string) {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			cfg := config.Load()
			ctx := context.Background()

			cli := redisq.New(cfg.Redis)
			if err := cli.Init(ctx, routing.Queues()); err != nil {
				log.Fatal().Err(err).Msg("redis init failed")
			}

			enq := &usecase.Enqueuer{Q: cli, Registered: tasks.Registered}
			server := api.NewServer(enq, cli, agent.New(cfg.Agent))
			server.Run(port)
		},
	}

	command.Flags().IntVarP(&port, "port", "p", 8080, "Port to run the server on")
	return command
}
