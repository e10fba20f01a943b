package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"codequest/internal/server"
	"codequest/internal/services"
	"codequest/internal/worker"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Process queued email tasks from Redis",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.RedisAddr == "" {
			return errors.New("REDIS_ADDR must be set to run the worker")
		}

		processor := worker.NewTaskProcessor(server.RedisOpt(cfg), services.NewEmailService(server.SMTPSettings(cfg)))
		if err := processor.Start(); err != nil {
			return err
		}
		log.Info().Str("redis", cfg.RedisAddr).Msg("Email worker started")

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()

		log.Info().Msg("Stopping email worker")
		processor.Shutdown()
		return nil
	},
}
