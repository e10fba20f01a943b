package main

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"codequest/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func serve() error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	s, err := server.NewServer(cfg)
	if err != nil {
		return err
	}

	done := make(chan bool, 1)

	go s.GracefulShutdown(done)

	err = s.Start()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-done
	log.Info().Msg("Graceful shutdown complete.")
	return nil
}
