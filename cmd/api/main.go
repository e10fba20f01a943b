package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"codequest/internal/config"
	"codequest/internal/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "codequest",
	Short:         "CodeQuest backend: accounts, password recovery and the AI mentor API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		logger.Setup(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, workerCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("codequest exited with error")
		os.Exit(1)
	}
}
