// Package serve runs the self-hosted lite signer.
package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-remotesigner/internal/config"
	"github/chapool/go-remotesigner/internal/litesigner"
)

const configFlag = "config"

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Runs the self-hosted lite signer",
		Long: `Runs the lite signer, a local implementation of the custodian API
backed by an encrypted on-disk keystore.`,
		Run: func(cmd *cobra.Command, _ []string) {
			configFile, err := cmd.Flags().GetString(configFlag)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to parse flags")
			}

			runServer(configFile)
		},
	}

	cmd.Flags().StringP(configFlag, "c", "", "Config file overriding the environment")

	return cmd
}

func runServer(configFile string) {
	cfg := config.DefaultServiceConfigFromEnv()
	if configFile != "" {
		if err := config.ApplyFile(&cfg, configFile); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply config file")
		}
	}

	server, err := litesigner.NewServer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create lite signer")
	}

	ctx := log.Logger.WithContext(context.Background())
	if err := server.Initialize(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize lite signer")
	}

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start lite signer")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Echo.GracefulShutdownMs)*time.Millisecond)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown cleanly")
		os.Exit(1)
	}
}
