package env

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-remotesigner/internal/config"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Prints the effective service configuration",
		Long:  "Prints the service configuration resolved from the environment. Secrets are redacted.",
		Run: func(_ *cobra.Command, _ []string) {
			cfg := config.DefaultServiceConfigFromEnv()

			out, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to marshal service config")
			}

			fmt.Println(string(out))
		},
	}
}
