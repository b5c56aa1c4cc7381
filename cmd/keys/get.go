package keys

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-remotesigner/internal/config"
	"github/chapool/go-remotesigner/internal/util/command"
	"github/chapool/go-remotesigner/pkg/custodian"
)

func newGet() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key-id>",
		Short: "Fetches a key by its identifier",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.DefaultServiceConfigFromEnv()

			err := command.WithClient(cmd.Context(), cfg, func(ctx context.Context, client *custodian.Client) error {
				keyID, err := uuid.Parse(args[0])
				if err != nil {
					return err
				}

				key, err := client.Keys.Get(ctx, keyID)
				if err != nil {
					return err
				}

				printJSON(key)
				return nil
			})
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to get key")
			}
		},
	}
}
