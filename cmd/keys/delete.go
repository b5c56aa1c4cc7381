package keys

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-remotesigner/internal/config"
	"github/chapool/go-remotesigner/internal/util/command"
	"github/chapool/go-remotesigner/pkg/custodian"
)

func newDelete() *cobra.Command {
	var yesFlag bool

	cmd := &cobra.Command{
		Use:   "delete <key-id>",
		Short: "Permanently deletes a key",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if !yesFlag {
				log.Fatal().Msg("Deleting a key is irreversible, re-run with --yes to confirm")
			}

			cfg := config.DefaultServiceConfigFromEnv()

			err := command.WithClient(cmd.Context(), cfg, func(ctx context.Context, client *custodian.Client) error {
				keyID, err := uuid.Parse(args[0])
				if err != nil {
					return err
				}

				if err := client.Keys.Delete(ctx, keyID); err != nil {
					return err
				}

				fmt.Printf("Deleted key %s\n", keyID)
				return nil
			})
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to delete key")
			}
		},
	}

	cmd.Flags().BoolVar(&yesFlag, "yes", false, "Confirm the deletion")

	return cmd
}
