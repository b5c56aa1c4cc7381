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

func newList() *cobra.Command {
	var namespaceFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lists keys, optionally filtered by namespace",
		Run: func(cmd *cobra.Command, _ []string) {
			cfg := config.DefaultServiceConfigFromEnv()

			err := command.WithClient(cmd.Context(), cfg, func(ctx context.Context, client *custodian.Client) error {
				var namespaceID *uuid.UUID
				if namespaceFlag != "" {
					id, err := uuid.Parse(namespaceFlag)
					if err != nil {
						return err
					}
					namespaceID = &id
				}

				keys, err := client.Keys.List(ctx, namespaceID)
				if err != nil {
					return err
				}

				printJSON(keys)
				return nil
			})
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to list keys")
			}
		},
	}

	cmd.Flags().StringVar(&namespaceFlag, "namespace", "", "Namespace ID to filter by")

	return cmd
}
