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

func newCreate() *cobra.Command {
	var (
		namespaceFlag  string
		exportableFlag bool
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Creates a new signing key",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.DefaultServiceConfigFromEnv()

			err := command.WithClient(cmd.Context(), cfg, func(ctx context.Context, client *custodian.Client) error {
				req := custodian.CreateKeyRequest{Name: args[0]}
				if exportableFlag {
					req.Exportable = &exportableFlag
				}
				if namespaceFlag != "" {
					id, err := uuid.Parse(namespaceFlag)
					if err != nil {
						return err
					}
					req.NamespaceID = id
				}

				key, err := client.Keys.Create(ctx, req)
				if err != nil {
					return err
				}

				printJSON(key)
				return nil
			})
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to create key")
			}
		},
	}

	cmd.Flags().StringVar(&namespaceFlag, "namespace", "", "Namespace ID to create the key in")
	cmd.Flags().BoolVar(&exportableFlag, "exportable", false, "Allow the private key to be exported")

	return cmd
}
