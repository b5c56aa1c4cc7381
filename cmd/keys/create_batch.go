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

func newCreateBatch() *cobra.Command {
	var (
		countFlag      int
		namespaceFlag  string
		exportableFlag bool
	)

	cmd := &cobra.Command{
		Use:   "create-batch <prefix>",
		Short: "Creates sequentially named keys in one call",
		Long:  `Creates --count keys named "<prefix>-1" through "<prefix>-<count>".`,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.DefaultServiceConfigFromEnv()

			err := command.WithClient(cmd.Context(), cfg, func(ctx context.Context, client *custodian.Client) error {
				req := custodian.CreateKeyBatchRequest{
					Prefix: args[0],
					Count:  countFlag,
				}
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

				created, err := client.Keys.CreateBatch(ctx, req)
				if err != nil {
					return err
				}

				printJSON(created)
				return nil
			})
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to create key batch")
			}
		},
	}

	cmd.Flags().IntVar(&countFlag, "count", 1, "Number of keys to create")
	cmd.Flags().StringVar(&namespaceFlag, "namespace", "", "Namespace ID to create the keys in")
	cmd.Flags().BoolVar(&exportableFlag, "exportable", false, "Allow the private keys to be exported")

	return cmd
}
