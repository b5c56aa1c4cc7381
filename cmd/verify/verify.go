// Package verify holds the signature verification subcommand.
package verify

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-remotesigner/internal/config"
	"github/chapool/go-remotesigner/internal/util/command"
	"github/chapool/go-remotesigner/pkg/custodian"
)

func New() *cobra.Command {
	var prehashedFlag bool

	cmd := &cobra.Command{
		Use:   "verify <key-id> <message> <signature-base64>",
		Short: "Verifies a signature against a custodian key",
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.DefaultServiceConfigFromEnv()

			err := command.WithClient(cmd.Context(), cfg, func(ctx context.Context, client *custodian.Client) error {
				keyID, err := uuid.Parse(args[0])
				if err != nil {
					return errors.Wrap(err, "malformed key id")
				}

				signature, err := base64.StdEncoding.DecodeString(args[2])
				if err != nil {
					return errors.Wrap(err, "signature must be base64")
				}

				message := []byte(args[1])
				if prehashedFlag {
					message, err = hex.DecodeString(args[1])
					if err != nil {
						return errors.Wrap(err, "digest must be hex")
					}
				}

				valid, err := client.Sign.Verify(ctx, keyID, message, signature, prehashedFlag)
				if err != nil {
					return err
				}

				if !valid {
					fmt.Println("INVALID")
					os.Exit(1)
				}

				fmt.Println("OK")
				return nil
			})
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to verify signature")
			}
		},
	}

	cmd.Flags().BoolVar(&prehashedFlag, "prehashed", false, "Treat the message as a hex-encoded 32-byte sha256 digest")

	return cmd
}
