// Package sign holds the payload signing subcommands.
package sign

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-remotesigner/internal/config"
	"github/chapool/go-remotesigner/internal/util/command"
	"github/chapool/go-remotesigner/pkg/custodian"
	"github/chapool/go-remotesigner/pkg/signer"
)

const (
	prehashedFlag = "prehashed"
	batchFlag     = "batch"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign <key-id-or-name> [message]",
		Short: "Signs a payload with a custodian key",
		Long: `Signs a payload with a custodian key referenced by UUID or display name.
With --prehashed the message is a hex-encoded 32-byte sha256 digest.
With --batch the payloads are read from a JSON file instead and signed in
one aggregated call.`,
		Args: cobra.RangeArgs(1, 2),
		Run: func(cmd *cobra.Command, args []string) {
			prehashed, err := cmd.Flags().GetBool(prehashedFlag)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to parse flags")
			}
			batchFile, err := cmd.Flags().GetString(batchFlag)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to parse flags")
			}

			cfg := config.DefaultServiceConfigFromEnv()

			err = command.WithClient(cmd.Context(), cfg, func(ctx context.Context, client *custodian.Client) error {
				if batchFile != "" {
					return runBatch(ctx, client, batchFile)
				}

				if len(args) != 2 {
					return errors.New("message argument is required unless --batch is used")
				}
				return runSingle(ctx, client, args[0], args[1], prehashed)
			})
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to sign")
			}
		},
	}

	cmd.Flags().Bool(prehashedFlag, false, "Treat the message as a hex-encoded 32-byte sha256 digest")
	cmd.Flags().String(batchFlag, "", "JSON file with payloads to sign in one batch")

	return cmd
}

func runSingle(ctx context.Context, client *custodian.Client, keyRef, message string, prehashed bool) error {
	remote, err := signer.NewRemoteSigner(ctx, client, keyRef)
	if err != nil {
		return err
	}

	var signature []byte
	if prehashed {
		digest, err := hex.DecodeString(message)
		if err != nil {
			return errors.Wrap(err, "digest must be hex")
		}
		signature, err = remote.SignDigest(ctx, digest)
		if err != nil {
			return err
		}
	} else {
		signature, err = remote.Sign(ctx, []byte(message))
		if err != nil {
			return err
		}
	}

	fmt.Println(base64.StdEncoding.EncodeToString(signature))
	return nil
}
