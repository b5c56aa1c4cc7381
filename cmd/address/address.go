// Package address holds the offline address derivation subcommand.
package address

import (
	"encoding/hex"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-remotesigner/pkg/celestia"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "address <compressed-pubkey-hex>",
		Short: "Derives the Celestia account address for a public key",
		Long:  "Derives the bech32 account address for a hex-encoded compressed secp256k1 public key. Runs fully offline.",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			publicKey, err := hex.DecodeString(args[0])
			if err != nil {
				log.Fatal().Err(err).Msg("Public key must be hex")
			}

			addr, err := celestia.DeriveAddress(publicKey)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to derive address")
			}

			fmt.Println(addr)
		},
	}
}
