package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-remotesigner/cmd/address"
	"github/chapool/go-remotesigner/cmd/env"
	"github/chapool/go-remotesigner/cmd/keys"
	"github/chapool/go-remotesigner/cmd/probe"
	"github/chapool/go-remotesigner/cmd/serve"
	"github/chapool/go-remotesigner/cmd/sign"
	"github/chapool/go-remotesigner/cmd/verify"
	"github/chapool/go-remotesigner/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Version: config.GetFormattedBuildArgs(),
	Use:     "remotesigner",
	Short:   config.ModuleName,
	Long: fmt.Sprintf(`%v

Remote signing toolkit for Celestia accounts: manage custodian keys,
sign payloads and run a self-hosted lite signer.
Requires configuration through ENV.`, config.ModuleName),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	// attach the subcommands
	rootCmd.AddCommand(
		address.New(),
		env.New(),
		keys.New(),
		probe.New(),
		serve.New(),
		sign.New(),
		verify.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Failed to execute root command")
		os.Exit(1)
	}
}
