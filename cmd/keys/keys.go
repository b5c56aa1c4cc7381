// Package keys holds the key management subcommands.
package keys

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-remotesigner/internal/util/command"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("keys",
		newList(),
		newGet(),
		newCreate(),
		newCreateBatch(),
		newDelete(),
	)
}

// printJSON renders command output as indented JSON.
func printJSON(payload any) {
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal output")
	}
	fmt.Println(string(out))
}
