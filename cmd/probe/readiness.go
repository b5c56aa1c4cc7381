package probe

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newReadiness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Checks whether the signing endpoint is ready to serve",
		Run: func(cmd *cobra.Command, _ []string) {
			verbose, err := cmd.Flags().GetBool(verboseFlag)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to parse flags")
			}

			runProbe(cmd.Context(), "/-/ready", verbose)
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "Print the probe response body")

	return cmd
}
