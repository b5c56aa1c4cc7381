package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-remotesigner/internal/config"
)

func newLiveness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liveness",
		Short: "Checks whether the signing endpoint is alive",
		Run: func(cmd *cobra.Command, _ []string) {
			verbose, err := cmd.Flags().GetBool(verboseFlag)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to parse flags")
			}

			runProbe(cmd.Context(), "/-/healthy", verbose)
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "Print the probe response body")

	return cmd
}

// runProbe exits non-zero when the endpoint does not answer 200 within the
// configured timeout.
func runProbe(ctx context.Context, path string, verbose bool) {
	cfg := config.DefaultServiceConfigFromEnv()

	ctx, cancel := context.WithTimeout(ctx, cfg.Custodian.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.Custodian.BaseURL+path, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build probe request")
	}

	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Probe request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read probe response")
	}

	if resp.StatusCode != http.StatusOK {
		log.Fatal().
			Int("status", resp.StatusCode).
			Str("path", path).
			Str("body", string(body)).
			Msg("Probe failed")
	}

	if verbose {
		fmt.Println(string(body))
	}

	log.Info().Str("path", path).Dur("duration", time.Since(start)).Msg("Probe succeeded")
}
