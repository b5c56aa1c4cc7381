// Package command holds shared helpers for cobra subcommands.
package command

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/go-remotesigner/internal/config"
	"github/chapool/go-remotesigner/pkg/custodian"
)

// NewSubcommandGroup groups subcommands under a parent command that only
// prints its own help when invoked directly.
func NewSubcommandGroup(use string, subcommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use: use,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				cmd.PrintErrln(err)
			}
		},
	}

	cmd.AddCommand(subcommands...)

	return cmd
}

// WithClient builds a custodian client from the service config and runs fn
// with it. Commands talking to the custodian wrap their body in this so
// config handling stays in one place.
func WithClient(ctx context.Context, cfg config.Service, fn func(ctx context.Context, client *custodian.Client) error) error {
	if cfg.Custodian.APIKey == "" {
		return errors.New("no API key configured, set CUSTODIAN_API_KEY")
	}

	client := custodian.NewClient(cfg.Custodian.APIKey,
		custodian.WithBaseURL(cfg.Custodian.BaseURL),
		custodian.WithTimeout(cfg.Custodian.Timeout),
		custodian.WithLogger(cfg.Logger.New()),
	)

	return fn(ctx, client)
}
