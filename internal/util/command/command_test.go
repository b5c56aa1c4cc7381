package command_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-remotesigner/internal/config"
	"github/chapool/go-remotesigner/internal/util/command"
	"github/chapool/go-remotesigner/pkg/custodian"
)

func TestNewSubcommandGroup(t *testing.T) {
	group := command.NewSubcommandGroup("parent")
	require.Equal(t, "parent", group.Use)

	// invoking the group itself only prints help
	group.SetArgs([]string{})
	require.NoError(t, group.Execute())
}

func TestWithClient(t *testing.T) {
	cfg := config.Service{
		Custodian: config.Custodian{
			BaseURL: "http://127.0.0.1:1",
			APIKey:  "test-key",
		},
		Logger: config.Logger{Level: "error"},
	}

	called := false
	err := command.WithClient(context.Background(), cfg, func(_ context.Context, client *custodian.Client) error {
		called = true
		assert.Equal(t, "http://127.0.0.1:1", client.BaseURL())
		return nil
	})
	require.NoError(t, err)
	require.True(t, called)
}

func TestWithClientMissingAPIKey(t *testing.T) {
	cfg := config.Service{Logger: config.Logger{Level: "error"}}

	err := command.WithClient(context.Background(), cfg, func(_ context.Context, _ *custodian.Client) error {
		t.Fatal("must not be called without an API key")
		return nil
	})
	require.Error(t, err)
}
