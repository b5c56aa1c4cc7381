package config_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github/chapool/go-remotesigner/internal/config"
)

func TestPrintServiceEnv(t *testing.T) {
	config := config.DefaultServiceConfigFromEnv()
	_, err := json.MarshalIndent(config, "", "  ")

	if err != nil {
		t.Fatal(err)
	}
}

func TestSecretsRedactedInPrintedEnv(t *testing.T) {
	t.Setenv("CUSTODIAN_API_KEY", "super-secret-api-key")
	t.Setenv("LITESIGNER_API_KEY", "super-secret-server-key")
	t.Setenv("LITESIGNER_KEYSTORE_PASSPHRASE", "super-secret-passphrase")

	cfg := config.DefaultServiceConfigFromEnv()
	require.Equal(t, "super-secret-api-key", cfg.Custodian.APIKey)
	require.Equal(t, "super-secret-passphrase", cfg.Keystore.Passphrase)

	out, err := json.MarshalIndent(cfg, "", "  ")
	require.NoError(t, err)
	require.NotContains(t, string(out), "super-secret-api-key")
	require.NotContains(t, string(out), "super-secret-server-key")
	require.NotContains(t, string(out), "super-secret-passphrase")
}

func TestCORSAllowedOriginsFromEnv(t *testing.T) {
	t.Setenv("LITESIGNER_CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg := config.DefaultServiceConfigFromEnv()
	require.Equal(t,
		[]string{"https://a.example.com", "https://b.example.com"},
		cfg.Echo.CORSAllowedOrigins)
}
