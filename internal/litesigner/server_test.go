package litesigner_test

import (
	"context"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github/chapool/go-remotesigner/internal/config"
	"github/chapool/go-remotesigner/internal/litesigner"
	"github/chapool/go-remotesigner/pkg/custodian"
	"github/chapool/go-remotesigner/pkg/signer"
)

const testAPIKey = "test-api-key"

func newTestServer(t *testing.T) (*litesigner.Server, *custodian.Client) {
	t.Helper()
	return newTestServerWithKeystore(t, filepath.Join(t.TempDir(), "keystore.json"))
}

func newTestServerWithKeystore(t *testing.T, keystorePath string) (*litesigner.Server, *custodian.Client) {
	t.Helper()

	cfg := config.Service{
		Echo: config.EchoServer{
			APIKey:        testAPIKey,
			EnableMetrics: true,
		},
		Keystore: config.Keystore{
			Path:       keystorePath,
			Passphrase: "correct horse battery staple",
			LightKDF:   true,
		},
		Logger: config.Logger{Level: "error"},
	}

	server, err := litesigner.NewServer(cfg)
	require.NoError(t, err)
	require.NoError(t, server.Initialize(context.Background()))

	httpServer := httptest.NewServer(server.Echo)
	t.Cleanup(httpServer.Close)

	client := custodian.NewClient(testAPIKey, custodian.WithBaseURL(httpServer.URL))
	return server, client
}

func TestAuthRequired(t *testing.T) {
	server, _ := newTestServer(t)
	httpServer := httptest.NewServer(server.Echo)
	t.Cleanup(httpServer.Close)

	unauthenticated := custodian.NewClient("wrong-key", custodian.WithBaseURL(httpServer.URL))
	_, err := unauthenticated.Keys.List(context.Background(), nil)
	require.Error(t, err)

	apiErr, ok := custodian.AsError(err)
	require.True(t, ok)
	require.True(t, apiErr.IsUnauthorized())
}

func TestHealthEndpointsUnauthenticated(t *testing.T) {
	server, _ := newTestServer(t)
	httpServer := httptest.NewServer(server.Echo)
	t.Cleanup(httpServer.Close)

	for _, path := range []string{"/-/healthy", "/-/ready", "/-/metrics"} {
		resp, err := http.Get(httpServer.URL + path)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		require.NoError(t, resp.Body.Close())
	}
}

func TestCORSAllowedOrigins(t *testing.T) {
	cfg := config.Service{
		Echo: config.EchoServer{
			APIKey:             testAPIKey,
			CORSAllowedOrigins: []string{"https://dashboard.example.com"},
		},
		Keystore: config.Keystore{
			Path:       filepath.Join(t.TempDir(), "keystore.json"),
			Passphrase: "correct horse battery staple",
			LightKDF:   true,
		},
		Logger: config.Logger{Level: "error"},
	}

	server, err := litesigner.NewServer(cfg)
	require.NoError(t, err)
	require.NoError(t, server.Initialize(context.Background()))

	httpServer := httptest.NewServer(server.Echo)
	t.Cleanup(httpServer.Close)

	req, err := http.NewRequest(http.MethodGet, httpServer.URL+"/-/healthy", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://dashboard.example.com")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, "https://dashboard.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestKeyLifecycle(t *testing.T) {
	_, client := newTestServer(t)
	ctx := context.Background()

	created, err := client.Keys.Create(ctx, custodian.CreateKeyRequest{Name: "validator-1"})
	require.NoError(t, err)
	require.Equal(t, "validator-1", created.Name)
	require.Equal(t, "secp256k1", created.Algorithm)
	require.Len(t, created.PublicKey, 66) // 33 bytes hex
	require.Regexp(t, "^celestia1", created.Address)
	require.Len(t, created.Address, 47)
	require.False(t, created.Exportable)

	// exportable is opt-in
	exportable := true
	exported, err := client.Keys.Create(ctx, custodian.CreateKeyRequest{
		Name:       "validator-2",
		Exportable: &exportable,
	})
	require.NoError(t, err)
	require.True(t, exported.Exportable)

	fetched, err := client.Keys.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.PublicKey, fetched.PublicKey)

	byName, err := client.Keys.GetByName(ctx, created.NamespaceID, "validator-1")
	require.NoError(t, err)
	require.Equal(t, created.ID, byName.ID)

	// duplicate names within the namespace are rejected
	_, err = client.Keys.Create(ctx, custodian.CreateKeyRequest{Name: "validator-1"})
	apiErr, ok := custodian.AsError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusConflict, apiErr.StatusCode)

	require.NoError(t, client.Keys.Delete(ctx, created.ID))

	_, err = client.Keys.Get(ctx, created.ID)
	apiErr, ok = custodian.AsError(err)
	require.True(t, ok)
	require.True(t, apiErr.IsNotFound())
}

func TestBatchCreateDerivedKeysSurviveRestart(t *testing.T) {
	keystorePath := filepath.Join(t.TempDir(), "keystore.json")
	_, client := newTestServerWithKeystore(t, keystorePath)
	ctx := context.Background()

	keys, err := client.Keys.CreateBatch(ctx, custodian.CreateKeyBatchRequest{
		Prefix: "worker",
		Count:  3,
	})
	require.NoError(t, err)
	require.Len(t, keys, 3)
	require.Equal(t, "worker-1", keys[0].Name)
	require.Equal(t, "worker-3", keys[2].Name)

	// derived keys are recomputed from the master seed on restart
	_, reopened := newTestServerWithKeystore(t, keystorePath)
	for _, key := range keys {
		fetched, err := reopened.Keys.Get(ctx, key.ID)
		require.NoError(t, err)
		require.Equal(t, key.PublicKey, fetched.PublicKey)
		require.Equal(t, key.Address, fetched.Address)
	}
}

func TestSignAndVerifyThroughSDK(t *testing.T) {
	_, client := newTestServer(t)
	ctx := context.Background()

	key, err := client.Keys.Create(ctx, custodian.CreateKeyRequest{Name: "validator-1"})
	require.NoError(t, err)

	remote, err := signer.NewRemoteSigner(ctx, client, key.ID.String())
	require.NoError(t, err)
	require.Equal(t, key.Address, remote.Address())

	msg := []byte("pay for blob inclusion")
	sig, err := remote.Sign(ctx, msg)
	require.NoError(t, err)
	require.Len(t, sig, signer.SignatureLength)

	valid, err := client.Sign.Verify(ctx, key.ID, msg, sig, false)
	require.NoError(t, err)
	require.True(t, valid)

	valid, err = client.Sign.Verify(ctx, key.ID, []byte("different message"), sig, false)
	require.NoError(t, err)
	require.False(t, valid)

	// resolving by display name hits the same key
	byName, err := signer.NewRemoteSigner(ctx, client, "validator-1")
	require.NoError(t, err)
	require.Equal(t, remote.KeyID(), byName.KeyID())
}

func TestBatchSignThroughCoordinator(t *testing.T) {
	_, client := newTestServer(t)
	ctx := context.Background()

	keys, err := client.Keys.CreateBatch(ctx, custodian.CreateKeyBatchRequest{
		Prefix: "worker",
		Count:  2,
	})
	require.NoError(t, err)

	coordinator := signer.NewBatchCoordinator(client)
	requests := []signer.BatchRequest{
		{KeyID: keys[0].ID, Data: []byte("first")},
		{KeyID: keys[1].ID, Data: []byte("second")},
		{KeyID: uuid.New(), Data: []byte("unknown key")},
	}

	outcomes, err := coordinator.SignBatch(ctx, requests)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	for i := 0; i < 2; i++ {
		require.NoError(t, outcomes[i].Err)
		require.Len(t, outcomes[i].Signature, signer.SignatureLength)
		require.Equal(t, keys[i].PublicKey, hex.EncodeToString(outcomes[i].PublicKey))

		valid, err := client.Sign.Verify(ctx, requests[i].KeyID, requests[i].Data, outcomes[i].Signature, false)
		require.NoError(t, err)
		require.True(t, valid)
	}

	require.True(t, signer.IsKind(outcomes[2].Err, signer.KindSigningFailed))
}

func TestSignPrehashedValidation(t *testing.T) {
	_, client := newTestServer(t)
	ctx := context.Background()

	key, err := client.Keys.Create(ctx, custodian.CreateKeyRequest{Name: "validator-1"})
	require.NoError(t, err)

	_, err = client.Sign.Sign(ctx, key.ID, []byte("not a digest"), true)
	apiErr, ok := custodian.AsError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestOrgsAndNamespaces(t *testing.T) {
	_, client := newTestServer(t)
	ctx := context.Background()

	orgs, err := client.Orgs.List(ctx)
	require.NoError(t, err)
	require.Len(t, orgs, 1)

	namespaces, err := client.Orgs.ListNamespaces(ctx, orgs[0].ID)
	require.NoError(t, err)
	require.Len(t, namespaces, 1)
	require.Equal(t, "default", namespaces[0].Name)

	// created keys land in the default namespace
	key, err := client.Keys.Create(ctx, custodian.CreateKeyRequest{Name: "validator-1"})
	require.NoError(t, err)
	require.Equal(t, namespaces[0].ID, key.NamespaceID)
}

func TestAuditTrail(t *testing.T) {
	_, client := newTestServer(t)
	ctx := context.Background()

	key, err := client.Keys.Create(ctx, custodian.CreateKeyRequest{Name: "validator-1"})
	require.NoError(t, err)
	_, err = client.Sign.Sign(ctx, key.ID, []byte("payload"), false)
	require.NoError(t, err)

	page, err := client.Audit.List(ctx, custodian.AuditQuery{})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	// newest first
	require.Equal(t, "key.sign", page.Items[0].Event)
	require.Equal(t, "key.create", page.Items[1].Event)

	filtered, err := client.Audit.List(ctx, custodian.AuditQuery{Event: "key.sign", ResourceID: &key.ID})
	require.NoError(t, err)
	require.Equal(t, 1, filtered.Total)
}
