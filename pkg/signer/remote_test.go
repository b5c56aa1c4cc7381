package signer_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github/chapool/go-remotesigner/pkg/custodian"
	"github/chapool/go-remotesigner/pkg/signer"
)

// generator point of secp256k1, i.e. the public key of private key 1
const testPubKeyHex = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"

const testAddress = "celestia1w508d6qejxtdg4y5r3zarvary0c5xw7kthx244"

type custodianStub struct {
	mu       sync.Mutex
	requests []string
	handler  http.HandlerFunc
	server   *httptest.Server
}

func newCustodianStub(t *testing.T, handler http.HandlerFunc) *custodianStub {
	t.Helper()
	stub := &custodianStub{handler: handler}
	stub.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stub.mu.Lock()
		stub.requests = append(stub.requests, r.Method+" "+r.URL.Path)
		stub.mu.Unlock()
		stub.handler(w, r)
	}))
	t.Cleanup(stub.server.Close)
	return stub
}

func (s *custodianStub) client() *custodian.Client {
	return custodian.NewClient("test-api-key", custodian.WithBaseURL(s.server.URL))
}

func (s *custodianStub) requestLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func writeData(t *testing.T, w http.ResponseWriter, data any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"data": data}))
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":{"code":%q,"message":%q}}`, code, message)
}

func testKey(id uuid.UUID, name string) map[string]any {
	return map[string]any{
		"id":         id.String(),
		"name":       name,
		"public_key": testPubKeyHex,
		"algorithm":  "secp256k1",
	}
}

func TestNewRemoteSignerByID(t *testing.T) {
	keyID := uuid.New()
	stub := newCustodianStub(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/keys/"+keyID.String(), r.URL.Path)
		writeData(t, w, testKey(keyID, "validator-1"))
	})

	s, err := signer.NewRemoteSigner(context.Background(), stub.client(), keyID.String())
	require.NoError(t, err)

	require.Equal(t, keyID, s.KeyID())
	require.Equal(t, "validator-1", s.KeyName())
	require.Equal(t, testPubKeyHex, s.PublicKeyHex())
	require.Len(t, s.PublicKey(), 33)
	require.Equal(t, testAddress, s.Address())

	// a UUID reference resolves with a direct get, never a listing
	require.Equal(t, []string{"GET /v1/keys/" + keyID.String()}, stub.requestLog())
}

func TestNewRemoteSignerByName(t *testing.T) {
	keyID := uuid.New()
	stub := newCustodianStub(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/keys", r.URL.Path)
		writeData(t, w, []any{
			testKey(uuid.New(), "validator-1"),
			testKey(keyID, "validator-2"),
		})
	})

	s, err := signer.NewRemoteSigner(context.Background(), stub.client(), "validator-2")
	require.NoError(t, err)
	require.Equal(t, keyID, s.KeyID())
	require.Equal(t, "validator-2", s.KeyName())
}

func TestNewRemoteSignerNameNotFound(t *testing.T) {
	stub := newCustodianStub(t, func(w http.ResponseWriter, r *http.Request) {
		writeData(t, w, []any{
			testKey(uuid.New(), "validator-1"),
			testKey(uuid.New(), "validator-2"),
		})
	})

	_, err := signer.NewRemoteSigner(context.Background(), stub.client(), "missing")
	require.Error(t, err)
	require.True(t, signer.IsKind(err, signer.KindKeyNotFound))
	require.Contains(t, err.Error(), `"missing"`)
	require.Contains(t, err.Error(), "validator-1")
	require.Contains(t, err.Error(), "validator-2")
}

func TestNewRemoteSignerIDNotFound(t *testing.T) {
	stub := newCustodianStub(t, func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusNotFound, "not_found", "key not found")
	})

	_, err := signer.NewRemoteSigner(context.Background(), stub.client(), uuid.NewString())
	require.True(t, signer.IsKind(err, signer.KindKeyNotFound))
}

func TestNewRemoteSignerMalformedPublicKey(t *testing.T) {
	key := testKey(uuid.New(), "validator-1")
	key["public_key"] = "not-hex"
	stub := newCustodianStub(t, func(w http.ResponseWriter, r *http.Request) {
		writeData(t, w, key)
	})

	_, err := signer.NewRemoteSigner(context.Background(), stub.client(), key["id"].(string))
	require.True(t, signer.IsKind(err, signer.KindDecode))
}

func TestNewRemoteSignerWrongPublicKeyLength(t *testing.T) {
	key := testKey(uuid.New(), "validator-1")
	key["public_key"] = "0102030405" // 5 bytes
	stub := newCustodianStub(t, func(w http.ResponseWriter, r *http.Request) {
		writeData(t, w, key)
	})

	_, err := signer.NewRemoteSigner(context.Background(), stub.client(), key["id"].(string))
	require.True(t, signer.IsKind(err, signer.KindInvalidInput))
}

func newTestRemoteSigner(t *testing.T, stub *custodianStub, keyID uuid.UUID) *signer.RemoteSigner {
	t.Helper()
	s, err := signer.NewRemoteSigner(context.Background(), stub.client(), keyID.String())
	require.NoError(t, err)
	return s
}

func signHandler(t *testing.T, keyID uuid.UUID, signature []byte, wantPrehashed bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/keys/" + keyID.String():
			writeData(t, w, testKey(keyID, "validator-1"))
		case "/v1/keys/" + keyID.String() + "/sign":
			var req struct {
				Data      string `json:"data"`
				Prehashed bool   `json:"prehashed"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, wantPrehashed, req.Prehashed)
			writeData(t, w, map[string]any{
				"signature":  base64.StdEncoding.EncodeToString(signature),
				"public_key": testPubKeyHex,
			})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}
}

func TestRemoteSignerSign(t *testing.T) {
	keyID := uuid.New()
	wantSig := make([]byte, signer.SignatureLength)
	for i := range wantSig {
		wantSig[i] = byte(i)
	}
	stub := newCustodianStub(t, signHandler(t, keyID, wantSig, false))

	s := newTestRemoteSigner(t, stub, keyID)
	sig, err := s.Sign(context.Background(), []byte("hello"))
	require.NoError(t, err)
	require.Equal(t, wantSig, sig)
}

func TestRemoteSignerSignDigest(t *testing.T) {
	keyID := uuid.New()
	wantSig := make([]byte, signer.SignatureLength)
	stub := newCustodianStub(t, signHandler(t, keyID, wantSig, true))

	s := newTestRemoteSigner(t, stub, keyID)
	digest := make([]byte, signer.DigestLength)
	sig, err := s.SignDigest(context.Background(), digest)
	require.NoError(t, err)
	require.Equal(t, wantSig, sig)
}

func TestRemoteSignerSignDigestWrongLength(t *testing.T) {
	keyID := uuid.New()
	stub := newCustodianStub(t, func(w http.ResponseWriter, r *http.Request) {
		writeData(t, w, testKey(keyID, "validator-1"))
	})
	s := newTestRemoteSigner(t, stub, keyID)
	before := len(stub.requestLog())

	for _, size := range []int{0, 20, 31, 33, 64} {
		_, err := s.SignDigest(context.Background(), make([]byte, size))
		require.True(t, signer.IsKind(err, signer.KindInvalidInput), "size %d", size)
	}

	// the length check happens locally, no request goes out
	require.Len(t, stub.requestLog(), before)
}

func TestRemoteSignerSignInvalidSignatureLength(t *testing.T) {
	keyID := uuid.New()
	stub := newCustodianStub(t, signHandler(t, keyID, make([]byte, 65), false))

	s := newTestRemoteSigner(t, stub, keyID)
	_, err := s.Sign(context.Background(), []byte("hello"))
	require.True(t, signer.IsKind(err, signer.KindDecode))
}

func TestRemoteSignerErrorMapping(t *testing.T) {
	keyID := uuid.New()

	tests := []struct {
		name   string
		status int
		code   string
		want   signer.Kind
	}{
		{"unauthorized", http.StatusUnauthorized, "unauthorized", signer.KindAuthentication},
		{"forbidden", http.StatusForbidden, "forbidden", signer.KindAuthentication},
		{"rate limited", http.StatusTooManyRequests, "rate_limited", signer.KindRateLimited},
		{"not found", http.StatusNotFound, "not_found", signer.KindKeyNotFound},
		{"server error", http.StatusInternalServerError, "internal", signer.KindSigningFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := newCustodianStub(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/v1/keys/"+keyID.String() {
					writeData(t, w, testKey(keyID, "validator-1"))
					return
				}
				writeAPIError(w, tt.status, tt.code, tt.name)
			})

			s := newTestRemoteSigner(t, stub, keyID)
			_, err := s.Sign(context.Background(), []byte("hello"))
			require.Error(t, err)

			kind, ok := signer.KindOf(err)
			require.True(t, ok)
			require.Equal(t, tt.want, kind)
		})
	}
}

func TestRemoteSignerNetworkError(t *testing.T) {
	keyID := uuid.New()
	stub := newCustodianStub(t, func(w http.ResponseWriter, r *http.Request) {
		writeData(t, w, testKey(keyID, "validator-1"))
	})
	s := newTestRemoteSigner(t, stub, keyID)

	stub.server.Close()

	_, err := s.Sign(context.Background(), []byte("hello"))
	require.True(t, signer.IsKind(err, signer.KindNetwork))
}
