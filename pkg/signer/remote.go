package signer

import (
	"context"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"github/chapool/go-remotesigner/pkg/celestia"
	"github/chapool/go-remotesigner/pkg/custodian"
)

// RemoteSigner signs with a key held by the custodian. Key resolution and
// address derivation happen once at construction; afterwards the signer is
// immutable and cheap to share.
type RemoteSigner struct {
	client    *custodian.Client
	keyID     uuid.UUID
	keyName   string
	publicKey []byte
	address   string
}

var _ Signer = (*RemoteSigner)(nil)

// NewRemoteSigner resolves keyRef against the custodian and builds a signer
// for it. keyRef may be a key identifier (UUID) or a display name; a UUID is
// fetched directly, a name is matched exactly against the key listing.
func NewRemoteSigner(ctx context.Context, client *custodian.Client, keyRef string) (*RemoteSigner, error) {
	key, err := resolveKey(ctx, client, keyRef)
	if err != nil {
		return nil, err
	}

	publicKey, err := hex.DecodeString(key.PublicKey)
	if err != nil {
		return nil, newError(KindDecode, "malformed public key for key %q: %v", keyRef, err)
	}
	if len(publicKey) != celestia.CompressedPubKeyLength {
		return nil, newError(KindInvalidInput,
			"invalid public key length for key %q: expected %d bytes, got %d",
			keyRef, celestia.CompressedPubKeyLength, len(publicKey))
	}

	address, err := celestia.DeriveAddress(publicKey)
	if err != nil {
		return nil, newError(KindInvalidInput, "failed to derive address for key %q: %v", keyRef, err)
	}

	return &RemoteSigner{
		client:    client,
		keyID:     key.ID,
		keyName:   key.Name,
		publicKey: publicKey,
		address:   address,
	}, nil
}

// resolveKey fetches a key by UUID or by exact name match. A miss lists the
// available key names in the error to aid debugging; if the listing itself
// fails the names are omitted rather than masking the miss.
func resolveKey(ctx context.Context, client *custodian.Client, keyRef string) (*custodian.Key, error) {
	if keyID, err := uuid.Parse(keyRef); err == nil {
		key, err := client.Keys.Get(ctx, keyID)
		if err != nil {
			return nil, classify(err)
		}
		return key, nil
	}

	keys, err := client.Keys.List(ctx, nil)
	if err != nil {
		return nil, newError(KindKeyNotFound, "key %q not found: %v", keyRef, classify(err))
	}

	available := make([]string, 0, len(keys))
	for _, key := range keys {
		if key.Name == keyRef {
			return key, nil
		}
		available = append(available, key.Name)
	}

	if len(available) > 0 {
		return nil, newError(KindKeyNotFound, "key %q not found (available: %s)",
			keyRef, strings.Join(available, ", "))
	}
	return nil, newError(KindKeyNotFound, "key %q not found", keyRef)
}

// PublicKey returns a copy of the compressed public key.
func (s *RemoteSigner) PublicKey() []byte {
	publicKey := make([]byte, len(s.publicKey))
	copy(publicKey, s.publicKey)
	return publicKey
}

// PublicKeyHex returns the hex-encoded compressed public key.
func (s *RemoteSigner) PublicKeyHex() string {
	return hex.EncodeToString(s.publicKey)
}

// Address returns the bech32 account address.
func (s *RemoteSigner) Address() string {
	return s.address
}

// KeyID returns the custodian key identifier.
func (s *RemoteSigner) KeyID() uuid.UUID {
	return s.keyID
}

// KeyName returns the custodian key display name.
func (s *RemoteSigner) KeyName() string {
	return s.keyName
}

// Client returns the underlying custodian client.
func (s *RemoteSigner) Client() *custodian.Client {
	return s.client
}

// Sign signs a message remotely. The custodian hashes the message with
// sha256 before signing.
func (s *RemoteSigner) Sign(ctx context.Context, msg []byte) ([]byte, error) {
	return s.remoteSign(ctx, msg, false)
}

// SignDigest signs a 32-byte sha256 digest remotely.
func (s *RemoteSigner) SignDigest(ctx context.Context, digest []byte) ([]byte, error) {
	if len(digest) != DigestLength {
		return nil, newError(KindInvalidInput, "digest must be %d bytes, got %d", DigestLength, len(digest))
	}
	return s.remoteSign(ctx, digest, true)
}

func (s *RemoteSigner) remoteSign(ctx context.Context, payload []byte, prehashed bool) ([]byte, error) {
	result, err := s.client.Sign.Sign(ctx, s.keyID, payload, prehashed)
	if err != nil {
		return nil, classify(err)
	}
	if len(result.Signature) != SignatureLength {
		return nil, newError(KindDecode, "invalid signature length: expected %d bytes, got %d",
			SignatureLength, len(result.Signature))
	}
	return result.Signature, nil
}
