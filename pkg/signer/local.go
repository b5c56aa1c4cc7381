package signer

import (
	"context"
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"

	"github.com/ethereum/go-ethereum/crypto"
	"github/chapool/go-remotesigner/pkg/celestia"
)

// LocalSigner signs with an in-process secp256k1 private key. It is meant
// for development and tests; production keys stay in the custodian.
type LocalSigner struct {
	privateKey *ecdsa.PrivateKey
	publicKey  []byte
	address    string
}

var _ Signer = (*LocalSigner)(nil)

// NewLocalSigner wraps an existing private key.
func NewLocalSigner(privateKey *ecdsa.PrivateKey) (*LocalSigner, error) {
	publicKey := crypto.CompressPubkey(&privateKey.PublicKey)

	address, err := celestia.DeriveAddress(publicKey)
	if err != nil {
		return nil, newError(KindInvalidInput, "failed to derive address: %v", err)
	}

	return &LocalSigner{
		privateKey: privateKey,
		publicKey:  publicKey,
		address:    address,
	}, nil
}

// GenerateLocalSigner creates a signer with a fresh random key.
func GenerateLocalSigner() (*LocalSigner, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, newError(KindSigningFailed, "failed to generate key: %v", err)
	}
	return NewLocalSigner(privateKey)
}

// NewLocalSignerFromHex builds a signer from a hex-encoded private key.
func NewLocalSignerFromHex(privateKeyHex string) (*LocalSigner, error) {
	privateKey, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, newError(KindDecode, "malformed private key: %v", err)
	}
	return NewLocalSigner(privateKey)
}

// PublicKey returns a copy of the compressed public key.
func (s *LocalSigner) PublicKey() []byte {
	publicKey := make([]byte, len(s.publicKey))
	copy(publicKey, s.publicKey)
	return publicKey
}

// PublicKeyHex returns the hex-encoded compressed public key.
func (s *LocalSigner) PublicKeyHex() string {
	return hex.EncodeToString(s.publicKey)
}

// Address returns the bech32 account address.
func (s *LocalSigner) Address() string {
	return s.address
}

// Sign hashes msg with sha256 and signs the digest.
func (s *LocalSigner) Sign(ctx context.Context, msg []byte) ([]byte, error) {
	digest := sha256.Sum256(msg)
	return s.SignDigest(ctx, digest[:])
}

// SignDigest signs a 32-byte sha256 digest. The recovery byte is stripped so
// the signature is 64 bytes (R || S), matching remote signatures.
func (s *LocalSigner) SignDigest(_ context.Context, digest []byte) ([]byte, error) {
	if len(digest) != DigestLength {
		return nil, newError(KindInvalidInput, "digest must be %d bytes, got %d", DigestLength, len(digest))
	}

	sig, err := crypto.Sign(digest, s.privateKey)
	if err != nil {
		return nil, newError(KindSigningFailed, "signing failed: %v", err)
	}

	return sig[:SignatureLength], nil
}

// Verify checks a 64-byte signature over msg against the signer's public
// key.
func (s *LocalSigner) Verify(msg, signature []byte) bool {
	if len(signature) != SignatureLength {
		return false
	}
	digest := sha256.Sum256(msg)
	return crypto.VerifySignature(s.publicKey, digest[:], signature)
}
