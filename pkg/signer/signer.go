// Package signer provides signing with keys whose private material may live
// outside the process. The Signer interface decouples "sign" from "where the
// key lives"; the remote backend delegates to a custodian, the local backend
// holds an in-process key for development and tests. Both present the same
// identity model: a 33-byte compressed secp256k1 public key and the bech32
// address derived from it.
package signer

import "context"

// DigestLength is the required length of a pre-hashed message.
const DigestLength = 32

// SignatureLength is the length of a signature: two 32-byte scalars R || S.
const SignatureLength = 64

// Signer signs messages with a fixed key. Implementations hold only
// immutable identity data and are safe for concurrent use.
type Signer interface {
	// PublicKey returns the 33-byte compressed secp256k1 public key.
	PublicKey() []byte

	// Address returns the bech32 account address derived from the public
	// key. It is computed once at construction.
	Address() string

	// Sign signs an arbitrary message. The message is hashed with sha256
	// before signing.
	Sign(ctx context.Context, msg []byte) ([]byte, error)

	// SignDigest signs a 32-byte sha256 digest. A digest of any other
	// length is rejected locally before any network traffic.
	SignDigest(ctx context.Context, digest []byte) ([]byte, error)
}
