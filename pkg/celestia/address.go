// Package celestia derives Celestia account addresses from compressed
// secp256k1 public keys.
package celestia

import (
	"crypto/sha256"

	"github.com/pkg/errors"
	"github/chapool/go-remotesigner/pkg/bech32"
	//nolint:staticcheck // ripemd160 is mandated by the Cosmos address format
	"golang.org/x/crypto/ripemd160"
)

const (
	// AddressPrefix is the human-readable prefix of Celestia account addresses.
	AddressPrefix = "celestia"

	// CompressedPubKeyLength is the length of a compressed secp256k1 public
	// key: one parity byte plus the 32-byte x coordinate.
	CompressedPubKeyLength = 33
)

// ErrInvalidPublicKey is returned when the public key is not a 33-byte
// compressed secp256k1 point.
var ErrInvalidPublicKey = errors.New("invalid public key: expected 33-byte compressed secp256k1 key")

// DeriveAddress derives the bech32 account address for a compressed public
// key: sha256 over the key, ripemd160 over that digest, then bech32 with the
// "celestia" prefix. The derivation is a pure function of the key.
func DeriveAddress(pubKey []byte) (string, error) {
	if len(pubKey) != CompressedPubKeyLength {
		return "", errors.Wrapf(ErrInvalidPublicKey, "got %d bytes", len(pubKey))
	}

	sum := sha256.Sum256(pubKey)

	hasher := ripemd160.New()
	hasher.Write(sum[:])
	payload := hasher.Sum(nil)

	address, err := bech32.Encode(AddressPrefix, payload)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode address")
	}

	return address, nil
}
