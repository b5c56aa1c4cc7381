package litesigner

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip32"
)

// Worker keys are derived at m/44'/118'/0'/0/{index}. 118 is the Cosmos
// coin type, which Celestia shares.
var workerPathPrefix = []uint32{
	bip32.FirstHardenedChild + 44,
	bip32.FirstHardenedChild + 118,
	bip32.FirstHardenedChild,
	0,
}

// deriveWorkerKey derives the secp256k1 private key at the given worker
// index from the master seed.
func deriveWorkerKey(seed []byte, index uint32) (*ecdsa.PrivateKey, error) {
	if len(seed) == 0 {
		return nil, errors.New("master seed is not available")
	}

	masterKey, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create master key")
	}

	key := masterKey
	for _, childIndex := range append(append([]uint32(nil), workerPathPrefix...), index) {
		key, err = key.NewChildKey(childIndex)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to derive child key at index %d", childIndex)
		}
	}

	privateKey, err := crypto.ToECDSA(key.Key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert derived key")
	}

	return privateKey, nil
}

// defaultNamespaceID is stable across restarts so key records stay valid.
func defaultNamespaceID() uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("litesigner/default"))
}

// defaultOrgID identifies the single built-in organization.
func defaultOrgID() uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("litesigner/org"))
}
