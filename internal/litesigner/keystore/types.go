// Package keystore implements the lite signer's encrypted on-disk key file.
// The file holds a BIP32 master seed plus individual key records, sealed
// with AES-256-GCM under a scrypt-derived key.
package keystore

import (
	"time"

	"github.com/google/uuid"
)

// File is the on-disk keystore structure.
type File struct {
	Version int    `json:"version"`
	ID      string `json:"id"`
	Crypto  struct {
		Ciphertext string `json:"ciphertext"`
		Nonce      string `json:"nonce"`
		Cipher     string `json:"cipher"`
		KDF        string `json:"kdf"`
		KDFParams  struct {
			DKLen int    `json:"dklen"`
			Salt  string `json:"salt"`
			N     int    `json:"n"`
			R     int    `json:"r"`
			P     int    `json:"p"`
		} `json:"kdfparams"`
	} `json:"crypto"`
}

// Payload is the plaintext content of the keystore file.
type Payload struct {
	// MasterSeed is the hex-encoded BIP32 seed used to derive batch-created
	// worker keys.
	MasterSeed string `json:"master_seed"`
	// NextIndex is the next unused worker-key derivation index.
	NextIndex uint32 `json:"next_index"`
	// Keys holds every key record, derived and imported alike.
	Keys []Record `json:"keys"`
}

// Record is one stored key.
type Record struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	NamespaceID uuid.UUID `json:"namespace_id"`
	// PublicKey is the hex-encoded compressed secp256k1 public key.
	PublicKey string `json:"public_key"`
	// PrivateKey is the hex-encoded private key for individually created
	// keys. Empty for derived keys, which are recomputed from the master
	// seed and DerivationIndex.
	PrivateKey      string            `json:"private_key,omitempty"`
	DerivationIndex *uint32           `json:"derivation_index,omitempty"`
	Exportable      bool              `json:"exportable"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// ScryptParams defines the KDF parameters of the keystore file.
type ScryptParams struct {
	DKLen int
	N     int
	R     int
	P     int
}

// DefaultScryptParams returns production KDF parameters.
func DefaultScryptParams() ScryptParams {
	return ScryptParams{
		DKLen: 32,
		N:     262144,
		R:     8,
		P:     1,
	}
}

// LightScryptParams returns weak KDF parameters for tests, where the
// production cost dominates the runtime.
func LightScryptParams() ScryptParams {
	return ScryptParams{
		DKLen: 32,
		N:     4096,
		R:     8,
		P:     1,
	}
}
