package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"encoding/json"

	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

// ErrInvalidPassphrase is returned when the keystore cannot be opened with
// the given passphrase.
var ErrInvalidPassphrase = errors.New("invalid keystore passphrase")

// decryptPayload opens a sealed keystore file. A wrong passphrase fails the
// GCM authentication and yields ErrInvalidPassphrase.
func decryptPayload(file *File, passphrase string) (*Payload, error) {
	if file.Version != keystoreVersion {
		return nil, errors.Errorf("unsupported keystore version %d", file.Version)
	}
	if file.Crypto.Cipher != "aes-256-gcm" || file.Crypto.KDF != "scrypt" {
		return nil, errors.Errorf("unsupported keystore cipher %s/%s", file.Crypto.Cipher, file.Crypto.KDF)
	}

	salt, err := hex.DecodeString(file.Crypto.KDFParams.Salt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode salt")
	}

	nonce, err := hex.DecodeString(file.Crypto.Nonce)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode nonce")
	}

	ciphertext, err := hex.DecodeString(file.Crypto.Ciphertext)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode ciphertext")
	}

	params := file.Crypto.KDFParams
	derivedKey, err := scrypt.Key([]byte(passphrase), salt, params.N, params.R, params.P, params.DKLen)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive key")
	}

	block, err := aes.NewCipher(derivedKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cipher")
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create GCM")
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrInvalidPassphrase
	}

	var payload Payload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal keystore payload")
	}

	return &payload, nil
}
