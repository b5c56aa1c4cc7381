package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

const keystoreVersion = 1

// encryptPayload seals the payload with AES-256-GCM under a scrypt-derived
// key.
func encryptPayload(payload *Payload, passphrase string, params ScryptParams) (*File, error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal keystore payload")
	}

	salt := make([]byte, 32)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(err, "failed to generate salt")
	}

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

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.Wrap(err, "failed to generate nonce")
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	file := &File{
		Version: keystoreVersion,
		ID:      uuid.New().String(),
	}
	file.Crypto.Ciphertext = hex.EncodeToString(ciphertext)
	file.Crypto.Nonce = hex.EncodeToString(nonce)
	file.Crypto.Cipher = "aes-256-gcm"
	file.Crypto.KDF = "scrypt"
	file.Crypto.KDFParams.DKLen = params.DKLen
	file.Crypto.KDFParams.Salt = hex.EncodeToString(salt)
	file.Crypto.KDFParams.N = params.N
	file.Crypto.KDFParams.R = params.R
	file.Crypto.KDFParams.P = params.P

	return file, nil
}
