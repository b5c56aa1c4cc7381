package keystore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github/chapool/go-remotesigner/internal/util"
)

// Service provides load, save and mutation access to the encrypted key
// file. All mutations persist immediately.
type Service interface {
	// Initialize loads the keystore from disk, creating a fresh one with a
	// random master seed if the file does not exist.
	Initialize(ctx context.Context) error

	// MasterSeed returns a copy of the BIP32 master seed.
	MasterSeed() []byte

	// NextDerivationIndex reserves and persists the next worker-key index.
	NextDerivationIndex(ctx context.Context) (uint32, error)

	// Keys returns a copy of every stored key record.
	Keys(ctx context.Context) []Record

	// Put inserts or replaces a key record.
	Put(ctx context.Context, record Record) error

	// Delete removes a key record, reporting whether it existed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type service struct {
	path       string
	passphrase string
	params     ScryptParams

	mu      sync.Mutex
	payload *Payload
}

// NewService creates a keystore service for the given file path and
// passphrase.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(path string, passphrase string, params ScryptParams) (Service, error) {
	if passphrase == "" {
		return nil, errors.New("keystore passphrase must not be empty")
	}

	return &service{
		path:       path,
		passphrase: passphrase,
		params:     params,
	}, nil
}

const masterSeedLength = 64

func (s *service) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := util.LogFromContext(ctx)

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return errors.Wrap(err, "failed to read keystore file")
		}

		seed := make([]byte, masterSeedLength)
		if _, err := rand.Read(seed); err != nil {
			return errors.Wrap(err, "failed to generate master seed")
		}

		s.payload = &Payload{
			MasterSeed: hex.EncodeToString(seed),
			NextIndex:  0,
		}

		if err := s.persistLocked(); err != nil {
			return err
		}

		log.Info().Str("path", s.path).Msg("Created new keystore")
		return nil
	}

	var file File
	if err := json.Unmarshal(raw, &file); err != nil {
		return errors.Wrap(err, "failed to parse keystore file")
	}

	payload, err := decryptPayload(&file, s.passphrase)
	if err != nil {
		return err
	}

	s.payload = payload
	log.Info().Str("path", s.path).Int("keys", len(payload.Keys)).Msg("Opened keystore")

	return nil
}

func (s *service) MasterSeed() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	seed, err := hex.DecodeString(s.payload.MasterSeed)
	if err != nil {
		return nil
	}
	return seed
}

func (s *service) NextDerivationIndex(_ context.Context) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.payload.NextIndex
	s.payload.NextIndex++

	if err := s.persistLocked(); err != nil {
		s.payload.NextIndex = index
		return 0, err
	}

	return index, nil
}

func (s *service) Keys(_ context.Context) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Record(nil), s.payload.Keys...)
}

func (s *service) Put(ctx context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := util.LogFromContext(ctx)

	replaced := false
	for i, existing := range s.payload.Keys {
		if existing.ID == record.ID {
			s.payload.Keys[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		s.payload.Keys = append(s.payload.Keys, record)
	}

	if err := s.persistLocked(); err != nil {
		return err
	}

	log.Debug().Str("key_id", record.ID.String()).Str("name", record.Name).Msg("Stored key record")
	return nil
}

func (s *service) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.payload.Keys {
		if existing.ID == id {
			s.payload.Keys = append(s.payload.Keys[:i], s.payload.Keys[i+1:]...)
			return true, s.persistLocked()
		}
	}

	return false, nil
}

// persistLocked re-encrypts and atomically replaces the keystore file. The
// caller must hold s.mu.
func (s *service) persistLocked() error {
	file, err := encryptPayload(s.payload, s.passphrase, s.params)
	if err != nil {
		return err
	}

	raw, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal keystore file")
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "failed to create keystore directory")
	}
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return errors.Wrap(err, "failed to write keystore file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "failed to replace keystore file")
	}

	return nil
}
