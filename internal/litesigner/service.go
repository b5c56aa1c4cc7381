// Package litesigner is a self-hosted stand-in for the hosted custodian.
// It serves the same HTTP surface backed by an encrypted local keystore, so
// the SDK and CLI can run against a local endpoint.
package litesigner

import (
	"context"
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github/chapool/go-remotesigner/internal/litesigner/keystore"
	"github/chapool/go-remotesigner/internal/util"
	"github/chapool/go-remotesigner/pkg/celestia"
)

// Key is a stored key as exposed over the API. Private material never
// leaves the service.
type Key struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	NamespaceID uuid.UUID         `json:"namespace_id"`
	PublicKey   string            `json:"public_key"`
	Address     string            `json:"address"`
	Algorithm   string            `json:"algorithm"`
	Exportable  bool              `json:"exportable"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// ErrKeyNotFound is returned when no key matches the given id or name.
var ErrKeyNotFound = errors.New("key not found")

// ErrDuplicateName is returned when a key name is already taken within the
// namespace.
var ErrDuplicateName = errors.New("key name already exists in namespace")

// Service manages keys and performs signing.
type Service interface {
	// Initialize opens the keystore and loads every key into memory.
	Initialize(ctx context.Context) error

	// CreateKey generates a random key.
	CreateKey(ctx context.Context, name string, namespaceID uuid.UUID, exportable bool, metadata map[string]string) (*Key, error)

	// CreateBatch derives count sequentially named worker keys from the
	// master seed.
	CreateBatch(ctx context.Context, prefix string, count int, namespaceID uuid.UUID, exportable bool) ([]*Key, error)

	// GetKey fetches a key by identifier.
	GetKey(ctx context.Context, id uuid.UUID) (*Key, error)

	// GetKeyByName fetches a key by name within a namespace.
	GetKeyByName(ctx context.Context, namespaceID uuid.UUID, name string) (*Key, error)

	// ListKeys returns all keys, optionally filtered by namespace.
	ListKeys(ctx context.Context, namespaceID *uuid.UUID) ([]*Key, error)

	// DeleteKey permanently removes a key.
	DeleteKey(ctx context.Context, id uuid.UUID) error

	// Sign signs data with the given key. Non-prehashed data is hashed with
	// sha256 first. The signature is 64 bytes (R || S).
	Sign(ctx context.Context, keyID uuid.UUID, data []byte, prehashed bool) ([]byte, string, error)

	// Verify checks a signature against the key's public key.
	Verify(ctx context.Context, keyID uuid.UUID, data, signature []byte, prehashed bool) (bool, error)

	// DefaultNamespaceID returns the namespace keys land in when the caller
	// does not name one.
	DefaultNamespaceID() uuid.UUID
}

type managedKey struct {
	key        *Key
	privateKey *ecdsa.PrivateKey
}

type service struct {
	store       keystore.Service
	namespaceID uuid.UUID

	mu   sync.RWMutex
	keys map[uuid.UUID]*managedKey
}

// NewService creates the key service on top of a keystore.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(store keystore.Service) (Service, error) {
	return &service{
		store:       store,
		namespaceID: defaultNamespaceID(),
		keys:        make(map[uuid.UUID]*managedKey),
	}, nil
}

func (s *service) Initialize(ctx context.Context) error {
	if err := s.store.Initialize(ctx); err != nil {
		return errors.Wrap(err, "failed to initialize keystore")
	}

	log := util.LogFromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.store.Keys(ctx) {
		managed, err := s.materialize(record)
		if err != nil {
			return errors.Wrapf(err, "failed to load key %s", record.ID)
		}
		s.keys[record.ID] = managed
	}

	log.Info().Int("keys", len(s.keys)).Msg("Lite signer key service ready")
	return nil
}

// materialize rebuilds the in-memory private key from a keystore record,
// either from the stored key bytes or by re-deriving from the master seed.
func (s *service) materialize(record keystore.Record) (*managedKey, error) {
	var privateKey *ecdsa.PrivateKey
	var err error

	switch {
	case record.PrivateKey != "":
		privateKey, err = crypto.HexToECDSA(record.PrivateKey)
		if err != nil {
			return nil, errors.Wrap(err, "malformed stored private key")
		}
	case record.DerivationIndex != nil:
		privateKey, err = deriveWorkerKey(s.store.MasterSeed(), *record.DerivationIndex)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("record has neither key material nor derivation index")
	}

	publicKey := crypto.CompressPubkey(&privateKey.PublicKey)
	address, err := celestia.DeriveAddress(publicKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive address")
	}

	return &managedKey{
		key: &Key{
			ID:          record.ID,
			Name:        record.Name,
			NamespaceID: record.NamespaceID,
			PublicKey:   hex.EncodeToString(publicKey),
			Address:     address,
			Algorithm:   "secp256k1",
			Exportable:  record.Exportable,
			Metadata:    record.Metadata,
			CreatedAt:   record.CreatedAt,
		},
		privateKey: privateKey,
	}, nil
}

func (s *service) CreateKey(ctx context.Context, name string, namespaceID uuid.UUID, exportable bool, metadata map[string]string) (*Key, error) {
	if namespaceID == uuid.Nil {
		namespaceID = s.namespaceID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTakenLocked(namespaceID, name) {
		return nil, ErrDuplicateName
	}

	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate key")
	}

	record := keystore.Record{
		ID:          uuid.New(),
		Name:        name,
		NamespaceID: namespaceID,
		PublicKey:   hex.EncodeToString(crypto.CompressPubkey(&privateKey.PublicKey)),
		PrivateKey:  hex.EncodeToString(crypto.FromECDSA(privateKey)),
		Exportable:  exportable,
		Metadata:    metadata,
		CreatedAt:   time.Now().UTC(),
	}

	return s.insertLocked(ctx, record)
}

func (s *service) CreateBatch(ctx context.Context, prefix string, count int, namespaceID uuid.UUID, exportable bool) ([]*Key, error) {
	if count <= 0 {
		return nil, errors.New("count must be positive")
	}
	if namespaceID == uuid.Nil {
		namespaceID = s.namespaceID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]*Key, 0, count)
	for i := 1; i <= count; i++ {
		name := fmt.Sprintf("%s-%d", prefix, i)
		if s.nameTakenLocked(namespaceID, name) {
			return nil, errors.Wrapf(ErrDuplicateName, "%q", name)
		}

		index, err := s.store.NextDerivationIndex(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to reserve derivation index")
		}

		privateKey, err := deriveWorkerKey(s.store.MasterSeed(), index)
		if err != nil {
			return nil, err
		}

		record := keystore.Record{
			ID:              uuid.New(),
			Name:            name,
			NamespaceID:     namespaceID,
			PublicKey:       hex.EncodeToString(crypto.CompressPubkey(&privateKey.PublicKey)),
			DerivationIndex: &index,
			Exportable:      exportable,
			CreatedAt:       time.Now().UTC(),
		}

		key, err := s.insertLocked(ctx, record)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	return keys, nil
}

// insertLocked persists the record and registers it in memory. The caller
// must hold s.mu.
func (s *service) insertLocked(ctx context.Context, record keystore.Record) (*Key, error) {
	managed, err := s.materialize(record)
	if err != nil {
		return nil, err
	}

	if err := s.store.Put(ctx, record); err != nil {
		return nil, errors.Wrap(err, "failed to persist key")
	}

	s.keys[record.ID] = managed
	return managed.key, nil
}

func (s *service) nameTakenLocked(namespaceID uuid.UUID, name string) bool {
	for _, managed := range s.keys {
		if managed.key.NamespaceID == namespaceID && managed.key.Name == name {
			return true
		}
	}
	return false
}

func (s *service) GetKey(_ context.Context, id uuid.UUID) (*Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	managed, ok := s.keys[id]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return managed.key, nil
}

func (s *service) GetKeyByName(_ context.Context, namespaceID uuid.UUID, name string) (*Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, managed := range s.keys {
		if managed.key.NamespaceID == namespaceID && managed.key.Name == name {
			return managed.key, nil
		}
	}
	return nil, ErrKeyNotFound
}

func (s *service) ListKeys(_ context.Context, namespaceID *uuid.UUID) ([]*Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]*Key, 0, len(s.keys))
	for _, managed := range s.keys {
		if namespaceID != nil && managed.key.NamespaceID != *namespaceID {
			continue
		}
		keys = append(keys, managed.key)
	}

	sortKeysByCreation(keys)
	return keys, nil
}

func (s *service) DeleteKey(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.keys[id]; !ok {
		return ErrKeyNotFound
	}

	if _, err := s.store.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "failed to delete key")
	}

	delete(s.keys, id)
	return nil
}

func (s *service) Sign(_ context.Context, keyID uuid.UUID, data []byte, prehashed bool) ([]byte, string, error) {
	s.mu.RLock()
	managed, ok := s.keys[keyID]
	s.mu.RUnlock()
	if !ok {
		return nil, "", ErrKeyNotFound
	}

	digest, err := digestFor(data, prehashed)
	if err != nil {
		return nil, "", err
	}

	sig, err := crypto.Sign(digest, managed.privateKey)
	if err != nil {
		return nil, "", errors.Wrap(err, "signing failed")
	}

	// strip the recovery byte, signatures travel as R || S
	return sig[:64], managed.key.PublicKey, nil
}

func (s *service) Verify(_ context.Context, keyID uuid.UUID, data, signature []byte, prehashed bool) (bool, error) {
	s.mu.RLock()
	managed, ok := s.keys[keyID]
	s.mu.RUnlock()
	if !ok {
		return false, ErrKeyNotFound
	}

	digest, err := digestFor(data, prehashed)
	if err != nil {
		return false, err
	}

	if len(signature) != 64 {
		return false, nil
	}

	publicKey := crypto.CompressPubkey(&managed.privateKey.PublicKey)
	return crypto.VerifySignature(publicKey, digest, signature), nil
}

func (s *service) DefaultNamespaceID() uuid.UUID {
	return s.namespaceID
}

func digestFor(data []byte, prehashed bool) ([]byte, error) {
	if prehashed {
		if len(data) != sha256.Size {
			return nil, errors.Errorf("prehashed digest must be %d bytes, got %d", sha256.Size, len(data))
		}
		return data, nil
	}

	digest := sha256.Sum256(data)
	return digest[:], nil
}

func sortKeysByCreation(keys []*Key) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CreatedAt.Equal(keys[j].CreatedAt) {
			return keys[i].Name < keys[j].Name
		}
		return keys[i].CreatedAt.Before(keys[j].CreatedAt)
	})
}
