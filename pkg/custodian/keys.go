package custodian

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// KeysService handles key management operations.
type KeysService struct {
	client *Client
}

// Create creates a new key in a namespace.
func (s *KeysService) Create(ctx context.Context, req CreateKeyRequest) (*Key, error) {
	var key Key
	if err := s.client.post(ctx, "/v1/keys", req, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

// CreateBatch creates multiple sequentially named keys in one call.
func (s *KeysService) CreateBatch(ctx context.Context, req CreateKeyBatchRequest) ([]*Key, error) {
	var resp struct {
		Keys []*Key `json:"keys"`
	}
	if err := s.client.post(ctx, "/v1/keys/batch", req, &resp); err != nil {
		return nil, err
	}
	return resp.Keys, nil
}

// Get fetches a key by its identifier.
func (s *KeysService) Get(ctx context.Context, keyID uuid.UUID) (*Key, error) {
	var key Key
	if err := s.client.get(ctx, fmt.Sprintf("/v1/keys/%s", keyID), &key); err != nil {
		return nil, err
	}
	return &key, nil
}

// GetByName fetches a key by display name within a namespace.
func (s *KeysService) GetByName(ctx context.Context, namespaceID uuid.UUID, name string) (*Key, error) {
	var key Key
	if err := s.client.get(ctx, fmt.Sprintf("/v1/keys/by-name/%s/%s", namespaceID, name), &key); err != nil {
		return nil, err
	}
	return &key, nil
}

// List returns all keys visible to the caller, optionally filtered by
// namespace.
func (s *KeysService) List(ctx context.Context, namespaceID *uuid.UUID) ([]*Key, error) {
	path := "/v1/keys"
	if namespaceID != nil {
		path = fmt.Sprintf("/v1/keys?namespace_id=%s", namespaceID)
	}

	var keys []*Key
	if err := s.client.get(ctx, path, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// Delete permanently deletes a key. The operation is irreversible.
func (s *KeysService) Delete(ctx context.Context, keyID uuid.UUID) error {
	return s.client.delete(ctx, fmt.Sprintf("/v1/keys/%s", keyID))
}
