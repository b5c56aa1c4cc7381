package custodian

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// SignService handles signing operations. Payloads travel base64-encoded;
// signatures come back as 64 raw bytes (R || S).
type SignService struct {
	client *Client
}

// SignResult is the outcome of a single sign operation.
type SignResult struct {
	// KeyID is the key that produced the signature.
	KeyID uuid.UUID
	// Signature holds the raw signature bytes.
	Signature []byte
	// PublicKey is the hex-encoded compressed public key of the signing key.
	PublicKey string
}

// BatchItem is one entry of a batch sign request.
type BatchItem struct {
	// KeyID selects the key to sign with.
	KeyID uuid.UUID
	// Data is the payload to sign.
	Data []byte
	// Prehashed indicates Data is already a 32-byte sha256 digest.
	Prehashed bool
}

// BatchResult is the per-item outcome of a batch sign call. Exactly one of
// Signature or Err is set.
type BatchResult struct {
	KeyID     uuid.UUID
	Signature []byte
	PublicKey string
	// Err is the custodian-reported failure for this item, empty on success.
	Err string
}

// Sign signs data with the given key. When prehashed is false the custodian
// hashes data with sha256 before signing.
func (s *SignService) Sign(ctx context.Context, keyID uuid.UUID, data []byte, prehashed bool) (*SignResult, error) {
	req := struct {
		Data      string `json:"data"`
		Prehashed bool   `json:"prehashed"`
	}{
		Data:      base64.StdEncoding.EncodeToString(data),
		Prehashed: prehashed,
	}

	var resp struct {
		Signature string `json:"signature"`
		PublicKey string `json:"public_key"`
	}

	if err := s.client.post(ctx, fmt.Sprintf("/v1/keys/%s/sign", keyID), req, &resp); err != nil {
		return nil, err
	}

	signature, err := base64.StdEncoding.DecodeString(resp.Signature)
	if err != nil {
		return nil, errors.Wrap(err, "invalid signature encoding")
	}

	return &SignResult{
		KeyID:     keyID,
		Signature: signature,
		PublicKey: resp.PublicKey,
	}, nil
}

// SignBatch submits all items as one aggregated request. The custodian
// reports an independent outcome per item, matched by key identifier; a
// per-item failure never fails the call. Malformed signature encodings do.
func (s *SignService) SignBatch(ctx context.Context, items []BatchItem) ([]BatchResult, error) {
	type wireItem struct {
		KeyID     uuid.UUID `json:"key_id"`
		Data      string    `json:"data"`
		Prehashed bool      `json:"prehashed"`
	}

	req := struct {
		Requests []wireItem `json:"requests"`
	}{
		Requests: make([]wireItem, 0, len(items)),
	}
	for _, item := range items {
		req.Requests = append(req.Requests, wireItem{
			KeyID:     item.KeyID,
			Data:      base64.StdEncoding.EncodeToString(item.Data),
			Prehashed: item.Prehashed,
		})
	}

	var resp struct {
		Signatures []struct {
			KeyID     uuid.UUID `json:"key_id"`
			Signature string    `json:"signature,omitempty"`
			PublicKey string    `json:"public_key,omitempty"`
			Error     string    `json:"error,omitempty"`
		} `json:"signatures"`
	}

	if err := s.client.post(ctx, "/v1/sign/batch", req, &resp); err != nil {
		return nil, err
	}

	results := make([]BatchResult, 0, len(resp.Signatures))
	for _, sig := range resp.Signatures {
		result := BatchResult{
			KeyID:     sig.KeyID,
			PublicKey: sig.PublicKey,
			Err:       sig.Error,
		}

		if sig.Error == "" {
			signature, err := base64.StdEncoding.DecodeString(sig.Signature)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid signature encoding for key %s", sig.KeyID)
			}
			result.Signature = signature
		}

		results = append(results, result)
	}

	return results, nil
}

// Verify checks a signature against the key's public key inside the
// custodian.
func (s *SignService) Verify(ctx context.Context, keyID uuid.UUID, data, signature []byte, prehashed bool) (bool, error) {
	req := struct {
		Data      string `json:"data"`
		Signature string `json:"signature"`
		Prehashed bool   `json:"prehashed"`
	}{
		Data:      base64.StdEncoding.EncodeToString(data),
		Signature: base64.StdEncoding.EncodeToString(signature),
		Prehashed: prehashed,
	}

	var resp struct {
		Valid bool `json:"valid"`
	}

	if err := s.client.post(ctx, fmt.Sprintf("/v1/keys/%s/verify", keyID), req, &resp); err != nil {
		return false, err
	}

	return resp.Valid, nil
}
