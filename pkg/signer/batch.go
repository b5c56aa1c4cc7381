package signer

import (
	"context"
	"encoding/hex"

	"github.com/google/uuid"
	"github/chapool/go-remotesigner/pkg/custodian"
)

// BatchRequest is one payload of a batch signing run.
type BatchRequest struct {
	// KeyID selects the custodian key to sign with.
	KeyID uuid.UUID
	// Data is the payload to sign.
	Data []byte
	// Prehashed indicates Data is already a 32-byte sha256 digest.
	Prehashed bool
}

// BatchOutcome is the result for one batch request. On success Signature and
// PublicKey are set, otherwise Err is.
type BatchOutcome struct {
	KeyID uuid.UUID
	// Signature is the 64-byte R || S signature.
	Signature []byte
	// PublicKey is the compressed public key of the signing key.
	PublicKey []byte
	Err       error
}

// BatchCoordinator signs many payloads with a single custodian round trip.
type BatchCoordinator struct {
	client *custodian.Client
}

// NewBatchCoordinator builds a coordinator on top of a custodian client.
func NewBatchCoordinator(client *custodian.Client) *BatchCoordinator {
	return &BatchCoordinator{client: client}
}

// SignBatch submits all requests as one aggregated call and reports an
// independent outcome per request, in request order. Custodian results are
// matched back to requests by key identifier, not by position. Individual
// failures land in the outcome's Err field; SignBatch itself fails only when
// the call cannot be made at all or when every single request failed.
func (c *BatchCoordinator) SignBatch(ctx context.Context, requests []BatchRequest) ([]BatchOutcome, error) {
	if len(requests) == 0 {
		return nil, newError(KindInvalidInput, "batch is empty")
	}

	for i, req := range requests {
		if req.Prehashed && len(req.Data) != DigestLength {
			return nil, newError(KindInvalidInput,
				"request %d: prehashed digest must be %d bytes, got %d", i, DigestLength, len(req.Data))
		}
	}

	items := make([]custodian.BatchItem, 0, len(requests))
	for _, req := range requests {
		items = append(items, custodian.BatchItem{
			KeyID:     req.KeyID,
			Data:      req.Data,
			Prehashed: req.Prehashed,
		})
	}

	results, err := c.client.Sign.SignBatch(ctx, items)
	if err != nil {
		return nil, classify(err)
	}

	byKey := make(map[uuid.UUID][]custodian.BatchResult, len(results))
	for _, result := range results {
		byKey[result.KeyID] = append(byKey[result.KeyID], result)
	}

	outcomes := make([]BatchOutcome, 0, len(requests))
	failed := 0
	for _, req := range requests {
		outcome := BatchOutcome{KeyID: req.KeyID}

		queue := byKey[req.KeyID]
		if len(queue) == 0 {
			outcome.Err = newError(KindSigningFailed, "no result for key %s", req.KeyID)
		} else {
			result := queue[0]
			byKey[req.KeyID] = queue[1:]

			switch {
			case result.Err != "":
				outcome.Err = newError(KindSigningFailed, "%s", result.Err)
			case len(result.Signature) != SignatureLength:
				outcome.Err = newError(KindDecode, "invalid signature length: expected %d bytes, got %d",
					SignatureLength, len(result.Signature))
			default:
				publicKey, err := hex.DecodeString(result.PublicKey)
				if err != nil {
					outcome.Err = newError(KindDecode, "invalid public key encoding for key %s", req.KeyID)
				} else {
					outcome.Signature = result.Signature
					outcome.PublicKey = publicKey
				}
			}
		}

		if outcome.Err != nil {
			failed++
		}
		outcomes = append(outcomes, outcome)
	}

	if failed == len(requests) {
		return outcomes, &Error{
			Kind:    KindBatchFailed,
			Message: "all batch requests failed",
			Failed:  failed,
			Total:   len(requests),
		}
	}

	return outcomes, nil
}
