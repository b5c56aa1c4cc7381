package sign

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github/chapool/go-remotesigner/pkg/custodian"
	"github/chapool/go-remotesigner/pkg/signer"
)

// batchFileItem is one entry of the --batch input file.
type batchFileItem struct {
	// KeyID selects the signing key.
	KeyID uuid.UUID `json:"key_id"`
	// Data is the base64-encoded payload.
	Data string `json:"data"`
	// Prehashed marks Data as an encoded 32-byte sha256 digest.
	Prehashed bool `json:"prehashed,omitempty"`
}

// batchFileResult is one entry of the printed output.
type batchFileResult struct {
	KeyID     uuid.UUID `json:"key_id"`
	Signature string    `json:"signature,omitempty"`
	PublicKey string    `json:"public_key,omitempty"`
	Error     string    `json:"error,omitempty"`
}

func runBatch(ctx context.Context, client *custodian.Client, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read batch file")
	}

	var items []batchFileItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return errors.Wrap(err, "failed to parse batch file")
	}

	requests := make([]signer.BatchRequest, 0, len(items))
	for i, item := range items {
		data, err := base64.StdEncoding.DecodeString(item.Data)
		if err != nil {
			return errors.Wrapf(err, "item %d: data must be base64", i)
		}
		requests = append(requests, signer.BatchRequest{
			KeyID:     item.KeyID,
			Data:      data,
			Prehashed: item.Prehashed,
		})
	}

	outcomes, err := signer.NewBatchCoordinator(client).SignBatch(ctx, requests)
	if err != nil {
		return err
	}

	results := make([]batchFileResult, 0, len(outcomes))
	for _, outcome := range outcomes {
		result := batchFileResult{KeyID: outcome.KeyID}
		if outcome.Err != nil {
			result.Error = outcome.Err.Error()
		} else {
			result.Signature = base64.StdEncoding.EncodeToString(outcome.Signature)
			result.PublicKey = hex.EncodeToString(outcome.PublicKey)
		}
		results = append(results, result)
	}

	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal results")
	}

	_, err = os.Stdout.Write(append(out, '\n'))
	return err
}
