package signer_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github/chapool/go-remotesigner/pkg/signer"
)

func TestErrorFormat(t *testing.T) {
	err := &signer.Error{Kind: signer.KindKeyNotFound, Message: `key "validator-1" not found`}
	require.Equal(t, `key_not_found: key "validator-1" not found`, err.Error())

	batchErr := &signer.Error{Kind: signer.KindBatchFailed, Failed: 3, Total: 3}
	require.Equal(t, "batch_failed: 3 of 3 batch items failed", batchErr.Error())
}

func TestKindOfWrappedError(t *testing.T) {
	inner := &signer.Error{Kind: signer.KindRateLimited, Message: "slow down"}
	wrapped := errors.Wrap(inner, "signing blob payload")

	kind, ok := signer.KindOf(wrapped)
	require.True(t, ok)
	require.Equal(t, signer.KindRateLimited, kind)
	require.True(t, signer.IsKind(wrapped, signer.KindRateLimited))
	require.False(t, signer.IsKind(wrapped, signer.KindNetwork))
}

func TestKindOfForeignError(t *testing.T) {
	_, ok := signer.KindOf(errors.New("plain"))
	require.False(t, ok)
	require.False(t, signer.IsKind(nil, signer.KindNetwork))
}
