package celestia_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github/chapool/go-remotesigner/pkg/celestia"
)

func TestDeriveAddressGoldenVectors(t *testing.T) {
	address, err := celestia.DeriveAddress(make([]byte, 33))
	require.NoError(t, err)
	require.Equal(t, "celestia1988uvdmz2kncg50wkjcjnmvw4nl69lh0rrwhkh", address)

	pubKey := append([]byte{0x02}, bytes.Repeat([]byte{0x01}, 32)...)
	address, err = celestia.DeriveAddress(pubKey)
	require.NoError(t, err)
	require.Equal(t, "celestia1ndvk6ae280lqxd0ndsur2lczvgsjztysx3490g", address)
}

func TestDeriveAddressDeterminism(t *testing.T) {
	pubKey := append([]byte{0x03}, bytes.Repeat([]byte{0xab}, 32)...)

	first, err := celestia.DeriveAddress(pubKey)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := celestia.DeriveAddress(pubKey)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}

	require.True(t, strings.HasPrefix(first, "celestia1"))
	require.Len(t, first, 47)
}

func TestDeriveAddressRejectsWrongLength(t *testing.T) {
	for _, size := range []int{0, 20, 32, 34, 65} {
		_, err := celestia.DeriveAddress(make([]byte, size))
		require.Error(t, err)
		require.True(t, errors.Is(err, celestia.ErrInvalidPublicKey))
	}
}
