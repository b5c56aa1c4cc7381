package bech32_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github/chapool/go-remotesigner/pkg/bech32"
)

func TestEncodeFixedVectors(t *testing.T) {
	encoded, err := bech32.Encode("celestia", make([]byte, 20))
	require.NoError(t, err)
	require.Equal(t, "celestia1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqzf30as", encoded)
	require.Len(t, encoded, 47)
	require.True(t, strings.HasPrefix(encoded, "celestia1"))
}

func TestEncodeEmptyData(t *testing.T) {
	encoded, err := bech32.Encode("celestia", nil)
	require.NoError(t, err)
	require.Equal(t, "celestia17k5ugq", encoded)

	// BIP-173 vector for hrp "a" and empty data.
	encoded, err = bech32.Encode("a", nil)
	require.NoError(t, err)
	require.Equal(t, "a12uel5l", encoded)
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, hrp := range []string{"celestia", "bc", "cosmos", "a"} {
		for size := 0; size <= 64; size++ {
			data := make([]byte, size)
			_, err := rng.Read(data)
			require.NoError(t, err)

			encoded, err := bech32.Encode(hrp, data)
			require.NoError(t, err)

			gotHRP, gotData, err := bech32.Decode(encoded)
			require.NoError(t, err, "decoder rejected %q", encoded)
			require.Equal(t, hrp, gotHRP)
			require.Equal(t, data, gotData)
		}
	}
}

func TestDecodeValidVectors(t *testing.T) {
	// Valid strings from the BIP-173 test set.
	for _, vector := range []string{
		"A12UEL5L",
		"an83characterlonghumanreadablepartthatcontainsthenumber1andtheexcludedcharactersbio1tt5tgs",
		"abcdef1qpzry9x8gf2tvdw0s3jn54khce6mua7lmqqqxw",
	} {
		_, _, err := bech32.Decode(vector)
		require.NoError(t, err, "expected %q to decode", vector)
	}
}

func TestDecodeRejectsCorruption(t *testing.T) {
	encoded, err := bech32.Encode("celestia", []byte{0xde, 0xad, 0xbe, 0xef})
	require.NoError(t, err)

	// Flip one data character.
	corrupted := []byte(encoded)
	if corrupted[len(corrupted)-8] == 'q' {
		corrupted[len(corrupted)-8] = 'p'
	} else {
		corrupted[len(corrupted)-8] = 'q'
	}
	_, _, err = bech32.Decode(string(corrupted))
	require.Error(t, err)

	_, _, err = bech32.Decode("celestia1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqZF30as")
	require.Error(t, err, "mixed case must be rejected")

	_, _, err = bech32.Decode("noseparator")
	require.Error(t, err)

	_, _, err = bech32.Decode("celestia1qqb")
	require.Error(t, err, "truncated checksum must be rejected")
}

func TestEncodeInvalidPrefix(t *testing.T) {
	_, err := bech32.Encode("", []byte{0x00})
	require.Error(t, err)

	_, err = bech32.Encode("bad\x1fhrp", []byte{0x00})
	require.Error(t, err)

	_, err = bech32.Encode(strings.Repeat("x", 84), []byte{0x00})
	require.Error(t, err)
}
