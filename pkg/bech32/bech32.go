// Package bech32 implements the checksummed base32 encoding used for
// Cosmos-style account addresses (BIP-173). It covers exactly what address
// derivation needs: encoding arbitrary bytes under a human-readable prefix,
// plus a decoder used to verify encoder output.
package bech32

import (
	"strings"

	"github.com/pkg/errors"
)

const charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// generator contains the coefficients of the BCH checksum polynomial.
var generator = [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}

// charsetRev maps an ASCII character to its 5-bit value, or -1.
var charsetRev [128]int8

func init() {
	for i := range charsetRev {
		charsetRev[i] = -1
	}
	for i, c := range charset {
		charsetRev[c] = int8(i)
	}
}

// Encode encodes data under the given human-readable prefix. Empty data is
// legal and produces a checksum-only suffix.
func Encode(hrp string, data []byte) (string, error) {
	if err := validateHRP(hrp); err != nil {
		return "", err
	}

	converted := regroup(data)

	values := expandHRP(hrp)
	values = append(values, converted...)
	values = append(values, 0, 0, 0, 0, 0, 0)
	checksum := polymod(values) ^ 1

	var sb strings.Builder
	sb.Grow(len(hrp) + 1 + len(converted) + 6)
	sb.WriteString(hrp)
	sb.WriteByte('1')
	for _, v := range converted {
		sb.WriteByte(charset[v])
	}
	for i := 0; i < 6; i++ {
		sb.WriteByte(charset[(checksum>>uint(5*(5-i)))&0x1f])
	}

	return sb.String(), nil
}

// Decode parses a bech32 string back into its prefix and data bytes. It
// rejects mixed case, malformed separators and checksum mismatches.
func Decode(encoded string) (string, []byte, error) {
	if strings.ToLower(encoded) != encoded && strings.ToUpper(encoded) != encoded {
		return "", nil, errors.New("mixed case encoding")
	}
	encoded = strings.ToLower(encoded)

	sep := strings.LastIndexByte(encoded, '1')
	if sep < 1 {
		return "", nil, errors.New("missing separator")
	}
	if len(encoded)-sep-1 < 6 {
		return "", nil, errors.New("checksum too short")
	}

	hrp := encoded[:sep]
	if err := validateHRP(hrp); err != nil {
		return "", nil, err
	}

	values := make([]byte, 0, len(encoded)-sep-1)
	for _, c := range encoded[sep+1:] {
		if c >= 128 || charsetRev[c] == -1 {
			return "", nil, errors.Errorf("invalid character %q", c)
		}
		values = append(values, byte(charsetRev[c]))
	}

	check := expandHRP(hrp)
	check = append(check, values...)
	if polymod(check) != 1 {
		return "", nil, errors.New("checksum mismatch")
	}

	data, err := degroup(values[:len(values)-6])
	if err != nil {
		return "", nil, err
	}

	return hrp, data, nil
}

// regroup converts 8-bit bytes into 5-bit groups, MSB first, left-padding
// the final partial group with zero bits.
func regroup(data []byte) []byte {
	converted := make([]byte, 0, len(data)*8/5+1)
	acc := uint32(0)
	bits := uint(0)
	for _, b := range data {
		acc = acc<<8 | uint32(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			converted = append(converted, byte(acc>>bits)&0x1f)
		}
	}
	if bits > 0 {
		converted = append(converted, byte(acc<<(5-bits))&0x1f)
	}
	return converted
}

// degroup converts 5-bit groups back into bytes, discarding the padding
// bits of the final group. Non-zero padding means the groups were not
// produced by regroup.
func degroup(groups []byte) ([]byte, error) {
	data := make([]byte, 0, len(groups)*5/8)
	acc := uint32(0)
	bits := uint(0)
	for _, g := range groups {
		acc = acc<<5 | uint32(g)
		bits += 5
		if bits >= 8 {
			bits -= 8
			data = append(data, byte(acc>>bits))
		}
	}
	if bits >= 5 || acc&((1<<bits)-1) != 0 {
		return nil, errors.New("invalid padding")
	}
	return data, nil
}

func expandHRP(hrp string) []byte {
	values := make([]byte, 0, len(hrp)*2+1)
	for i := 0; i < len(hrp); i++ {
		values = append(values, hrp[i]>>5)
	}
	values = append(values, 0)
	for i := 0; i < len(hrp); i++ {
		values = append(values, hrp[i]&0x1f)
	}
	return values
}

func polymod(values []byte) uint32 {
	chk := uint32(1)
	for _, v := range values {
		top := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i := uint(0); i < 5; i++ {
			if (top>>i)&1 == 1 {
				chk ^= generator[i]
			}
		}
	}
	return chk
}

func validateHRP(hrp string) error {
	if len(hrp) == 0 {
		return errors.New("empty human-readable prefix")
	}
	if len(hrp) > 83 {
		return errors.Errorf("human-readable prefix too long: %d characters", len(hrp))
	}
	for i := 0; i < len(hrp); i++ {
		if hrp[i] < 33 || hrp[i] > 126 {
			return errors.Errorf("invalid prefix character at index %d", i)
		}
	}
	return nil
}
