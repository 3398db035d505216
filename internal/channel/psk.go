// Package channel implements Meshtastic channel key handling: pre-shared key
// expansion, the one-byte channel hash and reverse lookup of channel names
// from that hash.
package channel

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// DefaultPSK is the base64 alias for the firmware default key.
const DefaultPSK = "AQ=="

var ErrInvalidPSK = errors.New("invalid channel psk")

// defaultKey is the Meshtastic firmware default channel key (alias 1).
var defaultKey = [16]byte{
	0xd4, 0xf1, 0xbb, 0x3a, 0x20, 0x29, 0x07, 0x59,
	0xf0, 0xbc, 0xff, 0xab, 0xcf, 0x4e, 0x69, 0x01,
}

// defaultKey256 backs alias 2: the default key followed by its alias-2 sibling.
var defaultKey256 = [32]byte{
	0xd4, 0xf1, 0xbb, 0x3a, 0x20, 0x29, 0x07, 0x59,
	0xf0, 0xbc, 0xff, 0xab, 0xcf, 0x4e, 0x69, 0x01,
	0xd4, 0xf1, 0xbb, 0x3a, 0x20, 0x29, 0x07, 0x59,
	0xf0, 0xbc, 0xff, 0xab, 0xcf, 0x4e, 0x69, 0x02,
}

// DefaultKey returns a copy of the 16-byte firmware default key.
func DefaultKey() []byte {
	out := make([]byte, len(defaultKey))
	copy(out, defaultKey[:])

	return out
}

// ExpandPSK turns a raw pre-shared key into an AES key. An empty PSK expands
// to an empty key, meaning the channel is not encrypted. Single bytes are
// aliases for built-in keys; shorter keys are zero padded to 16 or 32 bytes.
func ExpandPSK(raw []byte) ([]byte, error) {
	switch n := len(raw); {
	case n == 0:
		return []byte{}, nil
	case n == 1:
		return aliasKey(raw[0])
	case n <= 16:
		return padKey(raw, 16), nil
	case n <= 32:
		return padKey(raw, 32), nil
	default:
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidPSK, n)
	}
}

// DecodePSK decodes a base64 PSK string into raw key bytes.
func DecodePSK(encoded string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("%w: decode base64: %w", ErrInvalidPSK, err)
	}

	return raw, nil
}

// ParsePSK decodes and expands a base64 PSK string.
func ParsePSK(encoded string) ([]byte, error) {
	raw, err := DecodePSK(encoded)
	if err != nil {
		return nil, err
	}

	return ExpandPSK(raw)
}

// IsCipherKey reports whether key has a length usable for AES-128 or AES-256.
func IsCipherKey(key []byte) bool {
	return len(key) == 16 || len(key) == 32
}

func aliasKey(alias byte) ([]byte, error) {
	switch alias {
	case 1:
		return DefaultKey(), nil
	case 2:
		out := make([]byte, len(defaultKey256))
		copy(out, defaultKey256[:])

		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown alias %d", ErrInvalidPSK, alias)
	}
}

func padKey(raw []byte, size int) []byte {
	out := make([]byte, size)
	copy(out, raw)

	return out
}

// KeyLabel names an expanded key without revealing it: "open" for an
// unencrypted channel, "default" for the firmware default key and otherwise
// the first four bytes of its SHA-256 digest in hex.
func KeyLabel(key []byte) string {
	switch {
	case len(key) == 0:
		return "open"
	case bytes.Equal(key, defaultKey[:]):
		return "default"
	}
	sum := sha256.Sum256(key)

	return hex.EncodeToString(sum[:4])
}
