// Package decrypt recovers Meshtastic Data messages from channel-encrypted
// packets using AES-CTR with the per-packet nonce.
package decrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/potatomesh/meshdecode/internal/channel"
	"github.com/potatomesh/meshdecode/internal/domain"
	"github.com/potatomesh/meshdecode/internal/protowalk"
	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the Meshtastic Data message.
const (
	dataPortField    protowire.Number = 1
	dataPayloadField protowire.Number = 2
)

// ErrUndecodable covers every reason a packet could not be turned into a
// Data message: malformed input, an unusable key or a plaintext that does not
// parse. A wrong key is indistinguishable from a corrupt frame.
var ErrUndecodable = errors.New("packet is undecodable")

// Packet is an encrypted packet together with the identifiers and channel key
// needed to decrypt it.
type Packet struct {
	// Ciphertext is the base64 encoded encrypted payload.
	Ciphertext string
	// PacketID is a non-negative integer or a decimal string.
	PacketID any
	// FromID is the sender as a "!1234abcd" node id.
	FromID string
	// FromNum overrides FromID when set.
	FromNum *int64
	// PSK is the base64 channel key; "AQ==" selects the default key.
	PSK string
}

// Decrypt runs the full pipeline and reports false for any packet that cannot
// be decoded. It never returns a partial result.
func Decrypt(p Packet) (Result, bool) {
	res, err := DecryptDetailed(p)
	if err != nil {
		return Result{}, false
	}

	return res, true
}

// DecryptDetailed is Decrypt with the reason for failure. Every error wraps
// ErrUndecodable.
func DecryptDetailed(p Packet) (Result, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(strings.TrimSpace(p.Ciphertext))
	if err != nil {
		return Result{}, undecodable("decode ciphertext", err)
	}
	key, err := channel.ParsePSK(p.PSK)
	if err != nil {
		return Result{}, undecodable("expand psk", err)
	}
	if !channel.IsCipherKey(key) {
		return Result{}, undecodable("expand psk", fmt.Errorf("%d byte key is not usable for aes", len(key)))
	}
	packetID, err := domain.ParsePacketID(p.PacketID)
	if err != nil {
		return Result{}, undecodable("packet id", err)
	}
	nodeNum, err := domain.ResolveNodeNum(p.FromID, p.FromNum)
	if err != nil {
		return Result{}, undecodable("sender", err)
	}

	return DecryptWithKey(ciphertext, key, packetID, nodeNum)
}

// DecryptWithKey decrypts raw ciphertext with an already expanded key.
func DecryptWithKey(ciphertext, key []byte, packetID uint64, nodeNum uint32) (Result, error) {
	if len(ciphertext) == 0 {
		return Result{}, undecodable("ciphertext", errors.New("empty"))
	}
	plaintext, err := xorKeyStream(key, packetID, nodeNum, ciphertext)
	if err != nil {
		return Result{}, undecodable("aes-ctr", err)
	}

	return ParseData(plaintext)
}

// ParseData extracts the port and payload of a plaintext Data message and,
// for text messages, scores the decoded text. A structurally valid message
// without those fields yields port 0 and an empty payload.
func ParseData(plaintext []byte) (Result, error) {
	if err := protowalk.Validate(plaintext); err != nil {
		return Result{}, undecodable("parse data", err)
	}
	port, _ := protowalk.Varint(plaintext, dataPortField)
	if port > math.MaxInt32 {
		return Result{}, undecodable("parse data", fmt.Errorf("port %d out of range", port))
	}
	payload, _ := protowalk.Bytes(plaintext, dataPayloadField)

	res := Result{
		Port:    domain.PortNum(port),
		Payload: append([]byte{}, payload...),
		Kind:    PayloadBinary,
	}
	if res.Port == domain.PortTextMessage && len(payload) > 0 && utf8.Valid(payload) {
		res.Kind = PayloadText
		res.Body = string(payload)
		res.Score = Confidence(res.Body)
	}

	return res, nil
}

func xorKeyStream(key []byte, packetID uint64, nodeNum uint32, in []byte) ([]byte, error) {
	if !channel.IsCipherKey(key) {
		return nil, fmt.Errorf("key length %d is not 16 or 32 bytes", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init aes: %w", err)
	}
	nonce := Nonce(packetID, nodeNum)
	out := make([]byte, len(in))
	cipher.NewCTR(block, nonce[:]).XORKeyStream(out, in)

	return out, nil
}

func undecodable(stage string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUndecodable, stage, err)
}
