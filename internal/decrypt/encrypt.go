package decrypt

import (
	"github.com/potatomesh/meshdecode/internal/domain"
	"google.golang.org/protobuf/encoding/protowire"
)

// EncodeData builds a minimal Data message carrying port and payload.
func EncodeData(port domain.PortNum, payload []byte) []byte {
	var b []byte
	b = protowire.AppendTag(b, dataPortField, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(port))
	b = protowire.AppendTag(b, dataPayloadField, protowire.BytesType)
	b = protowire.AppendBytes(b, payload)

	return b
}

// Encrypt applies the packet key stream to plaintext. CTR mode is symmetric,
// so this is also the raw decryption primitive.
func Encrypt(key []byte, packetID uint64, nodeNum uint32, plaintext []byte) ([]byte, error) {
	return xorKeyStream(key, packetID, nodeNum, plaintext)
}
