package decrypt

import "encoding/binary"

// NonceSize is the AES-CTR initial counter block size.
const NonceSize = 16

// Nonce builds the per-packet counter block: the packet id as 8 little-endian
// bytes, the sender node number as 4 little-endian bytes, then 4 zero bytes.
func Nonce(packetID uint64, nodeNum uint32) [NonceSize]byte {
	var n [NonceSize]byte
	binary.LittleEndian.PutUint64(n[0:8], packetID)
	binary.LittleEndian.PutUint32(n[8:12], nodeNum)

	return n
}
