package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// BroadcastNodeNum is the destination address of channel-wide packets.
const BroadcastNodeNum = ^uint32(0)

var ErrInvalidNodeID = errors.New("invalid node id")

// NormalizeNodeID trims the id and maps placeholders ("unknown", the
// broadcast address) to the empty string. No packet is sent from those.
func NormalizeNodeID(raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" || strings.EqualFold(v, "unknown") || strings.EqualFold(v, FormatNodeNum(BroadcastNodeNum)) {
		return ""
	}

	return v
}

// ParseNodeID parses a "!1234abcd" style node id. The leading "!" and a
// "0x" prefix are optional; the rest must be hex. Values wider than 32 bits
// are masked to their low 32 bits.
func ParseNodeID(raw string) (uint32, error) {
	v := strings.TrimSpace(raw)
	v = strings.TrimPrefix(v, "!")
	if strings.HasPrefix(v, "0x") || strings.HasPrefix(v, "0X") {
		v = v[2:]
	}
	if v == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNodeID, raw)
	}
	for i := 0; i < len(v); i++ {
		if !isHexDigit(v[i]) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidNodeID, raw)
		}
	}
	// The low 32 bits live in the last eight hex digits.
	if len(v) > 8 {
		v = v[len(v)-8:]
	}
	num, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidNodeID, raw, err)
	}

	return uint32(num), nil
}

// NodeNumFromInt masks a numeric node reference to 32 bits.
func NodeNumFromInt(v int64) uint32 {
	return uint32(uint64(v) & 0xffffffff)
}

// ResolveNodeNum picks the node number for a packet sender. A numeric value
// takes precedence over the textual id when both are present.
func ResolveNodeNum(id string, num *int64) (uint32, error) {
	if num != nil {
		return NodeNumFromInt(*num), nil
	}

	return ParseNodeID(id)
}

// FormatNodeNum renders a node number in canonical "!%08x" form.
func FormatNodeNum(num uint32) string {
	return fmt.Sprintf("!%08x", num)
}

func isHexDigit(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
