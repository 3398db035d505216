package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidPacketID = errors.New("invalid packet id")

// ParsePacketID normalizes a packet id given as a native integer, a decimal
// string or a json.Number. A float64 is accepted when it holds an integral
// value, as encoding/json produces when decoding into any. Negative,
// fractional and non-numeric values are rejected.
func ParsePacketID(v any) (uint64, error) {
	switch id := v.(type) {
	case uint64:
		return id, nil
	case uint32:
		return uint64(id), nil
	case uint:
		return uint64(id), nil
	case int:
		return nonNegative(int64(id))
	case int64:
		return nonNegative(id)
	case int32:
		return nonNegative(int64(id))
	case float64:
		return integralFloat(id)
	case string:
		return parseDecimalID(id)
	case json.Number:
		return parseDecimalID(id.String())
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidPacketID, v)
	}
}

func nonNegative(v int64) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("%w: negative value %d", ErrInvalidPacketID, v)
	}

	return uint64(v), nil
}

func integralFloat(v float64) (uint64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, fmt.Errorf("%w: non-integral value %v", ErrInvalidPacketID, v)
	}
	if v < 0 || v >= math.Exp2(64) {
		return 0, fmt.Errorf("%w: value %v out of range", ErrInvalidPacketID, v)
	}

	return uint64(v), nil
}

func parseDecimalID(raw string) (uint64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidPacketID)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidPacketID, raw)
		}
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidPacketID, raw, err)
	}

	return id, nil
}
