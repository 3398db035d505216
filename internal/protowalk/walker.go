// Package protowalk extracts single top-level fields from protobuf messages
// without a compiled schema.
package protowalk

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

var (
	ErrNotFound  = errors.New("field not found")
	ErrMalformed = errors.New("malformed protobuf message")
)

// Capture selects what the walker returns when the target field matches.
type Capture int

const (
	CaptureVarint Capture = iota
	CaptureBytes
)

func (c Capture) String() string {
	switch c {
	case CaptureVarint:
		return "varint"
	case CaptureBytes:
		return "bytes"
	default:
		return fmt.Sprintf("capture(%d)", int(c))
	}
}

func (c Capture) wireType() protowire.Type {
	if c == CaptureBytes {
		return protowire.BytesType
	}

	return protowire.VarintType
}

// Value is a captured field. Only the member matching the requested Capture is set.
type Value struct {
	Uint  uint64
	Bytes []byte
}

// Find scans the top-level fields of buf and returns the first occurrence of
// field num encoded with the wire type implied by mode. Fixed-width fields
// are skipped. Structural problems never panic; they surface as ErrMalformed
// wrapped together with ErrNotFound so callers that only care about presence
// can test for ErrNotFound alone.
func Find(buf []byte, num protowire.Number, mode Capture) (Value, error) {
	var (
		out   Value
		found bool
	)
	err := walk(buf, func(n protowire.Number, typ protowire.Type, v Value) bool {
		if n != num || typ != mode.wireType() {
			return true
		}
		out = v
		found = true

		return false
	})
	if err != nil {
		return Value{}, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if !found {
		return Value{}, ErrNotFound
	}

	return out, nil
}

// Varint returns the value of the first varint-encoded field num in buf.
func Varint(buf []byte, num protowire.Number) (uint64, bool) {
	v, err := Find(buf, num, CaptureVarint)
	if err != nil {
		return 0, false
	}

	return v.Uint, true
}

// Bytes returns the payload of the first length-delimited field num in buf.
// The returned slice aliases buf.
func Bytes(buf []byte, num protowire.Number) ([]byte, bool) {
	v, err := Find(buf, num, CaptureBytes)
	if err != nil {
		return nil, false
	}

	return v.Bytes, true
}

// Validate walks every top-level field of buf and reports whether it is a
// structurally sound message made of varint, fixed and length-delimited fields.
// An empty buffer is a valid (empty) message.
func Validate(buf []byte) error {
	return walk(buf, func(protowire.Number, protowire.Type, Value) bool { return true })
}

// walk visits each top-level field until visit returns false or the buffer is
// exhausted. Group wire types are rejected.
func walk(buf []byte, visit func(protowire.Number, protowire.Type, Value) bool) error {
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return fmt.Errorf("%w: tag: %w", ErrMalformed, protowire.ParseError(n))
		}
		buf = buf[n:]

		var v Value
		switch typ {
		case protowire.VarintType:
			x, m := protowire.ConsumeVarint(buf)
			if m < 0 {
				return fmt.Errorf("%w: field %d varint: %w", ErrMalformed, num, protowire.ParseError(m))
			}
			v.Uint = x
			n = m
		case protowire.Fixed64Type:
			_, m := protowire.ConsumeFixed64(buf)
			if m < 0 {
				return fmt.Errorf("%w: field %d fixed64: %w", ErrMalformed, num, protowire.ParseError(m))
			}
			n = m
		case protowire.Fixed32Type:
			_, m := protowire.ConsumeFixed32(buf)
			if m < 0 {
				return fmt.Errorf("%w: field %d fixed32: %w", ErrMalformed, num, protowire.ParseError(m))
			}
			n = m
		case protowire.BytesType:
			b, m := protowire.ConsumeBytes(buf)
			if m < 0 {
				return fmt.Errorf("%w: field %d bytes: %w", ErrMalformed, num, protowire.ParseError(m))
			}
			v.Bytes = b
			n = m
		default:
			return fmt.Errorf("%w: field %d has unsupported wire type %d", ErrMalformed, num, typ)
		}
		buf = buf[n:]

		if !visit(num, typ, v) {
			return nil
		}
	}

	return nil
}
