// Package events defines the packets exchanged over the message bus between
// the feed reader, the ingest service and the output writers.
package events

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/potatomesh/meshdecode/internal/decrypt"
)

// EncryptedPacket is one encrypted packet as received from a feed. The JSON
// layout follows the field names used by Meshtastic packet dumps.
type EncryptedPacket struct {
	ID         json.Number `json:"id"`
	FromID     string      `json:"from,omitempty"`
	FromNum    *int64      `json:"from_num,omitempty"`
	Channel    *int        `json:"channel,omitempty"`
	Ciphertext string      `json:"encrypted"`
	// RxTime is the receive time in unix seconds.
	RxTime int64 `json:"rx_time,omitempty"`
}

// UnmarshalJSON accepts the spellings found in Meshtastic dumps: "from" as a
// node id string or a node number, "fromId"/"from_id", "packetId"/"packet_id"
// and "rxTime". Numbers may be JSON numbers or numeric strings.
func (p *EncryptedPacket) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var out EncryptedPacket
	if raw, ok := firstField(fields, "id", "packet_id", "packetId"); ok {
		id, err := numberField("id", raw)
		if err != nil {
			return err
		}
		out.ID = id
	}
	if raw, ok := firstField(fields, "from_num"); ok {
		num, err := intField("from_num", raw)
		if err != nil {
			return err
		}
		out.FromNum = &num
	}
	for _, name := range []string{"fromId", "from_id", "from"} {
		raw, ok := firstField(fields, name)
		if !ok {
			continue
		}
		if raw[0] == '"' {
			if out.FromID == "" {
				if err := json.Unmarshal(raw, &out.FromID); err != nil {
					return fmt.Errorf("decode %s: %w", name, err)
				}
			}
			continue
		}
		num, err := intField(name, raw)
		if err != nil {
			return err
		}
		if out.FromNum == nil {
			out.FromNum = &num
		}
	}
	if raw, ok := firstField(fields, "channel"); ok {
		ch, err := intField("channel", raw)
		if err != nil {
			return err
		}
		v := int(ch)
		out.Channel = &v
	}
	if raw, ok := firstField(fields, "encrypted"); ok {
		if err := json.Unmarshal(raw, &out.Ciphertext); err != nil {
			return fmt.Errorf("decode encrypted: %w", err)
		}
	}
	if raw, ok := firstField(fields, "rx_time", "rxTime"); ok {
		n, err := numberField("rx_time", raw)
		if err != nil {
			return err
		}
		secs, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil {
				return fmt.Errorf("decode rx_time: %w", err)
			}
			secs = int64(f)
		}
		out.RxTime = secs
	}

	*p = out

	return nil
}

func firstField(fields map[string]json.RawMessage, names ...string) (json.RawMessage, bool) {
	for _, name := range names {
		raw := bytes.TrimSpace(fields[name])
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			continue
		}

		return raw, true
	}

	return nil, false
}

// numberField decodes a JSON number or a numeric string.
func numberField(name string, raw json.RawMessage) (json.Number, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("decode %s: %w", name, err)
	}

	return n, nil
}

func intField(name string, raw json.RawMessage) (int64, error) {
	n, err := numberField(name, raw)
	if err != nil {
		return 0, err
	}
	v, err := n.Int64()
	if err != nil {
		return 0, fmt.Errorf("decode %s: %w", name, err)
	}

	return v, nil
}

// PacketID returns the id in the form accepted by decrypt.Packet.
func (p EncryptedPacket) PacketID() any {
	return p.ID
}

// DecodedPacket is an EncryptedPacket recovered with one of the known keys.
type DecodedPacket struct {
	Packet EncryptedPacket `json:"packet"`
	// Channel is the configured name whose key decrypted the packet.
	Channel string `json:"channel"`
	// ChannelHash is the hash of Channel under its key.
	ChannelHash uint8 `json:"channel_hash"`
	// Candidates are dictionary names that share ChannelHash under the key.
	Candidates []string       `json:"candidates,omitempty"`
	Result     decrypt.Result `json:"result"`
	DecodedAt  time.Time      `json:"decoded_at"`
	// Fields holds the full-schema decode of Result.Payload when an
	// external payload decoder is configured and supports the port.
	Fields json.RawMessage `json:"fields,omitempty"`
}

// UndecodablePacket is an EncryptedPacket no configured key could recover.
type UndecodablePacket struct {
	Packet EncryptedPacket `json:"packet"`
	// Attempts is the number of keys that were tried.
	Attempts int    `json:"attempts"`
	Reason   string `json:"reason"`
	// Candidates are dictionary names matching the packet's channel hash
	// under the configured keys.
	Candidates []string `json:"candidates,omitempty"`
}
