// Package payload turns the raw payload of a decrypted Data message into
// structured fields using an external full-schema Meshtastic decoder.
package payload

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/potatomesh/meshdecode/internal/domain"
)

var (
	// ErrUnsupportedPort is returned for ports the decoder has no schema for.
	ErrUnsupportedPort = errors.New("unsupported port")
	// ErrDecodeFailed is returned when the decoder ran but rejected the payload.
	ErrDecodeFailed = errors.New("payload decode failed")
)

// Decoded is the structured form of one payload.
type Decoded struct {
	Port   domain.PortNum  `json:"portnum"`
	Type   string          `json:"type"`
	Fields json.RawMessage `json:"payload"`
}

// Decoder decodes payloads of a decrypted Data message.
type Decoder interface {
	Supports(port domain.PortNum) bool
	Decode(ctx context.Context, port domain.PortNum, payload []byte) (Decoded, error)
}

// supportedPorts lists the ports whose schemas the external decoder carries.
var supportedPorts = map[domain.PortNum]struct{}{
	domain.PortPosition:     {},
	domain.PortNodeInfo:     {},
	domain.PortRouting:      {},
	domain.PortTelemetry:    {},
	domain.PortTraceroute:   {},
	domain.PortNeighborInfo: {},
}

// SupportedPorts reports whether port has a schema in the external decoder.
func SupportedPorts(port domain.PortNum) bool {
	_, ok := supportedPorts[port]

	return ok
}

type request struct {
	PortNum    int32  `json:"portnum"`
	PayloadB64 string `json:"payload_b64"`
}

type response struct {
	PortNum *int32          `json:"portnum"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	Error   string          `json:"error"`
}

// ExecDecoder runs Command once per payload, writing a JSON request to its
// stdin and reading a single JSON response from its stdout.
type ExecDecoder struct {
	Command []string
	Timeout time.Duration
	// Env is appended to the child environment when set.
	Env []string
}

func NewExecDecoder(command []string, timeout time.Duration) (*ExecDecoder, error) {
	if len(command) == 0 || strings.TrimSpace(command[0]) == "" {
		return nil, errors.New("payload decoder command is empty")
	}

	return &ExecDecoder{Command: append([]string(nil), command...), Timeout: timeout}, nil
}

func (d *ExecDecoder) Supports(port domain.PortNum) bool {
	return SupportedPorts(port)
}

func (d *ExecDecoder) Decode(ctx context.Context, port domain.PortNum, payload []byte) (Decoded, error) {
	if !d.Supports(port) {
		return Decoded{}, fmt.Errorf("%w: %s", ErrUnsupportedPort, port)
	}
	in, err := json.Marshal(request{PortNum: int32(port), PayloadB64: base64.StdEncoding.EncodeToString(payload)})
	if err != nil {
		return Decoded{}, fmt.Errorf("encode decoder request: %w", err)
	}

	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	// #nosec G204 -- the command comes from the operator's config file.
	cmd := exec.CommandContext(ctx, d.Command[0], d.Command[1:]...)
	if len(d.Env) > 0 {
		cmd.Env = append(cmd.Environ(), d.Env...)
	}
	cmd.Stdin = bytes.NewReader(in)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Decoded{}, fmt.Errorf("run payload decoder: %w", ctxErr)
	}

	var resp response
	if err := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &resp); err != nil {
		if runErr != nil {
			return Decoded{}, fmt.Errorf("run payload decoder: %w: %s", runErr, strings.TrimSpace(stderr.String()))
		}

		return Decoded{}, fmt.Errorf("parse decoder response: %w", err)
	}

	return resp.decoded(port)
}

func (r response) decoded(port domain.PortNum) (Decoded, error) {
	switch {
	case r.Error == "unsupported-port":
		return Decoded{}, fmt.Errorf("%w: %s", ErrUnsupportedPort, port)
	case r.Error != "":
		return Decoded{}, fmt.Errorf("%w: %s", ErrDecodeFailed, r.Error)
	case len(r.Payload) == 0:
		return Decoded{}, fmt.Errorf("%w: response has no payload", ErrDecodeFailed)
	}
	if r.PortNum != nil && domain.PortNum(*r.PortNum) != port {
		return Decoded{}, fmt.Errorf("%w: response is for port %d", ErrDecodeFailed, *r.PortNum)
	}

	return Decoded{Port: port, Type: r.Type, Fields: r.Payload}, nil
}
