package decrypt

import (
	"encoding/base64"
	"encoding/json"

	"github.com/potatomesh/meshdecode/internal/domain"
)

// PayloadKind tags how a decrypted payload was interpreted.
type PayloadKind int

const (
	PayloadBinary PayloadKind = iota
	PayloadText
)

func (k PayloadKind) String() string {
	if k == PayloadText {
		return "text"
	}

	return "binary"
}

// Result is a successfully decrypted Data message. Text and Score are only
// meaningful when Kind is PayloadText.
type Result struct {
	Port    domain.PortNum
	Payload []byte
	Kind    PayloadKind
	Body    string
	Score   float64
}

// Text returns the decoded text when the payload was interpreted as a text message.
func (r Result) Text() (string, bool) {
	if r.Kind != PayloadText {
		return "", false
	}

	return r.Body, true
}

// Confidence returns the text plausibility score when the payload was
// interpreted as a text message.
func (r Result) Confidence() (float64, bool) {
	if r.Kind != PayloadText {
		return 0, false
	}

	return r.Score, true
}

type resultJSON struct {
	PortNum    int32    `json:"portnum"`
	Port       string   `json:"port"`
	PayloadB64 string   `json:"payload_b64"`
	Text       *string  `json:"text"`
	Confidence *float64 `json:"confidence"`
}

// MarshalJSON renders text and confidence as null for binary payloads.
func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		PortNum:    int32(r.Port),
		Port:       r.Port.String(),
		PayloadB64: base64.StdEncoding.EncodeToString(r.Payload),
	}
	if text, ok := r.Text(); ok {
		score := r.Score
		out.Text = &text
		out.Confidence = &score
	}

	return json.Marshal(out)
}
