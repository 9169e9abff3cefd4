package wire

import (
	"encoding/json"
	"fmt"

	"github.com/SpooderfyBot/room/pkg/opcode"
)

// Envelope is the outer wrapper for every message on the wire, inbound and
// outbound: an opcode plus an optional payload.
type Envelope struct {
	Opcode  opcode.OpCode   `json:"opcode"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope builds an Envelope for op carrying payload. A nil payload
// produces an envelope with no payload field.
func NewEnvelope(op opcode.OpCode, payload any) (Envelope, error) {
	env := Envelope{Opcode: op}
	if payload == nil {
		return env, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("wire: marshal payload for %s: %w", op, err)
	}
	env.Payload = raw
	return env, nil
}

// ParseEnvelope decodes one wire frame. It only validates the outer shape;
// payload decoding is deferred until a subscriber asks for it.
func ParseEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("wire: parse envelope: %w", err)
	}
	return env, nil
}

// Encode renders the envelope to its wire bytes.
func (e Envelope) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("wire: encode envelope %s: %w", e.Opcode, err)
	}
	return data, nil
}

// Message converts the envelope's payload into the value handed to
// subscribers: Empty when there was no payload.
func (e Envelope) Message() Message {
	return Message{raw: e.Payload}
}

// Message is what a subscriber callback receives for one inbound event:
// either empty or a payload whose shape is fixed by the opcode.
type Message struct {
	raw json.RawMessage
}

// NewMessage builds a Message around raw payload bytes. Used by tests and by
// code that synthesizes local events.
func NewMessage(raw json.RawMessage) Message {
	return Message{raw: raw}
}

// Empty reports whether the message carried no payload.
func (m Message) Empty() bool {
	return len(m.raw) == 0 || string(m.raw) == "null"
}

// Decode unmarshals the payload into v. Decoding an empty message is an
// error — callers that accept payload-less events check Empty first.
func (m Message) Decode(v any) error {
	if m.Empty() {
		return fmt.Errorf("wire: decode: message has no payload")
	}
	if err := json.Unmarshal(m.raw, v); err != nil {
		return fmt.Errorf("wire: decode payload: %w", err)
	}
	return nil
}
