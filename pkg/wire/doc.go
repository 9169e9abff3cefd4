// Package wire defines the JSON envelope exchanged between room clients and
// the relay, plus the typed payload shapes each opcode carries.
//
// Every frame on the wire is an Envelope:
//
//	{"opcode": 5, "payload": {"username": "a", "avatar": "b", "content": "c"}}
//
// The payload is optional; its shape is fixed per opcode. A payload that
// fails to decode for a recognized opcode is a per-message error, never a
// session-level one.
package wire
