// Package opcode defines the closed set of message-type identifiers shared
// by the room client and the relay. Opcodes are stable small integers; they
// are not extensible at runtime. Both sides of the wire must agree on the
// values here, so treat this package as a contract, not an implementation.
package opcode
