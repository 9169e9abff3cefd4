// Package hub fans events out to the WebSocket members of each room. It is
// deliberately dumb: it never interprets the envelopes it forwards, and it
// echoes every broadcast to all sockets in the room including the one the
// event originated from. Suppressing the sender is the clients' problem,
// which they solve by not applying state until their own echo arrives.
package hub
