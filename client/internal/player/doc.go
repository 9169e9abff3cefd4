// Package player keeps the room's playback state in sync.
//
// The actual video pipeline is an external capability behind the Engine
// interface. User actions apply to the engine immediately (no input lag)
// and then publish, so the relay's echo of our own action must be a no-op:
// every inbound handler checks current state before touching the engine.
//
// Two timers run alongside the event flow: a reporter that periodically
// submits the local playback position to the relay, and a stream health
// checker that probes the live source and asks for a reload when it goes
// away. Both are independent of the connection engine's retry machinery.
package player
