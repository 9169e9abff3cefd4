// Package metrics defines the relay's Prometheus instrumentation: live
// rooms, members per room, events by opcode and WebSocket failures. The
// client's stats poller reads the same exposition, so the metric names
// here are part of the wire contract.
package metrics
