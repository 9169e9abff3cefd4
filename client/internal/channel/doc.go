// Package channel owns the room's single persistent relay connection and
// fans inbound events out to the feature modules.
//
// Connect opens the transport and returns a Handle — a cheap, shareable
// capability every feature module gets. Modules register one status callback
// and any number of per-opcode message callbacks through the Handle; the
// engine delivers events to them from a single event-loop goroutine, so
// callbacks for one inbound message always run sequentially, in group
// registration order, before the next message is looked at.
//
// Registrations are queued, not applied immediately: a subscription enqueued
// while a dispatch pass is running becomes visible at the next pass (the next
// inbound message or status transition), never retroactively. Re-registering
// the same group/opcode pair replaces the previous callback. There is no
// unsubscribe primitive — a known gap carried over from the original
// behavior, not an oversight to patch around; overwrite the callback instead.
//
// The engine reconnects immediately on abnormal closes, up to three retries.
// Exhausting the budget moves the connection to StatusClosedPermanently,
// which is terminal for the engine instance. A close before the very first
// successful open reports StatusDisconnected without retrying.
package channel
