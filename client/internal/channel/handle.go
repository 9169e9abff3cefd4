package channel

import (
	"context"

	"github.com/SpooderfyBot/room/pkg/opcode"
	"github.com/SpooderfyBot/room/pkg/wire"
)

// Handle is the shareable capability feature modules use to talk to the
// connection. Copy it freely — all copies refer to the same engine, which
// lives for the whole session.
type Handle struct {
	eng *engine
}

// Option configures Connect.
type Option func(*options)

type options struct {
	transport Transport
}

// WithTransport replaces the production WebSocket transport. Tests use this
// to drive the engine with scripted events.
func WithTransport(t Transport) Option {
	return func(o *options) { o.transport = t }
}

// Connect starts the engine and opens the first connection attempt. It
// returns immediately; the handshake proceeds asynchronously and its outcome
// arrives at subscribers as a Status. The engine stops when ctx is
// cancelled.
func Connect(ctx context.Context, url string, opts ...Option) Handle {
	o := options{transport: &WebsocketTransport{}}
	for _, opt := range opts {
		opt(&o)
	}

	e := newEngine(url, o.transport)
	go e.run(ctx)
	e.transport.Open(url, e.hooks)

	return Handle{eng: e}
}

// SubscribeToStatus queues a status callback registration for group. It
// takes effect no later than the next inbound event or status transition.
// Re-registering for the same group replaces the previous callback.
func (h Handle) SubscribeToStatus(group GroupID, fn func(Status)) {
	h.eng.pending.pushStatus(statusReg{group: group, fn: fn})
}

// SubscribeToMessage queues a message callback registration for (group, op).
// Same queuing discipline as SubscribeToStatus; last registration per pair
// wins.
func (h Handle) SubscribeToMessage(group GroupID, op opcode.OpCode, fn func(wire.Message)) {
	h.eng.pending.pushMessage(messageReg{group: group, op: op, fn: fn})
}

// Status returns the most recently broadcast connection status, or
// StatusConnecting before the first transport event.
func (h Handle) Status() Status {
	return Status(h.eng.status.Load())
}
