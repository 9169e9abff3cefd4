package channel

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/SpooderfyBot/room/pkg/wire"
)

// retryLimit is the reconnect budget: after three retries the fourth
// abnormal close closes the connection permanently.
const retryLimit = 3

// eventBufSize bounds the transport→loop queue. The transport blocks when
// it fills, which keeps inbound frames processed head-to-completion in
// arrival order rather than dropped.
const eventBufSize = 64

type eventKind int

const (
	evOpen eventKind = iota
	evClose
	evError
	evMessage
)

type event struct {
	kind eventKind
	err  error
	data []byte
}

// engine owns the transport, the subscriber table and the retry state. All
// of its mutable state is confined to the run loop goroutine; the outside
// world only touches the pending queues and the published status.
type engine struct {
	url       string
	transport Transport

	// hooks is allocated once and reused for every reconnect attempt.
	hooks  *Hooks
	events chan event
	done   chan struct{}

	// status is the last broadcast state, published for Handle.Status.
	status atomic.Int32

	// loop-owned state below; never touched off the run goroutine.
	connectingFirst bool
	retryAttempt    int
	closed          bool
	table           *table
	pending         *pending
}

func newEngine(url string, transport Transport) *engine {
	e := &engine{
		url:             url,
		transport:       transport,
		events:          make(chan event, eventBufSize),
		done:            make(chan struct{}),
		connectingFirst: true,
		table:           newTable(),
		pending:         &pending{},
	}
	e.hooks = &Hooks{
		OnOpen:    func() { e.push(event{kind: evOpen}) },
		OnClose:   func() { e.push(event{kind: evClose}) },
		OnError:   func(err error) { e.push(event{kind: evError, err: err}) },
		OnMessage: func(data []byte) { e.push(event{kind: evMessage, data: data}) },
	}
	return e
}

// push hands a transport event to the run loop. Blocks if the loop is
// behind; gives up silently once the loop has stopped.
func (e *engine) push(ev event) {
	select {
	case e.events <- ev:
	case <-e.done:
	}
}

// run is the engine's event loop. One transport event is processed
// head-to-completion before the next is looked at, which is what gives
// subscribers their ordering guarantees.
func (e *engine) run(ctx context.Context) {
	defer close(e.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-e.events:
			switch ev.kind {
			case evOpen:
				e.onConnect()
			case evClose:
				e.onDisconnect()
			case evError:
				e.onError(ev.err)
			case evMessage:
				e.onMessage(ev.data)
			}
		}
	}
}

// onConnect resets the retry budget and broadcasts Connected. Pending status
// registrations are flushed first, so a module subscribing in the same tick
// as the transition still hears it.
func (e *engine) onConnect() {
	e.connectingFirst = false
	e.retryAttempt = 0

	slog.Info("channel: connected", "url", e.url)

	e.pending.drainStatus(e.table)
	e.setStatus(StatusConnected)
	e.table.broadcastStatus(StatusConnected)
}

// onDisconnect drives the retry state machine: increment the attempt, then
// either reconnect or, once past the budget, give up for good.
func (e *engine) onDisconnect() {
	if e.closed {
		// ClosedPermanently is absorbing.
		return
	}

	e.retryAttempt++

	status := StatusDisconnected
	if e.retryAttempt > retryLimit {
		e.closed = true
		status = StatusClosedPermanently
		slog.Error("channel: retry budget exhausted, closing permanently",
			"url", e.url, "attempts", e.retryAttempt-1)
	} else {
		e.reconnect()
	}

	e.pending.drainStatus(e.table)
	e.setStatus(status)
	e.table.broadcastStatus(status)
}

// reconnect re-opens the transport reusing the engine's one Hooks value.
// It does nothing while the very first connect has never succeeded — a
// failed first attempt is surfaced as Disconnected without retry storming.
func (e *engine) reconnect() {
	if e.connectingFirst {
		return
	}
	slog.Warn("channel: reconnecting", "url", e.url, "attempt", e.retryAttempt)
	e.transport.Open(e.url, e.hooks)
}

func (e *engine) onError(err error) {
	slog.Warn("channel: transport error", "url", e.url, "err", err)
}

// onMessage decodes one inbound frame and fans it out. Undecodable frames
// are logged and dropped — never fatal, never a status change.
func (e *engine) onMessage(data []byte) {
	env, err := wire.ParseEnvelope(data)
	if err != nil {
		slog.Warn("channel: dropping undecodable frame", "err", err)
		return
	}

	e.pending.drainMessages(e.table)
	e.table.dispatch(env.Opcode, env.Message())
}

func (e *engine) setStatus(s Status) {
	e.status.Store(int32(s))
}
