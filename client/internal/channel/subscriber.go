package channel

import (
	"sync"

	"github.com/SpooderfyBot/room/pkg/opcode"
	"github.com/SpooderfyBot/room/pkg/wire"
)

// GroupID identifies one feature module's bundle of callbacks. Each module
// instance picks its own id; ids must be unique within a session.
type GroupID int

// subscriber is one group's callbacks: at most one status callback and at
// most one message callback per opcode. Last registration wins for both.
type subscriber struct {
	onStatus  func(Status)
	onMessage map[opcode.OpCode]func(wire.Message)
}

func newSubscriber() *subscriber {
	return &subscriber{onMessage: make(map[opcode.OpCode]func(wire.Message))}
}

// table maps group ids to subscribers. It is owned exclusively by the
// engine's event loop — only drain points mutate it, so it needs no lock.
// Groups are tracked in first-registration order to keep broadcast and
// dispatch order deterministic.
type table struct {
	groups map[GroupID]*subscriber
	order  []GroupID
}

func newTable() *table {
	return &table{groups: make(map[GroupID]*subscriber)}
}

// group returns the subscriber for id, creating it on first touch.
func (t *table) group(id GroupID) *subscriber {
	if sub, ok := t.groups[id]; ok {
		return sub
	}
	sub := newSubscriber()
	t.groups[id] = sub
	t.order = append(t.order, id)
	return sub
}

// broadcastStatus invokes every group's status callback. Groups without one
// are skipped silently.
func (t *table) broadcastStatus(status Status) {
	for _, id := range t.order {
		if cb := t.groups[id].onStatus; cb != nil {
			cb(status)
		}
	}
}

// dispatch invokes the callback bound to op in every group that has one, in
// registration order. Opcodes nobody subscribed to are dropped silently.
func (t *table) dispatch(op opcode.OpCode, msg wire.Message) {
	for _, id := range t.order {
		if cb := t.groups[id].onMessage[op]; cb != nil {
			cb(msg)
		}
	}
}

type statusReg struct {
	group GroupID
	fn    func(Status)
}

type messageReg struct {
	group GroupID
	op    opcode.OpCode
	fn    func(wire.Message)
}

// pending holds queued registrations. Feature modules push from any
// goroutine; the event loop drains at its safe points, so registrations
// never race an in-flight dispatch pass.
type pending struct {
	mu       sync.Mutex
	status   []statusReg
	messages []messageReg
}

func (p *pending) pushStatus(r statusReg) {
	p.mu.Lock()
	p.status = append(p.status, r)
	p.mu.Unlock()
}

func (p *pending) pushMessage(r messageReg) {
	p.mu.Lock()
	p.messages = append(p.messages, r)
	p.mu.Unlock()
}

// drainStatus applies every queued status registration to t, FIFO. Draining
// an empty queue is a no-op.
func (p *pending) drainStatus(t *table) {
	p.mu.Lock()
	regs := p.status
	p.status = nil
	p.mu.Unlock()

	for _, r := range regs {
		t.group(r.group).onStatus = r.fn
	}
}

// drainMessages applies every queued message registration to t, FIFO.
func (p *pending) drainMessages(t *table) {
	p.mu.Lock()
	regs := p.messages
	p.messages = nil
	p.mu.Unlock()

	for _, r := range regs {
		t.group(r.group).onMessage[r.op] = r.fn
	}
}
