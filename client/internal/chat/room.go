package chat

import (
	"log/slog"
	"sync"

	"github.com/SpooderfyBot/room/client/internal/channel"
	"github.com/SpooderfyBot/room/pkg/opcode"
	"github.com/SpooderfyBot/room/pkg/wire"
)

// Room is the chat message log. It subscribes to MESSAGE events and appends
// every well-formed one, whether it originated remotely or is the echo of a
// message this client published.
type Room struct {
	mu       sync.Mutex
	messages []wire.ChatMessage
	onUpdate func()
}

// NewRoom creates the log and registers it on the channel under group.
func NewRoom(ch channel.Handle, group channel.GroupID) *Room {
	r := &Room{}
	ch.SubscribeToMessage(group, opcode.Message, r.receive)
	return r
}

// OnUpdate sets the hook invoked after each appended message. The hook runs
// on the channel's dispatch goroutine and must not block.
func (r *Room) OnUpdate(fn func()) {
	r.mu.Lock()
	r.onUpdate = fn
	r.mu.Unlock()
}

// Messages returns a copy of the log in arrival order.
func (r *Room) Messages() []wire.ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]wire.ChatMessage, len(r.messages))
	copy(out, r.messages)
	return out
}

func (r *Room) receive(msg wire.Message) {
	var cm wire.ChatMessage
	if err := msg.Decode(&cm); err != nil {
		slog.Warn("chat: dropping malformed message payload", "err", err)
		return
	}

	r.mu.Lock()
	r.messages = append(r.messages, cm)
	fn := r.onUpdate
	r.mu.Unlock()

	if fn != nil {
		fn()
	}
}
