package chat_test

import (
	"context"
	"testing"
	"time"

	"github.com/SpooderfyBot/room/client/internal/channel"
	"github.com/SpooderfyBot/room/client/internal/chat"
	"github.com/SpooderfyBot/room/pkg/opcode"
	"github.com/SpooderfyBot/room/pkg/wire"
)

// scriptTransport exposes the engine's hooks so tests can play the role of
// the socket.
type scriptTransport struct {
	hooks *channel.Hooks
}

func (s *scriptTransport) Open(url string, h *channel.Hooks) {
	s.hooks = h
}

func (s *scriptTransport) send(t *testing.T, op opcode.OpCode, payload any) {
	t.Helper()
	env, err := wire.NewEnvelope(op, payload)
	if err != nil {
		t.Fatalf("build envelope: %v", err)
	}
	data, err := env.Encode()
	if err != nil {
		t.Fatalf("encode envelope: %v", err)
	}
	s.hooks.OnMessage(data)
}

func TestRoom_AppendsInboundMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr := &scriptTransport{}
	ch := channel.Connect(ctx, "ws://relay.test/ws/room/x", channel.WithTransport(tr))

	room := chat.NewRoom(ch, 1)
	updated := make(chan struct{}, 4)
	room.OnUpdate(func() { updated <- struct{}{} })

	tr.hooks.OnOpen()
	tr.send(t, opcode.Message, wire.ChatMessage{Username: "a", Avatar: "b", Content: "hello"})
	tr.send(t, opcode.Message, wire.ChatMessage{Username: "c", Avatar: "d", Content: "hi"})

	for i := 0; i < 2; i++ {
		select {
		case <-updated:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for message")
		}
	}

	msgs := room.Messages()
	if len(msgs) != 2 {
		t.Fatalf("messages: got %d, want 2", len(msgs))
	}
	if msgs[0].Content != "hello" || msgs[1].Content != "hi" {
		t.Errorf("message order: got %q, %q", msgs[0].Content, msgs[1].Content)
	}
	if msgs[0].Username != "a" || msgs[0].Avatar != "b" {
		t.Errorf("message identity: got %+v", msgs[0])
	}
}

func TestRoom_DropsMalformedPayload(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr := &scriptTransport{}
	ch := channel.Connect(ctx, "ws://relay.test/ws/room/x", channel.WithTransport(tr))

	room := chat.NewRoom(ch, 1)
	updated := make(chan struct{}, 4)
	room.OnUpdate(func() { updated <- struct{}{} })

	tr.hooks.OnOpen()
	// Wrong payload shape for MESSAGE: an array instead of an object.
	tr.hooks.OnMessage([]byte(`{"opcode":5,"payload":[1,2,3]}`))
	tr.send(t, opcode.Message, wire.ChatMessage{Username: "a", Avatar: "b", Content: "ok"})

	select {
	case <-updated:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the well-formed message")
	}

	msgs := room.Messages()
	if len(msgs) != 1 || msgs[0].Content != "ok" {
		t.Fatalf("messages: got %+v, want just the well-formed one", msgs)
	}
}
