package channel

import (
	"testing"

	"github.com/SpooderfyBot/room/pkg/opcode"
	"github.com/SpooderfyBot/room/pkg/wire"
)

func TestTable_GroupCreatedLazily(t *testing.T) {
	tab := newTable()
	if len(tab.groups) != 0 {
		t.Fatalf("fresh table has %d groups", len(tab.groups))
	}

	sub := tab.group(3)
	if sub == nil {
		t.Fatal("group: got nil")
	}
	if again := tab.group(3); again != sub {
		t.Error("second touch created a new subscriber")
	}
	if len(tab.order) != 1 {
		t.Errorf("order: got %d entries, want 1", len(tab.order))
	}
}

func TestPending_DrainEmptyIsNoop(t *testing.T) {
	tab := newTable()
	p := &pending{}

	p.drainStatus(tab)
	p.drainMessages(tab)

	if len(tab.groups) != 0 {
		t.Errorf("drain of empty queues touched the table: %d groups", len(tab.groups))
	}
}

func TestPending_DrainAppliesFIFO(t *testing.T) {
	tab := newTable()
	p := &pending{}

	var calls []string
	p.pushMessage(messageReg{group: 1, op: opcode.Play, fn: func(wire.Message) { calls = append(calls, "old") }})
	p.pushMessage(messageReg{group: 1, op: opcode.Play, fn: func(wire.Message) { calls = append(calls, "new") }})
	p.drainMessages(tab)

	tab.dispatch(opcode.Play, wire.Message{})
	if len(calls) != 1 || calls[0] != "new" {
		t.Errorf("calls: got %v, want [new]", calls)
	}

	// Queue fully drained: draining again is a no-op.
	p.drainMessages(tab)
	tab.dispatch(opcode.Play, wire.Message{})
	if len(calls) != 2 {
		t.Errorf("calls after redrain: got %v", calls)
	}
}

func TestTable_BroadcastSkipsGroupsWithoutStatusCallback(t *testing.T) {
	tab := newTable()
	tab.group(1) // message-only group, no status callback

	fired := 0
	tab.group(2).onStatus = func(Status) { fired++ }

	tab.broadcastStatus(StatusConnected)
	if fired != 1 {
		t.Errorf("fired: got %d, want 1", fired)
	}
}
