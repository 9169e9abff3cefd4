package player

import (
	"context"
	"log/slog"
	"sync"

	"github.com/SpooderfyBot/room/client/internal/channel"
	"github.com/SpooderfyBot/room/pkg/opcode"
	"github.com/SpooderfyBot/room/pkg/wire"
)

// driftTolerance is how many seconds the local position may lag or lead a
// TIME_CHECK before the player snaps to the reported position.
const driftTolerance = 3

// seekTolerance absorbs the echo of our own SEEK: a remote seek landing
// within this many seconds of where we already are is ignored.
const seekTolerance = 1

// Engine is the external playback capability: the thing that actually
// renders video. Implementations must tolerate redundant calls.
type Engine interface {
	Play()
	Pause()
	SeekTo(position int)
	Position() int
}

// Publisher sends an envelope to the room. Satisfied by emit.Emitter.
type Publisher interface {
	Publish(ctx context.Context, roomID string, env wire.Envelope)
}

// Player is the playback feature module.
type Player struct {
	roomID    string
	publisher Publisher
	engine    Engine

	mu       sync.Mutex
	playing  bool
	onUpdate func()
}

// New creates the player and registers its opcode handlers on the channel
// under group.
func New(ch channel.Handle, group channel.GroupID, roomID string, publisher Publisher, engine Engine) *Player {
	p := &Player{
		roomID:    roomID,
		publisher: publisher,
		engine:    engine,
	}

	ch.SubscribeToMessage(group, opcode.Play, func(wire.Message) { p.applyPlay() })
	ch.SubscribeToMessage(group, opcode.Pause, func(wire.Message) { p.applyPause() })
	ch.SubscribeToMessage(group, opcode.Seek, p.receiveSeek)
	ch.SubscribeToMessage(group, opcode.TimeCheck, p.receiveTimeCheck)

	return p
}

// OnUpdate sets the hook invoked after each state change. It runs on
// whichever goroutine applied the change and must not block.
func (p *Player) OnUpdate(fn func()) {
	p.mu.Lock()
	p.onUpdate = fn
	p.mu.Unlock()
}

// Playing reports the current playback state.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Position returns the engine's current position in seconds.
func (p *Player) Position() int {
	return p.engine.Position()
}

// --- user actions: apply locally first, then publish ---

// Play starts playback and tells the room.
func (p *Player) Play(ctx context.Context) {
	p.applyPlay()
	p.emit(ctx, opcode.Play, nil)
}

// Pause stops playback and tells the room.
func (p *Player) Pause(ctx context.Context) {
	p.applyPause()
	p.emit(ctx, opcode.Pause, nil)
}

// Seek jumps to position (seconds) and tells the room.
func (p *Player) Seek(ctx context.Context, position int) {
	p.applySeek(position, 0)
	p.emit(ctx, opcode.Seek, wire.SeekTo{Position: position})
}

func (p *Player) emit(ctx context.Context, op opcode.OpCode, payload any) {
	env, err := wire.NewEnvelope(op, payload)
	if err != nil {
		slog.Error("player: encode event", "opcode", op, "err", err)
		return
	}
	p.publisher.Publish(ctx, p.roomID, env)
}

// --- inbound handlers ---

func (p *Player) receiveSeek(msg wire.Message) {
	var to wire.SeekTo
	if err := msg.Decode(&to); err != nil {
		slog.Warn("player: dropping malformed SEEK payload", "err", err)
		return
	}
	p.applySeek(to.Position, seekTolerance)
}

// receiveTimeCheck compares the reported room position against the local
// one and snaps only when the drift is worth a visible jump.
func (p *Player) receiveTimeCheck(msg wire.Message) {
	var tc wire.TimeCheck
	if err := msg.Decode(&tc); err != nil {
		slog.Warn("player: dropping malformed TIME_CHECK payload", "err", err)
		return
	}
	p.applySeek(tc.Position, driftTolerance)
}

// --- state routines, idempotent against echoes ---

func (p *Player) applyPlay() {
	p.mu.Lock()
	if p.playing {
		p.mu.Unlock()
		return
	}
	p.playing = true
	fn := p.onUpdate
	p.mu.Unlock()

	p.engine.Play()
	if fn != nil {
		fn()
	}
}

func (p *Player) applyPause() {
	p.mu.Lock()
	if !p.playing {
		p.mu.Unlock()
		return
	}
	p.playing = false
	fn := p.onUpdate
	p.mu.Unlock()

	p.engine.Pause()
	if fn != nil {
		fn()
	}
}

func (p *Player) applySeek(position, tolerance int) {
	current := p.engine.Position()
	if abs(current-position) <= tolerance {
		return
	}
	p.engine.SeekTo(position)

	p.mu.Lock()
	fn := p.onUpdate
	p.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
