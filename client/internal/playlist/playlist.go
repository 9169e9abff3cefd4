package playlist

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/SpooderfyBot/room/client/internal/channel"
	"github.com/SpooderfyBot/room/pkg/opcode"
	"github.com/SpooderfyBot/room/pkg/wire"
)

// Extractor resolves a track the playback engine cannot open directly
// (magnet links, .torrent files) into one with a playable stream URL.
type Extractor interface {
	Extract(ctx context.Context, track wire.Track) (wire.Track, error)
}

// Publisher sends an envelope to the room. Satisfied by emit.Emitter.
type Publisher interface {
	Publish(ctx context.Context, roomID string, env wire.Envelope)
}

// needsExtraction reports whether url must go through the extractor before
// the playback engine can open it.
func needsExtraction(url string) bool {
	return strings.HasPrefix(url, "magnet:") || strings.HasSuffix(url, ".torrent")
}

// playEntry pairs a playable track with the queued track it came from, so a
// removal can find the matching queued entry even after extraction rewrote
// the URL.
type playEntry struct {
	track  wire.Track
	source wire.Track
}

// Playlist is the shared track queue feature module.
type Playlist struct {
	roomID    string
	publisher Publisher
	extractor Extractor

	mu        sync.Mutex
	queued    []wire.Track
	playQueue []playEntry
	onUpdate  func()
}

// New creates the playlist and registers its opcode handlers on the channel
// under group.
func New(ch channel.Handle, group channel.GroupID, roomID string, publisher Publisher, extractor Extractor) *Playlist {
	p := &Playlist{
		roomID:    roomID,
		publisher: publisher,
		extractor: extractor,
	}

	ch.SubscribeToMessage(group, opcode.Next, func(wire.Message) { p.applyNext() })
	ch.SubscribeToMessage(group, opcode.Prev, func(wire.Message) { p.applyPrev() })
	ch.SubscribeToMessage(group, opcode.AddTrack, p.receiveAdd)
	ch.SubscribeToMessage(group, opcode.RemoveTrack, func(wire.Message) { p.applyRemoveCurrent() })
	ch.SubscribeToMessage(group, opcode.SyncTracks, p.receiveSync)
	ch.SubscribeToMessage(group, opcode.SetBulkTracks, p.receiveSetBulk)

	return p
}

// OnUpdate sets the hook invoked after each state change. It runs on
// whichever goroutine applied the change and must not block.
func (p *Playlist) OnUpdate(fn func()) {
	p.mu.Lock()
	p.onUpdate = fn
	p.mu.Unlock()
}

// Current returns the track at the head of the play queue.
func (p *Playlist) Current() (wire.Track, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.playQueue) == 0 {
		return wire.Track{}, false
	}
	return p.playQueue[0].track, true
}

// Queued returns a copy of the room's track list.
func (p *Playlist) Queued() []wire.Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]wire.Track(nil), p.queued...)
}

// PlayQueue returns a copy of the extracted play queue, head first.
func (p *Playlist) PlayQueue() []wire.Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]wire.Track, len(p.playQueue))
	for i, e := range p.playQueue {
		out[i] = e.track
	}
	return out
}

// --- operations ---

// Next advances to the following track. With publish set it only emits the
// event; the rotation happens when the relay echoes it back.
func (p *Playlist) Next(ctx context.Context, publish bool) {
	if publish {
		p.emit(ctx, opcode.Next, nil)
		return
	}
	p.applyNext()
}

// Prev steps back to the previous track. Same publish discipline as Next.
func (p *Playlist) Prev(ctx context.Context, publish bool) {
	if publish {
		p.emit(ctx, opcode.Prev, nil)
		return
	}
	p.applyPrev()
}

// Append adds track to the end of the queue.
func (p *Playlist) Append(ctx context.Context, track wire.Track, publish bool) {
	if publish {
		p.emit(ctx, opcode.AddTrack, track)
		return
	}
	p.applyAdd(track)
}

// RemoveCurrent drops the track at the head of the play queue.
func (p *Playlist) RemoveCurrent(ctx context.Context, publish bool) {
	if publish {
		p.emit(ctx, opcode.RemoveTrack, nil)
		return
	}
	p.applyRemoveCurrent()
}

// Sync replaces the whole queue with tracks.
func (p *Playlist) Sync(ctx context.Context, tracks []wire.Track, publish bool) {
	if publish {
		p.emit(ctx, opcode.SyncTracks, wire.TrackList{Tracks: tracks})
		return
	}
	p.applySync(tracks)
}

// SetBulk appends a batch of tracks in one event.
func (p *Playlist) SetBulk(ctx context.Context, tracks []wire.Track, publish bool) {
	if publish {
		p.emit(ctx, opcode.SetBulkTracks, wire.TrackList{Tracks: tracks})
		return
	}
	p.applySetBulk(tracks)
}

func (p *Playlist) emit(ctx context.Context, op opcode.OpCode, payload any) {
	env, err := wire.NewEnvelope(op, payload)
	if err != nil {
		slog.Error("playlist: encode event", "opcode", op, "err", err)
		return
	}
	p.publisher.Publish(ctx, p.roomID, env)
}

// --- inbound handlers ---

func (p *Playlist) receiveAdd(msg wire.Message) {
	var track wire.Track
	if err := msg.Decode(&track); err != nil {
		slog.Warn("playlist: dropping malformed ADD_TRACK payload", "err", err)
		return
	}
	p.applyAdd(track)
}

func (p *Playlist) receiveSync(msg wire.Message) {
	var list wire.TrackList
	if err := msg.Decode(&list); err != nil {
		slog.Warn("playlist: dropping malformed SYNC_TRACKS payload", "err", err)
		return
	}
	p.applySync(list.Tracks)
}

func (p *Playlist) receiveSetBulk(msg wire.Message) {
	var list wire.TrackList
	if err := msg.Decode(&list); err != nil {
		slog.Warn("playlist: dropping malformed SET_BULK_TRACKS payload", "err", err)
		return
	}
	p.applySetBulk(list.Tracks)
}

// --- state routines ---

// applyNext rotates the play queue forward: the head goes to the back.
func (p *Playlist) applyNext() {
	p.mu.Lock()
	if len(p.playQueue) > 1 {
		head := p.playQueue[0]
		copy(p.playQueue, p.playQueue[1:])
		p.playQueue[len(p.playQueue)-1] = head
	}
	fn := p.onUpdate
	p.mu.Unlock()
	p.notify(fn)
}

// applyPrev rotates the play queue the other way: the back becomes the head.
func (p *Playlist) applyPrev() {
	p.mu.Lock()
	if len(p.playQueue) > 1 {
		tail := p.playQueue[len(p.playQueue)-1]
		copy(p.playQueue[1:], p.playQueue)
		p.playQueue[0] = tail
	}
	fn := p.onUpdate
	p.mu.Unlock()
	p.notify(fn)
}

func (p *Playlist) applyAdd(track wire.Track) {
	playable, ok := p.resolve(track)

	p.mu.Lock()
	p.queued = append(p.queued, track)
	if ok {
		p.playQueue = append(p.playQueue, playable)
	}
	fn := p.onUpdate
	p.mu.Unlock()
	p.notify(fn)
}

func (p *Playlist) applyRemoveCurrent() {
	p.mu.Lock()
	if len(p.playQueue) > 0 {
		removed := p.playQueue[0]
		p.playQueue = append(p.playQueue[:0], p.playQueue[1:]...)
		for i, tr := range p.queued {
			if tr == removed.source {
				p.queued = append(p.queued[:i], p.queued[i+1:]...)
				break
			}
		}
	}
	fn := p.onUpdate
	p.mu.Unlock()
	p.notify(fn)
}

func (p *Playlist) applySync(tracks []wire.Track) {
	playable := p.resolveAll(tracks)

	p.mu.Lock()
	p.queued = append([]wire.Track(nil), tracks...)
	p.playQueue = playable
	fn := p.onUpdate
	p.mu.Unlock()
	p.notify(fn)
}

func (p *Playlist) applySetBulk(tracks []wire.Track) {
	playable := p.resolveAll(tracks)

	p.mu.Lock()
	p.queued = append(p.queued, tracks...)
	p.playQueue = append(p.playQueue, playable...)
	fn := p.onUpdate
	p.mu.Unlock()
	p.notify(fn)
}

// resolve turns a queued track into a playable one. Tracks the extractor
// cannot resolve stay in the queued list but are kept out of the play queue.
func (p *Playlist) resolve(track wire.Track) (playEntry, bool) {
	if !needsExtraction(track.URL) {
		return playEntry{track: track, source: track}, true
	}
	if p.extractor == nil {
		slog.Warn("playlist: no extractor for track", "title", track.Title)
		return playEntry{}, false
	}
	out, err := p.extractor.Extract(context.Background(), track)
	if err != nil {
		slog.Warn("playlist: extraction failed", "title", track.Title, "err", err)
		return playEntry{}, false
	}
	return playEntry{track: out, source: track}, true
}

func (p *Playlist) resolveAll(tracks []wire.Track) []playEntry {
	out := make([]playEntry, 0, len(tracks))
	for _, tr := range tracks {
		if entry, ok := p.resolve(tr); ok {
			out = append(out, entry)
		}
	}
	return out
}

func (p *Playlist) notify(fn func()) {
	if fn != nil {
		fn()
	}
}
