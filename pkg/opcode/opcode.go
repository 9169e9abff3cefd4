package opcode

import "fmt"

// OpCode identifies the semantic type of a room event on the wire.
type OpCode int

const (
	// Play starts playback of the current track for every member.
	Play OpCode = 0

	// Pause halts playback for every member.
	Pause OpCode = 1

	// Seek moves playback to an absolute position in seconds.
	Seek OpCode = 2

	// Next advances the room's play queue by one track.
	Next OpCode = 3

	// Prev moves the room's play queue back one track.
	Prev OpCode = 4

	// Message carries a chat message (username, avatar, content).
	Message OpCode = 5

	// TimeCheck carries the authoritative playback position so members can
	// correct drift.
	TimeCheck OpCode = 6

	// AddTrack appends a track to the room's queued videos.
	AddTrack OpCode = 7

	// RemoveTrack removes the currently selected track.
	RemoveTrack OpCode = 8

	// SyncTracks asks members to replace their queue with the attached one.
	SyncTracks OpCode = 9

	// SetBulkTracks replaces the whole queue in one event.
	SetBulkTracks OpCode = 10
)

// maxOpCode is the highest value in the registry. Anything above it is
// unknown to this build of the client.
const maxOpCode = SetBulkTracks

// Valid reports whether op is part of the registry.
func Valid(op OpCode) bool {
	return op >= Play && op <= maxOpCode
}

var names = map[OpCode]string{
	Play:          "PLAY",
	Pause:         "PAUSE",
	Seek:          "SEEK",
	Next:          "NEXT",
	Prev:          "PREV",
	Message:       "MESSAGE",
	TimeCheck:     "TIME_CHECK",
	AddTrack:      "ADD_TRACK",
	RemoveTrack:   "REMOVE_TRACK",
	SyncTracks:    "SYNC_TRACKS",
	SetBulkTracks: "SET_BULK_TRACKS",
}

// String returns the canonical name of the opcode, or "OPCODE(n)" for values
// outside the registry.
func (op OpCode) String() string {
	if name, ok := names[op]; ok {
		return name
	}
	return fmt.Sprintf("OPCODE(%d)", int(op))
}
