// Package roomapi wraps the relay's small REST surface: who the current
// user is, the room's chat webhook, the room's live-stream source, and the
// periodic time-check submission. These are plain request/response lookups —
// the realtime traffic lives in the channel package.
package roomapi
