// Package emit is the client's publish path: feature modules hand it an
// envelope and it PUTs the JSON to the relay's per-room emit endpoint. The
// relay then fans the event back out to every socket in the room, including
// the sender's own.
//
// Publishing is fire-and-forget. Delivery failures are logged and swallowed
// — the surrounding UI state is never rolled back on a failed emit. That is
// long-standing observed behavior, kept on purpose; see DESIGN.md before
// changing it.
package emit
