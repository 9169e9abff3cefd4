// Package auth authenticates REST callers against the configured member
// list and attaches the resolved identity to the request context. The
// WebSocket endpoint is left open: browsers cannot attach headers to a
// socket upgrade, and the hub never trusts the socket for anything but
// delivery.
package auth
