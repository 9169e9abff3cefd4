// Package presence renders the connection's state for the user: a banner
// that shows while the channel is connecting or retrying, confirms a
// successful connect briefly before hiding itself, and stays up for good
// once the retry budget is spent and the session is dead.
package presence
