package channel

// Status is the connection state reported to status subscribers.
type Status int

const (
	// StatusConnecting is the initial state before the first transport event
	// arrives. It is never broadcast — subscribers only ever receive the
	// three states below.
	StatusConnecting Status = iota

	// StatusConnected means the transport handshake completed.
	StatusConnected

	// StatusDisconnected means the transport closed and the engine will
	// retry (or is waiting, if the first connect never succeeded).
	StatusDisconnected

	// StatusClosedPermanently means the retry budget is exhausted. The state
	// is absorbing: the engine never reconnects again.
	StatusClosedPermanently
)

// String returns a short lower-case name for logging.
func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusDisconnected:
		return "disconnected"
	case StatusClosedPermanently:
		return "closed-permanently"
	default:
		return "unknown"
	}
}
