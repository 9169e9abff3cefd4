package wire

// ChatMessage is the MESSAGE payload. Clients are aware of who they are and
// send themselves to the other members, which is what makes chat peer-to-peer
// from the relay's point of view.
type ChatMessage struct {
	// Username is the member's display name.
	Username string `json:"username"`

	// Avatar is the member's full avatar URL.
	Avatar string `json:"avatar"`

	// Content is the message body.
	Content string `json:"content"`
}

// Track is one queued video: ADD_TRACK's payload and the element type of the
// bulk track payloads.
type Track struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// TrackList is the SYNC_TRACKS and SET_BULK_TRACKS payload.
type TrackList struct {
	Tracks []Track `json:"tracks"`
}

// SeekTo is the SEEK payload: an absolute position in seconds.
type SeekTo struct {
	Position int `json:"position"`
}

// TimeCheck is both the TIME_CHECK payload and the body POSTed to the
// relay's timesubmit endpoint.
type TimeCheck struct {
	Position int `json:"position"`
}

// Identity is the response of the relay's @me endpoint.
type Identity struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// Webhook is the response of the relay's room webhook endpoint.
type Webhook struct {
	URL string `json:"url"`
}

// StreamInfo is the response of the relay's stream URL endpoint.
type StreamInfo struct {
	StreamURL string `json:"stream_url"`
}
