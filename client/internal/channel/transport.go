package channel

import (
	"github.com/gorilla/websocket"
)

// Hooks are the platform event callbacks one connection attempt reports
// through. The engine allocates a single Hooks value and reuses it for every
// reconnect, so a Transport must never retain per-attempt state inside it.
type Hooks struct {
	// OnOpen fires once the handshake completes.
	OnOpen func()

	// OnClose fires when the connection ends, normally or not. It is always
	// the last event of an attempt.
	OnClose func()

	// OnError fires for transport-level failures, before the OnClose that
	// follows them.
	OnError func(err error)

	// OnMessage fires once per received text frame.
	OnMessage func(data []byte)
}

// Transport opens one connection attempt to url and delivers its events
// through h. Open must not block: the handshake proceeds asynchronously and
// a failed dial surfaces as OnError followed by OnClose.
type Transport interface {
	Open(url string, h *Hooks)
}

// WebsocketTransport is the production Transport over gorilla/websocket.
type WebsocketTransport struct {
	// Dialer overrides the dialer; nil uses websocket.DefaultDialer.
	Dialer *websocket.Dialer
}

// Open dials url and pumps received frames into h from a background
// goroutine. The engine never writes on the socket — outbound traffic goes
// through the relay's emit endpoint — so there is no write pump.
func (t *WebsocketTransport) Open(url string, h *Hooks) {
	dialer := t.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	go func() {
		conn, resp, err := dialer.Dial(url, nil)
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		if err != nil {
			h.OnError(err)
			h.OnClose()
			return
		}

		h.OnOpen()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				conn.Close()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					h.OnError(err)
				}
				h.OnClose()
				return
			}
			h.OnMessage(data)
		}
	}()
}
