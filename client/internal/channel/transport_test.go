package channel_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/SpooderfyBot/room/client/internal/channel"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// startEcho serves a WebSocket endpoint that sends each payload in frames,
// then closes normally.
func startEcho(t *testing.T, frames ...string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		conn.WriteMessage(websocket.CloseMessage, //nolint:errcheck
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebsocketTransport_DeliversFramesThenClose(t *testing.T) {
	url := startEcho(t, `{"opcode":0}`, `{"opcode":1}`)

	events := make(chan string, 8)
	h := &channel.Hooks{
		OnOpen:    func() { events <- "open" },
		OnClose:   func() { events <- "close" },
		OnError:   func(err error) { events <- "error:" + err.Error() },
		OnMessage: func(data []byte) { events <- "msg:" + string(data) },
	}

	tr := &channel.WebsocketTransport{}
	tr.Open(url, h)

	want := []string{"open", `msg:{"opcode":0}`, `msg:{"opcode":1}`, "close"}
	for _, w := range want {
		select {
		case got := <-events:
			if got != w {
				t.Fatalf("event: got %q, want %q", got, w)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q", w)
		}
	}
}

func TestWebsocketTransport_DialFailure_ErrorThenClose(t *testing.T) {
	events := make(chan string, 8)
	h := &channel.Hooks{
		OnOpen:    func() { events <- "open" },
		OnClose:   func() { events <- "close" },
		OnError:   func(err error) { events <- "error" },
		OnMessage: func(data []byte) { events <- "msg" },
	}

	tr := &channel.WebsocketTransport{}
	tr.Open("ws://127.0.0.1:1/ws", h)

	for _, w := range []string{"error", "close"} {
		select {
		case got := <-events:
			if got != w {
				t.Fatalf("event: got %q, want %q", got, w)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %q", w)
		}
	}
}
