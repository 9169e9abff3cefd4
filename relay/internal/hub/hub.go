package hub

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/SpooderfyBot/room/relay/internal/metrics"
	"github.com/SpooderfyBot/room/relay/internal/store"
)

const (
	// writeTimeout is the deadline for a single write to a member.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod controls how often the relay sends WebSocket ping frames.
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufSize is the per-member outgoing message buffer depth.
	sendBufSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Allow all origins; CORS policy belongs at the reverse proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub manages the WebSocket members of every room and forwards broadcasts
// to them.
type Hub struct {
	store   *store.Store
	metrics *metrics.Metrics

	mu    sync.RWMutex
	rooms map[string]map[*member]struct{}
}

// member is one connected socket.
type member struct {
	id     string
	roomID string
	conn   *websocket.Conn
	send   chan []byte
}

// New creates a Hub over st. Joining a socket counts as room activity.
func New(st *store.Store, m *metrics.Metrics) *Hub {
	return &Hub{
		store:   st,
		metrics: m,
		rooms:   make(map[string]map[*member]struct{}),
	}
}

// Run blocks until ctx is cancelled, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// ServeHTTP upgrades the request to a WebSocket and serves the member. The
// room comes from the {roomID} route parameter; unknown rooms are rejected
// before the upgrade. Blocks until the connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	if _, ok := h.store.Get(roomID); !ok {
		http.Error(w, "unknown room", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		h.metrics.WSErrors.Inc()
		return
	}

	m := &member{
		id:     uuid.NewString(),
		roomID: roomID,
		conn:   conn,
		send:   make(chan []byte, sendBufSize),
	}
	h.register(m)
	defer h.unregister(m)

	slog.Info("hub: member joined", "room", roomID, "member", m.id)

	go m.writePump(h.metrics)
	m.readPump() // blocks until connection closes

	slog.Info("hub: member left", "room", roomID, "member", m.id)
}

// Broadcast forwards data to every member of roomID. The non-blocking sends
// happen under the read lock: unregister closes member channels under the
// write lock, so no channel can be closed while a fan-out is in flight.
func (h *Hub) Broadcast(roomID string, data []byte) {
	var full []*member

	h.mu.RLock()
	for m := range h.rooms[roomID] {
		select {
		case m.send <- data:
		default:
			// Member's outgoing buffer is full, disconnect it.
			full = append(full, m)
		}
	}
	h.mu.RUnlock()

	for _, m := range full {
		h.unregister(m)
	}
}

// Members returns how many sockets are connected to roomID.
func (h *Hub) Members(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// --- internal ---------------------------------------------------------------

func (h *Hub) register(m *member) {
	h.mu.Lock()
	room, ok := h.rooms[m.roomID]
	if !ok {
		room = make(map[*member]struct{})
		h.rooms[m.roomID] = room
	}
	room[m] = struct{}{}
	h.mu.Unlock()

	h.store.Touch(m.roomID)
	h.metrics.RoomMembers.WithLabelValues(m.roomID).Inc()
}

func (h *Hub) unregister(m *member) {
	h.mu.Lock()
	room, ok := h.rooms[m.roomID]
	if ok {
		if _, present := room[m]; present {
			delete(room, m)
			close(m.send)
			h.metrics.RoomMembers.WithLabelValues(m.roomID).Dec()
		}
		if len(room) == 0 {
			delete(h.rooms, m.roomID)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for roomID, room := range h.rooms {
		for m := range room {
			close(m.send)
			delete(room, m)
			h.metrics.RoomMembers.WithLabelValues(roomID).Dec()
		}
		delete(h.rooms, roomID)
	}
}

// writePump drains the member's send channel onto the socket and sends
// periodic ping frames. Runs in its own goroutine per member.
func (m *member) writePump(mx *metrics.Metrics) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		m.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-m.send:
			m.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// Channel was closed (shutdown or member removed).
				m.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := m.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				mx.WSErrors.Inc()
				return
			}

		case <-ticker.C:
			m.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := m.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads frames to process control messages (pong, close) and
// detect disconnects. Inbound data frames are ignored: clients emit through
// the HTTP endpoint, not the socket. Blocks until the connection closes.
func (m *member) readPump() {
	defer m.conn.Close()
	m.conn.SetReadLimit(4096)
	m.conn.SetReadDeadline(time.Now().Add(pongWait))
	m.conn.SetPongHandler(func(string) error {
		m.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := m.conn.ReadMessage(); err != nil {
			break
		}
	}
}
