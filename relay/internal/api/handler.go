package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/SpooderfyBot/room/pkg/opcode"
	"github.com/SpooderfyBot/room/pkg/wire"
	"github.com/SpooderfyBot/room/relay/internal/auth"
	"github.com/SpooderfyBot/room/relay/internal/metrics"
	"github.com/SpooderfyBot/room/relay/internal/store"
)

// maxEmitBody bounds the accepted envelope size.
const maxEmitBody = 64 << 10

// Broadcaster fans data out to a room's sockets. Satisfied by hub.Hub.
type Broadcaster interface {
	Broadcast(roomID string, data []byte)
}

// Handler implements the REST surface.
type Handler struct {
	store   *store.Store
	hub     Broadcaster
	metrics *metrics.Metrics
}

// New creates the Handler.
func New(st *store.Store, hub Broadcaster, m *metrics.Metrics) *Handler {
	return &Handler{store: st, hub: hub, metrics: m}
}

// Routes returns the /api router with authn applied to every route.
func (h *Handler) Routes(authn func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authn)

	r.Get("/@me", h.whoAmI)
	r.Post("/room", h.createRoom)
	r.Route("/room/{roomID}", func(r chi.Router) {
		r.Put("/emit", h.emit)
		r.Get("/webhook", h.webhook)
		r.Get("/stream", h.stream)
		r.Post("/timesubmit", h.timeSubmit)
	})

	return r
}

func (h *Handler) whoAmI(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		http.Error(w, "no identity", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, id)
}

// createRoomRequest is the POST /api/room body.
type createRoomRequest struct {
	Title      string `json:"title"`
	WebhookURL string `json:"webhook_url"`
	StreamURL  string `json:"stream_url"`
}

// createRoomResponse carries the generated room ID back to the creator.
type createRoomResponse struct {
	ID string `json:"id"`
}

func (h *Handler) createRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}

	id, _ := auth.IdentityFrom(r.Context())
	room := store.Room{
		ID:         uuid.NewString(),
		Owner:      id.Username,
		Title:      req.Title,
		WebhookURL: req.WebhookURL,
		StreamURL:  req.StreamURL,
	}
	h.store.Put(room)

	slog.Info("api: room created", "room", room.ID, "owner", room.Owner, "title", room.Title)
	writeJSON(w, http.StatusCreated, createRoomResponse{ID: room.ID})
}

// emit validates the envelope and fans it out to the room, echoing to every
// socket including the sender's.
func (h *Handler) emit(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	if _, ok := h.store.Get(roomID); !ok {
		http.Error(w, "unknown room", http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxEmitBody))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	env, err := wire.ParseEnvelope(body)
	if err != nil {
		http.Error(w, "malformed envelope", http.StatusBadRequest)
		return
	}
	if !opcode.Valid(env.Opcode) {
		http.Error(w, "unknown opcode", http.StatusBadRequest)
		return
	}

	// Re-encode instead of forwarding raw bytes so every socket sees a
	// canonical frame regardless of what the sender's JSON looked like.
	data, err := env.Encode()
	if err != nil {
		http.Error(w, "encode envelope", http.StatusInternalServerError)
		return
	}

	h.store.Touch(roomID)
	h.metrics.EventsTotal.WithLabelValues(env.Opcode.String()).Inc()
	h.hub.Broadcast(roomID, data)

	slog.Debug("api: event emitted", "room", roomID, "opcode", env.Opcode)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) webhook(w http.ResponseWriter, r *http.Request) {
	room, ok := h.store.Get(chi.URLParam(r, "roomID"))
	if !ok {
		http.Error(w, "unknown room", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, wire.Webhook{URL: room.WebhookURL})
}

func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	room, ok := h.store.Get(chi.URLParam(r, "roomID"))
	if !ok {
		http.Error(w, "unknown room", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, wire.StreamInfo{StreamURL: room.StreamURL})
}

// timeSubmit records the caller's playback position. The owner's position
// is authoritative: it is re-broadcast as a TIME_CHECK so lagging members
// snap to it.
func (h *Handler) timeSubmit(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	room, ok := h.store.Get(roomID)
	if !ok {
		http.Error(w, "unknown room", http.StatusNotFound)
		return
	}

	var tc wire.TimeCheck
	if err := json.NewDecoder(r.Body).Decode(&tc); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}

	id, _ := auth.IdentityFrom(r.Context())
	h.store.SetPosition(roomID, id.Username, tc.Position)

	if id.Username == room.Owner {
		env, err := wire.NewEnvelope(opcode.TimeCheck, tc)
		if err == nil {
			if data, err := env.Encode(); err == nil {
				h.metrics.EventsTotal.WithLabelValues(opcode.TimeCheck.String()).Inc()
				h.hub.Broadcast(roomID, data)
			}
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("api: encode response", "err", err)
	}
}
