package emit_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SpooderfyBot/room/client/internal/emit"
	"github.com/SpooderfyBot/room/pkg/opcode"
	"github.com/SpooderfyBot/room/pkg/wire"
)

func TestPublish_PutsEnvelopeToRoomEndpoint(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	env, err := wire.NewEnvelope(opcode.Message, wire.ChatMessage{Username: "a", Avatar: "b", Content: "c"})
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}

	e := emit.New(srv.URL, nil)
	e.Publish(context.Background(), "movie-night", env)

	if gotMethod != http.MethodPut {
		t.Errorf("method: got %s, want PUT", gotMethod)
	}
	if want := "/api/room/movie-night/emit"; gotPath != want {
		t.Errorf("path: got %s, want %s", gotPath, want)
	}

	var sent wire.Envelope
	if err := json.Unmarshal(gotBody, &sent); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if sent.Opcode != opcode.Message {
		t.Errorf("opcode: got %v, want %v", sent.Opcode, opcode.Message)
	}
}

func TestPublish_FailureIsSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	srv.Close() // connection refused from here on

	env, _ := wire.NewEnvelope(opcode.Play, nil)

	// Must not panic and must not surface the failure.
	e := emit.New(srv.URL, nil)
	e.Publish(context.Background(), "movie-night", env)
}

func TestPublish_RelayErrorStatusIsSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "room not found", http.StatusNotFound)
	}))
	defer srv.Close()

	env, _ := wire.NewEnvelope(opcode.Pause, nil)
	e := emit.New(srv.URL, nil)
	e.Publish(context.Background(), "nope", env)
}
