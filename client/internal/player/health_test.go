package player_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SpooderfyBot/room/client/internal/player"
)

func TestHealthChecker_FiresOnDownOnce(t *testing.T) {
	var failing atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			http.Error(w, "stream gone", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var mu sync.Mutex
	downs := 0
	hc := &player.HealthChecker{
		StreamURL: srv.URL,
		Interval:  10 * time.Millisecond,
		OnDown: func() {
			mu.Lock()
			downs++
			mu.Unlock()
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		hc.Run(ctx)
	}()

	// Healthy for a while: no OnDown.
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	if downs != 0 {
		mu.Unlock()
		t.Fatal("OnDown fired while stream was healthy")
	}
	mu.Unlock()

	failing.Store(true)
	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		d := downs
		mu.Unlock()
		if d > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for OnDown")
		case <-time.After(5 * time.Millisecond):
		}
	}

	// Stays down: still only one transition.
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	if downs != 1 {
		mu.Unlock()
		t.Fatalf("OnDown fired %d times, want 1", downs)
	}
	mu.Unlock()

	cancel()
	<-done
}
