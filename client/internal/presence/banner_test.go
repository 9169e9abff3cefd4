package presence_test

import (
	"context"
	"testing"
	"time"

	"github.com/SpooderfyBot/room/client/internal/channel"
	"github.com/SpooderfyBot/room/client/internal/presence"
)

type scriptTransport struct {
	hooks *channel.Hooks
}

func (s *scriptTransport) Open(url string, h *channel.Hooks) {
	s.hooks = h
}

type fixture struct {
	banner  *presence.Banner
	tr      *scriptTransport
	updated chan struct{}
}

func newFixture(t *testing.T, opts ...presence.Option) *fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	f := &fixture{
		tr:      &scriptTransport{},
		updated: make(chan struct{}, 16),
	}
	ch := channel.Connect(ctx, "ws://relay.test/ws/room/x", channel.WithTransport(f.tr))
	f.banner = presence.NewBanner(ch, 3, opts...)
	f.banner.OnUpdate(func() { f.updated <- struct{}{} })
	return f
}

func (f *fixture) waitView(t *testing.T, want presence.View) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if f.banner.View() == want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("view: got %v, want %v", f.banner.View(), want)
		case <-f.updated:
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestBanner_StartsConnecting(t *testing.T) {
	f := newFixture(t)
	if got := f.banner.View(); got != presence.ViewConnecting {
		t.Errorf("initial view: got %v, want connecting", got)
	}
}

func TestBanner_ConnectThenAutoHide(t *testing.T) {
	f := newFixture(t, presence.WithHideDelay(30*time.Millisecond))

	f.tr.hooks.OnOpen()
	f.waitView(t, presence.ViewConnected)
	f.waitView(t, presence.ViewHidden)
}

func TestBanner_DisconnectCancelsHide(t *testing.T) {
	f := newFixture(t, presence.WithHideDelay(50*time.Millisecond))

	f.tr.hooks.OnOpen()
	f.waitView(t, presence.ViewConnected)

	// Drop before the hide timer fires; the banner must come back up as
	// connecting and stay there.
	f.tr.hooks.OnClose()
	f.waitView(t, presence.ViewConnecting)

	time.Sleep(80 * time.Millisecond)
	if got := f.banner.View(); got != presence.ViewConnecting {
		t.Errorf("view after stale hide timer: got %v, want connecting", got)
	}
}

func TestBanner_DeadIsTerminal(t *testing.T) {
	f := newFixture(t, presence.WithHideDelay(10*time.Millisecond))

	f.tr.hooks.OnOpen()
	f.waitView(t, presence.ViewConnected)

	// Burn the whole retry budget.
	for i := 0; i < 4; i++ {
		f.tr.hooks.OnClose()
	}
	f.waitView(t, presence.ViewDead)

	time.Sleep(30 * time.Millisecond)
	if got := f.banner.View(); got != presence.ViewDead {
		t.Errorf("view: got %v, want dead", got)
	}
}

func TestViewString(t *testing.T) {
	tests := []struct {
		view presence.View
		want string
	}{
		{presence.ViewConnecting, "connecting"},
		{presence.ViewConnected, "connected"},
		{presence.ViewHidden, "hidden"},
		{presence.ViewDead, "dead"},
		{presence.View(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.view.String(); got != tt.want {
			t.Errorf("View(%d).String(): got %q, want %q", int(tt.view), got, tt.want)
		}
	}
}
