package presence

import (
	"sync"
	"time"

	"github.com/SpooderfyBot/room/client/internal/channel"
)

// defaultHideDelay is how long the connected confirmation stays visible.
const defaultHideDelay = 5 * time.Second

// View is what the banner currently shows.
type View int

const (
	// ViewConnecting shows while the channel is connecting or retrying.
	ViewConnecting View = iota

	// ViewConnected confirms a successful connect, briefly.
	ViewConnected

	// ViewHidden is the steady state of a healthy session.
	ViewHidden

	// ViewDead shows once the channel has closed permanently. It never
	// clears; the user has to start over.
	ViewDead
)

func (v View) String() string {
	switch v {
	case ViewConnecting:
		return "connecting"
	case ViewConnected:
		return "connected"
	case ViewHidden:
		return "hidden"
	case ViewDead:
		return "dead"
	default:
		return "unknown"
	}
}

// Banner tracks the channel status as a view state.
type Banner struct {
	hideDelay time.Duration

	mu       sync.Mutex
	view     View
	epoch    int
	onUpdate func()
}

// Option configures NewBanner.
type Option func(*Banner)

// WithHideDelay overrides how long the connected confirmation shows.
func WithHideDelay(d time.Duration) Option {
	return func(b *Banner) { b.hideDelay = d }
}

// NewBanner creates the banner and registers its status callback on the
// channel under group.
func NewBanner(ch channel.Handle, group channel.GroupID, opts ...Option) *Banner {
	b := &Banner{hideDelay: defaultHideDelay, view: ViewConnecting}
	for _, opt := range opts {
		opt(b)
	}
	ch.SubscribeToStatus(group, b.onStatus)
	return b
}

// OnUpdate sets the hook invoked after each view change. It runs on
// whichever goroutine changed the view and must not block.
func (b *Banner) OnUpdate(fn func()) {
	b.mu.Lock()
	b.onUpdate = fn
	b.mu.Unlock()
}

// View returns the current view state.
func (b *Banner) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.view
}

func (b *Banner) onStatus(s channel.Status) {
	switch s {
	case channel.StatusConnected:
		b.setView(ViewConnected)
		b.scheduleHide()
	case channel.StatusDisconnected:
		b.setView(ViewConnecting)
	case channel.StatusClosedPermanently:
		b.setView(ViewDead)
	}
}

// scheduleHide hides the connected confirmation after the delay, unless the
// status changed again in the meantime. The epoch counter invalidates stale
// timers without having to track them.
func (b *Banner) scheduleHide() {
	b.mu.Lock()
	epoch := b.epoch
	b.mu.Unlock()

	time.AfterFunc(b.hideDelay, func() {
		b.mu.Lock()
		if b.epoch != epoch || b.view != ViewConnected {
			b.mu.Unlock()
			return
		}
		b.view = ViewHidden
		fn := b.onUpdate
		b.mu.Unlock()
		if fn != nil {
			fn()
		}
	})
}

func (b *Banner) setView(v View) {
	b.mu.Lock()
	b.epoch++
	if b.view == v {
		b.mu.Unlock()
		return
	}
	b.view = v
	fn := b.onUpdate
	b.mu.Unlock()
	if fn != nil {
		fn()
	}
}
