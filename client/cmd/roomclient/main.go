package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/SpooderfyBot/room/client/internal/channel"
	"github.com/SpooderfyBot/room/client/internal/chat"
	"github.com/SpooderfyBot/room/client/internal/config"
	"github.com/SpooderfyBot/room/client/internal/emit"
	"github.com/SpooderfyBot/room/client/internal/player"
	"github.com/SpooderfyBot/room/client/internal/playlist"
	"github.com/SpooderfyBot/room/client/internal/presence"
	"github.com/SpooderfyBot/room/client/internal/roomapi"
	"github.com/SpooderfyBot/room/client/internal/stats"
	"github.com/SpooderfyBot/room/pkg/wire"
)

// Subscriber group ids, one per feature module.
const (
	groupPlayer channel.GroupID = iota
	groupChat
	groupPlaylist
	groupPresence
)

const httpTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("roomclient starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"relay", cfg.Client.RelayHost,
		"room", cfg.Client.Room,
		"auth_mode", cfg.Client.Auth.Mode,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	httpClient := cfg.Client.Auth.HTTPClient(httpTimeout)
	apiClient := roomapi.New(cfg.Client.RelayHTTPURL(), httpClient)
	emitter := emit.New(cfg.Client.RelayHTTPURL(), httpClient)

	// The one connection everything shares.
	ch := channel.Connect(ctx, cfg.Client.RelayWSURL())

	banner := presence.NewBanner(ch, groupPresence)
	banner.OnUpdate(func() {
		fmt.Printf("*** connection: %s\n", banner.View())
	})

	chatRoom := chat.NewRoom(ch, groupChat)
	chatRoom.OnUpdate(func() {
		msgs := chatRoom.Messages()
		last := msgs[len(msgs)-1]
		fmt.Printf("<%s> %s\n", last.Username, last.Content)
	})

	composer := chat.NewComposer(cfg.Client.Room, apiClient, emitter, httpClient)
	go composer.Bootstrap(ctx)

	pl := playlist.New(ch, groupPlaylist, cfg.Client.Room, emitter, nil)
	pl.OnUpdate(func() {
		if tr, ok := pl.Current(); ok {
			fmt.Printf("*** now queued first: %s\n", tr.Title)
		}
	})

	eng := newClockEngine()
	pv := player.New(ch, groupPlayer, cfg.Client.Room, emitter, eng)
	go pv.RunReporter(ctx, cfg.Client.TimeCheckInterval, apiClient)

	// Stream health runs against whatever source the relay reports.
	go func() {
		si, err := apiClient.StreamInfo(ctx, cfg.Client.Room)
		if err != nil {
			slog.Warn("stream lookup failed", "err", err)
			return
		}
		if si.StreamURL == "" {
			return
		}
		hc := &player.HealthChecker{
			StreamURL: si.StreamURL,
			Interval:  cfg.Client.StreamCheckInterval,
			OnDown: func() {
				fmt.Println("*** stream went down, waiting for it to come back")
			},
		}
		hc.Run(ctx)
	}()

	poller := stats.NewPoller(cfg.Client.RelayHTTPURL()+"/metrics", cfg.Client.Room, httpClient)
	poller.OnUpdate(func() {
		if snap, ok := poller.Snapshot(); ok {
			slog.Debug("room stats", "members", snap.Members, "rooms", snap.Rooms)
		}
	})
	go poller.Run(ctx, cfg.Client.StatsInterval)

	// Watch config file for hot-reload. Interval changes apply live; a new
	// relay or room still needs a restart to reconnect.
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			poller.SetInterval(updated.Client.StatsInterval)
			slog.Info("config hot-reloaded",
				"relay", updated.Client.RelayHost,
				"stats_interval", updated.Client.StatsInterval)
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	go readCommands(ctx, cfg.Client.Room, composer, pl, pv)

	<-ctx.Done()
	slog.Info("roomclient shutting down")
}

// readCommands turns stdin lines into actions: lines starting with "/" are
// commands, everything else is chat.
func readCommands(ctx context.Context, roomID string, composer *chat.Composer, pl *playlist.Playlist, pv *player.Player) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "/") {
			if !composer.Submit(ctx, line) {
				fmt.Println("*** not sent (still resolving identity?)")
			}
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "/play":
			pv.Play(ctx)
		case "/pause":
			pv.Pause(ctx)
		case "/seek":
			if len(fields) != 2 {
				fmt.Println("usage: /seek <seconds>")
				continue
			}
			pos, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("usage: /seek <seconds>")
				continue
			}
			pv.Seek(ctx, pos)
		case "/next":
			pl.Next(ctx, true)
		case "/prev":
			pl.Prev(ctx, true)
		case "/add":
			if len(fields) < 3 {
				fmt.Println("usage: /add <title> <url>")
				continue
			}
			pl.Append(ctx, wire.Track{
				Title: strings.Join(fields[1:len(fields)-1], " "),
				URL:   fields[len(fields)-1],
			}, true)
		case "/remove":
			pl.RemoveCurrent(ctx, true)
		case "/queue":
			for i, tr := range pl.PlayQueue() {
				fmt.Printf("%2d. %s\n", i+1, tr.Title)
			}
		default:
			fmt.Println("commands: /play /pause /seek /next /prev /add /remove /queue")
		}
	}
}

// clockEngine is the headless playback engine: position advances with wall
// time while playing. It stands in for a real video pipeline so a terminal
// client can still hold up its end of the room's time checks.
type clockEngine struct {
	mu       sync.Mutex
	playing  bool
	position int
	lastTick time.Time
}

func newClockEngine() *clockEngine {
	return &clockEngine{lastTick: time.Now()}
}

func (e *clockEngine) Play() {
	e.mu.Lock()
	e.advance()
	e.playing = true
	e.mu.Unlock()
}

func (e *clockEngine) Pause() {
	e.mu.Lock()
	e.advance()
	e.playing = false
	e.mu.Unlock()
}

func (e *clockEngine) SeekTo(position int) {
	e.mu.Lock()
	e.position = position
	e.lastTick = time.Now()
	e.mu.Unlock()
}

func (e *clockEngine) Position() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.advance()
	return e.position
}

// advance folds elapsed wall time into the position. Callers hold the lock.
func (e *clockEngine) advance() {
	now := time.Now()
	if e.playing {
		e.position += int(now.Sub(e.lastTick).Seconds())
	}
	e.lastTick = now
}
