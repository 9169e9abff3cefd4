package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/SpooderfyBot/room/relay/internal/api"
	"github.com/SpooderfyBot/room/relay/internal/auth"
	"github.com/SpooderfyBot/room/relay/internal/config"
	"github.com/SpooderfyBot/room/relay/internal/hub"
	"github.com/SpooderfyBot/room/relay/internal/metrics"
	"github.com/SpooderfyBot/room/relay/internal/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("roomrelay starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"http_port", cfg.Relay.HTTPPort,
		"auth_mode", cfg.Relay.Auth.Mode,
		"room_ttl", cfg.Relay.Room.TTL,
		"seeded_rooms", len(cfg.Relay.Rooms),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Room registry with background TTL eviction.
	st := store.New(cfg.Relay.Room.TTL)
	go st.Run(ctx)

	for _, seed := range cfg.Relay.Rooms {
		st.Put(store.Room{
			ID:         seed.ID,
			Owner:      seed.Owner,
			Title:      seed.Title,
			WebhookURL: seed.WebhookURL(),
			StreamURL:  seed.StreamURL,
		})
		slog.Info("seeded room", "room", seed.ID, "owner", seed.Owner)
	}

	m := metrics.New(func() float64 { return float64(st.Count()) })

	// WebSocket fan-out hub; Run only waits to close sockets on shutdown.
	h := hub.New(st, m)
	go h.Run(ctx)

	authn := auth.New(cfg.Relay.Auth)

	r := chi.NewRouter()
	r.Mount("/api", api.New(st, h, m).Routes(authn.Middleware))
	r.Get("/ws/room/{roomID}", h.ServeHTTP)
	r.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Relay.HTTPPort),
		Handler: r,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Relay.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("roomrelay shutting down")
	srv.Shutdown(context.Background()) //nolint:errcheck
}
