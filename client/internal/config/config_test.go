package config

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func loadFromString(t *testing.T, yaml string) *Config {
	t.Helper()
	cfg, err := loadStringErr(t, yaml)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cfg
}

func loadStringErr(t *testing.T, yaml string) (*Config, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return Load(path)
}

func TestLoad_Valid(t *testing.T) {
	yaml := `
client:
  relay_host: "relay.spooderfy.test:8080"
  scheme: http
  room: movie-night
  time_check_interval: 5s
  auth:
    mode: bearer
    token_env: SPOODERFY_TOKEN
`
	cfg := loadFromString(t, yaml)

	c := cfg.Client
	if c.RelayHost != "relay.spooderfy.test:8080" {
		t.Errorf("relay_host: got %q", c.RelayHost)
	}
	if c.Room != "movie-night" {
		t.Errorf("room: got %q", c.Room)
	}
	if c.TimeCheckInterval != 5*time.Second {
		t.Errorf("time_check_interval: got %v", c.TimeCheckInterval)
	}
	if c.Auth.Mode != "bearer" {
		t.Errorf("auth mode: got %q", c.Auth.Mode)
	}
}

func TestLoad_Defaults(t *testing.T) {
	yaml := `
client:
  relay_host: "relay.spooderfy.test:8080"
  room: movie-night
`
	cfg := loadFromString(t, yaml)

	c := cfg.Client
	if c.Scheme != DefaultScheme {
		t.Errorf("default scheme: got %q, want %q", c.Scheme, DefaultScheme)
	}
	if c.TimeCheckInterval != DefaultTimeCheckInterval {
		t.Errorf("default time_check_interval: got %v", c.TimeCheckInterval)
	}
	if c.StatsInterval != DefaultStatsInterval {
		t.Errorf("default stats_interval: got %v", c.StatsInterval)
	}
	if c.StreamCheckInterval != DefaultStreamCheckInterval {
		t.Errorf("default stream_check_interval: got %v", c.StreamCheckInterval)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing relay_host", "client:\n  room: movie-night\n"},
		{"missing room", "client:\n  relay_host: \"r:1\"\n"},
		{"bad scheme", "client:\n  relay_host: \"r:1\"\n  room: x\n  scheme: gopher\n"},
		{"bad auth mode", "client:\n  relay_host: \"r:1\"\n  room: x\n  auth:\n    mode: voodoo\n"},
		{"apikey without header", "client:\n  relay_host: \"r:1\"\n  room: x\n  auth:\n    mode: apikey\n"},
		{"not yaml", "{{{{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadStringErr(t, tt.yaml); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestRelayURLs(t *testing.T) {
	c := ClientConfig{RelayHost: "relay:8080", Scheme: "https", Room: "movie-night"}
	if got, want := c.RelayHTTPURL(), "https://relay:8080"; got != want {
		t.Errorf("RelayHTTPURL: got %q, want %q", got, want)
	}
	if got, want := c.RelayWSURL(), "wss://relay:8080/ws/room/movie-night"; got != want {
		t.Errorf("RelayWSURL: got %q, want %q", got, want)
	}

	c.Scheme = "http"
	if got, want := c.RelayWSURL(), "ws://relay:8080/ws/room/movie-night"; got != want {
		t.Errorf("RelayWSURL (http): got %q, want %q", got, want)
	}
}

func TestWatch_FiresOnlyWhenConfigChanges(t *testing.T) {
	base := "client:\n  relay_host: \"relay:1\"\n  room: movie-night\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(base), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	reloaded := make(chan *Config, 4)
	go Watch(ctx, path, func(cfg *Config) { reloaded <- cfg }) //nolint:errcheck

	// Give the watcher time to arm before writing.
	time.Sleep(100 * time.Millisecond)

	// A save with identical content must not fire the callback, so the
	// first reload seen must carry the changed host from the second write.
	if err := os.WriteFile(path, []byte(base), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	time.Sleep(200 * time.Millisecond)

	changed := strings.Replace(base, "relay:1", "relay:2", 1)
	if err := os.WriteFile(path, []byte(changed), 0o600); err != nil {
		t.Fatalf("update config: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Client.RelayHost != "relay:2" {
			t.Errorf("reloaded relay_host: got %q, want relay:2", cfg.Client.RelayHost)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestAuth_ResolvesFromEnv(t *testing.T) {
	t.Setenv("TEST_ROOM_TOKEN", "s3cret")
	a := Auth{Mode: "bearer", TokenEnv: "TEST_ROOM_TOKEN"}
	if got := a.Token(); got != "s3cret" {
		t.Errorf("Token: got %q", got)
	}
	if got := (Auth{}).Token(); got != "" {
		t.Errorf("empty TokenEnv: got %q, want empty", got)
	}
}

func TestAuth_HTTPClientInjectsHeaders(t *testing.T) {
	t.Setenv("TEST_ROOM_KEY", "k123")

	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Room-Key")
	}))
	defer srv.Close()

	a := Auth{Mode: "apikey", Header: "X-Room-Key", KeyEnv: "TEST_ROOM_KEY"}
	client := a.HTTPClient(2 * time.Second)
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	if gotHeader != "k123" {
		t.Errorf("header: got %q, want k123", gotHeader)
	}
}
