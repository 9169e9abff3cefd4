package config

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultScheme              = "https"
	DefaultTimeCheckInterval   = 15 * time.Second
	DefaultStatsInterval       = 10 * time.Second
	DefaultStreamCheckInterval = 30 * time.Second
)

// Config is the top-level client configuration. Fields map 1:1 to
// config.example.yaml.
type Config struct {
	Client ClientConfig `yaml:"client"`
}

// ClientConfig holds all room-client settings.
type ClientConfig struct {
	// RelayHost is the relay's host:port.
	RelayHost string `yaml:"relay_host"`

	// Scheme is the HTTP scheme used for the relay: http | https. The
	// WebSocket scheme is derived from it (ws | wss).
	Scheme string `yaml:"scheme"`

	// Room is the room id to join.
	Room string `yaml:"room"`

	// Auth configures how the client authenticates to the relay.
	Auth Auth `yaml:"auth"`

	// TimeCheckInterval controls how often the playback position is
	// reported to the relay.
	TimeCheckInterval time.Duration `yaml:"time_check_interval"`

	// StatsInterval controls how often the relay's metrics endpoint is
	// polled for room stats.
	StatsInterval time.Duration `yaml:"stats_interval"`

	// StreamCheckInterval controls how often the stream-health checker
	// probes the live-stream source.
	StreamCheckInterval time.Duration `yaml:"stream_check_interval"`
}

// Auth specifies how requests to the relay are authenticated.
type Auth struct {
	// Mode is one of: bearer | apikey | none.
	Mode string `yaml:"mode"`

	// Header is the header name the key is sent in — used when Mode ==
	// "apikey".
	Header string `yaml:"header"`

	// KeyEnv names the environment variable holding the API key.
	KeyEnv string `yaml:"key_env"`

	// TokenEnv names the environment variable holding the bearer token.
	TokenEnv string `yaml:"token_env"`
}

// Key returns the API key resolved from the environment, or "" if unset.
func (a Auth) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// Token returns the bearer token resolved from the environment.
func (a Auth) Token() string {
	if a.TokenEnv == "" {
		return ""
	}
	return os.Getenv(a.TokenEnv)
}

// HTTPClient builds an http.Client that injects this auth into every
// outgoing request.
func (a Auth) HTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &authRoundTripper{base: http.DefaultTransport, auth: a},
		Timeout:   timeout,
	}
}

// authRoundTripper injects authentication headers into outgoing requests.
type authRoundTripper struct {
	base http.RoundTripper
	auth Auth
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	switch t.auth.Mode {
	case "apikey":
		req = req.Clone(req.Context())
		req.Header.Set(t.auth.Header, t.auth.Key())
	case "bearer":
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+t.auth.Token())
	}
	return t.base.RoundTrip(req)
}

// RelayHTTPURL returns the relay base URL, e.g. "https://relay:8080".
func (c ClientConfig) RelayHTTPURL() string {
	return fmt.Sprintf("%s://%s", c.Scheme, c.RelayHost)
}

// RelayWSURL returns the room's WebSocket URL, e.g.
// "wss://relay:8080/ws/room/movie-night".
func (c ClientConfig) RelayWSURL() string {
	ws := "ws"
	if c.Scheme == "https" {
		ws = "wss"
	}
	return fmt.Sprintf("%s://%s/ws/room/%s", ws, c.RelayHost, c.Room)
}

// Load reads and parses the YAML config file at path. Missing optional
// fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Client: ClientConfig{
			Scheme:              DefaultScheme,
			TimeCheckInterval:   DefaultTimeCheckInterval,
			StatsInterval:       DefaultStatsInterval,
			StreamCheckInterval: DefaultStreamCheckInterval,
		},
	}
}

func validate(cfg *Config) error {
	c := cfg.Client
	if c.RelayHost == "" {
		return fmt.Errorf("client.relay_host is required")
	}
	if c.Room == "" {
		return fmt.Errorf("client.room is required")
	}
	switch c.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("client.scheme must be http or https, got %q", c.Scheme)
	}
	switch c.Auth.Mode {
	case "bearer", "apikey", "none", "":
	default:
		return fmt.Errorf("client.auth.mode: unknown mode %q", c.Auth.Mode)
	}
	if c.Auth.Mode == "apikey" && c.Auth.Header == "" {
		return fmt.Errorf("client.auth.header is required for apikey mode")
	}
	if c.TimeCheckInterval <= 0 {
		return fmt.Errorf("client.time_check_interval must be positive")
	}
	if c.StatsInterval <= 0 {
		return fmt.Errorf("client.stats_interval must be positive")
	}
	if c.StreamCheckInterval <= 0 {
		return fmt.Errorf("client.stream_check_interval must be positive")
	}
	return nil
}
