package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for the relay configuration.
const (
	DefaultHTTPPort = 8000
	DefaultRoomTTL  = 30 * time.Minute
)

// Config holds the relay configuration parsed from the `relay:` section of
// config.yaml.
type Config struct {
	Relay RelayConfig `yaml:"relay"`
}

// RelayConfig holds all relay settings.
type RelayConfig struct {
	// HTTPPort is the port the REST API, WebSocket hub and metrics listen
	// on (default 8000).
	HTTPPort int `yaml:"http_port"`

	// Room controls room retention.
	Room RoomConfig `yaml:"room"`

	// Auth configures member authentication on the REST surface.
	Auth AuthConfig `yaml:"auth"`

	// Rooms are created at startup, before the first request.
	Rooms []RoomSeed `yaml:"rooms"`
}

// RoomConfig controls in-memory room retention.
type RoomConfig struct {
	// TTL is how long a room survives without activity (an emit, a time
	// submission, or a socket joining). Default: 30m.
	TTL time.Duration `yaml:"ttl"`
}

// AuthConfig controls member authentication.
type AuthConfig struct {
	// Mode is one of: bearer | none. With "none" every caller gets the
	// anonymous identity.
	Mode string `yaml:"mode"`

	// Members maps tokens to identities. Used when Mode == "bearer".
	Members []Member `yaml:"members"`
}

// Member binds one bearer token, resolved from the environment, to the
// identity the relay reports for it.
type Member struct {
	// TokenEnv is the name of the environment variable holding the token.
	TokenEnv string `yaml:"token_env"`

	Username string `yaml:"username"`
	Avatar   string `yaml:"avatar"`
}

// Token returns the member's bearer token resolved from the environment.
func (m Member) Token() string {
	if m.TokenEnv == "" {
		return ""
	}
	return os.Getenv(m.TokenEnv)
}

// RoomSeed describes a room created at startup.
type RoomSeed struct {
	ID    string `yaml:"id"`
	Owner string `yaml:"owner"`
	Title string `yaml:"title"`

	// WebhookURLEnv names the environment variable holding the room's chat
	// mirror webhook. Optional.
	WebhookURLEnv string `yaml:"webhook_url_env"`

	// StreamURL is the room's live-stream source. Optional.
	StreamURL string `yaml:"stream_url"`
}

// WebhookURL returns the seed's webhook resolved from the environment.
func (r RoomSeed) WebhookURL() string {
	if r.WebhookURLEnv == "" {
		return ""
	}
	return os.Getenv(r.WebhookURLEnv)
}

// Load reads and parses the config file at path. Missing fields are filled
// with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("relay config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("relay config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("relay config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Relay: RelayConfig{
			HTTPPort: DefaultHTTPPort,
			Room:     RoomConfig{TTL: DefaultRoomTTL},
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	if cfg.Relay.HTTPPort <= 0 || cfg.Relay.HTTPPort > 65535 {
		return fmt.Errorf("relay.http_port %d is out of range [1, 65535]", cfg.Relay.HTTPPort)
	}
	switch cfg.Relay.Auth.Mode {
	case "bearer", "none", "":
	default:
		return fmt.Errorf("relay.auth.mode %q unknown: want bearer|none", cfg.Relay.Auth.Mode)
	}
	if cfg.Relay.Room.TTL < 0 {
		return fmt.Errorf("relay.room.ttl must not be negative")
	}
	for i, m := range cfg.Relay.Auth.Members {
		if m.TokenEnv == "" {
			return fmt.Errorf("relay.auth.members[%d]: token_env is required", i)
		}
		if m.Username == "" {
			return fmt.Errorf("relay.auth.members[%d]: username is required", i)
		}
	}
	for i, r := range cfg.Relay.Rooms {
		if r.ID == "" {
			return fmt.Errorf("relay.rooms[%d]: id is required", i)
		}
	}
	return nil
}
