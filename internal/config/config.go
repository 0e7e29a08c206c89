package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the global ~/.simpchat/config.toml.
type Config struct {
	// ServerURL is the simpchat API base, e.g. "https://chat.example.com".
	ServerURL string `toml:"server_url"`
	// RealtimePath is the websocket hub path on the server.
	// Defaults to "/hub/chat".
	RealtimePath string `toml:"realtime_path"`
	// DefaultSession names the session used when no --session flag is given.
	DefaultSession string `toml:"default_session"`
	// TypingTTLMillis overrides the typing indicator expiry window.
	// Zero means the built-in 3000ms.
	TypingTTLMillis int `toml:"typing_ttl_millis"`
}

// Load reads config from the given path. Returns error if file missing or invalid.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

func (c *Config) applyDefaults() {
	if c.RealtimePath == "" {
		c.RealtimePath = "/hub/chat"
	}
}

func (c *Config) validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("config: server_url is required")
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: invalid server_url %q", c.ServerURL)
	}
	return nil
}
