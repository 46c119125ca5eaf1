// Package config loads the client settings from a yaml file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerURL string `yaml:"server_url"`
	WSURL     string `yaml:"ws_url"`
	GameID    string `yaml:"game_id"`
	UserID    string `yaml:"user_id"`
	AuthToken string `yaml:"auth_token"`

	Transport TransportConfig `yaml:"transport"`
	Sequencer SequencerConfig `yaml:"sequencer"`
	Selection SelectionConfig `yaml:"selection"`
	Render    RenderConfig    `yaml:"render"`
	Journal   JournalConfig   `yaml:"journal"`
	History   HistoryConfig   `yaml:"history"`

	ValidateEvents bool `yaml:"validate_events"`
}

type TransportConfig struct {
	HandshakeTimeoutMs int `yaml:"handshake_timeout_ms"`
	ReadTimeoutMs      int `yaml:"read_timeout_ms"`
	RequestTimeoutMs   int `yaml:"request_timeout_ms"`
	MaxBackoffMs       int `yaml:"max_backoff_ms"`
}

type SequencerConfig struct {
	// StallTimeoutMs force-advances an effect that never completes. 0 disables it.
	StallTimeoutMs int `yaml:"stall_timeout_ms"`
}

type SelectionConfig struct {
	CountdownSeconds int `yaml:"countdown_seconds"`
}

type RenderConfig struct {
	EffectMs int `yaml:"effect_ms"`
}

type JournalConfig struct {
	Dir string `yaml:"dir"` // empty disables the journal
}

type HistoryConfig struct {
	DBPath string `yaml:"db_path"` // empty disables the history
}

// Load reads path on top of the defaults. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Normalize()
	return cfg, nil
}

func Defaults() Config {
	return Config{
		ServerURL: "http://localhost:8080",
		Transport: TransportConfig{
			HandshakeTimeoutMs: 5000,
			ReadTimeoutMs:      60000,
			RequestTimeoutMs:   5000,
			MaxBackoffMs:       5000,
		},
		Sequencer: SequencerConfig{StallTimeoutMs: 10000},
		Selection: SelectionConfig{CountdownSeconds: 5},
		Render:    RenderConfig{EffectMs: 250},
	}
}

func (c *Config) Normalize() {
	c.ServerURL = strings.TrimRight(strings.TrimSpace(c.ServerURL), "/")
	c.WSURL = strings.TrimSpace(c.WSURL)
	c.GameID = strings.TrimSpace(c.GameID)
	c.UserID = strings.TrimSpace(c.UserID)
	d := Defaults()
	if c.Transport.HandshakeTimeoutMs <= 0 {
		c.Transport.HandshakeTimeoutMs = d.Transport.HandshakeTimeoutMs
	}
	if c.Transport.ReadTimeoutMs < 0 {
		c.Transport.ReadTimeoutMs = 0
	}
	if c.Transport.RequestTimeoutMs <= 0 {
		c.Transport.RequestTimeoutMs = d.Transport.RequestTimeoutMs
	}
	if c.Transport.MaxBackoffMs <= 0 {
		c.Transport.MaxBackoffMs = d.Transport.MaxBackoffMs
	}
	if c.Sequencer.StallTimeoutMs < 0 {
		c.Sequencer.StallTimeoutMs = 0
	}
	if c.Selection.CountdownSeconds <= 0 {
		c.Selection.CountdownSeconds = d.Selection.CountdownSeconds
	}
	if c.Render.EffectMs < 0 {
		c.Render.EffectMs = 0
	}
}

// Validate checks what a live session needs. Offline commands skip it.
func (c Config) Validate() error {
	if c.GameID == "" {
		return errors.New("game_id is required")
	}
	if strings.ContainsAny(c.GameID, "/?#") {
		return fmt.Errorf("game_id %q: invalid characters", c.GameID)
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server_url %q: want http(s)://host", c.ServerURL)
	}
	if c.WSURL != "" {
		w, err := url.Parse(c.WSURL)
		if err != nil || (w.Scheme != "ws" && w.Scheme != "wss") {
			return fmt.Errorf("ws_url %q: want ws(s)://", c.WSURL)
		}
	}
	return nil
}

// EventsURL is ws_url, or the events endpoint derived from server_url.
func (c Config) EventsURL() string {
	if c.WSURL != "" {
		return c.WSURL
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/games/" + c.GameID + "/events"
	return u.String()
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func (t TransportConfig) HandshakeTimeout() time.Duration { return ms(t.HandshakeTimeoutMs) }
func (t TransportConfig) ReadTimeout() time.Duration      { return ms(t.ReadTimeoutMs) }
func (t TransportConfig) RequestTimeout() time.Duration   { return ms(t.RequestTimeoutMs) }
func (t TransportConfig) MaxBackoff() time.Duration       { return ms(t.MaxBackoffMs) }
func (s SequencerConfig) StallTimeout() time.Duration     { return ms(s.StallTimeoutMs) }
func (r RenderConfig) EffectDuration() time.Duration      { return ms(r.EffectMs) }
