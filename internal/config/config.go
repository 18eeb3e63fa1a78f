// Package config loads and validates the YAML configuration file and fills
// in defaults.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Sundancer78/proxmox-suits/internal/client"
)

const defaultInterval = 30 * time.Second

// Config is the root of the YAML configuration.
type Config struct {
	Log         LogConfig    `yaml:"log"`
	Interval    Duration     `yaml:"interval"`
	Connections []Connection `yaml:"connections"`
}

type LogConfig struct {
	Level LogLevel `yaml:"level"`
}

type LogLevel string

func (l LogLevel) ToSlogLevel() slog.Level {
	switch strings.ToLower(string(l)) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Connection describes one monitored Proxmox host.
type Connection struct {
	Name        string         `yaml:"name"`
	Backend     client.Backend `yaml:"backend"`
	Host        string         `yaml:"host"`
	Port        int            `yaml:"port"`
	TokenID     string         `yaml:"token_id"`
	TokenSecret string         `yaml:"token_secret"`
	// Node overrides node autodetection (PVE) or the localhost default (PBS).
	Node      string `yaml:"node"`
	VerifySSL bool   `yaml:"verify_ssl"`
}

// Duration is a time.Duration that unmarshals from YAML scalars like "30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		return nil
	}
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration: scalar value required")
	}
	s := strings.TrimSpace(value.Value)
	if s == "" {
		*d = 0
		return nil
	}
	dd, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	*d = Duration(dd)
	return nil
}

func (d Duration) ToDuration() time.Duration {
	return time.Duration(d)
}

// Load reads, defaults, and validates the configuration at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Interval <= 0 {
		c.Interval = Duration(defaultInterval)
	}
	for i := range c.Connections {
		conn := &c.Connections[i]
		if conn.Port == 0 {
			conn.Port = conn.Backend.DefaultPort()
		}
		if conn.Name == "" {
			conn.Name = string(conn.Backend)
		}
	}
}

func (c *Config) validate() error {
	if len(c.Connections) == 0 {
		return fmt.Errorf("config: at least one connection is required")
	}

	seen := make(map[string]bool, len(c.Connections))
	for i, conn := range c.Connections {
		where := fmt.Sprintf("connections[%d]", i)
		if conn.Name != "" {
			where = fmt.Sprintf("connection %q", conn.Name)
		}

		if !conn.Backend.IsValid() {
			return fmt.Errorf("config: %s: backend must be pve or pbs, got %q", where, conn.Backend)
		}
		if strings.TrimSpace(conn.Host) == "" {
			return fmt.Errorf("config: %s: host is required", where)
		}
		if conn.Port < 1 || conn.Port > 65535 {
			return fmt.Errorf("config: %s: port %d out of range", where, conn.Port)
		}
		if strings.TrimSpace(conn.TokenID) == "" || strings.TrimSpace(conn.TokenSecret) == "" {
			return fmt.Errorf("config: %s: token_id and token_secret are required", where)
		}
		if seen[conn.Name] {
			return fmt.Errorf("config: duplicate connection name %q", conn.Name)
		}
		seen[conn.Name] = true
	}
	return nil
}
