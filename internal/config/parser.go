package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultHost      = "localhost"
	DefaultPort      = 7000
	DefaultRoot      = "."
	DefaultEventPath = "/livedev"
)

var (
	ErrInvalidPort      = errors.New("invalid port")
	ErrInvalidEventPath = errors.New("invalid event path")
	ErrInvalidAuth      = errors.New("invalid auth credential")
)

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Host:      DefaultHost,
		Port:      DefaultPort,
		Root:      DefaultRoot,
		Live:      true,
		EventPath: DefaultEventPath,
		Server: &ServerConfig{
			ReadTimeout: 30 * time.Second,
			IdleTimeout: 60 * time.Second,
		},
		Log: &LogConfig{
			Format: "text",
		},
	}
}

// Load reads a key=value config file on top of the defaults. A missing file
// is not an error.
func Load(filePath string) (*Config, error) {
	cfg := Default()
	if filePath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := cfg.parse(string(data)); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", filePath, err)
	}

	return cfg, nil
}

func (c *Config) parse(data string) error {
	lines := strings.Split(data, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("line %d: expected key=value", i+1)
		}

		key, value := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if err := c.set(key, value); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
	}
	return nil
}

func (c *Config) set(key, value string) error {
	switch key {
	case "host":
		c.Host = value
	case "port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidPort, value)
		}
		c.Port = port
	case "root":
		c.Root = value
	case "live":
		c.Live = parseBool(value, c.Live)
	case "fallback":
		c.Fallback = value
	case "event_path":
		c.EventPath = value
	case "metrics":
		c.Metrics = parseBool(value, c.Metrics)
	case "auth":
		c.Auth = value
	case "tls_key":
		c.tls().Key = value
	case "tls_cert":
		c.tls().Cert = value
	case "tls_self_signed":
		c.tls().SelfSigned = parseBool(value, false)
	case "read_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("read_timeout: %w", err)
		}
		c.Server.ReadTimeout = d
	case "idle_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("idle_timeout: %w", err)
		}
		c.Server.IdleTimeout = d
	case "log_format":
		c.Log.Format = value
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	return nil
}

// ApplyEnv overrides fields from LIVEDEV_* environment variables.
func (c *Config) ApplyEnv() error {
	vars := map[string]string{
		"LIVEDEV_HOST":     "host",
		"LIVEDEV_PORT":     "port",
		"LIVEDEV_ROOT":     "root",
		"LIVEDEV_LIVE":     "live",
		"LIVEDEV_FALLBACK": "fallback",
		"LIVEDEV_TLS_KEY":  "tls_key",
		"LIVEDEV_TLS_CERT": "tls_cert",
	}
	for env, key := range vars {
		value, ok := os.LookupEnv(env)
		if !ok {
			continue
		}
		if err := c.set(key, strings.TrimSpace(value)); err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
	}
	return nil
}

// Validate checks values that would otherwise fail late at bind or routing time.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}
	if !strings.HasPrefix(c.EventPath, "/") || c.EventPath == "/" {
		return fmt.Errorf("%w: %q", ErrInvalidEventPath, c.EventPath)
	}
	if c.Auth != "" {
		if user, hash, ok := strings.Cut(c.Auth, ":"); !ok || user == "" || hash == "" {
			return ErrInvalidAuth
		}
	}
	if c.Server == nil {
		c.Server = Default().Server
	}
	if c.Log == nil {
		c.Log = Default().Log
	}
	return nil
}

// Address returns the host:port pair to bind.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *Config) tls() *TLSConfig {
	if c.TLS == nil {
		c.TLS = &TLSConfig{}
	}
	return c.TLS
}

func parseBool(value string, def bool) bool {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return b
}
