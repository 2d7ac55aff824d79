package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "livedev.conf")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.conf"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
}

func TestLoadParsesKeys(t *testing.T) {
	path := writeConfig(t, `
# development settings
host = 0.0.0.0
port = 8443
root = site
live = false
fallback = index.html
event_path = /__reload
metrics = true
tls_key = server.key
tls_cert = server.crt
read_timeout = 5s
idle_timeout = 2m
log_format = json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 8443, cfg.Port)
	assert.Equal(t, "site", cfg.Root)
	assert.False(t, cfg.Live)
	assert.Equal(t, "index.html", cfg.Fallback)
	assert.Equal(t, "/__reload", cfg.EventPath)
	assert.True(t, cfg.Metrics)
	require.NotNil(t, cfg.TLS)
	assert.Equal(t, "server.key", cfg.TLS.Key)
	assert.Equal(t, "server.crt", cfg.TLS.Cert)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 2*time.Minute, cfg.Server.IdleTimeout)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadReportsLine(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{"host=a\nnonsense\n", "line 2"},
		{"port=abc", "invalid port"},
		{"colour=blue", `unknown key "colour"`},
		{"read_timeout=soon", "read_timeout"},
	}

	for _, tt := range tests {
		_, err := Load(writeConfig(t, tt.body))
		require.Error(t, err, tt.body)
		assert.Contains(t, err.Error(), tt.want)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("LIVEDEV_HOST", "example.test")
	t.Setenv("LIVEDEV_PORT", "9000")
	t.Setenv("LIVEDEV_LIVE", "false")
	t.Setenv("LIVEDEV_TLS_KEY", "k.pem")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "example.test", cfg.Host)
	assert.Equal(t, 9000, cfg.Port)
	assert.False(t, cfg.Live)
	require.NotNil(t, cfg.TLS)
	assert.Equal(t, "k.pem", cfg.TLS.Key)
}

func TestApplyEnvBadPort(t *testing.T) {
	t.Setenv("LIVEDEV_PORT", "http")

	err := Default().ApplyEnv()
	assert.ErrorIs(t, err, ErrInvalidPort)
	assert.Contains(t, err.Error(), "LIVEDEV_PORT")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   error
	}{
		{"defaults", func(c *Config) {}, nil},
		{"port zero", func(c *Config) { c.Port = 0 }, nil},
		{"negative port", func(c *Config) { c.Port = -1 }, ErrInvalidPort},
		{"port too large", func(c *Config) { c.Port = 65536 }, ErrInvalidPort},
		{"relative event path", func(c *Config) { c.EventPath = "livedev" }, ErrInvalidEventPath},
		{"root event path", func(c *Config) { c.EventPath = "/" }, ErrInvalidEventPath},
		{"auth without hash", func(c *Config) { c.Auth = "dev" }, ErrInvalidAuth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateFillsSections(t *testing.T) {
	cfg := &Config{Host: "localhost", Port: 1, EventPath: "/x"}
	require.NoError(t, cfg.Validate())
	assert.NotNil(t, cfg.Server)
	assert.NotNil(t, cfg.Log)
}

func TestAddress(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "localhost:7000", cfg.Address())

	cfg.Host = "::1"
	assert.Equal(t, "[::1]:7000", cfg.Address())
}
