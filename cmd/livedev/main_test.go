package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livedev/internal/config"
)

func TestParseArgsDefaults(t *testing.T) {
	opts, err := parseArgs(nil, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultHost, opts.cfg.Host)
	assert.Equal(t, config.DefaultPort, opts.cfg.Port)
	assert.True(t, opts.cfg.Live)
	assert.Nil(t, opts.cfg.TLS)
	assert.False(t, opts.watch)
}

func TestParseArgsFlagsAndRoot(t *testing.T) {
	opts, err := parseArgs([]string{
		"-host", "0.0.0.0",
		"-port", "8080",
		"-live=false",
		"-fallback", "index.html",
		"-tls-self-signed",
		"-watch",
		"-metrics",
		"-log-format", "json",
		"site",
	}, io.Discard)
	require.NoError(t, err)

	cfg := opts.cfg
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.False(t, cfg.Live)
	assert.Equal(t, "index.html", cfg.Fallback)
	require.NotNil(t, cfg.TLS)
	assert.True(t, cfg.TLS.SelfSigned)
	assert.True(t, cfg.Metrics)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "site", cfg.Root)
	assert.True(t, opts.watch)
}

func TestParseArgsPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "livedev.conf")
	require.NoError(t, os.WriteFile(path, []byte("port=7100\nhost=file.local\nfallback=app.html\n"), 0o644))
	t.Setenv("LIVEDEV_PORT", "7200")

	opts, err := parseArgs([]string{"-config", path, "-host", "flag.local"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, 7200, opts.cfg.Port)
	assert.Equal(t, "flag.local", opts.cfg.Host)
	assert.Equal(t, "app.html", opts.cfg.Fallback)
}

func TestParseArgsRejectsInvalidPort(t *testing.T) {
	_, err := parseArgs([]string{"-port", "99999"}, io.Discard)
	assert.ErrorIs(t, err, config.ErrInvalidPort)
}

func TestRunStopsOnCancel(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- run(ctx, []string{"-host", "127.0.0.1", "-port", "0", "-watch", root}, io.Discard, io.Discard)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}
