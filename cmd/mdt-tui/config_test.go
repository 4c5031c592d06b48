package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(newConfigViper(), "")
	require.NoError(t, err)

	assert.Equal(t, "changeme", cfg.adminPassword)
	assert.Equal(t, 5*time.Second, cfg.commandTimeout)
	assert.Equal(t, "sounds", cfg.soundDir)
	assert.Equal(t, "paplay --volume={volume} {file}", cfg.player)
	assert.Equal(t, "espeak-ng -v en-us {text}", cfg.speech)
	assert.Equal(t, "info", cfg.logLevel)
	assert.True(t, cfg.altScreen)
	assert.True(t, cfg.mouse)
	assert.False(t, cfg.startOpen)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("MDT_ADMIN_PASSWORD", "s3cret")
	t.Setenv("MDT_BACKEND_WS_URL", "ws://dispatch.local/mdt")
	t.Setenv("MDT_AUDIO_MUTE", "true")

	cfg, err := loadConfig(newConfigViper(), "")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.adminPassword)
	assert.Equal(t, "ws://dispatch.local/mdt", cfg.wsURL)
	assert.True(t, cfg.mute)
}

func TestLoadConfigBlankPasswordFallsBack(t *testing.T) {
	t.Setenv("MDT_ADMIN_PASSWORD", "   ")
	cfg, err := loadConfig(newConfigViper(), "")
	require.NoError(t, err)
	assert.Equal(t, defaultAdminPassword, cfg.adminPassword)
}

func TestLoadConfigFlagsWinOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mdt.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"backend:\n  socket: /run/mdt.sock\n  ws_url: ws://file\n  command_timeout: 2s\naudio:\n  mute: true\n",
	), 0o600))

	v := newConfigViper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	bindConfigFlags(fs, v)
	require.NoError(t, fs.Parse([]string{"--ws-url=ws://flag", "--start-open"}))

	cfg, err := loadConfig(v, path)
	require.NoError(t, err)
	assert.Equal(t, "ws://flag", cfg.wsURL)
	assert.Equal(t, "/run/mdt.sock", cfg.socketPath)
	assert.Equal(t, 2*time.Second, cfg.commandTimeout)
	assert.True(t, cfg.mute)
	assert.True(t, cfg.startOpen)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := loadConfig(newConfigViper(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.yaml")
}

func TestInboundEndpointPreference(t *testing.T) {
	endpoint, dial := appConfig{wsURL: "ws://a", socketPath: "/b.sock"}.inboundEndpoint()
	assert.Equal(t, "ws://a", endpoint)
	assert.NotNil(t, dial)

	endpoint, dial = appConfig{socketPath: "/b.sock"}.inboundEndpoint()
	assert.Equal(t, "/b.sock", endpoint)
	assert.NotNil(t, dial)

	endpoint, dial = appConfig{}.inboundEndpoint()
	assert.Equal(t, "", endpoint)
	assert.Nil(t, dial)
}

func TestNewLogger(t *testing.T) {
	log, err := newLogger(appConfig{})
	require.NoError(t, err)
	assert.NotNil(t, log)

	_, err = newLogger(appConfig{logFile: filepath.Join(t.TempDir(), "x.log"), logLevel: "loud"})
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "mdt.log")
	log, err = newLogger(appConfig{logFile: path, logLevel: "debug"})
	require.NoError(t, err)
	log.Info("hello")
	_ = log.Sync()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"msg":"hello"`)
}
