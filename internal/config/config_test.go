package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DUEL_SERVER_URL", "")
	os.Unsetenv("DUEL_SERVER_URL")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "ws://localhost:8080/ws", cfg.Server.URL)
	require.Equal(t, time.Second, cfg.Reconnect.BaseDelay)
	require.Equal(t, 10*time.Second, cfg.Reconnect.MaxDelay)
	require.Equal(t, 5, cfg.Reconnect.MaxAttempts)
	require.Equal(t, 3*time.Second, cfg.Game.ReturnToLobbyDelay)
	require.Equal(t, 100*time.Millisecond, cfg.Game.CountdownInterval)
	require.Equal(t, "memory", cfg.Session.Store)
	require.True(t, cfg.Session.Restore)
	require.False(t, cfg.Status.Enabled)
	require.True(t, cfg.IsLocal())
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	path := writeFile(t, "duel.yaml", `
env: prod
server:
  url: wss://cards.example.com/ws
reconnect:
  base_delay: 500ms
  max_attempts: 3
session:
  store: sqlite
  sqlite_path: /tmp/duel.db
`)
	t.Setenv("DUEL_RECONNECT_ATTEMPTS", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "wss://cards.example.com/ws", cfg.Server.URL)
	require.Equal(t, 500*time.Millisecond, cfg.Reconnect.BaseDelay)
	require.Equal(t, 10*time.Second, cfg.Reconnect.MaxDelay)
	require.Equal(t, 7, cfg.Reconnect.MaxAttempts)
	require.Equal(t, "sqlite", cfg.Session.Store)
	require.Equal(t, "/tmp/duel.db", cfg.Session.SQLitePath)
	require.False(t, cfg.IsLocal())
}

func TestLoadHuJSON(t *testing.T) {
	path := writeFile(t, "duel.hujson", `{
	// local redis for session restore
	"session": {"store": "redis", "redis_addr": "127.0.0.1:6380", "ttl": "1h",},
	"status": {"enabled": true, "addr": "127.0.0.1:9000"},
	"game": {"leaderboard_limit": 25},
}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "redis", cfg.Session.Store)
	require.Equal(t, "127.0.0.1:6380", cfg.Session.RedisAddr)
	require.Equal(t, time.Hour, cfg.Session.TTL)
	require.True(t, cfg.Status.Enabled)
	require.Equal(t, "127.0.0.1:9000", cfg.Status.Addr)
	require.Equal(t, 25, cfg.Game.LeaderboardLimit)
	require.Equal(t, "ws://localhost:8080/ws", cfg.Server.URL)
}

func TestLoadRejectsBadConfig(t *testing.T) {
	tests := map[string]string{
		"http url":      "server:\n  url: http://example.com\n",
		"max below base": "reconnect:\n  base_delay: 5s\n  max_delay: 1s\n",
		"unknown store": "session:\n  store: etcd\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "bad.yaml", body))
			require.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "broken.hujson", `{"server": `))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Reconnect.MaxAttempts = 0
	require.ErrorContains(t, cfg.Validate(), "max_attempts")
}
