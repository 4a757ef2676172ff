package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, DefaultSessionCookie, cfg.API.SessionCookie)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(home, ".config", "chatsync", "windows"), cfg.Storage.Path)
	assert.Equal(t, DefaultNamespace, cfg.Storage.Namespace)
	assert.Equal(t, 30*time.Second, cfg.Live.PingInterval)
	assert.Equal(t, 4, cfg.RestoreWorkers)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Empty(t, cfg.File)
}

func TestLoadReadsConfigFileFromHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".config", "chatsync")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
[api]
base_url = "https://social.example.com/api"
session_secret_ref = "chatsync/session"

[storage]
backend = "sqlite"
namespace = "sn_"

[live]
ping_interval = "10s"
`), 0o600))

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "https://social.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, "chatsync/session", cfg.API.SessionSecretRef)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(dir, "chatsync.db"), cfg.Storage.Path)
	assert.Equal(t, "sn_", cfg.Storage.Namespace)
	assert.Equal(t, 10*time.Second, cfg.Live.PingInterval)
	assert.Equal(t, filepath.Join(dir, "config.toml"), cfg.File)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api]\nbase_url = \"http://file\"\n"), 0o600))

	t.Setenv("CHATSYNC_API_BASE_URL", "http://env")
	t.Setenv("CHATSYNC_API_SESSION_TOKEN", "tok")
	t.Setenv("CHATSYNC_STORAGE_BACKEND", "redis")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "http://env", cfg.API.BaseURL)
	assert.Equal(t, "tok", cfg.API.SessionToken)
	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "localhost:6379", cfg.Storage.RedisAddr)
}

func TestLoadFailsOnMissingExplicitFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CHATSYNC_STORAGE_BACKEND", "etcd")

	_, err := Load(viper.New(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported storage.backend")
}
