// Package config loads chatsync settings from ~/.config/chatsync/config.toml
// and CHATSYNC_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configDir  = ".config/chatsync"
	configName = "config"
	configType = "toml"
	envPrefix  = "CHATSYNC"

	BackendFile   = "file"
	BackendTOML   = "toml"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"

	DefaultBaseURL       = "http://localhost:8080"
	DefaultSessionCookie = "session_token"
	DefaultNamespace     = "social_network_"
)

const (
	keyBaseURL          = "api.base_url"
	keyWSURL            = "api.ws_url"
	keySessionCookie    = "api.session_cookie"
	keySessionToken     = "api.session_token"
	keySessionSecretRef = "api.session_secret_ref"
	keyTimeout          = "api.timeout"
	keyBackend          = "storage.backend"
	keyPath             = "storage.path"
	keyRedisAddr        = "storage.redis_addr"
	keyRedisHash        = "storage.redis_hash"
	keyNamespace        = "storage.namespace"
	keySecretsDir       = "storage.secrets_dir"
	keyPassPrefix       = "storage.pass_prefix"
	keyLogLevel         = "log.level"
	keyLogFormat        = "log.format"
	keyPingInterval     = "live.ping_interval"
	keyReconnectMin     = "live.reconnect_min"
	keyReconnectMax     = "live.reconnect_max"
	keyMaxDialFailures  = "live.max_dial_failures"
	keyRestoreWorkers   = "sync.restore_workers"
	keyFetchTimeout     = "sync.fetch_timeout"
)

type Config struct {
	API     API
	Storage Storage
	Log     Log
	Live    Live
	// RestoreWorkers bounds concurrent history fetches while restoring windows.
	RestoreWorkers int
	// FetchTimeout bounds one shared history request.
	FetchTimeout time.Duration
	// File is the config file that was read, empty when none exists.
	File string
}

type API struct {
	BaseURL          string
	WSURL            string
	SessionCookie    string
	SessionToken     string
	SessionSecretRef string
	Timeout          time.Duration
}

type Storage struct {
	Backend    string
	Path       string
	RedisAddr  string
	RedisHash  string
	Namespace  string
	SecretsDir string
	PassPrefix string
}

type Log struct {
	Level  string
	Format string
}

type Live struct {
	PingInterval    time.Duration
	ReconnectMin    time.Duration
	ReconnectMax    time.Duration
	MaxDialFailures int
}

// Load reads the config file (explicitPath wins over the default location)
// and overlays environment variables. A missing default file is not an error.
func Load(cfg *viper.Viper, explicitPath string) (Config, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}
	baseDir := filepath.Join(homeDir, configDir)

	setDefaults(cfg, baseDir)
	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	if explicitPath != "" {
		cfg.SetConfigFile(explicitPath)
	} else {
		cfg.SetConfigName(configName)
		cfg.SetConfigType(configType)
		cfg.AddConfigPath(baseDir)
	}

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if explicitPath != "" || !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	loaded := Config{
		API: API{
			BaseURL:          strings.TrimSpace(cfg.GetString(keyBaseURL)),
			WSURL:            strings.TrimSpace(cfg.GetString(keyWSURL)),
			SessionCookie:    strings.TrimSpace(cfg.GetString(keySessionCookie)),
			SessionToken:     strings.TrimSpace(cfg.GetString(keySessionToken)),
			SessionSecretRef: strings.TrimSpace(cfg.GetString(keySessionSecretRef)),
			Timeout:          cfg.GetDuration(keyTimeout),
		},
		Storage: Storage{
			Backend:    strings.ToLower(strings.TrimSpace(cfg.GetString(keyBackend))),
			Path:       strings.TrimSpace(cfg.GetString(keyPath)),
			RedisAddr:  strings.TrimSpace(cfg.GetString(keyRedisAddr)),
			RedisHash:  strings.TrimSpace(cfg.GetString(keyRedisHash)),
			Namespace:  cfg.GetString(keyNamespace),
			SecretsDir: strings.TrimSpace(cfg.GetString(keySecretsDir)),
			PassPrefix: strings.TrimSpace(cfg.GetString(keyPassPrefix)),
		},
		Log: Log{
			Level:  cfg.GetString(keyLogLevel),
			Format: cfg.GetString(keyLogFormat),
		},
		Live: Live{
			PingInterval:    cfg.GetDuration(keyPingInterval),
			ReconnectMin:    cfg.GetDuration(keyReconnectMin),
			ReconnectMax:    cfg.GetDuration(keyReconnectMax),
			MaxDialFailures: cfg.GetInt(keyMaxDialFailures),
		},
		RestoreWorkers: cfg.GetInt(keyRestoreWorkers),
		FetchTimeout:   cfg.GetDuration(keyFetchTimeout),
		File:           cfg.ConfigFileUsed(),
	}

	if loaded.Storage.Path == "" {
		loaded.Storage.Path = defaultStoragePath(baseDir, loaded.Storage.Backend)
	}

	if err := loaded.Validate(); err != nil {
		return Config{}, err
	}

	return loaded, nil
}

func setDefaults(cfg *viper.Viper, baseDir string) {
	cfg.SetDefault(keyBaseURL, DefaultBaseURL)
	cfg.SetDefault(keyWSURL, "")
	cfg.SetDefault(keySessionCookie, DefaultSessionCookie)
	cfg.SetDefault(keySessionToken, "")
	cfg.SetDefault(keySessionSecretRef, "")
	cfg.SetDefault(keyTimeout, 15*time.Second)
	cfg.SetDefault(keyBackend, BackendFile)
	cfg.SetDefault(keyPath, "")
	cfg.SetDefault(keyRedisAddr, "localhost:6379")
	cfg.SetDefault(keyRedisHash, "chatsync:kv")
	cfg.SetDefault(keyNamespace, DefaultNamespace)
	cfg.SetDefault(keySecretsDir, filepath.Join(baseDir, "secrets"))
	cfg.SetDefault(keyPassPrefix, "chatsync/")
	cfg.SetDefault(keyLogLevel, "warn")
	cfg.SetDefault(keyLogFormat, "console")
	cfg.SetDefault(keyPingInterval, 30*time.Second)
	cfg.SetDefault(keyReconnectMin, time.Second)
	cfg.SetDefault(keyReconnectMax, 30*time.Second)
	cfg.SetDefault(keyMaxDialFailures, 0)
	cfg.SetDefault(keyRestoreWorkers, 4)
	cfg.SetDefault(keyFetchTimeout, 30*time.Second)
}

func defaultStoragePath(baseDir, backend string) string {
	switch backend {
	case BackendTOML:
		return filepath.Join(baseDir, "windows.toml")
	case BackendSQLite:
		return filepath.Join(baseDir, "chatsync.db")
	default:
		return filepath.Join(baseDir, "windows")
	}
}

func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is empty")
	}
	if c.API.SessionCookie == "" {
		return errors.New("api.session_cookie is empty")
	}

	switch c.Storage.Backend {
	case BackendFile, BackendTOML, BackendSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for backend %q", c.Storage.Backend)
		}
	case BackendRedis:
		if c.Storage.RedisAddr == "" {
			return errors.New("storage.redis_addr is required for backend \"redis\"")
		}
	default:
		return fmt.Errorf("unsupported storage.backend %q", c.Storage.Backend)
	}

	if c.Live.ReconnectMin < 0 || c.Live.ReconnectMax < 0 || c.Live.PingInterval < 0 {
		return errors.New("live durations must not be negative")
	}
	if c.RestoreWorkers < 0 {
		return errors.New("sync.restore_workers must not be negative")
	}
	if c.FetchTimeout < 0 {
		return errors.New("sync.fetch_timeout must not be negative")
	}

	return nil
}
