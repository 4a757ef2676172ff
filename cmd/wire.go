package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/bnema/chatsync/internal/adapters/httpapi"
	chainstore "github.com/bnema/chatsync/internal/adapters/kv/chain"
	filestore "github.com/bnema/chatsync/internal/adapters/kv/file"
	redisstore "github.com/bnema/chatsync/internal/adapters/kv/redis"
	sqlitestore "github.com/bnema/chatsync/internal/adapters/kv/sqlite"
	tomlstore "github.com/bnema/chatsync/internal/adapters/kv/toml"
	"github.com/bnema/chatsync/internal/adapters/live/wslive"
	inboxadapter "github.com/bnema/chatsync/internal/adapters/render/inbox"
	"github.com/bnema/chatsync/internal/application"
	"github.com/bnema/chatsync/internal/config"
	"github.com/bnema/chatsync/internal/logging"
	"github.com/bnema/chatsync/internal/ports"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type app struct {
	cfg            config.Config
	engine         *application.Engine
	client         *httpapi.Client
	storage        ports.KVStore
	logger         zerolog.Logger
	inboxRenderer  func(inboxadapter.Snapshot, inboxadapter.RenderOptions) (string, error)
	threadRenderer func(inboxadapter.ThreadView, inboxadapter.RenderOptions) (string, error)
	newTransport   func() (ports.LiveTransport, error)
	closers        []io.Closer
	now            func() time.Time
}

func wireApp() (*app, error) {
	cfg, err := config.Load(viper.New(), os.Getenv("CHATSYNC_CONFIG"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}

	storage, closer, err := wireStorage(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("wire %s storage: %w", cfg.Storage.Backend, err)
	}

	token, err := resolveSessionToken(cfg)
	if err != nil {
		return nil, err
	}

	client, err := httpapi.NewClient(httpapi.Config{
		BaseURL:       cfg.API.BaseURL,
		SessionCookie: cfg.API.SessionCookie,
		SessionToken:  token,
		HTTPClient:    &http.Client{Timeout: cfg.API.Timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("wire api client: %w", err)
	}

	engine := application.NewEngine(application.EngineDeps{
		Identity: client,
		History:  client,
		Sender:   client,
		Storage:  storage,
	},
		application.WithLogger(logger),
		application.WithNamespace(cfg.Storage.Namespace),
		application.WithRestoreWorkers(cfg.RestoreWorkers),
		application.WithFetchTimeout(cfg.FetchTimeout),
	)

	a := &app{
		cfg:            cfg,
		engine:         engine,
		client:         client,
		storage:        storage,
		logger:         logger,
		inboxRenderer:  inboxadapter.Render,
		threadRenderer: inboxadapter.RenderThread,
		now:            time.Now,
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}
	a.newTransport = func() (ports.LiveTransport, error) {
		return a.wireTransport()
	}

	return a, nil
}

func wireStorage(cfg config.Storage) (ports.KVStore, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendFile:
		return filestore.NewStore(cfg.Path), nil, nil
	case config.BackendTOML:
		store, err := tomlstore.NewStore(cfg.Path)
		return store, nil, err
	case config.BackendSQLite:
		dsn, err := sqlitestore.DSNForFile(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		store, err := sqlitestore.NewStore(dsn)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case config.BackendRedis:
		store, err := redisstore.NewStore(cfg.RedisAddr, cfg.RedisHash)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}

// resolveSessionToken prefers an explicit token and otherwise looks the
// secret reference up in pass, falling back to plain files.
func resolveSessionToken(cfg config.Config) (string, error) {
	if cfg.API.SessionToken != "" || cfg.API.SessionSecretRef == "" {
		return cfg.API.SessionToken, nil
	}

	secrets, err := chainstore.NewPassFirstWithFileFallback(cfg.Storage.PassPrefix, cfg.Storage.SecretsDir)
	if err != nil {
		return "", fmt.Errorf("wire secret store chain: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	token, err := secrets.Get(ctx, cfg.API.SessionSecretRef)
	if err != nil {
		return "", fmt.Errorf("load session secret %q: %w", cfg.API.SessionSecretRef, err)
	}

	return token, nil
}

func (a *app) wireTransport() (ports.LiveTransport, error) {
	endpoint := a.cfg.API.WSURL
	if endpoint == "" {
		derived, err := wslive.URLFromBase(a.cfg.API.BaseURL)
		if err != nil {
			return nil, err
		}
		endpoint = derived
	}

	return wslive.New(wslive.Config{
		URL:             endpoint,
		Cookie:          a.client.SessionCookie(),
		PingInterval:    a.cfg.Live.PingInterval,
		ReconnectMin:    a.cfg.Live.ReconnectMin,
		ReconnectMax:    a.cfg.Live.ReconnectMax,
		MaxDialFailures: a.cfg.Live.MaxDialFailures,
		Logger:          &a.logger,
	})
}

func (a *app) close() error {
	var errs []error
	for _, closer := range a.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil

	return errors.Join(errs...)
}
