// Package wslive is the websocket live transport. It keeps one connection
// open, sends keepalive pings, reconnects with bounded exponential backoff
// and reports every lost connection with exactly one disconnect frame.
package wslive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/chatsync/internal/domain"
	"github.com/bnema/chatsync/internal/ports"
	"github.com/bnema/chatsync/internal/wire"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPingInterval = 30 * time.Second
	DefaultReconnectMin = time.Second
	DefaultReconnectMax = 30 * time.Second

	writeTimeout = 10 * time.Second
)

type Config struct {
	URL          string
	Cookie       *http.Cookie
	PingInterval time.Duration
	ReconnectMin time.Duration
	ReconnectMax time.Duration
	// MaxDialFailures stops Run after that many consecutive failed dials.
	// Zero retries forever.
	MaxDialFailures int
	Dialer          *websocket.Dialer
	Logger          *zerolog.Logger
}

type Transport struct {
	url          string
	header       http.Header
	pingInterval time.Duration
	reconnectMin time.Duration
	reconnectMax time.Duration
	maxFailures  int
	dialer       *websocket.Dialer
	logger       zerolog.Logger
}

var _ ports.LiveTransport = (*Transport)(nil)

func New(cfg Config) (*Transport, error) {
	parsed, err := url.Parse(strings.TrimSpace(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("parse live url: %w", err)
	}
	if parsed.Scheme != "ws" && parsed.Scheme != "wss" {
		return nil, fmt.Errorf("live url %q: scheme must be ws or wss", cfg.URL)
	}

	t := &Transport{
		url:          parsed.String(),
		header:       http.Header{},
		pingInterval: orDefault(cfg.PingInterval, DefaultPingInterval),
		reconnectMin: orDefault(cfg.ReconnectMin, DefaultReconnectMin),
		reconnectMax: orDefault(cfg.ReconnectMax, DefaultReconnectMax),
		maxFailures:  cfg.MaxDialFailures,
		dialer:       cfg.Dialer,
		logger:       zerolog.Nop(),
	}
	if t.reconnectMax < t.reconnectMin {
		t.reconnectMax = t.reconnectMin
	}
	if t.dialer == nil {
		t.dialer = websocket.DefaultDialer
	}
	if cfg.Logger != nil {
		t.logger = *cfg.Logger
	}
	t.logger = t.logger.With().Str("component", "wslive").Logger()
	if cfg.Cookie != nil {
		t.header.Set("Cookie", cfg.Cookie.String())
	}

	return t, nil
}

// URLFromBase derives the socket endpoint from the REST base URL:
// http://host/api becomes ws://host/api/ws.
func URLFromBase(base string) (string, error) {
	parsed, err := url.Parse(strings.TrimRight(strings.TrimSpace(base), "/"))
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}

	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	default:
		return "", fmt.Errorf("api base url %q: scheme must be http or https", base)
	}

	return parsed.JoinPath("ws").String(), nil
}

// Run delivers frames to handle until ctx is done or dialing keeps failing.
// Frames are handled one at a time, in arrival order.
func (t *Transport) Run(ctx context.Context, handle ports.FrameHandler) error {
	failures := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, _, err := t.dialer.DialContext(ctx, t.url, t.header)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			failures++
			t.logger.Warn().Err(err).Int("attempt", failures).Msg("live dial failed")
			if t.maxFailures > 0 && failures >= t.maxFailures {
				return fmt.Errorf("dial live endpoint: %w", err)
			}
			if err := sleep(ctx, t.backoff(failures)); err != nil {
				return err
			}
			continue
		}

		failures = 0
		t.logger.Info().Str("url", t.url).Msg("live connection established")

		err = t.serve(ctx, conn, handle)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		t.logger.Warn().Err(err).Msg("live connection lost")
		handle(ctx, domain.LiveFrame{Type: domain.FrameDisconnect})

		if err := sleep(ctx, t.reconnectMin); err != nil {
			return err
		}
	}
}

func (t *Transport) serve(ctx context.Context, conn *websocket.Conn, handle ports.FrameHandler) error {
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		<-groupCtx.Done()
		return conn.Close()
	})

	group.Go(func() error {
		ticker := time.NewTicker(t.pingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-groupCtx.Done():
				return nil
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
					return fmt.Errorf("set write deadline: %w", err)
				}
				if err := conn.WriteMessage(websocket.TextMessage, wire.Ping); err != nil {
					return fmt.Errorf("write ping: %w", err)
				}
			}
		}
	})

	group.Go(func() error {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return fmt.Errorf("read frame: %w", err)
			}

			var frame domain.LiveFrame
			if err := json.Unmarshal(data, &frame); err != nil || frame.Type == "" {
				t.logger.Warn().Err(err).Int("bytes", len(data)).Msg("dropping undecodable live frame")
				continue
			}
			handle(ctx, frame)
		}
	})

	return group.Wait()
}

func (t *Transport) backoff(failures int) time.Duration {
	delay := t.reconnectMin
	for i := 1; i < failures && delay < t.reconnectMax; i++ {
		delay *= 2
	}
	if delay > t.reconnectMax {
		delay = t.reconnectMax
	}
	return delay
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func orDefault(value, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return value
}
