// Package httpapi talks to the social network REST API: conversation
// summary, thread history, sending and the current session identity.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bnema/chatsync/internal/domain"
	"github.com/bnema/chatsync/internal/ports"
	"github.com/bnema/chatsync/internal/wire"
	"github.com/google/uuid"
)

const (
	DefaultSessionCookie = "session_token"

	maxResponseBytes = 4 << 20
	userAgent        = "chatsync"
)

type Config struct {
	BaseURL       string
	SessionCookie string
	SessionToken  string
	HTTPClient    *http.Client
}

type Client struct {
	baseURL       *url.URL
	sessionCookie string
	sessionToken  string
	httpClient    *http.Client
	newRequestID  func() string
}

var (
	_ ports.HistoryFetcher   = (*Client)(nil)
	_ ports.MessageSender    = (*Client)(nil)
	_ ports.IdentityProvider = (*Client)(nil)
)

// statusError carries a non-2xx answer.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("status %d", e.status)
	}
	return fmt.Sprintf("status %d: %s", e.status, e.body)
}

func (e *statusError) Unwrap() error {
	if e.status == http.StatusUnauthorized || e.status == http.StatusForbidden {
		return domain.ErrUnauthorized
	}
	return nil
}

func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api base url %q: scheme must be http or https", cfg.BaseURL)
	}

	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	cookie := cfg.SessionCookie
	if cookie == "" {
		cookie = DefaultSessionCookie
	}

	return &Client{
		baseURL:       base,
		sessionCookie: cookie,
		sessionToken:  strings.TrimSpace(cfg.SessionToken),
		httpClient:    client,
		newRequestID:  uuid.NewString,
	}, nil
}

// BaseURL is the API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// SessionCookie returns the cookie that authenticates requests, if any.
func (c *Client) SessionCookie() *http.Cookie {
	if c.sessionToken == "" {
		return nil
	}
	return &http.Cookie{Name: c.sessionCookie, Value: c.sessionToken}
}

func (c *Client) FetchSummary(ctx context.Context) (domain.Summary, error) {
	var payload wire.Summary
	if err := c.do(ctx, http.MethodGet, "/chat/conversations", nil, nil, &payload); err != nil {
		return domain.Summary{}, fmt.Errorf("fetch conversations: %w", err)
	}

	return payload.Domain(), nil
}

func (c *Client) FetchHistory(ctx context.Context, key domain.ThreadKey) ([]domain.Message, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	var path string
	query := url.Values{}
	switch key.Kind {
	case domain.ThreadPrivate:
		path = "/chat/messages"
		query.Set("user_id", key.UserID().String())
	case domain.ThreadGroup:
		path = "/chat/group-messages"
		query.Set("group_id", key.GroupID().String())
	}

	var rows []wire.Message
	if err := c.do(ctx, http.MethodGet, path, query, nil, &rows); err != nil {
		return nil, fmt.Errorf("fetch history %s: %w", key, err)
	}

	messages := wire.Messages(rows)
	// rows that omit group_id still belong to the requested group
	if key.Kind == domain.ThreadGroup {
		for i := range messages {
			if messages[i].GroupID == 0 {
				messages[i].GroupID = key.GroupID()
			}
		}
	}

	return messages, nil
}

func (c *Client) Send(ctx context.Context, key domain.ThreadKey, content string) error {
	if err := key.Validate(); err != nil {
		return err
	}

	var (
		path string
		body any
	)
	switch key.Kind {
	case domain.ThreadPrivate:
		path = "/chat/messages"
		body = wire.SendPrivateRequest{ReceiverID: wire.ID(key.ID), Content: content}
	case domain.ThreadGroup:
		path = "/chat/group-messages"
		body = wire.SendGroupRequest{GroupID: wire.ID(key.ID), Content: content}
	}

	if err := c.do(ctx, http.MethodPost, path, nil, body, nil); err != nil {
		return fmt.Errorf("send to %s: %w", key, err)
	}

	return nil
}

// CurrentIdentity asks /me who the session belongs to. An unauthenticated
// session yields the zero identity and no error.
func (c *Client) CurrentIdentity(ctx context.Context) (domain.Identity, error) {
	if c.sessionToken == "" {
		return domain.Identity{}, nil
	}

	var me wire.Me
	if err := c.do(ctx, http.MethodGet, "/me", nil, nil, &me); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return domain.Identity{}, nil
		}
		return domain.Identity{}, fmt.Errorf("fetch current identity: %w", err)
	}

	return me.Identity(), nil
}

func (c *Client) do(ctx context.Context, method string, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", userAgent)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost {
		request.Header.Set("Idempotency-Key", c.newRequestID())
	}
	if cookie := c.SessionCookie(); cookie != nil {
		request.AddCookie(cookie)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer response.Body.Close()

	data, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return &statusError{status: response.StatusCode, body: strings.TrimSpace(string(data))}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
