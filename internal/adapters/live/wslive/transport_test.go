package wslive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bnema/chatsync/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	frames []domain.LiveFrame
	notify chan struct{}
}

func newRecorder() *recorder {
	return &recorder{notify: make(chan struct{}, 64)}
}

func (r *recorder) handle(_ context.Context, frame domain.LiveFrame) {
	r.mu.Lock()
	r.frames = append(r.frames, frame)
	r.mu.Unlock()
	r.notify <- struct{}{}
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.frames))
	for _, frame := range r.frames {
		out = append(out, frame.Type)
	}
	return out
}

func (r *recorder) waitFor(t *testing.T, n int) {
	t.Helper()

	deadline := time.After(5 * time.Second)
	for {
		r.mu.Lock()
		got := len(r.frames)
		r.mu.Unlock()
		if got >= n {
			return
		}
		select {
		case <-r.notify:
		case <-deadline:
			t.Fatalf("timed out waiting for %d frames, got %v", n, r.types())
		}
	}
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
}

func TestTransportDeliversFramesInOrderAndSendsCookie(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("session_token")
		if !assert.NoError(t, err) || !assert.Equal(t, "sess-1", cookie.Value) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for _, frame := range []string{
			`{"type":"presence:init","data":["2","3"]}`,
			`not json`,
			`{"data":{}}`,
			`{"type":"private_message","data":{"id":1,"sender_id":2,"receiver_id":1,"content":"hi","created_at":5}}`,
		} {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		}
		// hold the connection until the client goes away
		_, _, _ = conn.ReadMessage()
	}))
	t.Cleanup(server.Close)

	transport, err := New(Config{URL: wsURL(server), Cookie: &http.Cookie{Name: "session_token", Value: "sess-1"}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := newRecorder()
	done := make(chan error, 1)
	go func() { done <- transport.Run(ctx, rec.handle) }()

	rec.waitFor(t, 2)
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, []string{"presence:init", "private_message"}, rec.types())
	assert.JSONEq(t, `["2","3"]`, string(rec.frames[0].Data))
}

func TestTransportSendsKeepalivePings(t *testing.T) {
	upgrader := websocket.Upgrader{}
	pings := make(chan string, 4)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			pings <- string(data)
		}
	}))
	t.Cleanup(server.Close)

	transport, err := New(Config{URL: wsURL(server), PingInterval: 20 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = transport.Run(ctx, func(context.Context, domain.LiveFrame) {}) }()

	select {
	case ping := <-pings:
		assert.JSONEq(t, `{"type":"ping"}`, ping)
	case <-time.After(5 * time.Second):
		t.Fatal("no keepalive ping received")
	}
}

func TestTransportEmitsOneDisconnectPerLostConnectionAndReconnects(t *testing.T) {
	upgrader := websocket.Upgrader{}
	var mu sync.Mutex
	connections := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		mu.Lock()
		connections++
		n := connections
		mu.Unlock()

		if n == 1 {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"presence","data":{"user_id":2,"online":true}}`))
			_ = conn.Close()
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"presence:init","data":[2]}`))
		_, _, _ = conn.ReadMessage()
	}))
	t.Cleanup(server.Close)

	transport, err := New(Config{URL: wsURL(server), ReconnectMin: 10 * time.Millisecond, ReconnectMax: 20 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := newRecorder()
	done := make(chan error, 1)
	go func() { done <- transport.Run(ctx, rec.handle) }()

	rec.waitFor(t, 3)
	cancel()
	<-done

	assert.Equal(t, []string{"presence", "disconnect", "presence:init"}, rec.types())
}

func TestTransportGivesUpAfterMaxDialFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	transport, err := New(Config{
		URL:             wsURL(server),
		ReconnectMin:    time.Millisecond,
		ReconnectMax:    2 * time.Millisecond,
		MaxDialFailures: 3,
	})
	require.NoError(t, err)

	rec := newRecorder()
	err = transport.Run(context.Background(), rec.handle)
	require.Error(t, err)
	assert.ErrorContains(t, err, "dial live endpoint")
	assert.Empty(t, rec.types())
}

func TestTransportBackoffIsBounded(t *testing.T) {
	transport, err := New(Config{URL: "ws://localhost/ws", ReconnectMin: time.Second, ReconnectMax: 5 * time.Second})
	require.NoError(t, err)

	assert.Equal(t, time.Second, transport.backoff(1))
	assert.Equal(t, 2*time.Second, transport.backoff(2))
	assert.Equal(t, 4*time.Second, transport.backoff(3))
	assert.Equal(t, 5*time.Second, transport.backoff(4))
	assert.Equal(t, 5*time.Second, transport.backoff(40))
}

func TestURLFromBase(t *testing.T) {
	tests := []struct {
		base    string
		want    string
		wantErr bool
	}{
		{base: "http://localhost:8080", want: "ws://localhost:8080/ws"},
		{base: "https://chat.example.com/api/", want: "wss://chat.example.com/api/ws"},
		{base: "ftp://example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			got, err := URLFromBase(tt.base)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRejectsNonWebsocketURL(t *testing.T) {
	_, err := New(Config{URL: "http://localhost/ws"})
	assert.Error(t, err)
}
