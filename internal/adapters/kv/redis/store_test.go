package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/bnema/chatsync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	s, err := NewStore(server.Addr(), "test:kv")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Ping(context.Background()))
	return s, server
}

func TestStorePutGetDelete(t *testing.T) {
	s, server := newTestStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "social_network_open_chats_1")
	require.ErrorIs(t, err, domain.ErrKeyNotFound)

	require.NoError(t, s.Put(ctx, "social_network_open_chats_1", "[5]"))
	assert.Equal(t, "[5]", server.HGet("test:kv", "social_network_open_chats_1"))

	value, err := s.Get(ctx, "social_network_open_chats_1")
	require.NoError(t, err)
	assert.Equal(t, "[5]", value)

	require.NoError(t, s.Delete(ctx, "social_network_open_chats_1"))
	require.NoError(t, s.Delete(ctx, "social_network_open_chats_1"))
	_, err = s.Get(ctx, "social_network_open_chats_1")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestStoreReportsServerErrors(t *testing.T) {
	s, server := newTestStore(t)
	server.SetError("LOADING")

	_, err := s.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrKeyNotFound)
	assert.ErrorContains(t, err, "redis kv store: get")
}

func TestNewStoreDefaultsHashKey(t *testing.T) {
	assert.Equal(t, defaultHashKey, NewStoreWithClient(nil, "").hashKey)

	_, err := NewStore("", "x")
	assert.Error(t, err)
}
