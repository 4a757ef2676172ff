package pass

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/chatsync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePutUsesPassInsertUnderPrefix(t *testing.T) {
	t.Parallel()

	called := false
	store := &Store{
		folder: "chatsync/",
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			called = true
			assert.Equal(t, []string{"insert", "--multiline", "--force", "chatsync/session_token"}, args)
			assert.Equal(t, "abc123\n", input)
			return "", "", nil
		},
	}

	require.NoError(t, store.Put(context.Background(), "session_token", "abc123"))
	assert.True(t, called)
}

func TestStoreGetTrimsTrailingNewline(t *testing.T) {
	t.Parallel()

	store := &Store{
		folder: "chatsync/",
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			assert.Equal(t, []string{"show", "chatsync/session_token"}, args)
			assert.Empty(t, input)
			return "abc123\r\n", "", nil
		},
	}

	value, err := store.Get(context.Background(), "session_token")
	require.NoError(t, err)
	assert.Equal(t, "abc123", value)
}

func TestStoreGetMissingEntryIsNotFound(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			return "", "Error: session_token is not in the password store.", errors.New("exit status 1")
		},
	}

	_, err := store.Get(context.Background(), "session_token")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestStoreGetReturnsClearError(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			return "", "gpg: decryption failed", errors.New("exit status 2")
		},
	}

	_, err := store.Get(context.Background(), "session_token")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrKeyNotFound)
	assert.ErrorContains(t, err, "read chatsync entry")
	assert.ErrorContains(t, err, "session_token")
	assert.ErrorContains(t, err, "decryption failed")
}

func TestStoreDeleteToleratesMissingEntry(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			assert.Equal(t, []string{"rm", "--force", "open_chats_1"}, args)
			return "", "Error: open_chats_1 is not in the password store.", errors.New("exit status 1")
		},
	}

	require.NoError(t, store.Delete(context.Background(), "open_chats_1"))
}

func TestStoreGetReturnsFirstLineOnly(t *testing.T) {
	t.Parallel()

	store := &Store{
		folder: "chatsync/",
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			return "[3,9]\nadded by hand\n", "", nil
		},
	}

	value, err := store.Get(context.Background(), "open_group_chats_7")
	require.NoError(t, err)
	assert.Equal(t, "[3,9]", value)
}

func TestStorePutRejectsMultilineValue(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			t.Fatal("pass must not run")
			return "", "", nil
		},
	}

	err := store.Put(context.Background(), "session_token", "abc\n123")
	assert.ErrorContains(t, err, "several lines")
}

func TestStoreUnavailablePassIsReported(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			return "", "", ErrUnavailable
		},
	}

	_, err := store.Get(context.Background(), "session_token")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, domain.ErrKeyNotFound)
}
