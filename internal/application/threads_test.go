package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bnema/chatsync/internal/domain"
	"github.com/bnema/chatsync/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestThreadStoreAppendOrdersByCreatedAt(t *testing.T) {
	store := NewThreadStore(mocks.NewMockHistoryFetcher(t), mocks.NewMockMessageSender(t))
	store.SetSelf(1)

	added, err := store.Append(domain.Message{ID: "a", SenderID: 5, ReceiverID: 1, CreatedAt: 100})
	require.NoError(t, err)
	assert.True(t, added)
	added, err = store.Append(domain.Message{ID: "b", SenderID: 1, ReceiverID: 5, CreatedAt: 50})
	require.NoError(t, err)
	assert.True(t, added)

	assert.Equal(t, []domain.MessageID{"b", "a"}, messageIDs(store.Messages(domain.PrivateThread(5))))
}

func TestThreadStoreAppendIsIdempotent(t *testing.T) {
	store := NewThreadStore(mocks.NewMockHistoryFetcher(t), mocks.NewMockMessageSender(t))
	store.SetSelf(1)
	message := domain.Message{ID: "a", SenderID: 5, GroupID: 3, CreatedAt: 10}

	first, err := store.Append(message)
	require.NoError(t, err)
	before := store.Messages(domain.GroupThread(3))

	second, err := store.Append(message)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
	assert.Equal(t, before, store.Messages(domain.GroupThread(3)))
}

func TestThreadStoreAppendRejectsInvalidMessages(t *testing.T) {
	store := NewThreadStore(mocks.NewMockHistoryFetcher(t), mocks.NewMockMessageSender(t))

	_, err := store.Append(domain.Message{SenderID: 5, ReceiverID: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidMessage)

	_, err = store.Append(domain.Message{ID: "a", SenderID: 5, ReceiverID: 1})
	assert.ErrorIs(t, err, domain.ErrNoIdentity)

	added, err := store.Append(domain.Message{ID: "g", SenderID: 5, GroupID: 2})
	require.NoError(t, err)
	assert.True(t, added)
}

func TestThreadStoreFetchHistoryOncePerKey(t *testing.T) {
	fetcher := mocks.NewMockHistoryFetcher(t)
	store := NewThreadStore(fetcher, mocks.NewMockMessageSender(t))
	key := domain.PrivateThread(5)

	fetcher.EXPECT().FetchHistory(mockAnyContext(), key).Return([]domain.Message{
		{ID: "2", SenderID: 5, ReceiverID: 1, CreatedAt: 20},
		{ID: "1", SenderID: 1, ReceiverID: 5, CreatedAt: 10},
	}, nil).Once()

	require.NoError(t, store.FetchHistory(context.Background(), key))
	require.NoError(t, store.FetchHistory(context.Background(), key))

	assert.True(t, store.IsLoaded(key))
	assert.Equal(t, []domain.MessageID{"1", "2"}, messageIDs(store.Messages(key)))
}

func TestThreadStoreFetchHistoryDeduplicatesConcurrentCalls(t *testing.T) {
	fetcher := mocks.NewMockHistoryFetcher(t)
	store := NewThreadStore(fetcher, mocks.NewMockMessageSender(t))
	key := domain.GroupThread(3)

	release := make(chan struct{})
	fetcher.EXPECT().FetchHistory(mockAnyContext(), key).RunAndReturn(func(context.Context, domain.ThreadKey) ([]domain.Message, error) {
		<-release
		return []domain.Message{{ID: "1", SenderID: 2, GroupID: 3}}, nil
	}).Once()

	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.FetchHistory(context.Background(), key))
		}()
	}
	close(release)
	wg.Wait()

	// a caller that arrives after the flight finished sees the thread loaded
	require.NoError(t, store.FetchHistory(context.Background(), key))
	assert.Len(t, store.Messages(key), 1)
}

func TestThreadStoreFetchMergesWithPushedMessages(t *testing.T) {
	fetcher := mocks.NewMockHistoryFetcher(t)
	store := NewThreadStore(fetcher, mocks.NewMockMessageSender(t))
	store.SetSelf(1)
	key := domain.PrivateThread(5)

	fetcher.EXPECT().FetchHistory(mockAnyContext(), key).RunAndReturn(func(context.Context, domain.ThreadKey) ([]domain.Message, error) {
		// a push lands while the fetch is in flight
		_, err := store.Append(domain.Message{ID: "3", SenderID: 5, ReceiverID: 1, CreatedAt: 30})
		require.NoError(t, err)
		return []domain.Message{
			{ID: "1", SenderID: 5, ReceiverID: 1, CreatedAt: 10},
			{ID: "3", SenderID: 5, ReceiverID: 1, CreatedAt: 30},
		}, nil
	}).Once()

	require.NoError(t, store.FetchHistory(context.Background(), key))
	assert.Equal(t, []domain.MessageID{"1", "3"}, messageIDs(store.Messages(key)))
}

func TestThreadStoreIDLessHistoryDoesNotDuplicatePushedMessage(t *testing.T) {
	fetcher := mocks.NewMockHistoryFetcher(t)
	store := NewThreadStore(fetcher, mocks.NewMockMessageSender(t))
	store.SetSelf(1)
	key := domain.PrivateThread(5)

	added, err := store.Append(domain.Message{ID: "10", SenderID: 5, ReceiverID: 1, Content: "hi", CreatedAt: 100})
	require.NoError(t, err)
	require.True(t, added)

	// private history rows come back without ids
	fetcher.EXPECT().FetchHistory(mockAnyContext(), key).Return([]domain.Message{
		{SenderID: 1, ReceiverID: 5, Content: "hey", CreatedAt: 40},
		{SenderID: 5, ReceiverID: 1, Content: "hi", CreatedAt: 100},
	}, nil).Once()

	require.NoError(t, store.FetchHistory(context.Background(), key))

	messages := store.Messages(key)
	require.Len(t, messages, 2)
	assert.Equal(t, "hey", messages[0].Content)
	assert.Equal(t, domain.MessageID("10"), messages[1].ID)
}

func TestThreadStoreFetchFailureInstallsEmptyThread(t *testing.T) {
	fetcher := mocks.NewMockHistoryFetcher(t)
	store := NewThreadStore(fetcher, mocks.NewMockMessageSender(t))
	key := domain.PrivateThread(5)

	fetcher.EXPECT().FetchHistory(mockAnyContext(), key).Return(nil, errors.New("503")).Once()

	err := store.FetchHistory(context.Background(), key)
	require.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.True(t, store.IsLoaded(key))
	assert.NotNil(t, store.Messages(key))
	assert.Empty(t, store.Messages(key))

	// loaded but empty: no automatic retry
	require.NoError(t, store.FetchHistory(context.Background(), key))
}

func TestThreadStoreCancelledFetchLeavesThreadCold(t *testing.T) {
	fetcher := mocks.NewMockHistoryFetcher(t)
	store := NewThreadStore(fetcher, mocks.NewMockMessageSender(t))
	key := domain.PrivateThread(5)

	fetcher.EXPECT().FetchHistory(mockAnyContext(), key).Return(nil, context.Canceled).Once()

	err := store.FetchHistory(context.Background(), key)
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrFetchFailed)
	assert.False(t, store.IsLoaded(key))
}

func TestThreadStoreSharedFetchSurvivesOneCallerCancelling(t *testing.T) {
	fetcher := mocks.NewMockHistoryFetcher(t)
	store := NewThreadStore(fetcher, mocks.NewMockMessageSender(t))
	key := domain.GroupThread(2)

	started := make(chan struct{})
	release := make(chan struct{})
	var fetchCtxErr error
	fetcher.EXPECT().FetchHistory(mockAnyContext(), key).RunAndReturn(func(ctx context.Context, _ domain.ThreadKey) ([]domain.Message, error) {
		close(started)
		<-release
		fetchCtxErr = ctx.Err()
		return []domain.Message{{ID: "1", SenderID: 3, GroupID: 2}}, nil
	}).Once()

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() { first <- store.FetchHistory(ctx, key) }()
	<-started

	second := make(chan error, 1)
	go func() { second <- store.FetchHistory(context.Background(), key) }()

	cancel()
	require.ErrorIs(t, <-first, context.Canceled)

	close(release)
	require.NoError(t, <-second)
	assert.NoError(t, fetchCtxErr)
	assert.True(t, store.IsLoaded(key))
	assert.Len(t, store.Messages(key), 1)
}

func TestThreadStoreFetchDiscardedAfterReset(t *testing.T) {
	fetcher := mocks.NewMockHistoryFetcher(t)
	store := NewThreadStore(fetcher, mocks.NewMockMessageSender(t))
	key := domain.GroupThread(2)

	fetcher.EXPECT().FetchHistory(mockAnyContext(), key).RunAndReturn(func(context.Context, domain.ThreadKey) ([]domain.Message, error) {
		store.Reset()
		return []domain.Message{{ID: "1", SenderID: 3, GroupID: 2}}, nil
	}).Once()

	require.NoError(t, store.FetchHistory(context.Background(), key))
	assert.False(t, store.IsLoaded(key))
	assert.Nil(t, store.Messages(key))
}

func TestThreadStoreFetchHistoryRejectsInvalidKey(t *testing.T) {
	store := NewThreadStore(mocks.NewMockHistoryFetcher(t), mocks.NewMockMessageSender(t))

	err := store.FetchHistory(context.Background(), domain.ThreadKey{Kind: domain.ThreadPrivate})
	assert.ErrorIs(t, err, domain.ErrInvalidThreadKey)
}

func TestThreadStoreSendDoesNotInsertLocally(t *testing.T) {
	sender := mocks.NewMockMessageSender(t)
	store := NewThreadStore(mocks.NewMockHistoryFetcher(t), sender)
	key := domain.PrivateThread(5)

	sender.EXPECT().Send(mockAnyContext(), key, "hello").Return(nil).Once()

	require.NoError(t, store.Send(context.Background(), key, "hello"))
	assert.Empty(t, store.Messages(key))
}

func TestThreadStoreSendFailureIsReported(t *testing.T) {
	sender := mocks.NewMockMessageSender(t)
	store := NewThreadStore(mocks.NewMockHistoryFetcher(t), sender)
	key := domain.GroupThread(3)

	sender.EXPECT().Send(mockAnyContext(), key, mock.AnythingOfType("string")).Return(errors.New("offline")).Once()

	err := store.Send(context.Background(), key, "hi")
	require.ErrorIs(t, err, domain.ErrSendFailed)
	assert.Contains(t, err.Error(), "offline")
	assert.Nil(t, store.Messages(key))
}

func TestThreadStoreSendRejectsEmptyContent(t *testing.T) {
	store := NewThreadStore(mocks.NewMockHistoryFetcher(t), mocks.NewMockMessageSender(t))

	err := store.Send(context.Background(), domain.PrivateThread(1), "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyContent)
}

func TestThreadStoreSubscribeReceivesChangedKeys(t *testing.T) {
	store := NewThreadStore(mocks.NewMockHistoryFetcher(t), mocks.NewMockMessageSender(t))
	store.SetSelf(1)

	var changed []domain.ThreadKey
	unsubscribe := store.Subscribe(func(key domain.ThreadKey) {
		changed = append(changed, key)
		// listeners may read the store
		_ = store.Messages(key)
	})
	defer unsubscribe()

	_, _ = store.Append(domain.Message{ID: "a", SenderID: 5, ReceiverID: 1})
	_, _ = store.Append(domain.Message{ID: "a", SenderID: 5, ReceiverID: 1})
	_, _ = store.Append(domain.Message{ID: "b", SenderID: 4, GroupID: 9})

	assert.Equal(t, []domain.ThreadKey{domain.PrivateThread(5), domain.GroupThread(9)}, changed)
}
