package application

import (
	"context"
	"sync"

	"github.com/bnema/chatsync/internal/domain"
	"github.com/stretchr/testify/mock"
)

type inMemoryKVStore struct {
	mu      sync.Mutex
	values  map[string]string
	putErr  error
	getErrs map[string]error
	puts    int
}

func newInMemoryKVStore() *inMemoryKVStore {
	return &inMemoryKVStore{values: map[string]string{}}
}

func (s *inMemoryKVStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.getErrs[key]; ok {
		return "", err
	}
	value, ok := s.values[key]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return value, nil
}

func (s *inMemoryKVStore) Put(_ context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	s.values[key] = value
	return nil
}

func (s *inMemoryKVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[key]; !ok {
		return domain.ErrKeyNotFound
	}
	delete(s.values, key)
	return nil
}

func (s *inMemoryKVStore) value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.values[key]
	return value, ok
}

// hookedKVStore runs onGet before every read.
type hookedKVStore struct {
	*inMemoryKVStore
	onGet func()
}

func (s *hookedKVStore) Get(ctx context.Context, key string) (string, error) {
	if s.onGet != nil {
		s.onGet()
	}
	return s.inMemoryKVStore.Get(ctx, key)
}

func mockAnyContext() interface{} {
	return mock.Anything
}

func contactIDs(contacts []domain.Contact) []domain.UserID {
	ids := make([]domain.UserID, 0, len(contacts))
	for _, contact := range contacts {
		ids = append(ids, contact.ID)
	}
	return ids
}

func messageIDs(messages []domain.Message) []domain.MessageID {
	ids := make([]domain.MessageID, 0, len(messages))
	for _, message := range messages {
		ids = append(ids, message.ID)
	}
	return ids
}
