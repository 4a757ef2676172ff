// Package redis keeps storage entries as fields of one Redis hash, so
// several machines can share the same open windows.
package redis

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/bnema/chatsync/internal/domain"
	"github.com/bnema/chatsync/internal/ports"
)

const defaultHashKey = "chatsync:kv"

type Store struct {
	client  goredis.UniversalClient
	hashKey string
	owned   bool
}

var _ ports.KVStore = (*Store)(nil)

// NewStore dials addr. The returned store owns the client and closes it.
func NewStore(addr string, hashKey string) (*Store, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, errors.New("redis kv store: empty address")
	}
	s := NewStoreWithClient(goredis.NewClient(&goredis.Options{Addr: addr}), hashKey)
	s.owned = true
	return s, nil
}

func NewStoreWithClient(client goredis.UniversalClient, hashKey string) *Store {
	if strings.TrimSpace(hashKey) == "" {
		hashKey = defaultHashKey
	}
	return &Store{client: client, hashKey: hashKey}
}

func (s *Store) Close() error {
	if s == nil || s.client == nil || !s.owned {
		return nil
	}
	return s.client.Close()
}

// Ping checks connectivity so misconfiguration surfaces at startup.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "redis kv store: ping")
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	value, err := s.client.HGet(ctx, s.hashKey, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", errors.Wrapf(domain.ErrKeyNotFound, "redis kv store: key %q", key)
	}
	if err != nil {
		return "", errors.Wrapf(err, "redis kv store: get %q", key)
	}
	return value, nil
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("redis kv store: key is empty")
	}

	if err := s.client.HSet(ctx, s.hashKey, key, value).Err(); err != nil {
		return errors.Wrapf(err, "redis kv store: put %q", key)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.client.HDel(ctx, s.hashKey, key).Err(); err != nil {
		return errors.Wrapf(err, "redis kv store: delete %q", key)
	}
	return nil
}
