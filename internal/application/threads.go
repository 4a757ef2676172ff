package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bnema/chatsync/internal/domain"
	"github.com/bnema/chatsync/internal/ports"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// ThreadStore keeps one ordered message sequence per thread. Every insertion
// goes through Append or a history install, both of which merge by id.
type ThreadStore struct {
	fetcher ports.HistoryFetcher
	sender  ports.MessageSender
	logger  zerolog.Logger
	timeout time.Duration
	flights singleflight.Group
	changes notifier[domain.ThreadKey]

	mu         sync.RWMutex
	self       domain.UserID
	threads    map[domain.ThreadKey]*domain.Thread
	loaded     map[domain.ThreadKey]struct{}
	generation uint64
}

func NewThreadStore(fetcher ports.HistoryFetcher, sender ports.MessageSender, opts ...Option) *ThreadStore {
	o := buildOptions(opts)

	return &ThreadStore{
		fetcher: fetcher,
		sender:  sender,
		logger:  o.logger.With().Str("component", "threads").Logger(),
		timeout: o.fetchTimeout,
		threads: map[domain.ThreadKey]*domain.Thread{},
		loaded:  map[domain.ThreadKey]struct{}{},
	}
}

// SetSelf sets the identity private thread keys are derived against.
func (s *ThreadStore) SetSelf(id domain.UserID) {
	s.mu.Lock()
	s.self = id
	s.mu.Unlock()
}

func (s *ThreadStore) Self() domain.UserID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.self
}

// FetchHistory loads the history of key once. Concurrent calls for the same
// key share one request. A failed fetch still marks the thread loaded, with
// whatever pushed messages it already holds, and returns a wrapped
// ErrFetchFailed; calling again after that is a no-op. Cancelled fetches
// leave the thread cold.
//
// The shared request runs without the callers' cancellation, bounded by the
// fetch timeout, so one caller giving up does not fail the others. A caller
// whose ctx ends stops waiting and gets its ctx error; the request still
// completes and installs its result.
func (s *ThreadStore) FetchHistory(ctx context.Context, key domain.ThreadKey) error {
	if err := key.Validate(); err != nil {
		return err
	}

	s.mu.RLock()
	_, loaded := s.loaded[key]
	generation := s.generation
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	flight := strconv.FormatUint(generation, 10) + "/" + key.String()
	done := s.flights.DoChan(flight, func() (any, error) {
		if s.IsLoaded(key) {
			return nil, nil
		}
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return nil, s.fetch(fetchCtx, generation, key)
	})

	select {
	case result := <-done:
		return result.Err
	case <-ctx.Done():
		return fmt.Errorf("fetch history %s: %w", key, ctx.Err())
	}
}

func (s *ThreadStore) fetch(ctx context.Context, generation uint64, key domain.ThreadKey) error {
	messages, err := s.fetcher.FetchHistory(ctx, key)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("fetch history %s: %w", key, err)
		}

		s.install(generation, key, nil)
		s.logger.Warn().Err(err).Str("thread", key.String()).Msg("history fetch failed, thread left empty")
		return fmt.Errorf("fetch history %s: %w: %w", key, domain.ErrFetchFailed, err)
	}

	added := s.install(generation, key, messages)
	s.logger.Debug().Str("thread", key.String()).Int("messages", added).Msg("history loaded")

	return nil
}

func (s *ThreadStore) install(generation uint64, key domain.ThreadKey, messages []domain.Message) int {
	s.mu.Lock()
	if s.generation != generation {
		s.mu.Unlock()
		return 0
	}
	added := s.thread(key).Merge(messages...)
	s.loaded[key] = struct{}{}
	s.mu.Unlock()

	s.changes.notify(key)
	return added
}

// thread must be called with mu held for writing.
func (s *ThreadStore) thread(key domain.ThreadKey) *domain.Thread {
	thread, ok := s.threads[key]
	if !ok {
		thread = domain.NewThread()
		s.threads[key] = thread
	}

	return thread
}

// Append merges one pushed or echoed message into its thread and reports
// whether it was new. Messages must carry a backend id; private messages
// additionally need the local identity to find their thread.
func (s *ThreadStore) Append(message domain.Message) (bool, error) {
	if err := message.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	key, err := message.ThreadKeyFor(s.self)
	if err != nil {
		s.mu.Unlock()
		return false, fmt.Errorf("append message %s: %w", message.ID, err)
	}
	added := s.thread(key).Merge(message) > 0
	s.mu.Unlock()

	if added {
		s.changes.notify(key)
	}

	return added, nil
}

// Send submits content without touching the local thread; the message shows
// up once the backend echoes it over the live transport.
func (s *ThreadStore) Send(ctx context.Context, key domain.ThreadKey, content string) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		return domain.ErrEmptyContent
	}

	if err := s.sender.Send(ctx, key, content); err != nil {
		return fmt.Errorf("send to %s: %w: %w", key, domain.ErrSendFailed, err)
	}

	return nil
}

// Messages returns the ordered messages of key, or nil when the thread does
// not exist yet.
func (s *ThreadStore) Messages(key domain.ThreadKey) []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	thread, ok := s.threads[key]
	if !ok {
		return nil
	}

	return thread.Messages()
}

// IsLoaded reports whether history for key has been installed, successfully
// or not.
func (s *ThreadStore) IsLoaded(key domain.ThreadKey) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.loaded[key]
	return ok
}

// Subscribe registers fn to run with the key of every thread that changed.
func (s *ThreadStore) Subscribe(fn func(domain.ThreadKey)) func() {
	return s.changes.subscribe(fn)
}

// Reset forgets every thread and the local identity. Fetches in flight are
// discarded when they complete.
func (s *ThreadStore) Reset() {
	s.mu.Lock()
	s.self = 0
	s.threads = map[domain.ThreadKey]*domain.Thread{}
	s.loaded = map[domain.ThreadKey]struct{}{}
	s.generation++
	s.mu.Unlock()
}
