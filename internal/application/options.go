package application

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultNamespace      = "social_network_"
	defaultRestoreWorkers = 4
	defaultFetchTimeout   = 30 * time.Second
)

type options struct {
	logger         zerolog.Logger
	namespace      string
	restoreWorkers int
	fetchTimeout   time.Duration
}

type Option func(*options)

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithNamespace sets the prefix of the persisted open-window keys.
func WithNamespace(namespace string) Option {
	return func(o *options) {
		o.namespace = namespace
	}
}

// WithRestoreWorkers bounds how many history fetches a restore runs at once.
func WithRestoreWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.restoreWorkers = n
		}
	}
}

// WithFetchTimeout bounds one shared history request. It runs detached from
// the callers waiting on it, so this is the only deadline it has.
func WithFetchTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.fetchTimeout = d
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger:         zerolog.Nop(),
		namespace:      defaultNamespace,
		restoreWorkers: defaultRestoreWorkers,
		fetchTimeout:   defaultFetchTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// notifier fans change notifications out to subscribers. Callers must not
// hold their own lock while calling notify.
type notifier[T any] struct {
	mu        sync.Mutex
	next      int
	listeners map[int]func(T)
}

func (n *notifier[T]) subscribe(fn func(T)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.listeners == nil {
		n.listeners = map[int]func(T){}
	}
	id := n.next
	n.next++
	n.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.listeners, id)
			n.mu.Unlock()
		})
	}
}

func (n *notifier[T]) notify(value T) {
	n.mu.Lock()
	listeners := make([]func(T), 0, len(n.listeners))
	for id := 0; id < n.next; id++ {
		if fn, ok := n.listeners[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	n.mu.Unlock()

	for _, fn := range listeners {
		fn(value)
	}
}
