package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bnema/chatsync/internal/domain"
	"github.com/bnema/chatsync/internal/ports"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Engine wires the directory, thread store, window registry and router
// into one session scoped to the current identity.
type Engine struct {
	identities ports.IdentityProvider
	logger     zerolog.Logger

	directory *Directory
	threads   *ThreadStore
	windows   *WindowRegistry
	router    *Router

	mu       sync.Mutex
	identity domain.Identity
}

type EngineDeps struct {
	Identity ports.IdentityProvider
	History  ports.HistoryFetcher
	Sender   ports.MessageSender
	Storage  ports.KVStore
}

func NewEngine(deps EngineDeps, opts ...Option) *Engine {
	o := buildOptions(opts)

	directory := NewDirectory(deps.History, opts...)
	threads := NewThreadStore(deps.History, deps.Sender, opts...)
	windows := NewWindowRegistry(deps.Storage, threads, directory, opts...)
	directory.SetOpenChecker(OpenCheckerFunc(windows.IsOpen))

	return &Engine{
		identities: deps.Identity,
		logger:     o.logger.With().Str("component", "engine").Logger(),
		directory:  directory,
		threads:    threads,
		windows:    windows,
		router:     NewRouter(directory, threads, opts...),
	}
}

// Start resolves the identity, then loads the summary and restores the open
// windows concurrently. An unresolved identity is tolerated: the summary
// still loads, nothing is restored and private pushes are rejected until
// SyncIdentity picks the identity up. Fetch failures degrade the affected
// collection and are not returned.
func (e *Engine) Start(ctx context.Context) error {
	identity, err := e.identities.CurrentIdentity(ctx)
	if err != nil {
		return fmt.Errorf("resolve identity: %w", err)
	}

	e.mu.Lock()
	e.identity = identity
	e.mu.Unlock()

	e.threads.SetSelf(identity.ID)
	if !identity.Known() {
		e.logger.Info().Msg("identity not resolved yet, starting without persisted windows")
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := e.directory.LoadSummary(groupCtx); err != nil && !errors.Is(err, domain.ErrFetchFailed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		return e.windows.Restore(groupCtx, identity)
	})

	if err := group.Wait(); err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	e.logger.Info().
		Str("identity", identity.ID.String()).
		Int("contacts", len(e.directory.Contacts())).
		Int("open_windows", e.windows.Snapshot().Len()).
		Msg("session started")
	return nil
}

// SyncIdentity re-resolves the identity and restarts the session when it
// changed. It reports whether a restart happened.
func (e *Engine) SyncIdentity(ctx context.Context) (bool, error) {
	identity, err := e.identities.CurrentIdentity(ctx)
	if err != nil {
		return false, fmt.Errorf("resolve identity: %w", err)
	}

	e.mu.Lock()
	current := e.identity
	e.mu.Unlock()
	if identity == current {
		return false, nil
	}

	e.logger.Info().
		Str("from", current.ID.String()).
		Str("to", identity.ID.String()).
		Msg("identity changed, restarting session")
	e.Reset()

	return true, e.Start(ctx)
}

// Reset ends the session: every in-memory collection is cleared.
// Persisted windows survive for the next login.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.identity = domain.Identity{}
	e.mu.Unlock()

	e.directory.Reset()
	e.threads.Reset()
	e.windows.Reset()
}

func (e *Engine) Identity() domain.Identity {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.identity
}

func (e *Engine) Open(ctx context.Context, key domain.ThreadKey) error {
	return e.windows.Open(ctx, key)
}

func (e *Engine) Close(ctx context.Context, key domain.ThreadKey) error {
	return e.windows.Close(ctx, key)
}

func (e *Engine) Send(ctx context.Context, key domain.ThreadKey, content string) error {
	return e.threads.Send(ctx, key, content)
}

// MarkSeen zeroes the unread count of a private thread without opening it.
func (e *Engine) MarkSeen(key domain.ThreadKey) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if key.Kind == domain.ThreadPrivate {
		e.directory.ResetUnread(key.UserID())
	}

	return nil
}

// LoadHistory fetches the history of key when it is still cold.
func (e *Engine) LoadHistory(ctx context.Context, key domain.ThreadKey) error {
	return e.threads.FetchHistory(ctx, key)
}

// HandleFrame routes one live frame.
func (e *Engine) HandleFrame(ctx context.Context, frame domain.LiveFrame) error {
	return e.router.HandleFrame(ctx, frame)
}

// Run feeds frames from transport into the router until ctx is done or the
// transport gives up. Rejected frames are logged and skipped.
func (e *Engine) Run(ctx context.Context, transport ports.LiveTransport) error {
	err := transport.Run(ctx, func(ctx context.Context, frame domain.LiveFrame) {
		_ = e.router.HandleFrame(ctx, frame)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run live transport: %w", err)
	}

	return nil
}

func (e *Engine) Directory() *Directory {
	return e.directory
}

func (e *Engine) Threads() *ThreadStore {
	return e.threads
}

func (e *Engine) Windows() *WindowRegistry {
	return e.windows
}
