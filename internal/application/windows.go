package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/bnema/chatsync/internal/domain"
	"github.com/bnema/chatsync/internal/ports"
	"github.com/bnema/chatsync/internal/wire"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type historyLoader interface {
	IsLoaded(key domain.ThreadKey) bool
	FetchHistory(ctx context.Context, key domain.ThreadKey) error
}

type unreadResetter interface {
	ResetUnread(id domain.UserID)
}

// WindowRegistry tracks the open chat windows and persists them per
// identity. Every mutation rewrites both persisted sets in full.
type WindowRegistry struct {
	store     ports.KVStore
	history   historyLoader
	unread    unreadResetter
	logger    zerolog.Logger
	namespace string
	workers   int
	changes   notifier[domain.OpenWindows]

	mu         sync.RWMutex
	identity   domain.Identity
	windows    domain.OpenWindows
	generation uint64
}

func NewWindowRegistry(store ports.KVStore, history historyLoader, unread unreadResetter, opts ...Option) *WindowRegistry {
	o := buildOptions(opts)

	return &WindowRegistry{
		store:     store,
		history:   history,
		unread:    unread,
		logger:    o.logger.With().Str("component", "windows").Logger(),
		namespace: o.namespace,
		workers:   o.restoreWorkers,
	}
}

// PrivateKey and GroupKey name the persisted sets of identity.
func (r *WindowRegistry) PrivateKey(identity domain.Identity) string {
	return r.namespace + "open_chats_" + identity.ID.String()
}

func (r *WindowRegistry) GroupKey(identity domain.Identity) string {
	return r.namespace + "open_group_chats_" + identity.ID.String()
}

// Restore replaces the in-memory windows with the sets persisted for
// identity and fetches history for every restored thread that is still
// cold. Missing or corrupt storage restores nothing. Fetch failures are
// logged; only cancellation is returned. A Reset or Forget that lands
// while the sets are being read wins and the restore installs nothing.
func (r *WindowRegistry) Restore(ctx context.Context, identity domain.Identity) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.RLock()
	generation := r.generation
	r.mu.RUnlock()

	var windows domain.OpenWindows
	if identity.Known() {
		for _, id := range r.readIDs(ctx, r.PrivateKey(identity)) {
			windows.Add(domain.PrivateThread(domain.UserID(id)))
		}
		for _, id := range r.readIDs(ctx, r.GroupKey(identity)) {
			windows.Add(domain.GroupThread(domain.GroupID(id)))
		}
	}

	r.mu.Lock()
	if r.generation != generation {
		r.mu.Unlock()
		r.logger.Debug().Str("identity", identity.ID.String()).Msg("discarding stale open windows restore")
		return nil
	}
	r.identity = identity
	r.windows = windows.Clone()
	r.mu.Unlock()
	r.changes.notify(windows.Clone())

	r.logger.Debug().
		Str("identity", identity.ID.String()).
		Int("private", len(windows.Private)).
		Int("groups", len(windows.Groups)).
		Msg("open windows restored")

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.workers)
	for _, key := range windows.Keys() {
		if r.history.IsLoaded(key) {
			continue
		}
		group.Go(func() error {
			err := r.history.FetchHistory(groupCtx, key)
			if err != nil && !errors.Is(err, domain.ErrFetchFailed) {
				return err
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("restore open windows: %w", err)
	}

	return nil
}

// readIDs decodes one persisted id array. Anything unreadable counts as
// empty.
func (r *WindowRegistry) readIDs(ctx context.Context, key string) []int64 {
	raw, err := r.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			r.logger.Warn().Err(err).Str("key", key).Msg("read open windows failed, treating as empty")
		}
		return nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("persisted open windows are corrupt, treating as empty")
		return nil
	}

	ids := make([]int64, 0, len(entries))
	for _, entry := range entries {
		var id wire.ID
		if err := json.Unmarshal(entry, &id); err != nil || id <= 0 {
			r.logger.Warn().Str("key", key).RawJSON("entry", entry).Msg("skipping invalid open window entry")
			continue
		}
		ids = append(ids, int64(id))
	}

	return ids
}

// Open adds key to the open set, zeroes the contact's unread count for
// private threads and loads history when the thread is cold. The returned
// error only reports persistence failures; the window stays open in memory.
func (r *WindowRegistry) Open(ctx context.Context, key domain.ThreadKey) error {
	if err := key.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	changed := r.windows.Add(key)
	snapshot := r.windows.Clone()
	identity := r.identity
	r.mu.Unlock()

	var persistErr error
	if changed {
		r.changes.notify(snapshot)
		persistErr = r.persist(ctx, identity, snapshot)
	}

	if key.Kind == domain.ThreadPrivate {
		r.unread.ResetUnread(key.UserID())
	}

	if !r.history.IsLoaded(key) {
		if err := r.history.FetchHistory(ctx, key); err != nil && !errors.Is(err, domain.ErrFetchFailed) {
			return errors.Join(persistErr, err)
		}
	}

	return persistErr
}

func (r *WindowRegistry) Close(ctx context.Context, key domain.ThreadKey) error {
	if err := key.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	changed := r.windows.Remove(key)
	snapshot := r.windows.Clone()
	identity := r.identity
	r.mu.Unlock()

	if !changed {
		return nil
	}

	r.changes.notify(snapshot)
	return r.persist(ctx, identity, snapshot)
}

// Forget closes every window and deletes the persisted sets of the current
// identity.
func (r *WindowRegistry) Forget(ctx context.Context) error {
	r.mu.Lock()
	identity := r.identity
	r.windows = domain.OpenWindows{}
	r.generation++
	r.mu.Unlock()
	r.changes.notify(domain.OpenWindows{})

	if !identity.Known() {
		return nil
	}

	var errs error
	for _, key := range []string{r.PrivateKey(identity), r.GroupKey(identity)} {
		if err := r.store.Delete(ctx, key); err != nil && !errors.Is(err, domain.ErrKeyNotFound) {
			errs = errors.Join(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}

	return errs
}

func (r *WindowRegistry) persist(ctx context.Context, identity domain.Identity, windows domain.OpenWindows) error {
	if !identity.Known() {
		r.logger.Debug().Msg("identity unknown, open windows not persisted")
		return nil
	}

	private := make([]int64, 0, len(windows.Private))
	for _, id := range windows.Private {
		private = append(private, int64(id))
	}
	groups := make([]int64, 0, len(windows.Groups))
	for _, id := range windows.Groups {
		groups = append(groups, int64(id))
	}

	var errs error
	for key, ids := range map[string][]int64{r.PrivateKey(identity): private, r.GroupKey(identity): groups} {
		encoded, err := json.Marshal(ids)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("encode %s: %w", key, err))
			continue
		}
		if err := r.store.Put(ctx, key, string(encoded)); err != nil {
			errs = errors.Join(errs, fmt.Errorf("persist %s: %w", key, err))
		}
	}

	if errs != nil {
		r.logger.Error().Err(errs).Str("identity", identity.ID.String()).Msg("persist open windows failed")
		return fmt.Errorf("persist open windows: %w", errs)
	}

	return nil
}

func (r *WindowRegistry) IsOpen(key domain.ThreadKey) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.windows.Contains(key)
}

func (r *WindowRegistry) Snapshot() domain.OpenWindows {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.windows.Clone()
}

func (r *WindowRegistry) Identity() domain.Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.identity
}

// Subscribe registers fn to run with a snapshot after every change.
func (r *WindowRegistry) Subscribe(fn func(domain.OpenWindows)) func() {
	return r.changes.subscribe(fn)
}

// Reset clears the in-memory windows and identity. Persisted sets are kept
// so the next login of the same identity restores them.
func (r *WindowRegistry) Reset() {
	r.mu.Lock()
	r.identity = domain.Identity{}
	r.windows = domain.OpenWindows{}
	r.generation++
	r.mu.Unlock()

	r.changes.notify(domain.OpenWindows{})
}
