package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bnema/chatsync/internal/domain"
	"github.com/bnema/chatsync/internal/ports"
	"github.com/rs/zerolog"
)

// OpenChecker reports whether a thread is currently rendered as a window.
type OpenChecker interface {
	IsOpen(key domain.ThreadKey) bool
}

type OpenCheckerFunc func(key domain.ThreadKey) bool

func (f OpenCheckerFunc) IsOpen(key domain.ThreadKey) bool {
	return f(key)
}

// Directory is the set of known contacts and group chats, annotated with
// presence and unread counts.
type Directory struct {
	fetcher ports.HistoryFetcher
	logger  zerolog.Logger
	changes notifier[struct{}]

	mu         sync.RWMutex
	open       OpenChecker
	contacts   []domain.Contact
	index      map[domain.UserID]int
	groups     []domain.GroupSummary
	generation uint64
}

func NewDirectory(fetcher ports.HistoryFetcher, opts ...Option) *Directory {
	o := buildOptions(opts)

	return &Directory{
		fetcher: fetcher,
		logger:  o.logger.With().Str("component", "directory").Logger(),
		index:   map[domain.UserID]int{},
	}
}

// SetOpenChecker installs the query incrementUnread consults.
func (d *Directory) SetOpenChecker(open OpenChecker) {
	d.mu.Lock()
	d.open = open
	d.mu.Unlock()
}

// LoadSummary replaces contacts and groups with the remote summary. Local
// unread increments and presence overlays are discarded. On failure both
// sets are emptied and a wrapped ErrFetchFailed is returned.
func (d *Directory) LoadSummary(ctx context.Context) error {
	d.mu.RLock()
	generation := d.generation
	d.mu.RUnlock()

	summary, err := d.fetcher.FetchSummary(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("fetch conversations summary: %w", err)
		}

		d.install(generation, domain.Summary{})
		d.logger.Warn().Err(err).Msg("conversations summary fetch failed, directory reset")
		return fmt.Errorf("fetch conversations summary: %w: %w", domain.ErrFetchFailed, err)
	}

	if d.install(generation, summary) {
		d.logger.Debug().
			Int("contacts", len(d.Contacts())).
			Int("groups", len(summary.Groups)).
			Msg("conversations summary loaded")
	}

	return nil
}

func (d *Directory) install(generation uint64, summary domain.Summary) bool {
	contacts := summary.MergedContacts()
	index := make(map[domain.UserID]int, len(contacts))
	for i, contact := range contacts {
		index[contact.ID] = i
	}

	d.mu.Lock()
	if d.generation != generation {
		d.mu.Unlock()
		return false
	}
	d.contacts = contacts
	d.index = index
	d.groups = append([]domain.GroupSummary{}, summary.Groups...)
	d.mu.Unlock()

	d.changes.notify(struct{}{})
	return true
}

// SetPresence is a no-op for unknown ids.
func (d *Directory) SetPresence(id domain.UserID, online bool) {
	d.mu.Lock()
	i, ok := d.index[id]
	changed := ok && d.contacts[i].Online != online
	if changed {
		d.contacts[i].Online = online
	}
	d.mu.Unlock()

	if changed {
		d.changes.notify(struct{}{})
	}
}

// SetBulkPresence marks exactly the given ids online and everyone else
// offline.
func (d *Directory) SetBulkPresence(ids []domain.UserID) {
	online := make(map[domain.UserID]struct{}, len(ids))
	for _, id := range ids {
		online[id] = struct{}{}
	}

	d.mu.Lock()
	for i := range d.contacts {
		_, ok := online[d.contacts[i].ID]
		d.contacts[i].Online = ok
	}
	d.mu.Unlock()

	d.changes.notify(struct{}{})
}

func (d *Directory) ClearAllPresence() {
	d.SetBulkPresence(nil)
}

// IncrementUnread bumps the unread count of id unless its private thread is
// open. Unknown ids are ignored.
func (d *Directory) IncrementUnread(id domain.UserID) {
	d.mu.RLock()
	open := d.open
	d.mu.RUnlock()

	if open != nil && open.IsOpen(domain.PrivateThread(id)) {
		return
	}

	d.mu.Lock()
	i, ok := d.index[id]
	if ok {
		d.contacts[i].UnreadCount++
	}
	d.mu.Unlock()

	if ok {
		d.changes.notify(struct{}{})
	}
}

func (d *Directory) ResetUnread(id domain.UserID) {
	d.mu.Lock()
	i, ok := d.index[id]
	changed := ok && d.contacts[i].UnreadCount != 0
	if changed {
		d.contacts[i].UnreadCount = 0
	}
	d.mu.Unlock()

	if changed {
		d.changes.notify(struct{}{})
	}
}

func (d *Directory) Contacts() []domain.Contact {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return append([]domain.Contact{}, d.contacts...)
}

func (d *Directory) Contact(id domain.UserID) (domain.Contact, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	i, ok := d.index[id]
	if !ok {
		return domain.Contact{}, false
	}

	return d.contacts[i], true
}

func (d *Directory) Groups() []domain.GroupSummary {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return append([]domain.GroupSummary{}, d.groups...)
}

// Subscribe registers fn to run after every directory change.
func (d *Directory) Subscribe(fn func()) func() {
	return d.changes.subscribe(func(struct{}) { fn() })
}

// Reset drops every contact and group. Summary fetches started before the
// reset are discarded when they complete.
func (d *Directory) Reset() {
	d.mu.Lock()
	d.contacts = nil
	d.index = map[domain.UserID]int{}
	d.groups = nil
	d.generation++
	d.mu.Unlock()

	d.changes.notify(struct{}{})
}
