package domain

import (
	"fmt"
	"strconv"
	"strings"
)

type ThreadKind string

const (
	ThreadPrivate ThreadKind = "private"
	ThreadGroup   ThreadKind = "group"
)

func (k ThreadKind) Valid() bool {
	switch k {
	case ThreadPrivate, ThreadGroup:
		return true
	default:
		return false
	}
}

// ThreadKey identifies a thread: the counterparty id for private threads,
// the group id for group threads.
type ThreadKey struct {
	Kind ThreadKind
	ID   int64
}

func PrivateThread(id UserID) ThreadKey {
	return ThreadKey{Kind: ThreadPrivate, ID: int64(id)}
}

func GroupThread(id GroupID) ThreadKey {
	return ThreadKey{Kind: ThreadGroup, ID: int64(id)}
}

func (k ThreadKey) Validate() error {
	if !k.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidThreadKey, k.Kind)
	}
	if k.ID <= 0 {
		return fmt.Errorf("%w: id must be positive, got %d", ErrInvalidThreadKey, k.ID)
	}

	return nil
}

func (k ThreadKey) UserID() UserID {
	return UserID(k.ID)
}

func (k ThreadKey) GroupID() GroupID {
	return GroupID(k.ID)
}

func (k ThreadKey) String() string {
	return string(k.Kind) + ":" + strconv.FormatInt(k.ID, 10)
}

// ParseThreadKey accepts the String form ("private:5", "group:3").
func ParseThreadKey(raw string) (ThreadKey, error) {
	kind, id, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return ThreadKey{}, fmt.Errorf("%w: %q", ErrInvalidThreadKey, raw)
	}

	value, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return ThreadKey{}, fmt.Errorf("%w: %q", ErrInvalidThreadKey, raw)
	}

	key := ThreadKey{Kind: ThreadKind(kind), ID: value}
	if err := key.Validate(); err != nil {
		return ThreadKey{}, err
	}

	return key, nil
}
