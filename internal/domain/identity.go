package domain

import (
	"fmt"
	"strconv"
	"strings"
)

type UserID int64
type GroupID int64

func (id UserID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func (id GroupID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Identity is the locally authenticated actor. The zero value means the
// identity has not been resolved yet.
type Identity struct {
	ID UserID
}

func (i Identity) Known() bool {
	return i.ID > 0
}

func ParseUserID(raw string) (UserID, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("invalid user id %q", raw)
	}

	return UserID(value), nil
}

func ParseGroupID(raw string) (GroupID, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("invalid group id %q", raw)
	}

	return GroupID(value), nil
}
