package domain

import (
	"fmt"
	"strings"
)

// MessageID is assigned by the backend; it is never generated locally.
type MessageID string

type Message struct {
	ID         MessageID
	SenderID   UserID
	ReceiverID UserID
	GroupID    GroupID
	SenderName string
	Content    string
	CreatedAt  int64
}

func (m Message) IsGroup() bool {
	return m.GroupID > 0
}

// ThreadKeyFor derives the thread a message belongs to, relative to self:
// the group for group messages, otherwise the other participant.
func (m Message) ThreadKeyFor(self UserID) (ThreadKey, error) {
	if m.IsGroup() {
		return GroupThread(m.GroupID), nil
	}
	if self <= 0 {
		return ThreadKey{}, ErrNoIdentity
	}

	if m.ReceiverID == self {
		return PrivateThread(m.SenderID), nil
	}

	return PrivateThread(m.ReceiverID), nil
}

// SameContent reports whether m and other describe the same message when ids
// cannot be compared: same participants, timestamp and body.
func (m Message) SameContent(other Message) bool {
	return m.SenderID == other.SenderID &&
		m.ReceiverID == other.ReceiverID &&
		m.GroupID == other.GroupID &&
		m.CreatedAt == other.CreatedAt &&
		m.Content == other.Content
}

// Validate checks the fields append relies on.
func (m Message) Validate() error {
	if strings.TrimSpace(string(m.ID)) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidMessage)
	}
	if m.SenderID <= 0 {
		return fmt.Errorf("%w: message %s: missing sender", ErrInvalidMessage, m.ID)
	}
	if !m.IsGroup() && m.ReceiverID <= 0 {
		return fmt.Errorf("%w: message %s: missing receiver or group", ErrInvalidMessage, m.ID)
	}

	return nil
}
