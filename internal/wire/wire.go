// Package wire holds the JSON shapes exchanged with the social network
// backend, over both the REST API and the live socket. Ids arrive as numbers
// or numeric strings depending on the endpoint; they are normalised here so
// nothing past this package sees the difference.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/chatsync/internal/domain"
)

var null = []byte("null")

// ID is a numeric identifier encoded either as a JSON number or as a numeric
// string. null and "" decode to zero.
type ID int64

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, null) {
		*id = 0
		return nil
	}

	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		raw = strings.TrimSpace(text)
		if raw == "" {
			*id = 0
			return nil
		}
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		floatValue, floatErr := strconv.ParseFloat(raw, 64)
		if floatErr != nil || floatValue != float64(int64(floatValue)) {
			return fmt.Errorf("decode id %s: not an integer", data)
		}
		value = int64(floatValue)
	}

	*id = ID(value)
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(id), 10)), nil
}

// MessageID keeps the backend message id as text whatever its JSON type.
type MessageID string

func (id *MessageID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, null) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("decode message id: %w", err)
		}
		*id = MessageID(strings.TrimSpace(text))
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("decode message id: %w", err)
	}
	*id = MessageID(number.String())
	return nil
}

// Timestamp is a unix time in seconds. RFC 3339 strings are accepted too.
type Timestamp int64

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, null) {
		*ts = 0
		return nil
	}

	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("decode timestamp: %w", err)
		}
		text = strings.TrimSpace(text)
		if value, err := strconv.ParseInt(text, 10, 64); err == nil {
			*ts = Timestamp(value)
			return nil
		}
		parsed, err := time.Parse(time.RFC3339, text)
		if err != nil {
			return fmt.Errorf("decode timestamp %q: %w", text, err)
		}
		*ts = Timestamp(parsed.Unix())
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("decode timestamp: %w", err)
	}
	value, err := number.Int64()
	if err != nil {
		floatValue, floatErr := number.Float64()
		if floatErr != nil {
			return fmt.Errorf("decode timestamp %s: %w", data, err)
		}
		value = int64(floatValue)
	}
	*ts = Timestamp(value)
	return nil
}

// Message covers both private and group messages; GroupID is zero for
// private ones.
type Message struct {
	ID         MessageID `json:"id"`
	SenderID   ID        `json:"sender_id"`
	ReceiverID ID        `json:"receiver_id,omitempty"`
	GroupID    ID        `json:"group_id,omitempty"`
	SenderName string    `json:"sender_name,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  Timestamp `json:"created_at"`
}

func (m Message) Domain() domain.Message {
	return domain.Message{
		ID:         domain.MessageID(m.ID),
		SenderID:   domain.UserID(m.SenderID),
		ReceiverID: domain.UserID(m.ReceiverID),
		GroupID:    domain.GroupID(m.GroupID),
		SenderName: m.SenderName,
		Content:    m.Content,
		CreatedAt:  int64(m.CreatedAt),
	}
}

func Messages(rows []Message) []domain.Message {
	out := make([]domain.Message, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Domain())
	}
	return out
}

type User struct {
	ID          ID     `json:"id"`
	Username    string `json:"username"`
	Avatar      string `json:"avatar,omitempty"`
	UnreadCount int    `json:"unread_count"`
	Online      bool   `json:"online"`
}

func (u User) Domain() domain.Contact {
	return domain.Contact{
		ID:          domain.UserID(u.ID),
		Username:    u.Username,
		Avatar:      u.Avatar,
		UnreadCount: u.UnreadCount,
		Online:      u.Online,
	}
}

type Group struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Summary is the body of GET /chat/conversations.
type Summary struct {
	Followers []User  `json:"followers"`
	Following []User  `json:"following"`
	Groups    []Group `json:"groups"`
}

func (s Summary) Domain() domain.Summary {
	summary := domain.Summary{
		Followers: make([]domain.Contact, 0, len(s.Followers)),
		Following: make([]domain.Contact, 0, len(s.Following)),
		Groups:    make([]domain.GroupSummary, 0, len(s.Groups)),
	}
	for _, user := range s.Followers {
		summary.Followers = append(summary.Followers, user.Domain())
	}
	for _, user := range s.Following {
		summary.Following = append(summary.Following, user.Domain())
	}
	for _, group := range s.Groups {
		if group.ID <= 0 {
			continue
		}
		summary.Groups = append(summary.Groups, domain.GroupSummary{ID: domain.GroupID(group.ID), Name: group.Name})
	}

	return summary
}

// Presence is the payload of a "presence" frame.
type Presence struct {
	UserID ID   `json:"user_id"`
	Online bool `json:"online"`
}

// Me is the body of GET /me. Older backends answer {"user_id": 5}, newer
// ones {"user": {"id": 5}}.
type Me struct {
	User *struct {
		ID ID `json:"id"`
	} `json:"user"`
	UserID ID `json:"user_id"`
}

func (m Me) Identity() domain.Identity {
	if m.User != nil && m.User.ID > 0 {
		return domain.Identity{ID: domain.UserID(m.User.ID)}
	}
	if m.UserID > 0 {
		return domain.Identity{ID: domain.UserID(m.UserID)}
	}

	return domain.Identity{}
}

type SendPrivateRequest struct {
	ReceiverID ID     `json:"receiver_id"`
	Content    string `json:"content"`
}

type SendGroupRequest struct {
	GroupID ID     `json:"group_id"`
	Content string `json:"content"`
}

// Ping is what the client writes to keep the socket alive.
var Ping = []byte(`{"type":"ping"}`)
