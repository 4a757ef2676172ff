package application

import (
	"encoding/json"
	"fmt"

	"github.com/bnema/chatsync/internal/domain"
	"github.com/bnema/chatsync/internal/wire"
)

// Event is a validated live event. The set of implementations is closed.
type Event interface {
	Kind() string
	isEvent()
}

type PrivateMessageEvent struct {
	Message domain.Message
}

type GroupMessageEvent struct {
	Message domain.Message
}

// PresenceBulkEvent carries the full online set announced on (re)connect.
type PresenceBulkEvent struct {
	Online []domain.UserID
}

type PresenceDeltaEvent struct {
	UserID domain.UserID
	Online bool
}

// UnreadSignalEvent tells that SenderID wrote to us.
type UnreadSignalEvent struct {
	SenderID domain.UserID
}

type DisconnectEvent struct{}

func (PrivateMessageEvent) Kind() string { return domain.FramePrivateMessage }
func (GroupMessageEvent) Kind() string   { return domain.FrameGroupMessage }
func (PresenceBulkEvent) Kind() string   { return domain.FramePresenceInit }
func (PresenceDeltaEvent) Kind() string  { return domain.FramePresence }
func (UnreadSignalEvent) Kind() string   { return domain.FrameNewMessageNotice }
func (DisconnectEvent) Kind() string     { return domain.FrameDisconnect }

func (PrivateMessageEvent) isEvent() {}
func (GroupMessageEvent) isEvent()   {}
func (PresenceBulkEvent) isEvent()   {}
func (PresenceDeltaEvent) isEvent()  {}
func (UnreadSignalEvent) isEvent()   {}
func (DisconnectEvent) isEvent()     {}

// DecodeEvent validates a raw frame. Frames the engine has no use for
// (pong, notification) decode to a nil Event and a nil error.
func DecodeEvent(frame domain.LiveFrame) (Event, error) {
	switch frame.Type {
	case domain.FramePrivateMessage:
		message, err := decodeMessage(frame)
		if err != nil {
			return nil, err
		}
		if message.IsGroup() {
			return nil, malformed(frame, "private message carries a group id")
		}
		return PrivateMessageEvent{Message: message}, nil

	case domain.FrameGroupMessage:
		message, err := decodeMessage(frame)
		if err != nil {
			return nil, err
		}
		if !message.IsGroup() {
			return nil, malformed(frame, "group message without group id")
		}
		return GroupMessageEvent{Message: message}, nil

	case domain.FramePresenceInit:
		var ids []wire.ID
		if err := json.Unmarshal(frame.Data, &ids); err != nil {
			return nil, malformed(frame, err.Error())
		}
		online := make([]domain.UserID, 0, len(ids))
		for _, id := range ids {
			if id > 0 {
				online = append(online, domain.UserID(id))
			}
		}
		return PresenceBulkEvent{Online: online}, nil

	case domain.FramePresence:
		var presence wire.Presence
		if err := json.Unmarshal(frame.Data, &presence); err != nil {
			return nil, malformed(frame, err.Error())
		}
		if presence.UserID <= 0 {
			return nil, malformed(frame, "missing user id")
		}
		return PresenceDeltaEvent{UserID: domain.UserID(presence.UserID), Online: presence.Online}, nil

	case domain.FrameNewMessageNotice:
		var sender wire.ID
		if err := json.Unmarshal(frame.Data, &sender); err != nil {
			return nil, malformed(frame, err.Error())
		}
		if sender <= 0 {
			return nil, malformed(frame, "missing sender id")
		}
		return UnreadSignalEvent{SenderID: domain.UserID(sender)}, nil

	case domain.FrameDisconnect:
		return DisconnectEvent{}, nil

	case domain.FramePong, domain.FrameNotification:
		return nil, nil

	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownEvent, frame.Type)
	}
}

func decodeMessage(frame domain.LiveFrame) (domain.Message, error) {
	var payload wire.Message
	if err := json.Unmarshal(frame.Data, &payload); err != nil {
		return domain.Message{}, malformed(frame, err.Error())
	}

	message := payload.Domain()
	if err := message.Validate(); err != nil {
		return domain.Message{}, malformed(frame, err.Error())
	}

	return message, nil
}

func malformed(frame domain.LiveFrame, reason string) error {
	return fmt.Errorf("%w: %s: %s", domain.ErrMalformedEvent, frame.Type, reason)
}
