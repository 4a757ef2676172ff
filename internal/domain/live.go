package domain

import "encoding/json"

// Live frame types as sent by the backend. FrameDisconnect is synthesised by
// the transport when the connection drops.
const (
	FramePrivateMessage   = "private_message"
	FrameGroupMessage     = "group_message"
	FramePresenceInit     = "presence:init"
	FramePresence         = "presence"
	FrameNewMessageNotice = "new_message_notification"
	FrameDisconnect       = "disconnect"
	FramePong             = "pong"
	FrameNotification     = "notification"
)

// LiveFrame is an undecoded envelope from the live transport.
type LiveFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}
