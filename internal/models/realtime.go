package models

import "time"

// Websocket events understood by the chat hub.
const (
	EventJoinChat    = "join_chat"
	EventLeaveChat   = "leave_chat"
	EventSendMessage = "send_message"
	EventTyping      = "typing"

	EventChatHistory     = "chat_history"
	EventMessageReceived = "message_received"
	EventUserTyping      = "user_typing"
	EventUserJoined      = "user_joined"
	EventUserLeft        = "user_left"
	EventError           = "error"
)

// ChatEvent is the JSON envelope exchanged over the websocket in both
// directions. Outbound identity is role-based only: SenderName is set for
// admin messages, never for students.
type ChatEvent struct {
	Event      string `json:"event"`
	TrackingID string `json:"trackingId,omitempty"`
	Message    string `json:"message,omitempty"`
	IsTyping   bool   `json:"isTyping,omitempty"`

	// Outbound-only fields.
	SenderRole  string        `json:"senderRole,omitempty"`
	SenderName  string        `json:"senderName,omitempty"`
	MessageID   uint          `json:"messageId,omitempty"`
	CreatedAt   *time.Time    `json:"createdAt,omitempty"`
	Messages    []ChatMessage `json:"messages,omitempty"`
	UnreadCount int64         `json:"unreadCount,omitempty"`
}

// RoomBroadcast carries one outbound event through Redis pub/sub so that every
// server instance can fan it out to its local room members.
type RoomBroadcast struct {
	Room  string    `json:"room"`
	Event ChatEvent `json:"event"`

	// ExcludeSession, when set, skips the originating connection (used for
	// typing indicators and join/leave notices).
	ExcludeSession string `json:"excludeSession,omitempty"`
}
