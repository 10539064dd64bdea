package domain

import (
	"time"
)

// SystemSenderID is the reserved sender id for messages synthesized by swap
// status transitions. It only appears at the storage/wire boundary; callers
// should branch on Type, not compare against this value.
const SystemSenderID = "SYSTEM"

type MessageType string

const (
	MessageTypeUser   MessageType = "user"
	MessageTypeSystem MessageType = "system"
)

type SystemEvent string

const (
	EventSwapCreated   SystemEvent = "swap_created"
	EventSwapAccepted  SystemEvent = "swap_accepted"
	EventSwapRejected  SystemEvent = "swap_rejected"
	EventSwapCompleted SystemEvent = "swap_completed"
	EventSwapCancelled SystemEvent = "swap_cancelled"
)

type Message struct {
	ID          string            `json:"message_id"`
	SwapID      string            `json:"swap_id"`
	SenderID    string            `json:"sender_id"`
	RecipientID string            `json:"recipient_id"`
	Content     string            `json:"content"`
	Timestamp   time.Time         `json:"timestamp"`
	IsRead      bool              `json:"is_read"`
	Type        MessageType       `json:"message_type"`
	EventType   SystemEvent       `json:"event_type,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// IsSystem reports whether the message was synthesized by a swap status
// transition rather than typed by a user.
func (m *Message) IsSystem() bool {
	return m.Type == MessageTypeSystem
}

type SwapUnread struct {
	SwapID string `json:"swap_id"`
	Count  int    `json:"count"`
}

// UnreadCounts is the per-user unread breakdown returned by the unread
// endpoint: a total plus one entry per swap with unread messages.
type UnreadCounts struct {
	Count int          `json:"count"`
	Swaps []SwapUnread `json:"swaps"`
}
