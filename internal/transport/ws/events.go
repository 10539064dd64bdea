package ws

import (
	"encoding/json"
	"time"

	"github.com/swaploop/swaploop/internal/domain"
)

// Event types - Client → Server
const (
	EventTypeSwapSubscribe   = "swap.subscribe"
	EventTypeSwapUnsubscribe = "swap.unsubscribe"
	EventTypePing            = "ping"
)

// Event types - Server → Client
const (
	EventTypeMessageNew    = "message.new"
	EventTypeMessageRead   = "message.read"
	EventTypeUnreadChanged = "unread.changed"
	EventTypePong          = "pong"
	EventTypeError         = "error"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	SwapID    string          `json:"swap_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type SwapPayload struct {
	SwapID string `json:"swap_id"`
}

// --- Server → Client payloads ---

type MessagePayload struct {
	domain.Message
}

type UnreadPayload struct {
	domain.UnreadCounts
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType, swapID string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		SwapID:    swapID,
		Payload:   data,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}
