package ws

import (
	"log"

	"github.com/swaploop/swaploop/internal/domain"
)

// HubNotifier implements service.Notifier using the WebSocket Hub.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyNewMessage(msg *domain.Message) {
	evt, err := NewEvent(EventTypeMessageNew, msg.SwapID, MessagePayload{Message: *msg})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	// New messages go to the recipient even without a thread subscription, so
	// inbox badges update while the thread view is closed.
	n.hub.BroadcastToUser(msg.RecipientID, evt)
	n.hub.BroadcastToSwap(msg.SwapID, evt)
}

func (n *HubNotifier) NotifyMessageRead(msg *domain.Message) {
	evt, err := NewEvent(EventTypeMessageRead, msg.SwapID, MessagePayload{Message: *msg})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.BroadcastToSwap(msg.SwapID, evt)
}

func (n *HubNotifier) NotifyUnreadChanged(userID string, counts *domain.UnreadCounts) {
	evt, err := NewEvent(EventTypeUnreadChanged, "", UnreadPayload{UnreadCounts: *counts})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.BroadcastToUser(userID, evt)
}
