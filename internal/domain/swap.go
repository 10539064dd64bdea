package domain

import (
	"time"
)

type SwapStatus string

const (
	SwapStatusPending   SwapStatus = "pending"
	SwapStatusAccepted  SwapStatus = "accepted"
	SwapStatusRejected  SwapStatus = "rejected"
	SwapStatusCompleted SwapStatus = "completed"
	SwapStatusCancelled SwapStatus = "cancelled"
)

type Swap struct {
	ID                 string     `json:"swap_id"`
	RequesterID        string     `json:"requester_id"`
	OwnerID            string     `json:"owner_id"`
	RequesterListingID string     `json:"requester_listing_id"`
	OwnerListingID     string     `json:"owner_listing_id"`
	Status             SwapStatus `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}

// Involves reports whether userID is one of the two swap participants.
func (s *Swap) Involves(userID string) bool {
	return s.RequesterID == userID || s.OwnerID == userID
}

// OtherParticipant returns the counterpart of userID in the swap. It assumes
// Involves(userID) has already been checked.
func (s *Swap) OtherParticipant(userID string) string {
	if userID == s.RequesterID {
		return s.OwnerID
	}
	return s.RequesterID
}

// CanTransitionTo reports whether the swap's status may legally move to next.
func (s *Swap) CanTransitionTo(next SwapStatus) bool {
	switch s.Status {
	case SwapStatusPending:
		return next == SwapStatusAccepted || next == SwapStatusRejected || next == SwapStatusCancelled
	case SwapStatusAccepted:
		return next == SwapStatusCompleted || next == SwapStatusCancelled
	default:
		return false
	}
}
