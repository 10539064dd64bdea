package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/swaploop/swaploop/internal/domain"
	"github.com/swaploop/swaploop/internal/repository"
)

var (
	ErrInvalidTransition = errors.New("invalid swap status transition")
	ErrNotRequester      = errors.New("only the requester can delete a pending swap")
)

type SwapService struct {
	swapRepo    repository.SwapRepository
	messageRepo repository.MessageRepository
	notifier    Notifier
}

func NewSwapService(swapRepo repository.SwapRepository, messageRepo repository.MessageRepository) *SwapService {
	return &SwapService{
		swapRepo:    swapRepo,
		messageRepo: messageRepo,
	}
}

func (s *SwapService) SetNotifier(n Notifier) {
	s.notifier = n
}

type CreateSwapInput struct {
	OwnerID            string `json:"owner_id"`
	RequesterListingID string `json:"requester_listing_id"`
	OwnerListingID     string `json:"owner_listing_id"`
}

type UpdateSwapStatusInput struct {
	Status domain.SwapStatus `json:"status"`
}

func (s *SwapService) Create(ctx context.Context, requesterID string, input CreateSwapInput) (*domain.Swap, error) {
	now := time.Now().UTC()
	swap := &domain.Swap{
		ID:                 uuid.NewString(),
		RequesterID:        requesterID,
		OwnerID:            input.OwnerID,
		RequesterListingID: input.RequesterListingID,
		OwnerListingID:     input.OwnerListingID,
		Status:             domain.SwapStatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.swapRepo.Create(ctx, swap); err != nil {
		return nil, fmt.Errorf("creating swap: %w", err)
	}

	s.announce(ctx, swap, domain.EventSwapCreated,
		"A new swap has been requested. Say hello and work out the details!",
		map[string]string{
			"new_status": string(domain.SwapStatusPending),
			"actor_id":   requesterID,
		})

	return swap, nil
}

func (s *SwapService) Get(ctx context.Context, userID, swapID string) (*domain.Swap, error) {
	swap, err := s.swapRepo.GetByID(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if swap == nil {
		return nil, ErrSwapNotFound
	}
	if !swap.Involves(userID) {
		return nil, ErrNotParticipant
	}
	return swap, nil
}

func (s *SwapService) ListForUser(ctx context.Context, userID string) ([]domain.Swap, error) {
	swaps, err := s.swapRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if swaps == nil {
		swaps = []domain.Swap{}
	}
	return swaps, nil
}

// UpdateStatus moves a swap to a new status and fans out the matching system
// message to both participants.
func (s *SwapService) UpdateStatus(ctx context.Context, userID, swapID string, input UpdateSwapStatusInput) (*domain.Swap, error) {
	swap, err := s.Get(ctx, userID, swapID)
	if err != nil {
		return nil, err
	}

	if !swap.CanTransitionTo(input.Status) {
		return nil, ErrInvalidTransition
	}

	previous := swap.Status
	now := time.Now().UTC()
	swap.Status = input.Status
	swap.UpdatedAt = now
	if input.Status == domain.SwapStatusCompleted {
		swap.CompletedAt = &now
	}

	if err := s.swapRepo.UpdateStatus(ctx, swap); err != nil {
		return nil, fmt.Errorf("updating swap status: %w", err)
	}

	event, content := statusChangeNotice(input.Status)
	s.announce(ctx, swap, event, content, map[string]string{
		"previous_status": string(previous),
		"new_status":      string(input.Status),
		"actor_id":        userID,
	})

	return swap, nil
}

// Delete removes a pending swap. Only the requester may do this, and both
// participants get a cancellation notice before the swap disappears.
func (s *SwapService) Delete(ctx context.Context, userID, swapID string) error {
	swap, err := s.swapRepo.GetByID(ctx, swapID)
	if err != nil {
		return err
	}
	if swap == nil {
		return ErrSwapNotFound
	}
	if swap.RequesterID != userID || swap.Status != domain.SwapStatusPending {
		return ErrNotRequester
	}

	s.announce(ctx, swap, domain.EventSwapCancelled,
		"Swap request has been deleted by the requester.",
		map[string]string{
			"previous_status": string(swap.Status),
			"actor_id":        userID,
		})

	return s.swapRepo.Delete(ctx, swapID)
}

// announce writes one system message per participant. System messages are a
// courtesy; a failed write is logged, not propagated.
func (s *SwapService) announce(ctx context.Context, swap *domain.Swap, event domain.SystemEvent, content string, metadata map[string]string) {
	timestamp := time.Now().UTC()
	for _, recipientID := range []string{swap.RequesterID, swap.OwnerID} {
		msg := &domain.Message{
			ID:          uuid.NewString(),
			SwapID:      swap.ID,
			SenderID:    domain.SystemSenderID,
			RecipientID: recipientID,
			Content:     content,
			Timestamp:   timestamp,
			Type:        domain.MessageTypeSystem,
			EventType:   event,
			Metadata:    metadata,
		}
		if err := s.messageRepo.Create(ctx, msg); err != nil {
			log.Printf("ERROR system message for swap %s: %v", swap.ID, err)
			continue
		}
		if s.notifier != nil {
			s.notifier.NotifyNewMessage(msg)
		}
	}
}

func statusChangeNotice(status domain.SwapStatus) (domain.SystemEvent, string) {
	switch status {
	case domain.SwapStatusAccepted:
		return domain.EventSwapAccepted, "Swap request has been accepted! You can now coordinate the meetup details."
	case domain.SwapStatusRejected:
		return domain.EventSwapRejected, "Swap request has been rejected."
	case domain.SwapStatusCompleted:
		return domain.EventSwapCompleted, "Swap has been marked as completed! Thank you for using our platform."
	default:
		return domain.EventSwapCancelled, "Swap has been cancelled."
	}
}
