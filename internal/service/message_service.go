package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/swaploop/swaploop/internal/domain"
	"github.com/swaploop/swaploop/internal/repository"
)

var (
	ErrSwapNotFound    = errors.New("swap not found")
	ErrNotParticipant  = errors.New("user is not a participant in this swap")
	ErrMessageNotFound = errors.New("message not found or user is not the recipient")
	ErrNotSender       = errors.New("only the message sender can perform this action")
	ErrEmptyContent    = errors.New("message content is required")
)

// Notifier broadcasts real-time events to connected clients.
type Notifier interface {
	NotifyNewMessage(msg *domain.Message)
	NotifyMessageRead(msg *domain.Message)
	NotifyUnreadChanged(userID string, counts *domain.UnreadCounts)
}

type MessageService struct {
	messageRepo repository.MessageRepository
	swapRepo    repository.SwapRepository
	notifier    Notifier
}

func NewMessageService(messageRepo repository.MessageRepository, swapRepo repository.SwapRepository) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		swapRepo:    swapRepo,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *MessageService) SetNotifier(n Notifier) {
	s.notifier = n
}

type SendMessageInput struct {
	Content string `json:"content"`
}

func (s *MessageService) Send(ctx context.Context, userID, swapID string, input SendMessageInput) (*domain.Message, error) {
	swap, err := s.verifyParticipant(ctx, swapID, userID)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	msg := &domain.Message{
		ID:          uuid.NewString(),
		SwapID:      swapID,
		SenderID:    userID,
		RecipientID: swap.OtherParticipant(userID),
		Content:     content,
		Timestamp:   time.Now().UTC(),
		Type:        domain.MessageTypeUser,
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(msg)
		s.pushUnread(ctx, msg.RecipientID)
	}

	return msg, nil
}

func (s *MessageService) List(ctx context.Context, userID, swapID string) ([]domain.Message, error) {
	if _, err := s.verifyParticipant(ctx, swapID, userID); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListBySwap(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

// MarkRead marks a message as read on behalf of its recipient. Marking an
// already-read message is not an error.
func (s *MessageService) MarkRead(ctx context.Context, userID, swapID, messageID string) (*domain.Message, error) {
	if _, err := s.verifyParticipant(ctx, swapID, userID); err != nil {
		return nil, err
	}

	msg, err := s.messageRepo.MarkRead(ctx, swapID, messageID, userID)
	if err != nil {
		return nil, fmt.Errorf("marking message read: %w", err)
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}

	if s.notifier != nil {
		s.notifier.NotifyMessageRead(msg)
		s.pushUnread(ctx, userID)
	}

	return msg, nil
}

func (s *MessageService) Unread(ctx context.Context, userID string) (*domain.UnreadCounts, error) {
	counts, err := s.messageRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("counting unread messages: %w", err)
	}
	return counts, nil
}

func (s *MessageService) Delete(ctx context.Context, userID, swapID, messageID string) error {
	if _, err := s.verifyParticipant(ctx, swapID, userID); err != nil {
		return err
	}

	msg, err := s.messageRepo.GetByID(ctx, swapID, messageID)
	if err != nil {
		return err
	}
	if msg == nil {
		return ErrMessageNotFound
	}
	if msg.SenderID != userID {
		return ErrNotSender
	}

	return s.messageRepo.Delete(ctx, swapID, messageID)
}

func (s *MessageService) verifyParticipant(ctx context.Context, swapID, userID string) (*domain.Swap, error) {
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

// pushUnread recomputes and broadcasts unread counts. Badge staleness is
// tolerable, so failures are logged and dropped.
func (s *MessageService) pushUnread(ctx context.Context, userID string) {
	counts, err := s.messageRepo.CountUnread(ctx, userID)
	if err != nil {
		log.Printf("unread push for %s: %v", userID, err)
		return
	}
	s.notifier.NotifyUnreadChanged(userID, counts)
}
