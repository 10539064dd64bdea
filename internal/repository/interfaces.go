package repository

import (
	"context"

	"github.com/swaploop/swaploop/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, swapID, messageID string) (*domain.Message, error)
	ListBySwap(ctx context.Context, swapID string) ([]domain.Message, error)
	// MarkRead flips is_read for the message if recipientID is its recipient.
	// Returns the message in its post-update state, or nil if it does not
	// exist or recipientID is not the recipient.
	MarkRead(ctx context.Context, swapID, messageID, recipientID string) (*domain.Message, error)
	CountUnread(ctx context.Context, userID string) (*domain.UnreadCounts, error)
	Delete(ctx context.Context, swapID, messageID string) error
}

type SwapRepository interface {
	Create(ctx context.Context, swap *domain.Swap) error
	GetByID(ctx context.Context, id string) (*domain.Swap, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Swap, error)
	UpdateStatus(ctx context.Context, swap *domain.Swap) error
	Delete(ctx context.Context, id string) error
}
