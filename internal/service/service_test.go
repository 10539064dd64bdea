package service

import (
	"context"
	"sync"
	"time"

	"github.com/swaploop/swaploop/internal/domain"
)

// In-memory repositories for service tests.

type memMessageRepo struct {
	mu       sync.Mutex
	messages []domain.Message
	failNext error
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{}
}

func (r *memMessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *memMessageRepo) GetByID(ctx context.Context, swapID, messageID string) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.messages {
		if r.messages[i].SwapID == swapID && r.messages[i].ID == messageID {
			msg := r.messages[i]
			return &msg, nil
		}
	}
	return nil, nil
}

func (r *memMessageRepo) ListBySwap(ctx context.Context, swapID string) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Message{}
	for _, msg := range r.messages {
		if msg.SwapID == swapID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (r *memMessageRepo) MarkRead(ctx context.Context, swapID, messageID, recipientID string) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.messages {
		m := &r.messages[i]
		if m.SwapID == swapID && m.ID == messageID && m.RecipientID == recipientID {
			m.IsRead = true
			msg := *m
			return &msg, nil
		}
	}
	return nil, nil
}

func (r *memMessageRepo) CountUnread(ctx context.Context, userID string) (*domain.UnreadCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	perSwap := map[string]int{}
	var order []string
	counts := &domain.UnreadCounts{Swaps: []domain.SwapUnread{}}
	for _, msg := range r.messages {
		if msg.RecipientID == userID && !msg.IsRead {
			if _, seen := perSwap[msg.SwapID]; !seen {
				order = append(order, msg.SwapID)
			}
			perSwap[msg.SwapID]++
			counts.Count++
		}
	}
	for _, id := range order {
		counts.Swaps = append(counts.Swaps, domain.SwapUnread{SwapID: id, Count: perSwap[id]})
	}
	return counts, nil
}

func (r *memMessageRepo) Delete(ctx context.Context, swapID, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.messages {
		if r.messages[i].SwapID == swapID && r.messages[i].ID == messageID {
			r.messages = append(r.messages[:i], r.messages[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memMessageRepo) bySwap(swapID string) []domain.Message {
	msgs, _ := r.ListBySwap(context.Background(), swapID)
	return msgs
}

type memSwapRepo struct {
	mu    sync.Mutex
	swaps map[string]domain.Swap
}

func newMemSwapRepo(seed ...domain.Swap) *memSwapRepo {
	r := &memSwapRepo{swaps: map[string]domain.Swap{}}
	for _, s := range seed {
		r.swaps[s.ID] = s
	}
	return r
}

func (r *memSwapRepo) Create(ctx context.Context, swap *domain.Swap) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.swaps[swap.ID] = *swap
	return nil
}

func (r *memSwapRepo) GetByID(ctx context.Context, id string) (*domain.Swap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.swaps[id]; ok {
		return &s, nil
	}
	return nil, nil
}

func (r *memSwapRepo) ListByUser(ctx context.Context, userID string) ([]domain.Swap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Swap{}
	for _, s := range r.swaps {
		if s.Involves(userID) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memSwapRepo) UpdateStatus(ctx context.Context, swap *domain.Swap) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.swaps[swap.ID] = *swap
	return nil
}

func (r *memSwapRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.swaps, id)
	return nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	newMsgs   []domain.Message
	readMsgs  []domain.Message
	unreadFor []string
}

func (n *fakeNotifier) NotifyNewMessage(msg *domain.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.newMsgs = append(n.newMsgs, *msg)
}

func (n *fakeNotifier) NotifyMessageRead(msg *domain.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.readMsgs = append(n.readMsgs, *msg)
}

func (n *fakeNotifier) NotifyUnreadChanged(userID string, counts *domain.UnreadCounts) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.unreadFor = append(n.unreadFor, userID)
}

func pendingSwap(id, requester, owner string) domain.Swap {
	now := time.Now().UTC()
	return domain.Swap{
		ID: id, RequesterID: requester, OwnerID: owner,
		RequesterListingID: "l1", OwnerListingID: "l2",
		Status: domain.SwapStatusPending, CreatedAt: now, UpdatedAt: now,
	}
}
