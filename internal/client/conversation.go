package client

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/swaploop/swaploop/internal/domain"
)

type ThreadStatus string

const (
	StatusIdle    ThreadStatus = "idle"
	StatusLoading ThreadStatus = "loading"
	StatusLoaded  ThreadStatus = "loaded"
	StatusErrored ThreadStatus = "errored"
)

// Delivery tags a message's reconciliation state with the server instead of
// encoding it into the content string.
type Delivery string

const (
	// DeliveryConfirmed: the server acknowledged the message (or sent it to
	// us in the first place).
	DeliveryConfirmed Delivery = "confirmed"
	// DeliveryUnconfirmed: the send call returned success but the echoed
	// message was unusable, so a local copy stands in until a refresh finds
	// the real one.
	DeliveryUnconfirmed Delivery = "unconfirmed"
	// DeliveryFailed: the send call failed; the local copy is kept so the
	// user's intent is not silently lost.
	DeliveryFailed Delivery = "failed"
)

const (
	// localIDPrefix marks ids generated client-side for messages the server
	// has not (knowably) persisted.
	localIDPrefix = "local-"

	// reconcileWindow bounds how far apart a local echo and its server copy
	// may sit in time and still be considered the same message.
	reconcileWindow = 2 * time.Minute

	// DefaultRefreshInterval is how often an open thread re-pulls its
	// messages.
	DefaultRefreshInterval = 30 * time.Second
)

const (
	noticeLoadFailed  = "Failed to load messages. Please try again later."
	noticeSendFailed  = "Failed to send message. Please try again."
	noticeUnconfirmed = "Message sent but not confirmed."
)

type ThreadMessage struct {
	domain.Message
	Delivery Delivery
}

// DayGroup is one calendar day's worth of messages, in chronological order.
type DayGroup struct {
	Date     time.Time // midnight, local time
	Messages []ThreadMessage
}

// ThreadView is the snapshot handed to the rendering layer.
type ThreadView struct {
	Status ThreadStatus
	Groups []DayGroup
	Unread int
	Notice string
}

// Conversation owns the in-memory thread for one swap and reconciles
// optimistic local state with server state. A Conversation is created when a
// thread opens and discarded when it closes; it never changes swaps.
type Conversation struct {
	gateway Gateway
	clock   Clock
	swapID  string
	userID  string
	every   time.Duration

	mu       sync.Mutex
	status   ThreadStatus
	messages []ThreadMessage
	notice   string
	fetching bool
	closed   bool
	stop     chan struct{}
	stopOnce sync.Once
}

type ConversationOption func(*Conversation)

func WithClock(clock Clock) ConversationOption {
	return func(c *Conversation) { c.clock = clock }
}

func WithRefreshInterval(d time.Duration) ConversationOption {
	return func(c *Conversation) { c.every = d }
}

func NewConversation(gateway Gateway, swapID, userID string, opts ...ConversationOption) *Conversation {
	c := &Conversation{
		gateway: gateway,
		clock:   SystemClock(),
		swapID:  swapID,
		userID:  userID,
		every:   DefaultRefreshInterval,
		status:  StatusIdle,
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Conversation) SwapID() string { return c.swapID }

// Open pulls the thread from the gateway and marks every unread message
// addressed to the current user as read. On failure the previously displayed
// messages are retained and the status flips to errored.
func (c *Conversation) Open(ctx context.Context) error {
	return c.load(ctx)
}

// Refresh re-runs Open semantics unless a fetch is already in flight, in
// which case it is a no-op rather than a second overlapping request.
func (c *Conversation) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.fetching || c.closed {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()
	return c.load(ctx)
}

// Run refreshes the thread on the configured interval until ctx is cancelled
// or Close is called. Call it in a goroutine after Open.
func (c *Conversation) Run(ctx context.Context) {
	ticker := c.clock.NewTicker(c.every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C():
			if err := c.Refresh(ctx); err != nil {
				log.Printf("thread %s refresh: %v", c.swapID, err)
			}
		case <-c.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Close cancels the refresh loop. No further network activity happens for
// this thread.
func (c *Conversation) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Conversation) load(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.fetching = true
	c.status = StatusLoading // stale-while-revalidate: messages stay put
	c.mu.Unlock()

	fetched, err := c.gateway.FetchThread(ctx, c.swapID, c.userID)

	c.mu.Lock()
	c.fetching = false
	if c.closed {
		// The view moved on while we were in flight; do not commit.
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.status = StatusErrored
		c.notice = noticeLoadFailed
		c.mu.Unlock()
		return err
	}

	c.messages = c.reconcile(fetched)
	c.status = StatusLoaded
	c.notice = ""
	toMark := c.claimUnread()
	c.mu.Unlock()

	c.markRead(ctx, toMark)
	return nil
}

// reconcile merges the server's thread with local echoes. The server list is
// authoritative; an echo survives only until its server copy shows up, and a
// failed echo survives indefinitely so the user can see what did not send.
// Must be called with c.mu held.
func (c *Conversation) reconcile(fetched []domain.Message) []ThreadMessage {
	merged := make([]ThreadMessage, 0, len(fetched)+4)
	for _, msg := range fetched {
		merged = append(merged, ThreadMessage{Message: msg, Delivery: DeliveryConfirmed})
	}

	for _, local := range c.messages {
		if local.Delivery == DeliveryConfirmed {
			continue
		}
		if matchesServerCopy(fetched, local) {
			continue
		}
		merged = append(merged, local)
	}

	// Display order is timestamp then insertion order; the stable sort keeps
	// the latter for ties.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})
	return merged
}

// matchesServerCopy reports whether a local echo already appears in the
// fetched thread. Local ids never match server ids, so the key is sender +
// content within the reconcile window.
func matchesServerCopy(fetched []domain.Message, local ThreadMessage) bool {
	for _, msg := range fetched {
		if msg.ID == local.ID {
			return true
		}
		if msg.SenderID == local.SenderID && msg.Content == local.Content &&
			absDuration(msg.Timestamp.Sub(local.Timestamp)) <= reconcileWindow {
			return true
		}
	}
	return false
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// claimUnread flips the local read flag on every unread message addressed to
// the current user and returns their ids. The flag is monotonic and
// best-effort, so flipping before the server confirms is fine. Must be
// called with c.mu held.
func (c *Conversation) claimUnread() []string {
	var ids []string
	for i := range c.messages {
		m := &c.messages[i]
		if !m.IsRead && m.RecipientID == c.userID {
			m.IsRead = true
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// markRead issues the read acknowledgements concurrently. Individual
// failures are logged and dropped; they never block or roll back the others.
func (c *Conversation) markRead(ctx context.Context, ids []string) {
	if len(ids) == 0 {
		return
	}
	g := new(errgroup.Group)
	for _, id := range ids {
		g.Go(func() error {
			if _, err := c.gateway.MarkRead(ctx, id, c.swapID, c.userID); err != nil {
				log.Printf("mark read %s in swap %s: %v", id, c.swapID, err)
			}
			return nil
		})
	}
	g.Wait()
}

// Submit sends content to the swap's counterpart. Blank input is rejected
// before any network call. The caller's input buffer should already be
// cleared; every outcome leaves the attempted message visible in the thread.
func (c *Conversation) Submit(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	msg, err := c.gateway.Send(ctx, c.swapID, c.userID, content)

	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case err == nil:
		c.messages = append(c.messages, ThreadMessage{Message: *msg, Delivery: DeliveryConfirmed})
		return nil

	case errors.Is(err, ErrMalformedResponse):
		c.messages = append(c.messages, c.localEcho(content, DeliveryUnconfirmed))
		c.notice = noticeUnconfirmed
		return nil

	default:
		c.messages = append(c.messages, c.localEcho(content, DeliveryFailed))
		c.notice = noticeSendFailed
		return err
	}
}

// localEcho builds the optimistic stand-in for a message the server did not
// (knowably) persist. Must be called with c.mu held.
func (c *Conversation) localEcho(content string, delivery Delivery) ThreadMessage {
	return ThreadMessage{
		Message: domain.Message{
			ID:        localIDPrefix + uuid.NewString(),
			SwapID:    c.swapID,
			SenderID:  c.userID,
			Content:   content,
			Timestamp: c.clock.Now(),
			IsRead:    true,
			Type:      domain.MessageTypeUser,
		},
		Delivery: delivery,
	}
}

// Snapshot returns the current view of the thread: status, day-grouped
// messages, the unread count for the current user and any pending notice.
func (c *Conversation) Snapshot() ThreadView {
	c.mu.Lock()
	defer c.mu.Unlock()

	return ThreadView{
		Status: c.status,
		Groups: groupByDay(c.messages),
		Unread: c.unreadLocked(),
		Notice: c.notice,
	}
}

// UnreadForUser returns how many messages addressed to the current user are
// still unread in this thread.
func (c *Conversation) UnreadForUser() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unreadLocked()
}

func (c *Conversation) unreadLocked() int {
	n := 0
	for _, m := range c.messages {
		if !m.IsRead && m.RecipientID == c.userID {
			n++
		}
	}
	return n
}

// groupByDay partitions an already time-ordered message list by local
// calendar date, preserving first-seen group order and in-group order.
func groupByDay(msgs []ThreadMessage) []DayGroup {
	groups := []DayGroup{}
	for _, m := range msgs {
		day := midnight(m.Timestamp.Local())
		if n := len(groups); n > 0 && groups[n-1].Date.Equal(day) {
			groups[n-1].Messages = append(groups[n-1].Messages, m)
			continue
		}
		groups = append(groups, DayGroup{Date: day, Messages: []ThreadMessage{m}})
	}
	return groups
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
