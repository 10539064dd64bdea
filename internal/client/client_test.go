package client

import (
	"context"
	"sync"
	"time"

	"github.com/swaploop/swaploop/internal/domain"
)

// manualClock drives the polling components deterministically in tests.
type manualClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*manualTicker
}

func newManualClock(now time.Time) *manualClock {
	return &manualClock{now: now}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *manualClock) NewTicker(d time.Duration) Ticker {
	t := &manualTicker{ch: make(chan time.Time, 1)}
	c.mu.Lock()
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()
	return t
}

// Tick fires every ticker once.
func (c *manualClock) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.tickers {
		t.ch <- c.now
	}
}

type manualTicker struct {
	ch chan time.Time
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }
func (t *manualTicker) Stop()               {}

// fakeGateway records calls and returns scripted results.
type fakeGateway struct {
	mu sync.Mutex

	thread   []domain.Message
	fetchErr error
	// fetchGate, when set, blocks FetchThread until released.
	fetchGate chan struct{}

	sendResult *domain.Message
	sendErr    error

	markReadErr map[string]error

	counts    *domain.UnreadCounts
	countsErr error

	fetchCalls    int
	sendCalls     []string
	markReadCalls []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{markReadErr: map[string]error{}}
}

func (g *fakeGateway) FetchThread(ctx context.Context, swapID, userID string) ([]domain.Message, error) {
	g.mu.Lock()
	g.fetchCalls++
	gate := g.fetchGate
	thread := append([]domain.Message(nil), g.thread...)
	err := g.fetchErr
	g.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return thread, nil
}

func (g *fakeGateway) Send(ctx context.Context, swapID, userID, content string) (*domain.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sendCalls = append(g.sendCalls, content)
	if g.sendErr != nil {
		return nil, g.sendErr
	}
	if g.sendResult != nil {
		msg := *g.sendResult
		return &msg, nil
	}
	return &domain.Message{
		ID:        "srv-" + content,
		SwapID:    swapID,
		SenderID:  userID,
		Content:   content,
		Timestamp: time.Now(),
		Type:      domain.MessageTypeUser,
	}, nil
}

func (g *fakeGateway) MarkRead(ctx context.Context, messageID, swapID, userID string) (*domain.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.markReadCalls = append(g.markReadCalls, messageID)
	if err := g.markReadErr[messageID]; err != nil {
		return nil, err
	}
	return &domain.Message{ID: messageID, SwapID: swapID, IsRead: true}, nil
}

func (g *fakeGateway) UnreadCounts(ctx context.Context, userID string) (*domain.UnreadCounts, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.countsErr != nil {
		return nil, g.countsErr
	}
	counts := *g.counts
	return &counts, nil
}

func (g *fakeGateway) markedRead() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.markReadCalls...)
}

func (g *fakeGateway) fetches() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fetchCalls
}

func (g *fakeGateway) sent() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.sendCalls...)
}

func (g *fakeGateway) setThread(msgs []domain.Message) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.thread = msgs
	g.fetchErr = nil
}

func (g *fakeGateway) setFetchErr(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetchErr = err
}
