package client

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"
)

const (
	// DefaultBadgeCeiling caps badge numerals; anything above shows as
	// "<ceiling>+".
	DefaultBadgeCeiling = 99

	// DefaultUnreadInterval is how often the aggregator re-pulls counts.
	DefaultUnreadInterval = 60 * time.Second
)

// UnreadAggregator maintains a best-effort map of unread counts per swap and
// a global total, feeding sidebar and per-tab badges. It is process-wide:
// many surfaces read it, only its own poll loop writes it. A malformed or
// failed refresh leaves the previous counts untouched — stale beats wrong.
type UnreadAggregator struct {
	gateway  Gateway
	clock    Clock
	userID   string
	interval time.Duration
	ceiling  int

	mu      sync.RWMutex
	total   int
	perSwap map[string]int

	stop     chan struct{}
	stopOnce sync.Once
}

type AggregatorOption func(*UnreadAggregator)

func WithAggregatorClock(clock Clock) AggregatorOption {
	return func(a *UnreadAggregator) { a.clock = clock }
}

func WithUnreadInterval(d time.Duration) AggregatorOption {
	return func(a *UnreadAggregator) { a.interval = d }
}

func WithBadgeCeiling(n int) AggregatorOption {
	return func(a *UnreadAggregator) { a.ceiling = n }
}

func NewUnreadAggregator(gateway Gateway, userID string, opts ...AggregatorOption) *UnreadAggregator {
	a := &UnreadAggregator{
		gateway:  gateway,
		clock:    SystemClock(),
		userID:   userID,
		interval: DefaultUnreadInterval,
		ceiling:  DefaultBadgeCeiling,
		perSwap:  make(map[string]int),
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Refresh pulls the latest counts. Failures of any kind keep the prior
// mapping; unread badges are not worth alarming anyone over.
func (a *UnreadAggregator) Refresh(ctx context.Context) {
	counts, err := a.gateway.UnreadCounts(ctx, a.userID)
	if err != nil {
		log.Printf("unread refresh for %s: %v", a.userID, err)
		return
	}

	next := make(map[string]int, len(counts.Swaps))
	for _, su := range counts.Swaps {
		next[su.SwapID] = su.Count
	}

	a.mu.Lock()
	a.total = counts.Count
	a.perSwap = next
	a.mu.Unlock()
}

// Run refreshes immediately and then on the configured interval until ctx is
// cancelled or Stop is called.
func (a *UnreadAggregator) Run(ctx context.Context) {
	a.Refresh(ctx)

	ticker := a.clock.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C():
			a.Refresh(ctx)
		case <-a.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (a *UnreadAggregator) Stop() {
	a.stopOnce.Do(func() { close(a.stop) })
}

// Total is the unread count across all swaps.
func (a *UnreadAggregator) Total() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.total
}

// ForSwap returns the unread count for one swap, 0 if unknown.
func (a *UnreadAggregator) ForSwap(swapID string) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.perSwap[swapID]
}

// Swaps returns a copy of the per-swap counts.
func (a *UnreadAggregator) Swaps() map[string]int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[string]int, len(a.perSwap))
	for id, n := range a.perSwap {
		out[id] = n
	}
	return out
}

// ForSet sums unread counts over an arbitrary subset of swaps, e.g. the
// "incoming" vs "outgoing" tabs.
func (a *UnreadAggregator) ForSet(swapIDs []string) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	n := 0
	for _, id := range swapIDs {
		n += a.perSwap[id]
	}
	return n
}

// BadgeLabel renders a count for display: nothing at zero, the number up to
// the ceiling, "<ceiling>+" beyond it.
func (a *UnreadAggregator) BadgeLabel(count int) string {
	return FormatBadge(count, a.ceiling)
}

func FormatBadge(count, ceiling int) string {
	switch {
	case count <= 0:
		return ""
	case count > ceiling:
		return strconv.Itoa(ceiling) + "+"
	default:
		return strconv.Itoa(count)
	}
}
