package client

import (
	"context"
	"strings"
	"sync"
)

// submitter is what the Composer hands finished input to; in practice a
// *Conversation.
type submitter interface {
	Submit(ctx context.Context, content string) error
}

// Composer buffers a single outgoing message and triggers submission. It
// clears its buffer the moment a submit starts, independent of the outcome,
// and refuses to double-submit while a send is outstanding.
type Composer struct {
	target submitter

	mu     sync.Mutex
	buffer string
	busy   bool
}

func NewComposer(target submitter) *Composer {
	return &Composer{target: target}
}

func (c *Composer) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buffer = text
}

func (c *Composer) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer
}

// Busy reports whether a send is outstanding; the UI disables the input
// while this is true.
func (c *Composer) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Submit sends the buffered text. Empty or whitespace-only input never
// reaches the conversation. The busy flag is released unconditionally once
// the send resolves, success or failure.
func (c *Composer) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil
	}
	content := strings.TrimSpace(c.buffer)
	if content == "" {
		c.mu.Unlock()
		return nil
	}
	c.buffer = ""
	c.busy = true
	c.mu.Unlock()

	err := c.target.Submit(ctx, content)

	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()

	return err
}
