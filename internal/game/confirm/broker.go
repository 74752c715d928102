// Package confirm correlates a yes/no prompt sent to a player with the next
// chat message that player sends.
package confirm

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Broker holds at most one pending prompt per session token.
type Broker struct {
	mu      sync.Mutex
	pending map[string]chan string
}

// NewBroker returns an empty Broker.
func NewBroker() *Broker {
	return &Broker{pending: make(map[string]chan string)}
}

// Prompt is one registered, not yet answered question.
type Prompt struct {
	broker *Broker
	token  string
	ch     chan string
}

// Expect registers a prompt for token without blocking. A later Expect on
// the same token supersedes this one, whose Wait then returns false.
func (b *Broker) Expect(token string) *Prompt {
	p := &Prompt{broker: b, token: token, ch: make(chan string, 1)}
	b.mu.Lock()
	if prev, ok := b.pending[token]; ok {
		close(prev)
	}
	b.pending[token] = p.ch
	b.mu.Unlock()
	return p
}

// Wait blocks until the prompt's reply, ctx cancellation, or timeout.
//
// Postcondition: Returns the reply and true when one arrived in time. The
// prompt is no longer pending on return.
func (p *Prompt) Wait(ctx context.Context, timeout time.Duration) (string, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case reply, ok := <-p.ch:
		return reply, ok
	case <-ctx.Done():
	case <-timer.C:
	}

	b := p.broker
	b.mu.Lock()
	if b.pending[p.token] == p.ch {
		delete(b.pending, p.token)
	}
	b.mu.Unlock()
	return "", false
}

// Offer hands text to token's pending prompt.
//
// Postcondition: Returns true when a prompt consumed the text; the caller
// should not process it further.
func (b *Broker) Offer(token, text string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.pending[token]
	if !ok {
		return false
	}
	delete(b.pending, token)
	ch <- text
	return true
}

// Pending reports whether token has an unanswered prompt.
func (b *Broker) Pending(token string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.pending[token]
	return ok
}

// Affirmative reports whether reply accepts a yes/no prompt.
func Affirmative(reply string) bool {
	switch strings.ToLower(strings.TrimSpace(reply)) {
	case "y", "yes":
		return true
	}
	return false
}
