// Package session tracks logged-in players and their outbound packet queues.
package session

import "sync"

// Outbox accumulates the framed packets waiting for a player's next poll.
// Appends never block on the reader; the poll handler drains the whole
// buffer at once.
type Outbox struct {
	mu  sync.Mutex
	buf []byte
}

// Enqueue appends one or more framed packets.
//
// Postcondition: b is copied; the caller may reuse it.
func (o *Outbox) Enqueue(b []byte) {
	if len(b) == 0 {
		return
	}
	o.mu.Lock()
	o.buf = append(o.buf, b...)
	o.mu.Unlock()
}

// Drain takes and clears everything queued so far.
//
// Postcondition: returns nil when nothing was queued.
func (o *Outbox) Drain() []byte {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.buf) == 0 {
		return nil
	}
	out := o.buf
	o.buf = nil
	return out
}

// Len returns the number of queued bytes.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.buf)
}
