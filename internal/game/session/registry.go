package session

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/jeenyuhs/Ragnarok/internal/protocol/packet"
)

// ErrAlreadyOnline is returned by Register when the id or token is taken.
var ErrAlreadyOnline = errors.New("player already online")

// Registry tracks every live player session.
// All methods are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	byID    map[int32]*Player
	byToken map[string]*Player

	// specMu serializes changes to the spectate graph.
	specMu sync.Mutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:    make(map[int32]*Player),
		byToken: make(map[string]*Player),
	}
}

// Register adds p to the live set.
//
// Precondition: p must be non-nil with a non-empty token.
// Postcondition: Returns ErrAlreadyOnline if p.ID or p.Token is registered.
func (r *Registry) Register(p *Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; exists {
		return fmt.Errorf("registering %q (%d): %w", p.Name, p.ID, ErrAlreadyOnline)
	}
	if _, exists := r.byToken[p.Token]; exists {
		return fmt.Errorf("registering %q token: %w", p.Name, ErrAlreadyOnline)
	}
	r.byID[p.ID] = p
	r.byToken[p.Token] = p
	return nil
}

// Remove drops p from the live set and announces the logout to every other
// live player.
//
// Postcondition: Returns false without broadcasting if p was not registered.
func (r *Registry) Remove(p *Player) bool {
	r.mu.Lock()
	cur, ok := r.byID[p.ID]
	if !ok || cur != p {
		r.mu.Unlock()
		return false
	}
	delete(r.byID, p.ID)
	delete(r.byToken, p.Token)
	r.mu.Unlock()

	r.Broadcast(packet.Logout(p.ID), p.ID)
	return true
}

// ByID returns the live player with the given id.
func (r *Registry) ByID(id int32) (*Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	return p, ok
}

// ByToken returns the live player holding token.
func (r *Registry) ByToken(token string) (*Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byToken[token]
	return p, ok
}

// ByName returns the live player whose display or normalized name matches.
func (r *Registry) ByName(name string) (*Player, bool) {
	safe := SafeName(name)
	return r.Find(func(p *Player) bool { return p.Name == name || p.SafeName == safe })
}

// Find returns the first live player matching pred.
func (r *Registry) Find(pred func(*Player) bool) (*Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.byID {
		if pred(p) {
			return p, true
		}
	}
	return nil, false
}

// Enqueue appends b to the outbox of the player with the given id.
//
// Postcondition: Returns false if no such player is live.
func (r *Registry) Enqueue(id int32, b []byte) bool {
	p, ok := r.ByID(id)
	if !ok {
		return false
	}
	p.Enqueue(b)
	return true
}

// Broadcast appends b to every live player's outbox except the excluded ids.
func (r *Registry) Broadcast(b []byte, exclude ...int32) {
	for _, p := range r.All() {
		if slices.Contains(exclude, p.ID) {
			continue
		}
		p.Enqueue(b)
	}
}

// All returns a snapshot of live players ordered by id.
func (r *Registry) All() []*Player {
	r.mu.RLock()
	out := make([]*Player, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns the number of live players.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Touch records a completed poll for the session holding token.
func (r *Registry) Touch(token string, now time.Time) bool {
	p, ok := r.ByToken(token)
	if !ok {
		return false
	}
	p.touch(now)
	return true
}

// Expired returns live, non-bot players whose last poll is older than timeout.
func (r *Registry) Expired(now time.Time, timeout time.Duration) []*Player {
	var out []*Player
	for _, p := range r.All() {
		if p.Bot {
			continue
		}
		if now.Sub(p.LastSeen()) > timeout {
			out = append(out, p)
		}
	}
	return out
}
