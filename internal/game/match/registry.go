package match

import (
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/jeenyuhs/Ragnarok/internal/game/channel"
)

// ErrFull is returned by Create when every match id is in use.
var ErrFull = errors.New("no free match id")

// Registry owns every live match, keyed by id.
type Registry struct {
	mu      sync.RWMutex
	matches map[int32]*Match
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{matches: make(map[int32]*Match)}
}

// Create allocates the lowest free id starting at 1 and registers a match
// hosted by host. The match chat channel name is derived from the id.
//
// Postcondition: the returned match has no connected members yet.
func (r *Registry) Create(host int32, s Settings) (*Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := int32(1); id <= math.MaxUint16; id++ {
		if _, taken := r.matches[id]; taken {
			continue
		}
		m := newMatch(id, host, channel.MatchChannelName(id), s)
		r.matches[id] = m
		return m, nil
	}
	return nil, ErrFull
}

// Get returns the match with the given id.
func (r *Registry) Get(id int32) (*Match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.matches[id]
	return m, ok
}

// Remove unregisters m if it is still the match registered under its id.
func (r *Registry) Remove(m *Match) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.matches[m.ID]; !ok || cur != m {
		return false
	}
	delete(r.matches, m.ID)
	return true
}

// All returns every live match ordered by id.
func (r *Registry) All() []*Match {
	r.mu.RLock()
	out := make([]*Match, 0, len(r.matches))
	for _, m := range r.matches {
		out = append(out, m)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns the number of live matches.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matches)
}
