package channel

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/jeenyuhs/Ragnarok/internal/game/session"
	"github.com/jeenyuhs/Ragnarok/internal/protocol/packet"
)

// ErrExists is returned by Add when the internal name is taken.
var ErrExists = errors.New("channel already exists")

// Registry owns every live channel and routes chat through them.
// All methods are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]*Channel
	sessions *session.Registry
	logger   *zap.Logger
}

// NewRegistry creates a Registry holding only the lobby channel.
//
// Precondition: sessions and logger must be non-nil.
func NewRegistry(sessions *session.Registry, logger *zap.Logger) *Registry {
	r := &Registry{
		channels: make(map[string]*Channel),
		sessions: sessions,
		logger:   logger,
	}
	r.channels[Lobby] = New(Options{Name: Lobby, Topic: "Multiplayer lobby"})
	return r
}

// Add registers c.
//
// Postcondition: Returns ErrExists if c.Name is already registered.
func (r *Registry) Add(c *Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.channels[c.Name]; ok {
		return fmt.Errorf("adding %q: %w", c.Name, ErrExists)
	}
	r.channels[c.Name] = c
	return nil
}

// Get resolves a channel by internal name, falling back to display name for
// channels that are not match chats.
func (r *Registry) Get(name string) (*Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.channels[name]; ok {
		return c, true
	}
	for _, c := range r.channels {
		if c.DisplayName == name && !c.IsMatch() {
			return c, true
		}
	}
	return nil, false
}

// Lobby returns the match-listing channel.
func (r *Registry) Lobby() *Channel {
	c, _ := r.Get(Lobby)
	return c
}

// Remove evicts a channel. Remaining members are detached and told to close
// the tab.
//
// Postcondition: Returns false if name was not registered.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	c, ok := r.channels[name]
	if ok {
		delete(r.channels, name)
	}
	r.mu.Unlock()
	if !ok {
		return false
	}

	kick := packet.ChannelKick(c.DisplayName)
	for _, id := range c.Members() {
		c.remove(id)
		if p, ok := r.sessions.ByID(id); ok {
			p.RemoveChannel(c.Name)
			p.Enqueue(kick)
		}
	}
	r.logger.Debug("channel removed", zap.String("channel", name))
	return true
}

// All returns every channel ordered by internal name.
func (r *Registry) All() []*Channel {
	r.mu.RLock()
	out := make([]*Channel, 0, len(r.channels))
	for _, c := range r.channels {
		out = append(out, c)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Public returns the channels advertised to every client.
func (r *Registry) Public() []*Channel {
	var out []*Channel
	for _, c := range r.All() {
		if c.Public {
			out = append(out, c)
		}
	}
	return out
}

// Join adds p to c.
//
// Precondition: p and c must be non-nil.
// Postcondition: Returns false, changing nothing, if p already joined or c is
// staff-only and p is not staff. On success p receives a join confirmation
// and observers receive refreshed channel info.
func (r *Registry) Join(p *session.Player, c *Channel) bool {
	if c.Staff && !p.Staff() {
		return false
	}
	if !c.add(p.ID) {
		return false
	}
	p.AddChannel(c.Name)
	p.Enqueue(packet.ChannelJoin(c.DisplayName))
	r.announce(c)
	return true
}

// Leave removes p from c. The client tab is closed unless silent is set.
//
// Postcondition: Returns false if p was not a member.
func (r *Registry) Leave(p *session.Player, c *Channel, silent bool) bool {
	if !c.remove(p.ID) {
		return false
	}
	p.RemoveChannel(c.Name)
	if !silent {
		p.Enqueue(packet.ChannelKick(c.DisplayName))
	}
	r.announce(c)
	return true
}

// LeaveAll silently removes p from every channel it joined.
func (r *Registry) LeaveAll(p *session.Player) {
	for _, name := range p.Channels() {
		if c, ok := r.Get(name); ok {
			r.Leave(p, c, true)
			continue
		}
		p.RemoveChannel(name)
	}
}

// Send delivers text from sender to every member of c except the sender.
//
// Postcondition: Returns false, delivering nothing, when a non-bot sender is
// not a member, or when c is read-only and the sender is not staff.
func (r *Registry) Send(sender *session.Player, c *Channel, text string) bool {
	if !sender.Bot {
		if c.ReadOnly && !sender.Staff() {
			return false
		}
		if !c.ReadOnly && !c.Has(sender.ID) {
			return false
		}
	}
	b := packet.SendMessage(packet.Message{
		Sender:   sender.Name,
		Text:     text,
		Target:   c.DisplayName,
		SenderID: sender.ID,
	})
	r.Enqueue(c, b, sender.ID)
	r.logger.Debug("chat",
		zap.String("channel", c.Name),
		zap.String("sender", sender.Name),
		zap.String("text", text),
	)
	return true
}

// Enqueue appends b to the outbox of every member of c except the excluded ids.
func (r *Registry) Enqueue(c *Channel, b []byte, exclude ...int32) {
	for _, id := range c.Members() {
		if slices.Contains(exclude, id) {
			continue
		}
		r.sessions.Enqueue(id, b)
	}
}

// announce tells observers about a membership change. Public channels are
// visible to everyone; other broadcast channels only to their members;
// direct-message pseudo-channels to nobody.
func (r *Registry) announce(c *Channel) {
	switch {
	case c.IsDirect():
	case c.Public:
		r.sessions.Broadcast(c.Info())
	default:
		r.Enqueue(c, c.Info())
	}
}
