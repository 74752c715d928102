// Package channel implements chat channels and their membership.
package channel

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/jeenyuhs/Ragnarok/internal/protocol/packet"
)

// Lobby is the internal name of the match-listing channel.
const Lobby = "#lobby"

// MatchDisplayName is what clients call every match chat.
const MatchDisplayName = "#multiplayer"

// Channel is one named message group.
//
// Name is the internal key (for example "#multi_12"); DisplayName is what
// clients see. Flags are fixed after creation; membership is guarded by mu.
type Channel struct {
	Name        string
	DisplayName string
	Topic       string
	Public      bool
	Staff       bool
	ReadOnly    bool
	AutoJoin    bool

	mu      sync.Mutex
	members map[int32]struct{}
}

// Options describes a channel to create.
type Options struct {
	Name        string `yaml:"name"`
	DisplayName string `yaml:"display_name"`
	Topic       string `yaml:"topic"`
	Public      bool   `yaml:"public"`
	Staff       bool   `yaml:"staff"`
	ReadOnly    bool   `yaml:"read_only"`
	AutoJoin    bool   `yaml:"auto_join"`
}

// New creates an empty channel. DisplayName defaults to Name.
func New(o Options) *Channel {
	display := o.DisplayName
	if display == "" {
		display = o.Name
	}
	return &Channel{
		Name:        o.Name,
		DisplayName: display,
		Topic:       o.Topic,
		Public:      o.Public,
		Staff:       o.Staff,
		ReadOnly:    o.ReadOnly,
		AutoJoin:    o.AutoJoin,
		members:     make(map[int32]struct{}),
	}
}

// MatchChannelName returns the internal name of a match's chat.
func MatchChannelName(matchID int32) string {
	return "#multi_" + strconv.Itoa(int(matchID))
}

// IsBroadcast reports whether the channel is a public or staff broadcast
// channel rather than a direct-message pair.
func (c *Channel) IsBroadcast() bool { return strings.HasPrefix(c.Name, "#") }

// IsDirect reports whether the channel is a direct-message pseudo-channel.
func (c *Channel) IsDirect() bool { return !c.IsBroadcast() }

// IsMatch reports whether the channel is a match chat.
func (c *Channel) IsMatch() bool { return c.DisplayName == MatchDisplayName }

// Has reports whether id is a member.
func (c *Channel) Has(id int32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.members[id]
	return ok
}

// Count returns the number of members.
func (c *Channel) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.members)
}

// Members returns the member ids in ascending order.
func (c *Channel) Members() []int32 {
	c.mu.Lock()
	out := make([]int32, 0, len(c.members))
	for id := range c.members {
		out = append(out, id)
	}
	c.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Info returns a channel-info packet with the current member count.
func (c *Channel) Info() []byte {
	return packet.ChannelInfo(c.DisplayName, c.Topic, int16(c.Count()))
}

// AutoJoinInfo returns a channel-auto-join packet with the current member count.
func (c *Channel) AutoJoinInfo() []byte {
	return packet.ChannelAutoJoin(c.DisplayName, c.Topic, int16(c.Count()))
}

// add reports whether id was newly added.
func (c *Channel) add(id int32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.members[id]; ok {
		return false
	}
	c.members[id] = struct{}{}
	return true
}

// remove reports whether id was a member.
func (c *Channel) remove(id int32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.members[id]; !ok {
		return false
	}
	delete(c.members, id)
	return true
}
