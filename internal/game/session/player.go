package session

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeenyuhs/Ragnarok/internal/game/mods"
	"github.com/jeenyuhs/Ragnarok/internal/protocol/packet"
)

// Privileges are the server-side account privilege bits stored with a user.
type Privileges int32

const (
	Banned    Privileges = 1 << 0
	Normal    Privileges = 1 << 1
	Verified  Privileges = 1 << 2
	Supporter Privileges = 1 << 4
	BAT       Privileges = 1 << 5
	Moderator Privileges = 1 << 6
	Admin     Privileges = 1 << 7
	Developer Privileges = 1 << 8
	Pending   Privileges = 1 << 9
)

// Client privilege bits understood by the osu! client.
const (
	clientPlayer    int32 = 1 << 0
	clientModerator int32 = 1 << 1
	clientSupporter int32 = 1 << 2
	clientOwner     int32 = 1 << 3
	clientDeveloper int32 = 1 << 4
)

// Action is the activity code a client reports with its status.
type Action uint8

const (
	Idle Action = iota
	Afk
	Playing
	Editing
	Modding
	Multiplayer
	Watching
	Unknown
	Testing
	Submitting
	Paused
	Lobby
	Multiplaying
	OsuDirect
)

// Status is the presence tuple a client reports through change-action.
type Status struct {
	Action     Action
	Text       string
	BeatmapMD5 string
	Mods       mods.Mods
	Mode       mods.Mode
	BeatmapID  int32
}

// Stats are the per-mode statistics shown next to a player.
type Stats struct {
	RankedScore int64
	Accuracy    float32
	PlayCount   int32
	TotalScore  int64
	Rank        int32
	PP          int16
}

// Identity describes an authenticated user at login time.
type Identity struct {
	ID         int32
	Name       string
	Privileges Privileges
	Country    uint8
	Longitude  float32
	Latitude   float32
}

// ClientInfo carries the fields parsed from the login client-info line.
type ClientInfo struct {
	Version           string
	UTCOffset         int8
	BlockNonFriendDMs bool
	IP                string
}

// Player is one logged-in session.
//
// Identity fields are fixed at login. Everything behind mu is mutable and
// is accessed only through methods. Match and spectate references are ids
// resolved through the owning registries.
type Player struct {
	ID         int32
	Name       string
	SafeName   string
	Token      string
	Country    uint8
	Longitude  float32
	Latitude   float32
	UTCOffset  int8
	Version    string
	IP         string
	LoginTime  time.Time
	Bot        bool
	Outbox     *Outbox
	privileges Privileges

	mu                sync.Mutex
	status            Status
	stats             Stats
	friends           map[int32]struct{}
	channels          map[string]struct{}
	spectators        map[int32]struct{}
	spectating        int32
	matchID           int32
	inLobby           bool
	blockNonFriendDMs bool
	awayMessage       string
	lastSeen          time.Time
}

// NoMatch is returned by MatchID when the player is not in a match.
const NoMatch int32 = -1

// SafeName normalizes a display name for lookups.
func SafeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// NewPlayer builds a session for an authenticated identity with a fresh
// token.
//
// Postcondition: the player is not registered anywhere yet.
func NewPlayer(id Identity, client ClientInfo, now time.Time) *Player {
	return &Player{
		ID:                id.ID,
		Name:              id.Name,
		SafeName:          SafeName(id.Name),
		Token:             uuid.NewString(),
		Country:           id.Country,
		Longitude:         id.Longitude,
		Latitude:          id.Latitude,
		UTCOffset:         client.UTCOffset,
		Version:           client.Version,
		IP:                client.IP,
		LoginTime:         now,
		Outbox:            &Outbox{},
		privileges:        id.Privileges,
		friends:           make(map[int32]struct{}),
		channels:          make(map[string]struct{}),
		spectators:        make(map[int32]struct{}),
		matchID:           NoMatch,
		blockNonFriendDMs: client.BlockNonFriendDMs,
		lastSeen:          now,
	}
}

// NewBot builds the server's own chat identity. Bots are never polled, so
// anything enqueued to them is discarded.
func NewBot(id int32, name string, now time.Time) *Player {
	p := NewPlayer(Identity{ID: id, Name: name, Privileges: Normal | Verified | BAT | Admin}, ClientInfo{}, now)
	p.Bot = true
	return p
}

// Enqueue appends framed packets to the player's outbox.
func (p *Player) Enqueue(b []byte) {
	if p.Bot {
		return
	}
	p.Outbox.Enqueue(b)
}

// Privileges returns the account privilege bits.
func (p *Player) Privileges() Privileges {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.privileges
}

// SetPrivileges replaces the account privilege bits.
func (p *Player) SetPrivileges(v Privileges) {
	p.mu.Lock()
	p.privileges = v
	p.mu.Unlock()
}

// Restricted reports whether the account is neither verified nor pending
// verification.
func (p *Player) Restricted() bool {
	return p.Privileges()&(Verified|Pending) == 0
}

// Staff reports whether the account may see staff channels.
func (p *Player) Staff() bool {
	return p.Privileges()&BAT != 0
}

// ClientPrivileges maps account privileges onto the bits the client uses for
// name colouring and menu access.
func (p *Player) ClientPrivileges() int32 {
	priv := p.Privileges()
	bits := clientPlayer
	if priv&Supporter != 0 {
		bits |= clientSupporter
	}
	if priv&Moderator != 0 {
		bits |= clientModerator
	}
	if priv&Admin != 0 {
		bits |= clientOwner
	}
	if priv&Developer != 0 {
		bits |= clientDeveloper
	}
	return bits
}

// Status returns the last reported presence tuple.
func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// SetStatus replaces the presence tuple.
func (p *Player) SetStatus(s Status) {
	p.mu.Lock()
	p.status = s
	p.mu.Unlock()
}

// Stats returns the cached statistics.
func (p *Player) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// SetStats replaces the cached statistics.
func (p *Player) SetStats(s Stats) {
	p.mu.Lock()
	p.stats = s
	p.mu.Unlock()
}

// MatchID returns the match the player occupies, or NoMatch.
func (p *Player) MatchID() int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.matchID
}

// SetMatchID records the match the player occupies. Pass NoMatch to clear.
func (p *Player) SetMatchID(id int32) {
	p.mu.Lock()
	p.matchID = id
	p.mu.Unlock()
}

// ClaimMatch records id as the player's match only if the player is in none.
//
// Postcondition: Returns false, changing nothing, when a match is already held.
func (p *Player) ClaimMatch(id int32) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.matchID != NoMatch {
		return false
	}
	p.matchID = id
	return true
}

// ReleaseMatch clears the player's match only if it is still id.
func (p *Player) ReleaseMatch(id int32) {
	p.mu.Lock()
	if p.matchID == id {
		p.matchID = NoMatch
	}
	p.mu.Unlock()
}

// InLobby reports whether the player is browsing the match listing.
func (p *Player) InLobby() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inLobby
}

// SetInLobby records whether the player is browsing the match listing.
func (p *Player) SetInLobby(v bool) {
	p.mu.Lock()
	p.inLobby = v
	p.mu.Unlock()
}

// AddChannel records channel membership on the player side.
func (p *Player) AddChannel(name string) {
	p.mu.Lock()
	p.channels[name] = struct{}{}
	p.mu.Unlock()
}

// RemoveChannel forgets channel membership on the player side.
func (p *Player) RemoveChannel(name string) {
	p.mu.Lock()
	delete(p.channels, name)
	p.mu.Unlock()
}

// InChannel reports whether the player has joined name.
func (p *Player) InChannel(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.channels[name]
	return ok
}

// Channels returns the internal names of joined channels, sorted.
func (p *Player) Channels() []string {
	p.mu.Lock()
	out := make([]string, 0, len(p.channels))
	for name := range p.channels {
		out = append(out, name)
	}
	p.mu.Unlock()
	sort.Strings(out)
	return out
}

// SetFriends replaces the friend set.
func (p *Player) SetFriends(ids []int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.friends = make(map[int32]struct{}, len(ids))
	for _, id := range ids {
		p.friends[id] = struct{}{}
	}
}

// AddFriend adds id to the friend set.
func (p *Player) AddFriend(id int32) {
	p.mu.Lock()
	p.friends[id] = struct{}{}
	p.mu.Unlock()
}

// RemoveFriend removes id from the friend set.
func (p *Player) RemoveFriend(id int32) {
	p.mu.Lock()
	delete(p.friends, id)
	p.mu.Unlock()
}

// IsFriend reports whether id is in the friend set.
func (p *Player) IsFriend(id int32) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.friends[id]
	return ok
}

// Friends returns the friend ids, sorted.
func (p *Player) Friends() []int32 {
	p.mu.Lock()
	out := make([]int32, 0, len(p.friends))
	for id := range p.friends {
		out = append(out, id)
	}
	p.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// BlockNonFriendDMs reports whether private messages from strangers are refused.
func (p *Player) BlockNonFriendDMs() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.blockNonFriendDMs
}

// SetBlockNonFriendDMs toggles refusal of private messages from strangers.
func (p *Player) SetBlockNonFriendDMs(v bool) {
	p.mu.Lock()
	p.blockNonFriendDMs = v
	p.mu.Unlock()
}

// AwayMessage returns the automatic reply for private messages.
func (p *Player) AwayMessage() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.awayMessage
}

// SetAwayMessage sets the automatic reply. An empty string clears it.
func (p *Player) SetAwayMessage(s string) {
	p.mu.Lock()
	p.awayMessage = s
	p.mu.Unlock()
}

// Spectating returns the id of the watched player, or 0.
func (p *Player) Spectating() int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.spectating
}

// Spectators returns the ids watching this player, sorted.
func (p *Player) Spectators() []int32 {
	p.mu.Lock()
	out := make([]int32, 0, len(p.spectators))
	for id := range p.spectators {
		out = append(out, id)
	}
	p.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// LastSeen returns the time of the last completed poll.
func (p *Player) LastSeen() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeen
}

func (p *Player) touch(now time.Time) {
	p.mu.Lock()
	p.lastSeen = now
	p.mu.Unlock()
}

// Presence returns the roster entry for this player.
func (p *Player) Presence() packet.Presence {
	s := p.Status()
	return packet.Presence{
		UserID:     p.ID,
		Name:       p.Name,
		UTCOffset:  uint8(int(p.UTCOffset) + 24),
		Country:    p.Country,
		Privileges: uint8(p.ClientPrivileges()),
		Mode:       uint8(s.Mode),
		Longitude:  p.Longitude,
		Latitude:   p.Latitude,
		Rank:       p.Stats().Rank,
	}
}

// StatsBlock returns the status and statistics block for this player.
func (p *Player) StatsBlock() packet.Stats {
	s := p.Status()
	st := p.Stats()
	return packet.Stats{
		UserID:      p.ID,
		Action:      uint8(s.Action),
		InfoText:    s.Text,
		BeatmapMD5:  s.BeatmapMD5,
		Mods:        uint32(s.Mods),
		Mode:        uint8(s.Mode),
		BeatmapID:   s.BeatmapID,
		RankedScore: st.RankedScore,
		Accuracy:    st.Accuracy,
		PlayCount:   st.PlayCount,
		TotalScore:  st.TotalScore,
		Rank:        st.Rank,
		PP:          st.PP,
	}
}

// PresencePackets returns presence followed by stats, framed.
func (p *Player) PresencePackets() []byte {
	return append(packet.UserPresence(p.Presence()), packet.UserStats(p.StatsBlock())...)
}
