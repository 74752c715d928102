package match

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/jeenyuhs/Ragnarok/internal/game/mods"
	"github.com/jeenyuhs/Ragnarok/internal/protocol/packet"
)

// Settings are the creator-supplied parameters of a new match.
type Settings struct {
	Name        string
	Password    string
	Beatmap     Beatmap
	Mods        mods.Mods
	Freemod     bool
	ScoringType ScoringType
	TeamType    TeamType
	Seed        int32
	Type        uint8
}

// SettingsFromState extracts creation settings from a client match packet.
func SettingsFromState(s packet.MatchState) Settings {
	return Settings{
		Name:     s.Name,
		Password: s.Password,
		Beatmap: Beatmap{
			MD5:   s.BeatmapMD5,
			ID:    s.BeatmapID,
			Title: s.BeatmapTitle,
			Mode:  mods.Mode(s.Mode),
		},
		Mods:        mods.Mods(s.Mods),
		Freemod:     s.Freemod,
		ScoringType: ScoringType(s.ScoringType),
		TeamType:    TeamType(s.TeamType),
		Seed:        s.Seed,
		Type:        s.Type,
	}
}

// Match is one multiplayer room.
type Match struct {
	ID   int32
	Chat string

	mu         sync.Mutex
	name       string
	password   string
	beatmap    Beatmap
	slots      [SlotCount]Slot
	host       int32
	mods       mods.Mods
	freemod    bool
	scoring    ScoringType
	ppWin      bool
	teamType   TeamType
	seed       int32
	matchType  uint8
	inProgress bool
	allLoaded  bool
	allSkipped bool
	disposed   bool
	connected  []int32
	names      map[int32]string
}

func newMatch(id, host int32, chat string, s Settings) *Match {
	m := &Match{
		ID:        id,
		Chat:      chat,
		name:      s.Name,
		password:  s.Password,
		beatmap:   s.Beatmap,
		host:      host,
		mods:      s.Mods,
		freemod:   s.Freemod,
		scoring:   s.ScoringType,
		teamType:  s.TeamType,
		seed:      s.Seed,
		matchType: s.Type,
		names:     make(map[int32]string),
	}
	if m.freemod {
		m.mods = m.mods.Shared()
	}
	for i := range m.slots {
		m.slots[i].reset()
	}
	return m
}

// String identifies the match in logs.
func (m *Match) String() string { return fmt.Sprintf("match-%d", m.ID) }

// Snapshot is a consistent read-only copy of match state.
type Snapshot struct {
	ID          int32
	Name        string
	Password    string
	Beatmap     Beatmap
	Slots       [SlotCount]Slot
	Host        int32
	Mods        mods.Mods
	Freemod     bool
	ScoringType ScoringType
	PPWin       bool
	TeamType    TeamType
	Seed        int32
	InProgress  bool
	Connected   []int32
}

// Snapshot copies the current state.
func (m *Match) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		ID:          m.ID,
		Name:        m.name,
		Password:    m.password,
		Beatmap:     m.beatmap,
		Slots:       m.slots,
		Host:        m.host,
		Mods:        m.mods,
		Freemod:     m.freemod,
		ScoringType: m.scoring,
		PPWin:       m.ppWin,
		TeamType:    m.teamType,
		Seed:        m.seed,
		InProgress:  m.inProgress,
		Connected:   slices.Clone(m.connected),
	}
}

// State returns the wire form of the match.
func (m *Match) State() packet.MatchState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

// Host returns the current host id.
func (m *Match) Host() int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.host
}

// InProgress reports whether gameplay is running.
func (m *Match) InProgress() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inProgress
}

// SlotOf returns the index of id's slot, or -1.
func (m *Match) SlotOf(id int32) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slotOf(id)
}

// Connected returns the ids of connected members in join order.
func (m *Match) Connected() []int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.connected)
}

// InviteLink returns the chat-embeddable join link for the match.
func (m *Match) InviteLink() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fmt.Sprintf("[osump://%d/%s %s]", m.ID, strings.ReplaceAll(m.password, " ", "_"), m.name)
}

func (m *Match) stateLocked() packet.MatchState {
	st := packet.MatchState{
		ID:           uint16(m.ID),
		InProgress:   m.inProgress,
		Type:         m.matchType,
		Mods:         uint32(m.mods),
		Name:         m.name,
		Password:     m.password,
		BeatmapTitle: m.beatmap.Title,
		BeatmapID:    m.beatmap.ID,
		BeatmapMD5:   m.beatmap.MD5,
		HostID:       m.host,
		Mode:         uint8(m.beatmap.Mode),
		ScoringType:  uint8(m.scoring),
		TeamType:     uint8(m.teamType),
		Freemod:      m.freemod,
		Seed:         m.seed,
	}
	for i, s := range m.slots {
		st.Slots[i] = packet.SlotState{
			Status:   uint8(s.Status),
			Team:     uint8(s.Team),
			PlayerID: s.PlayerID,
			Mods:     uint32(s.Mods),
		}
		if !s.Status.IsOccupied() {
			st.Slots[i].PlayerID = 0
		}
	}
	return st
}

func (m *Match) slotOf(id int32) int {
	for i := range m.slots {
		if m.slots[i].Status.IsOccupied() && m.slots[i].PlayerID == id {
			return i
		}
	}
	return -1
}

func (m *Match) isConnected(id int32) bool {
	return slices.Contains(m.connected, id)
}

func (m *Match) freeSlot() int {
	for i := range m.slots {
		if m.slots[i].Status == Open {
			return i
		}
	}
	return -1
}

func (m *Match) allReadyLocked() bool {
	for _, s := range m.slots {
		if s.Status.IsPlayable() && s.Status != Ready {
			return false
		}
	}
	return true
}

func (m *Match) playing() []int32 {
	var ids []int32
	for _, s := range m.slots {
		if s.Status == Playing {
			ids = append(ids, s.PlayerID)
		}
	}
	return ids
}

func (m *Match) occupants() []int32 {
	var ids []int32
	for _, s := range m.slots {
		if s.Status.IsOccupied() {
			ids = append(ids, s.PlayerID)
		}
	}
	return ids
}

// syncHost makes the host flag follow m.host.
func (m *Match) syncHost() {
	for i := range m.slots {
		s := &m.slots[i]
		s.Host = s.Status.IsOccupied() && s.PlayerID == m.host
	}
}

// unreadyPlayable reverts every ready slot with the beatmap to not ready.
func (m *Match) unreadyPlayable() {
	for i := range m.slots {
		if m.slots[i].Status.IsPlayable() {
			m.slots[i].Status = NotReady
		}
	}
}

// broadcastState queues the full state to every connected member except
// the excluded ids, and to the lobby when lobby is set.
func (m *Match) broadcastState(e *Effects, lobby bool, exclude ...int32) {
	st := m.stateLocked()
	room := packet.UpdateMatch(st, true)
	for _, id := range m.connected {
		if slices.Contains(exclude, id) {
			continue
		}
		e.to(id, room)
	}
	if lobby {
		e.lobby(packet.UpdateMatch(st, false))
	}
}

func (m *Match) room(e *Effects, b []byte) {
	e.each(m.connected, b)
}

func (m *Match) balanceTeam(slot int) Team {
	var red, blue int
	for i, s := range m.slots {
		if i == slot || !s.Status.IsOccupied() {
			continue
		}
		switch s.Team {
		case Red:
			red++
		case Blue:
			blue++
		}
	}
	if blue < red {
		return Blue
	}
	return Red
}
