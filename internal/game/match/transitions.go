package match

import (
	"fmt"
	"slices"

	"github.com/jeenyuhs/Ragnarok/internal/game/mods"
	"github.com/jeenyuhs/Ragnarok/internal/protocol/packet"
)

// Every exported transition returns the effects it produced and whether it
// applied. A transition whose precondition fails changes nothing and
// returns empty effects; callers treat that as "ignored", not as an error.

// Join seats a player in the first open slot.
//
// Precondition: id is not already connected; the match is not disposed.
// Postcondition: on success the joiner receives a join-success packet, other
// members and the lobby receive refreshed state.
func (m *Match) Join(id int32, name, password string) (Effects, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var e Effects
	if m.disposed || m.isConnected(id) || password != m.password {
		return e, false
	}
	i := m.freeSlot()
	if i < 0 {
		return e, false
	}

	s := &m.slots[i]
	s.reset()
	s.PlayerID = id
	s.Status = NotReady
	s.Host = id == m.host
	if m.teamType.HasTeams() {
		s.Team = m.balanceTeam(i)
	}
	m.connected = append(m.connected, id)
	m.names[id] = name

	e.to(id, packet.MatchJoinSuccess(m.stateLocked()))
	m.broadcastState(&e, true, id)
	return e, true
}

// Leave frees id's slot. When the last member leaves the match is disposed
// and the lobby told; when the host leaves, host passes to the lowest
// occupied slot.
func (m *Match) Leave(id int32) (Effects, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var e Effects
	if !m.isConnected(id) {
		return e, false
	}
	if i := m.slotOf(id); i >= 0 {
		m.slots[i].reset()
	}
	m.connected = slices.DeleteFunc(m.connected, func(v int32) bool { return v == id })
	delete(m.names, id)

	if len(m.connected) == 0 {
		m.disposed = true
		e.Disposed = true
		e.lobby(packet.DisposeMatch(m.ID))
		return e, true
	}

	if id == m.host {
		for i := range m.slots {
			if m.slots[i].Status.IsOccupied() {
				m.transferHostLocked(&e, i)
				break
			}
		}
	}
	if m.inProgress {
		if m.endIfAbandonedLocked(&e) {
			return e, true
		}
		m.aggregateLocked(&e)
	}
	m.broadcastState(&e, true)
	return e, true
}

// ChangeSlot moves id into an open slot.
func (m *Match) ChangeSlot(id int32, to int) (Effects, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var e Effects
	from := m.slotOf(id)
	if m.inProgress || from < 0 || to < 0 || to >= SlotCount || m.slots[to].Status != Open {
		return e, false
	}
	m.slots[to] = m.slots[from]
	m.slots[from].reset()
	m.broadcastState(&e, false)
	return e, true
}

func (m *Match) setStatus(id int32, status SlotStatus, guard func(Slot) bool) (Effects, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var e Effects
	i := m.slotOf(id)
	if i < 0 || m.slots[i].Status == status || !guard(m.slots[i]) {
		return e, false
	}
	m.slots[i].Status = status
	m.broadcastState(&e, false)
	return e, true
}

// Ready marks id ready. Idempotent.
func (m *Match) Ready(id int32) (Effects, bool) {
	return m.setStatus(id, Ready, func(Slot) bool { return !m.inProgress })
}

// Unready marks id not ready.
func (m *Match) Unready(id int32) (Effects, bool) {
	return m.setStatus(id, NotReady, notPlaying)
}

// NoBeatmap records that id lacks the beatmap.
func (m *Match) NoBeatmap(id int32) (Effects, bool) {
	return m.setStatus(id, NoMap, notPlaying)
}

// HasBeatmap records that id obtained the beatmap.
func (m *Match) HasBeatmap(id int32) (Effects, bool) {
	return m.setStatus(id, NotReady, notPlaying)
}

func notPlaying(s Slot) bool { return s.Status != Playing }

// ToggleLock flips an unoccupied slot between locked and open.
func (m *Match) ToggleLock(issuer int32, slot int) (Effects, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var e Effects
	if issuer != m.host || m.inProgress || slot < 0 || slot >= SlotCount {
		return e, false
	}
	s := &m.slots[slot]
	switch s.Status {
	case Locked:
		s.Status = Open
	case Open:
		s.Status = Locked
	default:
		return e, false
	}
	m.broadcastState(&e, true)
	return e, true
}

// StartOutcome reports what a start request did.
type StartOutcome int

const (
	// StartIgnored means the issuer may not start the match now.
	StartIgnored StartOutcome = iota
	// StartNeedsConfirm means some players are not ready and the issuer
	// must confirm a forced start.
	StartNeedsConfirm
	// Started means gameplay began.
	Started
)

// Start begins gameplay. Without force, every occupied slot that has the
// beatmap must be ready.
//
// Postcondition: on Started every such slot is playing and each of their
// occupants receives a match-start packet.
func (m *Match) Start(issuer int32, force bool) (Effects, StartOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var e Effects
	if issuer != m.host || m.inProgress {
		return e, StartIgnored
	}
	playable := false
	for _, s := range m.slots {
		if s.Status.IsPlayable() {
			playable = true
			break
		}
	}
	if !playable {
		return e, StartIgnored
	}
	if !force && !m.allReadyLocked() {
		return e, StartNeedsConfirm
	}

	for i := range m.slots {
		s := &m.slots[i]
		if s.Status.IsPlayable() {
			s.Status = Playing
			s.Loaded = false
			s.Skipped = false
		}
	}
	m.inProgress = true
	m.allLoaded = false
	m.allSkipped = false

	start := packet.MatchStart(m.stateLocked())
	e.each(m.playing(), start)
	m.broadcastState(&e, true)
	return e, Started
}

// Abort stops gameplay without results.
func (m *Match) Abort(issuer int32) (Effects, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var e Effects
	if issuer != m.host || !m.inProgress {
		return e, false
	}
	players := m.playing()
	m.endLocked()
	e.each(players, packet.MatchAbort())
	m.broadcastState(&e, true)
	return e, true
}

// LoadComplete records that id finished loading. Once every playing slot has
// loaded, each playing occupant is told exactly once.
func (m *Match) LoadComplete(id int32) (Effects, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var e Effects
	i := m.slotOf(id)
	if !m.inProgress || i < 0 || m.slots[i].Status != Playing || m.slots[i].Loaded {
		return e, false
	}
	m.slots[i].Loaded = true
	m.aggregateLocked(&e)
	return e, true
}

// SkipRequest records that id wants to skip the intro. Once every playing
// slot has asked, the room is told to skip exactly once.
func (m *Match) SkipRequest(id int32) (Effects, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var e Effects
	i := m.slotOf(id)
	if !m.inProgress || i < 0 || m.slots[i].Status != Playing || m.slots[i].Skipped {
		return e, false
	}
	m.slots[i].Skipped = true
	m.room(&e, packet.MatchPlayerSkipped(int32(i)))
	m.aggregateLocked(&e)
	return e, true
}

// Complete ends gameplay on the first report from a playing slot: every
// playing slot reverts to not ready and each of their occupants receives a
// completion notice.
func (m *Match) Complete(id int32) (Effects, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var e Effects
	i := m.slotOf(id)
	if !m.inProgress || i < 0 || m.slots[i].Status != Playing {
		return e, false
	}
	played := m.playing()
	m.endLocked()
	e.each(played, packet.MatchComplete())
	m.broadcastState(&e, true)
	return e, true
}

// Failed tells the room that id's occupant failed.
func (m *Match) Failed(id int32) (Effects, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var e Effects
	i := m.slotOf(id)
	if !m.inProgress || i < 0 || m.slots[i].Status != Playing {
		return e, false
	}
	m.room(&e, packet.MatchPlayerFailed(int32(i)))
	return e, true
}

// ScoreUpdate relays id's live score frame to the room with the frame id
// replaced by the sender's slot index.
func (m *Match) ScoreUpdate(id int32, frame packet.ScoreFrame) (Effects, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var e Effects
	i := m.slotOf(id)
	if !m.inProgress || i < 0 || m.slots[i].Status != Playing {
		return e, false
	}
	frame.ID = uint8(i)
	m.room(&e, packet.MatchScoreUpdate(frame))
	return e, true
}

// ChangeTeam swaps id between blue and red. Every slot with the beatmap must
// ready again afterwards.
func (m *Match) ChangeTeam(id int32) (Effects, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var e Effects
	i := m.slotOf(id)
	if m.inProgress || i < 0 {
		return e, false
	}
	if m.slots[i].Team == Blue {
		m.slots[i].Team = Red
	} else {
		m.slots[i].Team = Blue
	}
	m.unreadyPlayable()
	m.broadcastState(&e, false)
	return e, true
}

// ChangeMods applies a mod selection from id.
//
// With freemod on, the host sets the match-wide shared subset and every
// occupant (host included) sets only the individual part on their own slot.
// With freemod off, only the host may change mods, applied match-wide, and
// every slot with the beatmap must ready again.
func (m *Match) ChangeMods(id int32, want mods.Mods) (Effects, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var e Effects
	i := m.slotOf(id)
	if m.inProgress || i < 0 {
		return e, false
	}
	if m.freemod {
		if id == m.host && m.mods != want.Shared() {
			m.mods = want.Shared()
			for j := range m.slots {
				if m.slots[j].Status == Ready {
					m.slots[j].Status = NotReady
				}
			}
		}
		m.slots[i].Mods = want.Individual()
	} else {
		if id != m.host {
			return e, false
		}
		m.mods = want
		m.unreadyPlayable()
	}
	m.broadcastState(&e, false)
	return e, true
}

// ChangeSettings applies a host's settings packet. resolved carries the
// beatmap looked up by hash before the call, or nil when the lookup failed,
// in which case the client-supplied identity is kept.
func (m *Match) ChangeSettings(issuer int32, want packet.MatchState, resolved *Beatmap) (Effects, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var e Effects
	if issuer != m.host || m.inProgress {
		return e, false
	}

	if want.BeatmapMD5 != m.beatmap.MD5 || want.BeatmapID != m.beatmap.ID {
		if resolved != nil {
			m.beatmap = *resolved
		} else {
			m.beatmap = Beatmap{
				MD5:   want.BeatmapMD5,
				ID:    want.BeatmapID,
				Title: want.BeatmapTitle,
				Mode:  mods.Mode(want.Mode),
			}
		}
	} else if mode := mods.Mode(want.Mode); mode.Valid() {
		m.beatmap.Mode = mode
	}
	if want.Name != "" {
		m.name = want.Name
	}

	if want.Freemod != m.freemod {
		if want.Freemod {
			individual := m.mods.Individual()
			m.mods = m.mods.Shared()
			for j := range m.slots {
				if m.slots[j].Status.IsOccupied() {
					m.slots[j].Mods = individual
				}
			}
		} else {
			if h := m.slotOf(m.host); h >= 0 {
				m.mods = m.mods.Shared() | m.slots[h].Mods
			}
			for j := range m.slots {
				m.slots[j].Mods = 0
			}
		}
		m.freemod = want.Freemod
	}

	m.scoring = ScoringType(want.ScoringType)
	if tt := TeamType(want.TeamType); tt != m.teamType {
		m.teamType = tt
		for j := range m.slots {
			s := &m.slots[j]
			switch {
			case !s.Status.IsOccupied():
				s.Team = Neutral
			case tt.HasTeams():
				s.Team = m.balanceTeam(j)
			default:
				s.Team = Neutral
			}
		}
	}
	m.seed = want.Seed
	m.matchType = want.Type

	m.broadcastState(&e, true)
	return e, true
}

// ChangePassword sets a new password, tells every occupant, and refreshes
// the lobby listing.
func (m *Match) ChangePassword(issuer int32, password string) (Effects, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var e Effects
	if issuer != m.host || m.inProgress || password == m.password {
		return e, false
	}
	m.password = password
	e.each(m.occupants(), packet.MatchChangePassword(password))
	m.broadcastState(&e, true)
	return e, true
}

// TransferHost hands the match to the occupant of slot.
func (m *Match) TransferHost(issuer int32, slot int) (Effects, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var e Effects
	if issuer != m.host || slot < 0 || slot >= SlotCount {
		return e, false
	}
	s := m.slots[slot]
	if !s.Status.IsOccupied() || s.PlayerID == m.host {
		return e, false
	}
	m.transferHostLocked(&e, slot)
	m.broadcastState(&e, true)
	return e, true
}

// SetWinCondition changes the scoring type. "pp" forces score ranking and
// flags the pp win condition.
func (m *Match) SetWinCondition(issuer int32, cond string) (Effects, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var e Effects
	if issuer != m.host {
		return e, false
	}
	switch cond {
	case "score":
		m.scoring, m.ppWin = ScoreWin, false
	case "acc", "accuracy":
		m.scoring, m.ppWin = AccuracyWin, false
	case "combo":
		m.scoring, m.ppWin = ComboWin, false
	case "sv2", "scorev2":
		m.scoring, m.ppWin = ScoreV2Win, false
	case "pp":
		m.scoring, m.ppWin = ScoreWin, true
	default:
		return e, false
	}
	m.broadcastState(&e, false)
	return e, true
}

// Resize keeps the first n slots available and locks every unoccupied slot
// beyond them.
func (m *Match) Resize(issuer int32, n int) (Effects, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var e Effects
	if issuer != m.host || m.inProgress || n < 1 || n > SlotCount {
		return e, false
	}
	for i := range m.slots {
		s := &m.slots[i]
		if s.Status.IsOccupied() {
			continue
		}
		if i < n {
			s.Status = Open
		} else {
			s.Status = Locked
		}
	}
	m.broadcastState(&e, true)
	return e, true
}

// Move relocates target's slot into the unoccupied slot to.
func (m *Match) Move(issuer, target int32, to int) (Effects, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var e Effects
	if issuer != m.host || m.inProgress || to < 0 || to >= SlotCount {
		return e, false
	}
	from := m.slotOf(target)
	if from < 0 || m.slots[to].Status.IsOccupied() {
		return e, false
	}
	m.slots[to] = m.slots[from]
	m.slots[from].reset()
	m.broadcastState(&e, true)
	return e, true
}

// Name returns the display name of connected member id.
func (m *Match) Name(id int32) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.names[id]
}

func (m *Match) transferHostLocked(e *Effects, slot int) {
	m.host = m.slots[slot].PlayerID
	m.syncHost()
	e.to(m.host, packet.MatchTransferHost())
	name := m.names[m.host]
	if name == "" {
		name = fmt.Sprintf("player %d", m.host)
	}
	m.room(e, packet.Notification(name+" became host!"))
}

func (m *Match) allPlaying(pred func(Slot) bool) bool {
	for _, s := range m.slots {
		if s.Status == Playing && !pred(s) {
			return false
		}
	}
	return true
}

// endLocked reverts every playing slot and clears progress.
func (m *Match) endLocked() {
	for i := range m.slots {
		s := &m.slots[i]
		if s.Status == Playing {
			s.Status = NotReady
		}
		s.Loaded = false
		s.Skipped = false
	}
	m.inProgress = false
	m.allLoaded = false
	m.allSkipped = false
}

// aggregateLocked sends the all-loaded and global skip notices once the
// remaining playing slots have all loaded or all skipped. Each fires at most
// once per game.
func (m *Match) aggregateLocked(e *Effects) {
	if len(m.playing()) == 0 {
		return
	}
	if !m.allLoaded && m.allPlaying(func(s Slot) bool { return s.Loaded }) {
		m.allLoaded = true
		e.each(m.playing(), packet.MatchAllPlayersLoaded())
	}
	if !m.allSkipped && m.allPlaying(func(s Slot) bool { return s.Skipped }) {
		m.allSkipped = true
		m.room(e, packet.MatchSkip())
	}
}

// endIfAbandonedLocked ends gameplay once no slot is still playing and
// reports whether it did.
func (m *Match) endIfAbandonedLocked(e *Effects) bool {
	if len(m.playing()) > 0 {
		return false
	}
	m.endLocked()
	m.broadcastState(e, true)
	return true
}
