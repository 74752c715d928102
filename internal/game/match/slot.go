// Package match implements the 16-slot multiplayer room state machine.
//
// Every transition runs under the match's own mutex and returns the packets
// it produced as an Effects value. Nothing is delivered while the lock is
// held; the Service emits effects after the transition returns.
package match

import "github.com/jeenyuhs/Ragnarok/internal/game/mods"

// SlotCount is the fixed number of seats in a match.
const SlotCount = 16

// SlotStatus is a bitmask-composable slot state.
type SlotStatus uint8

const (
	Open     SlotStatus = 1 << 0
	Locked   SlotStatus = 1 << 1
	NotReady SlotStatus = 1 << 2
	Ready    SlotStatus = 1 << 3
	NoMap    SlotStatus = 1 << 4
	Playing  SlotStatus = 1 << 5
	// Complete is understood by the client; the engine returns finished
	// slots straight to NotReady.
	Complete SlotStatus = 1 << 6
	Quit     SlotStatus = 1 << 7
)

// HasPlayer is the union of every status that carries an occupant.
const HasPlayer = NotReady | Ready | NoMap | Playing | Complete

// IsOccupied reports whether the slot holds a player.
func (s SlotStatus) IsOccupied() bool { return s&HasPlayer != 0 }

// IsPlayable reports whether the slot holds a player who has the beatmap.
func (s SlotStatus) IsPlayable() bool { return s.IsOccupied() && s != NoMap }

// Team is a slot's side in team modes.
type Team uint8

const (
	Neutral Team = iota
	Blue
	Red
)

// ScoringType is the win condition the client ranks by.
type ScoringType uint8

const (
	ScoreWin ScoringType = iota
	AccuracyWin
	ComboWin
	ScoreV2Win
)

func (s ScoringType) String() string {
	switch s {
	case ScoreWin:
		return "score"
	case AccuracyWin:
		return "accuracy"
	case ComboWin:
		return "combo"
	case ScoreV2Win:
		return "scorev2"
	}
	return "unknown"
}

// TeamType is the room's team arrangement.
type TeamType uint8

const (
	HeadToHead TeamType = iota
	TagCoop
	TeamVs
	TagTeamVs
)

// HasTeams reports whether slots are split into red and blue.
func (t TeamType) HasTeams() bool { return t == TeamVs || t == TagTeamVs }

// Slot is one seat.
type Slot struct {
	PlayerID int32
	Mods     mods.Mods
	Host     bool
	Status   SlotStatus
	Team     Team
	Loaded   bool
	Skipped  bool
}

func (s *Slot) reset() {
	*s = Slot{Status: Open}
}

// Beatmap is the (hash, id, title, mode) tuple a match plays.
type Beatmap struct {
	MD5   string
	ID    int32
	Title string
	Mode  mods.Mode
}
