// Package mods defines gameplay modifier bits and game modes.
package mods

import "strings"

// Mods is the client's gameplay modifier bitmask.
type Mods uint32

const (
	NoFail      Mods = 1 << 0
	Easy        Mods = 1 << 1
	TouchDevice Mods = 1 << 2
	Hidden      Mods = 1 << 3
	HardRock    Mods = 1 << 4
	SuddenDeath Mods = 1 << 5
	DoubleTime  Mods = 1 << 6
	Relax       Mods = 1 << 7
	HalfTime    Mods = 1 << 8
	Nightcore   Mods = 1 << 9
	Flashlight  Mods = 1 << 10
	Autoplay    Mods = 1 << 11
	SpunOut     Mods = 1 << 12
	Autopilot   Mods = 1 << 13
	Perfect     Mods = 1 << 14
	Key4        Mods = 1 << 15
	Key5        Mods = 1 << 16
	Key6        Mods = 1 << 17
	Key7        Mods = 1 << 18
	Key8        Mods = 1 << 19
	FadeIn      Mods = 1 << 20
	Random      Mods = 1 << 21
	Cinema      Mods = 1 << 22
	Target      Mods = 1 << 23
	Key9        Mods = 1 << 24
	KeyCoop     Mods = 1 << 25
	Key1        Mods = 1 << 26
	Key3        Mods = 1 << 27
	Key2        Mods = 1 << 28
	ScoreV2     Mods = 1 << 29
	Mirror      Mods = 1 << 30
)

// MultiplayerShared are the speed-changing mods that stay match-wide while
// freemod is on. Everything else belongs to individual slots.
const MultiplayerShared = DoubleTime | Nightcore | HalfTime

// Has reports whether every bit of o is set in m.
func (m Mods) Has(o Mods) bool { return m&o == o }

// Shared returns the match-wide part of m.
func (m Mods) Shared() Mods { return m & MultiplayerShared }

// Individual returns the per-slot part of m.
func (m Mods) Individual() Mods { return m &^ MultiplayerShared }

var acronyms = []struct {
	mod  Mods
	name string
}{
	{NoFail, "NF"}, {Easy, "EZ"}, {TouchDevice, "TD"}, {Hidden, "HD"},
	{HardRock, "HR"}, {SuddenDeath, "SD"}, {DoubleTime, "DT"}, {Relax, "RX"},
	{HalfTime, "HT"}, {Nightcore, "NC"}, {Flashlight, "FL"}, {Autoplay, "AU"},
	{SpunOut, "SO"}, {Autopilot, "AP"}, {Perfect, "PF"}, {FadeIn, "FI"},
	{Random, "RD"}, {Cinema, "CN"}, {Target, "TP"}, {ScoreV2, "V2"},
	{Mirror, "MR"},
}

// String renders m as concatenated acronyms, "NM" when empty.
func (m Mods) String() string {
	if m == 0 {
		return "NM"
	}
	var b strings.Builder
	for _, a := range acronyms {
		if m&a.mod != 0 {
			b.WriteString(a.name)
		}
	}
	return b.String()
}

// Mode is a ruleset.
type Mode uint8

const (
	Osu Mode = iota
	Taiko
	Catch
	Mania
)

// String returns the conventional ruleset name.
func (m Mode) String() string {
	switch m {
	case Osu:
		return "osu!"
	case Taiko:
		return "taiko"
	case Catch:
		return "catch"
	case Mania:
		return "mania"
	default:
		return "unknown"
	}
}

// Valid reports whether m is a known ruleset.
func (m Mode) Valid() bool { return m <= Mania }
