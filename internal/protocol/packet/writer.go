package packet

import (
	"encoding/binary"
	"math"
)

// HeaderSize is the length of a frame header in bytes.
const HeaderSize = 7

// Writer builds one packet payload.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty payload writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the payload written so far.
func (w *Writer) Bytes() []byte { return w.buf }

// U8 appends an unsigned byte.
func (w *Writer) U8(v uint8) *Writer {
	w.buf = append(w.buf, v)
	return w
}

// I8 appends a signed byte.
func (w *Writer) I8(v int8) *Writer { return w.U8(uint8(v)) }

// Bool appends a one byte boolean.
func (w *Writer) Bool(v bool) *Writer {
	if v {
		return w.U8(1)
	}
	return w.U8(0)
}

// U16 appends a little-endian uint16.
func (w *Writer) U16(v uint16) *Writer {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
	return w
}

// I16 appends a little-endian int16.
func (w *Writer) I16(v int16) *Writer { return w.U16(uint16(v)) }

// U32 appends a little-endian uint32.
func (w *Writer) U32(v uint32) *Writer {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
	return w
}

// I32 appends a little-endian int32.
func (w *Writer) I32(v int32) *Writer { return w.U32(uint32(v)) }

// U64 appends a little-endian uint64.
func (w *Writer) U64(v uint64) *Writer {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
	return w
}

// I64 appends a little-endian int64.
func (w *Writer) I64(v int64) *Writer { return w.U64(uint64(v)) }

// F32 appends a little-endian float32.
func (w *Writer) F32(v float32) *Writer { return w.U32(math.Float32bits(v)) }

// F64 appends a little-endian float64.
func (w *Writer) F64(v float64) *Writer { return w.U64(math.Float64bits(v)) }

// String appends an osu! string.
func (w *Writer) String(s string) *Writer {
	if s == "" {
		return w.U8(stringEmpty)
	}
	w.U8(stringPresent)
	for n := uint64(len(s)); ; {
		b := byte(n & 0x7f)
		n >>= 7
		if n != 0 {
			w.buf = append(w.buf, b|0x80)
			continue
		}
		w.buf = append(w.buf, b)
		break
	}
	w.buf = append(w.buf, s...)
	return w
}

// I32List appends a u16 count followed by the values.
func (w *Writer) I32List(vs []int32) *Writer {
	w.U16(uint16(len(vs)))
	for _, v := range vs {
		w.I32(v)
	}
	return w
}

// Raw appends b verbatim.
func (w *Writer) Raw(b []byte) *Writer {
	w.buf = append(w.buf, b...)
	return w
}

// Message appends a chat message structure.
func (w *Writer) Message(m Message) *Writer {
	return w.String(m.Sender).String(m.Text).String(m.Target).I32(m.SenderID)
}

// Match appends a match structure. When sendPassword is false a non-empty
// password is replaced by the "present but hidden" marker the client expects.
func (w *Writer) Match(m MatchState, sendPassword bool) *Writer {
	w.U16(m.ID).Bool(m.InProgress).U8(m.Type).U32(m.Mods).String(m.Name)
	switch {
	case m.Password == "":
		w.U8(stringEmpty)
	case sendPassword:
		w.String(m.Password)
	default:
		w.U8(stringPresent).U8(0)
	}
	w.String(m.BeatmapTitle).I32(m.BeatmapID).String(m.BeatmapMD5)
	for _, s := range m.Slots {
		w.U8(s.Status)
	}
	for _, s := range m.Slots {
		w.U8(s.Team)
	}
	for _, s := range m.Slots {
		if s.Status&SlotHasPlayer != 0 {
			w.I32(s.PlayerID)
		}
	}
	w.I32(m.HostID).U8(m.Mode).U8(m.ScoringType).U8(m.TeamType).Bool(m.Freemod)
	if m.Freemod {
		for _, s := range m.Slots {
			w.U32(s.Mods)
		}
	}
	return w.I32(m.Seed)
}

// ScoreFrame appends a score frame.
func (w *Writer) ScoreFrame(s ScoreFrame) *Writer {
	w.I32(s.Time).U8(s.ID).
		U16(s.Count300).U16(s.Count100).U16(s.Count50).
		U16(s.CountGeki).U16(s.CountKatu).U16(s.CountMiss).
		I32(s.TotalScore).U16(s.MaxCombo).U16(s.CurrentCombo).
		Bool(s.Perfect).U8(s.CurrentHP).U8(s.TagByte).Bool(s.ScoreV2)
	if s.ScoreV2 {
		w.F64(s.ComboPortion).F64(s.BonusPortion)
	}
	return w
}

// Presence appends a roster entry.
func (w *Writer) Presence(p Presence) *Writer {
	return w.I32(p.UserID).String(p.Name).U8(p.UTCOffset).U8(p.Country).
		U8(p.Privileges|p.Mode<<5).F32(p.Longitude).F32(p.Latitude).I32(p.Rank)
}

// Stats appends a status and statistics block.
func (w *Writer) Stats(s Stats) *Writer {
	return w.I32(s.UserID).U8(s.Action).String(s.InfoText).String(s.BeatmapMD5).
		U32(s.Mods).U8(s.Mode).I32(s.BeatmapID).I64(s.RankedScore).F32(s.Accuracy).
		I32(s.PlayCount).I64(s.TotalScore).I32(s.Rank).I16(s.PP)
}

// Frame wraps payload in a bancho header.
func Frame(op Opcode, payload []byte) []byte {
	out := make([]byte, HeaderSize, HeaderSize+len(payload))
	binary.LittleEndian.PutUint16(out[0:2], uint16(op))
	binary.LittleEndian.PutUint32(out[3:7], uint32(len(payload)))
	return append(out, payload...)
}

// Build frames the payload of w under op.
func (w *Writer) Build(op Opcode) []byte {
	return Frame(op, w.buf)
}
