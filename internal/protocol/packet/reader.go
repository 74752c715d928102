package packet

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrShortPayload is returned when a payload ends before a field is complete.
var ErrShortPayload = errors.New("payload truncated")

// ErrBadString is returned when a string field carries an unknown marker byte
// or a malformed length.
var ErrBadString = errors.New("malformed string")

const (
	stringEmpty   byte = 0x00
	stringPresent byte = 0x0b
)

// Reader decodes primitive fields from one packet payload.
//
// Errors are sticky: after the first failure every read returns the zero
// value and Err reports the failure.
type Reader struct {
	buf []byte
	off int
	err error
}

// NewReader returns a Reader over payload.
func NewReader(payload []byte) *Reader {
	return &Reader{buf: payload}
}

// Err returns the first error encountered while reading.
func (r *Reader) Err() error { return r.err }

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.buf) - r.off }

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.buf) {
		r.err = ErrShortPayload
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

// U8 reads an unsigned byte.
func (r *Reader) U8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// I8 reads a signed byte.
func (r *Reader) I8() int8 { return int8(r.U8()) }

// Bool reads a one byte boolean.
func (r *Reader) Bool() bool { return r.U8() != 0 }

// U16 reads a little-endian uint16.
func (r *Reader) U16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// I16 reads a little-endian int16.
func (r *Reader) I16() int16 { return int16(r.U16()) }

// U32 reads a little-endian uint32.
func (r *Reader) U32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// I32 reads a little-endian int32.
func (r *Reader) I32() int32 { return int32(r.U32()) }

// U64 reads a little-endian uint64.
func (r *Reader) U64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// I64 reads a little-endian int64.
func (r *Reader) I64() int64 { return int64(r.U64()) }

// F32 reads a little-endian IEEE-754 float32.
func (r *Reader) F32() float32 { return math.Float32frombits(r.U32()) }

// F64 reads a little-endian IEEE-754 float64.
func (r *Reader) F64() float64 { return math.Float64frombits(r.U64()) }

func (r *Reader) uleb128() int {
	var (
		result uint64
		shift  uint
	)
	for {
		b := r.take(1)
		if b == nil {
			return 0
		}
		result |= uint64(b[0]&0x7f) << shift
		if b[0]&0x80 == 0 {
			break
		}
		shift += 7
		if shift > 63 {
			r.err = ErrBadString
			return 0
		}
	}
	if result > uint64(math.MaxInt32) {
		r.err = ErrBadString
		return 0
	}
	return int(result)
}

// String reads an osu! string: 0x00 for empty, or 0x0b followed by a ULEB128
// byte count and the UTF-8 bytes.
func (r *Reader) String() string {
	switch marker := r.U8(); {
	case r.err != nil:
		return ""
	case marker == stringEmpty:
		return ""
	case marker != stringPresent:
		r.err = ErrBadString
		return ""
	}
	n := r.uleb128()
	b := r.take(n)
	if b == nil {
		return ""
	}
	return string(b)
}

// I32List reads a u16 count followed by that many int32 values.
func (r *Reader) I32List() []int32 {
	n := int(r.U16())
	if r.err != nil {
		return nil
	}
	if n*4 > r.Len() {
		r.err = ErrShortPayload
		return nil
	}
	out := make([]int32, n)
	for i := range out {
		out[i] = r.I32()
	}
	return out
}

// Raw returns every unread byte.
func (r *Reader) Raw() []byte {
	b := r.take(r.Len())
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Message reads a chat message structure.
func (r *Reader) Message() Message {
	return Message{
		Sender:   r.String(),
		Text:     r.String(),
		Target:   r.String(),
		SenderID: r.I32(),
	}
}

// Match reads a full match structure.
func (r *Reader) Match() MatchState {
	var m MatchState
	m.ID = r.U16()
	m.InProgress = r.Bool()
	m.Type = r.U8()
	m.Mods = r.U32()
	m.Name = r.String()
	m.Password = r.String()
	m.BeatmapTitle = r.String()
	m.BeatmapID = r.I32()
	m.BeatmapMD5 = r.String()
	for i := range m.Slots {
		m.Slots[i].Status = r.U8()
	}
	for i := range m.Slots {
		m.Slots[i].Team = r.U8()
	}
	for i := range m.Slots {
		if m.Slots[i].Status&SlotHasPlayer != 0 {
			m.Slots[i].PlayerID = r.I32()
		}
	}
	m.HostID = r.I32()
	m.Mode = r.U8()
	m.ScoringType = r.U8()
	m.TeamType = r.U8()
	m.Freemod = r.Bool()
	if m.Freemod {
		for i := range m.Slots {
			m.Slots[i].Mods = r.U32()
		}
	}
	m.Seed = r.I32()
	return m
}

// ScoreFrame reads a live score frame.
func (r *Reader) ScoreFrame() ScoreFrame {
	var s ScoreFrame
	s.Time = r.I32()
	s.ID = r.U8()
	s.Count300 = r.U16()
	s.Count100 = r.U16()
	s.Count50 = r.U16()
	s.CountGeki = r.U16()
	s.CountKatu = r.U16()
	s.CountMiss = r.U16()
	s.TotalScore = r.I32()
	s.MaxCombo = r.U16()
	s.CurrentCombo = r.U16()
	s.Perfect = r.Bool()
	s.CurrentHP = r.U8()
	s.TagByte = r.U8()
	s.ScoreV2 = r.Bool()
	if s.ScoreV2 {
		s.ComboPortion = r.F64()
		s.BonusPortion = r.F64()
	}
	return s
}
