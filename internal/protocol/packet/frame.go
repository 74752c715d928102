package packet

import (
	"encoding/binary"
	"errors"
	"fmt"
	"iter"
)

// ErrFraming is returned when a frame header is truncated or declares a
// payload longer than the bytes that remain. Decoding must not continue past
// a framing error.
var ErrFraming = errors.New("malformed packet frame")

// Packet is one decoded frame.
type Packet struct {
	Opcode  Opcode
	Payload []byte
}

// Reader returns a payload reader over p.
func (p Packet) Reader() *Reader {
	return NewReader(p.Payload)
}

// Stream lazily walks the frames of one request body.
type Stream struct {
	buf  []byte
	off  int
	done bool
}

// Decode returns a Stream over buf. The buffer is not copied.
func Decode(buf []byte) *Stream {
	return &Stream{buf: buf}
}

// Next returns the next frame. ok is false once the buffer is exhausted or
// after a framing error has been reported.
//
// Postcondition: once err is non-nil every further call returns ok == false.
func (s *Stream) Next() (pkt Packet, ok bool, err error) {
	if s.done {
		return Packet{}, false, nil
	}
	pkt, n, err := frameAt(s.buf[s.off:])
	if err != nil || n == 0 {
		s.done = true
		return Packet{}, false, err
	}
	s.off += n
	return pkt, true, nil
}

// All yields every frame in the buffer from the start, regardless of how far
// Next has advanced. A framing error is yielded once and ends the sequence.
func (s *Stream) All() iter.Seq2[Packet, error] {
	return func(yield func(Packet, error) bool) {
		rest := s.buf
		for len(rest) > 0 {
			pkt, n, err := frameAt(rest)
			if err != nil {
				yield(Packet{}, err)
				return
			}
			if !yield(pkt, nil) {
				return
			}
			rest = rest[n:]
		}
	}
}

func frameAt(b []byte) (Packet, int, error) {
	if len(b) == 0 {
		return Packet{}, 0, nil
	}
	if len(b) < HeaderSize {
		return Packet{}, 0, fmt.Errorf("%w: %d header bytes", ErrFraming, len(b))
	}
	op := Opcode(binary.LittleEndian.Uint16(b[0:2]))
	length := binary.LittleEndian.Uint32(b[3:7])
	if uint64(length) > uint64(len(b)-HeaderSize) {
		return Packet{}, 0, fmt.Errorf("%w: %s declares %d bytes, %d remain", ErrFraming, op, length, len(b)-HeaderSize)
	}
	end := HeaderSize + int(length)
	return Packet{Opcode: op, Payload: b[HeaderSize:end]}, end, nil
}
