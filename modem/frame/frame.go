// Package frame builds the bit-level frame shared by the optical and
// acoustic modems: a fixed alternating preamble, payload bytes MSB-first,
// and an optional CRC-16 trailer in big-endian byte order.
//
// A Frame is immutable after New; the modem state machines index into it by
// symbol position so re-entering the encoder every tick costs nothing.
package frame

import (
	"github.com/MycosoftLabs/mycosoft-mas-sub017/errcode"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/x/crc16"
)

const (
	// MaxPayload bounds the transmit buffer (bytes, before the CRC trailer).
	MaxPayload = 256

	// PreambleBits is the fixed symbol count of the alternating preamble,
	// first symbol = 1. Receivers use it for symbol-clock recovery.
	PreambleBits = 8
)

// Frame owns a bounded copy of the payload plus the optional CRC trailer.
type Frame struct {
	buf     []byte // payload (+2 CRC bytes when hasCRC)
	payload int
	hasCRC  bool
}

// Check validates payload bounds without building a frame, so callers can
// reject a transmission before disturbing any running one.
func Check(payload []byte) error {
	if len(payload) == 0 {
		return errcode.EmptyPayload
	}
	if len(payload) > MaxPayload {
		return errcode.PayloadTooLarge
	}
	return nil
}

// New validates bounds, copies the payload, and appends the CRC trailer when
// includeCRC is set. The caller's slice is not retained.
func New(payload []byte, includeCRC bool) (*Frame, error) {
	if err := Check(payload); err != nil {
		return nil, err
	}
	n := len(payload)
	total := n
	if includeCRC {
		total += 2
	}
	buf := make([]byte, total)
	copy(buf, payload)
	if includeCRC {
		c := crc16.Checksum(payload)
		buf[n] = byte(c >> 8)
		buf[n+1] = byte(c)
	}
	return &Frame{buf: buf, payload: n, hasCRC: includeCRC}, nil
}

// PayloadLen is the payload size excluding the CRC trailer.
func (f *Frame) PayloadLen() int { return f.payload }

// HasCRC reports whether a trailer was appended.
func (f *Frame) HasCRC() bool { return f.hasCRC }

// NumBits is the data bit count (payload + trailer), excluding the preamble.
func (f *Frame) NumBits() int { return len(f.buf) * 8 }

// NumSymbols is the full logical symbol count including the preamble.
func (f *Frame) NumSymbols() int { return PreambleBits + f.NumBits() }

// Bit returns data bit i, MSB-first within each byte.
func (f *Frame) Bit(i int) uint8 {
	return (f.buf[i>>3] >> (7 - uint(i&7))) & 1
}

// SymbolBit returns the logical bit at overall symbol position s: the
// alternating preamble first, then the data bits.
func (f *Frame) SymbolBit(s int) uint8 {
	if s < PreambleBits {
		return uint8(1 - s&1)
	}
	return f.Bit(s - PreambleBits)
}

// Decode is the reference decoder used by the round-trip tests and by any
// host tooling: given the logical bit sequence of one whole frame (preamble
// included), it reassembles the payload and, when withCRC is set, validates
// and strips the trailer.
func Decode(bits []uint8, withCRC bool) ([]byte, error) {
	n := len(bits) - PreambleBits
	if n <= 0 || n%8 != 0 {
		return nil, errcode.ShortFrame
	}
	data := make([]byte, n/8)
	for i, b := range bits[PreambleBits:] {
		if b != 0 {
			data[i>>3] |= 1 << (7 - uint(i&7))
		}
	}
	if !withCRC {
		return data, nil
	}
	if len(data) < 3 {
		return nil, errcode.ShortFrame
	}
	payload := data[:len(data)-2]
	want := uint16(data[len(data)-2])<<8 | uint16(data[len(data)-1])
	if crc16.Checksum(payload) != want {
		return nil, errcode.CRCMismatch
	}
	return payload, nil
}
