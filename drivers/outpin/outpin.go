// Package outpin is a small bank of auxiliary digital outputs, addressed by
// channel number from the `out set` command.
package outpin

import (
	"github.com/MycosoftLabs/mycosoft-mas-sub017/errcode"
)

// Pin is one digital output.
type Pin interface {
	Set(level bool)
}

// Bank owns a fixed set of pins and mirrors their logical levels.
type Bank struct {
	pins   []Pin
	levels []bool
}

func NewBank(pins ...Pin) *Bank {
	return &Bank{pins: pins, levels: make([]bool, len(pins))}
}

func (b *Bank) Len() int { return len(b.pins) }

// Set drives channel ch. Unknown channels are a validation error.
func (b *Bank) Set(ch int, level bool) error {
	if ch < 0 || ch >= len(b.pins) {
		return errcode.UnknownChannel
	}
	b.pins[ch].Set(level)
	b.levels[ch] = level
	return nil
}

// Levels returns the logical level of each channel as 0/1.
func (b *Bank) Levels() []int {
	out := make([]int, len(b.levels))
	for i, v := range b.levels {
		if v {
			out[i] = 1
		}
	}
	return out
}

// MemoryPin records writes, for host builds and tests.
type MemoryPin struct {
	Level  bool
	Writes int
}

func (p *MemoryPin) Set(level bool) {
	p.Level = level
	p.Writes++
}
