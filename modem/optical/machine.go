package optical

import (
	"github.com/MycosoftLabs/mycosoft-mas-sub017/modem/frame"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/types"
)

// txMachine is the pure transmit encoder. It holds no clock: callers pass
// elapsed-ms-since-start and the machine derives phase position from it, so
// output timing is immune to loop jitter and the whole thing is testable
// with synthetic elapsed values.
type txMachine struct {
	f       *frame.Frame
	enc     Encoding
	phaseMs uint32 // physical phase width
	phases  int    // physical phases per frame pass
	repeat  bool
}

// txOut is the demanded emitter state for one phase.
type txOut struct {
	On bool
}

func newTxMachine(f *frame.Frame, enc Encoding, symbolMs uint32, repeat bool) *txMachine {
	m := &txMachine{f: f, enc: enc, repeat: repeat}
	switch enc {
	case Manchester:
		// Two physical half-periods per logical bit.
		m.phaseMs = symbolMs / 2
		if m.phaseMs == 0 {
			m.phaseMs = 1
		}
		m.phases = 2 * f.NumSymbols()
	default: // OOK
		m.phaseMs = symbolMs
		m.phases = f.NumSymbols()
	}
	return m
}

// at maps elapsed time onto (state, output, done). When repeating, the frame
// restarts from the preamble seamlessly (modulo arithmetic keeps phase lock).
func (m *txMachine) at(elapsedMs int64) (types.ModemState, txOut, bool) {
	idx := int(elapsedMs / int64(m.phaseMs))
	if idx >= m.phases {
		if !m.repeat {
			return types.ModemIdle, txOut{}, true
		}
		idx %= m.phases
	}

	var sym int
	var on bool
	if m.enc == Manchester {
		sym = idx / 2
		half := idx & 1
		bit := m.f.SymbolBit(sym)
		// bit=1 -> (off,on); bit=0 -> (on,off): a transition every bit.
		if bit == 1 {
			on = half == 1
		} else {
			on = half == 0
		}
	} else {
		sym = idx
		on = m.f.SymbolBit(sym) == 1
	}

	return m.stateOf(sym), txOut{On: on}, false
}

// stateOf classifies a symbol position: preamble, CRC trailer, or data.
func (m *txMachine) stateOf(sym int) types.ModemState {
	if sym < frame.PreambleBits {
		return types.ModemPreamble
	}
	if m.f.HasCRC() && sym >= m.f.NumSymbols()-16 {
		return types.ModemTrailer
	}
	return types.ModemData
}

// symbolsDone reports how many logical symbols of the current pass have
// completed at elapsed (for status reporting).
func (m *txMachine) symbolsDone(elapsedMs int64) int {
	idx := int(elapsedMs / int64(m.phaseMs))
	if m.enc == Manchester {
		idx /= 2
	}
	if idx > m.f.NumSymbols() {
		idx = m.f.NumSymbols()
	}
	return idx
}
