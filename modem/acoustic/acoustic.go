// Package acoustic turns the piezo buzzer into a two-tone FSK transmitter.
// Framing, CRC, and repeat semantics mirror the optical modem; the physical
// symbol is a fixed-duration burst at f0 (bit 0) or f1 (bit 1), and the
// preamble is an alternating f1/f0 burst. Pattern mode drives non-data audio
// effects and is mutually exclusive with data transmission.
package acoustic

import (
	"github.com/MycosoftLabs/mycosoft-mas-sub017/drivers/buzzer"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/errcode"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/modem/frame"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/types"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/x/mathx"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/x/timex"
)

// Tone and timing bounds for a PWM piezo.
const (
	MinFreqHz   = 50
	MaxFreqHz   = 12000
	MinSymbolMs = 5
	MaxSymbolMs = 1000
)

// TxConfig describes one data transmission.
type TxConfig struct {
	Freq0      uint32 // tone for bit 0
	Freq1      uint32 // tone for bit 1
	SymbolMs   uint32
	Repeat     bool
	IncludeCRC bool
}

// fskMachine is the pure encoder: phase position derives from elapsed time.
type fskMachine struct {
	f        *frame.Frame
	symbolMs uint32
	repeat   bool
}

func (m *fskMachine) at(elapsedMs int64) (types.ModemState, int, bool) {
	sym := int(elapsedMs / int64(m.symbolMs))
	if sym >= m.f.NumSymbols() {
		if !m.repeat {
			return types.ModemIdle, 0, true
		}
		sym %= m.f.NumSymbols()
	}
	return m.stateOf(sym), sym, false
}

func (m *fskMachine) stateOf(sym int) types.ModemState {
	if sym < frame.PreambleBits {
		return types.ModemPreamble
	}
	if m.f.HasCRC() && sym >= m.f.NumSymbols()-16 {
		return types.ModemTrailer
	}
	return types.ModemData
}

// Modem owns the buzzer while transmitting or running a pattern.
type Modem struct {
	buz *buzzer.Device

	tx      *fskMachine
	txCfg   TxConfig
	startMs int64

	pat        PatternConfig
	patActive  bool
	patStartMs int64
}

func New(buz *buzzer.Device) *Modem { return &Modem{buz: buz} }

// Validate checks cfg and payload without touching the modem, so a rejected
// command cannot disturb a running transmission or pattern.
func (cfg TxConfig) Validate(payload []byte) error {
	if !mathx.Between(cfg.Freq0, MinFreqHz, MaxFreqHz) ||
		!mathx.Between(cfg.Freq1, MinFreqHz, MaxFreqHz) ||
		cfg.Freq0 == cfg.Freq1 {
		return errcode.InvalidParams
	}
	if !mathx.Between(cfg.SymbolMs, MinSymbolMs, MaxSymbolMs) {
		return errcode.InvalidParams
	}
	return frame.Check(payload)
}

// Start validates, stops any prior activity, and begins from the preamble.
func (m *Modem) Start(payload []byte, cfg TxConfig, nowMs int64) error {
	if err := cfg.Validate(payload); err != nil {
		return err
	}
	f, err := frame.New(payload, cfg.IncludeCRC)
	if err != nil {
		return err
	}
	m.Stop()
	m.txCfg = cfg
	m.tx = &fskMachine{f: f, symbolMs: cfg.SymbolMs, repeat: cfg.Repeat}
	m.startMs = nowMs
	return nil
}

// StartPattern switches into cosmetic audio mode, stopping data TX first.
func (m *Modem) StartPattern(cfg PatternConfig, nowMs int64) error {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.Stop()
	m.pat = cfg
	m.patActive = true
	m.patStartMs = nowMs
	return nil
}

// Stop resets both data and pattern mode and silences the buzzer. Idempotent.
func (m *Modem) Stop() {
	if m.tx == nil && !m.patActive {
		return
	}
	m.tx = nil
	m.patActive = false
	m.buz.Stop()
}

func (m *Modem) Busy() bool         { return m.tx != nil || m.patActive }
func (m *Modem) Transmitting() bool { return m.tx != nil }

// Update advances the modem. Non-blocking; bounded work per call.
func (m *Modem) Update(nowMs int64) {
	if m.tx != nil {
		_, sym, done := m.tx.at(timex.SinceMs(nowMs, m.startMs))
		if done {
			m.Stop()
			return
		}
		if m.tx.f.SymbolBit(sym) == 1 {
			m.buz.Tone(m.txCfg.Freq1, 0, nowMs)
		} else {
			m.buz.Tone(m.txCfg.Freq0, 0, nowMs)
		}
		return
	}
	if m.patActive {
		m.applyPattern(timex.SinceMs(nowMs, m.patStartMs), nowMs)
	}
}

func (m *Modem) Status(nowMs int64) types.ModemStatus {
	switch {
	case m.tx != nil:
		elapsed := timex.SinceMs(nowMs, m.startMs)
		st, sym, _ := m.tx.at(elapsed)
		return types.ModemStatus{
			State:    st,
			Encoding: "fsk",
			PayloadB: m.tx.f.PayloadLen(),
			Repeat:   m.txCfg.Repeat,
			CRC:      m.txCfg.IncludeCRC,
			BitsSent: sym,
			SymbolMs: m.txCfg.SymbolMs,
			Freq0:    m.txCfg.Freq0,
			Freq1:    m.txCfg.Freq1,
		}
	case m.patActive:
		return types.ModemStatus{State: types.ModemPattern, Pattern: m.pat.Kind.String()}
	default:
		return types.ModemStatus{State: types.ModemIdle}
	}
}
