// Package optical turns the RGB LED into a LiFi-style transmitter. A byte
// buffer is framed (preamble, payload, optional CRC-16 trailer) and emitted
// as On-Off-Keyed or Manchester-coded light pulses; a separate pattern mode
// drives non-data visual effects. Data and pattern mode are mutually
// exclusive on the one emitter.
package optical

import (
	"github.com/MycosoftLabs/mycosoft-mas-sub017/drivers/rgbled"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/errcode"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/modem/frame"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/types"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/x/mathx"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/x/timex"
)

// Encoding selects the line code.
type Encoding uint8

const (
	OOK Encoding = iota
	Manchester
)

func (e Encoding) String() string {
	if e == Manchester {
		return "manchester"
	}
	return "ook"
}

// Rate bounds. With millisecond phase resolution anything faster than
// 500 bit/s (2 ms symbols, 1 ms Manchester half-periods) cannot be honoured.
const (
	MinRateHz = 1
	MaxRateHz = 500
)

// TxConfig describes one data transmission. RateHz is the logical bit rate
// for both encodings; Manchester halves the physical phase internally.
type TxConfig struct {
	Encoding   Encoding
	RateHz     uint32
	R, G, B    uint8 // mark colour; zero value defaults to white
	Repeat     bool
	IncludeCRC bool
}

// Modem owns the LED while transmitting or running a pattern.
type Modem struct {
	led *rgbled.Device

	tx      *txMachine
	txCfg   TxConfig
	startMs int64

	pat        PatternConfig
	patActive  bool
	patStartMs int64
}

func New(led *rgbled.Device) *Modem { return &Modem{led: led} }

// Validate checks cfg and payload without touching the modem. A rejected
// command must leave whatever is currently running untouched, so callers
// that preempt other users of the LED call this before claiming it.
func (cfg TxConfig) Validate(payload []byte) error {
	if !mathx.Between(cfg.RateHz, MinRateHz, MaxRateHz) {
		return errcode.InvalidParams
	}
	if cfg.Encoding != OOK && cfg.Encoding != Manchester {
		return errcode.BadEncoding
	}
	return frame.Check(payload)
}

// Start validates the config, stops whatever the modem was doing, and begins
// framing from the preamble. The payload is copied; the caller's buffer is
// not retained.
func (m *Modem) Start(payload []byte, cfg TxConfig, nowMs int64) error {
	if err := cfg.Validate(payload); err != nil {
		return err
	}
	f, err := frame.New(payload, cfg.IncludeCRC)
	if err != nil {
		return err
	}
	m.Stop()
	if cfg.R == 0 && cfg.G == 0 && cfg.B == 0 {
		cfg.R, cfg.G, cfg.B = 255, 255, 255
	}
	m.txCfg = cfg
	m.tx = newTxMachine(f, cfg.Encoding, timex.SymbolMsFromHz(cfg.RateHz), cfg.Repeat)
	m.startMs = nowMs
	return nil
}

// StartPattern switches the modem into cosmetic pattern mode, stopping any
// data transmission first.
func (m *Modem) StartPattern(cfg PatternConfig, nowMs int64) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.Stop()
	if cfg.PeriodMs == 0 {
		cfg.PeriodMs = 1000
	}
	if cfg.R == 0 && cfg.G == 0 && cfg.B == 0 {
		cfg.R, cfg.G, cfg.B = 255, 255, 255
	}
	m.pat = cfg
	m.patActive = true
	m.patStartMs = nowMs
	return nil
}

// Stop resets both data and pattern mode, releases the transmit buffer, and
// leaves the LED off. Idempotent.
func (m *Modem) Stop() {
	if m.tx == nil && !m.patActive {
		return
	}
	m.tx = nil
	m.patActive = false
	m.led.Off()
}

// Busy reports whether the modem owns the LED (data or pattern).
func (m *Modem) Busy() bool { return m.tx != nil || m.patActive }

// Transmitting reports an active framed-data transmission.
func (m *Modem) Transmitting() bool { return m.tx != nil }

// Update advances the modem. Non-blocking; bounded work per call.
func (m *Modem) Update(nowMs int64) {
	if m.tx != nil {
		_, out, done := m.tx.at(timex.SinceMs(nowMs, m.startMs))
		if done {
			m.Stop()
			return
		}
		if out.On {
			m.led.Set(m.txCfg.R, m.txCfg.G, m.txCfg.B)
		} else {
			m.led.Off()
		}
		return
	}
	if m.patActive {
		m.applyPattern(timex.SinceMs(nowMs, m.patStartMs))
	}
}

func (m *Modem) Status(nowMs int64) types.ModemStatus {
	switch {
	case m.tx != nil:
		elapsed := timex.SinceMs(nowMs, m.startMs)
		st, _, _ := m.tx.at(elapsed)
		return types.ModemStatus{
			State:    st,
			Encoding: m.txCfg.Encoding.String(),
			PayloadB: m.tx.f.PayloadLen(),
			Repeat:   m.txCfg.Repeat,
			CRC:      m.txCfg.IncludeCRC,
			BitsSent: m.tx.symbolsDone(elapsed),
			RateHz:   m.txCfg.RateHz,
		}
	case m.patActive:
		return types.ModemStatus{State: types.ModemPattern, Pattern: m.pat.Kind.String()}
	default:
		return types.ModemStatus{State: types.ModemIdle}
	}
}
