// Package buzzer drives the single tone emitter (a PWM piezo). Like rgbled,
// the driver holds only the current output plus an optional expiry for
// one-shot tones.
package buzzer

import (
	"github.com/MycosoftLabs/mycosoft-mas-sub017/types"
)

// Output is the hardware side: a square wave at a frequency, or silence.
type Output interface {
	SetTone(freqHz uint32)
	Stop()
}

// Device wraps an Output, tracks current state, and expires timed tones.
type Device struct {
	out     Output
	freq    uint32
	on      bool
	offAtMs int64 // 0 = no deadline
}

func New(out Output) *Device { return &Device{out: out} }

// Tone starts a tone. durMs==0 plays until Stop.
func (d *Device) Tone(freqHz, durMs uint32, nowMs int64) {
	if freqHz == 0 {
		d.Stop()
		return
	}
	d.freq = freqHz
	d.on = true
	if durMs > 0 {
		d.offAtMs = nowMs + int64(durMs)
	} else {
		d.offAtMs = 0
	}
	d.out.SetTone(freqHz)
}

func (d *Device) Stop() {
	d.freq = 0
	d.on = false
	d.offAtMs = 0
	d.out.Stop()
}

// Update expires a timed tone. Cheap no-op otherwise.
func (d *Device) Update(nowMs int64) {
	if d.on && d.offAtMs != 0 && nowMs >= d.offAtMs {
		d.Stop()
	}
}

func (d *Device) State() types.BuzzerState {
	return types.BuzzerState{FreqHz: d.freq, On: d.on}
}

// Memory records the last write, for host builds and tests.
type Memory struct {
	FreqHz uint32
	On     bool
	Writes int
}

func (m *Memory) SetTone(freqHz uint32) {
	m.FreqHz = freqHz
	m.On = true
	m.Writes++
}

func (m *Memory) Stop() {
	m.FreqHz = 0
	m.On = false
	m.Writes++
}
