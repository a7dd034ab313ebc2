// Package rgbled drives the single RGB light emitter. The driver keeps no
// state machine beyond the current output; all sequencing lives in the
// optical modem and the stimulus engine.
package rgbled

import (
	"github.com/MycosoftLabs/mycosoft-mas-sub017/types"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/x/mathx"
)

// Output is the hardware side: three channels, written together.
// Implementations live in the boards package (PWM or plain GPIO) and in
// Memory below for host builds and tests.
type Output interface {
	SetRGB(r, g, b uint8)
	Off()
}

// Device wraps an Output and tracks the current colour for telemetry.
type Device struct {
	out     Output
	r, g, b uint8
	on      bool
}

func New(out Output) *Device { return &Device{out: out} }

// Set applies a colour. An all-zero colour still counts as "on"; use Off to
// release the emitter.
func (d *Device) Set(r, g, b uint8) {
	d.r, d.g, d.b = r, g, b
	d.on = true
	d.out.SetRGB(r, g, b)
}

// SetScaled applies a colour dimmed by level (Q16), for ramps and fades.
func (d *Device) SetScaled(r, g, b uint8, q16 uint16) {
	s := uint8(q16 >> 8)
	d.Set(mathx.Scale8(r, s), mathx.Scale8(g, s), mathx.Scale8(b, s))
}

func (d *Device) Off() {
	d.r, d.g, d.b = 0, 0, 0
	d.on = false
	d.out.Off()
}

func (d *Device) State() types.LEDState {
	return types.LEDState{R: d.r, G: d.g, B: d.b, On: d.on}
}

// Memory is an Output that just records the last write. Host builds run on
// it, and the modem/stimulus tests assert against it.
type Memory struct {
	R, G, B uint8
	On      bool
	Writes  int
}

func (m *Memory) SetRGB(r, g, b uint8) {
	m.R, m.G, m.B = r, g, b
	m.On = true
	m.Writes++
}

func (m *Memory) Off() {
	m.R, m.G, m.B = 0, 0, 0
	m.On = false
	m.Writes++
}
