//go:build rp2040 || rp2350

package boards

import (
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"github.com/MycosoftLabs/mycosoft-mas-sub017/drivers/outpin"
)

// Pin assignments for the rev A carrier.
const (
	pinLEDR = machine.GP6  // PWM3 A
	pinLEDG = machine.GP7  // PWM3 B
	pinLEDB = machine.GP8  // PWM4 A
	pinBuzz = machine.GP15 // PWM7 B
	pinOut0 = machine.GP2
	pinOut1 = machine.GP3

	consoleBaud = 115200
)

const rgbPeriodNs = 1_000_000 // 1 kHz carrier for the LED channels

// New assembles the RP2 board. The NDJSON console runs on UART0; the USB
// CDC port stays free for println debugging.
func New() *Board {
	led := newPWMRGB()
	buz := newPWMTone()

	for _, p := range []machine.Pin{pinOut0, pinOut1} {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.Low()
	}

	i2c := machine.I2C0
	_ = i2c.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	})

	u := uartx.UART0
	_ = u.Configure(uartx.UARTConfig{
		BaudRate: consoleBaud,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})

	return &Board{
		LED:     led,
		Buzzer:  buz,
		Pins:    []outpin.Pin{pinOut0, pinOut1},
		I2C:     i2c,
		Console: u,
		Input:   &uartSource{u: u},
	}
}

// uartSource drains whatever uartx has buffered. Never blocks.
type uartSource struct {
	u   *uartx.UART
	buf [64]byte
}

func (s *uartSource) Poll() []byte {
	if s.u.Buffered() == 0 {
		return nil
	}
	n, _ := s.u.Read(s.buf[:])
	if n <= 0 {
		return nil
	}
	return s.buf[:n]
}

// ---- PWM emitters ----

// pwmSlice is the part of machine's PWM groups the emitters need.
type pwmSlice interface {
	Configure(machine.PWMConfig) error
	Channel(machine.Pin) (uint8, error)
	Set(ch uint8, value uint32)
	Top() uint32
	SetPeriod(ns uint64) error
}

type pwmRGB struct {
	rg pwmSlice // GP6/GP7 share slice 3
	b  pwmSlice
	rc uint8
	gc uint8
	bc uint8
}

func newPWMRGB() *pwmRGB {
	d := &pwmRGB{rg: machine.PWM3, b: machine.PWM4}
	_ = d.rg.Configure(machine.PWMConfig{Period: rgbPeriodNs})
	_ = d.b.Configure(machine.PWMConfig{Period: rgbPeriodNs})
	d.rc, _ = d.rg.Channel(pinLEDR)
	d.gc, _ = d.rg.Channel(pinLEDG)
	d.bc, _ = d.b.Channel(pinLEDB)
	return d
}

func (d *pwmRGB) SetRGB(r, g, b uint8) {
	d.rg.Set(d.rc, duty(d.rg.Top(), r))
	d.rg.Set(d.gc, duty(d.rg.Top(), g))
	d.b.Set(d.bc, duty(d.b.Top(), b))
}

func (d *pwmRGB) Off() { d.SetRGB(0, 0, 0) }

func duty(top uint32, v uint8) uint32 {
	return uint32(uint64(top) * uint64(v) / 255)
}

type pwmTone struct {
	s  pwmSlice
	ch uint8
}

func newPWMTone() *pwmTone {
	t := &pwmTone{s: machine.PWM7}
	_ = t.s.Configure(machine.PWMConfig{Period: rgbPeriodNs})
	t.ch, _ = t.s.Channel(pinBuzz)
	t.s.Set(t.ch, 0)
	return t
}

func (t *pwmTone) SetTone(freqHz uint32) {
	if freqHz == 0 {
		t.Stop()
		return
	}
	_ = t.s.SetPeriod(1_000_000_000 / uint64(freqHz))
	t.s.Set(t.ch, t.s.Top()/2)
}

func (t *pwmTone) Stop() { t.s.Set(t.ch, 0) }
