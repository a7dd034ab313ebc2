package optical

import (
	"github.com/MycosoftLabs/mycosoft-mas-sub017/errcode"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/x/mathx"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/x/ramp"
)

// PatternKind selects a non-data visual effect.
type PatternKind uint8

const (
	PatternPulse  PatternKind = iota // triangular fade of the configured colour
	PatternSweep                     // continuous hue sweep
	PatternBeacon                    // short full-brightness flash per period
	PatternStrobe                    // 50% duty on/off
)

func (k PatternKind) String() string {
	switch k {
	case PatternSweep:
		return "sweep"
	case PatternBeacon:
		return "beacon"
	case PatternStrobe:
		return "strobe"
	default:
		return "pulse"
	}
}

// ParsePatternKind maps a command token to a kind.
func ParsePatternKind(s string) (PatternKind, bool) {
	switch s {
	case "pulse":
		return PatternPulse, true
	case "sweep":
		return PatternSweep, true
	case "beacon":
		return PatternBeacon, true
	case "strobe":
		return PatternStrobe, true
	}
	return 0, false
}

// PatternConfig describes a visual effect. Mutually exclusive with TxConfig.
type PatternConfig struct {
	Kind     PatternKind
	PeriodMs uint32
	R, G, B  uint8
}

// Validate checks cfg without touching the modem.
func (cfg PatternConfig) Validate() error {
	if cfg.Kind > PatternStrobe {
		return errcode.InvalidParams
	}
	return nil
}

// applyPattern computes the pattern output for the given elapsed time and
// writes it to the LED. Everything derives from elapsed mod period.
func (m *Modem) applyPattern(elapsedMs int64) {
	p := m.pat
	pos := uint32(elapsedMs % int64(p.PeriodMs))
	switch p.Kind {
	case PatternPulse:
		m.led.SetScaled(p.R, p.G, p.B, ramp.Triangle(pos, p.PeriodMs))
	case PatternSweep:
		r, g, b := hueRGB(ramp.Progress(pos, p.PeriodMs))
		m.led.Set(r, g, b)
	case PatternBeacon:
		flash := mathx.Max(p.PeriodMs/10, 20)
		if pos < flash {
			m.led.Set(p.R, p.G, p.B)
		} else {
			m.led.Off()
		}
	case PatternStrobe:
		if pos < p.PeriodMs/2 {
			m.led.Set(p.R, p.G, p.B)
		} else {
			m.led.Off()
		}
	}
}

// hueRGB maps a Q16 position on the colour wheel to full-saturation RGB.
func hueRGB(q16 uint16) (uint8, uint8, uint8) {
	h := uint32(q16) * 6 // sector 0..5 in the high bits
	sector := h >> 16
	frac := uint8((h & 0xFFFF) >> 8)
	switch sector {
	case 0:
		return 255, frac, 0
	case 1:
		return 255 - frac, 255, 0
	case 2:
		return 0, 255, frac
	case 3:
		return 0, 255 - frac, 255
	case 4:
		return frac, 0, 255
	default:
		return 255, 0, 255 - frac
	}
}
