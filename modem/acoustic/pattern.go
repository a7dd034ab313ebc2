package acoustic

import (
	"github.com/MycosoftLabs/mycosoft-mas-sub017/errcode"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/x/ramp"
)

// PatternKind selects a non-data audio effect.
type PatternKind uint8

const (
	PatternSweep      PatternKind = iota // linear ramp lo->hi per period
	PatternChirp                         // exponential (log-spaced) ramp lo->hi
	PatternPulseTrain                    // tone on/off at fixed tempo
	PatternSiren                         // alternate lo/hi each half period
)

func (k PatternKind) String() string {
	switch k {
	case PatternChirp:
		return "chirp"
	case PatternPulseTrain:
		return "pulsetrain"
	case PatternSiren:
		return "siren"
	default:
		return "sweep"
	}
}

// ParsePatternKind maps a command token to a kind.
func ParsePatternKind(s string) (PatternKind, bool) {
	switch s {
	case "sweep":
		return PatternSweep, true
	case "chirp":
		return PatternChirp, true
	case "pulsetrain", "pulse":
		return PatternPulseTrain, true
	case "siren":
		return PatternSiren, true
	}
	return 0, false
}

// PatternConfig describes an audio effect. Mutually exclusive with TxConfig.
type PatternConfig struct {
	Kind     PatternKind
	FreqLo   uint32
	FreqHi   uint32
	PeriodMs uint32
}

// withDefaults fills the zero-valued fields with the stock siren range and
// a one second period.
func (cfg PatternConfig) withDefaults() PatternConfig {
	if cfg.FreqLo == 0 {
		cfg.FreqLo = 440
	}
	if cfg.FreqHi == 0 {
		cfg.FreqHi = 1760
	}
	if cfg.PeriodMs == 0 {
		cfg.PeriodMs = 1000
	}
	return cfg
}

// Validate checks cfg after defaults, without touching the modem.
func (cfg PatternConfig) Validate() error {
	cfg = cfg.withDefaults()
	if cfg.Kind > PatternSiren {
		return errcode.InvalidParams
	}
	if cfg.FreqLo < MinFreqHz || cfg.FreqHi > MaxFreqHz || cfg.FreqLo > cfg.FreqHi {
		return errcode.InvalidParams
	}
	return nil
}

// applyPattern computes the effect output for elapsed time and writes it to
// the buzzer. Everything derives from elapsed mod period.
func (m *Modem) applyPattern(elapsedMs, nowMs int64) {
	p := m.pat
	pos := uint32(elapsedMs % int64(p.PeriodMs))
	switch p.Kind {
	case PatternSweep:
		m.buz.Tone(ramp.Linear(p.FreqLo, p.FreqHi, ramp.Progress(pos, p.PeriodMs)), 0, nowMs)
	case PatternChirp:
		m.buz.Tone(ramp.Expo(p.FreqLo, p.FreqHi, ramp.Progress(pos, p.PeriodMs)), 0, nowMs)
	case PatternPulseTrain:
		if pos < p.PeriodMs/2 {
			m.buz.Tone(p.FreqHi, 0, nowMs)
		} else {
			m.buz.Stop()
		}
	case PatternSiren:
		if pos < p.PeriodMs/2 {
			m.buz.Tone(p.FreqLo, 0, nowMs)
		} else {
			m.buz.Tone(p.FreqHi, 0, nowMs)
		}
	}
}
