// Package stim runs timed, repeatable light/sound waveforms for stimulus
// experiments. It is not a data channel: the command layer guarantees a
// stimulus never runs while the modem that shares its emitter is
// transmitting, so an external observer can never confuse the two.
//
// Phase is recomputed every tick from elapsed time modulo the cycle
// duration, never by counting ticks, so waveform accuracy is independent of
// loop jitter.
package stim

import (
	"github.com/MycosoftLabs/mycosoft-mas-sub017/drivers/buzzer"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/drivers/rgbled"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/errcode"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/types"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/x/ringlog"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/x/timex"
)

// LogCapacity bounds the phase-transition ring log.
const LogCapacity = 64

// Phase of a stimulus channel at a point in time.
type Phase uint8

const (
	PhaseDelay Phase = iota
	PhaseOn
	PhaseOff
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseOn:
		return "on"
	case PhaseOff:
		return "off"
	case PhaseDone:
		return "done"
	default:
		return "delay"
	}
}

// ChannelConfig is the waveform shared by both channels.
type ChannelConfig struct {
	OnMs    uint32
	OffMs   uint32
	RampMs  uint32 // linear fade over the first/last RampMs of the on-phase
	Cycles  uint32 // 0 = infinite
	DelayMs uint32 // initial delay before the first cycle
}

// Validate checks the waveform without touching the engine. Callers that
// preempt other users of an emitter check first, so a rejected stimulus
// leaves whatever was running in place.
func (c ChannelConfig) Validate() error {
	if c.OnMs == 0 {
		return errcode.InvalidParams
	}
	if c.RampMs > c.OnMs/2 {
		return errcode.InvalidParams
	}
	return nil
}

type LightConfig struct {
	ChannelConfig
	R, G, B uint8
}

type SoundConfig struct {
	ChannelConfig
	FreqHz uint32
}

// Validate additionally rejects a zero tone frequency.
func (c SoundConfig) Validate() error {
	if err := c.ChannelConfig.Validate(); err != nil {
		return err
	}
	if c.FreqHz == 0 {
		return errcode.InvalidParams
	}
	return nil
}

// phaseAt is the pure waveform function: elapsed -> (phase, level, cycle).
// level is a Q16 intensity honouring the ramp; cycle counts from 0.
func phaseAt(c ChannelConfig, elapsedMs int64) (Phase, uint16, uint32) {
	if elapsedMs < int64(c.DelayMs) {
		return PhaseDelay, 0, 0
	}
	t := elapsedMs - int64(c.DelayMs)
	cycleMs := int64(c.OnMs) + int64(c.OffMs)
	cyc := uint32(t / cycleMs)
	if c.Cycles > 0 && cyc >= c.Cycles {
		return PhaseDone, 0, c.Cycles
	}
	pos := uint32(t % cycleMs)
	if pos >= c.OnMs {
		return PhaseOff, 0, cyc
	}
	level := uint16(65535)
	if c.RampMs > 0 {
		switch {
		case pos < c.RampMs:
			level = q16(pos, c.RampMs)
		case pos >= c.OnMs-c.RampMs:
			level = 65535 - q16(pos-(c.OnMs-c.RampMs), c.RampMs)
		}
	}
	return PhaseOn, level, cyc
}

func q16(num, den uint32) uint16 {
	return uint16((uint64(num) * 65535) / uint64(den))
}

// run is one active channel.
type run struct {
	cfg       ChannelConfig
	startMs   int64
	lastPhase Phase
	lastCycle uint32
}

// Engine owns at most one light and one sound stimulus at a time.
type Engine struct {
	led *rgbled.Device
	buz *buzzer.Device

	light    *run
	lightCfg LightConfig
	sound    *run
	soundCfg SoundConfig

	log     *ringlog.Ring[types.StimLogEntry]
	logging bool
}

func New(led *rgbled.Device, buz *buzzer.Device) *Engine {
	return &Engine{led: led, buz: buz, log: ringlog.New[types.StimLogEntry](LogCapacity)}
}

// StartLight begins (or restarts) the light stimulus.
func (e *Engine) StartLight(cfg LightConfig, nowMs int64) error {
	if err := cfg.ChannelConfig.Validate(); err != nil {
		return err
	}
	if cfg.R == 0 && cfg.G == 0 && cfg.B == 0 {
		cfg.R, cfg.G, cfg.B = 255, 255, 255
	}
	e.StopLight()
	e.lightCfg = cfg
	e.light = &run{cfg: cfg.ChannelConfig, startMs: nowMs, lastPhase: PhaseDelay}
	return nil
}

// StartSound begins (or restarts) the sound stimulus.
func (e *Engine) StartSound(cfg SoundConfig, nowMs int64) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.StopSound()
	e.soundCfg = cfg
	e.sound = &run{cfg: cfg.ChannelConfig, startMs: nowMs, lastPhase: PhaseDelay}
	return nil
}

// StartCombined synchronizes both channels on the same start instant.
func (e *Engine) StartCombined(l LightConfig, s SoundConfig, nowMs int64) error {
	if err := e.StartLight(l, nowMs); err != nil {
		return err
	}
	if err := e.StartSound(s, nowMs); err != nil {
		e.StopLight()
		return err
	}
	return nil
}

// StopLight halts the light channel and turns the LED off. Idempotent.
func (e *Engine) StopLight() {
	if e.light != nil {
		e.light = nil
		e.led.Off()
	}
}

// StopSound halts the sound channel and silences the buzzer. Idempotent.
func (e *Engine) StopSound() {
	if e.sound != nil {
		e.sound = nil
		e.buz.Stop()
	}
}

// StopAll always succeeds; safe when nothing is running.
func (e *Engine) StopAll() {
	e.StopLight()
	e.StopSound()
}

func (e *Engine) LightActive() bool { return e.light != nil }
func (e *Engine) SoundActive() bool { return e.sound != nil }

// Update advances both channels. Non-blocking; bounded work per call.
func (e *Engine) Update(nowMs int64) {
	if e.light != nil {
		ph, level, cyc := phaseAt(e.light.cfg, timex.SinceMs(nowMs, e.light.startMs))
		e.transition(e.light, "light", ph, cyc, nowMs)
		switch ph {
		case PhaseOn:
			e.led.SetScaled(e.lightCfg.R, e.lightCfg.G, e.lightCfg.B, level)
		case PhaseOff, PhaseDelay:
			e.led.Off()
		case PhaseDone:
			e.StopLight()
		}
	}
	if e.sound != nil {
		ph, _, cyc := phaseAt(e.sound.cfg, timex.SinceMs(nowMs, e.sound.startMs))
		e.transition(e.sound, "sound", ph, cyc, nowMs)
		switch ph {
		case PhaseOn:
			e.buz.Tone(e.soundCfg.FreqHz, 0, nowMs)
		case PhaseOff, PhaseDelay:
			e.buz.Stop()
		case PhaseDone:
			e.StopSound()
		}
	}
}

// transition records phase changes in the ring log when logging is on.
func (e *Engine) transition(r *run, ch string, ph Phase, cyc uint32, nowMs int64) {
	if ph != r.lastPhase {
		e.append(nowMs, ch+"_"+ph.String())
	}
	if cyc > r.lastCycle {
		e.append(nowMs, ch+"_cycle")
	}
	r.lastPhase = ph
	r.lastCycle = cyc
}

func (e *Engine) append(nowMs int64, tag string) {
	if e.logging {
		e.log.Append(types.StimLogEntry{TSms: nowMs, Tag: tag})
	}
}

// SetLogging toggles phase-transition logging.
func (e *Engine) SetLogging(on bool) { e.logging = on }

// Log snapshots the ring as one structured document.
func (e *Engine) Log() types.StimLog {
	return types.StimLog{Type: "log", Dropped: e.log.Dropped(), Items: e.log.Snapshot()}
}

func (e *Engine) ClearLog() { e.log.Clear() }

func (e *Engine) Status(nowMs int64) types.StimStatus {
	st := types.StimStatus{Logging: e.logging, LogLen: e.log.Len()}
	if e.light != nil {
		ph, _, cyc := phaseAt(e.light.cfg, timex.SinceMs(nowMs, e.light.startMs))
		st.Light = types.StimChannelStatus{
			Active: true,
			Phase:  ph.String(),
			Cycle:  cyc,
			Cycles: e.light.cfg.Cycles,
			OnMs:   e.light.cfg.OnMs,
			OffMs:  e.light.cfg.OffMs,
			RampMs: e.light.cfg.RampMs,
		}
	}
	if e.sound != nil {
		ph, _, cyc := phaseAt(e.sound.cfg, timex.SinceMs(nowMs, e.sound.startMs))
		st.Sound = types.StimChannelStatus{
			Active: true,
			Phase:  ph.String(),
			Cycle:  cyc,
			Cycles: e.sound.cfg.Cycles,
			OnMs:   e.sound.cfg.OnMs,
			OffMs:  e.sound.cfg.OffMs,
			RampMs: e.sound.cfg.RampMs,
			FreqHz: e.soundCfg.FreqHz,
		}
	}
	return st
}
