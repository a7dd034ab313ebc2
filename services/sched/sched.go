// Package sched runs the cooperative main loop. Every component exposes a
// non-blocking Update(nowMs); the loop ticks them in a fixed order, drains
// pending console input into the dispatcher, and emits periodic telemetry.
// Nothing in the loop blocks, so a stuck peripheral cannot stall the
// transmit waveforms.
package sched

import (
	"time"

	"github.com/MycosoftLabs/mycosoft-mas-sub017/services/cli"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/x/timex"
)

// DefaultTelemetryMs is the telemetry cadence in machine mode.
const DefaultTelemetryMs = 1000

// Input is a non-blocking byte source. Poll returns whatever arrived since
// the previous call, or nil.
type Input interface {
	Poll() []byte
}

type Config struct {
	Firmware    string
	Version     string
	TelemetryMs uint32 // 0 disables telemetry
}

type Loop struct {
	d   *cli.Dispatcher
	in  Input
	cfg Config

	deps cli.Deps

	booted      bool
	bootStartMs int64
	bootStage   int
	lastTelemMs int64
}

func New(d *cli.Dispatcher, deps cli.Deps, in Input, cfg Config) *Loop {
	if cfg.TelemetryMs == 0 {
		cfg.TelemetryMs = DefaultTelemetryMs
	}
	return &Loop{d: d, in: in, cfg: cfg, deps: deps, bootStartMs: -1}
}

// Run ticks forever. The sleep keeps the idle duty cycle low; all timing
// is derived from the clock, not from the tick count, so jitter here does
// not skew waveforms.
func (l *Loop) Run() {
	for {
		l.Step(l.deps.Clock())
		time.Sleep(time.Millisecond)
	}
}

// Step is one scheduler pass at the given time. Split out from Run so tests
// can drive synthetic clocks.
func (l *Loop) Step(nowMs int64) {
	if !l.booted {
		// Bytes arriving mid self-test are line noise from the USB CDC
		// enumeration; drop them.
		if l.in != nil {
			l.in.Poll()
		}
		if l.stepBoot(nowMs) {
			l.booted = true
			l.lastTelemMs = nowMs
			l.d.EmitBoot(l.cfg.Firmware, l.cfg.Version)
		}
		return
	}

	if l.in != nil {
		if p := l.in.Poll(); len(p) > 0 {
			l.d.Feed(p)
		}
	}

	l.deps.Periph.Update(nowMs)
	l.deps.Stim.Update(nowMs)
	l.deps.Optical.Update(nowMs)
	l.deps.Acoustic.Update(nowMs)
	l.deps.Buzzer.Update(nowMs)

	if l.cfg.TelemetryMs > 0 && timex.SinceMs(nowMs, l.lastTelemMs) >= int64(l.cfg.TelemetryMs) {
		l.lastTelemMs = nowMs
		l.d.EmitTelemetry(nowMs)
	}
}

// Boot self-test: a short LED sweep and two beeps, advanced one stage per
// pass. Stages fire on elapsed-time thresholds so a slow pass skips ahead
// cleanly instead of stretching the sequence.
var bootStages = []struct {
	atMs int64
	act  func(l *Loop, nowMs int64)
}{
	{0, func(l *Loop, _ int64) { l.deps.LED.Set(64, 0, 0) }},
	{150, func(l *Loop, _ int64) { l.deps.LED.Set(0, 64, 0) }},
	{300, func(l *Loop, _ int64) { l.deps.LED.Set(0, 0, 64) }},
	{450, func(l *Loop, now int64) { l.deps.LED.Off(); l.deps.Buzzer.Tone(1200, 80, now) }},
	{600, func(l *Loop, now int64) { l.deps.Buzzer.Tone(1800, 80, now) }},
	{750, func(l *Loop, _ int64) { l.deps.Buzzer.Stop() }},
}

const bootDoneMs = 800

func (l *Loop) stepBoot(nowMs int64) bool {
	if l.bootStartMs < 0 {
		l.bootStartMs = nowMs
	}
	elapsed := timex.SinceMs(nowMs, l.bootStartMs)
	for l.bootStage < len(bootStages) && elapsed >= bootStages[l.bootStage].atMs {
		bootStages[l.bootStage].act(l, nowMs)
		l.bootStage++
	}
	if l.bootStage == len(bootStages) {
		l.deps.Buzzer.Update(nowMs)
	}
	return elapsed >= bootDoneMs
}
