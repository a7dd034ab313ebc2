package cli

import (
	"fmt"
	"strings"

	"github.com/MycosoftLabs/mycosoft-mas-sub017/errcode"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/modem/acoustic"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/modem/optical"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/services/periph"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/services/stim"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/types"
)

// note records a side effect (e.g. a preempted component) for the ack msg.
func (c *call) note(s string) {
	if c.msg == "" {
		c.msg = s
		return
	}
	c.msg += "; " + s
}

// claimLED stops whatever currently owns the light emitter. Modem
// transmission, pattern mode, and the stimulus light channel are mutually
// exclusive users of the single LED.
func (c *call) claimLED() {
	if c.d.deps.Optical.Busy() {
		c.d.deps.Optical.Stop()
		c.note("optical stopped")
	}
	if c.d.deps.Stim.LightActive() {
		c.d.deps.Stim.StopLight()
		c.note("stim light stopped")
	}
}

// claimBuzzer is claimLED for the tone emitter.
func (c *call) claimBuzzer() {
	if c.d.deps.Acoustic.Busy() {
		c.d.deps.Acoustic.Stop()
		c.note("acoustic stopped")
	}
	if c.d.deps.Stim.SoundActive() {
		c.d.deps.Stim.StopSound()
		c.note("stim sound stopped")
	}
}

// cmdOrder keeps help output deterministic.
var cmdOrder []string

func (d *Dispatcher) register() {
	d.cmds = map[string]command{}
	add := func(name, help string, run func(*call) error) {
		d.cmds[name] = command{help: help, run: run}
	}
	add("help", "list commands", d.cmdHelp)
	add("mode", "mode <human|machine>", d.cmdMode)
	add("status", "aggregated component status", d.cmdStatus)
	add("dbg", "dbg <on|off>", d.cmdDbg)

	add("led.rgb", "led rgb <r> <g> <b>", d.cmdLEDRGB)
	add("led.off", "led off", d.cmdLEDOff)
	add("led.status", "led status", d.cmdStatus)
	add("led.pattern", "led pattern <pulse|sweep|beacon|strobe> [period_ms] [r g b]", d.cmdOpticalPattern)

	add("buzz.tone", "buzz tone <freq_hz> [dur_ms]", d.cmdBuzzTone)
	add("buzz.pattern", "buzz pattern <sweep|chirp|pulsetrain|siren> [f_lo] [f_hi] [period_ms]", d.cmdAcousticPattern)
	add("buzz.stop", "buzz stop", d.cmdBuzzStop)

	add("optx.start", "optx start <payload_b64> [rate_hz] [ook|manchester] [repeat] [crc]", d.cmdOpticalStart)
	add("optx.stop", "optx stop", d.cmdOpticalStop)
	add("optx.pattern", "optx pattern <pulse|sweep|beacon|strobe> [period_ms] [r g b]", d.cmdOpticalPattern)
	add("optx.status", "optx status", d.cmdStatus)

	add("aotx.start", "aotx start <payload_b64> [symbol_ms] [f0] [f1] [repeat] [crc]", d.cmdAcousticStart)
	add("aotx.stop", "aotx stop", d.cmdAcousticStop)
	add("aotx.pattern", "aotx pattern <sweep|chirp|pulsetrain|siren> [f_lo] [f_hi] [period_ms]", d.cmdAcousticPattern)
	add("aotx.status", "aotx status", d.cmdStatus)

	add("periph.scan", "periph scan", d.cmdPeriphScan)
	add("periph.list", "periph list", d.cmdPeriphList)
	add("periph.describe", "periph describe <addr>", d.cmdPeriphDescribe)
	add("periph.hotplug", "periph hotplug <on|off> [interval_ms]", d.cmdPeriphHotplug)
	add("periph.declare", "periph declare <class> [product]", d.cmdPeriphDeclare)
	add("periph.undeclare", "periph undeclare <addr>", d.cmdPeriphUndeclare)

	add("stim.light", "stim light <on_ms> <off_ms> [cycles] [ramp_ms] [r g b]", d.cmdStimLight)
	add("stim.sound", "stim sound <on_ms> <off_ms> [cycles] [freq_hz]", d.cmdStimSound)
	add("stim.both", "stim both <on_ms> <off_ms> [cycles] [freq_hz]", d.cmdStimBoth)
	add("stim.stop", "stim stop", d.cmdStimStop)
	add("stim.status", "stim status", d.cmdStatus)
	add("stim.logging", "stim logging <on|off>", d.cmdStimLogging)
	add("stim.log", "stim log", d.cmdStimLog)
	add("stim.clearlog", "stim clearlog", d.cmdStimClearLog)

	add("out.set", "out set <channel> <0|1>", d.cmdOutSet)

	if cmdOrder == nil {
		for name := range d.cmds {
			cmdOrder = append(cmdOrder, name)
		}
		sortStrings(cmdOrder)
	}
}

// ---- Core ----

func (d *Dispatcher) cmdHelp(c *call) error {
	for _, name := range cmdOrder {
		d.textf("  %-18s %s", name, d.cmds[name].help)
	}
	c.msg = strings.Join(cmdOrder, ",")
	return nil
}

func (d *Dispatcher) cmdMode(c *call) error {
	m, ok := c.args.Str("mode", 0)
	if !ok {
		return errcode.MissingArg
	}
	switch m {
	case "human":
		d.mode = types.ModeHuman
	case "machine":
		d.mode = types.ModeMachine
	default:
		return errcode.InvalidParams
	}
	return nil
}

func (d *Dispatcher) cmdStatus(c *call) error {
	c.reply(d.StatusDoc("status", c.now))
	return nil
}

func (d *Dispatcher) cmdDbg(c *call) error {
	on, ok, err := c.args.Bool("on", 0)
	if err != nil {
		return err
	}
	if !ok {
		return errcode.MissingArg
	}
	d.dbg = on
	return nil
}

// ---- Emitter drivers ----

func (d *Dispatcher) cmdLEDRGB(c *call) error {
	r, g, b, ok, err := c.args.RGB(0)
	if err != nil {
		return err
	}
	if !ok {
		return errcode.MissingArg
	}
	c.claimLED()
	d.deps.LED.Set(r, g, b)
	return nil
}

func (d *Dispatcher) cmdLEDOff(c *call) error {
	c.claimLED()
	d.deps.LED.Off()
	return nil
}

func (d *Dispatcher) cmdBuzzTone(c *call) error {
	freq, ok, err := c.args.Uint("freq", 0)
	if err != nil {
		return err
	}
	if !ok {
		return errcode.MissingArg
	}
	if freq < acoustic.MinFreqHz || freq > acoustic.MaxFreqHz {
		return errcode.InvalidParams
	}
	dur, err := c.args.UintDefault("dur_ms", 1, 0)
	if err != nil {
		return err
	}
	c.claimBuzzer()
	d.deps.Buzzer.Tone(uint32(freq), uint32(dur), c.now)
	return nil
}

func (d *Dispatcher) cmdBuzzStop(c *call) error {
	c.claimBuzzer()
	d.deps.Buzzer.Stop()
	return nil
}

// ---- Optical modem ----

func (d *Dispatcher) cmdOpticalStart(c *call) error {
	payload, err := c.args.Payload(0)
	if err != nil {
		return err
	}
	rate, err := c.args.UintDefault("rate", 1, 10)
	if err != nil {
		return err
	}
	encName, _ := c.args.Str("encoding", 2)
	var enc optical.Encoding
	switch encName {
	case "", "manchester":
		enc = optical.Manchester
	case "ook":
		enc = optical.OOK
	default:
		return errcode.BadEncoding
	}
	repeat, err := c.args.BoolDefault("repeat", 3, false)
	if err != nil {
		return err
	}
	crc, err := c.args.BoolDefault("crc", 4, true)
	if err != nil {
		return err
	}
	r, g, b, _, err := c.args.RGB(-1) // colour via keys only
	if err != nil {
		return err
	}
	cfg := optical.TxConfig{
		Encoding:   enc,
		RateHz:     uint32(rate),
		R:          r,
		G:          g,
		B:          b,
		Repeat:     repeat,
		IncludeCRC: crc,
	}
	// Validate before claiming: a rejected command must not stop whatever
	// currently owns the LED.
	if err := cfg.Validate(payload); err != nil {
		return err
	}
	c.claimLED()
	return d.deps.Optical.Start(payload, cfg, c.now)
}

func (d *Dispatcher) cmdOpticalStop(c *call) error {
	d.deps.Optical.Stop()
	return nil
}

func (d *Dispatcher) cmdOpticalPattern(c *call) error {
	name, ok := c.args.Str("kind", 0)
	if !ok {
		return errcode.MissingArg
	}
	kind, ok := optical.ParsePatternKind(name)
	if !ok {
		return errcode.InvalidParams
	}
	period, err := c.args.UintDefault("period_ms", 1, 1000)
	if err != nil {
		return err
	}
	r, g, b, _, err := c.args.RGB(2)
	if err != nil {
		return err
	}
	cfg := optical.PatternConfig{
		Kind:     kind,
		PeriodMs: uint32(period),
		R:        r,
		G:        g,
		B:        b,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.claimLED()
	return d.deps.Optical.StartPattern(cfg, c.now)
}

// ---- Acoustic modem ----

func (d *Dispatcher) cmdAcousticStart(c *call) error {
	payload, err := c.args.Payload(0)
	if err != nil {
		return err
	}
	symbolMs, err := c.args.UintDefault("symbol_ms", 1, 20)
	if err != nil {
		return err
	}
	f0, err := c.args.UintDefault("f0", 2, 2000)
	if err != nil {
		return err
	}
	f1, err := c.args.UintDefault("f1", 3, 4000)
	if err != nil {
		return err
	}
	repeat, err := c.args.BoolDefault("repeat", 4, false)
	if err != nil {
		return err
	}
	crc, err := c.args.BoolDefault("crc", 5, true)
	if err != nil {
		return err
	}
	cfg := acoustic.TxConfig{
		Freq0:      uint32(f0),
		Freq1:      uint32(f1),
		SymbolMs:   uint32(symbolMs),
		Repeat:     repeat,
		IncludeCRC: crc,
	}
	if err := cfg.Validate(payload); err != nil {
		return err
	}
	c.claimBuzzer()
	return d.deps.Acoustic.Start(payload, cfg, c.now)
}

func (d *Dispatcher) cmdAcousticStop(c *call) error {
	d.deps.Acoustic.Stop()
	return nil
}

func (d *Dispatcher) cmdAcousticPattern(c *call) error {
	name, ok := c.args.Str("kind", 0)
	if !ok {
		return errcode.MissingArg
	}
	kind, ok := acoustic.ParsePatternKind(name)
	if !ok {
		return errcode.InvalidParams
	}
	lo, err := c.args.UintDefault("f_lo", 1, 0)
	if err != nil {
		return err
	}
	hi, err := c.args.UintDefault("f_hi", 2, 0)
	if err != nil {
		return err
	}
	period, err := c.args.UintDefault("period_ms", 3, 1000)
	if err != nil {
		return err
	}
	cfg := acoustic.PatternConfig{
		Kind:     kind,
		FreqLo:   uint32(lo),
		FreqHi:   uint32(hi),
		PeriodMs: uint32(period),
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.claimBuzzer()
	return d.deps.Acoustic.StartPattern(cfg, c.now)
}

// ---- Peripheral registry ----

func (d *Dispatcher) cmdPeriphScan(c *call) error {
	found, err := d.deps.Periph.Scan(c.now)
	if err != nil {
		return err
	}
	c.msg = fmt.Sprintf("found %d", found)
	return nil
}

func (d *Dispatcher) cmdPeriphList(c *call) error {
	items := d.deps.Periph.List()
	c.reply(types.PeriphList{
		Type:    "periph_list",
		Count:   len(items),
		Hotplug: d.deps.Periph.Hotplug(),
		Items:   items,
	})
	return nil
}

func (d *Dispatcher) cmdPeriphDescribe(c *call) error {
	addr, ok, err := c.args.Uint("addr", 0)
	if err != nil {
		return err
	}
	if !ok {
		return errcode.MissingArg
	}
	if addr > 0xFF {
		return errcode.InvalidParams
	}
	doc, err := d.deps.Periph.Describe(uint8(addr))
	if err != nil {
		return err
	}
	c.reply(doc)
	return nil
}

func (d *Dispatcher) cmdPeriphHotplug(c *call) error {
	on, ok, err := c.args.Bool("on", 0)
	if err != nil {
		return err
	}
	if !ok {
		return errcode.MissingArg
	}
	interval, err := c.args.UintDefault("interval_ms", 1, 0)
	if err != nil {
		return err
	}
	d.deps.Periph.SetHotplug(on, uint32(interval))
	return nil
}

func (d *Dispatcher) cmdPeriphDeclare(c *call) error {
	name, ok := c.args.Str("class", 0)
	if !ok {
		return errcode.MissingArg
	}
	class, ok := periph.ParseClass(name)
	if !ok {
		return errcode.InvalidParams
	}
	product, _ := c.args.Str("product", 1)
	addr, err := d.deps.Periph.Declare(class, product, c.now)
	if err != nil {
		return err
	}
	c.msg = fmt.Sprintf("addr %d", addr)
	return nil
}

func (d *Dispatcher) cmdPeriphUndeclare(c *call) error {
	addr, ok, err := c.args.Uint("addr", 0)
	if err != nil {
		return err
	}
	if !ok {
		return errcode.MissingArg
	}
	if addr > 0xFF {
		return errcode.InvalidParams
	}
	return d.deps.Periph.Undeclare(uint8(addr))
}

// ---- Stimulus engine ----

func (c *call) stimChannel(freqPos int) (stim.ChannelConfig, error) {
	onMs, ok, err := c.args.Uint("on_ms", 0)
	if err != nil {
		return stim.ChannelConfig{}, err
	}
	if !ok {
		return stim.ChannelConfig{}, errcode.MissingArg
	}
	offMs, ok, err := c.args.Uint("off_ms", 1)
	if err != nil {
		return stim.ChannelConfig{}, err
	}
	if !ok {
		return stim.ChannelConfig{}, errcode.MissingArg
	}
	cycles, err := c.args.UintDefault("cycles", 2, 0)
	if err != nil {
		return stim.ChannelConfig{}, err
	}
	rampPos := 3
	if freqPos == 3 {
		rampPos = -1 // sound word form has freq in slot 3; ramp via key only
	}
	rampMs, err := c.args.UintDefault("ramp_ms", rampPos, 0)
	if err != nil {
		return stim.ChannelConfig{}, err
	}
	delayMs, err := c.args.UintDefault("delay_ms", -1, 0)
	if err != nil {
		return stim.ChannelConfig{}, err
	}
	return stim.ChannelConfig{
		OnMs:    uint32(onMs),
		OffMs:   uint32(offMs),
		RampMs:  uint32(rampMs),
		Cycles:  uint32(cycles),
		DelayMs: uint32(delayMs),
	}, nil
}

func (d *Dispatcher) cmdStimLight(c *call) error {
	ch, err := c.stimChannel(-1)
	if err != nil {
		return err
	}
	r, g, b, _, err := c.args.RGB(4)
	if err != nil {
		return err
	}
	if err := ch.Validate(); err != nil {
		return err
	}
	c.claimLED()
	return d.deps.Stim.StartLight(stim.LightConfig{ChannelConfig: ch, R: r, G: g, B: b}, c.now)
}

func (d *Dispatcher) cmdStimSound(c *call) error {
	ch, err := c.stimChannel(3)
	if err != nil {
		return err
	}
	freq, err := c.args.UintDefault("freq_hz", 3, 1000)
	if err != nil {
		return err
	}
	cfg := stim.SoundConfig{ChannelConfig: ch, FreqHz: uint32(freq)}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.claimBuzzer()
	return d.deps.Stim.StartSound(cfg, c.now)
}

func (d *Dispatcher) cmdStimBoth(c *call) error {
	ch, err := c.stimChannel(3)
	if err != nil {
		return err
	}
	freq, err := c.args.UintDefault("freq_hz", 3, 1000)
	if err != nil {
		return err
	}
	r, g, b, _, err := c.args.RGB(-1)
	if err != nil {
		return err
	}
	light := stim.LightConfig{ChannelConfig: ch, R: r, G: g, B: b}
	sound := stim.SoundConfig{ChannelConfig: ch, FreqHz: uint32(freq)}
	if err := sound.Validate(); err != nil { // covers the shared channel too
		return err
	}
	c.claimLED()
	c.claimBuzzer()
	return d.deps.Stim.StartCombined(light, sound, c.now)
}

func (d *Dispatcher) cmdStimStop(c *call) error {
	d.deps.Stim.StopAll()
	return nil
}

func (d *Dispatcher) cmdStimLogging(c *call) error {
	on, ok, err := c.args.Bool("on", 0)
	if err != nil {
		return err
	}
	if !ok {
		return errcode.MissingArg
	}
	d.deps.Stim.SetLogging(on)
	return nil
}

func (d *Dispatcher) cmdStimLog(c *call) error {
	c.reply(d.deps.Stim.Log())
	return nil
}

func (d *Dispatcher) cmdStimClearLog(c *call) error {
	d.deps.Stim.ClearLog()
	return nil
}

// ---- Aux outputs ----

func (d *Dispatcher) cmdOutSet(c *call) error {
	ch, ok, err := c.args.Uint("channel", 0)
	if err != nil {
		return err
	}
	if !ok {
		return errcode.MissingArg
	}
	level, ok, err := c.args.Uint("level", 1)
	if err != nil {
		return err
	}
	if !ok {
		return errcode.MissingArg
	}
	if level > 1 {
		return errcode.InvalidParams
	}
	return d.deps.Out.Set(int(ch), level == 1)
}

// sortStrings is a tiny insertion sort; the table is small and this avoids
// pulling package sort into the MCU image for one call.
func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
