// Package cli is the dual-mode command dispatcher. It accepts one completed
// input line at a time, either whitespace-delimited words or a JSON object
// with a "cmd" field, routes it to the owning component, and answers every
// line with exactly one structured NDJSON object. In human mode extra
// free-text lines (banner, help) may precede the structured reply; in
// machine mode nothing but single-line JSON documents is ever written.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/shlex"

	"github.com/MycosoftLabs/mycosoft-mas-sub017/drivers/buzzer"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/drivers/outpin"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/drivers/rgbled"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/errcode"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/modem/acoustic"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/modem/optical"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/services/periph"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/services/stim"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/types"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/x/timex"
)

// DefaultMaxLine bounds the input line buffer. A longer line is discarded
// up to its terminator, per the protocol contract.
const DefaultMaxLine = 512

// Deps are the components commands mutate. The dispatcher itself holds no
// domain state beyond the operating mode and the debug flag.
type Deps struct {
	LED      *rgbled.Device
	Buzzer   *buzzer.Device
	Optical  *optical.Modem
	Acoustic *acoustic.Modem
	Stim     *stim.Engine
	Periph   *periph.Registry
	Out      *outpin.Bank
	Clock    func() int64 // defaults to timex.NowMs
	BootMs   int64
}

// Options configure the dispatcher explicitly instead of via globals, so
// human vs machine behaviour is testable without process restarts.
type Options struct {
	Mode    types.Mode
	MaxLine int
}

type Dispatcher struct {
	deps Deps
	out  io.Writer

	mode types.Mode
	dbg  bool

	maxLine int
	line    []byte
	drop    bool

	cmds map[string]command
}

type command struct {
	help string
	run  func(c *call) error
}

// call carries one invocation. A handler either emits a full document via
// c.reply (status, list, log) or just returns; the dispatcher then sends the
// ack (with c.msg, if set) or maps the returned error to an err object.
type call struct {
	d       *Dispatcher
	cmd     string
	args    *Args
	now     int64
	msg     string
	replied bool
}

func (c *call) reply(doc any) {
	c.d.emit(doc)
	c.replied = true
}

func New(deps Deps, out io.Writer, opts Options) *Dispatcher {
	if deps.Clock == nil {
		deps.Clock = timex.NowMs
	}
	maxLine := opts.MaxLine
	if maxLine <= 0 {
		maxLine = DefaultMaxLine
	}
	d := &Dispatcher{
		deps:    deps,
		out:     out,
		mode:    opts.Mode,
		maxLine: maxLine,
		line:    make([]byte, 0, maxLine),
	}
	d.register()
	return d
}

func (d *Dispatcher) Mode() types.Mode { return d.mode }
func (d *Dispatcher) Debug() bool      { return d.dbg }

// Feed assembles lines from a byte stream and dispatches each completed one.
// A line longer than the buffer is discarded silently up to its terminator;
// a partial line is held indefinitely.
func (d *Dispatcher) Feed(p []byte) {
	for _, b := range p {
		switch b {
		case '\r':
			// tolerated, ignored
		case '\n':
			if d.drop {
				d.drop = false
				d.debugf("input line dropped: %s", errcode.LineTooLong)
			} else if len(d.line) > 0 {
				d.Dispatch(string(d.line))
			}
			d.line = d.line[:0]
		default:
			if d.drop {
				continue
			}
			if len(d.line) >= d.maxLine {
				d.drop = true
				d.line = d.line[:0]
				continue
			}
			d.line = append(d.line, b)
		}
	}
}

// Dispatch routes one completed line.
func (d *Dispatcher) Dispatch(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if line[0] == '{' {
		d.dispatchJSON(line)
		return
	}
	d.dispatchWords(line)
}

func (d *Dispatcher) dispatchJSON(line string) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(line), &obj); err != nil {
		d.emitErr("", errcode.BadJSON, "")
		return
	}
	name, _ := obj["cmd"].(string)
	if name == "" {
		d.emitErr("", errcode.BadJSON, "missing cmd field")
		return
	}
	d.invoke(name, jsonArgs(obj))
}

// groups are the commands that take a mandatory subcommand word.
var groups = map[string]bool{
	"led": true, "buzz": true, "optx": true, "aotx": true,
	"periph": true, "stim": true, "out": true,
}

func (d *Dispatcher) dispatchWords(line string) {
	tokens, err := shlex.Split(line)
	if err != nil || len(tokens) == 0 {
		d.emitErr(line, errcode.InvalidParams, "bad quoting")
		return
	}
	name := tokens[0]
	rest := tokens[1:]
	if groups[name] {
		if len(rest) == 0 {
			d.emitErr(name, errcode.MissingArg, "subcommand required")
			return
		}
		name = name + "." + rest[0]
		rest = rest[1:]
	}
	d.invoke(name, wordArgs(rest))
}

func (d *Dispatcher) invoke(name string, args *Args) {
	cmd, ok := d.cmds[name]
	if !ok {
		d.emitErr(name, errcode.UnknownCmd, "")
		return
	}
	c := &call{d: d, cmd: name, args: args, now: d.deps.Clock()}
	d.debugf("dispatch %s", name)
	if err := cmd.run(c); err != nil {
		d.emitErr(name, errcode.Of(err), errMsg(err))
		return
	}
	if !c.replied {
		d.emit(types.Ack{Type: "ack", Cmd: name, OK: true, Msg: c.msg})
	}
}

func errMsg(err error) string {
	if e, ok := err.(*errcode.E); ok {
		return e.Msg
	}
	return ""
}

// ---- Output ----

// emit writes one document as a single NDJSON line (both modes).
func (d *Dispatcher) emit(doc any) {
	b, err := json.Marshal(doc)
	if err != nil {
		return // never emit a broken line
	}
	d.out.Write(append(b, '\n'))
}

func (d *Dispatcher) emitErr(cmd string, code errcode.Code, msg string) {
	d.emit(types.Err{Type: "err", Cmd: cmd, OK: false, Error: string(code), Msg: msg})
}

// textf writes free text. Human mode only, never part of the protocol.
func (d *Dispatcher) textf(format string, a ...any) {
	if d.mode != types.ModeHuman {
		return
	}
	fmt.Fprintf(d.out, format+"\n", a...)
}

func (d *Dispatcher) debugf(format string, a ...any) {
	if d.dbg {
		d.textf("# "+format, a...)
	}
}

// ---- Documents shared with the scheduler ----

// StatusDoc aggregates all component states. kind is "status" or "telemetry".
func (d *Dispatcher) StatusDoc(kind string, nowMs int64) types.Status {
	return types.Status{
		Type:     kind,
		UptimeMs: timex.SinceMs(nowMs, d.deps.BootMs),
		Mode:     d.mode.String(),
		Debug:    d.dbg,
		LED:      d.deps.LED.State(),
		Buzzer:   d.deps.Buzzer.State(),
		Optical:  d.deps.Optical.Status(nowMs),
		Acoustic: d.deps.Acoustic.Status(nowMs),
		Stim:     d.deps.Stim.Status(nowMs),
		Periph:   d.deps.Periph.Summary(),
		Out:      d.deps.Out.Levels(),
	}
}

// EmitTelemetry sends one aggregated telemetry document (machine mode only).
func (d *Dispatcher) EmitTelemetry(nowMs int64) {
	if d.mode != types.ModeMachine {
		return
	}
	d.emit(d.StatusDoc("telemetry", nowMs))
}

// EmitBoot announces the firmware after the self-test.
func (d *Dispatcher) EmitBoot(firmware, version string) {
	if d.mode == types.ModeHuman {
		d.textf("%s %s ready, type 'help' for commands", firmware, version)
		return
	}
	d.emit(types.Boot{Type: "boot", Firmware: firmware, Version: version, Mode: d.mode.String()})
}
