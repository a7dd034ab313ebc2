package cli

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MycosoftLabs/mycosoft-mas-sub017/drivers/buzzer"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/drivers/outpin"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/drivers/rgbled"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/modem/acoustic"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/modem/optical"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/services/periph"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/services/stim"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/types"
)

// rig is one fully wired dispatcher over memory hardware and a fake clock.
type rig struct {
	d    *Dispatcher
	out  *bytes.Buffer
	led  *rgbled.Memory
	buz  *buzzer.Memory
	pin0 *outpin.MemoryPin
	deps Deps
	now  int64
}

func newRig(mode types.Mode) *rig {
	r := &rig{out: &bytes.Buffer{}, led: &rgbled.Memory{}, buz: &buzzer.Memory{}, pin0: &outpin.MemoryPin{}}
	led := rgbled.New(r.led)
	buz := buzzer.New(r.buz)
	r.deps = Deps{
		LED:      led,
		Buzzer:   buz,
		Optical:  optical.New(led),
		Acoustic: acoustic.New(buz),
		Stim:     stim.New(led, buz),
		Periph:   periph.New(nil),
		Out:      outpin.NewBank(r.pin0, &outpin.MemoryPin{}),
		Clock:    func() int64 { return r.now },
	}
	r.d = New(r.deps, r.out, Options{Mode: mode})
	return r
}

// lines drains the output buffer and returns the written lines.
func (r *rig) lines(t *testing.T) []string {
	t.Helper()
	s := r.out.String()
	r.out.Reset()
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

// one asserts exactly one output line and unmarshals it.
func (r *rig) one(t *testing.T) map[string]any {
	t.Helper()
	ls := r.lines(t)
	require.Len(t, ls, 1, "expected exactly one reply line, got %v", ls)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(ls[0]), &doc))
	return doc
}

func b64(p []byte) string { return base64.StdEncoding.EncodeToString(p) }

func TestJSONCommandSingleAck(t *testing.T) {
	r := newRig(types.ModeMachine)
	r.d.Dispatch(`{"cmd":"led.rgb","r":255,"g":0,"b":64}`)

	doc := r.one(t)
	assert.Equal(t, "ack", doc["type"])
	assert.Equal(t, "led.rgb", doc["cmd"])
	assert.Equal(t, true, doc["ok"])
	assert.Equal(t, uint8(255), r.led.R)
	assert.Equal(t, uint8(64), r.led.B)
}

func TestWordCommandEquivalent(t *testing.T) {
	r := newRig(types.ModeMachine)
	r.d.Dispatch("led rgb 255 0 64")

	doc := r.one(t)
	assert.Equal(t, "ack", doc["type"])
	assert.Equal(t, "led.rgb", doc["cmd"])
	assert.Equal(t, uint8(255), r.led.R)
}

func TestUnknownCommand(t *testing.T) {
	r := newRig(types.ModeMachine)
	r.d.Dispatch("frobnicate now")

	doc := r.one(t)
	assert.Equal(t, "err", doc["type"])
	assert.Equal(t, false, doc["ok"])
	assert.Equal(t, "unknown_cmd", doc["error"])
}

func TestBadJSON(t *testing.T) {
	r := newRig(types.ModeMachine)
	r.d.Dispatch(`{"cmd":`)
	doc := r.one(t)
	assert.Equal(t, "err", doc["type"])
	assert.Equal(t, "bad_json", doc["error"])

	r.d.Dispatch(`{"r":1}`)
	doc = r.one(t)
	assert.Equal(t, "bad_json", doc["error"])
}

func TestMissingArg(t *testing.T) {
	r := newRig(types.ModeMachine)
	r.d.Dispatch("led rgb")
	doc := r.one(t)
	assert.Equal(t, "err", doc["type"])
	assert.Equal(t, "missing_arg", doc["error"])
}

func TestFeedAssemblesLines(t *testing.T) {
	r := newRig(types.ModeMachine)
	r.d.Feed([]byte(`{"cmd":"led.rgb",`))
	assert.Empty(t, r.lines(t), "no reply before the terminator")

	r.d.Feed([]byte("\"r\":9,\"g\":9,\"b\":9}\r\n"))
	doc := r.one(t)
	assert.Equal(t, "ack", doc["type"])
	assert.Equal(t, uint8(9), r.led.R)
}

func TestUnterminatedBraceHeldUntilNewline(t *testing.T) {
	r := newRig(types.ModeMachine)
	r.d.Feed([]byte("{"))
	assert.Empty(t, r.lines(t), "partial line must produce no output")

	r.d.Feed([]byte("\n"))
	doc := r.one(t)
	assert.Equal(t, "err", doc["type"])
	assert.Equal(t, "bad_json", doc["error"])
}

func TestOverlongLineDiscardedSilently(t *testing.T) {
	r := newRig(types.ModeMachine)
	r.d.Feed(bytes.Repeat([]byte{'x'}, DefaultMaxLine+100))
	r.d.Feed([]byte("\n"))
	assert.Empty(t, r.lines(t), "overlong line must not produce output")

	// The stream recovers on the next line.
	r.d.Dispatch("status")
	doc := r.one(t)
	assert.Equal(t, "status", doc["type"])
}

func TestModeSwitch(t *testing.T) {
	r := newRig(types.ModeHuman)
	r.d.Dispatch(`{"cmd":"mode","mode":"machine"}`)
	doc := r.one(t)
	assert.Equal(t, "ack", doc["type"])
	assert.Equal(t, types.ModeMachine, r.d.Mode())

	r.d.Dispatch("mode human")
	r.one(t)
	assert.Equal(t, types.ModeHuman, r.d.Mode())

	r.d.Dispatch("mode sideways")
	doc = r.one(t)
	assert.Equal(t, "invalid_params", doc["error"])
}

func TestHelpHumanVsMachine(t *testing.T) {
	h := newRig(types.ModeHuman)
	h.d.Dispatch("help")
	hl := h.lines(t)
	require.Greater(t, len(hl), 2, "human help should list commands as text")
	last := hl[len(hl)-1]
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(last), &doc), "last help line must be the ack")
	assert.Equal(t, "ack", doc["type"])

	m := newRig(types.ModeMachine)
	m.d.Dispatch("help")
	md := m.one(t)
	assert.Equal(t, "ack", md["type"])
	assert.Contains(t, md["msg"], "optx.start")
}

func TestStatusAggregation(t *testing.T) {
	r := newRig(types.ModeMachine)
	r.now = 5000
	r.d.Dispatch("led rgb 1 2 3")
	r.lines(t)

	r.d.Dispatch("status")
	doc := r.one(t)
	assert.Equal(t, "status", doc["type"])
	assert.Equal(t, "machine", doc["mode"])
	led := doc["led"].(map[string]any)
	assert.Equal(t, float64(1), led["r"])
	optx := doc["optx"].(map[string]any)
	assert.Equal(t, "idle", optx["state"])
}

func TestOpticalStartDefaults(t *testing.T) {
	r := newRig(types.ModeMachine)
	r.d.Dispatch(`{"cmd":"optx.start","payload_b64":"` + b64([]byte("hi")) + `"}`)
	doc := r.one(t)
	require.Equal(t, "ack", doc["type"], "start failed: %v", doc)
	require.True(t, r.deps.Optical.Transmitting())

	st := r.deps.Optical.Status(r.now)
	assert.Equal(t, "manchester", st.Encoding)
	assert.True(t, st.CRC)
	assert.False(t, st.Repeat)
	assert.Equal(t, uint32(10), st.RateHz)
}

func TestOpticalStartWordPositionals(t *testing.T) {
	r := newRig(types.ModeMachine)
	r.d.Dispatch("optx start " + b64([]byte{0xAA}) + " 100 ook")
	doc := r.one(t)
	require.Equal(t, "ack", doc["type"], "start failed: %v", doc)
	st := r.deps.Optical.Status(r.now)
	assert.Equal(t, "ook", st.Encoding)
	assert.Equal(t, uint32(100), st.RateHz)
}

func TestOpticalBadPayload(t *testing.T) {
	r := newRig(types.ModeMachine)
	r.d.Dispatch("optx start !!!notbase64!!!")
	doc := r.one(t)
	assert.Equal(t, "invalid_params", doc["error"])

	r.d.Dispatch(`{"cmd":"optx.start","payload_b64":""}`)
	doc = r.one(t)
	assert.Equal(t, "empty_payload", doc["error"])
}

func TestAcousticStartAndStop(t *testing.T) {
	r := newRig(types.ModeMachine)
	r.d.Dispatch("aotx start " + b64([]byte("ping")))
	doc := r.one(t)
	require.Equal(t, "ack", doc["type"], "start failed: %v", doc)
	st := r.deps.Acoustic.Status(r.now)
	assert.Equal(t, uint32(2000), st.Freq0)
	assert.Equal(t, uint32(4000), st.Freq1)
	assert.Equal(t, uint32(20), st.SymbolMs)

	r.d.Dispatch("aotx stop")
	r.one(t)
	assert.False(t, r.deps.Acoustic.Busy())
}

func TestLEDClaimStopsOpticalOwners(t *testing.T) {
	r := newRig(types.ModeMachine)
	r.d.Dispatch("optx start " + b64([]byte{1}))
	r.lines(t)
	require.True(t, r.deps.Optical.Busy())

	r.d.Dispatch("led rgb 5 5 5")
	doc := r.one(t)
	assert.Equal(t, "ack", doc["type"])
	assert.Contains(t, doc["msg"], "optical stopped")
	assert.False(t, r.deps.Optical.Busy())
}

func TestStimLightPreemptedByOpticalStart(t *testing.T) {
	r := newRig(types.ModeMachine)
	r.d.Dispatch("stim light 100 100")
	r.one(t)
	require.True(t, r.deps.Stim.LightActive())

	r.d.Dispatch("optx start " + b64([]byte{1}))
	doc := r.one(t)
	assert.Equal(t, "ack", doc["type"])
	assert.Contains(t, doc["msg"], "stim light stopped")
	assert.False(t, r.deps.Stim.LightActive())
	assert.True(t, r.deps.Optical.Transmitting())
}

func TestBuzzerClaimIndependentOfLED(t *testing.T) {
	r := newRig(types.ModeMachine)
	r.d.Dispatch("stim light 100 100")
	r.one(t)
	r.d.Dispatch("buzz tone 440")
	doc := r.one(t)
	assert.Equal(t, "ack", doc["type"])
	assert.True(t, r.deps.Stim.LightActive(), "tone must not disturb the light channel")
	assert.Equal(t, uint32(440), r.buz.FreqHz)
}

func TestRejectedOpticalStartLeavesTransmissionRunning(t *testing.T) {
	r := newRig(types.ModeMachine)
	r.d.Dispatch("optx start " + b64([]byte{0xA5}))
	r.one(t)
	require.True(t, r.deps.Optical.Transmitting())

	r.d.Dispatch("optx start " + b64([]byte{0x5A}) + " 9999") // rate out of range
	doc := r.one(t)
	assert.Equal(t, "err", doc["type"])
	assert.Equal(t, "invalid_params", doc["error"])
	assert.True(t, r.deps.Optical.Transmitting(), "rejected start must not stop the running transmission")
}

func TestRejectedOpticalStartLeavesStimLightRunning(t *testing.T) {
	r := newRig(types.ModeMachine)
	r.d.Dispatch("stim light 100 100")
	r.one(t)

	r.d.Dispatch("optx start " + b64([]byte{1}) + " 0")
	doc := r.one(t)
	assert.Equal(t, "err", doc["type"])
	assert.True(t, r.deps.Stim.LightActive(), "rejected start must not stop the light stimulus")
}

func TestInvalidStimConfigLeavesOpticalRunning(t *testing.T) {
	r := newRig(types.ModeMachine)
	r.d.Dispatch("optx start " + b64([]byte{0xA5}))
	r.one(t)

	r.d.Dispatch("stim light 0 100") // on_ms must be nonzero
	doc := r.one(t)
	assert.Equal(t, "err", doc["type"])
	assert.Equal(t, "invalid_params", doc["error"])
	assert.True(t, r.deps.Optical.Transmitting(), "invalid stimulus must not stop the modem")
}

func TestRejectedAcousticPatternLeavesTransmissionRunning(t *testing.T) {
	r := newRig(types.ModeMachine)
	r.d.Dispatch("aotx start " + b64([]byte{0xA5}))
	r.one(t)

	r.d.Dispatch("aotx pattern sweep 2000 100") // lo above hi
	doc := r.one(t)
	assert.Equal(t, "err", doc["type"])
	assert.Equal(t, "invalid_params", doc["error"])
	assert.True(t, r.deps.Acoustic.Transmitting(), "rejected pattern must not stop the running transmission")
}

func TestInvalidStimBothLeavesBothModemsRunning(t *testing.T) {
	r := newRig(types.ModeMachine)
	r.d.Dispatch("optx start " + b64([]byte{1}))
	r.one(t)
	r.d.Dispatch("aotx start " + b64([]byte{2}))
	r.one(t)

	r.d.Dispatch(`{"cmd":"stim.both","on_ms":100,"off_ms":50,"freq_hz":0}`)
	doc := r.one(t)
	assert.Equal(t, "err", doc["type"])
	assert.True(t, r.deps.Optical.Transmitting())
	assert.True(t, r.deps.Acoustic.Transmitting())
}

func TestStimSoundWordForm(t *testing.T) {
	r := newRig(types.ModeMachine)
	r.d.Dispatch("stim sound 200 100 3 2500")
	doc := r.one(t)
	require.Equal(t, "ack", doc["type"], "start failed: %v", doc)
	st := r.deps.Stim.Status(0)
	assert.True(t, st.Sound.Active)
	assert.Equal(t, uint32(3), st.Sound.Cycles)
	assert.Equal(t, uint32(2500), st.Sound.FreqHz)
}

func TestStimLogRoundTrip(t *testing.T) {
	r := newRig(types.ModeMachine)
	r.d.Dispatch("stim logging on")
	r.one(t)
	r.d.Dispatch("stim light 50 50 1")
	r.one(t)

	r.deps.Stim.Update(10)
	r.deps.Stim.Update(120)

	r.d.Dispatch("stim log")
	doc := r.one(t)
	assert.Equal(t, "log", doc["type"])
	items := doc["items"].([]any)
	require.NotEmpty(t, items)
	first := items[0].(map[string]any)
	assert.Equal(t, "light_on", first["tag"])

	r.d.Dispatch("stim clearlog")
	r.one(t)
	r.d.Dispatch("stim log")
	doc = r.one(t)
	assert.Empty(t, doc["items"])
}

func TestPeriphWithoutBus(t *testing.T) {
	r := newRig(types.ModeMachine)
	r.d.Dispatch("periph scan")
	doc := r.one(t)
	assert.Equal(t, "err", doc["type"])
	assert.Equal(t, "no_bus", doc["error"])
}

func TestPeriphDeclareListUndeclare(t *testing.T) {
	r := newRig(types.ModeMachine)
	r.d.Dispatch("periph declare mic")
	doc := r.one(t)
	require.Equal(t, "ack", doc["type"], "declare failed: %v", doc)
	assert.Contains(t, doc["msg"], "addr")

	r.d.Dispatch("periph list")
	doc = r.one(t)
	assert.Equal(t, "periph_list", doc["type"])
	assert.Equal(t, float64(1), doc["count"])

	r.d.Dispatch("periph describe 128")
	doc = r.one(t)
	assert.Equal(t, "periph", doc["type"])
	assert.Equal(t, "microphone", doc["class"])

	r.d.Dispatch("periph undeclare 128")
	doc = r.one(t)
	assert.Equal(t, "ack", doc["type"])
}

func TestOutSet(t *testing.T) {
	r := newRig(types.ModeMachine)
	r.d.Dispatch("out set 0 1")
	doc := r.one(t)
	assert.Equal(t, "ack", doc["type"])
	assert.True(t, r.pin0.Level)

	r.d.Dispatch("out set 7 1")
	doc = r.one(t)
	assert.Equal(t, "unknown_channel", doc["error"])

	r.d.Dispatch("out set 0 3")
	doc = r.one(t)
	assert.Equal(t, "invalid_params", doc["error"])
}

func TestTelemetryMachineOnly(t *testing.T) {
	h := newRig(types.ModeHuman)
	h.d.EmitTelemetry(1000)
	assert.Empty(t, h.lines(t))

	m := newRig(types.ModeMachine)
	m.now = 1000
	m.d.EmitTelemetry(1000)
	doc := m.one(t)
	assert.Equal(t, "telemetry", doc["type"])
}

func TestBootDocuments(t *testing.T) {
	m := newRig(types.ModeMachine)
	m.d.EmitBoot("sub017", "0.3.0")
	doc := m.one(t)
	assert.Equal(t, "boot", doc["type"])
	assert.Equal(t, "sub017", doc["firmware"])

	h := newRig(types.ModeHuman)
	h.d.EmitBoot("sub017", "0.3.0")
	ls := h.lines(t)
	require.Len(t, ls, 1)
	assert.False(t, strings.HasPrefix(ls[0], "{"), "human banner is free text")
}

func TestDebugTracesAreHumanOnly(t *testing.T) {
	m := newRig(types.ModeMachine)
	m.d.Dispatch("dbg on")
	m.one(t)
	m.d.Dispatch("status")
	doc := m.one(t)
	assert.Equal(t, "status", doc["type"])

	h := newRig(types.ModeHuman)
	h.d.Dispatch("dbg on")
	h.lines(t)
	h.d.Dispatch("led off")
	ls := h.lines(t)
	require.Len(t, ls, 2, "debug trace plus ack")
	assert.True(t, strings.HasPrefix(ls[0], "# "))
}
