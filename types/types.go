package types

// ---- Operating mode ----

// Mode selects between interactive and strict machine output.
type Mode uint8

const (
	ModeHuman Mode = iota
	ModeMachine
)

func (m Mode) String() string {
	if m == ModeMachine {
		return "machine"
	}
	return "human"
}

// ---- Wire envelopes (NDJSON, one object per line) ----

// Every outbound line is exactly one of these document kinds, identified by
// the "type" field: ack, err, status, telemetry, periph, periph_list, boot, log.

type Ack struct {
	Type string `json:"type"` // "ack"
	Cmd  string `json:"cmd"`
	OK   bool   `json:"ok"` // always true
	Msg  string `json:"msg,omitempty"`
}

type Err struct {
	Type  string `json:"type"` // "err"
	Cmd   string `json:"cmd"`
	OK    bool   `json:"ok"` // always false
	Error string `json:"error"`
	Msg   string `json:"msg,omitempty"`
}

type Boot struct {
	Type     string `json:"type"` // "boot"
	Firmware string `json:"firmware"`
	Version  string `json:"version"`
	Mode     string `json:"mode"`
}

// Status doubles as the telemetry document; only "type" differs.
type Status struct {
	Type     string        `json:"type"` // "status" | "telemetry"
	UptimeMs int64         `json:"uptime_ms"`
	Mode     string        `json:"mode"`
	Debug    bool          `json:"debug"`
	LED      LEDState      `json:"led"`
	Buzzer   BuzzerState   `json:"buzzer"`
	Optical  ModemStatus   `json:"optx"`
	Acoustic ModemStatus   `json:"aotx"`
	Stim     StimStatus    `json:"stim"`
	Periph   PeriphSummary `json:"periph"`
	Out      []int         `json:"out,omitempty"`
}

// ---- Emitter state (current output only; drivers hold no machine) ----

type LEDState struct {
	R  uint8 `json:"r"`
	G  uint8 `json:"g"`
	B  uint8 `json:"b"`
	On bool  `json:"on"`
}

type BuzzerState struct {
	FreqHz uint32 `json:"freq_hz"`
	On     bool   `json:"on"`
}
