package types

// ---- Modem status (shared shape for optical and acoustic channels) ----

// ModemState names the transmit phase a modem is in.
type ModemState string

const (
	ModemIdle     ModemState = "idle"
	ModemPreamble ModemState = "preamble"
	ModemData     ModemState = "data"
	ModemTrailer  ModemState = "trailer"
	ModemPattern  ModemState = "pattern"
)

type ModemStatus struct {
	State    ModemState `json:"state"`
	Encoding string     `json:"encoding,omitempty"` // "ook" | "manchester" | "fsk"
	Pattern  string     `json:"pattern,omitempty"`
	PayloadB int        `json:"payload_bytes,omitempty"`
	Repeat   bool       `json:"repeat,omitempty"`
	CRC      bool       `json:"crc,omitempty"`
	BitsSent int        `json:"bits_sent,omitempty"`
	RateHz   uint32     `json:"rate_hz,omitempty"`   // optical
	SymbolMs uint32     `json:"symbol_ms,omitempty"` // acoustic
	Freq0    uint32     `json:"f0_hz,omitempty"`
	Freq1    uint32     `json:"f1_hz,omitempty"`
}
