package types

// ---- Stimulus engine documents ----

type StimChannelStatus struct {
	Active bool   `json:"active"`
	Phase  string `json:"phase,omitempty"` // "delay" | "on" | "off"
	Cycle  uint32 `json:"cycle,omitempty"`
	Cycles uint32 `json:"cycles,omitempty"` // 0 = infinite
	OnMs   uint32 `json:"on_ms,omitempty"`
	OffMs  uint32 `json:"off_ms,omitempty"`
	RampMs uint32 `json:"ramp_ms,omitempty"`
	FreqHz uint32 `json:"freq_hz,omitempty"` // sound channel only
}

type StimStatus struct {
	Light   StimChannelStatus `json:"light"`
	Sound   StimChannelStatus `json:"sound"`
	Logging bool              `json:"logging"`
	LogLen  int               `json:"log_len"`
}

// StimLogEntry is one phase-transition record from the ring log.
type StimLogEntry struct {
	TSms int64  `json:"ts_ms"`
	Tag  string `json:"tag"` // e.g. "light_on", "sound_off", "light_cycle"
}

type StimLog struct {
	Type    string         `json:"type"`    // "log"
	Dropped uint32         `json:"dropped"` // entries overwritten since last clear
	Items   []StimLogEntry `json:"items"`
}
