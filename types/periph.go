package types

// ---- Peripheral registry documents ----

// PeriphType enumerates the known device classes the scanner can infer.
type PeriphType string

const (
	PeriphEnvGas     PeriphType = "env_gas"     // BME688-class combined sensor
	PeriphHumidity   PeriphType = "humidity"    // SHT4x-class
	PeriphLight      PeriphType = "light"       // VEML7700-class ambient light
	PeriphRangefind  PeriphType = "rangefinder" // VL53L0X-class
	PeriphDisplay    PeriphType = "display"     // SSD1306-class
	PeriphPixelArray PeriphType = "pixel_array" // declared, e.g. WS2812 chain
	PeriphMic        PeriphType = "microphone"  // declared
	PeriphUnknown    PeriphType = "unknown"
)

// Peripheral is one registry slot. Bus-scanned entries use their 7-bit I2C
// address; declared (non-bus) entries use the synthetic range 0x80 and up.
// The device class is tagged "class" on the wire because "type" is the
// envelope discriminator on every outbound document.
type Peripheral struct {
	Addr       uint8      `json:"addr"`
	Class      PeriphType `json:"class"`
	Vendor     string     `json:"vendor,omitempty"`
	Product    string     `json:"product,omitempty"`
	Revision   string     `json:"revision,omitempty"`
	UID        string     `json:"uid"`
	Present    bool       `json:"present"`
	LastSeenMs int64      `json:"last_seen_ms"`
	Declared   bool       `json:"declared,omitempty"`
}

// PeriphDoc is the full descriptor document for one peripheral, with
// capability tags inferred from its class for host-side discovery.
type PeriphDoc struct {
	Type string `json:"type"` // "periph"
	Peripheral
	Caps []string `json:"caps"`
}

type PeriphList struct {
	Type    string       `json:"type"` // "periph_list"
	Count   int          `json:"count"`
	Hotplug bool         `json:"hotplug"`
	Items   []Peripheral `json:"items"`
}

type PeriphSummary struct {
	Count   int  `json:"count"`
	Present int  `json:"present"`
	Hotplug bool `json:"hotplug"`
}
