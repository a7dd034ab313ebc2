// Package periph discovers and tracks bus-attached peripherals. A scan
// probes every 7-bit I2C address, matches responders against a static
// known-device table, and keeps a bounded registry of descriptors; hotplug
// mode re-runs the scan on a fixed interval from the main loop. Non-bus
// peripherals (a pixel array on a GPIO, a microphone) are declared into a
// synthetic address range and never touched by scans.
package periph

import (
	"tinygo.org/x/drivers"

	"github.com/MycosoftLabs/mycosoft-mas-sub017/errcode"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/types"
)

const (
	// Capacity bounds the registry; scans silently ignore devices past it.
	Capacity = 16

	// 7-bit address range probed by a scan (reserved addresses excluded).
	ScanFirst = 0x08
	ScanLast  = 0x77

	// SyntheticBase is the first address handed to declared peripherals.
	SyntheticBase = 0x80

	DefaultHotplugMs = 5000
)

type knownDev struct {
	class   types.PeriphType
	vendor  string
	product string
}

// knownTable maps bus addresses to device classes. Addresses are the
// factory defaults of parts this board family actually ships with.
var knownTable = map[uint8]knownDev{
	0x76: {types.PeriphEnvGas, "Bosch Sensortec", "BME688"},
	0x77: {types.PeriphEnvGas, "Bosch Sensortec", "BME688"},
	0x44: {types.PeriphHumidity, "Sensirion", "SHT4x"},
	0x45: {types.PeriphHumidity, "Sensirion", "SHT4x"},
	0x10: {types.PeriphLight, "Vishay", "VEML7700"},
	0x29: {types.PeriphRangefind, "ST", "VL53L0X"},
	0x3C: {types.PeriphDisplay, "Solomon Systech", "SSD1306"},
	0x3D: {types.PeriphDisplay, "Solomon Systech", "SSD1306"},
}

// Registry holds the fixed-capacity descriptor table.
type Registry struct {
	bus        drivers.I2C
	slots      [Capacity]types.Peripheral
	used       [Capacity]bool
	hotplug    bool
	intervalMs uint32
	lastScanMs int64
}

// New builds a registry over an I2C bus. bus may be nil on boards without
// one; Scan then reports no_bus.
func New(bus drivers.I2C) *Registry {
	return &Registry{bus: bus, intervalMs: DefaultHotplugMs}
}

// Scan probes the bus address range once. Responding addresses update an
// existing descriptor's presence and timestamp or claim a free slot;
// previously-seen bus devices that no longer respond are marked absent but
// never removed. Returns the number of devices that responded.
func (r *Registry) Scan(nowMs int64) (int, error) {
	if r.bus == nil {
		return 0, errcode.NoBus
	}
	r.lastScanMs = nowMs

	var probe [0]byte
	found := 0
	seen := [Capacity]bool{}
	for addr := uint8(ScanFirst); addr <= ScanLast; addr++ {
		if r.bus.Tx(uint16(addr), probe[:], nil) != nil {
			continue
		}
		found++
		if i, ok := r.find(addr); ok {
			r.slots[i].Present = true
			r.slots[i].LastSeenMs = nowMs
			seen[i] = true
			continue
		}
		i, ok := r.freeSlot()
		if !ok {
			continue // over capacity: ignore
		}
		kd, known := knownTable[addr]
		if !known {
			kd = knownDev{class: types.PeriphUnknown}
		}
		r.slots[i] = types.Peripheral{
			Addr:       addr,
			Class:      kd.class,
			Vendor:     kd.vendor,
			Product:    kd.product,
			UID:        "i2c-" + hexByte(addr),
			Present:    true,
			LastSeenMs: nowMs,
		}
		r.used[i] = true
		seen[i] = true
	}

	// Anything bus-scanned that did not respond this pass is absent.
	for i := range r.slots {
		if r.used[i] && !r.slots[i].Declared && !seen[i] {
			r.slots[i].Present = false
		}
	}
	return found, nil
}

// Declare registers a non-bus peripheral in the synthetic address space and
// returns its address.
func (r *Registry) Declare(class types.PeriphType, product string, nowMs int64) (uint8, error) {
	i, ok := r.freeSlot()
	if !ok {
		return 0, errcode.RegistryFull
	}
	addr, ok := r.freeSyntheticAddr()
	if !ok {
		return 0, errcode.RegistryFull
	}
	r.slots[i] = types.Peripheral{
		Addr:       addr,
		Class:      class,
		Product:    product,
		UID:        "decl-" + hexByte(addr),
		Present:    true,
		LastSeenMs: nowMs,
		Declared:   true,
	}
	r.used[i] = true
	return addr, nil
}

// Undeclare removes a peripheral. This is the only removal path.
func (r *Registry) Undeclare(addr uint8) error {
	i, ok := r.find(addr)
	if !ok {
		return errcode.UnknownPeripheral
	}
	r.slots[i] = types.Peripheral{}
	r.used[i] = false
	return nil
}

// Describe returns the full descriptor document for one address.
func (r *Registry) Describe(addr uint8) (types.PeriphDoc, error) {
	i, ok := r.find(addr)
	if !ok {
		return types.PeriphDoc{}, errcode.UnknownPeripheral
	}
	return types.PeriphDoc{
		Type:       "periph",
		Peripheral: r.slots[i],
		Caps:       capsFor(r.slots[i].Class),
	}, nil
}

// List snapshots all registered descriptors in slot order.
func (r *Registry) List() []types.Peripheral {
	out := make([]types.Peripheral, 0, Capacity)
	for i := range r.slots {
		if r.used[i] {
			out = append(out, r.slots[i])
		}
	}
	return out
}

// SetHotplug enables or disables periodic rescans. intervalMs==0 keeps the
// current interval.
func (r *Registry) SetHotplug(on bool, intervalMs uint32) {
	r.hotplug = on
	if intervalMs > 0 {
		r.intervalMs = intervalMs
	}
}

func (r *Registry) Hotplug() bool { return r.hotplug }

// Update re-runs the scan when hotplug is enabled and the interval elapsed.
func (r *Registry) Update(nowMs int64) {
	if !r.hotplug || r.bus == nil {
		return
	}
	if nowMs-r.lastScanMs >= int64(r.intervalMs) {
		_, _ = r.Scan(nowMs)
	}
}

func (r *Registry) Summary() types.PeriphSummary {
	s := types.PeriphSummary{Hotplug: r.hotplug}
	for i := range r.slots {
		if r.used[i] {
			s.Count++
			if r.slots[i].Present {
				s.Present++
			}
		}
	}
	return s
}

func (r *Registry) find(addr uint8) (int, bool) {
	for i := range r.slots {
		if r.used[i] && r.slots[i].Addr == addr {
			return i, true
		}
	}
	return 0, false
}

func (r *Registry) freeSlot() (int, bool) {
	for i := range r.used {
		if !r.used[i] {
			return i, true
		}
	}
	return 0, false
}

func (r *Registry) freeSyntheticAddr() (uint8, bool) {
	for a := uint8(SyntheticBase); a != 0; a++ { // wraps to 0 after 0xFF
		if _, taken := r.find(a); !taken {
			return a, true
		}
	}
	return 0, false
}

// capsFor infers capability tags from a device class, for host discovery.
func capsFor(c types.PeriphType) []string {
	switch c {
	case types.PeriphEnvGas, types.PeriphHumidity, types.PeriphRangefind:
		return []string{"telemetry"}
	case types.PeriphLight:
		return []string{"telemetry", "optical-rx"}
	case types.PeriphDisplay:
		return []string{"control", "display"}
	case types.PeriphPixelArray:
		return []string{"control", "optical-tx"}
	case types.PeriphMic:
		return []string{"telemetry", "acoustic-rx"}
	default:
		return []string{}
	}
}

// ParseClass maps a command token to a declarable device class.
func ParseClass(s string) (types.PeriphType, bool) {
	switch s {
	case "pixel_array", "pixels":
		return types.PeriphPixelArray, true
	case "microphone", "mic":
		return types.PeriphMic, true
	case "display":
		return types.PeriphDisplay, true
	case "unknown":
		return types.PeriphUnknown, true
	}
	return "", false
}

const hexdigits = "0123456789abcdef"

func hexByte(b uint8) string {
	return string([]byte{hexdigits[b>>4], hexdigits[b&0xF]})
}
