// Package boards owns everything platform-specific: pin assignments, PWM
// setup, the I2C bus, and the console transport. The rest of the firmware
// sees only the small output interfaces from the driver packages.
package boards

import (
	"io"

	"tinygo.org/x/drivers"

	"github.com/MycosoftLabs/mycosoft-mas-sub017/drivers/buzzer"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/drivers/outpin"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/drivers/rgbled"
)

// ByteSource is a non-blocking console receive side. Poll returns the bytes
// that arrived since the previous call, or nil.
type ByteSource interface {
	Poll() []byte
}

// Board is the assembled hardware surface handed to main.
type Board struct {
	LED    rgbled.Output
	Buzzer buzzer.Output
	Pins   []outpin.Pin
	I2C    drivers.I2C // nil when the platform has no bus

	Console io.Writer
	Input   ByteSource
}
