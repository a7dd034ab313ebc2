package main

import (
	"time"

	"github.com/MycosoftLabs/mycosoft-mas-sub017/boards"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/drivers/buzzer"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/drivers/outpin"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/drivers/rgbled"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/modem/acoustic"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/modem/optical"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/services/cli"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/services/periph"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/services/sched"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/services/stim"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/types"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/x/timex"
)

const (
	firmware = "sub017"
	version  = "0.3.0"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("[boot]", firmware, version)

	b := boards.New()

	led := rgbled.New(b.LED)
	buz := buzzer.New(b.Buzzer)

	deps := cli.Deps{
		LED:      led,
		Buzzer:   buz,
		Optical:  optical.New(led),
		Acoustic: acoustic.New(buz),
		Stim:     stim.New(led, buz),
		Periph:   periph.New(b.I2C),
		Out:      outpin.NewBank(b.Pins...),
		Clock:    timex.NowMs,
		BootMs:   timex.NowMs(),
	}

	d := cli.New(deps, b.Console, cli.Options{Mode: types.ModeHuman})

	sched.New(d, deps, b.Input, sched.Config{
		Firmware: firmware,
		Version:  version,
	}).Run()
}
