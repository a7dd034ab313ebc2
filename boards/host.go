//go:build !rp2040 && !rp2350

package boards

import (
	"os"
	"sync"

	"github.com/MycosoftLabs/mycosoft-mas-sub017/drivers/buzzer"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/drivers/outpin"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/drivers/rgbled"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/errcode"
)

// New assembles the host board: inert emitters, an empty I2C bus, and a
// console bridged to stdin/stdout. Used for development and protocol tests
// without hardware.
func New() *Board {
	pins := []outpin.Pin{&outpin.MemoryPin{}, &outpin.MemoryPin{}}
	return &Board{
		LED:     &rgbled.Memory{},
		Buzzer:  &buzzer.Memory{},
		Pins:    pins,
		I2C:     &HostI2C{},
		Console: os.Stdout,
		Input:   newStdinSource(),
	}
}

// HostI2C answers probes for the addresses in Present and errors for the
// rest, which is what a bus scan needs from a fake.
type HostI2C struct {
	mu      sync.Mutex
	Present map[uint16]bool
}

func (h *HostI2C) Tx(addr uint16, w, r []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Present[addr] {
		return nil
	}
	return errcode.NoBus
}

// stdinSource pumps os.Stdin into a channel so the cooperative loop can
// poll it without blocking. The goroutine is host-only; on the MCU the
// UART gives us buffered non-blocking reads directly.
type stdinSource struct {
	ch chan []byte
}

func newStdinSource() *stdinSource {
	s := &stdinSource{ch: make(chan []byte, 8)}
	go func() {
		buf := make([]byte, 256)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				s.ch <- append([]byte(nil), buf[:n]...)
			}
			if err != nil {
				close(s.ch)
				return
			}
		}
	}()
	return s
}

func (s *stdinSource) Poll() []byte {
	select {
	case p := <-s.ch:
		return p
	default:
		return nil
	}
}
