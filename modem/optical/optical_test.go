package optical

import (
	"testing"

	"github.com/MycosoftLabs/mycosoft-mas-sub017/drivers/rgbled"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/errcode"
	"github.com/MycosoftLabs/mycosoft-mas-sub017/types"
)

func newTestModem() (*Modem, *rgbled.Memory) {
	mem := &rgbled.Memory{}
	return New(rgbled.New(mem)), mem
}

func TestStartValidation(t *testing.T) {
	m, _ := newTestModem()
	cases := []struct {
		name    string
		payload []byte
		cfg     TxConfig
		want    error
	}{
		{"rate too low", []byte{1}, TxConfig{RateHz: 0}, errcode.InvalidParams},
		{"rate too high", []byte{1}, TxConfig{RateHz: 501}, errcode.InvalidParams},
		{"bad encoding", []byte{1}, TxConfig{Encoding: 9, RateHz: 10}, errcode.BadEncoding},
		{"empty payload", nil, TxConfig{RateHz: 10}, errcode.EmptyPayload},
	}
	for _, c := range cases {
		if err := m.Start(c.payload, c.cfg, 0); err != c.want {
			t.Errorf("%s: err = %v, want %v", c.name, err, c.want)
		}
		if m.Busy() {
			t.Errorf("%s: modem busy after rejected start", c.name)
		}
	}
}

func TestUpdateDrivesLED(t *testing.T) {
	m, mem := newTestModem()
	// 1 bit/s OOK: 1000 ms symbols, easy to step through.
	err := m.Start([]byte{0xFF}, TxConfig{RateHz: 1, R: 10, G: 20, B: 30}, 0)
	if err != nil {
		t.Fatal(err)
	}

	m.Update(0) // preamble symbol 0 is a mark
	if !mem.On || mem.R != 10 || mem.G != 20 || mem.B != 30 {
		t.Fatalf("mark output = %+v", mem)
	}
	m.Update(1000) // preamble symbol 1 is a space
	if mem.On {
		t.Fatalf("space output = %+v", mem)
	}
}

func TestDefaultColourIsWhite(t *testing.T) {
	m, mem := newTestModem()
	if err := m.Start([]byte{0xFF}, TxConfig{RateHz: 1}, 0); err != nil {
		t.Fatal(err)
	}
	m.Update(0)
	if mem.R != 255 || mem.G != 255 || mem.B != 255 {
		t.Fatalf("default colour = %+v, want white", mem)
	}
}

func TestTransmissionCompletes(t *testing.T) {
	m, mem := newTestModem()
	if err := m.Start([]byte{0xAB}, TxConfig{RateHz: 100}, 0); err != nil {
		t.Fatal(err)
	}
	// 16 symbols at 10 ms.
	m.Update(200)
	if m.Busy() {
		t.Fatal("modem still busy after the frame elapsed")
	}
	if mem.On {
		t.Fatal("LED left on after completion")
	}
	if st := m.Status(300); st.State != types.ModemIdle {
		t.Fatalf("state = %v, want idle", st.State)
	}
}

func TestStartPreemptsPattern(t *testing.T) {
	m, _ := newTestModem()
	if err := m.StartPattern(PatternConfig{Kind: PatternStrobe}, 0); err != nil {
		t.Fatal(err)
	}
	if err := m.Start([]byte{1}, TxConfig{RateHz: 10}, 0); err != nil {
		t.Fatal(err)
	}
	if !m.Transmitting() {
		t.Fatal("not transmitting after start")
	}
	if st := m.Status(0); st.State == types.ModemPattern {
		t.Fatal("pattern survived a data start")
	}
}

func TestStopIdempotent(t *testing.T) {
	m, mem := newTestModem()
	_ = m.Start([]byte{1}, TxConfig{RateHz: 10}, 0)
	m.Stop()
	writes := mem.Writes
	m.Stop()
	m.Stop()
	if mem.Writes != writes {
		t.Fatal("redundant Stop wrote to the LED")
	}
	if m.Busy() {
		t.Fatal("busy after stop")
	}
}

func TestPatternDefaultsAndStatus(t *testing.T) {
	m, mem := newTestModem()
	if err := m.StartPattern(PatternConfig{Kind: PatternBeacon}, 0); err != nil {
		t.Fatal(err)
	}
	st := m.Status(0)
	if st.State != types.ModemPattern || st.Pattern != "beacon" {
		t.Fatalf("status = %+v", st)
	}
	m.Update(0) // inside the flash window
	if !mem.On {
		t.Fatal("beacon flash not applied")
	}
	m.Update(500) // past the flash window of the default 1000 ms period
	if mem.On {
		t.Fatal("beacon not dark between flashes")
	}
}

func TestPatternKindParsing(t *testing.T) {
	for _, name := range []string{"pulse", "sweep", "beacon", "strobe"} {
		k, ok := ParsePatternKind(name)
		if !ok || k.String() != name {
			t.Errorf("ParsePatternKind(%q) = %v,%v", name, k, ok)
		}
	}
	if _, ok := ParsePatternKind("disco"); ok {
		t.Error("unknown pattern accepted")
	}
}
