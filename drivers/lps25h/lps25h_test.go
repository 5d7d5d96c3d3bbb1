package lps25h

import (
	"errors"
	"sync"
	"testing"

	"tinygo.org/x/drivers"
)

// Compile-time check.
var _ drivers.I2C = (*fakeI2C)(nil)

// Scripted LPS25H-like register file.
type fakeI2C struct {
	mu     sync.Mutex
	absent bool
	regs   [64]byte
	writes [][]byte
}

func newFakeLPS25H() *fakeI2C {
	f := &fakeI2C{}
	f.regs[regWhoAmI] = whoAmIValue
	return f
}

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.absent || addr != Address {
		return errors.New("nack")
	}
	if len(w) == 0 {
		return nil
	}
	reg := int(w[0] &^ autoIncrement)
	if len(w) > 1 {
		f.writes = append(f.writes, append([]byte(nil), w...))
		copy(f.regs[reg:], w[1:])
	}
	copy(r, f.regs[reg:])
	return nil
}

func TestConfigurePowersUp(t *testing.T) {
	bus := newFakeLPS25H()
	d := New(bus)
	if err := d.Configure(Config{}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if len(bus.writes) != 1 {
		t.Fatalf("expected one register write, got %d", len(bus.writes))
	}
	if got := bus.regs[regCtrl1]; got != 0x94 {
		t.Fatalf("CTRL_REG1 = %#x (want 0x94)", got)
	}
}

func TestConfigureRejectsWrongIdentity(t *testing.T) {
	bus := newFakeLPS25H()
	bus.regs[regWhoAmI] = 0xB1 // LPS22HB
	d := New(bus)
	if err := d.Configure(Config{}); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if len(bus.writes) != 0 {
		t.Fatal("must not write control registers on identity mismatch")
	}
}

func TestConfigureAbsentDevice(t *testing.T) {
	bus := newFakeLPS25H()
	bus.absent = true
	d := New(bus)
	if err := d.Configure(Config{}); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestReadsBeforeConfigure(t *testing.T) {
	d := New(newFakeLPS25H())
	if _, err := d.ReadPressure(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("pressure: %v", err)
	}
	if _, err := d.ReadTemperature(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("temperature: %v", err)
	}
}

func TestFixedPointConversions(t *testing.T) {
	bus := newFakeLPS25H()
	d := New(bus)
	if err := d.Configure(Config{DataRate: Rate25Hz}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if got := bus.regs[regCtrl1]; got != 0xC4 {
		t.Fatalf("CTRL_REG1 = %#x (want 0xC4)", got)
	}

	// 1013.25 hPa = 4150272 LSB = 0x3F5400.
	bus.regs[regPressOutXL] = 0x00
	bus.regs[regPressOutXL+1] = 0x54
	bus.regs[regPressOutXL+2] = 0x3F
	p, err := d.ReadPressure()
	if err != nil || p != 1_013_250 {
		t.Fatalf("pressure = %d, %v (want 1013250)", p, err)
	}

	// 25.0 °C = (25 - 42.5) * 480 = -8400 = 0xDF30.
	bus.regs[regTempOutL] = 0x30
	bus.regs[regTempOutL+1] = 0xDF
	c, err := d.ReadTemperature()
	if err != nil || c != 25_000 {
		t.Fatalf("temperature = %d, %v (want 25000)", c, err)
	}
}
