/*
DESCRIPTION
  flash_test.go provides testing for the I2C flash driver using a simulated
  bus.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package flash

import (
	"errors"
	"testing"

	"github.com/ausocean/utils/logging"
	"github.com/google/go-cmp/cmp"

	"github.com/ausocean/aec/algo"
	"github.com/ausocean/aec/device"
)

type write struct {
	addr, reg, value byte
}

// fakeBus is a register file that records writes.
type fakeBus struct {
	regs    map[byte]byte
	writes  []write
	readErr error
	closed  bool
}

func newFakeBus() *fakeBus {
	return &fakeBus{regs: map[byte]byte{regDeviceID: 0x02}}
}

func (b *fakeBus) WriteByteToReg(addr, reg, value byte) error {
	b.writes = append(b.writes, write{addr, reg, value})
	b.regs[reg] = value
	return nil
}

func (b *fakeBus) ReadByteFromReg(addr, reg byte) (byte, error) {
	if b.readErr != nil {
		return 0, b.readErr
	}
	return b.regs[reg], nil
}

func (b *fakeBus) Close() error {
	b.closed = true
	return nil
}

func newTestFlash(t *testing.T, bus *fakeBus) *Flash {
	t.Helper()
	f := NewWithBus((*logging.TestLogger)(t), func(n byte) Bus { return bus })
	err := f.Set(device.Config{Bus: 1, Address: 0x63, MaxCurrent: 1000, Timeout: 400})
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	return f
}

func TestSet(t *testing.T) {
	f := NewWithBus((*logging.TestLogger)(t), nil)
	err := f.Set(device.Config{Bus: -1})
	var me device.MultiError
	if !errors.As(err, &me) || len(me) != 4 {
		t.Fatalf("did not get expected errors, got: %v", err)
	}
	want := device.Config{Bus: defaultBus, Address: defaultAddress, MaxCurrent: defaultMaxCurrent, Timeout: defaultTimeout}
	if !cmp.Equal(f.cfg, want) {
		t.Errorf("did not get expected config\nwant: %v\ngot: %v", want, f.cfg)
	}
}

func TestApply(t *testing.T) {
	bus := newFakeBus()
	f := newTestFlash(t, bus)

	err := f.Apply([algo.NumLEDs]uint32{100, 100})
	if err == nil {
		t.Errorf("expected error applying before start")
	}

	err = f.Start()
	if err != nil {
		t.Fatalf("could not start: %v", err)
	}
	if bus.regs[regTiming] != 10 {
		t.Errorf("did not get expected timeout code, got: %d", bus.regs[regTiming])
	}

	tests := []struct {
		currents   [algo.NumLEDs]uint32
		led1, led2 byte
		enable     byte
	}{
		{currents: [algo.NumLEDs]uint32{1000, 0}, led1: brightnessMax, led2: 0, enable: enableFlash | enableLED1},
		{currents: [algo.NumLEDs]uint32{500, 2000}, led1: 64, led2: brightnessMax, enable: enableFlash | enableLED1 | enableLED2},
		{currents: [algo.NumLEDs]uint32{0, 0}, led1: 0, led2: 0, enable: 0},
	}
	for i, test := range tests {
		err = f.Apply(test.currents)
		if err != nil {
			t.Fatalf("test %d: did not expect error: %v", i, err)
		}
		got := [3]byte{bus.regs[regLED1Flash], bus.regs[regLED2Flash], bus.regs[regEnable]}
		want := [3]byte{test.led1, test.led2, test.enable}
		if got != want {
			t.Errorf("did not get expected result for test %d\nwant: %v\ngot: %v", i, want, got)
		}
	}

	n := len(bus.writes)
	f.Apply([algo.NumLEDs]uint32{0, 0})
	if len(bus.writes) != n {
		t.Errorf("unchanged currents were rewritten")
	}

	err = f.Stop()
	if err != nil || !bus.closed || f.IsRunning() {
		t.Errorf("did not stop cleanly, err: %v", err)
	}
}

func TestThermalFault(t *testing.T) {
	bus := newFakeBus()
	f := newTestFlash(t, bus)
	if err := f.Start(); err != nil {
		t.Fatalf("could not start: %v", err)
	}
	bus.regs[regFlags] = flagThermal
	if err := f.Apply([algo.NumLEDs]uint32{100, 100}); err == nil {
		t.Errorf("expected thermal fault error")
	}
}

func TestStartNoDevice(t *testing.T) {
	bus := newFakeBus()
	bus.readErr = errors.New("no ack")
	f := newTestFlash(t, bus)
	if err := f.Start(); err == nil || f.IsRunning() {
		t.Errorf("expected start to fail without a device")
	}
	if !bus.closed {
		t.Errorf("bus not closed after failed start")
	}
}

func TestBrightness(t *testing.T) {
	tests := []struct {
		mA, max uint32
		want    byte
	}{
		{0, 1000, 0},
		{1, 1000, 1},
		{1000, 1000, brightnessMax},
		{5000, 1000, brightnessMax},
		{100, 0, 0},
	}
	for _, test := range tests {
		if got := brightness(test.mA, test.max); got != test.want {
			t.Errorf("did not get expected result for %d mA\nwant: %d\ngot: %d", test.mA, test.want, got)
		}
	}
}
