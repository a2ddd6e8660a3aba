/*
DESCRIPTION
  hal_test.go provides testing for derivation of the HAL AE state.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package aec

import (
	"testing"

	"github.com/ausocean/aec/aec/config"
	"github.com/ausocean/aec/algo"
)

func TestControlAEState(t *testing.T) {
	tests := []struct {
		in   aeStateInputs
		want ControlAEState
	}{
		{in: aeStateInputs{aeModeOff: true, precaptureWait: 2, locked: true, state: StateConverged}, want: ControlAEStateInactive},
		{in: aeStateInputs{precaptureWait: 1, locked: true, state: StateConverged}, want: ControlAEStatePrecapture},
		{in: aeStateInputs{locked: true, state: StateConverging}, want: ControlAEStateLocked},
		{in: aeStateInputs{locked: true, state: StateFlash, preFlash: PreFlashTriggerAWB}, want: ControlAEStatePrecapture},
		{in: aeStateInputs{state: StateInactive}, want: ControlAEStateInactive},
		{in: aeStateInputs{state: StateManual}, want: ControlAEStateInactive},
		{in: aeStateInputs{state: StateConverging}, want: ControlAEStateSearching},
		{in: aeStateInputs{state: StateLEDCalibration}, want: ControlAEStateSearching},
		{in: aeStateInputs{state: StateConverged}, want: ControlAEStateConverged},
		{in: aeStateInputs{state: StateFlash, preFlash: PreFlashStart}, want: ControlAEStatePrecapture},
		{in: aeStateInputs{state: StateFlash, preFlash: PreFlashCompleteLED, preFlashComplete: true}, want: ControlAEStateFlashRequired},
		{in: aeStateInputs{state: StateFlash, preFlash: PreFlashRER, preFlashComplete: true}, want: ControlAEStateFlashRequired},
		{in: aeStateInputs{state: StateFlash, preFlash: PreFlashCompleteNoLED, preFlashComplete: true}, want: ControlAEStateConverged},
	}

	for i, test := range tests {
		got := controlAEState(test.in)
		if got != test.want {
			t.Errorf("did not get expected result for test %d\nwant: %s\ngot: %s", i, test.want, got)
		}
	}
}

func TestPrecaptureCountdown(t *testing.T) {
	e, alg, _ := converged(t, func(c *config.Config) { c.PrecaptureWaitFrames = 3 })

	out := perFrame(t, e, HALParam{AEMode: AEModeOn, AETrigger: AETriggerStart})
	if e.State() != StateConverged {
		t.Fatalf("entered pre-flash without flash, got: %s", e.State())
	}
	if out.HAL.AEState != ControlAEStatePrecapture {
		t.Errorf("did not get expected HAL state, got: %s", out.HAL.AEState)
	}
	for i := 0; i < 3; i++ {
		s := stats(t, e, alg, algo.FrameInfo{Settled: true})
		if s.HAL.AEState != ControlAEStatePrecapture {
			t.Errorf("frame %d: did not get expected HAL state, got: %s", i, s.HAL.AEState)
		}
	}
	s := stats(t, e, alg, algo.FrameInfo{Settled: true})
	if s.HAL.AEState != ControlAEStateConverged {
		t.Errorf("precapture did not end, got: %s", s.HAL.AEState)
	}
}

func TestAELock(t *testing.T) {
	e, alg, _ := converged(t, nil)
	out := perFrame(t, e, HALParam{AEMode: AEModeOn, AELock: true, ExposureCompensation: 3, FPSRange: FPSRange{Min: 7.5, Max: 30}})
	want := HALOutput{
		AEState:              ControlAEStateLocked,
		AEMode:               AEModeOn,
		ExposureCompensation: 3,
		FPSRange:             FPSRange{Min: 7.5, Max: 30},
		State:                StateConverged,
	}
	if out.HAL != want {
		t.Errorf("did not get expected result\nwant: %+v\ngot: %+v", want, out.HAL)
	}

	var lock algo.AELock
	var comp algo.ExposureCompensation
	for _, p := range alg.sets {
		switch p := p.(type) {
		case algo.AELock:
			lock = p
		case algo.ExposureCompensation:
			comp = p
		}
	}
	if !lock.Locked || comp.Steps != 3 || comp.DeltaEV != 0.5 {
		t.Errorf("did not get expected params, got: %v, %v", lock, comp)
	}
}

func TestDefaultAEMode(t *testing.T) {
	e, alg, _ := newTestEngine(t, nil)
	if got := e.HAL().AEMode; got != AEModeOn {
		t.Errorf("did not get expected AE mode of new engine, got: %d", got)
	}

	// Streaming with no per-frame request yet.
	handle(t, e, StartDriver{}, nil)
	handle(t, e, StartStreaming{}, nil)
	s := stats(t, e, alg, algo.FrameInfo{})
	if s.HAL.AEState != ControlAEStateSearching {
		t.Errorf("did not get expected HAL state before a request, got: %s", s.HAL.AEState)
	}

	perFrame(t, e, HALParam{AEMode: AEModeOff})
	handle(t, e, StopDriver{}, nil)
	if got := e.HAL().AEMode; got != AEModeOn {
		t.Errorf("did not get expected AE mode after stop, got: %d", got)
	}
}
