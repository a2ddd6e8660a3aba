/*
DESCRIPTION
  simulator.go provides the frame loop that feeds the engine per-frame
  controls, rendered statistics and node updates.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"github.com/pkg/errors"

	"github.com/ausocean/aec/aec"
	"github.com/ausocean/aec/algo"
	"github.com/ausocean/aec/algo/sim"
	"github.com/ausocean/aec/device"
	"github.com/ausocean/utils/logging"
)

// Simulated sensor.
var sensor = algo.SensorInfo{
	MinGain:         1,
	MaxGain:         8,
	MinExposureTime: 100e3,
	MaxExposureTime: 33e6,
	MaxFPS:          30,
	ActiveWidth:     4032,
	ActiveHeight:    3024,
}

// Number of node updates the simulated AF and AWB take to settle during a
// pre-flash.
const (
	afSettleFrames  = 3
	awbSettleFrames = 2
)

// simulator drives an engine with frames of a simulated scene. The frame
// control returned for one frame exposes the next.
type simulator struct {
	e     *aec.Engine
	scene *sim.Scene
	flash device.Flash
	log   logging.Logger

	precapture int  // Frame of the AE precapture trigger; negative disables.
	capture    bool // Issue a still capture once the pre-flash completes.

	frame    uint64
	fc       algo.FrameControl
	afWait   int
	awbWait  int
	ready    bool // Pre-flash completed and a capture is due.
	captures int
}

func newSimulator(e *aec.Engine, s *sim.Scene, fl device.Flash, l logging.Logger) *simulator {
	return &simulator{e: e, scene: s, flash: fl, log: l, precapture: -1}
}

func (s *simulator) handle(in aec.Input, out aec.Output) error {
	return s.e.HandleCommand(in.Command(), in, out)
}

// start brings the engine up to streaming.
func (s *simulator) start() error {
	steps := []aec.Input{
		aec.StartDriver{},
		aec.SetCameraInformation{Identity: algo.CameraIdentity{Kind: algo.TypeMain}},
		aec.ProcessHardwareInfo{Sensor: sensor},
		aec.ConfigDriver{LEDCalibration: s.e.Config().LEDCalibration},
		aec.LoadLEDCalibrationData{},
		aec.LoadLEDInlineCalibrationData{},
		aec.StartStreaming{},
	}
	for _, in := range steps {
		err := s.handle(in, nil)
		if err != nil {
			return errors.Wrapf(err, "%s failed", in.Command())
		}
	}

	var def aec.StatsOutput
	err := s.handle(aec.GetDefaultValues{}, &def)
	if err != nil {
		return errors.Wrap(err, "could not get defaults")
	}
	s.fc = def.FrameControl
	s.log.Info(pkg+"engine streaming", "state", s.e.State().String())
	return nil
}

// stop stops the engine driver.
func (s *simulator) stop() {
	err := s.handle(aec.StopDriver{}, nil)
	if err != nil {
		s.log.Error(pkg+"could not stop driver", "error", err)
	}
}

// request returns the HAL controls of the current frame.
func (s *simulator) request() aec.HALParam {
	h := aec.HALParam{
		AEMode:        aec.AEModeOnAutoFlash,
		FPSRange:      aec.FPSRange{Min: 15, Max: 30},
		CaptureIntent: aec.CaptureIntentPreview,
	}
	if s.precapture >= 0 && s.frame == uint64(s.precapture) {
		h.AETrigger = aec.AETriggerStart
	}
	if s.ready && s.capture {
		h.CaptureIntent = aec.CaptureIntentStillCapture
		s.ready = false
	}
	return h
}

// nodes returns the simulated 3A node states for the current engine state.
func (s *simulator) nodes() aec.SetNodesUpdate {
	n := aec.SetNodesUpdate{
		AFState: aec.AFStateFocused,
		AWB:     aec.AWBUpdate{ColorTemperature: 5000, RGain: 1.9, GGain: 1, BGain: 1.6, Converged: true},
	}
	switch s.e.PreFlashState() {
	case aec.PreFlashTriggerAF:
		s.afWait++
		if s.afWait < afSettleFrames {
			n.AFState = aec.AFStateScanning
		}
	case aec.PreFlashTriggerAWB:
		s.awbWait++
		n.AWB.FlashEstimationDone = s.awbWait >= awbSettleFrames
	case aec.PreFlashRER:
		n.RERDone = true
	default:
		s.afWait, s.awbWait = 0, 0
	}
	return n
}

// step runs one frame: per-frame controls, statistics of the frame exposed
// with the previous frame control, then node updates.
func (s *simulator) step() error {
	defer func() { s.frame++ }()

	var pf aec.PerFrameOutput
	err := s.handle(aec.SetPerFrameControlParam{HAL: s.request()}, &pf)
	if err != nil {
		return errors.Wrap(err, "per frame control failed")
	}
	exposure := s.fc
	if pf.MainFlash {
		exposure = pf.FrameControl
		s.captures++
		s.log.Info(pkg+"main flash capture", "frame", s.frame, "currents", exposure.LEDCurrents)
	}

	err = s.flash.Apply(exposure.LEDCurrents)
	if err != nil {
		s.log.Warning(pkg+"could not apply flash currents", "error", err)
	}

	var so aec.StatsOutput
	err = s.handle(aec.ProcessStats{Stats: s.scene.Stats(s.frame, exposure)}, &so)
	if err != nil {
		return errors.Wrap(err, "process stats failed")
	}
	s.fc = so.FrameControl

	var hal aec.HALOutput
	err = s.handle(s.nodes(), &hal)
	if err != nil {
		return errors.Wrap(err, "nodes update failed")
	}
	if hal.AEState == aec.ControlAEStateFlashRequired && hal.PreFlashState == aec.PreFlashCompleteLED {
		s.ready = true
	}

	s.log.Debug(pkg+"frame",
		"frame", s.frame,
		"state", hal.State.String(),
		"preFlash", hal.PreFlashState.String(),
		"aeState", hal.AEState.String(),
		"luma", so.FrameInfo.Luma,
		"lux", so.FrameInfo.LuxIndex,
	)
	return nil
}
