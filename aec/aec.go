/*
DESCRIPTION
  aec.go provides the states of the AEC engine's exposure state machine and
  of its nested pre-flash and LED calibration machines.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package aec provides an automatic exposure control engine. The engine
// arbitrates between streaming, manual, pre-flash and LED calibration
// operation of an exposure algorithm, one command at a time, where each
// command corresponds to part of the processing of one camera frame.
//
// An Engine performs no locking; callers serialise calls to HandleCommand.
package aec

import (
	"errors"
	"fmt"

	"github.com/ausocean/aec/algo"
)

// Errors returned by the engine.
var (
	ErrInvalidState    = errors.New("invalid state")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNoMemory        = errors.New("capacity exceeded")

	ErrUnsupported = algo.ErrUnsupported
	ErrFailed      = algo.ErrFailed
)

// State is the state of the exposure state machine.
type State int

// Exposure states.
const (
	StateInactive State = iota
	StateManual
	StateConverging
	StateConverged
	StateFlash
	StateLEDCalibration
)

func (s State) String() string {
	switch s {
	case StateInactive:
		return "Inactive"
	case StateManual:
		return "Manual"
	case StateConverging:
		return "Converging"
	case StateConverged:
		return "Converged"
	case StateFlash:
		return "Flash"
	case StateLEDCalibration:
		return "LEDCalibration"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// PreFlashState is the state of the pre-flash sequence, meaningful while the
// engine is in StateFlash.
type PreFlashState int

// Pre-flash states.
const (
	PreFlashInactive PreFlashState = iota
	PreFlashStart
	PreFlashTriggerFD
	PreFlashTriggerAF
	PreFlashTriggerAWB
	PreFlashCompleteLED
	PreFlashCompleteNoLED
	PreFlashRER
)

func (s PreFlashState) String() string {
	switch s {
	case PreFlashInactive:
		return "Inactive"
	case PreFlashStart:
		return "Start"
	case PreFlashTriggerFD:
		return "TriggerFD"
	case PreFlashTriggerAF:
		return "TriggerAF"
	case PreFlashTriggerAWB:
		return "TriggerAWB"
	case PreFlashCompleteLED:
		return "CompleteLED"
	case PreFlashCompleteNoLED:
		return "CompleteNoLED"
	case PreFlashRER:
		return "RER"
	}
	return fmt.Sprintf("PreFlashState(%d)", int(s))
}

// LEDCalibrationState is the state of an LED calibration run, meaningful
// while the engine is in StateLEDCalibration.
type LEDCalibrationState int

// LED calibration states.
const (
	LEDCalibrationReady LEDCalibrationState = iota
	LEDCalibrationCollecting
	LEDCalibrationPartialComplete
	LEDCalibrationComplete
)

func (s LEDCalibrationState) String() string {
	switch s {
	case LEDCalibrationReady:
		return "Ready"
	case LEDCalibrationCollecting:
		return "Collecting"
	case LEDCalibrationPartialComplete:
		return "PartialComplete"
	case LEDCalibrationComplete:
		return "Complete"
	}
	return fmt.Sprintf("LEDCalibrationState(%d)", int(s))
}

// FlashTrigger is what started the current pre-flash sequence. LED assisted
// autofocus takes priority over an AE precapture trigger.
type FlashTrigger int

// Flash triggers.
const (
	FlashTriggerInvalid FlashTrigger = iota
	FlashTriggerAE
	FlashTriggerLEDAF
)

func (t FlashTrigger) String() string {
	switch t {
	case FlashTriggerInvalid:
		return "Invalid"
	case FlashTriggerAE:
		return "AE"
	case FlashTriggerLEDAF:
		return "LEDAF"
	}
	return fmt.Sprintf("FlashTrigger(%d)", int(t))
}
