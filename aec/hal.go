/*
DESCRIPTION
  hal.go provides HALParam, the application visible controls of a request,
  and the HAL facing AE state derived from the engine's state machines.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package aec

import "fmt"

// AEMode is the application requested AE mode.
type AEMode int

// AE modes.
const (
	AEModeOff AEMode = iota
	AEModeOn
	AEModeOnAutoFlash
	AEModeOnAlwaysFlash
	AEModeOnAutoFlashRedEye
	AEModeOnExternalFlash
)

// FlashMode is the application requested flash mode.
type FlashMode int

// Flash modes.
const (
	FlashModeOff FlashMode = iota
	FlashModeSingle
	FlashModeTorch
)

// AETrigger is the AE precapture trigger of a request.
type AETrigger int

// AE precapture triggers.
const (
	AETriggerIdle AETrigger = iota
	AETriggerStart
	AETriggerCancel
)

// AFTrigger is the AF trigger of a request.
type AFTrigger int

// AF triggers.
const (
	AFTriggerIdle AFTrigger = iota
	AFTriggerStart
	AFTriggerCancel
)

// SceneMode is the application requested scene mode.
type SceneMode int

// Scene modes.
const (
	SceneModeDisabled SceneMode = iota
	SceneModeFacePriority
	SceneModeAction
	SceneModePortrait
	SceneModeLandscape
	SceneModeNight
	SceneModeNightPortrait
	SceneModeTheatre
	SceneModeBeach
	SceneModeSnow
	SceneModeSunset
	SceneModeSteadyPhoto
	SceneModeFireworks
	SceneModeSports
	SceneModeParty
	SceneModeCandlelight
	SceneModeBarcode
	SceneModeHDR
)

// CaptureIntent is the purpose of a request.
type CaptureIntent int

// Capture intents.
const (
	CaptureIntentCustom CaptureIntent = iota
	CaptureIntentPreview
	CaptureIntentStillCapture
	CaptureIntentVideoRecord
	CaptureIntentVideoSnapshot
	CaptureIntentZeroShutterLag
	CaptureIntentManual
)

// Rect is a rectangle in sensor active array pixel coordinates.
type Rect struct {
	Left, Top, Width, Height int32
}

// WeightedROI is a region of interest. A zero weight means the region is
// not used.
type WeightedROI struct {
	Rect
	Weight uint32
}

// FPSRange is a frame rate range.
type FPSRange struct {
	Min, Max float32
}

// HALParam is the snapshot of application visible controls for one request.
type HALParam struct {
	AELock               bool
	AEMode               AEMode
	ExposureCompensation int32 // In EV steps.
	FlashMode            FlashMode

	// Manual exposure, used when AEMode is AEModeOff.
	ExposureTime uint64 // ns.
	ISO          int32

	MeteringROIs []WeightedROI
	FaceROIs     []WeightedROI
	TouchROI     WeightedROI
	TrackerROI   WeightedROI

	FPSRange      FPSRange
	AETrigger     AETrigger
	AFTrigger     AFTrigger
	SceneMode     SceneMode
	CaptureIntent CaptureIntent
}

// clone returns a copy of h that shares no memory with h.
// defaultHALParam returns the controls assumed before the first request:
// auto exposure without flash.
func defaultHALParam() HALParam { return HALParam{AEMode: AEModeOn} }

func (h HALParam) clone() HALParam {
	c := h
	c.MeteringROIs = append([]WeightedROI(nil), h.MeteringROIs...)
	c.FaceROIs = append([]WeightedROI(nil), h.FaceROIs...)
	return c
}

// fullManual reports whether the application is controlling exposure.
func (h *HALParam) fullManual() bool { return h.AEMode == AEModeOff }

// singleFlashManual reports whether a full manual request asks for flash.
func (h *HALParam) singleFlashManual() bool {
	return h.fullManual() && h.FlashMode == FlashModeSingle
}

// flashEnabled reports whether the AE mode allows the engine to fire flash.
func (h *HALParam) flashEnabled() bool {
	switch h.AEMode {
	case AEModeOnAutoFlash, AEModeOnAlwaysFlash, AEModeOnAutoFlashRedEye:
		return true
	}
	return false
}

// redEye reports whether red-eye reduction is requested.
func (h *HALParam) redEye() bool { return h.AEMode == AEModeOnAutoFlashRedEye }

// triggered reports whether h starts an AE precapture or an AF scan.
func (h *HALParam) triggered() bool {
	return h.AETrigger == AETriggerStart || h.AFTrigger == AFTriggerStart
}

// cancel reports whether h cancels a pre-flash sequence.
func (h *HALParam) cancel() bool {
	return h.AFTrigger == AFTriggerCancel || h.AETrigger == AETriggerCancel
}

// ControlAEState is the AE state reported to the application.
type ControlAEState int

// HAL AE states.
const (
	ControlAEStateInactive ControlAEState = iota
	ControlAEStateSearching
	ControlAEStateConverged
	ControlAEStateLocked
	ControlAEStateFlashRequired
	ControlAEStatePrecapture
)

func (s ControlAEState) String() string {
	switch s {
	case ControlAEStateInactive:
		return "Inactive"
	case ControlAEStateSearching:
		return "Searching"
	case ControlAEStateConverged:
		return "Converged"
	case ControlAEStateLocked:
		return "Locked"
	case ControlAEStateFlashRequired:
		return "FlashRequired"
	case ControlAEStatePrecapture:
		return "Precapture"
	}
	return fmt.Sprintf("ControlAEState(%d)", int(s))
}

// aeStateInputs are everything the HAL AE state depends on.
type aeStateInputs struct {
	aeModeOff        bool
	precaptureWait   uint
	locked           bool
	state            State
	preFlash         PreFlashState
	preFlashComplete bool
}

// controlAEState derives the HAL AE state. AE mode off overrides everything,
// then a precapture countdown, then lock unless mid-flash.
func controlAEState(in aeStateInputs) ControlAEState {
	switch {
	case in.aeModeOff:
		return ControlAEStateInactive
	case in.precaptureWait > 0:
		return ControlAEStatePrecapture
	case in.locked && in.state != StateFlash:
		return ControlAEStateLocked
	}

	switch in.state {
	case StateConverging, StateLEDCalibration:
		return ControlAEStateSearching
	case StateConverged:
		return ControlAEStateConverged
	case StateFlash:
		if !in.preFlashComplete {
			return ControlAEStatePrecapture
		}
		if in.preFlash == PreFlashCompleteNoLED {
			return ControlAEStateConverged
		}
		return ControlAEStateFlashRequired
	default:
		return ControlAEStateInactive
	}
}

// HALOutput is the externally visible state produced with each command.
type HALOutput struct {
	AEState              ControlAEState
	AEMode               AEMode
	ExposureCompensation int32
	FPSRange             FPSRange
	PreFlashState        PreFlashState
	FlashTrigger         FlashTrigger
	State                State
}
