/*
DESCRIPTION
  command.go provides the commands accepted by Engine.HandleCommand and the
  input and output payload types that go with each of them.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package aec

import (
	"fmt"

	"github.com/ausocean/aec/algo"
	"github.com/ausocean/aec/calib"
)

// Command identifies an engine operation.
type Command int

// Engine commands.
const (
	CommandStartDriver Command = iota
	CommandStopDriver
	CommandConfigDriver
	CommandSetChromatix
	CommandStartStreaming
	CommandProcessStats
	CommandSetPerFrameControlParam
	CommandSetNodesUpdate
	CommandProcessHardwareInfo
	CommandProcessCropWindow
	CommandGetVendorTagFromAlgo
	CommandGetPubVendorTagFromAlgo
	CommandGetDefaultValues
	CommandSetPipelineDelay
	CommandGetLEDCalibrationConfig
	CommandLoadLEDCalibrationData
	CommandLoadLEDInlineCalibrationData
	CommandSetDCCalibrationData
	CommandProcessGYROStats
	CommandSetCameraInformation
	CommandSetFPSRange
)

var commandNames = [...]string{
	CommandStartDriver:                  "StartDriver",
	CommandStopDriver:                   "StopDriver",
	CommandConfigDriver:                 "ConfigDriver",
	CommandSetChromatix:                 "SetChromatix",
	CommandStartStreaming:               "StartStreaming",
	CommandProcessStats:                 "ProcessStats",
	CommandSetPerFrameControlParam:      "SetPerFrameControlParam",
	CommandSetNodesUpdate:               "SetNodesUpdate",
	CommandProcessHardwareInfo:          "ProcessHardwareInfo",
	CommandProcessCropWindow:            "ProcessCropWindow",
	CommandGetVendorTagFromAlgo:         "GetVendorTagFromAlgo",
	CommandGetPubVendorTagFromAlgo:      "GetPubVendorTagFromAlgo",
	CommandGetDefaultValues:             "GetDefaultValues",
	CommandSetPipelineDelay:             "SetPipelineDelay",
	CommandGetLEDCalibrationConfig:      "GetLEDCalibrationConfig",
	CommandLoadLEDCalibrationData:       "LoadLEDCalibrationData",
	CommandLoadLEDInlineCalibrationData: "LoadLEDInlineCalibrationData",
	CommandSetDCCalibrationData:         "SetDCCalibrationData",
	CommandProcessGYROStats:             "ProcessGYROStats",
	CommandSetCameraInformation:         "SetCameraInformation",
	CommandSetFPSRange:                  "SetFPSRange",
}

func (c Command) String() string {
	if c < 0 || int(c) >= len(commandNames) {
		return fmt.Sprintf("Command(%d)", int(c))
	}
	return commandNames[c]
}

// Input is the input payload of a command. Only the types in this file
// implement it.
type Input interface {
	// Command returns the command the payload belongs to.
	Command() Command
	input()
}

// StartDriver starts the algorithm session.
type StartDriver struct{}

// StopDriver stops the session and returns the engine to StateInactive.
type StopDriver struct{}

// ConfigDriver configures LED calibration. A zero Measurements uses the
// configured default.
type ConfigDriver struct {
	LEDCalibration bool
	Measurements   uint
}

// SetChromatix loads tuning data into the algorithm.
type SetChromatix struct {
	Data []byte
}

// StartStreaming starts streaming.
type StartStreaming struct{}

// ProcessStats carries one frame of statistics.
type ProcessStats struct {
	Stats algo.Stats
}

// SetPerFrameControlParam carries the application controls of a request.
type SetPerFrameControlParam struct {
	HAL HALParam
}

// AWBUpdate is the state published by auto white balance.
type AWBUpdate struct {
	ColorTemperature    uint32
	RGain, GGain, BGain float32
	Converged           bool

	// FlashEstimationDone is set once AWB has estimated the flash scene.
	FlashEstimationDone bool
}

// AFState is the state published by autofocus.
type AFState int

// AF states.
const (
	AFStateInactive AFState = iota
	AFStateScanning
	AFStateFocused
	AFStateNotFocused
)

// settled reports whether autofocus has finished, successfully or not.
func (s AFState) settled() bool { return s == AFStateFocused || s == AFStateNotFocused }

// SetNodesUpdate carries the state of the other 3A nodes for a frame.
type SetNodesUpdate struct {
	AFState AFState
	AWB     AWBUpdate

	// RERDone is set when the red-eye reduction sequence has finished.
	RERDone bool
}

// ProcessHardwareInfo describes the sensor and lens.
type ProcessHardwareInfo struct {
	Sensor     algo.SensorInfo
	FixedFocus bool
}

// ProcessCropWindow sets the sensor crop window in active array coordinates.
type ProcessCropWindow struct {
	Window Rect
}

// GetVendorTagFromAlgo requests the algorithm's vendor tags.
type GetVendorTagFromAlgo struct{}

// GetPubVendorTagFromAlgo requests the algorithm's public vendor tags.
type GetPubVendorTagFromAlgo struct{}

// GetDefaultValues requests the output to use before any stats.
type GetDefaultValues struct{}

// SetPipelineDelay sets the number of frames between a frame control and
// the frame it applies to.
type SetPipelineDelay struct {
	Frames uint32
}

// GetLEDCalibrationConfig requests the LED calibration configuration.
type GetLEDCalibrationConfig struct{}

// LoadLEDCalibrationData loads the stored LED calibration table into the
// algorithm.
type LoadLEDCalibrationData struct{}

// LoadLEDInlineCalibrationData loads the stored inline calibration blob into
// the algorithm.
type LoadLEDInlineCalibrationData struct{}

// SetDCCalibrationData loads dual camera calibration into the algorithm.
type SetDCCalibrationData struct {
	Data []byte
}

// ProcessGYROStats carries gyro samples for a frame.
type ProcessGYROStats struct {
	Samples []algo.GyroSample
}

// SetCameraInformation identifies the camera the engine serves.
type SetCameraInformation struct {
	Identity   algo.CameraIdentity
	DualCamera bool
}

// SetFPSRange sets the frame rate range.
type SetFPSRange struct {
	Range FPSRange
}

func (StartDriver) Command() Command                  { return CommandStartDriver }
func (StopDriver) Command() Command                   { return CommandStopDriver }
func (ConfigDriver) Command() Command                 { return CommandConfigDriver }
func (SetChromatix) Command() Command                 { return CommandSetChromatix }
func (StartStreaming) Command() Command               { return CommandStartStreaming }
func (ProcessStats) Command() Command                 { return CommandProcessStats }
func (SetPerFrameControlParam) Command() Command      { return CommandSetPerFrameControlParam }
func (SetNodesUpdate) Command() Command               { return CommandSetNodesUpdate }
func (ProcessHardwareInfo) Command() Command          { return CommandProcessHardwareInfo }
func (ProcessCropWindow) Command() Command            { return CommandProcessCropWindow }
func (GetVendorTagFromAlgo) Command() Command         { return CommandGetVendorTagFromAlgo }
func (GetPubVendorTagFromAlgo) Command() Command      { return CommandGetPubVendorTagFromAlgo }
func (GetDefaultValues) Command() Command             { return CommandGetDefaultValues }
func (SetPipelineDelay) Command() Command             { return CommandSetPipelineDelay }
func (GetLEDCalibrationConfig) Command() Command      { return CommandGetLEDCalibrationConfig }
func (LoadLEDCalibrationData) Command() Command       { return CommandLoadLEDCalibrationData }
func (LoadLEDInlineCalibrationData) Command() Command { return CommandLoadLEDInlineCalibrationData }
func (SetDCCalibrationData) Command() Command         { return CommandSetDCCalibrationData }
func (ProcessGYROStats) Command() Command             { return CommandProcessGYROStats }
func (SetCameraInformation) Command() Command         { return CommandSetCameraInformation }
func (SetFPSRange) Command() Command                  { return CommandSetFPSRange }

func (StartDriver) input()                  {}
func (StopDriver) input()                   {}
func (ConfigDriver) input()                 {}
func (SetChromatix) input()                 {}
func (StartStreaming) input()               {}
func (ProcessStats) input()                 {}
func (SetPerFrameControlParam) input()      {}
func (SetNodesUpdate) input()               {}
func (ProcessHardwareInfo) input()          {}
func (ProcessCropWindow) input()            {}
func (GetVendorTagFromAlgo) input()         {}
func (GetPubVendorTagFromAlgo) input()      {}
func (GetDefaultValues) input()             {}
func (SetPipelineDelay) input()             {}
func (GetLEDCalibrationConfig) input()      {}
func (LoadLEDCalibrationData) input()       {}
func (LoadLEDInlineCalibrationData) input() {}
func (SetDCCalibrationData) input()         {}
func (ProcessGYROStats) input()             {}
func (SetCameraInformation) input()         {}
func (SetFPSRange) input()                  {}

// Output is the output payload of a command. Only the pointer types in this
// file implement it.
type Output interface {
	output()
}

// StatsOutput is filled by ProcessStats and GetDefaultValues.
type StatsOutput struct {
	FrameControl algo.FrameControl
	FrameInfo    algo.FrameInfo
	HAL          HALOutput
}

// PerFrameOutput is filled by SetPerFrameControlParam. When MainFlash is
// set, FrameControl is the frame control of the main flash capture.
type PerFrameOutput struct {
	MainFlash    bool
	FrameControl algo.FrameControl
	HAL          HALOutput
}

// VendorTagOutput is filled by the vendor tag commands.
type VendorTagOutput struct {
	Tags []algo.VendorTag
}

// LEDCalibrationConfigOutput is filled by GetLEDCalibrationConfig.
type LEDCalibrationConfigOutput struct {
	Enabled      bool
	Measurements uint
	Completed    uint
	State        LEDCalibrationState
	Active       bool // Engine is in StateLEDCalibration.

	// Summary describes the points of the last completed run.
	Summary calib.Summary
}

func (*StatsOutput) output()                {}
func (*PerFrameOutput) output()             {}
func (*VendorTagOutput) output()            {}
func (*LEDCalibrationConfigOutput) output() {}
func (*HALOutput) output()                  {}

// outputRule is how a command treats its output payload.
type outputRule int

const (
	outputNone outputRule = iota
	outputOptional
	outputRequired
)

// checkOutput reports whether out is an acceptable output payload for cmd.
func checkOutput(cmd Command, out Output) bool {
	rule, ok := outputRuleOf(cmd, out)
	switch rule {
	case outputNone:
		return out == nil
	case outputOptional:
		return out == nil || ok
	default:
		return ok
	}
}

// outputRuleOf returns cmd's output rule and whether out is a non-nil value
// of the type cmd fills.
func outputRuleOf(cmd Command, out Output) (outputRule, bool) {
	switch cmd {
	case CommandProcessStats, CommandGetDefaultValues:
		o, ok := out.(*StatsOutput)
		return outputRequired, ok && o != nil
	case CommandSetPerFrameControlParam:
		o, ok := out.(*PerFrameOutput)
		return outputOptional, ok && o != nil
	case CommandSetNodesUpdate:
		o, ok := out.(*HALOutput)
		return outputOptional, ok && o != nil
	case CommandGetVendorTagFromAlgo, CommandGetPubVendorTagFromAlgo:
		o, ok := out.(*VendorTagOutput)
		return outputRequired, ok && o != nil
	case CommandGetLEDCalibrationConfig:
		o, ok := out.(*LEDCalibrationConfigOutput)
		return outputRequired, ok && o != nil
	}
	return outputNone, false
}
