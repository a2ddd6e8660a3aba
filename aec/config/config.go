/*
DESCRIPTION
  config.go provides Config, the static settings of an AEC engine instance.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config contains the configuration settings for the AEC engine.
package config

import "github.com/ausocean/utils/logging"

// Config provides the static settings of an AEC engine. A config is passed to
// the engine constructor and owned by the session that creates the engine.
// Default values for these fields are defined in variables.go.
type Config struct {
	// Logger holds an implementation of the Logger interface. This must be set
	// for the engine to work correctly.
	Logger logging.Logger

	// LogLevel is the engine logging verbosity level.
	// Valid values are defined by enums from the logger package: logging.Debug,
	// logging.Info, logging.Warning logging.Error, logging.Fatal.
	LogLevel int8

	// PreFlashMaxFrameWaitLimitAF is the number of nodes updates the pre-flash
	// sequence waits for autofocus to settle before carrying on without it.
	PreFlashMaxFrameWaitLimitAF uint

	// PreFlashMaxFrameWaitLimitAWB is the number of nodes updates the
	// pre-flash sequence waits for the AWB flash estimation.
	PreFlashMaxFrameWaitLimitAWB uint

	// PrecaptureWaitFrames is the number of stats frames the HAL AE state
	// reports precapture after a precapture trigger that did not need flash.
	PrecaptureWaitFrames uint

	// MainFlashSkipFrames is the number of stats frames after a main flash
	// capture for which the cached algorithm output is replayed.
	MainFlashSkipFrames uint

	MaxLEDMeasurements uint // Capacity of the LED calibration current table.
	LEDCalibration     bool // Turns LED calibration mode on at driver configuration.
	LEDMeasurements    uint // Number of measurement points in an LED calibration run.

	DisablePreFlash    bool // Ignore flash triggers; capture without pre-flash.
	PreFlashFaceAssist bool // Wait for face priority exposure during pre-flash.

	// EVStep is the exposure compensation step size in EV.
	EVStep float64

	CalibrationPath          string // Binary LED calibration table.
	TuningPath               string // CSV LED tuning file.
	InlineCalibrationPath    string // Opaque dynamic calibration blob.
	MaxInlineCalibrationSize uint   // Bytes.
}

// Validate checks for any errors in the config fields and defaults settings
// if particular parameters have not been defined.
func (c *Config) Validate() error {
	for _, v := range Variables {
		if v.Validate != nil {
			v.Validate(c)
		}
	}
	return nil
}

// Update takes a map of configuration variable names and their corresponding
// values, parses the string values and converting into correct type, and then
// sets the config struct fields as appropriate.
func (c *Config) Update(vars map[string]string) {
	for _, value := range Variables {
		if v, ok := vars[value.Name]; ok && value.Update != nil {
			value.Update(c, v)
		}
	}
}

func (c *Config) LogInvalidField(name string, def interface{}) {
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}
