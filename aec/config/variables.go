/*
DESCRIPTION
  variables.go contains a list of structs that provide a variable Name, type in
  a string format, a function for updating the variable in the Config struct
  from a string, and finally, a validation function to check the validity of the
  corresponding field value in the Config.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ausocean/utils/logging"
	"github.com/ausocean/utils/sliceutils"
)

// Config map Keys.
const (
	KeyCalibrationPath              = "CalibrationPath"
	KeyDisablePreFlash              = "DisablePreFlash"
	KeyEVStep                       = "EVStep"
	KeyInlineCalibrationPath        = "InlineCalibrationPath"
	KeyLEDCalibration               = "LEDCalibration"
	KeyLEDMeasurements              = "LEDMeasurements"
	KeyLogging                      = "logging"
	KeyMainFlashSkipFrames          = "MainFlashSkipFrames"
	KeyMaxInlineCalibrationSize     = "MaxInlineCalibrationSize"
	KeyMaxLEDMeasurements           = "MaxLEDMeasurements"
	KeyPrecaptureWaitFrames         = "PrecaptureWaitFrames"
	KeyPreFlashFaceAssist           = "PreFlashFaceAssist"
	KeyPreFlashMaxFrameWaitLimitAF  = "PreFlashMaxFrameWaitLimitAF"
	KeyPreFlashMaxFrameWaitLimitAWB = "PreFlashMaxFrameWaitLimitAWB"
	KeyTuningPath                   = "TuningPath"
)

// Config map parameter types.
const (
	typeString = "string"
	typeUint   = "uint"
	typeBool   = "bool"
	typeFloat  = "float"
)

// Default variable values.
const (
	defaultVerbosity                = logging.Error
	defaultPreFlashMaxFrameWaitAF   = 30
	defaultPreFlashMaxFrameWaitAWB  = 10
	defaultPrecaptureWaitFrames     = 3
	defaultMainFlashSkipFrames      = 2
	defaultMaxLEDMeasurements       = 64
	defaultLEDMeasurements          = 10
	defaultEVStep                   = 1.0 / 6
	defaultMaxInlineCalibrationSize = 1 << 20 // Bytes.

	// Upper bounds.
	maxFrameWait       = 300
	maxLEDMeasurements = 1024
)

var logLevels = []string{"Debug", "Info", "Warning", "Error", "Fatal"}

// Variables describes the variables that can be used for engine control.
// These structs provide the name and type of variable, a function for updating
// this variable in a Config, and a function for validating the value of the variable.
// MaxLEDMeasurements precedes LEDMeasurements so the latter validates against
// a valid capacity.
var Variables = []struct {
	Name     string
	Type     string
	Update   func(*Config, string)
	Validate func(*Config)
}{
	{
		Name:   KeyCalibrationPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.CalibrationPath = v },
	},
	{
		Name:   KeyDisablePreFlash,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.DisablePreFlash = parseBool(KeyDisablePreFlash, v, c) },
	},
	{
		Name: KeyEVStep,
		Type: typeFloat,
		Update: func(c *Config, v string) {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				c.Logger.Warning("invalid EVStep param", "value", v)
			}
			c.EVStep = f
		},
		Validate: func(c *Config) {
			if c.EVStep <= 0 || c.EVStep > 1 {
				c.LogInvalidField(KeyEVStep, defaultEVStep)
				c.EVStep = defaultEVStep
			}
		},
	},
	{
		Name:   KeyInlineCalibrationPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.InlineCalibrationPath = v },
	},
	{
		Name:   KeyLEDCalibration,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.LEDCalibration = parseBool(KeyLEDCalibration, v, c) },
	},
	{
		Name:   KeyMaxLEDMeasurements,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.MaxLEDMeasurements = parseUint(KeyMaxLEDMeasurements, v, c) },
		Validate: func(c *Config) {
			if c.MaxLEDMeasurements <= 0 || c.MaxLEDMeasurements > maxLEDMeasurements {
				c.LogInvalidField(KeyMaxLEDMeasurements, defaultMaxLEDMeasurements)
				c.MaxLEDMeasurements = defaultMaxLEDMeasurements
			}
		},
	},
	{
		Name:   KeyLEDMeasurements,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.LEDMeasurements = parseUint(KeyLEDMeasurements, v, c) },
		Validate: func(c *Config) {
			if c.LEDMeasurements <= 0 || c.LEDMeasurements > c.MaxLEDMeasurements {
				def := uint(defaultLEDMeasurements)
				if def > c.MaxLEDMeasurements {
					def = c.MaxLEDMeasurements
				}
				c.LogInvalidField(KeyLEDMeasurements, def)
				c.LEDMeasurements = def
			}
		},
	},
	{
		Name: KeyLogging,
		Type: "enum:" + strings.Join(logLevels, ","),
		Update: func(c *Config, v string) {
			if !sliceutils.ContainsString(logLevels, v) {
				c.Logger.Warning("invalid Logging param", "value", v)
				return
			}
			switch v {
			case "Debug":
				c.LogLevel = logging.Debug
			case "Info":
				c.LogLevel = logging.Info
			case "Warning":
				c.LogLevel = logging.Warning
			case "Error":
				c.LogLevel = logging.Error
			case "Fatal":
				c.LogLevel = logging.Fatal
			}
		},
		Validate: func(c *Config) {
			switch c.LogLevel {
			case logging.Debug, logging.Info, logging.Warning, logging.Error, logging.Fatal:
			default:
				c.LogInvalidField("LogLevel", defaultVerbosity)
				c.LogLevel = defaultVerbosity
			}
		},
	},
	{
		Name:   KeyMainFlashSkipFrames,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.MainFlashSkipFrames = parseUint(KeyMainFlashSkipFrames, v, c) },
		Validate: func(c *Config) {
			c.MainFlashSkipFrames = lessThanOrEqual(KeyMainFlashSkipFrames, c.MainFlashSkipFrames, 0, c, defaultMainFlashSkipFrames)
		},
	},
	{
		Name:   KeyMaxInlineCalibrationSize,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.MaxInlineCalibrationSize = parseUint(KeyMaxInlineCalibrationSize, v, c) },
		Validate: func(c *Config) {
			c.MaxInlineCalibrationSize = lessThanOrEqual(KeyMaxInlineCalibrationSize, c.MaxInlineCalibrationSize, 0, c, defaultMaxInlineCalibrationSize)
		},
	},
	{
		Name:   KeyPrecaptureWaitFrames,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.PrecaptureWaitFrames = parseUint(KeyPrecaptureWaitFrames, v, c) },
		Validate: func(c *Config) {
			c.PrecaptureWaitFrames = lessThanOrEqual(KeyPrecaptureWaitFrames, c.PrecaptureWaitFrames, 0, c, defaultPrecaptureWaitFrames)
		},
	},
	{
		Name:   KeyPreFlashFaceAssist,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.PreFlashFaceAssist = parseBool(KeyPreFlashFaceAssist, v, c) },
	},
	{
		Name:   KeyPreFlashMaxFrameWaitLimitAF,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.PreFlashMaxFrameWaitLimitAF = parseUint(KeyPreFlashMaxFrameWaitLimitAF, v, c) },
		Validate: func(c *Config) {
			if c.PreFlashMaxFrameWaitLimitAF <= 0 || c.PreFlashMaxFrameWaitLimitAF > maxFrameWait {
				c.LogInvalidField(KeyPreFlashMaxFrameWaitLimitAF, defaultPreFlashMaxFrameWaitAF)
				c.PreFlashMaxFrameWaitLimitAF = defaultPreFlashMaxFrameWaitAF
			}
		},
	},
	{
		Name:   KeyPreFlashMaxFrameWaitLimitAWB,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.PreFlashMaxFrameWaitLimitAWB = parseUint(KeyPreFlashMaxFrameWaitLimitAWB, v, c) },
		Validate: func(c *Config) {
			if c.PreFlashMaxFrameWaitLimitAWB <= 0 || c.PreFlashMaxFrameWaitLimitAWB > maxFrameWait {
				c.LogInvalidField(KeyPreFlashMaxFrameWaitLimitAWB, defaultPreFlashMaxFrameWaitAWB)
				c.PreFlashMaxFrameWaitLimitAWB = defaultPreFlashMaxFrameWaitAWB
			}
		},
	},
	{
		Name:   KeyTuningPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.TuningPath = v },
	},
}

func parseUint(n, v string, c *Config) uint {
	_v, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("expected unsigned int for param %s", n), "value", v)
	}
	return uint(_v)
}

func parseBool(n, v string, c *Config) (b bool) {
	switch strings.ToLower(v) {
	case "true":
		b = true
	case "false":
		b = false
	default:
		c.Logger.Warning(fmt.Sprintf("expect bool for param %s", n), "value", v)
	}
	return
}

func lessThanOrEqual(n string, v, cmp uint, c *Config, def uint) uint {
	if v <= cmp {
		c.LogInvalidField(n, def)
		return def
	}
	return v
}
