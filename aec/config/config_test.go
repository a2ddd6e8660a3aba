/*
DESCRIPTION
  config_test.go provides testing for the Config struct methods (Validate and Update).

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"testing"

	"github.com/ausocean/utils/logging"
	"github.com/google/go-cmp/cmp"
)

type dumbLogger struct{}

func (dl *dumbLogger) Log(l int8, m string, a ...interface{})  {}
func (dl *dumbLogger) SetLevel(l int8)                         {}
func (dl *dumbLogger) Debug(msg string, args ...interface{})   {}
func (dl *dumbLogger) Info(msg string, args ...interface{})    {}
func (dl *dumbLogger) Warning(msg string, args ...interface{}) {}
func (dl *dumbLogger) Error(msg string, args ...interface{})   {}
func (dl *dumbLogger) Fatal(msg string, args ...interface{})   {}

func TestValidate(t *testing.T) {
	dl := &dumbLogger{}

	want := Config{
		Logger:                       dl,
		LogLevel:                     defaultVerbosity,
		PreFlashMaxFrameWaitLimitAF:  defaultPreFlashMaxFrameWaitAF,
		PreFlashMaxFrameWaitLimitAWB: defaultPreFlashMaxFrameWaitAWB,
		PrecaptureWaitFrames:         defaultPrecaptureWaitFrames,
		MainFlashSkipFrames:          defaultMainFlashSkipFrames,
		MaxLEDMeasurements:           defaultMaxLEDMeasurements,
		LEDMeasurements:              defaultLEDMeasurements,
		EVStep:                       defaultEVStep,
		MaxInlineCalibrationSize:     defaultMaxInlineCalibrationSize,
	}

	// An invalid log level, so the default is applied.
	got := Config{Logger: dl, LogLevel: 100}
	err := (&got).Validate()
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	if !cmp.Equal(got, want) {
		t.Errorf("configs not equal\nwant: %v\ngot: %v", want, got)
	}
}

func TestValidateMeasurementsBound(t *testing.T) {
	c := Config{Logger: &dumbLogger{}, MaxLEDMeasurements: 4, LEDMeasurements: 5}
	c.Validate()
	if c.LEDMeasurements != 4 {
		t.Errorf("LEDMeasurements not bounded by capacity, want: 4, got: %d", c.LEDMeasurements)
	}
}

func TestUpdate(t *testing.T) {
	updateMap := map[string]string{
		"CalibrationPath":              "/data/led.bin",
		"DisablePreFlash":              "true",
		"EVStep":                       "0.5",
		"InlineCalibrationPath":        "/data/inline.bin",
		"LEDCalibration":               "true",
		"LEDMeasurements":              "3",
		"logging":                      "Debug",
		"MainFlashSkipFrames":          "4",
		"MaxInlineCalibrationSize":     "2048",
		"MaxLEDMeasurements":           "16",
		"PrecaptureWaitFrames":         "5",
		"PreFlashFaceAssist":           "true",
		"PreFlashMaxFrameWaitLimitAF":  "12",
		"PreFlashMaxFrameWaitLimitAWB": "6",
		"TuningPath":                   "/data/led.csv",
	}

	dl := &dumbLogger{}

	want := Config{
		Logger:                       dl,
		CalibrationPath:              "/data/led.bin",
		DisablePreFlash:              true,
		EVStep:                       0.5,
		InlineCalibrationPath:        "/data/inline.bin",
		LEDCalibration:               true,
		LEDMeasurements:              3,
		LogLevel:                     logging.Debug,
		MainFlashSkipFrames:          4,
		MaxInlineCalibrationSize:     2048,
		MaxLEDMeasurements:           16,
		PrecaptureWaitFrames:         5,
		PreFlashFaceAssist:           true,
		PreFlashMaxFrameWaitLimitAF:  12,
		PreFlashMaxFrameWaitLimitAWB: 6,
		TuningPath:                   "/data/led.csv",
	}

	got := Config{Logger: dl}
	got.Update(updateMap)
	if !cmp.Equal(want, got) {
		t.Errorf("configs not equal\nwant: %v\ngot: %v", want, got)
	}
}
