/*
DESCRIPTION
  framecontrol.go provides FrameControl, the per-frame exposure output of the
  algorithm that is programmed into the sensor, flash and stats hardware.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package algo

// ExposureIndex selects one of the exposures computed for a frame.
type ExposureIndex int

// Exposure indexes.
const (
	ExposureShort ExposureIndex = iota
	ExposureLong
	ExposureSafe
	NumExposures
)

// NumLEDs is the number of LEDs in a dual-LED flash module.
const NumLEDs = 2

// ExposureData is one exposure solution.
type ExposureData struct {
	Gain         float32
	ExposureTime uint64 // ns.
	Sensitivity  float32
	DeltaEV      float32
}

// StatsConfig is the stats block configuration to apply to future frames.
type StatsConfig struct {
	HorizontalRegions uint32
	VerticalRegions   uint32
	ROI               WeightedRect
}

// APEXData holds the APEX values of the exposure, used for image metadata.
type APEXData struct {
	Brightness float32
	Aperture   float32
	Speed      float32
	Time       float32
	Exposure   float32
}

// FrameControl is the per-frame output bundle of the algorithm.
type FrameControl struct {
	Exposure    [NumExposures]ExposureData
	LEDCurrents [NumLEDs]uint32 // mA.
	LuxIndex    float32
	StatsConfig StatsConfig
	APEX        APEXData

	// AdditionalInfo is algorithm private metadata, forwarded untouched.
	AdditionalInfo []byte
}

// LEDOn reports whether any LED carries current in fc.
func (fc FrameControl) LEDOn() bool {
	for _, c := range fc.LEDCurrents {
		if c != 0 {
			return true
		}
	}
	return false
}
