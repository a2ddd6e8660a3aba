/*
DESCRIPTION
  request.go provides the closed set of queries that may be made of an
  Algorithm and the results they produce.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package algo

import "fmt"

// RequestType tags a Request.
type RequestType int

// Request types.
const (
	RequestFlashFrameControl RequestType = iota
	RequestStartExposure
	RequestMeasurementResult
	RequestVendorTags
	RequestDefaults
	RequestInlineCalibration
	numRequestTypes
)

var requestTypeNames = [numRequestTypes]string{
	"FlashFrameControl",
	"StartExposure",
	"MeasurementResult",
	"VendorTags",
	"Defaults",
	"InlineCalibration",
}

func (t RequestType) String() string {
	if t < 0 || t >= numRequestTypes {
		return fmt.Sprintf("RequestType(%d)", int(t))
	}
	return requestTypeNames[t]
}

// Request is a query understood by an Algorithm.
type Request interface {
	Type() RequestType
	request()
}

// FlashFrameControlRequest asks for the exposure to use for the main flash
// capture. Result: FrameControl.
type FlashFrameControlRequest struct{}

// StartExposureRequest asks for the start exposure of an LED measurement
// point, including the LED currents for the point. Result: FrameControl.
type StartExposureRequest struct{ Index uint32 }

// MeasurementResultRequest asks for the status of an LED measurement point.
// Result: MeasurementResult.
type MeasurementResultRequest struct{ Index uint32 }

// VendorTagsRequest asks for the vendor tags the algorithm publishes.
// Result: VendorTags.
type VendorTagsRequest struct{ Public bool }

// DefaultsRequest asks for the frame control to use before any stats have
// been processed. Result: Output.
type DefaultsRequest struct{}

// InlineCalibrationRequest asks for the dynamic calibration blob built during
// an LED calibration run. Result: InlineCalibration.
type InlineCalibrationRequest struct{}

func (FlashFrameControlRequest) Type() RequestType { return RequestFlashFrameControl }
func (StartExposureRequest) Type() RequestType     { return RequestStartExposure }
func (MeasurementResultRequest) Type() RequestType { return RequestMeasurementResult }
func (VendorTagsRequest) Type() RequestType        { return RequestVendorTags }
func (DefaultsRequest) Type() RequestType          { return RequestDefaults }
func (InlineCalibrationRequest) Type() RequestType { return RequestInlineCalibration }

func (FlashFrameControlRequest) request() {}
func (StartExposureRequest) request()     {}
func (MeasurementResultRequest) request() {}
func (VendorTagsRequest) request()        {}
func (DefaultsRequest) request()          {}
func (InlineCalibrationRequest) request() {}

// Result is the answer to a Request.
type Result interface{ result() }

// MeasurementStatus is the status of an LED measurement point or run.
type MeasurementStatus int

// Measurement statuses.
const (
	MeasurementOngoing MeasurementStatus = iota
	MeasurementPass
	MeasurementFail
	MeasurementBreak
)

func (s MeasurementStatus) String() string {
	switch s {
	case MeasurementOngoing:
		return "Ongoing"
	case MeasurementPass:
		return "Pass"
	case MeasurementFail:
		return "Fail"
	case MeasurementBreak:
		return "Break"
	}
	return fmt.Sprintf("MeasurementStatus(%d)", int(s))
}

// MeasurementResult is the status of LED measurement point Index and of the
// run as a whole, with the ratios measured for the point once it is done.
type MeasurementResult struct {
	Index   uint32
	Point   MeasurementStatus
	Overall MeasurementStatus
	Ratio   LEDRatio
}

// VendorTag is a metadata tag published by the algorithm.
type VendorTag struct {
	Section string
	Name    string
	Data    []byte
}

// VendorTags is a list of vendor tags.
type VendorTags struct{ Tags []VendorTag }

func (FrameControl) result()      {}
func (MeasurementResult) result() {}
func (VendorTags) result()        {}
func (Output) result()            {}
func (InlineCalibration) result() {}
