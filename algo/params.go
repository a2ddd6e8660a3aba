/*
DESCRIPTION
  params.go provides the closed set of parameters that may be pushed into an
  Algorithm, or attached to a query or process call.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package algo

import "fmt"

// ParamType tags a Param.
type ParamType int

// Parameter types.
const (
	ParamCameraIdentity ParamType = iota
	ParamChromatix
	ParamOperationMode
	ParamAELock
	ParamExposureMode
	ParamFlashMode
	ParamScene
	ParamExposureCompensation
	ParamManualSetting
	ParamFPSRange
	ParamROIList
	ParamSensorInfo
	ParamCropWindow
	ParamAWBState
	ParamDualCamera
	ParamPipelineDelay
	ParamGyroStats
	ParamLEDCalibration
	ParamInlineCalibration
	ParamDCCalibration
	numParamTypes
)

var paramTypeNames = [numParamTypes]string{
	"CameraIdentity",
	"Chromatix",
	"OperationMode",
	"AELock",
	"ExposureMode",
	"FlashMode",
	"Scene",
	"ExposureCompensation",
	"ManualSetting",
	"FPSRange",
	"ROIList",
	"SensorInfo",
	"CropWindow",
	"AWBState",
	"DualCamera",
	"PipelineDelay",
	"GyroStats",
	"LEDCalibration",
	"InlineCalibration",
	"DCCalibration",
}

func (t ParamType) String() string {
	if t < 0 || t >= numParamTypes {
		return fmt.Sprintf("ParamType(%d)", int(t))
	}
	return paramTypeNames[t]
}

// Param is a parameter understood by an Algorithm. The set of
// implementations is closed to this package.
type Param interface {
	Type() ParamType
	param()
}

// CameraRole is the role a camera plays in a multi-camera rig.
type CameraRole int

// Camera roles.
const (
	RoleDefault CameraRole = iota
	RoleWide
	RoleTele
	RoleUltraWide
)

// CameraType is the kind of camera being served.
type CameraType int

// Camera types.
const (
	TypeDefault CameraType = iota
	TypeMain
	TypeAux
	TypeLogical
)

// CameraIdentity identifies the physical or logical camera being served. It is
// attached to every call made through an Adapter.
type CameraIdentity struct {
	ID   uint32
	Role CameraRole
	Kind CameraType
}

// Mode is the operating mode of the algorithm.
type Mode int

// Operating modes.
const (
	ModeIdle Mode = iota
	ModeStreaming
	ModePreflash
	ModeRedEye
	ModeFlashMeasurement
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "Idle"
	case ModeStreaming:
		return "Streaming"
	case ModePreflash:
		return "Preflash"
	case ModeRedEye:
		return "RedEye"
	case ModeFlashMeasurement:
		return "FlashMeasurement"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// OperationMode switches the algorithm's operating mode. MeasurementIndex is
// the measurement point to run when Mode is ModeFlashMeasurement.
type OperationMode struct {
	Mode             Mode
	MeasurementIndex uint32
}

// Chromatix carries tuning data.
type Chromatix struct{ Data []byte }

// AELock locks or unlocks the exposure.
type AELock struct{ Locked bool }

// ExposureModeKind is the algorithm's exposure control mode.
type ExposureModeKind int

// Exposure control modes.
const (
	ExposureAuto ExposureModeKind = iota
	ExposureManual
	ExposureShutterPriority
	ExposureISOPriority
)

// ExposureMode sets the exposure control mode.
type ExposureMode struct{ Mode ExposureModeKind }

// FlashModeKind is the algorithm's view of how the flash may be used.
type FlashModeKind int

// Flash modes.
const (
	FlashOff FlashModeKind = iota
	FlashAuto
	FlashOn
	FlashRedEye
	FlashTorch
	FlashSingle
)

// FlashMode sets the flash mode.
type FlashMode struct{ Mode FlashModeKind }

// SceneKind is a scene the algorithm can bias its metering toward.
type SceneKind int

// Scenes.
const (
	SceneAuto SceneKind = iota
	SceneAction
	ScenePortrait
	SceneLandscape
	SceneNight
	SceneBeach
	SceneSnow
	SceneSunset
	SceneFireworks
	SceneSports
	SceneCandlelight
	SceneBacklight
)

// Scene sets the scene mode.
type Scene struct{ Scene SceneKind }

// ExposureCompensation biases the exposure target by DeltaEV.
type ExposureCompensation struct {
	Steps   int32
	DeltaEV float32
}

// ManualSetting gives the exposure to use under manual exposure.
type ManualSetting struct {
	ExposureTime uint64 // ns, 0 for automatic.
	ISO          int32  // 0 for automatic.
	Gain         float32
}

// FPSRange bounds the frame rate.
type FPSRange struct{ Min, Max float32 }

// ROIKind is the purpose of an ROI list.
type ROIKind int

// ROI kinds.
const (
	ROIMetering ROIKind = iota
	ROIFace
	ROITouch
	ROITracker
)

// WeightedRect is a rectangle in normalized [0,1] coordinates with a weight.
type WeightedRect struct {
	Left, Top, Width, Height float32
	Weight                   uint32
}

// ROIList gives a list of ROIs of one kind.
type ROIList struct {
	Kind  ROIKind
	Rects []WeightedRect
}

// SensorInfo describes the sensor capabilities.
type SensorInfo struct {
	MinGain, MaxGain                 float32
	MinExposureTime, MaxExposureTime uint64 // ns.
	MaxFPS                           float32
	ActiveWidth, ActiveHeight        uint32
}

// CropWindow is the normalized crop applied to the sensor output.
type CropWindow struct{ Left, Top, Width, Height float32 }

// AWBState reports the auto white balance result.
type AWBState struct {
	ColorTemperature    uint32
	RGain, GGain, BGain float32
	Converged           bool
}

// DualCamera reports whether the camera is part of a synchronised pair.
type DualCamera struct{ Enabled bool }

// PipelineDelay is the number of frames between programming a frame control
// and its effect appearing in stats.
type PipelineDelay struct{ Frames uint32 }

// GyroSample is one gyroscope sample.
type GyroSample struct {
	X, Y, Z   float32
	Timestamp uint64 // ns.
}

// GyroStats carries gyroscope samples for motion-aware exposure.
type GyroStats struct{ Samples []GyroSample }

// LEDRatio is one entry of a dual-LED calibration table.
type LEDRatio struct{ RG, BG, Flux float32 }

// LEDCalibration loads a dual-LED calibration table.
type LEDCalibration struct{ Entries []LEDRatio }

// InlineCalibration loads an opaque dynamic calibration blob.
type InlineCalibration struct{ Data []byte }

// DCCalibration loads opaque dual camera calibration data.
type DCCalibration struct{ Data []byte }

func (CameraIdentity) Type() ParamType       { return ParamCameraIdentity }
func (Chromatix) Type() ParamType            { return ParamChromatix }
func (OperationMode) Type() ParamType        { return ParamOperationMode }
func (AELock) Type() ParamType               { return ParamAELock }
func (ExposureMode) Type() ParamType         { return ParamExposureMode }
func (FlashMode) Type() ParamType            { return ParamFlashMode }
func (Scene) Type() ParamType                { return ParamScene }
func (ExposureCompensation) Type() ParamType { return ParamExposureCompensation }
func (ManualSetting) Type() ParamType        { return ParamManualSetting }
func (FPSRange) Type() ParamType             { return ParamFPSRange }
func (ROIList) Type() ParamType              { return ParamROIList }
func (SensorInfo) Type() ParamType           { return ParamSensorInfo }
func (CropWindow) Type() ParamType           { return ParamCropWindow }
func (AWBState) Type() ParamType             { return ParamAWBState }
func (DualCamera) Type() ParamType           { return ParamDualCamera }
func (PipelineDelay) Type() ParamType        { return ParamPipelineDelay }
func (GyroStats) Type() ParamType            { return ParamGyroStats }
func (LEDCalibration) Type() ParamType       { return ParamLEDCalibration }
func (InlineCalibration) Type() ParamType    { return ParamInlineCalibration }
func (DCCalibration) Type() ParamType        { return ParamDCCalibration }

func (CameraIdentity) param()       {}
func (Chromatix) param()            {}
func (OperationMode) param()        {}
func (AELock) param()               {}
func (ExposureMode) param()         {}
func (FlashMode) param()            {}
func (Scene) param()                {}
func (ExposureCompensation) param() {}
func (ManualSetting) param()        {}
func (FPSRange) param()             {}
func (ROIList) param()              {}
func (SensorInfo) param()           {}
func (CropWindow) param()           {}
func (AWBState) param()             {}
func (DualCamera) param()           {}
func (PipelineDelay) param()        {}
func (GyroStats) param()            {}
func (LEDCalibration) param()       {}
func (InlineCalibration) param()    {}
func (DCCalibration) param()        {}

// IdentityOf returns the CameraIdentity found in params, and whether one was
// present.
func IdentityOf(params []Param) (CameraIdentity, bool) {
	for i := len(params) - 1; i >= 0; i-- {
		if id, ok := params[i].(CameraIdentity); ok {
			return id, true
		}
	}
	return CameraIdentity{}, false
}
