/*
DESCRIPTION
  sim.go provides Algorithm, a deterministic exposure algorithm used to drive
  the engine without camera hardware.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package sim provides a simulated exposure algorithm and a simulated scene
// that produces statistics for the frame controls it is given.
package sim

import (
	"encoding/binary"
	"math"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"

	"github.com/ausocean/aec/algo"
)

// To indicate package when logging.
const pkg = "sim: "

// Default values of Config fields.
const (
	defaultTargetLuma        = 0.18
	defaultTolerance         = 0.05
	defaultMinExposureTime   = 100000   // ns.
	defaultMaxExposureTime   = 33000000 // ns.
	defaultMaxGain           = 8
	defaultPreflashCurrent   = 100 // mA.
	defaultMainFlashCurrent  = 500 // mA.
	defaultMeasurementPoints = 10
	defaultMeasurementFrames = 2
)

// Config holds the settings of the simulated algorithm. Zero fields take
// default values.
type Config struct {
	TargetLuma        float32
	Tolerance         float32 // Settled when luma is within this fraction of target.
	MinExposureTime   uint64  // ns.
	MaxExposureTime   uint64  // ns.
	MaxGain           float32
	PreflashCurrent   uint32 // mA per LED.
	MainFlashCurrent  uint32 // mA per LED.
	MeasurementPoints uint32 // LED calibration points in a run.
	MeasurementFrames uint32 // Frames each point takes to measure.
}

func (c *Config) setDefaults() {
	if c.TargetLuma <= 0 {
		c.TargetLuma = defaultTargetLuma
	}
	if c.Tolerance <= 0 {
		c.Tolerance = defaultTolerance
	}
	if c.MinExposureTime == 0 {
		c.MinExposureTime = defaultMinExposureTime
	}
	if c.MaxExposureTime <= c.MinExposureTime {
		c.MaxExposureTime = defaultMaxExposureTime
	}
	if c.MaxGain < 1 {
		c.MaxGain = defaultMaxGain
	}
	if c.PreflashCurrent == 0 {
		c.PreflashCurrent = defaultPreflashCurrent
	}
	if c.MainFlashCurrent == 0 {
		c.MainFlashCurrent = defaultMainFlashCurrent
	}
	if c.MeasurementPoints == 0 {
		c.MeasurementPoints = defaultMeasurementPoints
	}
	if c.MeasurementFrames == 0 {
		c.MeasurementFrames = defaultMeasurementFrames
	}
}

// Algorithm is a simulated exposure algorithm. Exposure is modelled as a
// single exposure value, the product of exposure time in seconds and gain,
// moved toward the target luma by half the log error each frame.
type Algorithm struct {
	cfg Config
	log logging.Logger

	ev       float64
	mode     algo.OperationMode
	locked   bool
	expMode  algo.ExposureModeKind
	flash    algo.FlashModeKind
	deltaEV  float32
	manual   algo.ManualSetting
	sensor   algo.SensorInfo
	settled  bool
	luma     float32
	rgb      [3]float32
	luxIndex float32

	// dark is whether flash was needed when the pre-flash started.
	dark bool

	// LED calibration.
	pointFrames uint32
	ratios      []algo.LEDRatio
	calibration []algo.LEDRatio

	chromatix []byte
	frames    uint64
	closed    bool
}

// New returns a new simulated Algorithm.
func New(c Config, l logging.Logger) *Algorithm {
	c.setDefaults()
	a := &Algorithm{cfg: c, log: l}
	a.ev = a.minEV()
	return a
}

func (a *Algorithm) minEV() float64 { return float64(a.cfg.MinExposureTime) / 1e9 }
func (a *Algorithm) maxEV() float64 {
	return float64(a.cfg.MaxExposureTime) / 1e9 * float64(a.cfg.MaxGain)
}

// SetParams implements algo.Algorithm.
func (a *Algorithm) SetParams(params []algo.Param) error {
	if err := a.check(params); err != nil {
		return err
	}
	for _, p := range params {
		switch p := p.(type) {
		case algo.CameraIdentity:
		case algo.Chromatix:
			a.chromatix = append(a.chromatix[:0], p.Data...)
		case algo.OperationMode:
			if p != a.mode {
				a.log.Debug(pkg+"operation mode", "mode", p.Mode.String(), "index", p.MeasurementIndex)
				a.pointFrames = 0
				if p.Mode == algo.ModePreflash {
					a.dark = a.flashNeeded()
				}
			}
			a.mode = p
		case algo.AELock:
			a.locked = p.Locked
		case algo.ExposureMode:
			a.expMode = p.Mode
		case algo.FlashMode:
			a.flash = p.Mode
		case algo.ExposureCompensation:
			a.deltaEV = p.DeltaEV
		case algo.ManualSetting:
			a.manual = p
		case algo.SensorInfo:
			a.sensor = p
		case algo.LEDCalibration:
			a.calibration = append([]algo.LEDRatio(nil), p.Entries...)
		case algo.DualCamera, algo.CropWindow:
			return algo.ErrUnsupported
		case algo.Scene, algo.FPSRange, algo.ROIList, algo.AWBState, algo.PipelineDelay,
			algo.GyroStats, algo.InlineCalibration, algo.DCCalibration:
		default:
			return errors.Wrapf(algo.ErrUnsupported, "parameter %s", p.Type())
		}
	}
	return nil
}

// GetParam implements algo.Algorithm.
func (a *Algorithm) GetParam(req algo.Request, params []algo.Param) (algo.Result, error) {
	if err := a.check(params); err != nil {
		return nil, err
	}
	switch r := req.(type) {
	case algo.FlashFrameControlRequest:
		fc := a.frameControl()
		fc.LEDCurrents = [algo.NumLEDs]uint32{}
		if a.flashNeeded() || (a.mode.Mode == algo.ModePreflash && a.dark) || a.flash == algo.FlashOn || a.flash == algo.FlashSingle {
			fc.LEDCurrents = [algo.NumLEDs]uint32{a.cfg.MainFlashCurrent, a.cfg.MainFlashCurrent}
		}
		return fc, nil
	case algo.StartExposureRequest:
		fc := a.frameControl()
		fc.LEDCurrents = a.pointCurrents(r.Index)
		return fc, nil
	case algo.MeasurementResultRequest:
		return a.measurementResult(r.Index), nil
	case algo.VendorTagsRequest:
		return a.vendorTags(r.Public), nil
	case algo.DefaultsRequest:
		return algo.Output{FrameControl: a.frameControl(), FrameInfo: a.frameInfo()}, nil
	case algo.InlineCalibrationRequest:
		return algo.InlineCalibration{Data: a.inlineBlob()}, nil
	}
	return nil, errors.Wrapf(algo.ErrUnsupported, "request %s", req.Type())
}

// Process implements algo.Algorithm.
func (a *Algorithm) Process(s algo.Stats, params []algo.Param) (algo.Output, error) {
	if err := a.check(params); err != nil {
		return algo.Output{}, err
	}
	a.frames++
	a.luma = s.Luma()
	a.rgb = meanRGB(s.Grid)

	switch {
	case a.expMode == algo.ExposureManual:
		a.ev = a.manualEV()
		a.settled = true
	case a.mode.Mode == algo.ModeFlashMeasurement:
		a.pointFrames++
		a.settled = true
	case a.locked:
		a.settled = true
	default:
		a.converge()
	}
	a.luxIndex = float32(100 * math.Log2(a.ev/a.minEV()))

	return algo.Output{FrameControl: a.frameControl(), FrameInfo: a.frameInfo()}, nil
}

// Close implements algo.Algorithm.
func (a *Algorithm) Close() error {
	if a.closed {
		return errors.Wrap(algo.ErrFailed, "already closed")
	}
	a.closed = true
	return nil
}

// check ensures the algorithm is open and the call carries a camera identity.
func (a *Algorithm) check(params []algo.Param) error {
	if a.closed {
		return errors.Wrap(algo.ErrFailed, "algorithm closed")
	}
	if _, ok := algo.IdentityOf(params); !ok {
		return errors.Wrap(algo.ErrFailed, "no camera identity")
	}
	return nil
}

func (a *Algorithm) target() float64 {
	return float64(a.cfg.TargetLuma) * math.Exp2(float64(a.deltaEV))
}

func (a *Algorithm) converge() {
	luma := math.Max(float64(a.luma), 1e-4)
	ratio := a.target() / luma
	a.settled = math.Abs(ratio-1) <= float64(a.cfg.Tolerance)
	if a.settled {
		return
	}
	a.ev = math.Min(math.Max(a.ev*math.Sqrt(ratio), a.minEV()), a.maxEV())
}

func (a *Algorithm) manualEV() float64 {
	t := a.manual.ExposureTime
	if t == 0 {
		t = a.cfg.MaxExposureTime
	}
	gain := float64(a.manual.Gain)
	if gain == 0 && a.manual.ISO > 0 {
		gain = float64(a.manual.ISO) / 100
	}
	if gain < 1 {
		gain = 1
	}
	return float64(t) / 1e9 * gain
}

// flashNeeded reports whether the scene is too dark to expose without flash.
func (a *Algorithm) flashNeeded() bool {
	return a.ev >= a.maxEV()*0.9 && float64(a.luma) < a.target()*(1-float64(a.cfg.Tolerance))
}

func (a *Algorithm) frameInfo() algo.FrameInfo {
	need := a.flashNeeded()
	return algo.FrameInfo{
		Settled:       a.settled || (need && a.ev >= a.maxEV()),
		FlashNeeded:   need,
		LEDAFRequired: need,
		Luma:          a.luma,
		TargetLuma:    float32(a.target()),
		LuxIndex:      a.luxIndex,
	}
}

// frameControl splits the exposure value into exposure time and gain,
// preferring time.
func (a *Algorithm) frameControl() algo.FrameControl {
	maxT := float64(a.cfg.MaxExposureTime) / 1e9
	t := math.Min(a.ev, maxT)
	gain := a.ev / t
	e := algo.ExposureData{
		Gain:         float32(gain),
		ExposureTime: uint64(t * 1e9),
		Sensitivity:  float32(a.ev),
	}
	fc := algo.FrameControl{LuxIndex: a.luxIndex}
	for i := range fc.Exposure {
		fc.Exposure[i] = e
	}
	fc.Exposure[algo.ExposureShort].DeltaEV = -1
	fc.APEX = algo.APEXData{
		Time:     float32(-math.Log2(t)),
		Exposure: float32(math.Log2(1 / a.ev)),
	}

	switch {
	case a.mode.Mode == algo.ModePreflash, a.mode.Mode == algo.ModeRedEye, a.flash == algo.FlashTorch:
		fc.LEDCurrents = [algo.NumLEDs]uint32{a.cfg.PreflashCurrent, a.cfg.PreflashCurrent}
	case a.mode.Mode == algo.ModeFlashMeasurement:
		fc.LEDCurrents = a.pointCurrents(a.mode.MeasurementIndex)
	}
	return fc
}

// pointCurrents returns the LED currents of calibration point idx: a sweep
// of the warm to cool LED balance at constant total current.
func (a *Algorithm) pointCurrents(idx uint32) [algo.NumLEDs]uint32 {
	total := a.cfg.MainFlashCurrent
	n := a.cfg.MeasurementPoints
	if n < 2 {
		return [algo.NumLEDs]uint32{total / 2, total / 2}
	}
	if idx >= n {
		idx = n - 1
	}
	led1 := total * idx / (n - 1)
	return [algo.NumLEDs]uint32{led1, total - led1}
}

func (a *Algorithm) measurementResult(idx uint32) algo.MeasurementResult {
	res := algo.MeasurementResult{Index: a.mode.MeasurementIndex, Point: algo.MeasurementOngoing, Overall: algo.MeasurementOngoing}
	if a.mode.Mode != algo.ModeFlashMeasurement || idx != a.mode.MeasurementIndex || a.pointFrames < a.cfg.MeasurementFrames {
		return res
	}

	r := algo.LEDRatio{Flux: a.luma / float32(a.ev)}
	if a.rgb[1] > 0 {
		r.RG, r.BG = a.rgb[0]/a.rgb[1], a.rgb[2]/a.rgb[1]
	}
	res.Ratio = r
	if r.RG == 0 || r.BG == 0 {
		res.Point = algo.MeasurementFail
	} else {
		res.Point = algo.MeasurementPass
	}
	if idx == uint32(len(a.ratios)) {
		a.ratios = append(a.ratios, r)
	}
	if idx+1 >= a.cfg.MeasurementPoints {
		res.Overall = algo.MeasurementPass
	}
	return res
}

func (a *Algorithm) vendorTags(public bool) algo.VendorTags {
	lux := make([]byte, 4)
	binary.LittleEndian.PutUint32(lux, math.Float32bits(a.luxIndex))
	tags := []algo.VendorTag{{Section: "org.ausocean.aec", Name: "LuxIndex", Data: lux}}
	if !public {
		frames := make([]byte, 8)
		binary.LittleEndian.PutUint64(frames, a.frames)
		tags = append(tags, algo.VendorTag{Section: "org.ausocean.aec.sim", Name: "Frames", Data: frames})
	}
	return algo.VendorTags{Tags: tags}
}

// inlineBlob returns the measured ratios as little-endian float32 triples.
func (a *Algorithm) inlineBlob() []byte {
	b := make([]byte, 0, 12*len(a.ratios))
	for _, r := range a.ratios {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(r.RG))
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(r.BG))
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(r.Flux))
	}
	return b
}

// Calibration returns the LED calibration table loaded into the algorithm.
func (a *Algorithm) Calibration() []algo.LEDRatio { return a.calibration }

func meanRGB(grid []algo.GridRegion) [3]float32 {
	var sum [3]float64
	for _, g := range grid {
		sum[0] += float64(g.R)
		sum[1] += float64(g.G)
		sum[2] += float64(g.B)
	}
	if len(grid) == 0 {
		return [3]float32{}
	}
	n := float64(len(grid))
	return [3]float32{float32(sum[0] / n), float32(sum[1] / n), float32(sum[2] / n)}
}
