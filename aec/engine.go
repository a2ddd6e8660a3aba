/*
DESCRIPTION
  engine.go provides Engine, its construction and the command dispatcher.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package aec

import (
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/ausocean/aec/aec/config"
	"github.com/ausocean/aec/algo"
	"github.com/ausocean/aec/calib"
)

// To indicate package when logging.
const pkg = "aec: "

// Engine is an automatic exposure control engine for one camera stream.
type Engine struct {
	cfg     config.Config
	log     logging.Logger
	alg     *algo.Adapter
	store   calib.Store
	session uuid.UUID
	closed  bool

	state    State
	preFlash PreFlashState
	ledState LEDCalibrationState
	trigger  FlashTrigger

	hal        HALParam
	sensor     algo.SensorInfo
	crop       Rect
	fixedFocus bool
	streaming  bool

	// Last successful algorithm output, replayed when processing is skipped
	// or fails.
	last    algo.Output
	hasLast bool

	// Frame control of the main flash capture, snapshot during pre-flash.
	flashFC algo.FrameControl

	skipCheck      bool // Skip the next AF or AWB settle check.
	afWait         uint
	awbWait        uint
	rerDone        bool
	precaptureWait uint
	skipStats      uint
	convergeStart  time.Time

	// LED calibration mode and the run in progress, if any.
	calEnabled bool
	calCount   uint
	measure    *flashMeasurement
	lastRun    calib.Summary
}

// New returns a new Engine driving alg. store may be nil, in which case
// calibration data is neither loaded nor saved.
func New(cfg config.Config, alg algo.Algorithm, store calib.Store) (*Engine, error) {
	if cfg.Logger == nil {
		return nil, pkgerrors.Wrap(ErrInvalidState, "no logger")
	}
	if alg == nil {
		return nil, pkgerrors.Wrap(ErrInvalidState, "no algorithm")
	}
	err := cfg.Validate()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "invalid config")
	}
	e := &Engine{
		cfg:        cfg,
		log:        cfg.Logger,
		alg:        algo.NewAdapter(alg, cfg.Logger),
		store:      store,
		session:    uuid.New(),
		hal:        defaultHALParam(),
		calEnabled: cfg.LEDCalibration,
		calCount:   cfg.LEDMeasurements,
	}
	e.log.Info(pkg+"engine created", "session", e.session.String())
	return e, nil
}

// Config returns a copy of the engine's current config.
func (e *Engine) Config() config.Config { return e.cfg }

// Update applies a set of configuration variables.
func (e *Engine) Update(vars map[string]string) error {
	if e.closed {
		return ErrInvalidState
	}
	e.log.Debug(pkg+"checking vars", "vars", vars)
	e.cfg.Update(vars)
	err := e.cfg.Validate()
	if err != nil {
		return pkgerrors.Wrap(err, "invalid config")
	}
	e.log.SetLevel(e.cfg.LogLevel)
	if e.measure == nil {
		e.calEnabled = e.cfg.LEDCalibration
		e.calCount = e.cfg.LEDMeasurements
	}
	e.log.Info(pkg+"finished reconfig")
	e.log.Debug(pkg+"config changed", "config", e.cfg)
	return nil
}

// Destroy releases the algorithm. The engine accepts no commands afterwards.
func (e *Engine) Destroy() error {
	if e.closed {
		return ErrInvalidState
	}
	e.closed = true
	e.measure = nil
	e.log.Info(pkg+"engine destroyed", "session", e.session.String())
	return e.alg.Close()
}

// State returns the exposure state.
func (e *Engine) State() State { return e.state }

// PreFlashState returns the pre-flash state. It is PreFlashInactive unless
// the engine is in StateFlash.
func (e *Engine) PreFlashState() PreFlashState { return e.preFlash }

// LEDCalibrationState returns the LED calibration state and whether the
// engine is in StateLEDCalibration.
func (e *Engine) LEDCalibrationState() (LEDCalibrationState, bool) {
	return e.ledState, e.state == StateLEDCalibration
}

// FlashTrigger returns what started the current pre-flash sequence.
func (e *Engine) FlashTrigger() FlashTrigger { return e.trigger }

// ControlAEState returns the AE state reported to the application.
func (e *Engine) ControlAEState() ControlAEState {
	return controlAEState(aeStateInputs{
		aeModeOff:        e.hal.fullManual(),
		precaptureWait:   e.precaptureWait,
		locked:           e.hal.AELock,
		state:            e.state,
		preFlash:         e.preFlash,
		preFlashComplete: e.isPreflashComplete(),
	})
}

// HAL returns the HAL facing output bundle.
func (e *Engine) HAL() HALOutput {
	return HALOutput{
		AEState:              e.ControlAEState(),
		AEMode:               e.hal.AEMode,
		ExposureCompensation: e.hal.ExposureCompensation,
		FPSRange:             e.hal.FPSRange,
		PreFlashState:        e.preFlash,
		FlashTrigger:         e.trigger,
		State:                e.state,
	}
}

// frameContext carries the data of the command being handled through the
// state machines.
type frameContext struct {
	cmd   Command
	hal   *HALParam
	info  algo.FrameInfo
	nodes *SetNodesUpdate
	fc    *algo.FrameControl // Frame control being returned, if any.
}

func (e *Engine) newContext(cmd Command) *frameContext {
	return &frameContext{cmd: cmd, hal: &e.hal, info: e.last.FrameInfo}
}

// HandleCommand performs cmd. in must be the input payload of cmd. out must
// be the output payload cmd fills; commands that fill nothing take nil.
func (e *Engine) HandleCommand(cmd Command, in Input, out Output) error {
	if e.closed {
		return ErrInvalidState
	}
	if in == nil || in.Command() != cmd {
		return pkgerrors.Wrapf(ErrInvalidArgument, "input %T is not a %s payload", in, cmd)
	}
	if !checkOutput(cmd, out) {
		return pkgerrors.Wrapf(ErrInvalidArgument, "output %T is not valid for %s", out, cmd)
	}
	e.log.Debug(pkg+"handling command", "command", cmd.String(), "state", e.state.String())

	switch in := in.(type) {
	case StartDriver:
		return e.startDriver()
	case StopDriver:
		return e.stopDriver()
	case ConfigDriver:
		return e.configDriver(in)
	case SetChromatix:
		if len(in.Data) == 0 {
			return pkgerrors.Wrap(ErrInvalidArgument, "empty chromatix")
		}
		return e.alg.Set(algo.Chromatix{Data: in.Data})
	case StartStreaming:
		return e.startStreaming()
	case ProcessStats:
		return e.processStats(in, out.(*StatsOutput))
	case SetPerFrameControlParam:
		o, _ := out.(*PerFrameOutput)
		return e.setPerFrameControl(in, o)
	case SetNodesUpdate:
		o, _ := out.(*HALOutput)
		return e.setNodesUpdate(in, o)
	case ProcessHardwareInfo:
		return e.processHardwareInfo(in)
	case ProcessCropWindow:
		return e.processCropWindow(in)
	case GetVendorTagFromAlgo:
		return e.vendorTags(false, out.(*VendorTagOutput))
	case GetPubVendorTagFromAlgo:
		return e.vendorTags(true, out.(*VendorTagOutput))
	case GetDefaultValues:
		return e.defaults(out.(*StatsOutput))
	case SetPipelineDelay:
		return e.alg.Set(algo.PipelineDelay{Frames: in.Frames})
	case GetLEDCalibrationConfig:
		e.ledCalibrationConfig(out.(*LEDCalibrationConfigOutput))
		return nil
	case LoadLEDCalibrationData:
		return e.loadCalibration()
	case LoadLEDInlineCalibrationData:
		return e.loadInlineCalibration()
	case SetDCCalibrationData:
		if len(in.Data) == 0 {
			return pkgerrors.Wrap(ErrInvalidArgument, "empty dual camera calibration")
		}
		return e.alg.Set(algo.DCCalibration{Data: in.Data})
	case ProcessGYROStats:
		return e.alg.Set(algo.GyroStats{Samples: in.Samples})
	case SetCameraInformation:
		e.alg.SetIdentity(in.Identity)
		return e.alg.SetOptional(algo.DualCamera{Enabled: in.DualCamera})
	case SetFPSRange:
		return e.setFPSRange(in.Range)
	}
	return pkgerrors.Wrapf(ErrInvalidArgument, "unknown command %s", cmd)
}

func (e *Engine) startDriver() error {
	err := e.setMode(algo.ModeIdle, 0)
	if err != nil {
		return err
	}
	out, err := e.alg.Defaults()
	if err != nil {
		return err
	}
	e.last, e.hasLast = out, true
	e.log.Info(pkg+"driver started", "session", e.session.String())
	return nil
}

func (e *Engine) stopDriver() error {
	err := e.setMode(algo.ModeIdle, 0)
	if err != nil {
		return err
	}
	e.runStateMachine(e.newContext(CommandStopDriver))
	e.log.Info(pkg+"driver stopped", "session", e.session.String())
	return nil
}

func (e *Engine) configDriver(in ConfigDriver) error {
	n := in.Measurements
	if n == 0 {
		n = e.cfg.LEDMeasurements
	}
	if n > e.cfg.MaxLEDMeasurements {
		return pkgerrors.Wrapf(ErrNoMemory, "%d LED measurements requested, capacity is %d", n, e.cfg.MaxLEDMeasurements)
	}
	if e.measure != nil {
		return pkgerrors.Wrap(ErrInvalidState, "LED calibration in progress")
	}
	e.calEnabled = in.LEDCalibration
	e.calCount = n
	e.log.Info(pkg+"driver configured", "ledCalibration", e.calEnabled, "measurements", n)
	return nil
}

func (e *Engine) startStreaming() error {
	err := e.setMode(algo.ModeStreaming, 0)
	if err != nil {
		return err
	}
	e.runStateMachine(e.newContext(CommandStartStreaming))
	return nil
}

// processStats runs the algorithm over a frame of stats. out always receives
// a frame control, falling back to the last good output when the algorithm
// fails.
func (e *Engine) processStats(in ProcessStats, out *StatsOutput) error {
	var procErr error
	res := e.last
	switch {
	case e.skipStats > 0:
		e.skipStats--
		e.log.Debug(pkg+"skipping stats after main flash", "frame", in.Stats.FrameID, "remaining", e.skipStats)
	default:
		o, err := e.alg.Process(in.Stats)
		if err != nil {
			e.log.Error(pkg+"could not process stats, using last output", "frame", in.Stats.FrameID, "error", err.Error())
			procErr = err
			break
		}
		e.last, e.hasLast = o, true
		res = o
	}

	ctx := e.newContext(CommandProcessStats)
	ctx.info = res.FrameInfo
	ctx.fc = &res.FrameControl
	smErr := e.runStateMachine(ctx)
	e.postStats()

	out.FrameControl = res.FrameControl
	out.FrameInfo = res.FrameInfo
	out.HAL = e.HAL()
	if e.precaptureWait > 0 {
		e.precaptureWait--
	}

	if procErr != nil {
		return procErr
	}
	return smErr
}

// postStats finishes a completed pre-flash sequence.
func (e *Engine) postStats() {
	if e.state != StateFlash || !e.isPreflashComplete() {
		return
	}
	e.log.Debug(pkg+"pre-flash complete", "preFlash", e.preFlash.String(), "trigger", e.trigger.String())
	err := e.setMode(algo.ModeStreaming, 0)
	if err != nil {
		e.log.Error(pkg+"could not restore streaming mode", "error", err.Error())
	}
	e.resetAEState()
}

func (e *Engine) setPerFrameControl(in SetPerFrameControlParam, out *PerFrameOutput) error {
	hal := in.HAL.clone()
	if hal.FPSRange == (FPSRange{}) {
		hal.FPSRange = e.hal.FPSRange
	}
	err := e.alg.Set(e.frameParams(&hal)...)
	if err != nil {
		return err
	}
	e.hal = hal

	ctx := e.newContext(CommandSetPerFrameControlParam)
	var mainFlash bool
	var fc algo.FrameControl
	if hal.CaptureIntent == CaptureIntentStillCapture && e.flashFC.LEDOn() {
		mainFlash, fc = true, e.flashFC
		e.flashFC = algo.FrameControl{}
		e.skipStats = e.cfg.MainFlashSkipFrames
		e.log.Info(pkg+"main flash capture", "led1", fc.LEDCurrents[0], "led2", fc.LEDCurrents[1])
	}
	err = e.runStateMachine(ctx)

	if out != nil {
		out.MainFlash = mainFlash
		out.FrameControl = fc
		out.HAL = e.HAL()
	}
	return err
}

func (e *Engine) setNodesUpdate(in SetNodesUpdate, out *HALOutput) error {
	err := e.alg.SetOptional(algo.AWBState{
		ColorTemperature: in.AWB.ColorTemperature,
		RGain:            in.AWB.RGain,
		GGain:            in.AWB.GGain,
		BGain:            in.AWB.BGain,
		Converged:        in.AWB.Converged,
	})
	if err != nil {
		return err
	}
	ctx := e.newContext(CommandSetNodesUpdate)
	ctx.nodes = &in
	err = e.runStateMachine(ctx)
	if out != nil {
		*out = e.HAL()
	}
	return err
}

func (e *Engine) processHardwareInfo(in ProcessHardwareInfo) error {
	e.sensor = in.Sensor
	e.fixedFocus = in.FixedFocus
	return e.alg.SetOptional(in.Sensor)
}

func (e *Engine) processCropWindow(in ProcessCropWindow) error {
	w := in.Window
	if w.Width <= 0 || w.Height <= 0 {
		return pkgerrors.Wrapf(ErrInvalidArgument, "bad crop window %v", w)
	}
	e.crop = w
	return e.alg.SetOptional(cropWindowOf(w, e.sensor))
}

func (e *Engine) vendorTags(public bool, out *VendorTagOutput) error {
	tags, err := e.alg.VendorTags(public)
	if err != nil {
		return err
	}
	out.Tags = tags
	return nil
}

func (e *Engine) defaults(out *StatsOutput) error {
	d, err := e.alg.Defaults()
	if err != nil {
		return err
	}
	if !e.hasLast {
		e.last, e.hasLast = d, true
	}
	out.FrameControl = d.FrameControl
	out.FrameInfo = d.FrameInfo
	out.HAL = e.HAL()
	return nil
}

func (e *Engine) setFPSRange(r FPSRange) error {
	if r.Min <= 0 || r.Max < r.Min {
		return pkgerrors.Wrapf(ErrInvalidArgument, "bad fps range %v", r)
	}
	err := e.alg.Set(algo.FPSRange{Min: r.Min, Max: r.Max})
	if err != nil {
		return err
	}
	e.hal.FPSRange = r
	return nil
}

// setMode sets the algorithm's operation mode.
func (e *Engine) setMode(m algo.Mode, idx uint32) error {
	return e.alg.Set(algo.OperationMode{Mode: m, MeasurementIndex: idx})
}
