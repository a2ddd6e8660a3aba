/*
DESCRIPTION
  state.go provides the exposure state machine, which routes each handled
  command to the handler of the current state.

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

	"github.com/ausocean/aec/algo"
)

// runStateMachine feeds the command in ctx to the exposure state machine.
func (e *Engine) runStateMachine(ctx *frameContext) error {
	if ctx.cmd == CommandStopDriver {
		e.stop()
		return nil
	}

	switch e.state {
	case StateInactive:
		if ctx.cmd == CommandStartStreaming {
			e.streaming = true
			e.enterConverging()
		}
	case StateManual:
		if ctx.cmd == CommandSetPerFrameControlParam {
			return e.manualPerFrame(ctx)
		}
	case StateConverging, StateConverged:
		switch ctx.cmd {
		case CommandStartStreaming:
			e.streaming = true
		case CommandSetPerFrameControlParam:
			return e.autoPerFrame(ctx)
		case CommandProcessStats:
			e.updateAEStateBasedOnAlgo(ctx.info.Settled)
		}
	case StateFlash:
		return e.runPreFlash(ctx)
	case StateLEDCalibration:
		err := e.runLEDCalibration(ctx)
		if e.ledState == LEDCalibrationComplete {
			e.log.Debug(pkg+"LED calibration finished")
			e.ledState = LEDCalibrationReady
			e.state = StateConverged
		}
		return err
	}
	return nil
}

// stop returns the engine to StateInactive from any state.
func (e *Engine) stop() {
	e.log.Debug(pkg+"stopping", "from", e.state.String())
	e.resetPreFlash()
	e.measure = nil
	e.ledState = LEDCalibrationReady
	e.precaptureWait = 0
	e.skipStats = 0
	e.streaming = false
	e.hal = defaultHALParam()
	e.state = StateInactive
}

func (e *Engine) enterConverging() {
	e.convergeStart = time.Now()
	e.state = StateConverging
}

// manualPerFrame handles a request while the application controls exposure.
func (e *Engine) manualPerFrame(ctx *frameContext) error {
	if !ctx.hal.fullManual() {
		e.enterConverging()
		return nil
	}
	return e.manualFlash(ctx)
}

// manualFlash enters pre-flash for a single flash manual request with a
// qualifying trigger.
func (e *Engine) manualFlash(ctx *frameContext) error {
	if !ctx.hal.singleFlashManual() {
		return nil
	}
	t := e.selectTrigger(ctx)
	if t == FlashTriggerInvalid {
		return nil
	}
	return e.enterFlash(t)
}

// autoPerFrame handles a request while the algorithm controls exposure.
func (e *Engine) autoPerFrame(ctx *frameContext) error {
	if ctx.hal.fullManual() {
		e.log.Debug(pkg+"entering manual exposure")
		e.state = StateManual
		return e.manualFlash(ctx)
	}

	t := e.selectTrigger(ctx)
	if !e.skipPreFlash(ctx) && ctx.hal.flashEnabled() && t != FlashTriggerInvalid {
		return e.enterFlash(t)
	}
	if ctx.hal.AETrigger == AETriggerStart {
		e.precaptureWait = e.cfg.PrecaptureWaitFrames
	}
	return nil
}

// skipPreFlash reports whether flash triggers are to be ignored.
func (e *Engine) skipPreFlash(ctx *frameContext) bool {
	return e.cfg.DisablePreFlash || ctx.hal.CaptureIntent == CaptureIntentVideoRecord
}

// updateAEStateBasedOnAlgo derives Converged or Converging from the
// algorithm's settled flag, or starts LED calibration once settled if
// calibration mode is on.
func (e *Engine) updateAEStateBasedOnAlgo(settled bool) {
	if e.state != StateConverging && e.state != StateConverged {
		return
	}
	switch {
	case settled && e.calEnabled:
		e.enterLEDCalibration()
	case settled:
		if e.state == StateConverging {
			e.log.Debug(pkg+"exposure converged", "duration", time.Since(e.convergeStart).String())
		}
		e.state = StateConverged
	default:
		if e.state == StateConverged {
			e.convergeStart = time.Now()
		}
		e.state = StateConverging
	}
}

// selectTrigger returns the flash trigger requested by ctx. LED assisted AF
// wins over AE precapture.
func (e *Engine) selectTrigger(ctx *frameContext) FlashTrigger {
	switch {
	case ctx.hal.AFTrigger == AFTriggerStart && e.isLEDAFNeeded(ctx):
		return FlashTriggerLEDAF
	case ctx.hal.AETrigger == AETriggerStart && e.isFlashNeeded(ctx):
		return FlashTriggerAE
	}
	return FlashTriggerInvalid
}

// isLEDAFNeeded reports whether autofocus needs the LED.
func (e *Engine) isLEDAFNeeded(ctx *frameContext) bool {
	if e.fixedFocus || !ctx.info.LEDAFRequired {
		return false
	}
	return ctx.hal.flashEnabled() || ctx.hal.singleFlashManual()
}

// isFlashNeeded reports whether a snapshot should use the flash.
func (e *Engine) isFlashNeeded(ctx *frameContext) bool {
	switch ctx.hal.AEMode {
	case AEModeOnAlwaysFlash:
		return true
	case AEModeOnAutoFlash, AEModeOnAutoFlashRedEye:
		return ctx.info.FlashNeeded
	case AEModeOff:
		return ctx.hal.FlashMode == FlashModeSingle
	}
	return false
}

// enterFlash starts a pre-flash sequence.
func (e *Engine) enterFlash(t FlashTrigger) error {
	e.log.Debug(pkg+"entering pre-flash", "trigger", t.String())
	e.resetPreFlash()
	e.state = StateFlash
	e.preFlash = PreFlashStart
	e.trigger = t
	return e.setMode(algo.ModePreflash, 0)
}
