/*
DESCRIPTION
  preflash.go provides the pre-flash state machine, run while the engine is
  in StateFlash. It snapshots the main flash exposure and waits, frame by
  frame, for autofocus and auto white balance to settle under the LED.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package aec

import "github.com/ausocean/aec/algo"

func (e *Engine) runPreFlash(ctx *frameContext) error {
	if ctx.cmd == CommandSetPerFrameControlParam {
		if ctx.hal.cancel() {
			e.cancelPreFlash()
		}
		return nil
	}

	switch e.preFlash {
	case PreFlashStart:
		if ctx.cmd != CommandProcessStats || !ctx.info.Settled || ctx.hal.triggered() {
			return nil
		}
		fc, err := e.alg.FlashFrameControl()
		if err != nil {
			return err
		}
		e.flashFC = fc
		e.log.Debug(pkg+"flash exposure captured", "led1", fc.LEDCurrents[0], "led2", fc.LEDCurrents[1])
		if e.cfg.PreFlashFaceAssist {
			if faces := e.roiList(algo.ROIFace, ctx.hal.FaceROIs); len(faces.Rects) > 0 {
				e.preFlash = PreFlashTriggerFD
				return e.alg.Set(faces)
			}
		}
		e.afterExposure(ctx)

	case PreFlashTriggerFD:
		if ctx.cmd == CommandProcessStats && ctx.info.Settled {
			e.afterExposure(ctx)
		}

	case PreFlashTriggerAF:
		if ctx.cmd != CommandSetNodesUpdate {
			return nil
		}
		e.afWait++
		if e.settleCheck(ctx.nodes.AFState.settled()) {
			e.enterTriggerAWB(true)
			return nil
		}
		if e.afWait >= e.cfg.PreFlashMaxFrameWaitLimitAF {
			e.log.Warning(pkg+"AF did not settle during pre-flash, continuing", "frames", e.afWait)
			e.enterTriggerAWB(true)
		}

	case PreFlashTriggerAWB:
		if ctx.cmd != CommandSetNodesUpdate {
			return nil
		}
		e.awbWait++
		if e.settleCheck(ctx.nodes.AWB.FlashEstimationDone) {
			e.finishPreFlash()
			return nil
		}
		if e.awbWait >= e.cfg.PreFlashMaxFrameWaitLimitAWB {
			e.log.Warning(pkg+"AWB did not settle during pre-flash, continuing", "frames", e.awbWait)
			e.finishPreFlash()
		}

	case PreFlashCompleteLED:
		if ctx.cmd == CommandProcessStats && ctx.hal.redEye() {
			e.preFlash = PreFlashRER
			e.rerDone = false
			return e.setMode(algo.ModeRedEye, 0)
		}

	case PreFlashRER:
		if ctx.cmd == CommandSetNodesUpdate && ctx.nodes.RERDone {
			e.rerDone = true
		}
	}
	return nil
}

// settleCheck returns settled, unless the check is to be skipped, in which
// case it clears the skip and returns false. The skip covers the frame
// between a trigger and its effect.
func (e *Engine) settleCheck(settled bool) bool {
	if e.skipCheck {
		e.skipCheck = false
		return false
	}
	return settled
}

// afterExposure picks the next pre-flash step once the flash exposure is
// known: LED assisted AF first if it is needed, otherwise straight to AWB.
func (e *Engine) afterExposure(ctx *frameContext) {
	if e.isLEDAFNeeded(ctx) || ctx.hal.singleFlashManual() {
		e.preFlash = PreFlashTriggerAF
		e.afWait = 0
		e.skipCheck = true
		return
	}
	e.enterTriggerAWB(false)
}

func (e *Engine) enterTriggerAWB(skip bool) {
	e.preFlash = PreFlashTriggerAWB
	e.awbWait = 0
	e.skipCheck = skip
}

// finishPreFlash completes the sequence, with the LED if the flash exposure
// uses it.
func (e *Engine) finishPreFlash() {
	e.skipCheck = false
	if e.flashFC.LEDOn() {
		e.preFlash = PreFlashCompleteLED
		return
	}
	e.preFlash = PreFlashCompleteNoLED
}

// cancelPreFlash abandons the sequence along with its flash exposure.
func (e *Engine) cancelPreFlash() {
	e.log.Debug(pkg+"pre-flash cancelled", "from", e.preFlash.String())
	e.preFlash = PreFlashCompleteNoLED
	e.flashFC = algo.FrameControl{}
	e.trigger = FlashTriggerInvalid
}

// isPreflashComplete reports whether the pre-flash sequence has finished.
// With red-eye reduction, CompleteLED moves on to RER before the stats
// frame is finished, so only RER with its done signal completes.
func (e *Engine) isPreflashComplete() bool {
	switch e.preFlash {
	case PreFlashCompleteLED, PreFlashCompleteNoLED:
		return true
	case PreFlashRER:
		return e.rerDone
	}
	return false
}

// resetPreFlash clears the pre-flash sequence.
func (e *Engine) resetPreFlash() {
	e.preFlash = PreFlashInactive
	e.trigger = FlashTriggerInvalid
	e.skipCheck = false
	e.afWait = 0
	e.awbWait = 0
	e.rerDone = false
}

// resetAEState leaves StateFlash after a finished pre-flash sequence.
func (e *Engine) resetAEState() {
	e.resetPreFlash()
	if e.streaming {
		e.state = StateConverged
		return
	}
	e.state = StateInactive
}
