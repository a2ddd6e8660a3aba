/*
DESCRIPTION
  params.go provides the translation of a request's HAL controls into the
  parameters pushed to the algorithm.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package aec

import "github.com/ausocean/aec/algo"

// frameParams returns the algorithm parameters for the request controls h.
func (e *Engine) frameParams(h *HALParam) []algo.Param {
	p := []algo.Param{
		algo.AELock{Locked: h.AELock},
		algo.ExposureMode{Mode: exposureModeOf(h)},
		algo.FlashMode{Mode: flashModeOf(h)},
		algo.Scene{Scene: sceneOf(h.SceneMode)},
		algo.ExposureCompensation{Steps: h.ExposureCompensation, DeltaEV: deltaEV(h.ExposureCompensation, e.cfg.EVStep)},
		e.roiList(algo.ROIMetering, h.MeteringROIs),
		e.roiList(algo.ROIFace, h.FaceROIs),
	}
	if h.fullManual() {
		p = append(p, algo.ManualSetting{ExposureTime: h.ExposureTime, ISO: h.ISO})
	}
	if h.FPSRange.Max > 0 {
		p = append(p, algo.FPSRange{Min: h.FPSRange.Min, Max: h.FPSRange.Max})
	}
	if h.TouchROI.Weight > 0 {
		p = append(p, e.roiList(algo.ROITouch, []WeightedROI{h.TouchROI}))
	}
	if h.TrackerROI.Weight > 0 {
		p = append(p, e.roiList(algo.ROITracker, []WeightedROI{h.TrackerROI}))
	}
	return p
}

// roiList returns rois normalised to the current reference window.
func (e *Engine) roiList(k algo.ROIKind, rois []WeightedROI) algo.ROIList {
	return algo.ROIList{Kind: k, Rects: normalizeROIs(rois, referenceWindow(e.crop, e.sensor))}
}
