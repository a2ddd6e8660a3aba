/*
DESCRIPTION
  utils.go provides conversions between HAL and algorithm representations:
  region of interest normalisation, exposure and flash mode mapping, scene
  mapping and exposure compensation.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package aec

import "github.com/ausocean/aec/algo"

// referenceWindow returns the window ROIs are relative to: the crop window
// if one is set, otherwise the sensor active array.
func referenceWindow(crop Rect, s algo.SensorInfo) Rect {
	if crop.Width > 0 && crop.Height > 0 {
		return crop
	}
	return Rect{Width: int32(s.ActiveWidth), Height: int32(s.ActiveHeight)}
}

// normalizeROIs maps rois into [0,1] coordinates relative to ref, clipping
// them to ref. Unweighted regions and regions outside ref are dropped.
func normalizeROIs(rois []WeightedROI, ref Rect) []algo.WeightedRect {
	if ref.Width <= 0 || ref.Height <= 0 {
		return nil
	}
	var out []algo.WeightedRect
	for _, r := range rois {
		if r.Weight == 0 {
			continue
		}
		l := clamp01(float32(r.Left-ref.Left) / float32(ref.Width))
		t := clamp01(float32(r.Top-ref.Top) / float32(ref.Height))
		rt := clamp01(float32(r.Left+r.Width-ref.Left) / float32(ref.Width))
		b := clamp01(float32(r.Top+r.Height-ref.Top) / float32(ref.Height))
		if rt <= l || b <= t {
			continue
		}
		out = append(out, algo.WeightedRect{Left: l, Top: t, Width: rt - l, Height: b - t, Weight: r.Weight})
	}
	return out
}

func clamp01(f float32) float32 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// cropWindowOf returns the crop window w as a fraction of the active array.
func cropWindowOf(w Rect, s algo.SensorInfo) algo.CropWindow {
	if s.ActiveWidth == 0 || s.ActiveHeight == 0 {
		return algo.CropWindow{Width: 1, Height: 1}
	}
	aw, ah := float32(s.ActiveWidth), float32(s.ActiveHeight)
	return algo.CropWindow{
		Left:   clamp01(float32(w.Left) / aw),
		Top:    clamp01(float32(w.Top) / ah),
		Width:  clamp01(float32(w.Width) / aw),
		Height: clamp01(float32(w.Height) / ah),
	}
}

// exposureModeOf returns the algorithm exposure mode for h.
func exposureModeOf(h *HALParam) algo.ExposureModeKind {
	if h.fullManual() {
		return algo.ExposureManual
	}
	return algo.ExposureAuto
}

// flashModeOf returns the algorithm flash mode for h.
func flashModeOf(h *HALParam) algo.FlashModeKind {
	switch h.AEMode {
	case AEModeOnAutoFlash:
		return algo.FlashAuto
	case AEModeOnAlwaysFlash:
		return algo.FlashOn
	case AEModeOnAutoFlashRedEye:
		return algo.FlashRedEye
	case AEModeOff, AEModeOn:
		switch h.FlashMode {
		case FlashModeTorch:
			return algo.FlashTorch
		case FlashModeSingle:
			if h.AEMode == AEModeOff {
				return algo.FlashSingle
			}
		}
	}
	return algo.FlashOff
}

// sceneOf returns the algorithm scene for a HAL scene mode.
func sceneOf(s SceneMode) algo.SceneKind {
	switch s {
	case SceneModeAction:
		return algo.SceneAction
	case SceneModePortrait, SceneModeNightPortrait:
		return algo.ScenePortrait
	case SceneModeLandscape:
		return algo.SceneLandscape
	case SceneModeNight, SceneModeTheatre:
		return algo.SceneNight
	case SceneModeBeach:
		return algo.SceneBeach
	case SceneModeSnow:
		return algo.SceneSnow
	case SceneModeSunset:
		return algo.SceneSunset
	case SceneModeFireworks:
		return algo.SceneFireworks
	case SceneModeSports:
		return algo.SceneSports
	case SceneModeCandlelight, SceneModeParty:
		return algo.SceneCandlelight
	case SceneModeHDR:
		return algo.SceneBacklight
	}
	return algo.SceneAuto
}

// deltaEV returns the exposure change of steps compensation steps.
func deltaEV(steps int32, step float64) float32 {
	return float32(float64(steps) * step)
}
