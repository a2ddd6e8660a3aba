/*
DESCRIPTION
  scene.go provides Scene, a uniformly lit scene that renders the bayer grid
  statistics a sensor would produce under a given frame control.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package sim

import "github.com/ausocean/aec/algo"

// Default grid dimensions.
const (
	defaultGridWidth  = 16
	defaultGridHeight = 12
	histogramBins     = 64
)

// Scene is a simulated scene.
type Scene struct {
	// Lux is the ambient illuminance.
	Lux float64

	// Reflectance is the scene's mean reflectance, 0.18 if zero.
	Reflectance float64

	// LEDResponse is the light added per mA of LED current for LED1 and
	// LED2, in lux.
	LEDResponse [algo.NumLEDs]float64

	// Colour of the ambient light and of each LED as R, G and B weights.
	Ambient [3]float64
	LEDs    [algo.NumLEDs][3]float64

	GridWidth, GridHeight int
}

// NewScene returns a Scene at lux with a neutral ambient light, a warm
// LED1 and a cool LED2.
func NewScene(lux float64) *Scene {
	return &Scene{
		Lux:         lux,
		Reflectance: 0.18,
		LEDResponse: [algo.NumLEDs]float64{0.4, 0.4},
		Ambient:     [3]float64{1, 1, 1},
		LEDs:        [algo.NumLEDs][3]float64{{1.3, 1, 0.6}, {0.8, 1, 1.3}},
		GridWidth:   defaultGridWidth,
		GridHeight:  defaultGridHeight,
	}
}

// sensitivity maps lux seconds to a normalised pixel value.
const sensitivity = 1.0 / 10

// Stats returns the statistics of frame id exposed with fc.
func (s *Scene) Stats(id uint64, fc algo.FrameControl) algo.Stats {
	refl := s.Reflectance
	if refl == 0 {
		refl = 0.18
	}
	w, h := s.GridWidth, s.GridHeight
	if w <= 0 || h <= 0 {
		w, h = defaultGridWidth, defaultGridHeight
	}

	e := fc.Exposure[algo.ExposureSafe]
	ev := float64(e.ExposureTime) / 1e9 * float64(e.Gain)

	var light [3]float64
	for c := range light {
		light[c] = s.Lux * s.Ambient[c]
		for i, mA := range fc.LEDCurrents {
			light[c] += float64(mA) * s.LEDResponse[i] * s.LEDs[i][c]
		}
	}

	st := algo.Stats{FrameID: id, Grid: make([]algo.GridRegion, w*h), Histogram: make([]uint32, histogramBins)}
	for y := 0; y < h; y++ {
		// Vignetting: rows toward the edges are slightly darker.
		fall := 1 - 0.1*abs(float64(2*y-h+1)/float64(h))
		for x := 0; x < w; x++ {
			var v [3]float32
			for c := range v {
				v[c] = float32(clip(light[c] * refl * ev * sensitivity * fall))
			}
			st.Grid[y*w+x] = algo.GridRegion{R: v[0], G: v[1], B: v[2], Count: 1}
			luma := 0.299*v[0] + 0.587*v[1] + 0.114*v[2]
			bin := int(luma * (histogramBins - 1))
			st.Histogram[bin]++
		}
	}
	return st
}

func clip(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
