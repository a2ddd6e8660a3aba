/*
DESCRIPTION
  summary.go provides a statistical summary of the points measured by an LED
  calibration run.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package calib

import "gonum.org/v1/gonum/stat"

// Summary holds the mean and standard deviation of the ratios measured over a
// calibration run.
type Summary struct {
	Points           int
	MeanRG, StdRG    float64
	MeanBG, StdBG    float64
	MeanFlux         float64
	MinFlux, MaxFlux float64
}

// Summarize returns the Summary of pts. Standard deviations of fewer than two
// points are zero.
func Summarize(pts []Point) Summary {
	s := Summary{Points: len(pts)}
	if len(pts) == 0 {
		return s
	}

	rg := make([]float64, len(pts))
	bg := make([]float64, len(pts))
	flux := make([]float64, len(pts))
	for i, p := range pts {
		rg[i], bg[i], flux[i] = float64(p.RG), float64(p.BG), float64(p.Flux)
	}

	s.MeanRG, s.StdRG = stat.MeanStdDev(rg, nil)
	s.MeanBG, s.StdBG = stat.MeanStdDev(bg, nil)
	s.MeanFlux = stat.Mean(flux, nil)
	if len(pts) < 2 {
		s.StdRG, s.StdBG = 0, 0
	}

	s.MinFlux, s.MaxFlux = flux[0], flux[0]
	for _, f := range flux[1:] {
		if f < s.MinFlux {
			s.MinFlux = f
		}
		if f > s.MaxFlux {
			s.MaxFlux = f
		}
	}
	return s
}
