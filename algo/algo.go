/*
DESCRIPTION
  algo.go defines the Algorithm interface, the request/response contract between
  the AEC engine and an opaque exposure-control algorithm.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package algo provides the protocol spoken between the AEC engine and an
// exposure-control algorithm. Parameters, requests and results are closed
// sets of types; an Algorithm implementation switches on the concrete type
// of what it is given.
package algo

import "errors"

// Errors returned by an Algorithm.
var (
	// ErrUnsupported indicates the algorithm does not implement an optional
	// parameter or request.
	ErrUnsupported = errors.New("not supported by algorithm")

	// ErrFailed is the generic failure of an algorithm call.
	ErrFailed = errors.New("algorithm call failed")
)

// Algorithm is an exposure-control algorithm. Every call carries the list of
// parameters that apply to it; the engine's Adapter guarantees that this list
// always ends with the CameraIdentity of the camera being served.
type Algorithm interface {
	// SetParams pushes parameters into the algorithm.
	SetParams(params []Param) error

	// GetParam queries the algorithm. The concrete type of the returned
	// Result is determined by the Request type.
	GetParam(req Request, params []Param) (Result, error)

	// Process runs the algorithm over one frame of statistics.
	Process(s Stats, params []Param) (Output, error)

	// Close releases the algorithm.
	Close() error
}

// Stats holds the statistics of one frame as produced by the ISP.
type Stats struct {
	FrameID   uint64
	Timestamp uint64 // ns.

	// Grid is the bayer grid of region averages, row major.
	Grid []GridRegion

	// Histogram is the luma histogram of the frame.
	Histogram []uint32
}

// GridRegion is one bayer grid region average.
type GridRegion struct {
	R, G, B float32
	Count   uint32
}

// Luma returns the mean luma over the grid, weighted by pixel count, in the
// range of the region averages.
func (s Stats) Luma() float32 {
	var sum, n float64
	for _, r := range s.Grid {
		y := 0.299*float64(r.R) + 0.587*float64(r.G) + 0.114*float64(r.B)
		w := float64(r.Count)
		if w == 0 {
			w = 1
		}
		sum += y * w
		n += w
	}
	if n == 0 {
		return 0
	}
	return float32(sum / n)
}

// Output is the result of processing one frame of statistics.
type Output struct {
	FrameControl FrameControl
	FrameInfo    FrameInfo
}

// FrameInfo carries the algorithm's view of the current scene.
type FrameInfo struct {
	// Settled is true when the algorithm has reached a stable exposure.
	Settled bool

	// FlashNeeded is true when a snapshot should use the flash.
	FlashNeeded bool

	// LEDAFRequired is true when autofocus needs LED assistance.
	LEDAFRequired bool

	Luma       float32
	TargetLuma float32
	LuxIndex   float32
}
