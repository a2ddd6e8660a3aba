/*
DESCRIPTION
  adapter.go provides Adapter, which wraps an Algorithm and attaches the
  camera identity to every call made into it.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package algo

import (
	"errors"

	"github.com/ausocean/utils/logging"
	pkgerrors "github.com/pkg/errors"
)

// To indicate package when logging.
const pkg = "algo: "

// Adapter wraps an Algorithm. The algorithm is context-free about which
// camera it serves, so the adapter appends its CameraIdentity to the
// parameter list of every call.
type Adapter struct {
	alg Algorithm
	id  CameraIdentity
	log logging.Logger
}

// NewAdapter returns a new Adapter for a.
func NewAdapter(a Algorithm, l logging.Logger) *Adapter {
	return &Adapter{alg: a, log: l}
}

// SetIdentity sets the camera identity attached to subsequent calls.
func (a *Adapter) SetIdentity(id CameraIdentity) { a.id = id }

// Identity returns the camera identity attached to calls.
func (a *Adapter) Identity() CameraIdentity { return a.id }

func (a *Adapter) with(params []Param) []Param {
	p := make([]Param, 0, len(params)+1)
	p = append(p, params...)
	return append(p, a.id)
}

// Set pushes params into the algorithm.
func (a *Adapter) Set(params ...Param) error {
	err := a.alg.SetParams(a.with(params))
	if err != nil {
		return pkgerrors.Wrapf(err, "could not set %s", typesOf(params))
	}
	return nil
}

// SetOptional pushes a best-effort hint into the algorithm. An algorithm that
// does not support p is not an error.
func (a *Adapter) SetOptional(p Param) error {
	err := a.Set(p)
	if errors.Is(err, ErrUnsupported) {
		a.log.Warning(pkg+"optional parameter not supported", "param", p.Type().String())
		return nil
	}
	return err
}

// Get queries the algorithm.
func (a *Adapter) Get(req Request, params ...Param) (Result, error) {
	r, err := a.alg.GetParam(req, a.with(params))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "could not get %s", req.Type())
	}
	return r, nil
}

// Process runs the algorithm over s.
func (a *Adapter) Process(s Stats, params ...Param) (Output, error) {
	out, err := a.alg.Process(s, a.with(params))
	if err != nil {
		return Output{}, pkgerrors.Wrapf(err, "could not process stats for frame %d", s.FrameID)
	}
	return out, nil
}

// Close closes the underlying algorithm.
func (a *Adapter) Close() error { return a.alg.Close() }

// FlashFrameControl returns the frame control for the main flash capture.
func (a *Adapter) FlashFrameControl() (FrameControl, error) {
	r, err := a.Get(FlashFrameControlRequest{})
	if err != nil {
		return FrameControl{}, err
	}
	return asFrameControl(r)
}

// StartExposure returns the start exposure of LED measurement point idx.
func (a *Adapter) StartExposure(idx uint32) (FrameControl, error) {
	r, err := a.Get(StartExposureRequest{Index: idx})
	if err != nil {
		return FrameControl{}, err
	}
	return asFrameControl(r)
}

// MeasurementResult returns the status of LED measurement point idx.
func (a *Adapter) MeasurementResult(idx uint32) (MeasurementResult, error) {
	r, err := a.Get(MeasurementResultRequest{Index: idx})
	if err != nil {
		return MeasurementResult{}, err
	}
	res, ok := r.(MeasurementResult)
	if !ok {
		return MeasurementResult{}, pkgerrors.Wrapf(ErrFailed, "unexpected result type %T", r)
	}
	return res, nil
}

// VendorTags returns the vendor tags published by the algorithm.
func (a *Adapter) VendorTags(public bool) ([]VendorTag, error) {
	r, err := a.Get(VendorTagsRequest{Public: public})
	if err != nil {
		return nil, err
	}
	tags, ok := r.(VendorTags)
	if !ok {
		return nil, pkgerrors.Wrapf(ErrFailed, "unexpected result type %T", r)
	}
	return tags.Tags, nil
}

// Defaults returns the output to use before any stats have been processed.
func (a *Adapter) Defaults() (Output, error) {
	r, err := a.Get(DefaultsRequest{})
	if err != nil {
		return Output{}, err
	}
	out, ok := r.(Output)
	if !ok {
		return Output{}, pkgerrors.Wrapf(ErrFailed, "unexpected result type %T", r)
	}
	return out, nil
}

// InlineCalibration returns the algorithm's dynamic calibration blob.
func (a *Adapter) InlineCalibration() ([]byte, error) {
	r, err := a.Get(InlineCalibrationRequest{})
	if err != nil {
		return nil, err
	}
	ic, ok := r.(InlineCalibration)
	if !ok {
		return nil, pkgerrors.Wrapf(ErrFailed, "unexpected result type %T", r)
	}
	return ic.Data, nil
}

func asFrameControl(r Result) (FrameControl, error) {
	fc, ok := r.(FrameControl)
	if !ok {
		return FrameControl{}, pkgerrors.Wrapf(ErrFailed, "unexpected result type %T", r)
	}
	return fc, nil
}

func typesOf(params []Param) []string {
	s := make([]string, len(params))
	for i, p := range params {
		s[i] = p.Type().String()
	}
	return s
}
